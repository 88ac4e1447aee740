package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rasoilabs/rasoipos/store"
)

func TestCreditLedgerRunningBalance(t *testing.T) {
	st := newTestStore(t)
	locks := NewLockTable()
	svc := NewCreditService(st, locks)
	ctx := context.Background()
	tenant := uuid.NewString()
	cust := seedCustomer(t, st, tenant, "Asha")

	orderA, orderB := uuid.NewString(), uuid.NewString()

	first, err := svc.PostSale(ctx, tenant, cust.ID, orderA, 150)
	require.NoError(t, err)
	assert.InDelta(t, 150, first.BalanceAfter, 0.001)

	second, err := svc.PostSale(ctx, tenant, cust.ID, orderB, 220)
	require.NoError(t, err)
	assert.InDelta(t, 370, second.BalanceAfter, 0.001)

	paid, err := svc.SettleCredit(ctx, tenant, cust.ID, 300, "")
	require.NoError(t, err)
	assert.InDelta(t, -300, paid.Amount, 0.001)
	assert.InDelta(t, 70, paid.BalanceAfter, 0.001)
	assert.Equal(t, "credit settlement", paid.Note)
	assert.Nil(t, paid.OrderID)

	ledger, err := svc.Ledger(ctx, tenant, cust.ID)
	require.NoError(t, err)
	require.Len(t, ledger, 3)
	assert.InDelta(t, 150, ledger[0].BalanceAfter, 0.001)
	assert.InDelta(t, 370, ledger[1].BalanceAfter, 0.001)
	assert.InDelta(t, 70, ledger[2].BalanceAfter, 0.001)

	got, err := st.Repos().Customers.Get(ctx, tenant, cust.ID)
	require.NoError(t, err)
	assert.InDelta(t, 70, got.CreditBalance, 0.001)
}

func TestSettleBeyondBalanceLeavesAdvance(t *testing.T) {
	st := newTestStore(t)
	svc := NewCreditService(st, NewLockTable())
	ctx := context.Background()
	tenant := uuid.NewString()
	cust := seedCustomer(t, st, tenant, "Asha")

	_, err := svc.PostSale(ctx, tenant, cust.ID, uuid.NewString(), 100)
	require.NoError(t, err)

	entry, err := svc.SettleCredit(ctx, tenant, cust.ID, 150, "festival clearout")
	require.NoError(t, err)
	assert.InDelta(t, -50, entry.BalanceAfter, 0.001)
	assert.Equal(t, "festival clearout", entry.Note)
}

func TestCreditValidation(t *testing.T) {
	st := newTestStore(t)
	svc := NewCreditService(st, NewLockTable())
	ctx := context.Background()
	tenant := uuid.NewString()
	cust := seedCustomer(t, st, tenant, "Asha")

	_, err := svc.PostSale(ctx, tenant, cust.ID, uuid.NewString(), -1)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.SettleCredit(ctx, tenant, cust.ID, 0, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.SettleCredit(ctx, tenant, cust.ID, -10, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreditUnknownCustomer(t *testing.T) {
	st := newTestStore(t)
	svc := NewCreditService(st, NewLockTable())
	ctx := context.Background()
	tenant := uuid.NewString()

	_, err := svc.PostSale(ctx, tenant, uuid.NewString(), uuid.NewString(), 10)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.Ledger(ctx, tenant, uuid.NewString())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLedgerFailureRollsBackBalance(t *testing.T) {
	st := newTestStore(t)
	svc := NewCreditService(st, NewLockTable())
	ctx := context.Background()
	tenantA := uuid.NewString()
	tenantB := uuid.NewString()
	cust := seedCustomer(t, st, tenantA, "Asha")

	// The customer exists under tenant A only, so the posting fails
	// before any write lands under tenant B.
	_, err := svc.PostSale(ctx, tenantB, cust.ID, uuid.NewString(), 50)
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := st.Repos().Customers.Get(ctx, tenantA, cust.ID)
	require.NoError(t, err)
	assert.Zero(t, got.CreditBalance)
}
