package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rasoilabs/rasoipos/models"
	"github.com/rasoilabs/rasoipos/store"
)

// CreditService owns the customer credit ledger. Every posting writes
// the ledger entry and the balance update in one transaction, under
// the customer's lock, so balanceAfter always equals the running sum
// at that entry.
type CreditService struct {
	store *store.Store
	locks *LockTable
}

func NewCreditService(st *store.Store, locks *LockTable) *CreditService {
	return &CreditService{store: st, locks: locks}
}

// PostSale appends the entry for a credit-paid order step: the full
// total for a new order or quick bill, the incremental cart total for
// a continuation.
func (s *CreditService) PostSale(ctx context.Context, tenantID, customerID, orderID string, amount float64) (*models.CreditTransaction, error) {
	if amount < 0 {
		return nil, fmt.Errorf("%w: credit sale amount must not be negative", ErrValidation)
	}
	var ref *string
	if orderID != "" {
		ref = &orderID
	}
	return s.post(ctx, tenantID, customerID, ref, amount, "credit sale")
}

// SettleCredit records a pay-down as a negative ledger entry. Settling
// more than the current balance is allowed and leaves the customer in
// advance.
func (s *CreditService) SettleCredit(ctx context.Context, tenantID, customerID string, amount float64, note string) (*models.CreditTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: settlement amount must be positive", ErrValidation)
	}
	if note == "" {
		note = "credit settlement"
	}
	return s.post(ctx, tenantID, customerID, nil, -amount, note)
}

// Ledger returns the customer's entries, oldest first.
func (s *CreditService) Ledger(ctx context.Context, tenantID, customerID string) ([]models.CreditTransaction, error) {
	repos := s.store.Repos()
	if _, err := repos.Customers.Get(ctx, tenantID, customerID); err != nil {
		return nil, err
	}
	return repos.Credits.ListByCustomer(ctx, tenantID, customerID)
}

func (s *CreditService) post(ctx context.Context, tenantID, customerID string, orderID *string, amount float64, note string) (*models.CreditTransaction, error) {
	s.locks.Lock(customerKey(customerID))
	defer s.locks.Unlock(customerKey(customerID))

	now := time.Now()
	var entry *models.CreditTransaction
	err := s.store.Transaction(ctx, func(r *store.Repositories) error {
		cust, err := r.Customers.AddCreditBalance(ctx, tenantID, customerID, amount, now)
		if err != nil {
			return err
		}
		entry = &models.CreditTransaction{
			SyncMeta: models.SyncMeta{
				ID:          uuid.NewString(),
				TenantID:    tenantID,
				CreatedAt:   now,
				LastUpdated: now,
			},
			CustomerID:   customerID,
			OrderID:      orderID,
			Amount:       amount,
			BalanceAfter: cust.CreditBalance,
			Note:         note,
		}
		return r.Credits.Upsert(ctx, tenantID, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}
