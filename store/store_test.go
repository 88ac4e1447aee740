package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rasoilabs/rasoipos/models"
	"github.com/rasoilabs/rasoipos/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	s, err := store.Open(store.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newCustomer(tenantID, name string) *models.Customer {
	now := time.Now()
	return &models.Customer{
		SyncMeta: models.SyncMeta{
			ID:          uuid.NewString(),
			TenantID:    tenantID,
			CreatedAt:   now,
			LastUpdated: now,
		},
		Name: name,
	}
}

func TestUpsertAndGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	repos := s.Repos()
	ctx := context.Background()
	tenant := uuid.NewString()

	cust := newCustomer(tenant, "Asha")
	require.NoError(t, repos.Customers.Upsert(ctx, tenant, cust))

	got, err := repos.Customers.Get(ctx, tenant, cust.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Name)
	assert.Equal(t, tenant, got.TenantID)
	assert.WithinDuration(t, cust.LastUpdated, got.LastUpdated, time.Second)
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	s := newTestStore(t)
	repos := s.Repos()
	ctx := context.Background()

	_, err := repos.Customers.Get(ctx, uuid.NewString(), uuid.NewString())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTenantIsolationOnRead(t *testing.T) {
	s := newTestStore(t)
	repos := s.Repos()
	ctx := context.Background()
	tenantA := uuid.NewString()
	tenantB := uuid.NewString()

	cust := newCustomer(tenantA, "Asha")
	require.NoError(t, repos.Customers.Upsert(ctx, tenantA, cust))

	// The other tenant sees nothing, not even an existence hint.
	_, err := repos.Customers.Get(ctx, tenantB, cust.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	list, err := repos.Customers.List(ctx, tenantB)
	require.NoError(t, err)
	assert.Empty(t, list)

	n, err := repos.Customers.Count(ctx, tenantB)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpsertNeverTouchesForeignTenantRow(t *testing.T) {
	s := newTestStore(t)
	repos := s.Repos()
	ctx := context.Background()
	tenantA := uuid.NewString()
	tenantB := uuid.NewString()

	cust := newCustomer(tenantA, "Asha")
	require.NoError(t, repos.Customers.Upsert(ctx, tenantA, cust))

	intruder := newCustomer(tenantB, "Mallory")
	intruder.ID = cust.ID
	err := repos.Customers.Upsert(ctx, tenantB, intruder)
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := repos.Customers.Get(ctx, tenantA, cust.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Name)
	assert.Equal(t, tenantA, got.TenantID)
}

func TestUpsertIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	repos := s.Repos()
	ctx := context.Background()
	tenant := uuid.NewString()

	cust := newCustomer(tenant, "Asha")
	require.NoError(t, repos.Customers.Upsert(ctx, tenant, cust))
	require.NoError(t, repos.Customers.Upsert(ctx, tenant, cust))

	n, err := repos.Customers.Count(ctx, tenant)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := repos.Customers.Get(ctx, tenant, cust.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Name)
	assert.WithinDuration(t, cust.LastUpdated, got.LastUpdated, time.Second)
}

func TestUpsertReplacesRecordWholesale(t *testing.T) {
	s := newTestStore(t)
	repos := s.Repos()
	ctx := context.Background()
	tenant := uuid.NewString()

	cust := newCustomer(tenant, "Asha")
	require.NoError(t, repos.Customers.Upsert(ctx, tenant, cust))

	created := cust.CreatedAt

	cust.Name = "Asha K"
	cust.Phone = "9876500000"
	cust.LastUpdated = cust.LastUpdated.Add(time.Minute)
	require.NoError(t, repos.Customers.Upsert(ctx, tenant, cust))

	got, err := repos.Customers.Get(ctx, tenant, cust.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha K", got.Name)
	assert.Equal(t, "9876500000", got.Phone)
	assert.WithinDuration(t, created, got.CreatedAt, time.Second)
	assert.WithinDuration(t, cust.LastUpdated, got.LastUpdated, time.Second)
}

func TestUpsertPreservesFalseBooleans(t *testing.T) {
	s := newTestStore(t)
	repos := s.Repos()
	ctx := context.Background()
	tenant := uuid.NewString()
	now := time.Now()

	item := &models.MenuItem{
		SyncMeta: models.SyncMeta{
			ID:          uuid.NewString(),
			TenantID:    tenant,
			CreatedAt:   now,
			LastUpdated: now,
		},
		CategoryID:  uuid.NewString(),
		Name:        "Paneer Tikka",
		Price:       240,
		IsAvailable: false,
	}
	require.NoError(t, repos.MenuItems.Upsert(ctx, tenant, item))

	got, err := repos.MenuItems.Get(ctx, tenant, item.ID)
	require.NoError(t, err)
	assert.False(t, got.IsAvailable)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	repos := s.Repos()
	ctx := context.Background()
	tenantA := uuid.NewString()
	tenantB := uuid.NewString()

	cust := newCustomer(tenantA, "Asha")
	require.NoError(t, repos.Customers.Upsert(ctx, tenantA, cust))

	// Another tenant cannot delete the row.
	err := repos.Customers.Delete(ctx, tenantB, cust.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, repos.Customers.Delete(ctx, tenantA, cust.ID))

	_, err = repos.Customers.Get(ctx, tenantA, cust.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = repos.Customers.Delete(ctx, tenantA, cust.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func seedOrder(t *testing.T, repos *store.Repositories, tenant string, mutate func(*models.Order)) *models.Order {
	t.Helper()
	now := time.Now()
	order := &models.Order{
		SyncMeta: models.SyncMeta{
			ID:          uuid.NewString(),
			TenantID:    tenant,
			CreatedAt:   now,
			LastUpdated: now,
		},
		OrderNumber: "ORD-20260825-0001",
		OrderType:   models.OrderCounter,
		Status:      models.StatusPending,
		KOTSequence: 1,
		IsOpen:      true,
	}
	if mutate != nil {
		mutate(order)
	}
	require.NoError(t, repos.Orders.Upsert(context.Background(), tenant, order))
	return order
}

func TestOrderAddTotals(t *testing.T) {
	s := newTestStore(t)
	repos := s.Repos()
	ctx := context.Background()
	tenant := uuid.NewString()

	order := seedOrder(t, repos, tenant, func(o *models.Order) {
		o.Subtotal = 100
		o.Tax = 5
		o.Total = 105
	})

	stamp := time.Now().Add(time.Minute)
	require.NoError(t, repos.Orders.AddTotals(ctx, tenant, order.ID, 50, 2.5, 0, 52.5, stamp))

	got, err := repos.Orders.Get(ctx, tenant, order.ID)
	require.NoError(t, err)
	assert.InDelta(t, 150, got.Subtotal, 0.001)
	assert.InDelta(t, 7.5, got.Tax, 0.001)
	assert.InDelta(t, 157.5, got.Total, 0.001)
	assert.WithinDuration(t, stamp, got.LastUpdated, time.Second)

	err = repos.Orders.AddTotals(ctx, tenant, uuid.NewString(), 1, 0, 0, 1, stamp)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOrderIncrementKOT(t *testing.T) {
	s := newTestStore(t)
	repos := s.Repos()
	ctx := context.Background()
	tenant := uuid.NewString()

	order := seedOrder(t, repos, tenant, nil)

	require.NoError(t, repos.Orders.IncrementKOT(ctx, tenant, order.ID, time.Now()))
	require.NoError(t, repos.Orders.IncrementKOT(ctx, tenant, order.ID, time.Now()))

	got, err := repos.Orders.Get(ctx, tenant, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.KOTSequence)
}

func TestOrderCountForDay(t *testing.T) {
	s := newTestStore(t)
	repos := s.Repos()
	ctx := context.Background()
	tenant := uuid.NewString()

	today := time.Now()
	yesterday := today.Add(-24 * time.Hour)

	seedOrder(t, repos, tenant, nil)
	seedOrder(t, repos, tenant, func(o *models.Order) { o.CreatedAt = yesterday })

	n, err := repos.Orders.CountForDay(ctx, tenant, today)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repos.Orders.CountForDay(ctx, tenant, yesterday)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestOpenDineInByTable(t *testing.T) {
	s := newTestStore(t)
	repos := s.Repos()
	ctx := context.Background()
	tenant := uuid.NewString()
	tableID := uuid.NewString()

	seedOrder(t, repos, tenant, func(o *models.Order) {
		o.OrderType = models.OrderDineIn
		o.TableID = &tableID
	})
	// Closed dine-in order on the same table does not count.
	seedOrder(t, repos, tenant, func(o *models.Order) {
		o.OrderType = models.OrderDineIn
		o.TableID = &tableID
		o.IsOpen = false
		o.Status = models.StatusServed
	})
	// Counter order never occupies a table.
	seedOrder(t, repos, tenant, nil)

	open, err := repos.Orders.OpenDineInByTable(ctx, tenant, tableID)
	require.NoError(t, err)
	assert.Len(t, open, 1)
	assert.True(t, open[0].IsOpen)
}

func TestCustomerAddCreditBalance(t *testing.T) {
	s := newTestStore(t)
	repos := s.Repos()
	ctx := context.Background()
	tenant := uuid.NewString()

	cust := newCustomer(tenant, "Asha")
	require.NoError(t, repos.Customers.Upsert(ctx, tenant, cust))

	got, err := repos.Customers.AddCreditBalance(ctx, tenant, cust.ID, 150, time.Now())
	require.NoError(t, err)
	assert.InDelta(t, 150, got.CreditBalance, 0.001)

	got, err = repos.Customers.AddCreditBalance(ctx, tenant, cust.ID, -50, time.Now())
	require.NoError(t, err)
	assert.InDelta(t, 100, got.CreditBalance, 0.001)

	_, err = repos.Customers.AddCreditBalance(ctx, tenant, uuid.NewString(), 10, time.Now())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTableSetStatus(t *testing.T) {
	s := newTestStore(t)
	repos := s.Repos()
	ctx := context.Background()
	tenant := uuid.NewString()
	now := time.Now()

	table := &models.Table{
		SyncMeta: models.SyncMeta{
			ID:          uuid.NewString(),
			TenantID:    tenant,
			CreatedAt:   now,
			LastUpdated: now,
		},
		Name:   "T1",
		Status: models.TableAvailable,
	}
	require.NoError(t, repos.Tables.Upsert(ctx, tenant, table))

	require.NoError(t, repos.Tables.SetStatus(ctx, tenant, table.ID, models.TableBusy, time.Now()))

	got, err := repos.Tables.Get(ctx, tenant, table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableBusy, got.Status)

	err = repos.Tables.SetStatus(ctx, tenant, uuid.NewString(), models.TableBusy, time.Now())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSyncStateMarker(t *testing.T) {
	s := newTestStore(t)
	repos := s.Repos()
	ctx := context.Background()

	_, err := repos.SyncState.Get(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)

	first := time.Now().Add(-time.Hour)
	require.NoError(t, repos.SyncState.Save(ctx, first))

	st, err := repos.SyncState.Get(ctx)
	require.NoError(t, err)
	assert.WithinDuration(t, first, st.LastSyncAt, time.Second)

	second := time.Now()
	require.NoError(t, repos.SyncState.Save(ctx, second))

	st, err = repos.SyncState.Get(ctx)
	require.NoError(t, err)
	assert.WithinDuration(t, second, st.LastSyncAt, time.Second)
}

func TestTransactionRollsBackTogether(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tenant := uuid.NewString()

	boom := assert.AnError
	err := s.Transaction(ctx, func(r *store.Repositories) error {
		order := &models.Order{
			SyncMeta: models.SyncMeta{
				ID:          uuid.NewString(),
				TenantID:    tenant,
				CreatedAt:   time.Now(),
				LastUpdated: time.Now(),
			},
			OrderNumber: "ORD-20260825-0001",
			OrderType:   models.OrderCounter,
			Status:      models.StatusPending,
			IsOpen:      true,
		}
		if err := r.Orders.Upsert(ctx, tenant, order); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := s.Repos().Orders.Count(ctx, tenant)
	require.NoError(t, err)
	assert.Zero(t, n)
}
