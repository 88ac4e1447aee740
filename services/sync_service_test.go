package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rasoilabs/rasoipos/gateway"
	"github.com/rasoilabs/rasoipos/models"
	"github.com/rasoilabs/rasoipos/store"
)

// fakeGateway is an in-memory stand-in for the cloud gateway. Records
// pass through JSON both ways, exactly like the wire would carry them.
type fakeGateway struct {
	mu         sync.Mutex
	remote     map[string]json.RawMessage
	uploads    map[string]int
	downloads  map[string]int
	failUpload map[string]error
	failDown   map[string]error
	failAll    error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		remote:     make(map[string]json.RawMessage),
		uploads:    make(map[string]int),
		downloads:  make(map[string]int),
		failUpload: make(map[string]error),
		failDown:   make(map[string]error),
	}
}

func (f *fakeGateway) serve(t *testing.T, class string, records interface{}) {
	t.Helper()
	data, err := json.Marshal(records)
	require.NoError(t, err)
	f.mu.Lock()
	f.remote[class] = data
	f.mu.Unlock()
}

func (f *fakeGateway) Upload(_ context.Context, _, class string, records interface{}) (gateway.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads[class]++
	if f.failAll != nil {
		return gateway.UploadResult{}, f.failAll
	}
	if err := f.failUpload[class]; err != nil {
		return gateway.UploadResult{}, err
	}

	data, err := json.Marshal(records)
	if err != nil {
		return gateway.UploadResult{}, err
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		return gateway.UploadResult{}, err
	}
	return gateway.UploadResult{SyncedRecords: len(arr)}, nil
}

func (f *fakeGateway) Download(_ context.Context, _, class string, out interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads[class]++
	if f.failAll != nil {
		return f.failAll
	}
	if err := f.failDown[class]; err != nil {
		return err
	}

	payload, ok := f.remote[class]
	if !ok {
		payload = json.RawMessage("[]")
	}
	return json.Unmarshal(payload, out)
}

func newSyncEngine(st *store.Store, gw gateway.Client) *SyncEngine {
	return NewSyncEngine(st, gw, NewLockTable(), nil, 0)
}

func classReport(t *testing.T, report *SyncReport, class string) *ClassReport {
	t.Helper()
	for _, c := range report.Classes {
		if c.Class == class {
			return c
		}
	}
	t.Fatalf("no report for class %s", class)
	return nil
}

func remoteCustomer(tenant, name string, updated time.Time) *models.Customer {
	return &models.Customer{
		SyncMeta: models.SyncMeta{
			ID:          uuid.NewString(),
			TenantID:    tenant,
			CreatedAt:   updated,
			LastUpdated: updated,
		},
		Name: name,
	}
}

func TestSyncRoundUploadsLocalData(t *testing.T) {
	st := newTestStore(t)
	gw := newFakeGateway()
	engine := newSyncEngine(st, gw)
	ctx := context.Background()
	tenant := uuid.NewString()

	seedCustomer(t, st, tenant, "Asha")
	seedCustomer(t, st, tenant, "Binod")
	seedTable(t, st, tenant, "T1")

	report, err := engine.Run(ctx, tenant)
	require.NoError(t, err)

	assert.True(t, report.Initial)
	assert.True(t, report.Clean)
	assert.True(t, report.MarkerAdvanced)
	assert.Equal(t, 2, classReport(t, report, models.ClassCustomers).Uploaded)
	assert.Equal(t, 1, classReport(t, report, models.ClassTables).Uploaded)
}

func TestSyncSkipsUploadForEmptyClasses(t *testing.T) {
	st := newTestStore(t)
	gw := newFakeGateway()
	engine := newSyncEngine(st, gw)
	tenant := uuid.NewString()

	seedCustomer(t, st, tenant, "Asha")

	_, err := engine.Run(context.Background(), tenant)
	require.NoError(t, err)

	gw.mu.Lock()
	defer gw.mu.Unlock()
	assert.Equal(t, 1, gw.uploads[models.ClassCustomers])
	// Empty classes make no upload call at all, but still download.
	assert.Zero(t, gw.uploads[models.ClassOrders])
	assert.Equal(t, 1, gw.downloads[models.ClassOrders])
}

func TestSyncDownloadCreatesMissingRecords(t *testing.T) {
	st := newTestStore(t)
	gw := newFakeGateway()
	engine := newSyncEngine(st, gw)
	ctx := context.Background()
	tenant := uuid.NewString()

	stamp := time.Now().Add(-2 * time.Hour).Truncate(time.Second)
	remote := remoteCustomer(tenant, "Asha", stamp)
	gw.serve(t, models.ClassCustomers, []*models.Customer{remote})

	report, err := engine.Run(ctx, tenant)
	require.NoError(t, err)

	rep := classReport(t, report, models.ClassCustomers)
	assert.Equal(t, 1, rep.Downloaded)
	assert.Equal(t, 1, rep.Applied)

	got, err := st.Repos().Customers.Get(ctx, tenant, remote.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Name)
	// The remote timestamp is stored untouched; restamping would make
	// the copy look newer than the cloud and bounce forever.
	assert.WithinDuration(t, stamp, got.LastUpdated, time.Second)
}

func TestSyncConflictNewerRemoteWins(t *testing.T) {
	st := newTestStore(t)
	gw := newFakeGateway()
	engine := newSyncEngine(st, gw)
	ctx := context.Background()
	tenant := uuid.NewString()

	local := seedCustomer(t, st, tenant, "Asha")

	newer := *local
	newer.Name = "Asha K"
	newer.LastUpdated = local.LastUpdated.Add(time.Minute)
	gw.serve(t, models.ClassCustomers, []*models.Customer{&newer})

	report, err := engine.Run(ctx, tenant)
	require.NoError(t, err)
	assert.Equal(t, 1, classReport(t, report, models.ClassCustomers).Applied)

	got, err := st.Repos().Customers.Get(ctx, tenant, local.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha K", got.Name)
}

func TestSyncConflictOlderRemoteSkipped(t *testing.T) {
	st := newTestStore(t)
	gw := newFakeGateway()
	engine := newSyncEngine(st, gw)
	ctx := context.Background()
	tenant := uuid.NewString()

	local := seedCustomer(t, st, tenant, "Asha")

	stale := *local
	stale.Name = "Old Asha"
	stale.LastUpdated = local.LastUpdated.Add(-time.Hour)
	gw.serve(t, models.ClassCustomers, []*models.Customer{&stale})

	report, err := engine.Run(ctx, tenant)
	require.NoError(t, err)

	rep := classReport(t, report, models.ClassCustomers)
	assert.Zero(t, rep.Applied)
	assert.Equal(t, 1, rep.Skipped)

	got, err := st.Repos().Customers.Get(ctx, tenant, local.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Name)
}

func TestSyncConflictEqualTimestampRemoteWins(t *testing.T) {
	st := newTestStore(t)
	gw := newFakeGateway()
	engine := newSyncEngine(st, gw)
	ctx := context.Background()
	tenant := uuid.NewString()

	local := seedCustomer(t, st, tenant, "Asha")

	// Identical timestamps must resolve the same way on every replica,
	// and the tie goes to the remote copy.
	tie := *local
	tie.Name = "Asha (cloud)"
	gw.serve(t, models.ClassCustomers, []*models.Customer{&tie})

	_, err := engine.Run(ctx, tenant)
	require.NoError(t, err)

	got, err := st.Repos().Customers.Get(ctx, tenant, local.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha (cloud)", got.Name)
}

func TestSyncApplyIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	gw := newFakeGateway()
	engine := newSyncEngine(st, gw)
	ctx := context.Background()
	tenant := uuid.NewString()

	remote := remoteCustomer(tenant, "Asha", time.Now().Truncate(time.Second))
	gw.serve(t, models.ClassCustomers, []*models.Customer{remote})

	_, err := engine.Run(ctx, tenant)
	require.NoError(t, err)
	_, err = engine.Run(ctx, tenant)
	require.NoError(t, err)

	n, err := st.Repos().Customers.Count(ctx, tenant)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestSyncClassFailureIsIsolated(t *testing.T) {
	st := newTestStore(t)
	gw := newFakeGateway()
	engine := newSyncEngine(st, gw)
	ctx := context.Background()
	tenant := uuid.NewString()

	seedCustomer(t, st, tenant, "Asha")
	seedTable(t, st, tenant, "T1")
	gw.failUpload[models.ClassCustomers] = errors.New("gateway rejected request (HTTP 422)")

	// The customer download still happens and still applies, upload
	// failure or not: last-writer-wins keeps that safe.
	remote := remoteCustomer(tenant, "Remote", time.Now().Add(time.Hour))
	gw.serve(t, models.ClassCustomers, []*models.Customer{remote})

	report, err := engine.Run(ctx, tenant)
	require.NoError(t, err)

	assert.False(t, report.Clean)
	assert.False(t, report.MarkerAdvanced)

	failed := classReport(t, report, models.ClassCustomers)
	assert.NotEmpty(t, failed.Errors)
	assert.Equal(t, 1, failed.Applied)

	// The other classes went through untouched.
	assert.True(t, classReport(t, report, models.ClassTables).Clean())
	assert.Equal(t, 1, classReport(t, report, models.ClassTables).Uploaded)

	_, err = st.Repos().Customers.Get(ctx, tenant, remote.ID)
	assert.NoError(t, err)
}

func TestSyncBadRecordDoesNotStopTheClass(t *testing.T) {
	st := newTestStore(t)
	gw := newFakeGateway()
	engine := newSyncEngine(st, gw)
	ctx := context.Background()
	tenant := uuid.NewString()

	good := remoteCustomer(tenant, "Asha", time.Now())
	bad := remoteCustomer(tenant, "Ghost", time.Now())
	bad.ID = ""
	gw.serve(t, models.ClassCustomers, []*models.Customer{bad, good})

	report, err := engine.Run(ctx, tenant)
	require.NoError(t, err)

	rep := classReport(t, report, models.ClassCustomers)
	assert.Equal(t, 1, rep.Applied)
	assert.NotEmpty(t, rep.Errors)

	_, err = st.Repos().Customers.Get(ctx, tenant, good.ID)
	assert.NoError(t, err)
}

func TestSyncMarkerAdvancesOnlyAfterCleanRound(t *testing.T) {
	st := newTestStore(t)
	gw := newFakeGateway()
	engine := newSyncEngine(st, gw)
	ctx := context.Background()
	tenant := uuid.NewString()

	seedCustomer(t, st, tenant, "Asha")
	gw.failUpload[models.ClassCustomers] = errors.New("boom")

	report, err := engine.Run(ctx, tenant)
	require.NoError(t, err)
	assert.True(t, report.Initial)
	assert.False(t, report.MarkerAdvanced)

	_, err = st.Repos().SyncState.Get(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Second round still counts as initial: no clean round yet.
	delete(gw.failUpload, models.ClassCustomers)
	report, err = engine.Run(ctx, tenant)
	require.NoError(t, err)
	assert.True(t, report.Initial)
	assert.True(t, report.MarkerAdvanced)

	marker, err := st.Repos().SyncState.Get(ctx)
	require.NoError(t, err)
	assert.WithinDuration(t, report.FinishedAt, marker.LastSyncAt, time.Second)

	// From here on the install is past its initial sync.
	report, err = engine.Run(ctx, tenant)
	require.NoError(t, err)
	assert.False(t, report.Initial)
}

func TestSyncAllClassesFailing(t *testing.T) {
	st := newTestStore(t)
	gw := newFakeGateway()
	gw.failAll = fmt.Errorf("%w: connection refused", gateway.ErrOffline)
	engine := newSyncEngine(st, gw)
	tenant := uuid.NewString()

	report, err := engine.Run(context.Background(), tenant)
	assert.ErrorIs(t, err, ErrSyncFailed)
	require.NotNil(t, report)
	assert.False(t, report.Clean)
	for _, c := range report.Classes {
		assert.NotEmpty(t, c.Errors)
	}
}

func TestSyncOrderRecordsRoundTrip(t *testing.T) {
	st := newTestStore(t)
	gw := newFakeGateway()
	engine := newSyncEngine(st, gw)
	ctx := context.Background()
	tenant := uuid.NewString()

	// A served order from another terminal lands with items intact.
	stamp := time.Now().Truncate(time.Second)
	order := &models.Order{
		SyncMeta: models.SyncMeta{
			ID:          uuid.NewString(),
			TenantID:    tenant,
			CreatedAt:   stamp,
			LastUpdated: stamp,
		},
		OrderNumber: "ORD-20260825-0007",
		OrderType:   models.OrderCounter,
		Status:      models.StatusServed,
		Subtotal:    190,
		Total:       190,
		KOTSequence: 1,
		IsOpen:      false,
	}
	item := &models.OrderItem{
		SyncMeta: models.SyncMeta{
			ID:          uuid.NewString(),
			TenantID:    tenant,
			CreatedAt:   stamp,
			LastUpdated: stamp,
		},
		OrderID:   order.ID,
		Name:      "Masala Dosa",
		Quantity:  2,
		UnitPrice: 80,
		Total:     160,
		KOTNumber: 1,
	}
	gw.serve(t, models.ClassOrders, []*models.Order{order})
	gw.serve(t, models.ClassOrderItems, []*models.OrderItem{item})

	report, err := engine.Run(ctx, tenant)
	require.NoError(t, err)
	assert.True(t, report.Clean)

	got, err := st.Repos().Orders.Get(ctx, tenant, order.ID)
	require.NoError(t, err)
	assert.False(t, got.IsOpen)
	assert.Equal(t, models.StatusServed, got.Status)

	items, err := st.Repos().OrderItems.ListByOrder(ctx, tenant, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Masala Dosa", items[0].Name)
}
