package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rasoilabs/rasoipos/events"
	"github.com/rasoilabs/rasoipos/gateway"
	"github.com/rasoilabs/rasoipos/models"
	"github.com/rasoilabs/rasoipos/store"
	"github.com/rasoilabs/rasoipos/utils"
)

// SyncEngine replicates the tenant's data with the cloud gateway in
// two phases: every class uploads its full local set, then every
// class downloads the cloud set and applies it record by record under
// last-writer-wins. Classes fail independently; one unreachable or
// rejected class never blocks the rest of the round.
type SyncEngine struct {
	store        *store.Store
	gateway      gateway.Client
	locks        *LockTable
	hub          *events.Hub
	classTimeout time.Duration
}

func NewSyncEngine(st *store.Store, gw gateway.Client, locks *LockTable, hub *events.Hub, classTimeout time.Duration) *SyncEngine {
	return &SyncEngine{store: st, gateway: gw, locks: locks, hub: hub, classTimeout: classTimeout}
}

// ClassReport is the per-class outcome of one round.
type ClassReport struct {
	Class      string   `json:"class"`
	Uploaded   int      `json:"uploaded"`
	Downloaded int      `json:"downloaded"`
	Applied    int      `json:"applied"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors,omitempty"`
}

func (c *ClassReport) fail(stage string, err error) {
	c.Errors = append(c.Errors, fmt.Sprintf("%s: %v", stage, err))
}

// Clean reports whether the class got through both phases untouched
// by errors.
func (c *ClassReport) Clean() bool { return len(c.Errors) == 0 }

// SyncReport summarizes one round.
type SyncReport struct {
	TenantID       string         `json:"tenantId"`
	StartedAt      time.Time      `json:"startedAt"`
	FinishedAt     time.Time      `json:"finishedAt"`
	Initial        bool           `json:"initial"`
	Classes        []*ClassReport `json:"classes"`
	Clean          bool           `json:"clean"`
	MarkerAdvanced bool           `json:"markerAdvanced"`
}

// Errors flattens the per-class errors for logging.
func (r *SyncReport) Errors() []string {
	var all []string
	for _, c := range r.Classes {
		for _, e := range c.Errors {
			all = append(all, c.Class+": "+e)
		}
	}
	return all
}

func (r *SyncReport) allFailed() bool {
	for _, c := range r.Classes {
		if c.Clean() {
			return false
		}
	}
	return len(r.Classes) > 0
}

// classSyncer binds one entity class to its two phases. The generic
// machinery lives in syncerFor; the engine just walks the list.
type classSyncer struct {
	class    string
	upload   func(ctx context.Context, rep *ClassReport)
	download func(ctx context.Context, rep *ClassReport)
}

// syncers lists every replicated class. Reference data comes first so
// an initial download lands categories before items and tables and
// customers before the orders that point at them. Device settings and
// the sync marker stay local and are absent here.
func (e *SyncEngine) syncers(tenantID string, r *store.Repositories) []classSyncer {
	return []classSyncer{
		syncerFor(e, tenantID, models.ClassMenuCategories, r.MenuCategories, nil),
		syncerFor(e, tenantID, models.ClassMenuItems, r.MenuItems, nil),
		syncerFor(e, tenantID, models.ClassTaxes, r.Taxes, nil),
		syncerFor(e, tenantID, models.ClassAdditionalCharges, r.AdditionalCharges, nil),
		syncerFor(e, tenantID, models.ClassTables, r.Tables.Repository, tableKey),
		syncerFor(e, tenantID, models.ClassCustomers, r.Customers.Repository, customerKey),
		syncerFor(e, tenantID, models.ClassOrders, r.Orders.Repository, orderKey),
		syncerFor(e, tenantID, models.ClassOrderItems, r.OrderItems.Repository, nil),
		syncerFor(e, tenantID, models.ClassCreditTransactions, r.Credits.Repository, nil),
		syncerFor(e, tenantID, models.ClassExpenses, r.Expenses.Repository, nil),
		syncerFor(e, tenantID, models.ClassPaymentSettings, r.PaymentSettings, nil),
		syncerFor(e, tenantID, models.ClassRestaurantInfo, r.RestaurantInfo, nil),
	}
}

// Run executes one full round and always returns the report it
// produced. The error is ErrSyncFailed only when every class failed,
// which usually means the gateway was unreachable outright.
func (e *SyncEngine) Run(ctx context.Context, tenantID string) (*SyncReport, error) {
	repos := e.store.Repos()
	report := &SyncReport{TenantID: tenantID, StartedAt: time.Now()}

	_, err := repos.SyncState.Get(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		report.Initial = true
	case err != nil:
		return nil, fmt.Errorf("read sync marker: %w", err)
	}

	e.hub.SyncStarted()
	utils.InfoLogger.Printf("sync: round started for tenant %s (initial=%v)", tenantID, report.Initial)

	syncers := e.syncers(tenantID, repos)
	report.Classes = make([]*ClassReport, len(syncers))
	for i, sc := range syncers {
		report.Classes[i] = &ClassReport{Class: sc.class}
	}

	for i, sc := range syncers {
		e.runPhase(ctx, sc.upload, report.Classes[i])
	}
	for i, sc := range syncers {
		e.runPhase(ctx, sc.download, report.Classes[i])
	}

	report.FinishedAt = time.Now()
	report.Clean = true
	for _, c := range report.Classes {
		if !c.Clean() {
			report.Clean = false
			break
		}
	}

	// The marker moves only after a fully clean round. A round with any
	// failure leaves it alone, so the install re-enters the next round
	// knowing the last complete reconciliation point.
	if report.Clean {
		if err := repos.SyncState.Save(ctx, report.FinishedAt); err != nil {
			utils.ErrorLogger.Printf("sync: marker save failed: %v", err)
		} else {
			report.MarkerAdvanced = true
		}
	}

	for _, line := range report.Errors() {
		utils.ErrorLogger.Printf("sync: %s", line)
	}
	utils.InfoLogger.Printf("sync: round finished for tenant %s in %s (clean=%v)",
		tenantID, report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond), report.Clean)

	e.hub.SyncCompleted(report)

	if report.allFailed() {
		return report, fmt.Errorf("%w: all %d classes failed", ErrSyncFailed, len(report.Classes))
	}
	return report, nil
}

// runPhase gives each class phase its own deadline so one slow class
// cannot eat the whole round.
func (e *SyncEngine) runPhase(ctx context.Context, phase func(context.Context, *ClassReport), rep *ClassReport) {
	if err := ctx.Err(); err != nil {
		rep.fail("round", err)
		return
	}
	if e.classTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.classTimeout)
		defer cancel()
	}
	phase(ctx, rep)
}

// syncerFor builds the two phases for one class. lockKey, when set,
// names the lock taken around each record apply so sync never races a
// live order or table mutation on the same row.
func syncerFor[T any, P models.EntityPtr[T]](e *SyncEngine, tenantID, class string, repo *store.Repository[T, P], lockKey func(string) string) classSyncer {
	upload := func(ctx context.Context, rep *ClassReport) {
		records, err := repo.List(ctx, tenantID)
		if err != nil {
			rep.fail("load", err)
			return
		}
		if len(records) == 0 {
			return
		}
		ack, err := e.gateway.Upload(ctx, tenantID, class, records)
		if err != nil {
			rep.fail("upload", err)
			return
		}
		rep.Uploaded = len(records)
		if ack.SyncedRecords != len(records) {
			utils.InfoLogger.Printf("sync: %s gateway acknowledged %d of %d uploads",
				class, ack.SyncedRecords, len(records))
		}
	}

	download := func(ctx context.Context, rep *ClassReport) {
		var remote []T
		if err := e.gateway.Download(ctx, tenantID, class, &remote); err != nil {
			rep.fail("download", err)
			return
		}
		rep.Downloaded = len(remote)
		for i := range remote {
			applied, err := applyRemote(ctx, e, tenantID, repo, lockKey, &remote[i])
			if err != nil {
				rep.fail(fmt.Sprintf("apply %s", P(&remote[i]).Meta().ID), err)
				continue
			}
			if applied {
				rep.Applied++
			} else {
				rep.Skipped++
			}
		}
	}

	return classSyncer{class: class, upload: upload, download: download}
}

// applyRemote writes one downloaded record if it wins against the
// local copy. The remote lastUpdated is stored as-is: re-stamping it
// here would make the record look newer than the cloud copy and echo
// around forever.
func applyRemote[T any, P models.EntityPtr[T]](ctx context.Context, e *SyncEngine, tenantID string, repo *store.Repository[T, P], lockKey func(string) string, rec *T) (bool, error) {
	meta := P(rec).Meta()
	if meta.ID == "" {
		return false, fmt.Errorf("record without id")
	}
	if lockKey != nil {
		key := lockKey(meta.ID)
		e.locks.Lock(key)
		defer e.locks.Unlock(key)
	}

	var localMeta *models.SyncMeta
	local, err := repo.Get(ctx, tenantID, meta.ID)
	switch {
	case err == nil:
		localMeta = P(local).Meta()
	case errors.Is(err, store.ErrNotFound):
	default:
		return false, err
	}

	if !remoteWins(localMeta, meta) {
		return false, nil
	}
	if err := repo.Upsert(ctx, tenantID, rec); err != nil {
		return false, err
	}
	return true, nil
}

// remoteWins decides the conflict: the newer lastUpdated takes the
// row, a tie goes to the remote copy, and a missing or zero timestamp
// on either side lets the remote through rather than wedging the
// record.
func remoteWins(local, remote *models.SyncMeta) bool {
	if local == nil {
		return true
	}
	if remote.LastUpdated.IsZero() || local.LastUpdated.IsZero() {
		return true
	}
	return !remote.LastUpdated.Before(local.LastUpdated)
}
