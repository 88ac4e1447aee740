package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rasoilabs/rasoipos/models"
)

// Repositories bundles one repository per entity class, all bound to
// the same connection. Inside Store.Transaction the bundle is rebound
// to the transaction, so callers never touch *gorm.DB directly.
//
// Singleton classes (PaymentSettings, RestaurantInfo,
// RestaurantSettings) store their row under id == tenant id, so
// Get(ctx, tenant, tenant) addresses them from any replica.
type Repositories struct {
	db *gorm.DB

	Orders             *OrderRepo
	OrderItems         *OrderItemRepo
	Tables             *TableRepo
	Customers          *CustomerRepo
	Credits            *CreditRepo
	MenuCategories     *Repository[models.MenuCategory, *models.MenuCategory]
	MenuItems          *Repository[models.MenuItem, *models.MenuItem]
	Taxes              *Repository[models.Tax, *models.Tax]
	AdditionalCharges  *Repository[models.AdditionalCharge, *models.AdditionalCharge]
	Expenses           *ExpenseRepo
	PaymentSettings    *Repository[models.PaymentSettings, *models.PaymentSettings]
	RestaurantInfo     *Repository[models.RestaurantInfo, *models.RestaurantInfo]
	RestaurantSettings *Repository[models.RestaurantSettings, *models.RestaurantSettings]
	SyncState          *SyncStateRepo
}

func newRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:                 db,
		Orders:             &OrderRepo{newRepository[models.Order, *models.Order](db)},
		OrderItems:         &OrderItemRepo{newRepository[models.OrderItem, *models.OrderItem](db)},
		Tables:             &TableRepo{newRepository[models.Table, *models.Table](db)},
		Customers:          &CustomerRepo{newRepository[models.Customer, *models.Customer](db)},
		Credits:            &CreditRepo{newRepository[models.CreditTransaction, *models.CreditTransaction](db)},
		MenuCategories:     newRepository[models.MenuCategory, *models.MenuCategory](db),
		MenuItems:          newRepository[models.MenuItem, *models.MenuItem](db),
		Taxes:              newRepository[models.Tax, *models.Tax](db),
		AdditionalCharges:  newRepository[models.AdditionalCharge, *models.AdditionalCharge](db),
		Expenses:           &ExpenseRepo{newRepository[models.Expense, *models.Expense](db)},
		PaymentSettings:    newRepository[models.PaymentSettings, *models.PaymentSettings](db),
		RestaurantInfo:     newRepository[models.RestaurantInfo, *models.RestaurantInfo](db),
		RestaurantSettings: newRepository[models.RestaurantSettings, *models.RestaurantSettings](db),
		SyncState:          &SyncStateRepo{db: db},
	}
}

// OrderRepo adds the order-specific queries on top of the generic
// CRUD core. All SQL that knows order columns lives here.
type OrderRepo struct {
	*Repository[models.Order, *models.Order]
}

// ListOpen returns the tenant's open orders, newest first.
func (r *OrderRepo) ListOpen(ctx context.Context, tenantID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_open = ?", tenantID, true).
		Order("created_at DESC, id").
		Find(&orders).Error
	return orders, err
}

// ListByStatus returns the tenant's orders in one status, newest first.
func (r *OrderRepo) ListByStatus(ctx context.Context, tenantID string, status models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, status).
		Order("created_at DESC, id").
		Find(&orders).Error
	return orders, err
}

// OpenDineInByTable returns the open dine-in orders occupying a table.
func (r *OrderRepo) OpenDineInByTable(ctx context.Context, tenantID, tableID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND table_id = ? AND order_type = ? AND is_open = ?",
			tenantID, tableID, models.OrderDineIn, true).
		Find(&orders).Error
	return orders, err
}

// CountForDay counts orders created on the given local day. The next
// order number for the day is this count plus one.
func (r *OrderRepo) CountForDay(ctx context.Context, tenantID string, day time.Time) (int64, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("tenant_id = ? AND created_at >= ? AND created_at < ?", tenantID, start, end).
		Count(&n).Error
	return n, err
}

// AddTotals adds the deltas to the order's money columns in a single
// statement, so concurrent additions from two terminals never lose an
// update.
func (r *OrderRepo) AddTotals(ctx context.Context, tenantID, id string, subtotal, tax, discount, total float64, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(map[string]any{
			"subtotal":     gorm.Expr("subtotal + ?", subtotal),
			"tax":          gorm.Expr("tax + ?", tax),
			"discount":     gorm.Expr("discount + ?", discount),
			"total":        gorm.Expr("total + ?", total),
			"last_updated": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementKOT bumps the order's kitchen ticket sequence atomically.
// Callers read the order back for the new value.
func (r *OrderRepo) IncrementKOT(ctx context.Context, tenantID, id string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(map[string]any{
			"kot_sequence": gorm.Expr("kot_sequence + 1"),
			"last_updated": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type OrderItemRepo struct {
	*Repository[models.OrderItem, *models.OrderItem]
}

// ListByOrder returns an order's items grouped by ticket, oldest first.
func (r *OrderItemRepo) ListByOrder(ctx context.Context, tenantID, orderID string) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Order("kot_number, created_at, id").
		Find(&items).Error
	return items, err
}

// ListByOrderAndKOT returns the items on one kitchen ticket.
func (r *OrderItemRepo) ListByOrderAndKOT(ctx context.Context, tenantID, orderID string, kot int) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND order_id = ? AND kot_number = ?", tenantID, orderID, kot).
		Order("created_at, id").
		Find(&items).Error
	return items, err
}

type TableRepo struct {
	*Repository[models.Table, *models.Table]
}

// SetStatus flips a table's occupancy status.
func (r *TableRepo) SetStatus(ctx context.Context, tenantID, id string, status models.TableStatus, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Table{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(map[string]any{
			"status":       status,
			"last_updated": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type CustomerRepo struct {
	*Repository[models.Customer, *models.Customer]
}

// AddCreditBalance adds a signed delta to the customer's balance in a
// single statement and returns the customer with the new balance.
func (r *CustomerRepo) AddCreditBalance(ctx context.Context, tenantID, id string, delta float64, at time.Time) (*models.Customer, error) {
	res := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(map[string]any{
			"credit_balance": gorm.Expr("credit_balance + ?", delta),
			"last_updated":   at,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, tenantID, id)
}

type CreditRepo struct {
	*Repository[models.CreditTransaction, *models.CreditTransaction]
}

// ListByCustomer returns the customer's ledger, oldest entry first.
func (r *CreditRepo) ListByCustomer(ctx context.Context, tenantID, customerID string) ([]models.CreditTransaction, error) {
	var entries []models.CreditTransaction
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Order("created_at, id").
		Find(&entries).Error
	return entries, err
}

type ExpenseRepo struct {
	*Repository[models.Expense, *models.Expense]
}

// ListBetween returns expenses spent in [from, to), oldest first.
func (r *ExpenseRepo) ListBetween(ctx context.Context, tenantID string, from, to time.Time) ([]models.Expense, error) {
	var expenses []models.Expense
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND spent_at >= ? AND spent_at < ?", tenantID, from, to).
		Order("spent_at, id").
		Find(&expenses).Error
	return expenses, err
}

// SyncStateRepo manages the single last-sync marker row. The marker is
// per install, not per tenant, so it sits outside the generic layer.
type SyncStateRepo struct {
	db *gorm.DB
}

const syncStateRowID = 1

// Get returns the marker, or ErrNotFound before the first clean round.
func (r *SyncStateRepo) Get(ctx context.Context) (*models.SyncState, error) {
	var st models.SyncState
	err := r.db.WithContext(ctx).First(&st, syncStateRowID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &st, nil
}

// Save records the completion time of a clean sync round.
func (r *SyncStateRepo) Save(ctx context.Context, at time.Time) error {
	st := models.SyncState{ID: syncStateRowID, LastSyncAt: at}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&st).Error
}
