package models

import (
	"time"

	"github.com/google/uuid"
)

// Entity class names as they travel on the sync wire. They double as
// stable identifiers in sync reports and logs.
const (
	ClassOrders             = "orders"
	ClassOrderItems         = "order_items"
	ClassTables             = "tables"
	ClassCustomers          = "customers"
	ClassCreditTransactions = "credit_transactions"
	ClassMenuCategories     = "menu_categories"
	ClassMenuItems          = "menu_items"
	ClassTaxes              = "taxes"
	ClassAdditionalCharges  = "additional_charges"
	ClassExpenses           = "expenses"
	ClassPaymentSettings    = "payment_settings"
	ClassRestaurantInfo     = "restaurant_info"
)

// SyncMeta is embedded by every replicated entity. LastUpdated is the
// conflict-resolution authority, so it is owned by the code paths that
// mutate records: local writes stamp it with the wall clock, the sync
// apply step preserves the remote value. It is deliberately not wired
// to GORM's automatic update timestamps.
type SyncMeta struct {
	ID          string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	TenantID    string    `gorm:"type:varchar(64);not null;index" json:"tenantId"`
	CreatedAt   time.Time `json:"createdAt"`
	LastUpdated time.Time `gorm:"index" json:"lastUpdated"`
}

// Meta exposes the embedded sync fields through the Entity interface.
func (m *SyncMeta) Meta() *SyncMeta { return m }

// Touch stamps the record for a local write: missing id and created
// time are filled in, lastUpdated always moves to now. Sync applies
// never call this; they keep the remote timestamps.
func (m *SyncMeta) Touch(tenantID string, now time.Time) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.TenantID = tenantID
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.LastUpdated = now
}

// Entity is satisfied by every model that embeds SyncMeta.
type Entity interface {
	Meta() *SyncMeta
}

// EntityPtr constrains a pointer type to models whose sync fields are
// reachable, which is what the generic repository and the sync engine
// operate on.
type EntityPtr[T any] interface {
	*T
	Entity
}
