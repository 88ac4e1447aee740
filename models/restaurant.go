package models

// RestaurantInfo is the replicated per-tenant singleton with the
// details printed on bills. Row ID equals the tenant ID.
type RestaurantInfo struct {
	SyncMeta
	Name    string `gorm:"type:varchar(150);not null" json:"name"`
	Address string `gorm:"type:varchar(255)" json:"address,omitempty"`
	Phone   string `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Email   string `gorm:"type:varchar(100)" json:"email,omitempty"`
	GSTIN   string `gorm:"type:varchar(20)" json:"gstin,omitempty"`
}

// RestaurantSettings holds device-local preferences plus the owner
// PIN hash. It never leaves the device, so the PIN hash is excluded
// from JSON entirely.
type RestaurantSettings struct {
	SyncMeta
	CurrencySymbol string `gorm:"type:varchar(8);not null" json:"currencySymbol"`
	ReceiptFooter  string `gorm:"type:varchar(255)" json:"receiptFooter,omitempty"`
	KOTEnabled     bool   `gorm:"not null" json:"kotEnabled"`
	PrinterWidth   int    `gorm:"not null" json:"printerWidth"`
	OwnerPINHash   string `gorm:"type:varchar(100)" json:"-"`
}

// DefaultRestaurantSettings seeds the device-local settings row the
// first time a tenant opens the app.
func DefaultRestaurantSettings(tenantID string) *RestaurantSettings {
	return &RestaurantSettings{
		SyncMeta:       SyncMeta{ID: tenantID, TenantID: tenantID},
		CurrencySymbol: "₹",
		KOTEnabled:     true,
		PrinterWidth:   32,
	}
}
