package models

// Tax is a percentage applied to the order subtotal. Only enabled
// taxes participate in cart totals.
type Tax struct {
	SyncMeta
	Name    string  `gorm:"type:varchar(100);not null" json:"name"`
	Rate    float64 `gorm:"type:decimal(10,2);not null" json:"rate"`
	Enabled bool    `gorm:"not null" json:"enabled"`
}
