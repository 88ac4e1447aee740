package models

// AdditionalCharge is a flat amount (service charge, packing fee)
// added on top of the taxed subtotal when enabled.
type AdditionalCharge struct {
	SyncMeta
	Name    string  `gorm:"type:varchar(100);not null" json:"name"`
	Amount  float64 `gorm:"type:decimal(10,2);not null" json:"amount"`
	Enabled bool    `gorm:"not null" json:"enabled"`
}
