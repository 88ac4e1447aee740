package models

// PaymentSettings is a per-tenant singleton. Its row ID equals the
// tenant ID so upserts from any replica converge on one record.
// Boolean columns carry no database default: false must round-trip
// unchanged through the upsert write path.
type PaymentSettings struct {
	SyncMeta
	UPIID       string `gorm:"type:varchar(100)" json:"upiId,omitempty"`
	AcceptCash  bool   `gorm:"not null" json:"acceptCash"`
	AcceptUPI   bool   `gorm:"not null" json:"acceptUpi"`
	AcceptCard  bool   `gorm:"not null" json:"acceptCard"`
	AllowCredit bool   `gorm:"not null" json:"allowCredit"`
}
