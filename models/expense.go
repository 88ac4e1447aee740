package models

import "time"

type Expense struct {
	SyncMeta
	Category string    `gorm:"type:varchar(100);not null" json:"category"`
	Amount   float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Note     string    `gorm:"type:varchar(255)" json:"note,omitempty"`
	SpentAt  time.Time `gorm:"not null;index" json:"spentAt"`
}
