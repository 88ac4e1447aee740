package models

type MenuItem struct {
	SyncMeta
	CategoryID  string  `gorm:"type:varchar(64);not null;index" json:"categoryId"`
	Name        string  `gorm:"type:varchar(100);not null" json:"name"`
	Price       float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	IsAvailable bool    `gorm:"not null" json:"isAvailable"`
}
