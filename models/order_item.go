package models

type OrderItem struct {
	SyncMeta
	OrderID    string  `gorm:"type:varchar(64);not null;index" json:"orderId"`
	MenuItemID string  `gorm:"type:varchar(64);index" json:"menuItemId"`
	Name       string  `gorm:"type:varchar(120);not null" json:"name"`
	Quantity   int     `gorm:"not null" json:"quantity"`
	UnitPrice  float64 `gorm:"type:decimal(10,2);not null" json:"unitPrice"`
	Total      float64 `gorm:"type:decimal(10,2);not null" json:"total"`
	// KOTNumber ties the item to the kitchen ticket that produced it;
	// 0 means the order bypassed the kitchen (quick bill).
	KOTNumber int    `gorm:"not null;default:0;index" json:"kotNumber"`
	Note      string `gorm:"type:text" json:"note,omitempty"`
}
