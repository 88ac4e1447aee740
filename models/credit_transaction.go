package models

// CreditTransaction is an append-only ledger entry. Amount is signed:
// positive when a sale is put on credit, negative when the customer
// settles. BalanceAfter snapshots the customer balance right after the
// entry was applied.
type CreditTransaction struct {
	SyncMeta
	CustomerID   string  `gorm:"type:varchar(64);not null;index" json:"customerId"`
	OrderID      *string `gorm:"type:varchar(64);index" json:"orderId,omitempty"`
	Amount       float64 `gorm:"type:decimal(10,2);not null" json:"amount"`
	BalanceAfter float64 `gorm:"type:decimal(10,2);not null" json:"balanceAfter"`
	Note         string  `gorm:"type:varchar(255)" json:"note,omitempty"`
}
