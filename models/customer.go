package models

// Customer.CreditBalance is an accumulator over the credit ledger: it
// always equals the running sum of the customer's CreditTransaction
// amounts.
type Customer struct {
	SyncMeta
	Name          string  `gorm:"type:varchar(120);not null" json:"name"`
	Phone         string  `gorm:"type:varchar(30);index" json:"phone,omitempty"`
	CreditBalance float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"creditBalance"`
}
