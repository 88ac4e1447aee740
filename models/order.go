package models

type OrderType string

const (
	OrderCounter  OrderType = "counter"
	OrderDineIn   OrderType = "dine_in"
	OrderTakeaway OrderType = "takeaway"
	OrderDelivery OrderType = "delivery"
)

// Valid reports whether the order type is one of the known kinds.
func (t OrderType) Valid() bool {
	switch t {
	case OrderCounter, OrderDineIn, OrderTakeaway, OrderDelivery:
		return true
	}
	return false
}

// Payment methods accepted at billing. An empty method means the
// order has not been settled yet.
const (
	PaymentCash   = "cash"
	PaymentUPI    = "upi"
	PaymentCard   = "card"
	PaymentCredit = "credit"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusServed    OrderStatus = "served"
	StatusCancelled OrderStatus = "cancelled"
)

// Terminal reports whether the status closes the order.
func (s OrderStatus) Terminal() bool {
	return s == StatusServed || s == StatusCancelled
}

// Valid reports whether the status is one of the known states.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusServed, StatusCancelled:
		return true
	}
	return false
}

type Order struct {
	SyncMeta
	OrderNumber   string      `gorm:"type:varchar(40);index" json:"orderNumber"`
	CustomerID    *string     `gorm:"type:varchar(64);index" json:"customerId,omitempty"`
	CustomerName  string      `gorm:"type:varchar(120)" json:"customerName,omitempty"`
	TableID       *string     `gorm:"type:varchar(64);index" json:"tableId,omitempty"`
	OrderType     OrderType   `gorm:"type:varchar(20);not null;default:'counter'" json:"orderType"`
	Status        OrderStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Subtotal      float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"subtotal"`
	Tax           float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"tax"`
	Discount      float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"discount"`
	Total         float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"total"`
	PaymentMethod string      `gorm:"type:varchar(20)" json:"paymentMethod,omitempty"`
	KOTSequence   int         `gorm:"not null;default:0" json:"kotSequence"`
	IsOpen        bool        `gorm:"not null;index" json:"isOpen"`
	Note          string      `gorm:"type:text" json:"note,omitempty"`
}

// DineInTable returns the table identifier when the order occupies one.
func (o *Order) DineInTable() (string, bool) {
	if o.OrderType == OrderDineIn && o.TableID != nil && *o.TableID != "" {
		return *o.TableID, true
	}
	return "", false
}
