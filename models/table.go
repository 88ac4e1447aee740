package models

type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableBusy      TableStatus = "busy"
)

// Table status is derived from open dine-in orders; the lifecycle
// manager is the only writer of Status.
type Table struct {
	SyncMeta
	Name     string      `gorm:"type:varchar(50);not null" json:"name"`
	Capacity int         `gorm:"not null;default:0" json:"capacity"`
	Status   TableStatus `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
}
