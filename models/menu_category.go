package models

type MenuCategory struct {
	SyncMeta
	Name      string `gorm:"type:varchar(100);not null" json:"name"`
	SortOrder int    `gorm:"not null;default:0" json:"sortOrder"`
}
