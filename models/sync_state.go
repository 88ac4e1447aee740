package models

import "time"

// SyncState is the single-row sync marker recording when the last
// fully clean round finished. A missing row means no round has ever
// completed cleanly, which makes the next round an initial sync.
type SyncState struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	LastSyncAt time.Time `json:"lastSyncAt"`
}
