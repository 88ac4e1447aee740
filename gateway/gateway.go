// Package gateway talks to the cloud replication endpoint. The rest
// of the system only sees the Client interface, so tests swap in a
// fake and the sync engine never learns about HTTP.
package gateway

import (
	"context"
	"errors"
)

// ErrOffline marks connectivity failures: the request never reached
// the gateway or no response came back. Callers treat it as "try
// again later", unlike a rejection the gateway actually returned.
var ErrOffline = errors.New("sync gateway unreachable")

// UploadResult is the gateway's acknowledgement for one class upload.
type UploadResult struct {
	SyncedRecords int `json:"syncedRecords"`
}

// Client is one tenant's view of the replication endpoint. Upload
// pushes the full local set for a class; Download fills out (a
// pointer to a slice of the class's model) with the cloud set.
type Client interface {
	Upload(ctx context.Context, tenantID, class string, records interface{}) (UploadResult, error)
	Download(ctx context.Context, tenantID, class string, out interface{}) error
}
