package store

import "errors"

// ErrNotFound is returned when a record does not exist for the given
// tenant. A row owned by a different tenant is reported as not found
// rather than as a permission failure, so callers cannot probe for
// foreign data.
var ErrNotFound = errors.New("record not found")
