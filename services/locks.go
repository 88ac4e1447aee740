package services

import "sync"

// LockTable serializes the read-modify-write window per entity id.
// The lifecycle operations and the sync apply step take the same keys,
// so a local continuation and a remote overwrite of the same order
// never interleave. Locks must be acquired before opening a database
// transaction, and nested acquisition follows order, then table, then
// customer.
type LockTable struct {
	mu    sync.Mutex
	locks map[string]*entityLock
}

type entityLock struct {
	mu   sync.Mutex
	refs int
}

func NewLockTable() *LockTable {
	return &LockTable{locks: make(map[string]*entityLock)}
}

// Lock acquires the mutex for key, creating it on first use.
func (t *LockTable) Lock(key string) {
	t.mu.Lock()
	l, ok := t.locks[key]
	if !ok {
		l = &entityLock{}
		t.locks[key] = l
	}
	l.refs++
	t.mu.Unlock()

	l.mu.Lock()
}

// Unlock releases the mutex for key and discards it once nobody waits.
func (t *LockTable) Unlock(key string) {
	t.mu.Lock()
	l, ok := t.locks[key]
	if !ok {
		t.mu.Unlock()
		panic("services: unlock of unheld lock " + key)
	}
	l.refs--
	if l.refs == 0 {
		delete(t.locks, key)
	}
	t.mu.Unlock()

	l.mu.Unlock()
}

func orderKey(id string) string    { return "order/" + id }
func tableKey(id string) string    { return "table/" + id }
func customerKey(id string) string { return "customer/" + id }
