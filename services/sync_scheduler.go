package services

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rasoilabs/rasoipos/utils"
)

// SyncScheduler runs the engine on a fixed interval and lets the API
// trigger a round on demand. Rounds never overlap: a trigger while
// one is in flight reports ErrSyncBusy, a tick in the same situation
// is skipped quietly.
type SyncScheduler struct {
	engine   *SyncEngine
	tenantID string
	Interval time.Duration
	StopChan chan struct{}
	running  atomic.Bool
}

func NewSyncScheduler(engine *SyncEngine, tenantID string, interval time.Duration) *SyncScheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SyncScheduler{
		engine:   engine,
		tenantID: tenantID,
		Interval: interval,
		StopChan: make(chan struct{}),
	}
}

func (s *SyncScheduler) Start() {
	go func() {
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := s.TriggerNow(context.Background()); err != nil && !errors.Is(err, ErrSyncBusy) {
					utils.ErrorLogger.Printf("sync: scheduled round: %v", err)
				}
			case <-s.StopChan:
				return
			}
		}
	}()
	utils.InfoLogger.Printf("sync: scheduler started, every %s", s.Interval)
}

func (s *SyncScheduler) Stop() {
	close(s.StopChan)
}

// TriggerNow runs one round immediately, or reports ErrSyncBusy when
// a round is already in flight.
func (s *SyncScheduler) TriggerNow(ctx context.Context) (*SyncReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSyncBusy
	}
	defer s.running.Store(false)
	return s.engine.Run(ctx, s.tenantID)
}

// Running reports whether a round is currently in flight.
func (s *SyncScheduler) Running() bool {
	return s.running.Load()
}
