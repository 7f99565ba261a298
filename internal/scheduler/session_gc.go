package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/portal/internal/logger"
)

// IdleSessions is a session store that can drop sessions by last activity.
type IdleSessions interface {
	DeleteIdle(cutoff time.Time) int
	Len() int
}

// SessionCollector periodically drops sessions idle for longer than ttl.
type SessionCollector struct {
	sessions IdleSessions
	logger   logger.Logger
	interval time.Duration
	ttl      time.Duration
	now      func() time.Time

	started  bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewSessionCollector creates a collector. now defaults to time.Now.
func NewSessionCollector(
	sessions IdleSessions,
	log logger.Logger,
	interval time.Duration,
	ttl time.Duration,
	now func() time.Time,
) *SessionCollector {
	if now == nil {
		now = time.Now
	}
	return &SessionCollector{
		sessions: sessions,
		logger:   log,
		interval: interval,
		ttl:      ttl,
		now:      now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs one collection immediately, then one per interval until ctx is
// cancelled or Stop is called.
func (gc *SessionCollector) Start(ctx context.Context) {
	gc.started = true
	gc.Collect()

	ticker := time.NewTicker(gc.interval)
	go func() {
		defer close(gc.doneCh)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				gc.Collect()
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the collection loop and waits for it to exit.
func (gc *SessionCollector) Stop() {
	gc.stopOnce.Do(func() { close(gc.stopCh) })
	if gc.started {
		<-gc.doneCh
	}
}

// Collect removes idle sessions and returns how many were dropped.
func (gc *SessionCollector) Collect() int {
	deleted := gc.sessions.DeleteIdle(gc.now().Add(-gc.ttl))
	if deleted > 0 {
		gc.logger.Info("idle sessions collected",
			logger.Int("deleted", deleted),
			logger.Int("remaining", gc.sessions.Len()),
			logger.Duration("idle_ttl", gc.ttl))
	} else {
		gc.logger.Debug("no idle sessions to collect")
	}
	return deleted
}
