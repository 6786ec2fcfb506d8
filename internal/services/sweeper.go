package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper periodically evicts idle sessions from a SessionStore.
type Sweeper struct {
	store    *SessionStore
	idleTTL  time.Duration
	interval time.Duration
	logger   zerolog.Logger

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewSweeper(store *SessionStore, idleTTL, interval time.Duration, logger zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		store:    store,
		idleTTL:  idleTTL,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.run(ctx)
	s.logger.Info().Dur("idle_ttl", s.idleTTL).Dur("interval", s.interval).Msg("🧹 Session sweeper started")
}

func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
	s.logger.Info().Msg("✅ Session sweeper stopped")
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(time.Now())
		}
	}
}

// SweepOnce evicts sessions idle for longer than the TTL at now.
func (s *Sweeper) SweepOnce(now time.Time) int {
	evicted := s.store.EvictIdle(now.Add(-s.idleTTL))
	if evicted > 0 {
		s.logger.Info().Int("evicted", evicted).Int("remaining", s.store.Len()).Msg("🧹 Evicted idle sessions")
	}
	return evicted
}
