package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const sweepLockKey = "content:orphan_sweep:lock"

// Locker is the part of *redis.Client used to keep sweeps of several workers apart
type Locker interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// OrphanSweeper removes unlinked content records
type OrphanSweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// Sweeper runs the orphan sweep on a cron schedule
type Sweeper struct {
	locker  Locker
	orphans OrphanSweeper
	logger  *zap.Logger
	cron    *cron.Cron
	lockTTL time.Duration
}

// NewSweeper creates a sweeper for a standard cron expression or descriptor such as "@hourly"
func NewSweeper(locker Locker, orphans OrphanSweeper, logger *zap.Logger, schedule string) (*Sweeper, error) {
	s := &Sweeper{
		locker:  locker,
		orphans: orphans,
		logger:  logger,
		cron:    cron.New(),
		lockTTL: 10 * time.Minute,
	}

	if _, err := s.cron.AddFunc(schedule, func() { s.runOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	return s, nil
}

// Start starts the sweeper
func (s *Sweeper) Start() {
	s.cron.Start()
	s.logger.Info("Sweeper started")
}

// Stop stops the sweeper and waits for a running sweep
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Sweeper stopped")
}

// runOnce sweeps unless another worker holds the lock
func (s *Sweeper) runOnce(ctx context.Context) {
	acquired, err := s.locker.SetNX(ctx, sweepLockKey, time.Now().Unix(), s.lockTTL).Result()
	if err != nil {
		s.logger.Error("Failed to acquire sweep lock", zap.Error(err))
		return
	}
	if !acquired {
		s.logger.Debug("Sweep already running elsewhere")
		return
	}
	defer s.locker.Del(ctx, sweepLockKey)

	cleaned, err := s.orphans.Sweep(ctx)
	if err != nil {
		s.logger.Error("Orphan sweep failed", zap.Error(err))
		return
	}

	s.logger.Info("Orphan sweep finished", zap.Int("cleaned", cleaned))
}
