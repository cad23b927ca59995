package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/internal/infrastructure/buffer"
	"github.com/fastygo/kanban/repository"
)

// ConnectionHealth reports whether the primary stores are reachable.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls how the outbox is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// BufferProcessor writes deferred activity entries and profile updates to
// Postgres once it is reachable again.
type BufferProcessor struct {
	store      *buffer.Store
	monitor    ConnectionHealth
	activities repository.ActivityRepository
	users      repository.UserRepository
	logger     *zap.Logger
	cron       *cron.Cron
	cfg        ProcessorConfig
}

func NewBufferProcessor(
	store *buffer.Store,
	monitor ConnectionHealth,
	activities repository.ActivityRepository,
	users repository.UserRepository,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *BufferProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bp := &BufferProcessor{
		store:      store,
		monitor:    monitor,
		activities: activities,
		users:      users,
		logger:     logger.Named("buffer"),
		cfg:        cfg,
		cron:       cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %s", cfg.Interval)
	if _, err := bp.cron.AddFunc(schedule, bp.runScheduled); err != nil {
		bp.logger.Error("invalid drain schedule", zap.String("schedule", schedule), zap.Error(err))
	}
	return bp
}

// Start launches the cron scheduler.
func (bp *BufferProcessor) Start() {
	if bp == nil || bp.cron == nil {
		return
	}
	bp.cron.Start()
	bp.logger.Info("buffer processor started", zap.Duration("interval", bp.cfg.Interval))
}

// Stop waits for a running drain to finish or for ctx to expire.
func (bp *BufferProcessor) Stop(ctx context.Context) {
	if bp == nil || bp.cron == nil {
		return
	}
	stopCtx := bp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	bp.logger.Info("buffer processor stopped")
}

func (bp *BufferProcessor) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), bp.cfg.Interval)
	defer cancel()
	if _, err := bp.Drain(ctx); err != nil {
		bp.logger.Error("buffer drain failed", zap.Error(err))
	}
	if bp.cfg.Retention > 0 {
		if n, err := bp.store.Purge(time.Now().Add(-bp.cfg.Retention)); err != nil {
			bp.logger.Warn("buffer purge failed", zap.Error(err))
		} else if n > 0 {
			bp.logger.Warn("expired buffer items dropped", zap.Int("count", n))
		}
	}
}

// Drain replays one batch and returns how many items were written.
func (bp *BufferProcessor) Drain(ctx context.Context) (int, error) {
	if bp == nil || bp.store == nil {
		return 0, nil
	}
	if bp.monitor != nil && !bp.monitor.IsOnline() {
		bp.logger.Debug("skipping buffer drain (offline)")
		return 0, nil
	}

	items, err := bp.store.Peek(bp.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, item := range items {
		if ctx.Err() != nil {
			return written, ctx.Err()
		}
		if err := bp.apply(ctx, item); err != nil {
			bp.logger.Warn("buffer item failed",
				zap.String("item_id", item.ID),
				zap.String("entity", item.Entity),
				zap.Int("attempts", item.Attempts+1),
				zap.Error(err))

			if item.Attempts+1 >= bp.cfg.MaxRetries {
				bp.logger.Error("dropping buffer item (max retries reached)", zap.String("item_id", item.ID))
				if err := bp.store.Ack(item); err != nil {
					bp.logger.Warn("failed to drop buffer item", zap.Error(err))
				}
				continue
			}
			if err := bp.store.Retry(item); err != nil {
				bp.logger.Error("failed to requeue buffer item", zap.Error(err))
			}
			continue
		}

		written++
		if err := bp.store.Ack(item); err != nil {
			bp.logger.Warn("failed to purge processed buffer item", zap.Error(err))
		}
	}
	if written > 0 {
		bp.logger.Info("buffer drained", zap.Int("written", written))
	}
	return written, nil
}

// Submit writes item immediately when the stores are online and keeps it on
// disk otherwise.
func (bp *BufferProcessor) Submit(ctx context.Context, item buffer.Item) error {
	if bp == nil || bp.store == nil {
		return errors.New("buffer processor not configured")
	}
	if bp.monitor == nil || bp.monitor.IsOnline() {
		err := bp.apply(ctx, item)
		if err == nil {
			return nil
		}
		bp.logger.Warn("immediate write failed, buffering", zap.String("entity", item.Entity), zap.Error(err))
	}
	return bp.store.Enqueue(item)
}

// Pending returns the number of buffered items.
func (bp *BufferProcessor) Pending() int {
	if bp == nil || bp.store == nil {
		return 0
	}
	n, err := bp.store.Len()
	if err != nil {
		return 0
	}
	return n
}

func (bp *BufferProcessor) apply(ctx context.Context, item buffer.Item) error {
	switch item.Entity {
	case buffer.EntityActivity:
		if bp.activities == nil {
			return errors.New("activity repository not configured")
		}
		var activity domain.Activity
		if err := json.Unmarshal(item.Data, &activity); err != nil {
			return err
		}
		return bp.activities.Append(ctx, &activity)

	case buffer.EntityProfile:
		if bp.users == nil {
			return errors.New("user repository not configured")
		}
		var user domain.User
		if err := json.Unmarshal(item.Data, &user); err != nil {
			return err
		}
		return bp.users.Upsert(ctx, &user)

	default:
		return fmt.Errorf("unsupported entity %s", item.Entity)
	}
}
