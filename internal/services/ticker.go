package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Ticker recomputes derived card state.
type Ticker interface {
	Tick(ctx context.Context) (int, error)
}

// BoardTicker runs the board tick on a fixed schedule.
type BoardTicker struct {
	target   Ticker
	interval time.Duration
	cron     *cron.Cron
	logger   *zap.Logger
}

func NewBoardTicker(target Ticker, interval time.Duration, logger *zap.Logger) *BoardTicker {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &BoardTicker{
		target:   target,
		interval: interval,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.Named("ticker"),
	}
	schedule := fmt.Sprintf("@every %s", interval)
	if _, err := t.cron.AddFunc(schedule, t.Run); err != nil {
		t.logger.Error("invalid tick schedule", zap.String("schedule", schedule), zap.Error(err))
	}
	return t
}

// Run performs one tick.
func (t *BoardTicker) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), t.interval)
	defer cancel()

	updated, err := t.target.Tick(ctx)
	if err != nil {
		t.logger.Warn("board tick incomplete", zap.Int("updated", updated), zap.Error(err))
		return
	}
	if updated > 0 {
		t.logger.Debug("board tick", zap.Int("updated", updated))
	}
}

func (t *BoardTicker) Start() {
	t.cron.Start()
	t.logger.Info("board ticker started", zap.Duration("interval", t.interval))
}

func (t *BoardTicker) Stop(ctx context.Context) {
	stopCtx := t.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
}
