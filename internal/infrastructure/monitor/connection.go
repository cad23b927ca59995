package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/kanban/internal/infrastructure/buffer"
)

// Probe checks one dependency. A nil Probe counts as down.
type Probe func(ctx context.Context) error

// Probes groups the checks the monitor runs on every refresh.
type Probes struct {
	Postgres Probe
	Redis    Probe
	Buffer   func() (int, error)
}

// Monitor polls the backing stores and caches the result for cheap reads.
type Monitor struct {
	probes   Probes
	interval time.Duration
	logger   *zap.Logger

	mu     sync.RWMutex
	status Status

	stopOnce sync.Once
	stopCh   chan struct{}
}

// New builds a monitor over the live connections.
func New(pg *pgxpool.Pool, redis *redislib.Client, buf *buffer.Store, interval time.Duration, logger *zap.Logger) *Monitor {
	var probes Probes
	if pg != nil {
		probes.Postgres = pg.Ping
	}
	if redis != nil {
		probes.Redis = func(ctx context.Context) error { return redis.Ping(ctx).Err() }
	}
	if buf != nil {
		probes.Buffer = buf.Len
	}
	return NewWithProbes(probes, interval, logger)
}

func NewWithProbes(probes Probes, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		probes:   probes,
		interval: interval,
		logger:   logger.Named("monitor"),
		stopCh:   make(chan struct{}),
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline reports whether Postgres and Redis answered the last check.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Online()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh()
	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs every probe once and stores the outcome.
func (m *Monitor) Refresh() Status {
	next := Status{
		PostgreSQL: check(m.probes.Postgres, 3*time.Second),
		Redis:      check(m.probes.Redis, 2*time.Second),
		LastCheck:  time.Now(),
	}
	if m.probes.Buffer != nil {
		size, err := m.probes.Buffer()
		if err != nil {
			m.logger.Warn("buffer size check failed", zap.Error(err))
		}
		next.Buffer = err == nil
		next.BufferSize = size
	}

	m.mu.Lock()
	prev := m.status
	next.Transitions = prev.Transitions
	if !prev.LastCheck.IsZero() && prev.Online() != next.Online() {
		next.Transitions++
		if next.Online() {
			m.logger.Info("stores back online")
		} else {
			m.logger.Warn("stores offline",
				zap.Bool("postgresql", next.PostgreSQL),
				zap.Bool("redis", next.Redis))
		}
	}
	m.status = next
	m.mu.Unlock()
	return next
}

func check(probe Probe, timeout time.Duration) bool {
	if probe == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return probe(ctx) == nil
}
