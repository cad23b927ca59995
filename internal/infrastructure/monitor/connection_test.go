package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRefreshTracksTransitions(t *testing.T) {
	var pgErr error
	probes := Probes{
		Postgres: func(context.Context) error { return pgErr },
		Redis:    func(context.Context) error { return nil },
		Buffer:   func() (int, error) { return 4, nil },
	}
	m := NewWithProbes(probes, 0, nil)

	status := m.Refresh()
	assert.True(t, status.Online())
	assert.True(t, m.IsOnline())
	assert.Equal(t, 4, status.BufferSize)
	assert.Zero(t, status.Transitions)

	pgErr = errors.New("connection refused")
	status = m.Refresh()
	assert.False(t, m.IsOnline())
	assert.True(t, status.Redis)
	assert.Equal(t, 1, status.Transitions)

	pgErr = nil
	m.Refresh()
	assert.True(t, m.IsOnline())
	assert.Equal(t, 2, m.GetStatus().Transitions)
}

func TestMissingProbesCountAsDown(t *testing.T) {
	m := NewWithProbes(Probes{}, 0, nil)
	status := m.Refresh()
	assert.False(t, status.Online())
	assert.False(t, status.Buffer)

	m.Start()
	m.Stop()
	m.Stop()
}
