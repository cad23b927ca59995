package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownStopsInReverseOrder(t *testing.T) {
	m := New(time.Second, nil)

	var order []string
	stop := func(name string) StopFunc {
		return func(context.Context) error {
			order = append(order, name)
			return nil
		}
	}
	m.Register("postgres", stop("postgres"))
	m.Register("ignored", nil)
	m.Register("buffer", stop("buffer"))
	m.Register("http_server", stop("http_server"))

	assert.Equal(t, []string{"http_server", "buffer", "postgres"}, m.Components())
	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, []string{"http_server", "buffer", "postgres"}, order)

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Len(t, order, 3)
}

func TestShutdownJoinsErrors(t *testing.T) {
	m := New(time.Second, nil)
	errRedis := errors.New("redis close")
	errBuffer := errors.New("bolt close")

	reached := false
	m.Register("last", func(context.Context) error {
		reached = true
		return nil
	})
	m.Register("redis", func(context.Context) error { return errRedis })
	m.Register("buffer", func(context.Context) error { return errBuffer })

	err := m.Shutdown(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errRedis)
	assert.ErrorIs(t, err, errBuffer)
	assert.True(t, reached)
}

func TestShutdownAppliesTimeout(t *testing.T) {
	m := New(50*time.Millisecond, nil)
	m.Register("slow", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return nil
	})
	require.NoError(t, m.Shutdown(context.Background()))
}
