package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingTicker struct {
	calls int
	err   error
}

func (c *countingTicker) Tick(ctx context.Context) (int, error) {
	c.calls++
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("tick without deadline")
	}
	return 1, c.err
}

func TestBoardTickerRun(t *testing.T) {
	target := &countingTicker{}
	ticker := NewBoardTicker(target, time.Hour, nil)

	ticker.Run()
	target.err = errors.New("store down")
	ticker.Run()

	assert.Equal(t, 2, target.calls)
}

func TestBoardTickerStartStop(t *testing.T) {
	ticker := NewBoardTicker(&countingTicker{}, time.Hour, nil)
	ticker.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ticker.Stop(ctx)
	assert.NoError(t, ctx.Err())
}
