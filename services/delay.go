package services

import (
	"context"
	"time"
)

// Delayer simulates latency before a response is produced
type Delayer interface {
	Wait(ctx context.Context, d time.Duration) error
}

// NoDelay returns immediately unless ctx is already done
type NoDelay struct{}

func (NoDelay) Wait(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

// SleepDelay blocks for d or until ctx is done
type SleepDelay struct{}

func (SleepDelay) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DelayerFor picks SleepDelay when simulated latency is enabled
func DelayerFor(enabled bool) Delayer {
	if enabled {
		return SleepDelay{}
	}
	return NoDelay{}
}
