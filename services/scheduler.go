// services/scheduler.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// StartCacheHygiene runs ClearAllExpired immediately and then every interval
// until ctx is cancelled. It keeps storage tidy; correctness never depends on it.
func StartCacheHygiene(ctx context.Context, cache *CheckInTokenCache, interval time.Duration, logger zerolog.Logger) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if _, err := cache.ClearAllExpired(ctx); err != nil {
				logger.Error().Err(err).Msg("[Scheduler] cache hygiene failed")
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("register cache hygiene job: %w", err)
	}

	sched.Start()
	go func() {
		<-ctx.Done()
		if err := sched.Shutdown(); err != nil {
			logger.Warn().Err(err).Msg("[Scheduler] shutdown failed")
		}
	}()
	return sched, nil
}
