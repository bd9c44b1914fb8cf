package handlers

import (
	"context"
	"time"

	"CryptoModelBot/internal/services/trading"

	"github.com/rs/zerolog"
)

type Runner interface {
	Run(ctx context.Context) ([]trading.Decision, error)
}

// Scheduler runs the pipeline once a day at a fixed UTC time.
type Scheduler struct {
	runner Runner
	hour   int
	minute int
	logger zerolog.Logger

	// pause after each run so a fast run cannot fire twice in the same minute
	cooldown time.Duration
	now      func() time.Time
}

func NewScheduler(runner Runner, hour, minute int, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		hour:     hour,
		minute:   minute,
		logger:   logger.With().Str("component", "scheduler").Logger(),
		cooldown: 60 * time.Second,
		now:      time.Now,
	}
}

// untilNext returns the wait until the next hour:minute UTC strictly after now.
func untilNext(now time.Time, hour, minute int) time.Duration {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// RunForever blocks until ctx is cancelled. Run failures are logged and the
// schedule continues.
func (s *Scheduler) RunForever(ctx context.Context) {
	for {
		wait := untilNext(s.now(), s.hour, s.minute)
		s.logger.Info().
			Time("next_run", s.now().Add(wait).UTC()).
			Dur("wait", wait).
			Msg("Waiting for next run")

		if !sleep(ctx, wait) {
			s.logger.Info().Msg("Scheduler stopped")
			return
		}

		s.RunOnce(ctx)

		if !sleep(ctx, s.cooldown) {
			s.logger.Info().Msg("Scheduler stopped")
			return
		}
	}
}

// RunOnce runs the pipeline a single time and logs the outcome.
func (s *Scheduler) RunOnce(ctx context.Context) {
	start := s.now()
	decisions, err := s.runner.Run(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Pipeline run failed")
		return
	}
	s.logger.Info().
		Int("decisions", len(decisions)).
		Dur("elapsed", s.now().Sub(start)).
		Msg("Pipeline run complete")
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
