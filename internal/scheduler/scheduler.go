// Package scheduler fires the digest trigger on a 5-field cron schedule
// evaluated in UTC. Manual dispatch bypasses it entirely.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Scheduler wraps a UTC cron runner
type Scheduler struct {
	cron   *cron.Cron
	logger zerolog.Logger
}

func New() *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithParser(parser()), cron.WithLocation(time.UTC)),
		logger: log.With().Str("component", "scheduler").Logger(),
	}
}

// Register adds a trigger under the given cron expression
func (s *Scheduler) Register(name, spec string, fn func()) error {
	schedule, err := ParseSchedule(spec)
	if err != nil {
		return err
	}

	triggerLogger := s.logger.With().Str("trigger", name).Str("schedule", spec).Logger()
	s.cron.Schedule(schedule, cron.FuncJob(func() {
		triggerLogger.Info().Msg("Schedule fired")
		fn()
	}))

	triggerLogger.Info().
		Time("next_fire", schedule.Next(time.Now().UTC())).
		Msg("Trigger registered")
	return nil
}

// Start begins evaluating schedules in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling; the returned context is done once any running
// trigger callbacks have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// ParseSchedule parses a 5-field cron expression (minute, hour,
// day-of-month, month, day-of-week).
func ParseSchedule(spec string) (cron.Schedule, error) {
	schedule, err := parser().Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}
	return schedule, nil
}

func parser() cron.Parser {
	return cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
}
