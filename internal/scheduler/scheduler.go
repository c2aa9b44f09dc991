// Package scheduler runs the periodic overdue sweep that flags active
// checkouts whose expected return date has passed.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"equiptrack/backend/internal/service"
)

type Scheduler struct {
	cron      *cron.Cron
	service   *service.Service
	sweepSpec string
}

func New(svc *service.Service, sweepSpec string) *Scheduler {
	if sweepSpec == "" {
		sweepSpec = "0 * * * *"
	}
	return &Scheduler{
		cron:      cron.New(),
		service:   svc,
		sweepSpec: sweepSpec,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.sweepSpec, s.runOverdueSweep); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("[scheduler] overdue sweep scheduled: %s", s.sweepSpec)
	return nil
}

// Stop halts the cron loop. A sweep already in flight runs to completion.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Printf("[scheduler] stopped")
}

func (s *Scheduler) runOverdueSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	flagged, err := s.service.SweepOverdue(ctx)
	if err != nil {
		log.Printf("[scheduler] WARN: overdue sweep failed: %v", err)
		return
	}
	if flagged > 0 {
		log.Printf("[scheduler] overdue sweep flagged %d checkouts", flagged)
	}
}
