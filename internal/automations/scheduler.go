package automations

import (
	"context"
	"time"

	"medspa_crm_backend/platform/logger"
)

const (
	hourlyInterval   = time.Hour
	frequentInterval = 5 * time.Minute
)

// Scheduler periodically scans the registry for time-based rules. The scan
// only logs; actual action dispatch is out of scope.
type Scheduler struct {
	registry *Registry
	log      *logger.Logger
}

// NewScheduler creates a new automation scheduler.
func NewScheduler(registry *Registry, log *logger.Logger) *Scheduler {
	return &Scheduler{registry: registry, log: log}
}

// Run blocks until the context is cancelled, ticking the hourly and the
// frequent scan.
func (s *Scheduler) Run(ctx context.Context) {
	hourly := time.NewTicker(hourlyInterval)
	defer hourly.Stop()
	frequent := time.NewTicker(frequentInterval)
	defer frequent.Stop()

	s.log.Info("automation scheduler started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info("automation scheduler stopped")
			return
		case <-hourly.C:
			s.scanTimeBased()
		case <-frequent.C:
			s.log.Info("running frequent automation checks")
		}
	}
}

func (s *Scheduler) scanTimeBased() {
	count := s.registry.TimeBasedCount()
	s.log.Info("running hourly automation checks", "timeBasedRules", count)
}
