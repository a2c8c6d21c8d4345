package discovery

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Refresher forces periodic rediscovery on a cron schedule so the
// registry converges back from RATE_LIMITED and ERROR states without
// waiting for a caller to force a refresh.
type Refresher struct {
	cache    *Cache
	schedule string
	log      *slog.Logger
	cron     *cron.Cron
}

// NewRefresher builds a refresher for the given cron schedule.
// Standard five-field expressions and descriptors like "@every 10m"
// are accepted.
func NewRefresher(cache *Cache, schedule string, logger *slog.Logger) (*Refresher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Refresher{
		cache:    cache,
		schedule: schedule,
		log:      logger,
		cron:     cron.New(),
	}
	_, err := r.cron.AddFunc(schedule, r.run)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	return r, nil
}

func (r *Refresher) run() {
	r.log.Debug("scheduled rediscovery starting", slog.String("schedule", r.schedule))
	r.cache.Discover(context.Background(), true, "schedule")
}

// Start begins scheduled execution.
func (r *Refresher) Start() {
	r.cron.Start()
	r.log.Info("discovery refresher started", slog.String("schedule", r.schedule))
}

// Stop halts the schedule and waits for a running cycle to finish.
func (r *Refresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.log.Info("discovery refresher stopped")
}
