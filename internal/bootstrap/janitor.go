package bootstrap

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/GoSim-25-26J-441/go-mint-studio/internal/logging"
)

// Sweeper is anything holding idle views; *views.Registry satisfies it.
type Sweeper interface {
	Sweep() int
}

// Janitor periodically closes views nobody has touched within their TTL.
type Janitor struct {
	cron     *cron.Cron
	registry map[string]Sweeper
}

func NewJanitor(registry map[string]Sweeper) *Janitor {
	return &Janitor{cron: cron.New(), registry: registry}
}

// Start schedules the sweep on spec (standard cron syntax or "@every 1m").
func (j *Janitor) Start(spec string) error {
	if _, err := j.cron.AddFunc(spec, j.SweepOnce); err != nil {
		return fmt.Errorf("failed to create janitor job: %w", err)
	}
	logging.L().Sugar().Infof("view janitor started (%s)", spec)
	j.cron.Start()
	return nil
}

// SweepOnce sweeps every registry once.
func (j *Janitor) SweepOnce() {
	for name, s := range j.registry {
		if n := s.Sweep(); n > 0 {
			logging.L().Sugar().Infof("janitor closed %d idle %s views", n, name)
		}
	}
}

// Stop halts the schedule and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}
