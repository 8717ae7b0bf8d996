package cache

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"jobmatch-backend/internal/shared/telemetry"
)

// DefaultSweepSpec runs the janitor once a minute.
const DefaultSweepSpec = "@every 1m"

// Sweeper is anything that can drop its expired entries.
type Sweeper interface {
	Sweep() int
}

// Janitor periodically sweeps a set of named caches.
type Janitor struct {
	cron   *cron.Cron
	spec   string
	caches map[string]Sweeper
}

// NewJanitor builds a janitor on a cron spec such as "@every 1m".
func NewJanitor(spec string, caches map[string]Sweeper) *Janitor {
	if spec == "" {
		spec = DefaultSweepSpec
	}
	return &Janitor{
		cron:   cron.New(),
		spec:   spec,
		caches: caches,
	}
}

// Start registers the sweep job and starts the scheduler.
func (j *Janitor) Start() error {
	if _, err := j.cron.AddFunc(j.spec, j.RunOnce); err != nil {
		return fmt.Errorf("cache janitor: %w", err)
	}
	j.cron.Start()
	telemetry.Info("cache.janitor.started", map[string]any{"spec": j.spec, "caches": len(j.caches)})
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}

// RunOnce sweeps every cache immediately.
func (j *Janitor) RunOnce() {
	for name, c := range j.caches {
		if removed := c.Sweep(); removed > 0 {
			telemetry.Debug("cache.sweep", map[string]any{"cache": name, "removed": removed})
		}
	}
}
