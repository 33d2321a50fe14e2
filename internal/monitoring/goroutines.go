// Package monitoring watches the process while a server runs.
package monitoring

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Gauge reports the current size of something the server holds, such as
// the number of live games.
type Gauge func() int

// GoroutineMonitor logs the goroutine count next to a set of gauges, and
// warns when the count passes a threshold. Goroutines that grow while the
// gauges stay flat point at a leak.
type GoroutineMonitor struct {
	mu             sync.RWMutex
	baseline       int
	current        int
	peak           int
	checkInterval  time.Duration
	alertThreshold int
	alertCooldown  time.Duration
	lastAlert      time.Time
	gauges         map[string]Gauge
	logger         zerolog.Logger
	count          func() int
	now            func() time.Time
}

// NewGoroutineMonitor creates a monitor checking every interval. Counts
// above threshold are reported at most once per cooldown.
func NewGoroutineMonitor(interval time.Duration, threshold int, logger zerolog.Logger) *GoroutineMonitor {
	baseline := runtime.NumGoroutine()
	return &GoroutineMonitor{
		baseline:       baseline,
		current:        baseline,
		peak:           baseline,
		checkInterval:  interval,
		alertThreshold: threshold,
		alertCooldown:  5 * time.Minute,
		gauges:         make(map[string]Gauge),
		logger:         logger.With().Str("component", "goroutine_monitor").Logger(),
		count:          runtime.NumGoroutine,
		now:            time.Now,
	}
}

// Register adds a gauge reported with every check.
func (gm *GoroutineMonitor) Register(name string, g Gauge) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.gauges[name] = g
}

// Run checks until ctx is done.
func (gm *GoroutineMonitor) Run(ctx context.Context) {
	gm.logger.Info().Int("baseline", gm.baseline).Msg("Started goroutine monitoring")
	ticker := time.NewTicker(gm.checkInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			gm.check()
		case <-ctx.Done():
			return
		}
	}
}

func (gm *GoroutineMonitor) check() {
	current := gm.count()
	now := gm.now()

	gm.mu.Lock()
	gm.current = current
	if current > gm.peak {
		gm.peak = current
	}
	shouldAlert := current > gm.alertThreshold && now.Sub(gm.lastAlert) > gm.alertCooldown
	if shouldAlert {
		gm.lastAlert = now
	}
	gauges := make(map[string]Gauge, len(gm.gauges))
	for k, g := range gm.gauges {
		gauges[k] = g
	}
	peak := gm.peak
	gm.mu.Unlock()

	ev := gm.logger.Debug()
	if shouldAlert {
		ev = gm.logger.Warn().Int("threshold", gm.alertThreshold)
	}
	ev = ev.Int("current", current).Int("baseline", gm.baseline).Int("peak", peak)
	for name, g := range gauges {
		ev = ev.Int(name, g())
	}
	if shouldAlert {
		ev.Msg("High goroutine count detected - possible leak")
		return
	}
	ev.Msg("Goroutine metrics")
}

// GoroutineMetrics is a snapshot of the monitor.
type GoroutineMetrics struct {
	Current  int            `json:"current"`
	Baseline int            `json:"baseline"`
	Peak     int            `json:"peak"`
	Growth   int            `json:"growth"`
	Gauges   map[string]int `json:"gauges"`
}

// GetMetrics returns the last check and the gauges read now.
func (gm *GoroutineMonitor) GetMetrics() GoroutineMetrics {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	m := GoroutineMetrics{
		Current:  gm.current,
		Baseline: gm.baseline,
		Peak:     gm.peak,
		Growth:   gm.current - gm.baseline,
		Gauges:   make(map[string]int, len(gm.gauges)),
	}
	for name, g := range gm.gauges {
		m.Gauges[name] = g()
	}
	return m
}
