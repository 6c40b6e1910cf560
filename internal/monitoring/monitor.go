// internal/monitoring/monitor.go - background health-check loop
package monitoring

import (
    "context"
    "sync"
    "time"

    "github.com/google/uuid"
    "github.com/sirupsen/logrus"
    "dbhealth/internal/database"
    "dbhealth/internal/metrics"
)

// Options tunes the monitor loop.
type Options struct {
    Interval        time.Duration // time between health checks
    Retention       time.Duration // age beyond which records are pruned
    CleanupInterval time.Duration // how often the prune pass runs
    QueryChecks     bool          // also run the predefined query checks each cycle
}

// Monitor owns the single background loop that drives the health checker.
// Exactly one instance exists per process; Start and Stop are idempotent.
type Monitor struct {
    checker *Checker
    runner  *QueryRunner
    store   database.Store
    metrics *metrics.Collector
    opts    Options

    mu      sync.Mutex
    running bool
    stop    chan struct{}

    onHealthCheck func(*database.HealthCheck)
}

func NewMonitor(checker *Checker, runner *QueryRunner, store database.Store, collector *metrics.Collector, opts Options) *Monitor {
    if opts.CleanupInterval <= 0 {
        opts.CleanupInterval = 6 * time.Hour
    }
    return &Monitor{
        checker: checker,
        runner:  runner,
        store:   store,
        metrics: collector,
        opts:    opts,
    }
}

// OnHealthCheck registers a callback invoked after each completed cycle,
// used by the web layer to push live updates. Set before Start.
func (m *Monitor) OnHealthCheck(fn func(*database.HealthCheck)) {
    m.onHealthCheck = fn
}

// Start begins the loop. A second Start while running is a no-op; no second
// loop is ever spawned.
func (m *Monitor) Start(ctx context.Context) {
    m.mu.Lock()
    defer m.mu.Unlock()

    if m.running {
        return
    }

    m.running = true
    m.stop = make(chan struct{})
    m.metrics.SetMonitorRunning(true)

    logrus.WithField("interval", m.opts.Interval).Info("Starting health monitoring")
    go m.loop(ctx, m.stop)
}

// Stop signals the loop to exit. The sleep is interrupted immediately; an
// in-flight probe is allowed to finish.
func (m *Monitor) Stop() {
    m.mu.Lock()
    defer m.mu.Unlock()

    if !m.running {
        return
    }

    logrus.Info("Stopping health monitoring")
    close(m.stop)
    m.running = false
    m.metrics.SetMonitorRunning(false)
}

// Status reports the running flag and configured interval.
func (m *Monitor) Status() (bool, time.Duration) {
    m.mu.Lock()
    defer m.mu.Unlock()
    return m.running, m.opts.Interval
}

func (m *Monitor) loop(ctx context.Context, stop <-chan struct{}) {
    ticker := time.NewTicker(m.opts.Interval)
    defer ticker.Stop()

    pruneTicker := time.NewTicker(m.opts.CleanupInterval)
    defer pruneTicker.Stop()

    // First cycle runs immediately, then on every tick.
    m.runCycle(ctx)
    m.prune(ctx)

    for {
        select {
        case <-stop:
            return
        case <-ctx.Done():
            m.Stop()
            return
        case <-ticker.C:
            m.runCycle(ctx)
        case <-pruneTicker.C:
            m.prune(ctx)
        }
    }
}

// runCycle performs one health check and, when enabled, the predefined query
// checks. A failed cycle is logged and skipped; the loop never dies on it.
func (m *Monitor) runCycle(ctx context.Context) {
    cycle := uuid.New().String()

    check, err := m.checker.RunCheck(ctx)
    if err != nil {
        logrus.WithError(err).WithField("cycle", cycle).Error("Failed to record health check")
        return
    }

    if m.onHealthCheck != nil {
        m.onHealthCheck(check)
    }

    if !m.opts.QueryChecks {
        return
    }

    for _, query := range PredefinedQueries {
        if _, err := m.runner.RunQuery(ctx, query.Name, query.SQL); err != nil {
            logrus.WithError(err).WithFields(logrus.Fields{
                "cycle": cycle,
                "query": query.Name,
            }).Error("Failed to record query check")
        }
    }
}

func (m *Monitor) prune(ctx context.Context) {
    if m.opts.Retention <= 0 {
        return
    }

    horizon := time.Now().UTC().Add(-m.opts.Retention)
    pruned, err := m.store.Prune(ctx, horizon)
    if err != nil {
        logrus.WithError(err).Error("Failed to prune history")
        return
    }
    if pruned > 0 {
        logrus.WithField("records", pruned).Info("Pruned old history")
    }
}
