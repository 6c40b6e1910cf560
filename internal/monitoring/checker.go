// internal/monitoring/checker.go
package monitoring

import (
    "context"
    "time"

    "github.com/sirupsen/logrus"
    "dbhealth/internal/database"
    "dbhealth/internal/metrics"
)

// Classification thresholds, first match wins (critical before warning).
const (
    criticalResponseTime = 5.0 // seconds
    criticalCPUUsage     = 95.0
    criticalMemoryUsage  = 95.0

    warningResponseTime = 2.0
    warningCPUUsage     = 80.0
    warningMemoryUsage  = 90.0
)

// Checker performs one health-check cycle: probe the database, sample host
// resources, classify, persist.
type Checker struct {
    store   database.Store
    metrics *metrics.Collector
    sampler Sampler
}

func NewChecker(store database.Store, collector *metrics.Collector) *Checker {
    return &Checker{
        store:   store,
        metrics: collector,
        sampler: SampleSystem,
    }
}

// RunCheck performs one cycle and appends exactly one record. The returned
// error is a storage failure only; a failed probe is recorded as a critical
// result, not returned.
func (c *Checker) RunCheck(ctx context.Context) (*database.HealthCheck, error) {
    start := time.Now()
    probeErr := c.store.Ping(ctx)
    elapsed := time.Since(start).Seconds()

    // Resource metrics are sampled even when the probe fails.
    sample, sampleErr := c.sampler(ctx)
    if sampleErr != nil {
        logrus.WithError(sampleErr).Warn("Failed to sample system metrics")
    }

    check := &database.HealthCheck{
        Timestamp:       time.Now().UTC(),
        ResponseTime:    elapsed,
        ConnectionCount: c.store.ConnectionCount(),
        CPUUsage:        sample.CPUUsage,
        MemoryUsage:     sample.MemoryUsage,
        DiskUsage:       sample.DiskUsage,
    }

    if probeErr != nil {
        check.ResponseTime = 0
        check.ErrorMessage = probeErr.Error()
    }

    check.Status = Classify(check.ResponseTime, check.CPUUsage, check.MemoryUsage, probeErr != nil)

    _, err := c.store.InsertHealthCheck(ctx, check)
    c.metrics.RecordStorageOperation("insert_health_check", err)
    if err != nil {
        return nil, err
    }

    c.metrics.RecordHealthCheck(check)

    logrus.WithFields(logrus.Fields{
        "status":        check.Status,
        "response_time": check.ResponseTime,
        "cpu":           check.CPUUsage,
        "memory":        check.MemoryUsage,
    }).Debug("Health check completed")

    return check, nil
}

// Classify maps probe and resource measurements to a status. Pure function,
// deterministic for a given input.
func Classify(responseTime, cpuUsage, memoryUsage float64, probeFailed bool) string {
    if probeFailed || responseTime > criticalResponseTime ||
        cpuUsage > criticalCPUUsage || memoryUsage > criticalMemoryUsage {
        return database.StatusCritical
    }
    if responseTime > warningResponseTime ||
        cpuUsage > warningCPUUsage || memoryUsage > warningMemoryUsage {
        return database.StatusWarning
    }
    return database.StatusHealthy
}
