// internal/metrics/prometheus.go
package metrics

import (
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
    "dbhealth/internal/database"
)

// Prometheus metrics
var (
    HealthCheckDuration = promauto.NewHistogramVec(
        prometheus.HistogramOpts{
            Name:    "dbhealth_check_duration_seconds",
            Help:    "Time spent on the database probe",
            Buckets: prometheus.DefBuckets,
        },
        []string{"status"},
    )

    HealthChecksTotal = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "dbhealth_checks_total",
            Help: "Total number of health checks recorded",
        },
        []string{"status"},
    )

    QueryChecksTotal = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "dbhealth_query_checks_total",
            Help: "Total number of query checks recorded",
        },
        []string{"status", "query"},
    )

    QueryDuration = promauto.NewHistogramVec(
        prometheus.HistogramOpts{
            Name:    "dbhealth_query_duration_seconds",
            Help:    "Execution time of recorded queries",
            Buckets: prometheus.DefBuckets,
        },
        []string{"query"},
    )

    CurrentStatus = promauto.NewGauge(
        prometheus.GaugeOpts{
            Name: "dbhealth_current_status",
            Help: "Latest health status (0=healthy, 1=warning, 2=critical, 3=unknown)",
        },
    )

    SystemUsage = promauto.NewGaugeVec(
        prometheus.GaugeOpts{
            Name: "dbhealth_system_usage_percent",
            Help: "Host resource usage sampled during the last check",
        },
        []string{"resource"},
    )

    MonitorRunning = promauto.NewGauge(
        prometheus.GaugeOpts{
            Name: "dbhealth_monitor_running",
            Help: "Whether the background monitor loop is running",
        },
    )

    StorageOperations = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "dbhealth_storage_operations_total",
            Help: "Total storage operations performed",
        },
        []string{"operation", "status"},
    )
)

type Collector struct{}

func NewCollector() *Collector {
    return &Collector{}
}

func (c *Collector) RecordHealthCheck(check *database.HealthCheck) {
    HealthCheckDuration.WithLabelValues(check.Status).Observe(check.ResponseTime)
    HealthChecksTotal.WithLabelValues(check.Status).Inc()
    CurrentStatus.Set(statusValue(check.Status))
    SystemUsage.WithLabelValues("cpu").Set(check.CPUUsage)
    SystemUsage.WithLabelValues("memory").Set(check.MemoryUsage)
    SystemUsage.WithLabelValues("disk").Set(check.DiskUsage)
}

func (c *Collector) RecordQueryCheck(check *database.QueryCheck) {
    QueryChecksTotal.WithLabelValues(check.Status, check.QueryName).Inc()
    QueryDuration.WithLabelValues(check.QueryName).Observe(check.ExecutionTime)
}

func (c *Collector) SetMonitorRunning(running bool) {
    if running {
        MonitorRunning.Set(1)
    } else {
        MonitorRunning.Set(0)
    }
}

func (c *Collector) RecordStorageOperation(operation string, err error) {
    status := "success"
    if err != nil {
        status = "error"
    }
    StorageOperations.WithLabelValues(operation, status).Inc()
}

func statusValue(status string) float64 {
    switch status {
    case database.StatusHealthy:
        return 0
    case database.StatusWarning:
        return 1
    case database.StatusCritical:
        return 2
    default:
        return 3
    }
}
