// internal/database/models.go
package database

import (
    "time"
)

// Health check statuses
const (
    StatusHealthy  = "healthy"
    StatusWarning  = "warning"
    StatusCritical = "critical"
    StatusUnknown  = "unknown"
)

// Query check statuses
const (
    QueryStatusSuccess = "success"
    QueryStatusWarning = "warning"
    QueryStatusError   = "error"
)

// HealthCheck is one recorded probe-and-sample cycle. Rows are append-only.
type HealthCheck struct {
    ID              int64     `json:"id"`
    Timestamp       time.Time `json:"timestamp"`
    Status          string    `json:"status"`
    ResponseTime    float64   `json:"response_time"`
    ConnectionCount int       `json:"connection_count"`
    CPUUsage        float64   `json:"cpu_usage"`
    MemoryUsage     float64   `json:"memory_usage"`
    DiskUsage       float64   `json:"disk_usage"`
    ErrorMessage    string    `json:"error_message,omitempty"`
}

// QueryCheck is one recorded statement execution. RowsAffected is -1 when
// the statement failed or the count is unknown.
type QueryCheck struct {
    ID            int64     `json:"id"`
    Timestamp     time.Time `json:"timestamp"`
    QueryName     string    `json:"query_name"`
    ExecutionTime float64   `json:"execution_time"`
    RowsAffected  int64     `json:"rows_affected"`
    Status        string    `json:"status"`
    ErrorMessage  string    `json:"error_message,omitempty"`
}

// SampleData is the demo payload table the predefined queries read from.
type SampleData struct {
    ID        int64     `json:"id"`
    Name      string    `json:"name"`
    Value     int64     `json:"value"`
    CreatedAt time.Time `json:"created_at"`
}

type HealthSummary struct {
    TotalChecks     int            `json:"total_checks"`
    AvgResponseTime float64        `json:"avg_response_time"`
    AvgCPUUsage     float64        `json:"avg_cpu_usage"`
    AvgMemoryUsage  float64        `json:"avg_memory_usage"`
    StatusCounts    map[string]int `json:"status_distribution"`
}

type QuerySummary struct {
    TotalQueries     int            `json:"total_queries"`
    AvgExecutionTime float64        `json:"avg_execution_time"`
    StatusCounts     map[string]int `json:"status_distribution"`
}

// UnknownHealthCheck is the sentinel returned before any check has run.
func UnknownHealthCheck() *HealthCheck {
    return &HealthCheck{Status: StatusUnknown}
}
