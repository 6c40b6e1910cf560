// internal/database/store.go
package database

import (
    "context"
    "time"
)

// Store defines the interface for database operations. It is the only
// component allowed to touch the underlying file; everything else reads and
// writes through it.
type Store interface {
    // Health check operations
    InsertHealthCheck(ctx context.Context, check *HealthCheck) (int64, error)
    HealthHistory(ctx context.Context, since time.Time) ([]HealthCheck, error)
    LatestHealthCheck(ctx context.Context) (*HealthCheck, error)
    HealthSummary(ctx context.Context, since time.Time) (*HealthSummary, error)

    // Query check operations
    InsertQueryCheck(ctx context.Context, check *QueryCheck) (int64, error)
    QueryHistory(ctx context.Context, since time.Time) ([]QueryCheck, error)
    QuerySummary(ctx context.Context, since time.Time) (*QuerySummary, error)

    // Probe and ad-hoc execution against the monitored file
    Ping(ctx context.Context) error
    ExecQuery(ctx context.Context, query string) (int64, error)
    ConnectionCount() int

    // Retention
    Prune(ctx context.Context, olderThan time.Time) (int64, error)

    // Close the database connection
    Close() error
}
