// internal/monitoring/queryrunner.go
package monitoring

import (
    "context"
    "time"

    "github.com/sirupsen/logrus"
    "dbhealth/internal/database"
    "dbhealth/internal/metrics"
)

const (
    slowQueryThreshold     = 1 * time.Second
    verySlowQueryThreshold = 5 * time.Second
)

// NamedQuery is a predefined statement exposed on the dashboard.
type NamedQuery struct {
    Name string `json:"name"`
    SQL  string `json:"sql"`
}

// PredefinedQueries are the stock checks run against the sample_data table.
var PredefinedQueries = []NamedQuery{
    {Name: "Count Records", SQL: "SELECT COUNT(*) FROM sample_data"},
    {Name: "Recent Records", SQL: "SELECT * FROM sample_data ORDER BY created_at DESC LIMIT 5"},
    {Name: "Average Value", SQL: "SELECT AVG(value) FROM sample_data"},
}

// QueryRunner executes a named or ad-hoc statement and records the outcome.
// Statements are executed verbatim with no sanitization: this is a trusted
// single-operator tool and observing failures is the point.
type QueryRunner struct {
    store   database.Store
    metrics *metrics.Collector
}

func NewQueryRunner(store database.Store, collector *metrics.Collector) *QueryRunner {
    return &QueryRunner{store: store, metrics: collector}
}

// RunQuery executes the statement and appends exactly one record. The
// returned error is a storage failure only; a failed statement becomes an
// error-status record.
func (r *QueryRunner) RunQuery(ctx context.Context, name, query string) (*database.QueryCheck, error) {
    if name == "" {
        name = "Custom Query"
    }

    start := time.Now()
    rows, execErr := r.store.ExecQuery(ctx, query)
    elapsed := time.Since(start)

    check := &database.QueryCheck{
        Timestamp:     time.Now().UTC(),
        QueryName:     name,
        ExecutionTime: elapsed.Seconds(),
        RowsAffected:  rows,
        Status:        classifyQuery(elapsed, execErr != nil),
    }

    if execErr != nil {
        check.RowsAffected = -1
        check.ErrorMessage = execErr.Error()
        logrus.WithError(execErr).WithField("query", name).Warn("Query check failed")
    }

    _, err := r.store.InsertQueryCheck(ctx, check)
    r.metrics.RecordStorageOperation("insert_query_check", err)
    if err != nil {
        return nil, err
    }

    r.metrics.RecordQueryCheck(check)
    return check, nil
}

func classifyQuery(elapsed time.Duration, failed bool) string {
    if failed {
        return database.QueryStatusError
    }
    if elapsed > verySlowQueryThreshold {
        return database.QueryStatusError
    }
    if elapsed > slowQueryThreshold {
        return database.QueryStatusWarning
    }
    return database.QueryStatusSuccess
}
