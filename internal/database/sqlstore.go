// internal/database/sqlstore.go - SQLite implementation of Store
package database

import (
    "context"
    "database/sql"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "sync"
    "time"

    _ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS health_checks (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp        TIMESTAMP NOT NULL,
    status           TEXT NOT NULL,
    response_time    REAL NOT NULL,
    connection_count INTEGER NOT NULL,
    cpu_usage        REAL NOT NULL,
    memory_usage     REAL NOT NULL,
    disk_usage       REAL NOT NULL,
    error_message    TEXT
);
CREATE INDEX IF NOT EXISTS idx_health_checks_timestamp ON health_checks(timestamp);

CREATE TABLE IF NOT EXISTS query_checks (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp      TIMESTAMP NOT NULL,
    query_name     TEXT NOT NULL,
    execution_time REAL NOT NULL,
    rows_affected  INTEGER NOT NULL,
    status         TEXT NOT NULL,
    error_message  TEXT
);
CREATE INDEX IF NOT EXISTS idx_query_checks_timestamp ON query_checks(timestamp);

CREATE TABLE IF NOT EXISTS sample_data (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    name       TEXT NOT NULL,
    value      INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL
);
`

// SQLStore persists check history in a single local SQLite file. SQLite
// permits one writer at a time, so all mutating operations are serialized
// behind writeMu; reads go straight to the pool.
type SQLStore struct {
    db      *sql.DB
    path    string
    writeMu sync.Mutex
    initMu  sync.Mutex
}

func NewSQLStore(path string) (Store, error) {
    if dir := filepath.Dir(path); dir != "." {
        if err := os.MkdirAll(dir, 0755); err != nil {
            return nil, fmt.Errorf("failed to create data directory: %w", err)
        }
    }

    // _loc=UTC keeps stored and bound timestamps in one zone so string
    // comparison in SQLite matches chronological order.
    dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_loc=UTC", path)
    db, err := sql.Open("sqlite3", dsn)
    if err != nil {
        return nil, fmt.Errorf("failed to open SQLite database: %w", err)
    }

    store := &SQLStore{db: db, path: path}

    if err := store.Init(context.Background()); err != nil {
        db.Close()
        return nil, fmt.Errorf("failed to initialize schema: %w", err)
    }

    return store, nil
}

// Init creates the tables if absent and seeds sample_data. Idempotent and
// safe to call from multiple goroutines.
func (s *SQLStore) Init(ctx context.Context) error {
    s.initMu.Lock()
    defer s.initMu.Unlock()

    if _, err := s.db.ExecContext(ctx, schema); err != nil {
        return fmt.Errorf("failed to create tables: %w", err)
    }

    var count int
    if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sample_data").Scan(&count); err != nil {
        return fmt.Errorf("failed to count sample data: %w", err)
    }
    if count > 0 {
        return nil
    }

    now := time.Now().UTC()
    seed := []SampleData{
        {Name: "Test Record 1", Value: 100, CreatedAt: now},
        {Name: "Test Record 2", Value: 200, CreatedAt: now},
        {Name: "Test Record 3", Value: 300, CreatedAt: now},
    }
    for _, row := range seed {
        _, err := s.db.ExecContext(ctx,
            "INSERT INTO sample_data (name, value, created_at) VALUES (?, ?, ?)",
            row.Name, row.Value, row.CreatedAt)
        if err != nil {
            return fmt.Errorf("failed to seed sample data: %w", err)
        }
    }

    return nil
}

func (s *SQLStore) InsertHealthCheck(ctx context.Context, check *HealthCheck) (int64, error) {
    s.writeMu.Lock()
    defer s.writeMu.Unlock()

    if check.Timestamp.IsZero() {
        check.Timestamp = time.Now().UTC()
    }

    result, err := s.db.ExecContext(ctx, `
        INSERT INTO health_checks
            (timestamp, status, response_time, connection_count, cpu_usage, memory_usage, disk_usage, error_message)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
        check.Timestamp, check.Status, check.ResponseTime, check.ConnectionCount,
        check.CPUUsage, check.MemoryUsage, check.DiskUsage, nullableText(check.ErrorMessage))
    if err != nil {
        return 0, fmt.Errorf("failed to insert health check: %w", err)
    }

    id, err := result.LastInsertId()
    if err != nil {
        return 0, fmt.Errorf("failed to read inserted id: %w", err)
    }
    check.ID = id
    return id, nil
}

func (s *SQLStore) InsertQueryCheck(ctx context.Context, check *QueryCheck) (int64, error) {
    s.writeMu.Lock()
    defer s.writeMu.Unlock()

    if check.Timestamp.IsZero() {
        check.Timestamp = time.Now().UTC()
    }

    result, err := s.db.ExecContext(ctx, `
        INSERT INTO query_checks
            (timestamp, query_name, execution_time, rows_affected, status, error_message)
        VALUES (?, ?, ?, ?, ?, ?)`,
        check.Timestamp, check.QueryName, check.ExecutionTime, check.RowsAffected,
        check.Status, nullableText(check.ErrorMessage))
    if err != nil {
        return 0, fmt.Errorf("failed to insert query check: %w", err)
    }

    id, err := result.LastInsertId()
    if err != nil {
        return 0, fmt.Errorf("failed to read inserted id: %w", err)
    }
    check.ID = id
    return id, nil
}

func (s *SQLStore) HealthHistory(ctx context.Context, since time.Time) ([]HealthCheck, error) {
    rows, err := s.db.QueryContext(ctx, `
        SELECT id, timestamp, status, response_time, connection_count,
               cpu_usage, memory_usage, disk_usage, error_message
        FROM health_checks
        WHERE timestamp >= ?
        ORDER BY timestamp ASC, id ASC`, since)
    if err != nil {
        return nil, fmt.Errorf("failed to query health history: %w", err)
    }
    defer rows.Close()

    checks := []HealthCheck{}
    for rows.Next() {
        var check HealthCheck
        var errMsg sql.NullString
        if err := rows.Scan(&check.ID, &check.Timestamp, &check.Status,
            &check.ResponseTime, &check.ConnectionCount, &check.CPUUsage,
            &check.MemoryUsage, &check.DiskUsage, &errMsg); err != nil {
            return nil, fmt.Errorf("failed to scan health check: %w", err)
        }
        check.ErrorMessage = errMsg.String
        checks = append(checks, check)
    }

    return checks, rows.Err()
}

func (s *SQLStore) LatestHealthCheck(ctx context.Context) (*HealthCheck, error) {
    var check HealthCheck
    var errMsg sql.NullString

    err := s.db.QueryRowContext(ctx, `
        SELECT id, timestamp, status, response_time, connection_count,
               cpu_usage, memory_usage, disk_usage, error_message
        FROM health_checks
        ORDER BY timestamp DESC, id DESC
        LIMIT 1`).Scan(&check.ID, &check.Timestamp, &check.Status,
        &check.ResponseTime, &check.ConnectionCount, &check.CPUUsage,
        &check.MemoryUsage, &check.DiskUsage, &errMsg)
    if err == sql.ErrNoRows {
        return UnknownHealthCheck(), nil
    }
    if err != nil {
        return nil, fmt.Errorf("failed to query latest health check: %w", err)
    }

    check.ErrorMessage = errMsg.String
    return &check, nil
}

func (s *SQLStore) HealthSummary(ctx context.Context, since time.Time) (*HealthSummary, error) {
    summary := &HealthSummary{StatusCounts: make(map[string]int)}

    err := s.db.QueryRowContext(ctx, `
        SELECT COUNT(*),
               COALESCE(AVG(response_time), 0),
               COALESCE(AVG(cpu_usage), 0),
               COALESCE(AVG(memory_usage), 0)
        FROM health_checks
        WHERE timestamp >= ?`, since).Scan(&summary.TotalChecks,
        &summary.AvgResponseTime, &summary.AvgCPUUsage, &summary.AvgMemoryUsage)
    if err != nil {
        return nil, fmt.Errorf("failed to aggregate health checks: %w", err)
    }

    rows, err := s.db.QueryContext(ctx, `
        SELECT status, COUNT(*)
        FROM health_checks
        WHERE timestamp >= ?
        GROUP BY status`, since)
    if err != nil {
        return nil, fmt.Errorf("failed to count health statuses: %w", err)
    }
    defer rows.Close()

    for rows.Next() {
        var status string
        var count int
        if err := rows.Scan(&status, &count); err != nil {
            return nil, fmt.Errorf("failed to scan status count: %w", err)
        }
        summary.StatusCounts[status] = count
    }

    return summary, rows.Err()
}

func (s *SQLStore) QueryHistory(ctx context.Context, since time.Time) ([]QueryCheck, error) {
    rows, err := s.db.QueryContext(ctx, `
        SELECT id, timestamp, query_name, execution_time, rows_affected, status, error_message
        FROM query_checks
        WHERE timestamp >= ?
        ORDER BY timestamp ASC, id ASC`, since)
    if err != nil {
        return nil, fmt.Errorf("failed to query check history: %w", err)
    }
    defer rows.Close()

    checks := []QueryCheck{}
    for rows.Next() {
        var check QueryCheck
        var errMsg sql.NullString
        if err := rows.Scan(&check.ID, &check.Timestamp, &check.QueryName,
            &check.ExecutionTime, &check.RowsAffected, &check.Status, &errMsg); err != nil {
            return nil, fmt.Errorf("failed to scan query check: %w", err)
        }
        check.ErrorMessage = errMsg.String
        checks = append(checks, check)
    }

    return checks, rows.Err()
}

func (s *SQLStore) QuerySummary(ctx context.Context, since time.Time) (*QuerySummary, error) {
    summary := &QuerySummary{StatusCounts: make(map[string]int)}

    err := s.db.QueryRowContext(ctx, `
        SELECT COUNT(*), COALESCE(AVG(execution_time), 0)
        FROM query_checks
        WHERE timestamp >= ?`, since).Scan(&summary.TotalQueries, &summary.AvgExecutionTime)
    if err != nil {
        return nil, fmt.Errorf("failed to aggregate query checks: %w", err)
    }

    rows, err := s.db.QueryContext(ctx, `
        SELECT status, COUNT(*)
        FROM query_checks
        WHERE timestamp >= ?
        GROUP BY status`, since)
    if err != nil {
        return nil, fmt.Errorf("failed to count query statuses: %w", err)
    }
    defer rows.Close()

    for rows.Next() {
        var status string
        var count int
        if err := rows.Scan(&status, &count); err != nil {
            return nil, fmt.Errorf("failed to scan status count: %w", err)
        }
        summary.StatusCounts[status] = count
    }

    return summary, rows.Err()
}

// Ping is the health probe: a constant-result round-trip against the file.
func (s *SQLStore) Ping(ctx context.Context) error {
    var one int
    if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
        return fmt.Errorf("probe query failed: %w", err)
    }
    return nil
}

// ExecQuery runs an arbitrary statement and reports how many rows it
// returned (SELECT) or affected (everything else). The statement text is
// executed verbatim; this store backs a trusted single-operator tool.
func (s *SQLStore) ExecQuery(ctx context.Context, query string) (int64, error) {
    if isSelect(query) {
        rows, err := s.db.QueryContext(ctx, query)
        if err != nil {
            return -1, err
        }
        defer rows.Close()

        var count int64
        for rows.Next() {
            count++
        }
        if err := rows.Err(); err != nil {
            return -1, err
        }
        return count, nil
    }

    s.writeMu.Lock()
    defer s.writeMu.Unlock()

    result, err := s.db.ExecContext(ctx, query)
    if err != nil {
        return -1, err
    }
    affected, err := result.RowsAffected()
    if err != nil {
        // The statement ran; only the count is unknown.
        return 0, nil
    }
    return affected, nil
}

func (s *SQLStore) ConnectionCount() int {
    return s.db.Stats().OpenConnections
}

// Prune deletes history older than the retention horizon. Best effort; the
// caller runs it opportunistically.
func (s *SQLStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
    s.writeMu.Lock()
    defer s.writeMu.Unlock()

    var pruned int64
    for _, table := range []string{"health_checks", "query_checks"} {
        result, err := s.db.ExecContext(ctx,
            fmt.Sprintf("DELETE FROM %s WHERE timestamp < ?", table), olderThan)
        if err != nil {
            return pruned, fmt.Errorf("failed to prune %s: %w", table, err)
        }
        if n, err := result.RowsAffected(); err == nil {
            pruned += n
        }
    }

    return pruned, nil
}

func (s *SQLStore) Close() error {
    return s.db.Close()
}

func isSelect(query string) bool {
    trimmed := strings.TrimSpace(query)
    return len(trimmed) >= 6 && strings.EqualFold(trimmed[:6], "SELECT")
}

func nullableText(s string) sql.NullString {
    return sql.NullString{String: s, Valid: s != ""}
}
