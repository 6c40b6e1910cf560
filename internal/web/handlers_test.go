// internal/web/handlers_test.go
package web

import (
    "bytes"
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "path/filepath"
    "testing"
    "time"

    "dbhealth/internal/config"
    "dbhealth/internal/database"
    "dbhealth/internal/metrics"
    "dbhealth/internal/monitoring"
)

func newTestServer(t *testing.T) (*Server, database.Store, *monitoring.Monitor) {
    t.Helper()

    store, err := database.NewSQLStore(filepath.Join(t.TempDir(), "test.db"))
    if err != nil {
        t.Fatalf("failed to open store: %v", err)
    }
    t.Cleanup(func() { store.Close() })

    cfg := &config.Config{}
    cfg.Server.Port = ":0"
    cfg.Web.IndexFile = "web/index.html"
    cfg.Monitoring.CheckInterval = 60

    collector := metrics.NewCollector()
    checker := monitoring.NewChecker(store, collector)
    runner := monitoring.NewQueryRunner(store, collector)
    monitor := monitoring.NewMonitor(checker, runner, store, collector, monitoring.Options{
        Interval: time.Minute,
    })
    t.Cleanup(monitor.Stop)

    return NewServer(cfg, store, monitor, runner, collector), store, monitor
}

func doRequest(t *testing.T, s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
    t.Helper()
    req := httptest.NewRequest(method, path, bytes.NewReader(body))
    if body != nil {
        req.Header.Set("Content-Type", "application/json")
    }
    w := httptest.NewRecorder()
    s.Router().ServeHTTP(w, req)
    return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
    t.Helper()
    if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
        t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
    }
}

func TestCurrentHealthBeforeFirstCheck(t *testing.T) {
    s, _, _ := newTestServer(t)

    w := doRequest(t, s, http.MethodGet, "/api/health/current", nil)
    if w.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
    }

    var check database.HealthCheck
    decodeJSON(t, w, &check)
    if check.Status != database.StatusUnknown {
        t.Errorf("expected unknown status before first check, got %q", check.Status)
    }
}

func TestHealthHistoryWindowParam(t *testing.T) {
    s, store, _ := newTestServer(t)
    ctx := context.Background()

    if _, err := store.InsertHealthCheck(ctx, &database.HealthCheck{
        Timestamp: time.Now().UTC(),
        Status:    database.StatusHealthy,
    }); err != nil {
        t.Fatalf("failed to seed check: %v", err)
    }

    tests := []struct {
        name string
        path string
        want int
    }{
        {"default window", "/api/health/history", 1},
        {"explicit window", "/api/health/history?hours=48", 1},
        {"invalid hours falls back", "/api/health/history?hours=abc", 1},
        {"negative hours falls back", "/api/health/history?hours=-3", 1},
    }

    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            w := doRequest(t, s, http.MethodGet, tt.path, nil)
            if w.Code != http.StatusOK {
                t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
            }

            var resp struct {
                Count int                     `json:"count"`
                Data  []*database.HealthCheck `json:"data"`
            }
            decodeJSON(t, w, &resp)
            if resp.Count != tt.want {
                t.Errorf("expected count %d, got %d", tt.want, resp.Count)
            }
            if len(resp.Data) != tt.want {
                t.Errorf("expected %d records, got %d", tt.want, len(resp.Data))
            }
        })
    }
}

func TestMonitoringStartStop(t *testing.T) {
    s, _, _ := newTestServer(t)

    w := doRequest(t, s, http.MethodGet, "/api/monitoring/status", nil)
    var status struct {
        Running  bool `json:"running"`
        Interval int  `json:"interval"`
    }
    decodeJSON(t, w, &status)
    if status.Running {
        t.Error("expected monitor to start out stopped")
    }
    if status.Interval != 60 {
        t.Errorf("expected interval 60, got %d", status.Interval)
    }

    // Start twice; both succeed and exactly one loop runs.
    for i := 0; i < 2; i++ {
        w = doRequest(t, s, http.MethodPost, "/api/monitoring/start", nil)
        if w.Code != http.StatusOK {
            t.Fatalf("start attempt %d: expected 200, got %d", i+1, w.Code)
        }
    }

    w = doRequest(t, s, http.MethodGet, "/api/monitoring/status", nil)
    decodeJSON(t, w, &status)
    if !status.Running {
        t.Error("expected monitor to report running after start")
    }

    for i := 0; i < 2; i++ {
        w = doRequest(t, s, http.MethodPost, "/api/monitoring/stop", nil)
        if w.Code != http.StatusOK {
            t.Fatalf("stop attempt %d: expected 200, got %d", i+1, w.Code)
        }
    }

    w = doRequest(t, s, http.MethodGet, "/api/monitoring/status", nil)
    decodeJSON(t, w, &status)
    if status.Running {
        t.Error("expected monitor to report stopped after stop")
    }
}

func TestRunQueryEndpoint(t *testing.T) {
    s, _, _ := newTestServer(t)

    body, _ := json.Marshal(QueryRequest{Name: "Sample", SQL: "SELECT COUNT(*) FROM sample_data"})
    w := doRequest(t, s, http.MethodPost, "/api/queries/run", body)
    if w.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
    }

    var check database.QueryCheck
    decodeJSON(t, w, &check)
    if check.Status != database.QueryStatusSuccess {
        t.Errorf("expected success, got %q (%s)", check.Status, check.ErrorMessage)
    }
}

func TestRunQueryEndpointFailedStatement(t *testing.T) {
    s, store, _ := newTestServer(t)

    body, _ := json.Marshal(QueryRequest{SQL: "SELEC 1"})
    w := doRequest(t, s, http.MethodPost, "/api/queries/run", body)
    if w.Code != http.StatusOK {
        t.Fatalf("a failed statement is still recorded: expected 200, got %d", w.Code)
    }

    var check database.QueryCheck
    decodeJSON(t, w, &check)
    if check.Status != database.QueryStatusError {
        t.Errorf("expected error status, got %q", check.Status)
    }
    if check.RowsAffected != -1 {
        t.Errorf("expected -1 rows, got %d", check.RowsAffected)
    }

    history, err := store.QueryHistory(context.Background(), time.Time{})
    if err != nil {
        t.Fatalf("failed to fetch history: %v", err)
    }
    if len(history) != 1 {
        t.Errorf("expected the failure to be persisted, got %d records", len(history))
    }
}

func TestRunQueryEndpointMalformedBody(t *testing.T) {
    s, _, _ := newTestServer(t)

    tests := []struct {
        name string
        body []byte
    }{
        {"missing sql", []byte(`{"name":"x"}`)},
        {"not json", []byte(`{{{`)},
        {"empty body", []byte(``)},
    }

    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            w := doRequest(t, s, http.MethodPost, "/api/queries/run", tt.body)
            if w.Code != http.StatusBadRequest {
                t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
            }
        })
    }
}

func TestPredefinedQueriesEndpoint(t *testing.T) {
    s, _, _ := newTestServer(t)

    w := doRequest(t, s, http.MethodGet, "/api/queries/predefined", nil)
    if w.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", w.Code)
    }

    var resp struct {
        Count int                     `json:"count"`
        Data  []monitoring.NamedQuery `json:"data"`
    }
    decodeJSON(t, w, &resp)
    if resp.Count != len(monitoring.PredefinedQueries) {
        t.Errorf("expected %d queries, got %d", len(monitoring.PredefinedQueries), resp.Count)
    }
    for _, query := range resp.Data {
        if query.Name == "" || query.SQL == "" {
            t.Errorf("predefined query missing name or sql: %+v", query)
        }
    }
}

func TestReportEmptyWindow(t *testing.T) {
    s, _, _ := newTestServer(t)

    w := doRequest(t, s, http.MethodGet, "/api/report?hours=1", nil)
    if w.Code != http.StatusOK {
        t.Fatalf("an empty window is not an error: expected 200, got %d: %s", w.Code, w.Body.String())
    }

    var resp struct {
        PeriodHours   int                     `json:"period_hours"`
        HealthSummary database.HealthSummary  `json:"health_summary"`
        QuerySummary  database.QuerySummary   `json:"query_summary"`
        HealthChecks  []*database.HealthCheck `json:"health_checks"`
        QueryChecks   []*database.QueryCheck  `json:"query_checks"`
    }
    decodeJSON(t, w, &resp)

    if resp.PeriodHours != 1 {
        t.Errorf("expected period_hours 1, got %d", resp.PeriodHours)
    }
    if resp.HealthSummary.TotalChecks != 0 {
        t.Errorf("expected zeroed health summary, got %d checks", resp.HealthSummary.TotalChecks)
    }
    if resp.QuerySummary.TotalQueries != 0 {
        t.Errorf("expected zeroed query summary, got %d queries", resp.QuerySummary.TotalQueries)
    }
    if len(resp.HealthChecks) != 0 || len(resp.QueryChecks) != 0 {
        t.Error("expected empty series in an empty window")
    }
}

func TestReportWithData(t *testing.T) {
    s, store, _ := newTestServer(t)
    ctx := context.Background()

    for _, status := range []string{database.StatusHealthy, database.StatusHealthy, database.StatusCritical} {
        if _, err := store.InsertHealthCheck(ctx, &database.HealthCheck{
            Timestamp:    time.Now().UTC(),
            Status:       status,
            ResponseTime: 0.5,
        }); err != nil {
            t.Fatalf("failed to seed check: %v", err)
        }
    }

    w := doRequest(t, s, http.MethodGet, "/api/report", nil)
    if w.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
    }

    var resp struct {
        HealthSummary database.HealthSummary  `json:"health_summary"`
        HealthChecks  []*database.HealthCheck `json:"health_checks"`
    }
    decodeJSON(t, w, &resp)

    if resp.HealthSummary.TotalChecks != 3 {
        t.Errorf("expected 3 checks in summary, got %d", resp.HealthSummary.TotalChecks)
    }
    if resp.HealthSummary.StatusCounts[database.StatusHealthy] != 2 {
        t.Errorf("expected 2 healthy, got %d", resp.HealthSummary.StatusCounts[database.StatusHealthy])
    }
    if len(resp.HealthChecks) != 3 {
        t.Errorf("expected 3 raw records, got %d", len(resp.HealthChecks))
    }
}
