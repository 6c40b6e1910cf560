// internal/web/handlers.go - REST surface for the health dashboard
package web

import (
    "context"
    "net/http"
    "strconv"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/sirupsen/logrus"
    "dbhealth/internal/monitoring"
)

const defaultWindowHours = 24

// QueryRequest is the body of POST /api/queries/run. The SQL text is
// executed verbatim by design; this deployment is a trusted single-operator
// tool. Broadening that would need an allow-list layer first.
type QueryRequest struct {
    Name string `json:"name"`
    SQL  string `json:"sql" binding:"required"`
}

// GET /api/health/current - latest stored record, or the unknown sentinel
// before any check has run.
func (s *Server) getCurrentHealth(c *gin.Context) {
    check, err := s.store.LatestHealthCheck(c.Request.Context())
    if err != nil {
        logrus.WithError(err).Error("Failed to get latest health check")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get latest health check"})
        return
    }

    c.JSON(http.StatusOK, check)
}

// GET /api/health/history?hours=N
func (s *Server) getHealthHistory(c *gin.Context) {
    since := windowStart(c)

    history, err := s.store.HealthHistory(c.Request.Context(), since)
    if err != nil {
        logrus.WithError(err).Error("Failed to get health history")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get health history"})
        return
    }

    c.JSON(http.StatusOK, gin.H{
        "data":  history,
        "count": len(history),
    })
}

// GET /api/monitoring/status
func (s *Server) getMonitoringStatus(c *gin.Context) {
    running, interval := s.monitor.Status()
    c.JSON(http.StatusOK, gin.H{
        "running":  running,
        "interval": int(interval.Seconds()),
    })
}

// POST /api/monitoring/start - idempotent
func (s *Server) startMonitoring(c *gin.Context) {
    s.monitor.Start(context.Background())
    c.JSON(http.StatusOK, gin.H{"running": true})
}

// POST /api/monitoring/stop - idempotent
func (s *Server) stopMonitoring(c *gin.Context) {
    s.monitor.Stop()
    c.JSON(http.StatusOK, gin.H{"running": false})
}

// GET /api/queries/history?hours=N
func (s *Server) getQueryHistory(c *gin.Context) {
    since := windowStart(c)

    history, err := s.store.QueryHistory(c.Request.Context(), since)
    if err != nil {
        logrus.WithError(err).Error("Failed to get query history")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get query history"})
        return
    }

    c.JSON(http.StatusOK, gin.H{
        "data":  history,
        "count": len(history),
    })
}

// GET /api/queries/predefined
func (s *Server) getPredefinedQueries(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{
        "data":  monitoring.PredefinedQueries,
        "count": len(monitoring.PredefinedQueries),
    })
}

// POST /api/queries/run - a failed statement is still a 200: the failure is
// the data this tool exists to record. Only a malformed body is a client
// error; only a storage failure is a server error.
func (s *Server) runQuery(c *gin.Context) {
    var req QueryRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }

    check, err := s.runner.RunQuery(c.Request.Context(), req.Name, req.SQL)
    if err != nil {
        logrus.WithError(err).Error("Failed to record query check")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record query check"})
        return
    }

    c.JSON(http.StatusOK, check)
}

// GET /api/report?hours=N - aggregate summary plus the raw series. An empty
// window yields zeroed summaries, not an error.
func (s *Server) getReport(c *gin.Context) {
    since := windowStart(c)
    ctx := c.Request.Context()

    healthSummary, err := s.store.HealthSummary(ctx, since)
    if err != nil {
        logrus.WithError(err).Error("Failed to build health summary")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
        return
    }

    querySummary, err := s.store.QuerySummary(ctx, since)
    if err != nil {
        logrus.WithError(err).Error("Failed to build query summary")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
        return
    }

    healthHistory, err := s.store.HealthHistory(ctx, since)
    if err != nil {
        logrus.WithError(err).Error("Failed to get health history")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
        return
    }

    queryHistory, err := s.store.QueryHistory(ctx, since)
    if err != nil {
        logrus.WithError(err).Error("Failed to get query history")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
        return
    }

    c.JSON(http.StatusOK, gin.H{
        "generated_at":   time.Now().UTC(),
        "period_hours":   windowHours(c),
        "health_summary": healthSummary,
        "query_summary":  querySummary,
        "health_checks":  healthHistory,
        "query_checks":   queryHistory,
    })
}

// windowHours parses the hours query parameter; anything invalid falls back
// to the default window.
func windowHours(c *gin.Context) int {
    hours, err := strconv.Atoi(c.DefaultQuery("hours", strconv.Itoa(defaultWindowHours)))
    if err != nil || hours <= 0 {
        return defaultWindowHours
    }
    return hours
}

func windowStart(c *gin.Context) time.Time {
    return time.Now().UTC().Add(-time.Duration(windowHours(c)) * time.Hour)
}
