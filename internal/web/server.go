// internal/web/server.go
package web

import (
    "context"
    "net/http"
    "sync"

    "github.com/gin-gonic/gin"
    "github.com/prometheus/client_golang/prometheus/promhttp"
    "github.com/sirupsen/logrus"
    "dbhealth/internal/config"
    "dbhealth/internal/database"
    "dbhealth/internal/metrics"
    "dbhealth/internal/monitoring"
)

type Server struct {
    config  *config.Config
    store   database.Store
    monitor *monitoring.Monitor
    runner  *monitoring.QueryRunner
    metrics *metrics.Collector
    router  *gin.Engine
    server  *http.Server

    wsMu      sync.Mutex
    wsClients map[*WSClient]bool
}

func NewServer(cfg *config.Config, store database.Store, monitor *monitoring.Monitor, runner *monitoring.QueryRunner, metricsCollector *metrics.Collector) *Server {
    if cfg.Logging.Level != "debug" {
        gin.SetMode(gin.ReleaseMode)
    }

    router := gin.New()
    router.Use(gin.Logger())
    router.Use(gin.Recovery())
    router.Use(corsMiddleware())

    server := &Server{
        config:    cfg,
        store:     store,
        monitor:   monitor,
        runner:    runner,
        metrics:   metricsCollector,
        router:    router,
        wsClients: make(map[*WSClient]bool),
    }

    server.setupRoutes()
    return server
}

// Start binds the listener. Failure to bind is fatal: the process has
// nothing to do without its port.
func (s *Server) Start(ctx context.Context) error {
    s.server = &http.Server{
        Addr:         s.config.Server.Port,
        Handler:      s.router,
        ReadTimeout:  s.config.Server.ReadTimeout,
        WriteTimeout: s.config.Server.WriteTimeout,
    }

    logrus.WithField("port", s.config.Server.Port).Info("Starting web server")

    go func() {
        if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            logrus.WithError(err).Fatal("Failed to start server")
        }
    }()

    return nil
}

func (s *Server) Stop(ctx context.Context) error {
    if s.server != nil {
        return s.server.Shutdown(ctx)
    }
    return nil
}

// Router exposes the gin engine for tests.
func (s *Server) Router() http.Handler {
    return s.router
}

func (s *Server) setupRoutes() {
    // Dashboard
    s.router.GET("/", s.serveDashboard)
    s.router.GET("/favicon.ico", s.serveFavicon)

    // API routes
    api := s.router.Group("/api")
    {
        api.GET("/health/current", s.getCurrentHealth)
        api.GET("/health/history", s.getHealthHistory)

        api.GET("/monitoring/status", s.getMonitoringStatus)
        api.POST("/monitoring/start", s.startMonitoring)
        api.POST("/monitoring/stop", s.stopMonitoring)

        api.GET("/queries/history", s.getQueryHistory)
        api.GET("/queries/predefined", s.getPredefinedQueries)
        api.POST("/queries/run", s.runQuery)

        api.GET("/report", s.getReport)
    }

    // WebSocket endpoint
    s.router.GET("/ws", s.handleWebSocket)

    // Prometheus metrics
    if s.config.Prometheus.Enabled {
        s.router.GET(s.config.Prometheus.MetricsPath, gin.WrapH(promhttp.Handler()))
    }
}

func (s *Server) serveDashboard(c *gin.Context) {
    c.Header("Content-Type", "text/html")
    c.Status(http.StatusOK)
    c.File(s.config.Web.IndexFile)
}

func corsMiddleware() gin.HandlerFunc {
    return func(c *gin.Context) {
        c.Header("Access-Control-Allow-Origin", "*")
        c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
        c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

        if c.Request.Method == "OPTIONS" {
            c.AbortWithStatus(204)
            return
        }

        c.Next()
    }
}
