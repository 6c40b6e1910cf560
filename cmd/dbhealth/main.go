package main

import (
    "context"
    "flag"
    "fmt"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/sirupsen/logrus"
    "dbhealth/internal/config"
    "dbhealth/internal/database"
    "dbhealth/internal/metrics"
    "dbhealth/internal/monitoring"
    "dbhealth/internal/web"
)

func main() {
    configFile := flag.String("config", "config.yaml", "Configuration file path")
    version := flag.Bool("version", false, "Show version information")
    flag.Parse()

    if *version {
        fmt.Println("dbhealth v1.0.0")
        os.Exit(0)
    }

    // Load configuration
    cfg, err := config.Load(*configFile)
    if err != nil {
        logrus.Fatalf("Failed to load config: %v", err)
    }

    // Setup logging
    setupLogging(cfg.Logging)

    logrus.WithFields(logrus.Fields{
        "config_file": *configFile,
        "port":        cfg.Server.Port,
        "database":    cfg.Database.Path,
        "interval":    cfg.Monitoring.CheckInterval,
    }).Info("Starting database health dashboard")

    // Initialize database
    store, err := database.NewSQLStore(cfg.Database.Path)
    if err != nil {
        logrus.Fatalf("Failed to initialize database: %v", err)
    }
    defer store.Close()

    // Initialize metrics
    metricsCollector := metrics.NewCollector()

    // Initialize monitoring
    checker := monitoring.NewChecker(store, metricsCollector)
    runner := monitoring.NewQueryRunner(store, metricsCollector)
    monitor := monitoring.NewMonitor(checker, runner, store, metricsCollector, monitoring.Options{
        Interval:        cfg.Monitoring.CheckIntervalDuration(),
        Retention:       cfg.Database.Retention(),
        CleanupInterval: cfg.Monitoring.CleanupInterval,
        QueryChecks:     cfg.Monitoring.QueryChecks,
    })

    // Initialize web server
    webServer := web.NewServer(cfg, store, monitor, runner, metricsCollector)
    monitor.OnHealthCheck(webServer.BroadcastHealthCheck)

    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    if cfg.Monitoring.AutoStart {
        monitor.Start(ctx)
    }

    if err := webServer.Start(ctx); err != nil {
        logrus.Fatalf("Failed to start web server: %v", err)
    }

    // Wait for shutdown signal
    sigChan := make(chan os.Signal, 1)
    signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

    sig := <-sigChan
    logrus.WithField("signal", sig).Info("Received shutdown signal")

    // Graceful shutdown
    monitor.Stop()
    cancel()

    shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer shutdownCancel()
    if err := webServer.Stop(shutdownCtx); err != nil {
        logrus.WithError(err).Warn("Web server shutdown was not clean")
    }

    logrus.Info("Shutdown complete")
}

func setupLogging(cfg config.LoggingConfig) {
    level, err := logrus.ParseLevel(cfg.Level)
    if err != nil {
        level = logrus.InfoLevel
    }
    logrus.SetLevel(level)

    if cfg.Format == "json" {
        logrus.SetFormatter(&logrus.JSONFormatter{})
    } else {
        logrus.SetFormatter(&logrus.TextFormatter{
            FullTimestamp: true,
        })
    }
}
