// internal/config/config.go
package config

import (
    "fmt"
    "os"
    "time"

    "github.com/kelseyhightower/envconfig"
    "gopkg.in/yaml.v3"
)

type Config struct {
    Server     ServerConfig     `yaml:"server"`
    Web        WebConfig        `yaml:"web"`
    Database   DatabaseConfig   `yaml:"database"`
    Monitoring MonitoringConfig `yaml:"monitoring"`
    Prometheus PrometheusConfig `yaml:"prometheus"`
    Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
    Port         string        `yaml:"port" envconfig:"PORT"`
    ReadTimeout  time.Duration `yaml:"read_timeout"`
    WriteTimeout time.Duration `yaml:"write_timeout"`
}

type WebConfig struct {
    IndexFile string `yaml:"index_file"`
}

type DatabaseConfig struct {
    Path          string `yaml:"path" envconfig:"DATABASE_PATH"`
    RetentionDays int    `yaml:"retention_days" envconfig:"MAX_HISTORY_DAYS"`
}

type MonitoringConfig struct {
    // Seconds between automatic health checks.
    CheckInterval int `yaml:"check_interval" envconfig:"CHECK_INTERVAL"`
    // Begin the monitor loop at process start instead of waiting for the
    // start endpoint.
    AutoStart bool `yaml:"auto_start"`
    // Run the predefined query checks on every monitor cycle.
    QueryChecks bool `yaml:"query_checks"`
    // How often the retention prune pass runs.
    CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

type PrometheusConfig struct {
    Enabled     bool   `yaml:"enabled"`
    MetricsPath string `yaml:"metrics_path"`
}

type LoggingConfig struct {
    Level  string `yaml:"level"`
    Format string `yaml:"format"`
}

// Load reads the YAML file (if present), applies environment overrides and
// defaults, then validates. A missing file is fine: the recognized
// environment variables alone are a complete configuration.
func Load(filename string) (*Config, error) {
    var config Config

    data, err := os.ReadFile(filename)
    if err != nil {
        if !os.IsNotExist(err) {
            return nil, fmt.Errorf("failed to read config file: %w", err)
        }
    } else {
        if err := yaml.Unmarshal(data, &config); err != nil {
            return nil, fmt.Errorf("failed to parse YAML: %w", err)
        }
    }

    if err := envconfig.Process("", &config); err != nil {
        return nil, fmt.Errorf("invalid environment configuration: %w", err)
    }

    setDefaults(&config)

    if err := validate(&config); err != nil {
        return nil, fmt.Errorf("invalid configuration: %w", err)
    }

    return &config, nil
}

// CheckIntervalDuration converts the configured seconds to a Duration.
func (c *MonitoringConfig) CheckIntervalDuration() time.Duration {
    return time.Duration(c.CheckInterval) * time.Second
}

// Retention converts the configured retention days to a Duration.
func (c *DatabaseConfig) Retention() time.Duration {
    return time.Duration(c.RetentionDays) * 24 * time.Hour
}

func setDefaults(cfg *Config) {
    if cfg.Server.Port == "" {
        cfg.Server.Port = ":12000"
    }
    if cfg.Server.ReadTimeout == 0 {
        cfg.Server.ReadTimeout = 10 * time.Second
    }
    if cfg.Server.WriteTimeout == 0 {
        cfg.Server.WriteTimeout = 30 * time.Second
    }
    if cfg.Web.IndexFile == "" {
        cfg.Web.IndexFile = "web/index.html"
    }
    if cfg.Database.Path == "" {
        cfg.Database.Path = "health_check.db"
    }
    if cfg.Database.RetentionDays == 0 {
        cfg.Database.RetentionDays = 7
    }
    if cfg.Monitoring.CheckInterval == 0 {
        cfg.Monitoring.CheckInterval = 30
    }
    if cfg.Monitoring.CleanupInterval == 0 {
        cfg.Monitoring.CleanupInterval = 6 * time.Hour
    }
    if cfg.Prometheus.MetricsPath == "" {
        cfg.Prometheus.MetricsPath = "/metrics"
    }
    if cfg.Logging.Level == "" {
        cfg.Logging.Level = "info"
    }
    if cfg.Logging.Format == "" {
        cfg.Logging.Format = "text"
    }
}

func validate(cfg *Config) error {
    if cfg.Monitoring.CheckInterval < 1 {
        return fmt.Errorf("monitoring.check_interval must be at least 1 second")
    }
    if cfg.Database.RetentionDays < 1 {
        return fmt.Errorf("database.retention_days must be at least 1")
    }
    if cfg.Database.Path == "" {
        return fmt.Errorf("database.path cannot be empty")
    }
    return nil
}
