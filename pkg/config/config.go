package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "POS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Inventory InventoryConfig
	Reports   ReportsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Reports.ensureOutputDir(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"POS_APP_ENV" default:"dev"`
	Port         string `envconfig:"POS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"POS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"POS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	// Path is the SQLite database file; created with its schema on first
	// startup when absent.
	Path            string        `envconfig:"POS_DB_PATH" default:"pizza_pos.db"`
	BusyTimeout     time.Duration `envconfig:"POS_DB_BUSY_TIMEOUT" default:"5s"`
	MaxOpenConns    int           `envconfig:"POS_DB_MAX_OPEN_CONNS" default:"1"`
	MaxIdleConns    int           `envconfig:"POS_DB_MAX_IDLE_CONNS" default:"1"`
	ConnMaxLifetime time.Duration `envconfig:"POS_DB_CONN_MAX_LIFETIME" default:"1h"`
}

// DSN renders the SQLite connection string. A single open connection keeps
// the single-writer model explicit.
func (d DBConfig) DSN() string {
	return fmt.Sprintf("file:%s?_busy_timeout=%d", d.Path, d.BusyTimeout.Milliseconds())
}

type InventoryConfig struct {
	// HardBlock turns insufficient-stock warnings during order finalize into
	// a hard failure. Defaults to the advisory behavior.
	HardBlock bool `envconfig:"POS_INVENTORY_HARD_BLOCK" default:"false"`
}

type ReportsConfig struct {
	// OutputDir receives exported PDF/Excel files. Defaults to a per-user
	// reports directory.
	OutputDir string `envconfig:"POS_REPORTS_DIR"`
}

func (r *ReportsConfig) ensureOutputDir() error {
	if r.OutputDir != "" {
		return nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolving home directory for reports: %w", err)
	}
	r.OutputDir = filepath.Join(home, "PizzaPOS", "Reports")
	return nil
}
