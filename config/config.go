package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/fadhlanhapp/taskaloop-ledger/repository"
)

// Storage drivers accepted by STORAGE_DRIVER
const (
	StorageMemory   = "memory"
	StoragePostgres = repository.DriverPostgres
	StorageSQLite   = repository.DriverSQLite
)

// Config holds the process configuration read from the environment
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"postgres"`
	DBHost        string `env:"DB_HOST" envDefault:"localhost"`
	DBPort        string `env:"DB_PORT" envDefault:"5432"`
	DBUser        string `env:"DB_USER" envDefault:"postgres"`
	DBPassword    string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName        string `env:"DB_NAME" envDefault:"splitbill"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"ledger.db"`

	NewRelicAppName    string `env:"NEW_RELIC_APP_NAME" envDefault:"TaskaLoop Ledger API"`
	NewRelicLicenseKey string `env:"NEW_RELIC_LICENSE_KEY"`

	ReminderSchedule string        `env:"REMINDER_SCHEDULE"`
	ReminderMinAge   time.Duration `env:"REMINDER_MIN_AGE" envDefault:"72h"`

	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads an optional .env file and parses the environment into a Config
func Load() (*Config, error) {
	// A missing .env is fine; the process environment still applies
	_ = godotenv.Load()

	return Parse()
}

// Parse builds a Config from the current process environment
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values env tags cannot express
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory, StoragePostgres, StorageSQLite:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.ReminderMinAge < 0 {
		return fmt.Errorf("REMINDER_MIN_AGE must not be negative")
	}
	return nil
}

// IsProduction reports whether APP_ENV selects production behaviour
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// PostgresDSN builds the connection string from the DB_* settings
func (c *Config) PostgresDSN() string {
	return repository.PostgresDSN(c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}
