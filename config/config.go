package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DatabaseConfig holds all database configuration
type DatabaseConfig struct {
	Driver         string         `yaml:"driver"`
	MySQL          MySQLConfig    `yaml:"mysql"`
	PostgreSQL     PostgresConfig `yaml:"postgres"`
	SQLite         SQLiteConfig   `yaml:"sqlite"`
	ConnectionPool PoolConfig     `yaml:"connection_pool"`
}

// MySQLConfig holds MySQL specific configuration
type MySQLConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	DBName    string `yaml:"dbname"`
	Charset   string `yaml:"charset"`
	ParseTime bool   `yaml:"parse_time"`
	Loc       string `yaml:"loc"`
}

// PostgresConfig holds PostgreSQL specific configuration
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	TimeZone string `yaml:"timezone"`
}

// SQLiteConfig holds SQLite specific configuration
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// PoolConfig holds connection pool configuration
type PoolConfig struct {
	MaxIdleConns    int `yaml:"max_idle_conns"`
	MaxOpenConns    int `yaml:"max_open_conns"`
	ConnMaxLifetime int `yaml:"conn_max_lifetime"`
}

// MigrationConfig holds migration specific configuration
type MigrationConfig struct {
	AutoMigrate    bool   `yaml:"auto_migrate"`
	MigrationTable string `yaml:"migration_table"`
	Directory      string `yaml:"directory"`
}

// LoggingConfig holds logging specific configuration
type LoggingConfig struct {
	LogFile      string `yaml:"log_file"`
	LogToConsole bool   `yaml:"log_to_console"`
	LogLevel     string `yaml:"log_level"`
	Format       string `yaml:"format"`
}

// GeneratorConfig holds the synthetic degradation run settings
type GeneratorConfig struct {
	Parameters         []string           `yaml:"parameters"`
	ComponentCount     int                `yaml:"component_count"`
	RecordCount        int                `yaml:"record_count"`
	Mode               string             `yaml:"mode"`
	Seed               int64              `yaml:"seed"`
	Workers            int                `yaml:"workers"`
	BatchSize          int                `yaml:"batch_size"`
	DisableNoise       bool               `yaml:"disable_noise"`
	ThresholdOverrides map[string]float64 `yaml:"threshold_overrides"`
}

// MetricsConfig holds run metrics output settings
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Config holds the complete application configuration
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Migration MigrationConfig `yaml:"migration"`
	Logging   LoggingConfig   `yaml:"logging"`
	Generator GeneratorConfig `yaml:"generator"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

const (
	defaultComponentCount = 10
	defaultRecordCount    = 1000
)

// DefaultParameters are the monitored parameters simulated when the config names none.
var DefaultParameters = []string{
	"oil_press", "hyd_press", "brake_press", "manifold_press",
	"cht", "oil_temp", "rpm", "bus_voltage", "alternator_current",
}

// Load loads configuration from the specified YAML file, then applies .env overrides
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse builds a configuration from raw YAML, applying defaults, environment overrides and validation
func Parse(data []byte) (*Config, error) {
	// Counts are seeded before decoding so an explicit 0 survives to validation.
	config := Config{Generator: GeneratorConfig{
		ComponentCount: defaultComponentCount,
		RecordCount:    defaultRecordCount,
	}}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	config.applyEnv()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadDotEnv populates the process environment from .env when present.
// Variables already set in the environment win.
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load .env file: %w", err)
}

func (c *Config) applyEnv() {
	if v := os.Getenv("GA_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("GA_SQLITE_PATH"); v != "" {
		c.Database.SQLite.Path = v
	}
	if v := os.Getenv("GA_LOG_LEVEL"); v != "" {
		c.Logging.LogLevel = v
	}
}

func (c *Config) applyDefaults() {
	if c.Logging.LogFile == "" {
		c.Logging.LogFile = "result.log"
	}
	if c.Logging.LogLevel == "" {
		c.Logging.LogLevel = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Migration.MigrationTable == "" {
		c.Migration.MigrationTable = "migrations"
	}
	if c.Migration.Directory == "" {
		c.Migration.Directory = "migrations"
	}

	g := &c.Generator
	if len(g.Parameters) == 0 {
		g.Parameters = append([]string(nil), DefaultParameters...)
	}
	if g.Mode == "" {
		g.Mode = "accelerated"
	}
	if g.Workers == 0 {
		g.Workers = 4
	}
	if g.BatchSize == 0 {
		g.BatchSize = 500
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql":
		if c.Database.MySQL.Host == "" {
			return fmt.Errorf("mysql host is required")
		}
		if c.Database.MySQL.User == "" {
			return fmt.Errorf("mysql user is required")
		}
		if c.Database.MySQL.DBName == "" {
			return fmt.Errorf("mysql database name is required")
		}
	case "postgres":
		if c.Database.PostgreSQL.Host == "" {
			return fmt.Errorf("postgres host is required")
		}
		if c.Database.PostgreSQL.User == "" {
			return fmt.Errorf("postgres user is required")
		}
		if c.Database.PostgreSQL.DBName == "" {
			return fmt.Errorf("postgres database name is required")
		}
	case "sqlite":
		if c.Database.SQLite.Path == "" {
			return fmt.Errorf("sqlite path is required")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	return c.Generator.Validate()
}

// Validate checks the generator settings. Counts must be positive so a run never silently produces zero rows.
func (g *GeneratorConfig) Validate() error {
	if g.ComponentCount <= 0 {
		return fmt.Errorf("generator component_count must be positive, got %d", g.ComponentCount)
	}
	if g.RecordCount <= 0 {
		return fmt.Errorf("generator record_count must be positive, got %d", g.RecordCount)
	}
	if len(g.Parameters) == 0 {
		return fmt.Errorf("generator parameters must not be empty")
	}
	seen := make(map[string]bool, len(g.Parameters))
	for _, p := range g.Parameters {
		if p == "" {
			return fmt.Errorf("generator parameters must not contain empty names")
		}
		if seen[p] {
			return fmt.Errorf("generator parameter %s is listed more than once", p)
		}
		seen[p] = true
	}
	switch g.Mode {
	case "accelerated", "linear":
	default:
		return fmt.Errorf("unsupported generator mode: %s", g.Mode)
	}
	if g.Workers < 0 {
		return fmt.Errorf("generator workers must not be negative, got %d", g.Workers)
	}
	if g.BatchSize < 0 {
		return fmt.Errorf("generator batch_size must not be negative, got %d", g.BatchSize)
	}
	return nil
}

// GetDSN returns the database connection string based on the configured driver
func (c *Config) GetDSN() string {
	switch c.Database.Driver {
	case "mysql":
		mysql := c.Database.MySQL
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
			mysql.User, mysql.Password, mysql.Host, mysql.Port, mysql.DBName,
			mysql.Charset, mysql.ParseTime, mysql.Loc)
		return dsn
	case "postgres":
		pg := c.Database.PostgreSQL
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
			pg.Host, pg.Port, pg.User, pg.Password, pg.DBName, pg.SSLMode, pg.TimeZone)
		return dsn
	case "sqlite":
		return c.Database.SQLite.Path
	default:
		return ""
	}
}
