package database

import (
	"fmt"
	"time"

	"github.com/brewks/ga-maintenance/config"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database instance
var DB *gorm.DB

// Dialector picks the gorm dialector for the configured driver
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	dsn := cfg.GetDSN()
	switch cfg.Database.Driver {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

// Connect opens the configured store, applies pool settings and sets the global DB
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := open(dialector, cfg)
	if err != nil {
		return nil, err
	}

	DB = db

	return db, nil
}

// open connects through dialector and pings once. A failed ping releases the pool.
func open(dialector gorm.Dialector, cfg *config.Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:               logger.Default.LogMode(gormLogLevel(cfg.Logging.LogLevel)),
		DisableAutomaticPing: true,
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	pool := cfg.Database.ConnectionPool
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// gormLogLevel keeps SQL statement logging to debug runs; batch inserts are too noisy otherwise
func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		return logger.Info
	case "error":
		return logger.Error
	default:
		return logger.Warn
	}
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		sqlDB, err := DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		err = sqlDB.Close()
		DB = nil
		return err
	}
	return nil
}

// GetDB returns the global database instance
func GetDB() *gorm.DB {
	return DB
}

// IsConnected reports whether the global connection answers a ping
func IsConnected() bool {
	if DB == nil {
		return false
	}
	sqlDB, err := DB.DB()
	return err == nil && sqlDB.Ping() == nil
}

// GetDatabaseInfo returns driver, pool and location details for the configured store
func GetDatabaseInfo(cfg *config.Config) map[string]interface{} {
	info := map[string]interface{}{
		"driver":    cfg.Database.Driver,
		"connected": IsConnected(),
	}

	if DB != nil {
		if sqlDB, err := DB.DB(); err == nil {
			stats := sqlDB.Stats()
			info["max_open_connections"] = stats.MaxOpenConnections
			info["open_connections"] = stats.OpenConnections
			info["in_use"] = stats.InUse
			info["idle"] = stats.Idle
		}
	}

	switch cfg.Database.Driver {
	case "mysql":
		info["host"], info["port"], info["database"] = cfg.Database.MySQL.Host, cfg.Database.MySQL.Port, cfg.Database.MySQL.DBName
	case "postgres":
		info["host"], info["port"], info["database"] = cfg.Database.PostgreSQL.Host, cfg.Database.PostgreSQL.Port, cfg.Database.PostgreSQL.DBName
	case "sqlite":
		info["path"] = cfg.Database.SQLite.Path
	}

	return info
}
