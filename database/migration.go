package database

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/brewks/ga-maintenance/config"
	"github.com/brewks/ga-maintenance/logger"

	"gorm.io/gorm"
)

// Migration is a row in the migration bookkeeping table
type Migration struct {
	ID          uint   `gorm:"primaryKey"`
	Version     string `gorm:"unique;not null"`
	Name        string `gorm:"not null"`
	Applied     bool   `gorm:"default:false"`
	AppliedAt   *time.Time
	Description string
}

// MigrationFile is a SQL file named YYYYMMDD_HHMMSS_description.sql
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	FilePath    string
	Applied     bool
}

// MigrationRunner applies SQL migrations and auto-migrates the dashboard models
type MigrationRunner struct {
	db             *gorm.DB
	migrationTable string
	migrationDir   string
}

// NewMigrationRunner creates a new migration runner
func NewMigrationRunner(db *gorm.DB, cfg *config.Config) *MigrationRunner {
	table := cfg.Migration.MigrationTable
	if table == "" {
		table = "migrations"
	}
	dir := cfg.Migration.Directory
	if dir == "" {
		dir = "migrations"
	}
	return &MigrationRunner{db: db, migrationTable: table, migrationDir: dir}
}

func (mr *MigrationRunner) table(db *gorm.DB) *gorm.DB {
	return db.Table(mr.migrationTable)
}

// InitializeMigrationTable creates the migration table if it doesn't exist
func (mr *MigrationRunner) InitializeMigrationTable() error {
	return mr.table(mr.db).AutoMigrate(&Migration{})
}

// AutoMigrate creates or updates the tables backing the given models
func (mr *MigrationRunner) AutoMigrate(models ...interface{}) error {
	if err := mr.db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to auto-migrate models: %w", err)
	}
	logger.Printf("Auto-migrated %d model(s)\n", len(models))
	return nil
}

// parseMigrationFilename splits YYYYMMDD_HHMMSS_description.sql into its parts
func parseMigrationFilename(filename string) (MigrationFile, error) {
	parts := strings.SplitN(strings.TrimSuffix(filename, ".sql"), "_", 3)
	if len(parts) < 3 || len(parts[0]) != 8 || len(parts[1]) != 6 {
		return MigrationFile{}, fmt.Errorf("invalid migration filename format: %s (expected: YYYYMMDD_HHMMSS_description.sql)", filename)
	}
	return MigrationFile{
		Version:     parts[0] + "_" + parts[1],
		Name:        strings.ReplaceAll(parts[2], "_", " "),
		Description: parts[2],
	}, nil
}

// GetMigrationFiles lists migration files in version order. A missing directory yields none.
func (mr *MigrationRunner) GetMigrationFiles() ([]MigrationFile, error) {
	entries, err := os.ReadDir(mr.migrationDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	var files []MigrationFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		mf, err := parseMigrationFilename(entry.Name())
		if err != nil {
			return nil, err
		}
		mf.FilePath = filepath.Join(mr.migrationDir, entry.Name())
		files = append(files, mf)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Version < files[j].Version
	})
	return files, nil
}

// GetAppliedMigrations returns all applied migrations from the database
func (mr *MigrationRunner) GetAppliedMigrations() ([]Migration, error) {
	if err := mr.InitializeMigrationTable(); err != nil {
		return nil, fmt.Errorf("failed to initialize migration table: %w", err)
	}

	var migrations []Migration
	if err := mr.table(mr.db).Where("applied = ?", true).Order("version ASC").Find(&migrations).Error; err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	return migrations, nil
}

// GetMigrationStatus returns every migration file marked with its applied state
func (mr *MigrationRunner) GetMigrationStatus() ([]MigrationFile, error) {
	files, err := mr.GetMigrationFiles()
	if err != nil {
		return nil, err
	}
	applied, err := mr.GetAppliedMigrations()
	if err != nil {
		return nil, err
	}

	appliedVersions := make(map[string]bool, len(applied))
	for _, m := range applied {
		appliedVersions[m.Version] = true
	}
	for i := range files {
		files[i].Applied = appliedVersions[files[i].Version]
	}
	return files, nil
}

// GetPendingMigrations returns migrations that haven't been applied yet
func (mr *MigrationRunner) GetPendingMigrations() ([]MigrationFile, error) {
	files, err := mr.GetMigrationStatus()
	if err != nil {
		return nil, err
	}

	var pending []MigrationFile
	for _, f := range files {
		if !f.Applied {
			pending = append(pending, f)
		}
	}
	return pending, nil
}

// RunMigrations executes all pending migrations
func (mr *MigrationRunner) RunMigrations() error {
	pending, err := mr.GetPendingMigrations()
	if err != nil {
		return fmt.Errorf("failed to get pending migrations: %w", err)
	}

	if len(pending) == 0 {
		logger.Println("No pending migrations to run")
		return nil
	}

	logger.Printf("Running %d pending migration(s)...\n", len(pending))
	for i, migration := range pending {
		logger.LogProgress(i+1, len(pending), migration.Version+" "+migration.Name)
		if err := mr.runSingleMigration(migration); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", migration.Version, err)
		}
	}

	logger.Println("All migrations completed successfully")
	return nil
}

// runSingleMigration executes one file and records it in the same transaction
func (mr *MigrationRunner) runSingleMigration(mf MigrationFile) error {
	content, err := os.ReadFile(mf.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read migration file: %w", err)
	}

	return mr.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(string(content)).Error; err != nil {
			return fmt.Errorf("failed to execute migration SQL: %w", err)
		}

		now := time.Now()
		record := Migration{
			Version:     mf.Version,
			Name:        mf.Name,
			Applied:     true,
			AppliedAt:   &now,
			Description: mf.Description,
		}
		if err := mr.table(tx).Create(&record).Error; err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}
		return nil
	})
}

// CreateMigration writes an empty timestamped migration file and returns its path
func (mr *MigrationRunner) CreateMigration(name string) (string, error) {
	if err := os.MkdirAll(mr.migrationDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create migrations directory: %w", err)
	}

	now := time.Now()
	cleanName := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
	filename := fmt.Sprintf("%s_%s.sql", now.Format("20060102_150405"), cleanName)
	filePath := filepath.Join(mr.migrationDir, filename)

	template := fmt.Sprintf(`-- Migration: %s
-- Created: %s

-- Keep statements portable across sqlite, mysql and postgres.
-- Example:
-- CREATE INDEX idx_sensor_data_health ON sensor_data (sensor_health);
`, name, now.Format("2006-01-02 15:04:05"))

	if err := os.WriteFile(filePath, []byte(template), 0644); err != nil {
		return "", fmt.Errorf("failed to create migration file: %w", err)
	}
	return filePath, nil
}
