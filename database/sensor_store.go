package database

import (
	"context"
	"fmt"
	"time"

	"github.com/brewks/ga-maintenance/models"
	"github.com/brewks/ga-maintenance/observability/metrics"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultBatchSize = 500

// SensorStore reads and writes the sensor_data table
type SensorStore struct {
	db        *gorm.DB
	batchSize int
}

// NewSensorStore creates a store inserting in chunks of batchSize rows
func NewSensorStore(db *gorm.DB, batchSize int) *SensorStore {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &SensorStore{db: db, batchSize: batchSize}
}

// InsertReadings appends readings in one transaction. On error nothing is committed.
func (s *SensorStore) InsertReadings(ctx context.Context, readings []models.SensorReading) (int64, error) {
	if len(readings) == 0 {
		return 0, nil
	}

	start := time.Now()
	var inserted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.CreateInBatches(readings, s.batchSize)
		if result.Error != nil {
			return result.Error
		}
		inserted = result.RowsAffected
		return nil
	})
	if err != nil {
		metrics.ObservePersist(metrics.ResultError, time.Since(start))
		return 0, fmt.Errorf("failed to insert sensor readings: %w", err)
	}

	metrics.ObservePersist(metrics.ResultSuccess, time.Since(start))
	return inserted, nil
}

// Count returns the number of stored readings
func (s *SensorStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.SensorReading{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count sensor readings: %w", err)
	}
	return count, nil
}

// StoreStats are table-wide sensor_data counts
type StoreStats struct {
	Readings   int64
	Components int64
	Parameters int64
	Unhealthy  int64
}

// Stats counts readings, distinct components and parameters, and unhealthy readings
func (s *SensorStore) Stats(ctx context.Context) (StoreStats, error) {
	var stats StoreStats
	counts := []struct {
		name  string
		query func(*gorm.DB) *gorm.DB
		dest  *int64
	}{
		{"readings", func(q *gorm.DB) *gorm.DB { return q }, &stats.Readings},
		{"components", func(q *gorm.DB) *gorm.DB { return q.Distinct("component_id") }, &stats.Components},
		{"parameters", func(q *gorm.DB) *gorm.DB { return q.Distinct("parameter") }, &stats.Parameters},
		{"unhealthy readings", func(q *gorm.DB) *gorm.DB { return q.Where("sensor_health = ?", 1) }, &stats.Unhealthy},
	}
	for _, c := range counts {
		q := c.query(s.db.WithContext(ctx).Model(&models.SensorReading{}))
		if err := q.Count(c.dest).Error; err != nil {
			return StoreStats{}, fmt.Errorf("failed to count %s: %w", c.name, err)
		}
	}
	return stats, nil
}

// ReadingFilter narrows a readings query. Zero values match everything.
type ReadingFilter struct {
	ComponentID   int
	Parameter     string
	TailNumber    string
	UnhealthyOnly bool
	Limit         int
}

// Readings returns stored readings ordered by component, parameter and time
func (s *SensorStore) Readings(ctx context.Context, filter ReadingFilter) ([]models.SensorReading, error) {
	q := s.db.WithContext(ctx).Model(&models.SensorReading{})
	if filter.ComponentID > 0 {
		q = q.Where("component_id = ?", filter.ComponentID)
	}
	if filter.Parameter != "" {
		q = q.Where("parameter = ?", filter.Parameter)
	}
	if filter.TailNumber != "" {
		q = q.Where("tail_number = ?", filter.TailNumber)
	}
	if filter.UnhealthyOnly {
		q = q.Where("sensor_health = ?", 1)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var readings []models.SensorReading
	err := q.Order("component_id ASC").
		Order("parameter ASC").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}}).
		Find(&readings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query sensor readings: %w", err)
	}
	return readings, nil
}

// SeriesSummary aggregates one (component, parameter) series
type SeriesSummary struct {
	ComponentID    int     `json:"component_id"`
	TailNumber     string  `json:"tail_number"`
	Parameter      string  `json:"parameter"`
	Unit           string  `json:"unit"`
	TotalRows      int64   `json:"total_rows"`
	UnhealthyRows  int64   `json:"unhealthy_rows"`
	MinValue       float64 `json:"min_value"`
	MaxValue       float64 `json:"max_value"`
	AvgValue       float64 `json:"avg_value"`
	FirstTimestamp string  `json:"first_timestamp"`
	LastTimestamp  string  `json:"last_timestamp"`
}

// SeriesSummaries returns per-series row counts, value range and time span
func (s *SensorStore) SeriesSummaries(ctx context.Context) ([]SeriesSummary, error) {
	ts := clause.Column{Name: "timestamp"}

	var summaries []SeriesSummary
	err := s.db.WithContext(ctx).
		Model(&models.SensorReading{}).
		Select("component_id, tail_number, parameter, unit, "+
			"COUNT(*) AS total_rows, SUM(sensor_health) AS unhealthy_rows, "+
			"MIN(value) AS min_value, MAX(value) AS max_value, AVG(value) AS avg_value, "+
			"MIN(?) AS first_timestamp, MAX(?) AS last_timestamp", ts, ts).
		Group("component_id, tail_number, parameter, unit").
		Order("component_id ASC, parameter ASC").
		Scan(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize sensor readings: %w", err)
	}
	return summaries, nil
}
