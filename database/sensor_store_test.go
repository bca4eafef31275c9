package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/brewks/ga-maintenance/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "ga_maintenance.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.GetAllModels()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func reading(component int, param string, ts string, value float64, health int) models.SensorReading {
	return models.SensorReading{
		TailNumber:   "N12345",
		ComponentID:  component,
		Parameter:    param,
		Value:        value,
		Unit:         "psi",
		Timestamp:    ts,
		SensorHealth: health,
	}
}

func sampleReadings() []models.SensorReading {
	return []models.SensorReading{
		reading(1, "oil_press", "2025-06-01 10:00:00", 98.5, 0),
		reading(1, "oil_press", "2025-06-01 10:00:30", 61.2, 0),
		reading(1, "oil_press", "2025-06-01 10:01:00", 12.0, 1),
		reading(2, "oil_press", "2025-06-01 10:00:00", 88.0, 0),
		reading(1, "cht", "2025-06-01 10:00:00", 30.0, 1),
	}
}

func TestInsertReadings_CommitsAllRows(t *testing.T) {
	store := NewSensorStore(setupSQLite(t), 2)
	ctx := context.Background()

	n, err := store.InsertReadings(ctx, sampleReadings())
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestInsertReadings_EmptyBatch(t *testing.T) {
	store := NewSensorStore(setupSQLite(t), 0)

	n, err := store.InsertReadings(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInsertReadings_FailureLeavesNoPartialSeries(t *testing.T) {
	store := NewSensorStore(setupSQLite(t), 2)
	ctx := context.Background()

	rows := sampleReadings()
	rows = append(rows, rows[0]) // duplicate sample lands in the last chunk

	_, err := store.InsertReadings(ctx, rows)
	require.Error(t, err)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "earlier chunks must be rolled back")
}

func TestReadings_FilterAndOrder(t *testing.T) {
	store := NewSensorStore(setupSQLite(t), 0)
	ctx := context.Background()

	rows := sampleReadings()
	// insert out of order to check the query ordering
	rows[0], rows[2] = rows[2], rows[0]
	_, err := store.InsertReadings(ctx, rows)
	require.NoError(t, err)

	series, err := store.Readings(ctx, ReadingFilter{ComponentID: 1, Parameter: "oil_press"})
	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, "2025-06-01 10:00:00", series[0].Timestamp)
	assert.Equal(t, "2025-06-01 10:00:30", series[1].Timestamp)
	assert.Equal(t, "2025-06-01 10:01:00", series[2].Timestamp)

	unhealthy, err := store.Readings(ctx, ReadingFilter{UnhealthyOnly: true})
	require.NoError(t, err)
	require.Len(t, unhealthy, 2)
	assert.Equal(t, "cht", unhealthy[0].Parameter)
	assert.Equal(t, "oil_press", unhealthy[1].Parameter)

	limited, err := store.Readings(ctx, ReadingFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSeriesSummaries(t *testing.T) {
	store := NewSensorStore(setupSQLite(t), 0)
	ctx := context.Background()

	_, err := store.InsertReadings(ctx, sampleReadings())
	require.NoError(t, err)

	summaries, err := store.SeriesSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	oil := summaries[1]
	assert.Equal(t, 1, oil.ComponentID)
	assert.Equal(t, "oil_press", oil.Parameter)
	assert.Equal(t, int64(3), oil.TotalRows)
	assert.Equal(t, int64(1), oil.UnhealthyRows)
	assert.InDelta(t, 12.0, oil.MinValue, 1e-9)
	assert.InDelta(t, 98.5, oil.MaxValue, 1e-9)
	assert.InDelta(t, (98.5+61.2+12.0)/3, oil.AvgValue, 1e-9)
	assert.Equal(t, "2025-06-01 10:00:00", oil.FirstTimestamp)
	assert.Equal(t, "2025-06-01 10:01:00", oil.LastTimestamp)

	assert.Equal(t, "cht", summaries[0].Parameter)
	assert.Equal(t, 2, summaries[2].ComponentID)
}

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, *SensorStore) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return mock, NewSensorStore(db, 100)
}

func TestInsertReadings_RollsBackOnStoreError(t *testing.T) {
	mock, store := setupMockDB(t)
	writeErr := errors.New("disk full")

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "sensor_data"`).WillReturnError(writeErr)
	mock.ExpectRollback()

	n, err := store.InsertReadings(context.Background(), sampleReadings())
	require.Error(t, err)
	assert.ErrorIs(t, err, writeErr)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCount_Postgres(t *testing.T) {
	mock, store := setupMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "sensor_data"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(90))

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(90), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStats(t *testing.T) {
	store := NewSensorStore(setupSQLite(t), 10)
	ctx := context.Background()

	_, err := store.InsertReadings(ctx, sampleReadings())
	require.NoError(t, err)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, StoreStats{Readings: 5, Components: 2, Parameters: 2, Unhealthy: 2}, stats)
}

func TestStats_ReportsCountError(t *testing.T) {
	mock, store := setupMockDB(t)
	queryErr := errors.New("relation does not exist")

	mock.ExpectQuery(`SELECT count\(\*\) FROM "sensor_data"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(90))
	mock.ExpectQuery(`DISTINCT`).WillReturnError(queryErr)

	stats, err := store.Stats(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, queryErr)
	assert.Contains(t, err.Error(), "failed to count components")
	assert.Zero(t, stats)
	assert.NoError(t, mock.ExpectationsWereMet())
}
