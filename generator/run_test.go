package generator

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/brewks/ga-maintenance/database"
	"github.com/brewks/ga-maintenance/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingSink struct {
	calls    int
	readings []models.SensorReading
	err      error
}

func (s *recordingSink) InsertReadings(_ context.Context, readings []models.SensorReading) (int64, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	s.readings = append(s.readings, readings...)
	return int64(len(readings)), nil
}

func TestRun_PersistsSingleBatch(t *testing.T) {
	g := newGenerator(t, Options{Parameters: []Parameter{OilPress, CHT, RPM}, ComponentCount: 2, RecordCount: 15, Workers: 2}, 17)
	sink := &recordingSink{}

	res, err := g.Run(context.Background(), sink)
	require.NoError(t, err)

	assert.Equal(t, 1, sink.calls)
	assert.Len(t, sink.readings, 2*3*15)
	assert.Equal(t, int64(90), res.Rows)
	assert.Len(t, res.Components, 2)
	assert.Equal(t, "Inserted 90 synthetic sensor records successfully.", res.Message)
	assert.GreaterOrEqual(t, res.Unhealthy, 30, "every rpm sample is below the raw-scale threshold")
}

func TestRun_StoreFailureAbortsRun(t *testing.T) {
	g := newGenerator(t, Options{Parameters: []Parameter{RPM}, ComponentCount: 1, RecordCount: 5}, 1)
	storeErr := errors.New("database is locked")

	res, err := g.Run(context.Background(), &recordingSink{err: storeErr})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, storeErr)
}

func openSensorStore(t *testing.T, batchSize int) *database.SensorStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "ga_maintenance.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SensorReading{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return database.NewSensorStore(db, batchSize)
}

func TestRun_SingleRPMComponentEndToEnd(t *testing.T) {
	store := openSensorStore(t, 4)
	g := newGenerator(t, Options{Parameters: []Parameter{RPM}, ComponentCount: 1, RecordCount: 10}, 12)

	res, err := g.Run(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, "Inserted 10 synthetic sensor records successfully.", res.Message)

	rows, err := store.Readings(context.Background(), database.ReadingFilter{ComponentID: 1, Parameter: "rpm"})
	require.NoError(t, err)
	require.Len(t, rows, 10)

	for i, r := range rows {
		assert.Equal(t, "rpm", r.Unit)
		assert.LessOrEqual(t, r.Value, 200.0)
		// rpm threshold 1000 is on the raw engine scale, so the 0-100 output is always flagged
		assert.Equal(t, 1, r.SensorHealth)
		if i > 0 {
			prev, cur := parseTS(t, rows[i-1].Timestamp), parseTS(t, r.Timestamp)
			assert.Equal(t, 10*time.Second, cur.Sub(prev))
		}
	}
	assert.Equal(t, 10, res.Unhealthy)
}

func TestRun_LocalClockOverFallBackPersists(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	store := openSensorStore(t, 200)
	g, err := New(Options{Parameters: []Parameter{RPM}, ComponentCount: 1, RecordCount: 1000}, 9, nil)
	require.NoError(t, err)
	g.SetClock(func() time.Time { return time.Date(2026, 12, 12, 16, 30, 0, 0, ny) })

	res, err := g.Run(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), res.Rows)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1000), count)
}
