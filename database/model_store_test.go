package database

import (
	"context"
	"testing"

	"github.com/brewks/ga-maintenance/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestModelStore_ListAndGet(t *testing.T) {
	db := setupSQLite(t)
	store := NewModelStore(db)
	ctx := context.Background()

	seed := []models.PredictiveModel{
		{ModelName: "rul-baseline", ModelType: "random_forest", Version: "1.0",
			PerformanceMetrics: datatypes.JSON(`{"precision":0.91,"recall":0.88,"accuracy":0.9,"f1_score":0.89}`)},
		{ModelName: "rul-gbm", ModelType: "gradient_boosting", Version: "1.1",
			PerformanceMetrics: datatypes.JSON(`{"precision":0.93}`)},
	}
	require.NoError(t, db.Create(&seed).Error)

	list, err := store.ListModels(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "rul-gbm", list[0].ModelName)

	m, err := store.GetModel(ctx, seed[0].ModelID)
	require.NoError(t, err)
	assert.Equal(t, "random_forest", m.ModelType)
	assert.JSONEq(t, `{"precision":0.91,"recall":0.88,"accuracy":0.9,"f1_score":0.89}`, string(m.PerformanceMetrics))
}

func TestModelStore_GetMissing(t *testing.T) {
	store := NewModelStore(setupSQLite(t))

	_, err := store.GetModel(context.Background(), 404)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelNotFound)
}
