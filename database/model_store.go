package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/brewks/ga-maintenance/models"

	"gorm.io/gorm"
)

// ErrModelNotFound is returned when no predictive model has the requested id
var ErrModelNotFound = errors.New("predictive model not found")

// ModelStore reads the predictive_models table
type ModelStore struct {
	db *gorm.DB
}

// NewModelStore creates a model store
func NewModelStore(db *gorm.DB) *ModelStore {
	return &ModelStore{db: db}
}

// ListModels returns all models, newest id first
func (s *ModelStore) ListModels(ctx context.Context) ([]models.PredictiveModel, error) {
	var list []models.PredictiveModel
	if err := s.db.WithContext(ctx).Order("model_id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list predictive models: %w", err)
	}
	return list, nil
}

// GetModel returns one model by id
func (s *ModelStore) GetModel(ctx context.Context, id uint) (*models.PredictiveModel, error) {
	var m models.PredictiveModel
	err := s.db.WithContext(ctx).Where("model_id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrModelNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load predictive model %d: %w", id, err)
	}
	return &m, nil
}
