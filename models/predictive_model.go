package models

import (
	"time"

	"gorm.io/datatypes"
)

// PredictiveModel is a trained failure model and its stored evaluation metrics
type PredictiveModel struct {
	ModelID            uint           `gorm:"column:model_id;primaryKey;autoIncrement" json:"model_id"`
	ModelName          string         `gorm:"column:model_name;size:128;not null" json:"model_name"`
	ModelType          string         `gorm:"column:model_type;size:64" json:"algorithm"`
	Version            string         `gorm:"column:version;size:32" json:"version"`
	CreatedAt          time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	PerformanceMetrics datatypes.JSON `gorm:"column:performance_metrics" json:"performance_metrics"`
}

// TableName customizes the table name
func (PredictiveModel) TableName() string {
	return "predictive_models"
}
