package models

import "time"

// Component is a tracked aircraft part shown on the fleet dashboards
type Component struct {
	ComponentID         int      `gorm:"column:component_id;primaryKey" json:"component_id"`
	TailNumber          string   `gorm:"column:tail_number;size:16;not null" json:"tail_number"`
	Name                string   `gorm:"column:name;size:128;not null" json:"name"`
	Condition           string   `gorm:"column:condition;size:32" json:"condition"`
	RemainingUsefulLife *float64 `gorm:"column:remaining_useful_life" json:"remaining_useful_life,omitempty"`
	LastHealthScore     *float64 `gorm:"column:last_health_score" json:"last_health_score,omitempty"`
}

// TableName customizes the table name
func (Component) TableName() string {
	return "components"
}

// ComponentPrediction is a model's failure forecast for one component
type ComponentPrediction struct {
	PredictionID         uint       `gorm:"column:prediction_id;primaryKey;autoIncrement" json:"prediction_id"`
	ComponentID          int        `gorm:"column:component_id;not null;index" json:"component_id"`
	ModelID              uint       `gorm:"column:model_id;index" json:"model_id"`
	PredictedFailureDate *time.Time `gorm:"column:predicted_failure_date" json:"predicted_failure_date,omitempty"`
	RemainingUsefulLife  *float64   `gorm:"column:remaining_useful_life" json:"remaining_useful_life,omitempty"`
	Confidence           *float64   `gorm:"column:confidence" json:"confidence,omitempty"`
	PredictionTime       time.Time  `gorm:"column:prediction_time;autoCreateTime" json:"prediction_time"`
}

// TableName customizes the table name
func (ComponentPrediction) TableName() string {
	return "component_predictions"
}
