package models

// TimestampLayout is the text form of SensorReading.Timestamp read by the dashboards
const TimestampLayout = "2006-01-02 15:04:05"

// SensorReading is one simulated sample of a monitored parameter on a component
type SensorReading struct {
	ID           uint    `gorm:"primaryKey;autoIncrement" json:"id" csv:"-"`
	TailNumber   string  `gorm:"column:tail_number;size:16;not null;uniqueIndex:idx_series_sample" json:"tail_number" csv:"tail_number"`
	ComponentID  int     `gorm:"column:component_id;not null;uniqueIndex:idx_series_sample;index:idx_component_parameter" json:"component_id" csv:"component_id"`
	Parameter    string  `gorm:"column:parameter;size:64;not null;uniqueIndex:idx_series_sample;index:idx_component_parameter" json:"parameter" csv:"parameter"`
	Value        float64 `gorm:"column:value;not null" json:"value" csv:"value"`
	Unit         string  `gorm:"column:unit;size:16;not null" json:"unit" csv:"unit"`
	Timestamp    string  `gorm:"column:timestamp;type:varchar(19);not null;uniqueIndex:idx_series_sample" json:"timestamp" csv:"timestamp"`
	SensorHealth int     `gorm:"column:sensor_health;not null;default:0" json:"sensor_health" csv:"sensor_health"`
}

// TableName customizes the table name
func (SensorReading) TableName() string {
	return "sensor_data"
}

// Unhealthy reports whether the reading fell below its parameter threshold
func (r SensorReading) Unhealthy() bool {
	return r.SensorHealth == 1
}

// GetAllModels returns all models for migration
func GetAllModels() []interface{} {
	return []interface{}{
		&SensorReading{},
		&Component{},
		&ComponentPrediction{},
		&PredictiveModel{},
	}
}
