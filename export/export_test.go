package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/brewks/ga-maintenance/database"
	"github.com/brewks/ga-maintenance/modelmetrics"
	"github.com/brewks/ga-maintenance/models"

	"github.com/jszwec/csvutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func readings() []models.SensorReading {
	return []models.SensorReading{
		{ID: 7, TailNumber: "N54321", ComponentID: 1, Parameter: "cht", Value: 97.25, Unit: "°C", Timestamp: "2025-06-01 10:00:00", SensorHealth: 0},
		{ID: 8, TailNumber: "N54321", ComponentID: 1, Parameter: "cht", Value: 12.5, Unit: "°C", Timestamp: "2025-06-01 10:01:00", SensorHealth: 1},
	}
}

func TestWriteReadingsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReadingsCSV(&buf, readings()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "tail_number,component_id,parameter,value,unit,timestamp,sensor_health", lines[0])
	assert.NotContains(t, lines[0], "id,")

	var decoded []models.SensorReading
	require.NoError(t, csvutil.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "°C", decoded[1].Unit)
	assert.Equal(t, 1, decoded[1].SensorHealth)
	assert.InDelta(t, 12.5, decoded[1].Value, 1e-9)
	assert.Zero(t, decoded[0].ID)
}

func TestWriteReadingsCSV_EmptyKeepsHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReadingsCSV(&buf, nil))
	assert.Equal(t, "tail_number,component_id,parameter,value,unit,timestamp,sensor_health\n", buf.String())
}

func TestWriteReadingsXLSX(t *testing.T) {
	summaries := []database.SeriesSummary{{
		ComponentID: 1, TailNumber: "N54321", Parameter: "cht", Unit: "°C",
		TotalRows: 2, UnhealthyRows: 1, MinValue: 12.5, MaxValue: 97.25, AvgValue: 54.875,
		FirstTimestamp: "2025-06-01 10:00:00", LastTimestamp: "2025-06-01 10:01:00",
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteReadingsXLSX(&buf, readings(), summaries))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(readingsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "tail_number", rows[0][0])
	assert.Equal(t, "N54321", rows[1][0])
	assert.Equal(t, "2025-06-01 10:01:00", rows[2][5])
	assert.Equal(t, "1", rows[2][6])

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, []string{"component_id", "tail_number", "parameter", "unit", "rows", "unhealthy_rows",
		"min_value", "max_value", "avg_value", "first_timestamp", "last_timestamp"}, summary[0])
	assert.Equal(t, "cht", summary[1][2])
	assert.Equal(t, "2", summary[1][4])
}

func TestWriteMetricsJSON(t *testing.T) {
	var buf bytes.Buffer
	m := modelmetrics.PerformanceMetrics{Precision: 0.9, Recall: 0.8, Accuracy: 0.85, F1Score: 0.84}
	require.NoError(t, WriteMetricsJSON(&buf, m))

	assert.JSONEq(t, `{"precision":0.9,"recall":0.8,"accuracy":0.85,"f1_score":0.84}`, buf.String())
	assert.True(t, modelmetrics.Validate(buf.String()))
}
