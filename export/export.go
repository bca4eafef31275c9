// Package export writes stored sensor readings and model metrics to downloadable files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/brewks/ga-maintenance/database"
	"github.com/brewks/ga-maintenance/modelmetrics"
	"github.com/brewks/ga-maintenance/models"

	"github.com/jszwec/csvutil"
	"github.com/xuri/excelize/v2"
)

const (
	readingsSheet = "sensor_data"
	summarySheet  = "summary"
)

// WriteReadingsCSV writes a header row and one row per reading
func WriteReadingsCSV(w io.Writer, readings []models.SensorReading) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	var err error
	if len(readings) == 0 {
		err = enc.EncodeHeader(models.SensorReading{})
	} else {
		err = enc.Encode(readings)
	}
	if err != nil {
		return fmt.Errorf("failed to encode readings CSV: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write readings CSV: %w", err)
	}
	return nil
}

// WriteReadingsXLSX writes a workbook with a sensor_data sheet and a per-series summary sheet
func WriteReadingsXLSX(w io.Writer, readings []models.SensorReading, summaries []database.SeriesSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", readingsSheet); err != nil {
		return fmt.Errorf("failed to name readings sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(readingsSheet)
	if err != nil {
		return fmt.Errorf("failed to open readings sheet: %w", err)
	}
	header := []interface{}{"tail_number", "component_id", "parameter", "value", "unit", "timestamp", "sensor_health"}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write readings header: %w", err)
	}
	for i, r := range readings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{r.TailNumber, r.ComponentID, r.Parameter, r.Value, r.Unit, r.Timestamp, r.SensorHealth}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write reading row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush readings sheet: %w", err)
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	summaryHeader := []interface{}{"component_id", "tail_number", "parameter", "unit", "rows", "unhealthy_rows",
		"min_value", "max_value", "avg_value", "first_timestamp", "last_timestamp"}
	if err := f.SetSheetRow(summarySheet, "A1", &summaryHeader); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}
	for i, s := range summaries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{s.ComponentID, s.TailNumber, s.Parameter, s.Unit, s.TotalRows, s.UnhealthyRows,
			s.MinValue, s.MaxValue, s.AvgValue, s.FirstTimestamp, s.LastTimestamp}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteMetricsJSON writes a model's metrics as indented JSON
func WriteMetricsJSON(w io.Writer, m modelmetrics.PerformanceMetrics) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metrics: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
