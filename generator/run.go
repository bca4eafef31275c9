package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/brewks/ga-maintenance/models"
	"github.com/brewks/ga-maintenance/observability/metrics"

	"go.uber.org/zap"
)

// Sink persists a run's readings as one all-or-nothing batch
type Sink interface {
	InsertReadings(ctx context.Context, readings []models.SensorReading) (int64, error)
}

// Result summarizes a completed run
type Result struct {
	Rows       int64
	Unhealthy  int
	Components []ComponentPlan
	Duration   time.Duration
	Message    string
}

// Run generates the batch and hands it to sink. Any failure aborts the whole run.
func (g *Generator) Run(ctx context.Context, sink Sink) (*Result, error) {
	start := time.Now()
	mode := string(g.opts.Mode)

	batch, err := g.Generate(ctx)
	if err != nil {
		metrics.ObserveGeneration(mode, metrics.ResultError, time.Since(start))
		return nil, fmt.Errorf("failed to generate readings: %w", err)
	}
	g.recordRows(batch)

	rows, err := sink.InsertReadings(ctx, batch.Readings)
	if err != nil {
		metrics.ObserveGeneration(mode, metrics.ResultError, time.Since(start))
		return nil, fmt.Errorf("failed to persist %d readings: %w", len(batch.Readings), err)
	}

	res := &Result{
		Rows:       rows,
		Unhealthy:  batch.Unhealthy(),
		Components: batch.Plans,
		Duration:   time.Since(start),
		Message:    fmt.Sprintf("Inserted %d synthetic sensor records successfully.", rows),
	}
	metrics.ObserveGeneration(mode, metrics.ResultSuccess, res.Duration)

	g.log.Info("synthetic run completed",
		zap.String("mode", mode),
		zap.Int64("rows", res.Rows),
		zap.Int("unhealthy", res.Unhealthy),
		zap.Int("components", len(res.Components)),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

func (g *Generator) recordRows(batch *Batch) {
	total := make(map[string]int, len(g.opts.Parameters))
	unhealthy := make(map[string]int, len(g.opts.Parameters))
	for _, r := range batch.Readings {
		total[r.Parameter]++
		if r.Unhealthy() {
			unhealthy[r.Parameter]++
		}
	}
	for param, n := range total {
		metrics.AddRows(param, n, unhealthy[param])
	}
}
