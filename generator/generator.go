// Package generator synthesizes degrading sensor series for simulated aircraft components.
package generator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/brewks/ga-maintenance/models"

	"go.uber.org/zap"
)

// ErrInvalidOptions is wrapped by every configuration error returned from New
var ErrInvalidOptions = errors.New("invalid generator options")

// Mode selects the degradation policy
type Mode string

const (
	// ModeAccelerated samples on per-parameter intervals, halves the curve after a random
	// failure point and classifies health against per-parameter thresholds.
	ModeAccelerated Mode = "accelerated"
	// ModeLinear is the legacy policy: one sample per calendar day, no failure point,
	// every row healthy.
	ModeLinear Mode = "linear"
)

// ParseMode validates a configured mode name
func ParseMode(name string) (Mode, error) {
	switch Mode(name) {
	case ModeAccelerated, ModeLinear:
		return Mode(name), nil
	case "":
		return ModeAccelerated, nil
	default:
		return "", fmt.Errorf("%w: unsupported mode %q", ErrInvalidOptions, name)
	}
}

const (
	noiseStdDev    = 0.05
	failureFactor  = 0.5
	valueScale     = 100.0
	tailNumberMin  = 10000
	tailNumberSpan = 90000
)

// Options describes one generation run
type Options struct {
	Parameters     []Parameter
	ComponentCount int
	RecordCount    int
	Mode           Mode
	DisableNoise   bool
	Workers        int

	// ThresholdOverrides replaces table thresholds for the listed parameters.
	ThresholdOverrides map[Parameter]float64
}

// ComponentPlan holds the per-component draws shared by all of its parameters
type ComponentPlan struct {
	ComponentID int
	TailNumber  string
	// FailurePoint is the first accelerated sample index, or -1 when the mode has none.
	FailurePoint int
}

// Batch is the full output of a run, ordered by component, parameter and sample index
type Batch struct {
	Plans    []ComponentPlan
	Readings []models.SensorReading
}

// Unhealthy counts readings flagged below threshold
func (b *Batch) Unhealthy() int {
	n := 0
	for _, r := range b.Readings {
		if r.Unhealthy() {
			n++
		}
	}
	return n
}

// Generator produces synthetic degradation series from a seeded source
type Generator struct {
	opts Options
	seed int64
	now  func() time.Time
	log  *zap.Logger
}

// New validates opts and returns a generator whose output is fully determined by seed and clock
func New(opts Options, seed int64, log *zap.Logger) (*Generator, error) {
	if opts.ComponentCount <= 0 {
		return nil, fmt.Errorf("%w: component count must be positive, got %d", ErrInvalidOptions, opts.ComponentCount)
	}
	if opts.RecordCount <= 0 {
		return nil, fmt.Errorf("%w: record count must be positive, got %d", ErrInvalidOptions, opts.RecordCount)
	}
	if len(opts.Parameters) == 0 {
		return nil, fmt.Errorf("%w: at least one parameter is required", ErrInvalidOptions)
	}
	seen := make(map[Parameter]bool, len(opts.Parameters))
	for _, p := range opts.Parameters {
		if seen[p] {
			return nil, fmt.Errorf("%w: parameter %s is listed more than once", ErrInvalidOptions, p)
		}
		seen[p] = true
	}
	mode, err := ParseMode(string(opts.Mode))
	if err != nil {
		return nil, err
	}
	opts.Mode = mode
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Workers > opts.ComponentCount {
		opts.Workers = opts.ComponentCount
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Generator{opts: opts, seed: seed, now: time.Now, log: log}, nil
}

// SetClock replaces the wall clock used to anchor the run's base time
func (g *Generator) SetClock(now func() time.Time) {
	g.now = now
}

// Options returns the normalized run options
func (g *Generator) Options() Options {
	return g.opts
}

// Threshold returns the effective health threshold for p in this run
func (g *Generator) Threshold(p Parameter) float64 {
	if t, ok := g.opts.ThresholdOverrides[p]; ok {
		return t
	}
	return p.Threshold()
}

// baseline is the noise-free degradation fraction at sample i of r.
// Samples at or past failurePoint are scaled by failureFactor; a negative failurePoint never accelerates.
func baseline(i, r, failurePoint int) float64 {
	base := math.Max(float64(r-i)/float64(r), 0)
	if failurePoint >= 0 && i >= failurePoint {
		base *= failureFactor
	}
	return base
}

// scaleValue clamps a noisy fraction at zero and maps it onto 0-100
func scaleValue(fraction float64) float64 {
	return math.Max(fraction, 0) * valueScale
}

// healthFlag is 1 when value is below threshold, 0 otherwise
func healthFlag(value, threshold float64) int {
	if value < threshold {
		return 1
	}
	return 0
}

// wallClockUTC keeps t's local wall-clock reading but moves it onto UTC,
// so stepping forward never crosses a daylight-saving transition.
func wallClockUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

type componentJob struct {
	index int
	seed  int64
}

type componentResult struct {
	index    int
	plan     ComponentPlan
	readings []models.SensorReading
	err      error
}

// Generate produces ComponentCount x len(Parameters) x RecordCount readings
func (g *Generator) Generate(ctx context.Context) (*Batch, error) {
	c := g.opts.ComponentCount
	baseTime := wallClockUTC(g.now()).Add(-time.Duration(g.opts.RecordCount) * time.Hour)

	// Seeds are drawn up front so the output does not depend on worker scheduling.
	master := rand.New(rand.NewSource(g.seed))
	jobs := make(chan componentJob, c)
	for i := 0; i < c; i++ {
		jobs <- componentJob{index: i, seed: master.Int63()}
	}
	close(jobs)

	results := make(chan componentResult, c)
	var wg sync.WaitGroup
	for w := 0; w < g.opts.Workers; w++ {
		wg.Add(1)
		go g.worker(ctx, baseTime, jobs, results, &wg)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]componentResult, c)
	var firstErr error
	for res := range results {
		if res.err != nil && firstErr == nil {
			firstErr = res.err
		}
		ordered[res.index] = res
	}
	if firstErr != nil {
		return nil, firstErr
	}

	perComponent := len(g.opts.Parameters) * g.opts.RecordCount
	batch := &Batch{
		Plans:    make([]ComponentPlan, 0, c),
		Readings: make([]models.SensorReading, 0, c*perComponent),
	}
	for _, res := range ordered {
		batch.Plans = append(batch.Plans, res.plan)
		batch.Readings = append(batch.Readings, res.readings...)
	}
	return batch, nil
}

func (g *Generator) worker(ctx context.Context, baseTime time.Time, jobs <-chan componentJob, results chan<- componentResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for job := range jobs {
		if err := ctx.Err(); err != nil {
			results <- componentResult{index: job.index, err: err}
			continue
		}
		rng := rand.New(rand.NewSource(job.seed))
		plan, readings := g.generateComponent(job.index+1, rng, baseTime)
		results <- componentResult{index: job.index, plan: plan, readings: readings}
	}
}

func (g *Generator) planComponent(id int, rng *rand.Rand) ComponentPlan {
	plan := ComponentPlan{
		ComponentID:  id,
		TailNumber:   fmt.Sprintf("N%d", tailNumberMin+rng.Intn(tailNumberSpan)),
		FailurePoint: -1,
	}
	if g.opts.Mode == ModeAccelerated {
		r := g.opts.RecordCount
		lo := (r + 1) / 2
		plan.FailurePoint = lo + rng.Intn(r-lo+1)
	}
	return plan
}

func (g *Generator) generateComponent(id int, rng *rand.Rand, baseTime time.Time) (ComponentPlan, []models.SensorReading) {
	plan := g.planComponent(id, rng)
	r := g.opts.RecordCount
	readings := make([]models.SensorReading, 0, len(g.opts.Parameters)*r)

	for _, param := range g.opts.Parameters {
		interval := param.SamplingInterval()
		threshold := g.Threshold(param)
		unit := param.Unit()

		var offset time.Duration
		for i := 0; i < r; i++ {
			noise := 0.0
			if !g.opts.DisableNoise {
				noise = rng.NormFloat64() * noiseStdDev
			}
			value := scaleValue(baseline(i, r, plan.FailurePoint) + noise)

			var ts time.Time
			health := 0
			switch g.opts.Mode {
			case ModeLinear:
				ts = baseTime.AddDate(0, 0, i)
			default:
				ts = baseTime.Add(offset)
				offset += interval
				health = healthFlag(value, threshold)
			}

			readings = append(readings, models.SensorReading{
				TailNumber:   plan.TailNumber,
				ComponentID:  plan.ComponentID,
				Parameter:    string(param),
				Value:        value,
				Unit:         unit,
				Timestamp:    ts.Format(models.TimestampLayout),
				SensorHealth: health,
			})
		}
	}

	g.log.Debug("component series generated",
		zap.Int("component_id", plan.ComponentID),
		zap.String("tail_number", plan.TailNumber),
		zap.Int("failure_point", plan.FailurePoint),
		zap.Int("rows", len(readings)),
	)
	return plan, readings
}
