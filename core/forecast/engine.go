package forecast

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Result is the outcome of one prediction request.
type Result struct {
	ID             string         `json:"id"`
	Input          Input          `json:"input"`
	Value          float64        `json:"value"`
	Classification Classification `json:"classification"`
	Baseline       float64        `json:"baseline"`
	At             time.Time      `json:"at"`
}

// Rounded returns the value rounded to two decimals.
func (r Result) Rounded() float64 { return math.Round(r.Value*100) / 100 }

// Display formats the value for users.
func (r Result) Display() string { return fmt.Sprintf("%.2f kWh", r.Value) }

// Event is emitted after every successful prediction.
type Event struct {
	Result   Result
	Duration time.Duration
}

// Publisher receives prediction events. Publish must not block.
type Publisher interface {
	Publish(Event)
}

// Engine runs predictions against a loaded model and classifies them against
// a fixed baseline. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	model    Model
	baseline float64
	pub      Publisher
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithPublisher sends an Event for every prediction to p.
func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.pub = p }
}

// WithClock overrides the time source used to stamp results.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine returns an engine for m using baseline as the classification reference.
func NewEngine(m Model, baseline float64, opts ...Option) *Engine {
	e := &Engine{model: m, baseline: baseline, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Baseline returns the classification reference in kWh.
func (e *Engine) Baseline() float64 { return e.baseline }

// Predict validates in, runs the model and classifies the forecast.
func (e *Engine) Predict(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	start := time.Now()
	v, err := e.model.Predict(in.Vector())
	if err != nil {
		return Result{}, fmt.Errorf("predict: %w", err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Result{}, fmt.Errorf("predict: model returned %v", v)
	}
	res := Result{
		ID:             uuid.NewString(),
		Input:          in,
		Value:          v,
		Classification: Classify(v, e.baseline),
		Baseline:       e.baseline,
		At:             e.now(),
	}
	if e.pub != nil {
		e.pub.Publish(Event{Result: res, Duration: time.Since(start)})
	}
	return res, nil
}
