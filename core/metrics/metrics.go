package metrics

import (
	"time"

	"github.com/kilianp07/homeenergy/core/forecast"
)

// PredictionEvent describes one completed forecast.
type PredictionEvent struct {
	ID             string
	Value          float64
	Baseline       float64
	Classification forecast.Classification
	Duration       time.Duration
	Time           time.Time
}

// EventFromForecast converts an engine event.
func EventFromForecast(ev forecast.Event) PredictionEvent {
	return PredictionEvent{
		ID:             ev.Result.ID,
		Value:          ev.Result.Value,
		Baseline:       ev.Result.Baseline,
		Classification: ev.Result.Classification,
		Duration:       ev.Duration,
		Time:           ev.Result.At,
	}
}

// MetricsSink records forecasts for observability purposes.
type MetricsSink interface {
	RecordPrediction(ev PredictionEvent) error
}

// HistoryEvent summarises the dataset loaded at startup.
type HistoryEvent struct {
	Source    string
	Available bool
	Records   int
	Skipped   int
	Baseline  float64
	Time      time.Time
}

// HistoryRecorder is implemented by sinks that track the loaded dataset.
type HistoryRecorder interface {
	RecordHistory(ev HistoryEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordPrediction(PredictionEvent) error { return nil }
func (NopSink) RecordHistory(HistoryEvent) error       { return nil }
