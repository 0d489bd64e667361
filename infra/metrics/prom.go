package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/homeenergy/core/metrics"
)

// PromSink records forecasts in Prometheus metrics.
type PromSink struct {
	predictions *prometheus.CounterVec
	value       prometheus.Histogram
	duration    prometheus.Histogram
	baseline    prometheus.Gauge
	records     prometheus.Gauge
}

// NewPromSink registers forecast metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered under the same name are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	predictions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "homeenergy_predictions_total",
		Help: "Total number of forecasts by classification",
	}, []string{"classification"})
	value := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "homeenergy_prediction_kwh",
		Help:    "Distribution of forecast energy consumption",
		Buckets: []float64{0.5, 1, 2, 3, 4, 5, 7.5, 10, 15},
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "homeenergy_predict_duration_seconds",
		Help:    "Time spent evaluating the forecast model",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
	})
	baseline := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "homeenergy_baseline_kwh",
		Help: "Baseline consumption used for classification",
	})
	records := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "homeenergy_history_records",
		Help: "Number of records in the loaded dataset",
	})

	var err error
	if predictions, err = register(reg, predictions); err != nil {
		return nil, err
	}
	if value, err = register(reg, value); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if baseline, err = register(reg, baseline); err != nil {
		return nil, err
	}
	if records, err = register(reg, records); err != nil {
		return nil, err
	}
	return &PromSink{predictions: predictions, value: value, duration: duration, baseline: baseline, records: records}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordPrediction counts the forecast and observes its value and latency.
func (s *PromSink) RecordPrediction(ev coremetrics.PredictionEvent) error {
	s.predictions.WithLabelValues(ev.Classification.String()).Inc()
	s.value.Observe(ev.Value)
	s.duration.Observe(ev.Duration.Seconds())
	s.baseline.Set(ev.Baseline)
	return nil
}

// RecordHistory exposes the dataset size and baseline.
func (s *PromSink) RecordHistory(ev coremetrics.HistoryEvent) error {
	s.records.Set(float64(ev.Records))
	s.baseline.Set(ev.Baseline)
	return nil
}
