package metrics

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPrediction forwards the event to all sinks. Every sink is tried;
// the first error encountered is returned.
func (m *MultiSink) RecordPrediction(ev PredictionEvent) error {
	var first error
	for _, s := range m.Sinks {
		if err := s.RecordPrediction(ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// RecordHistory forwards the event to sinks implementing HistoryRecorder.
func (m *MultiSink) RecordHistory(ev HistoryEvent) error {
	var first error
	for _, s := range m.Sinks {
		if rec, ok := s.(HistoryRecorder); ok {
			if err := rec.RecordHistory(ev); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
