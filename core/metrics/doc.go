// Package metrics defines the sinks that observe forecasts. Sinks such as
// PromSink and InfluxSink record every prediction and, when they implement
// HistoryRecorder, the dataset summary loaded at startup. NewMetricsSink
// returns a MultiSink automatically when several sinks are configured.
package metrics
