package metrics

import (
	"context"

	"github.com/kilianp07/homeenergy/core/forecast"
	coremetrics "github.com/kilianp07/homeenergy/core/metrics"
	"github.com/kilianp07/homeenergy/infra/logger"
	"github.com/kilianp07/homeenergy/internal/eventbus"
)

// StartEventCollector subscribes to the bus and records every forecast event
// on sink. It returns a channel closed once the collector has stopped, which
// happens when ctx is canceled or the bus is closed.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[forecast.Event], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := sink.RecordPrediction(coremetrics.EventFromForecast(ev)); err != nil {
					log.Warnf("record prediction %s: %v", ev.Result.ID, err)
				}
			}
		}
	}()
	return done
}
