// Package alert turns HIGH forecasts into transient notifications.
package alert

import (
	"context"
	"time"

	"github.com/kilianp07/homeenergy/core/forecast"
	"github.com/kilianp07/homeenergy/core/logger"
)

// DefaultTopic is where alerts are published unless configured otherwise.
const DefaultTopic = "homeenergy/forecast/alert"

// Alert is the payload sent for a forecast above the high threshold.
type Alert struct {
	ID             string                  `json:"id"`
	Classification forecast.Classification `json:"classification"`
	Severity       string                  `json:"severity"`
	Value          float64                 `json:"value_kwh"`
	Baseline       float64                 `json:"baseline_kwh"`
	Advice         string                  `json:"advice"`
	Input          forecast.Input          `json:"input"`
	Time           time.Time               `json:"time"`
}

// FromResult builds the alert payload for r.
func FromResult(r forecast.Result) Alert {
	return Alert{
		ID:             r.ID,
		Classification: r.Classification,
		Severity:       r.Classification.Severity(),
		Value:          r.Rounded(),
		Baseline:       r.Baseline,
		Advice:         r.Classification.Advice(),
		Input:          r.Input,
		Time:           r.At,
	}
}

// ShouldNotify reports whether r warrants an alert.
func ShouldNotify(r forecast.Result) bool { return r.Classification == forecast.High }

// Notifier delivers alerts.
type Notifier interface {
	Notify(ctx context.Context, a Alert) error
}

// NopNotifier drops every alert.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Alert) error { return nil }

// Source yields forecast events; eventbus.Bus satisfies it.
type Source interface {
	Subscribe() <-chan forecast.Event
	Unsubscribe(<-chan forecast.Event)
}

// Start forwards HIGH forecasts from src to n until ctx is canceled or the
// source closes the subscription. The returned channel is closed on exit.
func Start(ctx context.Context, src Source, n Notifier, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	sub := src.Subscribe()
	go func() {
		defer close(done)
		defer src.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if !ShouldNotify(ev.Result) {
					continue
				}
				if err := n.Notify(ctx, FromResult(ev.Result)); err != nil {
					log.Errorf("alert %s: %v", ev.Result.ID, err)
					continue
				}
				log.Infow("alert sent", map[string]any{"id": ev.Result.ID, "value": ev.Result.Rounded()})
			}
		}
	}()
	return done
}
