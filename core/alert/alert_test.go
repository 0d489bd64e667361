package alert

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/homeenergy/core/forecast"
	"github.com/kilianp07/homeenergy/infra/logger"
	"github.com/kilianp07/homeenergy/internal/eventbus"
)

type recordNotifier struct {
	mu     sync.Mutex
	alerts []Alert
}

func (r *recordNotifier) Notify(_ context.Context, a Alert) error {
	r.mu.Lock()
	r.alerts = append(r.alerts, a)
	r.mu.Unlock()
	return nil
}

func (r *recordNotifier) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.alerts)
}

func TestFromResult(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	a := FromResult(forecast.Result{ID: "x", Value: 4.567, Baseline: 3, Classification: forecast.High, At: at})
	assert.Equal(t, 4.57, a.Value)
	assert.Equal(t, "warning", a.Severity)
	assert.Equal(t, forecast.High.Advice(), a.Advice)

	b, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"classification":"HIGH"`)
}

func TestStartForwardsHighOnly(t *testing.T) {
	bus := eventbus.New[forecast.Event](8)
	n := &recordNotifier{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := Start(ctx, bus, n, logger.NopLogger{})

	bus.Publish(forecast.Event{Result: forecast.Result{ID: "1", Classification: forecast.Normal}})
	bus.Publish(forecast.Event{Result: forecast.Result{ID: "2", Classification: forecast.High}})
	bus.Publish(forecast.Event{Result: forecast.Result{ID: "3", Classification: forecast.Low}})
	bus.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not stop after bus close")
	}
	require.Equal(t, 1, n.len())
	assert.Equal(t, "2", n.alerts[0].ID)
}
