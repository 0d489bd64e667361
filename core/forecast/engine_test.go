package forecast

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordPublisher) Publish(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func constant(v float64) Model {
	return ModelFunc(func([]float64) (float64, error) { return v, nil })
}

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		value, baseline float64
		want            Classification
	}{
		{4.5, 3.0, High},
		{3.0, 5.0, Low},
		{3.75, 3.0, Normal},
		{2.25, 3.0, Normal},
		{3.76, 3.0, High},
		{2.24, 3.0, Low},
		{3.0, 3.0, Normal},
	}
	for _, c := range cases {
		if got := Classify(c.value, c.baseline); got != c.want {
			t.Errorf("Classify(%v, %v) = %s, want %s", c.value, c.baseline, got, c.want)
		}
	}
}

func TestClassificationText(t *testing.T) {
	for _, c := range []Classification{Normal, High, Low} {
		b, err := c.MarshalText()
		require.NoError(t, err)
		var back Classification
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, c, back)
	}
	var c Classification
	assert.Error(t, c.UnmarshalText([]byte("extreme")))
	assert.Equal(t, "warning", High.Severity())
	assert.Equal(t, "info", Low.Severity())
}

func TestEnginePredict(t *testing.T) {
	pub := &recordPublisher{}
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	e := NewEngine(constant(4.5), 3.0, WithPublisher(pub), WithClock(func() time.Time { return at }))

	res, err := e.Predict(context.Background(), DefaultInput())
	require.NoError(t, err)
	assert.Equal(t, High, res.Classification)
	assert.Equal(t, 3.0, res.Baseline)
	assert.Equal(t, at, res.At)
	assert.Equal(t, "4.50 kWh", res.Display())
	assert.NotEmpty(t, res.ID)
	require.Len(t, pub.events, 1)
	assert.Equal(t, res.ID, pub.events[0].Result.ID)
}

func TestEngineDeterministic(t *testing.T) {
	m := ModelFunc(func(x []float64) (float64, error) {
		return 0.1*x[0] + 0.05*x[1] + x[2] + 0.01*x[3] + 0.02*x[4], nil
	})
	e := NewEngine(m, 3.0)
	in := Input{IndoorTemperature: 21.5, OutsideTemperature: 4, DeviceUsage: 0, Hour: 7, Weekday: 5}
	first, err := e.Predict(context.Background(), in)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := e.Predict(context.Background(), in)
		require.NoError(t, err)
		if again.Value != first.Value || again.Classification != first.Classification {
			t.Fatalf("run %d: got %v/%s, want %v/%s", i, again.Value, again.Classification, first.Value, first.Classification)
		}
	}
}

func TestEngineRejectsOutOfRange(t *testing.T) {
	called := false
	m := ModelFunc(func([]float64) (float64, error) { called = true; return 1, nil })
	e := NewEngine(m, 3.0)
	bad := []Input{
		{IndoorTemperature: 51, OutsideTemperature: 10, Hour: 1},
		{IndoorTemperature: 20, OutsideTemperature: -11},
		{IndoorTemperature: 20, DeviceUsage: 2},
		{IndoorTemperature: 20, Hour: 24},
		{IndoorTemperature: 20, Weekday: 7},
		{IndoorTemperature: -0.1},
	}
	for _, in := range bad {
		_, err := e.Predict(context.Background(), in)
		if !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("Predict(%+v) err = %v, want ErrOutOfRange", in, err)
		}
	}
	assert.False(t, called)
}

func TestValidateNamesField(t *testing.T) {
	err := Input{Hour: 30}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hour must be within [0, 23]")
}

func TestEngineRejectsNonFinite(t *testing.T) {
	e := NewEngine(constant(math.NaN()), 3.0)
	_, err := e.Predict(context.Background(), DefaultInput())
	assert.Error(t, err)
}

func TestEngineCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEngine(constant(1), 3.0).Predict(ctx, DefaultInput())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResultRounded(t *testing.T) {
	r := Result{Value: 3.14159}
	assert.Equal(t, 3.14, r.Rounded())
	assert.Equal(t, "3.14 kWh", r.Display())
}
