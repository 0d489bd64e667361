package history

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kilianp07/homeenergy/core/factory"
	"github.com/kilianp07/homeenergy/infra/logger"
)

type stubSource struct {
	records []Record
	err     error
	skipped int
}

func (s stubSource) Records(context.Context) ([]Record, error) { return s.records, s.err }
func (s stubSource) Name() string                              { return "stub.csv" }
func (s stubSource) Skipped() int                              { return s.skipped }

func TestLoad_NotFoundFallsBack(t *testing.T) {
	src := stubSource{err: fmt.Errorf("open stub.csv: %w", ErrNotFound)}
	s, err := Load(context.Background(), src, logger.NopLogger{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != nil {
		t.Fatalf("expected nil summary")
	}
	if BaselineOf(s) != 3.0 {
		t.Fatalf("expected fallback baseline")
	}
}

func TestLoad_EmptyDataset(t *testing.T) {
	s, err := Load(context.Background(), stubSource{}, logger.NopLogger{})
	if err != nil || s != nil {
		t.Fatalf("expected nil, nil got %v, %v", s, err)
	}
}

func TestLoad_PropagatesMalformed(t *testing.T) {
	src := stubSource{err: &MalformedRowError{Line: 4, Column: ColumnEnergy, Value: "x", Err: errors.New("bad")}}
	_, err := Load(context.Background(), src, logger.NopLogger{})
	if !errors.Is(err, ErrMalformedRow) {
		t.Fatalf("expected malformed row error, got %v", err)
	}
}

func TestLoad_Summary(t *testing.T) {
	src := stubSource{records: []Record{
		{Timestamp: at("2024-01-01T10:00:00Z"), EnergyKWh: 4},
		{Timestamp: at("2024-01-02T11:00:00Z"), EnergyKWh: 6},
	}, skipped: 1}
	s, err := Load(context.Background(), src, logger.NopLogger{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Baseline != 5 {
		t.Fatalf("expected baseline 5 got %v", s.Baseline)
	}
}

func TestNewSource_Unknown(t *testing.T) {
	if _, err := NewSource(factory.ModuleConfig{Type: "parquet"}); !errors.Is(err, factory.ErrUnknownType) {
		t.Fatalf("expected unknown type, got %v", err)
	}
}
