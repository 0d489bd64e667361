package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/homeenergy/core/factory"
	"github.com/kilianp07/homeenergy/core/logger"
)

// Source provides the raw records of a dataset.
type Source interface {
	// Records returns every accepted record. A missing dataset yields an
	// error wrapping ErrNotFound.
	Records(ctx context.Context) ([]Record, error)
	// Name identifies the dataset in user-facing messages.
	Name() string
}

// SkipCounter is implemented by sources that drop malformed rows.
type SkipCounter interface {
	Skipped() int
}

var sourceRegistry = factory.NewRegistry[Source]()

// RegisterSource adds a history source factory identified by name.
func RegisterSource(name string, f factory.Factory[Source]) error {
	return sourceRegistry.Register(name, f)
}

// NewSource creates a Source from the provided configuration.
func NewSource(cfg factory.ModuleConfig) (Source, error) {
	return sourceRegistry.Create(cfg)
}

// Load reads src and summarises it. A missing or empty dataset is not an
// error: Load returns a nil Summary and callers fall back to FallbackBaseline.
func Load(ctx context.Context, src Source, log logger.Logger) (*Summary, error) {
	records, err := src.Records(ctx)
	if errors.Is(err, ErrNotFound) {
		log.Infof("dataset %s not found, analytics disabled", src.Name())
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", src.Name(), err)
	}
	if sc, ok := src.(SkipCounter); ok && sc.Skipped() > 0 {
		log.Warnf("dataset %s: skipped %d malformed rows", src.Name(), sc.Skipped())
	}
	s := Summarize(records)
	if s == nil {
		log.Warnf("dataset %s is empty, analytics disabled", src.Name())
		return nil, nil
	}
	log.Infow("history loaded", map[string]any{
		"dataset":  src.Name(),
		"records":  s.Count,
		"baseline": s.Baseline,
		"hours":    len(s.Hourly),
		"weekdays": len(s.Weekday),
	})
	return s, nil
}
