package models

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/homeenergy/core/factory"
	"github.com/kilianp07/homeenergy/core/forecast"
)

// LinearConfig holds the parameters of a linear regression.
type LinearConfig struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// Linear computes intercept + coefficients·x.
type Linear struct {
	intercept float64
	coef      *mat.VecDense
}

// NewLinear validates cfg and returns the model.
func NewLinear(cfg LinearConfig) (*Linear, error) {
	if len(cfg.Coefficients) != forecast.NumFeatures {
		return nil, fmt.Errorf("linear: expected %d coefficients, got %d", forecast.NumFeatures, len(cfg.Coefficients))
	}
	c := make([]float64, len(cfg.Coefficients))
	copy(c, cfg.Coefficients)
	return &Linear{intercept: cfg.Intercept, coef: mat.NewVecDense(len(c), c)}, nil
}

func (l *Linear) Predict(x []float64) (float64, error) {
	if len(x) != l.coef.Len() {
		return 0, fmt.Errorf("linear: expected %d features, got %d", l.coef.Len(), len(x))
	}
	return l.intercept + mat.Dot(l.coef, mat.NewVecDense(len(x), x)), nil
}

func newLinear(conf map[string]any) (forecast.Model, error) {
	var cfg LinearConfig
	if err := factory.DecodeStrict(conf, &cfg); err != nil {
		return nil, err
	}
	m, err := NewLinear(cfg)
	if err != nil {
		return nil, err
	}
	return m, nil
}
