package models

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/homeenergy/core/factory"
	"github.com/kilianp07/homeenergy/core/forecast"
)

// Layer is a dense layer: Weights has one row per output unit.
type Layer struct {
	Weights [][]float64 `json:"weights"`
	Biases  []float64   `json:"biases"`
}

// MLPConfig holds the layers of a feed-forward network.
type MLPConfig struct {
	Layers []Layer `json:"layers"`
}

type dense struct {
	w *mat.Dense
	b *mat.VecDense
}

// MLP is a feed-forward network with ReLU hidden layers and a single linear output.
type MLP struct {
	layers []dense
}

// NewMLP checks layer dimensions and returns the model.
func NewMLP(cfg MLPConfig) (*MLP, error) {
	if len(cfg.Layers) == 0 {
		return nil, errors.New("mlp: no layers")
	}
	in := forecast.NumFeatures
	layers := make([]dense, len(cfg.Layers))
	for i, l := range cfg.Layers {
		out := len(l.Weights)
		if out == 0 || len(l.Biases) != out {
			return nil, fmt.Errorf("mlp: layer %d: %d weight rows for %d biases", i, out, len(l.Biases))
		}
		data := make([]float64, 0, out*in)
		for j, row := range l.Weights {
			if len(row) != in {
				return nil, fmt.Errorf("mlp: layer %d row %d: expected %d inputs, got %d", i, j, in, len(row))
			}
			data = append(data, row...)
		}
		b := make([]float64, out)
		copy(b, l.Biases)
		layers[i] = dense{w: mat.NewDense(out, in, data), b: mat.NewVecDense(out, b)}
		in = out
	}
	if in != 1 {
		return nil, fmt.Errorf("mlp: output layer has %d units, expected 1", in)
	}
	return &MLP{layers: layers}, nil
}

func (m *MLP) Predict(x []float64) (float64, error) {
	if len(x) != forecast.NumFeatures {
		return 0, fmt.Errorf("mlp: expected %d features, got %d", forecast.NumFeatures, len(x))
	}
	in := make([]float64, len(x))
	copy(in, x)
	a := mat.NewVecDense(len(in), in)
	last := len(m.layers) - 1
	for i, l := range m.layers {
		rows, _ := l.w.Dims()
		z := mat.NewVecDense(rows, nil)
		z.MulVec(l.w, a)
		z.AddVec(z, l.b)
		if i < last {
			for j := 0; j < rows; j++ {
				if z.AtVec(j) < 0 {
					z.SetVec(j, 0)
				}
			}
		}
		a = z
	}
	return a.AtVec(0), nil
}

func newMLP(conf map[string]any) (forecast.Model, error) {
	var cfg MLPConfig
	if err := factory.DecodeStrict(conf, &cfg); err != nil {
		return nil, err
	}
	m, err := NewMLP(cfg)
	if err != nil {
		return nil, err
	}
	return m, nil
}
