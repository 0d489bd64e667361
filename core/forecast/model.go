package forecast

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/homeenergy/core/factory"
)

// Model is a pre-trained regressor. Predict receives the features in
// FeatureNames order and must be a pure function of its input; models are
// shared read-only between requests.
type Model interface {
	Predict(features []float64) (float64, error)
}

// ModelFunc adapts a function to the Model interface.
type ModelFunc func(features []float64) (float64, error)

// Predict calls f.
func (f ModelFunc) Predict(features []float64) (float64, error) { return f(features) }

var modelRegistry = factory.NewRegistry[Model]()

// RegisterModel adds a model kind decoded from the artifact params.
func RegisterModel(kind string, f factory.Factory[Model]) error {
	return modelRegistry.Register(kind, f)
}

// ModelKinds lists the registered model kinds.
func ModelKinds() []string { return modelRegistry.Names() }

// Artifact is the on-disk model description. JSON and YAML encodings are both
// accepted.
//
//	{"kind": "linear",
//	 "features": ["indoor_temperature", "outside_temperature", "device_usage", "hour", "weekday"],
//	 "scaler": {"mean": [...], "scale": [...]},
//	 "params": {"intercept": 0.4, "coefficients": [0.02, 0.05, 1.1, 0.01, 0.03]}}
type Artifact struct {
	Kind     string         `yaml:"kind"`
	Features []string       `yaml:"features"`
	Scaler   *Scaler        `yaml:"scaler"`
	Params   map[string]any `yaml:"params"`
}

// Scaler standardises features before they reach the model: (x - mean) / scale.
type Scaler struct {
	Mean  []float64 `yaml:"mean"`
	Scale []float64 `yaml:"scale"`
}

func (s *Scaler) validate() error {
	if len(s.Mean) != NumFeatures || len(s.Scale) != NumFeatures {
		return fmt.Errorf("scaler expects %d means and scales, got %d and %d", NumFeatures, len(s.Mean), len(s.Scale))
	}
	for i, sc := range s.Scale {
		if sc == 0 {
			return fmt.Errorf("scaler: zero scale for %s", FeatureNames[i])
		}
	}
	return nil
}

// Loaded is a model built from an artifact file.
type Loaded struct {
	Model
	Kind string
	Path string
}

// DecodeArtifact parses an artifact document.
func DecodeArtifact(data []byte) (*Artifact, error) {
	var a Artifact
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	if a.Kind == "" {
		return nil, errors.New("missing kind")
	}
	return &a, nil
}

// Build instantiates the model described by the artifact.
func (a *Artifact) Build() (Model, error) {
	if len(a.Features) > 0 {
		if len(a.Features) != NumFeatures {
			return nil, fmt.Errorf("expected %d features, got %d", NumFeatures, len(a.Features))
		}
		for i, f := range a.Features {
			if f != FeatureNames[i] {
				return nil, fmt.Errorf("feature %d is %q, expected %q", i, f, FeatureNames[i])
			}
		}
	}
	m, err := modelRegistry.Create(factory.ModuleConfig{Type: a.Kind, Conf: a.Params})
	if err != nil {
		return nil, err
	}
	if a.Scaler == nil {
		return m, nil
	}
	if err := a.Scaler.validate(); err != nil {
		return nil, err
	}
	return scaledModel{inner: m, scaler: *a.Scaler}, nil
}

type scaledModel struct {
	inner  Model
	scaler Scaler
}

func (s scaledModel) Predict(features []float64) (float64, error) {
	if len(features) != NumFeatures {
		return 0, fmt.Errorf("expected %d features, got %d", NumFeatures, len(features))
	}
	x := make([]float64, NumFeatures)
	for i, v := range features {
		x[i] = (v - s.scaler.Mean[i]) / s.scaler.Scale[i]
	}
	return s.inner.Predict(x)
}

// LoadModel reads and builds the artifact at path. A missing file yields
// ErrModelNotFound; anything that cannot be decoded or built yields
// ErrInvalidModel.
func LoadModel(path string) (*Loaded, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidModel, path, err)
	}
	a, err := DecodeArtifact(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidModel, path, err)
	}
	m, err := a.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidModel, path, err)
	}
	return &Loaded{Model: m, Kind: a.Kind, Path: path}, nil
}
