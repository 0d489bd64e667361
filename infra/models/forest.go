package models

import (
	"errors"
	"fmt"

	"github.com/kilianp07/homeenergy/core/factory"
	"github.com/kilianp07/homeenergy/core/forecast"
)

// Node is one node of a regression tree stored in a flat array. Split nodes
// send a sample to Left when x[Feature] <= Threshold and to Right otherwise.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Leaf      bool    `json:"leaf"`
	Value     float64 `json:"value"`
}

// Tree is a regression tree rooted at Nodes[0].
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// ForestConfig holds the trees of a random forest regressor.
type ForestConfig struct {
	Trees []Tree `json:"trees"`
}

// Forest averages the output of its trees.
type Forest struct {
	trees []Tree
}

// NewForest checks every tree and returns the model. Child indices must
// point forward, so evaluation always terminates.
func NewForest(cfg ForestConfig) (*Forest, error) {
	if len(cfg.Trees) == 0 {
		return nil, errors.New("forest: no trees")
	}
	for i, t := range cfg.Trees {
		if err := t.validate(); err != nil {
			return nil, fmt.Errorf("forest: tree %d: %w", i, err)
		}
	}
	return &Forest{trees: cfg.Trees}, nil
}

func (t Tree) validate() error {
	if len(t.Nodes) == 0 {
		return errors.New("empty tree")
	}
	for i, n := range t.Nodes {
		if n.Leaf {
			continue
		}
		if n.Feature < 0 || n.Feature >= forecast.NumFeatures {
			return fmt.Errorf("node %d: feature %d out of range", i, n.Feature)
		}
		for _, c := range []int{n.Left, n.Right} {
			if c <= i || c >= len(t.Nodes) {
				return fmt.Errorf("node %d: invalid child %d", i, c)
			}
		}
	}
	return nil
}

func (t Tree) eval(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

func (f *Forest) Predict(x []float64) (float64, error) {
	if len(x) != forecast.NumFeatures {
		return 0, fmt.Errorf("forest: expected %d features, got %d", forecast.NumFeatures, len(x))
	}
	var sum float64
	for _, t := range f.trees {
		sum += t.eval(x)
	}
	return sum / float64(len(f.trees)), nil
}

func newForest(conf map[string]any) (forecast.Model, error) {
	var cfg ForestConfig
	if err := factory.DecodeStrict(conf, &cfg); err != nil {
		return nil, err
	}
	m, err := NewForest(cfg)
	if err != nil {
		return nil, err
	}
	return m, nil
}
