// Package model loads the externally trained screening classifier and
// evaluates it over feature vectors.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// Kind is the estimator family stored in an artifact.
type Kind string

const (
	KindRandomForest Kind = "random_forest"
	KindLogistic     Kind = "logistic"
)

const defaultThreshold = 0.5

// LoadError means the artifact is missing or unusable. It is fatal at startup.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load model artifact %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Node is one entry of a flattened decision tree. A node with Left and Right
// both -1 is a leaf whose Value is the class-1 probability.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

func (n Node) isLeaf() bool {
	return n.Left == -1 && n.Right == -1
}

type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Artifact is the serialized model.
type Artifact struct {
	Name              string                    `json:"name"`
	Version           string                    `json:"version"`
	Kind              Kind                      `json:"kind"`
	FeatureNames      []string                  `json:"feature_names"`
	Threshold         *float64                  `json:"threshold,omitempty"`
	CategoryEncoding  string                    `json:"category_encoding"`
	CategoriesVersion string                    `json:"categories_version"`
	Categories        map[string]map[string]int `json:"categories,omitempty"`
	Trees             []Tree                    `json:"trees,omitempty"`
	Coefficients      []float64                 `json:"coefficients,omitempty"`
	Intercept         float64                   `json:"intercept"`
}

// Model is immutable after Load and safe for concurrent use.
type Model struct {
	artifact  Artifact
	threshold float64
	proba     func(x []float64) float64
}

// Load reads the artifact at path and checks it against the expected feature layout.
func Load(path string, expectedFeatures []string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	m, err := Parse(f, expectedFeatures)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return m, nil
}

// Parse decodes and validates an artifact.
func Parse(r io.Reader, expectedFeatures []string) (*Model, error) {
	var a Artifact
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("failed to decode artifact: %w", err)
	}

	if err := checkLayout(a.FeatureNames, expectedFeatures); err != nil {
		return nil, err
	}

	threshold := defaultThreshold
	if a.Threshold != nil {
		threshold = *a.Threshold
	}
	if threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("threshold %v outside (0,1)", threshold)
	}

	m := &Model{artifact: a, threshold: threshold}
	n := len(a.FeatureNames)

	switch a.Kind {
	case KindRandomForest:
		if len(a.Trees) == 0 {
			return nil, errors.New("random forest has no trees")
		}
		for i, t := range a.Trees {
			if err := t.validate(n); err != nil {
				return nil, fmt.Errorf("tree %d: %w", i, err)
			}
		}
		m.proba = m.forestProba
	case KindLogistic:
		if len(a.Coefficients) != n {
			return nil, fmt.Errorf("logistic model has %d coefficients, want %d", len(a.Coefficients), n)
		}
		m.proba = m.logisticProba
	default:
		return nil, fmt.Errorf("unsupported model kind %q", a.Kind)
	}

	return m, nil
}

func checkLayout(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("artifact declares %d features, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("feature %d is %q, want %q", i, got[i], want[i])
		}
	}
	return nil
}

// validate checks child indices point forward so evaluation always terminates.
func (t Tree) validate(nFeatures int) error {
	if len(t.Nodes) == 0 {
		return errors.New("empty tree")
	}
	for i, n := range t.Nodes {
		if n.isLeaf() {
			if n.Value < 0 || n.Value > 1 {
				return fmt.Errorf("leaf %d value %v outside [0,1]", i, n.Value)
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= nFeatures {
			return fmt.Errorf("node %d splits on unknown feature %d", i, n.Feature)
		}
		for _, child := range []int{n.Left, n.Right} {
			if child <= i || child >= len(t.Nodes) {
				return fmt.Errorf("node %d has invalid child %d", i, child)
			}
		}
	}
	return nil
}

func (t Tree) eval(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.isLeaf() {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// forestProba averages leaf probabilities across trees.
func (m *Model) forestProba(x []float64) float64 {
	sum := 0.0
	for _, t := range m.artifact.Trees {
		sum += t.eval(x)
	}
	return sum / float64(len(m.artifact.Trees))
}

func (m *Model) logisticProba(x []float64) float64 {
	z := m.artifact.Intercept
	for i, w := range m.artifact.Coefficients {
		z += w * x[i]
	}
	return sigmoid(z)
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

// PredictProba returns the class-1 probability in [0,1].
func (m *Model) PredictProba(x []float64) (float64, error) {
	if len(x) != len(m.artifact.FeatureNames) {
		return 0, fmt.Errorf("got %d features, want %d", len(x), len(m.artifact.FeatureNames))
	}
	return m.proba(x), nil
}

// Predict returns 1 when PredictProba reaches the threshold.
func (m *Model) Predict(x []float64) (int, error) {
	p, err := m.PredictProba(x)
	if err != nil {
		return 0, err
	}
	if p >= m.threshold {
		return 1, nil
	}
	return 0, nil
}

func (m *Model) Name() string    { return m.artifact.Name }
func (m *Model) Version() string { return m.artifact.Version }
func (m *Model) Kind() Kind      { return m.artifact.Kind }

// CategoryEncoding returns the surrogate scheme, its version and tables.
func (m *Model) CategoryEncoding() (scheme, version string, tables map[string]map[string]int) {
	return m.artifact.CategoryEncoding, m.artifact.CategoriesVersion, m.artifact.Categories
}
