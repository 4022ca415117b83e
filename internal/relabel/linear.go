// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package relabel

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// LinearModel is a logistic regression over word-bounded character
// n-grams. Each whitespace-separated word is lower-cased and padded with
// one space on each side; n-grams of length NgramMin..NgramMax are counted
// and the count vector is L2-normalized. The positive class is Student.
//
// A model file looks like:
//
//	ngram_min: 3
//	ngram_max: 5
//	bias: -0.1
//	weights:
//	  " i ": 0.8
//	  "the ": -0.4
type LinearModel struct {
	NgramMin int                `yaml:"ngram_min"`
	NgramMax int                `yaml:"ngram_max"`
	Bias     float64            `yaml:"bias"`
	Weights  map[string]float64 `yaml:"weights"`

	// IDF optionally scales each n-gram count before normalization.
	IDF map[string]float64 `yaml:"idf,omitempty"`
}

// LoadLinearModel reads and validates a YAML model file.
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model %s: %w", path, err)
	}
	var m LinearModel
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing model %s: %w", path, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return &m, nil
}

func (m *LinearModel) validate() error {
	if m.NgramMin <= 0 || m.NgramMax < m.NgramMin {
		return fmt.Errorf("invalid ngram range %d..%d", m.NgramMin, m.NgramMax)
	}
	if len(m.Weights) == 0 {
		return fmt.Errorf("no weights")
	}
	return nil
}

// Features returns the L2-normalized n-gram vector of text.
func (m *LinearModel) Features(text string) map[string]float64 {
	counts := make(map[string]float64)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		padded := []rune(" " + w + " ")
		for n := m.NgramMin; n <= m.NgramMax; n++ {
			if len(padded) < n {
				counts[string(padded)]++
				break
			}
			for i := 0; i+n <= len(padded); i++ {
				counts[string(padded[i:i+n])]++
			}
		}
	}

	var norm float64
	for g, c := range counts {
		if idf, ok := m.IDF[g]; ok {
			c *= idf
			counts[g] = c
		}
		norm += c * c
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for g := range counts {
			counts[g] /= norm
		}
	}
	return counts
}

// Predict implements Classifier. It is pure and safe for concurrent use.
func (m *LinearModel) Predict(_ context.Context, text string) (Prediction, error) {
	score := m.Bias
	for g, x := range m.Features(text) {
		score += m.Weights[g] * x
	}
	st := 1 / (1 + math.Exp(-score))
	return Prediction{AI: 1 - st, Student: st}, nil
}
