package booster

import (
	"fmt"
	"sort"
	"strings"
)

// ImportanceType selects how split statistics are aggregated per feature.
type ImportanceType string

const (
	// ImportanceWeight counts the splits that use a feature.
	ImportanceWeight ImportanceType = "weight"
	// ImportanceGain is a feature's share of the total split gain.
	ImportanceGain ImportanceType = "gain"
	// ImportanceTotalGain sums the loss reduction of a feature's splits.
	ImportanceTotalGain ImportanceType = "total_gain"
)

// ParseImportanceType accepts the names above, case-insensitively. Empty means weight.
func ParseImportanceType(s string) (ImportanceType, error) {
	switch t := ImportanceType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return ImportanceWeight, nil
	case ImportanceWeight, ImportanceGain, ImportanceTotalGain:
		return t, nil
	default:
		return "", fmt.Errorf("unknown importance type %q (want weight, gain or total_gain)", s)
	}
}

// Score is the importance of one feature.
type Score struct {
	Feature string  `yaml:"feature"`
	Value   float64 `yaml:"value"`
}

// Importance returns per-feature scores in descending order. Features that
// never split are omitted.
func (r *Regressor) Importance(kind ImportanceType) ([]Score, error) {
	if r.model == nil || r.model.Model == nil {
		return nil, ErrNotFitted
	}
	kind, err := ParseImportanceType(string(kind))
	if err != nil {
		return nil, err
	}
	count := make([]float64, len(r.features))
	total := make([]float64, len(r.features))
	for _, t := range r.model.Model.Trees {
		for i := range t.Nodes {
			n := &t.Nodes[i]
			if n.IsLeaf() || n.SplitFeature < 0 || n.SplitFeature >= len(count) {
				continue
			}
			count[n.SplitFeature]++
			total[n.SplitFeature] += n.Gain
		}
	}
	var share []float64
	if kind == ImportanceGain {
		share = r.model.GetFeatureImportance("gain")
	}

	var out []Score
	for f, c := range count {
		if c == 0 {
			continue
		}
		v := c
		switch kind {
		case ImportanceGain:
			if f < len(share) {
				v = share[f]
			}
		case ImportanceTotalGain:
			v = total[f]
		}
		out = append(out, Score{Feature: r.features[f], Value: v})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Feature < out[j].Feature
	})
	return out, nil
}
