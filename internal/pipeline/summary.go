package pipeline

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tuyere-cli/internal/booster"
	"github.com/KaramelBytes/tuyere-cli/internal/correlation"
	"github.com/KaramelBytes/tuyere-cli/internal/dataset"
	"github.com/KaramelBytes/tuyere-cli/internal/utils"
)

// TargetResult is the held-out evaluation of one target model.
type TargetResult struct {
	Target     string          `yaml:"target"`
	MSE        float64         `yaml:"mse"`
	RMSE       float64         `yaml:"rmse"`
	R2         float64         `yaml:"r2"`
	Importance []booster.Score `yaml:"importance"`
	Plot       string          `yaml:"plot,omitempty"`
}

// RegressionResult describes one modeled dataset.
type RegressionResult struct {
	Dataset  string           `yaml:"dataset"`
	Fuel     string           `yaml:"fuel,omitempty"`
	Rate     int              `yaml:"rate,omitempty"`
	Sources  []dataset.Source `yaml:"sources,omitempty"`
	Rows     int              `yaml:"rows"`
	Dropped  int              `yaml:"dropped_rows"`
	Train    int              `yaml:"train_rows"`
	Test     int              `yaml:"test_rows"`
	Features []string         `yaml:"features"`
	Targets  []TargetResult   `yaml:"targets"`
	Error    string           `yaml:"error,omitempty"`
}

// CorrelationResult describes one fuel's correlation analysis.
type CorrelationResult struct {
	Fuel      string             `yaml:"fuel"`
	Sources   []dataset.Source   `yaml:"sources,omitempty"`
	Rows      int                `yaml:"rows"`
	Threshold float64            `yaml:"threshold"`
	Method    correlation.Method `yaml:"method,omitempty"`
	Columns   []string           `yaml:"columns,omitempty"`
	Matrix    string             `yaml:"matrix,omitempty"`
	Heatmap   string             `yaml:"heatmap,omitempty"`
	TopPairs  []correlation.Pair `yaml:"top_pairs,omitempty"`
	Skipped   string             `yaml:"skipped,omitempty"`
	Error     string             `yaml:"error,omitempty"`
}

// Summary is written next to a run's artifacts.
type Summary struct {
	RunID        string              `yaml:"run_id"`
	Command      string              `yaml:"command"`
	StartedAt    time.Time           `yaml:"started_at"`
	FinishedAt   time.Time           `yaml:"finished_at"`
	Missing      []string            `yaml:"missing_files,omitempty"`
	Regressions  []RegressionResult  `yaml:"regressions,omitempty"`
	Correlations []CorrelationResult `yaml:"correlations,omitempty"`
}

// NewSummary starts a summary with a fresh run id.
func NewSummary(command string) *Summary {
	return &Summary{
		RunID:     uuid.NewString(),
		Command:   command,
		StartedAt: time.Now().UTC(),
	}
}

// Processed counts datasets that produced results.
func (s *Summary) Processed() int {
	n := 0
	for _, r := range s.Regressions {
		if r.Error == "" {
			n++
		}
	}
	for _, c := range s.Correlations {
		if c.Error == "" && c.Skipped == "" {
			n++
		}
	}
	return n
}

// Write stores the summary as YAML in dir and returns its path.
func (s *Summary) Write(dir string) (string, error) {
	if s.FinishedAt.IsZero() {
		s.FinishedAt = time.Now().UTC()
	}
	b, err := yaml.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("summary-%s.yaml", utils.Slug(s.Command)))
	if err := utils.SafeWriteFile(path, b); err != nil {
		return "", err
	}
	return path, nil
}

// ReadSummary loads a summary written by Write.
func ReadSummary(b []byte) (*Summary, error) {
	var s Summary
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse summary: %w", err)
	}
	return &s, nil
}
