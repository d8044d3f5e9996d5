package booster

import (
	"fmt"

	"github.com/YuminosukeSato/scigo/sklearn/lightgbm"
)

// Params configures a Regressor.
type Params struct {
	// NEstimators is the number of boosting rounds.
	NEstimators int
	// MaxDepth bounds the depth of each tree.
	MaxDepth int
	// LearningRate shrinks each tree's contribution.
	LearningRate float64
	// Lambda is the L2 regularization on leaf weights.
	Lambda float64
	// NumLeaves bounds the leaves grown per tree.
	NumLeaves int
	// MinChildSamples is the minimum number of rows on each side of a split.
	MinChildSamples int
	// Subsample is the fraction of rows bagged per round.
	Subsample float64
	// ColsampleByTree is the fraction of features drawn per tree.
	ColsampleByTree float64
	// Seed drives bagging and feature sampling.
	Seed uint64
}

// DefaultParams returns the squared-error settings used for tuyere models:
// depth 6, shrinkage 0.3 and unit L2, with leaves down to a single row.
func DefaultParams() Params {
	return Params{
		NEstimators:     100,
		MaxDepth:        6,
		LearningRate:    0.3,
		Lambda:          1,
		NumLeaves:       31,
		MinChildSamples: 1,
		Subsample:       1,
		ColsampleByTree: 1,
		Seed:            42,
	}
}

func (p Params) validate() error {
	switch {
	case p.NEstimators <= 0:
		return fmt.Errorf("n_estimators must be positive, got %d", p.NEstimators)
	case p.MaxDepth <= 0:
		return fmt.Errorf("max_depth must be positive, got %d", p.MaxDepth)
	case p.LearningRate <= 0:
		return fmt.Errorf("learning_rate must be positive, got %v", p.LearningRate)
	case p.Lambda < 0:
		return fmt.Errorf("reg_lambda must be non-negative, got %v", p.Lambda)
	case p.NumLeaves < 2:
		return fmt.Errorf("num_leaves must be at least 2, got %d", p.NumLeaves)
	case p.MinChildSamples < 1:
		return fmt.Errorf("min_child_samples must be positive, got %d", p.MinChildSamples)
	case p.Subsample <= 0 || p.Subsample > 1:
		return fmt.Errorf("subsample must be in (0, 1], got %v", p.Subsample)
	case p.ColsampleByTree <= 0 || p.ColsampleByTree > 1:
		return fmt.Errorf("colsample_bytree must be in (0, 1], got %v", p.ColsampleByTree)
	}
	return nil
}

// estimator builds an untrained LightGBM regressor for p.
func (p Params) estimator() *lightgbm.LGBMRegressor {
	m := lightgbm.NewLGBMRegressor().
		WithObjective("regression").
		WithNumIterations(p.NEstimators).
		WithMaxDepth(p.MaxDepth).
		WithLearningRate(p.LearningRate).
		WithNumLeaves(p.NumLeaves).
		WithRandomState(int(p.Seed)).
		WithDeterministic(true)
	m.RegLambda = p.Lambda
	m.MinChildSamples = p.MinChildSamples
	m.Subsample = p.Subsample
	if p.Subsample < 1 {
		m.SubsampleFreq = 1
	}
	m.ColsampleBytree = p.ColsampleByTree
	return m
}

// Option is a functional option for Params.
type Option func(*Params)

// WithParams replaces all parameters at once.
func WithParams(p Params) Option {
	return func(dst *Params) { *dst = p }
}

// WithRounds sets the number of boosting rounds.
func WithRounds(n int) Option {
	return func(p *Params) { p.NEstimators = n }
}

// WithMaxDepth sets the maximum tree depth.
func WithMaxDepth(d int) Option {
	return func(p *Params) { p.MaxDepth = d }
}

// WithLearningRate sets the shrinkage applied to each tree.
func WithLearningRate(eta float64) Option {
	return func(p *Params) { p.LearningRate = eta }
}

// WithLambda sets the L2 regularization on leaf weights.
func WithLambda(l float64) Option {
	return func(p *Params) { p.Lambda = l }
}

// WithNumLeaves sets the leaf budget per tree.
func WithNumLeaves(n int) Option {
	return func(p *Params) { p.NumLeaves = n }
}

// WithMinChildSamples sets the minimum rows per leaf.
func WithMinChildSamples(n int) Option {
	return func(p *Params) { p.MinChildSamples = n }
}

// WithSampling sets the row and per-tree column sampling ratios.
func WithSampling(subsample, colsample float64) Option {
	return func(p *Params) {
		p.Subsample = subsample
		p.ColsampleByTree = colsample
	}
}

// WithSeed sets the sampling seed.
func WithSeed(seed uint64) Option {
	return func(p *Params) { p.Seed = seed }
}
