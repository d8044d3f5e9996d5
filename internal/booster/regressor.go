// Package booster trains gradient-boosted tree regressors for the
// squared-error objective and reports per-feature importance scores.
package booster

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/YuminosukeSato/scigo/sklearn/lightgbm"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNotFitted is returned when predicting with a model that has not been trained.
	ErrNotFitted = errors.New("model is not fitted")
	// ErrShapeMismatch is returned when inputs disagree on row or feature counts.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrTooFewSamples is returned when there is not enough data to train or evaluate.
	ErrTooFewSamples = errors.New("too few samples")
)

// Regressor is a LightGBM tree ensemble labelled with feature names. The zero
// value is not usable; construct with NewRegressor.
type Regressor struct {
	params   Params
	features []string
	model    *lightgbm.LGBMRegressor
}

// NewRegressor returns an unfitted regressor configured by opts on top of
// DefaultParams.
func NewRegressor(opts ...Option) *Regressor {
	p := DefaultParams()
	for _, o := range opts {
		o(&p)
	}
	return &Regressor{params: p}
}

// Params returns the configuration the regressor trains with.
func (r *Regressor) Params() Params { return r.params }

// Features returns the feature names seen during Fit.
func (r *Regressor) Features() []string { return append([]string(nil), r.features...) }

// NumTrees returns the number of trees in the ensemble.
func (r *Regressor) NumTrees() int {
	if r.model == nil || r.model.Model == nil {
		return 0
	}
	return len(r.model.Model.Trees)
}

// BaseScore returns the constant prediction the trees are added to.
func (r *Regressor) BaseScore() float64 {
	if r.model == nil || r.model.Model == nil {
		return 0
	}
	return r.model.Model.InitScore
}

// Fit trains the ensemble on X (samples x features) and targets y. Feature
// names label importance scores; nil yields f0, f1, ... Targets must be finite.
// ctx is checked before and after training.
func (r *Regressor) Fit(ctx context.Context, X mat.Matrix, y []float64, features []string) error {
	if err := r.params.validate(); err != nil {
		return err
	}
	n, nf := X.Dims()
	if n != len(y) {
		return fmt.Errorf("%w: %d rows but %d targets", ErrShapeMismatch, n, len(y))
	}
	if features != nil && len(features) != nf {
		return fmt.Errorf("%w: %d columns but %d feature names", ErrShapeMismatch, nf, len(features))
	}
	if n < 2 {
		return fmt.Errorf("%w: need at least 2 rows, got %d", ErrTooFewSamples, n)
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("target row %d is not finite", i)
		}
	}
	if features == nil {
		features = make([]string, nf)
		for j := range features {
			features[j] = fmt.Sprintf("f%d", j)
		}
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("fit: %w", err)
	}

	m := r.params.estimator()
	if err := m.Fit(X, mat.NewDense(n, 1, append([]float64(nil), y...))); err != nil {
		return fmt.Errorf("train lightgbm: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("fit: %w", err)
	}
	r.features = append([]string(nil), features...)
	r.model = m
	return nil
}

// Predict returns one prediction per row of X.
func (r *Regressor) Predict(X mat.Matrix) ([]float64, error) {
	if r.model == nil {
		return nil, ErrNotFitted
	}
	if _, nf := X.Dims(); nf != len(r.features) {
		return nil, fmt.Errorf("%w: model has %d features, input has %d", ErrShapeMismatch, len(r.features), nf)
	}
	out, err := r.model.Predict(X)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	return mat.Col(nil, 0, out), nil
}

// PredictRow returns the prediction for a single feature vector.
func (r *Regressor) PredictRow(x []float64) (float64, error) {
	if r.model == nil {
		return 0, ErrNotFitted
	}
	if len(x) != len(r.features) {
		return 0, fmt.Errorf("%w: model has %d features, input has %d", ErrShapeMismatch, len(r.features), len(x))
	}
	p, err := r.Predict(mat.NewDense(1, len(x), append([]float64(nil), x...)))
	if err != nil {
		return 0, err
	}
	return p[0], nil
}
