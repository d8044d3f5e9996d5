package booster

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

func checkPair(yTrue, yPred []float64) error {
	if len(yTrue) != len(yPred) {
		return fmt.Errorf("%w: %d targets but %d predictions", ErrShapeMismatch, len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return fmt.Errorf("%w: no predictions to score", ErrTooFewSamples)
	}
	return nil
}

// MeanSquaredError is the average squared residual.
func MeanSquaredError(yTrue, yPred []float64) (float64, error) {
	if err := checkPair(yTrue, yPred); err != nil {
		return 0, err
	}
	var s float64
	for i := range yTrue {
		d := yTrue[i] - yPred[i]
		s += d * d
	}
	return s / float64(len(yTrue)), nil
}

// RootMeanSquaredError is the square root of MeanSquaredError.
func RootMeanSquaredError(yTrue, yPred []float64) (float64, error) {
	mse, err := MeanSquaredError(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// RSquared is the coefficient of determination of the predictions.
func RSquared(yTrue, yPred []float64) (float64, error) {
	if err := checkPair(yTrue, yPred); err != nil {
		return 0, err
	}
	return stat.RSquaredFrom(yPred, yTrue, nil), nil
}
