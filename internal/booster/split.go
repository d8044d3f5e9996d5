package booster

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// TrainTestSplit shuffles row indices 0..n-1 with seed and holds out
// ceil(testSize*n) of them for testing.
func TrainTestSplit(n int, testSize float64, seed uint64) (train, test []int, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test size must be in (0, 1), got %v", testSize)
	}
	nTest := int(math.Ceil(testSize * float64(n)))
	if nTest < 1 || n-nTest < 1 {
		return nil, nil, fmt.Errorf("%w: %d rows cannot be split with test size %v", ErrTooFewSamples, n, testSize)
	}
	perm := rand.New(rand.NewPCG(seed, seed)).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}

// TakeRows copies the given rows of X into a new matrix.
func TakeRows(X mat.Matrix, idx []int) *mat.Dense {
	_, c := X.Dims()
	out := mat.NewDense(len(idx), c, nil)
	row := make([]float64, c)
	for i, r := range idx {
		mat.Row(row, r, X)
		out.SetRow(i, row)
	}
	return out
}

// Take copies the given elements of v.
func Take(v []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, r := range idx {
		out[i] = v[r]
	}
	return out
}
