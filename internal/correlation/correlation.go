// Package correlation computes and persists pairwise correlation matrices
// over the numeric columns of a sample table.
package correlation

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/tuyere-cli/internal/dataset"
)

// ErrTooFewColumns is returned when fewer than two numeric columns remain.
var ErrTooFewColumns = errors.New("correlation needs at least two numeric columns")

// Method is a correlation coefficient.
type Method string

const (
	Pearson  Method = "pearson"
	Spearman Method = "spearman"
	Kendall  Method = "kendall"
)

// ParseMethod accepts pearson, spearman or kendall, case-insensitively. Empty means pearson.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return Pearson, nil
	case Pearson, Spearman, Kendall:
		return m, nil
	default:
		return "", fmt.Errorf("unknown correlation method %q (want pearson, spearman or kendall)", s)
	}
}

// Matrix is a symmetric correlation matrix. Values[i][j] is NaN when the pair
// has fewer than two complete observations or either side is constant.
type Matrix struct {
	Method  Method      `yaml:"method"`
	Columns []string    `yaml:"columns"`
	Values  [][]float64 `yaml:"-"`
	Rows    int         `yaml:"rows"`
}

// Pair is one off-diagonal entry.
type Pair struct {
	A string  `yaml:"a"`
	B string  `yaml:"b"`
	R float64 `yaml:"r"`
}

// At returns the coefficient at row i, column j.
func (m *Matrix) At(i, j int) float64 { return m.Values[i][j] }

// Get returns the coefficient between two named columns.
func (m *Matrix) Get(a, b string) (float64, bool) {
	i, j := m.indexOf(a), m.indexOf(b)
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

func (m *Matrix) indexOf(name string) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Dense returns the coefficients as a gonum matrix.
func (m *Matrix) Dense() *mat.Dense {
	n := len(m.Columns)
	d := mat.NewDense(n, n, nil)
	for i := range m.Values {
		d.SetRow(i, m.Values[i])
	}
	return d
}

// TopPairs returns up to k distinct pairs ordered by |r| descending. Undefined
// coefficients are skipped; k <= 0 returns all pairs.
func (m *Matrix) TopPairs(k int) []Pair {
	var pairs []Pair
	n := len(m.Columns)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := m.Values[i][j]
			if math.IsNaN(r) {
				continue
			}
			pairs = append(pairs, Pair{A: m.Columns[i], B: m.Columns[j], R: r})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	if k > 0 && len(pairs) > k {
		pairs = pairs[:k]
	}
	return pairs
}

// Compute correlates every numeric column of t with every other, using
// pairwise-complete observations. Text columns are ignored.
func Compute(t *dataset.Table, method Method) (*Matrix, error) {
	if method == "" {
		method = Pearson
	}
	if _, err := ParseMethod(string(method)); err != nil {
		return nil, err
	}
	names := t.NumericColumns()
	if len(names) < 2 {
		return nil, fmt.Errorf("%w: table %q has %d", ErrTooFewColumns, t.Name, len(names))
	}
	cols := make([][]float64, len(names))
	complete := true
	for j, n := range names {
		v, err := t.Float(n)
		if err != nil {
			return nil, err
		}
		cols[j] = v
		for _, x := range v {
			if math.IsNaN(x) {
				complete = false
			}
		}
	}

	m := &Matrix{Method: method, Columns: names, Rows: t.Len(), Values: make([][]float64, len(names))}
	for i := range m.Values {
		m.Values[i] = make([]float64, len(names))
	}
	if method == Pearson && complete && t.Len() >= 2 {
		fillFromSym(m, cols)
		return m, nil
	}
	for i := range cols {
		for j := i; j < len(cols); j++ {
			r := pairwise(cols[i], cols[j], method)
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m, nil
}

// fillFromSym computes Pearson coefficients for columns without missing values.
func fillFromSym(m *Matrix, cols [][]float64) {
	x := mat.NewDense(len(cols[0]), len(cols), nil)
	for j, c := range cols {
		x.SetCol(j, c)
	}
	var sym mat.SymDense
	stat.CorrelationMatrix(&sym, x, nil)
	for i := range cols {
		for j := range cols {
			m.Values[i][j] = clamp(sym.At(i, j))
		}
		if spread(cols[i]) == 0 {
			for j := range cols {
				m.Values[i][j] = math.NaN()
				m.Values[j][i] = math.NaN()
			}
		}
	}
}

func pairwise(a, b []float64, method Method) float64 {
	xs := make([]float64, 0, len(a))
	ys := make([]float64, 0, len(b))
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		xs = append(xs, a[i])
		ys = append(ys, b[i])
	}
	if len(xs) < 2 || spread(xs) == 0 || spread(ys) == 0 {
		return math.NaN()
	}
	switch method {
	case Spearman:
		return clamp(stat.Correlation(rank(xs), rank(ys), nil))
	case Kendall:
		return clamp(kendallTauB(xs, ys))
	default:
		return clamp(stat.Correlation(xs, ys, nil))
	}
}

// kendallTauB is Kendall's tau with the tie correction of both sides,
// counted in O(n log n) by sorting on x and merge-sorting y.
func kendallTauB(x, y []float64) float64 {
	n := len(x)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		if x[idx[a]] != x[idx[b]] {
			return x[idx[a]] < x[idx[b]]
		}
		return y[idx[a]] < y[idx[b]]
	})

	var tiedX, tiedXY float64
	for i := 0; i < n; {
		j := i
		for j+1 < n && x[idx[j+1]] == x[idx[i]] {
			j++
		}
		tiedX += pairs(j - i + 1)
		for k := i; k <= j; {
			l := k
			for l+1 <= j && y[idx[l+1]] == y[idx[k]] {
				l++
			}
			tiedXY += pairs(l - k + 1)
			k = l + 1
		}
		i = j + 1
	}

	ys := make([]float64, n)
	for i, r := range idx {
		ys[i] = y[r]
	}
	swaps := mergeCount(ys, make([]float64, n))

	var tiedY float64
	for i := 0; i < n; {
		j := i
		for j+1 < n && ys[j+1] == ys[i] {
			j++
		}
		tiedY += pairs(j - i + 1)
		i = j + 1
	}

	total := pairs(n)
	num := total - tiedX - tiedY + tiedXY - 2*swaps
	den := math.Sqrt((total - tiedX) * (total - tiedY))
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

func pairs(k int) float64 { return float64(k) * float64(k-1) / 2 }

// mergeCount sorts v ascending and returns the number of strictly
// inverted pairs. buf must be as long as v.
func mergeCount(v, buf []float64) float64 {
	if len(v) < 2 {
		return 0
	}
	mid := len(v) / 2
	swaps := mergeCount(v[:mid], buf[:mid]) + mergeCount(v[mid:], buf[mid:])
	i, j, k := 0, mid, 0
	for i < mid && j < len(v) {
		if v[i] <= v[j] {
			buf[k] = v[i]
			i++
		} else {
			buf[k] = v[j]
			swaps += float64(mid - i)
			j++
		}
		k++
	}
	k += copy(buf[k:], v[i:mid])
	copy(buf[k:], v[j:])
	copy(v, buf[:len(v)])
	return swaps
}

func spread(v []float64) float64 {
	lo, hi := v[0], v[0]
	for _, x := range v[1:] {
		lo, hi = math.Min(lo, x), math.Max(hi, x)
	}
	return hi - lo
}

func clamp(r float64) float64 {
	if math.IsNaN(r) {
		return r
	}
	return math.Max(-1, math.Min(1, r))
}

// rank assigns 1-based ranks, averaging ties.
func rank(v []float64) []float64 {
	idx := make([]int, len(v))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return v[idx[a]] < v[idx[b]] })
	out := make([]float64, len(v))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && v[idx[j+1]] == v[idx[i]] {
			j++
		}
		r := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[idx[k]] = r
		}
		i = j + 1
	}
	return out
}
