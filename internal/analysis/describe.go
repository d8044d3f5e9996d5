// Package analysis summarizes a sample table column by column so a data file
// can be inspected before it is modeled.
package analysis

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/tuyere-cli/internal/correlation"
	"github.com/KaramelBytes/tuyere-cli/internal/dataset"
)

// Options controls the summary.
type Options struct {
	// SampleRows determines how many leading rows to include in the report.
	SampleRows int
	// Correlations lists the strongest column pairs.
	Correlations bool
	// TopPairs bounds the listed pairs.
	TopPairs int
	// Outlier detection via robust Z-score (MAD). If Outliers is true, counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
	// GroupColumns are summarized per source file.
	GroupColumns []string
}

// DefaultOptions returns reasonable defaults for a simulation result file.
func DefaultOptions() Options {
	return Options{
		SampleRows:       5,
		Correlations:     true,
		TopPairs:         10,
		Outliers:         true,
		OutlierThreshold: 3.5,
		GroupColumns:     []string{"Strain", "Stress"},
	}
}

// Report is a markdown-friendly summary of a sample table.
type Report struct {
	Name     string
	Rows     int
	Cols     []ColumnSummary
	Samples  [][]string
	Groups   []GroupResult
	Pairs    []correlation.Pair
	Warnings []string
}

// ColumnSummary captures inferred type and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    string // numeric|text
	Unit    string
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Min  float64
	Max  float64
	Mean float64
	Std  float64
	// Outliers (robust Z via MAD)
	OutliersCount    int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64
	ExampleTexts     []string
}

// GroupResult aggregates columns over the rows of one source file.
type GroupResult struct {
	Key     string
	Size    int
	Metrics map[string]NumSummary // by column name
}

type NumSummary struct {
	Count          int
	Min, Max, Mean float64
}

// Describe summarizes t.
func Describe(t *dataset.Table, opt Options) (*Report, error) {
	rep := &Report{Name: t.Name, Rows: t.Len()}
	for _, name := range t.Columns() {
		c, _ := t.Column(name)
		cs := ColumnSummary{Name: name}
		_, cs.Unit = splitUnits(name)
		seen := map[string]struct{}{}
		for i, raw := range c.Raw {
			if c.Missing(i) {
				cs.Missing++
				continue
			}
			cs.NonNull++
			seen[raw] = struct{}{}
		}
		cs.Unique = len(seen)

		if c.Numeric {
			cs.Kind = "numeric"
			vals := present(c.Values)
			if len(vals) > 0 {
				cs.Min, cs.Max = floats.Min(vals), floats.Max(vals)
				cs.Mean, cs.Std = stat.MeanStdDev(vals, nil)
				if len(vals) < 2 {
					cs.Std = 0
				}
				if opt.Outliers {
					cs.OutlierThreshold = opt.OutlierThreshold
					cs.OutliersCount, cs.OutliersMaxAbsZ = robustOutliers(vals, opt.OutlierThreshold)
				}
			} else {
				rep.Warnings = append(rep.Warnings, fmt.Sprintf("column %s has no values", name))
			}
		} else {
			cs.Kind = "text"
			for i, raw := range c.Raw {
				if len(cs.ExampleTexts) == 3 {
					break
				}
				if !c.Missing(i) {
					cs.ExampleTexts = append(cs.ExampleTexts, raw)
				}
			}
			if cs.NonNull > 0 {
				rep.Warnings = append(rep.Warnings, fmt.Sprintf("column %s is not numeric and is ignored by the models", name))
			}
		}
		rep.Cols = append(rep.Cols, cs)
	}

	for i := 0; i < min(opt.SampleRows, t.Len()); i++ {
		row := make([]string, 0, len(rep.Cols))
		for _, name := range t.Columns() {
			c, _ := t.Column(name)
			row = append(row, c.Raw[i])
		}
		rep.Samples = append(rep.Samples, row)
	}

	if len(t.Sources) > 1 {
		rep.Groups = groupBySource(t, opt.GroupColumns)
	}

	if opt.Correlations && len(t.NumericColumns()) >= 2 {
		m, err := correlation.Compute(t, correlation.Pearson)
		if err != nil {
			return nil, err
		}
		rep.Pairs = m.TopPairs(opt.TopPairs)
	}
	return rep, nil
}

func present(v []float64) []float64 {
	out := make([]float64, 0, len(v))
	for _, x := range v {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}

// robustOutliers counts values whose modified Z-score exceeds thr.
func robustOutliers(vals []float64, thr float64) (count int, maxAbsZ float64) {
	med, mad := medianMAD(vals)
	if mad == 0 {
		return 0, 0
	}
	for _, v := range vals {
		z := 0.6745 * (v - med) / mad
		if math.Abs(z) > thr {
			count++
		}
		maxAbsZ = math.Max(maxAbsZ, math.Abs(z))
	}
	return count, maxAbsZ
}

// groupBySource splits rows by the file they were loaded from. Rows of a
// concatenated table keep source order.
func groupBySource(t *dataset.Table, cols []string) []GroupResult {
	var out []GroupResult
	start := 0
	for _, src := range t.Sources {
		end := min(start+src.Rows, t.Len())
		g := GroupResult{Key: src.Path, Size: end - start, Metrics: map[string]NumSummary{}}
		for _, name := range cols {
			v, err := t.Float(name)
			if err != nil {
				continue
			}
			vals := present(v[start:end])
			if len(vals) == 0 {
				continue
			}
			g.Metrics[name] = NumSummary{
				Count: len(vals),
				Min:   floats.Min(vals),
				Max:   floats.Max(vals),
				Mean:  stat.Mean(vals, nil),
			}
		}
		out = append(out, g)
		start = end
	}
	return out
}

// Markdown renders a compact report for the terminal or a standalone doc.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		name := safeName(c.Name)
		if c.Unit != "" {
			clean, _ := splitUnits(c.Name)
			name = fmt.Sprintf("%s [%s]", clean, c.Unit)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", name, c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case "numeric":
			if c.NonNull > 0 {
				b.WriteString(fmt.Sprintf("; min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
			}
			if c.OutlierThreshold > 0 && c.OutliersCount > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f (max |z|≈%.2f)", c.OutliersCount, c.OutlierThreshold, c.OutliersMaxAbsZ))
			}
		case "text":
			if len(c.ExampleTexts) > 0 {
				b.WriteString("; e.g., ")
				for i, ex := range c.ExampleTexts {
					if i > 0 {
						b.WriteString(" | ")
					}
					b.WriteString(safeVal(ex))
				}
			}
		}
		b.WriteString("\n")
	}

	if len(r.Groups) > 0 {
		b.WriteString("\n[PER-FILE SUMMARY]\n")
		for _, g := range r.Groups {
			b.WriteString(fmt.Sprintf("- %s (n=%d)\n", g.Key, g.Size))
			keys := make([]string, 0, len(g.Metrics))
			for k := range g.Metrics {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				m := g.Metrics[k]
				b.WriteString(fmt.Sprintf("  • %s: mean %.4g (min %.4g, max %.4g)\n", k, m.Mean, m.Min, m.Max))
			}
		}
	}

	if len(r.Pairs) > 0 {
		b.WriteString("\n[CORRELATIONS]\n")
		for _, p := range r.Pairs {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| ")
		for i, c := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c.Name))
		}
		b.WriteString(" |\n| ")
		for i := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i, v := range row {
				if i > 0 {
					b.WriteString(" | ")
				}
				b.WriteString(safeVal(v))
			}
			b.WriteString(" |\n")
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

var unitPatterns = []struct {
	re   *regexp.Regexp
	pick int
}{
	{regexp.MustCompile(`^(.*)\s*\(([^)]+)\)\s*$`), 2},  // e.g., Stress (MPa)
	{regexp.MustCompile(`^(.*)\s*\[([^\]]+)\]\s*$`), 2}, // e.g., Velocity [m/s]
	{regexp.MustCompile(`^(.*?)[_\s-]+(MPa|Pa|K|°C|m/s|kg/s|J/kg|%)$`), 2},
}

func splitUnits(name string) (clean string, unit string) {
	s := strings.TrimSpace(name)
	for _, p := range unitPatterns {
		if m := p.re.FindStringSubmatch(s); len(m) >= 3 {
			base := strings.TrimSpace(m[1])
			u := strings.TrimSpace(m[p.pick])
			if base != "" && u != "" {
				return base, u
			}
		}
	}
	return s, ""
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = sortedMedian(cp)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = sortedMedian(dev)
	return
}

// sortedMedian averages the two middle values of an even-length slice.
func sortedMedian(sorted []float64) float64 {
	lower := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	return (lower + sorted[len(sorted)/2]) / 2
}
