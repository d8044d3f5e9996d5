package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/KaramelBytes/tuyere-cli/internal/correlation"
	"github.com/KaramelBytes/tuyere-cli/internal/dataset"
	"github.com/KaramelBytes/tuyere-cli/internal/plotting"
)

// HeatmapTitle is the plot title for one fuel's high-stress correlation matrix.
func HeatmapTitle(fuel string, threshold float64) string {
	return fmt.Sprintf("Correlation Matrix Heatmap for Stress > %s MPa - %s", strconv.FormatFloat(threshold, 'f', -1, 64), fuel)
}

// Correlate runs the high-stress correlation analysis for every configured
// fuel. Fuels without data, or without rows above the threshold, are skipped.
func (r *Runner) Correlate(ctx context.Context) (*Summary, error) {
	sum := NewSummary("correlate")
	log := r.log.With(zap.String("run_id", sum.RunID))

	for _, fuel := range r.s.Fuels {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		t, missing, err := dataset.LoadFuel(r.s.DataDir, r.s.FilePattern, fuel, r.s.Rates, r.s.Load)
		r.reportMissing(log, sum, missing)
		if err != nil {
			fmt.Fprintf(r.out, "⚠ %s: %v\n", fuel, err)
			log.Error("load failed", zap.String("fuel", fuel), zap.Error(err))
			sum.Correlations = append(sum.Correlations, CorrelationResult{Fuel: fuel, Threshold: r.s.StressThreshold, Error: err.Error()})
			continue
		}
		res, _, err := r.CorrelateTable(fuel, t)
		if err != nil {
			fmt.Fprintf(r.out, "⚠ %s: %v\n", fuel, err)
			log.Error("correlation failed", zap.String("fuel", fuel), zap.Error(err))
			res = &CorrelationResult{Fuel: fuel, Threshold: r.s.StressThreshold, Error: err.Error()}
		}
		sum.Correlations = append(sum.Correlations, *res)
	}

	sum.FinishedAt = time.Now().UTC()
	if sum.Processed() == 0 {
		return sum, ErrNothingProcessed
	}
	return sum, nil
}

// CorrelateTable filters t to rows above the stress threshold, drops the
// position and strain columns, and persists and plots the correlation matrix.
// The returned matrix is nil when the fuel was skipped.
func (r *Runner) CorrelateTable(fuel string, t *dataset.Table) (*CorrelationResult, *correlation.Matrix, error) {
	res := &CorrelationResult{Fuel: fuel, Threshold: r.s.StressThreshold, Sources: t.Sources}
	if t.Empty() {
		res.Skipped = "no data"
		r.log.Info("no data for fuel, skipping", zap.String("fuel", fuel))
		return res, nil, nil
	}
	t = t.Clone()
	if err := t.CoerceNumeric(r.s.StressColumn); err != nil {
		return nil, nil, err
	}
	high, err := t.FilterAbove(r.s.StressColumn, r.s.StressThreshold)
	if err != nil {
		return nil, nil, err
	}
	high.DropColumns(append(append([]string(nil), r.s.PositionColumns...), r.s.StrainColumn)...)
	res.Rows = high.Len()
	if high.Empty() {
		res.Skipped = "no rows above threshold"
		r.log.Info("no rows above stress threshold, skipping",
			zap.String("fuel", fuel),
			zap.Float64("threshold", r.s.StressThreshold),
			zap.Int("rows", t.Len()),
		)
		return res, nil, nil
	}

	m, err := correlation.Compute(high, r.s.CorrMethod)
	if err != nil {
		return nil, nil, err
	}
	res.Method = m.Method
	res.Columns = m.Columns

	path := filepath.Join(r.s.OutputDir, correlation.FileName(fuel, r.s.StressThreshold, r.s.CorrFormat))
	if err := m.Save(path, r.s.CorrFormat); err != nil {
		return nil, nil, fmt.Errorf("save matrix: %w", err)
	}
	res.Matrix = path
	fmt.Fprintf(r.out, "Saved correlation matrix to %s\n", path)
	r.log.Info("correlation matrix saved",
		zap.String("fuel", fuel),
		zap.String("path", path),
		zap.Int("rows", high.Len()),
		zap.Int("columns", len(m.Columns)),
	)

	res.TopPairs = m.TopPairs(r.s.TopPairs)
	for _, p := range res.TopPairs {
		fmt.Fprintf(r.out, "  %s ~ %s: r=%.3f\n", p.A, p.B, p.R)
	}

	if !r.s.NoPlots {
		thr := strconv.FormatFloat(r.s.StressThreshold, 'f', -1, 64)
		hpath := filepath.Join(r.s.OutputDir, fmt.Sprintf("%s_correlation_heatmap_stress_above_%s_MPa.%s", fuel, thr, r.s.PlotFormat))
		if err := plotting.Heatmap(m, HeatmapTitle(fuel, r.s.StressThreshold), hpath, r.s.Plot); err != nil {
			r.log.Error("heatmap failed", zap.String("path", hpath), zap.Error(err))
		} else {
			res.Heatmap = hpath
			fmt.Fprintf(r.out, "✓ Wrote %s\n", hpath)
		}
	}
	return res, m, nil
}
