package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/KaramelBytes/tuyere-cli/internal/booster"
	"github.com/KaramelBytes/tuyere-cli/internal/dataset"
	"github.com/KaramelBytes/tuyere-cli/internal/plotting"
	"github.com/KaramelBytes/tuyere-cli/internal/utils"
)

// job is one table to model.
type job struct {
	name  string // label used in console output and plot titles
	stem  string // file stem for artifacts
	fuel  string
	rate  int
	path  string
	table *dataset.Table
}

// Regress models every configured fuel/rate file, or the given files when
// any are passed. Missing files are reported and skipped; a dataset that
// fails is recorded in the summary and the run continues.
func (r *Runner) Regress(ctx context.Context, files []string) (*Summary, error) {
	if err := r.s.validate(); err != nil {
		return nil, err
	}
	sum := NewSummary("regress")
	log := r.log.With(zap.String("run_id", sum.RunID))

	var jobs []job
	switch {
	case len(files) > 0:
		for _, f := range files {
			fuel, rate, _ := dataset.ParseFileName(f)
			jobs = append(jobs, job{name: f, stem: utils.StripExt(f), fuel: fuel, rate: rate, path: f})
		}
	case r.s.Combine:
		for _, fuel := range r.s.Fuels {
			jobs = append(jobs, job{name: fuel, stem: fuel + "_combined", fuel: fuel})
		}
	default:
		for _, fuel := range r.s.Fuels {
			for _, rate := range r.s.Rates {
				path := filepath.Join(r.s.DataDir, dataset.FileName(r.s.FilePattern, fuel, rate))
				jobs = append(jobs, job{name: path, stem: utils.StripExt(path), fuel: fuel, rate: rate, path: path})
			}
		}
	}

	for _, j := range jobs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if j.path == "" {
			fmt.Fprintf(r.out, "Analyzing %s across injection rates %s\n", j.fuel, joinInts(r.s.Rates))
			t, missing, err := dataset.LoadFuel(r.s.DataDir, r.s.FilePattern, j.fuel, r.s.Rates, r.s.Load)
			r.reportMissing(log, sum, missing)
			if err != nil {
				r.recordFailure(log, sum, j, err)
				continue
			}
			if t.Empty() {
				log.Info("no data for fuel, skipping", zap.String("fuel", j.fuel))
				continue
			}
			j.table = t
		} else {
			if j.fuel != "" && j.rate > 0 {
				fmt.Fprintf(r.out, "Analyzing %s at injection rate %d\n", j.fuel, j.rate)
			} else {
				fmt.Fprintf(r.out, "Analyzing %s\n", j.path)
			}
			t, err := dataset.LoadFile(j.path, r.s.Load)
			if errors.Is(err, os.ErrNotExist) {
				r.reportMissing(log, sum, []string{j.path})
				continue
			}
			if err != nil {
				r.recordFailure(log, sum, j, err)
				continue
			}
			j.table = t
		}

		res, err := r.RegressTable(ctx, j.name, j.table)
		if err != nil {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			r.recordFailure(log, sum, j, err)
			continue
		}
		res.Fuel, res.Rate = j.fuel, j.rate
		if !r.s.NoPlots {
			r.plotImportance(log, j, res)
		}
		sum.Regressions = append(sum.Regressions, *res)
	}

	sum.FinishedAt = time.Now().UTC()
	if sum.Processed() == 0 {
		return sum, ErrNothingProcessed
	}
	return sum, nil
}

func (r *Runner) reportMissing(log *zap.Logger, sum *Summary, missing []string) {
	for _, p := range missing {
		fmt.Fprintf(r.out, "File not found: %s\n", p)
		log.Warn("input file not found", zap.String("path", p))
		sum.Missing = append(sum.Missing, p)
	}
}

func (r *Runner) recordFailure(log *zap.Logger, sum *Summary, j job, err error) {
	fmt.Fprintf(r.out, "⚠ %s: %v\n", j.name, err)
	log.Error("dataset failed", zap.String("dataset", j.name), zap.Error(err))
	sum.Regressions = append(sum.Regressions, RegressionResult{Dataset: j.name, Fuel: j.fuel, Rate: j.rate, Error: err.Error()})
}

// features picks the model inputs for t.
func (r *Runner) features(t *dataset.Table) []string {
	if !r.s.AutoFeatures {
		return append([]string(nil), r.s.InputColumns...)
	}
	skip := map[string]bool{r.s.StrainColumn: true, r.s.StressColumn: true}
	for _, c := range r.s.PositionColumns {
		skip[c] = true
	}
	var out []string
	for _, c := range t.NumericColumns() {
		if !skip[c] {
			out = append(out, c)
		}
	}
	return out
}

// RegressTable cleans t, splits it once and fits one model per target on the
// shared split. It prints the mean squared error of each model.
func (r *Runner) RegressTable(ctx context.Context, name string, t *dataset.Table) (*RegressionResult, error) {
	features := r.features(t)
	if len(features) == 0 {
		return nil, fmt.Errorf("no numeric feature columns in %s", name)
	}
	t = t.Clone()
	if err := t.CoerceNumeric(append(features, r.s.targets()...)...); err != nil {
		return nil, err
	}
	dropped := t.DropMissing()
	t.DropColumns(r.s.PositionColumns...)
	if dropped > 0 {
		r.log.Debug("dropped rows with missing values", zap.String("dataset", name), zap.Int("dropped", dropped), zap.Int("kept", t.Len()))
	}

	X, err := t.Matrix(features)
	if err != nil {
		return nil, err
	}
	train, test, err := booster.TrainTestSplit(t.Len(), r.s.TestSize, r.s.Seed)
	if err != nil {
		return nil, err
	}
	Xtrain, Xtest := booster.TakeRows(X, train), booster.TakeRows(X, test)

	res := &RegressionResult{
		Dataset:  name,
		Sources:  t.Sources,
		Rows:     t.Len(),
		Dropped:  dropped,
		Train:    len(train),
		Test:     len(test),
		Features: features,
	}
	for _, target := range r.s.targets() {
		y, err := t.Float(target)
		if err != nil {
			return nil, err
		}
		start := time.Now()
		m := booster.NewRegressor(booster.WithParams(r.s.Params))
		if err := m.Fit(ctx, Xtrain, booster.Take(y, train), features); err != nil {
			return nil, fmt.Errorf("fit %s: %w", target, err)
		}
		pred, err := m.Predict(Xtest)
		if err != nil {
			return nil, fmt.Errorf("predict %s: %w", target, err)
		}
		yTest := booster.Take(y, test)
		mse, err := booster.MeanSquaredError(yTest, pred)
		if err != nil {
			return nil, err
		}
		rmse, _ := booster.RootMeanSquaredError(yTest, pred)
		r2, _ := booster.RSquared(yTest, pred)
		imp, err := m.Importance(r.s.Importance)
		if err != nil {
			return nil, err
		}
		r.log.Info("model fitted",
			zap.String("dataset", name),
			zap.String("target", target),
			zap.Int("train_rows", len(train)),
			zap.Int("trees", m.NumTrees()),
			zap.Float64("mse", mse),
			zap.Duration("took", time.Since(start)),
		)
		fmt.Fprintf(r.out, "%s - Mean Squared Error for %s: %v\n", name, target, mse)
		res.Targets = append(res.Targets, TargetResult{Target: target, MSE: mse, RMSE: rmse, R2: r2, Importance: imp})
	}
	return res, nil
}

func (r *Runner) plotImportance(log *zap.Logger, j job, res *RegressionResult) {
	for i := range res.Targets {
		tr := &res.Targets[i]
		if len(tr.Importance) == 0 {
			log.Warn("model made no splits, skipping importance plot", zap.String("dataset", j.name), zap.String("target", tr.Target))
			continue
		}
		name := fmt.Sprintf("%s_%s_importance.%s", filepath.Base(j.stem), strings.ToLower(tr.Target), r.s.PlotFormat)
		path := filepath.Join(r.s.OutputDir, name)
		title := fmt.Sprintf("Feature Importance for %s (%s)", tr.Target, j.name)
		if err := plotting.FeatureImportance(tr.Importance, title, path, r.s.Plot); err != nil {
			log.Error("importance plot failed", zap.String("path", path), zap.Error(err))
			continue
		}
		tr.Plot = path
		fmt.Fprintf(r.out, "✓ Wrote %s\n", path)
	}
}

func joinInts(v []int) string {
	s := make([]string, len(v))
	for i, n := range v {
		s[i] = fmt.Sprint(n)
	}
	return strings.Join(s, ", ")
}
