package cmd

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/tuyere-cli/internal/booster"
	"github.com/KaramelBytes/tuyere-cli/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	regFuels        []string
	regRates        []int
	regCombine      bool
	regAutoFeatures bool
	regNoPlots      bool
	regImportance   string
	regRounds       int
	regMaxDepth     int
	regTestSize     float64
	regSeed         uint64
	regLocale       localeFlags
)

var regressCmd = &cobra.Command{
	Use:   "regress [files...]",
	Short: "Fit boosted-tree models for strain and stress and report test MSE",
	Long: `Fits one boosted-tree regressor per target (strain, stress) on each
{fuel}_{rate} file, reports the mean squared error on a held-out split and writes
feature-importance plots. Pass files to model them instead of the configured set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		s, err := pipeline.FromConfig(c)
		if err != nil {
			return err
		}
		if s.Load, err = regLocale.options(); err != nil {
			return err
		}
		fl := cmd.Flags()
		if fl.Changed("fuel") {
			s.Fuels = regFuels
		}
		if fl.Changed("rate") {
			s.Rates = regRates
		}
		if fl.Changed("importance") {
			if s.Importance, err = booster.ParseImportanceType(regImportance); err != nil {
				return err
			}
		}
		if fl.Changed("rounds") {
			s.Params.NEstimators = regRounds
		}
		if fl.Changed("max-depth") {
			s.Params.MaxDepth = regMaxDepth
		}
		if fl.Changed("test-size") {
			s.TestSize = regTestSize
		}
		if fl.Changed("seed") {
			s.Seed = regSeed
			s.Params.Seed = regSeed
		}
		s.Combine = regCombine
		s.AutoFeatures = regAutoFeatures
		s.NoPlots = regNoPlots

		var files []string
		if len(args) > 0 {
			if files, err = expandFiles(args); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		sum, runErr := pipeline.New(s, logger, out).Regress(cmd.Context(), files)
		if sum != nil {
			path, err := sum.Write(s.OutputDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Wrote summary to %s\n", path)
		}
		if errors.Is(runErr, pipeline.ErrNothingProcessed) {
			return fmt.Errorf("%w: check --data-dir and file_pattern", runErr)
		}
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(regressCmd)
	regressCmd.Flags().StringSliceVar(&regFuels, "fuel", nil, "fuels to analyze (default from config)")
	regressCmd.Flags().IntSliceVar(&regRates, "rate", nil, "injection rates to analyze (default from config)")
	regressCmd.Flags().BoolVar(&regCombine, "combine", false, "model all rates of a fuel together instead of each file")
	regressCmd.Flags().BoolVar(&regAutoFeatures, "auto-features", false, "use every numeric column except positions and targets as features")
	regressCmd.Flags().BoolVar(&regNoPlots, "no-plots", false, "skip feature-importance plots")
	regressCmd.Flags().StringVar(&regImportance, "importance", "", "importance type: weight|gain|total_gain")
	regressCmd.Flags().IntVar(&regRounds, "rounds", 0, "boosting rounds (overrides n_estimators)")
	regressCmd.Flags().IntVar(&regMaxDepth, "max-depth", 0, "maximum tree depth (overrides max_depth)")
	regressCmd.Flags().Float64Var(&regTestSize, "test-size", 0, "held-out fraction (overrides test_size)")
	regressCmd.Flags().Uint64Var(&regSeed, "seed", 0, "split and sampling seed (overrides seed)")
	regLocale.register(regressCmd)
}
