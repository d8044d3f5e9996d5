package cmd

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/tuyere-cli/internal/correlation"
	"github.com/KaramelBytes/tuyere-cli/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	corFuels     []string
	corRates     []int
	corThreshold float64
	corMethod    string
	corFormat    string
	corTop       int
	corNoPlots   bool
	corLocale    localeFlags
)

var correlateCmd = &cobra.Command{
	Use:   "correlate",
	Short: "Correlate variables over high-stress rows per fuel and plot heatmaps",
	Long: `For each fuel, concatenates all injection-rate files, keeps rows with stress
above the threshold, drops position and strain columns, and writes the
correlation matrix and its heatmap.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		s, err := pipeline.FromConfig(c)
		if err != nil {
			return err
		}
		if s.Load, err = corLocale.options(); err != nil {
			return err
		}
		fl := cmd.Flags()
		if fl.Changed("fuel") {
			s.Fuels = corFuels
		}
		if fl.Changed("rate") {
			s.Rates = corRates
		}
		if fl.Changed("threshold") {
			s.StressThreshold = corThreshold
		}
		if fl.Changed("method") {
			if s.CorrMethod, err = correlation.ParseMethod(corMethod); err != nil {
				return err
			}
		}
		if fl.Changed("format") {
			if s.CorrFormat, err = correlation.ParseFormat(corFormat); err != nil {
				return err
			}
		}
		if fl.Changed("top") {
			s.TopPairs = corTop
		}
		s.NoPlots = corNoPlots

		out := cmd.OutOrStdout()
		sum, runErr := pipeline.New(s, logger, out).Correlate(cmd.Context())
		if sum != nil {
			path, err := sum.Write(s.OutputDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Wrote summary to %s\n", path)
		}
		if errors.Is(runErr, pipeline.ErrNothingProcessed) {
			return fmt.Errorf("%w: no fuel had rows with %s above %g", runErr, s.StressColumn, s.StressThreshold)
		}
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(correlateCmd)
	correlateCmd.Flags().StringSliceVar(&corFuels, "fuel", nil, "fuels to analyze (default from config)")
	correlateCmd.Flags().IntSliceVar(&corRates, "rate", nil, "injection rates to combine (default from config)")
	correlateCmd.Flags().Float64Var(&corThreshold, "threshold", 0, "keep rows with stress strictly above this value, MPa (overrides stress_threshold)")
	correlateCmd.Flags().StringVar(&corMethod, "method", "", "correlation method: pearson|spearman|kendall")
	correlateCmd.Flags().StringVar(&corFormat, "format", "", "matrix file format: csv|xlsx")
	correlateCmd.Flags().IntVar(&corTop, "top", 5, "strongest pairs to print per fuel")
	correlateCmd.Flags().BoolVar(&corNoPlots, "no-plots", false, "skip heatmaps")
	corLocale.register(correlateCmd)
}
