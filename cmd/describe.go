package cmd

import (
	"fmt"

	"github.com/KaramelBytes/tuyere-cli/internal/analysis"
	"github.com/KaramelBytes/tuyere-cli/internal/dataset"
	"github.com/KaramelBytes/tuyere-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	descOutputPath string
	descSampleRows int
	descCorr       bool
	descTop        int
	descOutliers   bool
	descOutlierThr float64
	descLocale     localeFlags
)

var describeCmd = &cobra.Command{
	Use:   "describe <files...>",
	Short: "Summarize simulation result files column by column",
	Long: `Prints a Markdown summary of one or more result files: column kinds, missing
values, ranges, robust outlier counts and the strongest correlations. Several
files are concatenated first and also summarized per file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandFiles(args)
		if err != nil {
			return err
		}
		lopt, err := descLocale.options()
		if err != nil {
			return err
		}
		var parts []*dataset.Table
		for _, f := range files {
			t, err := dataset.LoadFile(f, lopt)
			if err != nil {
				return err
			}
			parts = append(parts, t)
		}
		t := parts[0]
		if len(parts) > 1 {
			t = dataset.Concat(fmt.Sprintf("%d files", len(parts)), parts...)
		}

		opt := analysis.DefaultOptions()
		if c, err := requireConfig(); err == nil {
			opt.GroupColumns = []string{c.StrainColumn, c.StressColumn}
		}
		if cmd.Flags().Changed("sample-rows") {
			opt.SampleRows = descSampleRows
		}
		if cmd.Flags().Changed("corr") {
			opt.Correlations = descCorr
		}
		if cmd.Flags().Changed("top") {
			opt.TopPairs = descTop
		}
		if cmd.Flags().Changed("outliers") {
			opt.Outliers = descOutliers
		}
		if descOutlierThr > 0 {
			opt.OutlierThreshold = descOutlierThr
		}
		rep, err := analysis.Describe(t, opt)
		if err != nil {
			return err
		}
		md := rep.Markdown()

		if descOutputPath != "" {
			if err := utils.SafeWriteFile(descOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote summary to %s\n", descOutputPath)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringVarP(&descOutputPath, "output", "o", "", "write the summary to a file instead of stdout")
	describeCmd.Flags().IntVar(&descSampleRows, "sample-rows", 5, "number of leading rows to include")
	describeCmd.Flags().BoolVar(&descCorr, "corr", true, "list the strongest correlations")
	describeCmd.Flags().IntVar(&descTop, "top", 10, "number of correlation pairs to list")
	describeCmd.Flags().BoolVar(&descOutliers, "outliers", true, "count robust outliers (MAD z-score)")
	describeCmd.Flags().Float64Var(&descOutlierThr, "outlier-threshold", 0, "robust |z| above which a value is an outlier (default 3.5)")
	descLocale.register(describeCmd)
}
