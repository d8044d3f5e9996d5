package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/tuyere-cli/internal/correlation"
	"github.com/KaramelBytes/tuyere-cli/internal/plotting"
	"github.com/KaramelBytes/tuyere-cli/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	hmTitle    string
	hmOutput   string
	hmNoLabels bool
)

var heatmapCmd = &cobra.Command{
	Use:   "heatmap <matrix.csv>",
	Short: "Render a saved correlation matrix as a heatmap",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if !fileExists(path) {
			return fmt.Errorf("matrix file not found: %s", path)
		}
		m, err := correlation.ReadFile(path)
		if err != nil {
			return err
		}

		opt := plotting.DefaultOptions()
		format := "png"
		if c, err := requireConfig(); err == nil {
			opt.WidthIn, opt.HeightIn = c.PlotWidthIn, c.PlotHeightIn
			format = c.PlotFormat
		}
		opt.Annotate = !hmNoLabels

		out := hmOutput
		if out == "" {
			out = filepath.Join(filepath.Dir(path), utils.StripExt(path)+"_heatmap."+format)
		}
		title := hmTitle
		if title == "" {
			title = strings.ReplaceAll(utils.StripExt(path), "_", " ")
		}
		if err := plotting.Heatmap(m, title, out, opt); err != nil {
			return err
		}
		logger.Info("heatmap rendered", zap.String("matrix", path), zap.String("path", out), zap.Int("columns", len(m.Columns)))
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(heatmapCmd)
	heatmapCmd.Flags().StringVar(&hmTitle, "title", "", "plot title (default derived from the file name)")
	heatmapCmd.Flags().StringVarP(&hmOutput, "output", "o", "", "image path; extension selects png|svg|pdf")
	heatmapCmd.Flags().BoolVar(&hmNoLabels, "no-labels", false, "do not print coefficients in cells")
}
