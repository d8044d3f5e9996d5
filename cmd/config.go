package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/tuyere-cli/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Tuyere configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		b, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(b))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long: `Set a config value and save to disk. List keys (fuels, injection_rates,
input_columns, position_columns) take comma-separated values.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if err := setKey(c, key, val); err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func setKey(c *cfgpkg.Global, key, val string) error {
	strs := map[string]*string{
		"data_dir":        &c.DataDir,
		"output_dir":      &c.OutputDir,
		"file_pattern":    &c.FilePattern,
		"strain_column":   &c.StrainColumn,
		"stress_column":   &c.StressColumn,
		"importance_type": &c.ImportanceType,
		"corr_method":     &c.CorrMethod,
		"corr_format":     &c.CorrFormat,
		"plot_format":     &c.PlotFormat,
		"log_level":       &c.LogLevel,
		"log_format":      &c.LogFormat,
	}
	floats := map[string]*float64{
		"stress_threshold": &c.StressThreshold,
		"test_size":        &c.TestSize,
		"learning_rate":    &c.LearningRate,
		"reg_lambda":       &c.RegLambda,
		"subsample":        &c.Subsample,
		"colsample_bytree": &c.ColsampleTree,
		"plot_width_in":    &c.PlotWidthIn,
		"plot_height_in":   &c.PlotHeightIn,
	}
	ints := map[string]*int{
		"n_estimators":      &c.NEstimators,
		"max_depth":         &c.MaxDepth,
		"num_leaves":        &c.NumLeaves,
		"min_child_samples": &c.MinChildSamples,
	}
	lists := map[string]*[]string{
		"fuels":            &c.Fuels,
		"input_columns":    &c.InputColumns,
		"position_columns": &c.PositionColumns,
	}

	if p, ok := strs[key]; ok {
		*p = val
		return nil
	}
	if p, ok := floats[key]; ok {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid float for %s: %w", key, err)
		}
		*p = f
		return nil
	}
	if p, ok := ints[key]; ok {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid int for %s: %w", key, err)
		}
		*p = i
		return nil
	}
	if p, ok := lists[key]; ok {
		*p = splitList(val)
		return nil
	}
	switch key {
	case "injection_rates":
		var rates []int
		for _, s := range splitList(val) {
			i, err := strconv.Atoi(s)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid injection rate: %q", s)
			}
			rates = append(rates, i)
		}
		c.InjectionRates = rates
	case "seed":
		u, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed: %w", err)
		}
		c.Seed = u
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
