package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultInputColumns are the chemical/physical simulation inputs used as features.
var DefaultInputColumns = []string{
	"CO", "CO2", "H2", "H2O", "Heat_of_Het", "Het1", "Het2", "Het3",
	"N2", "O2", "RR2", "RR3", "Static_Enth", "Velocity",
}

// Global configuration structure.
type Global struct {
	DataDir         string   `mapstructure:"data_dir" yaml:"data_dir"`
	OutputDir       string   `mapstructure:"output_dir" yaml:"output_dir"`
	FilePattern     string   `mapstructure:"file_pattern" yaml:"file_pattern"`
	Fuels           []string `mapstructure:"fuels" yaml:"fuels"`
	InjectionRates  []int    `mapstructure:"injection_rates" yaml:"injection_rates"`
	InputColumns    []string `mapstructure:"input_columns" yaml:"input_columns"`
	PositionColumns []string `mapstructure:"position_columns" yaml:"position_columns"`
	StrainColumn    string   `mapstructure:"strain_column" yaml:"strain_column"`
	StressColumn    string   `mapstructure:"stress_column" yaml:"stress_column"`
	StressThreshold float64  `mapstructure:"stress_threshold" yaml:"stress_threshold"`

	// Train/test split
	TestSize float64 `mapstructure:"test_size" yaml:"test_size"`
	Seed     uint64  `mapstructure:"seed" yaml:"seed"`

	// Boosted-tree regressor
	NEstimators     int     `mapstructure:"n_estimators" yaml:"n_estimators"`
	MaxDepth        int     `mapstructure:"max_depth" yaml:"max_depth"`
	LearningRate    float64 `mapstructure:"learning_rate" yaml:"learning_rate"`
	RegLambda       float64 `mapstructure:"reg_lambda" yaml:"reg_lambda"`
	NumLeaves       int     `mapstructure:"num_leaves" yaml:"num_leaves"`
	MinChildSamples int     `mapstructure:"min_child_samples" yaml:"min_child_samples"`
	Subsample       float64 `mapstructure:"subsample" yaml:"subsample"`
	ColsampleTree   float64 `mapstructure:"colsample_bytree" yaml:"colsample_bytree"`
	ImportanceType  string  `mapstructure:"importance_type" yaml:"importance_type"`

	// Correlation
	CorrMethod string `mapstructure:"corr_method" yaml:"corr_method"`
	CorrFormat string `mapstructure:"corr_format" yaml:"corr_format"`

	// Plots
	PlotFormat   string  `mapstructure:"plot_format" yaml:"plot_format"`
	PlotWidthIn  float64 `mapstructure:"plot_width_in" yaml:"plot_width_in"`
	PlotHeightIn float64 `mapstructure:"plot_height_in" yaml:"plot_height_in"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tuyere/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("TUYERE")
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		// a missing default file is fine; an explicit or broken one is not
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", ".")
	v.SetDefault("output_dir", "tuyere-out")
	v.SetDefault("file_pattern", "{fuel}_{rate}.csv")
	v.SetDefault("fuels", []string{"COG", "RCOG", "H2", "NormalBlast"})
	v.SetDefault("injection_rates", []int{100, 125, 150, 175, 200})
	v.SetDefault("input_columns", DefaultInputColumns)
	v.SetDefault("position_columns", []string{"X", "Y", "Z"})
	v.SetDefault("strain_column", "Strain")
	v.SetDefault("stress_column", "Stress")
	v.SetDefault("stress_threshold", 1000.0)
	v.SetDefault("test_size", 0.2)
	v.SetDefault("seed", 42)
	// Tree depth, shrinkage and L2 follow the usual boosted-tree defaults; one
	// sample per leaf keeps small simulation files splittable.
	v.SetDefault("n_estimators", 100)
	v.SetDefault("max_depth", 6)
	v.SetDefault("learning_rate", 0.3)
	v.SetDefault("reg_lambda", 1.0)
	v.SetDefault("num_leaves", 31)
	v.SetDefault("min_child_samples", 1)
	v.SetDefault("subsample", 1.0)
	v.SetDefault("colsample_bytree", 1.0)
	v.SetDefault("importance_type", "weight")
	v.SetDefault("corr_method", "pearson")
	v.SetDefault("corr_format", "csv")
	v.SetDefault("plot_format", "png")
	v.SetDefault("plot_width_in", 12.0)
	v.SetDefault("plot_height_in", 10.0)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
}

// Validate reports the first setting that cannot drive an analysis run.
func (c *Global) Validate() error {
	switch {
	case c.TestSize <= 0 || c.TestSize >= 1:
		return fmt.Errorf("invalid test_size %v: must be in (0, 1)", c.TestSize)
	case c.NEstimators <= 0:
		return fmt.Errorf("invalid n_estimators %d: must be positive", c.NEstimators)
	case c.MaxDepth <= 0:
		return fmt.Errorf("invalid max_depth %d: must be positive", c.MaxDepth)
	case c.LearningRate <= 0:
		return fmt.Errorf("invalid learning_rate %v: must be positive", c.LearningRate)
	case c.RegLambda < 0:
		return fmt.Errorf("invalid reg_lambda %v: must not be negative", c.RegLambda)
	case c.NumLeaves < 2:
		return fmt.Errorf("invalid num_leaves %d: must be at least 2", c.NumLeaves)
	case c.MinChildSamples < 1:
		return fmt.Errorf("invalid min_child_samples %d: must be positive", c.MinChildSamples)
	case c.Subsample <= 0 || c.Subsample > 1:
		return fmt.Errorf("invalid subsample %v: must be in (0, 1]", c.Subsample)
	case c.ColsampleTree <= 0 || c.ColsampleTree > 1:
		return fmt.Errorf("invalid colsample_bytree %v: must be in (0, 1]", c.ColsampleTree)
	case c.FilePattern == "":
		return fmt.Errorf("file_pattern must not be empty")
	}
	return nil
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tuyere"), nil
}
