// Package pipeline runs the load, clean, model and correlate steps over the
// fuel/injection-rate file sets and records what each run produced.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/tuyere-cli/internal/booster"
	"github.com/KaramelBytes/tuyere-cli/internal/config"
	"github.com/KaramelBytes/tuyere-cli/internal/correlation"
	"github.com/KaramelBytes/tuyere-cli/internal/dataset"
	"github.com/KaramelBytes/tuyere-cli/internal/plotting"
)

// ErrNothingProcessed is returned when every dataset of a run was missing,
// empty or failed.
var ErrNothingProcessed = errors.New("no dataset could be processed")

// Settings drives a run. Build it with FromConfig and adjust per command.
type Settings struct {
	DataDir     string
	OutputDir   string
	FilePattern string
	Fuels       []string
	Rates       []int

	InputColumns    []string
	PositionColumns []string
	StrainColumn    string
	StressColumn    string
	StressThreshold float64

	TestSize   float64
	Seed       uint64
	Params     booster.Params
	Importance booster.ImportanceType

	CorrMethod correlation.Method
	CorrFormat correlation.Format
	TopPairs   int

	PlotFormat string
	Plot       plotting.Options
	NoPlots    bool

	Load dataset.LoadOptions

	// Combine models the concatenation of all rates of a fuel instead of each file.
	Combine bool
	// AutoFeatures uses every numeric column except positions and targets.
	AutoFeatures bool
}

// FromConfig maps loaded configuration onto run settings.
func FromConfig(c *config.Global) (Settings, error) {
	imp, err := booster.ParseImportanceType(c.ImportanceType)
	if err != nil {
		return Settings{}, err
	}
	method, err := correlation.ParseMethod(c.CorrMethod)
	if err != nil {
		return Settings{}, err
	}
	format, err := correlation.ParseFormat(c.CorrFormat)
	if err != nil {
		return Settings{}, err
	}
	plotFormat, err := plotting.ParseFormat(c.PlotFormat)
	if err != nil {
		return Settings{}, err
	}
	params := booster.DefaultParams()
	params.NEstimators = c.NEstimators
	params.MaxDepth = c.MaxDepth
	params.LearningRate = c.LearningRate
	params.Lambda = c.RegLambda
	params.NumLeaves = c.NumLeaves
	params.MinChildSamples = c.MinChildSamples
	params.Subsample = c.Subsample
	params.ColsampleByTree = c.ColsampleTree
	params.Seed = c.Seed

	return Settings{
		DataDir:         c.DataDir,
		OutputDir:       c.OutputDir,
		FilePattern:     c.FilePattern,
		Fuels:           append([]string(nil), c.Fuels...),
		Rates:           append([]int(nil), c.InjectionRates...),
		InputColumns:    append([]string(nil), c.InputColumns...),
		PositionColumns: append([]string(nil), c.PositionColumns...),
		StrainColumn:    c.StrainColumn,
		StressColumn:    c.StressColumn,
		StressThreshold: c.StressThreshold,
		TestSize:        c.TestSize,
		Seed:            c.Seed,
		Params:          params,
		Importance:      imp,
		CorrMethod:      method,
		CorrFormat:      format,
		TopPairs:        5,
		PlotFormat:      plotFormat,
		Plot: plotting.Options{
			WidthIn:  c.PlotWidthIn,
			HeightIn: c.PlotHeightIn,
			Annotate: true,
		},
		Load: dataset.DefaultLoadOptions(),
	}, nil
}

func (s Settings) targets() []string {
	return []string{s.StrainColumn, s.StressColumn}
}

func (s Settings) validate() error {
	switch {
	case s.StrainColumn == "" || s.StressColumn == "":
		return fmt.Errorf("strain and stress columns must be set")
	case s.StrainColumn == s.StressColumn:
		return fmt.Errorf("strain and stress columns must differ, both are %q", s.StressColumn)
	case !s.AutoFeatures && len(s.InputColumns) == 0:
		return fmt.Errorf("no input columns configured")
	}
	return nil
}
