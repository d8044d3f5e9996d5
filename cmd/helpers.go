package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/tuyere-cli/internal/dataset"
	"github.com/spf13/cobra"
)

// localeFlags are the file-reading flags shared by the data commands.
type localeFlags struct {
	delimiter string
	decimal   string
	thousands string
	sheet     string
	maxRows   int
}

func (l *localeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&l.delimiter, "delimiter", "", "CSV delimiter: ','|';'|'tab' (default from extension)")
	cmd.Flags().StringVar(&l.decimal, "decimal", "", "decimal separator: '.'|'comma'")
	cmd.Flags().StringVar(&l.thousands, "thousands", "", "thousands separator: ','|'.'|'space'")
	cmd.Flags().StringVar(&l.sheet, "sheet", "", "XLSX sheet name (default first sheet)")
	cmd.Flags().IntVar(&l.maxRows, "max-rows", 0, "limit rows read per file (0 = all)")
}

func (l *localeFlags) reset() {
	*l = localeFlags{}
}

func (l *localeFlags) options() (dataset.LoadOptions, error) {
	opt := dataset.DefaultLoadOptions()
	opt.Sheet = l.sheet
	opt.MaxRows = l.maxRows
	switch l.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", l.delimiter)
	}
	switch strings.ToLower(strings.TrimSpace(l.decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot", "":
		opt.DecimalSeparator = '.'
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", l.decimal)
	}
	switch strings.ToLower(l.thousands) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", l.thousands)
	}
	if opt.ThousandsSeparator == opt.DecimalSeparator {
		return opt, fmt.Errorf("--decimal and --thousands must differ")
	}
	return opt, nil
}

// expandFiles resolves glob patterns and literal paths, dropping duplicates.
func expandFiles(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// keep literal paths so missing files are reported per file
			matches = []string{arg}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
