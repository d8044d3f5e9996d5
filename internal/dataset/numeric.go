package dataset

import (
	"math"
	"strconv"
	"strings"
)

// LoadOptions controls how files are read and cells are parsed.
type LoadOptions struct {
	// Delimiter for CSV. If 0, chosen from the file extension ('\t' for .tsv, else ',').
	Delimiter rune
	// DecimalSeparator defaults to '.'.
	DecimalSeparator rune
	// ThousandsSeparator is stripped before parsing when set; 0 means none.
	ThousandsSeparator rune
	// Sheet selects the XLSX worksheet; empty means the first sheet.
	Sheet string
	// MaxRows limits data rows read per file; 0 means unlimited.
	MaxRows int
}

// DefaultLoadOptions returns options for plain dot-decimal CSV files.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{DecimalSeparator: '.'}
}

var missingMarkers = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"-nan": {},
	"null": {},
	"NULL": {},
	"#N/A": {},
	"None": {},
}

func isMissing(s string) bool {
	_, ok := missingMarkers[strings.TrimSpace(s)]
	return ok
}

// parseCell returns NaN for missing markers and reports false when the cell
// holds text that is not a number.
func parseCell(s string, opt LoadOptions) (float64, bool) {
	if isMissing(s) {
		return math.NaN(), true
	}
	return parseNumeric(s, opt)
}

func parseNumeric(s string, opt LoadOptions) (float64, bool) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00A0", " "))
	dec := opt.DecimalSeparator
	if dec == 0 {
		dec = '.'
	}
	if thou := opt.ThousandsSeparator; thou != 0 && thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		if strings.Contains(raw, ".") {
			return 0, false
		}
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	// Go literal syntax is wider than a data file's; reject what a CSV reader would not take
	if strings.ContainsAny(raw, "_xXpP") {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
