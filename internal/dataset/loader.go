package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// FileName renders the fuel/injection-rate naming convention, e.g.
// FileName("{fuel}_{rate}.csv", "RCOG", 125) == "RCOG_125.csv".
func FileName(pattern, fuel string, rate int) string {
	return strings.NewReplacer("{fuel}", fuel, "{rate}", strconv.Itoa(rate)).Replace(pattern)
}

var fileNameRE = regexp.MustCompile(`^(.+)_(\d+)$`)

// ParseFileName recovers fuel and injection rate from a conventional file name.
func ParseFileName(path string) (fuel string, rate int, ok bool) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	m := fileNameRE.FindStringSubmatch(base)
	if m == nil {
		return "", 0, false
	}
	r, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], r, true
}

// LoadFile reads one table. A missing file yields an error wrapping os.ErrNotExist.
func LoadFile(path string, opt LoadOptions) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	header, rows, err := readerFor(path).Read(path, opt)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	records := make([][]string, 0, len(rows)+1)
	if header != nil {
		records = append(records, header)
		records = append(records, rows...)
	}
	t := FromRecords(filepath.Base(path), records, opt)
	src := Source{Path: path, Rows: t.Len()}
	if _, rate, ok := ParseFileName(path); ok {
		src.Rate = rate
	}
	t.Sources = []Source{src}
	return t, nil
}

// LoadFuel loads every existing file for fuel across rates and concatenates
// the rows. Files that do not exist are skipped and returned in missing; when
// none exist the result is an empty table.
func LoadFuel(dir, pattern, fuel string, rates []int, opt LoadOptions) (t *Table, missing []string, err error) {
	var parts []*Table
	for _, rate := range rates {
		path := filepath.Join(dir, FileName(pattern, fuel, rate))
		part, err := LoadFile(path, opt)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				missing = append(missing, path)
				continue
			}
			return nil, missing, err
		}
		parts = append(parts, part)
	}
	return Concat(fuel, parts...), missing, nil
}
