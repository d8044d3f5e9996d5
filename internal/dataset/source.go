package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Reader reads the header and data rows of one tabular file.
type Reader interface {
	CanRead(path string) bool
	Read(path string, opt LoadOptions) (header []string, rows [][]string, err error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

// readerFor selects a reader by file name, falling back to CSV.
func readerFor(path string) Reader {
	for _, r := range registry {
		if r.CanRead(path) {
			return r
		}
	}
	return csvReader{}
}

func init() {
	Register(xlsxReader{})
	Register(csvReader{})
}

type csvReader struct{}

func (csvReader) CanRead(path string) bool {
	name := strings.ToLower(path)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".txt")
}

func (csvReader) Read(path string, opt LoadOptions) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = opt.Delimiter
	if r.Comma == 0 {
		r.Comma = sniffDelimiter(path)
	}

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	header = append([]string(nil), header...)
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	var rows [][]string
	for line := 1; ; line++ {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("read row %d: %w", line, err)
		}
		if isBlankRecord(rec) {
			continue
		}
		rows = append(rows, rec)
		if opt.MaxRows > 0 && len(rows) >= opt.MaxRows {
			break
		}
	}
	return header, rows, nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

func isBlankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

type xlsxReader struct{}

func (xlsxReader) CanRead(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".xlsx")
}

func (xlsxReader) Read(path string, opt LoadOptions) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook %s has no sheets", filepath.Base(path))
	}
	sheet := sheets[0]
	if opt.Sheet != "" {
		sheet = ""
		for _, s := range sheets {
			if strings.EqualFold(s, opt.Sheet) {
				sheet = s
				break
			}
		}
		if sheet == "" {
			return nil, nil, fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
				opt.Sheet, filepath.Base(path), strings.Join(sheets, ", "))
		}
	}

	all, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(all) == 0 {
		return nil, nil, nil
	}
	var rows [][]string
	for _, rec := range all[1:] {
		if isBlankRecord(rec) {
			continue
		}
		rows = append(rows, rec)
		if opt.MaxRows > 0 && len(rows) >= opt.MaxRows {
			break
		}
	}
	return all[0], rows, nil
}
