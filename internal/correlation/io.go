package correlation

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/tuyere-cli/internal/utils"
)

// Format is an on-disk matrix layout.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts csv or xlsx. Empty means csv.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unknown matrix format %q (want csv or xlsx)", s)
	}
}

// FileName names the matrix file for one fuel and stress threshold.
func FileName(fuel string, threshold float64, f Format) string {
	if f == "" {
		f = FormatCSV
	}
	thr := strconv.FormatFloat(threshold, 'f', -1, 64)
	return fmt.Sprintf("%s_correlation_matrix_stress_above_%s_MPa.%s", fuel, thr, f)
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes the matrix with column names as the header row and as the
// first cell of each row. The top-left cell is empty and undefined
// coefficients are empty cells.
func (m *Matrix) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := append([]string{""}, m.Columns...)
	if err := cw.Write(header); err != nil {
		return err
	}
	rec := make([]string, len(m.Columns)+1)
	for i, name := range m.Columns {
		rec[0] = name
		for j := range m.Columns {
			rec[j+1] = formatValue(m.Values[i][j])
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a matrix written by WriteCSV.
func ReadCSV(r io.Reader) (*Matrix, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read matrix: %w", err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("read matrix: empty file")
	}
	cols := records[0][1:]
	if len(records)-1 != len(cols) {
		return nil, fmt.Errorf("read matrix: %d columns but %d rows", len(cols), len(records)-1)
	}
	m := &Matrix{Columns: append([]string(nil), cols...), Values: make([][]float64, len(cols))}
	for i, rec := range records[1:] {
		if len(rec) != len(cols)+1 {
			return nil, fmt.Errorf("read matrix: row %d has %d cells, want %d", i+1, len(rec), len(cols)+1)
		}
		if strings.TrimSpace(rec[0]) != cols[i] {
			return nil, fmt.Errorf("read matrix: row %d is %q, want %q", i+1, rec[0], cols[i])
		}
		row := make([]float64, len(cols))
		for j, s := range rec[1:] {
			s = strings.TrimSpace(s)
			if s == "" {
				row[j] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("read matrix: row %d column %q: %w", i+1, cols[j], err)
			}
			row[j] = v
		}
		m.Values[i] = row
	}
	return m, nil
}

// ReadFile loads a matrix from a CSV file.
func ReadFile(path string) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

const xlsxSheet = "correlation"

// WriteXLSX saves the matrix as a workbook with the same layout as WriteCSV.
func (m *Matrix) WriteXLSX(path string) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return err
	}
	header := make([]interface{}, len(m.Columns)+1)
	header[0] = ""
	for j, c := range m.Columns {
		header[j+1] = c
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return err
	}
	for i, name := range m.Columns {
		row := make([]interface{}, len(m.Columns)+1)
		row[0] = name
		for j := range m.Columns {
			if v := m.Values[i][j]; !math.IsNaN(v) {
				row[j+1] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return err
		}
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return f.SaveAs(path)
}

// Save writes the matrix to path in the given format.
func (m *Matrix) Save(path string, f Format) error {
	switch f {
	case FormatXLSX:
		return m.WriteXLSX(path)
	case FormatCSV, "":
		var b strings.Builder
		if err := m.WriteCSV(&b); err != nil {
			return err
		}
		return utils.SafeWriteFile(path, []byte(b.String()))
	default:
		return fmt.Errorf("unknown matrix format %q", f)
	}
}
