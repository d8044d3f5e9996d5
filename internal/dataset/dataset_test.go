package dataset

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestFileNameAndParse(t *testing.T) {
	assert.Equal(t, "RCOG_125.csv", FileName("{fuel}_{rate}.csv", "RCOG", 125))
	assert.Equal(t, "runs/H2-200.xlsx", FileName("runs/{fuel}-{rate}.xlsx", "H2", 200))

	fuel, rate, ok := ParseFileName("/data/NormalBlast_175.csv")
	require.True(t, ok)
	assert.Equal(t, "NormalBlast", fuel)
	assert.Equal(t, 175, rate)

	_, _, ok = ParseFileName("notes.csv")
	assert.False(t, ok)
}

func TestLoadFileInfersNumericColumns(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "COG_100.csv",
		"X,Y,CO,Velocity,Label,Stress",
		"0.1,0.2,0.5,12,a,1500",
		"0.3,0.4,,13,b,900",
		"0.5,0.6,0.7,NaN,c,2000",
	)

	tbl, err := LoadFile(path, DefaultLoadOptions())
	require.NoError(t, err)
	assert.Equal(t, "COG_100.csv", tbl.Name)
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, []string{"X", "Y", "CO", "Velocity", "Label", "Stress"}, tbl.Columns())
	assert.Equal(t, []string{"X", "Y", "CO", "Velocity", "Stress"}, tbl.NumericColumns())
	require.Len(t, tbl.Sources, 1)
	assert.Equal(t, 100, tbl.Sources[0].Rate)
	assert.Equal(t, 3, tbl.Sources[0].Rows)

	co, err := tbl.Float("CO")
	require.NoError(t, err)
	assert.Equal(t, 0.5, co[0])
	assert.True(t, math.IsNaN(co[1]))

	_, err = tbl.Float("Label")
	assert.True(t, errors.Is(err, ErrNotNumeric))
	_, err = tbl.Float("Strain")
	assert.True(t, errors.Is(err, ErrColumnNotFound))
}

func TestLoadFileMissingWrapsNotExist(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "H2_100.csv"), DefaultLoadOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadFileLocaleAndDelimiter(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "H2_150.tsv",
		"CO\tStress",
		"0,5\t1.250,5",
		"0,25\t2.000,0",
	)
	opt := LoadOptions{DecimalSeparator: ',', ThousandsSeparator: '.'}
	tbl, err := LoadFile(path, opt)
	require.NoError(t, err)

	stress, err := tbl.Float("Stress")
	require.NoError(t, err)
	assert.Equal(t, []float64{1250.5, 2000}, stress)
}

func TestLoadFileMaxRowsAndDuplicateHeaders(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dup.csv",
		"A,A,,B",
		"1,2,3,4",
		"",
		"5,6,7,8",
		"9,10,11,12",
	)
	tbl, err := LoadFile(path, LoadOptions{MaxRows: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "A.1", "Unnamed: 2", "B"}, tbl.Columns())
	assert.Equal(t, 2, tbl.Len())
}

func TestLoadFileXLSX(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "RCOG_150.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"CO", "Stress", "Note"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{0.25, 1200, "ok"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{0.5, 800, "low"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := LoadFile(path, DefaultLoadOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"CO", "Stress"}, tbl.NumericColumns())
	stress, err := tbl.Float("Stress")
	require.NoError(t, err)
	assert.Equal(t, []float64{1200, 800}, stress)

	_, err = LoadFile(path, LoadOptions{Sheet: "Results"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Available sheets: Sheet1")
}

func TestLoadFuelConcatenatesAndReportsMissing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "RCOG_100.csv", "CO,Stress", "0.1,1100", "0.2,1200")
	writeFile(t, dir, "RCOG_150.csv", "CO,Stress,Extra", "0.3,1300,x")

	tbl, missing, err := LoadFuel(dir, "{fuel}_{rate}.csv", "RCOG", []int{100, 125, 150}, DefaultLoadOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "RCOG_125.csv")}, missing)
	assert.Equal(t, "RCOG", tbl.Name)
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, []string{"CO", "Stress", "Extra"}, tbl.Columns())
	require.Len(t, tbl.Sources, 2)
	assert.Equal(t, 150, tbl.Sources[1].Rate)

	extra, ok := tbl.Column("Extra")
	require.True(t, ok)
	assert.False(t, extra.Numeric)
	assert.Equal(t, []string{"", "", "x"}, extra.Raw)

	stress, err := tbl.Float("Stress")
	require.NoError(t, err)
	assert.Equal(t, []float64{1100, 1200, 1300}, stress)
}

func TestLoadFuelNothingFound(t *testing.T) {
	tbl, missing, err := LoadFuel(t.TempDir(), "{fuel}_{rate}.csv", "H2", []int{100, 200}, DefaultLoadOptions())
	require.NoError(t, err)
	assert.True(t, tbl.Empty())
	assert.Len(t, missing, 2)
}

func TestConcatKeepsNumericWhenAllInputsNumeric(t *testing.T) {
	a := FromRecords("a", [][]string{{"CO", "Stress"}, {"1", "2"}}, DefaultLoadOptions())
	b := FromRecords("b", [][]string{{"Stress"}, {"3"}}, DefaultLoadOptions())

	out := Concat("ab", a, nil, b)
	assert.Equal(t, 2, out.Len())
	co, err := out.Float("CO")
	require.NoError(t, err)
	assert.Equal(t, 1.0, co[0])
	assert.True(t, math.IsNaN(co[1]))
}

func TestCleaningPipeline(t *testing.T) {
	tbl := FromRecords("t", [][]string{
		{"X", "CO", "Velocity", "Strain", "Stress"},
		{"0", "0.1", "10", "0.01", "1500"},
		{"1", "bad", "11", "0.02", "1600"},
		{"2", "0.3", "12", "0.03", ""},
		{"3", "0.4", "13", "0.04", "900"},
	}, DefaultLoadOptions())

	co, _ := tbl.Column("CO")
	assert.False(t, co.Numeric)

	require.NoError(t, tbl.CoerceNumeric("CO", "Velocity"))
	assert.True(t, co.Numeric)
	assert.True(t, math.IsNaN(co.Values[1]))

	err := tbl.CoerceNumeric("CO", "Heat_of_Het")
	assert.True(t, errors.Is(err, ErrColumnNotFound))

	dropped := tbl.DropMissing()
	assert.Equal(t, 2, dropped)
	assert.Equal(t, 2, tbl.Len())

	tbl.DropColumns("X", "Y", "Z")
	assert.Equal(t, []string{"CO", "Velocity", "Strain", "Stress"}, tbl.Columns())

	high, err := tbl.FilterAbove("Stress", 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, high.Len())
	assert.Equal(t, 2, tbl.Len(), "filter must not mutate the source table")

	stress, err := high.Float("Stress")
	require.NoError(t, err)
	assert.Equal(t, []float64{1500}, stress)
}

func TestFilterAboveRejectsTextColumn(t *testing.T) {
	tbl := FromRecords("t", [][]string{{"Stress"}, {"high"}}, DefaultLoadOptions())
	_, err := tbl.FilterAbove("Stress", 1000)
	assert.True(t, errors.Is(err, ErrNotNumeric))
}

func TestMatrixAndSelect(t *testing.T) {
	tbl := FromRecords("t", [][]string{
		{"A", "B", "C"},
		{"1", "2", "3"},
		{"4", "5", "6"},
	}, DefaultLoadOptions())

	m, err := tbl.Matrix([]string{"C", "A"})
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 3.0, m.At(0, 0))
	assert.Equal(t, 4.0, m.At(1, 1))

	sel, err := tbl.Select("B")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, sel.Columns())

	_, err = tbl.Select("Z")
	assert.True(t, errors.Is(err, ErrColumnNotFound))
}
