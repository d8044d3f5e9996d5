package analysis

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/tuyere-cli/internal/dataset"
)

var csvRows = []string{
	"X,CO,H2,Velocity (m/s),Label,Strain,Stress",
	"0,0.5,0.1,40,a,0.001,900",
	"1,0.6,0.2,41,b,0.002,1100",
	"2,0.55,,42,c,0.0015,1000",
	"3,0.7,0.25,40,d,0.003,1300",
	"4,0.65,0.3,41,e,0.0025,1250",
	"5,0.68,0.35,42,f,0.0028,1280",
	"6,9.0,0.4,40,g,0.004,1500",
}

func writeCSV(t *testing.T, dir, name string, rows []string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(strings.Join(rows, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func findCol(t *testing.T, rep *Report, name string) ColumnSummary {
	t.Helper()
	for _, c := range rep.Cols {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("column %s not in report", name)
	return ColumnSummary{}
}

func TestDescribeAndMarkdown(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "COG_100.csv", csvRows)
	tbl, err := dataset.LoadFile(path, dataset.DefaultLoadOptions())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	rep, err := Describe(tbl, DefaultOptions())
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if rep.Rows != 7 || len(rep.Cols) != 7 {
		t.Fatalf("unexpected shape: rows=%d cols=%d", rep.Rows, len(rep.Cols))
	}

	h2 := findCol(t, rep, "H2")
	if h2.Kind != "numeric" || h2.Missing != 1 || h2.NonNull != 6 {
		t.Fatalf("H2 summary: %+v", h2)
	}
	if math.Abs(h2.Min-0.1) > 1e-12 || math.Abs(h2.Max-0.4) > 1e-12 {
		t.Fatalf("H2 min/max: %v %v", h2.Min, h2.Max)
	}

	co := findCol(t, rep, "CO")
	if co.OutliersCount != 1 {
		t.Fatalf("expected the 9.0 CO value to be an outlier, got %d", co.OutliersCount)
	}

	vel := findCol(t, rep, "Velocity (m/s)")
	if vel.Unit != "m/s" {
		t.Fatalf("unit: %q", vel.Unit)
	}

	label := findCol(t, rep, "Label")
	if label.Kind != "text" || len(label.ExampleTexts) != 3 {
		t.Fatalf("label summary: %+v", label)
	}
	if len(rep.Samples) != 5 {
		t.Fatalf("samples: %d", len(rep.Samples))
	}
	if len(rep.Pairs) == 0 {
		t.Fatalf("expected correlation pairs")
	}

	md := rep.Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: COG_100.csv",
		"- H2: numeric (non-null 6, missing 14.3%)",
		"- Velocity [m/s]: numeric",
		"- Label: text",
		"[CORRELATIONS]",
		"[HEAD AND SAMPLE ROWS]",
		"| X | CO | H2 |",
		"Label is not numeric",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
	if strings.Contains(md, "[PER-FILE SUMMARY]") {
		t.Errorf("single-file report should not group by source")
	}
}

func TestDescribeGroupsBySource(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "H2_100.csv", csvRows[:4])
	writeCSV(t, dir, "H2_125.csv", append([]string{csvRows[0]}, csvRows[4:]...))
	tbl, missing, err := dataset.LoadFuel(dir, "{fuel}_{rate}.csv", "H2", []int{100, 125, 150}, dataset.DefaultLoadOptions())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(missing) != 1 {
		t.Fatalf("missing: %v", missing)
	}

	opt := DefaultOptions()
	opt.Correlations = false
	rep, err := Describe(tbl, opt)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if len(rep.Groups) != 2 {
		t.Fatalf("groups: %d", len(rep.Groups))
	}
	g := rep.Groups[1]
	if g.Size != 4 {
		t.Fatalf("second group size: %d", g.Size)
	}
	stress := g.Metrics["Stress"]
	if stress.Count != 4 || stress.Min != 1250 || stress.Max != 1500 {
		t.Fatalf("stress metrics: %+v", stress)
	}
	if len(rep.Pairs) != 0 {
		t.Fatalf("correlations disabled but got %d pairs", len(rep.Pairs))
	}
	if !strings.Contains(rep.Markdown(), "[PER-FILE SUMMARY]") {
		t.Fatalf("expected per-file section")
	}
}

func TestMedianMAD(t *testing.T) {
	med, mad := medianMAD([]float64{1, 2, 3, 4, 100})
	if med != 3 || mad != 1 {
		t.Fatalf("median=%v mad=%v", med, mad)
	}
	if m := sortedMedian([]float64{0, 4, 6, 10}); m != 5 {
		t.Fatalf("even-length median: %v", m)
	}
	if m := sortedMedian([]float64{7}); m != 7 {
		t.Fatalf("single-value median: %v", m)
	}
	if med, mad := medianMAD([]float64{10, 1, 4, 6}); med != 5 || mad != 2.5 {
		t.Fatalf("unsorted input: median=%v mad=%v", med, mad)
	}
	if n, _ := robustOutliers([]float64{5, 5, 5}, 3.5); n != 0 {
		t.Fatalf("constant values have no outliers")
	}
}

func TestSplitUnits(t *testing.T) {
	cases := map[string][2]string{
		"Stress (MPa)":   {"Stress", "MPa"},
		"Velocity [m/s]": {"Velocity", "m/s"},
		"Temperature_K":  {"Temperature", "K"},
		"Static_Enth":    {"Static_Enth", ""},
	}
	for in, want := range cases {
		clean, unit := splitUnits(in)
		if clean != want[0] || unit != want[1] {
			t.Errorf("splitUnits(%q) = %q, %q", in, clean, unit)
		}
	}
}
