package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/tuyere-cli/internal/dataset"
)

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd is a helper to execute the root command with args and return stdout.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := tryCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

func tryCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// Reset sticky flags that may persist Changed state across invocations
	resetFlags(rootCmd)
	regLocale.reset()
	corLocale.reset()
	descLocale.reset()
	cfg = nil

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// isolate points HOME at a temp dir so no user config leaks in.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeRun(t *testing.T, dir, name string, n int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("X,Y,Z,CO,CO2,H2,H2O,Heat_of_Het,Het1,Het2,Het3,N2,O2,RR2,RR3,Static_Enth,Velocity,Strain,Stress\n")
	for i := 0; i < n; i++ {
		f := float64(i)
		fmt.Fprintf(&b, "%d,%d,%d,%g,%g,%g,%g,%g,%g,%g,%g,%g,%g,%g,%g,%g,%g,%g,%g\n",
			i, i%5, i%7,
			0.2+0.01*f, 0.1+0.002*float64(i%9), 0.05*float64(i%4), 0.03, 100+f, 1.0, 2.0, 3.0,
			0.6, 0.21-0.001*f, 0.5, 0.25, 1e5+10*f, 30+float64(i%6),
			0.0005*f, 400+80*f)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestCLI_RegressPerFile(t *testing.T) {
	isolate(t)
	data, out := t.TempDir(), t.TempDir()
	writeRun(t, data, "RCOG_100.csv", 30)
	writeRun(t, data, "RCOG_125.csv", 30)

	stdout := runCmd(t, "regress", "--data-dir", data, "--out-dir", out,
		"--fuel", "RCOG", "--rate", "100,125,150", "--rounds", "10")

	for _, want := range []string{
		"Analyzing RCOG at injection rate 100",
		filepath.Join(data, "RCOG_100.csv") + " - Mean Squared Error for Strain: ",
		filepath.Join(data, "RCOG_125.csv") + " - Mean Squared Error for Stress: ",
		"File not found: " + filepath.Join(data, "RCOG_150.csv"),
		"✓ Wrote summary to " + filepath.Join(out, "summary-regress.yaml"),
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q\n%s", want, stdout)
		}
	}
	for _, name := range []string{"RCOG_100_strain_importance.png", "RCOG_125_stress_importance.png", "summary-regress.yaml"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}

func TestWriteRunCellsAreNumeric(t *testing.T) {
	path := writeRun(t, t.TempDir(), "COG_100.csv", 12)
	tbl, err := dataset.LoadFile(path, dataset.DefaultLoadOptions())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got, want := len(tbl.NumericColumns()), len(tbl.Columns()); got != want {
		t.Fatalf("numeric columns = %d, want %d: %v", got, want, tbl.NumericColumns())
	}
	if dropped := tbl.DropMissing(); dropped != 0 || tbl.Len() != 12 {
		t.Fatalf("dropped %d rows, kept %d", dropped, tbl.Len())
	}
}

func TestCLI_RegressNothingFound(t *testing.T) {
	isolate(t)
	_, err := tryCmd(t, "regress", "--data-dir", t.TempDir(), "--out-dir", t.TempDir(), "--fuel", "COG", "--rate", "100")
	if err == nil || !strings.Contains(err.Error(), "no dataset could be processed") {
		t.Fatalf("expected nothing-processed error, got %v", err)
	}
}

func TestCLI_CorrelateAndHeatmap(t *testing.T) {
	isolate(t)
	data, out := t.TempDir(), t.TempDir()
	writeRun(t, data, "H2_100.csv", 25)
	writeRun(t, data, "H2_200.csv", 25)

	stdout := runCmd(t, "correlate", "--data-dir", data, "--out-dir", out, "--fuel", "H2,COG", "--top", "2")
	matrix := filepath.Join(out, "H2_correlation_matrix_stress_above_1000_MPa.csv")
	if !strings.Contains(stdout, "Saved correlation matrix to "+matrix) {
		t.Fatalf("unexpected output:\n%s", stdout)
	}
	if !strings.Contains(stdout, "File not found: "+filepath.Join(data, "COG_100.csv")) {
		t.Errorf("missing COG files should be reported:\n%s", stdout)
	}
	body, err := os.ReadFile(matrix)
	if err != nil {
		t.Fatalf("read matrix: %v", err)
	}
	header := strings.SplitN(string(body), "\n", 2)[0]
	if !strings.HasPrefix(header, ",CO,CO2,H2,") || strings.Contains(header, "Strain") || strings.Contains(header, ",X,") {
		t.Fatalf("unexpected header: %s", header)
	}
	if _, err := os.Stat(filepath.Join(out, "H2_correlation_heatmap_stress_above_1000_MPa.png")); err != nil {
		t.Errorf("heatmap missing: %v", err)
	}

	svg := filepath.Join(out, "again.svg")
	stdout = runCmd(t, "heatmap", matrix, "-o", svg, "--title", "H2 high stress")
	if !strings.Contains(stdout, "✓ Wrote "+svg) {
		t.Fatalf("unexpected heatmap output: %s", stdout)
	}
	if _, err := os.Stat(svg); err != nil {
		t.Fatalf("svg missing: %v", err)
	}

	if _, err := tryCmd(t, "heatmap", filepath.Join(out, "nope.csv")); err == nil {
		t.Fatalf("expected error for missing matrix")
	}
}

func TestCLI_CorrelateXLSXSpearman(t *testing.T) {
	isolate(t)
	data, out := t.TempDir(), t.TempDir()
	writeRun(t, data, "COG_150.csv", 20)
	runCmd(t, "correlate", "--data-dir", data, "--out-dir", out, "--fuel", "COG",
		"--method", "spearman", "--format", "xlsx", "--threshold", "500", "--no-plots")
	if _, err := os.Stat(filepath.Join(out, "COG_correlation_matrix_stress_above_500_MPa.xlsx")); err != nil {
		t.Fatalf("xlsx matrix missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "COG_correlation_heatmap_stress_above_500_MPa.png")); err == nil {
		t.Fatalf("--no-plots should skip the heatmap")
	}
}

func TestCLI_Describe(t *testing.T) {
	isolate(t)
	data := t.TempDir()
	p1 := writeRun(t, data, "COG_100.csv", 12)
	writeRun(t, data, "COG_125.csv", 8)

	stdout := runCmd(t, "describe", p1, "--sample-rows", "2")
	for _, want := range []string{"[DATASET SUMMARY]", "File: COG_100.csv", "Rows: 12", "- Stress: numeric", "[HEAD AND SAMPLE ROWS]"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("describe output missing %q\n%s", want, stdout)
		}
	}

	outPath := filepath.Join(t.TempDir(), "summary.md")
	stdout = runCmd(t, "describe", filepath.Join(data, "COG_*.csv"), "-o", outPath, "--corr=false")
	if !strings.Contains(stdout, "✓ Wrote summary to "+outPath) {
		t.Fatalf("unexpected output: %s", stdout)
	}
	body, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	md := string(body)
	if !strings.Contains(md, "Rows: 20") || !strings.Contains(md, "[PER-FILE SUMMARY]") {
		t.Fatalf("combined summary incomplete:\n%s", md)
	}
	if strings.Contains(md, "[CORRELATIONS]") {
		t.Fatalf("--corr=false should omit correlations")
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home := isolate(t)
	runCmd(t, "config", "set", "stress_threshold", "1500")
	runCmd(t, "config", "set", "fuels", "COG, H2")
	runCmd(t, "config", "set", "injection_rates", "100,200")

	if _, err := os.Stat(filepath.Join(home, ".tuyere", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	stdout := runCmd(t, "config", "show")
	for _, want := range []string{"stress_threshold: 1500", "- COG", "- H2", "- 200"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("config show missing %q\n%s", want, stdout)
		}
	}

	if _, err := tryCmd(t, "config", "set", "test_size", "2"); err == nil {
		t.Fatalf("expected validation error for test_size")
	}
	if _, err := tryCmd(t, "config", "set", "bogus", "1"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestExpandFiles(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"b.csv", "a.csv"} {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	files, err := expandFiles([]string{filepath.Join(dir, "*.csv"), filepath.Join(dir, "a.csv"), "missing.csv"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv"), "missing.csv"}
	if strings.Join(files, "|") != strings.Join(want, "|") {
		t.Fatalf("files = %v, want %v", files, want)
	}
}

func TestLocaleOptions(t *testing.T) {
	l := localeFlags{decimal: "comma", thousands: "."}
	opt, err := l.options()
	if err != nil {
		t.Fatal(err)
	}
	if opt.DecimalSeparator != ',' || opt.ThousandsSeparator != '.' {
		t.Fatalf("unexpected options: %+v", opt)
	}
	if _, err := (&localeFlags{decimal: ",", thousands: ","}).options(); err == nil {
		t.Fatalf("expected error when separators collide")
	}
	if _, err := (&localeFlags{delimiter: "|"}).options(); err == nil {
		t.Fatalf("expected error for unsupported delimiter")
	}
}
