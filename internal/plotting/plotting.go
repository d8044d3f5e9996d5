// Package plotting renders feature-importance bar charts and correlation
// heatmaps to image files.
package plotting

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/KaramelBytes/tuyere-cli/internal/booster"
	"github.com/KaramelBytes/tuyere-cli/internal/correlation"
	"github.com/KaramelBytes/tuyere-cli/internal/utils"
)

// Options sizes the output image.
type Options struct {
	WidthIn  float64
	HeightIn float64
	// Annotate prints values on bars and heatmap cells.
	Annotate bool
}

// DefaultOptions matches a 12x10 inch figure with annotations.
func DefaultOptions() Options {
	return Options{WidthIn: 12, HeightIn: 10, Annotate: true}
}

var formats = map[string]bool{"png": true, "svg": true, "pdf": true, "eps": true, "jpg": true, "jpeg": true, "tif": true, "tiff": true}

// ParseFormat checks that an image format can be rendered.
func ParseFormat(s string) (string, error) {
	f := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	if f == "" {
		return "png", nil
	}
	if !formats[f] {
		return "", fmt.Errorf("unsupported plot format %q", s)
	}
	return f, nil
}

func formatOf(path string) (string, error) {
	return ParseFormat(filepath.Ext(path))
}

func (o Options) size() (vg.Length, vg.Length) {
	w, h := o.WidthIn, o.HeightIn
	if w <= 0 {
		w = 12
	}
	if h <= 0 {
		h = 10
	}
	return vg.Length(w) * vg.Inch, vg.Length(h) * vg.Inch
}

// FeatureImportance draws a horizontal bar per score with the most important
// feature on top, and writes it to path. The extension picks the format.
func FeatureImportance(scores []booster.Score, title, path string, opt Options) error {
	if len(scores) == 0 {
		return fmt.Errorf("no importance scores to plot for %q", title)
	}
	if _, err := formatOf(path); err != nil {
		return err
	}
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "F score"
	p.Y.Label.Text = "Features"

	n := len(scores)
	values := make(plotter.Values, n)
	names := make([]string, n)
	for i, s := range scores {
		values[n-1-i] = s.Value
		names[n-1-i] = s.Feature
	}
	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return fmt.Errorf("bar chart: %w", err)
	}
	bars.Horizontal = true
	bars.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalY(names...)
	p.X.Min = 0

	if opt.Annotate {
		xys := make(plotter.XYs, n)
		labels := make([]string, n)
		for i, v := range values {
			xys[i] = plotter.XY{X: v, Y: float64(i)}
			labels[i] = strconv.FormatFloat(v, 'g', 4, 64)
		}
		l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
		if err != nil {
			return fmt.Errorf("bar labels: %w", err)
		}
		for i := range l.TextStyle {
			l.TextStyle[i].YAlign = draw.YCenter
		}
		l.Offset = vg.Point{X: vg.Points(4)}
		p.Add(l)
		// leave room for the value labels
		top := 0.0
		for _, v := range values {
			top = max(top, v)
		}
		p.X.Max = top * 1.15
	}

	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	w, h := opt.size()
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// grid adapts a correlation matrix to plotter.GridXYZ with the first column
// at the top of the plot.
type grid struct {
	m *correlation.Matrix
}

func (g grid) Dims() (c, r int) {
	n := len(g.m.Columns)
	return n, n
}

func (g grid) Z(c, r int) float64 { return g.m.Values[len(g.m.Columns)-1-r][c] }
func (g grid) X(c int) float64    { return float64(c) }
func (g grid) Y(r int) float64    { return float64(r) }

// Heatmap draws the matrix on a diverging blue-red scale fixed to [-1, 1]
// with a color bar, and writes it to path. Undefined cells are grey.
func Heatmap(m *correlation.Matrix, title, path string, opt Options) error {
	n := len(m.Columns)
	if n < 2 {
		return fmt.Errorf("heatmap needs at least two columns, got %d", n)
	}
	format, err := formatOf(path)
	if err != nil {
		return err
	}

	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)

	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	hm := plotter.NewHeatMap(grid{m: m}, cm.Palette(255))
	hm.Min, hm.Max = -1, 1
	hm.NaN = color.Gray{Y: 200}
	p.Add(hm)

	ynames := make([]string, n)
	for i, c := range m.Columns {
		ynames[n-1-i] = c
	}
	p.NominalX(m.Columns...)
	p.NominalY(ynames...)
	p.X.Tick.Label.Rotation = 0.8
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	if opt.Annotate {
		xys := make(plotter.XYs, 0, n*n)
		labels := make([]string, 0, n*n)
		g := grid{m: m}
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				v := g.Z(c, r)
				if math.IsNaN(v) {
					continue
				}
				xys = append(xys, plotter.XY{X: float64(c), Y: float64(r)})
				labels = append(labels, strconv.FormatFloat(v, 'f', 2, 64))
			}
		}
		if len(xys) > 0 {
			l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
			if err != nil {
				return fmt.Errorf("cell labels: %w", err)
			}
			for i := range l.TextStyle {
				l.TextStyle[i].XAlign = draw.XCenter
				l.TextStyle[i].YAlign = draw.YCenter
				l.TextStyle[i].Font.Size = vg.Points(max(5, 11-float64(n)/4))
			}
			p.Add(l)
		}
	}

	bar := plot.New()
	bar.HideX()
	bar.Y.Padding = 0
	bar.Title.Text = " "
	bar.Add(&plotter.ColorBar{ColorMap: cm, Vertical: true})

	w, h := opt.size()
	c, err := draw.NewFormattedCanvas(w, h, format)
	if err != nil {
		return fmt.Errorf("canvas: %w", err)
	}
	dc := draw.New(c)
	barWidth := vg.Inch
	p.Draw(draw.Crop(dc, 0, -barWidth, 0, 0))
	bar.Draw(draw.Crop(dc, w-barWidth, 0, vg.Inch, 0))

	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
