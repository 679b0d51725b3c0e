// Package partition draws a partition tree as a 2D plan view: one outlined
// cell per leaf, occupied cells shaded, markers overlaid as points.
package partition

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/gridtree/pkg/chunk"
	"github.com/matzehuels/gridtree/pkg/errors"
	"github.com/matzehuels/gridtree/pkg/geom"
	"github.com/matzehuels/gridtree/pkg/tree"
)

// Formats accepted by [Render].
var Formats = []string{"png", "svg", "pdf"}

var (
	cellColor     = color.RGBA{R: 64, G: 64, B: 64, A: 255}
	occupiedColor = color.RGBA{R: 183, G: 228, B: 199, A: 255}
	markerColor   = color.RGBA{R: 200, G: 40, B: 40, A: 255}
)

// Options controls the rendered figure.
type Options struct {
	Width  vg.Length
	Height vg.Length
	Title  string
}

func (o *Options) setDefaults() {
	if o.Width == 0 {
		o.Width = 8 * vg.Inch
	}
	if o.Height == 0 {
		o.Height = 8 * vg.Inch
	}
	if o.Title == "" {
		o.Title = "Partition"
	}
}

// FormatFromPath returns the render format implied by path's extension.
func FormatFromPath(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, f := range Formats {
		if ext == f {
			return f, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidFormat,
		"cannot plot to %q (want one of %s)", path, strings.Join(Formats, ", "))
}

// Plot builds the figure for t. markers may be nil.
func Plot(t *tree.Tree, markers []geom.Vec3, opts Options) (*plot.Plot, error) {
	opts.setDefaults()

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (%d leaves, grid %g)", opts.Title, len(t.Leaves()), t.GridUnit)
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"

	for _, id := range t.Leaves() {
		r := t.Node(id).Rect
		corners := plotter.XYs{
			{X: r.Min.X, Y: r.Min.Y},
			{X: r.Max.X, Y: r.Min.Y},
			{X: r.Max.X, Y: r.Max.Y},
			{X: r.Min.X, Y: r.Max.Y},
		}

		if r.ContainsAny(markers) {
			poly, err := plotter.NewPolygon(corners)
			if err != nil {
				return nil, err
			}
			poly.Color = occupiedColor
			poly.LineStyle.Width = 0
			p.Add(poly)
		}

		outline, err := plotter.NewLine(append(corners, corners[0]))
		if err != nil {
			return nil, err
		}
		outline.Color = cellColor
		outline.Width = vg.Points(1)
		p.Add(outline)
	}

	if len(markers) > 0 {
		pts := make(plotter.XYs, len(markers))
		for i, m := range markers {
			pts[i] = plotter.XY{X: m.X, Y: m.Y}
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		scatter.GlyphStyle.Color = markerColor
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		scatter.GlyphStyle.Radius = vg.Points(3)
		p.Add(scatter)
		p.Legend.Add("markers", scatter)
		p.Legend.Top = true
	}

	p.X.Min, p.X.Max = t.WorldMin.X, t.WorldMax.X
	p.Y.Min, p.Y.Max = t.WorldMin.Y, t.WorldMax.Y
	return p, nil
}

// Render writes the figure for t to w in the given format.
func Render(t *tree.Tree, markers []geom.Vec3, w io.Writer, format string, opts Options) error {
	p, err := Plot(t, markers, opts)
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	opts.setDefaults()

	wt, err := p.WriterTo(opts.Width, opts.Height, format)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "render %s", format)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}
	return nil
}

// Save renders the figure to path, choosing the format by extension.
func Save(t *tree.Tree, markers []geom.Vec3, path string, opts Options) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Render(t, markers, &buf, format, opts); err != nil {
		return err
	}
	return chunk.WriteFileAtomic(path, buf.Bytes(), 0o644)
}
