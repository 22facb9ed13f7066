// Copyright © 2023-2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package figure

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/shenwei356/taghd/taghd/strat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"
)

// A4 landscape.
var (
	PageWidth  = 29.7 * vg.Centimeter
	PageHeight = 21 * vg.Centimeter
)

// Options contains options of a histogram page.
type Options struct {
	Title    string // title of the page, usually the name of the data set
	Subtitle string
	XLabel   string
	YLabel   string

	// Relative plots proportions of the total instead of counts.
	Relative bool
}

// Report is a multi-page PDF document of histograms.
// The document is rendered at the first write, no pages can be added after that.
type Report struct {
	c     *vgpdf.Canvas
	pages int
	data  []byte // rendered document
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{c: vgpdf.New(PageWidth, PageHeight)}
}

// Pages returns the number of pages.
func (r *Report) Pages() int { return r.pages }

var errRendered = errors.New("report already rendered")

func (r *Report) draw(p *plot.Plot) {
	if r.pages > 0 {
		r.c.NextPage()
	}
	p.Draw(draw.New(r.c))
	r.pages++
}

// render closes the canvas once and keeps the bytes.
func (r *Report) render() error {
	if r.data != nil {
		return nil
	}
	if r.pages == 0 {
		return errors.New("no pages in the report")
	}
	var buf bytes.Buffer
	if _, err := r.c.WriteTo(&buf); err != nil {
		return errors.Wrap(err, "render pdf")
	}
	r.data = buf.Bytes()
	return nil
}

func newPlot(opt *Options) *plot.Plot {
	p := plot.New()
	if opt.Subtitle != "" {
		p.Title.Text = opt.Title + "\n" + opt.Subtitle
	} else {
		p.Title.Text = opt.Title
	}
	p.X.Label.Text = opt.XLabel
	p.Y.Label.Text = opt.YLabel
	if p.Y.Label.Text == "" {
		if opt.Relative {
			p.Y.Label.Text = "relative frequency"
		} else {
			p.Y.Label.Text = "absolute frequency"
		}
	}
	p.Legend.Top = true
	return p
}

// values returns the j-th column of a table, divided by the total if needed.
func values(t *strat.Table, j int, total float64) plotter.Values {
	col := t.Column(j)
	vs := make(plotter.Values, len(col))
	for i, c := range col {
		vs[i] = float64(c)
		if total > 0 {
			vs[i] /= total
		}
	}
	return vs
}

func barWidth(n int) vg.Length {
	w := (PageWidth - 4*vg.Centimeter) / vg.Length(n+1) * 0.8
	if w > vg.Centimeter {
		return vg.Centimeter
	}
	if w < vg.Millimeter {
		return vg.Millimeter
	}
	return w
}

// AddStacked adds a histogram with rows of the table on the X axis
// and columns stacked. Empty tables are skipped and false is returned.
func (r *Report) AddStacked(t *strat.Table, opt *Options) (bool, error) {
	if r.data != nil {
		return false, errRendered
	}
	total := t.Total()
	if total == 0 || len(t.RowNames) == 0 {
		return false, nil
	}
	var div float64
	if opt.Relative {
		div = float64(total)
	}

	p := newPlot(opt)
	w := barWidth(len(t.RowNames))
	var below *plotter.BarChart
	for j, name := range t.ColNames {
		bars, err := plotter.NewBarChart(values(t, j, div), w)
		if err != nil {
			return false, errors.Wrapf(err, "%s: %s", t.Title, name)
		}
		bars.LineStyle.Width = vg.Length(0.5)
		bars.Color = plotutil.Color(j)
		if below != nil {
			bars.StackOn(below)
		}
		below = bars

		p.Add(bars)
		p.Legend.Add(name, bars)
	}
	p.NominalX(t.RowNames...)

	r.draw(p)
	return true, nil
}

// AddGrouped adds a histogram with rows of the table on the X axis
// and columns side by side. Empty tables are skipped and false is returned.
func (r *Report) AddGrouped(t *strat.Table, opt *Options) (bool, error) {
	if r.data != nil {
		return false, errRendered
	}
	if t.Total() == 0 || len(t.RowNames) == 0 {
		return false, nil
	}

	p := newPlot(opt)
	n := len(t.ColNames)
	w := barWidth(len(t.RowNames) * n)
	sums := t.ColSums()
	var div float64
	for j, name := range t.ColNames {
		if opt.Relative {
			div = float64(sums[j])
		}
		bars, err := plotter.NewBarChart(values(t, j, div), w)
		if err != nil {
			return false, errors.Wrapf(err, "%s: %s", t.Title, name)
		}
		bars.LineStyle.Width = vg.Length(0.5)
		bars.Color = plotutil.Color(j)
		bars.Offset = (vg.Length(j) - vg.Length(n-1)/2) * w

		p.Add(bars)
		p.Legend.Add(name, bars)
	}
	p.NominalX(t.RowNames...)

	r.draw(p)
	return true, nil
}

// WriteTo writes the PDF document. It can be called more than once.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	if err := r.render(); err != nil {
		return 0, err
	}
	n, err := w.Write(r.data)
	return int64(n), err
}

// Save writes the PDF document to a file.
// The file is removed if the writing fails.
func (r *Report) Save(file string) error {
	if err := r.render(); err != nil {
		return errors.Wrapf(err, "write pdf: %s", file)
	}
	fh, err := os.Create(file)
	if err != nil {
		return err
	}
	_, err = r.WriteTo(fh)
	if err == nil {
		err = fh.Close()
	} else {
		fh.Close()
	}
	if err != nil {
		os.Remove(file)
		return errors.Wrapf(err, "write pdf: %s", file)
	}
	return nil
}
