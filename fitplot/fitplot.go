// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fitplot

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"

	"github.com/curioloop/lmfit/levmar"
)

// observed adapts a dataset to the plotter point interfaces, with the
// sigma broadcast rule of levmar.Dataset.
type observed struct {
	d levmar.Dataset
}

func (o observed) Len() int { return len(o.d.X) }

func (o observed) XY(i int) (x, y float64) { return o.d.X[i], o.d.Y[i] }

func (o observed) YError(i int) (low, high float64) {
	s := o.d.Sigma[0]
	if len(o.d.Sigma) > 1 {
		s = o.d.Sigma[i]
	}
	return s, s
}

// Plot renders the observed points of a dataset under the fitted curve:
// a scatter of the measurements with one sigma error bars and a line
// through the model values. The returned plot is ready for the caller
// to save or embed.
//
// An empty Sigma draws the scatter without error bars. yfit must hold
// one model value per sample, as returned by the fitters.
func Plot(d levmar.Dataset, yfit []float64, title string) (*plot.Plot, error) {

	n := len(d.X)
	switch {
	case n == 0:
		return nil, fmt.Errorf("fitplot: dataset is empty")
	case len(d.Y) != n:
		return nil, fmt.Errorf("fitplot: x and y length mismatch: %d != %d", n, len(d.Y))
	case len(yfit) != n:
		return nil, fmt.Errorf("fitplot: yfit length must be %d, got %d", n, len(yfit))
	case len(d.Sigma) > 1 && len(d.Sigma) != n:
		return nil, fmt.Errorf("fitplot: sigma length must be 0, 1 or %d, got %d", n, len(d.Sigma))
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	obs := observed{d}
	scatter, err := plotter.NewScatter(obs)
	if err != nil {
		return nil, fmt.Errorf("fitplot: %w", err)
	}
	scatter.GlyphStyle.Color = plotutil.Color(0)
	p.Add(scatter)
	p.Legend.Add("data", scatter)

	if len(d.Sigma) > 0 {
		bars, err := plotter.NewYErrorBars(obs)
		if err != nil {
			return nil, fmt.Errorf("fitplot: %w", err)
		}
		bars.LineStyle.Color = plotutil.Color(0)
		p.Add(bars)
	}

	curve := make(plotter.XYs, n)
	for i := range curve {
		curve[i] = plotter.XY{X: d.X[i], Y: yfit[i]}
	}
	line, err := plotter.NewLine(curve)
	if err != nil {
		return nil, fmt.Errorf("fitplot: %w", err)
	}
	line.LineStyle.Color = plotutil.Color(1)
	p.Add(line)
	p.Legend.Add("fit", line)

	return p, nil
}
