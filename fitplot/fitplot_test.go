// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fitplot

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"github.com/curioloop/lmfit/levmar"
)

var lineData = levmar.Dataset{
	X:     []float64{0, 1, 2, 3, 4},
	Y:     []float64{1.02, 2.95, 5.11, 6.88, 9.03},
	Sigma: []float64{0.1},
}

var lineFit = []float64{1, 3, 5, 7, 9}

func TestPlotRendersPNG(t *testing.T) {

	p, err := Plot(lineData, lineFit, "line fit")
	require.NoError(t, err)
	require.Equal(t, "line fit", p.Title.Text)

	wt, err := p.WriterTo(4*vg.Inch, 3*vg.Inch, "png")
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = wt.WriteTo(&buf)
	require.NoError(t, err)
	require.Positive(t, buf.Len())
}

func TestPlotSigmaVariants(t *testing.T) {

	t.Run("PerPoint", func(t *testing.T) {
		d := lineData
		d.Sigma = []float64{0.1, 0.2, 0.1, 0.3, 0.1}
		_, err := Plot(d, lineFit, "per-point sigma")
		require.NoError(t, err)
	})

	t.Run("None", func(t *testing.T) {
		d := levmar.Dataset{X: lineData.X, Y: lineData.Y}
		p, err := Plot(d, lineFit, "no error bars")
		require.NoError(t, err)

		wt, err := p.WriterTo(4*vg.Inch, 3*vg.Inch, "svg")
		require.NoError(t, err)

		var buf bytes.Buffer
		_, err = wt.WriteTo(&buf)
		require.NoError(t, err)
		require.Positive(t, buf.Len())
	})
}

func TestPlotValidation(t *testing.T) {

	cases := []struct {
		name string
		d    levmar.Dataset
		yfit []float64
		msg  string
	}{
		{"Empty", levmar.Dataset{}, nil, "fitplot: dataset is empty"},
		{"MismatchedY", levmar.Dataset{X: []float64{1, 2}, Y: []float64{1}}, []float64{1, 2}, "fitplot: x and y length mismatch: 2 != 1"},
		{"MismatchedFit", lineData, []float64{1, 2}, "fitplot: yfit length must be 5, got 2"},
		{"BadSigma", levmar.Dataset{X: lineData.X, Y: lineData.Y, Sigma: []float64{1, 2}}, lineFit, "fitplot: sigma length must be 0, 1 or 5, got 2"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Plot(tc.d, tc.yfit, tc.name)
			require.Nil(t, p)
			require.ErrorContains(t, err, tc.msg)
		})
	}
}
