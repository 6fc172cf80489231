// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linfit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPolyFitCubic(t *testing.T) {

	// y = 1 - 2x + 0.5x³ sampled exactly.
	x := []float64{-3, -2, -1, 0, 1, 2, 3}
	y := []float64{-6.5, 1, 2.5, 1, -0.5, 1, 8.5}

	coef, yfit, err := PolyFit(x, y, 3)
	require.NoError(t, err)

	want := []float64{1, -2, 0, 0.5}
	require.Len(t, coef, 4)
	for j := range want {
		require.InDelta(t, want[j], coef[j], 1e-9, "coefficient %d", j)
	}
	for i := range y {
		require.InDelta(t, y[i], yfit[i], 1e-9)
	}
}

func TestPolyFitLine(t *testing.T) {

	coef, yfit, err := PolyFit([]float64{0, 2}, []float64{1, 5}, 1)
	require.NoError(t, err)
	require.InDelta(t, 1.0, coef[0], 1e-12)
	require.InDelta(t, 2.0, coef[1], 1e-12)
	require.InDelta(t, 1.0, yfit[0], 1e-12)
	require.InDelta(t, 5.0, yfit[1], 1e-12)
}

func TestPolyFitConstant(t *testing.T) {

	// Degree zero reduces to the mean.
	coef, _, err := PolyFit([]float64{1, 2, 3}, []float64{2, 4, 6}, 0)
	require.NoError(t, err)
	require.Len(t, coef, 1)
	require.InDelta(t, 4.0, coef[0], 1e-12)
}

func TestPolyFitMatchesDesign(t *testing.T) {

	x := []float64{0.5, 1.5, 2.5, 3.5, 4.5}
	y := []float64{1.1, 0.4, 2.2, 5.8, 11.3}

	pc, py, err := PolyFit(x, y, 2)
	require.NoError(t, err)

	square := func(v float64) float64 { return v * v }
	dc, dy, err := Fit(y, Design(x, constant, identity, square))
	require.NoError(t, err)

	// The Vandermonde powers and the explicit basis build the same
	// design, so the results agree bitwise.
	require.Equal(t, dc, pc)
	require.Equal(t, dy, py)
}

func TestPolyFitValidation(t *testing.T) {

	t.Run("NegativeDegree", func(t *testing.T) {
		_, _, err := PolyFit([]float64{1}, []float64{1}, -1)
		require.ErrorContains(t, err, "linfit: negative degree -1")
	})

	t.Run("NoSamples", func(t *testing.T) {
		_, _, err := PolyFit(nil, nil, 1)
		require.ErrorContains(t, err, "linfit: no samples")
	})

	t.Run("Underdetermined", func(t *testing.T) {
		_, _, err := PolyFit([]float64{1, 2}, []float64{1, 2}, 3)
		require.ErrorContains(t, err, "linfit: 2 points cannot constrain 4 coefficients")
	})
}
