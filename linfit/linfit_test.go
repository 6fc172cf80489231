// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linfit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func constant(float64) float64 { return 1 }
func identity(v float64) float64 { return v }

func TestDesign(t *testing.T) {

	x := []float64{0, math.Pi / 2, math.Pi}
	d := Design(x, constant, math.Sin, math.Cos)

	rows, cols := d.Dims()
	require.Equal(t, 3, rows)
	require.Equal(t, 3, cols)

	for i, xi := range x {
		require.Equal(t, 1.0, d.At(i, 0))
		require.Equal(t, math.Sin(xi), d.At(i, 1))
		require.Equal(t, math.Cos(xi), d.At(i, 2))
	}
}

func TestDesignNoBasis(t *testing.T) {

	require.PanicsWithValue(t, "no basis function", func() {
		Design([]float64{1, 2})
	})
}

func TestFitRecoversCoefficients(t *testing.T) {

	// y = 3 + 0.5·sin(x), exactly in the span of the basis.
	x := []float64{0.1, 0.7, 1.3, 2.0, 2.9}
	y := make([]float64, len(x))
	for i, xi := range x {
		y[i] = 3 + 0.5*math.Sin(xi)
	}

	coef, yfit, err := Fit(y, Design(x, constant, math.Sin))
	require.NoError(t, err)

	require.Len(t, coef, 2)
	require.InDelta(t, 3.0, coef[0], 1e-12)
	require.InDelta(t, 0.5, coef[1], 1e-12)
	for i := range y {
		require.InDelta(t, y[i], yfit[i], 1e-12)
	}
}

func TestFitOverdetermined(t *testing.T) {

	// Straight line through scattered points: the normal equations give
	// slope 2.2 and intercept -1.2 in closed form.
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{0, 1, 2, 3, 10}

	coef, yfit, err := Fit(y, Design(x, constant, identity))
	require.NoError(t, err)

	require.InDelta(t, -1.2, coef[0], 1e-10)
	require.InDelta(t, 2.2, coef[1], 1e-10)
	for i, xi := range x {
		require.InDelta(t, coef[0]+coef[1]*xi, yfit[i], 1e-10)
	}
}

func TestFitValidation(t *testing.T) {

	t.Run("MismatchedY", func(t *testing.T) {
		d := Design([]float64{1, 2, 3}, constant)
		_, _, err := Fit([]float64{1, 2}, d)
		require.ErrorContains(t, err, "linfit: y length 2 does not match 3 design rows")
	})

	t.Run("Underdetermined", func(t *testing.T) {
		d := Design([]float64{1, 2}, constant, identity, math.Sin)
		_, _, err := Fit([]float64{1, 2}, d)
		require.ErrorContains(t, err, "linfit: 2 points cannot constrain 3 coefficients")
	})
}

func TestFitRankDeficient(t *testing.T) {

	// A dependent design still factorizes and solves to some finite
	// vector, so the deficiency must be rejected outright.
	x := []float64{1, 2, 3, 4}
	y := []float64{1, 2, 3, 4}

	t.Run("DuplicateColumn", func(t *testing.T) {
		coef, yfit, err := Fit(y, Design(x, identity, identity))
		require.Nil(t, coef)
		require.Nil(t, yfit)
		require.ErrorContains(t, err, "linfit: rank deficient design matrix")
	})

	t.Run("ZeroColumn", func(t *testing.T) {
		zero := func(float64) float64 { return 0 }
		coef, yfit, err := Fit(y, Design(x, identity, zero))
		require.Nil(t, coef)
		require.Nil(t, yfit)
		require.ErrorContains(t, err, "linfit: rank deficient design matrix")
	})
}
