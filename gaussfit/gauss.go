// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gaussfit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/curioloop/lmfit/levmar"
)

// Parameter indices of Model.
const (
	Center = iota // Peak position.
	FWHM          // Full width at half maximum, must be nonzero.
	Height        // Peak amplitude above the baseline.
	Base          // Constant baseline.
)

// Model evaluates a four-parameter Gaussian profile
//
//	𝒇(𝐱;𝐚) = 𝚋𝚊𝚜𝚎 + 𝚑𝚎𝚒𝚐𝚑𝚝·𝚎^(-4㏑2·(𝐱-𝚌𝚎𝚗𝚝𝚎𝚛)²/𝚏𝚠𝚑𝚖²)
//
// with its analytic Jacobian. The width enters squared, so the fitted
// FWHM keeps the sign of the initial guess.
var Model levmar.ModelFunc = func(x, a, y, jac []float64) {
	c, w, h, b := a[Center], a[FWHM], a[Height], a[Base]
	k := 4 * math.Ln2 / (w * w)
	for i, xi := range x {
		u := xi - c
		e := math.Exp(-k * u * u)
		y[i] = b + h*e
		if jac != nil {
			he := h * e
			row := jac[i*4 : (i+1)*4]
			row[Center] = 2 * k * he * u
			row[FWHM] = 2 * k * he * u * u / w
			row[Height] = e
			row[Base] = 1
		}
	}
}

// Guess estimates the four profile parameters from moments: the base
// from the sequence minimum, the height from the peak excess over the
// base, the center and width from the mean and variance of x weighted
// by the base-subtracted signal.
//
// x and y must have the same nonzero length. A signal without any
// excess over its minimum falls back to unweighted moments.
func Guess(x, y []float64) []float64 {

	base := floats.Min(y)
	height := floats.Max(y) - base

	w := make([]float64, len(y))
	for i, yi := range y {
		w[i] = yi - base
	}
	// Rescale so the unbiased variance denominator stays positive no
	// matter the signal amplitude.
	if s := floats.Sum(w); s > 0 {
		floats.Scale(float64(len(w))/s, w)
	} else {
		w = nil
	}

	center := stat.Mean(x, w)
	sigma := math.Sqrt(stat.Variance(x, w))

	return []float64{center, 2 * math.Sqrt(2*math.Ln2) * sigma, height, base}
}

// Fit runs a Levenberg-Marquardt fit of Model against the samples,
// starting from Guess. Sigma broadcasts like levmar.Dataset: one entry
// for all points or one entry per point.
func Fit(x, y, sigma []float64) (*levmar.Result, error) {

	switch {
	case len(x) == 0:
		return nil, fmt.Errorf("gaussfit: empty dataset")
	case len(x) != len(y):
		return nil, fmt.Errorf("gaussfit: x and y length mismatch: %d != %d", len(x), len(y))
	}

	p := levmar.Problem{Model: Model}
	f, err := p.New(nil)
	if err != nil {
		return nil, err
	}
	return f.Fit(levmar.Dataset{X: x, Y: y, Sigma: sigma}, Guess(x, y))
}
