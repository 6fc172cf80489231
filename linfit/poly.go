// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linfit

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// PolyFit fits a polynomial of the given degree to the samples,
// returning the coefficients in ascending power order
//
//	𝐲 ≈ 𝐜₀ + 𝐜₁𝐱 + 𝐜₂𝐱² + … + 𝐜ₙ𝐱ⁿ
//
// together with the fitted values.
func PolyFit(x, y []float64, degree int) (coef, yfit []float64, err error) {
	switch {
	case degree < 0:
		return nil, nil, fmt.Errorf("linfit: negative degree %d", degree)
	case len(x) == 0:
		return nil, nil, fmt.Errorf("linfit: no samples")
	}
	return Fit(y, vandermonde(x, degree))
}

// vandermonde builds the design matrix with column j holding 𝐱ʲ.
func vandermonde(x []float64, degree int) *mat.Dense {
	v := mat.NewDense(len(x), degree+1, nil)
	for i := range x {
		for j, p := 0, 1.; j <= degree; j, p = j+1, p*x[i] {
			v.Set(i, j, p)
		}
	}
	return v
}
