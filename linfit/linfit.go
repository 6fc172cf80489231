// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linfit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var eps = math.Nextafter(1, 2) - 1

// Design builds the n×k design matrix 𝐁 for a linear model
//
//	𝐲ᵢ ≈ ∑ⱼ 𝐜ⱼ·𝒇ⱼ(𝐱ᵢ)
//
// with 𝐁ᵢⱼ = 𝒇ⱼ(𝐱ᵢ). At least one basis function is required.
func Design(x []float64, basis ...func(float64) float64) *mat.Dense {
	if len(basis) == 0 {
		panic("no basis function")
	}
	b := mat.NewDense(len(x), len(basis), nil)
	for i, xi := range x {
		for j, fn := range basis {
			b.Set(i, j, fn(xi))
		}
	}
	return b
}

// Fit solves the linear least-squares problem min‖𝐁𝐜 - 𝐲‖₂ for the
// design matrix 𝐁 by QR factorization. It returns the coefficients and
// the fitted values 𝐁𝐜.
//
// The design needs at least as many rows as columns and full column
// rank. A rank-deficient design is rejected.
func Fit(y []float64, design *mat.Dense) (coef, yfit []float64, err error) {

	n, k := design.Dims()
	switch {
	case len(y) != n:
		return nil, nil, fmt.Errorf("linfit: y length %d does not match %d design rows", len(y), n)
	case n < k:
		return nil, nil, fmt.Errorf("linfit: %d points cannot constrain %d coefficients", n, k)
	}

	qr := new(mat.QR)
	qr.Factorize(design)
	if deficient(qr, n, k) {
		return nil, nil, fmt.Errorf("linfit: rank deficient design matrix")
	}

	c := mat.NewVecDense(k, nil)
	if err := qr.SolveVecTo(c, false, mat.NewVecDense(n, y)); err != nil {
		return nil, nil, fmt.Errorf("linfit: %w", err)
	}

	var fit mat.VecDense
	fit.MulVec(design, c)

	coef = make([]float64, k)
	for j := range coef {
		coef[j] = c.AtVec(j)
	}
	yfit = make([]float64, n)
	for i := range yfit {
		yfit[i] = fit.AtVec(i)
	}
	return coef, yfit, nil
}

// deficient reports whether the factorized design lost column rank.
// The solve itself returns an arbitrary finite vector for dependent
// columns, so deficiency is read off the 𝐑 diagonal: the smallest
// magnitude against the largest, scaled by the row count.
func deficient(qr *mat.QR, n, k int) bool {
	var r mat.Dense
	qr.RTo(&r)
	dmin, dmax := math.Inf(1), 0.0
	for j := 0; j < k; j++ {
		d := math.Abs(r.At(j, j))
		dmin, dmax = math.Min(dmin, d), math.Max(dmax, d)
	}
	return dmin <= float64(n)*eps*dmax
}
