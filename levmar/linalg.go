// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package levmar

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// LinearSolver is the dense linear algebra the engine delegates to:
// a factorization with back-substitution for the damped normal
// equations and a matrix inverse for the covariance estimate.
//
// A non-nil error marks the matrix as numerically singular. The engine
// then aborts the fit with a SingularMatrixError instead of letting
// NaN propagate through the parameters.
type LinearSolver interface {
	// SolveVec solves a·dst = b for the square matrix a.
	SolveVec(a mat.Matrix, b, dst []float64) error
	// Invert returns the inverse of the square matrix a.
	Invert(a mat.Matrix) (*mat.Dense, error)
}

// LUSolver is the default LinearSolver, backed by the dense LU
// factorization of gonum. Ill-conditioned systems (mat.Condition
// errors) are treated as singular rather than solved approximately.
type LUSolver struct{}

// SolveVec factorizes a and back-substitutes b into dst.
func (LUSolver) SolveVec(a mat.Matrix, b, dst []float64) error {
	var lu mat.LU
	lu.Factorize(a)
	return lu.SolveVecTo(mat.NewVecDense(len(dst), dst), false, mat.NewVecDense(len(b), b))
}

// Invert computes the dense inverse of a.
func (LUSolver) Invert(a mat.Matrix) (*mat.Dense, error) {
	r, c := a.Dims()
	if r != c {
		return nil, fmt.Errorf("levmar: cannot invert a %dx%d matrix", r, c)
	}
	inv := mat.NewDense(r, c, nil)
	if err := inv.Inverse(a); err != nil {
		return nil, err
	}
	return inv, nil
}
