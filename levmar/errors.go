// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package levmar

import "fmt"

// ConvergenceError reports a fit that exhausted its iteration budget
// while the relative chi-square change was still above Eps.
//
// The last accepted state is carried in the payload, so callers that
// want a best-effort result instead of a hard failure may inspect the
// error and keep Params.
type ConvergenceError struct {
	Iters  int       // iterations performed
	Chisq  float64   // last accepted chi-square
	Rel    float64   // last relative chi-square change
	Params []float64 // last accepted parameters
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("levmar: no convergence after %d iterations (relative chi-square change %.3e > eps)", e.Iters, e.Rel)
}

// SingularMatrixError reports a damped system or curvature matrix the
// linear solver could not handle.
type SingularMatrixError struct {
	Iter int   // iteration whose linear system failed
	Err  error // underlying solver error
}

func (e *SingularMatrixError) Error() string {
	return fmt.Sprintf("levmar: singular system at iteration %d: %v", e.Iter, e.Err)
}

func (e *SingularMatrixError) Unwrap() error { return e.Err }

// ShapeError reports inconsistent dimensions between samples,
// observations, sigma and parameters. All shapes are checked before the
// iteration loop starts; a panic escaping a model evaluation is also
// reported as a ShapeError, since out-of-range indexing in a fill-style
// callback is a shape bug.
type ShapeError struct {
	Msg string
}

func (e *ShapeError) Error() string { return "levmar: " + e.Msg }

func shapeErrorf(format string, a ...any) *ShapeError {
	return &ShapeError{Msg: fmt.Sprintf(format, a...)}
}
