// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package levmar

const (
	zero = 0.0
	one  = 1.0
)

const (
	// lambda0 is the damping factor every fit starts from.
	lambda0 = 1e-3
	// lambdaShrink scales 𝛌 down after an accepted step.
	lambdaShrink = 0.1
	// lambdaGrow scales 𝛌 up after a rejected step.
	lambdaGrow = 10.0
)

const (
	defaultMaxIter = 200
	defaultEps     = 1e-4
)

type lmSpec struct {
	Problem
	logger Logger
}

// lmData is one normalized dataset: the samples, the observations and
// the per-point weights 1/𝛔ᵢ² expanded from sigma.
type lmData struct {
	n, m int
	x, y []float64
	w    []float64 // n
}

// lmPoint is one evaluated location in parameter space together with
// the normal-equation state assembled there.
type lmPoint struct {
	chisq float64
	a     []float64 // m
	yfit  []float64 // n
	alpha []float64 // m×m row-major, symmetric
	beta  []float64 // m
}

// fitState is the mutable per-fit state. acc holds the last accepted
// location and trial the candidate of the current iteration. Rejection
// needs no rollback: the next step is always built from acc, and an
// accepted trial swaps the two records.
type fitState struct {
	lambda float64
	iter   int
	eval   int
	acc    lmPoint
	trial  lmPoint
	jac    []float64 // n×m row-major
	damped []float64 // m×m
	delta  []float64 // m
}

// newFitState carves all per-fit buffers out of a single slab.
// Given n points and m parameters, the total work space is
// float64[3m² + nm + 2n + 5m].
func newFitState(n, m int) *fitState {
	wrk := make([]float64, 3*m*m+n*m+2*n+5*m)
	carve := func(k int) []float64 {
		s := wrk[:k:k]
		wrk = wrk[k:]
		return s
	}
	point := func() lmPoint {
		return lmPoint{
			a:     carve(m),
			yfit:  carve(n),
			alpha: carve(m * m),
			beta:  carve(m),
		}
	}
	return &fitState{
		lambda: lambda0,
		acc:    point(),
		trial:  point(),
		jac:    carve(n * m),
		damped: carve(m * m),
		delta:  carve(m),
	}
}
