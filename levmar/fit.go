// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package levmar

import (
	"errors"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
)

// Termination specifies the stopping criteria for the fit.
type Termination struct {
	// The fit stop when the number of iteration exceeds limit (default 200).
	MaxIter int
	// The fit will stop when the relative chi-square change satisfied:
	//   |χ²ₖ₊₁ - χ²ₖ| / χ² ≤ 𝚎𝚙𝚜 (default 1e-4)
	// Note the ratio is undefined for a perfect fit with χ² = 0.
	Eps float64
}

// Dataset is one curve to fit: samples x, observations y and the
// measurement deviation sigma. Sigma holds either a single entry
// broadcast to every point or one entry per point.
//
// Every sigma must be positive. Zero or negative deviations are a
// caller error the fit does not check for.
type Dataset struct {
	X, Y  []float64
	Sigma []float64
}

// Problem specifies the problem for a Levenberg-Marquardt fitter.
type Problem struct {
	Model  Model        // Model values 𝒇(𝐱;𝐚) and Jacobian ∂𝒇ᵢ/∂𝐚ⱼ
	Stop   Termination  // Stop condition
	Solver LinearSolver // Optional linear algebra backend (default LUSolver)
	// Workers bounds the number of concurrent fits in FitBatch.
	// Zero or one keeps the batch sequential.
	Workers int
}

// New creates a new Levenberg-Marquardt fitter for given problem.
func (p *Problem) New(logger *Logger) (fitter *Fitter, err error) {

	if logger == nil {
		logger = new(Logger)
		logger.Level = LogNoop
	}
	if logger.Msg == nil {
		logger.Msg = os.Stdout
	}

	model, stop, solver := p.Model, p.Stop, p.Solver

	if stop.MaxIter == 0 {
		stop.MaxIter = defaultMaxIter
	}
	if stop.Eps == 0 {
		stop.Eps = defaultEps
	}
	if solver == nil {
		solver = LUSolver{}
	}

	switch {
	case model == nil:
		err = errors.New("model function is required")
	case stop.MaxIter < 0:
		err = errors.New("max iteration must greater than 0")
	case stop.Eps < 0 || math.IsNaN(stop.Eps):
		err = errors.New("convergence threshold must greater than 0")
	case p.Workers < 0:
		err = errors.New("worker number must not less than 0")
	}
	if err != nil {
		return
	}

	fitter = &Fitter{
		lmSpec{
			Problem: Problem{
				Model:   model,
				Stop:    stop,
				Solver:  solver,
				Workers: p.Workers,
			},
			logger: *logger,
		},
	}
	return
}

// Fitter implemented using the Levenberg-Marquardt algorithm.
type Fitter struct {
	lmSpec
}

// Result contains the final result of one fit.
type Result struct {
	YFit    []float64  // Model values at the final parameters.
	Params  []float64  // Final parameter estimate.
	Covar   *mat.Dense // Covariance estimate: inverse of the final curvature matrix.
	Summary            // Fit summary.
}

// Summary contains a summary of the fitting process.
type Summary struct {
	NumIter int     // Number of iterations performed.
	NumEval int     // Number of model evaluations performed.
	Chisq   float64 // Final accepted chi-square.
	Lambda  float64 // Final damping factor.
}

// Fit runs the Levenberg-Marquardt iteration for one dataset, starting
// from the initial parameter guess a0. Neither the dataset nor a0 is
// mutated, so one fitter may run many fits concurrently.
//
// The returned YFit always belongs to the returned Params: when the
// last trial step was rejected, both come from the last accepted state.
//
// A fit whose relative chi-square change never reaches Stop.Eps within
// Stop.MaxIter iterations fails with a *ConvergenceError. A damped
// system the solver cannot factor fails with a *SingularMatrixError.
// Inconsistent input dimensions fail with a *ShapeError before the
// first iteration.
func (f *Fitter) Fit(d Dataset, a0 []float64) (*Result, error) {

	data, err := f.newData(d, len(a0))
	if err != nil {
		return nil, err
	}

	solver := lmSolver{
		fitter: f,
		data:   data,
		state:  newFitState(data.n, data.m),
	}
	copy(solver.state.acc.a, a0)

	if err := solver.run(); err != nil {
		return nil, err
	}
	return solver.result()
}

// newData validates the dataset shapes against the parameter count and
// expands sigma into per-point weights 1/𝛔ᵢ².
func (f *Fitter) newData(d Dataset, m int) (*lmData, error) {
	n := len(d.X)
	switch {
	case m == 0:
		return nil, shapeErrorf("initial parameters are empty")
	case n == 0:
		return nil, shapeErrorf("dataset is empty")
	case len(d.Y) != n:
		return nil, shapeErrorf("x and y length mismatch: %d != %d", n, len(d.Y))
	case len(d.Sigma) != 1 && len(d.Sigma) != n:
		return nil, shapeErrorf("sigma length must be 1 or %d, got %d", n, len(d.Sigma))
	case n < m:
		return nil, shapeErrorf("%d points cannot constrain %d parameters", n, m)
	}

	w := make([]float64, n)
	for i := range w {
		s := d.Sigma[0]
		if len(d.Sigma) == n {
			s = d.Sigma[i]
		}
		w[i] = 1 / (s * s)
	}
	return &lmData{n: n, m: m, x: d.X, y: d.Y, w: w}, nil
}
