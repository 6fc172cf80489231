// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package levmar

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// lmSolver fits NLS (weighted NonLinear least Squares) with LM (the Levenberg-Marquardt algorithm)
//
// minimize χ²(𝐚) = ∑ᵢ (𝐲ᵢ - 𝒇(𝐱ᵢ;𝐚))² / 𝛔ᵢ²
//
// over the m-vector 𝐚 for n sampled points (𝐱ᵢ, 𝐲ᵢ, 𝛔ᵢ).
//
// # Normal Equations
//
// Near the optimum χ² is approximated by a quadratic form built from the
// model Jacobian 𝐉ᵢⱼ = ∂𝒇(𝐱ᵢ;𝐚)/∂𝐚ⱼ and the residuals 𝐫ᵢ = 𝐲ᵢ - 𝒇(𝐱ᵢ;𝐚):
//   - 𝛂ⱼₖ = ∑ᵢ 𝐉ᵢⱼ𝐉ᵢₖ/𝛔ᵢ²  (the curvature matrix, ½ the Hessian of χ²)
//   - 𝛃ⱼ  = ∑ᵢ 𝐫ᵢ𝐉ᵢⱼ/𝛔ᵢ²  (-½ the gradient of χ²)
//
// A Gauss-Newton step solves 𝛂·𝛅 = 𝛃, which is only trustworthy when the
// quadratic approximation holds. A gradient-descent step 𝛅 ∝ 𝛃 always
// descends but ignores curvature.
//
// # Damping
//
// LM interpolates between the two with a single damping factor 𝛌,
// solving the damped system at every iteration:
//
//	𝛂' = 𝛂 except 𝛂'ⱼⱼ = 𝛂ⱼⱼ(1+𝛌) ; 𝛂'·𝛅 = 𝛃
//
// Small 𝛌 recovers Gauss-Newton, large 𝛌 degrades into a short gradient
// step. The factor adapts on the outcome of each trial step:
//   - accepted (χ² strictly decreased): 𝛌 shrinks ×0.1 and the trial
//     location becomes the accepted state.
//   - rejected: 𝛌 grows ×10 and the accepted state is kept, so the next
//     trial starts from the same location with stronger damping.
//
// Iteration 0 only seeds the accepted state (one evaluation, no solve).
// The fit converges when the relative change |𝚫χ²|/χ² of an iteration
// drops to the Eps threshold; exceeding MaxIter first is a failure.
//
// The covariance estimate of the result is the inverse of the final
// accepted (undamped) 𝛂, the standard asymptotic approximation.
//
// # Reference
//
// K. Levenberg: "A method for the solution of certain non-linear problems
// in least squares". Quart. Appl. Math. 2, 1944
//
// D.W. Marquardt: "An algorithm for least-squares estimation of nonlinear
// parameters". J. Soc. Indust. Appl. Math. 11, 1963
type lmSolver struct {
	fitter *Fitter
	data   *lmData
	state  *fitState
}

// run drives the fit: one seeding evaluation, then damped iterations
// until convergence, error or budget exhaustion.
func (s *lmSolver) run() error {
	if err := s.seed(); err != nil {
		return err
	}
	s.printInit()
	for {
		done, err := s.iterate()
		if done || err != nil {
			s.printExit(err)
			return err
		}
	}
}

// seed evaluates the model at the initial parameters and assembles the
// first accepted state. No solve happens and no stop test applies here.
func (s *lmSolver) seed() error {
	st := s.state
	if err := s.evalModel(&st.acc, st.jac); err != nil {
		return err
	}
	s.assemble(&st.acc)
	return nil
}

// iterate performs one damped step and the accept/reject decision.
// done reports that the fit reached its stop condition: with a nil
// error the accepted state converged, otherwise err explains the stop.
func (s *lmSolver) iterate() (done bool, err error) {

	spec := &s.fitter.lmSpec
	st, m := s.state, s.data.m

	st.iter++

	// Damp the accepted curvature: 𝛂'ⱼⱼ = 𝛂ⱼⱼ(1+𝛌).
	// The copy keeps the accepted 𝛂 untouched for the next retry.
	copy(st.damped, st.acc.alpha)
	for j := 0; j < m; j++ {
		st.damped[j*m+j] *= one + st.lambda
	}

	if err := spec.Solver.SolveVec(mat.NewDense(m, m, st.damped), st.acc.beta, st.delta); err != nil {
		return true, &SingularMatrixError{Iter: st.iter, Err: err}
	}

	// Trial location 𝐚 + 𝛅, evaluated and assembled like the seed.
	copy(st.trial.a, st.acc.a)
	floats.Add(st.trial.a, st.delta)
	if err := s.evalModel(&st.trial, st.jac); err != nil {
		return true, err
	}
	s.assemble(&st.trial)

	// The chi-square change is taken before the accept/reject decision
	// collapses the two states.
	di := math.Abs(st.trial.chisq - st.acc.chisq)
	accepted := st.trial.chisq < st.acc.chisq
	if accepted {
		st.lambda *= lambdaShrink
		st.acc, st.trial = st.trial, st.acc
	} else {
		st.lambda *= lambdaGrow
	}
	s.printIter(di, accepted)

	switch rel := di / st.acc.chisq; {
	case rel <= spec.Stop.Eps:
		return true, nil
	case st.iter >= spec.Stop.MaxIter:
		return true, &ConvergenceError{
			Iters:  st.iter,
			Chisq:  st.acc.chisq,
			Rel:    rel,
			Params: slices.Clone(st.acc.a),
		}
	}
	return false, nil
}

// evalModel fills p.yfit (and jac when non-nil) with the model output
// at p.a. A panic escaping the user callback is reported as a
// ShapeError instead of unwinding through the fit.
func (s *lmSolver) evalModel(p *lmPoint, jac []float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = shapeErrorf("model evaluation panic: %v", r)
		}
	}()
	s.state.eval++
	s.fitter.Model.Eval(s.data.x, p.a, p.yfit, jac)
	return
}

// assemble recomputes chisq, 𝛂 and 𝛃 at p from the residuals and the
// current Jacobian. Only the upper triangle of 𝛂 is accumulated and
// then mirrored, so the matrix is symmetric to the last bit.
func (s *lmSolver) assemble(p *lmPoint) {
	d, st := s.data, s.state
	n, m := d.n, d.m

	chisq := zero
	clear(p.alpha)
	clear(p.beta)
	for i := 0; i < n; i++ {
		w, r := d.w[i], d.y[i]-p.yfit[i]
		row := st.jac[i*m : (i+1)*m]
		chisq += w * r * r
		for j, dj := range row {
			wj := w * dj
			p.beta[j] += wj * r
			alpha := p.alpha[j*m : (j+1)*m]
			for k := j; k < m; k++ {
				alpha[k] += wj * row[k]
			}
		}
	}
	for j := 1; j < m; j++ {
		for k := 0; k < j; k++ {
			p.alpha[j*m+k] = p.alpha[k*m+j]
		}
	}
	p.chisq = chisq
}

// result builds the public Result from the accepted state, inverting
// the final curvature matrix for the covariance estimate.
func (s *lmSolver) result() (*Result, error) {
	st, m := s.state, s.data.m

	covar, err := s.fitter.Solver.Invert(mat.NewDense(m, m, st.acc.alpha))
	if err != nil {
		return nil, &SingularMatrixError{Iter: st.iter, Err: err}
	}

	return &Result{
		YFit:   st.acc.yfit,
		Params: st.acc.a,
		Covar:  covar,
		Summary: Summary{
			NumIter: st.iter,
			NumEval: st.eval,
			Chisq:   st.acc.chisq,
			Lambda:  st.lambda,
		},
	}, nil
}

func (s *lmSolver) printInit() {
	log := s.fitter.logger
	st, d := s.state, s.data
	if log.enable(LogLast) {
		log.log("RUNNING THE LEVENBERG-MARQUARDT CODE\n")
		log.log("N = %d    M = %d\n", d.n, d.m)
	}
	if log.enable(LogEval) {
		log.log("At iterate %5d    chisq= %12.5e    lambda= %12.5e\n", 0, st.acc.chisq, st.lambda)
	}
}

func (s *lmSolver) printIter(di float64, accepted bool) {
	log := s.fitter.logger
	st := s.state
	if log.enable(LogTrace) {
		verdict := "reject"
		if accepted {
			verdict = "accept"
		}
		log.log("At iterate %5d    chisq= %12.5e    lambda= %12.5e    %s dchisq= %.5e\n",
			st.iter, st.acc.chisq, st.lambda, verdict, di)
	} else if log.enable(LogEval) && st.iter%int(log.Level) == 0 {
		log.log("At iterate %5d    chisq= %12.5e    lambda= %12.5e\n", st.iter, st.acc.chisq, st.lambda)
	}
}

func (s *lmSolver) printExit(err error) {
	log := s.fitter.logger
	if !log.enable(LogLast) {
		return
	}
	st := s.state
	if err != nil {
		log.log("Fit stopped at iteration %d: %v\n", st.iter, err)
		return
	}
	log.log("Fit converged: %d iterations, %d evaluations, chisq= %12.5e\n", st.iter, st.eval, st.acc.chisq)
}
