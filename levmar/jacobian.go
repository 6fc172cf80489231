package levmar

import "math"

var sqrtEps = math.Sqrt(math.Nextafter(1, 2) - 1)
var cubeEps = math.Pow(math.Nextafter(1, 2)-1, float64(1)/3)

// DiffMethod selects the finite difference scheme used by FiniteDiff.
type DiffMethod int

const (
	// Forward use the first order accuracy forward difference.
	Forward DiffMethod = iota
	// Central use the second order accuracy central difference.
	Central
)

// FiniteDiff wraps a value-only model function into a Model whose
// Jacobian is estimated by finite differences on the parameters.
//
// The step for parameter t is h = 𝚌𝚘𝚙𝚢𝚜𝚒𝚐𝚗(eps,t)·𝚖𝚊𝚡(1,|t|) with
// eps = √𝛜 for Forward (one extra evaluation per parameter) and ∛𝛜 for
// Central (two extra evaluations per parameter), snapped to an exactly
// representable value before dividing.
//
// The parameters are perturbed in place but restored before Eval
// returns, and scratch is allocated per call, so the wrapper stays
// safe for concurrent batch fits as long as fn itself is.
//
// # Reference:
//
//   - https://en.wikipedia.org/wiki/Finite_difference
//   - https://github.com/scipy/scipy/blob/main/scipy/optimize/_numdiff.py
//
// # License
//
//   - https://github.com/scipy/scipy/blob/main/LICENSE.txt
func FiniteDiff(fn func(x, a, y []float64), method DiffMethod) Model {
	if method != Forward && method != Central {
		panic("unknown method")
	}
	return &diffModel{fn: fn, method: method}
}

type diffModel struct {
	fn     func(x, a, y []float64)
	method DiffMethod
}

func (dm *diffModel) Eval(x, a, y, jac []float64) {
	dm.fn(x, a, y)
	if jac == nil {
		return
	}

	m := len(a)
	eps := sqrtEps
	if dm.method == Central {
		eps = cubeEps
	}

	f1 := make([]float64, len(x))
	f2 := y
	if dm.method == Central {
		f2 = make([]float64, len(x))
	}

	for j, t := range a {
		s := math.Copysign(eps, t) * math.Max(1.0, math.Abs(t))
		if d := (t + s) - t; d != 0 {
			s = d
		}
		switch dm.method {
		case Forward:
			a[j] = t + s
			dm.fn(x, a, f1)
			d := 1.0 / s
			for i := range f1 {
				jac[i*m+j] = (f1[i] - f2[i]) * d
			}
		case Central:
			a[j] = t - s
			dm.fn(x, a, f1)
			a[j] = t + s
			dm.fn(x, a, f2)
			d := 1.0 / (2 * s)
			for i := range f1 {
				jac[i*m+j] = (f2[i] - f1[i]) * d
			}
		}
		a[j] = t
	}
}
