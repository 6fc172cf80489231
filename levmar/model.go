// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package levmar

// Model evaluates a parametric curve and its partial derivatives.
//   - 𝒇(𝐱;𝐚) : predicted value for every sample 𝐱ᵢ at parameters 𝐚
//   - ∂𝒇ᵢ/∂𝐚ⱼ : the n×m Jacobian of the predictions
//
// Eval fills y[i] with the model value at x[i]. When jac is non-nil it
// holds n rows of len(a) entries (row-major) and jac[i*len(a)+j] must
// receive ∂y[i]/∂a[j]. A nil jac asks for values only.
//
// Eval must be deterministic in (x, a) and must not retain the argument
// slices. Concurrent batch fits call Eval from multiple goroutines, so
// implementations must not share mutable state between calls.
type Model interface {
	Eval(x, a, y, jac []float64)
}

// ModelFunc adapts an ordinary function to the Model interface.
type ModelFunc func(x, a, y, jac []float64)

// Eval calls fn(x, a, y, jac).
func (fn ModelFunc) Eval(x, a, y, jac []float64) { fn(x, a, y, jac) }
