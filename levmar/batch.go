// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package levmar

import (
	"fmt"
	"sync"
)

// BatchResult contains the per-dataset outcome of a batch fit.
type BatchResult struct {
	YFit   []float64 // Model values at the final parameters.
	Params []float64 // Final parameter estimate.
}

// FitBatch fits every dataset independently with the shared model and
// stop condition, returning the per-dataset results in input order.
//
// a0 supplies the initial parameters: either one vector per dataset or
// a single vector broadcast to all of them. Every sub-fit starts from
// its own copy of the guess, so datasets never observe each other's
// state.
//
// The failure policy is all-or-nothing: the error of the lowest-index
// failing dataset is returned wrapped with that index, and no results
// are kept. With Problem.Workers > 1 the independent fits run on a
// worker pool; the reported error is still the lowest-index one, so a
// concurrent batch is indistinguishable from a sequential one.
func (f *Fitter) FitBatch(ds []Dataset, a0 [][]float64) ([]BatchResult, error) {

	if len(ds) == 0 {
		return nil, nil
	}
	if len(a0) != 1 && len(a0) != len(ds) {
		return nil, shapeErrorf("initial parameters must hold 1 or %d vectors, got %d", len(ds), len(a0))
	}

	guess := func(i int) []float64 {
		if len(a0) == 1 {
			return a0[0]
		}
		return a0[i]
	}

	out := make([]BatchResult, len(ds))
	if f.Workers <= 1 {
		for i, d := range ds {
			r, err := f.Fit(d, guess(i))
			if err != nil {
				return nil, fmt.Errorf("levmar: dataset %d: %w", i, err)
			}
			out[i] = BatchResult{YFit: r.YFit, Params: r.Params}
		}
		return out, nil
	}

	errs := make([]error, len(ds))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < f.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if r, err := f.Fit(ds[i], guess(i)); err != nil {
					errs[i] = err
				} else {
					out[i] = BatchResult{YFit: r.YFit, Params: r.Params}
				}
			}
		}()
	}
	for i := range ds {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("levmar: dataset %d: %w", i, err)
		}
	}
	return out, nil
}
