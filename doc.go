// Package blockscale standardizes and resamples block-partitioned matrices in
// parallel.
//
// A logical matrix is stored as a grid of dense (gonum mat.Dense) or sparse
// (CSR) blocks. Every kernel submits one task per row-band to a scheduler, so
// a call scales with the number of row-bands rather than the matrix size.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//	    "log"
//
//	    "github.com/YuminosukeSato/blockscale/data"
//	    "github.com/YuminosukeSato/blockscale/preprocessing"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(4, 2, []float64{1, 10, 2, 20, 3, 30, 4, 40})
//
//	    // 2×2 blocks
//	    x, err := data.NewArray(X, 2, 2)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    scaler := preprocessing.NewStandardScaler()
//	    xs, err := scaler.FitTransform(context.Background(), x)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    out, _ := xs.Collect()
//	    log.Println(mat.Formatted(out))
//	}
//
// # Packages
//
//   - data: Array (the block grid), Block, CSR, merge/split helpers, Dataset
//   - preprocessing: mean / variance / transform kernels and StandardScaler
//   - utils: Shuffle and Resample
//   - core/parallel: Scheduler, Submit / Future, Prometheus metrics
//   - core/model: estimator state and the Transformer interface
//   - pkg/errors: typed errors, warnings and panic recovery
//   - pkg/log: structured logging (zerolog by default, slog helpers)
//
// # Concurrency
//
// Arrays are never modified after construction. Transform, Shuffle and
// Resample return new arrays, so concurrent readers of an input are never
// affected. If any row-band task fails, the whole call fails and no partial
// result is returned.
//
// # Sparse input
//
// Sparse arrays stay sparse through Transform, Shuffle and Resample. Note
// that centering makes implicit zeros non-zero, so a standardized sparse
// block is usually much denser than its input.
package blockscale
