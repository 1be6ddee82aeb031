package data

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/blockscale/pkg/errors"
)

// Kind is the storage class of a Block.
type Kind uint8

const (
	// KindDense blocks are backed by *mat.Dense.
	KindDense Kind = iota
	// KindSparse blocks are backed by *CSR.
	KindSparse
)

func (k Kind) String() string {
	if k == KindSparse {
		return "sparse"
	}
	return "dense"
}

// Block is one cell of an Array grid: a dense or CSR sub-matrix.
//
// Blocks are values with immutable contents. Every operation returns a new
// Block, so a block held by one Array is never modified through another.
type Block struct {
	kind   Kind
	dense  *mat.Dense
	sparse *CSR
}

// NewDenseBlock wraps m. The block takes ownership of m.
func NewDenseBlock(m *mat.Dense) Block {
	return Block{kind: KindDense, dense: m}
}

// NewSparseBlock wraps m. The block takes ownership of m.
func NewSparseBlock(m *CSR) Block {
	return Block{kind: KindSparse, sparse: m}
}

// newBlockLike builds a block of the given kind from dense values,
// compressing when kind is sparse.
func newBlockLike(kind Kind, m *mat.Dense) Block {
	if kind == KindSparse {
		return NewSparseBlock(NewCSRFromDense(m))
	}
	return NewDenseBlock(m)
}

// Kind returns the storage class.
func (b Block) Kind() Kind {
	return b.kind
}

// IsSparse reports whether the block is CSR-backed.
func (b Block) IsSparse() bool {
	return b.kind == KindSparse
}

// IsEmpty reports whether the block holds no matrix at all.
func (b Block) IsEmpty() bool {
	return b.dense == nil && b.sparse == nil
}

// Dims returns the block's rows and columns.
func (b Block) Dims() (r, c int) {
	switch {
	case b.sparse != nil:
		return b.sparse.Dims()
	case b.dense != nil:
		return b.dense.Dims()
	}
	return 0, 0
}

// Matrix returns a read-only view of the block contents.
func (b Block) Matrix() mat.Matrix {
	if b.kind == KindSparse {
		return b.sparse
	}
	return b.dense
}

// ToDense returns a dense copy of the block.
func (b Block) ToDense() *mat.Dense {
	if b.kind == KindSparse {
		return b.sparse.ToDense()
	}
	return mat.DenseCopyOf(b.dense)
}

// Clone returns a deep copy.
func (b Block) Clone() Block {
	if b.kind == KindSparse {
		return NewSparseBlock(b.sparse.Clone())
	}
	return NewDenseBlock(mat.DenseCopyOf(b.dense))
}

// ColumnSums returns the sum of every column.
func (b Block) ColumnSums() []float64 {
	r, c := b.Dims()
	sums := make([]float64, c)
	if b.kind == KindSparse {
		b.sparse.DoNonZero(func(_, j int, v float64) {
			sums[j] += v
		})
		return sums
	}
	for i := 0; i < r; i++ {
		floats.Add(sums, b.dense.RawRowView(i))
	}
	return sums
}

// SquaredDeviationSums returns Σ_i (x_ij - center_j)^2 for every column j.
func (b Block) SquaredDeviationSums(center []float64) ([]float64, error) {
	r, c := b.Dims()
	if len(center) != c {
		return nil, errors.NewShapeMismatchError("SquaredDeviationSums", "features", c, len(center))
	}
	sums := make([]float64, c)
	if b.kind == KindSparse {
		// Implicit zeros contribute center_j^2 each.
		stored := make([]int, c)
		b.sparse.DoNonZero(func(_, j int, v float64) {
			d := v - center[j]
			sums[j] += d * d
			stored[j]++
		})
		for j := range sums {
			sums[j] += float64(r-stored[j]) * center[j] * center[j]
		}
		return sums, nil
	}
	diff := make([]float64, c)
	for i := 0; i < r; i++ {
		floats.SubTo(diff, b.dense.RawRowView(i), center)
		floats.Mul(diff, diff)
		floats.Add(sums, diff)
	}
	return sums, nil
}

// ElementwiseSub subtracts row from every row of the block.
func (b Block) ElementwiseSub(row []float64) (Block, error) {
	return b.broadcast("ElementwiseSub", row, func(v, s float64) float64 { return v - s })
}

// ElementwiseAdd adds row to every row of the block.
func (b Block) ElementwiseAdd(row []float64) (Block, error) {
	return b.broadcast("ElementwiseAdd", row, func(v, s float64) float64 { return v + s })
}

// ElementwiseDivSqrt divides column j by sqrt(row[j]). A zero entry in row
// yields ±Inf or NaN, exactly as IEEE division does.
func (b Block) ElementwiseDivSqrt(row []float64) (Block, error) {
	return b.broadcast("ElementwiseDivSqrt", row, func(v, s float64) float64 { return v / math.Sqrt(s) })
}

// ElementwiseMulSqrt multiplies column j by sqrt(row[j]).
func (b Block) ElementwiseMulSqrt(row []float64) (Block, error) {
	return b.broadcast("ElementwiseMulSqrt", row, func(v, s float64) float64 { return v * math.Sqrt(s) })
}

// broadcast applies fn(x_ij, row_j) to every element, implicit zeros
// included, and returns a block of the same kind.
func (b Block) broadcast(op string, row []float64, fn func(v, s float64) float64) (Block, error) {
	_, c := b.Dims()
	if len(row) != c {
		return Block{}, errors.NewShapeMismatchError(op, "features", c, len(row))
	}
	src := b.Matrix()
	if b.kind == KindSparse {
		src = b.sparse.ToDense()
	}
	var out mat.Dense
	out.Apply(func(_, j int, v float64) float64 {
		return fn(v, row[j])
	}, src)
	return newBlockLike(b.kind, &out), nil
}

// SelectRows returns a new block made of the listed rows, in order. Indices
// may repeat.
func (b Block) SelectRows(idx []int) (Block, error) {
	r, c := b.Dims()
	for _, i := range idx {
		if i < 0 || i >= r {
			return Block{}, errors.NewValueError("SelectRows", "row index out of range")
		}
	}
	if len(idx) == 0 {
		return Block{}, errors.Wrap(errors.ErrEmptyData, "SelectRows")
	}
	if b.kind == KindSparse {
		return NewSparseBlock(b.sparse.selectRows(idx)), nil
	}
	out := mat.NewDense(len(idx), c, nil)
	for k, i := range idx {
		out.SetRow(k, b.dense.RawRowView(i))
	}
	return NewDenseBlock(out), nil
}

// sliceColumns copies columns [j0, j1).
func (b Block) sliceColumns(j0, j1 int) Block {
	if b.kind == KindSparse {
		return NewSparseBlock(b.sparse.sliceColumns(j0, j1))
	}
	r, _ := b.Dims()
	return NewDenseBlock(mat.DenseCopyOf(b.dense.Slice(0, r, j0, j1)))
}
