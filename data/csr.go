package data

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/blockscale/pkg/errors"
)

// CSR is an immutable compressed-sparse-row matrix. It satisfies mat.Matrix
// so it can be passed anywhere gonum expects a read-only matrix.
//
// Column indices within a row are strictly increasing. Explicitly stored
// values may be NaN or Inf; only exact zeros are dropped on construction.
type CSR struct {
	r, c    int
	indptr  []int
	indices []int
	data    []float64
}

var _ mat.Matrix = (*CSR)(nil)

// NewCSR builds a CSR matrix from its raw arrays. The slices are retained.
func NewCSR(r, c int, indptr, indices []int, values []float64) (*CSR, error) {
	if r < 0 || c < 0 {
		return nil, errors.NewValidationError("shape", "dimensions must be non-negative", [2]int{r, c})
	}
	if len(indptr) != r+1 {
		return nil, errors.NewShapeMismatchError("NewCSR", "indptr length", r+1, len(indptr))
	}
	if len(indices) != len(values) {
		return nil, errors.NewShapeMismatchError("NewCSR", "values length", len(indices), len(values))
	}
	if indptr[0] != 0 || indptr[r] != len(indices) {
		return nil, errors.NewValueError("NewCSR", "indptr must start at 0 and end at nnz")
	}
	for i := 0; i < r; i++ {
		lo, hi := indptr[i], indptr[i+1]
		if lo > hi {
			return nil, errors.NewValueError("NewCSR", "indptr must be non-decreasing")
		}
		prev := -1
		for _, j := range indices[lo:hi] {
			if j <= prev || j >= c {
				return nil, errors.NewValueError("NewCSR", "column indices must be increasing and within bounds")
			}
			prev = j
		}
	}
	return &CSR{r: r, c: c, indptr: indptr, indices: indices, data: values}, nil
}

// NewCSRFromDense compresses m, keeping every entry that is not exactly zero.
func NewCSRFromDense(m mat.Matrix) *CSR {
	r, c := m.Dims()
	out := &CSR{r: r, c: c, indptr: make([]int, r+1)}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := m.At(i, j); v != 0 {
				out.indices = append(out.indices, j)
				out.data = append(out.data, v)
			}
		}
		out.indptr[i+1] = len(out.indices)
	}
	return out
}

// Dims returns the number of rows and columns.
func (m *CSR) Dims() (r, c int) {
	return m.r, m.c
}

// At returns the element at row i, column j. It panics on out-of-range
// indices, matching gonum's dense types.
func (m *CSR) At(i, j int) float64 {
	if uint(i) >= uint(m.r) {
		panic(mat.ErrRowAccess)
	}
	if uint(j) >= uint(m.c) {
		panic(mat.ErrColAccess)
	}
	lo, hi := m.indptr[i], m.indptr[i+1]
	k := lo + sort.SearchInts(m.indices[lo:hi], j)
	if k < hi && m.indices[k] == j {
		return m.data[k]
	}
	return 0
}

// T returns the transpose view.
func (m *CSR) T() mat.Matrix {
	return mat.Transpose{Matrix: m}
}

// NNZ returns the number of stored entries.
func (m *CSR) NNZ() int {
	return len(m.data)
}

// RowNonZero returns the column indices and values stored for row i. The
// returned slices must not be modified.
func (m *CSR) RowNonZero(i int) ([]int, []float64) {
	lo, hi := m.indptr[i], m.indptr[i+1]
	return m.indices[lo:hi], m.data[lo:hi]
}

// DoNonZero calls fn for every stored entry in row-major order.
func (m *CSR) DoNonZero(fn func(i, j int, v float64)) {
	for i := 0; i < m.r; i++ {
		for k := m.indptr[i]; k < m.indptr[i+1]; k++ {
			fn(i, m.indices[k], m.data[k])
		}
	}
}

// ToDense expands m into a new dense matrix.
func (m *CSR) ToDense() *mat.Dense {
	if m.r == 0 || m.c == 0 {
		return &mat.Dense{}
	}
	out := mat.NewDense(m.r, m.c, nil)
	m.DoNonZero(func(i, j int, v float64) {
		out.Set(i, j, v)
	})
	return out
}

// Clone returns a deep copy of m.
func (m *CSR) Clone() *CSR {
	return &CSR{
		r:       m.r,
		c:       m.c,
		indptr:  append([]int(nil), m.indptr...),
		indices: append([]int(nil), m.indices...),
		data:    append([]float64(nil), m.data...),
	}
}

// sliceColumns copies columns [j0, j1).
func (m *CSR) sliceColumns(j0, j1 int) *CSR {
	out := &CSR{r: m.r, c: j1 - j0, indptr: make([]int, m.r+1)}
	for i := 0; i < m.r; i++ {
		cols, vals := m.RowNonZero(i)
		start := sort.SearchInts(cols, j0)
		for k := start; k < len(cols) && cols[k] < j1; k++ {
			out.indices = append(out.indices, cols[k]-j0)
			out.data = append(out.data, vals[k])
		}
		out.indptr[i+1] = len(out.indices)
	}
	return out
}

// selectRows copies the rows listed in idx, in that order. Rows may repeat.
func (m *CSR) selectRows(idx []int) *CSR {
	out := &CSR{r: len(idx), c: m.c, indptr: make([]int, len(idx)+1)}
	for k, i := range idx {
		cols, vals := m.RowNonZero(i)
		out.indices = append(out.indices, cols...)
		out.data = append(out.data, vals...)
		out.indptr[k+1] = len(out.indices)
	}
	return out
}

// hstackCSR concatenates matrices with equal row counts along columns.
func hstackCSR(parts []*CSR) *CSR {
	r := parts[0].r
	out := &CSR{r: r, indptr: make([]int, r+1)}
	for _, p := range parts {
		out.c += p.c
	}
	for i := 0; i < r; i++ {
		offset := 0
		for _, p := range parts {
			cols, vals := p.RowNonZero(i)
			for k, j := range cols {
				out.indices = append(out.indices, j+offset)
				out.data = append(out.data, vals[k])
			}
			offset += p.c
		}
		out.indptr[i+1] = len(out.indices)
	}
	return out
}

// vstackCSR concatenates matrices with equal column counts along rows.
func vstackCSR(parts []*CSR) *CSR {
	out := &CSR{c: parts[0].c, indptr: []int{0}}
	for _, p := range parts {
		base := len(out.indices)
		out.indices = append(out.indices, p.indices...)
		out.data = append(out.data, p.data...)
		for i := 1; i <= p.r; i++ {
			out.indptr = append(out.indptr, base+p.indptr[i])
		}
		out.r += p.r
	}
	return out
}
