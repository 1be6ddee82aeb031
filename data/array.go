package data

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/blockscale/core/parallel"
	"github.com/YuminosukeSato/blockscale/pkg/errors"
)

// Array is a logical matrix stored as a grid of blocks.
//
// Every block in a block-row has the same row count and every block in a
// block-column has the same column count. All blocks but the last of each
// axis have the nominal block size. All blocks share one Kind, fixed for the
// lifetime of the Array. An Array is never modified after construction.
type Array struct {
	blocks     [][]Block
	blockShape [2]int
	shape      [2]int
	sparse     bool
}

// RowBand is one block-row of an Array: every column block over a fixed row
// range.
type RowBand struct {
	// Index is the position of the band in the grid.
	Index int
	// Offset is the global index of the band's first row.
	Offset int
	// Rows is the number of rows in the band.
	Rows int
	// Blocks holds the band as a 1×n group.
	Blocks ReadOnlyBlockGroup
}

// NewArray partitions m into blocks of blockRows×blockCols. A *CSR input
// produces a sparse Array; anything else is copied into dense blocks.
func NewArray(m mat.Matrix, blockRows, blockCols int) (*Array, error) {
	if blockRows <= 0 || blockCols <= 0 {
		return nil, errors.NewValidationError("block_shape", "block dimensions must be positive", [2]int{blockRows, blockCols})
	}
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "NewArray")
	}

	rowSizes := splitSizes(r, blockRows)
	colSizes := splitSizes(c, blockCols)
	blocks := make([][]Block, len(rowSizes))

	var source Block
	switch v := m.(type) {
	case *CSR:
		source = NewSparseBlock(v)
	case *mat.Dense:
		source = NewDenseBlock(v)
	default:
		source = NewDenseBlock(mat.DenseCopyOf(m))
	}

	parallel.ParallelizeWithThreshold(len(rowSizes), 4, func(start, end int) {
		for bi := start; bi < end; bi++ {
			i0 := bi * blockRows
			blocks[bi] = make([]Block, len(colSizes))
			for bj := range colSizes {
				j0 := bj * blockCols
				blocks[bi][bj] = source.slice(i0, i0+rowSizes[bi], j0, j0+colSizes[bj])
			}
		}
	})

	return &Array{
		blocks:     blocks,
		blockShape: [2]int{blockRows, blockCols},
		shape:      [2]int{r, c},
		sparse:     source.IsSparse(),
	}, nil
}

// NewSparseArray is NewArray for CSR input.
func NewSparseArray(m *CSR, blockRows, blockCols int) (*Array, error) {
	return NewArray(m, blockRows, blockCols)
}

// FromBlocks builds an Array from an existing grid, validating the block
// layout against the nominal block shape. The grid is taken over as is.
func FromBlocks(blocks [][]Block, blockRows, blockCols int) (*Array, error) {
	const op = "FromBlocks"
	if blockRows <= 0 || blockCols <= 0 {
		return nil, errors.NewValidationError("block_shape", "block dimensions must be positive", [2]int{blockRows, blockCols})
	}
	if len(blocks) == 0 || len(blocks[0]) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, op)
	}

	nCols := len(blocks[0])
	kind := blocks[0][0].Kind()
	rowSizes := make([]int, len(blocks))
	colSizes := make([]int, nCols)

	for i, row := range blocks {
		if len(row) != nCols {
			return nil, errors.NewShapeMismatchError(op, "blocks per row", nCols, len(row))
		}
		for j, b := range row {
			if b.IsEmpty() {
				return nil, errors.Wrap(errors.ErrEmptyData, op)
			}
			if b.Kind() != kind {
				return nil, errors.NewUnsupportedRepresentationError(op, "mixed dense and sparse blocks")
			}
			r, c := b.Dims()
			if j == 0 {
				rowSizes[i] = r
			} else if r != rowSizes[i] {
				return nil, errors.NewShapeMismatchError(op, fmt.Sprintf("rows of block-row %d", i), rowSizes[i], r)
			}
			if i == 0 {
				colSizes[j] = c
			} else if c != colSizes[j] {
				return nil, errors.NewShapeMismatchError(op, fmt.Sprintf("cols of block-column %d", j), colSizes[j], c)
			}
		}
	}
	if err := checkNominal(op, "block rows", rowSizes, blockRows); err != nil {
		return nil, err
	}
	if err := checkNominal(op, "block cols", colSizes, blockCols); err != nil {
		return nil, err
	}

	return &Array{
		blocks:     blocks,
		blockShape: [2]int{blockRows, blockCols},
		shape:      [2]int{sum(rowSizes), sum(colSizes)},
		sparse:     kind == KindSparse,
	}, nil
}

// checkNominal verifies that every extent but the last equals size and the
// last is within (0, size].
func checkNominal(op, what string, sizes []int, size int) error {
	for i, s := range sizes {
		last := i == len(sizes)-1
		if (!last && s != size) || (last && (s <= 0 || s > size)) {
			return errors.NewShapeMismatchError(op, what, size, s)
		}
	}
	return nil
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

// Shape returns the logical matrix size.
func (a *Array) Shape() (rows, cols int) {
	return a.shape[0], a.shape[1]
}

// BlockShape returns the nominal block size.
func (a *Array) BlockShape() (rows, cols int) {
	return a.blockShape[0], a.blockShape[1]
}

// BlocksShape returns the number of block-rows and block-columns.
func (a *Array) BlocksShape() (rowBands, colBands int) {
	return len(a.blocks), len(a.blocks[0])
}

// IsSparse reports whether the blocks are CSR-backed.
func (a *Array) IsSparse() bool {
	return a.sparse
}

// Kind returns the storage class shared by all blocks.
func (a *Array) Kind() Kind {
	if a.sparse {
		return KindSparse
	}
	return KindDense
}

// Block returns block (i, j).
func (a *Array) Block(i, j int) Block {
	return a.blocks[i][j]
}

// RowHeights lists the row count of each block-row.
func (a *Array) RowHeights() []int {
	return splitSizes(a.shape[0], a.blockShape[0])
}

// ColumnWidths lists the column count of each block-column.
func (a *Array) ColumnWidths() []int {
	return splitSizes(a.shape[1], a.blockShape[1])
}

// RowBands returns the block-rows in order.
func (a *Array) RowBands() []RowBand {
	heights := a.RowHeights()
	bands := make([]RowBand, len(a.blocks))
	offset := 0
	for i, row := range a.blocks {
		bands[i] = RowBand{
			Index:  i,
			Offset: offset,
			Rows:   heights[i],
			Blocks: NewReadOnlyBlockGroup([][]Block{row}),
		}
		offset += heights[i]
	}
	return bands
}

// BandGroup returns the listed block-rows, in the given order, as one group.
func (a *Array) BandGroup(bands []int) ReadOnlyBlockGroup {
	grid := make([][]Block, len(bands))
	for k, i := range bands {
		grid[k] = a.blocks[i]
	}
	return NewReadOnlyBlockGroup(grid)
}

// Collect merges every block into one matrix: *mat.Dense for dense arrays,
// *CSR for sparse ones.
func (a *Array) Collect() (mat.Matrix, error) {
	merged, err := MergeGrid(a.blocks)
	if err != nil {
		return nil, err
	}
	return merged.Matrix(), nil
}

// String summarizes the layout.
func (a *Array) String() string {
	rb, cb := a.BlocksShape()
	return fmt.Sprintf("Array(shape=(%d, %d), block_shape=(%d, %d), blocks=(%d, %d), %s)",
		a.shape[0], a.shape[1], a.blockShape[0], a.blockShape[1], rb, cb, a.Kind())
}

// slice copies rows [i0, i1) and columns [j0, j1).
func (b Block) slice(i0, i1, j0, j1 int) Block {
	if b.kind == KindSparse {
		rows := make([]int, i1-i0)
		for k := range rows {
			rows[k] = i0 + k
		}
		return NewSparseBlock(b.sparse.selectRows(rows).sliceColumns(j0, j1))
	}
	return NewDenseBlock(mat.DenseCopyOf(b.dense.Slice(i0, i1, j0, j1)))
}
