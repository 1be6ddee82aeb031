package data

import (
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/blockscale/pkg/errors"
)

// MergeBlocks concatenates one row of blocks along columns. All blocks must
// share the row count and the storage kind; the result keeps that kind.
func MergeBlocks(blocks []Block) (Block, error) {
	if len(blocks) == 0 {
		return Block{}, errors.Wrap(errors.ErrEmptyData, "MergeBlocks")
	}
	kind := blocks[0].Kind()
	rows, _ := blocks[0].Dims()
	cols := 0
	for _, b := range blocks {
		if b.IsEmpty() {
			return Block{}, errors.Wrap(errors.ErrEmptyData, "MergeBlocks: unset block")
		}
		if b.Kind() != kind {
			return Block{}, errors.NewUnsupportedRepresentationError("MergeBlocks", "mixed dense and sparse blocks")
		}
		r, c := b.Dims()
		if r != rows {
			return Block{}, errors.NewShapeMismatchError("MergeBlocks", "block rows", rows, r)
		}
		cols += c
	}
	if len(blocks) == 1 {
		return blocks[0], nil
	}

	if kind == KindSparse {
		parts := make([]*CSR, len(blocks))
		for i, b := range blocks {
			parts[i] = b.sparse
		}
		return NewSparseBlock(hstackCSR(parts)), nil
	}

	out := mat.NewDense(rows, cols, nil)
	offset := 0
	for _, b := range blocks {
		_, c := b.Dims()
		out.Slice(0, rows, offset, offset+c).(*mat.Dense).Copy(b.dense)
		offset += c
	}
	return NewDenseBlock(out), nil
}

// StackRows concatenates blocks along rows. All blocks must share the column
// count and the storage kind.
func StackRows(blocks []Block) (Block, error) {
	if len(blocks) == 0 {
		return Block{}, errors.Wrap(errors.ErrEmptyData, "StackRows")
	}
	kind := blocks[0].Kind()
	_, cols := blocks[0].Dims()
	rows := 0
	for _, b := range blocks {
		if b.Kind() != kind {
			return Block{}, errors.NewUnsupportedRepresentationError("StackRows", "mixed dense and sparse blocks")
		}
		r, c := b.Dims()
		if c != cols {
			return Block{}, errors.NewShapeMismatchError("StackRows", "block cols", cols, c)
		}
		rows += r
	}
	if len(blocks) == 1 {
		return blocks[0], nil
	}

	if kind == KindSparse {
		parts := make([]*CSR, len(blocks))
		for i, b := range blocks {
			parts[i] = b.sparse
		}
		return NewSparseBlock(vstackCSR(parts)), nil
	}

	out := mat.NewDense(rows, cols, nil)
	offset := 0
	for _, b := range blocks {
		r, _ := b.Dims()
		out.Slice(offset, offset+r, 0, cols).(*mat.Dense).Copy(b.dense)
		offset += r
	}
	return NewDenseBlock(out), nil
}

// MergeGrid assembles a two-dimensional grid of blocks into one block: each
// grid row is merged along columns, then the rows are stacked.
func MergeGrid(grid [][]Block) (Block, error) {
	if len(grid) == 0 {
		return Block{}, errors.Wrap(errors.ErrEmptyData, "MergeGrid")
	}
	rows := make([]Block, len(grid))
	for i, row := range grid {
		merged, err := MergeBlocks(row)
		if err != nil {
			return Block{}, err
		}
		rows[i] = merged
	}
	return StackRows(rows)
}

// SplitIntoBlocks partitions b into targetCount column blocks of width
// blockColWidth; the last block may be narrower. The storage kind is kept.
func SplitIntoBlocks(b Block, blockColWidth, targetCount int) ([]Block, error) {
	if blockColWidth <= 0 {
		return nil, errors.NewValidationError("blockColWidth", "must be positive", blockColWidth)
	}
	if targetCount <= 0 {
		return nil, errors.NewValidationError("targetCount", "must be positive", targetCount)
	}
	_, cols := b.Dims()
	if need := splitCount(cols, blockColWidth); need != targetCount {
		return nil, errors.NewShapeMismatchError("SplitIntoBlocks", "column blocks", targetCount, need)
	}
	out := make([]Block, targetCount)
	for i := range out {
		j0 := i * blockColWidth
		j1 := min(j0+blockColWidth, cols)
		out[i] = b.sliceColumns(j0, j1)
	}
	return out, nil
}

// splitCount is the number of blocks of the given size needed to cover n.
func splitCount(n, size int) int {
	return (n + size - 1) / size
}

// splitSizes lists the block extents covering n with nominal size.
func splitSizes(n, size int) []int {
	sizes := make([]int, splitCount(n, size))
	for i := range sizes {
		sizes[i] = min(size, n-i*size)
	}
	return sizes
}

// ReadOnlyBlockGroup is a two-dimensional collection of blocks handed to a
// task as input. The task may read and merge the blocks but never replace
// them.
type ReadOnlyBlockGroup struct {
	blocks [][]Block
}

// NewReadOnlyBlockGroup copies the grid structure; blocks themselves are
// immutable and shared.
func NewReadOnlyBlockGroup(blocks [][]Block) ReadOnlyBlockGroup {
	grid := make([][]Block, len(blocks))
	for i, row := range blocks {
		grid[i] = append([]Block(nil), row...)
	}
	return ReadOnlyBlockGroup{blocks: grid}
}

// Dims returns the grid size.
func (g ReadOnlyBlockGroup) Dims() (rows, cols int) {
	if len(g.blocks) == 0 {
		return 0, 0
	}
	return len(g.blocks), len(g.blocks[0])
}

// At returns block (i, j).
func (g ReadOnlyBlockGroup) At(i, j int) Block {
	return g.blocks[i][j]
}

// Merge assembles the whole group into one block.
func (g ReadOnlyBlockGroup) Merge() (Block, error) {
	return MergeGrid(g.blocks)
}

// WriteBlockGroup is the output collection of a task: a fixed number of
// slots the task fills. It is safe for concurrent use.
type WriteBlockGroup struct {
	mu     sync.Mutex
	blocks []Block
}

// NewWriteBlockGroup returns a group with n empty slots.
func NewWriteBlockGroup(n int) *WriteBlockGroup {
	return &WriteBlockGroup{blocks: make([]Block, n)}
}

// Len returns the number of slots.
func (g *WriteBlockGroup) Len() int {
	return len(g.blocks)
}

// Set stores b in slot i.
func (g *WriteBlockGroup) Set(i int, b Block) error {
	if i < 0 || i >= len(g.blocks) {
		return errors.NewValueError("WriteBlockGroup.Set", "slot index out of range")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.blocks[i] = b
	return nil
}

// SetAll stores blocks into the slots in order; the lengths must match.
func (g *WriteBlockGroup) SetAll(blocks []Block) error {
	if len(blocks) != len(g.blocks) {
		return errors.NewShapeMismatchError("WriteBlockGroup.SetAll", "blocks", len(g.blocks), len(blocks))
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	copy(g.blocks, blocks)
	return nil
}

// Blocks returns the filled slots. It fails if any slot is still empty.
func (g *WriteBlockGroup) Blocks() ([]Block, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, b := range g.blocks {
		if b.IsEmpty() {
			return nil, errors.NewValueError("WriteBlockGroup.Blocks", "output slot was never written")
		}
	}
	return append([]Block(nil), g.blocks...), nil
}
