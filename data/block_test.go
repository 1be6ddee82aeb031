package data

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/blockscale/pkg/errors"
)

func denseBlock(r, c int, v []float64) Block {
	return NewDenseBlock(mat.NewDense(r, c, v))
}

func sparseBlock(r, c int, v []float64) Block {
	return NewSparseBlock(NewCSRFromDense(mat.NewDense(r, c, v)))
}

func TestBlockKind(t *testing.T) {
	d := denseBlock(1, 1, []float64{1})
	s := sparseBlock(1, 1, []float64{1})

	assert.Equal(t, KindDense, d.Kind())
	assert.Equal(t, KindSparse, s.Kind())
	assert.False(t, d.IsSparse())
	assert.True(t, s.IsSparse())
	assert.Equal(t, "dense", d.Kind().String())
	assert.Equal(t, "sparse", s.Kind().String())
	assert.True(t, Block{}.IsEmpty())
}

func TestBlockColumnSums(t *testing.T) {
	v := []float64{1, 0, 3, 0, 5, 6}
	for _, b := range []Block{denseBlock(2, 3, v), sparseBlock(2, 3, v)} {
		assert.Equal(t, []float64{1, 5, 9}, b.ColumnSums(), b.Kind().String())
	}
}

func TestBlockSquaredDeviationSums(t *testing.T) {
	// 列0: [1, 3] 平均2 → 1+1 = 2
	// 列1: [0, 4] 平均2 → 4+4 = 8
	v := []float64{1, 0, 3, 4}
	center := []float64{2, 2}
	for _, b := range []Block{denseBlock(2, 2, v), sparseBlock(2, 2, v)} {
		got, err := b.SquaredDeviationSums(center)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{2, 8}, got, 1e-12, b.Kind().String())
	}

	_, err := denseBlock(2, 2, v).SquaredDeviationSums([]float64{1})
	var sm *errors.ShapeMismatchError
	assert.True(t, errors.As(err, &sm))
}

func TestBlockElementwise(t *testing.T) {
	v := []float64{2, 0, 4, 8}
	for _, b := range []Block{denseBlock(2, 2, v), sparseBlock(2, 2, v)} {
		sub, err := b.ElementwiseSub([]float64{2, 0})
		require.NoError(t, err)
		assert.Equal(t, b.Kind(), sub.Kind())
		assert.True(t, mat.Equal(mat.NewDense(2, 2, []float64{0, 0, 2, 8}), sub.Matrix()))

		div, err := sub.ElementwiseDivSqrt([]float64{4, 16})
		require.NoError(t, err)
		assert.True(t, mat.Equal(mat.NewDense(2, 2, []float64{0, 0, 1, 2}), div.Matrix()))

		mul, err := div.ElementwiseMulSqrt([]float64{4, 16})
		require.NoError(t, err)
		add, err := mul.ElementwiseAdd([]float64{2, 0})
		require.NoError(t, err)
		assert.True(t, mat.Equal(mat.NewDense(2, 2, v), add.Matrix()))
	}
}

func TestBlockDivByZeroVariance(t *testing.T) {
	b := denseBlock(2, 1, []float64{1, 0})
	out, err := b.ElementwiseDivSqrt([]float64{0})
	require.NoError(t, err)
	assert.True(t, math.IsInf(out.Matrix().At(0, 0), 1))
	assert.True(t, math.IsNaN(out.Matrix().At(1, 0)))
}

func TestBlockElementwiseShapeMismatch(t *testing.T) {
	_, err := denseBlock(1, 2, []float64{1, 2}).ElementwiseSub([]float64{1, 2, 3})
	var sm *errors.ShapeMismatchError
	require.True(t, errors.As(err, &sm))
	assert.Equal(t, 2, sm.Expected)
	assert.Equal(t, 3, sm.Got)
}

func TestBlockSelectRows(t *testing.T) {
	v := []float64{1, 2, 3, 4, 5, 6}
	for _, b := range []Block{denseBlock(3, 2, v), sparseBlock(3, 2, v)} {
		out, err := b.SelectRows([]int{2, 2, 0})
		require.NoError(t, err)
		assert.Equal(t, b.Kind(), out.Kind())
		assert.True(t, mat.Equal(mat.NewDense(3, 2, []float64{5, 6, 5, 6, 1, 2}), out.Matrix()))

		_, err = b.SelectRows([]int{3})
		assert.Error(t, err)
	}
}

func TestBlockCloneIsIndependent(t *testing.T) {
	b := denseBlock(1, 2, []float64{1, 2})
	c := b.Clone()
	c.dense.Set(0, 0, 9)
	assert.Equal(t, 1.0, b.Matrix().At(0, 0))

	d := b.ToDense()
	d.Set(0, 1, 9)
	assert.Equal(t, 2.0, b.Matrix().At(0, 1))
}
