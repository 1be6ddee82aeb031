package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/blockscale/pkg/errors"
)

func TestLoadData(t *testing.T) {
	x := seq(10, 3)
	y := seq(10, 1)

	ds, err := LoadData(x, y, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, 4, ds.SubsetSize())
	assert.Equal(t, 10, ds.NSamples())
	assert.Equal(t, 3, ds.NFeatures())
	assert.False(t, ds.IsSparse())

	last, err := ds.Subset(2)
	require.NoError(t, err)
	require.True(t, last.HasLabels)
	r, c := last.Samples.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, x.At(8, 0), last.Samples.Matrix().At(0, 0))
	assert.Equal(t, y.At(9, 0), last.Labels.Matrix().At(1, 0))

	_, err = ds.Subset(3)
	assert.Error(t, err)
}

func TestLoadDataWithoutLabels(t *testing.T) {
	ds, err := LoadData(seq(3, 2), nil, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
	assert.Nil(t, ds.Labels())

	s, err := ds.Subset(0)
	require.NoError(t, err)
	assert.False(t, s.HasLabels)
	assert.True(t, s.Labels.IsEmpty())
}

func TestLoadDataSparse(t *testing.T) {
	x := NewCSRFromDense(mat.NewDense(3, 2, []float64{1, 0, 0, 0, 0, 2}))
	ds, err := LoadData(x, nil, 2)
	require.NoError(t, err)
	assert.True(t, ds.IsSparse())
	assert.Equal(t, 2, ds.Len())
}

func TestLoadDataValidation(t *testing.T) {
	_, err := LoadData(seq(3, 2), nil, 0)
	var ve *errors.ValidationError
	assert.True(t, errors.As(err, &ve))

	_, err = LoadData(seq(3, 2), seq(2, 1), 2)
	var sm *errors.ShapeMismatchError
	require.True(t, errors.As(err, &sm))
	assert.Equal(t, 3, sm.Expected)
	assert.Equal(t, 2, sm.Got)
}

func TestNewDataset(t *testing.T) {
	x, err := NewArray(seq(4, 2), 2, 2)
	require.NoError(t, err)
	y, err := NewArray(seq(4, 1), 2, 1)
	require.NoError(t, err)

	ds, err := NewDataset(x, y)
	require.NoError(t, err)
	assert.Same(t, x, ds.Samples())
	assert.Same(t, y, ds.Labels())
	assert.Equal(t, "Dataset(samples=4, features=2, subsets=2, subset_size=2, labels=true)", ds.String())

	split, err := NewArray(seq(4, 2), 2, 1)
	require.NoError(t, err)
	_, err = NewDataset(split, nil)
	assert.Error(t, err, "samples with several block-columns are not subsets")

	other, err := NewArray(seq(4, 1), 3, 1)
	require.NoError(t, err)
	_, err = NewDataset(x, other)
	assert.Error(t, err)
}
