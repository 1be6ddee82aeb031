package preprocessing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/blockscale/core/parallel"
	"github.com/YuminosukeSato/blockscale/data"
	"github.com/YuminosukeSato/blockscale/pkg/errors"
)

func TestMeanKernelPerBand(t *testing.T) {
	// バンド0: 行 {0, 2}, {2, 4} / バンド1: 行 {10, 20}
	x, err := data.NewArray(mat.NewDense(3, 2, []float64{0, 2, 2, 4, 10, 20}), 2, 1)
	require.NoError(t, err)

	parts, err := MeanKernel(context.Background(), parallel.NewLocalScheduler(), x)
	require.NoError(t, err)
	require.Len(t, parts, 2)

	assert.Equal(t, BandStatistic{Band: 0, Rows: 2, Values: []float64{1, 3}}, parts[0])
	assert.Equal(t, BandStatistic{Band: 1, Rows: 1, Values: []float64{10, 20}}, parts[1])

	// 行数で重み付けした結合は全体の平均に一致する
	assert.InDeltaSlice(t, []float64{4, 26.0 / 3}, CombineBands(parts), 1e-12)
}

func TestCombineBandsEmpty(t *testing.T) {
	assert.Nil(t, CombineBands(nil))
}

func TestVarianceKernelUsesGlobalMean(t *testing.T) {
	x, err := data.NewArray(mat.NewDense(4, 1, []float64{1, 3, 5, 7}), 2, 1)
	require.NoError(t, err)
	mean, err := newStatArray([]float64{4}, 1)
	require.NoError(t, err)

	parts, err := VarianceKernel(context.Background(), parallel.NewLocalScheduler(), x, mean)
	require.NoError(t, err)
	require.Len(t, parts, 2)

	// バンド0: ((1-4)^2 + (3-4)^2) / 2 = 5, バンド1: ((5-4)^2 + (7-4)^2) / 2 = 5
	assert.Equal(t, []float64{5}, parts[0].Values)
	assert.Equal(t, []float64{5}, parts[1].Values)
	assert.Equal(t, []float64{5}, CombineBands(parts))
}

func TestVarianceKernelRejectsBadMean(t *testing.T) {
	x, err := data.NewArray(mat.NewDense(2, 2, []float64{1, 2, 3, 4}), 2, 2)
	require.NoError(t, err)
	mean, err := newStatArray([]float64{1, 2, 3}, 2)
	require.NoError(t, err)

	_, err = VarianceKernel(context.Background(), parallel.NewLocalScheduler(), x, mean)
	var sm *errors.ShapeMismatchError
	assert.True(t, errors.As(err, &sm))

	_, err = VarianceKernel(context.Background(), parallel.NewLocalScheduler(), x, nil)
	assert.Error(t, err)
}

func TestTransformKernelKeepsColumnLayout(t *testing.T) {
	x, err := data.NewArray(testMatrix(5, 4), 2, 3)
	require.NoError(t, err)
	stats, err := newFittedStatistics([]float64{0, 0, 0, 0}, []float64{1, 4, 9, 16}, 3)
	require.NoError(t, err)

	out, err := TransformKernel(context.Background(), parallel.NewLocalScheduler(), x, stats)
	require.NoError(t, err)

	assert.Equal(t, x.ColumnWidths(), out.ColumnWidths())
	assert.Equal(t, x.RowHeights(), out.RowHeights())

	got := collect(t, out)
	raw := testMatrix(5, 4)
	for i := 0; i < 5; i++ {
		for j := 0; j < 4; j++ {
			assert.InDelta(t, raw.At(i, j)/float64(j+1), got.At(i, j), 1e-12)
		}
	}
}

func TestRunBandsWrapsTaskErrors(t *testing.T) {
	x, err := data.NewArray(mat.NewDense(6, 1, nil), 2, 1)
	require.NoError(t, err)

	boom := errors.New("corrupt block")
	_, err = runBands(context.Background(), parallel.NewLocalScheduler(), "probe", x,
		func(_ context.Context, band data.RowBand) (int, error) {
			if band.Index == 1 {
				return 0, boom
			}
			return band.Rows, nil
		})
	require.Error(t, err)

	var te *errors.TaskError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "probe", te.Task)
	assert.Equal(t, 1, te.Band)
	assert.True(t, errors.Is(err, boom))
}

func TestRunBandsRecoversPanics(t *testing.T) {
	x, err := data.NewArray(mat.NewDense(2, 1, nil), 1, 1)
	require.NoError(t, err)

	_, err = runBands(context.Background(), parallel.NewLocalScheduler(), "probe", x,
		func(context.Context, data.RowBand) (int, error) {
			var s []int
			return s[3], nil
		})
	var pe *errors.PanicError
	assert.True(t, errors.As(err, &pe))
}
