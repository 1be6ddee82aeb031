package preprocessing

import (
	"context"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/blockscale/core/parallel"
	"github.com/YuminosukeSato/blockscale/data"
	"github.com/YuminosukeSato/blockscale/pkg/errors"
)

// タスク名（メトリクスのラベル・TaskError に使用）
const (
	taskMean             = "mean"
	taskVariance         = "variance"
	taskTransform        = "transform"
	taskInverseTransform = "inverse_transform"
)

// BandStatistic は行バンド1つ分の列ごとの部分統計量
type BandStatistic struct {
	// Band は行バンドの番号
	Band int
	// Rows は行バンドの行数（結合時の重み）
	Rows int
	// Values は列ごとの値（長さ n_features）
	Values []float64
}

// runBands は行バンドごとに1タスクを投入し、結果をバンド順に返す。
// いずれかのタスクが失敗すると残りのタスクはキャンセルされ、呼び出し全体が失敗する。
func runBands[T any](ctx context.Context, s parallel.Scheduler, name string, x *data.Array,
	fn func(ctx context.Context, band data.RowBand) (T, error)) ([]T, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bands := x.RowBands()
	futures := make([]*parallel.Future[T], len(bands))
	for i, band := range bands {
		futures[i] = parallel.Submit(ctx, s, name, func(ctx context.Context) (T, error) {
			v, err := fn(ctx, band)
			if err != nil {
				var zero T
				return zero, errors.NewTaskError(name, band.Index, err)
			}
			return v, nil
		})
	}
	return parallel.WaitAll(ctx, futures)
}

// rowVector は 1×n のブロック群を結合して行ベクトルを返す
func rowVector(g data.ReadOnlyBlockGroup) ([]float64, error) {
	b, err := g.Merge()
	if err != nil {
		return nil, err
	}
	return b.ToDense().RawRowView(0), nil
}

// MeanKernel は行バンドごとに列平均を計算する。
// 各タスクは行バンドを1つの行列に結合し、(1, n_features) の平均を返す。
func MeanKernel(ctx context.Context, s parallel.Scheduler, x *data.Array) ([]BandStatistic, error) {
	return runBands(ctx, s, taskMean, x, func(_ context.Context, band data.RowBand) (BandStatistic, error) {
		merged, err := band.Blocks.Merge()
		if err != nil {
			return BandStatistic{}, err
		}
		sums := merged.ColumnSums()
		floats.Scale(1/float64(band.Rows), sums)
		return BandStatistic{Band: band.Index, Rows: band.Rows, Values: sums}, nil
	})
}

// VarianceKernel は行バンドごとに mean((X - mean)^2, axis=0) を計算する。
// mean は (1, n_features) の配列で、全タスクに読み取り専用で渡される。
// 複数の行バンドがある場合、結果は行数で重み付けして結合する必要がある（CombineBands）。
func VarianceKernel(ctx context.Context, s parallel.Scheduler, x, mean *data.Array) ([]BandStatistic, error) {
	if err := checkStatShape("VarianceKernel", x, mean); err != nil {
		return nil, err
	}
	meanGroup := mean.BandGroup([]int{0})
	return runBands(ctx, s, taskVariance, x, func(_ context.Context, band data.RowBand) (BandStatistic, error) {
		merged, err := band.Blocks.Merge()
		if err != nil {
			return BandStatistic{}, err
		}
		center, err := rowVector(meanGroup)
		if err != nil {
			return BandStatistic{}, err
		}
		sums, err := merged.SquaredDeviationSums(center)
		if err != nil {
			return BandStatistic{}, err
		}
		floats.Scale(1/float64(band.Rows), sums)
		return BandStatistic{Band: band.Index, Rows: band.Rows, Values: sums}, nil
	})
}

// CombineBands は行数で重み付けした部分統計量の平均を返す
func CombineBands(parts []BandStatistic) []float64 {
	if len(parts) == 0 {
		return nil
	}
	total := 0
	for _, p := range parts {
		total += p.Rows
	}
	out := make([]float64, len(parts[0].Values))
	for _, p := range parts {
		floats.AddScaled(out, float64(p.Rows)/float64(total), p.Values)
	}
	return out
}

// TransformKernel は行バンドごとに (X - mean) / sqrt(variance) を計算し、
// 入力と同じ列ブロック数・列幅に分割し直した新しい配列を返す。
// 疎な入力は疎のまま、分散0の列は Inf / NaN のまま出力される。
func TransformKernel(ctx context.Context, s parallel.Scheduler, x *data.Array, stats FittedStatistics) (*data.Array, error) {
	return scaleBands(ctx, s, taskTransform, x, stats, func(b data.Block, mean, variance []float64) (data.Block, error) {
		centered, err := b.ElementwiseSub(mean)
		if err != nil {
			return data.Block{}, err
		}
		return centered.ElementwiseDivSqrt(variance)
	})
}

// InverseTransformKernel は TransformKernel の逆変換 X * sqrt(variance) + mean を計算する
func InverseTransformKernel(ctx context.Context, s parallel.Scheduler, x *data.Array, stats FittedStatistics) (*data.Array, error) {
	return scaleBands(ctx, s, taskInverseTransform, x, stats, func(b data.Block, mean, variance []float64) (data.Block, error) {
		scaled, err := b.ElementwiseMulSqrt(variance)
		if err != nil {
			return data.Block{}, err
		}
		return scaled.ElementwiseAdd(mean)
	})
}

func scaleBands(ctx context.Context, s parallel.Scheduler, name string, x *data.Array, stats FittedStatistics,
	fn func(b data.Block, mean, variance []float64) (data.Block, error)) (*data.Array, error) {
	if err := checkStatShape(name, x, stats.Mean); err != nil {
		return nil, err
	}
	if err := checkStatShape(name, x, stats.Variance); err != nil {
		return nil, err
	}

	blockRows, blockCols := x.BlockShape()
	_, nColBlocks := x.BlocksShape()
	meanGroup := stats.Mean.BandGroup([]int{0})
	varGroup := stats.Variance.BandGroup([]int{0})

	rows, err := runBands(ctx, s, name, x, func(_ context.Context, band data.RowBand) ([]data.Block, error) {
		merged, err := band.Blocks.Merge()
		if err != nil {
			return nil, err
		}
		mean, err := rowVector(meanGroup)
		if err != nil {
			return nil, err
		}
		variance, err := rowVector(varGroup)
		if err != nil {
			return nil, err
		}
		scaled, err := fn(merged, mean, variance)
		if err != nil {
			return nil, err
		}
		parts, err := data.SplitIntoBlocks(scaled, blockCols, nColBlocks)
		if err != nil {
			return nil, err
		}
		out := data.NewWriteBlockGroup(nColBlocks)
		if err := out.SetAll(parts); err != nil {
			return nil, err
		}
		return out.Blocks()
	})
	if err != nil {
		return nil, err
	}
	return data.FromBlocks(rows, blockRows, blockCols)
}

// checkStatShape は統計量配列が (1, x の特徴量数) であることを確認する
func checkStatShape(op string, x, stat *data.Array) error {
	if stat == nil {
		return errors.NewValueError(op, "statistics are missing")
	}
	_, features := x.Shape()
	r, c := stat.Shape()
	if r != 1 {
		return errors.NewShapeMismatchError(op, "statistic rows", 1, r)
	}
	if c != features {
		return errors.NewShapeMismatchError(op, "features", c, features)
	}
	return nil
}
