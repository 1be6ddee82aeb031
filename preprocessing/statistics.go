package preprocessing

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/blockscale/data"
)

// FittedStatistics は Fit で得られる列ごとの平均と分散。
// どちらも (1, n_features) の密な配列で、入力が疎でも密になる。生成後は変更されない。
type FittedStatistics struct {
	Mean     *data.Array
	Variance *data.Array
}

// newStatArray は行ベクトルを、入力と同じ列ブロック幅の (1, n) 配列にする
func newStatArray(values []float64, blockCols int) (*data.Array, error) {
	return data.NewArray(mat.NewDense(1, len(values), values), 1, blockCols)
}

func newFittedStatistics(mean, variance []float64, blockCols int) (FittedStatistics, error) {
	m, err := newStatArray(mean, blockCols)
	if err != nil {
		return FittedStatistics{}, err
	}
	v, err := newStatArray(variance, blockCols)
	if err != nil {
		return FittedStatistics{}, err
	}
	return FittedStatistics{Mean: m, Variance: v}, nil
}

// MeanValues は平均を行ベクトルとして返す
func (f FittedStatistics) MeanValues() ([]float64, error) {
	return rowVector(f.Mean.BandGroup([]int{0}))
}

// VarianceValues は分散を行ベクトルとして返す
func (f FittedStatistics) VarianceValues() ([]float64, error) {
	return rowVector(f.Variance.BandGroup([]int{0}))
}

// Scale は標準偏差 sqrt(variance) を返す
func (f FittedStatistics) Scale() ([]float64, error) {
	v, err := f.VarianceValues()
	if err != nil {
		return nil, err
	}
	for j := range v {
		v[j] = math.Sqrt(v[j])
	}
	return v, nil
}
