package preprocessing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/YuminosukeSato/blockscale/core/model"
	"github.com/YuminosukeSato/blockscale/core/parallel"
	"github.com/YuminosukeSato/blockscale/data"
	"github.com/YuminosukeSato/blockscale/pkg/errors"
	"github.com/YuminosukeSato/blockscale/pkg/log"
)

const scalerName = "StandardScaler"

// StandardScaler はブロック分割配列を列ごとに平均0・分散1へ標準化する。
//
// Fit は行バンドごとのタスクで平均と分散を求め、Transform は行バンドごとに
// (X - mean) / sqrt(variance) を計算した新しい配列を返す。入力配列は変更しない。
// 分散0の列は補正せず、変換結果は Inf または NaN になる（Fit 時に警告を出す）。
//
// 使用例:
//
//	x, _ := data.NewArray(X, 1000, 10)
//	scaler := preprocessing.NewStandardScaler()
//	xs, err := scaler.FitTransform(ctx, x)
type StandardScaler struct {
	state     *model.StateManager
	scheduler parallel.Scheduler
	logger    log.Logger
	id        string

	mu    sync.RWMutex
	stats *FittedStatistics
}

var _ model.InverseTransformer = (*StandardScaler)(nil)

// Option は StandardScaler の設定を行う関数型
type Option func(*StandardScaler)

// WithScheduler はタスクを投入するスケジューラを設定する
func WithScheduler(s parallel.Scheduler) Option {
	return func(sc *StandardScaler) {
		if s != nil {
			sc.scheduler = s
		}
	}
}

// WithLogger はロガーを設定する
func WithLogger(l log.Logger) Option {
	return func(sc *StandardScaler) {
		if l != nil {
			sc.logger = l
		}
	}
}

// NewStandardScaler は未学習の StandardScaler を作成する
func NewStandardScaler(opts ...Option) *StandardScaler {
	sc := &StandardScaler{
		state:     model.NewStateManager(),
		scheduler: parallel.Default(),
		logger:    log.GetLoggerWithName("preprocessing"),
		id:        uuid.NewString(),
	}
	for _, opt := range opts {
		opt(sc)
	}
	sc.logger = sc.logger.With(
		log.ModelNameKey, scalerName,
		log.EstimatorIDKey, sc.id,
	)
	return sc
}

// IsFitted は学習済みかどうかを返す
func (sc *StandardScaler) IsFitted() bool {
	return sc.state.IsFitted()
}

// Fit は x の列ごとの平均と分散を計算して保持する。
// 再度 Fit すると統計量は上書きされる。失敗した場合、以前の統計量は変更されない。
func (sc *StandardScaler) Fit(ctx context.Context, x *data.Array) error {
	start := time.Now()
	n, features := x.Shape()
	_, blockCols := x.BlockShape()
	rowBands, _ := x.BlocksShape()
	logger := sc.logger.With(log.OperationKey, log.OperationFit)

	means, err := MeanKernel(ctx, sc.scheduler, x)
	if err != nil {
		logger.Error("mean kernel failed", err)
		return err
	}
	meanValues := CombineBands(means)
	meanArr, err := newStatArray(meanValues, blockCols)
	if err != nil {
		return err
	}

	partials, err := VarianceKernel(ctx, sc.scheduler, x, meanArr)
	if err != nil {
		logger.Error("variance kernel failed", err)
		return err
	}
	variance := CombineBands(partials)

	stats, err := newFittedStatistics(meanValues, variance, blockCols)
	if err != nil {
		return err
	}
	if w := errors.CheckVariance(scalerName+".Fit", variance); w != nil {
		errors.Warn(w)
	}

	sc.mu.Lock()
	sc.stats = &stats
	sc.mu.Unlock()
	sc.state.MarkFitted(features, n)

	logger.Debug("fit completed",
		log.SamplesKey, n,
		log.FeaturesKey, features,
		log.SparseKey, x.IsSparse(),
		log.RowBandsKey, rowBands,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Transform は学習済みの統計量で x を標準化した新しい配列を返す。
// 出力は入力と同じブロック構成・同じ表現（密/疎）になる。
func (sc *StandardScaler) Transform(ctx context.Context, x *data.Array) (*data.Array, error) {
	return sc.apply(ctx, x, "Transform", log.OperationTransform, TransformKernel)
}

// FitTransform は Fit の後に同じ入力で Transform を行う
func (sc *StandardScaler) FitTransform(ctx context.Context, x *data.Array) (*data.Array, error) {
	if err := sc.Fit(ctx, x); err != nil {
		return nil, err
	}
	return sc.Transform(ctx, x)
}

// InverseTransform は標準化されたデータを元のスケールに戻す
func (sc *StandardScaler) InverseTransform(ctx context.Context, x *data.Array) (*data.Array, error) {
	return sc.apply(ctx, x, "InverseTransform", log.OperationInverseTransform, InverseTransformKernel)
}

type scaleKernel func(context.Context, parallel.Scheduler, *data.Array, FittedStatistics) (*data.Array, error)

func (sc *StandardScaler) apply(ctx context.Context, x *data.Array, method, op string, kernel scaleKernel) (*data.Array, error) {
	stats, err := sc.Statistics()
	if err != nil {
		return nil, errors.NewNotFittedError(scalerName, method)
	}
	_, nFeatures := stats.Mean.Shape()
	if _, features := x.Shape(); features != nFeatures {
		return nil, errors.NewShapeMismatchError(scalerName+"."+method, "features", nFeatures, features)
	}

	start := time.Now()
	logger := sc.logger.With(log.OperationKey, op)
	out, err := kernel(ctx, sc.scheduler, x, stats)
	if err != nil {
		logger.Error("kernel failed", err)
		return nil, err
	}
	r, _ := x.Shape()
	logger.Debug(method+" completed",
		log.SamplesKey, r,
		log.SparseKey, out.IsSparse(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return out, nil
}

// Statistics は学習済みの平均と分散を返す。未学習なら NotFittedError を返す。
func (sc *StandardScaler) Statistics() (FittedStatistics, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	if sc.stats == nil || !sc.state.IsFitted() {
		return FittedStatistics{}, errors.NewNotFittedError(scalerName, "Statistics")
	}
	return *sc.stats, nil
}

// String はスケーラーの状態を文字列で返す
func (sc *StandardScaler) String() string {
	nFeatures, nSamples := sc.state.Dimensions()
	if !sc.state.IsFitted() {
		return fmt.Sprintf("%s(%s)", scalerName, sc.state.State())
	}
	return fmt.Sprintf("%s(%s, n_features=%d, n_samples=%d)", scalerName, sc.state.State(), nFeatures, nSamples)
}
