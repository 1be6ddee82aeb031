package utils

import (
	"context"
	"time"

	"github.com/YuminosukeSato/blockscale/data"
	"github.com/YuminosukeSato/blockscale/pkg/errors"
	"github.com/YuminosukeSato/blockscale/pkg/log"
)

// Shuffle は x の行をランダムに並べ替えた新しい配列を返す。
// y が nil でなければ同じ置換を y にも適用し、x と y の行の対応を保つ。
// 出力はそれぞれ入力と同じブロックサイズ・同じ表現（密/疎）になる。
//
// 使用例:
//
//	xs, ys, err := utils.Shuffle(ctx, x, y, utils.WithRandomState(42))
func Shuffle(ctx context.Context, x, y *data.Array, opts ...Option) (*data.Array, *data.Array, error) {
	cfg := newConfig(opts)
	n, _ := x.Shape()
	if y != nil {
		if yn, _ := y.Shape(); yn != n {
			return nil, nil, errors.NewShapeMismatchError("Shuffle", "n_samples", n, yn)
		}
	}

	start := time.Now()
	perm := cfg.rng().Perm(n)

	xBlockRows, _ := x.BlockShape()
	xs, err := gatherRows(ctx, cfg.scheduler, log.OperationShuffle, x, perm, xBlockRows)
	if err != nil {
		cfg.logger.Error("shuffle failed", err, log.OperationKey, log.OperationShuffle)
		return nil, nil, err
	}

	var ys *data.Array
	if y != nil {
		yBlockRows, _ := y.BlockShape()
		if ys, err = gatherRows(ctx, cfg.scheduler, log.OperationShuffle, y, perm, yBlockRows); err != nil {
			cfg.logger.Error("shuffle failed", err, log.OperationKey, log.OperationShuffle)
			return nil, nil, err
		}
	}

	fields := []any{
		log.OperationKey, log.OperationShuffle,
		log.SamplesKey, n,
		log.SparseKey, x.IsSparse(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	}
	if cfg.seeded {
		fields = append(fields, log.RandomSeedKey, cfg.seed)
	}
	cfg.logger.Debug("shuffle completed", fields...)
	return xs, ys, nil
}
