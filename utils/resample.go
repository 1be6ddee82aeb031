package utils

import (
	"context"
	"time"

	"github.com/YuminosukeSato/blockscale/data"
	"github.com/YuminosukeSato/blockscale/pkg/errors"
	"github.com/YuminosukeSato/blockscale/pkg/log"
)

// Resample は ds から nSamples 行を復元抽出した新しいデータセットを返す。
// 抽出した行は抽出順に並び、ds と同じサブセットサイズで分割される（最後のサブセットは小さくてもよい）。
// ラベルがあれば同じ行を取り出す。疎な入力は疎のまま出力される。
func Resample(ctx context.Context, ds *data.Dataset, nSamples int, opts ...Option) (*data.Dataset, error) {
	if nSamples < 1 {
		return nil, errors.NewValidationError("nSamples", "must be at least 1", nSamples)
	}
	cfg := newConfig(opts)
	start := time.Now()

	total := ds.NSamples()
	rng := cfg.rng()
	idx := make([]int, nSamples)
	for i := range idx {
		idx[i] = rng.IntN(total)
	}

	subsetSize := ds.SubsetSize()
	samples, err := gatherRows(ctx, cfg.scheduler, log.OperationResample, ds.Samples(), idx, subsetSize)
	if err != nil {
		cfg.logger.Error("resample failed", err, log.OperationKey, log.OperationResample)
		return nil, err
	}
	var labels *data.Array
	if ds.Labels() != nil {
		if labels, err = gatherRows(ctx, cfg.scheduler, log.OperationResample, ds.Labels(), idx, subsetSize); err != nil {
			cfg.logger.Error("resample failed", err, log.OperationKey, log.OperationResample)
			return nil, err
		}
	}

	out, err := data.NewDataset(samples, labels)
	if err != nil {
		return nil, err
	}

	fields := []any{
		log.OperationKey, log.OperationResample,
		log.SamplesKey, nSamples,
		log.SubsetSizeKey, subsetSize,
		log.SparseKey, ds.IsSparse(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	}
	if cfg.seeded {
		fields = append(fields, log.RandomSeedKey, cfg.seed)
	}
	cfg.logger.Debug("resample completed", fields...)
	return out, nil
}
