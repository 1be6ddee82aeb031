package utils

import (
	"context"
	"slices"

	"github.com/YuminosukeSato/blockscale/core/parallel"
	"github.com/YuminosukeSato/blockscale/data"
	"github.com/YuminosukeSato/blockscale/pkg/errors"
)

// gatherRows は rowIndex の順に x の行を取り出した新しい配列を返す。
// 出力は outBlockRows 行ごとの行バンドに分割され、列方向は x と同じブロック幅になる。
// 出力の行バンドごとに1タスクを投入し、各タスクは必要な入力行バンドだけを結合する。
func gatherRows(ctx context.Context, s parallel.Scheduler, name string, x *data.Array, rowIndex []int, outBlockRows int) (*data.Array, error) {
	n, _ := x.Shape()
	for _, r := range rowIndex {
		if r < 0 || r >= n {
			return nil, errors.NewValueError(name, "row index out of range")
		}
	}
	if len(rowIndex) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, name)
	}

	srcRows, blockCols := x.BlockShape()
	_, nColBlocks := x.BlocksShape()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var futures []*parallel.Future[[]data.Block]
	for band, p0 := 0, 0; p0 < len(rowIndex); band, p0 = band+1, p0+outBlockRows {
		positions := rowIndex[p0:min(p0+outBlockRows, len(rowIndex))]
		futures = append(futures, parallel.Submit(ctx, s, name, func(context.Context) ([]data.Block, error) {
			blocks, err := gatherBand(x, positions, srcRows, blockCols, nColBlocks)
			if err != nil {
				return nil, errors.NewTaskError(name, band, err)
			}
			return blocks, nil
		}))
	}

	rows, err := parallel.WaitAll(ctx, futures)
	if err != nil {
		return nil, err
	}
	return data.FromBlocks(rows, outBlockRows, blockCols)
}

// gatherBand は出力の行バンド1つ分を組み立てる
func gatherBand(x *data.Array, rows []int, srcRows, blockCols, nColBlocks int) ([]data.Block, error) {
	// 必要な入力行バンド（昇順・重複なし）
	needed := make([]int, len(rows))
	for i, r := range rows {
		needed[i] = r / srcRows
	}
	slices.Sort(needed)
	needed = slices.Compact(needed)

	merged, err := x.BandGroup(needed).Merge()
	if err != nil {
		return nil, err
	}

	// 結合後の行列における各入力行バンドの開始位置
	start := make(map[int]int, len(needed))
	offset := 0
	heights := x.RowHeights()
	for _, b := range needed {
		start[b] = offset
		offset += heights[b]
	}

	local := make([]int, len(rows))
	for i, r := range rows {
		local[i] = start[r/srcRows] + r%srcRows
	}
	selected, err := merged.SelectRows(local)
	if err != nil {
		return nil, err
	}

	out := data.NewWriteBlockGroup(nColBlocks)
	parts, err := data.SplitIntoBlocks(selected, blockCols, nColBlocks)
	if err != nil {
		return nil, err
	}
	if err := out.SetAll(parts); err != nil {
		return nil, err
	}
	return out.Blocks()
}
