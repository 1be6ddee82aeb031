// Package utils は行の並べ替え（Shuffle）と復元抽出（Resample）を提供します。
//
// どちらも元の配列を変更せず、入力と同じブロックサイズ方式の新しい配列を返します。
// 行の取り出しは出力の行バンドごとに1タスクとしてスケジューラへ投入されます。
package utils

import (
	"math/rand/v2"

	"github.com/YuminosukeSato/blockscale/core/parallel"
	"github.com/YuminosukeSato/blockscale/pkg/log"
)

// Option は Shuffle / Resample の設定を行う関数型
type Option func(*config)

type config struct {
	seed      int64
	seeded    bool
	scheduler parallel.Scheduler
	logger    log.Logger
}

// WithRandomState は乱数シードを設定する。
// 同じシードでは同じ結果が得られる。指定しない場合は呼び出しごとに異なる。
func WithRandomState(seed int64) Option {
	return func(c *config) {
		c.seed = seed
		c.seeded = true
	}
}

// WithScheduler はタスクを投入するスケジューラを設定する
func WithScheduler(s parallel.Scheduler) Option {
	return func(c *config) {
		if s != nil {
			c.scheduler = s
		}
	}
}

// WithLogger はロガーを設定する
func WithLogger(l log.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts []Option) *config {
	c := &config{
		scheduler: parallel.Default(),
		logger:    log.GetLoggerWithName("utils"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rng はシードから PCG 乱数生成器を作る。シード未指定なら実行時の乱数で初期化する。
func (c *config) rng() *rand.Rand {
	seed := uint64(c.seed)
	if !c.seeded {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed))
}
