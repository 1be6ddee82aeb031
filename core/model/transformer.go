package model

import (
	"context"

	"github.com/YuminosukeSato/blockscale/data"
)

// Transformer はブロック分割配列を変換するインターフェース
type Transformer interface {
	// Fit は変換に必要なパラメータを学習する
	Fit(ctx context.Context, x *data.Array) error

	// Transform はデータを変換する
	Transform(ctx context.Context, x *data.Array) (*data.Array, error)

	// FitTransform はFitとTransformを同時に実行する
	FitTransform(ctx context.Context, x *data.Array) (*data.Array, error)
}

// InverseTransformer は変換を元に戻せる Transformer
type InverseTransformer interface {
	Transformer

	// InverseTransform は変換後のデータを元のスケールに戻す
	InverseTransform(ctx context.Context, x *data.Array) (*data.Array, error)
}
