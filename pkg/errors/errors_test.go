package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("StandardScaler", "Transform")

	want := "blockscale: StandardScaler: this model is not fitted yet. Call Fit() before using Transform()"
	assert.Equal(t, want, err.Error())

	var notFittedErr *NotFittedError
	require.True(t, As(err, &notFittedErr), "Error should be castable to *NotFittedError")
	assert.Equal(t, "Transform", notFittedErr.Method)

	// スタックトレースの存在確認
	formatted := fmt.Sprintf("%+v", err)
	assert.Contains(t, formatted, "errors_test.go")
}

func TestNewShapeMismatchError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		what    string
		exp     int
		got     int
		wantMsg string
	}{
		{
			name:    "block rows",
			op:      "MergeBlocks",
			what:    "block rows",
			exp:     3,
			got:     2,
			wantMsg: "blockscale: MergeBlocks: shape mismatch in block rows. Expected 3, got 2",
		},
		{
			name:    "samples",
			op:      "Shuffle",
			what:    "n_samples",
			exp:     8,
			got:     7,
			wantMsg: "blockscale: Shuffle: shape mismatch in n_samples. Expected 8, got 7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewShapeMismatchError(tt.op, tt.what, tt.exp, tt.got)
			assert.Equal(t, tt.wantMsg, err.Error())

			var shapeErr *ShapeMismatchError
			require.True(t, As(err, &shapeErr))
			assert.Equal(t, tt.exp, shapeErr.Expected)
			assert.Equal(t, tt.got, shapeErr.Got)
		})
	}
}

func TestNewUnsupportedRepresentationError(t *testing.T) {
	err := NewUnsupportedRepresentationError("FromBlocks", "mixed dense and sparse blocks")
	assert.Equal(t, "blockscale: FromBlocks: unsupported representation: mixed dense and sparse blocks", err.Error())

	var reprErr *UnsupportedRepresentationError
	assert.True(t, As(err, &reprErr))
}

func TestTaskErrorUnwrap(t *testing.T) {
	cause := NewShapeMismatchError("MergeBlocks", "block rows", 3, 2)
	err := NewTaskError("variance", 4, cause)

	assert.Contains(t, err.Error(), "task variance (band 4) failed")

	var shapeErr *ShapeMismatchError
	assert.True(t, As(err, &shapeErr), "TaskError should expose its cause")

	var taskErr *TaskError
	require.True(t, As(err, &taskErr))
	assert.Equal(t, 4, taskErr.Band)
}

func TestMarshalZerologObject(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	err := &ShapeMismatchError{Op: "Shuffle", What: "n_samples", Expected: 8, Got: 7}
	logger.Error().Object("error", err).Msg("failed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	obj, ok := entry["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ShapeMismatchError", obj["type"])
	assert.Equal(t, float64(8), obj["expected"])
}

func TestWarnRoutesToHandler(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(func(w error) {})

	Warn(NewZeroVarianceWarning("StandardScaler.Fit", []int{1, 3}))

	require.Len(t, got, 1)
	assert.Contains(t, got[0].Error(), "2 feature(s) have zero variance [1 3]")
}

func TestCheckVariance(t *testing.T) {
	assert.Nil(t, CheckVariance("Fit", []float64{1, 0.5}))

	w := CheckVariance("Fit", []float64{1, 0, 2, 0})
	require.NotNil(t, w)
	assert.Equal(t, []int{1, 3}, w.Features)

	assert.Equal(t, 2, CountNonFinite([]float64{1, nanValue(), infValue(), 0}))
}

func TestWrapAndIs(t *testing.T) {
	wrapped := Wrap(ErrEmptyData, "in data.NewArray")

	assert.True(t, Is(wrapped, ErrEmptyData))
	assert.True(t, strings.Contains(wrapped.Error(), "in data.NewArray"))

	wrappedf := Wrapf(ErrEmptyData, "in %s: expected %d rows", "Resample", 10)
	assert.True(t, Is(wrappedf, ErrEmptyData))
	assert.Contains(t, wrappedf.Error(), "in Resample: expected 10 rows")
}
