package errors

import (
	"math"
)

// ZeroVarianceFeatures returns the indices of entries that are exactly zero.
// Such features divide by zero during standardization.
func ZeroVarianceFeatures(variance []float64) []int {
	var zeros []int
	for j, v := range variance {
		if v == 0 {
			zeros = append(zeros, j)
		}
	}
	return zeros
}

// CheckVariance returns a ZeroVarianceWarning when any feature has zero
// variance, or nil otherwise. The caller decides whether to Warn.
func CheckVariance(op string, variance []float64) *ZeroVarianceWarning {
	if zeros := ZeroVarianceFeatures(variance); len(zeros) > 0 {
		return NewZeroVarianceWarning(op, zeros)
	}
	return nil
}

// CountNonFinite counts NaN and Inf entries of values.
func CountNonFinite(values []float64) int {
	n := 0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			n++
		}
	}
	return n
}
