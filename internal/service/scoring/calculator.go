// Package scoring computes accuracy scores for matured predictions.
package scoring

import (
	"math"

	"PredTrack/pkg/util"
)

// Score returns how close predicted came to actual as a percentage in
// [0, 100], rounded to two decimals. A zero actual cannot anchor a relative
// error: an exact zero prediction scores 100, anything else scores 0. An
// error ratio >= 1 clamps to 0.
func Score(actual, predicted float64) float64 {
	if actual == 0 {
		if predicted == 0 {
			return 100
		}
		return 0
	}

	relErr := math.Abs(actual-predicted) / math.Abs(actual)
	raw := (1 - relErr) * 100
	if raw < 0 {
		raw = 0
	}
	if raw > 100 {
		raw = 100
	}
	return util.Round2(raw)
}
