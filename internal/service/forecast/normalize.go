package forecast

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"PredTrack/pkg/util"
)

// NormalizeValue converts an upstream numeric encoding to a canonical
// two-decimal string. The network returns either an already-decimal string or
// a fixed-point integer that needs dividing by 10^scaleDecimals; the presence
// of a decimal point decides which.
//
// TODO: confirm with the upstream team that integer-encoded values are always
// 10^scaleDecimals fixed point; the decimal-point heuristic would misread a
// plain unscaled integer.
func NormalizeValue(raw string, scaleDecimals int) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty value")
	}

	if strings.Contains(raw, ".") {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return "", fmt.Errorf("parse decimal %q: %w", raw, err)
		}
		return strconv.FormatFloat(util.Round2(f), 'f', 2, 64), nil
	}

	n, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return "", fmt.Errorf("parse fixed-point integer %q", raw)
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(scaleDecimals)), nil)
	// FloatString rounds the last digit to nearest, ties away from zero.
	return new(big.Rat).SetFrac(n, scale).FloatString(2), nil
}
