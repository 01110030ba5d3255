package output

import (
	"math"
	"strconv"
	"strings"
)

// RoundTo rounds a float to the given number of decimal places
func RoundTo(f float64, decimals int) float64 {
	multiplier := math.Pow(10, float64(decimals))
	return math.Round(f*multiplier) / multiplier
}

// FormatFloat formats a float at the given precision with trailing
// zeros removed. A whole number keeps one decimal so the scalar still
// reads as a float, unless precision is zero.
func FormatFloat(f float64, decimals int) string {
	if decimals <= 0 {
		return strconv.FormatFloat(math.Round(f), 'f', 0, 64)
	}

	str := strconv.FormatFloat(RoundTo(f, decimals), 'f', decimals, 64)
	str = strings.TrimRight(str, "0")
	if strings.HasSuffix(str, ".") {
		str += "0"
	}
	return str
}
