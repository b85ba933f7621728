package scoring

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	minScore = 0
	maxScore = 100
)

// toNumber coerces decoded JSON values to a finite float. Numbers and numeric
// strings qualify; booleans do not.
func toNumber(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// clampScore bounds s to [0,100] and rounds half away from zero.
func clampScore(s float64) int {
	return int(math.Round(math.Max(minScore, math.Min(maxScore, s))))
}
