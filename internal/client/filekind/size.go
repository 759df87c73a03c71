package filekind

import (
	"math"
	"strconv"
)

var units = []string{"B", "KB", "MB", "GB"}

// FormatSize renders bytes in the largest fitting unit (base 1024, capped at
// GB) with at most one decimal: 0 → "0 B", 1536 → "1.5 KB", 1024 → "1 KB".
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}

	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(units) {
		i = len(units) - 1
	}

	v := scaled(bytes, i)
	if v >= 1024 && i < len(units)-1 {
		i++
		v = scaled(bytes, i)
	}

	return strconv.FormatFloat(v, 'f', -1, 64) + " " + units[i]
}

func scaled(bytes int64, unit int) float64 {
	v := float64(bytes) / math.Pow(1024, float64(unit))
	return math.Round(v*10) / 10
}
