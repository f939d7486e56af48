package util

import (
	"math"
	"time"
)

// CeilSeconds rounds a duration up to whole seconds. Negative durations yield 0.
func CeilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
