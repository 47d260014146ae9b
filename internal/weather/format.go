package weather

import "math"

// Round rounds half up, so -2.5 becomes -2 and 2.5 becomes 3.
func Round(x float64) int {
	return int(math.Floor(x + 0.5))
}
