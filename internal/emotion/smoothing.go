package emotion

import "math"

// Smooth applies one exponential smoothing step:
//
//	raw      = old + change
//	smoothed = (1-alpha)*old + alpha*raw
//
// and rounds half to even before clamping to b.
func Smooth(old, change int, alpha float64, b Bounds) int {
	prev := float64(old)
	raw := prev + float64(change)
	smoothed := (1-alpha)*prev + alpha*raw

	rounded := math.RoundToEven(smoothed)
	switch {
	case rounded < float64(b.Min):
		return b.Min
	case rounded > float64(b.Max):
		return b.Max
	default:
		return int(rounded)
	}
}
