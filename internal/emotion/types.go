// Package emotion scores how a chat turn moves the intimacy between the user and the persona.
package emotion

const (
	// MinChange and MaxChange bound a single turn's combined delta.
	MinChange = -2
	MaxChange = 2
)

// Bounds is the closed intimacy range.
type Bounds struct {
	Min int
	Max int
}

// DefaultBounds is the 0-100 range the persona prompt is written against.
var DefaultBounds = Bounds{Min: 0, Max: 100}

// Clamp bounds score to [b.Min, b.Max].
func (b Bounds) Clamp(score int) int {
	switch {
	case score < b.Min:
		return b.Min
	case score > b.Max:
		return b.Max
	default:
		return score
	}
}

// ClampChange bounds a delta to [MinChange, MaxChange].
func ClampChange(delta int) int {
	switch {
	case delta < MinChange:
		return MinChange
	case delta > MaxChange:
		return MaxChange
	default:
		return delta
	}
}
