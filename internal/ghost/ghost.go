// Package ghost compares a live attempt against a recorded one.
package ghost

import "github.com/saurabhk79/TypeRush/internal/model"

// Live is the state of the current attempt at the moment of comparison.
type Live struct {
	ElapsedSeconds int
	Speed          int
}

// Comparison is display-only state for the ghost race.
type Comparison struct {
	GhostSpeed    int
	LiveSpeed     int
	GhostPosition float64
	LivePosition  float64
	Ahead         bool
	// Lead is live speed minus the ghost's speed at the same second; negative when behind.
	Lead int
}

// SpeedAt returns the recorded speed at the given second, holding the last sample once the
// recording runs out. Empty recordings yield 0.
func SpeedAt(progression []int, second int) int {
	if len(progression) == 0 {
		return 0
	}
	idx := min(second, len(progression)-1)
	if idx < 0 {
		return 0
	}
	return progression[idx]
}

// Compare places the live attempt and the ghost on a shared track.
func Compare(live Live, rec model.GhostRecording) Comparison {
	ghostSpeed := SpeedAt(rec.Progression, live.ElapsedSeconds)
	scale := float64(max(rec.FinalSpeed, live.Speed, 1))
	return Comparison{
		GhostSpeed:    ghostSpeed,
		LiveSpeed:     live.Speed,
		GhostPosition: clampUnit(float64(ghostSpeed) / scale),
		LivePosition:  clampUnit(float64(live.Speed) / scale),
		Ahead:         live.Speed > ghostSpeed,
		Lead:          live.Speed - ghostSpeed,
	}
}

func clampUnit(v float64) float64 {
	return max(0, min(v, 1))
}
