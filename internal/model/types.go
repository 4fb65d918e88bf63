// Package model defines shared data structures.
package model

import "time"

// SpaceKey labels a missed space in error histograms.
const SpaceKey = "SPACE"

// Allowed duration budgets in seconds.
var DurationChoices = []int{30, 60, 120, 300}

// DefaultDuration is the duration budget used when none is configured.
const DefaultDuration = 60

// Config defines practice settings.
type Config struct {
	Lang       string
	Words      int
	CapsPct    float64
	PunctPct   float64
	PunctSet   string
	FocusWeak  bool
	WeakTop    int
	WeakFactor float64
	WeakWindow int
	Duration   int
	Ghost      bool
	Profile    string
}

// StatsConfig defines filters and options for history output.
type StatsConfig struct {
	Profile     string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// Stats is a snapshot of typing performance for one attempt.
type Stats struct {
	Correct    int            `json:"correctKeystrokes" yaml:"correct"`
	Incorrect  int            `json:"incorrectKeystrokes" yaml:"incorrect"`
	Keystrokes int            `json:"keystrokes" yaml:"keystrokes"`
	Accuracy   int            `json:"accuracy" yaml:"accuracy"`
	NetSpeed   int            `json:"wpm" yaml:"wpm"`
	RawSpeed   int            `json:"rawWpm" yaml:"raw_wpm"`
	Errors     map[string]int `json:"errors" yaml:"errors,omitempty"`
}

// ProgressionSample is the speed recorded for one elapsed second.
type ProgressionSample struct {
	Second int `json:"second"`
	Speed  int `json:"speed"`
}

// Result is the terminal output of a finished attempt.
type Result struct {
	Stats          Stats     `json:"stats"`
	Progression    []int     `json:"wpmProgression"`
	DurationUsed   int       `json:"duration"`
	DurationBudget int       `json:"durationBudget"`
	ReferenceText  string    `json:"text"`
	StartedAt      time.Time `json:"startedAt"`
	EndedAt        time.Time `json:"endedAt"`
}

// Samples expands the progression into indexed samples.
func (r Result) Samples() []ProgressionSample {
	out := make([]ProgressionSample, len(r.Progression))
	for i, v := range r.Progression {
		out[i] = ProgressionSample{Second: i, Speed: v}
	}
	return out
}

// Ghost converts a result into the recording replayed by later attempts.
func (r Result) Ghost() GhostRecording {
	progression := make([]int, len(r.Progression))
	copy(progression, r.Progression)
	return GhostRecording{
		Progression:   progression,
		ReferenceText: r.ReferenceText,
		FinalSpeed:    r.Stats.NetSpeed,
		FinalAccuracy: r.Stats.Accuracy,
		RecordedAt:    r.EndedAt,
	}
}

// GhostRecording is an immutable snapshot of a previous finished attempt.
type GhostRecording struct {
	Progression   []int     `json:"wmpProgression"`
	ReferenceText string    `json:"text"`
	FinalSpeed    int       `json:"final_wmp"`
	FinalAccuracy int       `json:"final_accuracy"`
	RecordedAt    time.Time `json:"timestamp"`
}

// ScoreRecord is a stored score as listed by repositories.
type ScoreRecord struct {
	ID         string         `json:"id" yaml:"id"`
	Profile    string         `json:"user_id" yaml:"profile"`
	NetSpeed   int            `json:"wpm" yaml:"wpm"`
	Accuracy   int            `json:"accuracy" yaml:"accuracy"`
	Keystrokes int            `json:"keystrokes" yaml:"keystrokes"`
	Errors     map[string]int `json:"errors" yaml:"errors,omitempty"`
	Duration   int            `json:"duration" yaml:"duration"`
	RecordedAt time.Time      `json:"timestamp" yaml:"timestamp"`
}

// ErrorAggregate sums missed characters across scores.
type ErrorAggregate struct {
	Char  string
	Count int
}

// Score converts a result into the record submitted to the score sink.
func (r Result) Score(profile string) ScoreRecord {
	errs := make(map[string]int, len(r.Stats.Errors))
	for ch, count := range r.Stats.Errors {
		errs[ch] = count
	}
	return ScoreRecord{
		Profile:    profile,
		NetSpeed:   r.Stats.NetSpeed,
		Accuracy:   r.Stats.Accuracy,
		Keystrokes: r.Stats.Keystrokes,
		Errors:     errs,
		Duration:   r.DurationUsed,
		RecordedAt: r.EndedAt,
	}
}
