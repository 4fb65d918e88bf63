package model

import (
	"testing"
	"time"
)

func sampleResult() Result {
	return Result{
		Stats: Stats{
			Correct:    40,
			Incorrect:  2,
			Keystrokes: 42,
			Accuracy:   95,
			NetSpeed:   48,
			Errors:     map[string]int{SpaceKey: 2},
		},
		Progression:   []int{30, 60, 48},
		DurationUsed:  3,
		ReferenceText: "abc",
		EndedAt:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestResultSamples(t *testing.T) {
	samples := sampleResult().Samples()
	if len(samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(samples))
	}
	if samples[1].Second != 1 || samples[1].Speed != 60 {
		t.Fatalf("unexpected sample: %+v", samples[1])
	}
}

func TestResultGhostCopiesProgression(t *testing.T) {
	res := sampleResult()
	rec := res.Ghost()
	res.Progression[0] = 0
	if rec.Progression[0] != 30 {
		t.Fatalf("expected recording to own its progression")
	}
	if rec.FinalSpeed != 48 || rec.FinalAccuracy != 95 || !rec.RecordedAt.Equal(res.EndedAt) {
		t.Fatalf("unexpected recording: %+v", rec)
	}
}

func TestResultScore(t *testing.T) {
	res := sampleResult()
	rec := res.Score("alice")
	res.Stats.Errors[SpaceKey] = 9
	if rec.Errors[SpaceKey] != 2 {
		t.Fatalf("expected score to own its error histogram")
	}
	if rec.Profile != "alice" || rec.Duration != 3 || rec.NetSpeed != 48 {
		t.Fatalf("unexpected score: %+v", rec)
	}
}

func TestValidDuration(t *testing.T) {
	for _, d := range DurationChoices {
		if !ValidDuration(d) {
			t.Fatalf("expected %d to be valid", d)
		}
	}
	if ValidDuration(45) || ValidDuration(0) {
		t.Fatalf("expected unlisted durations to be rejected")
	}
}
