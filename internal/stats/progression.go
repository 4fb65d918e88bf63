package stats

import (
	"slices"
	"strings"
)

// CountWords returns the number of whitespace-separated words typed so far.
func CountWords(typed []rune) int {
	return len(strings.Fields(string(typed)))
}

// SampleSpeed computes the instantaneous words per minute after secondsElapsed seconds.
func SampleSpeed(typed []rune, secondsElapsed int) int {
	if secondsElapsed <= 0 {
		return 0
	}
	minutes := float64(secondsElapsed) / 60.0
	return Round(float64(CountWords(typed)) / minutes)
}

// AppendSample returns a new series with the sample for secondsElapsed appended.
// The input series is never modified.
func AppendSample(series []int, typed []rune, secondsElapsed int) []int {
	return append(slices.Clip(series), SampleSpeed(typed, secondsElapsed))
}
