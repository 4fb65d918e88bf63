// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/saurabhk79/TypeRush/internal/model"
)

const (
	charsPerWord = 5.0
	// Elapsed time is clamped to this many minutes before dividing.
	minElapsedMinutes = 0.01
	sparkChars        = " .:-=+*#%@"
)

// Round rounds half away from zero.
func Round(v float64) int {
	return int(math.Round(v))
}

// ErrorKey returns the histogram key for an expected character.
func ErrorKey(expected rune) string {
	if expected == ' ' {
		return model.SpaceKey
	}
	return string(expected)
}

// Compute compares typed text against the reference and derives speed and accuracy.
func Compute(reference, typed []rune, elapsed time.Duration) model.Stats {
	st := model.Stats{
		Keystrokes: len(typed),
		Errors:     map[string]int{},
	}
	n := min(len(typed), len(reference))
	for i := 0; i < n; i++ {
		if typed[i] == reference[i] {
			st.Correct++
			continue
		}
		st.Incorrect++
		st.Errors[ErrorKey(reference[i])]++
	}
	// Characters past the reference have nothing to blame in the histogram.
	if len(typed) > len(reference) {
		st.Incorrect += len(typed) - len(reference)
	}

	st.Accuracy = 100
	if len(typed) > 0 {
		st.Accuracy = Round(float64(st.Correct) / float64(len(typed)) * 100)
	}

	minutes := elapsed.Minutes()
	if minutes < minElapsedMinutes {
		minutes = minElapsedMinutes
	}
	st.NetSpeed = Round(float64(st.Correct) / charsPerWord / minutes)
	st.RawSpeed = Round(float64(len(typed)) / charsPerWord / minutes)
	return st
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := lo.Min(values)
	maxVal := lo.Max(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// IntsToFloats widens a progression for plotting.
func IntsToFloats(values []int) []float64 {
	return lo.Map(values, func(v int, _ int) float64 { return float64(v) })
}

// Resample stretches or squeezes values to exactly width points.
func Resample(values []float64, width int) []float64 {
	if width <= 0 || len(values) == 0 || len(values) == width {
		return values
	}
	out := make([]float64, width)
	for i := range out {
		src := i * len(values) / width
		out[i] = values[min(src, len(values)-1)]
	}
	return out
}

// RenderSummary prints a summary of stored scores.
func RenderSummary(w io.Writer, scores []model.ScoreRecord) error {
	if len(scores) == 0 {
		_, err := fmt.Fprintln(w, "No scores found.")
		return err
	}
	totalSpeed := lo.SumBy(scores, func(s model.ScoreRecord) int { return s.NetSpeed })
	totalAcc := lo.SumBy(scores, func(s model.ScoreRecord) int { return s.Accuracy })
	best := lo.MaxBy(scores, func(a, b model.ScoreRecord) bool { return a.NetSpeed > b.NetSpeed })
	count := float64(len(scores))

	lines := []string{
		"Summary",
		fmt.Sprintf("Attempts: %d", len(scores)),
		fmt.Sprintf("Avg WPM: %.1f", float64(totalSpeed)/count),
		fmt.Sprintf("Best WPM: %d (%d%%)", best.NetSpeed, best.Accuracy),
		fmt.Sprintf("Avg Accuracy: %.1f%%", float64(totalAcc)/count),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderSpeedCurve prints a smoothed sparkline of net speed across attempts.
func RenderSpeedCurve(w io.Writer, scores []model.ScoreRecord, window, width int) error {
	if len(scores) == 0 {
		return nil
	}
	speeds := lo.Map(scores, func(s model.ScoreRecord, _ int) float64 { return float64(s.NetSpeed) })
	speeds = MovingAverage(speeds, window)
	if width > 0 && len(speeds) > width {
		speeds = Resample(speeds, width)
	}
	if _, err := fmt.Fprintf(w, "WPM trend (window %d)\n", window); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s\n\n", Sparkline(speeds)); err != nil {
		return err
	}
	return nil
}

// RenderErrorTable prints the most missed characters.
func RenderErrorTable(w io.Writer, aggs []model.ErrorAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No errors recorded.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Most Missed Characters"); err != nil {
		return err
	}
	total := lo.SumBy(aggs, func(a model.ErrorAggregate) int { return a.Count })
	tbl := newTextTable(column{title: "Char"}, column{title: "Misses", right: true}, column{title: "Share", right: true})
	for _, agg := range aggs {
		tbl.add(
			DisplayKey(agg.Char),
			fmt.Sprintf("%d", agg.Count),
			fmt.Sprintf("%.1f%%", float64(agg.Count)/float64(total)*100),
		)
	}
	return tbl.write(w)
}

// RenderHistory prints one row per stored score.
func RenderHistory(w io.Writer, scores []model.ScoreRecord) error {
	if len(scores) == 0 {
		return nil
	}
	tbl := newTextTable(
		column{title: "When"},
		column{title: "WPM", right: true},
		column{title: "Acc", right: true},
		column{title: "Keys", right: true},
		column{title: "Time", right: true},
		column{title: "Rating"},
	)
	for _, s := range scores {
		tbl.add(
			s.RecordedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", s.NetSpeed),
			fmt.Sprintf("%d%%", s.Accuracy),
			fmt.Sprintf("%d", s.Keystrokes),
			fmt.Sprintf("%ds", s.Duration),
			Rate(s.NetSpeed, s.Accuracy),
		)
	}
	return tbl.write(w)
}
