package stats

import (
	"sort"

	"github.com/samber/lo"

	"github.com/saurabhk79/TypeRush/internal/model"
)

// DefaultHeatmapSize is how many characters the results heatmap shows.
const DefaultHeatmapSize = 10

// HeatCell is one entry of the error heatmap.
type HeatCell struct {
	Char      string
	Label     string
	Count     int
	Intensity float64
}

// DisplayKey turns a histogram key into a human-readable label.
func DisplayKey(key string) string {
	switch key {
	case model.SpaceKey:
		return "Space"
	case "\n":
		return "Enter"
	case "\t":
		return "Tab"
	default:
		return key
	}
}

// Heatmap returns the top most-missed characters with intensity relative to the worst one.
func Heatmap(errors map[string]int, top int) []HeatCell {
	aggs := sortAggregates(lo.MapToSlice(errors, func(ch string, count int) model.ErrorAggregate {
		return model.ErrorAggregate{Char: ch, Count: count}
	}))
	if len(aggs) == 0 {
		return nil
	}
	if top > 0 && len(aggs) > top {
		aggs = aggs[:top]
	}
	maxCount := aggs[0].Count
	if maxCount <= 0 {
		maxCount = 1
	}
	return lo.Map(aggs, func(agg model.ErrorAggregate, _ int) HeatCell {
		return HeatCell{
			Char:      agg.Char,
			Label:     DisplayKey(agg.Char),
			Count:     agg.Count,
			Intensity: float64(agg.Count) / float64(maxCount),
		}
	})
}

// AggregateErrors sums error histograms across stored scores, most missed first.
func AggregateErrors(scores []model.ScoreRecord) []model.ErrorAggregate {
	totals := map[string]int{}
	for _, s := range scores {
		for ch, count := range s.Errors {
			totals[ch] += count
		}
	}
	return sortAggregates(lo.MapToSlice(totals, func(ch string, count int) model.ErrorAggregate {
		return model.ErrorAggregate{Char: ch, Count: count}
	}))
}

// WeakSet picks the top most-missed characters for weighted practice. SPACE is skipped since
// words never contain one.
func WeakSet(aggs []model.ErrorAggregate, top int) map[rune]struct{} {
	out := map[rune]struct{}{}
	for _, agg := range aggs {
		if top > 0 && len(out) >= top {
			break
		}
		if agg.Char == model.SpaceKey {
			continue
		}
		runes := []rune(agg.Char)
		if len(runes) != 1 {
			continue
		}
		out[runes[0]] = struct{}{}
	}
	return out
}

func sortAggregates(aggs []model.ErrorAggregate) []model.ErrorAggregate {
	aggs = lo.Filter(aggs, func(a model.ErrorAggregate, _ int) bool { return a.Count > 0 })
	sort.Slice(aggs, func(i, j int) bool {
		if aggs[i].Count == aggs[j].Count {
			return aggs[i].Char < aggs[j].Char
		}
		return aggs[i].Count > aggs[j].Count
	})
	return aggs
}
