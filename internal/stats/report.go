package stats

import (
	"context"

	"github.com/samber/lo"

	"github.com/saurabhk79/TypeRush/internal/model"
)

// ScoreLister lists stored scores oldest first.
type ScoreLister interface {
	ListScores(ctx context.Context, profile string) ([]model.ScoreRecord, error)
}

// Report contains precomputed data for history rendering.
type Report struct {
	Scores []model.ScoreRecord
	Window []model.ScoreRecord
	Errors []model.ErrorAggregate
}

// BuildReport loads and prepares data for history rendering.
func BuildReport(ctx context.Context, st ScoreLister, cfg model.StatsConfig) (Report, error) {
	scores, err := st.ListScores(ctx, cfg.Profile)
	if err != nil {
		return Report{}, err
	}
	if cfg.Since != nil {
		scores = lo.Filter(scores, func(s model.ScoreRecord, _ int) bool {
			return !s.RecordedAt.Before(*cfg.Since)
		})
	}
	if cfg.Last > 0 && len(scores) > cfg.Last {
		scores = scores[len(scores)-cfg.Last:]
	}
	window := scores
	if cfg.CurveWindow > 0 && len(scores) > cfg.CurveWindow {
		window = scores[len(scores)-cfg.CurveWindow:]
	}
	return Report{
		Scores: scores,
		Window: window,
		Errors: AggregateErrors(window),
	}, nil
}
