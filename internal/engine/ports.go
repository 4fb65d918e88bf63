package engine

import (
	"context"
	"time"

	"github.com/saurabhk79/TypeRush/internal/model"
)

// FallbackText is used whenever the text provider fails or returns nothing.
const FallbackText = "The quick brown fox jumps over the lazy dog near the riverbank."

// TextProvider supplies reference texts.
type TextProvider interface {
	FetchText(ctx context.Context) (string, error)
}

// ScoreSink receives finished results.
type ScoreSink interface {
	SubmitResult(ctx context.Context, sessionID string, res model.Result) error
}

// GhostStore keeps the latest recording per session identifier.
// FetchGhost returns model.ErrGhostNotFound when nothing was recorded yet.
type GhostStore interface {
	SaveGhost(ctx context.Context, sessionID string, rec model.GhostRecording) error
	FetchGhost(ctx context.Context, sessionID string) (model.GhostRecording, error)
}

// Repository is a combined score sink and ghost store.
type Repository interface {
	ScoreSink
	GhostStore
}

// TickSource delivers Controller.Tick once per second between Start and Stop.
type TickSource interface {
	Start()
	Stop()
}

// Clock reads the current time. Readings must carry a monotonic component.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type nopTicker struct{}

func (nopTicker) Start() {}
func (nopTicker) Stop()  {}
