package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saurabhk79/TypeRush/internal/model"
)

// Memory is a process-local repository. Nothing survives a restart.
type Memory struct {
	mu     sync.RWMutex
	scores []model.ScoreRecord
	ghosts map[string]model.GhostRecording
}

// NewMemory returns an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{ghosts: map[string]model.GhostRecording{}}
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

// SubmitResult stores the score of a finished attempt.
func (m *Memory) SubmitResult(ctx context.Context, profile string, res model.Result) error {
	_, err := m.InsertScore(ctx, res.Score(profile))
	return err
}

// InsertScore stores a score and returns its id.
func (m *Memory) InsertScore(_ context.Context, rec model.ScoreRecord) (string, error) {
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now()
	}
	rec.ID = uuid.NewString()
	rec.Errors = cloneErrors(rec.Errors)
	m.mu.Lock()
	m.scores = append(m.scores, rec)
	m.mu.Unlock()
	return rec.ID, nil
}

// ListScores returns scores oldest first. An empty profile lists every profile.
func (m *Memory) ListScores(_ context.Context, profile string) ([]model.ScoreRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.ScoreRecord, 0, len(m.scores))
	for _, rec := range m.scores {
		if profile != "" && rec.Profile != profile {
			continue
		}
		rec.Errors = cloneErrors(rec.Errors)
		out = append(out, rec)
	}
	slices.SortStableFunc(out, func(a, b model.ScoreRecord) int {
		return a.RecordedAt.Compare(b.RecordedAt)
	})
	return out, nil
}

// SaveGhost replaces the ghost recording for a profile.
func (m *Memory) SaveGhost(_ context.Context, profile string, rec model.GhostRecording) error {
	rec.Progression = slices.Clone(rec.Progression)
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now()
	}
	m.mu.Lock()
	m.ghosts[profile] = rec
	m.mu.Unlock()
	return nil
}

// FetchGhost loads the ghost recording for a profile.
func (m *Memory) FetchGhost(_ context.Context, profile string) (model.GhostRecording, error) {
	m.mu.RLock()
	rec, ok := m.ghosts[profile]
	m.mu.RUnlock()
	if !ok {
		return model.GhostRecording{}, model.ErrGhostNotFound
	}
	rec.Progression = slices.Clone(rec.Progression)
	return rec, nil
}

func cloneErrors(errs map[string]int) map[string]int {
	out := make(map[string]int, len(errs))
	for ch, count := range errs {
		out[ch] = count
	}
	return out
}
