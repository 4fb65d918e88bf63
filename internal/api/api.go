// Package api defines the JSON wire format shared by the HTTP server and the remote client.
package api

import (
	"maps"
	"slices"

	"github.com/saurabhk79/TypeRush/internal/model"
)

// Routes.
const (
	RouteText        = "/api/text"
	RouteScore       = "/api/score"
	RouteGhost       = "/api/ghost"
	RouteGhostByUser = "/api/ghost/:userId"
	RouteHealth      = "/healthz"
)

// ErrNoGhost is the error message returned with 404 for a profile without a recording.
const ErrNoGhost = "No ghost data found"

// TextResponse is returned by GET /api/text.
type TextResponse struct {
	Text string `json:"text"`
}

// ScoreRequest is the body of POST /api/score.
type ScoreRequest struct {
	UserID     string         `json:"user_id" binding:"required"`
	WPM        int            `json:"wpm" binding:"min=0"`
	Accuracy   int            `json:"accuracy" binding:"min=0,max=100"`
	Keystrokes int            `json:"keystrokes" binding:"min=0"`
	Errors     map[string]int `json:"errors"`
	Duration   int            `json:"duration" binding:"min=0"`
}

// ScoreResponse acknowledges a stored score.
type ScoreResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// ScoreListResponse is returned by GET /api/score.
type ScoreListResponse struct {
	Scores []model.ScoreRecord `json:"scores"`
}

// GhostRequest is the body of POST /api/ghost.
type GhostRequest struct {
	UserID        string `json:"user_id" binding:"required"`
	Progression   []int  `json:"wmp_progression"`
	Text          string `json:"text"`
	FinalSpeed    int    `json:"final_wmp" binding:"min=0"`
	FinalAccuracy int    `json:"final_accuracy" binding:"min=0,max=100"`
}

// SuccessResponse acknowledges a write without an id.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse carries a failure message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewScoreRequest builds the request body for a score record.
func NewScoreRequest(rec model.ScoreRecord) ScoreRequest {
	return ScoreRequest{
		UserID:     rec.Profile,
		WPM:        rec.NetSpeed,
		Accuracy:   rec.Accuracy,
		Keystrokes: rec.Keystrokes,
		Errors:     maps.Clone(rec.Errors),
		Duration:   rec.Duration,
	}
}

// Record converts the request into a score record without id or timestamp.
func (r ScoreRequest) Record() model.ScoreRecord {
	errs := maps.Clone(r.Errors)
	if errs == nil {
		errs = map[string]int{}
	}
	return model.ScoreRecord{
		Profile:    r.UserID,
		NetSpeed:   r.WPM,
		Accuracy:   r.Accuracy,
		Keystrokes: r.Keystrokes,
		Errors:     errs,
		Duration:   r.Duration,
	}
}

// NewGhostRequest builds the request body for a ghost recording.
func NewGhostRequest(userID string, rec model.GhostRecording) GhostRequest {
	progression := slices.Clone(rec.Progression)
	if progression == nil {
		progression = []int{}
	}
	return GhostRequest{
		UserID:        userID,
		Progression:   progression,
		Text:          rec.ReferenceText,
		FinalSpeed:    rec.FinalSpeed,
		FinalAccuracy: rec.FinalAccuracy,
	}
}

// Recording converts the request into a ghost recording without timestamp.
func (r GhostRequest) Recording() model.GhostRecording {
	return model.GhostRecording{
		Progression:   slices.Clone(r.Progression),
		ReferenceText: r.Text,
		FinalSpeed:    r.FinalSpeed,
		FinalAccuracy: r.FinalAccuracy,
	}
}
