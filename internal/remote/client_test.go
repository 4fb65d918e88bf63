package remote

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/saurabhk79/TypeRush/internal/engine"
	"github.com/saurabhk79/TypeRush/internal/model"
	"github.com/saurabhk79/TypeRush/internal/server"
	"github.com/saurabhk79/TypeRush/internal/store"
)

type fixedText string

func (f fixedText) FetchText(context.Context) (string, error) {
	return string(f), nil
}

var (
	_ engine.Repository   = (*Client)(nil)
	_ engine.TextProvider = (*Client)(nil)
)

func newTestClient(t *testing.T) (*Client, *store.Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := store.NewMemory()
	srv := server.New(repo, fixedText("Remote text."), server.Config{RateRPS: 100, RateBurst: 100, Logger: log.New(io.Discard, "", 0)})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return New(ts.URL+"/", ts.Client()), repo
}

func TestClientFetchText(t *testing.T) {
	c, _ := newTestClient(t)
	text, err := c.FetchText(context.Background())
	if err != nil {
		t.Fatalf("fetch text: %v", err)
	}
	if text != "Remote text." {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestClientScores(t *testing.T) {
	c, repo := newTestClient(t)
	ctx := context.Background()
	res := model.Result{Stats: model.Stats{NetSpeed: 42, Accuracy: 96, Keystrokes: 200, Errors: map[string]int{"e": 3}}, DurationUsed: 30}
	if err := c.SubmitResult(ctx, "alice", res); err != nil {
		t.Fatalf("submit result: %v", err)
	}
	stored, _ := repo.ListScores(ctx, "alice")
	if len(stored) != 1 || stored[0].NetSpeed != 42 || stored[0].Duration != 30 {
		t.Fatalf("unexpected stored scores: %+v", stored)
	}

	scores, err := c.ListScores(ctx, "alice")
	if err != nil {
		t.Fatalf("list scores: %v", err)
	}
	if len(scores) != 1 || scores[0].Errors["e"] != 3 || scores[0].ID != stored[0].ID {
		t.Fatalf("unexpected listed scores: %+v", scores)
	}
}

func TestClientGhostNotFound(t *testing.T) {
	c, _ := newTestClient(t)
	_, err := c.FetchGhost(context.Background(), "nobody")
	if !errors.Is(err, model.ErrGhostNotFound) {
		t.Fatalf("expected ErrGhostNotFound, got %v", err)
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Message != "No ghost data found" {
		t.Fatalf("expected server message, got %v", err)
	}
}

func TestClientGhostRoundTrip(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()
	rec := model.GhostRecording{Progression: []int{10, 20, 30}, ReferenceText: "cat dog", FinalSpeed: 30, FinalAccuracy: 99}
	if err := c.SaveGhost(ctx, "alice", rec); err != nil {
		t.Fatalf("save ghost: %v", err)
	}
	got, err := c.FetchGhost(ctx, "alice")
	if err != nil {
		t.Fatalf("fetch ghost: %v", err)
	}
	if len(got.Progression) != 3 || got.Progression[2] != 30 || got.ReferenceText != "cat dog" || got.FinalSpeed != 30 {
		t.Fatalf("unexpected recording: %+v", got)
	}
}

func TestClientDrivesController(t *testing.T) {
	c, repo := newTestClient(t)
	ctx := context.Background()
	ctrl := engine.NewController(ctx, engine.Config{SessionID: "alice", Duration: 30}, c,
		engine.WithRepository(c), engine.WithLogger(log.New(io.Discard, "", 0)))
	if got := string(ctrl.Session().ReferenceText); got != "Remote text." {
		t.Fatalf("expected remote text, got %q", got)
	}
	ctrl.Input("Remote text.")
	if ctrl.State() != engine.StateFinished {
		t.Fatalf("expected finished, got %s", ctrl.State())
	}
	if _, err := repo.FetchGhost(ctx, "alice"); err != nil {
		t.Fatalf("expected ghost stored on the server: %v", err)
	}
	if err := ctrl.ToggleGhost(ctx); err == nil {
		t.Fatalf("expected toggle to be refused after finishing")
	}
	ctrl.Reset(ctx)
	if err := ctrl.ToggleGhost(ctx); err != nil || !ctrl.GhostEnabled() {
		t.Fatalf("expected ghost mode on, err=%v", err)
	}
}
