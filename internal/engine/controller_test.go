package engine

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/saurabhk79/TypeRush/internal/model"
	"github.com/saurabhk79/TypeRush/internal/store"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) advance(d time.Duration) { f.now = f.now.Add(d) }

type fakeTicker struct {
	running bool
	starts  int
	stops   int
}

func (f *fakeTicker) Start() {
	f.running = true
	f.starts++
}

func (f *fakeTicker) Stop() {
	f.running = false
	f.stops++
}

type fakeText struct {
	texts []string
	err   error
	calls int
}

func (f *fakeText) FetchText(context.Context) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if len(f.texts) == 0 {
		return "", nil
	}
	text := f.texts[0]
	if len(f.texts) > 1 {
		f.texts = f.texts[1:]
	}
	return text, nil
}

type failingRepo struct {
	submits int
	saves   int
	err     error
}

func (f *failingRepo) SubmitResult(context.Context, string, model.Result) error {
	f.submits++
	return errors.New("repository unavailable")
}

func (f *failingRepo) SaveGhost(context.Context, string, model.GhostRecording) error {
	f.saves++
	return errors.New("repository unavailable")
}

func (f *failingRepo) FetchGhost(context.Context, string) (model.GhostRecording, error) {
	return model.GhostRecording{}, f.err
}

type harness struct {
	ctrl   *Controller
	clock  *fakeClock
	ticker *fakeTicker
	repo   *store.Memory
	text   *fakeText
	logs   *bytes.Buffer
}

func newHarness(t *testing.T, texts ...string) *harness {
	t.Helper()
	h := &harness{
		clock:  &fakeClock{now: epoch},
		ticker: &fakeTicker{},
		repo:   store.NewMemory(),
		text:   &fakeText{texts: texts},
		logs:   &bytes.Buffer{},
	}
	h.ctrl = NewController(context.Background(), Config{SessionID: "user-1", Duration: 60}, h.text,
		WithRepository(h.repo),
		WithTickSource(h.ticker),
		WithClock(h.clock),
		WithLogger(log.New(h.logs, "", 0)),
	)
	return h
}

// typeAndTick types text one step per second.
func (h *harness) typeAndTick(steps ...string) {
	for _, step := range steps {
		h.clock.advance(time.Second)
		h.ctrl.Tick()
		h.ctrl.Input(step)
	}
}

func TestControllerStartsAndStopsTicker(t *testing.T) {
	h := newHarness(t, "cat dog")
	ctx := context.Background()
	h.ctrl.Start(ctx)
	if !h.ticker.running || h.ctrl.State() != StateActive {
		t.Fatalf("expected ticker running in active state")
	}
	h.typeAndTick("cat", "cat dog")
	if h.ctrl.State() != StateFinished {
		t.Fatalf("expected finished, got %s", h.ctrl.State())
	}
	if h.ticker.running || h.ticker.stops != 1 {
		t.Fatalf("expected ticker stopped exactly once, got %+v", h.ticker)
	}
}

func TestControllerImplicitStartOnFirstInput(t *testing.T) {
	h := newHarness(t, "cat dog")
	h.ctrl.Input("c")
	if h.ctrl.State() != StateActive || !h.ticker.running {
		t.Fatalf("expected first keystroke to start the attempt")
	}
	if !h.ctrl.Session().StartedAt.Equal(epoch) {
		t.Fatalf("expected start time recorded at first keystroke")
	}
}

func TestControllerResetCancelsTicker(t *testing.T) {
	h := newHarness(t, "cat dog", "fresh text")
	ctx := context.Background()
	h.ctrl.Start(ctx)
	h.typeAndTick("ca")
	h.ctrl.Reset(ctx)
	if h.ticker.running {
		t.Fatalf("expected reset to stop the ticker")
	}
	s := h.ctrl.Session()
	if s.State != StateIdle || len(s.TypedText) != 0 || s.RemainingSeconds != 60 || len(s.Progression) != 0 {
		t.Fatalf("expected full reset, got %+v", s)
	}
	if string(s.ReferenceText) != "fresh text" {
		t.Fatalf("expected new reference text, got %q", string(s.ReferenceText))
	}
	if _, ok := h.ctrl.Result(); ok {
		t.Fatalf("expected no result from a cancelled attempt")
	}
}

func TestControllerRestartFromActive(t *testing.T) {
	h := newHarness(t, "cat dog", "second text")
	ctx := context.Background()
	h.ctrl.Start(ctx)
	h.typeAndTick("ca")
	h.ctrl.Restart(ctx)
	if h.ctrl.State() != StateActive || !h.ticker.running {
		t.Fatalf("expected a new active attempt")
	}
	if h.ticker.starts != 2 || h.ticker.stops != 1 {
		t.Fatalf("expected stop then start, got %+v", h.ticker)
	}
	if h.ctrl.Session().RemainingSeconds != 60 {
		t.Fatalf("expected fresh budget")
	}
}

func TestControllerEmitsResultOnce(t *testing.T) {
	h := newHarness(t, "cat dog")
	emitted := 0
	OnResult(func(model.Result) { emitted++ })(h.ctrl)
	h.ctrl.Start(context.Background())
	h.typeAndTick("cat", "cat dog")
	h.ctrl.Tick()
	h.ctrl.Input("cat do")
	if emitted != 1 {
		t.Fatalf("expected one result, got %d", emitted)
	}
	scores, err := h.repo.ListScores(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list scores: %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("expected one stored score, got %d", len(scores))
	}
	if scores[0].Duration != 2 || scores[0].Keystrokes != 7 {
		t.Fatalf("unexpected stored score: %+v", scores[0])
	}
	rec, err := h.repo.FetchGhost(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("fetch ghost: %v", err)
	}
	if rec.ReferenceText != "cat dog" || len(rec.Progression) != 1 {
		t.Fatalf("unexpected ghost recording: %+v", rec)
	}
}

func TestControllerTextProviderFallback(t *testing.T) {
	text := &fakeText{err: errors.New("offline")}
	logs := &bytes.Buffer{}
	c := NewController(context.Background(), Config{Duration: 30}, text, WithLogger(log.New(logs, "", 0)))
	if got := string(c.Session().ReferenceText); got != FallbackText {
		t.Fatalf("expected fallback text, got %q", got)
	}
	if !strings.Contains(logs.String(), "offline") {
		t.Fatalf("expected provider failure to be logged, got %q", logs.String())
	}

	empty := NewController(context.Background(), Config{Duration: 30}, &fakeText{texts: []string{"   "}})
	if got := string(empty.Session().ReferenceText); got != FallbackText {
		t.Fatalf("expected fallback for blank text, got %q", got)
	}
}

func TestControllerRepositoryFailureIsSwallowed(t *testing.T) {
	repo := &failingRepo{}
	logs := &bytes.Buffer{}
	ticker := &fakeTicker{}
	c := NewController(context.Background(), Config{SessionID: "u", Duration: 30}, &fakeText{texts: []string{"ab"}},
		WithRepository(repo), WithTickSource(ticker), WithLogger(log.New(logs, "", 0)))
	c.Input("ab")
	if c.State() != StateFinished {
		t.Fatalf("expected finished despite repository failure, got %s", c.State())
	}
	if repo.submits != 1 || repo.saves != 1 {
		t.Fatalf("expected one submit and one save attempt, got %+v", repo)
	}
	if _, ok := c.Result(); !ok {
		t.Fatalf("expected result to be available")
	}
	if strings.Count(logs.String(), "repository unavailable") != 2 {
		t.Fatalf("expected each failure logged once, got %q", logs.String())
	}
	c.Reset(context.Background())
	if c.State() != StateIdle {
		t.Fatalf("expected controller to stay usable")
	}
}

func TestControllerEmptyAttemptIsNotPersisted(t *testing.T) {
	h := newHarness(t, "cat dog")
	if err := h.ctrl.SetDuration(30); err != nil {
		t.Fatalf("set duration: %v", err)
	}
	h.ctrl.Start(context.Background())
	for i := 0; i < 30; i++ {
		h.ctrl.Tick()
	}
	if h.ctrl.State() != StateFinished {
		t.Fatalf("expected finished, got %s", h.ctrl.State())
	}
	scores, _ := h.repo.ListScores(context.Background(), "")
	if len(scores) != 0 {
		t.Fatalf("expected nothing stored, got %d", len(scores))
	}
}

func TestControllerSetDurationGuards(t *testing.T) {
	h := newHarness(t, "cat dog")
	if err := h.ctrl.SetDuration(45); !errors.Is(err, model.ErrInvalidDuration) {
		t.Fatalf("expected invalid duration error, got %v", err)
	}
	if err := h.ctrl.SetDuration(300); err != nil {
		t.Fatalf("set duration: %v", err)
	}
	if h.ctrl.Session().RemainingSeconds != 300 {
		t.Fatalf("expected remaining to follow the budget")
	}
	h.ctrl.Start(context.Background())
	if err := h.ctrl.SetDuration(30); !errors.Is(err, model.ErrSessionActive) {
		t.Fatalf("expected active session error, got %v", err)
	}
}

func TestControllerToggleGhostWithoutRecording(t *testing.T) {
	h := newHarness(t, "cat dog")
	err := h.ctrl.ToggleGhost(context.Background())
	if !errors.Is(err, model.ErrGhostNotFound) {
		t.Fatalf("expected missing ghost, got %v", err)
	}
	if h.ctrl.GhostEnabled() {
		t.Fatalf("ghost mode must stay off without a recording")
	}
	if _, ok := h.ctrl.Comparison(); ok {
		t.Fatalf("expected no comparison")
	}
}

func TestControllerToggleGhostTransportFailure(t *testing.T) {
	repo := &failingRepo{err: errors.New("connection refused")}
	c := NewController(context.Background(), Config{SessionID: "u"}, &fakeText{texts: []string{"cat"}},
		WithRepository(repo), WithLogger(log.New(&bytes.Buffer{}, "", 0)))
	err := c.ToggleGhost(context.Background())
	if err == nil || errors.Is(err, model.ErrGhostNotFound) {
		t.Fatalf("expected transport error distinct from missing ghost, got %v", err)
	}
	if c.GhostEnabled() {
		t.Fatalf("ghost mode must stay off after a failed fetch")
	}
}

func TestControllerToggleGhostOnlyWhileIdle(t *testing.T) {
	h := newHarness(t, "cat dog")
	_ = h.repo.SaveGhost(context.Background(), "user-1", model.GhostRecording{Progression: []int{10}})
	h.ctrl.Start(context.Background())
	if err := h.ctrl.ToggleGhost(context.Background()); !errors.Is(err, model.ErrSessionActive) {
		t.Fatalf("expected toggle to be refused while active, got %v", err)
	}
	if h.ctrl.GhostEnabled() {
		t.Fatalf("expected ghost mode unchanged")
	}
}

func TestControllerGhostRace(t *testing.T) {
	h := newHarness(t, "the quick brown fox jumps", "the quick brown fox jumps")
	ctx := context.Background()
	_ = h.repo.SaveGhost(ctx, "user-1", model.GhostRecording{Progression: []int{10, 20, 30}, FinalSpeed: 30})
	if err := h.ctrl.ToggleGhost(ctx); err != nil {
		t.Fatalf("toggle ghost: %v", err)
	}
	h.ctrl.Start(ctx)
	if _, ok := h.ctrl.Ghost(); !ok {
		t.Fatalf("expected ghost recording loaded at start")
	}
	h.typeAndTick("the quick")
	cmp, ok := h.ctrl.Comparison()
	if !ok {
		t.Fatalf("expected comparison while racing")
	}
	// One second elapsed, ghost sample at index 1 is 20.
	if cmp.GhostSpeed != 20 {
		t.Fatalf("expected ghost speed 20, got %d", cmp.GhostSpeed)
	}
	if cmp.LiveSpeed != h.ctrl.Session().Stats.NetSpeed {
		t.Fatalf("expected live speed from current stats")
	}

	h.ctrl.Reset(ctx)
	if _, ok := h.ctrl.Ghost(); ok {
		t.Fatalf("expected reset to drop the ghost recording")
	}
	if err := h.ctrl.ToggleGhost(ctx); err != nil || h.ctrl.GhostEnabled() {
		t.Fatalf("expected toggle to switch ghost mode off, err=%v", err)
	}
}

func TestControllerGhostReloadedOnTypedStartAfterReset(t *testing.T) {
	h := newHarness(t, "cat dog", "cow dig")
	ctx := context.Background()
	_ = h.repo.SaveGhost(ctx, "user-1", model.GhostRecording{Progression: []int{10, 20, 30}, FinalSpeed: 30})
	if err := h.ctrl.ToggleGhost(ctx); err != nil {
		t.Fatalf("toggle ghost: %v", err)
	}
	h.ctrl.Reset(ctx)
	if !h.ctrl.GhostEnabled() {
		t.Fatalf("expected ghost mode to survive reset")
	}
	h.ctrl.Input("c")
	if h.ctrl.State() != StateActive {
		t.Fatalf("expected typing to start the attempt, got %s", h.ctrl.State())
	}
	cmp, ok := h.ctrl.Comparison()
	if !ok {
		t.Fatalf("expected the ghost race after a typed start")
	}
	if cmp.GhostSpeed != 10 {
		t.Fatalf("expected ghost speed 10 at second 0, got %d", cmp.GhostSpeed)
	}
}

func TestControllerFinishEndsAttemptEarly(t *testing.T) {
	h := newHarness(t, "cat dog")
	h.ctrl.Start(context.Background())
	h.typeAndTick("ca", "cat")
	h.ctrl.Finish()
	if h.ctrl.State() != StateFinished {
		t.Fatalf("expected finished, got %s", h.ctrl.State())
	}
	if h.ticker.running {
		t.Fatalf("expected ticker stopped")
	}
	res, ok := h.ctrl.Result()
	if !ok || res.DurationUsed != 2 {
		t.Fatalf("expected result after 2 seconds, got %+v ok=%v", res, ok)
	}
	h.ctrl.Finish()
	scores, _ := h.repo.ListScores(context.Background(), "user-1")
	if len(scores) != 1 {
		t.Fatalf("expected a single stored score, got %d", len(scores))
	}
}

func TestControllerRunnerDefersPersistence(t *testing.T) {
	repo := store.NewMemory()
	var jobs []func()
	c := NewController(context.Background(), Config{SessionID: "u", Duration: 30}, &fakeText{texts: []string{"ab"}},
		WithRepository(repo),
		WithRunner(func(job func()) { jobs = append(jobs, job) }),
	)
	c.Input("ab")
	if _, ok := c.Result(); !ok {
		t.Fatalf("expected result available before persistence runs")
	}
	scores, _ := repo.ListScores(context.Background(), "u")
	if len(scores) != 0 || len(jobs) != 1 {
		t.Fatalf("expected persistence deferred to one job, got %d scores and %d jobs", len(scores), len(jobs))
	}
	jobs[0]()
	scores, _ = repo.ListScores(context.Background(), "u")
	if len(scores) != 1 {
		t.Fatalf("expected score stored by the job, got %d", len(scores))
	}
	if _, err := repo.FetchGhost(context.Background(), "u"); err != nil {
		t.Fatalf("expected ghost stored by the job, got %v", err)
	}
}
