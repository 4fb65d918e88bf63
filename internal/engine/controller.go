package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/saurabhk79/TypeRush/internal/ghost"
	"github.com/saurabhk79/TypeRush/internal/model"
)

const defaultCallTimeout = 5 * time.Second

// Config holds the per-controller settings.
type Config struct {
	SessionID string
	Duration  int
	// CallTimeout bounds each text provider and repository call.
	CallTimeout time.Duration
}

// Controller runs one attempt at a time. It is not safe for concurrent use; input events and
// ticks must be delivered from a single goroutine.
type Controller struct {
	cfg     Config
	session Session

	text   TextProvider
	scores ScoreSink
	ghosts GhostStore
	ticker TickSource
	clock  Clock
	logger *log.Logger

	ghostEnabled bool
	ghost        *model.GhostRecording
	last         *model.Result
	onResult     func(model.Result)
	run          func(job func())
}

// Option customizes a Controller.
type Option func(*Controller)

// WithRepository stores scores and ghosts in repo.
func WithRepository(repo Repository) Option {
	return func(c *Controller) {
		c.scores = repo
		c.ghosts = repo
	}
}

// WithTickSource sets the timer that drives Tick.
func WithTickSource(t TickSource) Option {
	return func(c *Controller) { c.ticker = t }
}

// WithClock replaces the system clock.
func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithLogger sets the logger used for swallowed dependency failures.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithRunner hands the persistence of each result to run instead of saving inline. run must
// call job exactly once, typically on another goroutine.
func WithRunner(run func(job func())) Option {
	return func(c *Controller) { c.run = run }
}

// OnResult registers a callback invoked once per emitted result.
func OnResult(fn func(model.Result)) Option {
	return func(c *Controller) { c.onResult = fn }
}

// NewController fetches the first reference text and returns an idle controller.
func NewController(ctx context.Context, cfg Config, text TextProvider, opts ...Option) *Controller {
	if !model.ValidDuration(cfg.Duration) {
		cfg.Duration = model.DefaultDuration
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	c := &Controller{
		cfg:    cfg,
		text:   text,
		ticker: nopTicker{},
		clock:  systemClock{},
		logger: log.Default(),
		run:    func(job func()) { job() },
	}
	for _, opt := range opts {
		opt(c)
	}
	c.session = NewSession(c.fetchText(ctx), cfg.Duration)
	return c
}

// Session returns the current session. Callers must not modify its slices.
func (c *Controller) Session() Session {
	return c.session
}

// State returns the current lifecycle phase.
func (c *Controller) State() State {
	return c.session.State
}

// Result returns the most recent emitted result.
func (c *Controller) Result() (model.Result, bool) {
	if c.last == nil {
		return model.Result{}, false
	}
	return *c.last, true
}

// Start begins an attempt on a fresh reference text. It does nothing while an attempt is active
// and behaves like Restart once the previous attempt finished.
func (c *Controller) Start(ctx context.Context) {
	switch c.session.State {
	case StateActive:
		return
	case StateFinished:
		c.Restart(ctx)
		return
	}
	c.begin(c.fetchText(ctx))
}

// Restart resets and immediately starts a new attempt.
func (c *Controller) Restart(ctx context.Context) {
	text := c.fetchText(ctx)
	c.resetWith(text)
	c.begin(text)
}

// Reset discards the attempt and loads a new reference text.
func (c *Controller) Reset(ctx context.Context) {
	c.resetWith(c.fetchText(ctx))
}

// Input proposes a new typed text. Text longer than the reference is ignored.
func (c *Controller) Input(text string) {
	c.apply(InputEvent{Text: text, At: c.clock.Now()})
}

// Tick consumes one second of the budget.
func (c *Controller) Tick() {
	c.apply(TickEvent{At: c.clock.Now()})
}

// Finish ends the active attempt early, as if time ran out.
func (c *Controller) Finish() {
	c.apply(FinishEvent{At: c.clock.Now()})
}

// SetDuration changes the budget for the next attempt.
func (c *Controller) SetDuration(seconds int) error {
	if c.session.State == StateActive {
		return model.ErrSessionActive
	}
	if !model.ValidDuration(seconds) {
		return fmt.Errorf("%w: %ds (choose one of %v)", model.ErrInvalidDuration, seconds, model.DurationChoices)
	}
	c.cfg.Duration = seconds
	c.apply(DurationEvent{Seconds: seconds})
	return nil
}

// GhostEnabled reports whether ghost mode is on.
func (c *Controller) GhostEnabled() bool {
	return c.ghostEnabled
}

// Ghost returns the recording currently raced against.
func (c *Controller) Ghost() (model.GhostRecording, bool) {
	if c.ghost == nil {
		return model.GhostRecording{}, false
	}
	return *c.ghost, true
}

// ToggleGhost flips ghost mode. It is only allowed while idle. Enabling requires a previous
// recording; model.ErrGhostNotFound is returned and ghost mode stays off when there is none.
func (c *Controller) ToggleGhost(ctx context.Context) error {
	if c.session.State != StateIdle {
		return model.ErrSessionActive
	}
	if c.ghostEnabled {
		c.ghostEnabled = false
		c.ghost = nil
		return nil
	}
	rec, err := c.loadGhost(ctx)
	if err != nil {
		return err
	}
	c.ghostEnabled = true
	c.ghost = &rec
	return nil
}

// Comparison reports the live race against the ghost. ok is false when ghost mode is off or no
// recording is loaded.
func (c *Controller) Comparison() (cmp ghost.Comparison, ok bool) {
	if !c.ghostEnabled || c.ghost == nil {
		return ghost.Comparison{}, false
	}
	live := ghost.Live{
		ElapsedSeconds: c.session.ElapsedSeconds(),
		Speed:          c.session.Stats.NetSpeed,
	}
	return ghost.Compare(live, *c.ghost), true
}

// Close stops the tick source.
func (c *Controller) Close() {
	if c.session.State == StateActive {
		c.ticker.Stop()
	}
}

func (c *Controller) begin(text string) {
	c.apply(StartEvent{Text: text, At: c.clock.Now()})
}

func (c *Controller) resetWith(text string) {
	c.apply(ResetEvent{Text: text})
	c.ghost = nil
}

func (c *Controller) apply(ev Event) {
	prev := c.session
	next := Reduce(prev, ev)
	c.session = next

	if prev.State != StateActive && next.State == StateActive {
		c.refreshGhost()
		c.ticker.Start()
	}
	if prev.State == StateActive && next.State != StateActive {
		c.ticker.Stop()
	}
	if prev.Result == nil && next.Result != nil {
		c.publish(*next.Result)
	}
}

func (c *Controller) publish(res model.Result) {
	c.last = &res
	if c.onResult != nil {
		c.onResult(res)
	}
	if c.scores == nil && c.ghosts == nil {
		return
	}
	scores, ghosts := c.scores, c.ghosts
	sessionID, timeout, logger := c.cfg.SessionID, c.cfg.CallTimeout, c.logger
	c.run(func() {
		if scores != nil {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			if err := scores.SubmitResult(ctx, sessionID, res); err != nil {
				logger.Printf("failed to save result: %v", err)
			}
			cancel()
		}
		if ghosts != nil {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			if err := ghosts.SaveGhost(ctx, sessionID, res.Ghost()); err != nil {
				logger.Printf("failed to save ghost recording: %v", err)
			}
			cancel()
		}
	})
}

// refreshGhost reloads the recording when an attempt starts in ghost mode. Ghost mode stays on
// without a recording when the load fails; Comparison then reports ok=false.
func (c *Controller) refreshGhost() {
	if !c.ghostEnabled {
		return
	}
	c.ghost = nil
	if rec, err := c.loadGhost(context.Background()); err == nil {
		c.ghost = &rec
	}
}

func (c *Controller) fetchText(ctx context.Context) string {
	if c.text == nil {
		return FallbackText
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()
	text, err := c.text.FetchText(ctx)
	if err != nil {
		c.logger.Printf("failed to fetch text: %v", err)
		return FallbackText
	}
	if strings.TrimSpace(text) == "" {
		return FallbackText
	}
	return text
}

func (c *Controller) loadGhost(ctx context.Context) (model.GhostRecording, error) {
	if c.ghosts == nil {
		return model.GhostRecording{}, model.ErrGhostNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()
	rec, err := c.ghosts.FetchGhost(ctx, c.cfg.SessionID)
	if errors.Is(err, model.ErrGhostNotFound) {
		return model.GhostRecording{}, err
	}
	if err != nil {
		c.logger.Printf("failed to fetch ghost recording: %v", err)
		return model.GhostRecording{}, fmt.Errorf("failed to fetch ghost recording: %w", err)
	}
	return rec, nil
}
