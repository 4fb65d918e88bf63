// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"errors"
	"log"
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/saurabhk79/TypeRush/internal/engine"
	"github.com/saurabhk79/TypeRush/internal/model"
)

// Options configures the practice UI.
type Options struct {
	Engine engine.Config
	Text   engine.TextProvider
	// Repo may be nil, in which case results are shown but not kept.
	Repo engine.Repository
	// Ghost enables ghost mode at startup when a recording exists.
	Ghost bool
	// History seeds the footer with earlier scores, oldest first.
	History []model.ScoreRecord
	Logger  *log.Logger
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	ctx     context.Context
	ctrl    *engine.Controller
	ticker  *teaTicker
	profile string

	keys  keyMap
	help  help.Model
	bar   progress.Model
	track progress.Model

	history []model.ScoreRecord
	notice  string
	// jobs holds result saves waiting to be handed to Bubble Tea as a command.
	jobs []func()

	width  int
	height int
}

// NewModel builds the controller and returns an idle practice model.
func NewModel(ctx context.Context, opts Options) *Model {
	m := &Model{
		ctx:     ctx,
		ticker:  newTeaTicker(),
		profile: opts.Engine.SessionID,
		keys:    newKeyMap(),
		help:    help.New(),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		track:   progress.New(progress.WithSolidFill("#8C8C8C"), progress.WithoutPercentage()),
		history: slices.Clone(opts.History),
	}
	engineOpts := []engine.Option{
		engine.WithTickSource(m.ticker),
		engine.OnResult(m.recordResult),
		engine.WithRunner(func(job func()) { m.jobs = append(m.jobs, job) }),
	}
	if opts.Repo != nil {
		engineOpts = append(engineOpts, engine.WithRepository(opts.Repo))
	}
	if opts.Logger != nil {
		engineOpts = append(engineOpts, engine.WithLogger(opts.Logger))
	}
	m.ctrl = engine.NewController(ctx, opts.Engine, opts.Text, engineOpts...)
	if opts.Ghost {
		m.toggleGhost()
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tickMsg:
		if m.ticker.accept(msg) {
			m.ctrl.Tick()
		}
		return m, m.withJobs(m.ticker.cmd())
	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		if cmd != nil {
			return m, cmd
		}
		return m, m.withJobs(m.ticker.cmd())
	case savedMsg:
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	active := m.ctrl.State() == engine.StateActive
	if key.Matches(msg, m.keys.Quit) {
		m.ctrl.Close()
		return tea.Quit
	}
	if isClipboardKey(msg) {
		if msg.Type == tea.KeyCtrlC && !active {
			return tea.Quit
		}
		return nil
	}
	if msg.Paste {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Start):
		if !active {
			m.notice = ""
			m.ctrl.Start(m.ctx)
		}
	case key.Matches(msg, m.keys.Reset):
		m.notice = ""
		m.ctrl.Reset(m.ctx)
	case key.Matches(msg, m.keys.Restart):
		m.notice = ""
		m.ctrl.Restart(m.ctx)
	case key.Matches(msg, m.keys.End):
		if active {
			m.ctrl.Finish()
		}
	case key.Matches(msg, m.keys.Duration):
		m.cycleDuration()
	case key.Matches(msg, m.keys.Ghost):
		m.ghostKey()
	case msg.Type == tea.KeyBackspace:
		typed := m.ctrl.Session().TypedText
		if len(typed) > 0 {
			m.ctrl.Input(string(typed[:len(typed)-1]))
		}
	case msg.Type == tea.KeySpace:
		m.appendInput([]rune{' '})
	case msg.Type == tea.KeyRunes:
		m.appendInput(msg.Runes)
	}
	return nil
}

func (m *Model) appendInput(runes []rune) {
	typed := m.ctrl.Session().TypedText
	next := make([]rune, 0, len(typed)+len(runes))
	next = append(append(next, typed...), runes...)
	m.ctrl.Input(string(next))
}

func (m *Model) cycleDuration() {
	next := nextDuration(m.ctrl.Session().DurationBudget)
	if err := m.ctrl.SetDuration(next); err != nil {
		if errors.Is(err, model.ErrSessionActive) {
			m.notice = "Duration can only change between attempts."
			return
		}
		m.notice = err.Error()
		return
	}
	m.notice = ""
}

// ghostKey toggles ghost mode. On the results screen with ghost mode on it starts a race against
// the run just finished instead of switching ghost mode off.
func (m *Model) ghostKey() {
	if m.ctrl.State() == engine.StateFinished {
		if m.ctrl.GhostEnabled() {
			m.ctrl.Restart(m.ctx)
			m.notice = "Racing your last run."
			return
		}
		m.ctrl.Reset(m.ctx)
	}
	m.toggleGhost()
}

func (m *Model) toggleGhost() {
	err := m.ctrl.ToggleGhost(m.ctx)
	switch {
	case err == nil:
		m.notice = ""
	case errors.Is(err, model.ErrGhostNotFound):
		m.notice = "No previous run to race yet. Finish an attempt first."
	case errors.Is(err, model.ErrSessionActive):
		m.notice = "Ghost mode can only change before the attempt starts."
	default:
		m.notice = "Ghost unavailable: " + err.Error()
	}
}

type savedMsg struct{}

// withJobs batches cmd with the pending result saves so they run off the update loop.
func (m *Model) withJobs(cmd tea.Cmd) tea.Cmd {
	if len(m.jobs) == 0 {
		return cmd
	}
	jobs := m.jobs
	m.jobs = nil
	return tea.Batch(cmd, func() tea.Msg {
		for _, job := range jobs {
			job()
		}
		return savedMsg{}
	})
}

func (m *Model) recordResult(res model.Result) {
	m.history = append(m.history, res.Score(m.profile))
}

func nextDuration(current int) int {
	idx := slices.Index(model.DurationChoices, current)
	return model.DurationChoices[(idx+1)%len(model.DurationChoices)]
}

func isClipboardKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyCtrlA, tea.KeyCtrlC, tea.KeyCtrlV, tea.KeyCtrlX:
		return true
	default:
		return false
	}
}
