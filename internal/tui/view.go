package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/saurabhk79/TypeRush/internal/engine"
	"github.com/saurabhk79/TypeRush/internal/model"
	statsPkg "github.com/saurabhk79/TypeRush/internal/stats"
)

const (
	// Characters kept visible behind the cursor.
	contextBehind = 25
	maxTextLines  = 4
	heatBarWidth  = 10
)

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle      = pendingStyle.Underline(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	aheadStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#52C41A"))
	behindStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF4D4F"))
	noticeStyle      = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#C89A3A"))
)

// View implements tea.Model.
func (m *Model) View() string {
	s := m.ctrl.Session()
	var body string
	if s.State == engine.StateFinished {
		body = m.renderResults()
	} else {
		body = m.renderPractice(s)
	}
	if m.notice != "" {
		body += "\n\n" + noticeStyle.Render(m.notice)
	}
	helpLine := m.help.View(m.keys)
	if m.width == 0 || m.height == 0 {
		return body + "\n\n" + helpLine
	}
	bodyHeight := max(m.height-1, 1)
	return lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, body) + "\n" +
		lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, helpLine)
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 60
	}
	return max(int(float64(m.width)*0.70), 1)
}

func (m *Model) renderPractice(s engine.Session) string {
	width := m.contentWidth()
	ghostState := "off"
	if m.ctrl.GhostEnabled() {
		ghostState = "on"
	}
	header := fmt.Sprintf("%s  %s  %s",
		titleStyle.Render("TypeRush"),
		labelStyle.Render(fmt.Sprintf("Time %ds", s.RemainingSeconds)),
		labelStyle.Render("Ghost "+ghostState),
	)
	live := fmt.Sprintf("WPM %d  Accuracy %d%%  Raw %d", s.Stats.NetSpeed, s.Stats.Accuracy, s.Stats.RawSpeed)

	m.bar.Width = width
	lines := []string{
		header,
		"",
		renderTextWindow(s.ReferenceText, s.TypedText, width),
		"",
		m.bar.ViewAs(s.Progress()),
		live,
	}
	if race := m.renderRace(s); race != "" {
		lines = append(lines, "", race)
	}
	lines = append(lines, "", m.renderFooter())
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

// renderTextWindow shows the reference from a little before the cursor, wrapped to width.
func renderTextWindow(target, input []rune, width int) string {
	cursor := len(input)
	cursorIndex := -1
	if cursor < len(target) {
		cursorIndex = cursor
	}
	start := windowStart(target, cursor)
	var visibleInput []rune
	if len(input) > start {
		visibleInput = input[start:]
	}
	if cursorIndex >= 0 {
		cursorIndex -= start
	}
	glyphs := styleText(target[start:], visibleInput, cursorIndex)
	wrapped := strings.Split(wrapGlyphs(glyphs, width), "\n")
	if len(wrapped) > maxTextLines {
		wrapped = wrapped[:maxTextLines]
	}
	return strings.Join(wrapped, "\n")
}

// windowStart returns where the visible text begins, snapped forward to a word start so words
// are never cut in half.
func windowStart(target []rune, cursor int) int {
	start := max(cursor-contextBehind, 0)
	if start == 0 {
		return 0
	}
	for i := start; i < cursor && i < len(target); i++ {
		if target[i-1] == ' ' {
			return i
		}
	}
	return start
}

func (m *Model) renderRace(s engine.Session) string {
	if !m.ctrl.GhostEnabled() {
		return ""
	}
	if s.State == engine.StateIdle {
		return labelStyle.Render("Start typing to begin the race!")
	}
	cmp, ok := m.ctrl.Comparison()
	if !ok {
		return labelStyle.Render("No ghost recording loaded.")
	}
	trackWidth := max(m.contentWidth()-18, 10)
	m.track.Width = trackWidth
	m.bar.Width = trackWidth
	tag := behindStyle.Render("CATCH UP!")
	if cmp.Ahead {
		tag = aheadStyle.Render("AHEAD!")
	}
	you := fmt.Sprintf("%-6s%s %3d WPM", "You", m.bar.ViewAs(cmp.LivePosition), cmp.LiveSpeed)
	ghost := fmt.Sprintf("%-6s%s %3d WPM", "Ghost", m.track.ViewAs(cmp.GhostPosition), cmp.GhostSpeed)
	return strings.Join([]string{you, ghost, tag + "  " + leadLine(cmp.Lead)}, "\n")
}

func leadLine(lead int) string {
	switch {
	case lead > 0:
		return fmt.Sprintf("You're %d WPM faster than your previous run", lead)
	case lead < 0:
		return fmt.Sprintf("You're %d WPM behind your previous run", -lead)
	default:
		return "Neck and neck with your previous run"
	}
}

func (m *Model) renderFooter() string {
	s := m.ctrl.Session()
	segments := []string{fmt.Sprintf("Progress %d%%", int(s.Progress()*100))}
	if len(m.history) > 0 {
		last := m.history[len(m.history)-1]
		best := lo.MaxBy(m.history, func(a, b model.ScoreRecord) bool { return a.NetSpeed > b.NetSpeed })
		segments = append(segments,
			fmt.Sprintf("Last %d WPM · %d%%", last.NetSpeed, last.Accuracy),
			fmt.Sprintf("Best %d WPM", best.NetSpeed),
		)
	}
	segments = append(segments, fmt.Sprintf("%ds", s.DurationBudget))
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) renderResults() string {
	res, ok := m.ctrl.Result()
	s := m.ctrl.Session()
	if !ok || s.Result == nil {
		return strings.Join([]string{
			titleStyle.Render("Time's up!"),
			"",
			"Nothing was typed, so no score was recorded.",
			labelStyle.Render("Press enter to try again."),
		}, "\n")
	}
	st := res.Stats
	lines := []string{
		titleStyle.Render("Results"),
		"",
		fmt.Sprintf("%s %s", labelStyle.Render("Rating"), statsPkg.Rate(st.NetSpeed, st.Accuracy)),
		fmt.Sprintf("%s %d  %s", labelStyle.Render("WPM"), st.NetSpeed, statsPkg.SpeedRemark(st.NetSpeed)),
		fmt.Sprintf("%s %d%%  %s %d", labelStyle.Render("Accuracy"), st.Accuracy, labelStyle.Render("Raw"), st.RawSpeed),
		fmt.Sprintf("%s %d (%d correct, %d incorrect)", labelStyle.Render("Keystrokes"), st.Keystrokes, st.Correct, st.Incorrect),
		fmt.Sprintf("%s %ds of %ds", labelStyle.Render("Time"), res.DurationUsed, res.DurationBudget),
	}
	if len(res.Progression) > 0 {
		peak := lo.MaxBy(res.Samples(), func(a, b model.ProgressionSample) bool { return a.Speed > b.Speed })
		lines = append(lines,
			fmt.Sprintf("%s %s", labelStyle.Render("Speed"), statsPkg.Sparkline(statsPkg.IntsToFloats(res.Progression))),
			fmt.Sprintf("%s %d WPM at %ds", labelStyle.Render("Peak"), peak.Speed, peak.Second+1),
		)
	}
	if rec, ok := m.ctrl.Ghost(); ok {
		lines = append(lines, ghostVerdict(st.NetSpeed, rec.FinalSpeed))
	}
	lines = append(lines, "")
	if cells := statsPkg.Heatmap(st.Errors, statsPkg.DefaultHeatmapSize); len(cells) > 0 {
		lines = append(lines, labelStyle.Render("Most missed keys"), renderHeatmap(cells))
	} else {
		lines = append(lines, "No mistakes. Clean run!")
	}
	lines = append(lines, "", m.renderFooter())
	return strings.Join(lines, "\n")
}

func ghostVerdict(speed, ghostSpeed int) string {
	switch {
	case speed > ghostSpeed:
		return aheadStyle.Render(fmt.Sprintf("You beat your ghost by %d WPM", speed-ghostSpeed))
	case speed < ghostSpeed:
		return behindStyle.Render(fmt.Sprintf("Your ghost was %d WPM faster", ghostSpeed-speed))
	default:
		return "You tied your ghost"
	}
}

func renderHeatmap(cells []statsPkg.HeatCell) string {
	rows := lo.Map(cells, func(c statsPkg.HeatCell, _ int) table.Row {
		filled := max(statsPkg.Round(c.Intensity*heatBarWidth), 1)
		return table.Row{c.Label, fmt.Sprintf("%d", c.Count), strings.Repeat("█", filled)}
	})
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Key", Width: 6},
			{Title: "Misses", Width: 6},
			{Title: "Heat", Width: heatBarWidth},
		}),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
		table.WithFocused(false),
	)
	styles := table.DefaultStyles()
	styles.Selected = lipgloss.NewStyle()
	t.SetStyles(styles)
	return t.View()
}
