package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// wrongSpace marks a space that was typed as something else.
const wrongSpace = '•'

type charState int

const (
	charPending charState = iota
	charCurrentWord
	charCorrect
	charIncorrect
)

func (s charState) style() lipgloss.Style {
	switch s {
	case charCorrect:
		return correctStyle
	case charIncorrect:
		return incorrectStyle
	case charCurrentWord:
		return currentWordStyle
	default:
		return pendingStyle
	}
}

// glyph is one rendered reference rune.
type glyph struct {
	text  string
	width int
	space bool
}

// styleText renders each reference rune against what was typed over it. cursor is the index of
// the next rune to type, or -1 when the attempt is complete.
func styleText(target, typed []rune, cursor int) []glyph {
	wordStart, wordEnd := currentWord(target, cursor)
	out := make([]glyph, len(target))
	for i, r := range target {
		state := charPending
		switch {
		case i < len(typed) && typed[i] == r:
			state = charCorrect
		case i < len(typed):
			state = charIncorrect
		case r != ' ' && i >= wordStart && i < wordEnd:
			state = charCurrentWord
		}
		shown := r
		if state == charIncorrect && r == ' ' {
			shown = wrongSpace
		}
		style := state.style()
		if i == cursor && i >= len(typed) {
			style = style.Underline(true)
		}
		out[i] = glyph{
			text:  style.Render(string(shown)),
			width: runewidth.RuneWidth(shown),
			space: r == ' ',
		}
	}
	return out
}

// currentWord returns the bounds of the word the cursor is in or about to enter. Past the last
// word it returns the last word.
func currentWord(target []rune, cursor int) (start, end int) {
	start = min(max(cursor, 0), len(target))
	for start < len(target) && target[start] == ' ' {
		start++
	}
	if start == len(target) {
		end = len(target)
		for end > 0 && target[end-1] == ' ' {
			end--
		}
		start = end
	} else {
		end = start
		for end < len(target) && target[end] != ' ' {
			end++
		}
	}
	for start > 0 && target[start-1] != ' ' {
		start--
	}
	return start, end
}

// wrapGlyphs packs whole words into lines of at most width cells. Spaces at a break are dropped
// and words wider than a line are split.
func wrapGlyphs(glyphs []glyph, width int) string {
	if width <= 0 {
		return joinGlyphs(glyphs)
	}
	var (
		lines     []string
		line, gap []glyph
		lineWidth int
	)
	flush := func() {
		lines = append(lines, joinGlyphs(line))
		line = nil
		lineWidth = 0
	}
	for _, tok := range tokenize(glyphs) {
		if tok[0].space {
			gap = tok
			continue
		}
		if len(line) > 0 && lineWidth+widthOf(gap)+widthOf(tok) > width {
			flush()
			gap = nil
		}
		line = append(line, gap...)
		lineWidth += widthOf(gap)
		gap = nil
		for _, g := range tok {
			if len(line) > 0 && lineWidth+g.width > width {
				flush()
			}
			line = append(line, g)
			lineWidth += g.width
		}
	}
	if len(gap) > 0 && lineWidth+widthOf(gap) <= width {
		line = append(line, gap...)
	}
	flush()
	return strings.Join(lines, "\n")
}

// tokenize splits glyphs into alternating runs of spaces and words.
func tokenize(glyphs []glyph) [][]glyph {
	var toks [][]glyph
	for i := 0; i < len(glyphs); {
		j := i + 1
		for j < len(glyphs) && glyphs[j].space == glyphs[i].space {
			j++
		}
		toks = append(toks, glyphs[i:j])
		i = j
	}
	return toks
}

func widthOf(glyphs []glyph) int {
	total := 0
	for _, g := range glyphs {
		total += g.width
	}
	return total
}

func joinGlyphs(glyphs []glyph) string {
	var b strings.Builder
	for _, g := range glyphs {
		b.WriteString(g.text)
	}
	return b.String()
}
