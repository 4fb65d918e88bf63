package generator

import (
	"context"
	"errors"
	"strings"
	"unicode"
)

// ErrNoWords is returned when a provider has nothing to draw from.
var ErrNoWords = errors.New("word list is empty")

// Options tune generated passages.
type Options struct {
	Words    int
	CapsPct  float64
	PunctPct float64
	PunctSet []rune
	// Weak biases selection toward words containing these characters.
	Weak       map[rune]struct{}
	WeakFactor float64
}

// Provider turns a word list into sentence-like reference texts.
type Provider struct {
	gen   *Generator
	words []string
	opts  Options
}

// NewProvider returns a Provider drawing from words. A nil gen uses a time-seeded Generator.
func NewProvider(gen *Generator, words []string, opts Options) *Provider {
	if gen == nil {
		gen = New()
	}
	if opts.Words <= 0 {
		opts.Words = 25
	}
	return &Provider{gen: gen, words: words, opts: opts}
}

// FetchText returns a new passage that starts with a capital letter and ends with punctuation.
func (p *Provider) FetchText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(p.words) == 0 {
		return "", ErrNoWords
	}
	style := Style{CapsPct: p.opts.CapsPct, PunctPct: p.opts.PunctPct, PunctSet: p.opts.PunctSet}
	var picked []string
	if len(p.opts.Weak) > 0 && p.opts.WeakFactor > 0 {
		picked = p.gen.GenerateWeighted(p.words, p.opts.Words, style, p.opts.Weak, p.opts.WeakFactor)
	} else {
		picked = p.gen.Generate(p.words, p.opts.Words, style)
	}
	text := capitalize(strings.Join(picked, " "))
	last := []rune(text)
	if len(last) > 0 && !unicode.IsPunct(last[len(last)-1]) {
		text += "."
	}
	return text, nil
}
