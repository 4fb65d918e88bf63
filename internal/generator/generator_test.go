package generator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode"
)

func TestGenerateRespectsCount(t *testing.T) {
	g := NewWithSeed(1)
	words := g.Generate([]string{"alpha", "beta"}, 12, Style{})
	if len(words) != 12 {
		t.Fatalf("expected 12 words, got %d", len(words))
	}
	for _, w := range words {
		if w != "alpha" && w != "beta" {
			t.Fatalf("unexpected word %q", w)
		}
	}
}

func TestGenerateCapsAndPunct(t *testing.T) {
	g := NewWithSeed(7)
	words := g.Generate([]string{"word"}, 5, Style{CapsPct: 1, PunctPct: 1, PunctSet: []rune{'!'}})
	for _, w := range words {
		if w != "Word!" {
			t.Fatalf("expected caps and punctuation on every word, got %q", w)
		}
	}
}

func TestGenerateWeightedPrefersWeakWords(t *testing.T) {
	g := NewWithSeed(3)
	weak := map[rune]struct{}{'z': {}}
	words := g.GenerateWeighted([]string{"aaa", "zzz"}, 200, Style{}, weak, 50)
	hits := 0
	for _, w := range words {
		if w == "zzz" {
			hits++
		}
	}
	if hits < 150 {
		t.Fatalf("expected weighted selection to favour weak words, got %d/200", hits)
	}
}

func TestProviderFetchText(t *testing.T) {
	p := NewProvider(NewWithSeed(1), []string{"quick", "brown", "fox"}, Options{Words: 6})
	text, err := p.FetchText(context.Background())
	if err != nil {
		t.Fatalf("fetch text: %v", err)
	}
	if len(strings.Fields(text)) != 6 {
		t.Fatalf("expected 6 words, got %q", text)
	}
	runes := []rune(text)
	if !unicode.IsUpper(runes[0]) {
		t.Fatalf("expected capitalized passage, got %q", text)
	}
	if !strings.HasSuffix(text, ".") {
		t.Fatalf("expected terminal period, got %q", text)
	}
}

func TestProviderKeepsTrailingPunctuation(t *testing.T) {
	p := NewProvider(NewWithSeed(1), []string{"done"}, Options{Words: 2, PunctPct: 1, PunctSet: []rune{'?'}})
	text, err := p.FetchText(context.Background())
	if err != nil {
		t.Fatalf("fetch text: %v", err)
	}
	if text != "Done? done?" {
		t.Fatalf("unexpected passage %q", text)
	}
}

func TestProviderErrors(t *testing.T) {
	if _, err := NewProvider(nil, nil, Options{}).FetchText(context.Background()); !errors.Is(err, ErrNoWords) {
		t.Fatalf("expected ErrNoWords, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProvider(nil, []string{"a"}, Options{}).FetchText(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}
