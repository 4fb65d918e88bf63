// Package generator builds typing text sequences.
package generator

import (
	"math/rand"
	"sort"
	"sync"
	"time"
	"unicode"

	"github.com/samber/lo"
)

// Style decorates picked words.
type Style struct {
	CapsPct  float64
	PunctPct float64
	PunctSet []rune
}

// Generator produces randomized typing text. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Generator.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate picks count words uniformly.
func (g *Generator) Generate(words []string, count int, style Style) []string {
	return g.generate(words, count, style, nil)
}

// GenerateWeighted favours words containing weak runes. A word weighs 1 plus factor for every
// weak rune it contains.
func (g *Generator) GenerateWeighted(words []string, count int, style Style, weak map[rune]struct{}, factor float64) []string {
	cumulative := make([]float64, len(words))
	total := 0.0
	for i, word := range words {
		hits := lo.CountBy([]rune(word), func(r rune) bool {
			_, ok := weak[r]
			return ok
		})
		total += 1 + float64(hits)*factor
		cumulative[i] = total
	}
	return g.generate(words, count, style, cumulative)
}

func (g *Generator) generate(words []string, count int, style Style, cumulative []float64) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, max(count, 0))
	for i := range out {
		out[i] = g.decorate(words[g.pick(len(words), cumulative)], style)
	}
	return out
}

// pick draws an index, uniformly when cumulative is nil.
func (g *Generator) pick(n int, cumulative []float64) int {
	if cumulative == nil {
		return g.rnd.Intn(n)
	}
	target := g.rnd.Float64() * cumulative[len(cumulative)-1]
	return min(sort.SearchFloat64s(cumulative, target), n-1)
}

func (g *Generator) decorate(word string, style Style) string {
	if style.CapsPct > 0 && g.rnd.Float64() <= style.CapsPct {
		word = capitalize(word)
	}
	if style.PunctPct > 0 && len(style.PunctSet) > 0 && g.rnd.Float64() <= style.PunctPct {
		word += string(style.PunctSet[g.rnd.Intn(len(style.PunctSet))])
	}
	return word
}

func capitalize(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
