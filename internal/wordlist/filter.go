package wordlist

import (
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

// Longer words are dropped so a single word never fills the text window.
const maxWordLen = 14

// Keep reports whether a word may appear in a generated text.
type Keep func(string) bool

// KeepFor returns the acceptance rule for lang. English lists are limited to lowercase ASCII.
func KeepFor(lang string) Keep {
	if strings.EqualFold(lang, "en") {
		return isLowerASCII
	}
	return func(word string) bool { return word != "" }
}

// Clean drops rejected, overlong and repeated words. First occurrences keep their order.
func Clean(words []string, lang string) []string {
	keep := KeepFor(lang)
	return lo.Uniq(lo.Filter(words, func(word string, _ int) bool {
		return keep(word) && utf8.RuneCountInString(word) <= maxWordLen
	}))
}

func isLowerASCII(word string) bool {
	if word == "" {
		return false
	}
	return strings.IndexFunc(word, func(r rune) bool { return r < 'a' || r > 'z' }) == -1
}
