// Package wordlist loads word lists from files.
package wordlist

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed words_en.txt
var defaultEnglish string

// LoadWords reads one word per line from the provided file path.
func LoadWords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()
	return readWords(file)
}

// Default returns the bundled English word list.
func Default() []string {
	words, err := readWords(strings.NewReader(defaultEnglish))
	if err != nil {
		panic(fmt.Sprintf("bundled word list: %v", err))
	}
	return words
}

// Load reads path when set and falls back to the bundled list otherwise.
// The result is cleaned for lang.
func Load(path, lang string) ([]string, error) {
	words := Default()
	if path != "" {
		var err error
		if words, err = LoadWords(path); err != nil {
			return nil, err
		}
	}
	kept := Clean(words, lang)
	if len(kept) == 0 {
		return nil, fmt.Errorf("no %s words left in word list", lang)
	}
	return kept, nil
}

func readWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}
