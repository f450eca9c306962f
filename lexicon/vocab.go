package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/huangruizhe/gentle/language"
)

// Vocabulary is the set of words the decoding graph can emit.
type Vocabulary struct {
	ids map[string]int
}

// NewVocabulary creates a vocabulary from a word list. Ids follow list order.
func NewVocabulary(words ...string) *Vocabulary {
	v := &Vocabulary{ids: make(map[string]int, len(words))}
	for i, w := range words {
		v.ids[w] = i + 1
	}
	return v
}

// LoadVocabulary reads a Kaldi symbol table (words.txt).
// Format: word<SPACE>id, one per line. The epsilon symbol and "#"
// disambiguation symbols are not words and are skipped.
func LoadVocabulary(r io.Reader) (*Vocabulary, error) {
	v := &Vocabulary{ids: make(map[string]int)}
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: expected 2 fields, got %d", lineNum, len(fields))
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: parse symbol id: %w", lineNum, err)
		}
		word := fields[0]
		if word == "<eps>" || strings.HasPrefix(word, "#") {
			continue
		}
		v.ids[word] = id
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return v, nil
}

// LoadVocabularyFile is a convenience wrapper that opens a file path.
func LoadVocabularyFile(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadVocabulary(f)
}

// Contains reports whether word is in the vocabulary.
func (v *Vocabulary) Contains(word string) bool {
	_, ok := v.ids[word]
	return ok
}

// Len returns the number of words.
func (v *Vocabulary) Len() int {
	return len(v.ids)
}

// Normalize maps every word missing from the vocabulary to the OOV label.
// Words are expected to be tokenized already (see Tokenize).
func (v *Vocabulary) Normalize(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		if v.Contains(w) {
			out[i] = w
		} else {
			out[i] = language.OOV
		}
	}
	return out
}
