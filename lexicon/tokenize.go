package lexicon

import (
	"regexp"
	"strings"
)

// wordRe matches runs of letters, combining marks, digits and underscores,
// optionally joined by apostrophes ("don't", "rock'n'roll").
var wordRe = regexp.MustCompile(`(?:[\p{L}\p{M}\p{N}_]|['’][\p{L}\p{M}\p{N}_])+`)

// Tokenize splits transcript text into lowercase word tokens, dropping
// punctuation. Typographic apostrophes become ASCII ones.
func Tokenize(text string) []string {
	matches := wordRe.FindAllString(text, -1)
	words := make([]string, len(matches))
	for i, m := range matches {
		words[i] = strings.ReplaceAll(strings.ToLower(m), "’", "'")
	}
	return words
}
