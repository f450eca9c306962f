// Package language builds the per-utterance grammar transducers that
// constrain forced alignment to the words of a transcript.
package language

import (
	"fmt"
	"sort"
)

// GraphBuilder turns candidate word sequences into transducer text.
type GraphBuilder interface {
	Build(seqs WordSequenceSet, opts Options) ([]byte, error)
}

// Strategy names accepted by NewGraphBuilder.
const (
	StrategyBigram     = "bigram"
	StrategyTranscript = "transcript"
)

var builders = map[string]GraphBuilder{
	StrategyBigram:     BigramBuilder{},
	StrategyTranscript: TranscriptBuilder{},
}

// NewGraphBuilder returns the builder registered under name.
func NewGraphBuilder(name string) (GraphBuilder, error) {
	b, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown graph strategy %q (want one of %v)", name, Strategies())
	}
	return b, nil
}

// Strategies returns the registered strategy names, sorted.
func Strategies() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InvariantError reports a transcript graph whose allocated node count does
// not match the count implied by its input. It indicates a construction
// defect, never bad input.
type InvariantError struct {
	Expected int
	Actual   int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("transcript graph: allocated %d intermediate nodes, expected %d", e.Actual, e.Expected)
}
