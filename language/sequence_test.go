package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleSequence(t *testing.T) {
	words := []string{"hello", "world"}
	set := SingleSequence(words...)
	require.Len(t, set, 1)
	assert.Equal(t, WordSequence{"hello", "world"}, set[0])

	words[0] = "changed"
	assert.Equal(t, "hello", set[0][0])
}

func TestSequenceSet(t *testing.T) {
	a := []string{"a", "b"}
	set := SequenceSet(a, nil, []string{"c"})
	assert.Equal(t, WordSequenceSet{{"a", "b"}, nil, {"c"}}, set)

	a[1] = "z"
	assert.Equal(t, "b", set[0][1])
	assert.Equal(t, WordSequenceSet{{"a", "b"}, {"c"}}, set.NonEmpty())
}

func TestOptionsDisfluencies(t *testing.T) {
	assert.Nil(t, Options{Disfluencies: []string{"er"}}.disfluencies())
	assert.Equal(t, DefaultDisfluencies, Options{Disfluency: true}.disfluencies())
	assert.Equal(t, []string{"er"}, Options{Disfluency: true, Disfluencies: []string{"er"}}.disfluencies())
	assert.Empty(t, Options{Disfluency: true, Disfluencies: []string{}}.disfluencies())
}

func TestNewGraphBuilder(t *testing.T) {
	b, err := NewGraphBuilder(StrategyBigram)
	require.NoError(t, err)
	assert.IsType(t, BigramBuilder{}, b)

	b, err = NewGraphBuilder(StrategyTranscript)
	require.NoError(t, err)
	assert.IsType(t, TranscriptBuilder{}, b)

	_, err = NewGraphBuilder("trigram")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown graph strategy "trigram"`)

	assert.Equal(t, []string{"bigram", "transcript"}, Strategies())
}

func TestBuildersDiffer(t *testing.T) {
	seqs := SequenceSet([]string{"a", "b"}, []string{"a", "c"})

	bigram, err := BigramBuilder{}.Build(seqs, Options{})
	require.NoError(t, err)
	transcript, err := TranscriptBuilder{}.Build(seqs, Options{})
	require.NoError(t, err)

	// One "a" state per word in the bigram graph, one per chain in the
	// transcript graph.
	assert.Equal(t, 1, targetsOf(t, bigram, "a"))
	assert.Equal(t, 2, targetsOf(t, transcript, "a"))

	_, ok := parseGraph(t, bigram).Accepts([]string{"a", "c"})
	assert.True(t, ok)
}

func targetsOf(t *testing.T, text []byte, label string) int {
	t.Helper()
	targets := map[int]bool{}
	for _, e := range parseGraph(t, text).Edges {
		if e.In == label {
			targets[e.To] = true
		}
	}
	return len(targets)
}
