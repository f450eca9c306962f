package language

import (
	"bytes"
	"errors"
	"testing"

	"github.com/huangruizhe/gentle/fst"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseGraph(t *testing.T, text []byte) *fst.Transducer {
	t.Helper()
	tr, err := fst.Parse(bytes.NewReader(text))
	require.NoError(t, err)
	return tr
}

func TestTranscriptTwoChains(t *testing.T) {
	out, err := TranscriptBuilder{}.Build(SequenceSet([]string{"a", "b"}, []string{"a", "c"}), Options{})
	require.NoError(t, err)

	want := "0 1 <unk> <unk> 0\n" +
		"0 1 a a 2\n" +
		"0 2 <unk> <unk> 0\n" +
		"0 2 a a 2\n" +
		"1 3 <unk> <unk> 0\n" +
		"1 3 b b 2\n" +
		"2 3 <unk> <unk> 0\n" +
		"2 3 c c 2\n" +
		"3 0\n"
	assert.Equal(t, want, string(out))

	tr := parseGraph(t, out)
	assert.Len(t, tr.Successors(0), 4)
	assert.Equal(t, map[int]float64{3: 0}, tr.Finals)
}

func TestTranscriptSingleWord(t *testing.T) {
	out, err := TranscriptBuilder{}.Build(SingleSequence("hi"), Options{})
	require.NoError(t, err)
	assert.Equal(t, "0 1 <unk> <unk> 0\n0 1 hi hi 2\n1 0\n", string(out))
}

func TestTranscriptSelfLoops(t *testing.T) {
	opts := Options{Conservative: true, Disfluency: true, Disfluencies: []string{"uh"}}
	out, err := TranscriptBuilder{}.Build(SequenceSet([]string{"a", "b", "c"}, []string{"d"}), opts)
	require.NoError(t, err)
	tr := parseGraph(t, out)

	// chain 0 -> 1 -> 2 -> 3, and 0 -> 3 for "d"
	assert.Equal(t, []int{0, 1, 2, 3}, tr.States())
	for _, s := range tr.States() {
		loops := map[string]int{}
		for _, e := range tr.Successors(s) {
			if e.From == e.To {
				loops[e.In]++
			}
		}
		assert.Equal(t, map[string]int{"uh": 1, OOV: 1}, loops, "state %d", s)
	}
	// 4 words * 2 edges + 4 states * 2 loops
	assert.Len(t, tr.Edges, 16)
}

func TestTranscriptEndState(t *testing.T) {
	tests := []struct {
		name string
		seqs WordSequenceSet
		end  int
	}{
		{"one word", SingleSequence("a"), 1},
		{"two words", SingleSequence("a", "b"), 2},
		{"mixed", SequenceSet([]string{"a", "b", "c"}, []string{"d"}, []string{"e", "f"}), 4},
		{"with empty", SequenceSet(nil, []string{"a", "b", "c", "d"}, []string{}), 4},
		{"all empty", SequenceSet(nil), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := TranscriptBuilder{}.Build(tt.seqs, Options{})
			require.NoError(t, err)
			tr := parseGraph(t, out)
			assert.Equal(t, map[int]float64{tt.end: 0}, tr.Finals)
			for _, e := range tr.Edges {
				assert.LessOrEqual(t, e.To, tt.end)
				assert.Less(t, e.From, tt.end)
			}
		})
	}
}

func TestTranscriptAccepts(t *testing.T) {
	out, err := TranscriptBuilder{}.Build(SequenceSet([]string{"a", "b", "c"}, []string{"x", "y"}), Options{})
	require.NoError(t, err)
	tr := parseGraph(t, out)

	tests := []struct {
		labels []string
		cost   float64
		ok     bool
	}{
		{[]string{"a", "b", "c"}, 6, true},
		{[]string{"x", "y"}, 4, true},
		{[]string{"a", OOV, "c"}, 4, true},
		{[]string{OOV, OOV}, 0, true},
		{[]string{"a", "y"}, 0, false},
		{[]string{"a", "b"}, 0, false},
		{[]string{"uh", "x", "y"}, 0, false},
	}
	for _, tt := range tests {
		cost, ok := tr.Accepts(tt.labels)
		assert.Equal(t, tt.ok, ok, "%v", tt.labels)
		if tt.ok {
			assert.InDelta(t, tt.cost, cost, 1e-12, "%v", tt.labels)
		}
	}
}

func TestTranscriptDisfluencyAccepts(t *testing.T) {
	out, err := TranscriptBuilder{}.Build(SingleSequence("a", "b"), Options{Disfluency: true})
	require.NoError(t, err)
	tr := parseGraph(t, out)

	cost, ok := tr.Accepts([]string{"um", "a", "uh", "uh", "b", "um"})
	require.True(t, ok)
	assert.InDelta(t, 4.0, cost, 1e-12)
}

func TestTranscriptInvariantViolation(t *testing.T) {
	seqs := SingleSequence("a", "b", "c")

	g := newTranscriptGraph(seqs, Options{})
	g.AddSequence(seqs[0])
	require.NoError(t, g.Check())

	g.alloc()
	err := g.Check()
	var inv *InvariantError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, 2, inv.Expected)
	assert.Equal(t, 3, inv.Actual)
	assert.Contains(t, err.Error(), "allocated 3 intermediate nodes, expected 2")

	// A set whose sequences were never added allocates nothing.
	g = newTranscriptGraph(SequenceSet([]string{"a", "b"}, []string{"c", "d"}), Options{})
	require.True(t, errors.As(g.Check(), &inv))
	assert.Equal(t, 2, inv.Expected)
	assert.Equal(t, 0, inv.Actual)
}

func TestTranscriptDeterministicAndSkipsEmpty(t *testing.T) {
	opts := Options{Conservative: true, Disfluency: true}
	with, err := TranscriptBuilder{}.Build(SequenceSet([]string{}, []string{"a", "b"}, nil, []string{"c"}), opts)
	require.NoError(t, err)
	without, err := TranscriptBuilder{}.Build(SequenceSet([]string{"a", "b"}, []string{"c"}), opts)
	require.NoError(t, err)
	assert.Equal(t, string(without), string(with))

	again, err := TranscriptBuilder{}.Build(SequenceSet([]string{"a", "b"}, []string{"c"}), opts)
	require.NoError(t, err)
	assert.Equal(t, without, again)
}
