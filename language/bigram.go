package language

import (
	"sort"

	"github.com/huangruizhe/gentle/fst"
	"github.com/huangruizhe/gentle/internal/mathutil"
)

// BigramBuilder builds a bigram grammar from word sequences. Every word that
// follows another word in some sequence becomes an allowed transition, and
// each word's outgoing transitions are uniformly weighted. All occurrences of
// a word share one state.
//
// OOV acts as the universal start and end: every first word follows it and
// every last word precedes it.
type BigramBuilder struct{}

// Build implements GraphBuilder. It never fails.
func (BigramBuilder) Build(seqs WordSequenceSet, opts Options) ([]byte, error) {
	g := newBigramGraph()
	for _, seq := range seqs.NonEmpty() {
		g.AddSequence(seq, opts)
	}
	edges, final := g.Edges()
	return fst.Marshal(edges, final), nil
}

// bigramGraph accumulates successor sets for one build.
type bigramGraph struct {
	successors map[string]map[string]struct{}
}

func newBigramGraph() *bigramGraph {
	g := &bigramGraph{successors: make(map[string]map[string]struct{})}
	g.add(OOV, OOV)
	return g
}

// add records each of to as a successor of from. The source gets an entry
// even when to is empty.
func (g *bigramGraph) add(from string, to ...string) {
	set, ok := g.successors[from]
	if !ok {
		set = make(map[string]struct{})
		g.successors[from] = set
	}
	for _, w := range to {
		set[w] = struct{}{}
	}
}

// AddSequence records the transitions of one non-empty sequence.
func (g *bigramGraph) AddSequence(seq WordSequence, opts Options) {
	dis := opts.disfluencies()

	prev := seq[0]
	g.add(OOV, prev)
	g.add(OOV, dis...)
	for _, d := range dis {
		g.add(d, prev, OOV)
	}

	for _, word := range seq[1:] {
		g.add(prev, word)
		if opts.Conservative {
			g.add(prev, OOV)
		}
		g.add(prev, dis...)
		for _, d := range dis {
			g.add(d, word)
		}
		prev = word
	}

	g.add(prev, OOV)
}

// Edges assigns state ids while walking sources and their successors in
// sorted order, and returns the weighted edges plus the final state, which
// is the last id assigned.
func (g *bigramGraph) Edges() ([]fst.Edge, int) {
	ids := make(nodeIDs)
	var edges []fst.Edge

	for _, from := range sortedKeys(g.successors) {
		fromID := ids.id(from)
		succ := sortedKeys(g.successors[from])
		weight := mathutil.UniformCost(len(succ))
		for _, to := range succ {
			edges = append(edges, fst.NewEdge(fromID, ids.id(to), to, weight))
		}
	}
	return edges, len(ids)
}

// nodeIDs assigns state ids to words in order of first use, starting at 1.
type nodeIDs map[string]int

func (n nodeIDs) id(word string) int {
	if id, ok := n[word]; ok {
		return id
	}
	id := len(n) + 1
	n[word] = id
	return id
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
