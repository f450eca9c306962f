package language

import "github.com/huangruizhe/gentle/fst"

// Fixed costs of transcript graph edges. They bias alignment toward the
// literal words without forming a probability distribution.
const (
	LiteralWeight = 2.0
	OOVWeight     = 0.0
)

// TranscriptBuilder builds an exact acceptor: one linear chain per sequence,
// all chains sharing start state 0 and a single end state. Each word edge has
// a parallel OOV edge, so any word may be replaced by OOV.
//
// States are positions within a chain, not words: the same word in two
// sequences yields two distinct states.
type TranscriptBuilder struct{}

// Build implements GraphBuilder. It returns an *InvariantError if the number
// of allocated states disagrees with the input.
func (TranscriptBuilder) Build(seqs WordSequenceSet, opts Options) ([]byte, error) {
	seqs = seqs.NonEmpty()
	g := newTranscriptGraph(seqs, opts)
	for _, seq := range seqs {
		g.AddSequence(seq)
	}
	if err := g.Check(); err != nil {
		return nil, err
	}
	fst.SortEdges(g.edges)
	return fst.Marshal(g.edges, g.end), nil
}

type transcriptGraph struct {
	opts  Options
	end   int // shared end state
	next  int // next free intermediate state
	edges []fst.Edge

	startLooped bool
	endLooped   bool
}

func newTranscriptGraph(seqs WordSequenceSet, opts Options) *transcriptGraph {
	end := 1
	for _, seq := range seqs {
		if len(seq) > 1 {
			end += len(seq) - 1
		}
	}
	return &transcriptGraph{opts: opts, end: end, next: 1}
}

func (g *transcriptGraph) alloc() int {
	id := g.next
	g.next++
	return id
}

// selfLoops lets disfluencies and OOV words repeat at state.
func (g *transcriptGraph) selfLoops(state int) {
	for _, d := range g.opts.disfluencies() {
		g.edges = append(g.edges, fst.NewEdge(state, state, d, 0))
	}
	if g.opts.Conservative {
		g.edges = append(g.edges, fst.NewEdge(state, state, OOV, 0))
	}
}

// AddSequence appends the chain of one non-empty sequence.
func (g *transcriptGraph) AddSequence(seq WordSequence) {
	if !g.startLooped {
		g.selfLoops(0)
		g.startLooped = true
	}

	cur, next := 0, g.end
	if len(seq) > 1 {
		next = g.alloc()
	}
	for i, word := range seq {
		g.edges = append(g.edges,
			fst.NewEdge(cur, next, word, LiteralWeight),
			fst.NewEdge(cur, next, OOV, OOVWeight),
		)
		if i == len(seq)-1 {
			break
		}
		cur = next
		if i == len(seq)-2 {
			next = g.end
		} else {
			next = g.alloc()
		}
		g.selfLoops(cur)
	}

	if !g.endLooped {
		g.selfLoops(g.end)
		g.endLooped = true
	}
}

// Check verifies that every intermediate state below the end state was
// allocated exactly once.
func (g *transcriptGraph) Check() error {
	want := g.end - 1
	if got := g.next - 1; got != want {
		return &InvariantError{Expected: want, Actual: got}
	}
	return nil
}
