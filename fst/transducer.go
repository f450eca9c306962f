package fst

import (
	"math"
	"sort"

	"github.com/huangruizhe/gentle/internal/mathutil"
)

// Transducer is an in-memory view of a parsed text transducer.
type Transducer struct {
	Edges  []Edge
	Finals map[int]float64

	start    int
	hasStart bool
	out      map[int][]int // state -> indices into Edges
}

// NewTransducer creates an empty transducer.
func NewTransducer() *Transducer {
	return &Transducer{
		Finals: make(map[int]float64),
		out:    make(map[int][]int),
	}
}

// AddEdge appends an edge. The first edge added fixes the start state.
func (t *Transducer) AddEdge(e Edge) {
	if !t.hasStart {
		t.start = e.From
		t.hasStart = true
	}
	t.out[e.From] = append(t.out[e.From], len(t.Edges))
	t.Edges = append(t.Edges, e)
}

// SetFinal marks state as accepting with the given final weight.
func (t *Transducer) SetFinal(state int, weight float64) {
	t.Finals[state] = weight
}

// Start returns the start state, or false if the transducer has no edges.
func (t *Transducer) Start() (int, bool) {
	return t.start, t.hasStart
}

// States returns every state that appears on an edge or as a final state, sorted.
func (t *Transducer) States() []int {
	seen := make(map[int]bool)
	for _, e := range t.Edges {
		seen[e.From] = true
		seen[e.To] = true
	}
	for s := range t.Finals {
		seen[s] = true
	}
	states := make([]int, 0, len(seen))
	for s := range seen {
		states = append(states, s)
	}
	sort.Ints(states)
	return states
}

// Successors returns the outgoing edges of state in file order.
func (t *Transducer) Successors(state int) []Edge {
	idx := t.out[state]
	edges := make([]Edge, len(idx))
	for i, j := range idx {
		edges[i] = t.Edges[j]
	}
	return edges
}

// Labels returns the set of input labels on the outgoing edges of state.
func (t *Transducer) Labels(state int) map[string]bool {
	labels := make(map[string]bool, len(t.out[state]))
	for _, j := range t.out[state] {
		labels[t.Edges[j].In] = true
	}
	return labels
}

// OutgoingMass returns sum(exp(-weight)) over the outgoing edges of state.
// A stochastic state has mass 1.
func (t *Transducer) OutgoingMass(state int) float64 {
	idx := t.out[state]
	costs := make([]float64, len(idx))
	for i, j := range idx {
		costs[i] = t.Edges[j].Weight
	}
	return mathutil.CostMass(costs)
}

// Accepts reports whether the label sequence has a path from the start state
// to a final state, and returns the lowest total cost among such paths.
// Every edge consumes one input label; there are no epsilon arcs.
func (t *Transducer) Accepts(labels []string) (float64, bool) {
	if !t.hasStart {
		return 0, false
	}
	active := map[int]float64{t.start: 0}
	for _, label := range labels {
		next := make(map[int]float64)
		for state, cost := range active {
			for _, j := range t.out[state] {
				e := t.Edges[j]
				if e.In != label {
					continue
				}
				c := cost + e.Weight
				if prev, ok := next[e.To]; !ok || c < prev {
					next[e.To] = c
				}
			}
		}
		if len(next) == 0 {
			return 0, false
		}
		active = next
	}

	best := math.Inf(1)
	for state, cost := range active {
		if fw, ok := t.Finals[state]; ok && cost+fw < best {
			best = cost + fw
		}
	}
	if math.IsInf(best, 1) {
		return 0, false
	}
	return best, true
}
