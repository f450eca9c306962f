// Package fst holds the plain-text transducer format consumed by the graph
// compiler: edges, serialization, and a small reader used to inspect and
// check generated graphs.
package fst

import "sort"

// Edge is a single arc of a transducer. Weights are costs in
// negative-log-probability units.
type Edge struct {
	From   int
	To     int
	In     string
	Out    string
	Weight float64
}

// NewEdge creates a label-preserving edge (input label == output label).
func NewEdge(from, to int, label string, weight float64) Edge {
	return Edge{From: from, To: to, In: label, Out: label, Weight: weight}
}

// Less orders edges by (From, To, In, Out, Weight).
func (e Edge) Less(o Edge) bool {
	if e.From != o.From {
		return e.From < o.From
	}
	if e.To != o.To {
		return e.To < o.To
	}
	if e.In != o.In {
		return e.In < o.In
	}
	if e.Out != o.Out {
		return e.Out < o.Out
	}
	return e.Weight < o.Weight
}

// SortEdges sorts edges lexicographically in place.
func SortEdges(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool { return edges[i].Less(edges[j]) })
}
