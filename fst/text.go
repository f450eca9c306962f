package fst

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Write writes edges in OpenFst text format, one "from to in out weight"
// line per edge, followed by a "final 0" line declaring the accepting state.
func Write(w io.Writer, edges []Edge, final int) error {
	bw := bufio.NewWriter(w)
	for _, e := range edges {
		if _, err := fmt.Fprintf(bw, "%d %d %s %s %s\n", e.From, e.To, e.In, e.Out, FormatWeight(e.Weight)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(bw, "%d 0\n", final); err != nil {
		return err
	}
	return bw.Flush()
}

// Marshal returns the text form of edges and final state.
func Marshal(edges []Edge, final int) []byte {
	var buf bytes.Buffer
	// bytes.Buffer writes do not fail.
	_ = Write(&buf, edges, final)
	return buf.Bytes()
}

// FormatWeight returns the shortest decimal form that parses back to w.
func FormatWeight(w float64) string {
	if w == 0 {
		return "0"
	}
	return strconv.FormatFloat(w, 'g', -1, 64)
}

// Parse reads a transducer in OpenFst text format.
// Arc lines carry 4 or 5 fields (weight defaults to 0); final-state lines
// carry 1 or 2. The start state is the source of the first arc.
func Parse(r io.Reader) (*Transducer, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	t := NewTransducer()
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		switch len(fields) {
		case 0:
			continue
		case 1, 2:
			if err := parseFinal(t, fields); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
		case 4, 5:
			e, err := parseEdge(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			t.AddEdge(e)
		default:
			return nil, fmt.Errorf("line %d: unexpected field count %d", lineNum, len(fields))
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

func parseFinal(t *Transducer, fields []string) error {
	state, err := strconv.Atoi(fields[0])
	if err != nil {
		return fmt.Errorf("parse final state: %w", err)
	}
	var weight float64
	if len(fields) == 2 {
		weight, err = strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return fmt.Errorf("parse final weight: %w", err)
		}
	}
	t.SetFinal(state, weight)
	return nil
}

func parseEdge(fields []string) (Edge, error) {
	from, err := strconv.Atoi(fields[0])
	if err != nil {
		return Edge{}, fmt.Errorf("parse source state: %w", err)
	}
	to, err := strconv.Atoi(fields[1])
	if err != nil {
		return Edge{}, fmt.Errorf("parse target state: %w", err)
	}
	e := Edge{From: from, To: to, In: fields[2], Out: fields[3]}
	if len(fields) == 5 {
		e.Weight, err = strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return Edge{}, fmt.Errorf("parse weight: %w", err)
		}
	}
	return e, nil
}
