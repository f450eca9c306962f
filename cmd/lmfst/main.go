package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/huangruizhe/gentle/fst"
	"github.com/huangruizhe/gentle/language"
	"github.com/huangruizhe/gentle/lexicon"
)

func main() {
	strategy := flag.String("strategy", language.StrategyBigram, "grammar strategy (bigram, transcript)")
	conservative := flag.Bool("conservative", false, "allow an OOV word between any two words")
	disfluency := flag.Bool("disfluency", false, "allow disfluencies between words")
	disfluencies := flag.String("disfluencies", strings.Join(language.DefaultDisfluencies, ","), "comma-separated disfluency words")
	tokenize := flag.Bool("tokenize", false, "tokenize raw transcript text instead of splitting on spaces")
	vocabPath := flag.String("vocab", "", "words.txt; words outside it become "+language.OOV)
	output := flag.String("output", "", "output file (default: stdout)")
	check := flag.Bool("check", false, "parse the result back and report its shape")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: lmfst [options] [input-files...]")
		fmt.Fprintln(os.Stderr, "  Builds a grammar transducer in OpenFst text format.")
		fmt.Fprintln(os.Stderr, "  Input: one candidate transcript per line.")
		fmt.Fprintln(os.Stderr, "  If no input files given, reads from stdin.")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	builder, err := language.NewGraphBuilder(*strategy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	split := strings.Fields
	if *tokenize {
		split = lexicon.Tokenize
	}

	var seqs language.WordSequenceSet
	if flag.NArg() == 0 {
		seqs = readSequences(os.Stdin, split)
	} else {
		for _, path := range flag.Args() {
			f, err := os.Open(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "open %s: %v\n", path, err)
				continue
			}
			seqs = append(seqs, readSequences(f, split)...)
			f.Close()
		}
	}

	if *vocabPath != "" {
		vocab, err := lexicon.LoadVocabularyFile(*vocabPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load vocabulary: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Loaded vocabulary: %d words\n", vocab.Len())
		for i, seq := range seqs {
			seqs[i] = vocab.Normalize(seq)
		}
	}

	opts := language.Options{
		Conservative: *conservative,
		Disfluency:   *disfluency,
		Disfluencies: splitList(*disfluencies),
	}
	text, err := builder.Build(seqs, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build grammar: %v\n", err)
		os.Exit(1)
	}

	var w *os.File
	if *output != "" {
		w, err = os.Create(*output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create %s: %v\n", *output, err)
			os.Exit(1)
		}
		defer w.Close()
	} else {
		w = os.Stdout
	}
	if _, err := w.Write(text); err != nil {
		fmt.Fprintf(os.Stderr, "write grammar: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Built %s grammar from %d sequences\n", *strategy, len(seqs))
	if *check {
		if err := report(os.Stderr, text); err != nil {
			fmt.Fprintf(os.Stderr, "check: %v\n", err)
			os.Exit(1)
		}
	}
}

// readSequences reads one word sequence per non-blank line.
func readSequences(r io.Reader, split func(string) []string) language.WordSequenceSet {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	var seqs language.WordSequenceSet
	for scanner.Scan() {
		words := split(strings.TrimSpace(scanner.Text()))
		if len(words) > 0 {
			seqs = append(seqs, words)
		}
	}
	return seqs
}

func splitList(s string) []string {
	items := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// report parses grammar text back and prints its size and how far the
// heaviest state is from a normalized distribution.
func report(w io.Writer, text []byte) error {
	t, err := fst.Parse(bytes.NewReader(text))
	if err != nil {
		return err
	}
	maxDev := 0.0
	maxDegree := 0
	labels := make(map[string]bool)
	for _, s := range t.States() {
		out := t.Labels(s)
		if len(out) == 0 {
			continue
		}
		for l := range out {
			labels[l] = true
		}
		maxDegree = max(maxDegree, len(t.Successors(s)))
		maxDev = math.Max(maxDev, math.Abs(t.OutgoingMass(s)-1))
	}
	start, _ := t.Start()
	fmt.Fprintf(w, "States: %d, Edges: %d, Start: %d, Finals: %d\n", len(t.States()), len(t.Edges), start, len(t.Finals))
	fmt.Fprintf(w, "Labels: %d, Max out-degree: %d\n", len(labels), maxDegree)
	fmt.Fprintf(w, "Max |mass-1|: %.6f\n", maxDev)
	return nil
}
