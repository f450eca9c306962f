package gentle

import (
	"context"
	"fmt"

	"github.com/huangruizhe/gentle/internal/ctxlog"
	"github.com/huangruizhe/gentle/language"
	"github.com/huangruizhe/gentle/lexicon"
	"github.com/huangruizhe/gentle/mkgraph"
)

// DefaultCompilerPath is the graph compiler binary used when none is configured.
const DefaultCompilerPath = "ext/m3"

// GraphMaker builds the grammar for one utterance and compiles it into a
// decoding graph. A GraphMaker holds no per-call state and may be shared
// between goroutines.
type GraphMaker struct {
	ProtoLangDir string
	Builder      language.GraphBuilder
	Compiler     mkgraph.Compiler
	Options      language.Options
	Vocab        *lexicon.Vocabulary // nil = words are used as given
}

// Option configures a GraphMaker.
type Option func(*GraphMaker)

// WithBuilder sets the grammar construction strategy.
func WithBuilder(b language.GraphBuilder) Option {
	return func(g *GraphMaker) {
		g.Builder = b
	}
}

// WithCompiler sets the graph compiler.
func WithCompiler(c mkgraph.Compiler) Option {
	return func(g *GraphMaker) {
		g.Compiler = c
	}
}

// WithOptions replaces all grammar options at once.
func WithOptions(opts language.Options) Option {
	return func(g *GraphMaker) {
		g.Options = opts
	}
}

// WithConservative allows an OOV word between any two transcript words.
func WithConservative(enabled bool) Option {
	return func(g *GraphMaker) {
		g.Options.Conservative = enabled
	}
}

// WithDisfluency allows disfluencies between transcript words. With no
// words, language.DefaultDisfluencies are used.
func WithDisfluency(enabled bool, words ...string) Option {
	return func(g *GraphMaker) {
		g.Options.Disfluency = enabled
		if len(words) > 0 {
			g.Options.Disfluencies = words
		}
	}
}

// WithVocabulary maps words outside v to the OOV label before building.
func WithVocabulary(v *lexicon.Vocabulary) Option {
	return func(g *GraphMaker) {
		g.Vocab = v
	}
}

// NewGraphMaker creates a GraphMaker for the prototype language directory.
// It defaults to the bigram strategy and the DefaultCompilerPath binary.
func NewGraphMaker(protoLangDir string, opts ...Option) *GraphMaker {
	g := &GraphMaker{
		ProtoLangDir: protoLangDir,
		Builder:      language.BigramBuilder{},
		Compiler:     mkgraph.NewExec(DefaultCompilerPath),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// BuildFST returns the grammar transducer text for seqs.
func (g *GraphMaker) BuildFST(seqs language.WordSequenceSet) ([]byte, error) {
	if g.Vocab != nil {
		normalized := make(language.WordSequenceSet, len(seqs))
		for i, seq := range seqs {
			normalized[i] = g.Vocab.Normalize(seq)
		}
		seqs = normalized
	}
	fst, err := g.Builder.Build(seqs, g.Options)
	if err != nil {
		return nil, fmt.Errorf("build grammar: %w", err)
	}
	return fst, nil
}

// MakeGraph builds the grammar for seqs and compiles it to outPath,
// returning the graph's path. The caller owns the returned file.
func (g *GraphMaker) MakeGraph(ctx context.Context, seqs language.WordSequenceSet, outPath string) (string, error) {
	fst, err := g.BuildFST(seqs)
	if err != nil {
		return "", err
	}
	ctxlog.FromContext(ctx).Debug("Built grammar.", "sequences", len(seqs), "bytes", len(fst))

	path, err := g.Compiler.Compile(ctx, g.ProtoLangDir, fst, outPath)
	if err != nil {
		return "", fmt.Errorf("compile graph: %w", err)
	}
	return path, nil
}

// MakeGraphFromText tokenizes a transcript and makes its graph.
func (g *GraphMaker) MakeGraphFromText(ctx context.Context, transcript, outPath string) (string, error) {
	return g.MakeGraph(ctx, language.SingleSequence(lexicon.Tokenize(transcript)...), outPath)
}
