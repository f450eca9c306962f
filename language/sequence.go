package language

// OOV is the label standing for any out-of-vocabulary word.
const OOV = "<unk>"

// DefaultDisfluencies are the filler words interleaved when disfluency
// modeling is enabled and no other set is configured.
var DefaultDisfluencies = []string{"uh", "um"}

// WordSequence is one candidate transcript as a sequence of word tokens.
type WordSequence []string

// WordSequenceSet is an ordered set of candidate transcripts.
type WordSequenceSet []WordSequence

// SingleSequence wraps one flat word sequence as a one-element set.
func SingleSequence(words ...string) WordSequenceSet {
	return WordSequenceSet{append(WordSequence(nil), words...)}
}

// SequenceSet builds a set from several word sequences. Inputs are copied.
func SequenceSet(seqs ...[]string) WordSequenceSet {
	set := make(WordSequenceSet, len(seqs))
	for i, s := range seqs {
		set[i] = append(WordSequence(nil), s...)
	}
	return set
}

// NonEmpty returns the sequences that contain at least one word.
func (s WordSequenceSet) NonEmpty() WordSequenceSet {
	out := make(WordSequenceSet, 0, len(s))
	for _, seq := range s {
		if len(seq) > 0 {
			out = append(out, seq)
		}
	}
	return out
}

// Options controls what may be interleaved between transcript words.
type Options struct {
	Conservative bool     // allow an OOV insertion at every position
	Disfluency   bool     // allow disfluency insertions at every position
	Disfluencies []string // used when Disfluency is set
}

// disfluencies returns the configured disfluency words, or nil when
// disfluency modeling is off.
func (o Options) disfluencies() []string {
	if !o.Disfluency {
		return nil
	}
	if o.Disfluencies == nil {
		return DefaultDisfluencies
	}
	return o.Disfluencies
}
