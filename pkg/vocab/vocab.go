// Package vocab decides which tokens the rest of the pipeline is allowed to
// see. Membership is fixed once at build time: the embedding loader filters
// against it, so the aggregators only ever meet vectors they asked for.
package vocab

import (
	"sort"
)

// Vocabulary is a frequency-tallied token set.
type Vocabulary struct {
	counts  map[string]int
	members map[string]struct{}
}

// WordCount pairs a token with its corpus frequency.
type WordCount struct {
	Word  string
	Count int
}

// Builder tallies token frequencies across documents.
type Builder struct {
	counts map[string]int
}

func NewBuilder() *Builder {
	return &Builder{counts: make(map[string]int)}
}

// AddTokens counts every token occurrence.
func (b *Builder) AddTokens(tokens []string) {
	for _, t := range tokens {
		b.counts[t]++
	}
}

// Build finalizes the vocabulary. A limit > 0 keeps only the limit most
// frequent corpus tokens (ties broken lexicographically so the cut is
// deterministic).
// Every token in lexiconTokens is then unioned in regardless of frequency:
// dictionary words must survive pruning even when rare.
func (b *Builder) Build(limit int, lexiconTokens []string) *Vocabulary {
	v := &Vocabulary{
		counts:  make(map[string]int, len(b.counts)),
		members: make(map[string]struct{}, len(b.counts)),
	}
	for w, n := range b.counts {
		v.counts[w] = n
	}

	if limit > 0 && len(b.counts) > limit {
		ranked := b.Counts()
		for _, wc := range ranked[:limit] {
			v.members[wc.Word] = struct{}{}
		}
	} else {
		for w := range b.counts {
			v.members[w] = struct{}{}
		}
	}

	for _, t := range lexiconTokens {
		v.members[t] = struct{}{}
	}
	return v
}

// Counts returns the tally sorted by descending frequency, ties
// lexicographic.
func (b *Builder) Counts() []WordCount {
	ranked := make([]WordCount, 0, len(b.counts))
	for w, n := range b.counts {
		ranked = append(ranked, WordCount{Word: w, Count: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Word < ranked[j].Word
	})
	return ranked
}

// Contains reports membership.
func (v *Vocabulary) Contains(token string) bool {
	_, ok := v.members[token]
	return ok
}

// Size returns the number of member tokens.
func (v *Vocabulary) Size() int { return len(v.members) }

// Count returns the corpus frequency of a token. Lexicon-only tokens count 0.
func (v *Vocabulary) Count(token string) int { return v.counts[token] }

// Members returns the member tokens sorted lexicographically.
func (v *Vocabulary) Members() []string {
	out := make([]string, 0, len(v.members))
	for w := range v.members {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
