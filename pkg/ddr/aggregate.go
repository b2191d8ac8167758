package ddr

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/cverna/ddr/pkg/corpus"
	"github.com/cverna/ddr/pkg/embedding"
	"github.com/cverna/ddr/pkg/lexicon"
)

// accumulator is a per-group running mean with per-dimension counts, so a
// NaN component in one contributing vector is skipped in that dimension
// instead of poisoning or zero-filling it.
type accumulator struct {
	sum []float64
	n   []int
}

func newAccumulator(dim int) *accumulator {
	return &accumulator{sum: make([]float64, dim), n: make([]int, dim)}
}

func (a *accumulator) add(v []float64) {
	for i, x := range v {
		if math.IsNaN(x) {
			continue
		}
		a.sum[i] += x
		a.n[i]++
	}
}

// finalize divides per dimension. A dimension no contributor defined stays
// NaN; a group with no contributors at all comes out fully undefined.
func (a *accumulator) finalize() []float64 {
	out := make([]float64, len(a.sum))
	for i := range a.sum {
		if a.n[i] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = a.sum[i] / float64(a.n[i])
	}
	return out
}

// Centers computes one mean vector per lexicon category from the embedding
// table. Tokens missing from the table are skipped, not zero-filled; a
// category resolving zero tokens gets the undefined marker. Fails with
// ErrNoResolvable only when every category is undefined.
func Centers(lex *lexicon.Lexicon, table *embedding.Table) (*VectorSet, error) {
	return centers(lex, table, 0, 0)
}

// CentersSampled is the robustness variant: for each category it draws
// sample member tokens without replacement (all of them when the category is
// smaller) before averaging. The seed fixes the draw, keeping the run
// reproducible.
func CentersSampled(lex *lexicon.Lexicon, table *embedding.Table, sample int, seed int64) (*VectorSet, error) {
	return centers(lex, table, sample, seed)
}

func centers(lex *lexicon.Lexicon, table *embedding.Table, sample int, seed int64) (*VectorSet, error) {
	set := &VectorSet{
		Keys:    append([]string(nil), lex.Categories()...),
		Vectors: make(map[string][]float64, len(lex.Categories())),
		Dim:     table.Dim(),
	}

	var rng *rand.Rand
	if sample > 0 {
		rng = rand.New(rand.NewSource(seed))
	}

	resolvable := 0
	for _, category := range set.Keys {
		members := lex.Members(category)
		if rng != nil && len(members) > sample {
			members = append([]string(nil), members...)
			rng.Shuffle(len(members), func(i, j int) {
				members[i], members[j] = members[j], members[i]
			})
			members = members[:sample]
		}

		acc := newAccumulator(table.Dim())
		hits := 0
		for _, token := range members {
			if vec, ok := table.Vector(token); ok {
				acc.add(vec)
				hits++
			}
		}
		if hits == 0 {
			slog.Warn("ddr: category resolved no tokens", "category", category)
			set.Vectors[category] = Undefined(table.Dim())
			continue
		}
		set.Vectors[category] = acc.finalize()
		resolvable++
	}

	if resolvable == 0 {
		return nil, ErrNoResolvable
	}
	return set, nil
}

// DocumentVectors computes one mean vector per document, grouped by document
// id, with the same missing-token and undefined policies as Centers.
func DocumentVectors(c *corpus.Corpus, table *embedding.Table) (*VectorSet, error) {
	set := &VectorSet{
		Keys:    make([]string, 0, c.Len()),
		Vectors: make(map[string][]float64, c.Len()),
		Dim:     table.Dim(),
	}

	resolvable := 0
	for _, doc := range c.Docs {
		set.Keys = append(set.Keys, doc.ID)

		acc := newAccumulator(table.Dim())
		hits := 0
		for _, token := range doc.Tokens {
			if vec, ok := table.Vector(token); ok {
				acc.add(vec)
				hits++
			}
		}
		if hits == 0 {
			slog.Warn("ddr: document resolved no tokens", "document", doc.ID)
			set.Vectors[doc.ID] = Undefined(table.Dim())
			continue
		}
		set.Vectors[doc.ID] = acc.finalize()
		resolvable++
	}

	if resolvable == 0 {
		return nil, ErrNoResolvable
	}
	return set, nil
}
