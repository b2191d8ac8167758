// Package ddr builds distributed dictionary representations: mean embedding
// vectors for lexicon categories and for documents, compared by cosine
// similarity.
package ddr

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// ErrNoResolvable means not a single group resolved a vector, so the batch
// has nothing meaningful to score.
var ErrNoResolvable = errors.New("ddr: no group resolved any vectors")

// Undefined returns the marker vector for a group with zero resolvable
// tokens: every component NaN. A zero vector would be indistinguishable from
// a legitimate center, so NaN it is.
func Undefined(dim int) []float64 {
	v := make([]float64, dim)
	for i := range v {
		v[i] = math.NaN()
	}
	return v
}

// IsUndefined reports whether v carries no defined component.
func IsUndefined(v []float64) bool {
	for _, x := range v {
		if !math.IsNaN(x) {
			return false
		}
	}
	return true
}

// Norm returns the Euclidean norm of v.
func Norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// VectorSet is an ordered collection of equal-dimension vectors keyed by
// document id or category label. Key order is input order and is what fixes
// matrix row/column order downstream.
type VectorSet struct {
	Keys    []string
	Vectors map[string][]float64
	Dim     int
}

// Vector returns the vector for a key, if present.
func (s *VectorSet) Vector(key string) ([]float64, bool) {
	v, ok := s.Vectors[key]
	return v, ok
}

// Len returns the number of vectors.
func (s *VectorSet) Len() int { return len(s.Keys) }

// UndefinedKeys returns the keys whose vectors are undefined, sorted.
func (s *VectorSet) UndefinedKeys() []string {
	var out []string
	for _, k := range s.Keys {
		if IsUndefined(s.Vectors[k]) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
