package ddr

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Matrix is the document-by-category cosine similarity table. Row order
// follows the document set's key order, column order the category set's.
type Matrix struct {
	DocIDs     []string
	Categories []string

	values *mat.Dense
	rowIx  map[string]int
	colIx  map[string]int
}

// Similarity scores every document vector against every category vector.
// Both sets must share one dimension. Undefined and zero-norm vectors
// produce NaN for their whole row or column rather than a division by zero.
func Similarity(docs, cats *VectorSet) (*Matrix, error) {
	if docs.Dim != cats.Dim {
		return nil, errors.Errorf("ddr: similarity dimension mismatch: documents %d, categories %d",
			docs.Dim, cats.Dim)
	}
	if docs.Len() == 0 || cats.Len() == 0 {
		return nil, errors.New("ddr: similarity needs at least one document and one category")
	}

	d := normalized(docs)
	c := normalized(cats)

	var product mat.Dense
	product.Mul(d, c.T())

	m := &Matrix{
		DocIDs:     append([]string(nil), docs.Keys...),
		Categories: append([]string(nil), cats.Keys...),
		values:     &product,
		rowIx:      make(map[string]int, docs.Len()),
		colIx:      make(map[string]int, cats.Len()),
	}
	for i, id := range m.DocIDs {
		m.rowIx[id] = i
	}
	for j, label := range m.Categories {
		m.colIx[label] = j
	}
	return m, nil
}

// normalized stacks the set's vectors in key order as L2-normalized rows.
// Rows that cannot be normalized (undefined, NaN-tainted, or zero norm) are
// filled with NaN so the product carries the marker through.
func normalized(s *VectorSet) *mat.Dense {
	out := mat.NewDense(s.Len(), s.Dim, nil)
	for i, key := range s.Keys {
		v := s.Vectors[key]
		norm := Norm(v)
		if norm == 0 || math.IsNaN(norm) {
			for j := 0; j < s.Dim; j++ {
				out.Set(i, j, math.NaN())
			}
			continue
		}
		for j, x := range v {
			out.Set(i, j, x/norm)
		}
	}
	return out
}

// At returns the similarity for a (document id, category label) pair. The
// second return is false when either key is unknown.
func (m *Matrix) At(docID, category string) (float64, bool) {
	i, ok := m.rowIx[docID]
	if !ok {
		return 0, false
	}
	j, ok := m.colIx[category]
	if !ok {
		return 0, false
	}
	return m.values.At(i, j), true
}

// Value returns the similarity by position.
func (m *Matrix) Value(row, col int) float64 { return m.values.At(row, col) }

// Row returns one document's scores in category order.
func (m *Matrix) Row(docID string) ([]float64, bool) {
	i, ok := m.rowIx[docID]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(m.Categories))
	mat.Row(out, i, m.values)
	return out, true
}
