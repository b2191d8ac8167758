// Package index wraps an HNSW graph over document vectors for approximate
// nearest-neighbor lookups, e.g. "which documents sit closest to the anger
// center".
package index

import (
	"bytes"
	"math"
	"os"

	"github.com/coder/hnsw"
	"github.com/pkg/errors"

	"github.com/cverna/ddr/pkg/ddr"
)

// Index holds the graph keyed by document id.
type Index struct {
	graph *hnsw.Graph[string]
	dim   int
}

// Build indexes every defined vector of the set. Undefined vectors are
// skipped: NaN coordinates would break the distance function.
func Build(docs *ddr.VectorSet) (*Index, error) {
	graph := hnsw.NewGraph[string]()
	graph.M = 16        // Maximum number of connections per node
	graph.Ml = 0.25     // Level generation factor
	graph.EfSearch = 20 // Number of nodes to consider during search
	graph.Distance = hnsw.CosineDistance

	added := 0
	for _, id := range docs.Keys {
		vec := docs.Vectors[id]
		if ddr.IsUndefined(vec) || hasNaN(vec) {
			continue
		}
		graph.Add(hnsw.MakeNode(id, toFloat32(vec)))
		added++
	}
	if added == 0 {
		return nil, errors.New("index: no defined vectors to index")
	}
	return &Index{graph: graph, dim: docs.Dim}, nil
}

// Search returns the ids of the k nearest indexed documents to the query
// vector.
func (ix *Index) Search(query []float64, k int) ([]string, error) {
	if len(query) != ix.dim {
		return nil, errors.Errorf("index: query has %d components, index has %d", len(query), ix.dim)
	}
	if ddr.IsUndefined(query) || hasNaN(query) || ddr.Norm(query) == 0 {
		return nil, errors.New("index: query vector is undefined")
	}

	results := ix.graph.Search(toFloat32(query), k)
	ids := make([]string, 0, len(results))
	for _, node := range results {
		ids = append(ids, node.Key)
	}
	return ids, nil
}

// Save exports the graph to a file.
func (ix *Index) Save(path string) error {
	var buf bytes.Buffer
	if err := ix.graph.Export(&buf); err != nil {
		return errors.Wrap(err, "index: export")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.Wrap(err, "index: write")
	}
	return nil
}

// Load imports a graph saved by Save. dim must match the dimension the
// index was built with.
func Load(path string, dim int) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "index: read")
	}
	graph := hnsw.NewGraph[string]()
	graph.Distance = hnsw.CosineDistance
	if err := graph.Import(bytes.NewReader(data)); err != nil {
		return nil, errors.Wrap(err, "index: import")
	}
	return &Index{graph: graph, dim: dim}, nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

func hasNaN(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) {
			return true
		}
	}
	return false
}
