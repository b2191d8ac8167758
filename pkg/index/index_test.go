package index

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cverna/ddr/pkg/ddr"
)

func testDocs() *ddr.VectorSet {
	return &ddr.VectorSet{
		Keys: []string{"d1", "d2", "d3"},
		Vectors: map[string][]float64{
			"d1": {1, 0},
			"d2": {-1, 0},
			"d3": {0.9, 0.1},
		},
		Dim: 2,
	}
}

func TestBuildAndSearch(t *testing.T) {
	ix, err := Build(testDocs())
	require.NoError(t, err)

	ids, err := ix.Search([]float64{0.95, 0.05}, 2)
	require.NoError(t, err)

	require.Len(t, ids, 2)
	assert.ElementsMatch(t, []string{"d1", "d3"}, ids)
}

func TestBuildSkipsUndefinedVectors(t *testing.T) {
	docs := testDocs()
	docs.Keys = append(docs.Keys, "bad")
	docs.Vectors["bad"] = ddr.Undefined(2)

	ix, err := Build(docs)
	require.NoError(t, err)

	ids, err := ix.Search([]float64{1, 0}, 4)
	require.NoError(t, err)
	assert.NotContains(t, ids, "bad")
}

func TestBuildAllUndefinedFails(t *testing.T) {
	docs := &ddr.VectorSet{
		Keys:    []string{"bad"},
		Vectors: map[string][]float64{"bad": ddr.Undefined(2)},
		Dim:     2,
	}

	_, err := Build(docs)
	assert.Error(t, err)
}

func TestSearchRejectsUndefinedQuery(t *testing.T) {
	ix, err := Build(testDocs())
	require.NoError(t, err)

	_, err = ix.Search(ddr.Undefined(2), 1)
	assert.Error(t, err)

	_, err = ix.Search([]float64{0, 0}, 1)
	assert.Error(t, err)
}

func TestSearchRejectsWrongDimension(t *testing.T) {
	ix, err := Build(testDocs())
	require.NoError(t, err)

	_, err = ix.Search([]float64{1, 0, 0}, 1)
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	ix, err := Build(testDocs())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "docs.idx")
	require.NoError(t, ix.Save(path))

	loaded, err := Load(path, 2)
	require.NoError(t, err)

	ids, err := loaded.Search([]float64{-1, 0}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"d2"}, ids)
}
