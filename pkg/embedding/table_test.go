package embedding

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testVocab []string

func (v testVocab) Contains(token string) bool {
	for _, t := range v {
		if t == token {
			return true
		}
	}
	return false
}

func (v testVocab) Size() int         { return len(v) }
func (v testVocab) Members() []string { return v }

func TestLoadFiltersToVocabulary(t *testing.T) {
	path := writeVectors(t, "happy 1 0\nirrelevant 5 5\nsad -1 0\n")

	table, stats, err := Load(context.Background(), path, testVocab{"happy", "sad"}, 0, PolicyOmit)
	require.NoError(t, err)

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 2, table.Dim())
	assert.Equal(t, 2, stats.Kept)

	vec, ok := table.Vector("happy")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 0}, vec)

	_, ok = table.Vector("irrelevant")
	assert.False(t, ok)
}

func TestLoadEarlyExit(t *testing.T) {
	path := writeVectors(t, "happy 1 0\nsad -1 0\nnever 0 1\nread 1 1\n")

	_, stats, err := Load(context.Background(), path, testVocab{"happy", "sad"}, 0, PolicyOmit)
	require.NoError(t, err)

	assert.True(t, stats.EarlyExit)
	assert.Equal(t, 2, stats.LinesRead)
}

func TestLoadInfersDimensionFromFirstLine(t *testing.T) {
	path := writeVectors(t, "happy 1 0 3\nsad -1 0 2\n")

	table, _, err := Load(context.Background(), path, testVocab{"happy", "sad"}, 0, PolicyOmit)
	require.NoError(t, err)

	assert.Equal(t, 3, table.Dim())
}

func TestLoadCountsMalformedLines(t *testing.T) {
	path := writeVectors(t, "happy 1 0\nbroken\nsad notanumber 0\nglad 0.9 0.1\n")

	table, stats, err := Load(context.Background(), path, testVocab{"happy", "sad", "glad"}, 2, PolicyOmit)
	require.NoError(t, err)

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 2, stats.Malformed)
	assert.Equal(t, []string{"sad"}, stats.Unresolved)
}

func TestLoadCountsBadDimensionLines(t *testing.T) {
	path := writeVectors(t, "happy 1 0\nsad -1 0 7 7\nglad 0.9 0.1\n")

	table, stats, err := Load(context.Background(), path, testVocab{"happy", "sad", "glad"}, 2, PolicyOmit)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.BadDimension)
	assert.Equal(t, 2, table.Len())
}

func TestLoadNoVectors(t *testing.T) {
	path := writeVectors(t, "broken\nalso broken again and again\n")

	_, _, err := Load(context.Background(), path, testVocab{"happy"}, 2, PolicyOmit)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoVectors)
}

func TestLoadOmitPolicy(t *testing.T) {
	path := writeVectors(t, "happy 1 0\n")

	table, stats, err := Load(context.Background(), path, testVocab{"happy", "missing"}, 0, PolicyOmit)
	require.NoError(t, err)

	assert.Equal(t, []string{"missing"}, stats.Unresolved)
	_, ok := table.Vector("missing")
	assert.False(t, ok)
}

func TestLoadZeroFillPolicy(t *testing.T) {
	path := writeVectors(t, "happy 1 0\n")

	table, stats, err := Load(context.Background(), path, testVocab{"happy", "missing"}, 0, PolicyZeroFill)
	require.NoError(t, err)

	assert.Equal(t, []string{"missing"}, stats.Unresolved)
	vec, ok := table.Vector("missing")
	require.True(t, ok)
	assert.Equal(t, []float64{0, 0}, vec)
}

func TestLoadFirstVectorWinsOnDuplicates(t *testing.T) {
	path := writeVectors(t, "happy 1 0\nhappy 9 9\nsad -1 0\n")

	table, _, err := Load(context.Background(), path, testVocab{"happy", "sad"}, 0, PolicyOmit)
	require.NoError(t, err)

	vec, _ := table.Vector("happy")
	assert.Equal(t, []float64{1, 0}, vec)
}

func TestLoadCanceled(t *testing.T) {
	path := writeVectors(t, "happy 1 0\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Load(ctx, path, testVocab{"happy"}, 0, PolicyOmit)
	assert.Error(t, err)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyOmit, p)

	p, err = ParsePolicy("zero")
	require.NoError(t, err)
	assert.Equal(t, PolicyZeroFill, p)

	_, err = ParsePolicy("bogus")
	assert.Error(t, err)
}

func TestNewTableRejectsMixedDimensions(t *testing.T) {
	_, err := NewTable(map[string][]float64{
		"a": {1, 0},
		"b": {1, 0, 0},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func writeVectors(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vectors.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
