package ddr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cverna/ddr/pkg/corpus"
	"github.com/cverna/ddr/pkg/embedding"
	"github.com/cverna/ddr/pkg/lexicon"
)

func testTable(t *testing.T) *embedding.Table {
	t.Helper()
	table, err := embedding.NewTable(map[string][]float64{
		"happy": {1, 0},
		"sad":   {-1, 0},
		"glad":  {0.9, 0.1},
	})
	require.NoError(t, err)
	return table
}

func testLexicon() *lexicon.Lexicon {
	lex := lexicon.New()
	lex.Add("happy", "joy")
	lex.Add("glad", "joy")
	lex.Add("sad", "sorrow")
	return lex
}

func TestCenters(t *testing.T) {
	set, err := Centers(testLexicon(), testTable(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"joy", "sorrow"}, set.Keys)
	assert.Equal(t, 2, set.Dim)

	joy := set.Vectors["joy"]
	assert.InDelta(t, 0.95, joy[0], 1e-9)
	assert.InDelta(t, 0.05, joy[1], 1e-9)
	assert.Equal(t, []float64{-1, 0}, set.Vectors["sorrow"])
}

func TestCentersSkipsMissingTokens(t *testing.T) {
	lex := testLexicon()
	lex.Add("ecstatic", "joy") // no vector for this one

	set, err := Centers(lex, testTable(t))
	require.NoError(t, err)

	// The mean divides by the two resolvable members, not three.
	joy := set.Vectors["joy"]
	assert.InDelta(t, 0.95, joy[0], 1e-9)
}

func TestCentersUndefinedCategory(t *testing.T) {
	lex := testLexicon()
	lex.Add("saudade", "longing")

	set, err := Centers(lex, testTable(t))
	require.NoError(t, err)

	assert.True(t, IsUndefined(set.Vectors["longing"]))
	assert.Equal(t, []string{"longing"}, set.UndefinedKeys())
}

func TestCentersAllUndefined(t *testing.T) {
	lex := lexicon.New()
	lex.Add("saudade", "longing")

	_, err := Centers(lex, testTable(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoResolvable)
}

func TestCentersDeterministic(t *testing.T) {
	a, err := Centers(testLexicon(), testTable(t))
	require.NoError(t, err)
	b, err := Centers(testLexicon(), testTable(t))
	require.NoError(t, err)

	assert.Equal(t, a.Vectors, b.Vectors)
	assert.Equal(t, a.Keys, b.Keys)
}

func TestCentersSampledSeedControlled(t *testing.T) {
	lex := testLexicon()

	a, err := CentersSampled(lex, testTable(t), 1, 42)
	require.NoError(t, err)
	b, err := CentersSampled(lex, testTable(t), 1, 42)
	require.NoError(t, err)

	assert.Equal(t, a.Vectors, b.Vectors)

	// A size-1 sample of joy is one of the two member vectors.
	joy := a.Vectors["joy"]
	oneOf := assert.ObjectsAreEqual([]float64{1, 0}, joy) ||
		assert.ObjectsAreEqual([]float64{0.9, 0.1}, joy)
	assert.True(t, oneOf)
}

func TestDocumentVectors(t *testing.T) {
	c := &corpus.Corpus{}
	c.Add("d1", []string{"happy", "glad"})
	c.Add("d2", []string{"sad"})

	set, err := DocumentVectors(c, testTable(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"d1", "d2"}, set.Keys)
	d1 := set.Vectors["d1"]
	assert.InDelta(t, 0.95, d1[0], 1e-9)
	assert.InDelta(t, 0.05, d1[1], 1e-9)
	assert.Equal(t, []float64{-1, 0}, set.Vectors["d2"])
}

func TestDocumentVectorsUndefinedDocument(t *testing.T) {
	c := &corpus.Corpus{}
	c.Add("d1", []string{"happy"})
	c.Add("empty", []string{"unknown", "tokens"})

	set, err := DocumentVectors(c, testTable(t))
	require.NoError(t, err)

	assert.True(t, IsUndefined(set.Vectors["empty"]))
	assert.False(t, IsUndefined(set.Vectors["d1"]))
}

func TestAccumulatorSkipsNaNPerDimension(t *testing.T) {
	acc := newAccumulator(2)
	acc.add([]float64{1, math.NaN()})
	acc.add([]float64{3, 4})

	out := acc.finalize()

	assert.InDelta(t, 2, out[0], 1e-9)
	// The NaN component is ignored, not treated as zero.
	assert.InDelta(t, 4, out[1], 1e-9)
}
