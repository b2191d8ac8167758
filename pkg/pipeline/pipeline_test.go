package pipeline

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cverna/ddr/pkg/embedding"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func scenarioConfig(t *testing.T) Config {
	dir := t.TempDir()
	return Config{
		CorpusPath:  writeFile(t, dir, "corpus.tsv", "d1\thappy glad\nd2\tsad\n"),
		LexiconPath: writeFile(t, dir, "lexicon.csv", "happy,joy\nglad,joy\nsad,sorrow\n"),
		VectorsPath: writeFile(t, dir, "vectors.txt", "happy 1 0\nsad -1 0\nglad 0.9 0.1\n"),
	}
}

func TestRunEndToEnd(t *testing.T) {
	res, err := Run(context.Background(), scenarioConfig(t))
	require.NoError(t, err)

	joy := res.Centers.Vectors["joy"]
	assert.InDelta(t, 0.95, joy[0], 1e-9)
	assert.InDelta(t, 0.05, joy[1], 1e-9)
	assert.Equal(t, []float64{-1, 0}, res.Centers.Vectors["sorrow"])

	d1 := res.Documents.Vectors["d1"]
	assert.InDelta(t, 0.95, d1[0], 1e-9)
	assert.Equal(t, []float64{-1, 0}, res.Documents.Vectors["d2"])

	v, ok := res.Similarity.At("d1", "joy")
	require.True(t, ok)
	assert.InDelta(t, 1.0, v, 1e-6)
	v, _ = res.Similarity.At("d2", "sorrow")
	assert.InDelta(t, 1.0, v, 1e-6)
	v, _ = res.Similarity.At("d1", "sorrow")
	assert.InDelta(t, -0.9986, v, 1e-4)
	v, _ = res.Similarity.At("d2", "joy")
	assert.InDelta(t, -0.9986, v, 1e-4)
}

func TestRunIsIdempotent(t *testing.T) {
	cfg := scenarioConfig(t)

	a, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	b, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	require.Equal(t, a.Similarity.DocIDs, b.Similarity.DocIDs)
	require.Equal(t, a.Similarity.Categories, b.Similarity.Categories)
	for i := range a.Similarity.DocIDs {
		for j := range a.Similarity.Categories {
			assert.Equal(t, a.Similarity.Value(i, j), b.Similarity.Value(i, j))
		}
	}
}

func TestRunUndefinedDocumentSurvivesToMatrix(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		CorpusPath:  writeFile(t, dir, "corpus.tsv", "d1\thappy\nempty\tunrelated gibberish\n"),
		LexiconPath: writeFile(t, dir, "lexicon.csv", "happy,joy\n"),
		VectorsPath: writeFile(t, dir, "vectors.txt", "happy 1 0\n"),
	}

	res, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	v, ok := res.Similarity.At("empty", "joy")
	require.True(t, ok)
	assert.True(t, math.IsNaN(v))
	v, _ = res.Similarity.At("d1", "joy")
	assert.InDelta(t, 1.0, v, 1e-6)
}

func TestRunZeroFillPolicyChangesMeans(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		CorpusPath:  writeFile(t, dir, "corpus.tsv", "d1\thappy missing\n"),
		LexiconPath: writeFile(t, dir, "lexicon.csv", "happy,joy\nmissing,joy\n"),
		VectorsPath: writeFile(t, dir, "vectors.txt", "happy 1 0\n"),
	}

	cfg.Policy = embedding.PolicyOmit
	omit, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	cfg.Policy = embedding.PolicyZeroFill
	zero, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	// Omit divides by one contributor, zero-fill by two.
	assert.InDelta(t, 1.0, omit.Centers.Vectors["joy"][0], 1e-9)
	assert.InDelta(t, 0.5, zero.Centers.Vectors["joy"][0], 1e-9)
}

func TestRunEmptyCorpusFails(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		CorpusPath:  writeFile(t, dir, "corpus.tsv", ""),
		LexiconPath: writeFile(t, dir, "lexicon.csv", "happy,joy\n"),
		VectorsPath: writeFile(t, dir, "vectors.txt", "happy 1 0\n"),
	}

	_, err := Run(context.Background(), cfg)
	assert.Error(t, err)
}

func TestRunMissingVectorFileFails(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		CorpusPath:  writeFile(t, dir, "corpus.tsv", "d1\thappy\n"),
		LexiconPath: writeFile(t, dir, "lexicon.csv", "happy,joy\n"),
		VectorsPath: filepath.Join(dir, "nope.txt"),
	}

	_, err := Run(context.Background(), cfg)
	assert.Error(t, err)
}
