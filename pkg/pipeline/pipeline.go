// Package pipeline runs the full DDR batch: corpus → vocabulary → embedding
// table → (category centers ∥ document vectors) → similarity matrix. Every
// stage is a value-producing function of the previous stage's output; there
// is no incremental path, a changed input means a fresh run.
package pipeline

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/cverna/ddr/pkg/corpus"
	"github.com/cverna/ddr/pkg/ddr"
	"github.com/cverna/ddr/pkg/embedding"
	"github.com/cverna/ddr/pkg/lexicon"
	"github.com/cverna/ddr/pkg/vocab"
)

// Config names the inputs and knobs of one run.
type Config struct {
	CorpusPath  string
	LexiconPath string
	VectorsPath string

	// Dim fixes the expected vector length; 0 infers it from the file.
	Dim int
	// Policy decides what to do with vocabulary tokens absent from the
	// vector file.
	Policy embedding.Policy
	// VocabCap keeps only the most frequent corpus tokens when > 0.
	// Lexicon tokens always survive.
	VocabCap int
	// KeepStopwords disables stopword filtering during tokenization.
	KeepStopwords bool
}

// Result bundles every artifact of a run.
type Result struct {
	Corpus     *corpus.Corpus
	Lexicon    *lexicon.Lexicon
	Vocabulary *vocab.Vocabulary
	Table      *embedding.Table
	Stats      *embedding.LoadStats
	Centers    *ddr.VectorSet
	Documents  *ddr.VectorSet
	Similarity *ddr.Matrix
}

// Run executes the batch. The two aggregations read the same immutable table
// and write disjoint outputs, so they run concurrently; everything else is
// sequential. Any stage failure aborts the run — there is no transient
// failure mode to retry in an in-memory batch.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	c, err := corpus.Load(cfg.CorpusPath, corpus.Options{KeepStopwords: cfg.KeepStopwords})
	if err != nil {
		return nil, err
	}
	if c.Len() == 0 {
		return nil, errors.Errorf("pipeline: corpus %s has no documents", cfg.CorpusPath)
	}

	lex, err := lexicon.Load(cfg.LexiconPath)
	if err != nil {
		return nil, err
	}

	builder := vocab.NewBuilder()
	for _, doc := range c.Docs {
		builder.AddTokens(doc.Tokens)
	}
	vocabulary := builder.Build(cfg.VocabCap, lex.Tokens())

	table, stats, err := embedding.Load(ctx, cfg.VectorsPath, vocabulary, cfg.Dim, cfg.Policy)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Corpus:     c,
		Lexicon:    lex,
		Vocabulary: vocabulary,
		Table:      table,
		Stats:      stats,
	}

	var g errgroup.Group
	g.Go(func() error {
		centers, err := ddr.Centers(lex, table)
		if err != nil {
			return errors.Wrap(err, "pipeline: category centers")
		}
		res.Centers = centers
		return nil
	})
	g.Go(func() error {
		docs, err := ddr.DocumentVectors(c, table)
		if err != nil {
			return errors.Wrap(err, "pipeline: document vectors")
		}
		res.Documents = docs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sim, err := ddr.Similarity(res.Documents, res.Centers)
	if err != nil {
		return nil, err
	}
	res.Similarity = sim
	return res, nil
}
