package train

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ynqa/wego/pkg/model/modelutil/vector"
	"github.com/ynqa/wego/pkg/model/word2vec"

	"github.com/cverna/ddr/pkg/corpus"
)

type options struct {
	corpusPath string
	output     string
	dim        int
	window     int
	iter       int
	minCount   int
	stopwords  bool
}

func TrainCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train word vectors from the corpus",
		Long: `Trains a word2vec skip-gram model on the tokenized corpus and writes the
vectors in text format, one token per line. Useful when no pretrained file
covers the corpus vocabulary; the output feeds straight into "ddr score
--vectors".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrain(opts)
		},
	}

	cmd.Flags().StringVar(&opts.corpusPath, "corpus", "", "corpus file (docID<TAB>text per line)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "vectors.txt", "output vector file")
	cmd.Flags().IntVar(&opts.dim, "dim", 100, "vector dimension")
	cmd.Flags().IntVar(&opts.window, "window", 8, "context window size")
	cmd.Flags().IntVar(&opts.iter, "iter", 15, "training iterations")
	cmd.Flags().IntVar(&opts.minCount, "min-count", 5, "ignore tokens rarer than this")
	cmd.Flags().BoolVar(&opts.stopwords, "keep-stopwords", false, "keep stopwords during tokenization")
	cmd.MarkFlagRequired("corpus")

	return cmd
}

func runTrain(opts *options) error {
	c, err := corpus.Load(opts.corpusPath, corpus.Options{KeepStopwords: opts.stopwords})
	if err != nil {
		return err
	}
	if c.Len() == 0 {
		return fmt.Errorf("corpus %s has no documents", opts.corpusPath)
	}

	// word2vec.Train wants one flat text stream.
	var sb strings.Builder
	for _, doc := range c.Docs {
		for _, token := range doc.Tokens {
			sb.WriteString(token)
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}

	model, err := word2vec.NewForOptions(word2vec.Options{
		Dim:                opts.dim,
		Window:             opts.window,
		Iter:               opts.iter,
		MinCount:           opts.minCount,
		ModelType:          word2vec.SkipGram,
		OptimizerType:      word2vec.NegativeSampling,
		NegativeSampleSize: 5,
		BatchSize:          1024,
		Goroutines:         4,
		Initlr:             0.025,
		MinLR:              0.0000025,
		SubsampleThreshold: 0.001,
		ToLower:            false,
		DocInMemory:        true,
	})
	if err != nil {
		return fmt.Errorf("error initializing word2vec model: %v", err)
	}

	if err := model.Train(strings.NewReader(sb.String())); err != nil {
		return fmt.Errorf("error training word vectors: %v", err)
	}

	f, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("error creating output: %v", err)
	}
	defer f.Close()
	if err := model.Save(f, vector.Agg); err != nil {
		return fmt.Errorf("error saving vectors: %v", err)
	}

	fmt.Printf("Trained %d-dimensional vectors on %d documents -> %s\n",
		opts.dim, c.Len(), opts.output)
	return nil
}
