package score

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/cverna/ddr/internal/config"
	"github.com/cverna/ddr/pkg/embedding"
	"github.com/cverna/ddr/pkg/pipeline"
	"github.com/cverna/ddr/pkg/report"
)

type options struct {
	corpusPath  string
	lexiconPath string
	vectorsPath string
	dim         int
	policy      string
	vocabCap    int
	stopwords   bool

	output     string
	centersOut string
	docsOut    string
	watch      bool
}

func ScoreCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score documents against lexicon categories",
		Long: `Runs the full DDR batch: tokenizes the corpus, builds the vocabulary,
loads the pretrained vectors, averages category and document vectors and
writes the document-by-category cosine similarity matrix as CSV.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(opts)
		},
	}

	cmd.Flags().StringVar(&opts.corpusPath, "corpus", "", "corpus file (docID<TAB>text per line)")
	cmd.Flags().StringVar(&opts.lexiconPath, "lexicon", "", "lexicon CSV (token,category)")
	cmd.Flags().StringVar(&opts.vectorsPath, "vectors", "", "pretrained vector file")
	cmd.Flags().IntVar(&opts.dim, "dim", 0, "expected vector dimension (0 = infer)")
	cmd.Flags().StringVar(&opts.policy, "policy", "", "missing-token policy: omit or zero")
	cmd.Flags().IntVar(&opts.vocabCap, "cap", 0, "vocabulary cap (0 = unlimited)")
	cmd.Flags().BoolVar(&opts.stopwords, "keep-stopwords", false, "keep stopwords during tokenization")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "similarities.csv", "similarity matrix output")
	cmd.Flags().StringVar(&opts.centersOut, "centers-out", "", "also write category centers CSV")
	cmd.Flags().StringVar(&opts.docsOut, "docs-out", "", "also write document vectors CSV")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "recompute whenever an input file changes")
	cmd.MarkFlagRequired("corpus")
	cmd.MarkFlagRequired("lexicon")

	return cmd
}

// resolve merges flags with ~/.ddr.toml and environment defaults.
func resolve(opts *options) (pipeline.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("error loading config: %v", err)
	}

	vectorsPath := opts.vectorsPath
	if vectorsPath == "" {
		vectorsPath = cfg.Vectors.Path
	}
	if vectorsPath == "" {
		return pipeline.Config{}, fmt.Errorf("no vector file given. Use --vectors, ~/.ddr.toml or DDR_VECTORS")
	}

	dim := opts.dim
	if dim == 0 {
		dim = cfg.Vectors.Dim
	}
	policyName := opts.policy
	if policyName == "" {
		policyName = cfg.Vectors.Policy
	}
	policy, err := embedding.ParsePolicy(policyName)
	if err != nil {
		return pipeline.Config{}, err
	}
	vocabCap := opts.vocabCap
	if vocabCap == 0 {
		vocabCap = cfg.Vocab.Cap
	}

	return pipeline.Config{
		CorpusPath:    opts.corpusPath,
		LexiconPath:   opts.lexiconPath,
		VectorsPath:   vectorsPath,
		Dim:           dim,
		Policy:        policy,
		VocabCap:      vocabCap,
		KeepStopwords: opts.stopwords || cfg.Vocab.KeepStopwords,
	}, nil
}

func runScore(opts *options) error {
	cfg, err := resolve(opts)
	if err != nil {
		return err
	}

	if err := runOnce(cfg, opts); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}
	return watchInputs(cfg, opts)
}

func runOnce(cfg pipeline.Config, opts *options) error {
	res, err := pipeline.Run(context.Background(), cfg)
	if err != nil {
		return err
	}

	if err := report.SaveSimilarity(opts.output, res.Similarity); err != nil {
		return err
	}
	if opts.centersOut != "" {
		if err := report.SaveVectors(opts.centersOut, res.Centers, "category"); err != nil {
			return err
		}
	}
	if opts.docsOut != "" {
		if err := report.SaveVectors(opts.docsOut, res.Documents, "document"); err != nil {
			return err
		}
	}

	fmt.Printf("Scored %d documents against %d categories -> %s\n",
		res.Documents.Len(), res.Centers.Len(), opts.output)
	if n := len(res.Documents.UndefinedKeys()); n > 0 {
		fmt.Printf("Warning: %d documents resolved no vectors (NaN rows)\n", n)
	}
	if n := len(res.Centers.UndefinedKeys()); n > 0 {
		fmt.Printf("Warning: %d categories resolved no vectors (NaN columns)\n", n)
	}
	return nil
}

// watchInputs reruns the batch whenever the corpus, lexicon or vector file
// changes. Events are debounced: editors fire several writes per save.
func watchInputs(cfg pipeline.Config, opts *options) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %v", err)
	}
	defer watcher.Close()

	inputs := map[string]bool{}
	for _, p := range []string{cfg.CorpusPath, cfg.LexiconPath, cfg.VectorsPath} {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("error resolving %s: %v", p, err)
		}
		inputs[abs] = true
		// Watch the directory: editors replace files on save, which
		// drops a watch set on the file itself.
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("error watching %s: %v", filepath.Dir(abs), err)
		}
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	fmt.Println("Watching inputs for changes (ctrl-c to stop)...")
	var pending <-chan time.Time
	for {
		select {
		case event := <-watcher.Events:
			abs, err := filepath.Abs(event.Name)
			if err != nil || !inputs[abs] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(500 * time.Millisecond)
		case <-pending:
			pending = nil
			if err := runOnce(cfg, opts); err != nil {
				fmt.Printf("Recompute failed: %v\n", err)
			}
		case err := <-watcher.Errors:
			fmt.Printf("Watcher error: %v\n", err)
		case <-sigs:
			return nil
		}
	}
}
