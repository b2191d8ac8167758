package centers

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cverna/ddr/internal/config"
	"github.com/cverna/ddr/pkg/ddr"
	"github.com/cverna/ddr/pkg/embedding"
	"github.com/cverna/ddr/pkg/lexicon"
	"github.com/cverna/ddr/pkg/report"
)

type options struct {
	lexiconPath string
	vectorsPath string
	dim         int
	policy      string
	sample      int
	seed        int64
	output      string
}

func CentersCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "centers",
		Short: "Compute category center vectors from a lexicon",
		Long: `Maps each lexicon category through the pretrained vectors and writes one
mean vector per category. --sample N averages a seeded random draw of N
member tokens per category instead of all of them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCenters(opts)
		},
	}

	cmd.Flags().StringVar(&opts.lexiconPath, "lexicon", "", "lexicon CSV (token,category)")
	cmd.Flags().StringVar(&opts.vectorsPath, "vectors", "", "pretrained vector file")
	cmd.Flags().IntVar(&opts.dim, "dim", 0, "expected vector dimension (0 = infer)")
	cmd.Flags().StringVar(&opts.policy, "policy", "", "missing-token policy: omit or zero")
	cmd.Flags().IntVar(&opts.sample, "sample", 0, "subsample N tokens per category (0 = all)")
	cmd.Flags().Int64Var(&opts.seed, "seed", 1, "random seed for --sample")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "centers.csv", "output file")
	cmd.MarkFlagRequired("lexicon")

	return cmd
}

func runCenters(opts *options) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %v", err)
	}

	vectorsPath := opts.vectorsPath
	if vectorsPath == "" {
		vectorsPath = cfg.Vectors.Path
	}
	if vectorsPath == "" {
		return fmt.Errorf("no vector file given. Use --vectors, ~/.ddr.toml or DDR_VECTORS")
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
		return err
	}

	lex, err := lexicon.Load(opts.lexiconPath)
	if err != nil {
		return err
	}

	// The lexicon alone defines the vocabulary here: no corpus is involved.
	table, _, err := embedding.Load(context.Background(), vectorsPath, newLexiconVocab(lex), dim, policy)
	if err != nil {
		return err
	}

	var set *ddr.VectorSet
	if opts.sample > 0 {
		set, err = ddr.CentersSampled(lex, table, opts.sample, opts.seed)
	} else {
		set, err = ddr.Centers(lex, table)
	}
	if err != nil {
		return err
	}

	if err := report.SaveVectors(opts.output, set, "category"); err != nil {
		return err
	}
	fmt.Printf("Wrote %d category centers (dim %d) -> %s\n", set.Len(), set.Dim, opts.output)
	if undef := set.UndefinedKeys(); len(undef) > 0 {
		fmt.Fprintf(os.Stderr, "Warning: undefined centers: %v\n", undef)
	}
	return nil
}

// lexiconVocab adapts a lexicon to the loader's vocabulary view.
type lexiconVocab struct {
	tokens []string
	set    map[string]struct{}
}

func newLexiconVocab(lex *lexicon.Lexicon) lexiconVocab {
	tokens := lex.Tokens()
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return lexiconVocab{tokens: tokens, set: set}
}

func (v lexiconVocab) Contains(token string) bool {
	_, ok := v.set[token]
	return ok
}

func (v lexiconVocab) Size() int         { return len(v.tokens) }
func (v lexiconVocab) Members() []string { return v.tokens }
