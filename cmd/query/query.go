package query

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/cverna/ddr/internal/config"
	"github.com/cverna/ddr/pkg/corpus"
	"github.com/cverna/ddr/pkg/ddr"
	"github.com/cverna/ddr/pkg/embedding"
	"github.com/cverna/ddr/pkg/lexicon"
)

type options struct {
	lexiconPath string
	vectorsPath string
	dim         int
}

func QueryCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Interactively score text against category centers",
		Long: `Loads the lexicon's category centers once, then reads lines from the
terminal and prints each line's cosine similarity per category. Tokens
without a vector are reported, not silently dropped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts)
		},
	}

	cmd.Flags().StringVar(&opts.lexiconPath, "lexicon", "", "lexicon CSV (token,category)")
	cmd.Flags().StringVar(&opts.vectorsPath, "vectors", "", "pretrained vector file")
	cmd.Flags().IntVar(&opts.dim, "dim", 0, "expected vector dimension (0 = infer)")
	cmd.MarkFlagRequired("lexicon")

	return cmd
}

func runQuery(opts *options) error {
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

	lex, err := lexicon.Load(opts.lexiconPath)
	if err != nil {
		return err
	}

	// No corpus here, so the whole vector file matters: load without a
	// vocabulary cap beyond the lexicon plus whatever the user may type.
	// The practical compromise is loading everything.
	table, _, err := embedding.Load(context.Background(), vectorsPath, allTokens{}, dim, embedding.PolicyOmit)
	if err != nil {
		return err
	}

	centers, err := ddr.Centers(lex, table)
	if err != nil {
		return err
	}

	rl, err := readline.New("ddr> ")
	if err != nil {
		return fmt.Errorf("error initializing readline: %v", err)
	}
	defer rl.Close()

	fmt.Printf("Loaded %d categories (dim %d). Type text to score, ctrl-d to quit.\n",
		centers.Len(), centers.Dim)

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		scoreLine(line, table, centers)
	}
}

func scoreLine(line string, table *embedding.Table, centers *ddr.VectorSet) {
	tokens := corpus.DropStopwords(corpus.Tokenize(line))
	if len(tokens) == 0 {
		fmt.Println("no tokens")
		return
	}

	c := &corpus.Corpus{}
	c.Add("input", tokens)
	docs, err := ddr.DocumentVectors(c, table)
	if err != nil {
		fmt.Println("none of the tokens have vectors")
		return
	}

	var missing []string
	for _, t := range tokens {
		if _, ok := table.Vector(t); !ok {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		fmt.Printf("(no vector for: %s)\n", strings.Join(missing, ", "))
	}

	sim, err := ddr.Similarity(docs, centers)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	type scored struct {
		category string
		value    float64
	}
	row, _ := sim.Row("input")
	ranked := make([]scored, 0, len(centers.Keys))
	for j, category := range sim.Categories {
		ranked = append(ranked, scored{category, row[j]})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].value > ranked[j].value })

	for _, s := range ranked {
		if math.IsNaN(s.value) {
			fmt.Printf("  %-20s undefined\n", s.category)
			continue
		}
		fmt.Printf("  %-20s %+.4f\n", s.category, s.value)
	}
}

// allTokens makes the loader keep every token it parses: Size 0 disables the
// early exit and Members yields nothing to report unresolved.
type allTokens struct{}

func (allTokens) Contains(string) bool { return true }
func (allTokens) Size() int            { return 0 }
func (allTokens) Members() []string    { return nil }

var _ embedding.Membership = allTokens{}
