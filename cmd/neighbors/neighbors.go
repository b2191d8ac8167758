package neighbors

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cverna/ddr/internal/config"
	"github.com/cverna/ddr/pkg/corpus"
	"github.com/cverna/ddr/pkg/ddr"
	"github.com/cverna/ddr/pkg/embedding"
	"github.com/cverna/ddr/pkg/index"
	"github.com/cverna/ddr/pkg/lexicon"
	"github.com/cverna/ddr/pkg/vocab"
)

func NeighborsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "neighbors",
		Short: "Nearest-neighbor search over document vectors",
	}

	cmd.AddCommand(indexCmd(), searchCmd())
	return cmd
}

type indexOptions struct {
	corpusPath  string
	vectorsPath string
	dim         int
	indexPath   string
	stopwords   bool
}

func indexCmd() *cobra.Command {
	opts := &indexOptions{}
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build an HNSW index of document vectors",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(opts)
		},
	}

	cmd.Flags().StringVar(&opts.corpusPath, "corpus", "", "corpus file (docID<TAB>text per line)")
	cmd.Flags().StringVar(&opts.vectorsPath, "vectors", "", "pretrained vector file")
	cmd.Flags().IntVar(&opts.dim, "dim", 0, "expected vector dimension (0 = infer)")
	cmd.Flags().StringVar(&opts.indexPath, "index", ".documents.idx", "index file to write")
	cmd.Flags().BoolVar(&opts.stopwords, "keep-stopwords", false, "keep stopwords during tokenization")
	cmd.MarkFlagRequired("corpus")

	return cmd
}

func runIndex(opts *indexOptions) error {
	vectorsPath, dim, err := vectorsDefaults(opts.vectorsPath, opts.dim)
	if err != nil {
		return err
	}

	c, err := corpus.Load(opts.corpusPath, corpus.Options{KeepStopwords: opts.stopwords})
	if err != nil {
		return err
	}

	table, _, err := embedding.Load(context.Background(), vectorsPath, corpusVocab(c), dim, embedding.PolicyOmit)
	if err != nil {
		return err
	}

	docs, err := ddr.DocumentVectors(c, table)
	if err != nil {
		return err
	}

	ix, err := index.Build(docs)
	if err != nil {
		return err
	}
	if err := ix.Save(opts.indexPath); err != nil {
		return err
	}

	fmt.Printf("Indexed %d documents -> %s\n", docs.Len(), opts.indexPath)
	return nil
}

type searchOptions struct {
	indexPath   string
	vectorsPath string
	dim         int
	text        string
	category    string
	lexiconPath string
	k           int
}

func searchCmd() *cobra.Command {
	opts := &searchOptions{}
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find the documents nearest a category center or ad-hoc text",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(opts)
		},
	}

	cmd.Flags().StringVar(&opts.indexPath, "index", ".documents.idx", "index file to read")
	cmd.Flags().StringVar(&opts.vectorsPath, "vectors", "", "pretrained vector file")
	cmd.Flags().IntVar(&opts.dim, "dim", 0, "expected vector dimension (0 = infer)")
	cmd.Flags().StringVar(&opts.text, "text", "", "free text to embed as the query")
	cmd.Flags().StringVar(&opts.category, "category", "", "lexicon category to use as the query")
	cmd.Flags().StringVar(&opts.lexiconPath, "lexicon", "", "lexicon CSV, required with --category")
	cmd.Flags().IntVarP(&opts.k, "limit", "k", 10, "number of neighbors")

	return cmd
}

func runSearch(opts *searchOptions) error {
	if (opts.text == "") == (opts.category == "") {
		return fmt.Errorf("give exactly one of --text or --category")
	}
	if opts.category != "" && opts.lexiconPath == "" {
		return fmt.Errorf("--category needs --lexicon")
	}

	vectorsPath, dim, err := vectorsDefaults(opts.vectorsPath, opts.dim)
	if err != nil {
		return err
	}

	var query []float64
	var queryDim int

	if opts.text != "" {
		tokens := corpus.DropStopwords(corpus.Tokenize(opts.text))
		if len(tokens) == 0 {
			return fmt.Errorf("query text produced no tokens")
		}
		c := &corpus.Corpus{}
		c.Add("query", tokens)
		table, _, err := embedding.Load(context.Background(), vectorsPath, corpusVocab(c), dim, embedding.PolicyOmit)
		if err != nil {
			return err
		}
		docs, err := ddr.DocumentVectors(c, table)
		if err != nil {
			return err
		}
		query = docs.Vectors["query"]
		queryDim = docs.Dim
	} else {
		lex, err := lexicon.Load(opts.lexiconPath)
		if err != nil {
			return err
		}
		found := false
		for _, cat := range lex.Categories() {
			if cat == opts.category {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("category %q not in lexicon %s", opts.category, opts.lexiconPath)
		}

		sub := lexicon.New()
		for _, token := range lex.Members(opts.category) {
			sub.Add(token, opts.category)
		}
		vocabulary := vocab.NewBuilder().Build(0, sub.Tokens())
		table, _, err := embedding.Load(context.Background(), vectorsPath, vocabulary, dim, embedding.PolicyOmit)
		if err != nil {
			return err
		}
		centers, err := ddr.Centers(sub, table)
		if err != nil {
			return err
		}
		query = centers.Vectors[opts.category]
		queryDim = centers.Dim
	}

	ix, err := index.Load(opts.indexPath, queryDim)
	if err != nil {
		return err
	}
	ids, err := ix.Search(query, opts.k)
	if err != nil {
		return err
	}

	fmt.Println(strings.Join(ids, "\n"))
	return nil
}

func vectorsDefaults(vectorsPath string, dim int) (string, int, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return "", 0, fmt.Errorf("error loading config: %v", err)
	}
	if vectorsPath == "" {
		vectorsPath = cfg.Vectors.Path
	}
	if vectorsPath == "" {
		return "", 0, fmt.Errorf("no vector file given. Use --vectors, ~/.ddr.toml or DDR_VECTORS")
	}
	if dim == 0 {
		dim = cfg.Vectors.Dim
	}
	return vectorsPath, dim, nil
}

// corpusVocab builds the loader's vocabulary view from a corpus alone.
func corpusVocab(c *corpus.Corpus) *vocab.Vocabulary {
	b := vocab.NewBuilder()
	for _, doc := range c.Docs {
		b.AddTokens(doc.Tokens)
	}
	return b.Build(0, nil)
}
