package vocab

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cverna/ddr/pkg/corpus"
	"github.com/cverna/ddr/pkg/lexicon"
	"github.com/cverna/ddr/pkg/vocab"
)

type options struct {
	corpusPath   string
	lexiconPaths []string
	vocabCap     int
	counts       bool
	stopwords    bool
	output       string
}

func VocabCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Build the vocabulary for a corpus",
		Long: `Tallies token frequencies across the corpus, applies the optional cap
and unions in every lexicon token, then writes the member list (or the
frequency table with --counts).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVocab(opts)
		},
	}

	cmd.Flags().StringVar(&opts.corpusPath, "corpus", "", "corpus file (docID<TAB>text per line)")
	cmd.Flags().StringArrayVar(&opts.lexiconPaths, "lexicon", nil, "lexicon CSV, repeatable")
	cmd.Flags().IntVar(&opts.vocabCap, "cap", 0, "keep only the N most frequent corpus tokens")
	cmd.Flags().BoolVar(&opts.counts, "counts", false, "write token<TAB>count instead of the member list")
	cmd.Flags().BoolVar(&opts.stopwords, "keep-stopwords", false, "keep stopwords during tokenization")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "-", "output file (- for stdout)")
	cmd.MarkFlagRequired("corpus")

	return cmd
}

func runVocab(opts *options) error {
	c, err := corpus.Load(opts.corpusPath, corpus.Options{KeepStopwords: opts.stopwords})
	if err != nil {
		return err
	}

	var lexTokens []string
	for _, path := range opts.lexiconPaths {
		lex, err := lexicon.Load(path)
		if err != nil {
			return err
		}
		lexTokens = append(lexTokens, lex.Tokens()...)
	}

	builder := vocab.NewBuilder()
	for _, doc := range c.Docs {
		builder.AddTokens(doc.Tokens)
	}

	out := os.Stdout
	if opts.output != "-" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("error creating output: %v", err)
		}
		defer f.Close()
		out = f
	}
	w := bufio.NewWriter(out)
	defer w.Flush()

	if opts.counts {
		for _, wc := range builder.Counts() {
			fmt.Fprintf(w, "%s\t%d\n", wc.Word, wc.Count)
		}
		return nil
	}

	v := builder.Build(opts.vocabCap, lexTokens)
	for _, token := range v.Members() {
		fmt.Fprintln(w, token)
	}
	fmt.Fprintln(os.Stderr, "vocabulary size: "+strconv.Itoa(v.Size()))
	return nil
}
