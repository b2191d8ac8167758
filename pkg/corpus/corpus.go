package corpus

import (
	"bufio"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Document is one corpus entry: an opaque id and its token multiset.
type Document struct {
	ID     string
	Tokens []string
}

// Corpus holds documents in file order. Order matters downstream: similarity
// matrix rows follow it.
type Corpus struct {
	Docs []Document

	byID map[string]int
}

// Options controls how raw text is turned into tokens.
type Options struct {
	// KeepStopwords disables the stopword filter.
	KeepStopwords bool
}

// Load reads a corpus file where each line is "docID<TAB>raw text". Lines
// without a tab or with an empty id are logged and skipped. Repeated ids
// append to the same document.
func Load(path string, opts Options) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "corpus: open")
	}
	defer f.Close()

	c := &Corpus{byID: make(map[string]int)}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	skipped := 0
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		id, text, ok := strings.Cut(line, "\t")
		if !ok || strings.TrimSpace(id) == "" {
			skipped++
			continue
		}
		tokens := Tokenize(text)
		if !opts.KeepStopwords {
			tokens = DropStopwords(tokens)
		}
		c.Add(strings.TrimSpace(id), tokens)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "corpus: read")
	}

	if skipped > 0 {
		slog.Warn("corpus: skipped malformed lines", "path", path, "skipped", skipped)
	}
	slog.Info("corpus loaded", "path", path, "documents", len(c.Docs))
	return c, nil
}

// Add appends tokens to the document with the given id, creating it if
// needed. Document order is first-appearance order.
func (c *Corpus) Add(id string, tokens []string) {
	if c.byID == nil {
		c.byID = make(map[string]int)
	}
	i, ok := c.byID[id]
	if !ok {
		i = len(c.Docs)
		c.byID[id] = i
		c.Docs = append(c.Docs, Document{ID: id})
	}
	c.Docs[i].Tokens = append(c.Docs[i].Tokens, tokens...)
}

// Tokens returns the token multiset of a document, or nil if the id is
// unknown.
func (c *Corpus) Tokens(id string) []string {
	if i, ok := c.byID[id]; ok {
		return c.Docs[i].Tokens
	}
	return nil
}

// Len returns the number of documents.
func (c *Corpus) Len() int { return len(c.Docs) }
