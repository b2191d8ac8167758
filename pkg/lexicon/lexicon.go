// Package lexicon loads word-to-category dictionaries. A token may belong to
// several categories, so the data is a set of (token, category) pairs rather
// than a map.
package lexicon

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Entry is one (token, category) pair.
type Entry struct {
	Token    string
	Category string
}

// Lexicon holds the pairs plus category order. Category order is
// first-appearance order and fixes similarity matrix column order.
type Lexicon struct {
	entries    []Entry
	categories []string
	members    map[string][]string
	seen       map[Entry]struct{}
}

func New() *Lexicon {
	return &Lexicon{
		members: make(map[string][]string),
		seen:    make(map[Entry]struct{}),
	}
}

// Load reads a CSV file of "token,category" rows. A header row whose first
// field is "token" or "word" is skipped. Duplicate pairs collapse to one.
func Load(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "lexicon: open")
	}
	defer f.Close()

	lex := New()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	line := 0
	skipped := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "lexicon: parse %s", path)
		}
		line++
		if len(rec) < 2 || rec[0] == "" || rec[1] == "" {
			skipped++
			continue
		}
		token := strings.ToLower(strings.TrimSpace(rec[0]))
		category := strings.TrimSpace(rec[1])
		if line == 1 && (token == "token" || token == "word") {
			continue
		}
		lex.Add(token, category)
	}

	if skipped > 0 {
		slog.Warn("lexicon: skipped malformed rows", "path", path, "skipped", skipped)
	}
	if len(lex.entries) == 0 {
		return nil, errors.Errorf("lexicon: no entries in %s", path)
	}
	return lex, nil
}

// Add records one pair, ignoring exact duplicates.
func (l *Lexicon) Add(token, category string) {
	e := Entry{Token: token, Category: category}
	if _, dup := l.seen[e]; dup {
		return
	}
	l.seen[e] = struct{}{}
	l.entries = append(l.entries, e)
	if _, ok := l.members[category]; !ok {
		l.categories = append(l.categories, category)
	}
	l.members[category] = append(l.members[category], token)
}

// Categories returns the category labels in first-appearance order.
func (l *Lexicon) Categories() []string { return l.categories }

// Members returns the member tokens of a category in insertion order.
func (l *Lexicon) Members(category string) []string { return l.members[category] }

// Tokens returns every distinct token across all categories.
func (l *Lexicon) Tokens() []string {
	seen := make(map[string]struct{}, len(l.entries))
	var out []string
	for _, e := range l.entries {
		if _, ok := seen[e.Token]; ok {
			continue
		}
		seen[e.Token] = struct{}{}
		out = append(out, e.Token)
	}
	return out
}

// Entries returns the pair list in insertion order.
func (l *Lexicon) Entries() []Entry { return l.entries }

// Len returns the number of distinct pairs.
func (l *Lexicon) Len() int { return len(l.entries) }
