// Package embedding loads pretrained word vectors filtered to a vocabulary.
// The source format is one token per line followed by its components,
// whitespace-delimited (GloVe / word2vec text output).
package embedding

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

var (
	// ErrNoVectors means the scan finished without a single usable line.
	ErrNoVectors = errors.New("embedding: no vectors loaded")
	// ErrDimensionMismatch means two vectors of different lengths met where
	// equal lengths were required.
	ErrDimensionMismatch = errors.New("embedding: dimension mismatch")
)

// Policy decides what happens to vocabulary tokens that never appear in the
// source file. The choice changes downstream means, so it is explicit and
// logged, never implied.
type Policy int

const (
	// PolicyOmit leaves unresolved tokens out of the table entirely; they
	// contribute nothing to later means, not even a divisor slot.
	PolicyOmit Policy = iota
	// PolicyZeroFill inserts a zero vector for unresolved tokens, a neutral
	// contribution that still counts toward the divisor.
	PolicyZeroFill
)

func (p Policy) String() string {
	if p == PolicyZeroFill {
		return "zero"
	}
	return "omit"
}

// ParsePolicy maps the config spelling to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "omit":
		return PolicyOmit, nil
	case "zero", "zerofill", "zero-fill":
		return PolicyZeroFill, nil
	}
	return PolicyOmit, pkgerrors.Errorf("embedding: unknown policy %q", s)
}

// Table maps tokens to fixed-length vectors. Immutable once loaded.
type Table struct {
	dim  int
	vecs map[string][]float64
}

// LoadStats reports what the scan saw. Malformed and BadDimension lines are
// counted, not fatal; Unresolved lists vocabulary tokens the file never
// provided, whatever the policy did with them.
type LoadStats struct {
	LinesRead    int
	Kept         int
	Malformed    int
	BadDimension int
	EarlyExit    bool
	Unresolved   []string
}

// Load streams the vector file at path, keeping only tokens the vocabulary
// contains. dim fixes the expected vector length; dim <= 0 infers it from
// the first well-formed line. The scan stops early once every vocabulary
// token has been resolved. ctx cancels a scan over a large file.
//
// Lines that fail to parse or carry the wrong number of fields are counted
// and skipped. If no line at all survives, Load fails with ErrNoVectors.
func Load(ctx context.Context, path string, vocabulary Membership, dim int, policy Policy) (*Table, *LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(err, "embedding: open")
	}
	defer f.Close()

	t := &Table{dim: dim, vecs: make(map[string][]float64)}
	stats := &LoadStats{}
	want := vocabulary.Size()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		if stats.LinesRead%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, pkgerrors.Wrap(err, "embedding: load canceled")
			}
		}
		stats.LinesRead++

		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			stats.Malformed++
			continue
		}
		token := fields[0]

		if t.dim <= 0 {
			// First well-formed line fixes the dimension for the rest
			// of the scan.
			t.dim = len(fields) - 1
		}
		if len(fields)-1 != t.dim {
			stats.BadDimension++
			continue
		}

		if !vocabulary.Contains(token) {
			continue
		}
		if _, dup := t.vecs[token]; dup {
			continue
		}

		vec := make([]float64, t.dim)
		bad := false
		for i, field := range fields[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				bad = true
				break
			}
			vec[i] = v
		}
		if bad {
			stats.Malformed++
			continue
		}

		t.vecs[token] = vec
		stats.Kept++
		if want > 0 && stats.Kept == want {
			stats.EarlyExit = true
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, pkgerrors.Wrap(err, "embedding: read")
	}

	if stats.Kept == 0 {
		return nil, stats, pkgerrors.Wrapf(ErrNoVectors, "%s (%d lines, %d malformed, %d bad dimension)",
			path, stats.LinesRead, stats.Malformed, stats.BadDimension)
	}

	stats.Unresolved = unresolved(vocabulary, t)
	if len(stats.Unresolved) > 0 {
		slog.Warn("embedding: vocabulary tokens not found in source",
			"path", path, "unresolved", len(stats.Unresolved), "policy", policy.String())
		if policy == PolicyZeroFill {
			for _, token := range stats.Unresolved {
				t.vecs[token] = make([]float64, t.dim)
			}
		}
	}
	if stats.Malformed > 0 || stats.BadDimension > 0 {
		slog.Warn("embedding: skipped unusable lines",
			"path", path, "malformed", stats.Malformed, "bad_dimension", stats.BadDimension)
	}
	slog.Info("embedding table loaded",
		"path", path, "kept", stats.Kept, "dim", t.dim, "early_exit", stats.EarlyExit)

	return t, stats, nil
}

// Membership is the vocabulary view the loader needs.
type Membership interface {
	Contains(token string) bool
	Size() int
	Members() []string
}

func unresolved(vocabulary Membership, t *Table) []string {
	var missing []string
	for _, token := range vocabulary.Members() {
		if _, ok := t.vecs[token]; !ok {
			missing = append(missing, token)
		}
	}
	sort.Strings(missing)
	return missing
}

// Dim returns the vector length.
func (t *Table) Dim() int { return t.dim }

// Len returns the number of stored tokens.
func (t *Table) Len() int { return len(t.vecs) }

// Vector returns the vector for a token, if present.
func (t *Table) Vector(token string) ([]float64, bool) {
	v, ok := t.vecs[token]
	return v, ok
}

// Tokens returns the stored tokens sorted lexicographically.
func (t *Table) Tokens() []string {
	out := make([]string, 0, len(t.vecs))
	for token := range t.vecs {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

// NewTable builds a table directly from a map. Used by tests and by callers
// that already hold vectors in memory. All vectors must share one length.
func NewTable(vecs map[string][]float64) (*Table, error) {
	t := &Table{vecs: make(map[string][]float64, len(vecs))}
	for token, vec := range vecs {
		if t.dim == 0 {
			t.dim = len(vec)
		}
		if len(vec) != t.dim {
			return nil, pkgerrors.Wrapf(ErrDimensionMismatch, "token %q has %d components, want %d",
				token, len(vec), t.dim)
		}
		t.vecs[token] = vec
	}
	if len(t.vecs) == 0 {
		return nil, ErrNoVectors
	}
	return t, nil
}
