// Package report writes the pipeline's artifacts as flat CSV tables and
// reads them back for browsing. Undefined values travel as "NaN" so a
// downstream consumer can filter them.
package report

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/cverna/ddr/pkg/ddr"
)

// WriteVectors writes a vector set as rows of key followed by components,
// with a header of component indexes. Row order is the set's key order.
func WriteVectors(w io.Writer, s *ddr.VectorSet, keyHeader string) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, s.Dim+1)
	header = append(header, keyHeader)
	for i := 0; i < s.Dim; i++ {
		header = append(header, "d"+strconv.Itoa(i))
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "report: write header")
	}

	row := make([]string, s.Dim+1)
	for _, key := range s.Keys {
		row[0] = key
		for i, x := range s.Vectors[key] {
			row[i+1] = strconv.FormatFloat(x, 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "report: write row %s", key)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "report: flush")
}

// WriteSimilarity writes the similarity matrix with a header row of category
// labels and a leading column of document ids.
func WriteSimilarity(w io.Writer, m *ddr.Matrix) error {
	cw := csv.NewWriter(w)

	header := append([]string{"document"}, m.Categories...)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "report: write header")
	}

	row := make([]string, len(m.Categories)+1)
	for i, id := range m.DocIDs {
		row[0] = id
		for j := range m.Categories {
			row[j+1] = strconv.FormatFloat(m.Value(i, j), 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "report: write row %s", id)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "report: flush")
}

// SaveVectors writes a vector set to a file.
func SaveVectors(path string, s *ddr.VectorSet, keyHeader string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "report: create")
	}
	defer f.Close()
	return WriteVectors(f, s, keyHeader)
}

// SaveSimilarity writes the similarity matrix to a file.
func SaveSimilarity(path string, m *ddr.Matrix) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "report: create")
	}
	defer f.Close()
	return WriteSimilarity(f, m)
}

// SimilarityTable is a similarity CSV read back into memory, shaped for
// display rather than computation.
type SimilarityTable struct {
	Categories []string
	DocIDs     []string
	Rows       [][]string
}

// ReadSimilarity parses a CSV produced by WriteSimilarity.
func ReadSimilarity(r io.Reader) (*SimilarityTable, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "report: read similarity")
	}
	if len(records) < 2 || len(records[0]) < 2 {
		return nil, errors.New("report: similarity table needs a header and at least one row")
	}

	t := &SimilarityTable{Categories: records[0][1:]}
	for _, rec := range records[1:] {
		if len(rec) != len(records[0]) {
			return nil, errors.Errorf("report: ragged similarity row %q", rec[0])
		}
		t.DocIDs = append(t.DocIDs, rec[0])
		t.Rows = append(t.Rows, rec[1:])
	}
	return t, nil
}

// LoadSimilarity reads a similarity CSV from a file.
func LoadSimilarity(path string) (*SimilarityTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "report: open")
	}
	defer f.Close()
	return ReadSimilarity(f)
}
