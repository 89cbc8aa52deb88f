// Package fasta is the reference-sequence collaborator: a minimal FASTA
// reader yielding (identifier, sequence) records and an index over them.
package fasta

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/ChrisgKent/primal-page/internal/errors"
)

// Record is one parsed FASTA sequence
type Record struct {
	ID  string
	Seq []byte
}

// Read parses FASTA records from r. The identifier is the first
// whitespace-delimited token of the header line.
func Read(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 64*1024*1024)

	var records []Record
	var cur *Record

	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			header := strings.TrimPrefix(line, ">")
			id := strings.Fields(header)
			if len(id) == 0 {
				return nil, errors.Newf("fasta record with empty header").
					Component("fasta").
					Category(errors.CategoryStructural).
					Build()
			}
			records = append(records, Record{ID: id[0]})
			cur = &records[len(records)-1]
			continue
		}
		if cur == nil {
			return nil, errors.Newf("sequence data before first fasta header").
				Component("fasta").
				Category(errors.CategoryStructural).
				Build()
		}
		cur.Seq = append(cur.Seq, []byte(line)...)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.New(err).
			Component("fasta").
			Category(errors.CategoryFileIO).
			Build()
	}

	return records, nil
}

// ReadFile parses the FASTA file at path
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(err).
			Component("fasta").
			Category(errors.CategoryFileIO).
			FileContext(path).
			Build()
	}
	defer f.Close()
	return Read(f)
}

// Index is a by-identifier lookup over the records of one FASTA file
type Index struct {
	records map[string]Record
	order   []string
}

// NewIndex builds an Index from records
func NewIndex(records []Record) *Index {
	idx := &Index{records: make(map[string]Record, len(records))}
	for _, rec := range records {
		if _, ok := idx.records[rec.ID]; !ok {
			idx.order = append(idx.order, rec.ID)
		}
		idx.records[rec.ID] = rec
	}
	return idx
}

// IndexFile parses and indexes the FASTA file at path
func IndexFile(path string) (*Index, error) {
	records, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewIndex(records), nil
}

// IDs returns the sequence identifiers in file order
func (idx *Index) IDs() []string {
	return append([]string(nil), idx.order...)
}

// Sequence returns the sequence for id
func (idx *Index) Sequence(id string) ([]byte, bool) {
	rec, ok := idx.records[id]
	return rec.Seq, ok
}

// PrimerSequence implements bedfile.SequenceProvider: it slices the
// half-open interval [start, end) out of chrom, reverse-complemented for the
// minus strand so the returned sequence reads 5'→3' as the primer does.
func (idx *Index) PrimerSequence(chrom string, start, end int, strand string) (string, error) {
	rec, ok := idx.records[chrom]
	if !ok {
		return "", errors.Newf("chrom %q not in reference", chrom).
			Component("fasta").
			Category(errors.CategoryIntegrity).
			Build()
	}
	if start < 0 || end > len(rec.Seq) || start >= end {
		return "", errors.Newf("primer interval [%d, %d) out of range for %q (length %d)",
			start, end, chrom, len(rec.Seq)).
			Component("fasta").
			Category(errors.CategoryIntegrity).
			Build()
	}
	seq := append([]byte(nil), rec.Seq[start:end]...)
	if strand == "-" {
		seq = RevComp(seq)
	}
	return strings.ToUpper(string(seq)), nil
}
