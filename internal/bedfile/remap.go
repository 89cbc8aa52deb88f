package bedfile

import (
	"sort"

	"github.com/ChrisgKent/primal-page/internal/errors"
)

// ErrCannotConvert is wrapped by remap errors raised when a file cannot be
// deterministically rewritten without operator input.
var ErrCannotConvert = errors.Newf("cannot convert bedfile to v3").
	Component("bedfile").
	Category(errors.CategoryNaming).
	Build().Err

// SequenceProvider supplies primer sequences for 6-column inputs that carry
// none. Implementations slice the reference genome; minus-strand primers are
// returned reverse-complemented.
type SequenceProvider interface {
	PrimerSequence(chrom string, start, end int, strand string) (string, error)
}

type ampliconKey struct {
	chrom    string
	amplicon int
}

// Remap deterministically rewrites a BED file of any valid earlier
// generation into v3 (7 columns, v2 primer names).
//
// Already-v3 input is returned unchanged, so the operation is idempotent.
// Lines are grouped per (chrom, amplicon number) and split by strand; within
// each strand group primers are ordered by lexicographic sequence and
// assigned 0-based indices in that order. The sequence tie-break makes the
// numbering independent of input line order. Alt primers fold into their
// group like any other line.
//
// 6-column input has no sequences to sort by, so it needs a
// SequenceProvider; without one Remap refuses with ErrCannotConvert rather
// than guessing (nothing is ever silently dropped).
func Remap(header []string, lines []*BedLine, seqs SequenceProvider) ([]string, []*BedLine, error) {
	version := DetermineBedFileVersion(lines)
	switch version {
	case FileV3:
		return header, lines, nil
	case FileInvalid:
		return nil, nil, errors.Newf("bedfile is invalid, cannot remap").
			Component("bedfile").
			Category(errors.CategoryNaming).
			Build()
	case FileV1, FileV2:
		// fallthrough to remap
	}

	remapped := make([]*BedLine, 0, len(lines))
	for _, line := range lines {
		cp := *line
		// 6-column files pass version detection regardless of name content,
		// but a remap needs every name decomposed
		if cp.Name.Version == NameInvalid {
			return nil, nil, errors.Newf("invalid primername %q, cannot remap", cp.PrimerName).
				Component("bedfile").
				Category(errors.CategoryNaming).
				Context("primername", cp.PrimerName).
				Build()
		}
		if cp.Sequence == "" {
			if seqs == nil {
				return nil, nil, errors.Newf(
					"%w: %s has no sequence and no reference was provided",
					ErrCannotConvert, cp.PrimerName).
					Component("bedfile").
					Category(errors.CategoryNaming).
					Context("primername", cp.PrimerName).
					Build()
			}
			seq, err := seqs.PrimerSequence(cp.Chrom, cp.Start, cp.End, cp.Strand)
			if err != nil {
				return nil, nil, errors.Newf(
					"%w: resolving sequence for %s: %w", ErrCannotConvert, cp.PrimerName, err).
					Component("bedfile").
					Category(errors.CategoryNaming).
					Context("primername", cp.PrimerName).
					Build()
			}
			cp.Sequence = seq
		}
		remapped = append(remapped, &cp)
	}

	// Deterministic base order before grouping
	sort.SliceStable(remapped, func(i, j int) bool {
		a, b := remapped[i], remapped[j]
		if a.Chrom != b.Chrom {
			return a.Chrom < b.Chrom
		}
		if a.Name.AmpliconNumber != b.Name.AmpliconNumber {
			return a.Name.AmpliconNumber < b.Name.AmpliconNumber
		}
		if a.Strand != b.Strand {
			return a.Strand == "+"
		}
		return a.Sequence < b.Sequence
	})

	// Assign 0-based indices per (chrom, amplicon, strand) in sequence order
	type strandKey struct {
		ampliconKey
		strand string
	}
	counters := make(map[strandKey]int)
	for _, line := range remapped {
		key := strandKey{ampliconKey{line.Chrom, line.Name.AmpliconNumber}, line.Strand}
		index := counters[key]
		counters[key]++

		direction := DirectionLeft
		if line.Strand == "-" {
			direction = DirectionRight
		}

		line.Name = PrimerName{
			Prefix:         line.Name.Prefix,
			AmpliconNumber: line.Name.AmpliconNumber,
			Direction:      direction,
			Index:          index,
			Version:        NameV2,
		}
		line.PrimerName = line.Name.String()
	}

	return header, remapped, nil
}

// RemapFile remaps the BED file at path in place, writing atomically.
// Already-v3 files are rewritten byte-identically (modulo whitespace
// normalization, which is a no-op for files this tool wrote).
func RemapFile(path string, seqs SequenceProvider) error {
	header, lines, err := ReadFile(path)
	if err != nil {
		return err
	}
	header, lines, err = Remap(header, lines, seqs)
	if err != nil {
		return err
	}
	return WriteFile(path, header, lines)
}
