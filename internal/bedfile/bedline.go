package bedfile

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ChrisgKent/primal-page/internal/errors"
)

// BedLine is one parsed coordinate record of a primer BED file.
// Sequence is empty for 6-column lines. Name carries the classified primer
// name; a line with an unclassifiable name still parses structurally and
// reports Name.Version == NameInvalid.
type BedLine struct {
	Chrom      string
	Start      int
	End        int
	PrimerName string
	Pool       int
	Strand     string
	Sequence   string
	Name       PrimerName
}

// NumColumns returns 6 or 7 depending on whether the line carries a sequence
func (bl *BedLine) NumColumns() int {
	if bl.Sequence == "" {
		return 6
	}
	return 7
}

// String serializes the line back to its tab-delimited form, reproducing the
// original generation's column count.
func (bl *BedLine) String() string {
	fields := []string{
		bl.Chrom,
		strconv.Itoa(bl.Start),
		strconv.Itoa(bl.End),
		bl.PrimerName,
		strconv.Itoa(bl.Pool),
		bl.Strand,
	}
	if bl.Sequence != "" {
		fields = append(fields, bl.Sequence)
	}
	return strings.Join(fields, "\t")
}

func structuralErr(line string, format string, args ...any) error {
	return errors.Newf(format, args...).
		Component("bedfile").
		Category(errors.CategoryStructural).
		Context("line", line).
		Build()
}

// ParseLine parses one data line. Structural failures (column count, bad
// integers, bad strand, start >= end, empty sequence) return a nil line and a
// structural error. An unclassifiable primer name is not structural: the
// parsed line is returned together with a naming error so callers can
// distinguish "malformed line" from "outdated or bad name".
func ParseLine(text string) (*BedLine, error) {
	trimmed := strings.TrimRight(text, " \t\r\n")
	fields := strings.Split(trimmed, "\t")
	if len(fields) != 6 && len(fields) != 7 {
		return nil, structuralErr(trimmed, "expected 6 or 7 tab-separated fields, got %d", len(fields))
	}

	start, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, structuralErr(trimmed, "invalid start coordinate %q", fields[1])
	}
	end, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, structuralErr(trimmed, "invalid end coordinate %q", fields[2])
	}
	if start >= end {
		return nil, structuralErr(trimmed, "start (%d) must be less than end (%d)", start, end)
	}
	pool, err := strconv.Atoi(fields[4])
	if err != nil {
		return nil, structuralErr(trimmed, "invalid pool/score field %q", fields[4])
	}
	strand := fields[5]
	if strand != "+" && strand != "-" {
		return nil, structuralErr(trimmed, "invalid strand %q, must be + or -", strand)
	}

	bl := &BedLine{
		Chrom:      fields[0],
		Start:      start,
		End:        end,
		PrimerName: fields[3],
		Pool:       pool,
		Strand:     strand,
	}

	if len(fields) == 7 {
		if fields[6] == "" {
			return nil, structuralErr(trimmed, "empty sequence field")
		}
		bl.Sequence = fields[6]
	}

	pn, nameErr := ParsePrimerName(bl.PrimerName)
	if nameErr != nil {
		bl.Name = PrimerName{Index: -1, Version: NameInvalid}
		return bl, nameErr
	}
	bl.Name = *pn

	return bl, nil
}

// Read parses a whole BED stream. Header lines ("#"-prefixed) are collected
// verbatim, blank lines are skipped. A structural error aborts the read; a
// naming error does not, the affected lines simply carry NameInvalid for the
// version detector and validators to act on.
func Read(r io.Reader) (header []string, lines []*BedLine, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	first := true
	for scanner.Scan() {
		text := scanner.Text()
		if first {
			// the format forbids a byte-order mark, drop one if present
			text = strings.TrimPrefix(text, "\ufeff")
			first = false
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		if strings.HasPrefix(text, "#") {
			header = append(header, strings.TrimRight(text, " \t\r\n"))
			continue
		}

		line, err := ParseLine(text)
		if err != nil && errors.CategoryOf(err) == errors.CategoryStructural {
			return nil, nil, err
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, errors.New(err).
			Component("bedfile").
			Category(errors.CategoryFileIO).
			Build()
	}

	return header, lines, nil
}

// ReadFile parses the BED file at path
func ReadFile(path string) (header []string, lines []*BedLine, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.New(err).
			Component("bedfile").
			Category(errors.CategoryFileIO).
			FileContext(path).
			Build()
	}
	defer f.Close()

	header, lines, err = Read(f)
	if err != nil {
		return nil, nil, err
	}
	return header, lines, nil
}

// Format renders the header lines and data lines as BED file text with
// trailing whitespace trimmed.
func Format(header []string, lines []*BedLine) string {
	var sb strings.Builder
	for _, h := range header {
		sb.WriteString(h)
		sb.WriteByte('\n')
	}
	for _, l := range lines {
		sb.WriteString(l.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// WriteFile writes a BED file atomically: the content goes to a temporary
// file in the target directory which is then renamed over path, so a
// concurrent reader never observes a partial file.
func WriteFile(path string, header []string, lines []*BedLine) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return errors.New(err).
			Component("bedfile").
			Category(errors.CategoryFileIO).
			FileContext(path).
			Build()
	}
	tmpName := tmp.Name()

	_, writeErr := tmp.WriteString(Format(header, lines))
	closeErr := tmp.Close()
	if writeErr != nil || closeErr != nil {
		os.Remove(tmpName)
		return errors.Newf("writing %s: %w", path, firstErr(writeErr, closeErr)).
			Component("bedfile").
			Category(errors.CategoryFileIO).
			Build()
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.New(err).
			Component("bedfile").
			Category(errors.CategoryFileIO).
			FileContext(path).
			Build()
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
