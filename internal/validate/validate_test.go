package validate

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisgKent/primal-page/internal/errors"
	"github.com/ChrisgKent/primal-page/internal/scheme"
)

const testBed = "MN908947.3\t30\t54\texample-scheme_1_LEFT_0\t1\t+\tACCAACCAACTTTCGATCTCTTGT\n" +
	"MN908947.3\t380\t404\texample-scheme_1_RIGHT_0\t1\t-\tTTTTGTCATTCTCCTAAGAAGCTA\n" +
	"MN908947.3\t320\t342\texample-scheme_2_LEFT_0\t2\t+\tCGTACGTGGCTTTGGAGACTCC\n" +
	"MN908947.3\t690\t712\texample-scheme_2_RIGHT_0\t2\t-\tGGTAGTAGCCAAGTGGGAGATG\n"

const testFasta = ">MN908947.3\nACGTACGTACGTACGT\n"

// writeScheme lays one scheme version down under root with self-consistent
// hashes, record and README
func writeScheme(t *testing.T, root, name, size, version, bed, fasta string) string {
	t.Helper()

	dir := filepath.Join(root, "primerschemes", name, size, version)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "primer.bed"), []byte(bed), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reference.fasta"), []byte(fasta), 0o644))

	bedMD5, err := scheme.MD5File(filepath.Join(dir, "primer.bed"))
	require.NoError(t, err)
	refMD5, err := scheme.MD5File(filepath.Join(dir, "reference.fasta"))
	require.NoError(t, err)

	ampliconSize, err := strconv.Atoi(size)
	require.NoError(t, err)

	info := &scheme.Info{
		AmpliconSize:      ampliconSize,
		SchemeVersion:     version,
		SchemeName:        name,
		PrimerBedMD5:      bedMD5,
		ReferenceFastaMD5: refMD5,
		Status:            scheme.StatusDraft,
		Authors:           []string{"quick lab"},
		AlgorithmVersion:  "primalscheme3:1.0.0",
		Species:           []string{"sars-cov-2"},
		License:           scheme.DefaultLicense,
		PrimerClass:       scheme.ClassPrimerSchemes,
		InfoSchema:        scheme.InfoSchemaVersion,
		ArticBedVersion:   "v3.0",
	}

	infoPath := filepath.Join(dir, "info.json")
	require.NoError(t, scheme.WriteInfo(info, infoPath))
	require.NoError(t, scheme.WriteReadme(info, dir))
	return infoPath
}

func reportErrorText(report *Report) string {
	var text string
	for _, err := range report.Errors {
		text += err.Error() + "\n"
	}
	return text
}

func TestSchemeClean(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	infoPath := writeScheme(t, root, "example-scheme", "400", "v1.0.0", testBed, testFasta)

	report := Scheme(infoPath, nil)
	assert.True(t, report.OK(), reportErrorText(report))
	assert.Equal(t, "example-scheme/400/v1.0.0", report.SchemePath)
}

func TestSchemeHashMismatch(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	infoPath := writeScheme(t, root, "example-scheme", "400", "v1.0.0", testBed, testFasta)

	// mutate the published bed after the record was written
	bedPath := filepath.Join(filepath.Dir(infoPath), "primer.bed")
	require.NoError(t, os.WriteFile(bedPath, []byte(testBed+
		"MN908947.3\t650\t674\texample-scheme_3_LEFT_0\t1\t+\tACGTACGTACGTACGTACGTACGT\n"), 0o644))

	report := Scheme(infoPath, nil)
	require.False(t, report.OK())
	text := reportErrorText(report)
	assert.Contains(t, text, "MD5 mismatch")
	assert.Contains(t, text, "primer.bed")

	found := false
	for _, err := range report.Errors {
		if errors.CategoryOf(err) == errors.CategoryIntegrity {
			found = true
		}
	}
	assert.True(t, found)
}

func TestSchemeMissingReversePrimer(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	incomplete := "MN908947.3\t30\t54\texample-scheme_1_LEFT_0\t1\t+\tACCAACCAACTTTCGATCTCTTGT\n" +
		"MN908947.3\t380\t404\texample-scheme_1_RIGHT_0\t1\t-\tTTTTGTCATTCTCCTAAGAAGCTA\n" +
		"MN908947.3\t320\t342\texample-scheme_2_LEFT_0\t2\t+\tCGTACGTGGCTTTGGAGACTCC\n"
	infoPath := writeScheme(t, root, "example-scheme", "400", "v1.0.0", incomplete, testFasta)

	report := Scheme(infoPath, nil)
	require.False(t, report.OK())
	assert.Contains(t, reportErrorText(report), "missing reverse primer for example-scheme_2")
}

func TestSchemeOldPrimerNames(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	oldNames := "MN908947.3\t30\t54\texample-scheme_1_LEFT\t1\t+\tACCAACCAACTTTCGATCTCTTGT\n" +
		"MN908947.3\t380\t404\texample-scheme_1_RIGHT\t1\t-\tTTTTGTCATTCTCCTAAGAAGCTA\n"
	infoPath := writeScheme(t, root, "example-scheme", "400", "v1.0.0", oldNames, testFasta)

	report := Scheme(infoPath, nil)
	require.False(t, report.OK())
	text := reportErrorText(report)
	assert.Contains(t, text, "old primer names")
	assert.Contains(t, text, "example-scheme_1_LEFT")
}

func TestSchemeChromMismatch(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	infoPath := writeScheme(t, root, "example-scheme", "400", "v1.0.0", testBed,
		">other-chrom\nACGTACGTACGTACGT\n")

	report := Scheme(infoPath, nil)
	require.False(t, report.OK())
	text := reportErrorText(report)
	assert.Contains(t, text, "MN908947.3")
	assert.Contains(t, text, "other-chrom")
}

func TestSchemeReadmeDrift(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	infoPath := writeScheme(t, root, "example-scheme", "400", "v1.0.0", testBed, testFasta)

	readmePath := filepath.Join(filepath.Dir(infoPath), "README.md")
	require.NoError(t, os.WriteFile(readmePath, []byte("# something else entirely\n"), 0o644))

	report := Scheme(infoPath, nil)
	require.False(t, report.OK())
	assert.Contains(t, reportErrorText(report), "README.md")
}

func TestSchemeIdentityMismatch(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	// record says v1.0.0 but the version directory disagrees
	infoPath := writeScheme(t, root, "example-scheme", "400", "v1.0.0", testBed, testFasta)
	dir := filepath.Dir(infoPath)
	renamed := filepath.Join(filepath.Dir(dir), "v2.0.0")
	require.NoError(t, os.Rename(dir, renamed))

	report := Scheme(filepath.Join(renamed, "info.json"), nil)
	require.False(t, report.OK())
	assert.Contains(t, reportErrorText(report), "identity mismatch")
}

func TestSchemeUnreadableRecord(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	infoPath := filepath.Join(root, "info.json")
	require.NoError(t, os.WriteFile(infoPath, []byte("not json"), 0o644))

	report := Scheme(infoPath, nil)
	require.False(t, report.OK())
	assert.Len(t, report.Errors, 1)
}

func TestTree(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeScheme(t, root, "beta-scheme", "400", "v1.0.0", testBed, testFasta)
	infoPath := writeScheme(t, root, "alpha-scheme", "400", "v1.0.0", testBed, testFasta)

	// break one scheme after the fact
	require.NoError(t, os.Remove(filepath.Join(filepath.Dir(infoPath), "README.md")))

	reports, err := Tree(root, nil)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	// sorted by path, alpha-scheme first
	assert.Equal(t, "alpha-scheme/400/v1.0.0", reports[0].SchemePath)
	assert.False(t, reports[0].OK())
	assert.Equal(t, "beta-scheme/400/v1.0.0", reports[1].SchemePath)
	assert.True(t, reports[1].OK(), reportErrorText(reports[1]))
}
