package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisgKent/primal-page/internal/bedfile"
	"github.com/ChrisgKent/primal-page/internal/conf"
	"github.com/ChrisgKent/primal-page/internal/scheme"
)

func testSettings() *conf.Settings {
	return &conf.Settings{
		Repository: conf.RepositoryConfig{
			ParentDir:  ".",
			GithubRepo: "quick-lab/primerschemes",
		},
	}
}

func TestRootCommandTree(t *testing.T) {
	rootCmd := RootCommand(testSettings())

	var names []string
	for _, sub := range rootCmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "validate")
	assert.Contains(t, names, "index")
	assert.Contains(t, names, "migrate")
	assert.Contains(t, names, "modify")
}

func TestMigrateCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "primer.bed")
	content := "chrom\t10\t30\tscheme_1_LEFT\t1\t+\tACGTACGTACGTACGTACGT\n" +
		"chrom\t90\t110\tscheme_1_RIGHT\t1\t-\tGGGGACGTACGTACGTACGT\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rootCmd := RootCommand(testSettings())
	rootCmd.SetArgs([]string{"migrate", path})
	require.NoError(t, rootCmd.Execute())

	assert.Equal(t, bedfile.FileV3, bedfile.DetermineBedFileVersionFromFile(path))
}

func TestModifyChangeStatus(t *testing.T) {
	dir := t.TempDir()
	infoPath := filepath.Join(dir, "info.json")
	info := &scheme.Info{
		AmpliconSize:     400,
		SchemeVersion:    "v1.0.0",
		SchemeName:       "example-scheme",
		Status:           scheme.StatusDraft,
		Authors:          []string{"quick lab"},
		AlgorithmVersion: "primalscheme3:1.0.0",
		Species:          []string{"sars-cov-2"},
		License:          scheme.DefaultLicense,
		PrimerClass:      scheme.ClassPrimerSchemes,
		InfoSchema:       scheme.InfoSchemaVersion,
		ArticBedVersion:  "v3.0",
	}
	require.NoError(t, scheme.WriteInfo(info, infoPath))

	rootCmd := RootCommand(testSettings())
	rootCmd.SetArgs([]string{"modify", "change-status", infoPath, "validated"})
	require.NoError(t, rootCmd.Execute())

	got, err := scheme.ReadInfo(infoPath)
	require.NoError(t, err)
	assert.Equal(t, scheme.StatusValidated, got.Status)

	// the transition regenerates the README alongside the record
	assert.FileExists(t, filepath.Join(dir, "README.md"))
}

func TestModifyRefusesInvalidStatus(t *testing.T) {
	dir := t.TempDir()
	infoPath := filepath.Join(dir, "info.json")
	info := &scheme.Info{
		AmpliconSize:     400,
		SchemeVersion:    "v1.0.0",
		SchemeName:       "example-scheme",
		Status:           scheme.StatusDraft,
		Authors:          []string{"quick lab"},
		AlgorithmVersion: "primalscheme3:1.0.0",
		Species:          []string{"sars-cov-2"},
		License:          scheme.DefaultLicense,
		PrimerClass:      scheme.ClassPrimerSchemes,
		InfoSchema:       scheme.InfoSchemaVersion,
		ArticBedVersion:  "v3.0",
	}
	require.NoError(t, scheme.WriteInfo(info, infoPath))

	rootCmd := RootCommand(testSettings())
	rootCmd.SilenceUsage = true
	rootCmd.SetArgs([]string{"modify", "change-status", infoPath, "published"})
	require.Error(t, rootCmd.Execute())

	// the record on disk is untouched
	got, err := scheme.ReadInfo(infoPath)
	require.NoError(t, err)
	assert.Equal(t, scheme.StatusDraft, got.Status)
}

func TestFileLoggingEnabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "primer.bed")
	content := "chrom\t10\t30\tscheme_1_LEFT\t1\t+\tACGTACGTACGTACGTACGT\n" +
		"chrom\t90\t110\tscheme_1_RIGHT\t1\t-\tGGGGACGTACGTACGTACGT\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	settings := testSettings()
	settings.Log.Enabled = true
	settings.Log.Path = filepath.Join(dir, "primal-page.log")

	rootCmd := RootCommand(settings)
	rootCmd.SetArgs([]string{"migrate", path})
	require.NoError(t, rootCmd.Execute())

	// command logging lands in the rotated log file as well
	data, err := os.ReadFile(settings.Log.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "migrated")
	assert.Contains(t, string(data), `"service":"migrate"`)
}

func TestModifyRegenerate(t *testing.T) {
	dir := t.TempDir()

	// scheme files with trailing whitespace and a stale record
	bed := "chrom\t10\t30\texample-scheme_1_LEFT_0\t1\t+\tACGTACGTACGTACGTACGT  \n" +
		"chrom\t90\t110\texample-scheme_1_RIGHT_0\t1\t-\tGGGGACGTACGTACGTACGT\t\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "primer.bed"), []byte(bed), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reference.fasta"), []byte(">chrom\nACGTACGT   \n"), 0o644))

	infoPath := filepath.Join(dir, "info.json")
	info := &scheme.Info{
		AmpliconSize:      400,
		SchemeVersion:     "v1.0.0",
		SchemeName:        "example-scheme",
		PrimerBedMD5:      "stale",
		ReferenceFastaMD5: "stale",
		Status:            scheme.StatusDraft,
		Authors:           []string{"quick lab"},
		AlgorithmVersion:  "primalscheme3:1.0.0",
		Species:           []string{"sars-cov-2"},
		License:           scheme.DefaultLicense,
		PrimerClass:       scheme.ClassPrimerSchemes,
		InfoSchema:        scheme.InfoSchemaVersion,
		ArticBedVersion:   "v2.0",
	}
	require.NoError(t, scheme.WriteInfo(info, infoPath))

	rootCmd := RootCommand(testSettings())
	rootCmd.SetArgs([]string{"modify", "regenerate", infoPath})
	require.NoError(t, rootCmd.Execute())

	// files are trimmed in place
	trimmed, err := os.ReadFile(filepath.Join(dir, "primer.bed"))
	require.NoError(t, err)
	assert.NotContains(t, string(trimmed), "  \n")
	assert.NotContains(t, string(trimmed), "\t\n")

	// hashes and bed generation are recomputed into the record
	got, err := scheme.ReadInfo(infoPath)
	require.NoError(t, err)
	bedMD5, err := scheme.MD5File(filepath.Join(dir, "primer.bed"))
	require.NoError(t, err)
	refMD5, err := scheme.MD5File(filepath.Join(dir, "reference.fasta"))
	require.NoError(t, err)
	assert.Equal(t, bedMD5, got.PrimerBedMD5)
	assert.Equal(t, refMD5, got.ReferenceFastaMD5)
	assert.Equal(t, "v3.0", got.ArticBedVersion)

	assert.FileExists(t, filepath.Join(dir, "README.md"))
}

func TestValidateCommandFailure(t *testing.T) {
	dir := t.TempDir()
	infoPath := filepath.Join(dir, "info.json")
	require.NoError(t, os.WriteFile(infoPath, []byte("not json"), 0o644))

	rootCmd := RootCommand(testSettings())
	rootCmd.SilenceUsage = true
	rootCmd.SetArgs([]string{"validate", "scheme", infoPath})
	require.Error(t, rootCmd.Execute())
}
