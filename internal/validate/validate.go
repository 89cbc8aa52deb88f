// Package validate implements the per-scheme integrity checks. Each check
// reports independently and a scheme's report collects every failure, so a
// single run surfaces every problem instead of stopping at the first.
package validate

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ChrisgKent/primal-page/internal/bedfile"
	"github.com/ChrisgKent/primal-page/internal/errors"
	"github.com/ChrisgKent/primal-page/internal/fasta"
	"github.com/ChrisgKent/primal-page/internal/scheme"
)

// Report collects every error found for one scheme
type Report struct {
	SchemePath string
	InfoPath   string
	Errors     []error
}

// OK reports whether the scheme passed every check
func (r *Report) OK() bool {
	return len(r.Errors) == 0
}

func (r *Report) add(err error) {
	if err != nil {
		r.Errors = append(r.Errors, err)
	}
}

// Scheme runs every integrity check for the scheme described by the
// info.json at infoPath. hash defaults to MD5 when nil.
func Scheme(infoPath string, hash scheme.Hasher) *Report {
	if hash == nil {
		hash = scheme.MD5File
	}

	report := &Report{InfoPath: infoPath}

	info, err := scheme.ReadInfo(infoPath)
	if err != nil {
		// Without a readable record no cross-check can run
		report.add(err)
		return report
	}
	report.SchemePath = info.SchemePath()

	dir := filepath.Dir(infoPath)
	report.add(checkName(info, dir))
	report.add(checkReadme(info, dir))
	reportHashErrors(report, info, dir, hash)

	bedPath := filepath.Join(dir, "primer.bed")
	_, lines, err := bedfile.ReadFile(bedPath)
	if err != nil {
		report.add(err)
		return report
	}

	checkPrimerNames(report, info, bedPath, lines)
	checkCompleteness(report, bedPath, lines)
	report.add(checkChromCorrespondence(info, dir, lines))

	return report
}

// checkName verifies the record's identity triple equals the three enclosing
// directory names, in nesting order scheme/size/version.
func checkName(info *scheme.Info, dir string) error {
	versionDir := filepath.Base(dir)
	sizeDir := filepath.Base(filepath.Dir(dir))
	nameDir := filepath.Base(filepath.Dir(filepath.Dir(dir)))

	var mismatches []string
	if info.SchemeVersion != versionDir {
		mismatches = append(mismatches,
			fmt.Sprintf("version: info (%s) != path (%s)", info.SchemeVersion, versionDir))
	}
	if strconv.Itoa(info.AmpliconSize) != sizeDir {
		mismatches = append(mismatches,
			fmt.Sprintf("ampliconsize: info (%d) != path (%s)", info.AmpliconSize, sizeDir))
	}
	if info.SchemeName != nameDir {
		mismatches = append(mismatches,
			fmt.Sprintf("schemename: info (%s) != path (%s)", info.SchemeName, nameDir))
	}
	if len(mismatches) == 0 {
		return nil
	}
	return errors.Newf("identity mismatch for %s: %s", info.SchemePath(), strings.Join(mismatches, "; ")).
		Component("validate").
		Category(errors.CategoryIntegrity).
		SchemeContext(info.SchemeName, info.AmpliconSize, info.SchemeVersion).
		Build()
}

// checkReadme verifies the scheme's human summary document literally
// contains the identity strings. A drift sentinel, not a parser.
func checkReadme(info *scheme.Info, dir string) error {
	readmePath := filepath.Join(dir, "README.md")
	data, err := os.ReadFile(readmePath)
	if err != nil {
		return errors.Newf("%s does not exist", readmePath).
			Component("validate").
			Category(errors.CategoryIntegrity).
			FileContext(readmePath).
			Build()
	}

	readme := string(data)
	var missing []string
	if !strings.Contains(readme, info.SchemeName) {
		missing = append(missing, "scheme name "+info.SchemeName)
	}
	if !strings.Contains(readme, strconv.Itoa(info.AmpliconSize)) {
		missing = append(missing, "amplicon size "+strconv.Itoa(info.AmpliconSize))
	}
	if !strings.Contains(readme, info.SchemeVersion) {
		missing = append(missing, "scheme version "+info.SchemeVersion)
	}
	if len(missing) == 0 {
		return nil
	}
	return errors.Newf("README.md for %s is missing: %s", info.SchemePath(), strings.Join(missing, ", ")).
		Component("validate").
		Category(errors.CategoryIntegrity).
		FileContext(readmePath).
		Build()
}

// reportHashErrors recomputes the content hash of the BED and FASTA files
// and compares them against the values embedded in the record, reporting
// each mismatch with both the expected and the actual hash.
func reportHashErrors(report *Report, info *scheme.Info, dir string, hash scheme.Hasher) {
	checks := []struct {
		file     string
		expected string
	}{
		{"primer.bed", info.PrimerBedMD5},
		{"reference.fasta", info.ReferenceFastaMD5},
	}

	for _, check := range checks {
		path := filepath.Join(dir, check.file)
		actual, err := hash(path)
		if err != nil {
			report.add(err)
			continue
		}
		if actual != check.expected {
			report.add(errors.Newf("MD5 mismatch for %s:%s: info (%s) != file (%s)",
				info.SchemePath(), check.file, check.expected, actual).
				Component("validate").
				Category(errors.CategoryIntegrity).
				Context("expected", check.expected).
				Context("actual", actual).
				FileContext(path).
				Build())
		}
	}
}

// checkPrimerNames requires every primer name in the published BED file to
// be current generation; any v1 remnant is reported by name.
func checkPrimerNames(report *Report, info *scheme.Info, bedPath string, lines []*bedfile.BedLine) {
	for _, line := range lines {
		if line.Name.Version != bedfile.NameV2 {
			report.add(errors.Newf("bedfile %s contains old primer names (%s)", bedPath, line.PrimerName).
				Component("validate").
				Category(errors.CategoryNaming).
				Context("primername", line.PrimerName).
				SchemeContext(info.SchemeName, info.AmpliconSize, info.SchemeVersion).
				Build())
		}
	}
}

// checkCompleteness requires every (chrom, amplicon) grouping to have at
// least one forward and one reverse primer.
func checkCompleteness(report *Report, bedPath string, lines []*bedfile.BedLine) {
	type group struct {
		prefix  string
		forward int
		reverse int
	}
	type key struct {
		chrom    string
		amplicon int
	}

	groups := make(map[key]*group)
	var order []key
	for _, line := range lines {
		if line.Name.Version == bedfile.NameInvalid {
			// already reported as a naming error
			continue
		}
		k := key{line.Chrom, line.Name.AmpliconNumber}
		g, ok := groups[k]
		if !ok {
			g = &group{prefix: line.Name.Prefix}
			groups[k] = g
			order = append(order, k)
		}
		switch line.Name.Direction {
		case bedfile.DirectionLeft:
			g.forward++
		case bedfile.DirectionRight:
			g.reverse++
		}
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].chrom != order[j].chrom {
			return order[i].chrom < order[j].chrom
		}
		return order[i].amplicon < order[j].amplicon
	})

	for _, k := range order {
		g := groups[k]
		if g.forward == 0 {
			report.add(errors.Newf("missing forward primer for %s_%d in %s", g.prefix, k.amplicon, bedPath).
				Component("validate").
				Category(errors.CategoryIntegrity).
				Context("amplicon", k.amplicon).
				Build())
		}
		if g.reverse == 0 {
			report.add(errors.Newf("missing reverse primer for %s_%d in %s", g.prefix, k.amplicon, bedPath).
				Component("validate").
				Category(errors.CategoryIntegrity).
				Context("amplicon", k.amplicon).
				Build())
		}
	}
}

// checkChromCorrespondence requires the set of chromosome names in the BED
// file to exactly equal the set of sequence identifiers in the FASTA.
func checkChromCorrespondence(info *scheme.Info, dir string, lines []*bedfile.BedLine) error {
	refPath := filepath.Join(dir, "reference.fasta")
	idx, err := fasta.IndexFile(refPath)
	if err != nil {
		return err
	}

	bedChroms := make(map[string]bool)
	for _, line := range lines {
		bedChroms[line.Chrom] = true
	}
	refChroms := make(map[string]bool)
	for _, id := range idx.IDs() {
		refChroms[id] = true
	}

	var onlyBed, onlyRef []string
	for chrom := range bedChroms {
		if !refChroms[chrom] {
			onlyBed = append(onlyBed, chrom)
		}
	}
	for chrom := range refChroms {
		if !bedChroms[chrom] {
			onlyRef = append(onlyRef, chrom)
		}
	}
	sort.Strings(onlyBed)
	sort.Strings(onlyRef)

	if len(onlyBed) > 0 {
		return errors.Newf("%s: chroms in primer.bed that are not in reference.fasta: %v",
			info.SchemePath(), onlyBed).
			Component("validate").
			Category(errors.CategoryIntegrity).
			Context("chroms", onlyBed).
			Build()
	}
	if len(onlyRef) > 0 {
		return errors.Newf("%s: chroms in reference.fasta that are not in primer.bed: %v",
			info.SchemePath(), onlyRef).
			Component("validate").
			Category(errors.CategoryIntegrity).
			Context("chroms", onlyRef).
			Build()
	}
	return nil
}

// Tree validates every scheme under dir (any directory containing an
// info.json three levels down a primer class tree, located by walking for
// info.json files). Reports come back sorted by scheme path for
// deterministic output.
func Tree(dir string, hash scheme.Hasher) ([]*Report, error) {
	var infoPaths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == "info.json" {
			infoPaths = append(infoPaths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.New(err).
			Component("validate").
			Category(errors.CategoryFileIO).
			FileContext(dir).
			Build()
	}
	sort.Strings(infoPaths)

	reports := make([]*Report, 0, len(infoPaths))
	for _, infoPath := range infoPaths {
		reports = append(reports, Scheme(infoPath, hash))
	}
	return reports, nil
}
