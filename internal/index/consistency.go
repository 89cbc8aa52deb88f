package index

import (
	"os"

	"github.com/ChrisgKent/primal-page/internal/errors"
	"github.com/ChrisgKent/primal-page/internal/scheme"
)

// CheckConsistency proves the new index consistent with the previously
// published one: every identity quadruple present in both must carry
// byte-identical primer.bed and reference.fasta hashes. Quadruples added
// since the last build are exempt; the build marker is not compared.
// Every violation is returned, not just the first.
func CheckConsistency(existing, next *Index) []error {
	var violations []error

	for _, id := range existing.Identities() {
		oldSummary := existing.Lookup(id)
		newSummary := next.Lookup(id)
		if newSummary == nil {
			// not present in the new build; removal is not this check's
			// concern
			continue
		}

		if oldSummary.ReferenceFastaMD5 != newSummary.ReferenceFastaMD5 {
			violations = append(violations, errors.Newf(
				"hash changed for %s/reference.fasta. Expected %s but got %s",
				id, oldSummary.ReferenceFastaMD5, newSummary.ReferenceFastaMD5).
				Component("index").
				Category(errors.CategoryImmutability).
				Context("identity", id.String()).
				Context("expected", oldSummary.ReferenceFastaMD5).
				Context("actual", newSummary.ReferenceFastaMD5).
				Build())
		}
		if oldSummary.PrimerBedMD5 != newSummary.PrimerBedMD5 {
			violations = append(violations, errors.Newf(
				"hash changed for %s/primer.bed. Expected %s but got %s",
				id, oldSummary.PrimerBedMD5, newSummary.PrimerBedMD5).
				Component("index").
				Category(errors.CategoryImmutability).
				Context("identity", id.String()).
				Context("expected", oldSummary.PrimerBedMD5).
				Context("actual", newSummary.PrimerBedMD5).
				Build())
		}
	}

	return violations
}

// BuildOptions configures one index build
type BuildOptions struct {
	ParentDir  string
	GithubRepo string
	Commit     string
	// Force skips the consistency check for deliberate republication. It is
	// never a default and every forced build is recorded in the audit log.
	Force bool
	Hash  scheme.Hasher
	Audit *AuditLog
}

// BuildResult reports one index build
type BuildResult struct {
	Index   *Index
	Schemes int
	Errors  []error
}

// OK reports whether the build may be published
func (r *BuildResult) OK() bool {
	return len(r.Errors) == 0
}

// Build walks the tree, checks consistency against the index file at
// indexPath (if one exists) and, when clean or forced, writes the new index
// over it. A forced build bypasses the consistency check but still records
// the fact in the audit log.
func Build(opts BuildOptions, indexPath string) *BuildResult {
	builder := &Builder{
		ParentDir:  opts.ParentDir,
		GithubRepo: opts.GithubRepo,
		Hash:       opts.Hash,
	}
	next, errs := builder.Build()
	next.Commit = opts.Commit

	result := &BuildResult{
		Index:   next,
		Schemes: len(next.Identities()),
		Errors:  errs,
	}

	if !opts.Force {
		existing, err := Load(indexPath)
		switch {
		case err != nil && errors.Is(err, os.ErrNotExist):
			// first build, nothing to compare against
		case err != nil:
			result.Errors = append(result.Errors, err)
		default:
			result.Errors = append(result.Errors, CheckConsistency(existing, next)...)
		}
	}

	if result.OK() {
		if err := Write(next, indexPath); err != nil {
			result.Errors = append(result.Errors, err)
		}
	}

	if opts.Audit != nil {
		outcome := "published"
		if !result.OK() {
			outcome = "rejected"
		}
		if err := opts.Audit.Record(BuildRecord{
			Commit:  opts.Commit,
			Forced:  opts.Force,
			Outcome: outcome,
			Schemes: result.Schemes,
		}); err != nil {
			result.Errors = append(result.Errors, err)
		}
	}

	return result
}
