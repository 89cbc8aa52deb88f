// Package index builds the repository-wide flat index and proves each
// rebuild consistent with the previously published one: published, versioned
// artifacts are immutable, so a changed hash for an identity present in both
// indexes is a hard failure unless the operator forces republication.
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ChrisgKent/primal-page/internal/errors"
	"github.com/ChrisgKent/primal-page/internal/scheme"
)

// commitKey is the reserved top-level key holding the build marker. It is
// excluded from the consistency comparison.
const commitKey = "github-commit-sha"

// VersionSummary is the public-facing record of one scheme version
type VersionSummary struct {
	AlgorithmVersion  string   `json:"algorithmversion"`
	Status            string   `json:"status"`
	Authors           []string `json:"authors"`
	Citations         []string `json:"citations"`
	Species           []string `json:"species"`
	License           string   `json:"license"`
	PrimerClass       string   `json:"primerclass"`
	SchemeName        string   `json:"schemename"`
	SchemeVersion     string   `json:"schemeversion"`
	AmpliconSize      int      `json:"ampliconsize"`
	ArticBedVersion   string   `json:"articbedversion"`
	PrimerBedURL      string   `json:"primer_bed_url"`
	PrimerBedMD5      string   `json:"primer_bed_md5"`
	ReferenceFastaURL string   `json:"reference_fasta_url"`
	ReferenceFastaMD5 string   `json:"reference_fasta_md5"`
	InfoJSONURL       string   `json:"info_json_url"`
}

// Index is the nested mapping
// primer class → scheme name → amplicon size → scheme version → summary,
// plus the build marker.
type Index struct {
	Classes map[string]map[string]map[string]map[string]*VersionSummary
	Commit  string
}

// Identity is one (class, scheme, size, version) quadruple
type Identity struct {
	Class   string
	Scheme  string
	Size    string
	Version string
}

func (id Identity) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", id.Class, id.Scheme, id.Size, id.Version)
}

// Identities returns every quadruple in the index, sorted
func (idx *Index) Identities() []Identity {
	var ids []Identity
	for class, schemes := range idx.Classes {
		for schemeName, sizes := range schemes {
			for size, versions := range sizes {
				for version := range versions {
					ids = append(ids, Identity{class, schemeName, size, version})
				}
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

// Lookup returns the summary for id, or nil
func (idx *Index) Lookup(id Identity) *VersionSummary {
	return idx.Classes[id.Class][id.Scheme][id.Size][id.Version]
}

// MarshalJSON flattens the class trees and the reserved commit key into one
// object. Keys serialize sorted, so index output is deterministic.
func (idx *Index) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(idx.Classes)+1)
	for class, tree := range idx.Classes {
		flat[class] = tree
	}
	if idx.Commit != "" {
		flat[commitKey] = idx.Commit
	}
	return json.Marshal(flat)
}

// UnmarshalJSON splits the reserved commit key back out of the object
func (idx *Index) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	idx.Classes = make(map[string]map[string]map[string]map[string]*VersionSummary)
	for key, value := range raw {
		if key == commitKey {
			if err := json.Unmarshal(value, &idx.Commit); err != nil {
				return err
			}
			continue
		}
		var tree map[string]map[string]map[string]*VersionSummary
		if err := json.Unmarshal(value, &tree); err != nil {
			return err
		}
		idx.Classes[key] = tree
	}
	return nil
}

// rawLink builds the public raw download URL for one artifact
func rawLink(repo, class, schemeName, size, version, file string) string {
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/main/%s/%s/%s/%s/%s",
		repo, class, schemeName, size, version, file)
}

// Builder walks a scheme repository tree and produces Index values
type Builder struct {
	ParentDir  string
	GithubRepo string
	Hash       scheme.Hasher
}

// Build walks every primer class tree under ParentDir. All per-scheme errors
// are collected and returned together with the partial index, so one run
// reports every problem.
func (b *Builder) Build() (*Index, []error) {
	hash := b.Hash
	if hash == nil {
		hash = scheme.MD5File
	}

	idx := &Index{Classes: make(map[string]map[string]map[string]map[string]*VersionSummary)}
	var errs []error

	for _, class := range scheme.PrimerClasses {
		classDir := filepath.Join(b.ParentDir, string(class))
		entries, err := os.ReadDir(classDir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			errs = append(errs, errors.New(err).
				Component("index").
				Category(errors.CategoryFileIO).
				FileContext(classDir).
				Build())
			continue
		}

		classTree := make(map[string]map[string]map[string]*VersionSummary)
		for _, entry := range entries {
			if !entry.IsDir() || entry.Name()[0] == '.' {
				continue
			}
			schemeName := entry.Name()
			schemeTree, schemeErrs := b.parseScheme(string(class), schemeName, hash)
			errs = append(errs, schemeErrs...)
			if len(schemeTree) > 0 {
				classTree[schemeName] = schemeTree
			}
		}
		idx.Classes[string(class)] = classTree
	}

	return idx, errs
}

func (b *Builder) parseScheme(class, schemeName string, hash scheme.Hasher) (map[string]map[string]*VersionSummary, []error) {
	schemeDir := filepath.Join(b.ParentDir, class, schemeName)
	entries, err := os.ReadDir(schemeDir)
	if err != nil {
		return nil, []error{errors.New(err).
			Component("index").
			Category(errors.CategoryFileIO).
			FileContext(schemeDir).
			Build()}
	}

	tree := make(map[string]map[string]*VersionSummary)
	var errs []error
	for _, sizeEntry := range entries {
		if !sizeEntry.IsDir() {
			continue
		}
		size := sizeEntry.Name()
		versionEntries, err := os.ReadDir(filepath.Join(schemeDir, size))
		if err != nil {
			errs = append(errs, errors.New(err).
				Component("index").
				Category(errors.CategoryFileIO).
				Build())
			continue
		}

		sizeTree := make(map[string]*VersionSummary)
		for _, versionEntry := range versionEntries {
			if !versionEntry.IsDir() {
				continue
			}
			version := versionEntry.Name()
			summary, err := b.parseVersion(class, schemeName, size, version, hash)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			sizeTree[version] = summary
		}
		if len(sizeTree) > 0 {
			tree[size] = sizeTree
		}
	}
	return tree, errs
}

// parseVersion reads one version directory into a summary, recomputing both
// content hashes and checking them against the embedded record.
func (b *Builder) parseVersion(class, schemeName, size, version string, hash scheme.Hasher) (*VersionSummary, error) {
	versionDir := filepath.Join(b.ParentDir, class, schemeName, size, version)

	info, err := scheme.ReadInfo(filepath.Join(versionDir, "info.json"))
	if err != nil {
		return nil, err
	}

	bedMD5, err := hash(filepath.Join(versionDir, "primer.bed"))
	if err != nil {
		return nil, err
	}
	refMD5, err := hash(filepath.Join(versionDir, "reference.fasta"))
	if err != nil {
		return nil, err
	}

	if bedMD5 != info.PrimerBedMD5 {
		return nil, errors.Newf("MD5 mismatch for %s:primer.bed: info (%s) != file (%s)",
			info.SchemePath(), info.PrimerBedMD5, bedMD5).
			Component("index").
			Category(errors.CategoryIntegrity).
			Context("expected", info.PrimerBedMD5).
			Context("actual", bedMD5).
			Build()
	}
	if refMD5 != info.ReferenceFastaMD5 {
		return nil, errors.Newf("MD5 mismatch for %s:reference.fasta: info (%s) != file (%s)",
			info.SchemePath(), info.ReferenceFastaMD5, refMD5).
			Component("index").
			Category(errors.CategoryIntegrity).
			Context("expected", info.ReferenceFastaMD5).
			Context("actual", refMD5).
			Build()
	}

	citations := append([]string(nil), info.Citations...)
	sort.Strings(citations)
	species := append([]string(nil), info.Species...)
	sort.Strings(species)

	return &VersionSummary{
		AlgorithmVersion:  info.AlgorithmVersion,
		Status:            string(info.Status),
		Authors:           append([]string(nil), info.Authors...),
		Citations:         citations,
		Species:           species,
		License:           info.License,
		PrimerClass:       string(info.PrimerClass),
		SchemeName:        info.SchemeName,
		SchemeVersion:     info.SchemeVersion,
		AmpliconSize:      info.AmpliconSize,
		ArticBedVersion:   info.ArticBedVersion,
		PrimerBedURL:      rawLink(b.GithubRepo, class, schemeName, size, version, "primer.bed"),
		PrimerBedMD5:      bedMD5,
		ReferenceFastaURL: rawLink(b.GithubRepo, class, schemeName, size, version, "reference.fasta"),
		ReferenceFastaMD5: refMD5,
		InfoJSONURL:       rawLink(b.GithubRepo, class, schemeName, size, version, "info.json"),
	}, nil
}

// Load reads an index file
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(err).
			Component("index").
			Category(errors.CategoryFileIO).
			FileContext(path).
			Build()
	}
	idx := &Index{}
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, errors.Newf("parsing %s: %w", path, err).
			Component("index").
			Category(errors.CategoryValidation).
			FileContext(path).
			Build()
	}
	return idx, nil
}

// Write writes the index atomically as compact JSON with sorted keys
func Write(idx *Index, path string) error {
	data, err := json.Marshal(idx)
	if err != nil {
		return errors.New(err).
			Component("index").
			Category(errors.CategoryValidation).
			Build()
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return errors.New(err).
			Component("index").
			Category(errors.CategoryFileIO).
			FileContext(path).
			Build()
	}
	tmpName := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	if writeErr == nil {
		writeErr = os.Rename(tmpName, path)
	}
	if writeErr != nil {
		os.Remove(tmpName)
		return errors.Newf("writing %s: %w", path, writeErr).
			Component("index").
			Category(errors.CategoryFileIO).
			Build()
	}
	return nil
}
