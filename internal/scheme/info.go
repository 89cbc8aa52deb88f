// Package scheme models one version of one primer scheme: the info.json
// record, its validation rules, and the builder-style transitions that
// produce a new validated record before anything is written.
package scheme

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/ChrisgKent/primal-page/internal/errors"
)

// SchemeStatus is the operator-driven lifecycle state of a scheme version.
// There are no automatic transitions.
type SchemeStatus string

const (
	StatusWithdrawn     SchemeStatus = "withdrawn"
	StatusDeprecated    SchemeStatus = "deprecated"
	StatusAutogenerated SchemeStatus = "autogenerated"
	StatusDraft         SchemeStatus = "draft"
	StatusTested        SchemeStatus = "tested"
	StatusValidated     SchemeStatus = "validated"
)

// PrimerClass is the top-level grouping of schemes in the repository
type PrimerClass string

const (
	ClassPrimerSchemes PrimerClass = "primerschemes"
	ClassPrimerPanels  PrimerClass = "primerpanels"
)

// PrimerClasses lists every primer class in tree order
var PrimerClasses = []PrimerClass{ClassPrimerSchemes, ClassPrimerPanels}

// Links holds the external link lists of a scheme
type Links struct {
	Protocols      []string `json:"protocols"`
	ValidationData []string `json:"validation"`
	HomePage       []string `json:"homepage"`
	Vendors        []string `json:"vendors"`
	Misc           []string `json:"misc"`
}

// SpeciesList holds the species a scheme targets. Published records carry
// either names or integer taxonomy identifiers in this field; both are
// accepted and normalize to strings.
type SpeciesList []string

// UnmarshalJSON accepts string and number entries
func (s *SpeciesList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*s = nil
		return nil
	}

	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		var str string
		if err := json.Unmarshal(entry, &str); err == nil {
			out = append(out, str)
			continue
		}
		var num json.Number
		if err := json.Unmarshal(entry, &num); err != nil {
			return fmt.Errorf("species entry %s is neither a string nor a number", entry)
		}
		out = append(out, num.String())
	}
	*s = out
	return nil
}

// InfoSchemaVersion is written into every record this tool produces
const InfoSchemaVersion = "v1.1.0"

// DefaultLicense is applied to new schemes unless overridden
const DefaultLicense = "CC BY-SA 4.0"

// Info is the metadata record of one scheme version. It is treated as an
// immutable value: every edit goes through a transition method returning a
// new validated record, and the content hashes are recomputed and embedded,
// never hand-edited.
type Info struct {
	AmpliconSize      int          `json:"ampliconsize" validate:"gt=0"`
	SchemeVersion     string       `json:"schemeversion" validate:"schemeversion"`
	SchemeName        string       `json:"schemename" validate:"schemename"`
	PrimerBedMD5      string       `json:"primer_bed_md5"`
	ReferenceFastaMD5 string       `json:"reference_fasta_md5"`
	Status            SchemeStatus `json:"status" validate:"oneof=withdrawn deprecated autogenerated draft tested validated"`
	Citations         []string     `json:"citations"`
	Authors           []string     `json:"authors" validate:"min=1"`
	AlgorithmVersion  string       `json:"algorithmversion"`
	Species           SpeciesList  `json:"species" validate:"min=1"`
	License           string       `json:"license"`
	PrimerClass       PrimerClass  `json:"primerclass" validate:"oneof=primerschemes primerpanels"`
	InfoSchema        string       `json:"infoschema"`
	ArticBedVersion   string       `json:"articbedversion"`
	Description       string       `json:"description,omitempty"`
	DerivedFrom       string       `json:"derivedfrom,omitempty"`
	ContactInfo       string       `json:"contactinfo,omitempty"`
	Links             Links        `json:"links"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Scheme names are lowercase alphanumeric/hyphen and cannot start or
	// end with a hyphen.
	must(v.RegisterValidation("schemename", func(fl validator.FieldLevel) bool {
		return SchemeNamePattern.MatchString(fl.Field().String())
	}))
	// Versions are semantic: v(int).(int).(int)
	must(v.RegisterValidation("schemeversion", func(fl validator.FieldLevel) bool {
		return SchemeVersionPattern.MatchString(fl.Field().String())
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Validate checks every field rule of the record
func (i *Info) Validate() error {
	if err := validate.Struct(i); err != nil {
		return errors.Newf("invalid scheme record: %w", err).
			Component("scheme").
			Category(errors.CategoryValidation).
			SchemeContext(i.SchemeName, i.AmpliconSize, i.SchemeVersion).
			Build()
	}
	return nil
}

// SchemePath returns the identity triple as the repository-relative path
// "<schemename>/<ampliconsize>/<schemeversion>"
func (i *Info) SchemePath() string {
	return filepath.ToSlash(filepath.Join(i.SchemeName, strconv.Itoa(i.AmpliconSize), i.SchemeVersion))
}

// ReadInfo loads and validates the info.json at path
func ReadInfo(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(err).
			Component("scheme").
			Category(errors.CategoryFileIO).
			FileContext(path).
			Build()
	}

	info := &Info{}
	if err := json.Unmarshal(data, info); err != nil {
		return nil, errors.Newf("parsing %s: %w", path, err).
			Component("scheme").
			Category(errors.CategoryValidation).
			FileContext(path).
			Build()
	}
	if err := info.Validate(); err != nil {
		return nil, err
	}
	return info, nil
}

// WriteInfo validates the record and writes the whole info.json atomically.
// The record is always re-serialized in full, 4-space indented like the
// repository's published files.
func WriteInfo(info *Info, path string) error {
	if err := info.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(info, "", "    ")
	if err != nil {
		return errors.New(err).
			Component("scheme").
			Category(errors.CategoryValidation).
			Build()
	}
	return writeFileAtomic(path, append(data, '\n'))
}

// Transitions. Each returns a new validated record; the receiver is never
// modified, so a failed transition leaves the caller's record intact.

func (i Info) clone() Info {
	i.Citations = slices.Clone(i.Citations)
	i.Authors = slices.Clone(i.Authors)
	i.Species = slices.Clone(i.Species)
	i.Links.Protocols = slices.Clone(i.Links.Protocols)
	i.Links.ValidationData = slices.Clone(i.Links.ValidationData)
	i.Links.HomePage = slices.Clone(i.Links.HomePage)
	i.Links.Vendors = slices.Clone(i.Links.Vendors)
	i.Links.Misc = slices.Clone(i.Links.Misc)
	return i
}

func (i Info) validated(next Info) (*Info, error) {
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return &next, nil
}

// WithStatus returns a record with the lifecycle status replaced
func (i Info) WithStatus(status SchemeStatus) (*Info, error) {
	next := i.clone()
	next.Status = status
	return i.validated(next)
}

// WithLicense returns a record with the license replaced
func (i Info) WithLicense(license string) (*Info, error) {
	next := i.clone()
	next.License = license
	return i.validated(next)
}

// WithDescription returns a record with the description replaced; an empty
// string removes it
func (i Info) WithDescription(description string) (*Info, error) {
	next := i.clone()
	next.Description = description
	return i.validated(next)
}

// WithDerivedFrom returns a record with the derivedfrom field replaced
func (i Info) WithDerivedFrom(derivedFrom string) (*Info, error) {
	next := i.clone()
	next.DerivedFrom = derivedFrom
	return i.validated(next)
}

// WithContactInfo returns a record with the contact info replaced
func (i Info) WithContactInfo(contactInfo string) (*Info, error) {
	next := i.clone()
	next.ContactInfo = contactInfo
	return i.validated(next)
}

// WithPrimerClass returns a record with the primer class replaced
func (i Info) WithPrimerClass(class PrimerClass) (*Info, error) {
	next := i.clone()
	next.PrimerClass = class
	return i.validated(next)
}

// WithHashes returns a record with both content hashes replaced. This is the
// only way hashes enter a record.
func (i Info) WithHashes(primerBedMD5, referenceFastaMD5 string) (*Info, error) {
	next := i.clone()
	next.PrimerBedMD5 = primerBedMD5
	next.ReferenceFastaMD5 = referenceFastaMD5
	return i.validated(next)
}

// WithBedVersion returns a record with the detected bed file generation label
func (i Info) WithBedVersion(label string) (*Info, error) {
	next := i.clone()
	next.ArticBedVersion = label
	return i.validated(next)
}

// AddAuthor inserts author at index (0-based); a negative index appends
func (i Info) AddAuthor(author string, index int) (*Info, error) {
	next := i.clone()
	if slices.Contains(next.Authors, author) {
		return nil, errors.Newf("author %q already present", author).
			Component("scheme").
			Category(errors.CategoryValidation).
			Build()
	}
	if index < 0 || index >= len(next.Authors) {
		next.Authors = append(next.Authors, author)
	} else {
		next.Authors = slices.Insert(next.Authors, index, author)
	}
	return i.validated(next)
}

// RemoveAuthor removes author from the ordered author list
func (i Info) RemoveAuthor(author string) (*Info, error) {
	next := i.clone()
	idx := slices.Index(next.Authors, author)
	if idx < 0 {
		return nil, errors.Newf("author %q is not present", author).
			Component("scheme").
			Category(errors.CategoryValidation).
			Build()
	}
	next.Authors = slices.Delete(next.Authors, idx, idx+1)
	return i.validated(next)
}

// ReorderAuthors reorders the author list by the given 0-based indexes.
// Indexes not listed keep their relative order and are appended to the end.
func (i Info) ReorderAuthors(order []int) (*Info, error) {
	next := i.clone()

	seen := make(map[int]bool, len(order))
	reordered := make([]string, 0, len(next.Authors))
	for _, idx := range order {
		if idx < 0 || idx >= len(next.Authors) {
			return nil, errors.Newf("author index %d out of range", idx).
				Component("scheme").
				Category(errors.CategoryValidation).
				Build()
		}
		if seen[idx] {
			return nil, errors.Newf("author index %d given twice", idx).
				Component("scheme").
				Category(errors.CategoryValidation).
				Build()
		}
		seen[idx] = true
		reordered = append(reordered, next.Authors[idx])
	}
	for idx, author := range next.Authors {
		if !seen[idx] {
			reordered = append(reordered, author)
		}
	}
	next.Authors = reordered
	return i.validated(next)
}

// AddCitation adds a citation; the citation set stays sorted
func (i Info) AddCitation(citation string) (*Info, error) {
	next := i.clone()
	if slices.Contains(next.Citations, citation) {
		return nil, errors.Newf("citation %q already present", citation).
			Component("scheme").
			Category(errors.CategoryValidation).
			Build()
	}
	next.Citations = append(next.Citations, citation)
	sort.Strings(next.Citations)
	return i.validated(next)
}

// RemoveCitation removes a citation
func (i Info) RemoveCitation(citation string) (*Info, error) {
	next := i.clone()
	idx := slices.Index(next.Citations, citation)
	if idx < 0 {
		return nil, errors.Newf("citation %q is not present", citation).
			Component("scheme").
			Category(errors.CategoryValidation).
			Build()
	}
	next.Citations = slices.Delete(next.Citations, idx, idx+1)
	return i.validated(next)
}

// linkList resolves a link field name to its list
func linkList(links *Links, field string) (*[]string, error) {
	switch field {
	case "protocols":
		return &links.Protocols, nil
	case "validation":
		return &links.ValidationData, nil
	case "homepage":
		return &links.HomePage, nil
	case "vendors":
		return &links.Vendors, nil
	case "misc":
		return &links.Misc, nil
	default:
		return nil, errors.Newf("%q is not a valid link field (protocols, validation, homepage, vendors, misc)", field).
			Component("scheme").
			Category(errors.CategoryValidation).
			Build()
	}
}

// AddLink appends link to the named link field
func (i Info) AddLink(field, link string) (*Info, error) {
	next := i.clone()
	list, err := linkList(&next.Links, field)
	if err != nil {
		return nil, err
	}
	*list = append(*list, link)
	return i.validated(next)
}

// RemoveLink removes link from the named link field
func (i Info) RemoveLink(field, link string) (*Info, error) {
	next := i.clone()
	list, err := linkList(&next.Links, field)
	if err != nil {
		return nil, err
	}
	idx := slices.Index(*list, link)
	if idx < 0 {
		return nil, errors.Newf("%q is not in links[%s]", link, field).
			Component("scheme").
			Category(errors.CategoryValidation).
			Build()
	}
	*list = slices.Delete(*list, idx, idx+1)
	return i.validated(next)
}
