package bedfile

import "fmt"

// BedFileVersion identifies the schema generation of a whole BED file.
//
// V1 files use 6 columns, V2 files use 7 columns with v1 primer names,
// V3 files use 7 columns with v2 primer names.
type BedFileVersion int

const (
	FileInvalid BedFileVersion = iota
	FileV1
	FileV2
	FileV3
)

// String returns the canonical label for the file version
func (v BedFileVersion) String() string {
	switch v {
	case FileV1:
		return "v1.0"
	case FileV2:
		return "v2.0"
	case FileV3:
		return "v3.0"
	case FileInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("BedFileVersion(%d)", int(v))
	}
}

// DetermineBedFileVersion inspects a full set of parsed lines and returns the
// file's schema generation. A file must be uniform: mixed column counts,
// mixed name generations, or any invalid name make the whole file invalid.
// Partially migrated files are deliberately rejected. An empty file is
// invalid.
func DetermineBedFileVersion(lines []*BedLine) BedFileVersion {
	if len(lines) == 0 {
		return FileInvalid
	}

	sixCol, sevenCol := 0, 0
	nameVersions := make(map[PrimerNameVersion]struct{})
	for _, line := range lines {
		if line.NumColumns() == 6 {
			sixCol++
		} else {
			sevenCol++
		}
		nameVersions[line.Name.Version] = struct{}{}
	}

	if sixCol > 0 && sevenCol > 0 {
		return FileInvalid
	}

	// 6-column files are v1 regardless of name content
	if sixCol > 0 {
		return FileV1
	}

	if len(nameVersions) != 1 {
		return FileInvalid
	}
	if _, ok := nameVersions[NameV1]; ok {
		return FileV2
	}
	if _, ok := nameVersions[NameV2]; ok {
		return FileV3
	}
	return FileInvalid
}

// DetermineBedFileVersionFromFile loads the BED file at path and detects its
// version. Structurally broken files are invalid.
func DetermineBedFileVersionFromFile(path string) BedFileVersion {
	_, lines, err := ReadFile(path)
	if err != nil {
		return FileInvalid
	}
	return DetermineBedFileVersion(lines)
}
