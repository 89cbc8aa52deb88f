// Package bedfile implements the primer BED file model: the primer name
// grammars, the line parser, file version detection and the v3 remap
// engine. The two name grammars and the line grammar defined here are the
// single source of truth for every other package.
package bedfile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ChrisgKent/primal-page/internal/errors"
)

// Primer name grammars. V2 names end in an explicit 0-based primer index,
// V1 names have an optional case-insensitive alt suffix with an optional
// numeric tag. A V2 name must never be misread as V1, so V2 is matched first.
var (
	V2PrimerName = regexp.MustCompile(`^[a-zA-Z0-9\-]+_[0-9]+_(LEFT|RIGHT)_[0-9]+$`)
	V1PrimerName = regexp.MustCompile(`^[a-zA-Z0-9\-]+_[0-9]+_(LEFT|RIGHT)(_ALT[0-9]*|_alt[0-9]*)?$`)
)

// Direction is the strand direction encoded in a primer name
type Direction string

const (
	DirectionLeft  Direction = "LEFT"
	DirectionRight Direction = "RIGHT"
)

// PrimerNameVersion identifies which naming generation a primer name belongs to
type PrimerNameVersion int

const (
	NameInvalid PrimerNameVersion = iota
	NameV1
	NameV2
)

// String returns the canonical label for the name version
func (v PrimerNameVersion) String() string {
	switch v {
	case NameV1:
		return "v1"
	case NameV2:
		return "v2"
	case NameInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("PrimerNameVersion(%d)", int(v))
	}
}

// PrimerName is a decomposed primer name. Index is only meaningful for V2
// names and is -1 otherwise. AltTag holds the raw alt suffix of a V1 name
// ("alt", "ALT", "alt2", ...) or the empty string.
type PrimerName struct {
	Prefix         string
	AmpliconNumber int
	Direction      Direction
	Index          int
	AltTag         string
	Version        PrimerNameVersion
}

// IsAlt reports whether this is a V1 alt primer
func (pn *PrimerName) IsAlt() bool {
	return pn.AltTag != ""
}

// String reassembles the primer name in its own generation's form
func (pn *PrimerName) String() string {
	base := fmt.Sprintf("%s_%d_%s", pn.Prefix, pn.AmpliconNumber, pn.Direction)
	switch pn.Version {
	case NameV2:
		return fmt.Sprintf("%s_%d", base, pn.Index)
	case NameV1:
		if pn.AltTag != "" {
			return base + "_" + pn.AltTag
		}
		return base
	default:
		return base
	}
}

// DeterminePrimerNameVersion classifies a primer name string. The V2 grammar
// is checked before the V1 grammar; a name matching neither is NameInvalid.
func DeterminePrimerNameVersion(primerName string) PrimerNameVersion {
	switch {
	case V2PrimerName.MatchString(primerName):
		return NameV2
	case V1PrimerName.MatchString(primerName):
		return NameV1
	default:
		return NameInvalid
	}
}

// ParsePrimerName classifies and decomposes a primer name. A NameInvalid
// classification is returned as a naming error.
func ParsePrimerName(primerName string) (*PrimerName, error) {
	version := DeterminePrimerNameVersion(primerName)
	if version == NameInvalid {
		return nil, errors.Newf(
			"invalid primername: %q. Use (name)_(amplicon-number)_(LEFT|RIGHT) with optional _(primer-number)",
			primerName).
			Component("bedfile").
			Category(errors.CategoryNaming).
			Build()
	}

	parts := strings.Split(primerName, "_")
	// Grammar guarantees: prefix has no underscores, so the field positions
	// are fixed.
	ampliconNumber, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, errors.Newf("invalid amplicon number in %q: %w", primerName, err).
			Component("bedfile").
			Category(errors.CategoryNaming).
			Build()
	}

	pn := &PrimerName{
		Prefix:         parts[0],
		AmpliconNumber: ampliconNumber,
		Direction:      Direction(parts[2]),
		Index:          -1,
		Version:        version,
	}

	if version == NameV2 {
		index, err := strconv.Atoi(parts[3])
		if err != nil {
			return nil, errors.Newf("invalid primer index in %q: %w", primerName, err).
				Component("bedfile").
				Category(errors.CategoryNaming).
				Build()
		}
		pn.Index = index
	} else if len(parts) == 4 {
		pn.AltTag = parts[3]
	}

	return pn, nil
}

// ConvertV1NameToV2 converts a plain v1 primer name to v2 by appending the
// index 0. Alt primers cannot be converted this way: assigning them a stable
// index needs the sequence tie-break, so they are refused here.
func ConvertV1NameToV2(primerName string) (string, error) {
	pn, err := ParsePrimerName(primerName)
	if err != nil {
		return "", err
	}
	if pn.Version != NameV1 {
		return "", errors.Newf("%q is not a valid v1 primername", primerName).
			Component("bedfile").
			Category(errors.CategoryNaming).
			Build()
	}
	if pn.IsAlt() {
		return "", errors.Newf("%q is a v1 alt primername, cannot convert", primerName).
			Component("bedfile").
			Category(errors.CategoryNaming).
			Build()
	}
	return primerName + "_0", nil
}
