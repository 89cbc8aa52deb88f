package scheme

import "regexp"

// Identity grammars. Scheme names are lowercase alphanumeric/hyphen with no
// leading or trailing hyphen; versions are strict v(int).(int).(int).
var (
	SchemeNamePattern    = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$`)
	SchemeVersionPattern = regexp.MustCompile(`^v\d+\.\d+\.\d+$`)
)

// ValidateSchemeName reports whether name is a legal scheme name
func ValidateSchemeName(name string) bool {
	return SchemeNamePattern.MatchString(name)
}

// ValidateSchemeVersion reports whether version is a legal scheme version
func ValidateSchemeVersion(version string) bool {
	return SchemeVersionPattern.MatchString(version)
}
