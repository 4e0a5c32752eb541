// Package swiftcode splits and joins 11-character SWIFT/BIC codes.
package swiftcode

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/zdziszkee/swift-registry/internal/models"
)

const (
	CodeLength   = 11
	PrefixLength = 8
	SuffixLength = 3
	ISO2Length   = 2
)

var (
	ErrMalformedCode        = errors.New("malformed swift code")
	ErrMalformedCountryCode = errors.New("malformed country code")
)

var (
	codeRegex   = regexp.MustCompile(`^[A-Z0-9]{11}$`)
	prefixRegex = regexp.MustCompile(`^[A-Z0-9]{8}$`)
	suffixRegex = regexp.MustCompile(`^[A-Z0-9]{3}$`)
	iso2Regex   = regexp.MustCompile(`^[A-Z0-9]{2}$`)
)

// Normalize trims surrounding whitespace and uppercases s.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Decompose splits an 11-character alphanumeric code into its 8-character
// institution prefix and 3-character suffix. Input is expected in normalized
// (uppercase) form.
func Decompose(code string) (prefix, suffix string, err error) {
	if !codeRegex.MatchString(code) {
		return "", "", fmt.Errorf("%w: %q must be %d alphanumeric characters", ErrMalformedCode, code, CodeLength)
	}
	return code[:PrefixLength], code[PrefixLength:], nil
}

// Compose is the inverse of Decompose.
func Compose(prefix, suffix string) string {
	return prefix + suffix
}

// IsHeadquarterSuffix reports whether suffix marks a headquarters.
func IsHeadquarterSuffix(suffix string) bool {
	return suffix == models.HeadquarterSuffix
}

// ValidatePrefix checks an 8-character institution prefix.
func ValidatePrefix(prefix string) error {
	if !prefixRegex.MatchString(prefix) {
		return fmt.Errorf("%w: prefix %q must be %d alphanumeric characters", ErrMalformedCode, prefix, PrefixLength)
	}
	return nil
}

// ValidateSuffix checks a 3-character branch suffix.
func ValidateSuffix(suffix string) error {
	if !suffixRegex.MatchString(suffix) {
		return fmt.Errorf("%w: suffix %q must be %d alphanumeric characters", ErrMalformedCode, suffix, SuffixLength)
	}
	return nil
}

// ValidateCountryISO2 checks a 2-character country code.
func ValidateCountryISO2(iso2 string) error {
	if !iso2Regex.MatchString(iso2) {
		return fmt.Errorf("%w: %q must be %d alphanumeric characters", ErrMalformedCountryCode, iso2, ISO2Length)
	}
	return nil
}
