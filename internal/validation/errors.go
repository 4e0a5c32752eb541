package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zdziszkee/swift-registry/internal/models"
)

// ErrValidation is the parent of every input error: missing or invalid fields
// and a headquarter flag that disagrees with the code suffix.
var ErrValidation = errors.New("validation failed")

var (
	ErrInvalidField       = fmt.Errorf("%w: invalid field", ErrValidation)
	ErrFlagSuffixMismatch = fmt.Errorf("%w: headquarter flag does not match swift code suffix", ErrValidation)
	ErrCountryConflict    = errors.New("country already registered under a different name")
	ErrDuplicateRecord    = errors.New("swift code already exists")
)

// FieldError names the field that failed the required-field checks.
type FieldError struct {
	Field  string
	Reason string
	cause  error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() []error {
	if e.cause != nil {
		return []error{ErrInvalidField, e.cause}
	}
	return []error{ErrInvalidField}
}

// FlagMismatchError is a headquarter flag that disagrees with the code suffix.
// IsHeadquarter is the flag as submitted.
type FlagMismatchError struct {
	IsHeadquarter bool
}

// Detail says which side of the pair is wrong.
func (e *FlagMismatchError) Detail() string {
	if e.IsHeadquarter {
		return fmt.Sprintf("headquarters swift code must end with %q", models.HeadquarterSuffix)
	}
	return fmt.Sprintf("branch swift code must not end with %q", models.HeadquarterSuffix)
}

func (e *FlagMismatchError) Error() string {
	return ErrFlagSuffixMismatch.Error() + ": " + e.Detail()
}

func (e *FlagMismatchError) Unwrap() error {
	return ErrFlagSuffixMismatch
}

// MissingFieldsError lists every required field absent from a candidate.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing fields: %s", strings.Join(e.Fields, ", "))
}

func (e *MissingFieldsError) Unwrap() error {
	return ErrInvalidField
}
