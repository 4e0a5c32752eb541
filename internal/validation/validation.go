// Package validation decides whether a candidate bank record may enter the
// registry. Field checks are pure; registry checks read through a Lookup so
// they can run inside the caller's transaction.
package validation

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/zdziszkee/swift-registry/internal/models"
	"github.com/zdziszkee/swift-registry/internal/swiftcode"
)

const maxBankNameLength = 255

// NameMatch selects how a submitted country name is compared with the stored one.
type NameMatch string

const (
	NameMatchExact           NameMatch = "exact"
	NameMatchCaseInsensitive NameMatch = "case_insensitive"
)

// ParseNameMatch maps a configuration value onto a NameMatch.
func ParseNameMatch(s string) (NameMatch, error) {
	switch NameMatch(strings.ToLower(strings.TrimSpace(s))) {
	case "", NameMatchExact:
		return NameMatchExact, nil
	case NameMatchCaseInsensitive:
		return NameMatchCaseInsensitive, nil
	default:
		return "", fmt.Errorf("unknown country name match policy %q", s)
	}
}

// Candidate is an unvalidated bank record. Nil pointers mark absent fields.
type Candidate struct {
	SwiftCode     *string `json:"swiftCode"`
	BankName      *string `json:"bankName"`
	Address       *string `json:"address"`
	CountryISO2   *string `json:"countryISO2"`
	CountryName   *string `json:"countryName"`
	IsHeadquarter *bool   `json:"isHeadquarter"`
}

// Admission is a candidate that passed the field checks, in normalized form.
type Admission struct {
	Bank    models.Bank
	Country models.Country
	// CountryExists is set by CheckRegistry when the country is already stored.
	CountryExists bool
}

// Lookup is the read access the registry checks need. Absent records are
// reported as nil with a nil error.
type Lookup interface {
	FindCountry(ctx context.Context, iso2 string) (*models.Country, error)
	FindHeadquarter(ctx context.Context, prefix string) (*models.Bank, error)
	FindBranch(ctx context.Context, prefix, suffix string) (*models.Bank, error)
}

// Engine runs the admission checks in a fixed order, failing on the first.
type Engine struct {
	nameMatch NameMatch
}

func NewEngine(nameMatch NameMatch) *Engine {
	if nameMatch == "" {
		nameMatch = NameMatchExact
	}
	return &Engine{nameMatch: nameMatch}
}

// Validate runs CheckFields followed by CheckRegistry.
func (e *Engine) Validate(ctx context.Context, lookup Lookup, c Candidate) (Admission, error) {
	adm, err := e.CheckFields(c)
	if err != nil {
		return Admission{}, err
	}
	if err := e.CheckRegistry(ctx, lookup, &adm); err != nil {
		return Admission{}, err
	}
	return adm, nil
}

// CheckFields covers required fields, code decomposition and the
// headquarter-flag/suffix agreement.
func (e *Engine) CheckFields(c Candidate) (Admission, error) {
	var missing []string
	if c.BankName == nil {
		missing = append(missing, "bankName")
	}
	if c.CountryISO2 == nil {
		missing = append(missing, "countryISO2")
	}
	if c.CountryName == nil {
		missing = append(missing, "countryName")
	}
	if c.IsHeadquarter == nil {
		missing = append(missing, "isHeadquarter")
	}
	if c.SwiftCode == nil {
		missing = append(missing, "swiftCode")
	}
	if len(missing) > 0 {
		return Admission{}, &MissingFieldsError{Fields: missing}
	}

	bankName := strings.TrimSpace(*c.BankName)
	if bankName == "" || utf8.RuneCountInString(bankName) > maxBankNameLength {
		return Admission{}, &FieldError{Field: "bankName", Reason: fmt.Sprintf("must be 1 to %d characters", maxBankNameLength)}
	}

	iso2 := swiftcode.Normalize(*c.CountryISO2)
	if err := swiftcode.ValidateCountryISO2(iso2); err != nil {
		return Admission{}, &FieldError{Field: "countryISO2", Reason: "must be 2 alphanumeric characters", cause: err}
	}

	countryName := strings.TrimSpace(*c.CountryName)
	if countryName == "" {
		return Admission{}, &FieldError{Field: "countryName", Reason: "must not be empty"}
	}

	code := swiftcode.Normalize(*c.SwiftCode)
	prefix, suffix, err := swiftcode.Decompose(code)
	if err != nil {
		return Admission{}, &FieldError{Field: "swiftCode", Reason: "must be 11 alphanumeric characters", cause: err}
	}

	address := ""
	if c.Address != nil {
		address = strings.TrimSpace(*c.Address)
	}

	isHQSuffix := swiftcode.IsHeadquarterSuffix(suffix)
	if *c.IsHeadquarter != isHQSuffix {
		return Admission{}, &FlagMismatchError{IsHeadquarter: *c.IsHeadquarter}
	}

	var bank models.Bank
	if isHQSuffix {
		bank = models.NewHeadquarters(prefix, address, bankName, iso2)
	} else {
		bank = models.NewBranch(prefix, suffix, address, bankName, iso2)
	}

	return Admission{
		Bank:    bank,
		Country: models.Country{ISO2: iso2, Name: countryName},
	}, nil
}

// CheckRegistry covers country consistency and uniqueness against the
// current registry state.
func (e *Engine) CheckRegistry(ctx context.Context, lookup Lookup, adm *Admission) error {
	existing, err := lookup.FindCountry(ctx, adm.Country.ISO2)
	if err != nil {
		return fmt.Errorf("lookup country %s: %w", adm.Country.ISO2, err)
	}
	adm.CountryExists = existing != nil
	if existing != nil && !e.NamesMatch(existing.Name, adm.Country.Name) {
		return fmt.Errorf("%w: %s is registered as %q", ErrCountryConflict, existing.ISO2, existing.Name)
	}

	var dup *models.Bank
	if adm.Bank.IsHeadquarter() {
		dup, err = lookup.FindHeadquarter(ctx, adm.Bank.Prefix)
	} else {
		dup, err = lookup.FindBranch(ctx, adm.Bank.Prefix, adm.Bank.Suffix)
	}
	if err != nil {
		return fmt.Errorf("lookup %s: %w", adm.Bank.FullCode(), err)
	}
	if dup != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateRecord, adm.Bank.FullCode())
	}
	return nil
}

// NamesMatch compares two country names under the engine's policy.
func (e *Engine) NamesMatch(stored, submitted string) bool {
	if e.nameMatch == NameMatchCaseInsensitive {
		return strings.EqualFold(stored, submitted)
	}
	return stored == submitted
}
