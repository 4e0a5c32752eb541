// Package query serves read-only lookups over the registry.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/zdziszkee/swift-registry/internal/models"
	"github.com/zdziszkee/swift-registry/internal/registry"
	"github.com/zdziszkee/swift-registry/internal/swiftcode"
)

var (
	ErrNotFound = registry.ErrNotFound
	// ErrNoRecords is returned for a registered country with no banks.
	ErrNoRecords = errors.New("no swift codes registered for country")
	// ErrConsistencyViolation means stored data broke an invariant that
	// inserts are supposed to guarantee.
	ErrConsistencyViolation = errors.New("registry consistency violation")
)

// Reader is the subset of BankRegistry the engine reads through.
type Reader interface {
	FindHeadquarterByPrefix(ctx context.Context, prefix string) (*models.Bank, error)
	FindBranchByPrefixAndSuffix(ctx context.Context, prefix, suffix string) (*models.Bank, error)
	FindBranchesByPrefix(ctx context.Context, prefix string) ([]models.Bank, error)
	FindAllByCountry(ctx context.Context, iso2 string) ([]models.Bank, error)
	FindCountry(ctx context.Context, iso2 string) (*models.Country, error)
}

type Engine struct {
	reader Reader
	logger *slog.Logger
}

func NewEngine(reader Reader, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{reader: reader, logger: logger}
}

// LookupByCode resolves a full code. Headquarters come back with every
// branch sharing their prefix; branches never carry children.
func (e *Engine) LookupByCode(ctx context.Context, code string) (*models.BankDetail, error) {
	code = swiftcode.Normalize(code)
	prefix, suffix, err := swiftcode.Decompose(code)
	if err != nil {
		return nil, err
	}

	var bank *models.Bank
	if swiftcode.IsHeadquarterSuffix(suffix) {
		bank, err = e.reader.FindHeadquarterByPrefix(ctx, prefix)
	} else {
		bank, err = e.reader.FindBranchByPrefixAndSuffix(ctx, prefix, suffix)
	}
	if err != nil {
		return nil, err
	}
	if bank == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, code)
	}

	country, err := e.countryOf(ctx, *bank)
	if err != nil {
		return nil, err
	}

	detail := &models.BankDetail{Bank: *bank, CountryName: country.Name}
	if bank.IsHeadquarter() {
		branches, err := e.reader.FindBranchesByPrefix(ctx, prefix)
		if err != nil {
			return nil, err
		}
		detail.Branches = branches
	}
	return detail, nil
}

// LookupByCountry lists every bank registered under iso2. An existing
// country without banks is reported as ErrNoRecords.
func (e *Engine) LookupByCountry(ctx context.Context, iso2 string) (*models.CountryBanks, error) {
	iso2 = swiftcode.Normalize(iso2)
	if err := swiftcode.ValidateCountryISO2(iso2); err != nil {
		return nil, err
	}

	country, err := e.reader.FindCountry(ctx, iso2)
	if err != nil {
		return nil, err
	}
	if country == nil {
		return nil, fmt.Errorf("%w: country %s", ErrNotFound, iso2)
	}

	banks, err := e.reader.FindAllByCountry(ctx, iso2)
	if err != nil {
		return nil, err
	}
	if len(banks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRecords, iso2)
	}
	return &models.CountryBanks{Country: *country, Banks: banks}, nil
}

func (e *Engine) countryOf(ctx context.Context, bank models.Bank) (*models.Country, error) {
	country, err := e.reader.FindCountry(ctx, bank.CountryISO2)
	if err != nil {
		return nil, err
	}
	if country == nil {
		e.logger.ErrorContext(ctx, "bank references a missing country",
			slog.String("swift_code", bank.FullCode()),
			slog.String("country", bank.CountryISO2))
		return nil, fmt.Errorf("%w: %w: country %s of %s", ErrNotFound, ErrConsistencyViolation, bank.CountryISO2, bank.FullCode())
	}
	return country, nil
}
