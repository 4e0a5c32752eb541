package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/zdziszkee/swift-registry/internal/models"
	"github.com/zdziszkee/swift-registry/internal/query"
	"github.com/zdziszkee/swift-registry/internal/registry"
	"github.com/zdziszkee/swift-registry/internal/swiftcode"
	"github.com/zdziszkee/swift-registry/internal/validation"
)

// Service-level error kinds. Every error returned by SwiftService wraps
// exactly one of them together with the underlying cause.
var (
	ErrNotFound      = errors.New("swift code not found")
	ErrInvalidInput  = errors.New("invalid input provided")
	ErrAlreadyExists = errors.New("swift code already exists")
	ErrConflict      = errors.New("country name conflict")
)

// SwiftService handles business logic for SWIFT codes
type SwiftService interface {
	GetSwiftCodeDetails(ctx context.Context, code string) (*models.BankDetail, error)
	GetSwiftCodesByCountry(ctx context.Context, countryCode string) (*models.CountryBanks, error)
	CreateSwiftCode(ctx context.Context, candidate validation.Candidate) (models.Bank, error)
	DeleteSwiftCode(ctx context.Context, code string) error
}

// BankWriter is the mutating half of the registry.
type BankWriter interface {
	Insert(ctx context.Context, candidate validation.Candidate) (models.Bank, error)
	DeleteByCode(ctx context.Context, code string) error
}

// BankLookup is the read half served by the query engine.
type BankLookup interface {
	LookupByCode(ctx context.Context, code string) (*models.BankDetail, error)
	LookupByCountry(ctx context.Context, iso2 string) (*models.CountryBanks, error)
}

// swiftService implements SwiftService
type swiftService struct {
	writer BankWriter
	lookup BankLookup
	logger *slog.Logger
}

// NewSwiftService creates a new instance of the Swift service
func NewSwiftService(writer BankWriter, lookup BankLookup, logger *slog.Logger) SwiftService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &swiftService{writer: writer, lookup: lookup, logger: logger}
}

// GetSwiftCodeDetails retrieves detailed info for a SWIFT code
func (s *swiftService) GetSwiftCodeDetails(ctx context.Context, code string) (*models.BankDetail, error) {
	s.logger.DebugContext(ctx, "GetSwiftCodeDetails called", slog.String("swift_code", code))

	detail, err := s.lookup.LookupByCode(ctx, code)
	if err != nil {
		return nil, s.translate(ctx, "get swift code", err)
	}
	return detail, nil
}

// GetSwiftCodesByCountry retrieves all SWIFT codes for a country
func (s *swiftService) GetSwiftCodesByCountry(ctx context.Context, countryCode string) (*models.CountryBanks, error) {
	banks, err := s.lookup.LookupByCountry(ctx, countryCode)
	if err != nil {
		return nil, s.translate(ctx, "get country swift codes", err)
	}
	return banks, nil
}

// CreateSwiftCode validates and stores a new SWIFT code
func (s *swiftService) CreateSwiftCode(ctx context.Context, candidate validation.Candidate) (models.Bank, error) {
	bank, err := s.writer.Insert(ctx, candidate)
	if err != nil {
		return models.Bank{}, s.translate(ctx, "create swift code", err)
	}
	return bank, nil
}

// DeleteSwiftCode removes a SWIFT code from the registry
func (s *swiftService) DeleteSwiftCode(ctx context.Context, code string) error {
	if err := s.writer.DeleteByCode(ctx, code); err != nil {
		return s.translate(ctx, "delete swift code", err)
	}
	return nil
}

// translate tags err with its service-level kind. Unknown errors are
// returned unchanged and logged, since they end up as internal faults.
func (s *swiftService) translate(ctx context.Context, op string, err error) error {
	var kind error
	switch {
	case errors.Is(err, swiftcode.ErrMalformedCode),
		errors.Is(err, swiftcode.ErrMalformedCountryCode),
		errors.Is(err, validation.ErrValidation):
		kind = ErrInvalidInput
	case errors.Is(err, validation.ErrDuplicateRecord):
		kind = ErrAlreadyExists
	case errors.Is(err, validation.ErrCountryConflict):
		kind = ErrConflict
	case errors.Is(err, registry.ErrNotFound),
		errors.Is(err, query.ErrNoRecords):
		kind = ErrNotFound
	default:
		s.logger.ErrorContext(ctx, op+" failed", slog.Any("error", err))
		return err
	}
	s.logger.DebugContext(ctx, op+" rejected", slog.String("reason", err.Error()))
	return fmt.Errorf("%w: %w", kind, err)
}
