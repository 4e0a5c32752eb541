package mocks

import (
	"context"

	"github.com/zdziszkee/swift-registry/internal/models"
	"github.com/zdziszkee/swift-registry/internal/validation"
)

// MockBankWriter implements the registry mutations used by the service and loader.
type MockBankWriter struct {
	InsertFunc       func(ctx context.Context, candidate validation.Candidate) (models.Bank, error)
	DeleteByCodeFunc func(ctx context.Context, code string) error
}

func (m *MockBankWriter) Insert(ctx context.Context, candidate validation.Candidate) (models.Bank, error) {
	return m.InsertFunc(ctx, candidate)
}

func (m *MockBankWriter) DeleteByCode(ctx context.Context, code string) error {
	return m.DeleteByCodeFunc(ctx, code)
}

// MockBankLookup implements the query operations used by the service.
type MockBankLookup struct {
	LookupByCodeFunc    func(ctx context.Context, code string) (*models.BankDetail, error)
	LookupByCountryFunc func(ctx context.Context, iso2 string) (*models.CountryBanks, error)
}

func (m *MockBankLookup) LookupByCode(ctx context.Context, code string) (*models.BankDetail, error) {
	return m.LookupByCodeFunc(ctx, code)
}

func (m *MockBankLookup) LookupByCountry(ctx context.Context, iso2 string) (*models.CountryBanks, error) {
	return m.LookupByCountryFunc(ctx, iso2)
}
