package mocks

import (
	"context"

	"github.com/zdziszkee/swift-registry/internal/models"
)

// MockBankReader implements query.Reader for testing
type MockBankReader struct {
	FindHeadquarterByPrefixFunc     func(ctx context.Context, prefix string) (*models.Bank, error)
	FindBranchByPrefixAndSuffixFunc func(ctx context.Context, prefix, suffix string) (*models.Bank, error)
	FindBranchesByPrefixFunc        func(ctx context.Context, prefix string) ([]models.Bank, error)
	FindAllByCountryFunc            func(ctx context.Context, iso2 string) ([]models.Bank, error)
	FindCountryFunc                 func(ctx context.Context, iso2 string) (*models.Country, error)
}

func (m *MockBankReader) FindHeadquarterByPrefix(ctx context.Context, prefix string) (*models.Bank, error) {
	return m.FindHeadquarterByPrefixFunc(ctx, prefix)
}

func (m *MockBankReader) FindBranchByPrefixAndSuffix(ctx context.Context, prefix, suffix string) (*models.Bank, error) {
	return m.FindBranchByPrefixAndSuffixFunc(ctx, prefix, suffix)
}

func (m *MockBankReader) FindBranchesByPrefix(ctx context.Context, prefix string) ([]models.Bank, error) {
	if m.FindBranchesByPrefixFunc != nil {
		return m.FindBranchesByPrefixFunc(ctx, prefix)
	}
	return []models.Bank{}, nil
}

func (m *MockBankReader) FindAllByCountry(ctx context.Context, iso2 string) ([]models.Bank, error) {
	return m.FindAllByCountryFunc(ctx, iso2)
}

func (m *MockBankReader) FindCountry(ctx context.Context, iso2 string) (*models.Country, error) {
	return m.FindCountryFunc(ctx, iso2)
}
