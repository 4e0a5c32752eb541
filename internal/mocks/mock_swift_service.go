package mocks

import (
	"context"

	"github.com/zdziszkee/swift-registry/internal/models"
	"github.com/zdziszkee/swift-registry/internal/validation"
)

// MockSwiftService implements service.SwiftService.
type MockSwiftService struct {
	GetSwiftCodeDetailsFunc    func(ctx context.Context, code string) (*models.BankDetail, error)
	GetSwiftCodesByCountryFunc func(ctx context.Context, countryCode string) (*models.CountryBanks, error)
	CreateSwiftCodeFunc        func(ctx context.Context, candidate validation.Candidate) (models.Bank, error)
	DeleteSwiftCodeFunc        func(ctx context.Context, code string) error
}

func (m *MockSwiftService) GetSwiftCodeDetails(ctx context.Context, code string) (*models.BankDetail, error) {
	return m.GetSwiftCodeDetailsFunc(ctx, code)
}

func (m *MockSwiftService) GetSwiftCodesByCountry(ctx context.Context, countryCode string) (*models.CountryBanks, error) {
	return m.GetSwiftCodesByCountryFunc(ctx, countryCode)
}

func (m *MockSwiftService) CreateSwiftCode(ctx context.Context, candidate validation.Candidate) (models.Bank, error) {
	return m.CreateSwiftCodeFunc(ctx, candidate)
}

func (m *MockSwiftService) DeleteSwiftCode(ctx context.Context, code string) error {
	return m.DeleteSwiftCodeFunc(ctx, code)
}
