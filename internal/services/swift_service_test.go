package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zdziszkee/swift-registry/internal/mocks"
	"github.com/zdziszkee/swift-registry/internal/models"
	"github.com/zdziszkee/swift-registry/internal/query"
	"github.com/zdziszkee/swift-registry/internal/registry"
	service "github.com/zdziszkee/swift-registry/internal/services"
	"github.com/zdziszkee/swift-registry/internal/swiftcode"
	"github.com/zdziszkee/swift-registry/internal/validation"
)

func TestServices(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Services Suite")
}

var _ = Describe("SwiftService", func() {
	var (
		ctx    context.Context
		writer *mocks.MockBankWriter
		lookup *mocks.MockBankLookup
		s      service.SwiftService
	)

	BeforeEach(func() {
		ctx = context.Background()
		writer = &mocks.MockBankWriter{}
		lookup = &mocks.MockBankLookup{}
		s = service.NewSwiftService(writer, lookup, nil)
	})

	Describe("GetSwiftCodeDetails", func() {
		Context("when called with a valid SWIFT code", func() {
			It("should return the bank details", func() {
				want := &models.BankDetail{
					Bank:        models.NewHeadquarters("ABCDUS33", "", "Test Bank", "US"),
					CountryName: "United States",
					Branches:    []models.Bank{},
				}
				lookup.LookupByCodeFunc = func(_ context.Context, code string) (*models.BankDetail, error) {
					Expect(code).To(Equal("ABCDUS33XXX"))
					return want, nil
				}

				got, err := s.GetSwiftCodeDetails(ctx, "ABCDUS33XXX")
				Expect(err).ToNot(HaveOccurred())
				Expect(got).To(Equal(want))
			})
		})

		Context("when called with a malformed SWIFT code", func() {
			It("should return an invalid input error", func() {
				lookup.LookupByCodeFunc = func(context.Context, string) (*models.BankDetail, error) {
					return nil, fmt.Errorf("%w: ABC123", swiftcode.ErrMalformedCode)
				}

				_, err := s.GetSwiftCodeDetails(ctx, "ABC123")
				Expect(err).To(MatchError(service.ErrInvalidInput))
				Expect(err).To(MatchError(swiftcode.ErrMalformedCode))
			})
		})

		Context("when the code is not found", func() {
			It("should return not found error", func() {
				lookup.LookupByCodeFunc = func(context.Context, string) (*models.BankDetail, error) {
					return nil, query.ErrNotFound
				}

				_, err := s.GetSwiftCodeDetails(ctx, "ABCDUS33XXX")
				Expect(err).To(MatchError(service.ErrNotFound))
			})
		})

		Context("when the bank's country is missing", func() {
			It("should report not found", func() {
				lookup.LookupByCodeFunc = func(context.Context, string) (*models.BankDetail, error) {
					return nil, fmt.Errorf("%w: %w", query.ErrNotFound, query.ErrConsistencyViolation)
				}

				_, err := s.GetSwiftCodeDetails(ctx, "ABCDUS33XXX")
				Expect(err).To(MatchError(service.ErrNotFound))
				Expect(err).To(MatchError(query.ErrConsistencyViolation))
			})
		})

		Context("when the store returns an error", func() {
			It("should return the error unchanged", func() {
				expectedError := errors.New("db error")
				lookup.LookupByCodeFunc = func(context.Context, string) (*models.BankDetail, error) {
					return nil, expectedError
				}

				_, err := s.GetSwiftCodeDetails(ctx, "ABCDUS33XXX")
				Expect(err).To(Equal(expectedError))
			})
		})
	})

	Describe("GetSwiftCodesByCountry", func() {
		Context("when called with a valid country code", func() {
			It("should return the country codes", func() {
				want := &models.CountryBanks{Country: models.Country{ISO2: "US", Name: "United States"}}
				lookup.LookupByCountryFunc = func(context.Context, string) (*models.CountryBanks, error) { return want, nil }

				got, err := s.GetSwiftCodesByCountry(ctx, "US")
				Expect(err).ToNot(HaveOccurred())
				Expect(got).To(Equal(want))
			})
		})

		Context("when called with an invalid country code", func() {
			It("should return an invalid input error", func() {
				lookup.LookupByCountryFunc = func(context.Context, string) (*models.CountryBanks, error) {
					return nil, swiftcode.ErrMalformedCountryCode
				}

				_, err := s.GetSwiftCodesByCountry(ctx, "USA")
				Expect(err).To(MatchError(service.ErrInvalidInput))
			})
		})

		Context("when the country has no banks", func() {
			It("should return not found error", func() {
				lookup.LookupByCountryFunc = func(context.Context, string) (*models.CountryBanks, error) {
					return nil, query.ErrNoRecords
				}

				_, err := s.GetSwiftCodesByCountry(ctx, "US")
				Expect(err).To(MatchError(service.ErrNotFound))
			})
		})
	})

	Describe("CreateSwiftCode", func() {
		var candidate validation.Candidate

		BeforeEach(func() {
			code, name, iso2, country, hq := "ABCDUS33XXX", "Test Bank", "US", "United States", true
			candidate = validation.Candidate{SwiftCode: &code, BankName: &name, CountryISO2: &iso2, CountryName: &country, IsHeadquarter: &hq}
		})

		Context("when called with a valid candidate", func() {
			It("should create the bank", func() {
				writer.InsertFunc = func(_ context.Context, c validation.Candidate) (models.Bank, error) {
					Expect(*c.SwiftCode).To(Equal("ABCDUS33XXX"))
					return models.NewHeadquarters("ABCDUS33", "", "Test Bank", "US"), nil
				}

				bank, err := s.CreateSwiftCode(ctx, candidate)
				Expect(err).ToNot(HaveOccurred())
				Expect(bank.FullCode()).To(Equal("ABCDUS33XXX"))
			})
		})

		DescribeTable("should translate registry errors",
			func(cause, kind error) {
				writer.InsertFunc = func(context.Context, validation.Candidate) (models.Bank, error) {
					return models.Bank{}, cause
				}

				_, err := s.CreateSwiftCode(ctx, candidate)
				Expect(err).To(MatchError(kind))
				Expect(err).To(MatchError(cause))
			},
			Entry("missing field", &validation.MissingFieldsError{Fields: []string{"bankName"}}, service.ErrInvalidInput),
			Entry("flag mismatch", validation.ErrFlagSuffixMismatch, service.ErrInvalidInput),
			Entry("duplicate", validation.ErrDuplicateRecord, service.ErrAlreadyExists),
			Entry("country conflict", validation.ErrCountryConflict, service.ErrConflict),
		)

		Context("when the store returns an error", func() {
			It("should return the error unchanged", func() {
				expectedError := errors.New("db error")
				writer.InsertFunc = func(context.Context, validation.Candidate) (models.Bank, error) {
					return models.Bank{}, expectedError
				}

				_, err := s.CreateSwiftCode(ctx, candidate)
				Expect(err).To(Equal(expectedError))
			})
		})
	})

	Describe("DeleteSwiftCode", func() {
		Context("when called with a valid SWIFT code", func() {
			It("should delete the bank", func() {
				writer.DeleteByCodeFunc = func(context.Context, string) error { return nil }
				Expect(s.DeleteSwiftCode(ctx, "ABCDUS33XXX")).To(Succeed())
			})
		})

		Context("when called with an invalid SWIFT code", func() {
			It("should return an invalid input error", func() {
				writer.DeleteByCodeFunc = func(context.Context, string) error { return swiftcode.ErrMalformedCode }
				Expect(s.DeleteSwiftCode(ctx, "ABC123")).To(MatchError(service.ErrInvalidInput))
			})
		})

		Context("when the code is not found", func() {
			It("should return not found error", func() {
				writer.DeleteByCodeFunc = func(context.Context, string) error { return registry.ErrNotFound }
				Expect(s.DeleteSwiftCode(ctx, "ABCDUS33XXX")).To(MatchError(service.ErrNotFound))
			})
		})
	})
})
