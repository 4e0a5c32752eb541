package service_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zdziszkee/swift-registry/internal/database"
	"github.com/zdziszkee/swift-registry/internal/query"
	"github.com/zdziszkee/swift-registry/internal/registry"
	repository "github.com/zdziszkee/swift-registry/internal/repositories"
	service "github.com/zdziszkee/swift-registry/internal/services"
	"github.com/zdziszkee/swift-registry/internal/validation"
)

var _ = Describe("SwiftService on sqlite", func() {
	var (
		ctx context.Context
		db  *database.Database
		s   service.SwiftService
	)

	create := func(code, iso2, country string, hq bool) error {
		name := "Bank " + code
		_, err := s.CreateSwiftCode(ctx, validation.Candidate{
			SwiftCode: &code, BankName: &name, CountryISO2: &iso2, CountryName: &country, IsHeadquarter: &hq,
		})
		return err
	}

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = database.New(ctx, database.Config{Type: "sqlite"}, nil)
		Expect(err).NotTo(HaveOccurred())
		reg := registry.NewBankRegistry(repository.NewSQLSwiftRepository(db), nil, nil, nil)
		s = service.NewSwiftService(reg, query.NewEngine(reg, nil), nil)
	})

	AfterEach(func() {
		db.Close()
	})

	It("should create, read and delete a swift code", func() {
		Expect(create("ABCDUS33XXX", "US", "United States", true)).To(Succeed())
		Expect(create("ABCDUS33XXX", "US", "United States", true)).To(MatchError(service.ErrAlreadyExists))
		Expect(create("ABCDUS33NYC", "US", "USA", false)).To(MatchError(service.ErrConflict))

		detail, err := s.GetSwiftCodeDetails(ctx, "abcdus33xxx")
		Expect(err).NotTo(HaveOccurred())
		Expect(detail.CountryName).To(Equal("United States"))

		Expect(s.DeleteSwiftCode(ctx, "ABCDUS33XXX")).To(Succeed())
		Expect(s.DeleteSwiftCode(ctx, "ABCDUS33XXX")).To(MatchError(service.ErrNotFound))
		_, err = s.GetSwiftCodesByCountry(ctx, "US")
		Expect(err).To(MatchError(service.ErrNotFound))
	})
})
