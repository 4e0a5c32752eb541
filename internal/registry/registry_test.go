package registry_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/zdziszkee/swift-registry/internal/database"
	"github.com/zdziszkee/swift-registry/internal/metrics"
	"github.com/zdziszkee/swift-registry/internal/models"
	"github.com/zdziszkee/swift-registry/internal/registry"
	repository "github.com/zdziszkee/swift-registry/internal/repositories"
	"github.com/zdziszkee/swift-registry/internal/swiftcode"
	"github.com/zdziszkee/swift-registry/internal/validation"
)

func TestRegistry(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Bank Registry Suite")
}

func str(s string) *string { return &s }
func flag(b bool) *bool    { return &b }

func candidate(code, name, iso2, country string, hq bool) validation.Candidate {
	return validation.Candidate{
		SwiftCode:     str(code),
		BankName:      str(name),
		Address:       str("Some street 1"),
		CountryISO2:   str(iso2),
		CountryName:   str(country),
		IsHeadquarter: flag(hq),
	}
}

type snapshot struct {
	countries    []models.Country
	headquarters []models.Bank
	branches     []models.Bank
}

var _ = Describe("BankRegistry", func() {
	var (
		ctx   context.Context
		db    *database.Database
		store *repository.SQLSwiftRepository
		reg   *registry.BankRegistry
		m     *metrics.Metrics
	)

	takeSnapshot := func(iso2 ...string) snapshot {
		var s snapshot
		for _, code := range iso2 {
			c, err := store.FindCountry(ctx, code)
			Expect(err).NotTo(HaveOccurred())
			if c != nil {
				s.countries = append(s.countries, *c)
			}
			hqs, err := store.FindHeadquartersByCountry(ctx, code)
			Expect(err).NotTo(HaveOccurred())
			s.headquarters = append(s.headquarters, hqs...)
			brs, err := store.FindBranchesByCountry(ctx, code)
			Expect(err).NotTo(HaveOccurred())
			s.branches = append(s.branches, brs...)
		}
		return s
	}

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = database.New(ctx, database.Config{Type: "sqlite"}, nil)
		Expect(err).NotTo(HaveOccurred())
		store = repository.NewSQLSwiftRepository(db)
		m = metrics.New(prometheus.NewRegistry())
		reg = registry.NewBankRegistry(store, validation.NewEngine(validation.NameMatchExact), nil, m)
	})

	AfterEach(func() {
		db.Close()
	})

	Describe("Insert", func() {
		It("should create the country and the headquarters together", func() {
			bank, err := reg.Insert(ctx, candidate("aaaabbccxxx", "Bank A", "pl", "Poland", true))
			Expect(err).NotTo(HaveOccurred())
			Expect(bank.FullCode()).To(Equal("AAAABBCCXXX"))

			country, err := reg.FindCountry(ctx, "PL")
			Expect(err).NotTo(HaveOccurred())
			Expect(country).To(Equal(&models.Country{ISO2: "PL", Name: "Poland"}))

			hq, err := reg.FindHeadquarterByPrefix(ctx, "AAAABBCC")
			Expect(err).NotTo(HaveOccurred())
			Expect(hq.BankName).To(Equal("Bank A"))
			Expect(testutil.ToFloat64(m.Mutations.WithLabelValues("insert", metrics.OutcomeSuccess))).To(Equal(1.0))
		})

		It("should accept a branch without a headquarters", func() {
			_, err := reg.Insert(ctx, candidate("AAAABBCC123", "Branch", "PL", "Poland", false))
			Expect(err).NotTo(HaveOccurred())

			branch, err := reg.FindBranchByPrefixAndSuffix(ctx, "AAAABBCC", "123")
			Expect(err).NotTo(HaveOccurred())
			Expect(branch).NotTo(BeNil())
			Expect(branch.IsHeadquarter()).To(BeFalse())
		})

		It("should reject a second headquarters and leave state unchanged", func() {
			_, err := reg.Insert(ctx, candidate("AAAABBCCXXX", "Bank A", "PL", "Poland", true))
			Expect(err).NotTo(HaveOccurred())
			before := takeSnapshot("PL")

			_, err = reg.Insert(ctx, candidate("AAAABBCCXXX", "Bank B", "PL", "Poland", true))
			Expect(err).To(MatchError(validation.ErrDuplicateRecord))
			Expect(takeSnapshot("PL")).To(Equal(before))
			Expect(testutil.ToFloat64(m.Mutations.WithLabelValues("insert", metrics.OutcomeDuplicate))).To(Equal(1.0))
		})

		It("should reject a duplicate branch", func() {
			_, err := reg.Insert(ctx, candidate("AAAABBCC123", "Branch", "PL", "Poland", false))
			Expect(err).NotTo(HaveOccurred())
			_, err = reg.Insert(ctx, candidate("AAAABBCC123", "Branch again", "PL", "Poland", false))
			Expect(err).To(MatchError(validation.ErrDuplicateRecord))
		})

		It("should reject a conflicting country name without writing", func() {
			_, err := reg.Insert(ctx, candidate("AAAABBCCXXX", "Bank A", "PL", "Poland", true))
			Expect(err).NotTo(HaveOccurred())
			before := takeSnapshot("PL")

			_, err = reg.Insert(ctx, candidate("DDDDEEFFXXX", "Bank D", "PL", "Polska", true))
			Expect(err).To(MatchError(validation.ErrCountryConflict))
			Expect(takeSnapshot("PL")).To(Equal(before))
		})

		It("should reject invalid candidates before touching storage", func() {
			_, err := reg.Insert(ctx, candidate("AAAABBCC123", "Bank", "PL", "Poland", true))
			Expect(err).To(MatchError(validation.ErrFlagSuffixMismatch))

			country, err := reg.FindCountry(ctx, "PL")
			Expect(err).NotTo(HaveOccurred())
			Expect(country).To(BeNil())
		})
	})

	Describe("DeleteByCode", func() {
		BeforeEach(func() {
			_, err := reg.Insert(ctx, candidate("AAAABBCCXXX", "Bank A", "PL", "Poland", true))
			Expect(err).NotTo(HaveOccurred())
			_, err = reg.Insert(ctx, candidate("AAAABBCC123", "Branch", "PL", "Poland", false))
			Expect(err).NotTo(HaveOccurred())
		})

		It("should not cascade from headquarters to branches", func() {
			Expect(reg.DeleteByCode(ctx, "aaaabbccxxx")).To(Succeed())

			hq, err := reg.FindHeadquarterByPrefix(ctx, "AAAABBCC")
			Expect(err).NotTo(HaveOccurred())
			Expect(hq).To(BeNil())

			branches, err := reg.FindBranchesByPrefix(ctx, "AAAABBCC")
			Expect(err).NotTo(HaveOccurred())
			Expect(branches).To(HaveLen(1))

			country, err := reg.FindCountry(ctx, "PL")
			Expect(err).NotTo(HaveOccurred())
			Expect(country).NotTo(BeNil())
		})

		It("should delete a single branch", func() {
			Expect(reg.DeleteByCode(ctx, "AAAABBCC123")).To(Succeed())
			branch, err := reg.FindBranchByPrefixAndSuffix(ctx, "AAAABBCC", "123")
			Expect(err).NotTo(HaveOccurred())
			Expect(branch).To(BeNil())
		})

		It("should report unknown codes as not found", func() {
			err := reg.DeleteByCode(ctx, "ZZZZZZZZ999")
			Expect(err).To(MatchError(registry.ErrNotFound))
		})

		It("should reject malformed codes", func() {
			Expect(reg.DeleteByCode(ctx, "SHORT")).To(MatchError(swiftcode.ErrMalformedCode))
		})
	})

	Describe("lookups", func() {
		It("should validate codes before touching storage", func() {
			_, err := reg.FindHeadquarterByPrefix(ctx, "AB")
			Expect(err).To(MatchError(swiftcode.ErrMalformedCode))
			_, err = reg.FindBranchByPrefixAndSuffix(ctx, "AAAABBCC", "1")
			Expect(err).To(MatchError(swiftcode.ErrMalformedCode))
			_, err = reg.FindAllByCountry(ctx, "POL")
			Expect(err).To(MatchError(swiftcode.ErrMalformedCountryCode))
		})

		It("should list headquarters before branches per country", func() {
			_, err := reg.Insert(ctx, candidate("AAAABBCC123", "Branch", "PL", "Poland", false))
			Expect(err).NotTo(HaveOccurred())
			_, err = reg.Insert(ctx, candidate("AAAABBCCXXX", "Bank A", "PL", "Poland", true))
			Expect(err).NotTo(HaveOccurred())
			_, err = reg.Insert(ctx, candidate("DDDDEEFFXXX", "Bank D", "DE", "Germany", true))
			Expect(err).NotTo(HaveOccurred())

			banks, err := reg.FindAllByCountry(ctx, "pl")
			Expect(err).NotTo(HaveOccurred())
			codes := make([]string, 0, len(banks))
			for _, b := range banks {
				codes = append(codes, b.FullCode())
			}
			Expect(codes).To(Equal([]string{"AAAABBCCXXX", "AAAABBCC123"}))
		})
	})
})

var _ = Describe("BankRegistry under concurrent writers", func() {
	const writers = 16

	var (
		ctx context.Context
		db  *database.Database
		reg *registry.BankRegistry
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = database.New(ctx, database.Config{
			Type:         "sqlite",
			Path:         filepath.Join(GinkgoT().TempDir(), "registry.db"),
			MaxOpenConns: 8,
			MaxIdleConns: 8,
		}, nil)
		Expect(err).NotTo(HaveOccurred())
		reg = registry.NewBankRegistry(repository.NewSQLSwiftRepository(db), nil, nil, nil)
	})

	AfterEach(func() {
		db.Close()
	})

	insertAll := func(candidates []validation.Candidate) []error {
		errs := make([]error, len(candidates))
		var wg sync.WaitGroup
		start := make(chan struct{})
		for i, c := range candidates {
			wg.Add(1)
			go func(i int, c validation.Candidate) {
				defer wg.Done()
				<-start
				_, errs[i] = reg.Insert(ctx, c)
			}(i, c)
		}
		close(start)
		wg.Wait()
		return errs
	}

	It("should admit exactly one of many identical headquarters", func() {
		candidates := make([]validation.Candidate, writers)
		for i := range candidates {
			candidates[i] = candidate("AAAABBCCXXX", "Bank A", "PL", "Poland", true)
		}

		succeeded := 0
		for _, err := range insertAll(candidates) {
			if err == nil {
				succeeded++
				continue
			}
			Expect(err).To(MatchError(validation.ErrDuplicateRecord))
		}
		Expect(succeeded).To(Equal(1))

		banks, err := reg.FindAllByCountry(ctx, "PL")
		Expect(err).NotTo(HaveOccurred())
		Expect(banks).To(HaveLen(1))
	})

	It("should admit distinct branches racing to create their country", func() {
		candidates := make([]validation.Candidate, writers)
		for i := range candidates {
			candidates[i] = candidate(fmt.Sprintf("ZZZZDEFF%03d", i), "Bank Z", "DE", "Germany", false)
		}

		for _, err := range insertAll(candidates) {
			Expect(err).NotTo(HaveOccurred())
		}

		country, err := reg.FindCountry(ctx, "DE")
		Expect(err).NotTo(HaveOccurred())
		Expect(country).To(Equal(&models.Country{ISO2: "DE", Name: "Germany"}))
		branches, err := reg.FindBranchesByPrefix(ctx, "ZZZZDEFF")
		Expect(err).NotTo(HaveOccurred())
		Expect(branches).To(HaveLen(writers))
	})
})

var _ = Describe("BankRegistry with a failing store", func() {
	It("should surface storage errors from the transaction", func() {
		store := &failingStore{err: errors.New("disk I/O error")}
		reg := registry.NewBankRegistry(store, nil, nil, nil)

		_, err := reg.Insert(context.Background(), candidate("AAAABBCCXXX", "Bank A", "PL", "Poland", true))
		Expect(err).To(MatchError(ContainSubstring("disk I/O error")))
	})
})

type failingStore struct {
	repository.SwiftRepository
	err error
}

func (f *failingStore) WithinTx(context.Context, func(repository.SwiftRepository) error) error {
	return f.err
}
