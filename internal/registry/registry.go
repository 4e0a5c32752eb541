// Package registry owns the country, headquarters and branch collections and
// applies every mutation as a single transaction.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/zdziszkee/swift-registry/internal/metrics"
	"github.com/zdziszkee/swift-registry/internal/models"
	repository "github.com/zdziszkee/swift-registry/internal/repositories"
	"github.com/zdziszkee/swift-registry/internal/swiftcode"
	"github.com/zdziszkee/swift-registry/internal/validation"
)

var ErrNotFound = errors.New("swift code not found")

const (
	opInsert = "insert"
	opDelete = "delete"
)

// BankRegistry is the only writer of registry state.
type BankRegistry struct {
	store   repository.TxSwiftRepository
	engine  *validation.Engine
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewBankRegistry(store repository.TxSwiftRepository, engine *validation.Engine, logger *slog.Logger, m *metrics.Metrics) *BankRegistry {
	if engine == nil {
		engine = validation.NewEngine(validation.NameMatchExact)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BankRegistry{store: store, engine: engine, logger: logger, metrics: m}
}

// Insert validates c and stores its country (if new) and bank together.
// Nothing is written unless every check passes.
func (r *BankRegistry) Insert(ctx context.Context, c validation.Candidate) (models.Bank, error) {
	adm, err := r.engine.CheckFields(c)
	if err != nil {
		r.metrics.ObserveMutation(opInsert, metrics.OutcomeInvalid)
		r.logger.DebugContext(ctx, "candidate rejected", slog.String("reason", err.Error()))
		return models.Bank{}, err
	}

	err = r.store.WithinTx(ctx, func(tx repository.SwiftRepository) error {
		if err := r.engine.CheckRegistry(ctx, tx, &adm); err != nil {
			return err
		}

		if !adm.CountryExists {
			if err := tx.InsertCountryIfAbsent(ctx, adm.Country); err != nil {
				return err
			}
			// A concurrent writer may have created the country first.
			stored, err := tx.FindCountry(ctx, adm.Country.ISO2)
			if err != nil {
				return err
			}
			if stored == nil {
				return fmt.Errorf("country %s missing after insert", adm.Country.ISO2)
			}
			if !r.engine.NamesMatch(stored.Name, adm.Country.Name) {
				return fmt.Errorf("%w: %s is registered as %q", validation.ErrCountryConflict, stored.ISO2, stored.Name)
			}
		}

		return tx.InsertBank(ctx, adm.Bank)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		err = fmt.Errorf("%w: %s", validation.ErrDuplicateRecord, adm.Bank.FullCode())
	}
	if err != nil {
		r.metrics.ObserveMutation(opInsert, insertOutcome(err))
		r.logger.DebugContext(ctx, "insert rejected",
			slog.String("swift_code", adm.Bank.FullCode()),
			slog.String("reason", err.Error()))
		return models.Bank{}, err
	}

	r.metrics.ObserveMutation(opInsert, metrics.OutcomeSuccess)
	r.logger.InfoContext(ctx, "bank inserted",
		slog.String("swift_code", adm.Bank.FullCode()),
		slog.String("kind", string(adm.Bank.Kind)),
		slog.String("country", adm.Country.ISO2))
	return adm.Bank, nil
}

// DeleteByCode removes the headquarters or branch addressed by code.
// Deleting a headquarters leaves its branches in place.
func (r *BankRegistry) DeleteByCode(ctx context.Context, code string) error {
	prefix, suffix, err := swiftcode.Decompose(swiftcode.Normalize(code))
	if err != nil {
		r.metrics.ObserveMutation(opDelete, metrics.OutcomeInvalid)
		return err
	}

	err = r.store.WithinTx(ctx, func(tx repository.SwiftRepository) error {
		if swiftcode.IsHeadquarterSuffix(suffix) {
			return tx.DeleteHeadquarter(ctx, prefix)
		}
		return tx.DeleteBranch(ctx, prefix, suffix)
	})
	fullCode := swiftcode.Compose(prefix, suffix)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		r.metrics.ObserveMutation(opDelete, metrics.OutcomeNotFound)
		return fmt.Errorf("%w: %s", ErrNotFound, fullCode)
	case err != nil:
		r.metrics.ObserveMutation(opDelete, metrics.OutcomeError)
		return err
	}

	r.metrics.ObserveMutation(opDelete, metrics.OutcomeSuccess)
	r.logger.InfoContext(ctx, "bank deleted", slog.String("swift_code", fullCode))
	return nil
}

// FindHeadquarterByPrefix returns nil when no headquarters uses prefix.
func (r *BankRegistry) FindHeadquarterByPrefix(ctx context.Context, prefix string) (*models.Bank, error) {
	prefix = swiftcode.Normalize(prefix)
	if err := swiftcode.ValidatePrefix(prefix); err != nil {
		return nil, err
	}
	return r.store.FindHeadquarter(ctx, prefix)
}

// FindBranchByPrefixAndSuffix returns nil when the branch does not exist.
func (r *BankRegistry) FindBranchByPrefixAndSuffix(ctx context.Context, prefix, suffix string) (*models.Bank, error) {
	prefix, suffix = swiftcode.Normalize(prefix), swiftcode.Normalize(suffix)
	if err := swiftcode.ValidatePrefix(prefix); err != nil {
		return nil, err
	}
	if err := swiftcode.ValidateSuffix(suffix); err != nil {
		return nil, err
	}
	if swiftcode.IsHeadquarterSuffix(suffix) {
		return nil, nil
	}
	return r.store.FindBranch(ctx, prefix, suffix)
}

// FindBranchesByPrefix returns every branch sharing prefix, in insertion order.
func (r *BankRegistry) FindBranchesByPrefix(ctx context.Context, prefix string) ([]models.Bank, error) {
	prefix = swiftcode.Normalize(prefix)
	if err := swiftcode.ValidatePrefix(prefix); err != nil {
		return nil, err
	}
	return r.store.FindBranchesByPrefix(ctx, prefix)
}

// FindAllByCountry lists headquarters first, then branches, each group in
// insertion order.
func (r *BankRegistry) FindAllByCountry(ctx context.Context, iso2 string) ([]models.Bank, error) {
	iso2 = swiftcode.Normalize(iso2)
	if err := swiftcode.ValidateCountryISO2(iso2); err != nil {
		return nil, err
	}
	headquarters, err := r.store.FindHeadquartersByCountry(ctx, iso2)
	if err != nil {
		return nil, err
	}
	branches, err := r.store.FindBranchesByCountry(ctx, iso2)
	if err != nil {
		return nil, err
	}
	return append(headquarters, branches...), nil
}

// FindCountry returns nil when iso2 is not registered.
func (r *BankRegistry) FindCountry(ctx context.Context, iso2 string) (*models.Country, error) {
	iso2 = swiftcode.Normalize(iso2)
	if err := swiftcode.ValidateCountryISO2(iso2); err != nil {
		return nil, err
	}
	return r.store.FindCountry(ctx, iso2)
}

func insertOutcome(err error) string {
	switch {
	case errors.Is(err, validation.ErrDuplicateRecord):
		return metrics.OutcomeDuplicate
	case errors.Is(err, validation.ErrCountryConflict):
		return metrics.OutcomeConflict
	case errors.Is(err, validation.ErrValidation):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}
