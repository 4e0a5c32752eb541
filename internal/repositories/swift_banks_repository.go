package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zdziszkee/swift-registry/internal/database"
	models "github.com/zdziszkee/swift-registry/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// SwiftRepository is read and write access to countries, headquarters and
// branches. Find methods return nil with a nil error when nothing matches.
type SwiftRepository interface {
	FindCountry(ctx context.Context, iso2 string) (*models.Country, error)
	FindHeadquarter(ctx context.Context, prefix string) (*models.Bank, error)
	FindBranch(ctx context.Context, prefix, suffix string) (*models.Bank, error)
	FindBranchesByPrefix(ctx context.Context, prefix string) ([]models.Bank, error)
	FindHeadquartersByCountry(ctx context.Context, iso2 string) ([]models.Bank, error)
	FindBranchesByCountry(ctx context.Context, iso2 string) ([]models.Bank, error)

	InsertCountryIfAbsent(ctx context.Context, country models.Country) error
	InsertBank(ctx context.Context, bank models.Bank) error
	DeleteHeadquarter(ctx context.Context, prefix string) error
	DeleteBranch(ctx context.Context, prefix, suffix string) error
}

// TxSwiftRepository runs a unit of work inside one transaction.
type TxSwiftRepository interface {
	SwiftRepository
	WithinTx(ctx context.Context, fn func(repo SwiftRepository) error) error
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLSwiftRepository implements SwiftRepository on database/sql
type SQLSwiftRepository struct {
	db      *sql.DB
	q       querier
	dialect database.Dialect
	now     func() time.Time
}

// NewSQLSwiftRepository creates a repository on top of an opened database
func NewSQLSwiftRepository(db *database.Database) *SQLSwiftRepository {
	return NewSQLSwiftRepositoryWithDialect(db.DB, db.Dialect)
}

// NewSQLSwiftRepositoryWithDialect creates a repository for a raw pool.
func NewSQLSwiftRepositoryWithDialect(db *sql.DB, dialect database.Dialect) *SQLSwiftRepository {
	return &SQLSwiftRepository{
		db:      db,
		q:       db,
		dialect: dialect,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithinTx begins a transaction, hands fn a repository bound to it and
// commits when fn returns nil. Any error rolls the whole unit back.
// Dialects without transactions run fn directly on the pool, so a failure
// part way through leaves the earlier statements applied.
func (r *SQLSwiftRepository) WithinTx(ctx context.Context, fn func(repo SwiftRepository) error) error {
	if r.db == nil {
		return errors.New("nested transactions are not supported")
	}
	if !r.dialect.SupportsTransactions() {
		return fn(&SQLSwiftRepository{q: r.db, dialect: r.dialect, now: r.now})
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction failed: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	txRepo := &SQLSwiftRepository{q: tx, dialect: r.dialect, now: r.now}
	if err := fn(txRepo); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return fmt.Errorf("commit transaction failed: %w", err)
	}
	return nil
}

const (
	headquarterColumns = "swift_prefix, address, bank_name, country_iso2"
	branchColumns      = "swift_prefix, branch_suffix, address, bank_name, country_iso2"
)

// FindCountry retrieves a country by ISO2 code
func (r *SQLSwiftRepository) FindCountry(ctx context.Context, iso2 string) (*models.Country, error) {
	query := r.dialect.Rebind("SELECT country_iso2, country_name FROM countries WHERE country_iso2 = ?")
	var country models.Country
	err := r.q.QueryRowContext(ctx, query, iso2).Scan(&country.ISO2, &country.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("country query failed: %w", err)
	}
	return &country, nil
}

// FindHeadquarter retrieves the headquarters registered under prefix
func (r *SQLSwiftRepository) FindHeadquarter(ctx context.Context, prefix string) (*models.Bank, error) {
	query := r.dialect.Rebind("SELECT " + headquarterColumns + " FROM headquarters WHERE swift_prefix = ?")
	bank, err := scanHeadquarter(r.q.QueryRowContext(ctx, query, prefix))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("headquarters query failed: %w", err)
	}
	return bank, nil
}

// FindBranch retrieves one branch by prefix and suffix
func (r *SQLSwiftRepository) FindBranch(ctx context.Context, prefix, suffix string) (*models.Bank, error) {
	query := r.dialect.Rebind("SELECT " + branchColumns + " FROM branches WHERE swift_prefix = ? AND branch_suffix = ?")
	bank, err := scanBranch(r.q.QueryRowContext(ctx, query, prefix, suffix))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("branch query failed: %w", err)
	}
	return bank, nil
}

// FindBranchesByPrefix retrieves every branch sharing a headquarters prefix
func (r *SQLSwiftRepository) FindBranchesByPrefix(ctx context.Context, prefix string) ([]models.Bank, error) {
	query := r.dialect.Rebind("SELECT " + branchColumns + " FROM branches WHERE swift_prefix = ? ORDER BY " + r.dialect.OrderColumn())
	return r.queryBanks(ctx, query, scanBranch, prefix)
}

// FindHeadquartersByCountry retrieves every headquarters in a country
func (r *SQLSwiftRepository) FindHeadquartersByCountry(ctx context.Context, iso2 string) ([]models.Bank, error) {
	query := r.dialect.Rebind("SELECT " + headquarterColumns + " FROM headquarters WHERE country_iso2 = ? ORDER BY " + r.dialect.OrderColumn())
	return r.queryBanks(ctx, query, scanHeadquarter, iso2)
}

// FindBranchesByCountry retrieves every branch in a country
func (r *SQLSwiftRepository) FindBranchesByCountry(ctx context.Context, iso2 string) ([]models.Bank, error) {
	query := r.dialect.Rebind("SELECT " + branchColumns + " FROM branches WHERE country_iso2 = ? ORDER BY " + r.dialect.OrderColumn())
	return r.queryBanks(ctx, query, scanBranch, iso2)
}

// InsertCountryIfAbsent adds a country unless its key is already taken
func (r *SQLSwiftRepository) InsertCountryIfAbsent(ctx context.Context, country models.Country) error {
	query := r.dialect.Rebind("INSERT INTO countries (country_iso2, country_name) VALUES (?, ?)" + r.dialect.InsertIgnoreSuffix("country_iso2"))
	if _, err := r.q.ExecContext(ctx, query, country.ISO2, country.Name); err != nil {
		return fmt.Errorf("country insert failed: %w", err)
	}
	return nil
}

// InsertBank adds a headquarters or branch row depending on the bank's kind
func (r *SQLSwiftRepository) InsertBank(ctx context.Context, bank models.Bank) error {
	var (
		query string
		args  []any
	)
	if bank.IsHeadquarter() {
		query = "INSERT INTO headquarters (" + headquarterColumns + ", created_at) VALUES (?, ?, ?, ?, ?)"
		args = []any{bank.Prefix, bank.Address, bank.BankName, bank.CountryISO2, r.now()}
	} else {
		query = "INSERT INTO branches (" + branchColumns + ", created_at) VALUES (?, ?, ?, ?, ?, ?)"
		args = []any{bank.Prefix, bank.Suffix, bank.Address, bank.BankName, bank.CountryISO2, r.now()}
	}

	if _, err := r.q.ExecContext(ctx, r.dialect.Rebind(query), args...); err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicate, bank.FullCode())
		}
		return fmt.Errorf("bank insert failed: %w", err)
	}
	return nil
}

// DeleteHeadquarter removes the headquarters row for prefix. Branches are untouched.
func (r *SQLSwiftRepository) DeleteHeadquarter(ctx context.Context, prefix string) error {
	query := r.dialect.Rebind("DELETE FROM headquarters WHERE swift_prefix = ?")
	return r.deleteOne(ctx, query, prefix)
}

// DeleteBranch removes one branch row
func (r *SQLSwiftRepository) DeleteBranch(ctx context.Context, prefix, suffix string) error {
	query := r.dialect.Rebind("DELETE FROM branches WHERE swift_prefix = ? AND branch_suffix = ?")
	return r.deleteOne(ctx, query, prefix, suffix)
}

// Helper methods

func (r *SQLSwiftRepository) deleteOne(ctx context.Context, query string, args ...any) error {
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLSwiftRepository) queryBanks(ctx context.Context, query string, scan func(rowScanner) (*models.Bank, error), args ...any) ([]models.Bank, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("bank query failed: %w", err)
	}
	defer rows.Close()

	banks := []models.Bank{}
	for rows.Next() {
		bank, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("bank scan failed: %w", err)
		}
		banks = append(banks, *bank)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bank query failed: %w", err)
	}
	return banks, nil
}

func scanHeadquarter(scanner rowScanner) (*models.Bank, error) {
	bank := models.Bank{Kind: models.Headquarters}
	var address sql.NullString
	if err := scanner.Scan(&bank.Prefix, &address, &bank.BankName, &bank.CountryISO2); err != nil {
		return nil, err
	}
	bank.Address = address.String
	return &bank, nil
}

func scanBranch(scanner rowScanner) (*models.Bank, error) {
	bank := models.Bank{Kind: models.Branch}
	var address sql.NullString
	if err := scanner.Scan(&bank.Prefix, &bank.Suffix, &address, &bank.BankName, &bank.CountryISO2); err != nil {
		return nil, err
	}
	bank.Address = address.String
	return &bank, nil
}
