package database

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect identifies the SQL flavour spoken by the backing store.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
	DialectTrino    Dialect = "trino"
)

func ParseDialect(s string) (Dialect, error) {
	switch Dialect(strings.ToLower(strings.TrimSpace(s))) {
	case DialectSQLite:
		return DialectSQLite, nil
	case DialectPostgres:
		return DialectPostgres, nil
	case DialectTrino:
		return DialectTrino, nil
	}
	return "", fmt.Errorf("unsupported database type: %s", s)
}

func (d Dialect) gooseDialect() string {
	if d == DialectSQLite {
		return "sqlite3"
	}
	return string(d)
}

// Rebind rewrites '?' placeholders into the dialect's bind syntax.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// InsertIgnoreSuffix is appended to an INSERT so that a primary-key clash on
// conflictColumns is skipped. Trino has no such clause and returns "".
func (d Dialect) InsertIgnoreSuffix(conflictColumns string) string {
	if d == DialectTrino {
		return ""
	}
	return " ON CONFLICT (" + conflictColumns + ") DO NOTHING"
}

// SupportsTransactions reports whether the driver can open a transaction.
// The Trino client rejects Begin outright.
func (d Dialect) SupportsTransactions() bool {
	return d != DialectTrino
}

// OrderColumn is the column that reflects insertion order.
func (d Dialect) OrderColumn() string {
	if d == DialectTrino {
		return "created_at"
	}
	return "id"
}

// IsUniqueViolation reports whether err is a unique or primary key
// constraint failure raised at write time.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
