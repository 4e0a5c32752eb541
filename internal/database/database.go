package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver ("pgx")
	"github.com/pressly/goose/v3"
	_ "github.com/trinodb/trino-go-client/trino" // Trino driver
	_ "modernc.org/sqlite"                       // SQLite driver (pure Go)
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql schema/trino.sql
var schemaFS embed.FS

// Config holds configuration for the backing store connection
type Config struct {
	Type      string `koanf:"type"`
	Path      string `koanf:"path"`
	Host      string `koanf:"host"`
	Port      int    `koanf:"port"`
	User      string `koanf:"user"`
	Password  string `koanf:"password"`
	Name      string `koanf:"name"`
	SSLMode   string `koanf:"ssl_mode"`
	ServerURI string `koanf:"server_uri"`
	Catalog   string `koanf:"catalog"`
	Schema    string `koanf:"schema"`
	// SchemaFile replaces the bundled Trino schema, e.g. to add table
	// properties for a specific connector.
	SchemaFile      string        `koanf:"schema_file"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

// Database wraps the connection pool together with the dialect it speaks
type Database struct {
	*sql.DB
	Config  Config
	Dialect Dialect
	logger  *slog.Logger
}

// New opens the configured backend and brings its schema up to date.
func New(ctx context.Context, config Config, logger *slog.Logger) (*Database, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	dialect, err := ParseDialect(config.Type)
	if err != nil {
		return nil, err
	}

	driver, dsn, err := dataSource(dialect, config)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", dialect, err)
	}

	configurePool(db, dialect, config)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", dialect, err)
	}

	database := &Database{DB: db, Config: config, Dialect: dialect, logger: logger}

	if err := database.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return database, nil
}

// Migrate applies the embedded schema for the database's dialect.
func (db *Database) Migrate(ctx context.Context) error {
	switch db.Dialect {
	case DialectTrino:
		var err error
		if db.Config.SchemaFile != "" {
			err = db.ExecuteSchema(ctx, db.Config.SchemaFile)
		} else {
			err = db.executeSchemaFS(ctx, schemaFS, "schema/trino.sql")
		}
		if err != nil {
			return fmt.Errorf("failed to execute schema: %w", err)
		}
		return nil
	default:
		sub, err := fs.Sub(schemaFS, "migrations")
		if err != nil {
			return fmt.Errorf("failed to open migrations: %w", err)
		}
		goose.SetBaseFS(sub)
		goose.SetLogger(goose.NopLogger())
		if err := goose.SetDialect(db.Dialect.gooseDialect()); err != nil {
			return fmt.Errorf("failed to set dialect: %w", err)
		}
		if err := goose.UpContext(ctx, db.DB, string(db.Dialect)); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		db.logger.Debug("migrations applied", slog.String("dialect", string(db.Dialect)))
		return nil
	}
}

// ExecuteSchema loads and executes a schema file from disk
func (db *Database) ExecuteSchema(ctx context.Context, filePath string) error {
	schemaSQL, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}
	return db.execStatements(ctx, string(schemaSQL))
}

func (db *Database) executeSchemaFS(ctx context.Context, fsys fs.FS, name string) error {
	schemaSQL, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}
	return db.execStatements(ctx, string(schemaSQL))
}

// execStatements runs a script one statement at a time; Trino rejects
// multi-statement execution.
func (db *Database) execStatements(ctx context.Context, script string) error {
	for _, query := range strings.Split(script, ";") {
		query = stripComments(query)
		if query == "" {
			continue
		}
		if db.logger != nil {
			db.logger.Debug("executing schema statement", slog.String("query", query))
		}
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s, error: %w", query, err)
		}
	}
	return nil
}

func stripComments(stmt string) string {
	var kept []string
	for _, line := range strings.Split(stmt, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func dataSource(dialect Dialect, config Config) (driver, dsn string, err error) {
	switch dialect {
	case DialectSQLite:
		path := config.Path
		if path == "" {
			path = ":memory:"
		}
		return "sqlite", path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate", nil
	case DialectPostgres:
		host := config.Host
		if host == "" {
			host = "localhost"
		}
		port := config.Port
		if port == 0 {
			port = 5432
		}
		sslMode := config.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(config.User, config.Password),
			Host:     fmt.Sprintf("%s:%d", host, port),
			Path:     config.Name,
			RawQuery: "sslmode=" + url.QueryEscape(sslMode),
		}
		return "pgx", u.String(), nil
	case DialectTrino:
		if config.ServerURI == "" {
			return "", "", fmt.Errorf("trino requires server_uri")
		}
		u, err := url.Parse(config.ServerURI)
		if err != nil {
			return "", "", fmt.Errorf("invalid trino server_uri: %w", err)
		}
		q := u.Query()
		q.Set("catalog", config.Catalog)
		q.Set("schema", config.Schema)
		u.RawQuery = q.Encode()
		return "trino", u.String(), nil
	}
	return "", "", fmt.Errorf("unsupported database type: %s", dialect)
}

func configurePool(db *sql.DB, dialect Dialect, config Config) {
	if dialect == DialectSQLite && (config.Path == "" || config.Path == ":memory:") {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		return
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
}
