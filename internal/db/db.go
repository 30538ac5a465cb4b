// Package db owns the database connection, the schema and the SQL dialect differences between
// SQLite and Postgres.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

type Db interface {
	InitDb() error

	Get() *sql.DB
	Close() error
	Dialect() Dialect

	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) *sql.Row
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

var ErrNotInitialized = errors.New("db: connection not initialized")

var dbLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	dbLogger = l
}

// New returns an uninitialized database for the configured driver.
func New(driver, dsn string) (Db, error) {
	switch Dialect(driver) {
	case DialectSQLite:
		return NewSQLite(dsn), nil
	case DialectPostgres:
		return NewPostgres(dsn), nil
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", driver)
	}
}

// IsUniqueViolation reports whether err was raised by a UNIQUE constraint.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// conn is the driver independent half of every Db implementation.
type conn struct {
	db      *sql.DB
	dialect Dialect
}

func (c *conn) Get() *sql.DB {
	return c.db
}

func (c *conn) Dialect() Dialect {
	return c.dialect
}

func (c *conn) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *conn) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if c.db == nil {
		return nil, ErrNotInitialized
	}
	query = Rebind(c.dialect, query)
	dbLogger.Debug().Str("query", query).Msg("Query")
	return c.db.QueryContext(ctx, query, args...)
}

// QueryRow panics when InitDb has not been called.
func (c *conn) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	query = Rebind(c.dialect, query)
	dbLogger.Debug().Str("query", query).Msg("QueryRow")
	return c.db.QueryRowContext(ctx, query, args...)
}

func (c *conn) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if c.db == nil {
		return nil, ErrNotInitialized
	}
	query = Rebind(c.dialect, query)
	dbLogger.Debug().Str("query", query).Msg("Exec")
	return c.db.ExecContext(ctx, query, args...)
}

// Rebind rewrites ? placeholders into the $n form Postgres expects. Placeholders inside
// single quoted literals are left alone.
func Rebind(d Dialect, query string) string {
	if d != DialectPostgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inLiteral := false
	for _, r := range query {
		switch {
		case r == '\'':
			inLiteral = !inLiteral
			b.WriteRune(r)
		case r == '?' && !inLiteral:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
