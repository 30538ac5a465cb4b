package db

import (
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT,
    email TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS posts (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    slug TEXT UNIQUE,
    summary TEXT NOT NULL DEFAULT '',
    content BLOB,
    content_hash TEXT NOT NULL DEFAULT '',
    featured_image TEXT NOT NULL DEFAULT '',
    seo_title TEXT NOT NULL DEFAULT '',
    seo_description TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'published')),
    author_id TEXT,
    views INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    published_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_posts_author ON posts (author_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_posts_status ON posts (status, published_at);`

type SQLite struct {
	conn
	dsn string
}

func NewSQLite(dsn string) *SQLite {
	return &SQLite{
		conn: conn{dialect: DialectSQLite},
		dsn:  dsn,
	}
}

func (s *SQLite) InitDb() error {
	var err error
	s.db, err = sql.Open("sqlite3", s.dsn)
	if err != nil {
		return err
	}

	// Every connection to :memory: opens a fresh database.
	if strings.Contains(s.dsn, ":memory:") {
		s.db.SetMaxOpenConns(1)
	}

	res, err := s.db.Exec(sqliteSchema)
	if err != nil {
		return err
	}

	dbLogger.Info().Any("db_result", res).Str("dsn", s.dsn).Msg("Database initialized")
	return nil
}
