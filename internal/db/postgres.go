package db

import (
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT,
    email TEXT,
    created_at TIMESTAMPTZ DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS posts (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    slug TEXT UNIQUE,
    summary TEXT NOT NULL DEFAULT '',
    content BYTEA,
    content_hash TEXT NOT NULL DEFAULT '',
    featured_image TEXT NOT NULL DEFAULT '',
    seo_title TEXT NOT NULL DEFAULT '',
    seo_description TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'published')),
    author_id TEXT,
    views BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    published_at TIMESTAMPTZ
)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_author ON posts (author_id, updated_at)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_status ON posts (status, published_at)`,
}

type Postgres struct {
	conn
	dsn string
}

func NewPostgres(dsn string) *Postgres {
	return &Postgres{
		conn: conn{dialect: DialectPostgres},
		dsn:  dsn,
	}
}

func (p *Postgres) InitDb() error {
	var err error
	p.db, err = sql.Open("pgx", p.dsn)
	if err != nil {
		return err
	}

	if err := p.db.Ping(); err != nil {
		return err
	}

	// pgx rejects multiple statements in one prepared Exec.
	for _, stmt := range postgresSchema {
		if _, err := p.db.Exec(stmt); err != nil {
			return err
		}
	}

	dbLogger.Info().Msg("Database initialized")
	return nil
}
