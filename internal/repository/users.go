package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/debemdeboas/the-press/internal/db"
	"github.com/debemdeboas/the-press/internal/model"
)

type DBUserRepository struct { // implements UserRepository
	db db.Db
}

func NewDBUserRepository(database db.Db) *DBUserRepository {
	return &DBUserRepository{db: database}
}

func (r *DBUserRepository) Upsert(ctx context.Context, user model.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, username, email, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET username = excluded.username, email = excluded.email`,
		user.ID, user.Username, user.Email, user.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("error saving user: %w", err)
	}

	repoLogger.Debug().Str("user_id", string(user.ID)).Msg("User saved")
	return nil
}

func (r *DBUserRepository) Delete(ctx context.Context, id model.UserID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}
	return nil
}

func (r *DBUserRepository) List(ctx context.Context) ([]model.User, error) {
	return r.query(ctx, `SELECT id, username, email, created_at FROM users ORDER BY created_at DESC, id`)
}

// GetMany returns the users among ids that exist. Unknown ids are skipped.
func (r *DBUserRepository) GetMany(ctx context.Context, ids []model.UserID) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")

	return r.query(ctx, `SELECT id, username, email, created_at FROM users WHERE id IN (`+placeholders+`) ORDER BY id`, args...)
}

func (r *DBUserRepository) query(ctx context.Context, query string, args ...any) ([]model.User, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		var username, email sql.NullString
		var created sql.NullTime
		if err := rows.Scan(&u.ID, &username, &email, &created); err != nil {
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		u.Username = username.String
		u.Email = email.String
		if created.Valid {
			u.CreatedAt = created.Time.UTC()
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
