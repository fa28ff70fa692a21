package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"letthemcook/internal/token"
)

type PostgresTokenRepository struct {
	db *sql.DB
}

func NewPostgresTokenRepository(db *sql.DB) *PostgresTokenRepository {
	return &PostgresTokenRepository{db: db}
}

func (r *PostgresTokenRepository) Find(ctx context.Context, userID string, kind token.Kind) (*token.Token, error) {
	t := &token.Token{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, kind, token, expires_at, created_at FROM tokens WHERE user_id = $1 AND kind = $2`,
		userID, string(kind)).Scan(&t.ID, &t.UserID, &t.Kind, &t.Token, &t.ExpiresAt, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, token.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find token: %w", err)
	}
	return t, nil
}

func (r *PostgresTokenRepository) Upsert(ctx context.Context, t *token.Token) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tokens (user_id, kind, token, expires_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, kind)
		 DO UPDATE SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at`,
		t.UserID, string(t.Kind), t.Token, t.ExpiresAt)
	if err != nil {
		return fmt.Errorf("upsert token: %w", err)
	}
	return nil
}

// Acquire — условный insert-or-update одним запросом: живую запись не трогает,
// просроченную перезаписывает. Пустой RETURNING означает, что живая запись уже
// есть — тогда возвращаем её.
func (r *PostgresTokenRepository) Acquire(ctx context.Context, candidate *token.Token, now time.Time) (*token.Token, error) {
	t := &token.Token{
		UserID: candidate.UserID,
		Kind:   candidate.Kind,
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO tokens (user_id, kind, token, expires_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, kind)
		 DO UPDATE SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at
		 WHERE tokens.expires_at <= $5
		 RETURNING id, token, expires_at`,
		candidate.UserID, string(candidate.Kind), candidate.Token, candidate.ExpiresAt, now).
		Scan(&t.ID, &t.Token, &t.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return r.Find(ctx, candidate.UserID, candidate.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("acquire token: %w", err)
	}

	return t, nil
}

func (r *PostgresTokenRepository) Delete(ctx context.Context, userID string, kind token.Kind) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM tokens WHERE user_id = $1 AND kind = $2`,
		userID, string(kind))
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}
