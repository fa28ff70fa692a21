package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"letthemcook/internal/user"
)

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, u *user.User) error {
	query := `INSERT INTO users (id, login, email, phone, name, surname, about, password, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW()) RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		u.ID, u.Login, u.Email, nullable(u.Phone), nullable(u.Name),
		nullable(u.Surname), nullable(u.About), u.PasswordHash).Scan(&u.CreatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	return r.get(ctx, `WHERE id = $1`, id)
}

func (r *PostgresUserRepository) GetByLogin(ctx context.Context, login string) (*user.User, error) {
	return r.get(ctx, `WHERE login = $1`, login)
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.get(ctx, `WHERE email = $1`, email)
}

func (r *PostgresUserRepository) get(ctx context.Context, where string, arg any) (*user.User, error) {
	u := &user.User{}
	var phone, name, surname, about sql.NullString

	query := `SELECT id, login, email, phone, name, surname, about, password, created_at FROM users ` + where

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Login, &u.Email, &phone, &name, &surname, &about, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	u.Phone = phone.String
	u.Name = name.String
	u.Surname = surname.String
	u.About = about.String
	return u, nil
}

func (r *PostgresUserRepository) Update(ctx context.Context, u *user.User) error {
	query := `UPDATE users SET login = $2, email = $3, phone = $4, name = $5, surname = $6, about = $7 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		u.ID, u.Login, u.Email, nullable(u.Phone), nullable(u.Name), nullable(u.Surname), nullable(u.About))
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return checkAffected(res)
}

func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return checkAffected(res)
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return checkAffected(res)
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
