package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"letthemcook/internal/review"
)

type PostgresReviewRepository struct {
	db *sql.DB
}

func NewPostgresReviewRepository(db *sql.DB) *PostgresReviewRepository {
	return &PostgresReviewRepository{db: db}
}

func (r *PostgresReviewRepository) Create(ctx context.Context, rev *review.Review) error {
	query := `INSERT INTO reviews (id, author_id, recipe_id, text, created_at)
	          VALUES ($1, $2, $3, $4, NOW()) RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		rev.ID, rev.AuthorID, rev.RecipeID, rev.Text).Scan(&rev.CreatedAt)
	if err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

func (r *PostgresReviewRepository) GetByID(ctx context.Context, id string) (*review.Review, error) {
	rev := &review.Review{}
	query := `SELECT id, author_id, recipe_id, text, likes, created_at FROM reviews WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rev.ID, &rev.AuthorID, &rev.RecipeID, &rev.Text, &rev.Likes, &rev.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, review.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}

	return rev, nil
}

func (r *PostgresReviewRepository) ListByRecipe(ctx context.Context, recipeID string) ([]review.Review, error) {
	query := `SELECT id, author_id, recipe_id, text, likes, created_at
	          FROM reviews WHERE recipe_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []review.Review
	for rows.Next() {
		var rev review.Review
		if err := rows.Scan(&rev.ID, &rev.AuthorID, &rev.RecipeID, &rev.Text, &rev.Likes, &rev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, rev)
	}

	return reviews, rows.Err()
}

func (r *PostgresReviewRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return review.ErrNotFound
	}
	return nil
}
