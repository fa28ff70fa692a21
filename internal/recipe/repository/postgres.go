package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"letthemcook/internal/recipe"
)

type PostgresRecipeRepository struct {
	db *sql.DB
}

func NewPostgresRecipeRepository(db *sql.DB) *PostgresRecipeRepository {
	return &PostgresRecipeRepository{db: db}
}

func (r *PostgresRecipeRepository) Create(ctx context.Context, rec *recipe.Recipe) error {
	query := `INSERT INTO recipes (id, owner_id, name, description, cooking_time, published_at)
	          VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING published_at`

	err := r.db.QueryRowContext(ctx, query,
		rec.ID, rec.OwnerID, rec.Name, rec.Description, rec.CookingTime).Scan(&rec.PublishedAt)
	if err != nil {
		return fmt.Errorf("create recipe: %w", err)
	}
	return nil
}

func (r *PostgresRecipeRepository) GetByID(ctx context.Context, id string) (*recipe.Recipe, error) {
	rec := &recipe.Recipe{}
	query := `SELECT id, owner_id, name, description, cooking_time, likes, views, published_at
	          FROM recipes WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.OwnerID, &rec.Name, &rec.Description,
		&rec.CookingTime, &rec.Likes, &rec.Views, &rec.PublishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, recipe.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	return rec, nil
}

func (r *PostgresRecipeRepository) List(ctx context.Context, limit, offset int) ([]recipe.Recipe, error) {
	query := `SELECT id, owner_id, name, description, cooking_time, likes, views, published_at
	          FROM recipes ORDER BY published_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []recipe.Recipe
	for rows.Next() {
		var rec recipe.Recipe
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.Name, &rec.Description,
			&rec.CookingTime, &rec.Likes, &rec.Views, &rec.PublishedAt); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, rec)
	}

	return recipes, rows.Err()
}

func (r *PostgresRecipeRepository) Update(ctx context.Context, rec *recipe.Recipe) error {
	query := `UPDATE recipes SET name = $2, description = $3, cooking_time = $4 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, rec.ID, rec.Name, rec.Description, rec.CookingTime)
	if err != nil {
		return fmt.Errorf("update recipe: %w", err)
	}
	return checkAffected(res)
}

func (r *PostgresRecipeRepository) IncrementViews(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE recipes SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

func (r *PostgresRecipeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return checkAffected(res)
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return recipe.ErrNotFound
	}
	return nil
}
