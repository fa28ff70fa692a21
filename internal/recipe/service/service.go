package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"letthemcook/internal/recipe"
)

// ErrNotOwner — рецепт менять может только его владелец.
var ErrNotOwner = errors.New("not the recipe owner")

type RecipeRepository interface {
	Create(ctx context.Context, rec *recipe.Recipe) error
	GetByID(ctx context.Context, id string) (*recipe.Recipe, error)
	List(ctx context.Context, limit, offset int) ([]recipe.Recipe, error)
	Update(ctx context.Context, rec *recipe.Recipe) error
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type RecipeService struct {
	repo RecipeRepository
}

func NewRecipeService(repo RecipeRepository) *RecipeService {
	return &RecipeService{repo: repo}
}

func (s *RecipeService) Create(ctx context.Context, ownerID, name, description string, cookingTime int64) (*recipe.Recipe, error) {
	rec := &recipe.Recipe{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		CookingTime: cookingTime,
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	return rec, nil
}

func (s *RecipeService) Get(ctx context.Context, id string) (*recipe.Recipe, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Счётчик просмотров обновляется по факту чтения, ошибка не фатальна.
	_ = s.repo.IncrementViews(ctx, id)

	return rec, nil
}

func (s *RecipeService) List(ctx context.Context, limit, offset int) ([]recipe.Recipe, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *RecipeService) Update(ctx context.Context, requesterID string, rec *recipe.Recipe) error {
	existing, err := s.repo.GetByID(ctx, rec.ID)
	if err != nil {
		return err
	}
	if existing.OwnerID != requesterID {
		return ErrNotOwner
	}

	return s.repo.Update(ctx, rec)
}

func (s *RecipeService) Delete(ctx context.Context, requesterID, id string) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.OwnerID != requesterID {
		return ErrNotOwner
	}

	return s.repo.Delete(ctx, id)
}
