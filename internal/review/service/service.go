package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"letthemcook/internal/review"
)

var ErrNotAuthor = errors.New("not the review author")

type ReviewRepository interface {
	Create(ctx context.Context, rev *review.Review) error
	GetByID(ctx context.Context, id string) (*review.Review, error)
	ListByRecipe(ctx context.Context, recipeID string) ([]review.Review, error)
	Delete(ctx context.Context, id string) error
}

type ReviewService struct {
	repo ReviewRepository
}

func NewReviewService(repo ReviewRepository) *ReviewService {
	return &ReviewService{repo: repo}
}

func (s *ReviewService) Create(ctx context.Context, authorID, recipeID, text string) (*review.Review, error) {
	rev := &review.Review{
		ID:       uuid.NewString(),
		AuthorID: authorID,
		RecipeID: recipeID,
		Text:     text,
	}

	if err := s.repo.Create(ctx, rev); err != nil {
		return nil, err
	}

	return rev, nil
}

func (s *ReviewService) ListByRecipe(ctx context.Context, recipeID string) ([]review.Review, error) {
	return s.repo.ListByRecipe(ctx, recipeID)
}

func (s *ReviewService) Delete(ctx context.Context, requesterID, id string) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.AuthorID != requesterID {
		return ErrNotAuthor
	}

	return s.repo.Delete(ctx, id)
}
