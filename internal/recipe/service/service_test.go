package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"letthemcook/internal/recipe"
)

// stubRecipeRepo — карта вместо базы, достаточно для проверок сервиса.
type stubRecipeRepo struct {
	recipes map[string]recipe.Recipe
	views   map[string]int
}

func newStubRecipeRepo() *stubRecipeRepo {
	return &stubRecipeRepo{
		recipes: make(map[string]recipe.Recipe),
		views:   make(map[string]int),
	}
}

func (r *stubRecipeRepo) Create(ctx context.Context, rec *recipe.Recipe) error {
	r.recipes[rec.ID] = *rec
	return nil
}

func (r *stubRecipeRepo) GetByID(ctx context.Context, id string) (*recipe.Recipe, error) {
	rec, ok := r.recipes[id]
	if !ok {
		return nil, recipe.ErrNotFound
	}
	copied := rec
	return &copied, nil
}

func (r *stubRecipeRepo) List(ctx context.Context, limit, offset int) ([]recipe.Recipe, error) {
	out := make([]recipe.Recipe, 0, len(r.recipes))
	for _, rec := range r.recipes {
		out = append(out, rec)
	}
	return out, nil
}

func (r *stubRecipeRepo) Update(ctx context.Context, rec *recipe.Recipe) error {
	if _, ok := r.recipes[rec.ID]; !ok {
		return recipe.ErrNotFound
	}
	r.recipes[rec.ID] = *rec
	return nil
}

func (r *stubRecipeRepo) IncrementViews(ctx context.Context, id string) error {
	r.views[id]++
	return nil
}

func (r *stubRecipeRepo) Delete(ctx context.Context, id string) error {
	delete(r.recipes, id)
	return nil
}

func TestCreateAndGetCountsViews(t *testing.T) {
	repo := newStubRecipeRepo()
	svc := NewRecipeService(repo)
	ctx := context.Background()

	rec, err := svc.Create(ctx, "owner-1", "Beef Wellington", "wrap it in pastry", 150)
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)

	got, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Beef Wellington", got.Name)
	assert.Equal(t, 1, repo.views[rec.ID])
}

func TestUpdateRequiresOwnership(t *testing.T) {
	repo := newStubRecipeRepo()
	svc := NewRecipeService(repo)
	ctx := context.Background()

	rec, err := svc.Create(ctx, "owner-1", "Beef Wellington", "wrap it in pastry", 150)
	require.NoError(t, err)

	rec.Name = "Stolen Wellington"
	err = svc.Update(ctx, "intruder", rec)
	assert.ErrorIs(t, err, ErrNotOwner)

	rec.Name = "Better Wellington"
	require.NoError(t, svc.Update(ctx, "owner-1", rec))

	got, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Better Wellington", got.Name)
}

func TestDeleteRequiresOwnership(t *testing.T) {
	repo := newStubRecipeRepo()
	svc := NewRecipeService(repo)
	ctx := context.Background()

	rec, err := svc.Create(ctx, "owner-1", "Beef Wellington", "wrap it in pastry", 150)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, "intruder", rec.ID), ErrNotOwner)
	require.NoError(t, svc.Delete(ctx, "owner-1", rec.ID))

	_, err = svc.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, recipe.ErrNotFound)
}

func TestListClampsPagination(t *testing.T) {
	repo := newStubRecipeRepo()
	svc := NewRecipeService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, "owner-1", "Beef Wellington", "wrap it in pastry", 150)
	require.NoError(t, err)

	// некорректные значения не должны ронять запрос
	out, err := svc.List(ctx, -5, -10)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}
