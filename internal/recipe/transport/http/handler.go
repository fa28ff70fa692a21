package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"letthemcook/internal/recipe"
	"letthemcook/internal/recipe/service"
	"letthemcook/pkg/middleware"
)

var validate = validator.New()

type Handler struct {
	recipes *service.RecipeService
}

func NewHandler(recipes *service.RecipeService) *Handler {
	return &Handler{recipes: recipes}
}

type recipeRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description,omitempty" validate:"omitempty,max=5000"`
	CookingTime int64  `json:"cooking_time,omitempty" validate:"omitempty,min=0"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		middleware.HandleValidationError(w, err, "")
		return
	}

	rec, err := h.recipes.Create(r.Context(), userID, req.Name, req.Description, req.CookingTime)
	if err != nil {
		log.Error().Err(err).Msg("create recipe failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.recipes.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, recipe.ErrNotFound) {
		http.Error(w, "no such recipe", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("get recipe failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	recipes, err := h.recipes.List(r.Context(), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("list recipes failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, recipes)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		middleware.HandleValidationError(w, err, "")
		return
	}

	rec := &recipe.Recipe{
		ID:          chi.URLParam(r, "id"),
		Name:        req.Name,
		Description: req.Description,
		CookingTime: req.CookingTime,
	}

	err := h.recipes.Update(r.Context(), userID, rec)
	switch {
	case errors.Is(err, recipe.ErrNotFound):
		http.Error(w, "no such recipe", http.StatusNotFound)
	case errors.Is(err, service.ErrNotOwner):
		http.Error(w, "forbidden", http.StatusForbidden)
	case err != nil:
		log.Error().Err(err).Msg("update recipe failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	err := h.recipes.Delete(r.Context(), userID, chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, recipe.ErrNotFound):
		http.Error(w, "no such recipe", http.StatusNotFound)
	case errors.Is(err, service.ErrNotOwner):
		http.Error(w, "forbidden", http.StatusForbidden)
	case err != nil:
		log.Error().Err(err).Msg("delete recipe failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
