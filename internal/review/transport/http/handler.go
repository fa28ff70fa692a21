package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"letthemcook/internal/review"
	"letthemcook/internal/review/service"
	"letthemcook/pkg/middleware"
)

var validate = validator.New()

type Handler struct {
	reviews *service.ReviewService
}

func NewHandler(reviews *service.ReviewService) *Handler {
	return &Handler{reviews: reviews}
}

type reviewRequest struct {
	Text string `json:"text" validate:"required,min=1,max=5000"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		middleware.HandleValidationError(w, err, "text")
		return
	}

	rev, err := h.reviews.Create(r.Context(), userID, chi.URLParam(r, "id"), req.Text)
	if err != nil {
		log.Error().Err(err).Msg("create review failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(rev)
}

func (h *Handler) ListByRecipe(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListByRecipe(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		log.Error().Err(err).Msg("list reviews failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reviews)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	err := h.reviews.Delete(r.Context(), userID, chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, review.ErrNotFound):
		http.Error(w, "no such review", http.StatusNotFound)
	case errors.Is(err, service.ErrNotAuthor):
		http.Error(w, "forbidden", http.StatusForbidden)
	case err != nil:
		log.Error().Err(err).Msg("delete review failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusOK)
	}
}
