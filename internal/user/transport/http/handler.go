package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"letthemcook/internal/token"
	"letthemcook/internal/user"
	"letthemcook/internal/user/service"
	"letthemcook/pkg/middleware"
)

var validate = validator.New()

type Handler struct {
	users  *service.UserService
	tokens *token.Manager
	gate   *middleware.Gate
}

func NewHandler(users *service.UserService, tokens *token.Manager, gate *middleware.Gate) *Handler {
	return &Handler{
		users:  users,
		tokens: tokens,
		gate:   gate,
	}
}

type registerRequest struct {
	Login    string `json:"login" validate:"required,min=3,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Login    string `json:"login,omitempty" validate:"omitempty,min=3,max=255"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type updateUserRequest struct {
	Login   string `json:"login" validate:"required,min=3,max=255"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty"`
	Name    string `json:"name,omitempty"`
	Surname string `json:"surname,omitempty"`
	About   string `json:"about,omitempty" validate:"omitempty,max=2000"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required,min=6,max=72"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

// tokenResponse — ответ всех auth-ручек: пользователь и обе строки токенов.
type tokenResponse struct {
	User         *user.User `json:"user"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		middleware.HandleValidationError(w, err, "")
		return
	}

	u, err := h.users.Register(r.Context(), req.Login, req.Email, req.Password)
	if errors.Is(err, service.ErrUserExists) {
		http.Error(w, "user already exists", http.StatusConflict)
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("register failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	access, refresh, err := h.tokens.IssuePair(r.Context(), u.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", u.ID).Msg("issue token pair failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{User: u, AccessToken: access, RefreshToken: refresh})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		middleware.HandleValidationError(w, err, "")
		return
	}
	if req.Login == "" && req.Email == "" {
		http.Error(w, "login or email required", http.StatusBadRequest)
		return
	}

	u, err := h.users.Login(r.Context(), req.Login, req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCreds) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("login failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// Живые токены переиспользуются, отсутствующие или просроченные — перевыпускаются.
	access, err := h.tokens.EnsureAccess(r.Context(), u.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", u.ID).Msg("ensure access token failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	refresh, err := h.tokens.EnsureRefresh(r.Context(), u.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", u.ID).Msg("ensure refresh token failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{User: u, AccessToken: access, RefreshToken: refresh})
}

// CheckAccessToken — проба живости access-токена без побочных эффектов.
func (h *Handler) CheckAccessToken(w http.ResponseWriter, r *http.Request) {
	respondAuthResult(w, h.gate.CheckAccess(r))
}

func (h *Handler) CheckRefreshToken(w http.ResponseWriter, r *http.Request) {
	respondAuthResult(w, h.gate.CheckRefresh(r))
}

func respondAuthResult(w http.ResponseWriter, res middleware.AuthResult) {
	switch res.Status {
	case middleware.StatusAuthenticated:
		w.WriteHeader(http.StatusOK)
	case middleware.StatusMissing:
		http.Error(w, "no token provided", http.StatusBadRequest)
	case middleware.StatusInvalid:
		http.Error(w, "invalid token", http.StatusUnauthorized)
	case middleware.StatusExpired:
		http.Error(w, "token expired", http.StatusGone)
	default:
		http.Error(w, "token store unavailable", http.StatusServiceUnavailable)
	}
}

// RefreshTokens перевыпускает мёртвую часть пары независимо для каждой стороны
// и возвращает обе актуальные строки, чтобы клиент обновил их без полного логина.
func (h *Handler) RefreshTokens(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "no user id provided", http.StatusBadRequest)
		return
	}

	exists, err := h.users.Exists(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("user lookup failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !exists {
		http.Error(w, "user does not exist", http.StatusNotFound)
		return
	}

	accessRes := h.gate.CheckAccess(r)
	refreshRes := h.gate.CheckRefresh(r)
	if accessRes.Status == middleware.StatusUnavailable || refreshRes.Status == middleware.StatusUnavailable {
		http.Error(w, "token store unavailable", http.StatusServiceUnavailable)
		return
	}

	access := accessRes.Raw
	if accessRes.Status != middleware.StatusAuthenticated || accessRes.UserID != userID {
		access, err = h.tokens.EnsureAccess(r.Context(), userID)
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("ensure access token failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}

	refresh := refreshRes.Raw
	if refreshRes.Status != middleware.StatusAuthenticated || refreshRes.UserID != userID {
		refresh, err = h.tokens.EnsureRefresh(r.Context(), userID)
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("ensure refresh token failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}

	u, err := h.users.Get(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("user lookup failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{User: u, AccessToken: access, RefreshToken: refresh})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	u, err := h.users.Get(r.Context(), id)
	if errors.Is(err, user.ErrNotFound) {
		http.Error(w, "no such user", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("get user failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !ownRequest(w, r, id) {
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		middleware.HandleValidationError(w, err, "")
		return
	}

	u := &user.User{
		ID:      id,
		Login:   req.Login,
		Email:   req.Email,
		Phone:   req.Phone,
		Name:    req.Name,
		Surname: req.Surname,
		About:   req.About,
	}

	if err := h.users.Update(r.Context(), u); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			http.Error(w, "no such user", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Msg("update user failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !ownRequest(w, r, id) {
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		middleware.HandleValidationError(w, err, "")
		return
	}

	err := h.users.ChangePassword(r.Context(), id, req.OldPassword, req.NewPassword)
	if errors.Is(err, service.ErrInvalidCreds) {
		http.Error(w, "wrong password", http.StatusUnauthorized)
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("change password failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// DeleteUser удаляет аккаунт вместе с записями токенов — единственный путь,
// по которому токены удаляются, а не перезаписываются.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !ownRequest(w, r, id) {
		return
	}

	if err := h.tokens.Revoke(r.Context(), id); err != nil {
		log.Error().Err(err).Msg("revoke tokens failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			http.Error(w, "no such user", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Msg("delete user failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// ownRequest сверяет id из пути с пользователем из контекста: владение
// ресурсом проверяет роут, а не гейт.
func ownRequest(w http.ResponseWriter, r *http.Request, id string) bool {
	userID, ok := middleware.UserID(r.Context())
	if !ok || userID != id {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
