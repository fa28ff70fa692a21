package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"letthemcook/internal/token"
)

type contextKey string

// UserIDKey — ключ контекста с id аутентифицированного пользователя.
const UserIDKey contextKey = "userID"

// Access-токен приходит в Authorization, refresh — в своём заголовке.
const (
	AccessHeader  = "Authorization"
	RefreshHeader = "Refresh-Token"
)

// AuthStatus — исход проверки bearer-значения из запроса.
type AuthStatus int

const (
	StatusAuthenticated AuthStatus = iota
	StatusMissing
	StatusInvalid
	StatusExpired
	StatusUnavailable
)

type AuthResult struct {
	Status AuthStatus
	UserID string
	Raw    string
}

// Gate — единая точка проверки входящих токенов перед роутами.
type Gate struct {
	tokens *token.Manager
}

func NewGate(tokens *token.Manager) *Gate {
	return &Gate{tokens: tokens}
}

func (g *Gate) CheckAccess(r *http.Request) AuthResult {
	return g.check(r, AccessHeader, token.KindAccess)
}

func (g *Gate) CheckRefresh(r *http.Request) AuthResult {
	return g.check(r, RefreshHeader, token.KindRefresh)
}

func (g *Gate) check(r *http.Request, header string, kind token.Kind) AuthResult {
	raw := bearerValue(r.Header.Get(header))
	if raw == "" {
		return AuthResult{Status: StatusMissing}
	}

	userID, err := g.tokens.Validate(r.Context(), raw, kind)
	switch {
	case err == nil:
		return AuthResult{Status: StatusAuthenticated, UserID: userID, Raw: raw}
	case errors.Is(err, token.ErrExpiredToken):
		return AuthResult{Status: StatusExpired, Raw: raw}
	case errors.Is(err, token.ErrInvalidToken):
		log.Warn().Str("kind", string(kind)).Msg("invalid token presented")
		return AuthResult{Status: StatusInvalid, Raw: raw}
	default:
		log.Error().Err(err).Msg("token store unavailable")
		return AuthResult{Status: StatusUnavailable, Raw: raw}
	}
}

// bearerValue достаёт значение из заголовка вида "Bearer <token>".
func bearerValue(header string) string {
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return ""
	}

	return parts[1]
}

// RequireAccess пропускает запрос к обработчику только с живым access-токеном
// и кладёт id пользователя в контекст. Отсутствие токена — ошибка клиента (400),
// просроченный отличается от невалидного (410 против 401), чтобы клиент знал,
// что достаточно refresh, а не полного логина.
func (g *Gate) RequireAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := g.CheckAccess(r)
		switch res.Status {
		case StatusAuthenticated:
			ctx := context.WithValue(r.Context(), UserIDKey, res.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		case StatusMissing:
			log.Debug().Str("path", r.URL.Path).Msg("no access token provided")
			http.Error(w, "no access token provided", http.StatusBadRequest)
		case StatusInvalid:
			http.Error(w, "invalid access token", http.StatusUnauthorized)
		case StatusExpired:
			http.Error(w, "access token expired", http.StatusGone)
		default:
			http.Error(w, "token store unavailable", http.StatusServiceUnavailable)
		}
	})
}

// UserID возвращает id пользователя, положенный RequireAccess.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok
}
