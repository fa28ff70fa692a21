package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrorResponse стандартный формат для ошибок валидации
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// ValidateRequest проверяет корректность запроса перед передачей его обработчику
func ValidateRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			contentType := r.Header.Get("Content-Type")
			if contentType != "" && !strings.Contains(contentType, "application/json") {
				writeError(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid Content-Type, expected application/json"})
				return
			}

			if r.ContentLength == 0 {
				writeError(w, http.StatusBadRequest, ErrorResponse{Error: "Request body cannot be empty"})
				return
			}
		}

		// Максимальный размер тела запроса (1MB)
		const maxSize = 1 << 20
		r.Body = http.MaxBytesReader(w, r.Body, maxSize)

		next.ServeHTTP(w, r)
	})
}

// HandleValidationError обрабатывает ошибки валидации и формирует ответ
func HandleValidationError(w http.ResponseWriter, err error, field string) {
	log.Debug().Err(err).Str("field", field).Msg("validation error")
	writeError(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Field: field})
}

func writeError(w http.ResponseWriter, status int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
