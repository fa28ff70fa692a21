package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"letthemcook/internal/token"
	"letthemcook/internal/token/repository"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestGate() (*Gate, *token.Manager, *testClock) {
	clock := &testClock{now: time.Now()}
	codec := token.NewCodec("gate-test-secret", 24*time.Hour, 30*24*time.Hour)
	manager := token.NewManager(codec, repository.NewMemoryTokenRepository(), token.WithNow(clock.Now))
	return NewGate(manager), manager, clock
}

func protectedEcho(gate *Gate) http.Handler {
	return gate.RequireAccess(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := UserID(r.Context())
		w.Write([]byte(id))
	}))
}

func doRequest(handler http.Handler, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if value != "" {
		req.Header.Set(header, value)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRequireAccessMissingToken(t *testing.T) {
	gate, _, _ := newTestGate()
	handler := protectedEcho(gate)

	rec := doRequest(handler, AccessHeader, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// Заголовок без схемы Bearer равносилен отсутствию токена.
func TestRequireAccessWrongScheme(t *testing.T) {
	gate, _, _ := newTestGate()
	handler := protectedEcho(gate)

	for _, value := range []string{"Token abc", "Bearer", "Bearer ", "abc"} {
		rec := doRequest(handler, AccessHeader, value)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "header: %q", value)
	}
}

func TestRequireAccessInvalidToken(t *testing.T) {
	gate, _, _ := newTestGate()
	handler := protectedEcho(gate)

	rec := doRequest(handler, AccessHeader, "Bearer not-a-real-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAccessExpiredToken(t *testing.T) {
	gate, manager, clock := newTestGate()
	handler := protectedEcho(gate)

	access, err := manager.EnsureAccess(context.Background(), "user-1")
	require.NoError(t, err)

	clock.Advance(25 * time.Hour)

	rec := doRequest(handler, AccessHeader, "Bearer "+access)
	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestRequireAccessValidToken(t *testing.T) {
	gate, manager, _ := newTestGate()
	handler := protectedEcho(gate)

	access, err := manager.EnsureAccess(context.Background(), "user-1")
	require.NoError(t, err)

	rec := doRequest(handler, AccessHeader, "Bearer "+access)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())
}

// Refresh-строка в Authorization — чужой вид токена, а не просроченный.
func TestRequireAccessRejectsRefreshString(t *testing.T) {
	gate, manager, _ := newTestGate()
	handler := protectedEcho(gate)

	refresh, err := manager.EnsureRefresh(context.Background(), "user-1")
	require.NoError(t, err)

	rec := doRequest(handler, AccessHeader, "Bearer "+refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckRefresh(t *testing.T) {
	gate, manager, clock := newTestGate()

	refresh, err := manager.EnsureRefresh(context.Background(), "user-1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/check_rt", nil)
	req.Header.Set(RefreshHeader, "Bearer "+refresh)

	res := gate.CheckRefresh(req)
	assert.Equal(t, StatusAuthenticated, res.Status)
	assert.Equal(t, "user-1", res.UserID)

	req.Header.Del(RefreshHeader)
	res = gate.CheckRefresh(req)
	assert.Equal(t, StatusMissing, res.Status)

	clock.Advance(31 * 24 * time.Hour)
	req.Header.Set(RefreshHeader, "Bearer "+refresh)
	res = gate.CheckRefresh(req)
	assert.Equal(t, StatusExpired, res.Status)
}
