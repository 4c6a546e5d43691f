package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/asauntung/bumdes/internal/auth"
	"github.com/asauntung/bumdes/internal/models"
)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestTokenBucket(t *testing.T) {
	now := time.Now()
	tb := &tokenBucket{tokens: 2, last: now, rate: 2, burst: 2}
	assert.True(t, tb.take(now))
	assert.True(t, tb.take(now))
	assert.False(t, tb.take(now))
	assert.True(t, tb.take(now.Add(time.Second)))
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(1)(http.HandlerFunc(ok))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAuthAndRoles(t *testing.T) {
	tm := auth.NewTokenManager("a", "r", "bumdes-test", time.Minute, time.Hour)
	h := NewAuthMiddleware(tm).Auth(RequireRole(models.RoleDirector)(http.HandlerFunc(ok)))

	call := func(p models.Principal) int {
		access, _, _, err := tm.GeneratePair(p)
		assert.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, call(models.Principal{Username: "direktur", Role: models.RoleDirector}))
	assert.Equal(t, http.StatusForbidden, call(models.Principal{Username: "bendahara", Role: models.RoleTreasurer}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc", seen)
	assert.Equal(t, "abc", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
