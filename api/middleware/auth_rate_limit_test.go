package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/marketplace-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
)

type fakeWindowLimiter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newFakeWindowLimiter() *fakeWindowLimiter {
	return &fakeWindowLimiter{counts: map[string]int64{}}
}

func (f *fakeWindowLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func loginRequest(email, remote string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"`+email+`","password":"secret"}`))
	req.RemoteAddr = remote
	return req
}

func TestAuthRateLimitKeepsBodyForHandler(t *testing.T) {
	policy := RateLimitPolicy{Name: "login", Window: time.Minute, IPLimit: 2, EmailLimit: 2}
	handler := AuthRateLimit(policy, newFakeWindowLimiter(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"email":"tester@example.com"`)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("tester@example.com", "1.2.3.4:5678"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRateLimitEmailLimitIgnoresCase(t *testing.T) {
	policy := RateLimitPolicy{Name: "login", Window: time.Minute, EmailLimit: 2}
	handler := AuthRateLimit(policy, newFakeWindowLimiter(), nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	emails := []string{"blocked@example.com", "Blocked@Example.com", " BLOCKED@example.com"}
	var rec *httptest.ResponseRecorder
	for i, email := range emails {
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest(email, "10.0.0."+string(rune('1'+i))+":80"))
	}

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, string(pkgerrors.CodeRateLimit), payload.Error.Code)
}

func TestAuthRateLimitIPLimitUsesForwardedFor(t *testing.T) {
	policy := RateLimitPolicy{Name: "register", Window: time.Minute, IPLimit: 1}
	handler := AuthRateLimit(policy, newFakeWindowLimiter(), nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	codes := make([]int, 0, 2)
	for _, remote := range []string{"5.6.7.8:1234", "9.9.9.9:1"} {
		req := loginRequest("a@example.com", remote)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestAuthRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	limiter := newFakeWindowLimiter()
	handler := AuthRateLimit(RegisterRateLimit(config.AuthRateLimitConfig{}), limiter, nil)(next)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest("a@example.com", "1.1.1.1:1"))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Empty(t, limiter.counts)
}

func TestRateLimitPoliciesFromConfig(t *testing.T) {
	cfg := config.AuthRateLimitConfig{
		LoginWindow:        time.Minute,
		LoginIPLimit:       20,
		LoginEmailLimit:    5,
		RegisterWindow:     5 * time.Minute,
		RegisterIPLimit:    10,
		RegisterEmailLimit: 3,
	}
	assert.Equal(t, RateLimitPolicy{Name: "login", Window: time.Minute, IPLimit: 20, EmailLimit: 5}, LoginRateLimit(cfg))
	assert.Equal(t, RateLimitPolicy{Name: "register", Window: 5 * time.Minute, IPLimit: 10, EmailLimit: 3}, RegisterRateLimit(cfg))
}
