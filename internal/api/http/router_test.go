package http_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/albumhub/internal/api/domain"
	apihttp "github.com/aussiebroadwan/albumhub/internal/api/http"
)

func TestRateLimitPerUser(t *testing.T) {
	s := newTestServer(t, 2)
	s.addUser(t, "alice", "correct-horse", domain.RoleUser)
	s.addUser(t, "bob", "correct-horse", domain.RoleUser)

	alice := s.login(t, "alice", "correct-horse")
	bob := s.login(t, "bob", "correct-horse")

	for i := range 2 {
		rec := s.do(t, http.MethodGet, "/api/v1/auth/me", bearer(alice.AccessToken), nil)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec := s.do(t, http.MethodGet, "/api/v1/auth/me", bearer(alice.AccessToken), nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Empty(t, rec.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, map[string]any{"message": "Rate limit exceeded. Maximum 2 requests per minute."}, body)

	// bob's bucket is separate
	rec = s.do(t, http.MethodGet, "/api/v1/auth/me", bearer(bob.AccessToken), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// public routes are not keyed
	for range 3 {
		s.login(t, "alice", "correct-horse")
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, 100)

	rec := s.do(t, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var live apihttp.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &live))
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	rec = s.do(t, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var ready apihttp.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ready))
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)

	require.NoError(t, s.store.Close())
	rec = s.do(t, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t, 100)

	rec := s.do(t, http.MethodGet, "/livez", "", nil)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestSwaggerDoc(t *testing.T) {
	s := newTestServer(t, 100)

	rec := s.do(t, http.MethodGet, "/swagger/doc.json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/api/v1/auth/login")
}
