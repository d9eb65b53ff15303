package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/virti310/cybersafe-sub000/internal/auth"
	"github.com/virti310/cybersafe-sub000/internal/config"
	"github.com/virti310/cybersafe-sub000/internal/credentials"
	"github.com/virti310/cybersafe-sub000/internal/notify"
	"github.com/virti310/cybersafe-sub000/internal/storage/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{Port: "0", CORSOrigins: []string{"https://admin.example.com"}}

	hasher, err := auth.NewPasswordHasher(auth.AlgorithmBcrypt, bcrypt.MinCost)
	require.NoError(t, err)
	tokens := auth.NewTokenManager("server-secret", "cybersafe-test", time.Hour)
	svc := credentials.NewService(memory.NewUserStore(), hasher, tokens, notify.NewLogNotifier(zerolog.Nop()), zerolog.Nop())

	return New(cfg, zerolog.Nop(), svc, tokens)
}

func TestServer_Routes(t *testing.T) {
	h := newTestServer(t).Handler()

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{name: "health", method: http.MethodGet, path: "/health", status: http.StatusOK},
		{name: "register", method: http.MethodPost, path: "/auth/register", body: `{"name":"Alice","email":"alice@example.com","password":"pw1"}`, status: http.StatusOK},
		{name: "login", method: http.MethodPost, path: "/auth/login", body: `{"email":"alice@example.com","password":"pw1"}`, status: http.StatusOK},
		{name: "forgot password via log notifier", method: http.MethodPost, path: "/auth/forgot-password", body: `{"email":"alice@example.com"}`, status: http.StatusOK},
		{name: "me requires token", method: http.MethodGet, path: "/auth/me", status: http.StatusUnauthorized},
		{name: "unknown route", method: http.MethodGet, path: "/reports", status: http.StatusNotFound},
		{name: "wrong method", method: http.MethodGet, path: "/auth/login", status: http.StatusMethodNotAllowed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestServer_CORSPreflight(t *testing.T) {
	h := newTestServer(t).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/auth/login", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://admin.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_Address(t *testing.T) {
	s := New(config.Config{Port: "9191"}, zerolog.Nop(), nil, auth.NewTokenManager("s", "i", time.Minute))
	assert.Equal(t, ":9191", s.inner.Addr)
}
