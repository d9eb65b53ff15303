package handlers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virti310/cybersafe-sub000/internal/auth"
	"github.com/virti310/cybersafe-sub000/internal/credentials"
	"github.com/virti310/cybersafe-sub000/internal/storage/postgres"
)

var codePattern = regexp.MustCompile(`\b[0-9]{6}\b`)

// TestAuthIntegration walks register, login and OTP recovery against a live database.
func TestAuthIntegration(t *testing.T) {
	if os.Getenv("RUN_AUTH_INTEGRATION") != "true" {
		t.Skip("set RUN_AUTH_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := mustGetEnv(t, "DATABASE_URL")

	ctx := context.Background()
	store, err := postgres.NewUserStore(ctx, dbURL)
	require.NoError(t, err, "init store")
	defer store.Close()

	tokens := auth.NewTokenManager(mustGetEnv(t, "JWT_SECRET"), envOr("JWT_ISSUER", "cybersafe-auth"), mustGetTTL(t))
	hasher, err := auth.NewPasswordHasher(envOr("PASSWORD_HASH_ALGORITHM", auth.AlgorithmBcrypt), 0)
	require.NoError(t, err)

	mail := &recordingNotifier{}
	svc := credentials.NewService(store, hasher, tokens, mail, zerolog.Nop())
	api := &testAPI{handler: newRouter(svc, tokens), store: store, mail: mail, tokens: tokens}

	email := fmt.Sprintf("apitest_%d@example.com", time.Now().UnixNano())
	password := fmt.Sprintf("Pass!%d", time.Now().UnixNano())

	registered := api.register(t, email, password)
	assert.Equal(t, email, registered.User.Email)

	rec := api.do(t, http.MethodPost, "/auth/login", map[string]string{"email": strings.ToUpper(email), "password": password}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/auth/forgot-password", map[string]string{"email": email}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotEmpty(t, mail.bodies)
	code := codePattern.FindString(mail.bodies[len(mail.bodies)-1])
	require.NotEmpty(t, code, "otp missing from message")

	rec = api.do(t, http.MethodPost, "/auth/verify-otp", map[string]string{"email": email, "otp": code}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/auth/reset-password", map[string]string{"email": email, "otp": code, "newPassword": password + "-new"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/auth/reset-password", map[string]string{"email": email, "otp": code, "newPassword": "again"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password + "-new"}, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	t.Logf("created user %s (id=%d) and completed password recovery", email, registered.User.ID)
}

func mustGetEnv(t *testing.T, key string) string {
	t.Helper()
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		t.Fatalf("%s is required", key)
	}
	return val
}

func envOr(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func mustGetTTL(t *testing.T) time.Duration {
	t.Helper()
	minutesStr := envOr("JWT_TTL_MINUTES", "60")
	minutes, err := strconv.Atoi(minutesStr)
	if err != nil || minutes <= 0 {
		t.Fatalf("invalid JWT_TTL_MINUTES value: %q", minutesStr)
	}
	return time.Duration(minutes) * time.Minute
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}
