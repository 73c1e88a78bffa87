package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pedium/internal/config"
	"pedium/internal/services"
)

func authConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:     "test-secret",
		JWTExpiry:     time.Hour,
		SessionCookie: "pedium_session",
	}
}

func signSession(t *testing.T, secret, userID, name string, expiry time.Duration) string {
	t.Helper()
	claims := services.SessionClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func identityProbe(gotUserID, gotName *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotUserID = GetUserID(r.Context())
		*gotName = GetUserName(r.Context())
	})
}

func TestAuthAttachesIdentityFromValidCookie(t *testing.T) {
	cfg := authConfig()
	var userID, name string
	handler := Auth(cfg, zap.NewNop())(identityProbe(&userID, &name))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cfg.SessionCookie, Value: signSession(t, cfg.JWTSecret, "u1", "Ada", time.Hour)})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "u1", userID)
	assert.Equal(t, "Ada", name)
}

func TestAuthIgnoresMissingCookie(t *testing.T) {
	var userID, name string
	handler := Auth(authConfig(), zap.NewNop())(identityProbe(&userID, &name))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, userID, "anonymous requests pass through without identity")
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	cfg := authConfig()
	var userID, name string
	handler := Auth(cfg, zap.NewNop())(identityProbe(&userID, &name))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cfg.SessionCookie, Value: signSession(t, cfg.JWTSecret, "u1", "Ada", -time.Hour)})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Empty(t, userID)
}

func TestAuthRejectsForgedToken(t *testing.T) {
	cfg := authConfig()
	var userID, name string
	handler := Auth(cfg, zap.NewNop())(identityProbe(&userID, &name))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cfg.SessionCookie, Value: signSession(t, "wrong-secret", "u1", "Ada", time.Hour)})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Empty(t, userID)
}

func TestRequireAuthBlocksAnonymous(t *testing.T) {
	handler := RequireAuth()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/write", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	var seen string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDHonorsUpstreamHeader(t *testing.T) {
	var seen string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-42")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "upstream-42", seen)
}
