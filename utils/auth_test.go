package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type revokedSet map[string]bool

func (r revokedSet) IsRevoked(_ context.Context, id string) (bool, error) {
	return r[id], nil
}

func TestPasswordHash(t *testing.T) {
	PasswordCost = bcrypt.MinCost
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("other", hash))
}

func TestTokenRoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", time.Hour)
	require.NoError(t, err)
	userID := uuid.New()

	token, claims, err := issuer.GenerateToken(userID, "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	parsed, err := issuer.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), parsed.Subject)
	assert.Equal(t, "alice", parsed.Username)
	assert.Equal(t, claims.ID, parsed.ID)

	other, err := NewTokenIssuer("another-secret", time.Hour)
	require.NoError(t, err)
	_, err = other.ValidateToken(token)
	assert.Error(t, err)

	defaulted, err := NewTokenIssuer("secret", 0)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, defaulted.Expiry())

	_, err = NewTokenIssuer("", time.Hour)
	assert.Error(t, err)
}

func newAuthRouter(t *testing.T, issuer *TokenIssuer, revoked RevocationChecker) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/me", AuthMiddleware(issuer, "token", revoked), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUsername))
	})
	r.GET("/page/", SessionMiddleware(issuer, "token", revoked), LoginRequired(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUsername))
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", time.Hour)
	require.NoError(t, err)
	revoked := revokedSet{}
	r := newAuthRouter(t, issuer, revoked)

	token, claims, err := issuer.GenerateToken(uuid.New(), "alice")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	revoked[claims.ID] = true
	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Authentication credentials were not provided or are invalid","type":"AUTHENTICATION"}`, rec.Body.String())
}

func TestLoginRequiredRedirects(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", time.Hour)
	require.NoError(t, err)
	r := newAuthRouter(t, issuer, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/page/?x=1", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login/?next=%2Fpage%2F%3Fx%3D1", rec.Header().Get("Location"))

	token, _, err := issuer.GenerateToken(uuid.New(), "bob")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/page/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bob", rec.Body.String())
}

func TestSafeRedirect(t *testing.T) {
	assert.Equal(t, "/reservations/", SafeRedirect("/reservations/", "/"))
	assert.Equal(t, "/", SafeRedirect("", "/"))
	assert.Equal(t, "/", SafeRedirect("https://evil.example/", "/"))
	assert.Equal(t, "/", SafeRedirect("//evil.example/", "/"))
	assert.Equal(t, "/", SafeRedirect("/\\evil.example/", "/"))
}
