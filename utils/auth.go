// utils/auth.go
package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Keys under which the auth middlewares store the caller in the gin context
const (
	ContextUserID      = "userId"
	ContextUsername    = "username"
	ContextTokenID     = "tokenId"
	ContextTokenExpiry = "tokenExpiry"
)

// PasswordCost is the bcrypt work factor. Tests lower it.
var PasswordCost = 14

// Hash password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	return string(bytes), err
}

// Check password
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Claims is the payload of session and API tokens.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// RevocationChecker reports whether a token id was revoked by logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// TokenIssuer signs and validates HS256 tokens.
type TokenIssuer struct {
	secret []byte
	expiry time.Duration
}

func NewTokenIssuer(secret string, expiry time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("JWT_SECRET not set")
	}
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), expiry: expiry}, nil
}

// Expiry returns the lifetime of issued tokens.
func (t *TokenIssuer) Expiry() time.Duration {
	return t.expiry
}

// Generate JWT token
func (t *TokenIssuer) GenerateToken(userID uuid.UUID, username string) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// ValidateToken parses the token and checks its signature and expiry.
func (t *TokenIssuer) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, errors.New("invalid token subject")
	}
	return claims, nil
}

// TokenFromRequest prefers the Authorization header and falls back to the session cookie.
func TokenFromRequest(c *gin.Context, cookieName string) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.ToUpper(header[0:6]) == "BEARER" {
		return strings.TrimSpace(header[7:])
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie
	}
	return ""
}

func (t *TokenIssuer) authenticate(c *gin.Context, cookieName string, revoked RevocationChecker) (*Claims, error) {
	tokenString := TokenFromRequest(c, cookieName)
	if tokenString == "" {
		return nil, errors.New("authorization required")
	}

	claims, err := t.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	if revoked != nil {
		isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if isRevoked {
			return nil, errors.New("token revoked")
		}
	}
	return claims, nil
}

func setIdentity(c *gin.Context, claims *Claims) {
	c.Set(ContextUserID, uuid.MustParse(claims.Subject))
	c.Set(ContextUsername, claims.Username)
	c.Set(ContextTokenID, claims.ID)
	if claims.ExpiresAt != nil {
		c.Set(ContextTokenExpiry, claims.ExpiresAt.Time)
	}
}

// AuthMiddleware guards the JSON API.
func AuthMiddleware(issuer *TokenIssuer, cookieName string, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := issuer.authenticate(c, cookieName, revoked)
		if err != nil {
			RespondWithError(c, http.StatusUnauthorized, "AUTHENTICATION", "Authentication credentials were not provided or are invalid")
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// SessionMiddleware resolves the session cookie when present but never rejects the request.
func SessionMiddleware(issuer *TokenIssuer, cookieName string, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
			if claims, err := issuer.authenticate(c, cookieName, revoked); err == nil {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

// LoginRequired redirects anonymous page requests to the login form.
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ContextUserID); !ok {
			c.Redirect(http.StatusFound, "/login/?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// SafeRedirect returns next when it is a local path, otherwise fallback.
func SafeRedirect(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}
