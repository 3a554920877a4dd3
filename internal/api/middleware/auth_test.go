package middleware_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apflow/invoice-pipeline/internal/api/middleware"
	"github.com/apflow/invoice-pipeline/internal/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

// testKeyPair generates an RSA key pair and returns the private key plus the
// public key in PEM form, the way deployments configure the middleware
func testKeyPair(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pubBytes, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	require.NoError(t, err)

	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubBytes,
	})

	return privateKey, string(pubPEM)
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims jwt.RegisteredClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestAuthenticateJWT(t *testing.T) {
	key, pubPEM := testKeyPair(t)
	cfg := middleware.AuthConfig{JWTPublicKey: pubPEM}

	token := signToken(t, key, jwt.RegisteredClaims{
		Subject:   "ap-clerk@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	result := middleware.Authenticate("Bearer "+token, cfg)
	assert.True(t, result.Success)
	assert.Equal(t, "jwt", result.AuthType)
	assert.Equal(t, "ap-clerk@example.com", result.AuthSubject)
}

func TestAuthenticateExpiredJWT(t *testing.T) {
	key, pubPEM := testKeyPair(t)
	cfg := middleware.AuthConfig{JWTPublicKey: pubPEM}

	token := signToken(t, key, jwt.RegisteredClaims{
		Subject:   "ap-clerk@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})

	result := middleware.Authenticate("Bearer "+token, cfg)
	assert.False(t, result.Success)
	require.Error(t, result.Error)
}

func TestAuthenticateJWTWrongKey(t *testing.T) {
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	_, pubPEM := testKeyPair(t)
	cfg := middleware.AuthConfig{JWTPublicKey: pubPEM}

	token := signToken(t, otherKey, jwt.RegisteredClaims{
		Subject:   "ap-clerk@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	result := middleware.Authenticate("Bearer "+token, cfg)
	assert.False(t, result.Success)
}

func TestAuthenticateJWTNotConfigured(t *testing.T) {
	result := middleware.Authenticate("Bearer some-token", middleware.AuthConfig{})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error.Error(), "JWT public key not configured")
}

func TestAuthenticateAPIKey(t *testing.T) {
	cfg := middleware.AuthConfig{APIKeys: []string{"key-1", "key-2"}}

	result := middleware.Authenticate("ApiKey key-2", cfg)
	assert.True(t, result.Success)
	assert.Equal(t, "apikey", result.AuthType)
	assert.Empty(t, result.AuthSubject)
}

func TestAuthenticateInvalidAPIKey(t *testing.T) {
	cfg := middleware.AuthConfig{APIKeys: []string{"key-1"}}

	result := middleware.Authenticate("ApiKey wrong", cfg)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error.Error(), "invalid API key")
}

func TestAuthenticateNoAPIKeysConfigured(t *testing.T) {
	result := middleware.Authenticate("ApiKey key-1", middleware.AuthConfig{})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error.Error(), "no API keys configured")
}

func TestAuthenticateHeaderFormats(t *testing.T) {
	cfg := middleware.AuthConfig{APIKeys: []string{"key-1"}}

	tests := []struct {
		name    string
		header  string
		wantErr string
	}{
		{"missing header", "", "missing Authorization header"},
		{"no credentials", "Bearer", "invalid Authorization header format"},
		{"unsupported scheme", "Basic dXNlcjpwYXNz", "unsupported authorization type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := middleware.Authenticate(tt.header, cfg)
			assert.False(t, result.Success)
			require.Error(t, result.Error)
			assert.Contains(t, result.Error.Error(), tt.wantErr)
		})
	}
}

func TestAuthMiddlewareSetsSubject(t *testing.T) {
	key, pubPEM := testKeyPair(t)

	router := gin.New()
	router.Use(middleware.Auth(middleware.AuthConfig{JWTPublicKey: pubPEM}))
	router.GET("/protected", func(c *gin.Context) {
		subject, _ := c.Get(string(middleware.AUTH_SUBJECT_KEY))
		c.JSON(http.StatusOK, gin.H{"subject": subject})
	})

	token := signToken(t, key, jwt.RegisteredClaims{
		Subject:   "ap-clerk@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ap-clerk@example.com")
}

func TestAuthMiddlewareRejectsUnauthenticated(t *testing.T) {
	router := gin.New()
	router.Use(middleware.Auth(middleware.AuthConfig{APIKeys: []string{"key-1"}}))
	router.GET("/protected", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
