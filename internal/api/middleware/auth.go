package middleware

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	apierrors "github.com/apflow/invoice-pipeline/internal/api/shared/errors"
	"github.com/apflow/invoice-pipeline/internal/logger"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	AUTH_TYPE_KEY contextKey = "auth_type"
	// AUTH_SUBJECT_KEY carries the authenticated subject; review handlers
	// fall back to it when the request body names no reviewer.
	AUTH_SUBJECT_KEY contextKey = "auth_subject"
	JWT_CLAIMS_KEY   contextKey = "jwt_claims"
)

// AuthConfig holds the credentials the API accepts
type AuthConfig struct {
	JWTPublicKey string // RSA public key in PEM format
	APIKeys      []string
}

// AuthResult is the outcome of checking one Authorization header
type AuthResult struct {
	Success     bool
	AuthType    string // "jwt" or "apikey"
	Claims      *jwt.RegisteredClaims
	AuthSubject string
	Error       error
}

func authFailure(err error) AuthResult {
	return AuthResult{Error: err}
}

// Authenticate checks an Authorization header against the configured
// credentials. "Bearer <token>" is verified as an RSA-signed JWT,
// "ApiKey <key>" against the static key list.
func Authenticate(authHeader string, cfg AuthConfig) AuthResult {
	if authHeader == "" {
		return authFailure(errors.New("missing Authorization header"))
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return authFailure(errors.New("invalid Authorization header format"))
	}
	scheme, credentials := strings.ToLower(parts[0]), parts[1]

	switch scheme {
	case "bearer":
		claims, err := validateJWT(credentials, cfg.JWTPublicKey)
		if err != nil {
			return authFailure(err)
		}
		return AuthResult{
			Success:     true,
			AuthType:    "jwt",
			Claims:      claims,
			AuthSubject: claims.Subject,
		}

	case "apikey":
		if err := validateAPIKey(credentials, cfg.APIKeys); err != nil {
			return authFailure(err)
		}
		return AuthResult{Success: true, AuthType: "apikey"}

	default:
		return authFailure(fmt.Errorf("unsupported authorization type: %s", scheme))
	}
}

// Auth returns a gin middleware enforcing Authenticate on every request
func Auth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := Authenticate(c.GetHeader("Authorization"), cfg)

		if !result.Success {
			logger.Warn("Authentication failed",
				zap.Error(result.Error),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			apiErr := apierrors.NewUnauthorizedError("Authentication failed", result.Error.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiErr)
			return
		}

		c.Set(string(AUTH_TYPE_KEY), result.AuthType)
		if result.Claims != nil {
			c.Set(string(JWT_CLAIMS_KEY), result.Claims)
		}
		if result.AuthSubject != "" {
			c.Set(string(AUTH_SUBJECT_KEY), result.AuthSubject)
		}
		logger.Debug("Authenticated",
			zap.String("auth_type", result.AuthType),
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()),
		)

		c.Next()
	}
}

// validateJWT verifies the token's RSA signature and time bounds
func validateJWT(tokenString string, publicKeyPEM string) (*jwt.RegisteredClaims, error) {
	if publicKeyPEM == "" {
		return nil, errors.New("JWT public key not configured")
	}

	publicKey, err := parseRSAPublicKey(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSA public key: %w", err)
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	now := time.Now()
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(now) {
		return nil, errors.New("token has expired")
	}
	if claims.NotBefore != nil && claims.NotBefore.After(now) {
		return nil, errors.New("token not yet valid")
	}

	return claims, nil
}

// parseRSAPublicKey decodes a PEM public key, accepting PKIX or PKCS1
func parseRSAPublicKey(publicKeyPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, errors.New("failed to parse PEM block containing public key")
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return x509.ParsePKCS1PublicKey(block.Bytes)
	}

	rsaKey, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not an RSA key")
	}
	return rsaKey, nil
}

func validateAPIKey(apiKey string, configured []string) error {
	valid := false
	for _, key := range configured {
		if key != "" && key == apiKey {
			valid = true
		}
	}
	switch {
	case len(configured) == 0:
		return errors.New("no API keys configured")
	case !valid:
		return errors.New("invalid API key")
	}
	return nil
}
