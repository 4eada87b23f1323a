package middleware

import (
	"crypto/rsa"
	"crypto/subtle"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	apierrors "github.com/feral-file/ff-agent-registry/internal/api/shared/errors"
	"github.com/feral-file/ff-agent-registry/internal/logger"
)

const (
	AUTH_TYPE_KEY    = "auth_type"
	AUTH_SUBJECT_KEY = "auth_subject"
	JWT_CLAIMS_KEY   = "jwt_claims"

	AUTH_TYPE_JWT    = "jwt"
	AUTH_TYPE_APIKEY = "apikey"
)

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string // RSA public key in PEM format
	APIKeys      []string
}

// AuthResult holds the result of authentication
type AuthResult struct {
	Success     bool
	AuthType    string
	Claims      *jwt.RegisteredClaims
	AuthSubject string
	Error       error
}

// Authenticator validates Authorization headers against a fixed configuration
type Authenticator struct {
	publicKey    *rsa.PublicKey
	publicKeyErr error
	apiKeys      [][]byte
}

// NewAuthenticator parses the configured credentials once.
// A malformed public key only fails bearer authentication; API keys keep working.
func NewAuthenticator(cfg AuthConfig) *Authenticator {
	a := &Authenticator{}

	if cfg.JWTPublicKey == "" {
		a.publicKeyErr = errors.New("JWT public key not configured")
	} else if key, err := parseRSAPublicKey(cfg.JWTPublicKey); err != nil {
		a.publicKeyErr = fmt.Errorf("failed to parse RSA public key: %w", err)
	} else {
		a.publicKey = key
	}

	for _, key := range cfg.APIKeys {
		if key = strings.TrimSpace(key); key != "" {
			a.apiKeys = append(a.apiKeys, []byte(key))
		}
	}

	return a
}

// Authenticate validates the Authorization header and returns the authentication result.
// Accepted schemes are "Bearer <jwt>" and "ApiKey <key>".
func (a *Authenticator) Authenticate(authHeader string) AuthResult {
	if authHeader == "" {
		return AuthResult{Error: errors.New("missing Authorization header")}
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
		return AuthResult{Error: errors.New("invalid Authorization header format")}
	}
	credentials := strings.TrimSpace(parts[1])

	switch strings.ToLower(parts[0]) {
	case "bearer":
		claims, err := a.validateJWT(credentials)
		if err != nil {
			return AuthResult{Error: err}
		}
		return AuthResult{
			Success:     true,
			AuthType:    AUTH_TYPE_JWT,
			Claims:      claims,
			AuthSubject: claims.Subject,
		}

	case "apikey":
		if err := a.validateAPIKey(credentials); err != nil {
			return AuthResult{Error: err}
		}
		return AuthResult{Success: true, AuthType: AUTH_TYPE_APIKEY}

	default:
		return AuthResult{Error: fmt.Errorf("unsupported authorization type: %s", parts[0])}
	}
}

// Auth returns a gin middleware that accepts either a JWT bearer token or an API key
func Auth(cfg AuthConfig) gin.HandlerFunc {
	authenticator := NewAuthenticator(cfg)

	return func(c *gin.Context) {
		result := authenticator.Authenticate(c.GetHeader("Authorization"))
		if !result.Success {
			logger.WarnCtx(c.Request.Context(), "Authentication failed",
				zap.Error(result.Error),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				apierrors.NewUnauthorizedError("Authentication failed", result.Error.Error()))
			return
		}

		c.Set(AUTH_TYPE_KEY, result.AuthType)
		if result.Claims != nil {
			c.Set(JWT_CLAIMS_KEY, result.Claims)
		}
		if result.AuthSubject != "" {
			c.Set(AUTH_SUBJECT_KEY, result.AuthSubject)
		}

		logger.DebugCtx(c.Request.Context(), "Request authenticated",
			zap.String("auth_type", result.AuthType),
			zap.String("subject", result.AuthSubject),
		)

		c.Next()
	}
}

// validateJWT validates an RS256/384/512 token and returns its claims.
// Expiry and not-before are enforced by the parser.
func (a *Authenticator) validateJWT(tokenString string) (*jwt.RegisteredClaims, error) {
	if a.publicKey == nil {
		return nil, a.publicKeyErr
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return a.publicKey, nil
		},
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// validateAPIKey compares against every configured key in constant time
func (a *Authenticator) validateAPIKey(apiKey string) error {
	if len(a.apiKeys) == 0 {
		return errors.New("no API keys configured")
	}

	candidate := []byte(apiKey)
	matched := 0
	for _, key := range a.apiKeys {
		matched |= subtle.ConstantTimeCompare(candidate, key)
	}
	if matched != 1 {
		return errors.New("invalid API key")
	}

	return nil
}

// parseRSAPublicKey parses an RSA public key from PEM, accepting PKIX and PKCS1 encodings
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
