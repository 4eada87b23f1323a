package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	return key, string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims jwt.RegisteredClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestAuthenticator_Authenticate(t *testing.T) {
	key, publicPEM := generateKey(t)
	otherKey, _ := generateKey(t)

	authenticator := NewAuthenticator(AuthConfig{
		JWTPublicKey: publicPEM,
		APIKeys:      []string{"secret-1", " ", "secret-2"},
	})

	valid := signToken(t, key, jwt.RegisteredClaims{
		Subject:   "operator",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	expired := signToken(t, key, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	notYet := signToken(t, key, jwt.RegisteredClaims{
		NotBefore: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	foreign := signToken(t, otherKey, jwt.RegisteredClaims{Subject: "intruder"})
	hmac, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{}).SignedString([]byte(publicPEM))
	require.NoError(t, err)

	tests := []struct {
		name        string
		header      string
		wantSuccess bool
		wantType    string
		wantSubject string
	}{
		{name: "missing header", header: ""},
		{name: "no scheme", header: "secret-1"},
		{name: "empty credentials", header: "ApiKey  "},
		{name: "unsupported scheme", header: "Basic dXNlcjpwYXNz"},
		{name: "valid api key", header: "ApiKey secret-2", wantSuccess: true, wantType: AUTH_TYPE_APIKEY},
		{name: "scheme is case insensitive", header: "apikey secret-1", wantSuccess: true, wantType: AUTH_TYPE_APIKEY},
		{name: "unknown api key", header: "ApiKey secret-3"},
		{name: "valid jwt", header: "Bearer " + valid, wantSuccess: true, wantType: AUTH_TYPE_JWT, wantSubject: "operator"},
		{name: "expired jwt", header: "Bearer " + expired},
		{name: "jwt not yet valid", header: "Bearer " + notYet},
		{name: "jwt signed by another key", header: "Bearer " + foreign},
		{name: "hmac jwt", header: "Bearer " + hmac},
		{name: "garbage jwt", header: "Bearer not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := authenticator.Authenticate(tt.header)
			assert.Equal(t, tt.wantSuccess, result.Success)
			if !tt.wantSuccess {
				assert.Error(t, result.Error)
				return
			}
			assert.NoError(t, result.Error)
			assert.Equal(t, tt.wantType, result.AuthType)
			assert.Equal(t, tt.wantSubject, result.AuthSubject)
		})
	}
}

func TestAuthenticator_Unconfigured(t *testing.T) {
	t.Run("no public key", func(t *testing.T) {
		result := NewAuthenticator(AuthConfig{APIKeys: []string{"k"}}).Authenticate("Bearer abc")
		assert.False(t, result.Success)
		assert.EqualError(t, result.Error, "JWT public key not configured")
	})

	t.Run("malformed public key keeps api keys working", func(t *testing.T) {
		a := NewAuthenticator(AuthConfig{JWTPublicKey: "not pem", APIKeys: []string{"k"}})
		assert.False(t, a.Authenticate("Bearer abc").Success)
		assert.True(t, a.Authenticate("ApiKey k").Success)
	})

	t.Run("no api keys", func(t *testing.T) {
		result := NewAuthenticator(AuthConfig{}).Authenticate("ApiKey k")
		assert.False(t, result.Success)
		assert.EqualError(t, result.Error, "no API keys configured")
	})
}

func TestAuth_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/private", Auth(AuthConfig{APIKeys: []string{"secret"}}), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(AUTH_TYPE_KEY))
	})

	t.Run("rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"unauthorized"`)
	})

	t.Run("accepted", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "ApiKey secret")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, AUTH_TYPE_APIKEY, w.Body.String())
	})
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(REQUEST_ID_HEADER))

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(REQUEST_ID_HEADER, "abc")
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(REQUEST_ID_HEADER))
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(Recovery())
	router.GET("/", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"internal_error"`)
}
