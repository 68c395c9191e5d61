package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, claims jwt.MapClaims, key string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return tok
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "alice",
		"name":  "Alice",
		"iss":   "https://id.example.com",
		"aud":   "liftlog",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"scope": "sessions:read sessions:write",
	}
}

func TestParseValid(t *testing.T) {
	cfg := Config{Secret: secret, Issuer: "https://id.example.com", Audience: "liftlog"}
	claims, err := Parse(sign(t, validClaims(), secret), cfg)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "Alice", claims.Name)
	assert.True(t, claims.HasScope("sessions:write"))
	assert.False(t, claims.HasScope("admin"))
	assert.Len(t, claims.ScopeList(), 2)
}

func TestParseRejects(t *testing.T) {
	cfg := Config{Secret: secret, Issuer: "https://id.example.com"}

	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()
	noSubject := validClaims()
	delete(noSubject, "sub")
	noExpiry := validClaims()
	delete(noExpiry, "exp")
	wrongIssuer := validClaims()
	wrongIssuer["iss"] = "https://evil.example.com"

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrMissingToken},
		{"garbage", "not.a.jwt", ErrInvalidToken},
		{"wrong key", sign(t, validClaims(), "other-secret"), ErrInvalidToken},
		{"expired", sign(t, expired, secret), ErrInvalidToken},
		{"no subject", sign(t, noSubject, secret), ErrInvalidToken},
		{"no expiry", sign(t, noExpiry, secret), ErrInvalidToken},
		{"wrong issuer", sign(t, wrongIssuer, secret), ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.token, cfg)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims()).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = Parse(tok, Config{Secret: secret})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestFromRequest(t *testing.T) {
	cfg := Config{Secret: secret}

	r := httptest.NewRequest("GET", "/api/v1/me", nil)
	_, err := FromRequest(r, cfg)
	assert.ErrorIs(t, err, ErrMissingToken)

	r.Header.Set("Authorization", "Basic abc")
	_, err = FromRequest(r, cfg)
	assert.ErrorIs(t, err, ErrInvalidToken)

	r.Header.Set("Authorization", "Bearer "+sign(t, validClaims(), secret))
	claims, err := FromRequest(r, cfg)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
}
