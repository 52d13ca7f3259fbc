package security

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, method jwtlib.SigningMethod, secret []byte, sub string) string {
	t.Helper()
	tok := jwtlib.NewWithClaims(method, jwtlib.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	raw, err := tok.SignedString(secret)
	require.NoError(t, err)
	return raw
}

func TestVerifyValidToken(t *testing.T) {
	secret := []byte("s3cret")
	raw := signToken(t, jwtlib.SigningMethodHS256, secret, "alice")

	claims, err := Verify(DefaultOptions(secret), raw)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject())
}

func TestVerifyWrongSecret(t *testing.T) {
	raw := signToken(t, jwtlib.SigningMethodHS256, []byte("one"), "alice")
	_, err := Verify(DefaultOptions([]byte("other")), raw)
	assert.Error(t, err)
}

func TestVerifyEnforcesConfiguredAlg(t *testing.T) {
	secret := []byte("s3cret")
	raw := signToken(t, jwtlib.SigningMethodHS384, secret, "alice")

	// HS384 signature, gateway configured for HS256: rejected
	_, err := Verify(DefaultOptions(secret), raw)
	assert.Error(t, err)

	claims, err := Verify(Options{Secret: secret, Alg: "HS384"}, raw)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject())
}

func TestVerifyUnsupportedAlg(t *testing.T) {
	_, err := Verify(Options{Secret: []byte("x"), Alg: "RS256"}, "whatever")
	assert.Error(t, err)
}

func TestVerifyExpiredToken(t *testing.T) {
	secret := []byte("s3cret")
	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	raw, err := tok.SignedString(secret)
	require.NoError(t, err)

	_, err = Verify(DefaultOptions(secret), raw)
	assert.Error(t, err)
}
