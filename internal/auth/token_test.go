package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKeyPair(t *testing.T, ttl time.Duration) (*EncodingKey, *DecodingKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return NewEncodingKey(priv, ttl), NewDecodingKey(pub)
}

func TestTokenRoundTrip(t *testing.T) {
	ek, dk := newTestKeyPair(t, time.Hour)

	token, err := ek.Issue(42, 7)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := dk.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, int64(7), claims.WsID)
}

func TestTokenExpired(t *testing.T) {
	ek, dk := newTestKeyPair(t, -time.Minute)

	token, err := ek.Issue(42, 7)
	require.NoError(t, err)

	_, err = dk.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenWrongKey(t *testing.T) {
	ek, _ := newTestKeyPair(t, time.Hour)
	_, otherDK := newTestKeyPair(t, time.Hour)

	token, err := ek.Issue(42, 7)
	require.NoError(t, err)

	_, err = otherDK.Verify(token)
	assert.ErrorIs(t, err, ErrTokenSignature)
}

func TestTokenMalformed(t *testing.T) {
	_, dk := newTestKeyPair(t, time.Hour)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := dk.Verify(token)
		assert.ErrorIs(t, err, ErrTokenMalformed, "token %q", token)
	}
}

func TestTokenRejectsSymmetricAlgorithm(t *testing.T) {
	_, dk := newTestKeyPair(t, time.Hour)

	// A token signed with HS256 must never verify, even if an attacker
	// crafts one keyed on the public key bytes.
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   "42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(dk.key))
	require.NoError(t, err)

	// The method allowlist rejection surfaces as a signature failure.
	_, err = dk.Verify(forged)
	assert.ErrorIs(t, err, ErrTokenSignature)
}

func TestTokenRejectsBadIdentity(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	dk := NewDecodingKey(pub)

	sign := func(subject string, wsID int64) string {
		claims := tokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    tokenIssuer,
				Subject:   subject,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			WsID: wsID,
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(priv)
		require.NoError(t, err)
		return token
	}

	cases := []struct {
		name    string
		subject string
		wsID    int64
	}{
		{"non-numeric subject", "alice", 7},
		{"zero user", "0", 7},
		{"negative user", "-1", 7},
		{"zero workspace", "42", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := dk.Verify(sign(tc.subject, tc.wsID))
			assert.ErrorIs(t, err, ErrTokenMalformed)
		})
	}
}

func TestLoadEncodingKeyRejectsNonPositiveTTL(t *testing.T) {
	_, err := LoadEncodingKey("does-not-matter.pem", 0)
	assert.Error(t, err)

	_, err = LoadEncodingKey("does-not-matter.pem", -time.Hour)
	assert.Error(t, err)
}

func TestKeyFileRoundTrip(t *testing.T) {
	privPEM, pubPEM, err := GenerateKeyPair()
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "sk.pem")
	pubPath := filepath.Join(dir, "pk.pem")
	require.NoError(t, os.WriteFile(privPath, privPEM, 0o600))
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0o644))

	ek, err := LoadEncodingKey(privPath, time.Hour)
	require.NoError(t, err)
	dk, err := LoadDecodingKey(pubPath)
	require.NoError(t, err)

	token, err := ek.Issue(1, 1)
	require.NoError(t, err)

	claims, err := dk.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, int64(1), claims.WsID)
}

func TestLoadKeyRejectsWrongMaterial(t *testing.T) {
	privPEM, pubPEM, err := GenerateKeyPair()
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "sk.pem")
	pubPath := filepath.Join(dir, "pk.pem")
	require.NoError(t, os.WriteFile(privPath, privPEM, 0o600))
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0o644))

	_, err = LoadEncodingKey(pubPath, time.Hour)
	assert.Error(t, err)

	_, err = LoadDecodingKey(privPath)
	assert.Error(t, err)

	_, err = LoadDecodingKey(filepath.Join(dir, "missing.pem"))
	assert.Error(t, err)
}
