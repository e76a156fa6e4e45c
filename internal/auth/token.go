package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "relaychat"

// Token verification failures. They are distinct internally so tests
// and logs can tell them apart; the HTTP boundary collapses all three
// into one generic unauthenticated response.
var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenSignature = errors.New("token signature invalid")
	ErrTokenExpired   = errors.New("token expired")
)

// Claims is the authenticated identity carried by a bearer token.
type Claims struct {
	UserID int64
	WsID   int64
}

type tokenClaims struct {
	jwt.RegisteredClaims
	WsID int64 `json:"ws_id"`
}

// EncodingKey signs bearer tokens with the process-wide Ed25519
// private key. It is immutable after load and safe for concurrent use.
type EncodingKey struct {
	key ed25519.PrivateKey
	ttl time.Duration
}

// DecodingKey verifies bearer tokens with the Ed25519 public key.
// The verifier never needs the private half.
type DecodingKey struct {
	key ed25519.PublicKey
}

// LoadEncodingKey reads an Ed25519 private key in PKCS#8 PEM form.
// Issued tokens expire after ttl; a non-positive ttl is rejected so
// the process can never issue non-expiring tokens.
func LoadEncodingKey(path string, ttl time.Duration) (*EncodingKey, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	key, err := loadPrivateKey(path)
	if err != nil {
		return nil, err
	}
	return &EncodingKey{key: key, ttl: ttl}, nil
}

// LoadDecodingKey reads an Ed25519 public key in PKIX PEM form.
func LoadDecodingKey(path string) (*DecodingKey, error) {
	key, err := loadPublicKey(path)
	if err != nil {
		return nil, err
	}
	return &DecodingKey{key: key}, nil
}

// NewEncodingKey wraps an in-memory private key. Used by tests.
func NewEncodingKey(key ed25519.PrivateKey, ttl time.Duration) *EncodingKey {
	return &EncodingKey{key: key, ttl: ttl}
}

// NewDecodingKey wraps an in-memory public key. Used by tests.
func NewDecodingKey(key ed25519.PublicKey) *DecodingKey {
	return &DecodingKey{key: key}
}

// Issue signs a token naming the user and workspace, valid for the
// configured ttl.
func (ek *EncodingKey) Issue(userID, wsID int64) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ek.ttl)),
		},
		WsID: wsID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(ek.key)
}

// Verify checks the token signature and expiry and returns the
// embedded identity. Failures map to exactly one of ErrTokenMalformed,
// ErrTokenSignature or ErrTokenExpired.
func (dk *DecodingKey) Verify(tokenString string) (Claims, error) {
	var parsed tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &parsed, func(token *jwt.Token) (any, error) {
		return dk.key, nil
	}, jwt.WithValidMethods([]string{"EdDSA"}), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrTokenSignature
		default:
			return Claims{}, ErrTokenMalformed
		}
	}
	if !token.Valid {
		return Claims{}, ErrTokenMalformed
	}

	userID, err := strconv.ParseInt(parsed.Subject, 10, 64)
	if err != nil || userID < 1 || parsed.WsID < 1 {
		return Claims{}, ErrTokenMalformed
	}
	return Claims{UserID: userID, WsID: parsed.WsID}, nil
}
