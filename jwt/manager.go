// Package jwt implements the bearer-JWT credential mechanism. It exists so a
// second authentication scheme can sit beside opaque session tokens without
// authorization logic knowing which one produced the identity: both resolve
// to the same identity shape.
package jwt

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod selects the JWT signature algorithm.
type SigningMethod string

const (
	// MethodEd25519 signs with Ed25519 keys (default).
	MethodEd25519 SigningMethod = "ed25519"
	// MethodHS256 signs with a shared HMAC secret.
	MethodHS256 SigningMethod = "hs256"
)

// ErrTokenInvalid is returned for tokens that fail parsing, signature
// verification, or claim validation.
var ErrTokenInvalid = errors.New("invalid token")

// Config holds signing material and validation bounds. Treated as immutable
// after [NewManager].
type Config struct {
	TTL           time.Duration
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

// Claims is the identity payload carried in an access token.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Manager issues and verifies identity-bearing access tokens.
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a [Manager].
func NewManager(cfg Config) (*Manager, error) {
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 {
			return nil, errors.New("hs256 requires private key")
		}
	case MethodEd25519:
		if len(cfg.PublicKey) != ed25519.PublicKeySize {
			return nil, errors.New("ed25519 requires public key")
		}
		if len(cfg.PrivateKey) > 0 && len(cfg.PrivateKey) != ed25519.PrivateKeySize {
			return nil, errors.New("invalid ed25519 private key size")
		}
	default:
		return nil, errors.New("unsupported signing method")
	}

	return &Manager{config: cfg}, nil
}

// Issue creates a signed token for the given identity fields, expiring after
// the configured TTL.
func (m *Manager) Issue(userID, email, role string) (string, error) {
	if userID == "" {
		return "", errors.New("user id required")
	}
	if len(m.config.PrivateKey) == 0 {
		return "", errors.New("signing key not configured")
	}

	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL)),
		},
	}

	switch m.config.SigningMethod {
	case MethodHS256:
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		return token.SignedString(m.config.PrivateKey)
	default:
		token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
		return token.SignedString(ed25519.PrivateKey(m.config.PrivateKey))
	}
}

// Verify parses and validates tokenString and returns its claims. Any
// failure (wrong algorithm, bad signature, expiry, malformed payload) maps
// to [ErrTokenInvalid].
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}

	opts := []jwt.ParserOption{
		jwt.WithLeeway(m.config.Leeway),
		jwt.WithExpirationRequired(),
	}
	if m.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.config.Issuer))
	}
	switch m.config.SigningMethod {
	case MethodHS256:
		opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	default:
		opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, m.verifyKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if claims.UserID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

func (m *Manager) verifyKey(*jwt.Token) (interface{}, error) {
	switch m.config.SigningMethod {
	case MethodHS256:
		return m.config.PrivateKey, nil
	default:
		return ed25519.PublicKey(m.config.PublicKey), nil
	}
}
