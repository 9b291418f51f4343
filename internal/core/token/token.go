// Package token issues and verifies the signed bearer tokens used for
// session handling. Verification is stateless: any process holding the
// shared secret can verify any token, and the server keeps no record of
// issued tokens.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMalformed = errors.New("token malformed")
var ErrExpired = errors.New("token expired")
var ErrInvalid = errors.New("token invalid")

const defaultTTL = 7 * 24 * time.Hour

// Claims is the payload embedded in every issued token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Config captures the signing settings. Secret must be set explicitly;
// there is no ambient fallback at this level.
type Config struct {
	Secret string
	TTL    time.Duration
}

// Service signs and verifies HS256 tokens with a fixed time-to-live.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService constructs a Service from cfg. An empty secret is a
// misconfiguration and is rejected up front rather than at request time.
func NewService(cfg Config) (*Service, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token: signing secret is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Service{secret: []byte(cfg.Secret), ttl: ttl}, nil
}

// TTL returns the configured token lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue signs a new token carrying the user's id and email. The expiry is
// embedded in the payload; no server-side state is created.
func (s *Service) Issue(userID, email string) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify checks the signature and expiry of raw and returns the embedded
// claims. It does not consult the user store; a verified claim may still
// reference a deleted account.
func (s *Service) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformed
		default:
			return nil, ErrInvalid
		}
	}
	if !tkn.Valid {
		return nil, ErrInvalid
	}
	return claims, nil
}
