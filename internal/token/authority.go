// Package token issues and validates the signed bearer tokens that carry a
// caller's identity between requests.
package token

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// BearerPrefix is the only accepted Authorization scheme.
const BearerPrefix = "Bearer "

// MinKeyBytes is the smallest HMAC-SHA256 key accepted at startup.
const MinKeyBytes = 32

// Validation failures. Exactly one is returned for any rejected token.
var (
	ErrTokenMissing     = errors.New("token is missing")
	ErrTokenMalformed   = errors.New("invalid token format")
	ErrTokenUnsupported = errors.New("unsupported token type")
	ErrTokenExpired     = errors.New("token has expired")
)

// ErrEmptySubject is returned by Issue; a token without a subject could
// never validate.
var ErrEmptySubject = errors.New("token: subject is empty")

// Config is the signing configuration, loaded once at startup.
type Config struct {
	Secret   string
	Lifetime time.Duration
}

// Claims is the identity recovered from a valid token.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Authority signs and verifies tokens. It holds no mutable state and may be
// shared across goroutines.
type Authority struct {
	key      []byte
	lifetime time.Duration
	now      func() time.Time
	parser   *jwt.Parser
}

// Option customizes an Authority.
type Option func(*Authority)

// WithClock replaces time.Now as the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(a *Authority) {
		a.now = now
	}
}

// New builds an Authority from cfg. A secret that is valid standard base64 is
// decoded to raw key bytes; anything else is used as-is.
func New(cfg Config, opts ...Option) (*Authority, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token: signing secret is empty")
	}
	if cfg.Lifetime <= 0 {
		return nil, fmt.Errorf("token: lifetime must be positive, got %s", cfg.Lifetime)
	}

	key := decodeSecret(cfg.Secret)
	if len(key) < MinKeyBytes {
		return nil, fmt.Errorf("token: signing key is %d bytes, need at least %d", len(key), MinKeyBytes)
	}

	a := &Authority{
		key:      key,
		lifetime: cfg.Lifetime,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	// Expiry is checked in Parse: a token stays valid at exactly its exp
	// instant, which the jwt validator would already reject.
	a.parser = jwt.NewParser(jwt.WithoutClaimsValidation())
	return a, nil
}

func decodeSecret(secret string) []byte {
	if b, err := base64.StdEncoding.DecodeString(secret); err == nil {
		return b
	}
	return []byte(secret)
}

// Lifetime returns the configured token lifetime.
func (a *Authority) Lifetime() time.Duration {
	return a.lifetime
}

// Issue signs a token for subject valid from now until now+lifetime.
func (a *Authority) Issue(subject string) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", ErrEmptySubject
	}
	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.lifetime)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateHeader checks a raw Authorization header value and returns the
// token subject. Checks run in order: presence, scheme, structure and
// signature, expiry.
func (a *Authority) ValidateHeader(raw string) (string, error) {
	if raw == "" {
		return "", ErrTokenMissing
	}
	if !strings.HasPrefix(raw, BearerPrefix) {
		return "", ErrTokenMalformed
	}

	claims, err := a.Parse(strings.TrimSpace(raw[len(BearerPrefix):]))
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Parse verifies a bare token string and returns its claims. A token is
// expired only once the current time is strictly after its exp claim.
func (a *Authority) Parse(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrTokenMalformed
	}

	var rc jwt.RegisteredClaims
	_, err := a.parser.ParseWithClaims(tokenStr, &rc, a.keyFunc)
	if err != nil {
		return nil, classify(err)
	}
	if rc.Subject == "" || rc.ExpiresAt == nil {
		return nil, ErrTokenMalformed
	}
	if a.now().After(rc.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}

	claims := &Claims{Subject: rc.Subject, ExpiresAt: rc.ExpiresAt.Time}
	if rc.IssuedAt != nil {
		claims.IssuedAt = rc.IssuedAt.Time
	}
	return claims, nil
}

func (a *Authority) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method != jwt.SigningMethodHS256 {
		return nil, fmt.Errorf("signing method %v not accepted", t.Header["alg"])
	}
	return a.key, nil
}

// classify collapses jwt parser errors onto the validation kinds. A forged
// or corrupted signature is reported the same as garbage input.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrTokenUnsupported
	default:
		return ErrTokenMalformed
	}
}
