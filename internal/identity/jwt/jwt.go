// Package jwt issues and verifies stateless access tokens.
package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// DefaultAlgorithm is used when Config.Algorithm is empty.
const DefaultAlgorithm = "HS256"

// Token errors.
var (
	// ErrInvalidToken covers every verification failure: bad signature,
	// malformed payload, wrong algorithm and expiry are indistinguishable.
	ErrInvalidToken   = errors.New("invalid token")
	ErrMissingSubject = errors.New("token claims must include a subject")
)

// Config holds token signing settings. It is read once at startup.
type Config struct {
	SecretKey           string
	Algorithm           string
	AccessTokenDuration time.Duration
}

// Claims is the decoded claim set of a token.
type Claims map[string]any

// Subject returns the "sub" claim, or "" when absent.
func (c Claims) Subject() string {
	sub, _ := c["sub"].(string)
	return sub
}

// Issuer signs and verifies HMAC tokens with a single key and algorithm.
type Issuer struct {
	key    []byte
	method *jwtlib.SigningMethodHMAC
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer validates cfg and creates an issuer.
func NewIssuer(cfg Config) (*Issuer, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("jwt: secret key is required")
	}

	alg := cfg.Algorithm
	if alg == "" {
		alg = DefaultAlgorithm
	}
	method, ok := jwtlib.GetSigningMethod(alg).(*jwtlib.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("jwt: unsupported signing algorithm %q", alg)
	}

	if cfg.AccessTokenDuration <= 0 {
		return nil, errors.New("jwt: access token duration must be positive")
	}

	return &Issuer{
		key:    []byte(cfg.SecretKey),
		method: method,
		ttl:    cfg.AccessTokenDuration,
		now:    time.Now,
	}, nil
}

// Algorithm returns the signing algorithm name.
func (i *Issuer) Algorithm() string {
	return i.method.Alg()
}

// Issue signs claims with an expiry of now+ttl. A non-positive ttl uses the
// configured access token duration. Claims must carry a "sub".
func (i *Issuer) Issue(claims Claims, ttl time.Duration) (string, error) {
	if claims.Subject() == "" {
		return "", ErrMissingSubject
	}
	if ttl <= 0 {
		ttl = i.ttl
	}

	now := i.now()
	mapClaims := make(jwtlib.MapClaims, len(claims)+2)
	for k, v := range claims {
		mapClaims[k] = v
	}
	mapClaims["iat"] = jwtlib.NewNumericDate(now)
	mapClaims["exp"] = jwtlib.NewNumericDate(now.Add(ttl))

	signed, err := jwtlib.NewWithClaims(i.method, mapClaims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// IssueAccessToken issues a token for subject with the default duration.
func (i *Issuer) IssueAccessToken(subject string) (string, error) {
	return i.Issue(Claims{"sub": subject}, 0)
}

// Verify checks signature, algorithm and expiry and returns the claims.
// Any failure yields ErrInvalidToken and nil claims.
func (i *Issuer) Verify(token string) (Claims, error) {
	claims := jwtlib.MapClaims{}
	parsed, err := jwtlib.ParseWithClaims(token, claims, i.keyFunc,
		jwtlib.WithValidMethods([]string{i.method.Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithStrictDecoding(),
		jwtlib.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return Claims(claims), nil
}

func (i *Issuer) keyFunc(t *jwtlib.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
	}
	return i.key, nil
}
