package helpers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTTL is how long an issued token stays valid.
const TokenTTL = 2 * time.Hour

// MinSecurityKeyLength is the shortest accepted HMAC key, in bytes.
const MinSecurityKeyLength = 32

var (
	ErrMissingSecurityKey = errors.New("jwt: security key is not configured")
	ErrWeakSecurityKey    = fmt.Errorf("jwt: security key must be at least %d bytes", MinSecurityKeyLength)
	ErrInvalidToken       = errors.New("invalid token")
)

// JWTOptions is the process-wide token configuration.
type JWTOptions struct {
	SecurityKey string
	Issuer      string
	Audience    string
	// Algorithm is an HMAC method name: HS256 (default), HS384 or HS512.
	Algorithm string
}

// Subject is what a token is issued for.
type Subject struct {
	ID       string
	Email    string
	UserName string
	Kind     string
}

type Claims struct {
	Email    string   `json:"email"`
	UserName string   `json:"nameid"`
	Roles    []string `json:"role"`
	Kind     string   `json:"kind,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies access tokens. It holds no per-user state.
type TokenIssuer struct {
	key      []byte
	method   jwt.SigningMethod
	issuer   string
	audience string
	now      func() time.Time
}

func NewTokenIssuer(opts JWTOptions) (*TokenIssuer, error) {
	if opts.SecurityKey == "" {
		return nil, ErrMissingSecurityKey
	}
	if len(opts.SecurityKey) < MinSecurityKeyLength {
		return nil, ErrWeakSecurityKey
	}
	alg := opts.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("jwt: unsupported signing algorithm %q", alg)
	}
	return &TokenIssuer{
		key:      []byte(opts.SecurityKey),
		method:   method,
		issuer:   opts.Issuer,
		audience: opts.Audience,
		now:      time.Now,
	}, nil
}

// Issue signs a fresh token for sub carrying one role claim per role.
func (t *TokenIssuer) Issue(sub Subject, roles []string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(TokenTTL)
	if roles == nil {
		roles = []string{}
	}
	claims := &Claims{
		Email:    sub.Email,
		UserName: sub.UserName,
		Roles:    roles,
		Kind:     sub.Kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.ID,
			Issuer:    t.issuer,
			Audience:  jwt.ClaimStrings{t.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	s, err := jwt.NewWithClaims(t.method, claims).SignedString(t.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, exp, nil
}

// Parse verifies signature, algorithm, issuer, audience and lifetime.
func (t *TokenIssuer) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.key, nil
	},
		jwt.WithValidMethods([]string{t.method.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithAudience(t.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
