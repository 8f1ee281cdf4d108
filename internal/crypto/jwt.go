package crypto

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "userauth"

var (
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims represents the JWT claims bound to a session token.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// TokenIssuer mints and verifies HS256 session tokens with a server-held
// secret. It holds no mutable state and is safe for concurrent use.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// IssuerOption customizes a TokenIssuer.
type IssuerOption func(*TokenIssuer)

// WithClock replaces time.Now for issuance and expiry checks.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *TokenIssuer) {
		i.now = now
	}
}

// NewTokenIssuer creates a TokenIssuer whose tokens expire ttl after issuance.
func NewTokenIssuer(secret string, ttl time.Duration, opts ...IssuerOption) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("token secret must not be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	i := &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Issue creates a signed token carrying email as its identity claim.
func (i *TokenIssuer) Issue(email string) (string, error) {
	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email: email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verify parses tokenString and checks its signature, issuer and expiry.
// Every failure is reported as ErrInvalidToken.
func (i *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Email == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
