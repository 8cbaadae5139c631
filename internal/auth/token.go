package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "inkwell"

// DefaultTokenLifetime is how long a session token issued at login stays
// valid.
const DefaultTokenLifetime = 24 * time.Hour

// TokenService signs and validates HS256 session tokens. The token subject
// is the account ID; holders are still re-resolved against the store inside
// each operation's transaction, so a token for a deactivated account stops
// working immediately.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService. The secret must be at least 16
// characters; generate it with something like `openssl rand -hex 32`.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: token secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

// Generate issues a signed token for the account with the default lifetime.
func (s *TokenService) Generate(accountID int64) (string, error) {
	return s.GenerateWithDuration(accountID, DefaultTokenLifetime)
}

// GenerateWithDuration issues a signed token with a custom lifetime.
func (s *TokenService) GenerateWithDuration(accountID int64, d time.Duration) (string, error) {
	now := time.Now()
	c := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(accountID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate verifies a token string and returns the account ID it names.
// Signature, expiry, issuer, and signing method are all checked; pinning
// the method prevents algorithm-confusion tokens.
func (s *TokenService) Validate(tokenStr string) (int64, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&sessionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, fmt.Errorf("auth: token expired")
		}
		return 0, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("auth: invalid token claims")
	}

	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("auth: token has no valid subject")
	}
	return id, nil
}
