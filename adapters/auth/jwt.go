// Package auth provides login and bearer-token checks for the stub catalog.
package auth

import (
	"crypto/rand"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is the iss claim of stub tokens.
const Issuer = "catalogctl-stub"

// ErrMissingToken is returned when a request carries no bearer token.
var ErrMissingToken = errors.New("missing bearer token")

// Claims are the JWT claims of a catalog access token.
type Claims struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 access tokens.
type TokenService struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewTokenService creates a token service. An empty secret is replaced by
// random bytes, which invalidates tokens across restarts.
func NewTokenService(secret string, expiration time.Duration) *TokenService {
	key := []byte(secret)
	if secret == "" {
		key = make([]byte, 32)
		rand.Read(key)
	}
	if expiration == 0 {
		expiration = time.Hour
	}
	return &TokenService{secret: key, expiration: expiration, now: time.Now}
}

// Expiration returns the token lifetime.
func (s *TokenService) Expiration() time.Duration {
	return s.expiration
}

// Issue signs a token for the account.
func (s *TokenService) Issue(acct Account) (string, time.Time, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.expiration)

	claims := Claims{
		Email:   acct.Email,
		IsAdmin: acct.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   acct.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses a token and returns its claims.
func (s *TokenService) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithIssuer(Issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// VerifyRequest verifies the bearer token in the Authorization header.
func (s *TokenService) VerifyRequest(r *http.Request) (*Claims, error) {
	token := BearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return nil, ErrMissingToken
	}
	return s.Verify(token)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
