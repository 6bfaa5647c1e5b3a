package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"interviewai/pkg/domain"
)

const (
	defaultJWTIssuer   = "interviewai-auth"
	defaultSessionTTL  = 24 * time.Hour
	defaultJWTLeeway   = 30 * time.Second
	minJWTSecretLength = 16
)

// ErrInvalidToken is returned when a bearer token fails verification.
var ErrInvalidToken = errors.New("invalid token")

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTSessionStore issues and validates HS256 session tokens embedding the
// user id and role. Tokens expire a fixed TTL after issuance (one day by
// default) and are not stored server-side.
type JWTSessionStore struct {
	secret []byte
	ttl    time.Duration
	issuer string
	leeway time.Duration
}

// NewJWTSessionStore builds an HS256 session store from a shared secret.
func NewJWTSessionStore(secret string, ttl time.Duration) (*JWTSessionStore, error) {
	secret = strings.TrimSpace(secret)
	if len(secret) < minJWTSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", minJWTSecretLength)
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &JWTSessionStore{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: defaultJWTIssuer,
		leeway: defaultJWTLeeway,
	}, nil
}

// NewSession creates a signed JWT for the user id and role.
func (s *JWTSessionStore) NewSession(userID string, role domain.UserRole) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("user id required")
	}
	now := time.Now().UTC()
	claims := sessionClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// IdentityFromToken validates a JWT and returns the embedded identity.
func (s *JWTSessionStore) IdentityFromToken(token string) (domain.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Identity{}, ErrInvalidToken
	}
	claims := sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(s.leeway),
	)
	if err != nil || !parsed.Valid {
		return domain.Identity{}, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return domain.Identity{}, ErrInvalidToken
	}
	role := domain.UserRole(claims.Role)
	if role == "" {
		role = domain.RoleUser
	}
	return domain.Identity{UserID: claims.Subject, Role: role}, nil
}
