package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wordduel/wordduel/internal/dependencies/clock"
	"github.com/wordduel/wordduel/internal/model"
)

// Errors
var (
	ErrMissingToken = errors.New("no token provided")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Identity is the durable user identity bound to a connection once its
// credential has been verified
type Identity struct {
	UserID model.UserID
	Email  string
}

// Verifier validates a credential presented at connection establishment
type Verifier interface {
	Verify(credential string) (*Identity, error)
}

// Claims are the JWT claims carried by a connection credential
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// JWTVerifier verifies HS256-signed tokens
type JWTVerifier struct {
	secret []byte
	clock  clock.Clock
}

// Ensure JWTVerifier implements Verifier
var _ Verifier = (*JWTVerifier)(nil)

// NewJWTVerifier creates a verifier for tokens signed with the given secret
func NewJWTVerifier(secret string, clk clock.Clock) *JWTVerifier {
	return &JWTVerifier{
		secret: []byte(secret),
		clock:  clk,
	}
}

// Verify parses and validates the credential, returning the identity it
// carries. The check runs once per connection, not per event.
func (v *JWTVerifier) Verify(credential string) (*Identity, error) {
	if credential == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(credential, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKey
		}
		return v.secret, nil
	}, jwt.WithTimeFunc(v.clock.Now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return &Identity{
		UserID: model.UserID(claims.UserID),
		Email:  claims.Email,
	}, nil
}

// Issue signs a token for the given identity. Credential issuance proper
// lives outside this service; this exists for tests and local tooling.
func (v *JWTVerifier) Issue(userID model.UserID, email string, ttl time.Duration) (string, error) {
	now := v.clock.Now()
	claims := Claims{
		UserID: string(userID),
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
