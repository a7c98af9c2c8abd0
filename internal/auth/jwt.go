package auth

import (
	"errors"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rizkyyjun/sportmate/internal/apperr"
)

// Claims is the payload the external token issuer signs into each bearer
// token. Role "admin" gates admin-only transitions.
type Claims struct {
	Sub   string `json:"sub"`
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller attached to requests and sessions.
type Identity struct {
	UserID  uuid.UUID
	Email   string
	IsAdmin bool
}

// Verifier validates bearer tokens issued by the external auth service.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier for HS256 tokens signed with secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// ParseValidate verifies the token signature and returns the caller identity.
func (v *Verifier) ParseValidate(tokenStr string) (*Identity, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, apperr.ErrUnauthorized
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, apperr.ErrUnauthorized
	}
	userID, err := uuid.Parse(c.Sub)
	if err != nil {
		return nil, apperr.ErrUnauthorized
	}
	return &Identity{
		UserID:  userID,
		Email:   c.Email,
		IsAdmin: c.Role == "admin",
	}, nil
}

// BearerToken extracts the raw token from an Authorization header value.
func BearerToken(header string) string {
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return header
}
