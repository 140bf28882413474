// Package auth verifies bearer tokens and turns them into actors.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/example/coworking-booking/internal/application"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims are the token claims the service understands. The subject is the
// actor ID.
type Claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Actor converts the claims into an application actor. A missing role means
// USER; an unknown role is rejected.
func (c *Claims) Actor() (application.Actor, error) {
	role := application.Role(strings.ToUpper(strings.TrimSpace(c.Role)))
	if role == "" {
		role = application.RoleUser
	}
	if !role.Valid() {
		return application.Actor{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, c.Role)
	}
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = c.Subject
	}
	return application.Actor{ID: c.Subject, Name: name, Role: role}, nil
}

// TokenValidator validates raw tokens.
type TokenValidator interface {
	Validate(token string) (*Claims, error)
}

// JWTValidator validates HS256 tokens signed with a shared secret.
type JWTValidator struct {
	secret []byte
	now    func() time.Time
}

// NewJWTValidator creates a validator for secret.
func NewJWTValidator(secret string) *JWTValidator {
	return &JWTValidator{secret: []byte(strings.TrimSpace(secret)), now: time.Now}
}

func (v *JWTValidator) Validate(token string) (*Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("%w: jwt secret not configured", ErrInvalidToken)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	},
		jwt.WithLeeway(5*time.Second),
		jwt.WithTimeFunc(v.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}

// ExtractBearerToken returns the token from the Authorization header, or ""
// when none is present.
func ExtractBearerToken(r *http.Request) string {
	if r == nil {
		return ""
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// Sign issues an HS256 token for actor, valid for ttl. It is used by the
// token command and by tests.
func Sign(secret string, actor application.Actor, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		Name: actor.Name,
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(strings.TrimSpace(secret)))
}
