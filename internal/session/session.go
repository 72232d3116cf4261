package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sbekbolat/maglink/internal/domain"
)

// CookieName carries the session token between the redemption redirect and
// subsequent requests.
const CookieName = "maglink_session"

// Finalizer turns a proven-valid redemption into a logged-in session. The
// host application can plug its own implementation; the default issues a
// signed bearer token.
type Finalizer interface {
	Finalize(ctx context.Context, acct *domain.Account) (string, error)
}

// JWTFinalizer issues an HS256 JWT carrying the account id and email.
type JWTFinalizer struct {
	key []byte
	ttl time.Duration
}

func NewJWTFinalizer(key []byte, ttl time.Duration) *JWTFinalizer {
	return &JWTFinalizer{key: key, ttl: ttl}
}

func (f *JWTFinalizer) Finalize(_ context.Context, acct *domain.Account) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(acct.ID, 10),
		"email": acct.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(f.ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(f.key)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// TTL is the lifetime of tokens this finalizer issues.
func (f *JWTFinalizer) TTL() time.Duration {
	return f.ttl
}
