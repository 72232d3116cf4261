package session_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sbekbolat/maglink/internal/domain"
	"github.com/sbekbolat/maglink/internal/session"
)

const testKey = "session-test-secret-at-least-32c!"

func TestFinalize_ReturnsVerifiableJWT(t *testing.T) {
	f := session.NewJWTFinalizer([]byte(testKey), 24*time.Hour)
	acct := &domain.Account{ID: 42, Email: "alice@example.com", Active: true}

	signed, err := f.Finalize(context.Background(), acct)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, parseErr := jwt.Parse(signed, func(tk *jwt.Token) (any, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected method")
		}
		return []byte(testKey), nil
	})
	if parseErr != nil || !token.Valid {
		t.Fatalf("returned JWT is invalid: %v", parseErr)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("could not cast claims")
	}
	if claims["sub"] != "42" {
		t.Errorf("sub = %v, want %q", claims["sub"], "42")
	}
	if claims["email"] != acct.Email {
		t.Errorf("email = %v, want %q", claims["email"], acct.Email)
	}

	exp, _ := claims["exp"].(float64)
	if remaining := int64(exp) - time.Now().Unix(); remaining < 23*3600 || remaining > 25*3600 {
		t.Errorf("token expires in %ds, want about 24h", remaining)
	}
}

func TestFinalize_WrongKeyDoesNotVerify(t *testing.T) {
	f := session.NewJWTFinalizer([]byte(testKey), time.Hour)

	signed, err := f.Finalize(context.Background(), &domain.Account{ID: 1, Email: "a@b.co"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, parseErr := jwt.Parse(signed, func(_ *jwt.Token) (any, error) {
		return []byte("a-different-32-character-secret!!"), nil
	})
	if parseErr == nil {
		t.Error("token verified under the wrong key")
	}
}
