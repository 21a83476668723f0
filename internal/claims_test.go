package internal

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func mintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	return token
}

func TestDecodeTokenHint(t *testing.T) {
	exp := time.Now().Add(24 * time.Hour)
	token := mintToken(t, jwt.MapClaims{
		"sub":  "wholesaler",
		"role": "wholesaler",
		"exp":  exp.Unix(),
	})

	hint, err := DecodeTokenHint(token)
	if err != nil {
		t.Fatalf("DecodeTokenHint() error: %v", err)
	}
	if hint.Username != "wholesaler" {
		t.Errorf("username = %q, want wholesaler", hint.Username)
	}
	if hint.Role != "wholesaler" {
		t.Errorf("role = %q, want wholesaler", hint.Role)
	}
	if hint.ExpiresAt.Unix() != exp.Unix() {
		t.Errorf("expires = %v, want %v", hint.ExpiresAt, exp)
	}
	if hint.Expired() {
		t.Error("Expired() = true for a token valid another day")
	}
}

func TestDecodeTokenHint_ExpiredToken(t *testing.T) {
	token := mintToken(t, jwt.MapClaims{
		"sub": "retailer",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	hint, err := DecodeTokenHint(token)
	if err != nil {
		t.Fatalf("DecodeTokenHint() error: %v", err)
	}
	if !hint.Expired() {
		t.Error("Expired() = false for a token an hour past exp")
	}
}

func TestDecodeTokenHint_MissingClaims(t *testing.T) {
	hint, err := DecodeTokenHint(mintToken(t, jwt.MapClaims{}))
	if err != nil {
		t.Fatalf("DecodeTokenHint() error: %v", err)
	}
	if hint.Username != "" || hint.Role != "" {
		t.Errorf("hint = %+v, want empty fields", hint)
	}
	if hint.Expired() {
		t.Error("Expired() = true with no exp claim")
	}
}

func TestDecodeTokenHint_Garbage(t *testing.T) {
	if _, err := DecodeTokenHint("not-a-jwt"); err == nil {
		t.Error("DecodeTokenHint() = nil error for garbage input")
	}
}
