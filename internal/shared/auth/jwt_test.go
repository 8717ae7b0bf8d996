package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	s, err := NewSigner("s3cret")
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	token, err := s.Sign(Claims{Sub: "user-1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	claims, err := s.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Sub != "user-1" || claims.Email != "a@example.com" || claims.Exp-claims.Iat != int64(DefaultTTL/time.Second) {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestVerifyRejects(t *testing.T) {
	s, _ := NewSigner("s3cret")
	other, _ := NewSigner("other")
	good, _ := s.Sign(Claims{Sub: "user-1"})
	forged, _ := other.Sign(Claims{Sub: "user-1"})
	expired, _ := s.Sign(Claims{Sub: "user-1", Iat: 1, Exp: 2})

	tests := map[string]string{
		"garbage":   "not-a-token",
		"forged":    forged,
		"expired":   expired,
		"tampered":  good[:strings.LastIndex(good, ".")] + ".AAAA",
		"two parts": good[:strings.LastIndex(good, ".")],
	}
	for name, token := range tests {
		if _, err := s.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestNewSignerRequiresSecret(t *testing.T) {
	if _, err := NewSigner("  "); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
	if _, err := (&Signer{secret: []byte("x"), now: time.Now}).Sign(Claims{}); err == nil {
		t.Fatal("expected error for empty sub")
	}
}
