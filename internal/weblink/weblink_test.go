package weblink

import (
	"testing"
	"time"
)

func TestMintVerifyRoundTrip(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Minute)

	token, err := issuer.Mint(42, "admin")
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	userID, err := claims.UserID()
	if err != nil {
		t.Fatalf("UserID() error = %v", err)
	}
	if userID != 42 {
		t.Errorf("user id = %d, want 42", userID)
	}
	if claims.Role != "admin" {
		t.Errorf("role = %q, want admin", claims.Role)
	}
	if claims.ID == "" {
		t.Error("token has no jti")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	issuer := NewIssuer("test-secret", -time.Minute)

	token, err := issuer.Mint(42, "member")
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if _, err := issuer.Verify(token); err == nil {
		t.Error("Verify() accepted an expired token")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewIssuer("secret-a", time.Minute).Mint(42, "member")
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if _, err := NewIssuer("secret-b", time.Minute).Verify(token); err == nil {
		t.Error("Verify() accepted a token signed with another secret")
	}
}

func TestMintUniqueJTI(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Minute)

	a, err := issuer.Mint(1, "member")
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	b, err := issuer.Mint(1, "member")
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	ca, _ := issuer.Verify(a)
	cb, _ := issuer.Verify(b)
	if ca.ID == cb.ID {
		t.Error("two minted tokens share a jti")
	}
}
