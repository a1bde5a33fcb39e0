package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"

	token, err := GenerateToken(secret, "web")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Client != "web" {
		t.Errorf("expected client 'web', got %q", claims.Client)
	}
	if claims.ID == "" {
		t.Error("expected a token id")
	}
}

func TestTokenIDsAreUnique(t *testing.T) {
	a, _ := GenerateToken("s", "cli")
	b, _ := GenerateToken("s", "cli")
	ca, _ := ValidateToken("s", a)
	cb, _ := ValidateToken("s", b)
	if ca.ID == cb.ID {
		t.Errorf("expected distinct ids, both %q", ca.ID)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _ := GenerateToken("secret1", "web")

	if _, err := ValidateToken("secret2", token); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	if _, err := ValidateToken("secret", "not-a-token"); err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestTokenExpiry(t *testing.T) {
	token, _ := GenerateToken("test", "web")
	claims, _ := ValidateToken("test", token)

	diff := time.Now().Add(TokenExpiry).Sub(claims.ExpiresAt.Time)
	if diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("token expiry too far from expected: diff=%v", diff)
	}
}

func TestGenerateAccessKey(t *testing.T) {
	key, err := GenerateAccessKey(24)
	if err != nil {
		t.Fatalf("GenerateAccessKey: %v", err)
	}
	if len(key) != 24 {
		t.Fatalf("expected 24 characters, got %d", len(key))
	}
	for _, r := range key {
		if !strings.ContainsRune(keyCharset, r) {
			t.Errorf("unexpected character %q", r)
		}
	}
}

func TestAccessKeyHash(t *testing.T) {
	// Keep the test fast; production uses the default cost.
	hash, err := bcrypt.GenerateFromPassword([]byte("open-sesame"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	if err := CheckAccessKey(string(hash), "open-sesame"); err != nil {
		t.Errorf("expected key to match: %v", err)
	}
	if err := CheckAccessKey(string(hash), "wrong"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
	if err := CheckAccessKey("", "open-sesame"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey for empty hash, got %v", err)
	}
}

func TestHashAccessKey(t *testing.T) {
	hash, err := HashAccessKey("k")
	if err != nil {
		t.Fatalf("HashAccessKey: %v", err)
	}
	if err := CheckAccessKey(hash, "k"); err != nil {
		t.Errorf("expected round trip to match: %v", err)
	}
}
