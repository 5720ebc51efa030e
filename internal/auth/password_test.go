package auth

import (
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if hash == "secret1" {
		t.Error("hash must not equal the plaintext password")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("expected bcrypt hash, got '%s'", hash)
	}
}

func TestCheckPassword_Correct(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := CheckPassword(hash, "secret1"); err != nil {
		t.Errorf("expected password to match: %v", err)
	}
}

func TestCheckPassword_Wrong(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := CheckPassword(hash, "wrong-password"); err == nil {
		t.Error("expected mismatch error")
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	hash1, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hash2, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if hash1 == hash2 {
		t.Error("two hashes of the same password must differ")
	}
}
