package cryptox

import (
	"bytes"
	"testing"
)

func TestHashPassword_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1 := HashPassword(password, salt)
	key2 := HashPassword(password, salt)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}
	if len(key1) != KeyLen {
		t.Errorf("expected %d bytes, got %d", KeyLen, len(key1))
	}
}

func TestHashPassword_DifferentSalts(t *testing.T) {
	password := []byte("secret-password")

	key1 := HashPassword(password, []byte("salt-1"))
	key2 := HashPassword(password, []byte("salt-2"))

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestVerifyPassword(t *testing.T) {
	salt, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt: %v", err)
	}
	hash := HashPassword([]byte("pw"), salt)

	if !VerifyPassword(hash, []byte("pw"), salt) {
		t.Errorf("expected password to verify")
	}
	if VerifyPassword(hash, []byte("pw2"), salt) {
		t.Errorf("expected wrong password to fail")
	}
}

func TestNewSalt_Random(t *testing.T) {
	a, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt: %v", err)
	}
	b, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt: %v", err)
	}
	if len(a) != SaltLen || bytes.Equal(a, b) {
		t.Errorf("expected two distinct %d-byte salts", SaltLen)
	}
}
