package common

import (
	"strings"
	"testing"
	"time"
)

func TestUUID(t *testing.T) {
	a, b := UUID(), UUID()
	if len(a) != 36 {
		t.Errorf("want 36-char uuid, got %q", a)
	}
	if a == b {
		t.Error("uuids must not repeat")
	}
}

func TestNextOrderNo(t *testing.T) {
	a, b := NextOrderNo(), NextOrderNo()
	if !strings.HasPrefix(a, "ORD") {
		t.Errorf("want ORD prefix, got %q", a)
	}
	if a == b {
		t.Error("order numbers must not repeat")
	}
}

func TestSha256Hash(t *testing.T) {
	got := Sha256Hash("hello")
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got != want {
		t.Errorf("want %s, got %s", want, got)
	}
}

func TestRandomHex(t *testing.T) {
	a := RandomHex(32)
	if len(a) != 64 {
		t.Errorf("want 64 hex chars, got %d", len(a))
	}
	if a == RandomHex(32) {
		t.Error("random tokens must not repeat")
	}
}

func TestPasswordHashing(t *testing.T) {
	hashed, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hashed == "password123" {
		t.Error("hash must not equal the plaintext")
	}
	if !CheckPassword("password123", hashed) {
		t.Error("correct password must verify")
	}
	if CheckPassword("wrongpassword", hashed) {
		t.Error("wrong password must not verify")
	}
}

func TestNewPasswordResetToken(t *testing.T) {
	reset := NewPasswordResetToken()
	if reset.Hashed != Sha256Hash(reset.Plain) {
		t.Error("stored digest must match the plain token")
	}
	ttl := time.Until(reset.ExpiresAt)
	if ttl < 9*time.Minute || ttl > 11*time.Minute {
		t.Errorf("reset tokens expire in 10 minutes, got %s", ttl)
	}
}
