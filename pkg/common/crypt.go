package common

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether plain matches the stored bcrypt hash.
func CheckPassword(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// PasswordResetToken holds the generated reset token pair: the plain token
// is mailed to the user, only its sha256 digest is persisted.
type PasswordResetToken struct {
	Plain     string
	Hashed    string
	ExpiresAt time.Time
}

func NewPasswordResetToken() PasswordResetToken {
	plain := RandomHex(32)
	return PasswordResetToken{
		Plain:     plain,
		Hashed:    Sha256Hash(plain),
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
}
