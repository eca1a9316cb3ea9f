package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"github.com/ingestguard/ingestguard/internal/apperror"
	"golang.org/x/crypto/pbkdf2"
)

// Fixed, binary-compat KDF parameters. These MUST NOT change: any
// modification breaks the ability to derive the same outer key for
// previously-uploaded ciphertext.
const (
	SaltSize         = 16
	KeySize          = 32 // 256-bit key
	PBKDF2Iterations = 100_000
)

// NewSalt generates a fresh random salt of SaltSize bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, apperror.New(apperror.TransientIO, "new_salt", fmt.Errorf("crypto/rand: %w", err))
	}
	return salt, nil
}

// DeriveKey derives a 256-bit key from passphrase and salt using
// PBKDF2-HMAC-SHA256. Deterministic: the same (passphrase, salt) pair always
// yields the same key, which is what lets the ingest pipeline re-derive the
// outer key purely from the request body.
func DeriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, PBKDF2Iterations, KeySize, sha256.New)
}
