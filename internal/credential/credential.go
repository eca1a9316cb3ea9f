// Package credential resolves passphrase -> principal. Passphrases are never
// stored recoverably: only a salted PBKDF2 hash is persisted, reusing
// CryptoCore's key derivation. The plaintext passphrase lives only within
// the scope of the HTTP request that presented it.
package credential

import (
	"context"
	"crypto/subtle"

	"github.com/ingestguard/ingestguard/internal/apperror"
	"github.com/ingestguard/ingestguard/internal/crypto"
)

// Record is the persisted credential for one principal.
type Record struct {
	Principal    string
	Salt         []byte
	PassphraseHash []byte
}

// Store resolves and bootstraps principal credentials.
type Store interface {
	// Validate checks passphrase against the stored hash for principal,
	// returning ErrInvalid (AuthFailure) on any mismatch. It never
	// distinguishes "unknown principal" from "wrong passphrase".
	Validate(ctx context.Context, principal, passphrase string) error

	// Bootstrap creates or overwrites the credential for principal.
	Bootstrap(ctx context.Context, principal, passphrase string) error
}

// HashPassphrase derives a salted hash suitable for storage, reusing
// CryptoCore's PBKDF2 parameters.
func HashPassphrase(passphrase string) (salt, hash []byte, err error) {
	salt, err = crypto.NewSalt()
	if err != nil {
		return nil, nil, err
	}
	hash = crypto.DeriveKey(passphrase, salt)
	return salt, hash, nil
}

// VerifyPassphrase recomputes the hash for passphrase under salt and
// compares it to hash in constant time.
func VerifyPassphrase(passphrase string, salt, hash []byte) bool {
	candidate := crypto.DeriveKey(passphrase, salt)
	return subtle.ConstantTimeCompare(candidate, hash) == 1
}

// errInvalid is the uniform, generic error returned for any credential
// failure: wrong passphrase and unknown principal must be indistinguishable.
var errInvalid = apperror.New(apperror.AuthFailure, "validate_passphrase", errInvalidCredentials{})

type errInvalidCredentials struct{}

func (errInvalidCredentials) Error() string { return "invalid principal or passphrase" }

// ErrInvalid is returned by Validate on any auth failure.
func ErrInvalid() error { return errInvalid }
