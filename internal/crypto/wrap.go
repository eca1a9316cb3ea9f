package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/ingestguard/ingestguard/internal/apperror"
)

// WrappedKeySize is the decoded length of a wrapped data key:
// nonce(12) || wrapped data key(32) || tag(16).
const WrappedKeySize = NonceSize + DataKeySize + TagSize

// WrapDataKey wraps a 32-byte data key under masterKey, returning
// base64(nonce || AES-GCM(masterKey, nonce, dataKey) || tag). The caller is
// responsible for zeroing dataKey once this returns.
func WrapDataKey(dataKey, masterKey []byte) (string, error) {
	if len(dataKey) != DataKeySize {
		return "", apperror.New(apperror.FormatError, "wrap_data_key", fmt.Errorf("data key must be %d bytes, got %d", DataKeySize, len(dataKey)))
	}

	gcm, err := newGCM(masterKey)
	if err != nil {
		return "", apperror.New(apperror.FormatError, "wrap_data_key", err)
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", apperror.New(apperror.TransientIO, "wrap_data_key", fmt.Errorf("crypto/rand nonce: %w", err))
	}

	sealed := gcm.Seal(nil, nonce, dataKey, nil) // wrapped(32) || tag(16)

	wrapped := make([]byte, 0, WrappedKeySize)
	wrapped = append(wrapped, nonce...)
	wrapped = append(wrapped, sealed...)

	return base64.StdEncoding.EncodeToString(wrapped), nil
}

// UnwrapDataKey reverses WrapDataKey, returning the 32-byte data key. Fails
// with AuthFailure on any tag mismatch (including a master key rotated out
// from under a previously-wrapped key) and FormatError on malformed input.
func UnwrapDataKey(wrappedB64 string, masterKey []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(wrappedB64)
	if err != nil {
		return nil, apperror.New(apperror.FormatError, "unwrap_data_key", fmt.Errorf("base64 decode: %w", err))
	}
	if len(raw) != WrappedKeySize {
		return nil, apperror.New(apperror.FormatError, "unwrap_data_key", fmt.Errorf("wrapped key must decode to %d bytes, got %d", WrappedKeySize, len(raw)))
	}

	nonce := raw[:NonceSize]
	sealed := raw[NonceSize:]

	gcm, err := newGCM(masterKey)
	if err != nil {
		return nil, apperror.New(apperror.FormatError, "unwrap_data_key", err)
	}

	dataKey, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, apperror.New(apperror.AuthFailure, "unwrap_data_key", fmt.Errorf("gcm tag verification failed"))
	}

	return dataKey, nil
}
