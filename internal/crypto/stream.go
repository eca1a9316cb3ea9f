package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"os"

	"github.com/ingestguard/ingestguard/internal/apperror"
	"github.com/ingestguard/ingestguard/pkg/bufpool"
)

// Fixed wire-format parameters.
const (
	NonceSize = 12
	TagSize   = 16

	// ChunkSize is the buffer size used when copying bytes between I/O
	// boundaries (HTTP body, scratch files, ObjectStore). It does not
	// appear in the wire format: GCM's tag is produced exactly once, at
	// Seal/Open finalization, regardless of how the plaintext was buffered
	// on the way there.
	ChunkSize = 8 * 1024
)

// DataKeySize is the size in bytes of a per-object data key.
const DataKeySize = 32

// newGCM builds an AES-256-GCM AEAD from a 32-byte key.
func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}

// spoolToScratch copies up to maxBytes from src into a new temp file in dir,
// returning the file positioned at offset 0 for reading back. This is the
// bounded buffer CryptoCore uses to accumulate a layer's ciphertext/plaintext
// before the single Seal/Open call: resident memory during the copy is
// ChunkSize, and the scratch file never exceeds maxBytes.
func spoolToScratch(dir string, src io.Reader, maxBytes int64) (*os.File, int64, error) {
	f, err := os.CreateTemp(dir, "ingestguard-scratch-*")
	if err != nil {
		return nil, 0, apperror.New(apperror.TransientIO, "spool_to_scratch", fmt.Errorf("create temp file: %w", err))
	}

	buf := bufpool.Get(ChunkSize)
	defer bufpool.Put(buf)

	limited := io.LimitReader(src, maxBytes+1)
	n, err := io.CopyBuffer(f, limited, buf)
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, 0, apperror.New(apperror.TransientIO, "spool_to_scratch", fmt.Errorf("copy to scratch: %w", err))
	}
	if n > maxBytes {
		f.Close()
		os.Remove(f.Name())
		return nil, 0, apperror.New(apperror.Capacity, "spool_to_scratch", fmt.Errorf("input exceeds %d bytes", maxBytes))
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, 0, apperror.New(apperror.TransientIO, "spool_to_scratch", fmt.Errorf("seek scratch file: %w", err))
	}

	return f, n, nil
}

// closeAndRemove closes and unlinks a scratch file, best-effort.
func closeAndRemove(f *os.File) {
	name := f.Name()
	f.Close()
	os.Remove(name)
}

// DecryptOuterStream reads `salt(16) || nonce(12) || ciphertext || tag(16)`
// from src, derives the outer key from passphrase and the embedded salt,
// and writes the verified plaintext to sink. bytesWritten is only valid
// when verified is true; on AuthFailure the caller MUST NOT treat sink's
// contents as authentic.
//
// scratchDir bounds the ciphertext buffering: the body is spooled to a temp
// file (resident memory = ChunkSize) before the one-shot GCM Open, so an
// attacker cannot force unbounded RAM growth via a large upload — the scratch
// file itself is bounded by maxBytes.
func DecryptOuterStream(src io.Reader, sink io.Writer, passphrase string, scratchDir string, maxBytes int64) (bytesWritten int64, verified bool, err error) {
	var header [SaltSize + NonceSize]byte
	if _, err := io.ReadFull(src, header[:]); err != nil {
		return 0, false, apperror.New(apperror.FormatError, "decrypt_outer_stream", fmt.Errorf("read salt/nonce header: %w", err))
	}
	salt := header[:SaltSize]
	nonce := header[SaltSize:]

	key := DeriveKey(passphrase, salt)
	defer Zero(key)

	gcm, err := newGCM(key)
	if err != nil {
		return 0, false, apperror.New(apperror.FormatError, "decrypt_outer_stream", err)
	}

	scratch, n, err := spoolToScratch(scratchDir, src, maxBytes)
	if err != nil {
		return 0, false, err
	}
	defer closeAndRemove(scratch)

	ciphertext := make([]byte, n)
	if _, err := io.ReadFull(scratch, ciphertext); err != nil {
		return 0, false, apperror.New(apperror.FormatError, "decrypt_outer_stream", fmt.Errorf("read spooled ciphertext: %w", err))
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return 0, false, apperror.New(apperror.AuthFailure, "decrypt_outer_stream", fmt.Errorf("gcm tag verification failed"))
	}

	written, err := sink.Write(plaintext)
	if err != nil {
		return 0, false, apperror.New(apperror.TransientIO, "decrypt_outer_stream", fmt.Errorf("write plaintext sink: %w", err))
	}

	return int64(written), true, nil
}

// EncryptInnerStream generates a fresh 32-byte data key and 12-byte nonce,
// then writes `nonce(12) || ciphertext || tag(16)` to sink. The caller MUST
// pass dataKey to WrapDataKey and then Zero it; EncryptInnerStream never
// retains or zeroes it itself, since the caller needs it a moment longer.
func EncryptInnerStream(src io.Reader, sink io.Writer, scratchDir string, maxBytes int64) (dataKey []byte, ciphertextLength int64, err error) {
	dataKey = make([]byte, DataKeySize)
	if _, err := rand.Read(dataKey); err != nil {
		return nil, 0, apperror.New(apperror.TransientIO, "encrypt_inner_stream", fmt.Errorf("crypto/rand data key: %w", err))
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		Zero(dataKey)
		return nil, 0, apperror.New(apperror.TransientIO, "encrypt_inner_stream", fmt.Errorf("crypto/rand nonce: %w", err))
	}

	gcm, err := newGCM(dataKey)
	if err != nil {
		Zero(dataKey)
		return nil, 0, apperror.New(apperror.FormatError, "encrypt_inner_stream", err)
	}

	scratch, n, err := spoolToScratch(scratchDir, src, maxBytes)
	if err != nil {
		Zero(dataKey)
		return nil, 0, err
	}
	defer closeAndRemove(scratch)

	plaintext := make([]byte, n)
	if _, err := io.ReadFull(scratch, plaintext); err != nil {
		Zero(dataKey)
		return nil, 0, apperror.New(apperror.FormatError, "encrypt_inner_stream", fmt.Errorf("read spooled plaintext: %w", err))
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	if _, err := sink.Write(nonce); err != nil {
		Zero(dataKey)
		return nil, 0, apperror.New(apperror.TransientIO, "encrypt_inner_stream", fmt.Errorf("write nonce: %w", err))
	}
	if _, err := sink.Write(ciphertext); err != nil {
		Zero(dataKey)
		return nil, 0, apperror.New(apperror.TransientIO, "encrypt_inner_stream", fmt.Errorf("write ciphertext: %w", err))
	}

	return dataKey, int64(len(ciphertext)), nil
}

// DecryptInnerStream reads `nonce(12) || ciphertext || tag(16)` from src and
// writes the verified plaintext to sink, using the unwrapped data key.
func DecryptInnerStream(src io.Reader, sink io.Writer, dataKey []byte, scratchDir string, maxBytes int64) (bytesWritten int64, err error) {
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(src, nonce); err != nil {
		return 0, apperror.New(apperror.FormatError, "decrypt_inner_stream", fmt.Errorf("read nonce: %w", err))
	}

	gcm, err := newGCM(dataKey)
	if err != nil {
		return 0, apperror.New(apperror.FormatError, "decrypt_inner_stream", err)
	}

	scratch, n, err := spoolToScratch(scratchDir, src, maxBytes)
	if err != nil {
		return 0, err
	}
	defer closeAndRemove(scratch)

	ciphertext := make([]byte, n)
	if _, err := io.ReadFull(scratch, ciphertext); err != nil {
		return 0, apperror.New(apperror.FormatError, "decrypt_inner_stream", fmt.Errorf("read spooled ciphertext: %w", err))
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return 0, apperror.New(apperror.AuthFailure, "decrypt_inner_stream", fmt.Errorf("gcm tag verification failed"))
	}

	written, err := sink.Write(plaintext)
	if err != nil {
		return 0, apperror.New(apperror.TransientIO, "decrypt_inner_stream", fmt.Errorf("write plaintext sink: %w", err))
	}

	return int64(written), nil
}
