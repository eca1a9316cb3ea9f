// Package object defines the core Object identity and the sidecar envelope
// format persisted alongside every ciphertext in ObjectStore.
//
// An Object is identified by (principal, uuid). Its ciphertext and sidecar
// live at deterministic, derivable keys so no separate index is required:
//
//	uploads/{principal}/{uuid}/{original_name}.enc
//	uploads/{principal}/{uuid}/metadata.json
package object

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// VerificationStatus records whether the outer (passphrase-derived) layer
// was checked before re-encryption.
type VerificationStatus string

const (
	VerificationVerified    VerificationStatus = "VERIFIED"
	VerificationNotVerified VerificationStatus = "NOT_VERIFIED"
)

// Algorithm is the fixed cipher identifier recorded in every sidecar.
const Algorithm = "AES-GCM-256"

// SidecarVersion is the fixed sidecar format version.
const SidecarVersion = "1.0"

// ID identifies an Object by its owning principal and v4 UUID.
type ID struct {
	Principal string
	UUID      uuid.UUID
}

// NewID mints a fresh v4-UUID object identity for the given principal.
func NewID(principal string) ID {
	return ID{Principal: principal, UUID: uuid.New()}
}

// ParseID reconstructs an ID from its string parts, validating that UUID is
// a well-formed v4 UUID.
func ParseID(principal, rawUUID string) (ID, error) {
	u, err := uuid.Parse(rawUUID)
	if err != nil {
		return ID{}, fmt.Errorf("object: invalid object_id %q: %w", rawUUID, err)
	}
	return ID{Principal: principal, UUID: u}, nil
}

// CiphertextKey returns the ObjectStore key for this object's encrypted
// payload.
func (id ID) CiphertextKey(originalName string) string {
	return fmt.Sprintf("uploads/%s/%s/%s.enc", id.Principal, id.UUID, originalName)
}

// SidecarKey returns the ObjectStore key for this object's envelope JSON.
func (id ID) SidecarKey() string {
	return fmt.Sprintf("uploads/%s/%s/metadata.json", id.Principal, id.UUID)
}

// Prefix returns the principal-scoped prefix under which every key for this
// object (and every other object owned by the same principal) lives.
func (id ID) Prefix() string {
	return fmt.Sprintf("uploads/%s/", id.Principal)
}

// String renders "principal/uuid", used only for logging.
func (id ID) String() string {
	return id.Principal + "/" + id.UUID.String()
}

// IsEncSuffixVariant reports whether name ends in one of the two suffixes
// DELETE /api/files must tolerate: ".enc" (current) and ".encrypted" (legacy).
func IsEncSuffixVariant(name string) bool {
	return strings.HasSuffix(name, ".enc") || strings.HasSuffix(name, ".encrypted")
}

// Sidecar is the byte-exact envelope JSON stored at ID.SidecarKey().
//
// The field named Kek actually carries the wrapped data key, not a
// key-encryption-key; the misnomer is a legacy name kept for wire
// compatibility and must be emitted/consumed exactly as written here.
type Sidecar struct {
	Version            string             `json:"version"`
	Kek                string             `json:"kek"`
	Algorithm          string             `json:"algorithm"`
	OriginalFilename   string             `json:"original_filename"`
	OriginalSize       int64              `json:"original_size"`
	EncryptedSize      int64              `json:"encrypted_size"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	TimestampMs        int64              `json:"timestamp"`
}

// NewSidecar builds the sidecar for a freshly ingested object.
func NewSidecar(wrappedDataKeyB64, originalFilename string, originalSize, encryptedSize int64, verified bool, timestampMs int64) Sidecar {
	status := VerificationNotVerified
	if verified {
		status = VerificationVerified
	}
	return Sidecar{
		Version:            SidecarVersion,
		Kek:                wrappedDataKeyB64,
		Algorithm:          Algorithm,
		OriginalFilename:   originalFilename,
		OriginalSize:       originalSize,
		EncryptedSize:      encryptedSize,
		VerificationStatus: status,
		TimestampMs:        timestampMs,
	}
}
