package ingest

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ingestguard/ingestguard/internal/apperror"
	"github.com/ingestguard/ingestguard/internal/object"
)

// ListedObject is one principal-scoped record returned by the listing API:
// the decoded sidecar fields plus the object_id, and never the wrapped data
// key itself.
type ListedObject struct {
	ObjectID           string                    `json:"object_id"`
	OriginalFilename   string                    `json:"original_filename"`
	OriginalSize       int64                     `json:"original_size"`
	EncryptedSize      int64                     `json:"encrypted_size"`
	VerificationStatus object.VerificationStatus `json:"verification_status"`
	TimestampMs        int64                     `json:"timestamp"`
}

// List enumerates every object owned by principal.
func (p *Pipeline) List(ctx context.Context, principal string) ([]ListedObject, error) {
	prefix := "uploads/" + principal + "/"
	infos, err := p.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	var out []ListedObject
	for _, info := range infos {
		if !strings.HasSuffix(info.Key, "/metadata.json") {
			continue
		}

		objectID := extractObjectID(prefix, info.Key)
		if objectID == "" {
			continue
		}

		raw, err := p.store.GetBytes(ctx, info.Key)
		if err != nil {
			continue
		}

		var sc object.Sidecar
		if err := json.Unmarshal(raw, &sc); err != nil {
			continue
		}

		out = append(out, ListedObject{
			ObjectID:           objectID,
			OriginalFilename:   sc.OriginalFilename,
			OriginalSize:       sc.OriginalSize,
			EncryptedSize:      sc.EncryptedSize,
			VerificationStatus: sc.VerificationStatus,
			TimestampMs:        sc.TimestampMs,
		})
	}
	return out, nil
}

// extractObjectID pulls the {uuid} path segment out of
// "uploads/{principal}/{uuid}/metadata.json".
func extractObjectID(prefix, key string) string {
	rest := strings.TrimPrefix(key, prefix)
	idx := strings.Index(rest, "/")
	if idx < 0 {
		return ""
	}
	return rest[:idx]
}

// Delete removes both sibling keys for (principal, objectID, originalName).
// Deleting a non-existent object is idempotent and returns found=false
// rather than an error.
func (p *Pipeline) Delete(ctx context.Context, principal, rawObjectID, originalName string) (found bool, err error) {
	id, err := object.ParseID(principal, rawObjectID)
	if err != nil {
		return false, apperror.New(apperror.FormatError, "delete_parse_id", err)
	}

	sidecarKey := id.SidecarKey()
	if _, getErr := p.store.GetBytes(ctx, sidecarKey); getErr != nil {
		if apperror.KindOf(getErr) == apperror.NotFound {
			return false, nil
		}
		return false, getErr
	}

	ciphertextKey := id.CiphertextKey(strings.TrimSuffix(strings.TrimSuffix(originalName, ".encrypted"), ".enc"))
	if err := p.store.Delete(ctx, ciphertextKey); err != nil {
		return false, err
	}
	if err := p.store.Delete(ctx, sidecarKey); err != nil {
		return false, err
	}
	return true, nil
}
