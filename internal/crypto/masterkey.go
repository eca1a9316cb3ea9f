package crypto

import (
	"encoding/base64"
	"fmt"

	"github.com/ingestguard/ingestguard/internal/apperror"
)

// ParseMasterKey decodes a base64-encoded 32-byte master key, as loaded from
// the MASTER_KEY environment variable (config.CryptoConfig.MasterKeyB64). An
// empty or malformed key is ConfigFatal: callers should treat it as a reason
// to exit the process non-zero at boot, not a request-scoped failure.
func ParseMasterKey(b64 string) ([]byte, error) {
	if b64 == "" {
		return nil, apperror.New(apperror.ConfigFatal, "parse_master_key", fmt.Errorf("MASTER_KEY is not set"))
	}

	key, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, apperror.New(apperror.ConfigFatal, "parse_master_key", fmt.Errorf("MASTER_KEY is not valid base64: %w", err))
	}

	if len(key) != DataKeySize {
		return nil, apperror.New(apperror.ConfigFatal, "parse_master_key", fmt.Errorf("MASTER_KEY must decode to %d bytes, got %d", DataKeySize, len(key)))
	}

	return key, nil
}
