package ingest

import (
	"os"

	"github.com/ingestguard/ingestguard/internal/apperror"
)

// spoolTemp creates a request-scoped scratch file under dir. Callers must
// closeAndRemove it on every exit path (success, error, cancellation).
func spoolTemp(dir, pattern string) (*os.File, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, apperror.New(apperror.TransientIO, "spool_temp", err)
	}
	return f, nil
}

func closeAndRemove(f *os.File) {
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
}
