package consumer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ingestguard/ingestguard/internal/apperror"
	"github.com/ingestguard/ingestguard/internal/event"
	"github.com/ingestguard/ingestguard/pkg/bufpool"
)

// FileSink writes each consumed object's plaintext to disk under a
// principal-scoped directory, keyed by object ID.
type FileSink struct {
	rootDir string
}

// NewFileSink builds a FileSink rooted at rootDir. rootDir is created if
// it does not already exist.
func NewFileSink(rootDir string) (*FileSink, error) {
	if err := os.MkdirAll(rootDir, 0o750); err != nil {
		return nil, apperror.New(apperror.ConfigFatal, "filesink_mkdir", err)
	}
	return &FileSink{rootDir: rootDir}, nil
}

// Receive implements Sink.
func (s *FileSink) Receive(_ context.Context, ev event.UploadEvent, r io.Reader, _ int64) error {
	dir := filepath.Join(s.rootDir, ev.Principal)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return apperror.New(apperror.TransientIO, "filesink_mkdir_principal", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.out", ev.ObjectID.String()))
	f, err := os.Create(path)
	if err != nil {
		return apperror.New(apperror.TransientIO, "filesink_create", err)
	}
	defer f.Close()

	buf := bufpool.Get(bufpool.DefaultLargeSize)
	defer bufpool.Put(buf)

	if _, err := io.CopyBuffer(f, r, buf); err != nil {
		return apperror.New(apperror.TransientIO, "filesink_copy", err)
	}
	return nil
}
