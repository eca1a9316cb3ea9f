package consumer

import (
	"context"
	"io"

	"github.com/ingestguard/ingestguard/internal/apperror"
	"github.com/ingestguard/ingestguard/internal/event"
	"github.com/ingestguard/ingestguard/internal/logger"
)

// LogSink discards the plaintext and only logs that it was consumed. Useful
// for smoke-testing the pipeline without a real downstream system.
type LogSink struct{}

// NewLogSink builds a LogSink.
func NewLogSink() *LogSink { return &LogSink{} }

// Receive implements Sink.
func (LogSink) Receive(ctx context.Context, ev event.UploadEvent, r io.Reader, size int64) error {
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return apperror.New(apperror.TransientIO, "logsink_drain", err)
	}
	logger.InfoCtx(ctx, "consumed object",
		logger.Principal(ev.Principal),
		logger.ObjectID(ev.ObjectID.String()),
		logger.OriginalSize(n))
	_ = size
	return nil
}
