// Package ingest orchestrates the upload path: authenticate, stream
// decrypt-verify, stream re-encrypt under a fresh data key, wrap the data
// key, persist ciphertext + sidecar, and publish the upload event. It also
// serves the principal-scoped listing/deletion API.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/ingestguard/ingestguard/internal/apperror"
	"github.com/ingestguard/ingestguard/internal/credential"
	"github.com/ingestguard/ingestguard/internal/crypto"
	"github.com/ingestguard/ingestguard/internal/event"
	"github.com/ingestguard/ingestguard/internal/eventbus"
	"github.com/ingestguard/ingestguard/internal/logger"
	"github.com/ingestguard/ingestguard/internal/metrics"
	"github.com/ingestguard/ingestguard/internal/object"
	"github.com/ingestguard/ingestguard/internal/objectstore"
	"github.com/ingestguard/ingestguard/internal/telemetry"
)

// Config controls Pipeline behavior not already captured by its collaborators.
type Config struct {
	MasterKey        []byte
	VerifyOuterLayer bool
	ScratchDir       string
	MaxUploadBytes   int64
	Bucket           string
}

// Pipeline wires CredentialStore, CryptoCore, ObjectStore, and EventBus into
// the ingest Happy Path.
type Pipeline struct {
	cfg         Config
	credentials credential.Store
	store       objectstore.Store
	bus         eventbus.Bus
	metrics     *metrics.IngestMetrics
}

// New builds a Pipeline.
func New(cfg Config, credentials credential.Store, store objectstore.Store, bus eventbus.Bus, m *metrics.IngestMetrics) *Pipeline {
	return &Pipeline{cfg: cfg, credentials: credentials, store: store, bus: bus, metrics: m}
}

// Result is what callers need to answer the HTTP request.
type Result struct {
	ObjectID           uuid.UUID
	VerificationStatus object.VerificationStatus
}

// Ingest runs the full Happy Path for one upload. body is the raw,
// outer-encrypted request payload; principal/passphrase have already been
// read from the multipart form but not yet verified.
func (p *Pipeline) Ingest(ctx context.Context, principal, passphrase, originalFilename string, body io.Reader) (Result, error) {
	start := time.Now()
	p.metrics.IncActiveUploads(1)
	defer p.metrics.IncActiveUploads(-1)

	var result Result
	var err error
	defer func() {
		p.metrics.ObserveRequest("upload", statusFromErr(err), time.Since(start))
	}()

	// Step 1: authenticate.
	if err = p.credentials.Validate(ctx, principal, passphrase); err != nil {
		return result, err
	}

	id := object.NewID(principal)

	ctx, span := telemetry.StartIngestSpan(ctx, telemetry.SpanIngestUpload, id.UUID.String(), principal,
		telemetry.Filename(originalFilename), telemetry.Bucket(p.cfg.Bucket))
	defer func() {
		if err != nil {
			telemetry.RecordError(ctx, err)
		}
		span.End()
	}()

	// Steps 2-3: stream decrypt-verify into scratch sink S1.
	verified := true
	plainFile, err := spoolTemp(p.cfg.ScratchDir, "ingest-plain-*")
	if err != nil {
		return result, err
	}
	defer closeAndRemove(plainFile)

	var originalSize int64
	if p.cfg.VerifyOuterLayer {
		originalSize, verified, err = crypto.DecryptOuterStream(body, plainFile, passphrase, p.cfg.ScratchDir, p.cfg.MaxUploadBytes)
		if err != nil {
			return result, err
		}
	} else {
		verified = false
		originalSize, err = io.Copy(plainFile, io.LimitReader(body, p.cfg.MaxUploadBytes+1))
		if err != nil {
			return result, apperror.New(apperror.TransientIO, "copy_unverified_body", err)
		}
		if originalSize > p.cfg.MaxUploadBytes {
			return result, apperror.New(apperror.Capacity, "copy_unverified_body", fmt.Errorf("upload exceeds %d bytes", p.cfg.MaxUploadBytes))
		}
	}
	if _, err = plainFile.Seek(0, io.SeekStart); err != nil {
		return result, apperror.New(apperror.TransientIO, "seek_plaintext", err)
	}

	// Step 4: stream re-encrypt into scratch sink S2 under a fresh data key.
	innerFile, err := spoolTemp(p.cfg.ScratchDir, "ingest-inner-*")
	if err != nil {
		return result, err
	}
	defer closeAndRemove(innerFile)

	encryptCtx, encryptSpan := telemetry.StartSpan(ctx, telemetry.SpanIngestEncrypt)
	encryptStart := time.Now()
	dataKey, ciphertextLength, err := crypto.EncryptInnerStream(plainFile, innerFile, p.cfg.ScratchDir, p.cfg.MaxUploadBytes)
	p.metrics.ObserveEncrypt(time.Since(encryptStart))
	if err != nil {
		telemetry.RecordError(encryptCtx, err)
		encryptSpan.End()
		return result, err
	}
	encryptSpan.SetAttributes(telemetry.Size(ciphertextLength))
	encryptSpan.End()

	// Step 5: wrap the data key, then zero it immediately.
	wrapped, err := crypto.WrapDataKey(dataKey, p.cfg.MasterKey)
	crypto.Zero(dataKey)
	if err != nil {
		return result, err
	}

	if _, err = innerFile.Seek(0, io.SeekStart); err != nil {
		return result, apperror.New(apperror.TransientIO, "seek_innerfile", err)
	}

	// innerFile holds nonce || ciphertext || tag; ciphertextLength counts
	// only ciphertext || tag, so the stored object is NonceSize bytes longer.
	storedSize := crypto.NonceSize + ciphertextLength

	// Step 6: derive keys.
	ciphertextKey := id.CiphertextKey(originalFilename)
	sidecarKey := id.SidecarKey()

	// Step 7: persist ciphertext.
	persistCtx, persistSpan := telemetry.StartSpan(ctx, telemetry.SpanIngestPersist, trace.WithAttributes(telemetry.StorageKey(ciphertextKey)))
	err = p.store.PutStream(ctx, ciphertextKey, "application/octet-stream", innerFile, storedSize)
	if err != nil {
		telemetry.RecordError(persistCtx, err)
		persistSpan.End()
		return result, err
	}
	persistSpan.End()

	// Step 8-9: build and persist sidecar.
	status := object.VerificationNotVerified
	if verified {
		status = object.VerificationVerified
	}
	sidecar := object.NewSidecar(wrapped, originalFilename, originalSize, storedSize, verified, time.Now().UnixMilli())
	sidecarJSON, err := json.Marshal(sidecar)
	if err != nil {
		_ = p.store.Delete(ctx, ciphertextKey)
		return result, apperror.New(apperror.FormatError, "marshal_sidecar", err)
	}

	if err = p.store.PutSmall(ctx, sidecarKey, "application/json", sidecarJSON); err != nil {
		// Ordering/atomicity rule: if the sidecar put fails after the
		// ciphertext put succeeded, best-effort delete the partial sibling.
		_ = p.store.Delete(ctx, ciphertextKey)
		return result, err
	}

	// Step 10: publish the upload event.
	ev := event.New(principal, id.UUID, ciphertextKey, sidecarKey, p.cfg.Bucket, time.Now().UnixMilli())
	publishCtx, publishSpan := telemetry.StartSpan(ctx, telemetry.SpanIngestPublish, trace.WithAttributes(telemetry.EventID(ev.EventID.String())))
	err = p.bus.Publish(ctx, ev)
	if err != nil {
		// Per spec: sidecar + ciphertext are left in place; the failure is
		// surfaced as a server error. No cleanup here.
		telemetry.RecordError(publishCtx, err)
		publishSpan.End()
		logger.ErrorCtx(ctx, "failed to publish upload event after successful persist",
			logger.ObjectID(id.UUID.String()), logger.Err(err))
		return result, err
	}
	publishSpan.End()

	p.metrics.RecordVerificationStatus(string(status))
	p.metrics.RecordUploadBytes(originalSize)

	result = Result{ObjectID: id.UUID, VerificationStatus: status}
	return result, nil
}

func statusFromErr(err error) int {
	if err == nil {
		return 200
	}
	switch apperror.KindOf(err) {
	case apperror.AuthFailure:
		return 401
	case apperror.FormatError:
		return 400
	case apperror.NotFound:
		return 404
	case apperror.Capacity:
		return 413
	default:
		return 500
	}
}
