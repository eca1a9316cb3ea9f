// Package consumer implements the downstream half of the pipeline: pull
// upload events, unwrap the data key, stream-decrypt the inner ciphertext,
// and hand the plaintext to a Sink. It runs as a pool of workers pulling
// from the same durable consumer, each independently acking or naking its
// own deliveries; failures are never terminated, only naked for redelivery.
package consumer

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/ingestguard/ingestguard/internal/apperror"
	"github.com/ingestguard/ingestguard/internal/crypto"
	"github.com/ingestguard/ingestguard/internal/event"
	"github.com/ingestguard/ingestguard/internal/eventbus"
	"github.com/ingestguard/ingestguard/internal/logger"
	"github.com/ingestguard/ingestguard/internal/metrics"
	"github.com/ingestguard/ingestguard/internal/objectstore"
	"github.com/ingestguard/ingestguard/internal/telemetry"
)

// Sink receives the decrypted plaintext of one consumed object. Implementations
// must fully drain r before returning; the pipeline discards its scratch file
// as soon as Sink returns.
type Sink interface {
	Receive(ctx context.Context, ev event.UploadEvent, r io.Reader, size int64) error
}

// Config controls Pipeline behavior not already captured by its collaborators.
type Config struct {
	MasterKey      []byte
	ScratchDir     string
	MaxObjectBytes int64
	Workers        int
	FetchBatch     int
	PollInterval   time.Duration
}

// Pipeline pulls UploadEvents off an EventBus, decrypts each referenced
// object, and hands the plaintext to a Sink.
type Pipeline struct {
	cfg     Config
	bus     eventbus.Bus
	store   objectstore.Store
	sink    Sink
	metrics *metrics.ConsumerMetrics

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a Pipeline. It does not start consuming until Start is called.
func New(cfg Config, bus eventbus.Bus, store objectstore.Store, sink Sink, m *metrics.ConsumerMetrics) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.FetchBatch <= 0 {
		cfg.FetchBatch = 10
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	return &Pipeline{cfg: cfg, bus: bus, store: store, sink: sink, metrics: m}
}

// Start launches cfg.Workers goroutines, each independently pulling and
// processing deliveries. It returns immediately.
func (p *Pipeline) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.cfg.Workers; i++ {
		p.wg.Add(1)
		go p.runWorker(i)
	}
	p.metrics.SetActiveWorkers(p.cfg.Workers)
}

// Stop cancels all workers and blocks until they have exited.
func (p *Pipeline) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.metrics.SetActiveWorkers(0)
}

func (p *Pipeline) runWorker(id int) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.drain(id)
		}
	}
}

// drain pulls one batch and processes every delivery in it.
func (p *Pipeline) drain(workerID int) {
	deliveries, err := p.bus.Fetch(p.ctx, p.cfg.FetchBatch)
	if err != nil {
		logger.ErrorCtx(p.ctx, "fetch failed", logger.Attempt(workerID), logger.Err(err))
		return
	}

	for _, d := range deliveries {
		select {
		case <-p.ctx.Done():
			return
		default:
		}
		p.process(workerID, d)
	}
}

// process handles a single delivery end to end: get sidecar, unwrap data
// key, stream-decrypt ciphertext, hand to sink, ack. Every failure class
// (NotFound, FormatError, AuthFailure, TransientIO) leaves the delivery
// un-acked so it remains eligible for redelivery: there is no permanent
// termination path in this pipeline, so nothing here ever calls Term —
// backoff on repeated failure is the consumer's responsibility, not this
// pipeline's.
func (p *Pipeline) process(workerID int, d eventbus.Delivery) {
	start := time.Now()
	ev := d.Event
	var err error
	defer func() {
		p.metrics.ObserveProcessed(outcomeFromErr(err), time.Since(start))
	}()

	ctx, span := telemetry.StartConsumeSpan(p.ctx, telemetry.SpanConsumeProcess, ev.EventID.String(), workerID,
		telemetry.ObjectID(ev.ObjectID.String()), telemetry.Principal(ev.Principal))
	defer func() {
		if err != nil {
			telemetry.RecordError(ctx, err)
			span.SetAttributes(telemetry.Outcome("nak"))
		} else {
			span.SetAttributes(telemetry.Outcome("ack"))
		}
		span.End()
	}()

	sidecarBytes, getErr := p.store.GetBytes(p.ctx, ev.EnvelopeRef)
	if getErr != nil {
		err = getErr
		if apperror.KindOf(err) == apperror.NotFound {
			logger.ErrorCtx(p.ctx, "sidecar missing, nak for redelivery",
				logger.EventID(ev.EventID.String()), logger.Err(err))
		}
		d.Nak()
		return
	}

	var sidecar sidecarView
	if unmarshalErr := json.Unmarshal(sidecarBytes, &sidecar); unmarshalErr != nil {
		err = apperror.New(apperror.FormatError, "unmarshal_sidecar", unmarshalErr)
		logger.ErrorCtx(p.ctx, "malformed sidecar, nak for redelivery",
			logger.EventID(ev.EventID.String()), logger.Err(err))
		d.Nak()
		return
	}

	_, unwrapSpan := telemetry.StartSpan(ctx, telemetry.SpanConsumeUnwrap)
	dataKey, unwrapErr := crypto.UnwrapDataKey(sidecar.Kek, p.cfg.MasterKey)
	if unwrapErr != nil {
		err = unwrapErr
		unwrapSpan.RecordError(err)
		unwrapSpan.End()
		logger.ErrorCtx(p.ctx, "data key unwrap failed, nak for redelivery",
			logger.EventID(ev.EventID.String()), logger.Err(err))
		d.Nak()
		return
	}
	unwrapSpan.End()
	defer crypto.Zero(dataKey)

	ciphertext, getErr := p.store.GetStream(p.ctx, ev.CiphertextRef)
	if getErr != nil {
		err = getErr
		if apperror.KindOf(err) == apperror.NotFound {
			logger.ErrorCtx(p.ctx, "ciphertext missing, nak for redelivery",
				logger.EventID(ev.EventID.String()), logger.Err(err))
		}
		d.Nak()
		return
	}
	defer ciphertext.Close()

	plainFile, spoolErr := spoolTemp(p.cfg.ScratchDir, "consume-plain-*")
	if spoolErr != nil {
		err = spoolErr
		d.Nak()
		return
	}
	defer closeAndRemove(plainFile)

	_, decryptSpan := telemetry.StartSpan(ctx, telemetry.SpanConsumeDecrypt)
	size, decErr := crypto.DecryptInnerStream(ciphertext, plainFile, dataKey, p.cfg.ScratchDir, p.cfg.MaxObjectBytes)
	if decErr != nil {
		err = decErr
		decryptSpan.RecordError(err)
		decryptSpan.End()
		logger.ErrorCtx(p.ctx, "inner decrypt failed, nak for redelivery",
			logger.EventID(ev.EventID.String()), logger.Err(err))
		d.Nak()
		return
	}
	decryptSpan.SetAttributes(telemetry.Size(size))
	decryptSpan.End()

	if _, seekErr := plainFile.Seek(0, io.SeekStart); seekErr != nil {
		err = apperror.New(apperror.TransientIO, "seek_consumed_plaintext", seekErr)
		d.Nak()
		return
	}

	_, sinkSpan := telemetry.StartSpan(ctx, telemetry.SpanConsumeSink)
	sinkErr := p.sink.Receive(p.ctx, ev, plainFile, size)
	if sinkErr != nil {
		sinkSpan.RecordError(sinkErr)
	}
	sinkSpan.End()
	if sinkErr != nil {
		err = sinkErr
		d.Nak()
		return
	}

	d.Ack()
}

// sidecarView decodes only the field the consumer needs.
type sidecarView struct {
	Kek string `json:"kek"`
}

func outcomeFromErr(err error) string {
	if err == nil {
		return "ack"
	}
	return string(apperror.KindOf(err))
}
