package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsAreSafe(t *testing.T) {
	// Without InitRegistry, every constructor must return nil and every
	// method on that nil receiver must be a safe no-op.
	var ingest *IngestMetrics
	var consumer *ConsumerMetrics
	var store *ObjectStoreMetrics
	var bus *EventBusMetrics

	assert.Nil(t, NewIngestMetrics())
	assert.Nil(t, NewConsumerMetrics())
	assert.Nil(t, NewObjectStoreMetrics())
	assert.Nil(t, NewEventBusMetrics())

	assert.NotPanics(t, func() {
		ingest.ObserveRequest("upload", 200, time.Millisecond)
		ingest.RecordUploadBytes(1024)
		ingest.ObserveEncrypt(time.Millisecond)
		ingest.RecordVerificationStatus("VERIFIED")
		ingest.IncActiveUploads(1)

		consumer.ObserveProcessed("ack", time.Millisecond)
		consumer.RecordRedelivered()
		consumer.RecordSinkBytes("file", 512)
		consumer.SetActiveWorkers(4)

		store.ObserveOperation("put", time.Millisecond, nil)
		store.RecordBytes("put", "write", 256)

		bus.ObservePublish("file.uploads", time.Millisecond, nil)
		bus.RecordAck("ack")
		bus.SetPending(0)
	})

	assert.Nil(t, GetRegistry())
	assert.Nil(t, Handler())
}

func TestInitRegistryEnablesMetrics(t *testing.T) {
	reg := InitRegistry()
	require.NotNil(t, reg)
	defer func() {
		mu.Lock()
		registry = nil
		enabled.Store(false)
		mu.Unlock()
	}()

	assert.True(t, IsEnabled())

	ingest := NewIngestMetrics()
	require.NotNil(t, ingest)

	assert.NotPanics(t, func() {
		ingest.ObserveRequest("upload", 201, 5*time.Millisecond)
	})

	assert.NotNil(t, Handler())
}
