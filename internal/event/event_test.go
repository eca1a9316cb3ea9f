package event

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// All seven fields are present, and event_id and object_id are both v4
// UUIDs.
func TestNew_AllFieldsPresent(t *testing.T) {
	objectID := uuid.New()
	ev := New("alice@example.com", objectID, "uploads/alice@example.com/x/f.enc", "uploads/alice@example.com/x/metadata.json", "ingestguard-bucket", 1700000000000)

	assert.Equal(t, uuid.Version(4), ev.EventID.Version())
	assert.Equal(t, objectID, ev.ObjectID)
	assert.Equal(t, "alice@example.com", ev.Principal)
	assert.NotEmpty(t, ev.CiphertextRef)
	assert.NotEmpty(t, ev.EnvelopeRef)
	assert.Equal(t, "ingestguard-bucket", ev.StoreBucket)
	assert.Equal(t, int64(1700000000000), ev.TimestampMs)
}

func TestUploadEvent_WireFieldNames(t *testing.T) {
	ev := New("alice@example.com", uuid.New(), "ciphertext-ref", "envelope-ref", "bucket", 1)

	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))

	for _, field := range []string{"event_id", "email", "file_uuid", "s3_data_key", "s3_metadata_key", "bucket_name", "ts_ms"} {
		_, ok := m[field]
		assert.Truef(t, ok, "event JSON missing wire field %q", field)
	}
	assert.Len(t, m, 7)
}

func TestNew_EventIDsAreUnique(t *testing.T) {
	a := New("alice@example.com", uuid.New(), "c", "e", "b", 0)
	b := New("alice@example.com", uuid.New(), "c", "e", "b", 0)
	assert.NotEqual(t, a.EventID, b.EventID)
}
