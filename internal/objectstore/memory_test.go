package objectstore

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/ingestguard/ingestguard/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutGetRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	payload := []byte("ciphertext bytes, possibly binary \x00\x01")
	require.NoError(t, store.PutStream(ctx, "uploads/alice/x/f.enc", "application/octet-stream", bytes.NewReader(payload), int64(len(payload))))

	rc, err := store.GetStream(ctx, "uploads/alice/x/f.enc")
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestMemoryStore_PutSmallGetBytes(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sidecar := []byte(`{"version":"1.0"}`)
	require.NoError(t, store.PutSmall(ctx, "uploads/alice/x/metadata.json", "application/json", sidecar))

	got, err := store.GetBytes(ctx, "uploads/alice/x/metadata.json")
	require.NoError(t, err)
	assert.Equal(t, sidecar, got)
}

func TestMemoryStore_GetBytes_NotFound(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.GetBytes(context.Background(), "does/not/exist")
	require.Error(t, err)
	assert.Equal(t, apperror.NotFound, apperror.KindOf(err))
}

func TestMemoryStore_List_PrefixScoped(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.PutSmall(ctx, "uploads/alice/a/metadata.json", "application/json", []byte("{}")))
	require.NoError(t, store.PutSmall(ctx, "uploads/alice/b/metadata.json", "application/json", []byte("{}")))
	require.NoError(t, store.PutSmall(ctx, "uploads/bob/c/metadata.json", "application/json", []byte("{}")))

	infos, err := store.List(ctx, "uploads/alice/")
	require.NoError(t, err)
	assert.Len(t, infos, 2)
}

func TestMemoryStore_Delete_IdempotentOnMissingKey(t *testing.T) {
	store := NewMemoryStore()
	assert.NoError(t, store.Delete(context.Background(), "never/existed"))
}

func TestMemoryStore_GetBytes_ReturnsIndependentCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.PutSmall(ctx, "k", "application/json", []byte("original")))

	got, err := store.GetBytes(ctx, "k")
	require.NoError(t, err)
	got[0] = 'X'

	got2, err := store.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "original", string(got2))
}
