package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHasSession(t *testing.T) {
	ctx := &Context{}
	assert.False(t, ctx.HasSession())

	ctx.SessionToken = "tok"
	assert.True(t, ctx.HasSession())
}

func TestStoreOperations(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "ingestctl-test-*")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(tmpDir) }()

	oldXDG := os.Getenv("XDG_CONFIG_HOME")
	_ = os.Setenv("XDG_CONFIG_HOME", tmpDir)
	defer func() { _ = os.Setenv("XDG_CONFIG_HOME", oldXDG) }()

	store, err := NewStore()
	require.NoError(t, err)
	assert.NotNil(t, store)

	expectedPath := filepath.Join(tmpDir, DefaultConfigDir, ConfigFileName)
	assert.Equal(t, expectedPath, store.ConfigPath())

	_, err = store.GetCurrentContext()
	assert.ErrorIs(t, err, ErrNoCurrentContext)

	ctx := &Context{
		ServerURL:    "http://localhost:8080",
		Principal:    "admin@example.com",
		SessionToken: "session1",
	}
	err = store.SetContext("default", ctx)
	require.NoError(t, err)

	err = store.UseContext("default")
	require.NoError(t, err)

	current, err := store.GetCurrentContext()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", current.ServerURL)
	assert.Equal(t, "admin@example.com", current.Principal)
	assert.True(t, current.HasSession())

	err = store.UseContext("nonexistent")
	assert.ErrorIs(t, err, ErrContextNotFound)
}

func TestStoreClearCurrentContext(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "ingestctl-test-*")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(tmpDir) }()

	oldXDG := os.Getenv("XDG_CONFIG_HOME")
	_ = os.Setenv("XDG_CONFIG_HOME", tmpDir)
	defer func() { _ = os.Setenv("XDG_CONFIG_HOME", oldXDG) }()

	store, err := NewStore()
	require.NoError(t, err)

	ctx := &Context{
		ServerURL:    "http://localhost:8080",
		Principal:    "admin@example.com",
		SessionToken: "session1",
	}
	err = store.SetContext("default", ctx)
	require.NoError(t, err)
	err = store.UseContext("default")
	require.NoError(t, err)

	err = store.ClearCurrentContext()
	require.NoError(t, err)

	current, err := store.GetCurrentContext()
	require.NoError(t, err)
	assert.Empty(t, current.SessionToken)
	assert.False(t, current.HasSession())
	assert.Equal(t, "http://localhost:8080", current.ServerURL)
	assert.Equal(t, "admin@example.com", current.Principal)
}

func TestStorePersistsAcrossLoads(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "ingestctl-test-*")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(tmpDir) }()

	oldXDG := os.Getenv("XDG_CONFIG_HOME")
	_ = os.Setenv("XDG_CONFIG_HOME", tmpDir)
	defer func() { _ = os.Setenv("XDG_CONFIG_HOME", oldXDG) }()

	store, err := NewStore()
	require.NoError(t, err)
	require.NoError(t, store.SetContext("default", &Context{
		ServerURL:    "http://localhost:8080",
		Principal:    "admin@example.com",
		SessionToken: "session1",
	}))
	require.NoError(t, store.UseContext("default"))

	reloaded, err := NewStore()
	require.NoError(t, err)
	current, err := reloaded.GetCurrentContext()
	require.NoError(t, err)
	assert.Equal(t, "session1", current.SessionToken)
}
