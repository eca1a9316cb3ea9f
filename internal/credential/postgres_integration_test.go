//go:build integration

package credential

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// newPostgresContainer starts a disposable Postgres 16 container and returns
// a DSN for it. PostgreSQL logs "database system is ready" twice during
// startup (bootstrap, then fully ready), so the wait strategy waits for both.
func newPostgresContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("ingestguard_test"),
		postgres.WithUsername("ingestguard_test"),
		postgres.WithPassword("ingestguard_test"),
		testcontainers.WithWaitStrategyAndDeadline(2*time.Minute,
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://ingestguard_test:ingestguard_test@%s:%d/ingestguard_test?sslmode=disable",
		host, port.Int())
}

func TestPostgresStore_BootstrapAndValidate(t *testing.T) {
	dsn := newPostgresContainer(t)
	store, err := NewPostgresStore(dsn)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Bootstrap(ctx, "alice@example.com", "hunter2"))
	assert.NoError(t, store.Validate(ctx, "alice@example.com", "hunter2"))

	err = store.Validate(ctx, "alice@example.com", "wrong")
	require.Error(t, err)
}

func TestPostgresStore_BootstrapIsIdempotent(t *testing.T) {
	dsn := newPostgresContainer(t)
	store, err := NewPostgresStore(dsn)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Bootstrap(ctx, "alice@example.com", "hunter2"))
	require.NoError(t, store.Bootstrap(ctx, "alice@example.com", "newpass"))

	assert.Error(t, store.Validate(ctx, "alice@example.com", "hunter2"))
	assert.NoError(t, store.Validate(ctx, "alice@example.com", "newpass"))
}

func TestPostgresStore_UnknownPrincipalSameErrorAsWrongPassphrase(t *testing.T) {
	dsn := newPostgresContainer(t)
	store, err := NewPostgresStore(dsn)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, store.Bootstrap(ctx, "alice@example.com", "hunter2"))

	wrongPass := store.Validate(ctx, "alice@example.com", "wrong")
	unknown := store.Validate(ctx, "nobody@example.com", "hunter2")

	require.Error(t, wrongPass)
	require.Error(t, unknown)
	assert.Equal(t, wrongPass.Error(), unknown.Error())
}
