package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CreateValidateRoundTrip(t *testing.T) {
	r := NewRegistry(time.Hour, time.Hour)
	defer r.Stop()

	sess, err := r.Create("alice@example.com")
	require.NoError(t, err)
	assert.Len(t, sess.Token, 43) // 32 bytes, unpadded base64url

	principal, ok := r.Validate(sess.Token)
	assert.True(t, ok)
	assert.Equal(t, "alice@example.com", principal)
}

func TestRegistry_ValidateUnknownToken(t *testing.T) {
	r := NewRegistry(time.Hour, time.Hour)
	defer r.Stop()

	_, ok := r.Validate("does-not-exist")
	assert.False(t, ok)
}

func TestRegistry_IdleTimeoutExpiresSession(t *testing.T) {
	r := NewRegistry(10*time.Millisecond, time.Hour)
	defer r.Stop()

	sess, err := r.Create("alice@example.com")
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	_, ok := r.Validate(sess.Token)
	assert.False(t, ok)
}

func TestRegistry_DestroyRemovesSession(t *testing.T) {
	r := NewRegistry(time.Hour, time.Hour)
	defer r.Stop()

	sess, err := r.Create("alice@example.com")
	require.NoError(t, err)

	r.Destroy(sess.Token)

	_, ok := r.Validate(sess.Token)
	assert.False(t, ok)
}

func TestRegistry_SweepRemovesExpiredSessions(t *testing.T) {
	r := NewRegistry(5*time.Millisecond, 10*time.Millisecond)
	defer r.Stop()

	_, err := r.Create("alice@example.com")
	require.NoError(t, err)
	require.Equal(t, 1, r.Len())

	assert.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestRegistry_TokensAreUnique(t *testing.T) {
	r := NewRegistry(time.Hour, time.Hour)
	defer r.Stop()

	a, err := r.Create("alice@example.com")
	require.NoError(t, err)
	b, err := r.Create("alice@example.com")
	require.NoError(t, err)

	assert.NotEqual(t, a.Token, b.Token)
}
