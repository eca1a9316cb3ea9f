package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/ingestguard/ingestguard/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomKey(t *testing.T, size int) []byte {
	t.Helper()
	k := make([]byte, size)
	_, err := rand.Read(k)
	require.NoError(t, err)
	return k
}

// Wrap/unwrap round-trip.
func TestWrapUnwrapDataKey_RoundTrip(t *testing.T) {
	dataKey := randomKey(t, DataKeySize)
	masterKey := randomKey(t, DataKeySize)

	wrapped, err := WrapDataKey(dataKey, masterKey)
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(wrapped)
	require.NoError(t, err)
	assert.Len(t, decoded, WrappedKeySize)
	assert.Len(t, wrapped, 80)

	unwrapped, err := UnwrapDataKey(wrapped, masterKey)
	require.NoError(t, err)
	assert.Equal(t, dataKey, unwrapped)
}

func TestUnwrapDataKey_WrongMasterKeyFails(t *testing.T) {
	dataKey := randomKey(t, DataKeySize)
	masterKey := randomKey(t, DataKeySize)
	otherKey := randomKey(t, DataKeySize)

	wrapped, err := WrapDataKey(dataKey, masterKey)
	require.NoError(t, err)

	_, err = UnwrapDataKey(wrapped, otherKey)
	require.Error(t, err)
	assert.Equal(t, apperror.AuthFailure, apperror.KindOf(err))
}

// Every wrap call must use a fresh nonce for the master-key wrap path.
func TestWrapDataKey_NonceIsFreshEveryCall(t *testing.T) {
	dataKey := randomKey(t, DataKeySize)
	masterKey := randomKey(t, DataKeySize)

	w1, err := WrapDataKey(dataKey, masterKey)
	require.NoError(t, err)
	w2, err := WrapDataKey(dataKey, masterKey)
	require.NoError(t, err)

	assert.NotEqual(t, w1, w2)
}

func TestUnwrapDataKey_MalformedBase64(t *testing.T) {
	masterKey := randomKey(t, DataKeySize)

	_, err := UnwrapDataKey("not-valid-base64!!!", masterKey)
	require.Error(t, err)
	assert.Equal(t, apperror.FormatError, apperror.KindOf(err))
}

func TestUnwrapDataKey_WrongLength(t *testing.T) {
	masterKey := randomKey(t, DataKeySize)

	short := base64.StdEncoding.EncodeToString([]byte("too short"))
	_, err := UnwrapDataKey(short, masterKey)
	require.Error(t, err)
	assert.Equal(t, apperror.FormatError, apperror.KindOf(err))
}
