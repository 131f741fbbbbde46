package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWALStoreReadAbsentBuckets(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	got, err := store.Read(BucketWallet, BucketPositions)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWALStoreWriteRead(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	err = store.Write(map[string][]byte{
		BucketWallet:    []byte(`{"sol":"10","bnb":"5"}`),
		BucketPositions: []byte(`{}`),
	})
	require.NoError(t, err)

	got, err := store.Read(BucketWallet, BucketPositions, BucketTradeHistory)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"sol":"10","bnb":"5"}`), got[BucketWallet])
	assert.Equal(t, []byte(`{}`), got[BucketPositions])
	_, ok := got[BucketTradeHistory]
	assert.False(t, ok)
}

func TestWALStoreLastWriterWins(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Write(map[string][]byte{BucketWallet: []byte(`first`)}))
	require.NoError(t, store.Write(map[string][]byte{BucketWallet: []byte(`second`)}))

	got, err := store.Read(BucketWallet)
	require.NoError(t, err)
	assert.Equal(t, []byte(`second`), got[BucketWallet])
}

func TestWALStoreRecoversAfterReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewWALStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Write(map[string][]byte{
		BucketWallet:     []byte(`{"sol":"9","bnb":"5"}`),
		BucketUISettings: []byte(`{"scale":1.5}`),
	}))
	require.NoError(t, store.Write(map[string][]byte{
		BucketWallet: []byte(`{"sol":"8","bnb":"5"}`),
	}))
	require.NoError(t, store.Close())

	reopened, err := NewWALStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Read(BucketWallet, BucketUISettings)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"sol":"8","bnb":"5"}`), got[BucketWallet])
	assert.Equal(t, []byte(`{"scale":1.5}`), got[BucketUISettings])
}
