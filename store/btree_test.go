package store

import (
	"testing"

	"github.com/iov-one/mig/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemStore() (CacheableKVStore, func()) {
	return MemStore(), func() {}
}

func TestMemStore(t *testing.T) {
	suite := NewSuite(openMemStore)
	t.Run("savepoints", suite.Savepoints)
	t.Run("overrides", suite.Overrides)
	t.Run("range scan", suite.RangeScan)
	t.Run("scan edges", suite.ScanEdges)
}

// TestBTreeCacheDiscardNested makes sure a discarded savepoint leaves no
// trace, while an outer one still writes through.
func TestBTreeCacheDiscardNested(t *testing.T) {
	base := MemStore()
	outer := base.CacheWrap()
	require.NoError(t, outer.Set([]byte("balance:alice"), []byte("990")))

	inner := outer.CacheWrap()
	require.NoError(t, inner.Set([]byte("balance:bob"), []byte("10")))
	require.NoError(t, inner.Delete([]byte("balance:alice")))
	inner.Discard()

	got, err := outer.Get([]byte("balance:alice"))
	require.NoError(t, err)
	assert.Equal(t, []byte("990"), got)
	has, err := outer.Has([]byte("balance:bob"))
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, outer.Write())
	got, err = base.Get([]byte("balance:alice"))
	require.NoError(t, err)
	assert.Equal(t, []byte("990"), got)
}

func TestSliceIterator(t *testing.T) {
	ks := ledgerKeys(10)
	vs := ledgerKeys(10)

	models := make([]Model, len(ks))
	for i := range ks {
		models[i] = Pair(ks[i], vs[i])
	}

	iter := NewSliceIterator(models)
	for i := range models {
		key, value, err := iter.Next()
		require.NoError(t, err)
		assert.Equal(t, ks[i], key)
		assert.Equal(t, vs[i], value)
	}
	_, _, err := iter.Next()
	assert.True(t, errors.ErrIteratorDone.Is(err))

	// iterator is empty after release
	trash := NewSliceIterator(models)
	trash.Release()
	_, _, err = trash.Next()
	assert.True(t, errors.ErrIteratorDone.Is(err))
}

func TestNonAtomicBatch(t *testing.T) {
	base := MemStore()
	batch := base.NewBatch().(*NonAtomicBatch)

	require.NoError(t, batch.Set([]byte("a"), []byte("1")))
	require.NoError(t, batch.Delete([]byte("b")))
	assert.Len(t, batch.ShowOps(), 2)

	has, err := base.Has([]byte("a"))
	require.NoError(t, err)
	assert.False(t, has, "batch must not write before Write is called")

	require.NoError(t, batch.Write())
	assert.Len(t, batch.ShowOps(), 0)
	got, err := base.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)
}
