package store

import (
	"bytes"

	"github.com/google/btree"
)

// freeListSize bounds the btree nodes kept for reuse by nested wraps.
const freeListSize = btree.DefaultFreeListSize

// BTreeCacheable gives any KVStore a CacheWrap backed by an in memory
// btree.
type BTreeCacheable struct {
	KVStore
}

var _ CacheableKVStore = BTreeCacheable{}

// CacheWrap starts a savepoint over the store.
func (b BTreeCacheable) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b.KVStore, b.NewBatch(), nil)
}

// MemStore returns an empty store living only in memory.
func MemStore() CacheableKVStore {
	empty := EmptyKVStore{}
	return NewBTreeCacheWrap(empty, empty.NewBatch(), nil)
}

// BTreeCacheWrap is a savepoint over a parent store. Reads fall through
// to the parent for keys it has not touched. Writes stay in the btree and
// in a batch until Write replays the batch on the parent.
type BTreeCacheWrap struct {
	pending *btree.BTree
	free    *btree.FreeList
	parent  ReadOnlyKVStore
	batch   Batch
}

var _ KVCacheWrap = BTreeCacheWrap{}

// NewBTreeCacheWrap caches writes going to batch on top of parent. The
// parent is only read, batch is the way writes reach it. A nil free list
// allocates a new one, nested wraps share the list of their parent.
func NewBTreeCacheWrap(parent ReadOnlyKVStore, batch Batch, free *btree.FreeList) BTreeCacheWrap {
	if free == nil {
		free = btree.NewFreeList(freeListSize)
	}
	return BTreeCacheWrap{
		pending: btree.NewWithFreeList(2, free),
		free:    free,
		parent:  parent,
		batch:   batch,
	}
}

// CacheWrap opens a nested savepoint.
func (b BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b, b.NewBatch(), b.free)
}

// NewBatch returns a batch applying its operations to this wrap.
func (b BTreeCacheWrap) NewBatch() Batch {
	return NewNonAtomicBatch(b)
}

// Write applies all cached operations to the parent and empties the
// cache.
func (b BTreeCacheWrap) Write() error {
	err := b.batch.Write()
	b.Discard()
	return err
}

// Discard drops all cached operations.
func (b BTreeCacheWrap) Discard() {
	for b.pending.DeleteMin() != nil {
	}
}

func (b BTreeCacheWrap) Set(key, value []byte) error {
	b.pending.ReplaceOrInsert(entry{key: key, value: value})
	return b.batch.Set(key, value)
}

func (b BTreeCacheWrap) Delete(key []byte) error {
	b.pending.ReplaceOrInsert(entry{key: key, deleted: true})
	return b.batch.Delete(key)
}

// cached returns the pending entry for key, if any.
func (b BTreeCacheWrap) cached(key []byte) (entry, bool) {
	item := b.pending.Get(entry{key: key})
	if item == nil {
		return entry{}, false
	}
	return item.(entry), true
}

func (b BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	if e, ok := b.cached(key); ok {
		if e.deleted {
			return nil, nil
		}
		return e.value, nil
	}
	return b.parent.Get(key)
}

func (b BTreeCacheWrap) Has(key []byte) (bool, error) {
	if e, ok := b.cached(key); ok {
		return !e.deleted, nil
	}
	return b.parent.Has(key)
}

// Iterator returns the merged content of the cache and the parent in
// [start, end), ascending.
func (b BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	it, err := b.parent.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return b.merged(it, start, end, false)
}

// ReverseIterator returns the merged content of the cache and the parent
// in [start, end), descending.
func (b BTreeCacheWrap) ReverseIterator(start, end []byte) (Iterator, error) {
	it, err := b.parent.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	return b.merged(it, start, end, true)
}

func (b BTreeCacheWrap) merged(parentIt Iterator, start, end []byte, descending bool) (Iterator, error) {
	fromParent, err := ReadAll(parentIt)
	if err != nil {
		return nil, err
	}
	ours := pendingRange(b.pending, start, end)
	if descending {
		for i, j := 0, len(ours)-1; i < j; i, j = i+1, j-1 {
			ours[i], ours[j] = ours[j], ours[i]
		}
	}
	return NewSliceIterator(merge(ours, fromParent, descending)), nil
}

// entry is a pending write. Deletes are kept as tombstones so they hide
// the parent value.
type entry struct {
	key     []byte
	value   []byte
	deleted bool
}

var _ btree.Item = entry{}

func (e entry) Less(than btree.Item) bool {
	return bytes.Compare(e.key, than.(entry).key) < 0
}
