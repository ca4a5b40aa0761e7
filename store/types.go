package store

import "github.com/iov-one/mig"

// Move references for all storage types into this package
// for shorter names everywhere

type (
	ReadOnlyKVStore  = mig.ReadOnlyKVStore
	SetDeleter       = mig.SetDeleter
	KVStore          = mig.KVStore
	Batch            = mig.Batch
	Iterator         = mig.Iterator
	CacheableKVStore = mig.CacheableKVStore
	KVCacheWrap      = mig.KVCacheWrap
	CommitKVStore    = mig.CommitKVStore
	CommitID         = mig.CommitID
)

// Model groups together key and value to return
type Model struct {
	Key   []byte
	Value []byte
}

// Pair constructs a model from a key-value pair
func Pair(key, value []byte) Model {
	return Model{
		Key:   key,
		Value: value,
	}
}
