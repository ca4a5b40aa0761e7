package app

import (
	"github.com/iov-one/mig"
	"github.com/iov-one/mig/errors"
)

// CommitStore handles loading from a CommitKVStore, maintaining the
// deliver cache and returning useful state info.
type CommitStore struct {
	committed mig.CommitKVStore
	deliver   mig.KVCacheWrap
}

// NewCommitStore loads the CommitKVStore from disk and sets up the
// deliver cache.
func NewCommitStore(store mig.CommitKVStore) (*CommitStore, error) {
	if err := store.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load latest version")
	}
	return &CommitStore{
		committed: store,
		deliver:   store.CacheWrap(),
	}, nil
}

// CommitInfo returns the current version and hash
func (cs *CommitStore) CommitInfo() (mig.CommitID, error) {
	return cs.committed.LatestVersion()
}

// Commit will flush deliver to the underlying store and commit it
// to disk. It then regenerates a new deliver cache.
func (cs *CommitStore) Commit() (mig.CommitID, error) {
	if err := cs.deliver.Write(); err != nil {
		return mig.CommitID{}, errors.Wrap(err, "flush deliver cache")
	}
	res, err := cs.committed.Commit()
	if err != nil {
		return res, err
	}
	cs.deliver = cs.committed.CacheWrap()
	return res, nil
}

// DeliverStore returns the store holding all state written since the last
// commit.
func (cs *CommitStore) DeliverStore() mig.CacheableKVStore {
	return cs.deliver
}

//------- storing chainID ---------

// _mig: is a prefix for application internal data
const chainIDKey = "_mig:chainID"

// loadChainID returns the chain id stored if any
func loadChainID(kv mig.ReadOnlyKVStore) (string, error) {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		return "", errors.Wrap(err, "load chain id")
	}
	return string(v), nil
}

// saveChainID stores a chain id in the kv store.
// Returns error if already set, or invalid name
func saveChainID(kv mig.KVStore, chainID string) error {
	if !mig.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInvalidInput, "chain id: %v", chainID)
	}
	k := []byte(chainIDKey)
	exists, err := kv.Has(k)
	if err != nil {
		return errors.Wrap(err, "load chain id")
	}
	if exists {
		return errors.Wrap(errors.ErrUnauthorized, "can't modify chain id after genesis init")
	}
	if err := kv.Set(k, []byte(chainID)); err != nil {
		return errors.Wrap(err, "save chain id")
	}
	return nil
}
