package migtest

import (
	"os"
	"testing"

	"github.com/iov-one/mig"
	"github.com/iov-one/mig/store"
	"github.com/iov-one/mig/store/iavl"
)

// MemStore returns a fresh in-memory store.
func MemStore() mig.CacheableKVStore {
	return store.MemStore()
}

// CommitKVStore returns a store instance that is using a filesystem backend
// engine to store the data.
// This implementation should be used instead of MemStore when you want the
// exact same storage implementation as the production instance is using.
func CommitKVStore(t testing.TB) (db mig.CommitKVStore, cleanup func()) {
	t.Helper()
	dbpath, err := os.MkdirTemp("", "migtest")
	if err != nil {
		t.Fatalf("cannot create a temporary directory: %s", err)
	}

	db, err = iavl.NewCommitStore(dbpath, "db")
	if err != nil {
		os.RemoveAll(dbpath)
		t.Fatalf("cannot open commit store: %s", err)
	}
	return db, func() { os.RemoveAll(dbpath) }
}
