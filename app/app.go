package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/mig"
	"github.com/iov-one/mig/errors"
	"github.com/iov-one/mig/metrics"
	"github.com/iov-one/mig/x/sigs"
)

// Application is the single writer state machine of all ledgers.
//
// Every delivered transaction runs against its own cache wrap over the
// deliver store. The cache is written only when the whole transaction
// succeeds, so a failing operation leaves no trace, not even a consumed
// nonce. Deliver calls are serialized, View calls may run in parallel
// with each other but never with a Deliver or Commit.
type Application struct {
	mu sync.RWMutex

	name    string
	logger  log.Logger
	clock   mig.Clock
	store   *CommitStore
	router  *Router
	ledgers *Ledgers
	init    mig.Initializer

	// chainID is loaded from db in initialization
	// saved once in LoadGenesis
	chainID string
	// height is the version the next commit is going to create
	height int64
}

// NewApplication loads the state from the given store and wires all
// ledgers.
func NewApplication(name string, store mig.CommitKVStore, clock mig.Clock, logger log.Logger) (*Application, error) {
	cs, err := NewCommitStore(store)
	if err != nil {
		return nil, err
	}
	chainID, err := loadChainID(cs.DeliverStore())
	if err != nil {
		return nil, err
	}
	info, err := cs.CommitInfo()
	if err != nil {
		return nil, errors.Wrap(err, "commit info")
	}
	router, ledgers := Stack()
	a := &Application{
		name:    name,
		logger:  logger,
		clock:   clock,
		store:   cs,
		router:  router,
		ledgers: ledgers,
		init:    Initializers(),
		chainID: chainID,
		height:  info.Version + 1,
	}
	a.logger.Info("application loaded",
		"name", name,
		"chain_id", chainID,
		"version", info.Version,
		"hash", fmt.Sprintf("%X", info.Hash))
	return a, nil
}

// ChainID returns the chain id set by the genesis, or an empty string
// if the genesis was not loaded yet.
func (a *Application) ChainID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.chainID
}

// Ledgers returns the controllers of all ledgers.
func (a *Application) Ledgers() *Ledgers {
	return a.ledgers
}

// LoadGenesis stores the chain id and initializes all ledgers from the
// genesis app state. It can be called only once in the lifetime of a
// store.
func (a *Application) LoadGenesis(gen *Genesis) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.chainID != "" {
		return errors.Wrapf(errors.ErrInvalidState, "genesis already loaded for chain %s", a.chainID)
	}

	ctx := mig.WithBlockTime(context.Background(), a.clock.Now())
	ctx = mig.WithChainID(ctx, gen.ChainID)
	ctx = mig.WithLogger(ctx, a.logger)

	cache := a.store.DeliverStore().CacheWrap()
	if err := saveChainID(cache, gen.ChainID); err != nil {
		cache.Discard()
		return err
	}
	if err := a.init.FromGenesis(ctx, gen.AppState, cache); err != nil {
		cache.Discard()
		return errors.Wrap(err, "genesis")
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "write genesis")
	}
	a.chainID = gen.ChainID
	a.logger.Info("genesis loaded", "chain_id", gen.ChainID)
	return nil
}

// Deliver verifies the signatures of the transaction and routes its
// message to the ledger handler. Either all changes made by the
// transaction are kept or none.
//
// ctx must not carry a chain id, block time and logger are overwritten.
func (a *Application) Deliver(ctx context.Context, tx *Tx) (res *mig.DeliverResult, err error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.chainID == "" {
		return nil, errors.Wrap(errors.ErrInvalidState, "genesis not loaded")
	}

	start := time.Now()
	defer func() {
		metrics.RecordDeliver(msg.Path(), time.Since(start), err != nil)
	}()

	opCtx := mig.WithBlockTime(ctx, a.clock.Now())
	opCtx = mig.WithChainID(opCtx, a.chainID)
	opCtx = mig.WithHeight(opCtx, a.height)
	opCtx = mig.WithLogger(opCtx, a.logger.With("path", msg.Path()))

	cache := a.store.DeliverStore().CacheWrap()
	res, err = a.deliver(opCtx, cache, tx, msg)
	if err != nil {
		cache.Discard()
		a.logger.Debug("delivery failed", "path", msg.Path(), "err", err)
		return nil, errors.Redact(err)
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "write operation")
	}
	return res, nil
}

func (a *Application) deliver(ctx mig.Context, db mig.KVCacheWrap, tx *Tx, msg mig.Msg) (res *mig.DeliverResult, err error) {
	defer errors.Recover(&err)

	ctx, err = sigs.Verify(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return a.router.Deliver(ctx, db, msg)
}

// View runs fn with a read only view of the latest state. The context is
// stamped with the current time, so time dependent accessors (vested
// amounts, rewards, fee rates) can be used.
func (a *Application) View(ctx context.Context, fn func(ctx mig.Context, db mig.ReadOnlyKVStore) error) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	ctx = mig.WithBlockTime(ctx, a.clock.Now())
	return fn(ctx, a.store.DeliverStore())
}

// Commit persists all delivered operations as a new store version.
func (a *Application) Commit() (mig.CommitID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id, err := a.store.Commit()
	if err != nil {
		return id, errors.Wrap(err, "commit")
	}
	a.height = id.Version + 1
	metrics.SetCommittedVersion(id.Version)
	a.logger.Debug("commit synced",
		"version", id.Version,
		"hash", fmt.Sprintf("%X", id.Hash))
	return id, nil
}

// CommitInfo returns the latest committed version.
func (a *Application) CommitInfo() (mig.CommitID, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.store.CommitInfo()
}
