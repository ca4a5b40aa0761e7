package multisig

import (
	"github.com/iov-one/mig"
	"github.com/iov-one/mig/codec"
	"github.com/iov-one/mig/coin"
	"github.com/iov-one/mig/errors"
	"github.com/iov-one/mig/metrics"
	"github.com/iov-one/mig/orm"
	"github.com/iov-one/mig/x"
	"github.com/iov-one/mig/x/feetoken"
)

// TokenMover moves governor funds when a transaction carries a value.
type TokenMover interface {
	Transfer(ctx mig.Context, db mig.KVStore, ticker string, src, dest mig.Address, amount coin.Amount) (*feetoken.Receipt, error)
}

// Controller keeps governors and their transactions.
type Controller struct {
	governors    orm.ModelBucket
	transactions orm.ModelBucket
	tokens       TokenMover
	// exec routes payload messages, usually the application router.
	exec mig.Handler
}

// NewController returns a controller. The executor is used to deliver
// transaction payloads and may be set later with SetExecutor, as the
// application router is built after its handlers.
func NewController(tokens TokenMover, exec mig.Handler) *Controller {
	return &Controller{
		governors:    orm.NewModelBucket("governors", &Governor{}),
		transactions: orm.NewModelBucket("govtxs", &Transaction{}),
		tokens:       tokens,
		exec:         exec,
	}
}

// SetExecutor configures the handler that delivers payload messages.
func (c *Controller) SetExecutor(exec mig.Handler) {
	c.exec = exec
}

// Create stores a new governor and returns its id.
func (c *Controller) Create(ctx mig.Context, db mig.KVStore, g *Governor) ([]byte, error) {
	g.TxCount = 0
	id, err := c.governors.Put(db, nil, g)
	if err != nil {
		return nil, err
	}
	mig.GetLogger(ctx).Info("governor created",
		"id", orm.DecodeSequence(id), "address", GovernorAddress(id),
		"owners", len(g.Owners), "required", g.Required)
	return id, nil
}

// Governor returns a governor or ErrNotFound.
func (c *Controller) Governor(db mig.ReadOnlyKVStore, id []byte) (*Governor, error) {
	var g Governor
	if err := c.governors.One(db, id, &g); err != nil {
		return nil, errors.Wrapf(err, "governor %X", id)
	}
	return &g, nil
}

// Transaction returns a transaction or ErrUnknownTransaction.
func (c *Controller) Transaction(db mig.ReadOnlyKVStore, governorID []byte, txID uint64) (*Transaction, error) {
	var tx Transaction
	switch err := c.transactions.One(db, txKey(governorID, txID), &tx); {
	case err == nil:
		return &tx, nil
	case errors.ErrNotFound.Is(err):
		return nil, errors.Wrapf(ErrUnknownTransaction, "transaction %d", txID)
	default:
		return nil, err
	}
}

// IsConfirmed returns true if the transaction collected required
// confirmations.
func (c *Controller) IsConfirmed(db mig.ReadOnlyKVStore, governorID []byte, txID uint64) (bool, error) {
	g, err := c.Governor(db, governorID)
	if err != nil {
		return false, err
	}
	tx, err := c.Transaction(db, governorID, txID)
	if err != nil {
		return false, err
	}
	return tx.IsConfirmed(g.Required), nil
}

// Confirmations returns the confirming owners in confirmation order.
func (c *Controller) Confirmations(db mig.ReadOnlyKVStore, governorID []byte, txID uint64) ([]mig.Address, error) {
	tx, err := c.Transaction(db, governorID, txID)
	if err != nil {
		return nil, err
	}
	return tx.Confirmations, nil
}

// TransactionCount counts pending and/or executed transactions.
func (c *Controller) TransactionCount(db mig.ReadOnlyKVStore, governorID []byte, pending, executed bool) (uint64, error) {
	if _, err := c.Governor(db, governorID); err != nil {
		return 0, err
	}
	it, err := c.transactions.PrefixScan(db, governorID, false)
	if err != nil {
		return 0, err
	}
	defer it.Release()

	var count uint64
	for {
		var tx Transaction
		_, err := it.LoadNext(&tx)
		if errors.ErrIteratorDone.Is(err) {
			return count, nil
		}
		if err != nil {
			return 0, err
		}
		if (pending && !tx.Executed) || (executed && tx.Executed) {
			count++
		}
	}
}

// Submit creates a transaction and confirms it on behalf of the owner,
// which may execute it right away. It returns the transaction id.
func (c *Controller) Submit(ctx mig.Context, db mig.KVStore, governorID []byte, owner, dest mig.Address, value coin.Amount, payload []byte) (uint64, error) {
	g, err := c.ownedGovernor(db, governorID, owner)
	if err != nil {
		return 0, err
	}
	if !value.IsZero() && g.ValueTicker == "" {
		return 0, errors.Wrap(errors.ErrInvalidInput, "governor has no value token")
	}
	tx := Transaction{
		ID:          g.TxCount,
		Destination: dest,
		Value:       value,
		Payload:     payload,
	}
	g.TxCount++
	if _, err := c.governors.Put(db, governorID, g); err != nil {
		return 0, err
	}
	if _, err := c.transactions.Put(db, txKey(governorID, tx.ID), &tx); err != nil {
		return 0, err
	}
	mig.GetLogger(ctx).Info("governor transaction submitted",
		"governor", orm.DecodeSequence(governorID), "tx", tx.ID, "owner", owner,
		"destination", dest, "value", value)

	if err := c.confirm(ctx, db, governorID, g, &tx, owner); err != nil {
		return 0, err
	}
	return tx.ID, nil
}

// Confirm adds the owner confirmation. When the threshold is reached the
// transaction is executed. A failed execution is logged and leaves the
// transaction confirmed, it does not fail the confirmation.
func (c *Controller) Confirm(ctx mig.Context, db mig.KVStore, governorID []byte, owner mig.Address, txID uint64) error {
	g, err := c.ownedGovernor(db, governorID, owner)
	if err != nil {
		return err
	}
	tx, err := c.Transaction(db, governorID, txID)
	if err != nil {
		return err
	}
	return c.confirm(ctx, db, governorID, g, tx, owner)
}

func (c *Controller) confirm(ctx mig.Context, db mig.KVStore, governorID []byte, g *Governor, tx *Transaction, owner mig.Address) error {
	if tx.ConfirmedBy(owner) {
		return errors.Wrapf(ErrAlreadyConfirmedByCaller, "transaction %d", tx.ID)
	}
	tx.Confirmations = append(tx.Confirmations, owner)
	if _, err := c.transactions.Put(db, txKey(governorID, tx.ID), tx); err != nil {
		return err
	}
	mig.GetLogger(ctx).Info("governor transaction confirmed",
		"governor", orm.DecodeSequence(governorID), "tx", tx.ID, "owner", owner,
		"confirmations", len(tx.Confirmations), "required", g.Required)

	if tx.Executed || !tx.IsConfirmed(g.Required) {
		return nil
	}
	if err := c.execute(ctx, db, governorID, g, tx); err != nil {
		mig.GetLogger(ctx).Error("governor transaction execution failed",
			"governor", orm.DecodeSequence(governorID), "tx", tx.ID, "err", err)
	}
	return nil
}

// Revoke removes the owner confirmation. It does nothing if the owner did
// not confirm.
func (c *Controller) Revoke(ctx mig.Context, db mig.KVStore, governorID []byte, owner mig.Address, txID uint64) error {
	if _, err := c.ownedGovernor(db, governorID, owner); err != nil {
		return err
	}
	tx, err := c.Transaction(db, governorID, txID)
	if err != nil {
		return err
	}
	if tx.Executed {
		return errors.Wrapf(ErrAlreadyExecuted, "transaction %d", txID)
	}
	if !tx.ConfirmedBy(owner) {
		return nil
	}
	kept := make([]mig.Address, 0, len(tx.Confirmations))
	for _, a := range tx.Confirmations {
		if !a.Equals(owner) {
			kept = append(kept, a)
		}
	}
	tx.Confirmations = kept
	if _, err := c.transactions.Put(db, txKey(governorID, txID), tx); err != nil {
		return err
	}
	mig.GetLogger(ctx).Info("governor confirmation revoked",
		"governor", orm.DecodeSequence(governorID), "tx", txID, "owner", owner)
	return nil
}

// Execute retries a confirmed transaction. Unlike Confirm it returns the
// execution error. An executed or not yet confirmed transaction is left
// untouched. The returned flag tells if the transaction was executed by
// this call.
func (c *Controller) Execute(ctx mig.Context, db mig.KVStore, governorID []byte, owner mig.Address, txID uint64) (bool, error) {
	g, err := c.ownedGovernor(db, governorID, owner)
	if err != nil {
		return false, err
	}
	tx, err := c.Transaction(db, governorID, txID)
	if err != nil {
		return false, err
	}
	if tx.Executed || !tx.IsConfirmed(g.Required) {
		return false, nil
	}
	if err := c.execute(ctx, db, governorID, g, tx); err != nil {
		return false, err
	}
	return true, nil
}

// execute performs the transaction call in a savepoint and marks the
// transaction executed. On failure nothing done by the call is kept.
func (c *Controller) execute(ctx mig.Context, db mig.KVStore, governorID []byte, g *Governor, tx *Transaction) (err error) {
	defer func() { metrics.RecordGovernorExecution(err != nil) }()

	cstore, ok := db.(mig.CacheableKVStore)
	if !ok {
		return errors.Wrap(errors.ErrInvalidState, "store does not support savepoints")
	}
	cache := cstore.CacheWrap()
	if err := c.call(ctx, cache, governorID, g, tx); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "writing savepoint")
	}

	tx.Executed = true
	if _, err := c.transactions.Put(db, txKey(governorID, tx.ID), tx); err != nil {
		return err
	}
	mig.GetLogger(ctx).Info("governor transaction executed",
		"governor", orm.DecodeSequence(governorID), "tx", tx.ID,
		"destination", tx.Destination, "value", tx.Value)
	return nil
}

// call moves the value and routes the payload on behalf of the governor.
func (c *Controller) call(ctx mig.Context, db mig.KVStore, governorID []byte, g *Governor, tx *Transaction) error {
	self := GovernorAddress(governorID)
	if !tx.Value.IsZero() {
		if _, err := c.tokens.Transfer(ctx, db, g.ValueTicker, self, tx.Destination, tx.Value); err != nil {
			return errors.Wrap(err, "value transfer")
		}
	}
	if len(tx.Payload) == 0 {
		return nil
	}
	msg, err := codec.UnmarshalMsg(tx.Payload)
	if err != nil {
		return errors.Wrap(err, "payload")
	}
	target, ok := msg.(TargetedMsg)
	if !ok {
		return errors.Wrapf(errors.ErrInvalidMsg, "payload %T has no destination", msg)
	}
	if !target.Contract().Equals(tx.Destination) {
		return errors.Wrapf(errors.ErrInvalidMsg, "payload targets %s, not %s", target.Contract(), tx.Destination)
	}
	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, "payload")
	}
	if c.exec == nil {
		return errors.Wrap(errors.ErrInvalidState, "no payload executor")
	}
	execCtx := x.Restrict(withGovernor(ctx, governorID), GovernorCondition(governorID))
	if _, err := c.exec.Deliver(execCtx, db, msg); err != nil {
		return errors.Wrap(err, "payload")
	}
	return nil
}

func (c *Controller) ownedGovernor(db mig.ReadOnlyKVStore, governorID []byte, owner mig.Address) (*Governor, error) {
	g, err := c.Governor(db, governorID)
	if err != nil {
		return nil, err
	}
	if !g.IsOwner(owner) {
		return nil, errors.Wrapf(ErrNotOwner, "%s", owner)
	}
	return g, nil
}
