package multisig

import (
	"encoding/binary"

	"github.com/iov-one/mig"
	"github.com/iov-one/mig/coin"
	"github.com/iov-one/mig/errors"
	"github.com/iov-one/mig/orm"
)

const (
	// To avoid burning CPU, this is the maximum number of owners allowed
	// to be part of a single governor.
	maxOwnersAllowed = 100
)

// Governor is an M-of-N owners account.
type Governor struct {
	Owners   []mig.Address
	Required uint32
	// ValueTicker is the token moved when a transaction carries a value.
	ValueTicker string
	// TxCount is the number of submitted transactions, it is also the id
	// of the next transaction.
	TxCount uint64
}

// Validate enforces owners and threshold boundaries
func (g *Governor) Validate() error {
	return validateOwners(errors.ErrInvalidModel, g.Owners, g.Required, g.ValueTicker)
}

// IsOwner returns true if given address is one of the owners.
func (g *Governor) IsOwner(a mig.Address) bool {
	for _, o := range g.Owners {
		if o.Equals(a) {
			return true
		}
	}
	return false
}

// validateOwners returns an error if given owners and threshold
// configuration is not valid. This check is done on model and messages so
// instead of copying the code it is extracted into this function.
func validateOwners(baseErr *errors.Error, owners []mig.Address, required uint32, ticker string) error {
	switch n := len(owners); {
	case n == 0:
		return errors.Wrap(baseErr, "no owners")
	case n > maxOwnersAllowed:
		return errors.Wrap(baseErr, "too many owners")
	}
	for i, o := range owners {
		if err := o.Validate(); err != nil {
			return errors.Wrapf(err, "owner #%d", i)
		}
		for _, prev := range owners[:i] {
			if prev.Equals(o) {
				return errors.Wrapf(baseErr, "duplicated owner %s", o)
			}
		}
	}
	if required == 0 || int(required) > len(owners) {
		return errors.Wrapf(baseErr, "required must be between 1 and %d", len(owners))
	}
	if ticker != "" && !coin.IsTicker(ticker) {
		return errors.Wrapf(baseErr, "invalid value ticker %q", ticker)
	}
	return nil
}

// Transaction is a call that the governor makes once confirmed.
type Transaction struct {
	ID          uint64
	Destination mig.Address
	Value       coin.Amount
	Payload     []byte
	Executed    bool
	// Confirmations are kept in confirmation order.
	Confirmations []mig.Address
}

// Validate ensures the transaction is well formed.
func (t *Transaction) Validate() error {
	if err := t.Destination.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	for i, c := range t.Confirmations {
		if err := c.Validate(); err != nil {
			return errors.Wrapf(err, "confirmation #%d", i)
		}
	}
	return nil
}

// ConfirmedBy returns true if given owner confirmed this transaction.
func (t *Transaction) ConfirmedBy(owner mig.Address) bool {
	for _, c := range t.Confirmations {
		if c.Equals(owner) {
			return true
		}
	}
	return false
}

// IsConfirmed returns true if the transaction collected required
// confirmations.
func (t *Transaction) IsConfirmed(required uint32) bool {
	return uint64(len(t.Confirmations)) >= uint64(required)
}

// GovernorCondition returns the condition of a governor. It is the only
// signer of the messages a governor executes.
func GovernorCondition(id []byte) mig.Condition {
	return mig.NewCondition("multisig", "seq", id)
}

// GovernorAddress returns the address of a governor. Tokens held by the
// governor are kept under this address.
func GovernorAddress(id []byte) mig.Address {
	return GovernorCondition(id).Address()
}

// GovernorID returns the binary id of the n-th created governor.
func GovernorID(n int64) []byte {
	return orm.EncodeSequence(n)
}

func txKey(governorID []byte, txID uint64) []byte {
	key := make([]byte, len(governorID)+8)
	copy(key, governorID)
	binary.BigEndian.PutUint64(key[len(governorID):], txID)
	return key
}
