package app

import (
	"github.com/iov-one/mig"
	"github.com/iov-one/mig/codec"
	"github.com/iov-one/mig/crypto"
	"github.com/iov-one/mig/errors"
	"github.com/iov-one/mig/x/sigs"
)

// Tx is the envelope of a single operation submitted to the application.
// Msg holds a message encoded with codec.MarshalMsg, the signatures are
// made over these bytes.
type Tx struct {
	Msg        []byte                `json:"msg"`
	Signatures []*sigs.StdSignature `json:"signatures"`
}

var _ sigs.SignedTx = (*Tx)(nil)

// NewTx wraps the message into an unsigned transaction.
func NewTx(msg mig.Msg) (*Tx, error) {
	bz, err := codec.MarshalMsg(msg)
	if err != nil {
		return nil, err
	}
	return &Tx{Msg: bz}, nil
}

// GetMsg decodes the wrapped message.
func (tx *Tx) GetMsg() (mig.Msg, error) {
	if len(tx.Msg) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidMsg, "empty transaction")
	}
	return codec.UnmarshalMsg(tx.Msg)
}

// GetSignBytes returns the encoded message.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	return tx.Msg, nil
}

// GetSignatures returns all signatures attached so far.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// Sign appends a signature of given signer made for the nonce seq.
func (tx *Tx) Sign(signer crypto.Signer, chainID string, seq int64) error {
	sig, err := sigs.SignTx(signer, tx, chainID, seq)
	if err != nil {
		return err
	}
	tx.Signatures = append(tx.Signatures, sig)
	return nil
}

// Marshal returns the JSON representation accepted by the HTTP API.
func (tx *Tx) Marshal() ([]byte, error) {
	return codec.MarshalJSON(tx)
}

// UnmarshalTx parses a JSON encoded transaction.
func UnmarshalTx(bz []byte) (*Tx, error) {
	var tx Tx
	if err := codec.UnmarshalJSON(bz, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}
