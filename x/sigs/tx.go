package sigs

import (
	"github.com/iov-one/mig/crypto"
	"github.com/iov-one/mig/errors"
)

// SignedTx represents a transaction that contains signatures
type SignedTx interface {
	// GetSignBytes returns the canonical byte representation of the
	// signed content, signatures excluded.
	GetSignBytes() ([]byte, error)

	// GetSignatures returns the signature of signers who signed the
	// content.
	GetSignatures() []*StdSignature
}

// StdSignature is a signature with the nonce it was made for.
type StdSignature struct {
	Pubkey    *crypto.PublicKey `json:"pubkey"`
	Signature *crypto.Signature `json:"signature"`
	Sequence  int64             `json:"sequence"`
}

// Validate ensures the StdSignature meets basic standards
func (s *StdSignature) Validate() error {
	if s.Sequence < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	if s.Pubkey == nil || len(s.Pubkey.Ed25519) == 0 {
		return errors.Wrap(ErrMissingSignature, "missing public key")
	}
	if s.Signature == nil || len(s.Signature.Ed25519) == 0 {
		return errors.Wrap(ErrMissingSignature, "missing signature")
	}
	return nil
}
