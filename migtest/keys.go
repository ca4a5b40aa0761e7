package migtest

import (
	"crypto/rand"
	"testing"

	"github.com/iov-one/mig"
	"github.com/iov-one/mig/crypto"
)

// NewKey returns a fresh ed25519 signer.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewCondition returns the signature condition of a fresh key.
func NewCondition() mig.Condition {
	return NewKey().PublicKey().Condition()
}

// RandomAddr returns a valid random address genearted on the fly.
func RandomAddr(t testing.TB) mig.Address {
	t.Helper()
	raw := make([]byte, mig.AddressLength)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("cannot generate a random address: %s", err)
	}
	a := mig.Address(raw)
	if err := a.Validate(); err != nil {
		t.Fatalf("generated address is not a valid address: %s", err)
	}
	return a
}

// ParseAddress takes an address in a human readable format and returns
// its binary representation.
func ParseAddress(t testing.TB, encodedAddress string) mig.Address {
	t.Helper()

	addr, err := mig.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}
