package multisig

import (
	"context"

	"github.com/iov-one/mig"
	"github.com/iov-one/mig/x"
)

type contextKey int // local to the multisig module

const (
	contextKeyGovernor contextKey = iota
)

// withGovernor is a private method, as only this module
// can add a governor signer
func withGovernor(ctx mig.Context, id []byte) mig.Context {
	return context.WithValue(ctx, contextKeyGovernor, GovernorCondition(id))
}

// Authenticate reveals the governor that is executing a transaction.
type Authenticate struct {
}

var _ x.Authenticator = Authenticate{}

// GetConditions returns permissions previously set on this context
func (a Authenticate) GetConditions(ctx mig.Context) []mig.Condition {
	// (val, ok) form to return nil instead of panic if unset
	val, _ := ctx.Value(contextKeyGovernor).(mig.Condition)
	if val == nil {
		return nil
	}
	return []mig.Condition{val}
}

// HasAddress returns true iff this address is in GetConditions
func (a Authenticate) HasAddress(ctx mig.Context, addr mig.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
