package x

import (
	"context"

	"github.com/iov-one/mig"
)

// Authenticator is an interface we can use to extract authentication info
// from the context. This should be passed into the constructor of
// handlers, so we can plug in another authentication system,
// rather than hard-coding x/sigs for all extensions.
type Authenticator interface {
	// GetConditions reveals all Conditions fulfilled,
	// you may want GetAddresses helper
	GetConditions(mig.Context) []mig.Condition
	// HasAddress checks if any condition matches this address
	HasAddress(mig.Context, mig.Address) bool
}

type contextKey int // local to the x module

const (
	contextKeyRestricted contextKey = iota
)

// Restrict returns a context in which a MultiAuth only reveals the given
// conditions, even if the chained authenticators fulfill more. It is used
// to call another handler on behalf of a contract: the signatures of the
// original caller must not leak into the call.
func Restrict(ctx mig.Context, allowed ...mig.Condition) mig.Context {
	return context.WithValue(ctx, contextKeyRestricted, allowed)
}

func restricted(ctx mig.Context) ([]mig.Condition, bool) {
	val, ok := ctx.Value(contextKeyRestricted).([]mig.Condition)
	return val, ok
}

// MultiAuth chains together many Authenticators into one
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth groups together a series of Authenticator
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls}
}

// GetConditions combines all Conditions from all Authenticators.
// Within a restricted context only the allowed conditions are kept.
func (m MultiAuth) GetConditions(ctx mig.Context) []mig.Condition {
	var res []mig.Condition
	for _, impl := range m.impls {
		add := impl.GetConditions(ctx)
		if len(add) > 0 {
			res = append(res, add...)
		}
	}
	allowed, ok := restricted(ctx)
	if !ok {
		return res
	}
	var kept []mig.Condition
	for _, c := range res {
		if hasPerm(allowed, c) && !hasPerm(kept, c) {
			kept = append(kept, c)
		}
	}
	return kept
}

// HasAddress returns true iff any Authenticator support this
func (m MultiAuth) HasAddress(ctx mig.Context, addr mig.Address) bool {
	if _, ok := restricted(ctx); ok {
		for _, c := range m.GetConditions(ctx) {
			if addr.Equals(c.Address()) {
				return true
			}
		}
		return false
	}
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// GetAddresses wraps the GetConditions method of any Authenticator
func GetAddresses(ctx mig.Context, auth Authenticator) []mig.Address {
	perms := auth.GetConditions(ctx)
	addrs := make([]mig.Address, len(perms))
	for i, p := range perms {
		addrs[i] = p.Address()
	}
	return addrs
}

// MainSigner returns the first permission if any, otherwise nil
func MainSigner(ctx mig.Context, auth Authenticator) mig.Condition {
	signers := auth.GetConditions(ctx)
	if len(signers) == 0 {
		return nil
	}
	return signers[0]
}

// HasAllConditions returns true if all elements in required are
// also in context.
func HasAllConditions(ctx mig.Context, auth Authenticator, required []mig.Condition) bool {
	return HasNConditions(ctx, auth, required, len(required))
}

// HasNConditions returns true if at least n elements in requested are
// also in context.
func HasNConditions(ctx mig.Context, auth Authenticator, requested []mig.Condition, n int) bool {
	if n <= 0 {
		return true
	}
	perms := auth.GetConditions(ctx)
	for _, perm := range requested {
		if hasPerm(perms, perm) {
			n--
			if n == 0 {
				return true
			}
		}
	}
	return false
}

func hasPerm(perms []mig.Condition, perm mig.Condition) bool {
	for _, p := range perms {
		if p.Equals(perm) {
			return true
		}
	}
	return false
}
