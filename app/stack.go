package app

import (
	"github.com/iov-one/mig"
	"github.com/iov-one/mig/x"
	"github.com/iov-one/mig/x/feetoken"
	"github.com/iov-one/mig/x/multisig"
	"github.com/iov-one/mig/x/sigs"
	"github.com/iov-one/mig/x/staking"
	"github.com/iov-one/mig/x/vesting"
)

// Ledgers gives access to the controllers wired into the application.
// Use them with Application.View for read only access.
type Ledgers struct {
	Tokens       *feetoken.Controller
	Governors    *multisig.Controller
	Distributors *vesting.Controller
	Pools        *staking.Controller
}

// Authenticator returns the authentication chain used by all handlers.
// Conditions come either from verified signatures or from the governor
// executing a confirmed transaction.
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{}, multisig.Authenticate{})
}

// Stack builds all ledgers and registers their handlers with a new
// router. Governors route their payloads through the same router, so a
// governor can call any ledger, including another governor.
func Stack() (*Router, *Ledgers) {
	tokens := feetoken.NewController()
	l := &Ledgers{
		Tokens:       tokens,
		Governors:    multisig.NewController(tokens, nil),
		Distributors: vesting.NewController(tokens),
		Pools:        staking.NewController(tokens),
	}

	r := NewRouter()
	auth := Authenticator()
	feetoken.RegisterRoutes(r, auth, l.Tokens)
	multisig.RegisterRoutes(r, auth, l.Governors)
	vesting.RegisterRoutes(r, auth, l.Distributors)
	staking.RegisterRoutes(r, auth, l.Pools)
	l.Governors.SetExecutor(r)
	return r, l
}

// Initializers loads every ledger from the genesis app state. Tokens go
// first so that later sections can reference them.
func Initializers() mig.Initializer {
	return ChainInitializers(
		feetoken.Initializer{},
		&multisig.Initializer{},
		vesting.Initializer{},
		staking.Initializer{},
	)
}
