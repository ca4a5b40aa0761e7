package multisig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iov-one/mig"
	"github.com/iov-one/mig/codec"
	"github.com/iov-one/mig/coin"
	"github.com/iov-one/mig/errors"
	"github.com/iov-one/mig/migtest"
	"github.com/iov-one/mig/migtest/assert"
	"github.com/iov-one/mig/x"
	"github.com/iov-one/mig/x/feetoken"
)

var genesisTime = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

// countingExec counts payloads that reached the router.
type countingExec struct {
	next  mig.Handler
	calls int
}

func (c *countingExec) Deliver(ctx mig.Context, db mig.KVStore, m mig.Msg) (*mig.DeliverResult, error) {
	c.calls++
	return c.next.Deliver(ctx, db, m)
}

type fixture struct {
	clock  *migtest.Clock
	db     mig.CacheableKVStore
	sigs   *migtest.CtxAuth
	rt     migtest.Router
	tokens *feetoken.Controller
	ctrl   *Controller
	exec   *countingExec
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	f := &fixture{
		clock:  migtest.NewClock(genesisTime),
		db:     migtest.MemStore(),
		sigs:   &migtest.CtxAuth{Key: "sigs"},
		rt:     migtest.NewRouter(),
		tokens: feetoken.NewController(),
	}
	f.exec = &countingExec{next: f.rt}
	f.ctrl = NewController(f.tokens, f.exec)
	auth := x.ChainAuth(f.sigs, Authenticate{})
	feetoken.RegisterRoutes(f.rt, auth, f.tokens)
	RegisterRoutes(f.rt, auth, f.ctrl)
	return f
}

func (f *fixture) as(c mig.Condition) mig.Context {
	return f.sigs.SetConditions(f.clock.Context(), c)
}

// governor creates a governor and a MIG token administered by it.
func (f *fixture) governor(t testing.TB, required uint32, owners ...mig.Condition) []byte {
	t.Helper()
	addrs := make([]mig.Address, len(owners))
	for i, o := range owners {
		addrs[i] = o.Address()
	}
	id, err := f.ctrl.Create(f.clock.Context(), f.db, &Governor{Owners: addrs, Required: required, ValueTicker: "MIG"})
	require.NoError(t, err)

	deployer := migtest.RandomAddr(t)
	tok := feetoken.Token{
		Ticker:      "MIG",
		Name:        "Mig Finance",
		Decimals:    18,
		Admin:       deployer,
		BaseRate:    feetoken.DefaultBaseRate,
		DecayedRate: feetoken.DefaultDecayedRate,
	}
	ctx := f.clock.Context()
	require.NoError(t, f.tokens.Create(ctx, f.db, &tok, coin.NewAmount(1000000)))
	_, err = f.tokens.Transfer(ctx, f.db, "MIG", deployer, GovernorAddress(id), coin.NewAmount(100000))
	require.NoError(t, err)
	require.NoError(t, f.tokens.TransferAdministrator(ctx, f.db, "MIG", GovernorAddress(id)))
	return id
}

func payload(t testing.TB, m mig.Msg) []byte {
	t.Helper()
	bz, err := codec.MarshalMsg(m)
	require.NoError(t, err)
	return bz
}

func TestTwoOfTwoExecutesOnSecondConfirmation(t *testing.T) {
	f := newFixture(t)
	a, b := migtest.NewCondition(), migtest.NewCondition()
	id := f.governor(t, 2, a, b)

	call := payload(t, &feetoken.SetFeeRateMsg{Ticker: "MIG", Rate: 200, Month: 1})
	txID, err := f.ctrl.Submit(f.as(a), f.db, id, a.Address(), feetoken.TokenAddress("MIG"), coin.Zero(), call)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), txID)

	confirmed, err := f.ctrl.IsConfirmed(f.db, id, txID)
	require.NoError(t, err)
	assert.Equal(t, false, confirmed)
	pending, err := f.ctrl.TransactionCount(f.db, id, true, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), pending)
	assert.Equal(t, 0, f.exec.calls)

	require.NoError(t, f.ctrl.Confirm(f.as(b), f.db, id, b.Address(), txID))

	confirmed, err = f.ctrl.IsConfirmed(f.db, id, txID)
	require.NoError(t, err)
	assert.Equal(t, true, confirmed)
	assert.Equal(t, 1, f.exec.calls)

	tx, err := f.ctrl.Transaction(f.db, id, txID)
	require.NoError(t, err)
	assert.Equal(t, true, tx.Executed)
	assert.Equal(t, []mig.Address{a.Address(), b.Address()}, tx.Confirmations)

	rate, err := f.tokens.CurrentBasisPoints(f.clock.Context(), f.db, "MIG")
	require.NoError(t, err)
	assert.Equal(t, uint32(200), rate)

	// Execution happens exactly once.
	_, err = f.ctrl.Execute(f.as(a), f.db, id, a.Address(), txID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.exec.calls)

	counts := map[[2]bool]uint64{
		{true, false}:  0,
		{false, true}:  1,
		{true, true}:   1,
		{false, false}: 0,
	}
	for flags, want := range counts {
		got, err := f.ctrl.TransactionCount(f.db, id, flags[0], flags[1])
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestRevokeConfirmation(t *testing.T) {
	f := newFixture(t)
	a, b := migtest.NewCondition(), migtest.NewCondition()
	id := f.governor(t, 2, a, b)

	txID, err := f.ctrl.Submit(f.as(a), f.db, id, a.Address(), migtest.RandomAddr(t), coin.Zero(), nil)
	require.NoError(t, err)

	require.NoError(t, f.ctrl.Revoke(f.as(a), f.db, id, a.Address(), txID))
	confs, err := f.ctrl.Confirmations(f.db, id, txID)
	require.NoError(t, err)
	assert.Equal(t, 0, len(confs))

	// Revoking twice is a no-op.
	require.NoError(t, f.ctrl.Revoke(f.as(a), f.db, id, a.Address(), txID))

	require.NoError(t, f.ctrl.Confirm(f.as(b), f.db, id, b.Address(), txID))
	confirmed, err := f.ctrl.IsConfirmed(f.db, id, txID)
	require.NoError(t, err)
	assert.Equal(t, false, confirmed)

	tx, err := f.ctrl.Transaction(f.db, id, txID)
	require.NoError(t, err)
	assert.Equal(t, false, tx.Executed)
}

func TestSingleOwnerSubmitExecutesImmediately(t *testing.T) {
	f := newFixture(t)
	a := migtest.NewCondition()
	id := f.governor(t, 1, a)
	bob := migtest.RandomAddr(t)

	txID, err := f.ctrl.Submit(f.as(a), f.db, id, a.Address(), bob, coin.NewAmount(1000), nil)
	require.NoError(t, err)

	tx, err := f.ctrl.Transaction(f.db, id, txID)
	require.NoError(t, err)
	assert.Equal(t, true, tx.Executed)

	// The value transfer is charged the token fee.
	got, err := f.tokens.BalanceOf(f.db, "MIG", bob)
	require.NoError(t, err)
	assert.Equal(t, "990", got.String())
}

func TestFailedExecutionKeepsTransactionConfirmed(t *testing.T) {
	f := newFixture(t)
	a, b := migtest.NewCondition(), migtest.NewCondition()
	id := f.governor(t, 2, a, b)

	// The governor holds 100000 minus the fee, it cannot send a million.
	txID, err := f.ctrl.Submit(f.as(a), f.db, id, a.Address(), migtest.RandomAddr(t), coin.NewAmount(1000000), nil)
	require.NoError(t, err)

	// Confirmation succeeds even though the execution fails.
	require.NoError(t, f.ctrl.Confirm(f.as(b), f.db, id, b.Address(), txID))
	tx, err := f.ctrl.Transaction(f.db, id, txID)
	require.NoError(t, err)
	assert.Equal(t, false, tx.Executed)
	assert.Equal(t, 2, len(tx.Confirmations))

	// Explicit execution reports the failure.
	executed, err := f.ctrl.Execute(f.as(a), f.db, id, a.Address(), txID)
	assert.IsErr(t, feetoken.ErrInsufficientBalance, err)
	assert.Equal(t, false, executed)

	// Nothing of the failed call is kept.
	gov, err := f.tokens.BalanceOf(f.db, "MIG", GovernorAddress(id))
	require.NoError(t, err)
	assert.Equal(t, "99000", gov.String())
}

func TestRetryAfterFailedPayload(t *testing.T) {
	f := newFixture(t)
	a, b := migtest.NewCondition(), migtest.NewCondition()
	id := f.governor(t, 2, a, b)
	ctx := f.clock.Context()

	// The token is paused, so the governor cannot pay out yet.
	require.NoError(t, f.tokens.SetPaused(ctx, f.db, "MIG", true))

	bob := migtest.RandomAddr(t)
	call := payload(t, &feetoken.TransferMsg{Ticker: "MIG", Source: GovernorAddress(id), Destination: bob, Amount: coin.NewAmount(100)})
	txID, err := f.ctrl.Submit(f.as(a), f.db, id, a.Address(), feetoken.TokenAddress("MIG"), coin.Zero(), call)
	require.NoError(t, err)
	require.NoError(t, f.ctrl.Confirm(f.as(b), f.db, id, b.Address(), txID))

	executed, err := f.ctrl.Execute(f.as(b), f.db, id, b.Address(), txID)
	assert.IsErr(t, feetoken.ErrPaused, err)
	assert.Equal(t, false, executed)

	require.NoError(t, f.tokens.SetPaused(ctx, f.db, "MIG", false))
	executed, err = f.ctrl.Execute(f.as(b), f.db, id, b.Address(), txID)
	require.NoError(t, err)
	assert.Equal(t, true, executed)

	got, err := f.tokens.BalanceOf(f.db, "MIG", bob)
	require.NoError(t, err)
	assert.Equal(t, "99", got.String())
}

func TestPayloadCannotUseOwnerSignature(t *testing.T) {
	f := newFixture(t)
	a := migtest.NewCondition()
	id := f.governor(t, 1, a)

	// Give the owner some tokens the governor could try to move.
	_, err := f.ctrl.Submit(f.as(a), f.db, id, a.Address(), a.Address(), coin.NewAmount(5000), nil)
	require.NoError(t, err)

	call := payload(t, &feetoken.TransferMsg{Ticker: "MIG", Source: a.Address(), Destination: migtest.RandomAddr(t), Amount: coin.NewAmount(10)})
	txID, err := f.ctrl.Submit(f.as(a), f.db, id, a.Address(), feetoken.TokenAddress("MIG"), coin.Zero(), call)
	require.NoError(t, err)

	tx, err := f.ctrl.Transaction(f.db, id, txID)
	require.NoError(t, err)
	assert.Equal(t, false, tx.Executed)

	_, err = f.ctrl.Execute(f.as(a), f.db, id, a.Address(), txID)
	assert.IsErr(t, errors.ErrUnauthorized, err)
}

func TestPayloadMustTargetDestination(t *testing.T) {
	f := newFixture(t)
	a := migtest.NewCondition()
	id := f.governor(t, 1, a)

	call := payload(t, &feetoken.PauseMsg{Ticker: "MIG"})
	txID, err := f.ctrl.Submit(f.as(a), f.db, id, a.Address(), migtest.RandomAddr(t), coin.Zero(), call)
	require.NoError(t, err)

	_, err = f.ctrl.Execute(f.as(a), f.db, id, a.Address(), txID)
	assert.IsErr(t, errors.ErrInvalidMsg, err)
	assert.Equal(t, 0, f.exec.calls)
}

func TestGovernorErrors(t *testing.T) {
	a, b, stranger := migtest.NewCondition(), migtest.NewCondition(), migtest.NewCondition()

	cases := map[string]struct {
		run     func(t *testing.T, f *fixture, id []byte) error
		wantErr *errors.Error
	}{
		"submit by stranger": {
			run: func(t *testing.T, f *fixture, id []byte) error {
				_, err := f.ctrl.Submit(f.as(stranger), f.db, id, stranger.Address(), a.Address(), coin.Zero(), nil)
				return err
			},
			wantErr: ErrNotOwner,
		},
		"confirm by stranger": {
			run: func(t *testing.T, f *fixture, id []byte) error {
				return f.ctrl.Confirm(f.as(stranger), f.db, id, stranger.Address(), 0)
			},
			wantErr: errors.ErrUnauthorized,
		},
		"confirm unknown transaction": {
			run: func(t *testing.T, f *fixture, id []byte) error {
				return f.ctrl.Confirm(f.as(b), f.db, id, b.Address(), 42)
			},
			wantErr: ErrUnknownTransaction,
		},
		"confirm twice": {
			run: func(t *testing.T, f *fixture, id []byte) error {
				return f.ctrl.Confirm(f.as(a), f.db, id, a.Address(), 0)
			},
			wantErr: ErrAlreadyConfirmedByCaller,
		},
		"revoke executed": {
			run: func(t *testing.T, f *fixture, id []byte) error {
				require.NoError(t, f.ctrl.Confirm(f.as(b), f.db, id, b.Address(), 0))
				return f.ctrl.Revoke(f.as(a), f.db, id, a.Address(), 0)
			},
			wantErr: ErrAlreadyExecuted,
		},
		"execute by stranger": {
			run: func(t *testing.T, f *fixture, id []byte) error {
				_, err := f.ctrl.Execute(f.as(stranger), f.db, id, stranger.Address(), 0)
				return err
			},
			wantErr: ErrNotOwner,
		},
		"unknown governor": {
			run: func(t *testing.T, f *fixture, id []byte) error {
				return f.ctrl.Confirm(f.as(a), f.db, GovernorID(99), a.Address(), 0)
			},
			wantErr: errors.ErrNotFound,
		},
		"value without value token": {
			run: func(t *testing.T, f *fixture, id []byte) error {
				gid, err := f.ctrl.Create(f.clock.Context(), f.db, &Governor{Owners: []mig.Address{a.Address()}, Required: 1})
				require.NoError(t, err)
				_, err = f.ctrl.Submit(f.as(a), f.db, gid, a.Address(), b.Address(), coin.NewAmount(1), nil)
				return err
			},
			wantErr: errors.ErrInvalidInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			id := f.governor(t, 2, a, b)
			_, err := f.ctrl.Submit(f.as(a), f.db, id, a.Address(), migtest.RandomAddr(t), coin.Zero(), nil)
			require.NoError(t, err)
			assert.IsErr(t, tc.wantErr, tc.run(t, f, id))
		})
	}
}

func TestExecutionIsExactlyOnceForAnyOrder(t *testing.T) {
	orders := [][]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
	for _, order := range orders {
		f := newFixture(t)
		owners := []mig.Condition{migtest.NewCondition(), migtest.NewCondition(), migtest.NewCondition()}
		id := f.governor(t, 2, owners...)

		call := payload(t, &feetoken.SetFeeRateMsg{Ticker: "MIG", Rate: 300, Month: 1})
		first := owners[order[0]]
		txID, err := f.ctrl.Submit(f.as(first), f.db, id, first.Address(), feetoken.TokenAddress("MIG"), coin.Zero(), call)
		require.NoError(t, err)
		for _, i := range order[1:] {
			o := owners[i]
			require.NoError(t, f.ctrl.Confirm(f.as(o), f.db, id, o.Address(), txID))
			_, err := f.ctrl.Execute(f.as(o), f.db, id, o.Address(), txID)
			require.NoError(t, err)
		}
		assert.Equal(t, 1, f.exec.calls)
		confs, err := f.ctrl.Confirmations(f.db, id, txID)
		require.NoError(t, err)
		assert.Equal(t, 3, len(confs))
	}
}

func TestNestedGovernors(t *testing.T) {
	f := newFixture(t)
	a := migtest.NewCondition()
	outer := f.governor(t, 1, a)

	// The outer governor is the only owner of the inner one.
	inner, err := f.ctrl.Create(f.clock.Context(), f.db, &Governor{
		Owners:   []mig.Address{GovernorAddress(outer)},
		Required: 1,
	})
	require.NoError(t, err)

	call := payload(t, &SubmitTransactionMsg{
		GovernorID:  inner,
		Owner:       GovernorAddress(outer),
		Destination: migtest.RandomAddr(t),
	})
	_, err = f.ctrl.Submit(f.as(a), f.db, outer, a.Address(), GovernorAddress(inner), coin.Zero(), call)
	require.NoError(t, err)

	tx, err := f.ctrl.Transaction(f.db, inner, 0)
	require.NoError(t, err)
	assert.Equal(t, true, tx.Executed)
	assert.Equal(t, []mig.Address{GovernorAddress(outer)}, tx.Confirmations)
}
