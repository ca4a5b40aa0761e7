package feetoken

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iov-one/mig"
	"github.com/iov-one/mig/coin"
	"github.com/iov-one/mig/errors"
	"github.com/iov-one/mig/migtest"
	"github.com/iov-one/mig/migtest/assert"
)

func TestHandlers(t *testing.T) {
	clock := migtest.NewClock(genesisTime)
	admin := migtest.NewCondition()
	alice := migtest.NewCondition()
	bob := migtest.NewCondition()

	create := &CreateTokenMsg{
		Ticker:      "MIG",
		Name:        "Mig Finance",
		Decimals:    18,
		Admin:       admin.Address(),
		Supply:      coin.NewAmount(1000000),
		BaseRate:    DefaultBaseRate,
		DecayedRate: DefaultDecayedRate,
	}

	cases := map[string]struct {
		signer  mig.Condition
		msg     mig.Msg
		wantErr *errors.Error
	}{
		"create without admin signature": {
			signer:  alice,
			msg:     &CreateTokenMsg{Ticker: "NEW", Name: "n", Admin: admin.Address(), Supply: coin.NewAmount(1)},
			wantErr: errors.ErrUnauthorized,
		},
		"invalid create": {
			signer:  admin,
			msg:     &CreateTokenMsg{Ticker: "new", Name: "n", Admin: admin.Address(), Supply: coin.NewAmount(1)},
			wantErr: errors.ErrInvalidMsg,
		},
		"transfer signed by source": {
			signer: admin,
			msg:    &TransferMsg{Ticker: "MIG", Source: admin.Address(), Destination: bob.Address(), Amount: coin.NewAmount(10)},
		},
		"transfer signed by someone else": {
			signer:  bob,
			msg:     &TransferMsg{Ticker: "MIG", Source: admin.Address(), Destination: bob.Address(), Amount: coin.NewAmount(10)},
			wantErr: errors.ErrUnauthorized,
		},
		"zero transfer": {
			signer:  admin,
			msg:     &TransferMsg{Ticker: "MIG", Source: admin.Address(), Destination: bob.Address()},
			wantErr: errors.ErrInvalidAmount,
		},
		"approve signed by owner": {
			signer: admin,
			msg:    &ApproveMsg{Ticker: "MIG", Owner: admin.Address(), Spender: alice.Address(), Amount: coin.NewAmount(10)},
		},
		"approve for someone else": {
			signer:  alice,
			msg:     &ApproveMsg{Ticker: "MIG", Owner: admin.Address(), Spender: alice.Address(), Amount: coin.NewAmount(10)},
			wantErr: errors.ErrUnauthorized,
		},
		"transfer from without allowance": {
			signer:  alice,
			msg:     &TransferFromMsg{Ticker: "MIG", Spender: alice.Address(), Owner: admin.Address(), Destination: bob.Address(), Amount: coin.NewAmount(10)},
			wantErr: ErrInsufficientAllowance,
		},
		"pause by admin": {
			signer: admin,
			msg:    &PauseMsg{Ticker: "MIG"},
		},
		"pause by stranger": {
			signer:  bob,
			msg:     &PauseMsg{Ticker: "MIG"},
			wantErr: ErrNotAdministrator,
		},
		"unpause by stranger is unauthorized": {
			signer:  bob,
			msg:     &UnpauseMsg{Ticker: "MIG"},
			wantErr: errors.ErrUnauthorized,
		},
		"set fee rate by admin": {
			signer: admin,
			msg:    &SetFeeRateMsg{Ticker: "MIG", Rate: 300, Month: 1},
		},
		"set fee rate for a future month": {
			signer:  admin,
			msg:     &SetFeeRateMsg{Ticker: "MIG", Rate: 300, Month: 2},
			wantErr: ErrInvalidMonth,
		},
		"set fee rate by stranger": {
			signer:  alice,
			msg:     &SetFeeRateMsg{Ticker: "MIG", Rate: 300, Month: 1},
			wantErr: ErrNotAdministrator,
		},
		"transfer administrator by stranger": {
			signer:  alice,
			msg:     &TransferAdministratorMsg{Ticker: "MIG", NewAdmin: alice.Address()},
			wantErr: ErrNotAdministrator,
		},
		"unknown token administration": {
			signer:  admin,
			msg:     &PauseMsg{Ticker: "NOPE"},
			wantErr: errors.ErrNotFound,
		},
		"wrong message type": {
			signer:  admin,
			msg:     &migtest.Msg{RoutePath: pathPauseMsg},
			wantErr: errors.ErrInvalidMsg,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := migtest.MemStore()
			auth := &migtest.CtxAuth{Key: "auth"}
			rt := migtest.NewRouter()
			RegisterRoutes(rt, auth, NewController())

			ctx := auth.SetConditions(clock.Context(), admin)
			_, err := rt.Deliver(ctx, db, create)
			require.NoError(t, err)

			ctx = auth.SetConditions(clock.Context(), tc.signer)
			_, err = rt[tc.msg.Path()].Deliver(ctx, db, tc.msg)
			assert.IsErr(t, tc.wantErr, err)
		})
	}
}

func TestTransferAdministratorHandsOverControl(t *testing.T) {
	clock := migtest.NewClock(genesisTime)
	admin := migtest.NewCondition()
	governor := migtest.NewCondition()
	db := migtest.MemStore()
	auth := &migtest.CtxAuth{Key: "auth"}
	rt := migtest.NewRouter()
	RegisterRoutes(rt, auth, NewController())

	asAdmin := auth.SetConditions(clock.Context(), admin)
	asGovernor := auth.SetConditions(clock.Context(), governor)

	_, err := rt.Deliver(asAdmin, db, &CreateTokenMsg{
		Ticker: "MIG", Name: "Mig", Admin: admin.Address(), Supply: coin.NewAmount(10),
	})
	require.NoError(t, err)
	_, err = rt.Deliver(asAdmin, db, &TransferAdministratorMsg{Ticker: "MIG", NewAdmin: governor.Address()})
	require.NoError(t, err)

	_, err = rt.Deliver(asAdmin, db, &PauseMsg{Ticker: "MIG"})
	assert.IsErr(t, ErrNotAdministrator, err)
	_, err = rt.Deliver(asGovernor, db, &PauseMsg{Ticker: "MIG"})
	assert.Nil(t, err)
}
