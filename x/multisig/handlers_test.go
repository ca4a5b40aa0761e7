package multisig

import (
	"testing"

	"github.com/iov-one/mig"
	"github.com/iov-one/mig/coin"
	"github.com/iov-one/mig/errors"
	"github.com/iov-one/mig/migtest"
	"github.com/iov-one/mig/migtest/assert"
	"github.com/iov-one/mig/orm"
	"github.com/iov-one/mig/x/feetoken"
)

func TestHandlers(t *testing.T) {
	a, b, c := migtest.NewCondition(), migtest.NewCondition(), migtest.NewCondition()

	cases := map[string]struct {
		signer  mig.Condition
		msg     mig.Msg
		wantErr *errors.Error
		wantLog string
	}{
		"create governor": {
			signer: c,
			msg: &CreateGovernorMsg{
				Owners:   []mig.Address{a.Address(), c.Address()},
				Required: 1,
			},
			wantLog: GovernorAddress(GovernorID(2)).String(),
		},
		"create governor requires a signature": {
			msg: &CreateGovernorMsg{
				Owners:   []mig.Address{a.Address()},
				Required: 1,
			},
			wantErr: errors.ErrUnauthorized,
		},
		"create governor with too high threshold": {
			signer: a,
			msg: &CreateGovernorMsg{
				Owners:   []mig.Address{a.Address()},
				Required: 2,
			},
			wantErr: errors.ErrInvalidMsg,
		},
		"owner confirms and executes": {
			signer:  b,
			msg:     &ConfirmTransactionMsg{GovernorID: GovernorID(1), Owner: b.Address(), TxID: 0},
			wantLog: "executed",
		},
		"confirmation must be signed by the owner": {
			signer:  a,
			msg:     &ConfirmTransactionMsg{GovernorID: GovernorID(1), Owner: b.Address(), TxID: 0},
			wantErr: ErrNotOwner,
		},
		"revoke keeps the transaction pending": {
			signer:  a,
			msg:     &RevokeConfirmationMsg{GovernorID: GovernorID(1), Owner: a.Address(), TxID: 0},
			wantLog: "pending",
		},
		"execute an unconfirmed transaction is a no-op": {
			signer:  a,
			msg:     &ExecuteTransactionMsg{GovernorID: GovernorID(1), Owner: a.Address(), TxID: 0},
			wantLog: "pending",
		},
		"submit by a stranger": {
			signer: c,
			msg: &SubmitTransactionMsg{
				GovernorID:  GovernorID(1),
				Owner:       c.Address(),
				Destination: a.Address(),
			},
			wantErr: ErrNotOwner,
		},
		"submit with an invalid governor id": {
			signer: a,
			msg: &SubmitTransactionMsg{
				GovernorID:  []byte{1},
				Owner:       a.Address(),
				Destination: a.Address(),
			},
			wantErr: errors.ErrInvalidInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			id := f.governor(t, 2, a, b)
			_, err := f.ctrl.Submit(f.as(a), f.db, id, a.Address(), migtest.RandomAddr(t), coin.Zero(), nil)
			assert.Nil(t, err)

			ctx := f.clock.Context()
			if tc.signer != nil {
				ctx = f.as(tc.signer)
			}
			res, err := f.rt.Deliver(ctx, f.db, tc.msg)
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantErr == nil {
				assert.Equal(t, tc.wantLog, res.Log)
			}
		})
	}
}

func TestSubmitHandlerReturnsTransactionID(t *testing.T) {
	f := newFixture(t)
	a := migtest.NewCondition()
	id := f.governor(t, 1, a)

	for want := int64(0); want < 3; want++ {
		res, err := f.rt.Deliver(f.as(a), f.db, &SubmitTransactionMsg{
			GovernorID:  id,
			Owner:       a.Address(),
			Destination: migtest.RandomAddr(t),
			Value:       coin.NewAmount(10),
		})
		assert.Nil(t, err)
		assert.Equal(t, orm.EncodeSequence(want), res.Data)
	}

	executed, err := f.ctrl.TransactionCount(f.db, id, false, true)
	assert.Nil(t, err)
	assert.Equal(t, uint64(3), executed)
}

func TestGovernorAdministersToken(t *testing.T) {
	f := newFixture(t)
	a, b := migtest.NewCondition(), migtest.NewCondition()
	id := f.governor(t, 2, a, b)

	pause := payload(t, &feetoken.PauseMsg{Ticker: "MIG"})
	res, err := f.rt.Deliver(f.as(a), f.db, &SubmitTransactionMsg{
		GovernorID:  id,
		Owner:       a.Address(),
		Destination: feetoken.TokenAddress("MIG"),
		Payload:     pause,
	})
	assert.Nil(t, err)
	txID := uint64(orm.DecodeSequence(res.Data))

	// A single owner cannot act as the administrator.
	_, err = f.rt.Deliver(f.as(a), f.db, &feetoken.PauseMsg{Ticker: "MIG"})
	assert.IsErr(t, feetoken.ErrNotAdministrator, err)

	res, err = f.rt.Deliver(f.as(b), f.db, &ConfirmTransactionMsg{GovernorID: id, Owner: b.Address(), TxID: txID})
	assert.Nil(t, err)
	assert.Equal(t, "executed", res.Log)

	tok, err := f.tokens.Token(f.db, "MIG")
	assert.Nil(t, err)
	assert.Equal(t, true, tok.Paused)
}
