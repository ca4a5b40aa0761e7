package vesting

import (
	"testing"
	"time"

	"github.com/iov-one/mig"
	"github.com/iov-one/mig/coin"
	"github.com/iov-one/mig/errors"
	"github.com/iov-one/mig/migtest"
	"github.com/iov-one/mig/migtest/assert"
	"github.com/iov-one/mig/orm"
)

func TestHandlers(t *testing.T) {
	funder := migtest.NewCondition()
	alice := migtest.NewCondition()
	start := mig.AsUnixTime(genesisTime)
	first := orm.EncodeSequence(1)

	cases := map[string]struct {
		signer   mig.Condition
		msg      mig.Msg
		wantErr  *errors.Error
		wantData []byte
	}{
		"create distributor": {
			signer:   alice,
			msg:      &CreateDistributorMsg{Ticker: "MIG", Start: start, End: start + 100},
			wantData: orm.EncodeSequence(2),
		},
		"create distributor without a signer": {
			msg:     &CreateDistributorMsg{Ticker: "MIG", Start: start, End: start + 100},
			wantErr: errors.ErrUnauthorized,
		},
		"create distributor with inverted window": {
			signer:  alice,
			msg:     &CreateDistributorMsg{Ticker: "MIG", Start: start + 100, End: start},
			wantErr: errors.ErrInvalidSchedule,
		},
		"fund a schedule": {
			signer: funder,
			msg: &CreateScheduleMsg{
				DistributorID: first,
				Funder:        funder.Address(),
				Beneficiary:   alice.Address(),
				Amount:        coin.NewAmount(1000),
			},
			wantData: []byte("990"),
		},
		"fund requires the funder signature": {
			signer: alice,
			msg: &CreateScheduleMsg{
				DistributorID: first,
				Funder:        funder.Address(),
				Beneficiary:   alice.Address(),
				Amount:        coin.NewAmount(1000),
			},
			wantErr: errors.ErrUnauthorized,
		},
		"zero funding": {
			signer: funder,
			msg: &CreateScheduleMsg{
				DistributorID: first,
				Funder:        funder.Address(),
				Beneficiary:   alice.Address(),
			},
			wantErr: errors.ErrInvalidAmount,
		},
		"draw down without a schedule": {
			signer:  alice,
			msg:     &DrawDownMsg{DistributorID: first, Beneficiary: alice.Address()},
			wantErr: errors.ErrNotFound,
		},
		"draw down requires the beneficiary signature": {
			signer:  funder,
			msg:     &DrawDownMsg{DistributorID: first, Beneficiary: alice.Address()},
			wantErr: errors.ErrUnauthorized,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFundedFixture(t, funder.Address())
			f.distributor(t, 0, 0, time.Hour)
			assert.Nil(t, f.tokens.Approve(f.clock.Context(), f.db, "MIG", funder.Address(), DistributorAddress(first), coin.NewAmount(1000)))

			auth := &migtest.CtxAuth{Key: "auth"}
			rt := migtest.NewRouter()
			RegisterRoutes(rt, auth, f.ctrl)

			ctx := f.clock.Context()
			if tc.signer != nil {
				ctx = auth.SetConditions(ctx, tc.signer)
			}
			res, err := rt.Deliver(ctx, f.db, tc.msg)
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantErr == nil {
				assert.Equal(t, tc.wantData, res.Data)
			}
		})
	}
}

func TestDrawDownHandler(t *testing.T) {
	alice := migtest.NewCondition()
	f := newFixture(t)
	id := f.distributor(t, 0, 0, 100*time.Second)
	f.fund(t, id, alice.Address(), 1000)

	auth := &migtest.CtxAuth{Key: "auth"}
	rt := migtest.NewRouter()
	RegisterRoutes(rt, auth, f.ctrl)

	f.clock.Advance(50 * time.Second)
	res, err := rt.Deliver(auth.SetConditions(f.clock.Context(), alice), f.db, &DrawDownMsg{DistributorID: id, Beneficiary: alice.Address()})
	assert.Nil(t, err)
	assert.Equal(t, "491", string(res.Data))
	assert.Equal(t, "fee 4", res.Log)
}
