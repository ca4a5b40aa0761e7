package x

import (
	"context"
	"testing"

	"github.com/iov-one/mig"
	"github.com/iov-one/mig/migtest"
	"github.com/iov-one/mig/migtest/assert"
)

func TestAuth(t *testing.T) {
	a := migtest.NewCondition()
	b := migtest.NewCondition()
	c := migtest.NewCondition()

	ctx1 := &migtest.CtxAuth{Key: "foo"}
	ctx2 := &migtest.CtxAuth{Key: "bar"}

	cases := map[string]struct {
		ctx          mig.Context
		auth         Authenticator
		mainSigner   mig.Condition
		wantInCtx    mig.Condition
		wantNotInCtx mig.Condition
		wantAll      []mig.Condition
	}{
		"empty context": {
			ctx:          context.Background(),
			auth:         &migtest.Auth{},
			wantNotInCtx: b,
		},
		"signer a": {
			ctx:          context.Background(),
			auth:         &migtest.Auth{Signer: a},
			mainSigner:   a,
			wantInCtx:    a,
			wantNotInCtx: b,
			wantAll:      []mig.Condition{a},
		},
		"signer b": {
			ctx: context.Background(),
			auth: ChainAuth(
				&migtest.Auth{Signer: b},
				&migtest.Auth{Signer: a}),
			mainSigner:   b,
			wantInCtx:    b,
			wantNotInCtx: c,
			wantAll:      []mig.Condition{b, a},
		},
		"ctxAuth checks what is set by same key": {
			ctx:          ctx1.SetConditions(context.Background(), a, b),
			auth:         ctx1,
			mainSigner:   a,
			wantInCtx:    b,
			wantNotInCtx: c,
			wantAll:      []mig.Condition{a, b},
		},
		"ctxAuth with different key sees nothing": {
			ctx:          ctx1.SetConditions(context.Background(), a, b),
			auth:         ctx2,
			wantNotInCtx: a,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.mainSigner, MainSigner(tc.ctx, tc.auth))
			if tc.wantInCtx != nil && !tc.auth.HasAddress(tc.ctx, tc.wantInCtx.Address()) {
				t.Fatal("condition address that was expected in context not found")
			}

			if tc.wantNotInCtx != nil && tc.auth.HasAddress(tc.ctx, tc.wantNotInCtx.Address()) {
				t.Fatal("condition address that was expected not to be in context found")
			}

			all := tc.auth.GetConditions(tc.ctx)
			assert.Equal(t, tc.wantAll, all)

			if !HasAllConditions(tc.ctx, tc.auth, all) {
				t.Fatal("has all conditions check failed")
			}
			if HasAllConditions(tc.ctx, tc.auth, append(all, tc.wantNotInCtx)) {
				t.Fatal("has all condition succeeded after adding non existing condition")
			}

			if len(all) > 0 {
				if !HasNConditions(tc.ctx, tc.auth, all, len(all)-1) {
					t.Fatal("want condition check of a subset to succeed")
				}
				if HasNConditions(tc.ctx, tc.auth, all, len(all)+1) {
					t.Fatal("want condition check of a superset to fail")
				}
			}
		})
	}
}

func TestRestrict(t *testing.T) {
	owner := migtest.NewCondition()
	governor := mig.NewCondition("multisig", "seq", []byte{0, 0, 0, 0, 0, 0, 0, 1})

	sigs := &migtest.CtxAuth{Key: "sigs"}
	contract := &migtest.CtxAuth{Key: "contract"}
	auth := ChainAuth(sigs, contract)

	ctx := sigs.SetConditions(context.Background(), owner)
	ctx = contract.SetConditions(ctx, governor)
	assert.Equal(t, []mig.Condition{owner, governor}, auth.GetConditions(ctx))

	ctx = Restrict(ctx, governor)
	assert.Equal(t, []mig.Condition{governor}, auth.GetConditions(ctx))
	assert.Equal(t, governor, MainSigner(ctx, auth))
	if auth.HasAddress(ctx, owner.Address()) {
		t.Fatal("restricted context must not reveal the caller")
	}
	if !auth.HasAddress(ctx, governor.Address()) {
		t.Fatal("restricted context must reveal the allowed condition")
	}
	assert.Equal(t, []mig.Address{governor.Address()}, GetAddresses(ctx, auth))

	// Restricting to a condition that is not fulfilled reveals nothing.
	ctx = Restrict(ctx, owner, migtest.NewCondition())
	if len(auth.GetConditions(ctx)) != 0 {
		t.Fatal("nothing must be revealed")
	}
}
