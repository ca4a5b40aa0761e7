package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/mig"
	"github.com/iov-one/mig/coin"
	"github.com/iov-one/mig/crypto"
	"github.com/iov-one/mig/errors"
	"github.com/iov-one/mig/migtest"
	"github.com/iov-one/mig/store/iavl"
	"github.com/iov-one/mig/x/feetoken"
	"github.com/iov-one/mig/x/multisig"
	"github.com/iov-one/mig/x/sigs"
)

const testChainID = "mig-test-net"

type testApp struct {
	*Application
	clock *migtest.Clock
	alice *crypto.PrivateKey
	bob   *crypto.PrivateKey
	carol *crypto.PrivateKey
}

func addr(k *crypto.PrivateKey) mig.Address {
	return k.PublicKey().Address()
}

// newTestApp starts an application with the MIG token administered by
// alice and a 2 of 3 governor (alice, bob, carol) holding 1000 MIG.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	clock := migtest.NewClock(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	a, err := NewApplication("migtest", iavl.NewMemCommitStore(), clock, log.NewNopLogger())
	require.NoError(t, err)
	ta := &testApp{
		Application: a,
		clock:       clock,
		alice:       crypto.GenPrivKeyEd25519(),
		bob:         crypto.GenPrivKeyEd25519(),
		carol:       crypto.GenPrivKeyEd25519(),
	}

	appState := fmt.Sprintf(`{
		"tokens": [{"ticker": "MIG", "name": "Mig Finance", "admin": %q}],
		"balances": [{"ticker": "MIG", "address": %q, "amount": "1000"}],
		"governors": [{"owners": [%q, %q, %q], "required": 2, "value_ticker": "MIG"}]
	}`, addr(ta.alice), multisig.GovernorAddress(multisig.GovernorID(1)),
		addr(ta.alice), addr(ta.bob), addr(ta.carol))
	var opts mig.Options
	require.NoError(t, json.Unmarshal([]byte(appState), &opts))
	require.NoError(t, a.LoadGenesis(&Genesis{ChainID: testChainID, AppState: opts}))
	return ta
}

// signed returns a transaction signed by all keys with their next nonce.
func (ta *testApp) signed(t *testing.T, msg mig.Msg, keys ...*crypto.PrivateKey) *Tx {
	t.Helper()
	tx, err := NewTx(msg)
	require.NoError(t, err)
	for _, k := range keys {
		var nonce int64
		err := ta.View(context.Background(), func(_ mig.Context, db mig.ReadOnlyKVStore) error {
			var err error
			nonce, err = sigs.NextNonce(db, addr(k))
			return err
		})
		require.NoError(t, err)
		require.NoError(t, tx.Sign(k, testChainID, nonce))
	}
	return tx
}

func (ta *testApp) balance(t *testing.T, owner mig.Address) string {
	t.Helper()
	var amount coin.Amount
	err := ta.View(context.Background(), func(_ mig.Context, db mig.ReadOnlyKVStore) error {
		var err error
		amount, err = ta.Ledgers().Tokens.BalanceOf(db, "MIG", owner)
		return err
	})
	require.NoError(t, err)
	return amount.String()
}

func TestSignedTransfer(t *testing.T) {
	ta := newTestApp(t)
	bob := addr(ta.bob)

	msg := &feetoken.TransferMsg{Ticker: "MIG", Source: addr(ta.alice), Destination: bob, Amount: coin.NewAmount(1000)}
	res, err := ta.Deliver(context.Background(), ta.signed(t, msg, ta.alice))
	require.NoError(t, err)
	assert.Equal(t, []byte("990"), res.Data)
	assert.Equal(t, "990", ta.balance(t, bob))

	// the nonce was consumed
	tx := ta.signed(t, msg, ta.alice)
	assert.Equal(t, int64(1), tx.Signatures[0].Sequence)

	id, err := ta.Commit()
	require.NoError(t, err)
	assert.Equal(t, int64(1), id.Version)
	assert.NotEmpty(t, id.Hash)
	info, err := ta.CommitInfo()
	require.NoError(t, err)
	assert.Equal(t, id, info)

	// state is still visible after the commit
	assert.Equal(t, "990", ta.balance(t, bob))
}

func TestFailedDeliveryLeavesNoTrace(t *testing.T) {
	ta := newTestApp(t)
	bob := addr(ta.bob)

	msg := &feetoken.TransferMsg{Ticker: "MIG", Source: bob, Destination: addr(ta.alice), Amount: coin.NewAmount(1)}
	_, err := ta.Deliver(context.Background(), ta.signed(t, msg, ta.bob))
	require.True(t, feetoken.ErrInsufficientBalance.Is(err), "got %+v", err)

	// a failed operation does not consume the nonce
	tx := ta.signed(t, msg, ta.bob)
	assert.Equal(t, int64(0), tx.Signatures[0].Sequence)
}

func TestDeliverAuthentication(t *testing.T) {
	ta := newTestApp(t)
	msg := &feetoken.TransferMsg{Ticker: "MIG", Source: addr(ta.alice), Destination: addr(ta.bob), Amount: coin.NewAmount(10)}

	unsigned, err := NewTx(msg)
	require.NoError(t, err)
	_, err = ta.Deliver(context.Background(), unsigned)
	assert.True(t, sigs.ErrMissingSignature.Is(err), "got %+v", err)

	_, err = ta.Deliver(context.Background(), ta.signed(t, msg, ta.bob))
	assert.True(t, errors.ErrUnauthorized.Is(err), "got %+v", err)

	otherChain, err := NewTx(msg)
	require.NoError(t, err)
	require.NoError(t, otherChain.Sign(ta.alice, "other-chain", 0))
	_, err = ta.Deliver(context.Background(), otherChain)
	assert.True(t, errors.ErrUnauthorized.Is(err), "got %+v", err)

	_, err = ta.Deliver(context.Background(), &Tx{})
	assert.True(t, errors.ErrInvalidMsg.Is(err), "got %+v", err)
}

func TestGenesis(t *testing.T) {
	ta := newTestApp(t)
	assert.Equal(t, testChainID, ta.ChainID())

	err := ta.LoadGenesis(&Genesis{ChainID: "another-chain"})
	assert.True(t, errors.ErrInvalidState.Is(err))

	fresh, err := NewApplication("migtest", iavl.NewMemCommitStore(), ta.clock, log.NewNopLogger())
	require.NoError(t, err)
	msg := &feetoken.TransferMsg{Ticker: "MIG", Source: addr(ta.alice), Destination: addr(ta.bob), Amount: coin.NewAmount(10)}
	_, err = fresh.Deliver(context.Background(), ta.signed(t, msg, ta.alice))
	assert.True(t, errors.ErrInvalidState.Is(err))

	err = fresh.LoadGenesis(&Genesis{ChainID: testChainID, AppState: mig.Options{"tokens": []byte(`{}`)}})
	assert.True(t, errors.ErrInvalidInput.Is(err))
	assert.Equal(t, "", fresh.ChainID())
}

func TestClockStampsOperations(t *testing.T) {
	ta := newTestApp(t)
	ta.clock.Advance(45 * 24 * time.Hour)

	msg := &feetoken.TransferMsg{Ticker: "MIG", Source: addr(ta.alice), Destination: addr(ta.bob), Amount: coin.NewAmount(1000)}
	_, err := ta.Deliver(context.Background(), ta.signed(t, msg, ta.alice))
	require.NoError(t, err)
	// second month of the token uses the decayed rate
	assert.Equal(t, "995", ta.balance(t, addr(ta.bob)))
}

func TestConcurrentConfirmationsExecuteOnce(t *testing.T) {
	ta := newTestApp(t)
	governor := multisig.GovernorID(1)
	dave := migtest.RandomAddr(t)

	submit := &multisig.SubmitTransactionMsg{
		GovernorID:  governor,
		Owner:       addr(ta.alice),
		Destination: dave,
		Value:       coin.NewAmount(100),
	}
	res, err := ta.Deliver(context.Background(), ta.signed(t, submit, ta.alice))
	require.NoError(t, err)
	assert.Equal(t, "0", res.Log)

	txs := []*Tx{
		ta.signed(t, &multisig.ConfirmTransactionMsg{GovernorID: governor, Owner: addr(ta.bob)}, ta.bob),
		ta.signed(t, &multisig.ConfirmTransactionMsg{GovernorID: governor, Owner: addr(ta.carol)}, ta.carol),
	}
	var wg sync.WaitGroup
	errs := make([]error, len(txs))
	for i, tx := range txs {
		wg.Add(1)
		go func(i int, tx *Tx) {
			defer wg.Done()
			_, errs[i] = ta.Deliver(context.Background(), tx)
		}(i, tx)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, "99", ta.balance(t, dave))
	assert.Equal(t, "900", ta.balance(t, multisig.GovernorAddress(governor)))
	err = ta.View(context.Background(), func(_ mig.Context, db mig.ReadOnlyKVStore) error {
		tx, err := ta.Ledgers().Governors.Transaction(db, governor, 0)
		if err != nil {
			return err
		}
		assert.True(t, tx.Executed)
		assert.Len(t, tx.Confirmations, 3)
		return nil
	})
	require.NoError(t, err)
}

func TestGovernorAdministersTokenThroughRouter(t *testing.T) {
	ta := newTestApp(t)
	governor := multisig.GovernorID(1)
	govAddr := multisig.GovernorAddress(governor)

	handover := &feetoken.TransferAdministratorMsg{Ticker: "MIG", NewAdmin: govAddr}
	_, err := ta.Deliver(context.Background(), ta.signed(t, handover, ta.alice))
	require.NoError(t, err)

	payload, err := NewTx(&feetoken.PauseMsg{Ticker: "MIG"})
	require.NoError(t, err)
	submit := &multisig.SubmitTransactionMsg{
		GovernorID:  governor,
		Owner:       addr(ta.alice),
		Destination: feetoken.TokenAddress("MIG"),
		Payload:     payload.Msg,
	}
	_, err = ta.Deliver(context.Background(), ta.signed(t, submit, ta.alice))
	require.NoError(t, err)
	confirm := &multisig.ConfirmTransactionMsg{GovernorID: governor, Owner: addr(ta.bob)}
	res, err := ta.Deliver(context.Background(), ta.signed(t, confirm, ta.bob))
	require.NoError(t, err)
	assert.Equal(t, "executed", res.Log)

	msg := &feetoken.TransferMsg{Ticker: "MIG", Source: addr(ta.alice), Destination: addr(ta.bob), Amount: coin.NewAmount(10)}
	_, err = ta.Deliver(context.Background(), ta.signed(t, msg, ta.alice))
	assert.True(t, feetoken.ErrPaused.Is(err), "got %+v", err)
}
