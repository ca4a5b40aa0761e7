package server

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/mig"
	"github.com/iov-one/mig/app"
	"github.com/iov-one/mig/coin"
	"github.com/iov-one/mig/errors"
	"github.com/iov-one/mig/store/iavl"
	"github.com/iov-one/mig/x/feetoken"
	"github.com/iov-one/mig/x/multisig"
)

func TestInitKeepsExistingFiles(t *testing.T) {
	home := setupViper(t)
	logger := log.NewNopLogger()

	require.NoError(t, InitCmd(ExampleAppState, logger).RunE(nil, nil))
	assert.FileExists(t, filepath.Join(home, ConfigFile))
	assert.FileExists(t, KeyPath(home, AdminKey))

	gen, err := app.LoadGenesis(filepath.Join(home, "genesis.json"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(gen.ChainID, "mig-chain-"))
	for _, key := range []string{"tokens", "balances", "governors", "vesting", "staking"} {
		assert.Contains(t, gen.AppState, key)
	}

	// a second run finds everything in place
	require.NoError(t, InitCmd(ExampleAppState, logger).RunE(nil, nil))
	again, err := app.LoadGenesis(filepath.Join(home, "genesis.json"))
	require.NoError(t, err)
	assert.Equal(t, gen.ChainID, again.ChainID)
}

func TestRunAppliesGenesisOnce(t *testing.T) {
	setupViper(t)
	logger := log.NewNopLogger()
	require.NoError(t, InitCmd(ExampleAppState, logger).RunE(nil, nil))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	cfg.HTTPAddress = "127.0.0.1:0"
	cfg.CommitInterval = 20 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, Run(ctx, cfg, logger))

	gen, err := app.LoadGenesis(cfg.Genesis)
	require.NoError(t, err)

	db, err := iavl.NewCommitStore(cfg.DBPath, DBName)
	require.NoError(t, err)
	a, err := app.NewApplication("migtest", db, mig.SystemClock{}, logger)
	require.NoError(t, err)
	assert.Equal(t, gen.ChainID, a.ChainID())
	info, err := a.CommitInfo()
	require.NoError(t, err)
	assert.True(t, info.Version >= 1, "version %d", info.Version)

	var treasury coin.Amount
	err = a.View(context.Background(), func(_ mig.Context, db mig.ReadOnlyKVStore) error {
		var err error
		treasury, err = a.Ledgers().Tokens.BalanceOf(db, ExampleTicker, multisig.GovernorAddress(multisig.GovernorID(1)))
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, coin.Tokens(100000, feetoken.DefaultDecimals).String(), treasury.String())
	db.Close()

	// the state now belongs to the genesis chain
	cfg.ChainID = "another-chain"
	err = Run(context.Background(), cfg, logger)
	assert.True(t, errors.ErrInvalidState.Is(err), "got %+v", err)
}

func TestRunWithoutGenesis(t *testing.T) {
	setupViper(t)
	cfg, err := LoadConfig()
	require.NoError(t, err)
	err = Run(context.Background(), cfg, log.NewNopLogger())
	assert.True(t, errors.ErrInvalidInput.Is(err), "got %+v", err)
}

func TestKeysCmd(t *testing.T) {
	home := setupViper(t)

	show := func(args ...string) string {
		var out bytes.Buffer
		cmd := KeysCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		require.NoError(t, cmd.Execute())
		return out.String()
	}

	first := show("alice")
	assert.FileExists(t, KeyPath(home, "alice"))
	lines := strings.Split(strings.TrimSpace(first), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], AddressPrefix+"1"))

	addr, err := mig.ParseAddress(lines[0])
	require.NoError(t, err)
	fromBech, err := mig.ParseAddress("bech32:" + lines[1])
	require.NoError(t, err)
	assert.Equal(t, addr, fromBech)

	// the stored key is reused
	assert.Equal(t, first, show("alice"))
	assert.NotEqual(t, first, show("bob"))
}
