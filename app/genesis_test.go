package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/mig"
	"github.com/iov-one/mig/errors"
	"github.com/iov-one/mig/migtest"
)

const dummyKey = "dummy"

type dummyInit struct{}

func (dummyInit) FromGenesis(ctx mig.Context, opts mig.Options, kv mig.KVStore) error {
	var value string
	if err := opts.ReadOptions(dummyKey, &value); err != nil {
		return err
	}
	return kv.Set([]byte(dummyKey), []byte(value))
}

type countInit struct {
	called int
}

func (c *countInit) FromGenesis(mig.Context, mig.Options, mig.KVStore) error {
	c.called++
	return nil
}

func writeGenesis(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "genesis.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadGenesis(t *testing.T) {
	cases := map[string]struct {
		content     string
		wantErr     *errors.Error
		wantChainID string
		wantValue   []byte
	}{
		"proper genesis": {
			content:     `{"chain_id": "test-chain-67", "app_state": {"dummy": "secret"}}`,
			wantChainID: "test-chain-67",
			wantValue:   []byte("secret"),
		},
		"not json": {
			content: `chain_id: test-chain-67`,
			wantErr: errors.ErrInvalidInput,
		},
		"invalid chain id": {
			content: `{"chain_id": "a:b", "app_state": {}}`,
			wantErr: errors.ErrInvalidInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			gen, err := LoadGenesis(writeGenesis(t, tc.content))
			if tc.wantErr != nil {
				require.True(t, tc.wantErr.Is(err), "got %+v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantChainID, gen.ChainID)

			c := new(countInit)
			init := ChainInitializers(dummyInit{}, c)
			db := migtest.MemStore()
			require.NoError(t, init.FromGenesis(context.Background(), gen.AppState, db))
			assert.Equal(t, 1, c.called)
			val, err := db.Get([]byte(dummyKey))
			require.NoError(t, err)
			assert.Equal(t, tc.wantValue, val)
		})
	}
}

func TestLoadGenesisMissingFile(t *testing.T) {
	_, err := LoadGenesis(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.ErrInvalidInput.Is(err))
}

func TestChainInitializersStopAtFirstError(t *testing.T) {
	c := new(countInit)
	init := ChainInitializers(dummyInit{}, c)
	opts := mig.Options{dummyKey: []byte(`42`)}
	err := init.FromGenesis(context.Background(), opts, migtest.MemStore())
	assert.True(t, errors.ErrInvalidInput.Is(err))
	assert.Equal(t, 0, c.called)
}

func TestChainID(t *testing.T) {
	db := migtest.MemStore()
	id, err := loadChainID(db)
	require.NoError(t, err)
	assert.Equal(t, "", id)

	assert.True(t, errors.ErrInvalidInput.Is(saveChainID(db, "x")))
	require.NoError(t, saveChainID(db, "mig-test-1"))
	assert.True(t, errors.ErrUnauthorized.Is(saveChainID(db, "mig-test-2")))

	id, err = loadChainID(db)
	require.NoError(t, err)
	assert.Equal(t, "mig-test-1", id)
}
