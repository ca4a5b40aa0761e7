package app

import (
	"encoding/json"
	"os"

	"github.com/iov-one/mig"
	"github.com/iov-one/mig/errors"
)

// Genesis file format
type Genesis struct {
	ChainID  string      `json:"chain_id"`
	AppState mig.Options `json:"app_state"`
}

// LoadGenesis tries to load a given file into a Genesis struct
func LoadGenesis(filePath string) (*Genesis, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "read genesis: %s", err)
	}
	var gen Genesis
	if err := json.Unmarshal(raw, &gen); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "parse genesis: %s", err)
	}
	if !mig.IsValidChainID(gen.ChainID) {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "chain id: %q", gen.ChainID)
	}
	return &gen, nil
}

// ChainInitializers lets you initialize many extensions with one function
func ChainInitializers(inits ...mig.Initializer) mig.Initializer {
	return chainInitializer{inits}
}

type chainInitializer struct {
	inits []mig.Initializer
}

// FromGenesis will pass opts to all Initializers in the list,
// aborting at the first error.
func (c chainInitializer) FromGenesis(ctx mig.Context, opts mig.Options, kv mig.KVStore) error {
	for _, i := range c.inits {
		if err := i.FromGenesis(ctx, opts, kv); err != nil {
			return err
		}
	}
	return nil
}
