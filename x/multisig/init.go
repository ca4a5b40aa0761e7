package multisig

import (
	"github.com/iov-one/mig"
	"github.com/iov-one/mig/errors"
)

const optKey = "governors"

// GenesisGovernor is used to parse the json from genesis file.
type GenesisGovernor struct {
	Owners      []mig.Address `json:"owners"`
	Required    uint32        `json:"required"`
	ValueTicker string        `json:"value_ticker"`
}

// Initializer fulfils the Initializer interface to load data from the genesis
// file
type Initializer struct{}

var _ mig.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial governors from genesis and save them in
// the database. Governors get sequential ids in the declared order,
// starting with 1.
func (*Initializer) FromGenesis(ctx mig.Context, opts mig.Options, db mig.KVStore) error {
	var governors []GenesisGovernor
	if err := opts.ReadOptions(optKey, &governors); err != nil {
		return err
	}
	ctrl := NewController(nil, nil)
	for i, g := range governors {
		_, err := ctrl.Create(ctx, db, &Governor{
			Owners:      g.Owners,
			Required:    g.Required,
			ValueTicker: g.ValueTicker,
		})
		if err != nil {
			return errors.Wrapf(err, "governor #%d", i)
		}
	}
	return nil
}
