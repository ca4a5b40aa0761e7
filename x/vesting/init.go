package vesting

import (
	"github.com/iov-one/mig"
	"github.com/iov-one/mig/errors"
)

const optKey = "vesting"

// GenesisDistributor is used to parse the json from genesis file.
// Schedules are funded with allowances after the start, so only the
// distributors are declared.
type GenesisDistributor struct {
	Ticker string       `json:"ticker"`
	Start  mig.UnixTime `json:"start"`
	Cliff  mig.UnixTime `json:"cliff"`
	End    mig.UnixTime `json:"end"`
}

// Initializer fulfils the mig.Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ mig.Initializer = Initializer{}

// FromGenesis creates the declared distributors in order, starting with
// id 1.
func (Initializer) FromGenesis(ctx mig.Context, opts mig.Options, db mig.KVStore) error {
	var distributors []GenesisDistributor
	if err := opts.ReadOptions(optKey, &distributors); err != nil {
		return err
	}
	ctrl := NewController(nil)
	for i, d := range distributors {
		_, err := ctrl.Create(ctx, db, &Distributor{
			Ticker: d.Ticker,
			Start:  d.Start,
			Cliff:  d.Cliff,
			End:    d.End,
		})
		if err != nil {
			return errors.Wrapf(err, "distributor #%d", i)
		}
	}
	return nil
}
