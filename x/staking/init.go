package staking

import (
	"github.com/iov-one/mig"
	"github.com/iov-one/mig/errors"
)

const optKey = "staking"

// GenesisPool is used to parse the json from genesis file. Pools are
// funded with plain transfers, listed in the token balances.
type GenesisPool struct {
	StakeTicker  string `json:"stake_ticker"`
	RewardTicker string `json:"reward_ticker"`
	RewardRate   uint32 `json:"reward_rate"`
}

// Initializer fulfils the mig.Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ mig.Initializer = Initializer{}

// FromGenesis creates the declared pools in order, starting with id 1.
func (Initializer) FromGenesis(ctx mig.Context, opts mig.Options, db mig.KVStore) error {
	var pools []GenesisPool
	if err := opts.ReadOptions(optKey, &pools); err != nil {
		return err
	}
	ctrl := NewController(nil)
	for i, p := range pools {
		_, err := ctrl.Create(ctx, db, &Pool{
			StakeTicker:  p.StakeTicker,
			RewardTicker: p.RewardTicker,
			RewardRate:   p.RewardRate,
		})
		if err != nil {
			return errors.Wrapf(err, "pool #%d", i)
		}
	}
	return nil
}
