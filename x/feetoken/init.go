package feetoken

import (
	"github.com/iov-one/mig"
	"github.com/iov-one/mig/coin"
	"github.com/iov-one/mig/errors"
)

const (
	optTokens   = "tokens"
	optBalances = "balances"
)

// GenesisToken is used to parse the json from genesis file.
// Fees can be omitted to use the default fee curve, an explicit zero fee
// configuration creates a plain token.
type GenesisToken struct {
	Ticker    string       `json:"ticker"`
	Name      string       `json:"name"`
	Decimals  *uint32      `json:"decimals"`
	Admin     mig.Address  `json:"admin"`
	Supply    coin.Amount  `json:"supply"`
	Fees      *GenesisFees `json:"fees"`
	CreatedAt mig.UnixTime `json:"created_at"`
}

// GenesisFees configures the fee curve of a token.
type GenesisFees struct {
	BaseRate     uint32 `json:"base_rate"`
	DecayedRate  uint32 `json:"decayed_rate"`
	MonthSeconds int64  `json:"month_seconds"`
}

// GenesisBalance moves tokens from the administrator to an account
// without a fee.
type GenesisBalance struct {
	Ticker  string      `json:"ticker"`
	Address mig.Address `json:"address"`
	Amount  coin.Amount `json:"amount"`
}

// Initializer fulfils the mig.Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ mig.Initializer = Initializer{}

// FromGenesis will parse initial tokens and balances from genesis and
// save them to the database.
func (Initializer) FromGenesis(ctx mig.Context, opts mig.Options, db mig.KVStore) error {
	var tokens []GenesisToken
	if err := opts.ReadOptions(optTokens, &tokens); err != nil {
		return err
	}
	var balances []GenesisBalance
	if err := opts.ReadOptions(optBalances, &balances); err != nil {
		return err
	}

	ctrl := NewController()
	for i, gt := range tokens {
		t := Token{
			Ticker:      gt.Ticker,
			Name:        gt.Name,
			Decimals:    DefaultDecimals,
			Admin:       gt.Admin,
			BaseRate:    DefaultBaseRate,
			DecayedRate: DefaultDecayedRate,
			CreatedAt:   gt.CreatedAt,
		}
		if gt.Decimals != nil {
			t.Decimals = *gt.Decimals
		}
		if gt.Fees != nil {
			t.BaseRate = gt.Fees.BaseRate
			t.DecayedRate = gt.Fees.DecayedRate
			t.MonthSeconds = gt.Fees.MonthSeconds
		}
		supply := gt.Supply
		if supply.IsZero() {
			supply = coin.Tokens(1000000, t.Decimals)
		}
		if err := ctrl.Create(ctx, db, &t, supply); err != nil {
			return errors.Wrapf(err, "token #%d", i)
		}
	}

	for i, gb := range balances {
		if err := ctrl.distribute(db, gb.Ticker, gb.Address, gb.Amount); err != nil {
			return errors.Wrapf(err, "balance #%d", i)
		}
	}
	return nil
}

// distribute moves tokens from the administrator without a fee. It is
// only used at genesis.
func (c *Controller) distribute(db mig.KVStore, ticker string, to mig.Address, amount coin.Amount) error {
	if err := to.Validate(); err != nil {
		return err
	}
	t, err := c.Token(db, ticker)
	if err != nil {
		return err
	}
	have, err := c.BalanceOf(db, ticker, t.Admin)
	if err != nil {
		return err
	}
	left, err := have.Sub(amount)
	if err != nil {
		return errors.Wrapf(ErrInsufficientBalance, "administrator holds %s", have)
	}
	if _, err := c.balances.Put(db, balanceKey(ticker, t.Admin), &Balance{Amount: left}); err != nil {
		return err
	}
	received, err := c.BalanceOf(db, ticker, to)
	if err != nil {
		return err
	}
	_, err = c.balances.Put(db, balanceKey(ticker, to), &Balance{Amount: received.Add(amount)})
	return err
}
