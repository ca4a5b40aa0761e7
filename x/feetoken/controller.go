package feetoken

import (
	"github.com/iov-one/mig"
	"github.com/iov-one/mig/coin"
	"github.com/iov-one/mig/errors"
	"github.com/iov-one/mig/metrics"
	"github.com/iov-one/mig/orm"
)

// Controller holds all token ledgers. Other extensions move tokens only
// through Transfer and TransferFrom, so the fee applies to them as well.
type Controller struct {
	tokens     orm.ModelBucket
	balances   orm.ModelBucket
	allowances orm.ModelBucket
	overrides  orm.ModelBucket
}

// NewController returns a controller operating on the default buckets.
func NewController() *Controller {
	return &Controller{
		tokens:     orm.NewModelBucket("tokens", &Token{}),
		balances:   orm.NewModelBucket("balances", &Balance{}),
		allowances: orm.NewModelBucket("allowances", &Allowance{}),
		overrides:  orm.NewModelBucket("feerates", &FeeOverride{}),
	}
}

// Receipt describes the outcome of a settled transfer.
type Receipt struct {
	// Gross is the amount taken from the source.
	Gross coin.Amount
	// Net is the amount credited to the destination.
	Net coin.Amount
	// Fee is the burned amount.
	Fee coin.Amount
	// Rate is the fee rate in basis points that was applied.
	Rate uint32
}

// Create stores a new token and mints the whole supply to the
// administrator. CreatedAt is set to the current block time unless given.
func (c *Controller) Create(ctx mig.Context, db mig.KVStore, t *Token, supply coin.Amount) error {
	if err := c.tokens.Has(db, tokenKey(t.Ticker)); err == nil {
		return errors.Wrapf(errors.ErrDuplicate, "token %s", t.Ticker)
	} else if !errors.ErrNotFound.Is(err) {
		return err
	}
	if t.CreatedAt.IsZero() {
		now, err := mig.BlockUnixTime(ctx)
		if err != nil {
			return err
		}
		t.CreatedAt = now
	}
	if t.MonthSeconds == 0 {
		t.MonthSeconds = int64(DefaultMonth.Seconds())
	}
	t.TotalSupply = supply
	t.Burned = coin.Zero()
	if _, err := c.tokens.Put(db, tokenKey(t.Ticker), t); err != nil {
		return err
	}
	if _, err := c.balances.Put(db, balanceKey(t.Ticker, t.Admin), &Balance{Amount: supply}); err != nil {
		return err
	}
	mig.GetLogger(ctx).Info("token created",
		"ticker", t.Ticker, "admin", t.Admin, "supply", supply)
	return nil
}

// Token returns the state of a token or ErrNotFound.
func (c *Controller) Token(db mig.ReadOnlyKVStore, ticker string) (*Token, error) {
	var t Token
	if err := c.tokens.One(db, tokenKey(ticker), &t); err != nil {
		return nil, errors.Wrapf(err, "token %s", ticker)
	}
	return &t, nil
}

// BalanceOf returns the balance of an address. Unknown addresses hold zero.
func (c *Controller) BalanceOf(db mig.ReadOnlyKVStore, ticker string, owner mig.Address) (coin.Amount, error) {
	var b Balance
	switch err := c.balances.One(db, balanceKey(ticker, owner), &b); {
	case err == nil:
		return b.Amount, nil
	case errors.ErrNotFound.Is(err):
		return coin.Zero(), nil
	default:
		return coin.Amount{}, err
	}
}

// Allowance returns how much spender may still move on behalf of owner.
func (c *Controller) Allowance(db mig.ReadOnlyKVStore, ticker string, owner, spender mig.Address) (coin.Amount, error) {
	var a Allowance
	switch err := c.allowances.One(db, allowanceKey(ticker, owner, spender), &a); {
	case err == nil:
		return a.Amount, nil
	case errors.ErrNotFound.Is(err):
		return coin.Zero(), nil
	default:
		return coin.Amount{}, err
	}
}

// Approve overwrites the allowance of spender.
func (c *Controller) Approve(ctx mig.Context, db mig.KVStore, ticker string, owner, spender mig.Address, amount coin.Amount) error {
	if _, err := c.Token(db, ticker); err != nil {
		return err
	}
	if _, err := c.allowances.Put(db, allowanceKey(ticker, owner, spender), &Allowance{Amount: amount}); err != nil {
		return err
	}
	mig.GetLogger(ctx).Info("approve",
		"ticker", ticker, "owner", owner, "spender", spender, "amount", amount)
	return nil
}

// MonthIndex returns the fee month of the current block time.
func (c *Controller) MonthIndex(ctx mig.Context, db mig.ReadOnlyKVStore, ticker string) (uint64, error) {
	t, err := c.Token(db, ticker)
	if err != nil {
		return 0, err
	}
	now, err := mig.BlockUnixTime(ctx)
	if err != nil {
		return 0, err
	}
	return t.MonthIndex(now), nil
}

// CurrentBasisPoints returns the fee rate applied to a transfer made now.
func (c *Controller) CurrentBasisPoints(ctx mig.Context, db mig.ReadOnlyKVStore, ticker string) (uint32, error) {
	t, err := c.Token(db, ticker)
	if err != nil {
		return 0, err
	}
	return c.rate(ctx, db, t)
}

func (c *Controller) rate(ctx mig.Context, db mig.ReadOnlyKVStore, t *Token) (uint32, error) {
	now, err := mig.BlockUnixTime(ctx)
	if err != nil {
		return 0, err
	}
	month := t.MonthIndex(now)
	var o FeeOverride
	switch err := c.overrides.One(db, overrideKey(t.Ticker, month), &o); {
	case err == nil:
		return o.Rate, nil
	case errors.ErrNotFound.Is(err):
		return t.DefaultRate(month), nil
	default:
		return 0, err
	}
}

// SetFeeRate installs a fee rate override for the current month. The
// month must be the one implied by the current block time.
func (c *Controller) SetFeeRate(ctx mig.Context, db mig.KVStore, ticker string, rate uint32, month uint64) error {
	t, err := c.Token(db, ticker)
	if err != nil {
		return err
	}
	if rate > MaxRate {
		return errors.Wrapf(errors.ErrInvalidInput, "rate %d above %d", rate, MaxRate)
	}
	now, err := mig.BlockUnixTime(ctx)
	if err != nil {
		return err
	}
	if current := t.MonthIndex(now); current != month {
		return errors.Wrapf(ErrInvalidMonth, "current month is %d, got %d", current, month)
	}
	if _, err := c.overrides.Put(db, overrideKey(ticker, month), &FeeOverride{Month: month, Rate: rate}); err != nil {
		return err
	}
	mig.GetLogger(ctx).Info("fee rate set", "ticker", ticker, "month", month, "rate", rate)
	return nil
}

// SetPaused toggles the transfer gate.
func (c *Controller) SetPaused(ctx mig.Context, db mig.KVStore, ticker string, paused bool) error {
	t, err := c.Token(db, ticker)
	if err != nil {
		return err
	}
	t.Paused = paused
	if _, err := c.tokens.Put(db, tokenKey(ticker), t); err != nil {
		return err
	}
	mig.GetLogger(ctx).Info("pause state changed", "ticker", ticker, "paused", paused)
	return nil
}

// TransferAdministrator hands the administrator capability to a new
// address.
func (c *Controller) TransferAdministrator(ctx mig.Context, db mig.KVStore, ticker string, admin mig.Address) error {
	t, err := c.Token(db, ticker)
	if err != nil {
		return err
	}
	prev := t.Admin
	t.Admin = admin
	if _, err := c.tokens.Put(db, tokenKey(ticker), t); err != nil {
		return err
	}
	mig.GetLogger(ctx).Info("administrator transferred", "ticker", ticker, "from", prev, "to", admin)
	return nil
}

// Transfer moves amount from src to dest and burns the fee.
func (c *Controller) Transfer(ctx mig.Context, db mig.KVStore, ticker string, src, dest mig.Address, amount coin.Amount) (*Receipt, error) {
	t, err := c.Token(db, ticker)
	if err != nil {
		return nil, err
	}
	if t.Paused {
		return nil, errors.Wrapf(ErrPaused, "token %s", ticker)
	}
	return c.settle(ctx, db, t, src, dest, amount)
}

// TransferFrom moves amount from owner to dest on behalf of spender. The
// allowance is reduced by the whole amount, fee included.
func (c *Controller) TransferFrom(ctx mig.Context, db mig.KVStore, ticker string, spender, owner, dest mig.Address, amount coin.Amount) (*Receipt, error) {
	t, err := c.Token(db, ticker)
	if err != nil {
		return nil, err
	}
	if t.Paused {
		return nil, errors.Wrapf(ErrPaused, "token %s", ticker)
	}
	allowance, err := c.Allowance(db, ticker, owner, spender)
	if err != nil {
		return nil, err
	}
	left, err := allowance.Sub(amount)
	if err != nil {
		return nil, errors.Wrapf(ErrInsufficientAllowance, "allowance %s, requested %s", allowance, amount)
	}
	receipt, err := c.settle(ctx, db, t, owner, dest, amount)
	if err != nil {
		return nil, err
	}
	if _, err := c.allowances.Put(db, allowanceKey(ticker, owner, spender), &Allowance{Amount: left}); err != nil {
		return nil, err
	}
	return receipt, nil
}

// settle is the single place where the fee is applied and the funds are
// moved. The caller has checked the pause gate and the allowance.
func (c *Controller) settle(ctx mig.Context, db mig.KVStore, t *Token, src, dest mig.Address, amount coin.Amount) (*Receipt, error) {
	if amount.IsZero() {
		return nil, errors.Wrap(errors.ErrInvalidAmount, "cannot transfer zero")
	}
	balance, err := c.BalanceOf(db, t.Ticker, src)
	if err != nil {
		return nil, err
	}
	remaining, err := balance.Sub(amount)
	if err != nil {
		return nil, errors.Wrapf(ErrInsufficientBalance, "balance %s, requested %s", balance, amount)
	}
	rate, err := c.rate(ctx, db, t)
	if err != nil {
		return nil, err
	}
	fee := amount.MulDiv(uint64(rate), MaxRate)
	net, err := amount.Sub(fee)
	if err != nil {
		return nil, err
	}

	if _, err := c.balances.Put(db, balanceKey(t.Ticker, src), &Balance{Amount: remaining}); err != nil {
		return nil, err
	}
	// Read the destination after the source was written, so that a
	// transfer to self is settled correctly.
	received, err := c.BalanceOf(db, t.Ticker, dest)
	if err != nil {
		return nil, err
	}
	if _, err := c.balances.Put(db, balanceKey(t.Ticker, dest), &Balance{Amount: received.Add(net)}); err != nil {
		return nil, err
	}

	if !fee.IsZero() {
		supply, err := t.TotalSupply.Sub(fee)
		if err != nil {
			return nil, errors.Wrap(errors.ErrInvalidState, "fee exceeds supply")
		}
		t.TotalSupply = supply
		t.Burned = t.Burned.Add(fee)
		if _, err := c.tokens.Put(db, tokenKey(t.Ticker), t); err != nil {
			return nil, err
		}
		metrics.RecordBurn(t.Ticker, fee)
	}

	mig.GetLogger(ctx).Info("transfer",
		"ticker", t.Ticker, "from", src, "to", dest,
		"amount", amount, "net", net, "fee", fee, "rate", rate)
	return &Receipt{Gross: amount, Net: net, Fee: fee, Rate: rate}, nil
}
