package feetoken

import (
	"encoding/binary"
	"time"

	"github.com/iov-one/mig"
	"github.com/iov-one/mig/coin"
	"github.com/iov-one/mig/errors"
)

const (
	// MaxRate is the highest fee rate in basis points (100%).
	MaxRate = 10000

	// DefaultBaseRate is the fee rate of the first month (1%).
	DefaultBaseRate = 100

	// DefaultDecayedRate is the fee rate of every later month (0.5%).
	DefaultDecayedRate = 50

	// DefaultMonth is the length of a fee month.
	DefaultMonth = 30 * 24 * time.Hour

	// DefaultDecimals is the precision of a token unless specified.
	DefaultDecimals = 18
)

// Token is the ledger state of a single token.
type Token struct {
	Ticker   string
	Name     string
	Decimals uint32
	Admin    mig.Address
	// TotalSupply is the circulating supply, it decreases with every
	// burned fee.
	TotalSupply coin.Amount
	Burned      coin.Amount
	Paused      bool
	CreatedAt   mig.UnixTime
	// BaseRate is the fee rate in basis points of the first month.
	BaseRate uint32
	// DecayedRate is the fee rate in basis points of every later month.
	DecayedRate  uint32
	MonthSeconds int64
}

// Validate ensures the token is consistent.
func (t *Token) Validate() error {
	if !coin.IsTicker(t.Ticker) {
		return errors.Wrapf(errors.ErrInvalidModel, "invalid ticker %q", t.Ticker)
	}
	if t.Name == "" {
		return errors.Wrap(errors.ErrInvalidModel, "name is required")
	}
	if t.Decimals > 36 {
		return errors.Wrap(errors.ErrInvalidModel, "too many decimals")
	}
	if err := t.Admin.Validate(); err != nil {
		return errors.Wrap(err, "admin")
	}
	if t.BaseRate > MaxRate || t.DecayedRate > MaxRate {
		return errors.Wrap(errors.ErrInvalidModel, "fee rate above 100%")
	}
	if t.MonthSeconds <= 0 {
		return errors.Wrap(errors.ErrInvalidModel, "month length must be positive")
	}
	if err := t.CreatedAt.Validate(); err != nil {
		return errors.Wrap(err, "created at")
	}
	return nil
}

// InitialSupply returns the amount minted on creation.
func (t *Token) InitialSupply() coin.Amount {
	return t.TotalSupply.Add(t.Burned)
}

// MonthIndex returns the 1 based fee month that given time falls into.
func (t *Token) MonthIndex(now mig.UnixTime) uint64 {
	if now <= t.CreatedAt {
		return 1
	}
	return 1 + uint64(int64(now-t.CreatedAt)/t.MonthSeconds)
}

// DefaultRate returns the fee rate of a month when no override is
// installed.
func (t *Token) DefaultRate(month uint64) uint32 {
	if month <= 1 {
		return t.BaseRate
	}
	return t.DecayedRate
}

// Balance is the amount of a token held by an address.
type Balance struct {
	Amount coin.Amount
}

// Validate always succeeds, any amount is a valid balance.
func (b *Balance) Validate() error {
	return nil
}

// Allowance is the amount a spender may transfer on behalf of an owner.
type Allowance struct {
	Amount coin.Amount
}

// Validate always succeeds.
func (a *Allowance) Validate() error {
	return nil
}

// FeeOverride replaces the fee rate of a single month.
type FeeOverride struct {
	Month uint64
	Rate  uint32
}

// Validate ensures the override is in range.
func (f *FeeOverride) Validate() error {
	if f.Month == 0 {
		return errors.Wrap(errors.ErrInvalidModel, "month index starts at 1")
	}
	if f.Rate > MaxRate {
		return errors.Wrap(errors.ErrInvalidModel, "fee rate above 100%")
	}
	return nil
}

// TokenCondition returns the condition that represents the token ledger.
// Messages addressed to a token report its address as their contract.
func TokenCondition(ticker string) mig.Condition {
	return mig.NewCondition("feetoken", "token", []byte(ticker))
}

// TokenAddress returns the address of the token ledger.
func TokenAddress(ticker string) mig.Address {
	return TokenCondition(ticker).Address()
}

func tokenKey(ticker string) []byte {
	return []byte(ticker)
}

func balanceKey(ticker string, owner mig.Address) []byte {
	key := make([]byte, 0, len(ticker)+1+len(owner))
	key = append(key, ticker...)
	key = append(key, ':')
	return append(key, owner...)
}

func allowanceKey(ticker string, owner, spender mig.Address) []byte {
	return append(balanceKey(ticker, owner), spender...)
}

func overrideKey(ticker string, month uint64) []byte {
	key := make([]byte, len(ticker)+1+8)
	copy(key, ticker)
	key[len(ticker)] = ':'
	binary.BigEndian.PutUint64(key[len(ticker)+1:], month)
	return key
}
