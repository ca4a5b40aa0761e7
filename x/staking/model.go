package staking

import (
	"encoding/binary"

	"github.com/iov-one/mig"
	"github.com/iov-one/mig/coin"
	"github.com/iov-one/mig/errors"
)

const (
	// DefaultRewardRate is the yearly reward in basis points (10%).
	DefaultRewardRate = 1000

	// MaxRewardRate caps the yearly reward at 100 times the principal.
	MaxRewardRate = 1000000

	secondsPerYear = 365 * 24 * 60 * 60
	basisPoints    = 10000
)

// Pool is a staking pool.
type Pool struct {
	StakeTicker  string
	RewardTicker string
	// RewardRate is the yearly reward in basis points of the principal.
	RewardRate   uint32
	DepositCount uint64
	// TotalStaked is the principal of all unclaimed deposits.
	TotalStaked coin.Amount
}

// Validate ensures the pool configuration is sane.
func (p *Pool) Validate() error {
	if !coin.IsTicker(p.StakeTicker) {
		return errors.Wrapf(errors.ErrInvalidModel, "invalid stake ticker %q", p.StakeTicker)
	}
	if !coin.IsTicker(p.RewardTicker) {
		return errors.Wrapf(errors.ErrInvalidModel, "invalid reward ticker %q", p.RewardTicker)
	}
	if p.RewardRate > MaxRewardRate {
		return errors.Wrapf(errors.ErrInvalidModel, "reward rate above %d", MaxRewardRate)
	}
	return nil
}

// Deposit is a single stake.
type Deposit struct {
	ID        uint64
	Staker    mig.Address
	Principal coin.Amount
	StakedAt  mig.UnixTime
	Claimed   bool
}

// Validate ensures the deposit is well formed.
func (d *Deposit) Validate() error {
	if err := d.Staker.Validate(); err != nil {
		return errors.Wrap(err, "staker")
	}
	if d.Principal.IsZero() {
		return errors.Wrap(errors.ErrInvalidModel, "empty principal")
	}
	return errors.Wrap(d.StakedAt.Validate(), "staked at")
}

// Accrued returns the reward earned until given time at given yearly rate,
// not capped by the pool.
func (d *Deposit) Accrued(rate uint32, now mig.UnixTime) coin.Amount {
	if now <= d.StakedAt {
		return coin.Zero()
	}
	elapsed := uint64(now - d.StakedAt)
	return d.Principal.MulDiv(uint64(rate)*elapsed, basisPoints*secondsPerYear)
}

// PoolCondition returns the condition of a pool. Stakes and rewards are
// held under its address.
func PoolCondition(id []byte) mig.Condition {
	return mig.NewCondition("staking", "seq", id)
}

// PoolAddress returns the address holding the pool funds.
func PoolAddress(id []byte) mig.Address {
	return PoolCondition(id).Address()
}

func depositKey(poolID []byte, depositID uint64) []byte {
	key := make([]byte, len(poolID)+8)
	copy(key, poolID)
	binary.BigEndian.PutUint64(key[len(poolID):], depositID)
	return key
}
