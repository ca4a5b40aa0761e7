package staking

import (
	"github.com/iov-one/mig"
	"github.com/iov-one/mig/codec"
	"github.com/iov-one/mig/coin"
	"github.com/iov-one/mig/errors"
	"github.com/iov-one/mig/orm"
)

func init() {
	codec.RegisterMsg(&CreatePoolMsg{}, pathCreatePoolMsg)
	codec.RegisterMsg(&StakeMsg{}, pathStakeMsg)
	codec.RegisterMsg(&ClaimMsg{}, pathClaimMsg)
}

const (
	pathCreatePoolMsg = "staking/create"
	pathStakeMsg      = "staking/stake"
	pathClaimMsg      = "staking/claim"
)

// CreatePoolMsg creates a staking pool. A zero rate uses the default.
type CreatePoolMsg struct {
	StakeTicker  string `json:"stake_ticker"`
	RewardTicker string `json:"reward_ticker"`
	RewardRate   uint32 `json:"reward_rate"`
}

// Path fulfills mig.Msg interface to allow routing
func (CreatePoolMsg) Path() string {
	return pathCreatePoolMsg
}

func (m *CreatePoolMsg) Validate() error {
	if !coin.IsTicker(m.StakeTicker) {
		return errors.Wrapf(errors.ErrInvalidMsg, "invalid stake ticker %q", m.StakeTicker)
	}
	if !coin.IsTicker(m.RewardTicker) {
		return errors.Wrapf(errors.ErrInvalidMsg, "invalid reward ticker %q", m.RewardTicker)
	}
	if m.RewardRate > MaxRewardRate {
		return errors.Wrapf(errors.ErrInvalidMsg, "reward rate above %d", MaxRewardRate)
	}
	return nil
}

// StakeMsg deposits tokens of the signing staker.
type StakeMsg struct {
	PoolID []byte      `json:"pool_id"`
	Staker mig.Address `json:"staker"`
	Amount coin.Amount `json:"amount"`
}

// Path fulfills mig.Msg interface to allow routing
func (StakeMsg) Path() string {
	return pathStakeMsg
}

func (m *StakeMsg) Validate() error {
	if err := orm.ValidateSequence(m.PoolID); err != nil {
		return errors.Wrap(err, "pool id")
	}
	if err := m.Staker.Validate(); err != nil {
		return errors.Wrap(err, "staker")
	}
	if m.Amount.IsZero() {
		return errors.Wrap(errors.ErrInvalidAmount, "amount must be positive")
	}
	return nil
}

// Contract returns the pool address.
func (m *StakeMsg) Contract() mig.Address {
	return PoolAddress(m.PoolID)
}

// ClaimMsg closes a deposit of the signing staker.
type ClaimMsg struct {
	PoolID    []byte      `json:"pool_id"`
	DepositID uint64      `json:"deposit_id"`
	Staker    mig.Address `json:"staker"`
}

// Path fulfills mig.Msg interface to allow routing
func (ClaimMsg) Path() string {
	return pathClaimMsg
}

func (m *ClaimMsg) Validate() error {
	if err := orm.ValidateSequence(m.PoolID); err != nil {
		return errors.Wrap(err, "pool id")
	}
	return errors.Wrap(m.Staker.Validate(), "staker")
}

// Contract returns the pool address.
func (m *ClaimMsg) Contract() mig.Address {
	return PoolAddress(m.PoolID)
}
