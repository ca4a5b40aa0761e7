package staking

import (
	"github.com/iov-one/mig"
	"github.com/iov-one/mig/coin"
	"github.com/iov-one/mig/errors"
	"github.com/iov-one/mig/orm"
	"github.com/iov-one/mig/x/feetoken"
)

// TokenLedger is the part of the token ledger used by staking pools.
type TokenLedger interface {
	BalanceOf(db mig.ReadOnlyKVStore, ticker string, owner mig.Address) (coin.Amount, error)
	Transfer(ctx mig.Context, db mig.KVStore, ticker string, src, dest mig.Address, amount coin.Amount) (*feetoken.Receipt, error)
	TransferFrom(ctx mig.Context, db mig.KVStore, ticker string, spender, owner, dest mig.Address, amount coin.Amount) (*feetoken.Receipt, error)
}

// Payout is what a claim moved out of the pool. Both amounts are gross,
// the staker receives them minus the transfer fees.
type Payout struct {
	Principal coin.Amount
	Reward    coin.Amount
}

// Controller keeps pools and their deposits.
type Controller struct {
	pools    orm.ModelBucket
	deposits orm.ModelBucket
	tokens   TokenLedger
}

// NewController returns a controller moving funds with given token ledger.
func NewController(tokens TokenLedger) *Controller {
	return &Controller{
		pools:    orm.NewModelBucket("pools", &Pool{}),
		deposits: orm.NewModelBucket("deposits", &Deposit{}),
		tokens:   tokens,
	}
}

// Create stores a new pool and returns its id. A zero rate is replaced
// with DefaultRewardRate.
func (c *Controller) Create(ctx mig.Context, db mig.KVStore, p *Pool) ([]byte, error) {
	if p.RewardRate == 0 {
		p.RewardRate = DefaultRewardRate
	}
	p.DepositCount = 0
	p.TotalStaked = coin.Zero()
	id, err := c.pools.Put(db, nil, p)
	if err != nil {
		return nil, err
	}
	mig.GetLogger(ctx).Info("staking pool created",
		"id", orm.DecodeSequence(id), "address", PoolAddress(id),
		"stake", p.StakeTicker, "reward", p.RewardTicker, "rate", p.RewardRate)
	return id, nil
}

// Pool returns a pool or ErrNotFound.
func (c *Controller) Pool(db mig.ReadOnlyKVStore, id []byte) (*Pool, error) {
	var p Pool
	if err := c.pools.One(db, id, &p); err != nil {
		return nil, errors.Wrapf(err, "pool %X", id)
	}
	return &p, nil
}

// Deposit returns a deposit or ErrUnknownDeposit.
func (c *Controller) Deposit(db mig.ReadOnlyKVStore, poolID []byte, depositID uint64) (*Deposit, error) {
	var d Deposit
	switch err := c.deposits.One(db, depositKey(poolID, depositID), &d); {
	case err == nil:
		return &d, nil
	case errors.ErrNotFound.Is(err):
		return nil, errors.Wrapf(ErrUnknownDeposit, "deposit %d", depositID)
	default:
		return nil, err
	}
}

// DepositCount returns the number of deposits ever made, claimed or not.
func (c *Controller) DepositCount(db mig.ReadOnlyKVStore, poolID []byte) (uint64, error) {
	p, err := c.Pool(db, poolID)
	if err != nil {
		return 0, err
	}
	return p.DepositCount, nil
}

// TotalStakedAmount returns the principal of all unclaimed deposits.
func (c *Controller) TotalStakedAmount(db mig.ReadOnlyKVStore, poolID []byte) (coin.Amount, error) {
	p, err := c.Pool(db, poolID)
	if err != nil {
		return coin.Zero(), err
	}
	return p.TotalStaked, nil
}

// RewardPoolBalance returns the reward tokens available for payouts.
func (c *Controller) RewardPoolBalance(db mig.ReadOnlyKVStore, poolID []byte) (coin.Amount, error) {
	p, err := c.Pool(db, poolID)
	if err != nil {
		return coin.Zero(), err
	}
	return c.rewardBalance(db, poolID, p)
}

// rewardBalance excludes the staked principal when both tokens are the
// same.
func (c *Controller) rewardBalance(db mig.ReadOnlyKVStore, poolID []byte, p *Pool) (coin.Amount, error) {
	bal, err := c.tokens.BalanceOf(db, p.RewardTicker, PoolAddress(poolID))
	if err != nil {
		return coin.Zero(), err
	}
	if p.RewardTicker != p.StakeTicker {
		return bal, nil
	}
	rest, err := bal.Sub(p.TotalStaked)
	if err != nil {
		return coin.Zero(), nil
	}
	return rest, nil
}

// Stake pulls amount from the staker and records a deposit of what was
// received. The staker must have approved the pool address to spend the
// amount. A pool without rewards does not accept deposits.
func (c *Controller) Stake(ctx mig.Context, db mig.KVStore, poolID []byte, staker mig.Address, amount coin.Amount) (*Deposit, error) {
	now, err := mig.BlockUnixTime(ctx)
	if err != nil {
		return nil, err
	}
	p, err := c.Pool(db, poolID)
	if err != nil {
		return nil, err
	}
	switch rewards, err := c.rewardBalance(db, poolID, p); {
	case err != nil:
		return nil, err
	case rewards.IsZero():
		return nil, errors.Wrap(ErrPoolExhausted, "no rewards to earn")
	}

	self := PoolAddress(poolID)
	receipt, err := c.tokens.TransferFrom(ctx, db, p.StakeTicker, self, staker, self, amount)
	if err != nil {
		return nil, errors.Wrap(err, "stake")
	}
	if receipt.Net.IsZero() {
		return nil, errors.Wrap(errors.ErrInvalidAmount, "nothing left after the fee")
	}
	d := Deposit{
		ID:        p.DepositCount,
		Staker:    staker,
		Principal: receipt.Net,
		StakedAt:  now,
	}
	if _, err := c.deposits.Put(db, depositKey(poolID, d.ID), &d); err != nil {
		return nil, err
	}
	p.DepositCount++
	p.TotalStaked = p.TotalStaked.Add(d.Principal)
	if _, err := c.pools.Put(db, poolID, p); err != nil {
		return nil, err
	}
	mig.GetLogger(ctx).Info("staked",
		"pool", orm.DecodeSequence(poolID), "deposit", d.ID, "staker", staker,
		"gross", amount, "principal", d.Principal, "total", p.TotalStaked)
	return &d, nil
}

// CheckReward returns the reward the deposit would receive if claimed now.
func (c *Controller) CheckReward(ctx mig.Context, db mig.ReadOnlyKVStore, poolID []byte, depositID uint64) (coin.Amount, error) {
	p, d, err := c.openDeposit(db, poolID, depositID)
	if err != nil {
		return coin.Zero(), err
	}
	return c.reward(ctx, db, poolID, p, d)
}

func (c *Controller) reward(ctx mig.Context, db mig.ReadOnlyKVStore, poolID []byte, p *Pool, d *Deposit) (coin.Amount, error) {
	now, err := mig.BlockUnixTime(ctx)
	if err != nil {
		return coin.Zero(), err
	}
	available, err := c.rewardBalance(db, poolID, p)
	if err != nil {
		return coin.Zero(), err
	}
	return coin.Min(d.Accrued(p.RewardRate, now), available), nil
}

// Claim pays the principal and the reward to the staker and closes the
// deposit. Only the staker can claim.
func (c *Controller) Claim(ctx mig.Context, db mig.KVStore, poolID []byte, depositID uint64, staker mig.Address) (*Payout, error) {
	p, d, err := c.openDeposit(db, poolID, depositID)
	if err != nil {
		return nil, err
	}
	if !d.Staker.Equals(staker) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "deposit %d belongs to %s", depositID, d.Staker)
	}
	reward, err := c.reward(ctx, db, poolID, p, d)
	if err != nil {
		return nil, err
	}

	self := PoolAddress(poolID)
	if _, err := c.tokens.Transfer(ctx, db, p.StakeTicker, self, staker, d.Principal); err != nil {
		return nil, errors.Wrap(err, "principal")
	}
	if !reward.IsZero() {
		if _, err := c.tokens.Transfer(ctx, db, p.RewardTicker, self, staker, reward); err != nil {
			return nil, errors.Wrap(err, "reward")
		}
	}

	d.Claimed = true
	if _, err := c.deposits.Put(db, depositKey(poolID, depositID), d); err != nil {
		return nil, err
	}
	if p.TotalStaked, err = p.TotalStaked.Sub(d.Principal); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidState, "total staked below principal")
	}
	if _, err := c.pools.Put(db, poolID, p); err != nil {
		return nil, err
	}
	mig.GetLogger(ctx).Info("stake claimed",
		"pool", orm.DecodeSequence(poolID), "deposit", depositID, "staker", staker,
		"principal", d.Principal, "reward", reward, "total", p.TotalStaked)
	return &Payout{Principal: d.Principal, Reward: reward}, nil
}

func (c *Controller) openDeposit(db mig.ReadOnlyKVStore, poolID []byte, depositID uint64) (*Pool, *Deposit, error) {
	p, err := c.Pool(db, poolID)
	if err != nil {
		return nil, nil, err
	}
	d, err := c.Deposit(db, poolID, depositID)
	if err != nil {
		return nil, nil, err
	}
	if d.Claimed {
		return nil, nil, errors.Wrapf(ErrAlreadyClaimed, "deposit %d", depositID)
	}
	return p, d, nil
}
