package vesting

import (
	"github.com/iov-one/mig"
	"github.com/iov-one/mig/coin"
	"github.com/iov-one/mig/errors"
	"github.com/iov-one/mig/orm"
	"github.com/iov-one/mig/x/feetoken"
)

// TokenMover pulls schedule funds and releases vested tokens.
type TokenMover interface {
	Transfer(ctx mig.Context, db mig.KVStore, ticker string, src, dest mig.Address, amount coin.Amount) (*feetoken.Receipt, error)
	TransferFrom(ctx mig.Context, db mig.KVStore, ticker string, spender, owner, dest mig.Address, amount coin.Amount) (*feetoken.Receipt, error)
}

// Controller keeps distributors and their schedules.
type Controller struct {
	distributors orm.ModelBucket
	schedules    orm.ModelBucket
	tokens       TokenMover
}

// NewController returns a controller moving funds with given token ledger.
func NewController(tokens TokenMover) *Controller {
	return &Controller{
		distributors: orm.NewModelBucket("vesting", &Distributor{}),
		schedules:    orm.NewModelBucket("schedules", &Schedule{}),
		tokens:       tokens,
	}
}

// Create stores a new distributor and returns its id. A zero cliff means
// vesting is drawable from the start.
func (c *Controller) Create(ctx mig.Context, db mig.KVStore, d *Distributor) ([]byte, error) {
	if d.Cliff == 0 {
		d.Cliff = d.Start
	}
	d.Schedules = 0
	id, err := c.distributors.Put(db, nil, d)
	if err != nil {
		return nil, err
	}
	mig.GetLogger(ctx).Info("vesting distributor created",
		"id", orm.DecodeSequence(id), "address", DistributorAddress(id),
		"ticker", d.Ticker, "start", d.Start, "cliff", d.Cliff, "end", d.End)
	return id, nil
}

// Distributor returns a distributor or ErrNotFound.
func (c *Controller) Distributor(db mig.ReadOnlyKVStore, id []byte) (*Distributor, error) {
	var d Distributor
	if err := c.distributors.One(db, id, &d); err != nil {
		return nil, errors.Wrapf(err, "distributor %X", id)
	}
	return &d, nil
}

// Schedule returns the schedule of a beneficiary or ErrNotFound.
func (c *Controller) Schedule(db mig.ReadOnlyKVStore, distributorID []byte, beneficiary mig.Address) (*Schedule, error) {
	var s Schedule
	if err := c.schedules.One(db, scheduleKey(distributorID, beneficiary), &s); err != nil {
		return nil, errors.Wrapf(err, "schedule of %s", beneficiary)
	}
	return &s, nil
}

// CreateSchedule pulls amount from the funder and vests what was received
// to the beneficiary. The funder must have approved the distributor
// address to spend the amount.
func (c *Controller) CreateSchedule(ctx mig.Context, db mig.KVStore, distributorID []byte, funder, beneficiary mig.Address, amount coin.Amount) (*Schedule, error) {
	d, err := c.Distributor(db, distributorID)
	if err != nil {
		return nil, err
	}
	key := scheduleKey(distributorID, beneficiary)
	switch err := c.schedules.Has(db, key); {
	case err == nil:
		return nil, errors.Wrapf(ErrScheduleExists, "beneficiary %s", beneficiary)
	case !errors.ErrNotFound.Is(err):
		return nil, err
	}

	self := DistributorAddress(distributorID)
	receipt, err := c.tokens.TransferFrom(ctx, db, d.Ticker, self, funder, self, amount)
	if err != nil {
		return nil, errors.Wrap(err, "funding")
	}
	if receipt.Net.IsZero() {
		return nil, errors.Wrap(errors.ErrInvalidAmount, "nothing left after the fee")
	}
	s := Schedule{
		Total: receipt.Net,
		Drawn: coin.Zero(),
		Start: d.Start,
		Cliff: d.Cliff,
		End:   d.End,
	}
	if _, err := c.schedules.Put(db, key, &s); err != nil {
		return nil, err
	}
	d.Schedules++
	if _, err := c.distributors.Put(db, distributorID, d); err != nil {
		return nil, err
	}
	mig.GetLogger(ctx).Info("vesting schedule created",
		"distributor", orm.DecodeSequence(distributorID), "beneficiary", beneficiary,
		"funder", funder, "gross", amount, "total", s.Total)
	return &s, nil
}

// VestedAmount returns the amount released to the beneficiary so far. It
// is zero for a beneficiary without a schedule.
func (c *Controller) VestedAmount(ctx mig.Context, db mig.ReadOnlyKVStore, distributorID []byte, beneficiary mig.Address) (coin.Amount, error) {
	return c.read(ctx, db, distributorID, beneficiary, func(s *Schedule, now mig.UnixTime) coin.Amount {
		return s.Vested(now)
	})
}

// AvailableDrawDownAmount returns the amount the beneficiary can draw now.
func (c *Controller) AvailableDrawDownAmount(ctx mig.Context, db mig.ReadOnlyKVStore, distributorID []byte, beneficiary mig.Address) (coin.Amount, error) {
	return c.read(ctx, db, distributorID, beneficiary, func(s *Schedule, now mig.UnixTime) coin.Amount {
		return s.Available(now)
	})
}

// RemainingBalance returns the part of the schedule not drawn yet.
func (c *Controller) RemainingBalance(ctx mig.Context, db mig.ReadOnlyKVStore, distributorID []byte, beneficiary mig.Address) (coin.Amount, error) {
	return c.read(ctx, db, distributorID, beneficiary, func(s *Schedule, _ mig.UnixTime) coin.Amount {
		return s.Remaining()
	})
}

func (c *Controller) read(ctx mig.Context, db mig.ReadOnlyKVStore, distributorID []byte, beneficiary mig.Address, fn func(*Schedule, mig.UnixTime) coin.Amount) (coin.Amount, error) {
	now, err := mig.BlockUnixTime(ctx)
	if err != nil {
		return coin.Zero(), err
	}
	s, err := c.Schedule(db, distributorID, beneficiary)
	switch {
	case errors.ErrNotFound.Is(err):
		return coin.Zero(), nil
	case err != nil:
		return coin.Zero(), err
	}
	return fn(s, now), nil
}

// DrawDown releases everything available to the beneficiary. The schedule
// is charged the gross amount, the beneficiary receives it minus the
// transfer fee.
func (c *Controller) DrawDown(ctx mig.Context, db mig.KVStore, distributorID []byte, beneficiary mig.Address) (*feetoken.Receipt, error) {
	now, err := mig.BlockUnixTime(ctx)
	if err != nil {
		return nil, err
	}
	d, err := c.Distributor(db, distributorID)
	if err != nil {
		return nil, err
	}
	s, err := c.Schedule(db, distributorID, beneficiary)
	if err != nil {
		return nil, err
	}
	avail := s.Available(now)
	if avail.IsZero() {
		return nil, errors.Wrapf(ErrNoAmountWithdrawable, "vested %s, drawn %s", s.Vested(now), s.Drawn)
	}

	receipt, err := c.tokens.Transfer(ctx, db, d.Ticker, DistributorAddress(distributorID), beneficiary, avail)
	if err != nil {
		return nil, errors.Wrap(err, "release")
	}
	s.Drawn = s.Drawn.Add(avail)
	if _, err := c.schedules.Put(db, scheduleKey(distributorID, beneficiary), s); err != nil {
		return nil, err
	}
	mig.GetLogger(ctx).Info("vesting drawn down",
		"distributor", orm.DecodeSequence(distributorID), "beneficiary", beneficiary,
		"gross", avail, "net", receipt.Net, "drawn", s.Drawn, "total", s.Total)
	return receipt, nil
}
