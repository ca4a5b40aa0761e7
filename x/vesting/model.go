package vesting

import (
	"github.com/iov-one/mig"
	"github.com/iov-one/mig/coin"
	"github.com/iov-one/mig/errors"
)

// Distributor releases tokens of one ticker within a time window.
type Distributor struct {
	Ticker string
	Start  mig.UnixTime
	// Cliff is the earliest moment anything can be drawn.
	Cliff mig.UnixTime
	End   mig.UnixTime
	// Schedules is the number of funded schedules.
	Schedules uint64
}

// Validate ensures the window is well formed.
func (d *Distributor) Validate() error {
	if !coin.IsTicker(d.Ticker) {
		return errors.Wrapf(errors.ErrInvalidModel, "invalid ticker %q", d.Ticker)
	}
	return validateWindow(d.Start, d.Cliff, d.End)
}

func validateWindow(start, cliff, end mig.UnixTime) error {
	if err := start.Validate(); err != nil {
		return errors.Wrap(err, "start")
	}
	if start >= end {
		return errors.Wrap(errors.ErrInvalidSchedule, "start must be before end")
	}
	if cliff < start || cliff > end {
		return errors.Wrap(errors.ErrInvalidSchedule, "cliff must be within the window")
	}
	return nil
}

// Schedule is the vesting state of a single beneficiary. The window is
// copied from the distributor when the schedule is funded.
type Schedule struct {
	Total coin.Amount
	Drawn coin.Amount
	Start mig.UnixTime
	Cliff mig.UnixTime
	End   mig.UnixTime
}

// Validate ensures nothing more than the total was drawn.
func (s *Schedule) Validate() error {
	if s.Total.IsZero() {
		return errors.Wrap(errors.ErrInvalidModel, "empty schedule")
	}
	if s.Drawn.Cmp(s.Total) > 0 {
		return errors.Wrap(errors.ErrInvalidModel, "drawn above total")
	}
	return validateWindow(s.Start, s.Cliff, s.End)
}

// Vested returns the amount released at given time.
func (s *Schedule) Vested(now mig.UnixTime) coin.Amount {
	switch {
	case now < s.Cliff:
		return coin.Zero()
	case now >= s.End:
		return s.Total
	}
	return s.Total.MulDiv(uint64(now-s.Start), uint64(s.End-s.Start))
}

// Available returns the amount that can be drawn at given time.
func (s *Schedule) Available(now mig.UnixTime) coin.Amount {
	avail, err := s.Vested(now).Sub(s.Drawn)
	if err != nil {
		// Drawn never exceeds vested, the window only grows.
		return coin.Zero()
	}
	return avail
}

// Remaining returns what was not drawn yet, vested or not.
func (s *Schedule) Remaining() coin.Amount {
	rest, err := s.Total.Sub(s.Drawn)
	if err != nil {
		return coin.Zero()
	}
	return rest
}

// DistributorCondition returns the condition of a distributor. Funds are
// pulled and released under its address.
func DistributorCondition(id []byte) mig.Condition {
	return mig.NewCondition("vesting", "seq", id)
}

// DistributorAddress returns the address holding the distributor funds.
func DistributorAddress(id []byte) mig.Address {
	return DistributorCondition(id).Address()
}

func scheduleKey(distributorID []byte, beneficiary mig.Address) []byte {
	key := make([]byte, 0, len(distributorID)+len(beneficiary))
	key = append(key, distributorID...)
	return append(key, beneficiary...)
}
