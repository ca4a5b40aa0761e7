package vesting

import (
	"github.com/iov-one/mig"
	"github.com/iov-one/mig/codec"
	"github.com/iov-one/mig/coin"
	"github.com/iov-one/mig/errors"
	"github.com/iov-one/mig/orm"
)

func init() {
	codec.RegisterMsg(&CreateDistributorMsg{}, pathCreateDistributorMsg)
	codec.RegisterMsg(&CreateScheduleMsg{}, pathCreateScheduleMsg)
	codec.RegisterMsg(&DrawDownMsg{}, pathDrawDownMsg)
}

const (
	pathCreateDistributorMsg = "vesting/create"
	pathCreateScheduleMsg    = "vesting/create_schedule"
	pathDrawDownMsg          = "vesting/draw_down"
)

// CreateDistributorMsg creates a distributor for a token. A zero cliff
// defaults to the start.
type CreateDistributorMsg struct {
	Ticker string       `json:"ticker"`
	Start  mig.UnixTime `json:"start"`
	Cliff  mig.UnixTime `json:"cliff"`
	End    mig.UnixTime `json:"end"`
}

// Path fulfills mig.Msg interface to allow routing
func (CreateDistributorMsg) Path() string {
	return pathCreateDistributorMsg
}

// Validate ensures the vesting window is well formed.
func (m *CreateDistributorMsg) Validate() error {
	if !coin.IsTicker(m.Ticker) {
		return errors.Wrapf(errors.ErrInvalidMsg, "invalid ticker %q", m.Ticker)
	}
	cliff := m.Cliff
	if cliff == 0 {
		cliff = m.Start
	}
	return validateWindow(m.Start, cliff, m.End)
}

// CreateScheduleMsg funds a schedule for the beneficiary. It must be signed
// by the funder.
type CreateScheduleMsg struct {
	DistributorID []byte      `json:"distributor_id"`
	Funder        mig.Address `json:"funder"`
	Beneficiary   mig.Address `json:"beneficiary"`
	Amount        coin.Amount `json:"amount"`
}

// Path fulfills mig.Msg interface to allow routing
func (CreateScheduleMsg) Path() string {
	return pathCreateScheduleMsg
}

func (m *CreateScheduleMsg) Validate() error {
	if err := orm.ValidateSequence(m.DistributorID); err != nil {
		return errors.Wrap(err, "distributor id")
	}
	if err := m.Funder.Validate(); err != nil {
		return errors.Wrap(err, "funder")
	}
	if err := m.Beneficiary.Validate(); err != nil {
		return errors.Wrap(err, "beneficiary")
	}
	if m.Amount.IsZero() {
		return errors.Wrap(errors.ErrInvalidAmount, "amount must be positive")
	}
	return nil
}

// Contract returns the distributor address.
func (m *CreateScheduleMsg) Contract() mig.Address {
	return DistributorAddress(m.DistributorID)
}

// DrawDownMsg releases the vested tokens of the signing beneficiary.
type DrawDownMsg struct {
	DistributorID []byte      `json:"distributor_id"`
	Beneficiary   mig.Address `json:"beneficiary"`
}

// Path fulfills mig.Msg interface to allow routing
func (DrawDownMsg) Path() string {
	return pathDrawDownMsg
}

func (m *DrawDownMsg) Validate() error {
	if err := orm.ValidateSequence(m.DistributorID); err != nil {
		return errors.Wrap(err, "distributor id")
	}
	return errors.Wrap(m.Beneficiary.Validate(), "beneficiary")
}

// Contract returns the distributor address.
func (m *DrawDownMsg) Contract() mig.Address {
	return DistributorAddress(m.DistributorID)
}
