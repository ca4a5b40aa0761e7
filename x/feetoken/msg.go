package feetoken

import (
	"github.com/iov-one/mig"
	"github.com/iov-one/mig/codec"
	"github.com/iov-one/mig/coin"
	"github.com/iov-one/mig/errors"
)

func init() {
	codec.RegisterMsg(&CreateTokenMsg{}, pathCreateTokenMsg)
	codec.RegisterMsg(&TransferMsg{}, pathTransferMsg)
	codec.RegisterMsg(&TransferFromMsg{}, pathTransferFromMsg)
	codec.RegisterMsg(&ApproveMsg{}, pathApproveMsg)
	codec.RegisterMsg(&SetFeeRateMsg{}, pathSetFeeRateMsg)
	codec.RegisterMsg(&PauseMsg{}, pathPauseMsg)
	codec.RegisterMsg(&UnpauseMsg{}, pathUnpauseMsg)
	codec.RegisterMsg(&TransferAdministratorMsg{}, pathTransferAdministratorMsg)
}

const (
	pathCreateTokenMsg           = "feetoken/create"
	pathTransferMsg              = "feetoken/transfer"
	pathTransferFromMsg          = "feetoken/transfer_from"
	pathApproveMsg               = "feetoken/approve"
	pathSetFeeRateMsg            = "feetoken/set_fee_rate"
	pathPauseMsg                 = "feetoken/pause"
	pathUnpauseMsg               = "feetoken/unpause"
	pathTransferAdministratorMsg = "feetoken/transfer_administrator"
)

// CreateTokenMsg creates a new token and mints the supply to the admin.
// Zero fee rates create a plain token without transfer fees.
type CreateTokenMsg struct {
	Ticker       string      `json:"ticker"`
	Name         string      `json:"name"`
	Decimals     uint32      `json:"decimals"`
	Admin        mig.Address `json:"admin"`
	Supply       coin.Amount `json:"supply"`
	BaseRate     uint32      `json:"base_rate"`
	DecayedRate  uint32      `json:"decayed_rate"`
	MonthSeconds int64       `json:"month_seconds"`
}

// Path fulfills mig.Msg interface to allow routing
func (CreateTokenMsg) Path() string {
	return pathCreateTokenMsg
}

// Validate ensures the token parameters are sane.
func (m *CreateTokenMsg) Validate() error {
	if !coin.IsTicker(m.Ticker) {
		return errors.Wrapf(errors.ErrInvalidMsg, "invalid ticker %q", m.Ticker)
	}
	if m.Name == "" {
		return errors.Wrap(errors.ErrInvalidMsg, "name is required")
	}
	if err := m.Admin.Validate(); err != nil {
		return errors.Wrap(err, "admin")
	}
	if m.Supply.IsZero() {
		return errors.Wrap(errors.ErrInvalidAmount, "supply must be positive")
	}
	if m.BaseRate > MaxRate || m.DecayedRate > MaxRate {
		return errors.Wrap(errors.ErrInvalidMsg, "fee rate above 100%")
	}
	if m.MonthSeconds < 0 {
		return errors.Wrap(errors.ErrInvalidMsg, "negative month length")
	}
	return nil
}

// Contract returns the address of the created token.
func (m *CreateTokenMsg) Contract() mig.Address {
	return TokenAddress(m.Ticker)
}

// TransferMsg moves tokens from the signing source.
type TransferMsg struct {
	Ticker      string      `json:"ticker"`
	Source      mig.Address `json:"source"`
	Destination mig.Address `json:"destination"`
	Amount      coin.Amount `json:"amount"`
}

// Path fulfills mig.Msg interface to allow routing
func (TransferMsg) Path() string {
	return pathTransferMsg
}

// Validate checks addresses and a positive amount.
func (m *TransferMsg) Validate() error {
	if !coin.IsTicker(m.Ticker) {
		return errors.Wrapf(errors.ErrInvalidMsg, "invalid ticker %q", m.Ticker)
	}
	if err := m.Source.Validate(); err != nil {
		return errors.Wrap(err, "source")
	}
	if err := m.Destination.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	return validAmount(m.Amount)
}

// Contract returns the token address.
func (m *TransferMsg) Contract() mig.Address {
	return TokenAddress(m.Ticker)
}

// TransferFromMsg moves tokens of the owner, signed by the spender.
type TransferFromMsg struct {
	Ticker      string      `json:"ticker"`
	Spender     mig.Address `json:"spender"`
	Owner       mig.Address `json:"owner"`
	Destination mig.Address `json:"destination"`
	Amount      coin.Amount `json:"amount"`
}

// Path fulfills mig.Msg interface to allow routing
func (TransferFromMsg) Path() string {
	return pathTransferFromMsg
}

// Validate checks addresses and a positive amount.
func (m *TransferFromMsg) Validate() error {
	if !coin.IsTicker(m.Ticker) {
		return errors.Wrapf(errors.ErrInvalidMsg, "invalid ticker %q", m.Ticker)
	}
	if err := m.Spender.Validate(); err != nil {
		return errors.Wrap(err, "spender")
	}
	if err := m.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	if err := m.Destination.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	return validAmount(m.Amount)
}

// Contract returns the token address.
func (m *TransferFromMsg) Contract() mig.Address {
	return TokenAddress(m.Ticker)
}

// ApproveMsg sets the allowance of a spender. A zero amount revokes it.
type ApproveMsg struct {
	Ticker  string      `json:"ticker"`
	Owner   mig.Address `json:"owner"`
	Spender mig.Address `json:"spender"`
	Amount  coin.Amount `json:"amount"`
}

// Path fulfills mig.Msg interface to allow routing
func (ApproveMsg) Path() string {
	return pathApproveMsg
}

// Validate checks the addresses.
func (m *ApproveMsg) Validate() error {
	if !coin.IsTicker(m.Ticker) {
		return errors.Wrapf(errors.ErrInvalidMsg, "invalid ticker %q", m.Ticker)
	}
	if err := m.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	if err := m.Spender.Validate(); err != nil {
		return errors.Wrap(err, "spender")
	}
	return nil
}

// Contract returns the token address.
func (m *ApproveMsg) Contract() mig.Address {
	return TokenAddress(m.Ticker)
}

// SetFeeRateMsg installs a fee rate for the current month.
type SetFeeRateMsg struct {
	Ticker string `json:"ticker"`
	Rate   uint32 `json:"rate"`
	Month  uint64 `json:"month"`
}

// Path fulfills mig.Msg interface to allow routing
func (SetFeeRateMsg) Path() string {
	return pathSetFeeRateMsg
}

// Validate checks the rate range. The month is checked against the clock
// by the handler.
func (m *SetFeeRateMsg) Validate() error {
	if !coin.IsTicker(m.Ticker) {
		return errors.Wrapf(errors.ErrInvalidMsg, "invalid ticker %q", m.Ticker)
	}
	if m.Rate > MaxRate {
		return errors.Wrapf(errors.ErrInvalidMsg, "rate %d above %d", m.Rate, MaxRate)
	}
	if m.Month == 0 {
		return errors.Wrap(ErrInvalidMonth, "month index starts at 1")
	}
	return nil
}

// Contract returns the token address.
func (m *SetFeeRateMsg) Contract() mig.Address {
	return TokenAddress(m.Ticker)
}

// PauseMsg stops all transfers of a token.
type PauseMsg struct {
	Ticker string `json:"ticker"`
}

// Path fulfills mig.Msg interface to allow routing
func (PauseMsg) Path() string {
	return pathPauseMsg
}

func (m *PauseMsg) Validate() error {
	if !coin.IsTicker(m.Ticker) {
		return errors.Wrapf(errors.ErrInvalidMsg, "invalid ticker %q", m.Ticker)
	}
	return nil
}

// Contract returns the token address.
func (m *PauseMsg) Contract() mig.Address {
	return TokenAddress(m.Ticker)
}

// UnpauseMsg resumes transfers of a token.
type UnpauseMsg struct {
	Ticker string `json:"ticker"`
}

// Path fulfills mig.Msg interface to allow routing
func (UnpauseMsg) Path() string {
	return pathUnpauseMsg
}

func (m *UnpauseMsg) Validate() error {
	if !coin.IsTicker(m.Ticker) {
		return errors.Wrapf(errors.ErrInvalidMsg, "invalid ticker %q", m.Ticker)
	}
	return nil
}

// Contract returns the token address.
func (m *UnpauseMsg) Contract() mig.Address {
	return TokenAddress(m.Ticker)
}

// TransferAdministratorMsg hands the administrator capability over, ie.
// to a governor.
type TransferAdministratorMsg struct {
	Ticker   string      `json:"ticker"`
	NewAdmin mig.Address `json:"new_admin"`
}

// Path fulfills mig.Msg interface to allow routing
func (TransferAdministratorMsg) Path() string {
	return pathTransferAdministratorMsg
}

func (m *TransferAdministratorMsg) Validate() error {
	if !coin.IsTicker(m.Ticker) {
		return errors.Wrapf(errors.ErrInvalidMsg, "invalid ticker %q", m.Ticker)
	}
	if err := m.NewAdmin.Validate(); err != nil {
		return errors.Wrap(err, "new admin")
	}
	return nil
}

// Contract returns the token address.
func (m *TransferAdministratorMsg) Contract() mig.Address {
	return TokenAddress(m.Ticker)
}

func (m *SetFeeRateMsg) tokenTicker() string { return m.Ticker }
func (m *PauseMsg) tokenTicker() string { return m.Ticker }
func (m *UnpauseMsg) tokenTicker() string { return m.Ticker }
func (m *TransferAdministratorMsg) tokenTicker() string { return m.Ticker }

func validAmount(a coin.Amount) error {
	if a.IsZero() {
		return errors.Wrap(errors.ErrInvalidAmount, "amount must be positive")
	}
	return nil
}
