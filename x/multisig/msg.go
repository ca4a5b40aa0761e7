package multisig

import (
	"github.com/iov-one/mig"
	"github.com/iov-one/mig/codec"
	"github.com/iov-one/mig/coin"
	"github.com/iov-one/mig/errors"
	"github.com/iov-one/mig/orm"
)

func init() {
	codec.RegisterMsg(&CreateGovernorMsg{}, pathCreateGovernorMsg)
	codec.RegisterMsg(&SubmitTransactionMsg{}, pathSubmitTransactionMsg)
	codec.RegisterMsg(&ConfirmTransactionMsg{}, pathConfirmTransactionMsg)
	codec.RegisterMsg(&RevokeConfirmationMsg{}, pathRevokeConfirmationMsg)
	codec.RegisterMsg(&ExecuteTransactionMsg{}, pathExecuteTransactionMsg)
}

const (
	pathCreateGovernorMsg     = "multisig/create"
	pathSubmitTransactionMsg  = "multisig/submit"
	pathConfirmTransactionMsg = "multisig/confirm"
	pathRevokeConfirmationMsg = "multisig/revoke"
	pathExecuteTransactionMsg = "multisig/execute"

	// maxPayloadSize limits the encoded message a transaction can carry.
	maxPayloadSize = 64 * 1024
)

// TargetedMsg is implemented by messages that act on a single ledger
// instance. A governor executes only payloads targeting the transaction
// destination.
type TargetedMsg interface {
	mig.Msg
	Contract() mig.Address
}

// CreateGovernorMsg creates a governor with a fixed owner set.
type CreateGovernorMsg struct {
	Owners      []mig.Address `json:"owners"`
	Required    uint32        `json:"required"`
	ValueTicker string        `json:"value_ticker"`
}

// Path fulfills mig.Msg interface to allow routing
func (CreateGovernorMsg) Path() string {
	return pathCreateGovernorMsg
}

// Validate enforces owners and threshold boundaries
func (m *CreateGovernorMsg) Validate() error {
	return validateOwners(errors.ErrInvalidMsg, m.Owners, m.Required, m.ValueTicker)
}

// SubmitTransactionMsg creates a new transaction confirmed by the
// submitting owner.
type SubmitTransactionMsg struct {
	GovernorID  []byte      `json:"governor_id"`
	Owner       mig.Address `json:"owner"`
	Destination mig.Address `json:"destination"`
	Value       coin.Amount `json:"value"`
	// Payload is a message encoded with codec.MarshalMsg.
	Payload []byte `json:"payload"`
}

// Path fulfills mig.Msg interface to allow routing
func (SubmitTransactionMsg) Path() string {
	return pathSubmitTransactionMsg
}

func (m *SubmitTransactionMsg) Validate() error {
	if err := orm.ValidateSequence(m.GovernorID); err != nil {
		return errors.Wrap(err, "governor id")
	}
	if err := m.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	if err := m.Destination.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	if len(m.Payload) > maxPayloadSize {
		return errors.Wrap(errors.ErrInvalidMsg, "payload too big")
	}
	return nil
}

// Contract returns the governor address.
func (m *SubmitTransactionMsg) Contract() mig.Address {
	return GovernorAddress(m.GovernorID)
}

// ConfirmTransactionMsg adds the owner confirmation to a transaction.
type ConfirmTransactionMsg struct {
	GovernorID []byte      `json:"governor_id"`
	Owner      mig.Address `json:"owner"`
	TxID       uint64      `json:"tx_id"`
}

// Path fulfills mig.Msg interface to allow routing
func (ConfirmTransactionMsg) Path() string {
	return pathConfirmTransactionMsg
}

func (m *ConfirmTransactionMsg) Validate() error {
	return validateTxRef(m.GovernorID, m.Owner)
}

// Contract returns the governor address.
func (m *ConfirmTransactionMsg) Contract() mig.Address {
	return GovernorAddress(m.GovernorID)
}

// RevokeConfirmationMsg removes the owner confirmation.
type RevokeConfirmationMsg struct {
	GovernorID []byte      `json:"governor_id"`
	Owner      mig.Address `json:"owner"`
	TxID       uint64      `json:"tx_id"`
}

// Path fulfills mig.Msg interface to allow routing
func (RevokeConfirmationMsg) Path() string {
	return pathRevokeConfirmationMsg
}

func (m *RevokeConfirmationMsg) Validate() error {
	return validateTxRef(m.GovernorID, m.Owner)
}

// Contract returns the governor address.
func (m *RevokeConfirmationMsg) Contract() mig.Address {
	return GovernorAddress(m.GovernorID)
}

// ExecuteTransactionMsg retries the execution of a confirmed transaction.
type ExecuteTransactionMsg struct {
	GovernorID []byte      `json:"governor_id"`
	Owner      mig.Address `json:"owner"`
	TxID       uint64      `json:"tx_id"`
}

// Path fulfills mig.Msg interface to allow routing
func (ExecuteTransactionMsg) Path() string {
	return pathExecuteTransactionMsg
}

func (m *ExecuteTransactionMsg) Validate() error {
	return validateTxRef(m.GovernorID, m.Owner)
}

// Contract returns the governor address.
func (m *ExecuteTransactionMsg) Contract() mig.Address {
	return GovernorAddress(m.GovernorID)
}

func validateTxRef(governorID []byte, owner mig.Address) error {
	if err := orm.ValidateSequence(governorID); err != nil {
		return errors.Wrap(err, "governor id")
	}
	if err := owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	return nil
}
