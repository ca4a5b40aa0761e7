package multisig

import (
	"strconv"

	"github.com/iov-one/mig"
	"github.com/iov-one/mig/errors"
	"github.com/iov-one/mig/orm"
	"github.com/iov-one/mig/x"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r mig.Registry, auth x.Authenticator, ctrl *Controller) {
	r.Handle(&CreateGovernorMsg{}, CreateGovernorHandler{auth: auth, ctrl: ctrl})
	tx := TransactionHandler{auth: auth, ctrl: ctrl}
	r.Handle(&SubmitTransactionMsg{}, tx)
	r.Handle(&ConfirmTransactionMsg{}, tx)
	r.Handle(&RevokeConfirmationMsg{}, tx)
	r.Handle(&ExecuteTransactionMsg{}, tx)
}

// CreateGovernorHandler creates governors. Any signer can create one, the
// signer gets no privileges.
type CreateGovernorHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ mig.Handler = CreateGovernorHandler{}

func (h CreateGovernorHandler) Deliver(ctx mig.Context, db mig.KVStore, m mig.Msg) (*mig.DeliverResult, error) {
	// Retrieve tx main signer in this context
	if x.MainSigner(ctx, h.auth) == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "signature missing")
	}
	msg, ok := m.(*CreateGovernorMsg)
	if !ok {
		return nil, errors.WithType(errors.ErrInvalidMsg, m)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	id, err := h.ctrl.Create(ctx, db, &Governor{
		Owners:      msg.Owners,
		Required:    msg.Required,
		ValueTicker: msg.ValueTicker,
	})
	if err != nil {
		return nil, err
	}
	return &mig.DeliverResult{Data: id, Log: GovernorAddress(id).String()}, nil
}

// TransactionHandler handles all owner operations on governor
// transactions. The owner named in the message must sign it.
type TransactionHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ mig.Handler = TransactionHandler{}

func (h TransactionHandler) Deliver(ctx mig.Context, db mig.KVStore, m mig.Msg) (*mig.DeliverResult, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	switch msg := m.(type) {
	case *SubmitTransactionMsg:
		if err := h.signedBy(ctx, msg.Owner); err != nil {
			return nil, err
		}
		id, err := h.ctrl.Submit(ctx, db, msg.GovernorID, msg.Owner, msg.Destination, msg.Value, msg.Payload)
		if err != nil {
			return nil, err
		}
		return &mig.DeliverResult{Data: orm.EncodeSequence(int64(id)), Log: strconv.FormatUint(id, 10)}, nil
	case *ConfirmTransactionMsg:
		if err := h.signedBy(ctx, msg.Owner); err != nil {
			return nil, err
		}
		if err := h.ctrl.Confirm(ctx, db, msg.GovernorID, msg.Owner, msg.TxID); err != nil {
			return nil, err
		}
		return h.status(db, msg.GovernorID, msg.TxID)
	case *RevokeConfirmationMsg:
		if err := h.signedBy(ctx, msg.Owner); err != nil {
			return nil, err
		}
		if err := h.ctrl.Revoke(ctx, db, msg.GovernorID, msg.Owner, msg.TxID); err != nil {
			return nil, err
		}
		return h.status(db, msg.GovernorID, msg.TxID)
	case *ExecuteTransactionMsg:
		if err := h.signedBy(ctx, msg.Owner); err != nil {
			return nil, err
		}
		if _, err := h.ctrl.Execute(ctx, db, msg.GovernorID, msg.Owner, msg.TxID); err != nil {
			return nil, err
		}
		return h.status(db, msg.GovernorID, msg.TxID)
	default:
		return nil, errors.WithType(errors.ErrInvalidMsg, m)
	}
}

func (h TransactionHandler) signedBy(ctx mig.Context, owner mig.Address) error {
	if !h.auth.HasAddress(ctx, owner) {
		return errors.Wrap(ErrNotOwner, "owner signature missing")
	}
	return nil
}

// status reports the transaction state in the result log.
func (h TransactionHandler) status(db mig.ReadOnlyKVStore, governorID []byte, txID uint64) (*mig.DeliverResult, error) {
	tx, err := h.ctrl.Transaction(db, governorID, txID)
	if err != nil {
		return nil, err
	}
	state := "pending"
	if tx.Executed {
		state = "executed"
	}
	return &mig.DeliverResult{Log: state}, nil
}
