package feetoken

import (
	"github.com/iov-one/mig"
	"github.com/iov-one/mig/errors"
	"github.com/iov-one/mig/x"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r mig.Registry, auth x.Authenticator, ctrl *Controller) {
	r.Handle(&CreateTokenMsg{}, CreateHandler{auth: auth, ctrl: ctrl})
	transfer := TransferHandler{auth: auth, ctrl: ctrl}
	r.Handle(&TransferMsg{}, transfer)
	r.Handle(&TransferFromMsg{}, transfer)
	r.Handle(&ApproveMsg{}, ApproveHandler{auth: auth, ctrl: ctrl})
	admin := AdminHandler{auth: auth, ctrl: ctrl}
	r.Handle(&SetFeeRateMsg{}, admin)
	r.Handle(&PauseMsg{}, admin)
	r.Handle(&UnpauseMsg{}, admin)
	r.Handle(&TransferAdministratorMsg{}, admin)
}

// CreateHandler creates tokens. The future administrator must sign.
type CreateHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ mig.Handler = CreateHandler{}

func (h CreateHandler) Deliver(ctx mig.Context, db mig.KVStore, m mig.Msg) (*mig.DeliverResult, error) {
	msg, ok := m.(*CreateTokenMsg)
	if !ok {
		return nil, errors.WithType(errors.ErrInvalidMsg, m)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, msg.Admin) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "admin signature missing")
	}
	t := Token{
		Ticker:       msg.Ticker,
		Name:         msg.Name,
		Decimals:     msg.Decimals,
		Admin:        msg.Admin,
		BaseRate:     msg.BaseRate,
		DecayedRate:  msg.DecayedRate,
		MonthSeconds: msg.MonthSeconds,
	}
	if err := h.ctrl.Create(ctx, db, &t, msg.Supply); err != nil {
		return nil, err
	}
	return &mig.DeliverResult{Data: []byte(t.Ticker)}, nil
}

// TransferHandler moves tokens, either directly signed by the source or
// by an approved spender.
type TransferHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ mig.Handler = TransferHandler{}

// Deliver moves the tokens from source to destination if all
// preconditions are met. The result data is the net amount received.
func (h TransferHandler) Deliver(ctx mig.Context, db mig.KVStore, m mig.Msg) (*mig.DeliverResult, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	var (
		receipt *Receipt
		err     error
	)
	switch msg := m.(type) {
	case *TransferMsg:
		if !h.auth.HasAddress(ctx, msg.Source) {
			return nil, errors.Wrap(errors.ErrUnauthorized, "source signature missing")
		}
		receipt, err = h.ctrl.Transfer(ctx, db, msg.Ticker, msg.Source, msg.Destination, msg.Amount)
	case *TransferFromMsg:
		if !h.auth.HasAddress(ctx, msg.Spender) {
			return nil, errors.Wrap(errors.ErrUnauthorized, "spender signature missing")
		}
		receipt, err = h.ctrl.TransferFrom(ctx, db, msg.Ticker, msg.Spender, msg.Owner, msg.Destination, msg.Amount)
	default:
		return nil, errors.WithType(errors.ErrInvalidMsg, m)
	}
	if err != nil {
		return nil, err
	}
	return &mig.DeliverResult{
		Data: []byte(receipt.Net.String()),
		Log:  "fee " + receipt.Fee.String(),
	}, nil
}

// ApproveHandler sets allowances.
type ApproveHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ mig.Handler = ApproveHandler{}

func (h ApproveHandler) Deliver(ctx mig.Context, db mig.KVStore, m mig.Msg) (*mig.DeliverResult, error) {
	msg, ok := m.(*ApproveMsg)
	if !ok {
		return nil, errors.WithType(errors.ErrInvalidMsg, m)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, msg.Owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "owner signature missing")
	}
	if err := h.ctrl.Approve(ctx, db, msg.Ticker, msg.Owner, msg.Spender, msg.Amount); err != nil {
		return nil, err
	}
	return &mig.DeliverResult{}, nil
}

// AdminHandler handles all messages that require the token administrator.
type AdminHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ mig.Handler = AdminHandler{}

func (h AdminHandler) Deliver(ctx mig.Context, db mig.KVStore, m mig.Msg) (*mig.DeliverResult, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	tm, ok := m.(interface{ tokenTicker() string })
	if !ok {
		return nil, errors.WithType(errors.ErrInvalidMsg, m)
	}
	ticker := tm.tokenTicker()
	t, err := h.ctrl.Token(db, ticker)
	if err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, t.Admin) {
		return nil, errors.Wrapf(ErrNotAdministrator, "token %s", ticker)
	}

	switch msg := m.(type) {
	case *SetFeeRateMsg:
		err = h.ctrl.SetFeeRate(ctx, db, ticker, msg.Rate, msg.Month)
	case *PauseMsg:
		err = h.ctrl.SetPaused(ctx, db, ticker, true)
	case *UnpauseMsg:
		err = h.ctrl.SetPaused(ctx, db, ticker, false)
	case *TransferAdministratorMsg:
		err = h.ctrl.TransferAdministrator(ctx, db, ticker, msg.NewAdmin)
	default:
		err = errors.WithType(errors.ErrInvalidMsg, m)
	}
	if err != nil {
		return nil, err
	}
	return &mig.DeliverResult{}, nil
}
