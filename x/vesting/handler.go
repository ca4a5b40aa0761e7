package vesting

import (
	"github.com/iov-one/mig"
	"github.com/iov-one/mig/errors"
	"github.com/iov-one/mig/x"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r mig.Registry, auth x.Authenticator, ctrl *Controller) {
	r.Handle(&CreateDistributorMsg{}, CreateDistributorHandler{auth: auth, ctrl: ctrl})
	r.Handle(&CreateScheduleMsg{}, CreateScheduleHandler{auth: auth, ctrl: ctrl})
	r.Handle(&DrawDownMsg{}, DrawDownHandler{auth: auth, ctrl: ctrl})
}

// CreateDistributorHandler creates distributors. Any signer can create
// one.
type CreateDistributorHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ mig.Handler = CreateDistributorHandler{}

func (h CreateDistributorHandler) Deliver(ctx mig.Context, db mig.KVStore, m mig.Msg) (*mig.DeliverResult, error) {
	if x.MainSigner(ctx, h.auth) == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "signature missing")
	}
	msg, ok := m.(*CreateDistributorMsg)
	if !ok {
		return nil, errors.WithType(errors.ErrInvalidMsg, m)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	id, err := h.ctrl.Create(ctx, db, &Distributor{
		Ticker: msg.Ticker,
		Start:  msg.Start,
		Cliff:  msg.Cliff,
		End:    msg.End,
	})
	if err != nil {
		return nil, err
	}
	return &mig.DeliverResult{Data: id, Log: DistributorAddress(id).String()}, nil
}

// CreateScheduleHandler funds schedules.
type CreateScheduleHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ mig.Handler = CreateScheduleHandler{}

// Deliver pulls the funds from the signing funder. The result data is the
// schedule total.
func (h CreateScheduleHandler) Deliver(ctx mig.Context, db mig.KVStore, m mig.Msg) (*mig.DeliverResult, error) {
	msg, ok := m.(*CreateScheduleMsg)
	if !ok {
		return nil, errors.WithType(errors.ErrInvalidMsg, m)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, msg.Funder) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "funder signature missing")
	}
	s, err := h.ctrl.CreateSchedule(ctx, db, msg.DistributorID, msg.Funder, msg.Beneficiary, msg.Amount)
	if err != nil {
		return nil, err
	}
	return &mig.DeliverResult{Data: []byte(s.Total.String())}, nil
}

// DrawDownHandler releases vested tokens to the signing beneficiary.
type DrawDownHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ mig.Handler = DrawDownHandler{}

func (h DrawDownHandler) Deliver(ctx mig.Context, db mig.KVStore, m mig.Msg) (*mig.DeliverResult, error) {
	msg, ok := m.(*DrawDownMsg)
	if !ok {
		return nil, errors.WithType(errors.ErrInvalidMsg, m)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, msg.Beneficiary) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "beneficiary signature missing")
	}
	receipt, err := h.ctrl.DrawDown(ctx, db, msg.DistributorID, msg.Beneficiary)
	if err != nil {
		return nil, err
	}
	return &mig.DeliverResult{Data: []byte(receipt.Net.String()), Log: "fee " + receipt.Fee.String()}, nil
}
