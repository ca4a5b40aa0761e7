package staking

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
	r.Handle(&CreatePoolMsg{}, CreatePoolHandler{auth: auth, ctrl: ctrl})
	r.Handle(&StakeMsg{}, StakeHandler{auth: auth, ctrl: ctrl})
	r.Handle(&ClaimMsg{}, ClaimHandler{auth: auth, ctrl: ctrl})
}

// CreatePoolHandler creates pools. Any signer can create one.
type CreatePoolHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ mig.Handler = CreatePoolHandler{}

func (h CreatePoolHandler) Deliver(ctx mig.Context, db mig.KVStore, m mig.Msg) (*mig.DeliverResult, error) {
	if x.MainSigner(ctx, h.auth) == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "signature missing")
	}
	msg, ok := m.(*CreatePoolMsg)
	if !ok {
		return nil, errors.WithType(errors.ErrInvalidMsg, m)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	id, err := h.ctrl.Create(ctx, db, &Pool{
		StakeTicker:  msg.StakeTicker,
		RewardTicker: msg.RewardTicker,
		RewardRate:   msg.RewardRate,
	})
	if err != nil {
		return nil, err
	}
	return &mig.DeliverResult{Data: id, Log: PoolAddress(id).String()}, nil
}

// StakeHandler deposits tokens of the signing staker.
type StakeHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ mig.Handler = StakeHandler{}

// Deliver records the deposit. The result data is the deposit id, the log
// carries the principal.
func (h StakeHandler) Deliver(ctx mig.Context, db mig.KVStore, m mig.Msg) (*mig.DeliverResult, error) {
	msg, ok := m.(*StakeMsg)
	if !ok {
		return nil, errors.WithType(errors.ErrInvalidMsg, m)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, msg.Staker) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "staker signature missing")
	}
	d, err := h.ctrl.Stake(ctx, db, msg.PoolID, msg.Staker, msg.Amount)
	if err != nil {
		return nil, err
	}
	return &mig.DeliverResult{
		Data: orm.EncodeSequence(int64(d.ID)),
		Log:  "principal " + d.Principal.String(),
	}, nil
}

// ClaimHandler closes deposits.
type ClaimHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ mig.Handler = ClaimHandler{}

func (h ClaimHandler) Deliver(ctx mig.Context, db mig.KVStore, m mig.Msg) (*mig.DeliverResult, error) {
	msg, ok := m.(*ClaimMsg)
	if !ok {
		return nil, errors.WithType(errors.ErrInvalidMsg, m)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, msg.Staker) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "staker signature missing")
	}
	p, err := h.ctrl.Claim(ctx, db, msg.PoolID, msg.DepositID, msg.Staker)
	if err != nil {
		return nil, err
	}
	return &mig.DeliverResult{
		Data: []byte(p.Reward.String()),
		Log:  "deposit " + strconv.FormatUint(msg.DepositID, 10) + " principal " + p.Principal.String(),
	}, nil
}
