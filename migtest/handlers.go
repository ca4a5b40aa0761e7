package migtest

import (
	"github.com/iov-one/mig"
	"github.com/iov-one/mig/errors"
)

// Handler is a mig.Handler that counts calls and returns preconfigured
// values. Set Fn to run custom logic, ie. write to the store.
type Handler struct {
	deliverCall   int
	DeliverResult mig.DeliverResult
	DeliverErr    error
	Fn            func(ctx mig.Context, db mig.KVStore, msg mig.Msg) error
}

var _ mig.Handler = (*Handler)(nil)

func (h *Handler) Deliver(ctx mig.Context, db mig.KVStore, msg mig.Msg) (*mig.DeliverResult, error) {
	h.deliverCall++
	if h.Fn != nil {
		if err := h.Fn(ctx, db, msg); err != nil {
			return nil, err
		}
	}
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

// CallCount returns how many times Deliver was called.
func (h *Handler) CallCount() int {
	return h.deliverCall
}

// Msg is a mig.Msg used to exercise routing.
type Msg struct {
	RoutePath string
	Err       error
	Target    mig.Address
}

var _ mig.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Validate() error {
	return m.Err
}

// Contract returns the Target address.
func (m *Msg) Contract() mig.Address {
	return m.Target
}

// Router is a minimal mig.Registry and mig.Handler that dispatches by
// message path. Extension tests use it where the application router
// would create an import cycle.
type Router map[string]mig.Handler

var _ mig.Registry = Router(nil)
var _ mig.Handler = Router(nil)

// NewRouter returns an empty router.
func NewRouter() Router {
	return make(Router)
}

// Handle registers a handler for the path of given message.
func (r Router) Handle(m mig.Msg, h mig.Handler) {
	r[m.Path()] = h
}

// Deliver routes the message to its handler.
func (r Router) Deliver(ctx mig.Context, db mig.KVStore, m mig.Msg) (*mig.DeliverResult, error) {
	h, ok := r[m.Path()]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "no handler for %q", m.Path())
	}
	return h.Deliver(ctx, db, m)
}
