package mig

import (
	"encoding/json"

	"github.com/iov-one/mig/errors"
)

// Msg is a single state transition request. The path is used by the router
// to find a handler.
type Msg interface {
	// Path returns the routing path for this message.
	Path() string

	// Validate performs a sanity check of the message content. It does
	// not access the store.
	Validate() error
}

// Handler is a core engine that can process a few specific messages
// This could represent "token transfer", or "confirm a governor transaction"
type Handler interface {
	Deliver(ctx Context, store KVStore, msg Msg) (*DeliverResult, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx Context, store KVStore, msg Msg) (*DeliverResult, error)

// Deliver calls fn.
func (fn HandlerFunc) Deliver(ctx Context, store KVStore, msg Msg) (*DeliverResult, error) {
	return fn(ctx, store, msg)
}

// DeliverResult captures any non-error result of a delivered message.
type DeliverResult struct {
	// Data is a machine readable result, ie. the id of a created entity.
	Data []byte
	// Log is a human readable summary.
	Log string
}

// Registry is an interface to register your handler,
// the setup side of a Router
type Registry interface {
	Handle(m Msg, h Handler)
}

// Options are the app options
// Each extension can look up it's key and parse the json as desired
type Options map[string]json.RawMessage

// ReadOptions reads the values stored under a given key,
// and parses the json into the given obj.
// Returns an error if it cannot parse.
// Noop and no error if key is missing
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg, obj); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "option %q: %s", key, err)
	}
	return nil
}

// Initializer implementations are used to initialize
// extensions from genesis file contents
type Initializer interface {
	FromGenesis(ctx Context, opts Options, db KVStore) error
}
