package app

import (
	"fmt"
	"regexp"

	"github.com/iov-one/mig"
	"github.com/iov-one/mig/errors"
)

// isPath is the RegExp to ensure the routes make sense
var isPath = regexp.MustCompile(`^[a-zA-Z0-9_]+/[a-zA-Z0-9_]+$`).MatchString

// Router allows us to register many handlers with different
// paths and then direct each message to the proper handler.
//
// Minimal interface modeled after net/http.ServeMux
type Router struct {
	routes map[string]mig.Handler
}

var _ mig.Registry = (*Router)(nil)
var _ mig.Handler = (*Router)(nil)

// NewRouter returns a new empty router instance
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]mig.Handler),
	}
}

// Handle adds a new Handler for the path of the given message.
// Panics if the path is invalid or already registered.
func (r *Router) Handle(m mig.Msg, h mig.Handler) {
	path := m.Path()
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path: %q", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %s", path))
	}
	r.routes[path] = h
}

// Handler returns the registered Handler for this path. A handler that
// always fails with ErrNotFound is returned for unknown paths.
func (r *Router) Handler(path string) mig.Handler {
	if h, ok := r.routes[path]; ok {
		return h
	}
	return notFoundHandler(path)
}

// Paths returns the number of registered routes.
func (r *Router) Paths() int {
	return len(r.routes)
}

// Deliver dispatches the message to its handler.
func (r *Router) Deliver(ctx mig.Context, db mig.KVStore, m mig.Msg) (*mig.DeliverResult, error) {
	return r.Handler(m.Path()).Deliver(ctx, db, m)
}

func notFoundHandler(path string) mig.Handler {
	return mig.HandlerFunc(func(mig.Context, mig.KVStore, mig.Msg) (*mig.DeliverResult, error) {
		return nil, errors.Wrapf(errors.ErrNotFound, "no handler for path %q", path)
	})
}
