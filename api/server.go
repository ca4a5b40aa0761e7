/*
Package api exposes the application over HTTP.

Transactions are submitted as JSON encoded app.Tx documents. All read
endpoints answer from the latest delivered state, which may not be
committed yet.
*/
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/mig"
	"github.com/iov-one/mig/app"
	"github.com/iov-one/mig/errors"
	"github.com/iov-one/mig/metrics"
	"github.com/iov-one/mig/orm"
)

const (
	// MaxTxSize is the largest accepted transaction body.
	MaxTxSize = 64 << 10

	RequestTimeout     = 5 * time.Second
	RequestIdleTimeout = 10 * time.Second
)

// Server serves the HTTP API of a single application.
type Server struct {
	app    *app.Application
	logger log.Logger
}

// NewServer returns a server reading from and delivering to given
// application.
func NewServer(a *app.Application, logger log.Logger) *Server {
	return &Server{app: a, logger: logger}
}

// Router returns the HTTP handler with all routes registered.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/status", s.status)
	r.Post("/tx", s.submitTx)
	r.Get("/accounts/{addr}/nonce", s.nonce)

	r.Route("/tokens/{ticker}", func(r chi.Router) {
		r.Get("/", s.token)
		r.Get("/balances/{addr}", s.balance)
		r.Get("/allowances/{owner}/{spender}", s.allowance)
	})
	r.Route("/governors/{id}", func(r chi.Router) {
		r.Get("/", s.governor)
		r.Get("/count", s.transactionCount)
		r.Get("/transactions/{tx}", s.transaction)
	})
	r.Route("/vesting/{id}", func(r chi.Router) {
		r.Get("/", s.distributor)
		r.Get("/{beneficiary}", s.schedule)
	})
	r.Route("/staking/{id}", func(r chi.Router) {
		r.Get("/", s.pool)
		r.Get("/deposits/{dep}", s.deposit)
	})

	r.Handle("/metrics", metrics.Handler())
	return r
}

// HTTPServer wraps the router into a server listening on addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  RequestTimeout,
		WriteTimeout: RequestTimeout,
		IdleTimeout:  RequestIdleTimeout,
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

type statusResponse struct {
	ChainID string `json:"chain_id"`
	Version int64  `json:"version"`
	Hash    []byte `json:"hash"`
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	info, err := s.app.CommitInfo()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		ChainID: s.app.ChainID(),
		Version: info.Version,
		Hash:    info.Hash,
	})
}

type txResponse struct {
	Data []byte `json:"data"`
	Log  string `json:"log"`
}

func (s *Server) submitTx(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxTxSize+1))
	if err != nil {
		s.writeError(w, errors.Wrapf(errors.ErrInvalidInput, "read body: %s", err))
		return
	}
	if len(body) > MaxTxSize {
		s.writeError(w, errors.Wrap(errors.ErrInvalidInput, "transaction too big"))
		return
	}
	tx, err := app.UnmarshalTx(body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.app.Deliver(r.Context(), tx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txResponse{Data: res.Data, Log: res.Log})
}

// view runs fn against the latest state and writes its result.
func (s *Server) view(w http.ResponseWriter, r *http.Request, fn func(ctx mig.Context, db mig.ReadOnlyKVStore) (interface{}, error)) {
	var out interface{}
	err := s.app.View(r.Context(), func(ctx mig.Context, db mig.ReadOnlyKVStore) error {
		var err error
		out, err = fn(ctx, db)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  uint32 `json:"code"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := httpCode(err)
	if code == http.StatusInternalServerError {
		s.logger.Error("http request failed", "err", err)
	}
	writeJSON(w, code, errorResponse{Error: err.Error(), Code: errors.Code(err)})
}

// httpCode maps the error taxonomy onto HTTP status codes.
func httpCode(err error) int {
	switch {
	case errors.ErrNotFound.Is(err):
		return http.StatusNotFound
	case errors.ErrInvalidInput.Is(err),
		errors.ErrInvalidMsg.Is(err),
		errors.ErrInvalidAmount.Is(err),
		errors.ErrInvalidType.Is(err):
		return http.StatusBadRequest
	case errors.ErrUnauthorized.Is(err):
		return http.StatusForbidden
	case errors.ErrInvalidState.Is(err),
		errors.ErrInsufficientFunds.Is(err),
		errors.ErrInvalidSchedule.Is(err),
		errors.ErrDuplicate.Is(err),
		errors.ErrOverflow.Is(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func addressParam(r *http.Request, name string) (mig.Address, error) {
	a, err := mig.ParseAddress(chi.URLParam(r, name))
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	return a, nil
}

// sequenceParam reads a numeric instance id and returns its store key.
func sequenceParam(r *http.Request, name string) ([]byte, error) {
	n, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || n < 1 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "%s must be a positive number", name)
	}
	return orm.EncodeSequence(n), nil
}

func uintParam(r *http.Request, name string) (uint64, error) {
	n, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInvalidInput, "%s must be a number", name)
	}
	return n, nil
}
