package server

import (
	"io"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/mig/errors"
)

// NewLogger returns a logger writing to w that drops entries below the
// given level (debug, info, error or none).
func NewLogger(w io.Writer, level string) (log.Logger, error) {
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "%s: %s", KeyLogLevel, err)
	}
	logger := log.NewTMLogger(log.NewSyncWriter(w))
	return log.NewFilter(logger, opt).With("module", "migd"), nil
}
