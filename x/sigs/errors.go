package sigs

import (
	"github.com/iov-one/mig/errors"
)

// Signatures reserve 240~249 error codes
var (
	ErrInvalidSequence  = errors.RegisterUnder(errors.ErrUnauthorized, 240, "invalid sequence")
	ErrMissingSignature = errors.RegisterUnder(errors.ErrUnauthorized, 241, "missing signature")
)
