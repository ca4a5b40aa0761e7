package multisig

import (
	"github.com/iov-one/mig/errors"
)

// Governor reserves 210~219 error codes
var (
	ErrNotOwner                 = errors.RegisterUnder(errors.ErrUnauthorized, 210, "not owner")
	ErrUnknownTransaction       = errors.RegisterUnder(errors.ErrInvalidState, 211, "unknown transaction")
	ErrAlreadyConfirmedByCaller = errors.RegisterUnder(errors.ErrInvalidState, 212, "already confirmed by caller")
	ErrAlreadyExecuted          = errors.RegisterUnder(errors.ErrInvalidState, 213, "already executed")
)
