package feetoken

import (
	"github.com/iov-one/mig/errors"
)

// Fee token reserves 200~209 error codes
var (
	ErrInsufficientBalance   = errors.RegisterUnder(errors.ErrInsufficientFunds, 200, "insufficient balance")
	ErrInsufficientAllowance = errors.RegisterUnder(errors.ErrInsufficientFunds, 201, "insufficient allowance")
	ErrPaused                = errors.RegisterUnder(errors.ErrInvalidState, 202, "paused")
	ErrInvalidMonth          = errors.RegisterUnder(errors.ErrInvalidSchedule, 203, "invalid month")
	ErrNotAdministrator      = errors.RegisterUnder(errors.ErrUnauthorized, 204, "not administrator")
)
