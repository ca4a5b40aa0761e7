package vesting

import (
	"github.com/iov-one/mig/errors"
)

// Vesting reserves 220~229 error codes
var (
	ErrScheduleExists       = errors.RegisterUnder(errors.ErrInvalidState, 220, "schedule exists")
	ErrNoAmountWithdrawable = errors.RegisterUnder(errors.ErrInvalidState, 221, "no amount withdrawable")
)
