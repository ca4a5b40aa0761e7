package staking

import (
	"github.com/iov-one/mig/errors"
)

// Staking reserves 230~239 error codes
var (
	ErrUnknownDeposit = errors.RegisterUnder(errors.ErrInvalidState, 230, "unknown deposit")
	ErrAlreadyClaimed = errors.RegisterUnder(errors.ErrInvalidState, 231, "already claimed")
	ErrPoolExhausted  = errors.RegisterUnder(errors.ErrInsufficientFunds, 232, "reward pool exhausted")
)
