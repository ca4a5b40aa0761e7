/*
Package coin provides the unsigned token amount used by every ledger.

Token supplies with 18 decimals do not fit into 64 bits, so amounts are
arbitrary precision integers. All divisions round down.
*/
package coin

import (
	"encoding/json"
	"math/big"
	"regexp"

	sdkmath "cosmossdk.io/math"

	"github.com/iov-one/mig/errors"
)

// IsTicker is the RegExp to ensure valid token tickers
var IsTicker = regexp.MustCompile(`^[A-Z][A-Z0-9]{2,7}$`).MatchString

// Amount is a non negative integer amount of the smallest token unit.
// The zero value is a valid zero amount.
type Amount struct {
	v sdkmath.Uint
}

// NewAmount returns an amount of given units.
func NewAmount(units uint64) Amount {
	return Amount{v: sdkmath.NewUint(units)}
}

// Zero returns an empty amount.
func Zero() Amount {
	return Amount{v: sdkmath.ZeroUint()}
}

// Tokens returns whole * 10^decimals, ie. Tokens(1000, 18) is a thousand
// tokens of an 18 decimal token.
func Tokens(whole uint64, decimals uint32) Amount {
	exp := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	total := new(big.Int).Mul(new(big.Int).SetUint64(whole), exp)
	return Amount{v: sdkmath.NewUintFromBigInt(total)}
}

// ParseAmount reads a decimal representation of an amount.
func ParseAmount(s string) (Amount, error) {
	v, err := sdkmath.ParseUint(s)
	if err != nil {
		return Amount{}, errors.Wrapf(errors.ErrInvalidAmount, "%q: %s", s, err)
	}
	return Amount{v: v}, nil
}

// MustParseAmount is like ParseAmount but panics on invalid input.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) val() sdkmath.Uint {
	if a.v == (sdkmath.Uint{}) {
		return sdkmath.ZeroUint()
	}
	return a.v
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool {
	return a.val().IsZero()
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{v: a.val().Add(b.val())}
}

// Sub returns a - b. It fails if b is greater than a.
func (a Amount) Sub(b Amount) (Amount, error) {
	if a.LT(b) {
		return Amount{}, errors.Wrapf(errors.ErrInvalidAmount, "%s - %s is negative", a, b)
	}
	return Amount{v: a.val().Sub(b.val())}, nil
}

// MulDiv returns floor(a * num / den). den must not be zero.
func (a Amount) MulDiv(num, den uint64) Amount {
	if den == 0 {
		panic("division by zero")
	}
	return Amount{v: a.val().MulUint64(num).QuoUint64(den)}
}

// Min returns the lower of two amounts.
func Min(a, b Amount) Amount {
	if a.LT(b) {
		return a
	}
	return b
}

// Cmp returns -1, 0 or 1 if a is less than, equal or greater than b.
func (a Amount) Cmp(b Amount) int {
	return a.val().BigInt().Cmp(b.val().BigInt())
}

// LT returns true if a < b.
func (a Amount) LT(b Amount) bool {
	return a.val().LT(b.val())
}

// GTE returns true if a >= b.
func (a Amount) GTE(b Amount) bool {
	return a.val().GTE(b.val())
}

// Equals returns true if both amounts are the same.
func (a Amount) Equals(b Amount) bool {
	return a.val().Equal(b.val())
}

// String returns the decimal representation.
func (a Amount) String() string {
	return a.val().String()
}

// MarshalAmino encodes the amount as a decimal string.
func (a Amount) MarshalAmino() (string, error) {
	return a.String(), nil
}

// UnmarshalAmino decodes an amount encoded with MarshalAmino.
func (a *Amount) UnmarshalAmino(s string) error {
	if s == "" {
		*a = Zero()
		return nil
	}
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// MarshalJSON encodes the amount as a decimal string, numbers above 2^53
// are not safe in JSON.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts both a decimal string and a plain number.
func (a *Amount) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return errors.Wrapf(errors.ErrInvalidAmount, "cannot decode %s", raw)
		}
		s = n.String()
	}
	return a.UnmarshalAmino(s)
}
