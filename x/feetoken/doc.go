/*
Package feetoken implements a fungible token ledger with a time decaying
transfer fee.

Every transfer burns floor(amount * bps / 10000) of the transferred amount,
where bps is the fee rate of the current month. The month index is counted
from the token creation, starting at 1. The first month uses the base rate,
every later month the decayed rate, unless the administrator installed an
override for the current month.

The whole supply is minted to the administrator on creation and can only
decrease afterwards. Sum of all balances plus the burned amount always
equals the initial supply.
*/
package feetoken
