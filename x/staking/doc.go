/*
Package staking implements time weighted staking pools.

A pool accepts deposits of the stake token and pays rewards in the reward
token. Rewards accrue linearly with the deposit principal and the time
since staking, at a yearly rate in basis points. The pool must be funded
with reward tokens by plain transfers to its address, and no reward ever
exceeds what the pool holds.

Claiming returns the principal and the reward at once and closes the
deposit. Deposit ids are never reused.
*/
package staking
