/*
Package mig defines all common interfaces to tie together
the ledgers of the governed token economy, as well as
implementations of some of the simpler components
(when interfaces would be too much overhead).

Four ledgers are built on top of it, each one an extension
under x/:

  feetoken  balances, allowances and a time decaying transfer fee
  multisig  M-of-N governor gating privileged calls
  vesting   linear release of tokens to beneficiaries
  staking   time weighted rewards on deposited principal

All of them are serially ordered state machines operating on a
KVStore. The app package guarantees that every message is
applied atomically: it either succeeds as a whole or leaves
no trace in the store.
*/
package mig
