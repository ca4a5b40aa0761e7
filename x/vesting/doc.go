/*
Package vesting implements linear vesting distributors.

A distributor releases tokens of a single ticker over a fixed window.
Anyone holding the tokens can fund a schedule for a beneficiary. The
funds are pulled with an allowance granted to the distributor address, so
the schedule total is what the distributor received after the transfer
fee.

Nothing is vested before the cliff. Between the cliff and the end the
vested amount grows linearly from the window start, and at the end the
whole total is vested. A beneficiary draws down everything vested and not
drawn yet. The draw down transfer is charged the fee again, the schedule
accounts for the gross amount that left the distributor.
*/
package vesting
