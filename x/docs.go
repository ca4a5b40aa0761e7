/*
Package x contains the ledger extensions and what they share.

Extensions implement common functionality (Handler, Initializer,
controllers) and are combined together by the app package into a
single state machine.

Every extension authenticates callers through the Authenticator
interface defined here, so it never hard-codes how signatures are
verified. Messages carry the acting address explicitly and handlers
check it with HasAddress.

Note that exported types will be prefixed by the package, so follow
standard go naming conventions and avoid stutter. Use eg.
`feetoken.TransferMsg` in place of `feetoken.FeeTokenTransferMsg`.
*/
package x
