/*
Package multisig implements an M-of-N transaction governor.

A governor has a fixed set of owners and a number of required
confirmations. Owners submit transactions that are confirmed by the
submitter right away. Once enough owners confirmed, the transaction is
executed as part of the same operation: the value is moved from the
governor to the destination and the payload message is routed with the
governor as the only authenticated signer.

A governor installed as a token administrator gates all privileged token
operations behind the owners approval.
*/
package multisig
