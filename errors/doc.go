/*
Package errors implements the error taxonomy shared by all ledgers.

Reuse the root errors declared in this package whenever possible. A ledger
that needs a more specific failure registers it with RegisterUnder, so that
callers can test both for the specific error and for its category:

	ErrNotOwner = errors.RegisterUnder(errors.ErrUnauthorized, 200, "not an owner")

	errors.ErrUnauthorized.Is(err) // true
	ErrNotOwner.Is(err)            // true

Always create instances with Errxxx.New, Errxxx.Newf or errors.Wrap at the
point of failure, so that a stack trace is attached. Never declare a global
`var ErrFoo = errors.ErrInvalidState.New("foo")`, the stack trace would be
useless.

Once you have an error, you can use `fmt.Printf/Sprintf` to get more context
	%s is just the error message
	%+v is the full stack trace
*/
package errors
