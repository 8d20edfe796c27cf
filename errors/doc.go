/*
Package errors implements the error kinds used by the msafe client.

Reuse the kinds declared in this package. Each kind carries a unique code
(Register panics on reuse) so the command line tool can distinguish failures
without string matching.

Create errors with ErrXyz.New, ErrXyz.Newf or Wrap(err, "...") at the point
of creation so that a stack trace is attached. Only the innermost wrap
records the stack.

	%s  is just the error message
	%+v is the message with the full stack trace

Test an error kind with ErrXyz.Is(err). The standard library errors.Is works
as well because wrapped errors implement Unwrap.
*/
package errors
