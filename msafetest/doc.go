/*
Package msafetest provides helpers for testing code that talks to the msafe
contract.

Ledger is an in-memory ledger with the contract deployed. It keeps objects
in an ordered tree, renders them in the JSON form returned by the node and
interprets contract invocations the way the contract does: owner checks,
nonce sequencing, confirmation threshold and asset transfers. A failed
precondition produces an invocation result with a failure status, as the
node reports a Move abort.
*/
package msafetest
