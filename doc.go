/*
Package msafe defines the primitives shared by the momentum safe client:
addresses, transaction IDs, JSON forms of Move values and the capabilities
used to talk to the ledger.

The ledger is reached only through two interfaces. ContractInvoker submits
entry point calls of the msafe contract and ObjectReader reads object state.
The client package implements both on top of the node JSON-RPC API and the
msafetest package provides an in-memory implementation for tests.

A transaction ID binds a proposal to its creator and nonce:

	creator (20 bytes) | nonce (8 bytes, little endian, signed)

It is the key of the wallet's pending transactions table and the handle
passed to confirm and execute commands.
*/
package msafe
