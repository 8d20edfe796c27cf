/*
Package wallet implements the client side of the momentum safe multisig
protocol.

A wallet is an object owned by the contract that holds assets on behalf of
a set of owners. Any transfer out of the wallet, and any change of its
owners, is a transaction that goes through three steps:

	propose   an owner stores the transaction under the ID creator|nonce
	confirm   each owner adds a confirmation with a separate call
	execute   once confirmations reach the threshold, the transaction runs

The Client submits each step as a single contract invocation. Execution
reads the pending transaction first, because the entry point and its type
argument depend on the payload type.

The PendingReader reads the wallet transaction book. Pending transactions
are stored in a table whose entries are objects owned by the table object.
*/
package wallet
