/*
Package client connects the wallet to a ledger node.

JSONRPC speaks JSON-RPC 2.0 over HTTP. Client uses it to implement
msafe.ObjectReader and Contract uses it to implement msafe.ContractInvoker:
a call is first turned into transaction bytes by the node, signed locally
and then submitted for execution. Only the effects of a locally executed
transaction are reported back.
*/
package client
