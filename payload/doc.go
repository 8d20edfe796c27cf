/*
Package payload implements the codec of the action data carried by msafe
transactions.

Each payload type has a fixed schema and is serialized with the canonical
binary encoding expected by the contract:

	AssetWithdraw  to address | asset_id address
	CoinWithdraw   to address | coin_type vector<u8> | amount u64
	OwnerChange    owners vector<address> | threshold u64

The set of supported types is declared once, when a Codec is built. Default
holds all types known by the contract.
*/
package payload
