package msafe

import (
	"encoding/binary"
	"encoding/hex"
	"math"
	"strings"

	"github.com/momentum-safe/msafe/errors"
)

// TxnIDLength is the size of a transaction ID: the creator address followed
// by a little endian signed 64 bit nonce.
const TxnIDLength = AddressLength + 8

// TxnID identifies a pending transaction of a wallet. It is the key of the
// wallet's pending transactions table.
type TxnID []byte

// MakeTxnID returns the ID of a transaction proposed by the creator with the
// given nonce. Creator is a hex encoded address, with or without the 0x
// prefix.
func MakeTxnID(creator string, nonce uint64) (TxnID, error) {
	addr, err := ParseAddress(creator)
	if err != nil {
		return nil, err
	}
	return NewTxnID(addr, nonce)
}

// NewTxnID returns the ID of a transaction proposed by the creator with the
// given nonce.
func NewTxnID(creator Address, nonce uint64) (TxnID, error) {
	if err := creator.Validate(); err != nil {
		return nil, errors.Wrap(err, "creator")
	}
	if nonce > math.MaxInt64 {
		return nil, errors.Wrapf(errors.ErrNonceOutOfRange, "%d", nonce)
	}
	id := make(TxnID, TxnIDLength)
	copy(id, creator)
	binary.LittleEndian.PutUint64(id[AddressLength:], nonce)
	return id, nil
}

// ParseTxnID splits a raw transaction ID into the creator address and the
// nonce.
func ParseTxnID(raw []byte) (Address, int64, error) {
	if len(raw) != TxnIDLength {
		return nil, 0, errors.Wrapf(errors.ErrMalformedID, "want %d bytes, got %d", TxnIDLength, len(raw))
	}
	creator := make(Address, AddressLength)
	copy(creator, raw[:AddressLength])
	nonce := int64(binary.LittleEndian.Uint64(raw[AddressLength:]))
	return creator, nonce, nil
}

// ParseTxnIDString decodes the hex representation of a transaction ID as
// returned by the TxnID.String method.
func ParseTxnIDString(s string) (TxnID, error) {
	raw, err := hex.DecodeString(strip0x(strings.TrimSpace(s)))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrMalformedID, "%q: %s", s, err)
	}
	id := TxnID(raw)
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return id, nil
}

// Validate returns an error if the ID is not of TxnIDLength size.
func (id TxnID) Validate() error {
	_, _, err := ParseTxnID(id)
	return err
}

// Creator returns the address of the account that proposed the
// transaction. It returns nil for a malformed ID.
func (id TxnID) Creator() Address {
	creator, _, err := ParseTxnID(id)
	if err != nil {
		return nil
	}
	return creator
}

// Nonce returns the nonce part of the ID. It returns -1 for a malformed ID.
func (id TxnID) Nonce() int64 {
	_, nonce, err := ParseTxnID(id)
	if err != nil {
		return -1
	}
	return nonce
}

// Equals checks if two IDs are the same
func (id TxnID) Equals(other TxnID) bool {
	return Address(id).Equals(Address(other))
}

// String returns the 0x prefixed lowercase hex representation.
func (id TxnID) String() string {
	return "0x" + hex.EncodeToString(id)
}

func (id TxnID) MarshalJSON() ([]byte, error) {
	return marshalString(id.String())
}

func (id *TxnID) UnmarshalJSON(src []byte) error {
	s, err := unmarshalString(src)
	if err != nil {
		return err
	}
	parsed, err := ParseTxnIDString(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Set implements flag.Value interface.
func (id *TxnID) Set(s string) error {
	parsed, err := ParseTxnIDString(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
