package msafe

import (
	"bytes"
	"encoding/hex"
	"strings"

	"github.com/momentum-safe/msafe/errors"
)

// AddressLength is the size of an account address and of an object ID.
const AddressLength = 20

// Address is a ledger account address. Object IDs share the same format and
// are represented by this type as well.
//
// It will be of size AddressLength
type Address []byte

// ParseAddress decodes a hex encoded address. Both the 0x prefixed and the
// bare form are accepted, in any letter case.
func ParseAddress(s string) (Address, error) {
	raw, err := hex.DecodeString(strip0x(strings.TrimSpace(s)))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidAddress, "%q: %s", s, err)
	}
	a := Address(raw)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// MustParseAddress is like ParseAddress but panics on invalid input. Use it
// only for constant values.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// ParseAddresses decodes a comma separated list of addresses.
func ParseAddresses(s string) ([]Address, error) {
	var res []Address
	for i, chunk := range strings.Split(s, ",") {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		a, err := ParseAddress(chunk)
		if err != nil {
			return nil, errors.Wrapf(err, "address #%d", i)
		}
		res = append(res, a)
	}
	return res, nil
}

// Equals checks if two addresses are the same
func (a Address) Equals(b Address) bool {
	return bytes.Equal(a, b)
}

// String returns the 0x prefixed lowercase hex representation.
func (a Address) String() string {
	if len(a) == 0 {
		return "(nil)"
	}
	return "0x" + hex.EncodeToString(a)
}

// Validate returns an error if the address is not the valid size
func (a Address) Validate() error {
	if len(a) != AddressLength {
		return errors.Wrapf(errors.ErrInvalidAddress, "want %d bytes, got %d", AddressLength, len(a))
	}
	return nil
}

// MarshalJSON provides a hex representation for JSON, to override the
// standard base64 []byte encoding.
func (a Address) MarshalJSON() ([]byte, error) {
	if len(a) == 0 {
		return []byte(`""`), nil
	}
	return marshalString(a.String())
}

// UnmarshalJSON parses JSON in hex representation, to override the standard
// base64 []byte encoding.
func (a *Address) UnmarshalJSON(src []byte) error {
	s, err := unmarshalString(src)
	if err != nil {
		return err
	}
	if s == "" {
		*a = nil
		return nil
	}
	addr, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// Set implements flag.Value interface.
func (a *Address) Set(s string) error {
	addr, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

func strip0x(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}
