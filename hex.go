package msafe

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/momentum-safe/msafe/errors"
)

func marshalString(s string) ([]byte, error) {
	return json.Marshal(s)
}

func unmarshalString(src []byte) (string, error) {
	var s string
	if err := json.Unmarshal(src, &s); err != nil {
		return "", errors.Wrap(errors.ErrInput, "parse string")
	}
	return s, nil
}

// DecodeBytes decodes a byte string as it is transmitted to or returned by
// the ledger. A 0x prefixed value is hex encoded, anything else is standard
// base64.
func DecodeBytes(s string) ([]byte, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		raw, err := hex.DecodeString(s[2:])
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "hex: %s", err)
		}
		return raw, nil
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "base64: %s", err)
	}
	return raw, nil
}

// Bytes is a Move vector<u8> value. It is serialized to JSON using base64,
// the encoding the ledger uses when returning object fields. Deserialization
// accepts base64, 0x prefixed hex and an array of numbers.
type Bytes []byte

func (b Bytes) MarshalJSON() ([]byte, error) {
	return marshalString(base64.StdEncoding.EncodeToString(b))
}

func (b *Bytes) UnmarshalJSON(src []byte) error {
	if string(src) == "null" {
		*b = nil
		return nil
	}
	if len(src) > 0 && src[0] == '[' {
		var nums []uint8
		if err := json.Unmarshal(src, &nums); err != nil {
			return errors.Wrap(errors.ErrInput, "byte array")
		}
		*b = nums
		return nil
	}
	s, err := unmarshalString(src)
	if err != nil {
		return err
	}
	raw, err := DecodeBytes(s)
	if err != nil {
		return err
	}
	*b = raw
	return nil
}

// Hex returns the 0x prefixed hex representation.
func (b Bytes) Hex() string {
	return "0x" + hex.EncodeToString(b)
}

// U64 is a Move u64 value. The ledger serializes it either as a JSON number
// or as a decimal string, both forms are accepted. It is always serialized as
// a string.
type U64 uint64

func (u U64) MarshalJSON() ([]byte, error) {
	return marshalString(strconv.FormatUint(uint64(u), 10))
}

func (u *U64) UnmarshalJSON(src []byte) error {
	raw := string(src)
	if len(raw) > 0 && raw[0] == '"' {
		s, err := unmarshalString(src)
		if err != nil {
			return err
		}
		raw = s
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "u64 %q", raw)
	}
	*u = U64(n)
	return nil
}
