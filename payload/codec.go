package payload

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/momentum-safe/msafe"
	"github.com/momentum-safe/msafe/bcs"
	"github.com/momentum-safe/msafe/errors"
)

// Type is the discriminant of a payload, as stored in the transaction
// object on the ledger.
type Type uint8

const (
	TypeNone          Type = 0
	TypeAssetWithdraw Type = 1
	TypeCoinWithdraw  Type = 2
	TypeOwnerChange   Type = 3
)

var typeNames = map[Type]string{
	TypeNone:          "PayloadNone",
	TypeAssetWithdraw: "PayloadAssetWithdraw",
	TypeCoinWithdraw:  "PayloadCoinWithdraw",
	TypeOwnerChange:   "PayloadOwnerChange",
}

// String returns the name of the payload type as used by the contract.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("PayloadUnknown(%d)", uint8(t))
}

// ParseType returns the type for the given name or numeric tag. Name
// matching is case insensitive and the "Payload" prefix is optional.
func ParseType(s string) (Type, error) {
	if n, err := strconv.ParseUint(s, 10, 8); err == nil {
		return Type(n), nil
	}
	want := strings.TrimPrefix(strings.ToLower(s), "payload")
	for t, name := range typeNames {
		if strings.TrimPrefix(strings.ToLower(name), "payload") == want {
			return t, nil
		}
	}
	return 0, errors.Wrapf(errors.ErrSchema, "unknown payload type %q", s)
}

// Payload is the action data carried by a proposed transaction.
type Payload interface {
	// Type returns the discriminant under which the payload is stored.
	Type() Type
	// Validate returns an error if the payload fields cannot be
	// represented by the schema, for example an address of a wrong width.
	// Business rules are not checked.
	Validate() error
	MarshalBCS(*bcs.Encoder) error
	UnmarshalBCS(*bcs.Decoder) error
}

// Schema declares how a payload of a given type is built.
type Schema struct {
	Type Type
	// New returns a zero value payload that can be decoded into.
	New func() Payload
}

// Codec encodes and decodes payloads according to an immutable set of
// schemas. A Codec is safe for concurrent use.
type Codec struct {
	schemas map[Type]Schema
}

// NewCodec returns a codec for the given schemas. Each type can be declared
// only once.
func NewCodec(schemas ...Schema) (*Codec, error) {
	c := &Codec{schemas: make(map[Type]Schema, len(schemas))}
	for _, s := range schemas {
		if s.New == nil {
			return nil, errors.Wrapf(errors.ErrSchema, "%s: no constructor", s.Type)
		}
		if _, ok := c.schemas[s.Type]; ok {
			return nil, errors.Wrapf(errors.ErrSchema, "%s: already declared", s.Type)
		}
		c.schemas[s.Type] = s
	}
	return c, nil
}

// MustNewCodec is like NewCodec but panics on error.
func MustNewCodec(schemas ...Schema) *Codec {
	c, err := NewCodec(schemas...)
	if err != nil {
		panic(err)
	}
	return c
}

// Default is the codec of all payload types supported by the msafe
// contract. TypeNone is a placeholder and is not declared.
var Default = MustNewCodec(
	Schema{Type: TypeAssetWithdraw, New: func() Payload { return &AssetWithdraw{} }},
	Schema{Type: TypeCoinWithdraw, New: func() Payload { return &CoinWithdraw{} }},
	Schema{Type: TypeOwnerChange, New: func() Payload { return &OwnerChange{} }},
)

// Types returns all declared types in ascending order.
func (c *Codec) Types() []Type {
	types := make([]Type, 0, len(c.schemas))
	for t := range c.schemas {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Encode returns the canonical serialization of the payload.
func (c *Codec) Encode(p Payload) ([]byte, error) {
	if p == nil {
		return nil, errors.ErrSchema.New("nil payload")
	}
	if _, ok := c.schemas[p.Type()]; !ok {
		return nil, errors.ErrSchema.Newf("%s: not declared", p.Type())
	}
	if err := p.Validate(); err != nil {
		return nil, errors.Wrap(err, p.Type().String())
	}
	e := bcs.NewEncoder()
	if err := p.MarshalBCS(e); err != nil {
		return nil, errors.Wrap(err, p.Type().String())
	}
	return e.Bytes(), nil
}

// Decode returns the payload of the given type serialized in raw. All bytes
// must be consumed, so that encoding the result produces raw again. Any
// payload stored by the contract decodes, including one the contract will
// refuse to execute.
func (c *Codec) Decode(t Type, raw []byte) (Payload, error) {
	s, ok := c.schemas[t]
	if !ok {
		return nil, errors.ErrSchema.Newf("%s: not declared", t)
	}
	p := s.New()
	d := bcs.NewDecoder(raw)
	if err := p.UnmarshalBCS(d); err != nil {
		return nil, errors.Wrap(err, t.String())
	}
	if err := d.Finish(); err != nil {
		return nil, errors.Wrap(err, t.String())
	}
	if err := p.Validate(); err != nil {
		return nil, errors.Wrap(err, t.String())
	}
	return p, nil
}

// EncodeHex returns the 0x prefixed hex form of the serialized payload, as
// passed in contract invocation arguments.
func (c *Codec) EncodeHex(p Payload) (string, error) {
	raw, err := c.Encode(p)
	if err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(raw), nil
}

// DecodeString decodes a payload serialized either as 0x prefixed hex or as
// base64, the form returned when reading ledger storage.
func (c *Codec) DecodeString(t Type, s string) (Payload, error) {
	raw, err := msafe.DecodeBytes(s)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrSchema, "%s: %s", t, err)
	}
	return c.Decode(t, raw)
}

// Encode serializes the payload using the Default codec.
func Encode(p Payload) ([]byte, error) {
	return Default.Encode(p)
}

// Decode deserializes the payload using the Default codec.
func Decode(t Type, raw []byte) (Payload, error) {
	return Default.Decode(t, raw)
}
