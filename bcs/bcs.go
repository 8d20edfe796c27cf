/*
Package bcs implements the subset of the Binary Canonical Serialization
format that is needed to build msafe contract payloads.

	u64            8 bytes, little endian
	address        raw bytes of a fixed width
	vector<u8>     ULEB128 length followed by the bytes
	vector<T>      ULEB128 element count followed by the elements

The decoder is strict: truncated input, non canonical length prefixes and
unconsumed trailing bytes are rejected, so that any successfully decoded
value encodes back to the very same bytes.
*/
package bcs

import (
	"encoding/binary"
	"math"

	"github.com/momentum-safe/msafe/errors"
)

// MaxSequenceLength is the maximum length of a vector accepted by the
// format.
const MaxSequenceLength = math.MaxInt32

// Encoder accumulates the serialized form of values.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an empty encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Bytes returns the serialized data.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// WriteU64 appends a little endian unsigned 64 bit integer.
func (e *Encoder) WriteU64(n uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], n)
	e.buf = append(e.buf, b[:]...)
}

// WriteU8 appends a single byte.
func (e *Encoder) WriteU8(n uint8) {
	e.buf = append(e.buf, n)
}

// WriteULEB128 appends a sequence length prefix.
func (e *Encoder) WriteULEB128(n uint64) {
	var b [binary.MaxVarintLen64]byte
	size := binary.PutUvarint(b[:], n)
	e.buf = append(e.buf, b[:size]...)
}

// WriteFixed appends raw bytes without a length prefix. It is used for
// values with a width known from the schema, like addresses.
func (e *Encoder) WriteFixed(b []byte, width int) error {
	if len(b) != width {
		return errors.Wrapf(errors.ErrSchema, "fixed width value: want %d bytes, got %d", width, len(b))
	}
	e.buf = append(e.buf, b...)
	return nil
}

// WriteBytes appends a length prefixed byte string.
func (e *Encoder) WriteBytes(b []byte) error {
	if len(b) > MaxSequenceLength {
		return errors.Wrapf(errors.ErrSchema, "byte string of %d bytes is too long", len(b))
	}
	e.WriteULEB128(uint64(len(b)))
	e.buf = append(e.buf, b...)
	return nil
}

// Decoder reads values serialized by the Encoder.
type Decoder struct {
	data []byte
	pos  int
}

// NewDecoder returns a decoder reading given data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Remaining returns the number of bytes not consumed yet.
func (d *Decoder) Remaining() int {
	return len(d.data) - d.pos
}

// Finish returns an error if not all data was consumed.
func (d *Decoder) Finish() error {
	if n := d.Remaining(); n != 0 {
		return errors.Wrapf(errors.ErrSchema, "%d trailing bytes", n)
	}
	return nil
}

func (d *Decoder) take(n int, what string) ([]byte, error) {
	if n < 0 || d.Remaining() < n {
		return nil, errors.Wrapf(errors.ErrSchema, "truncated %s: want %d bytes at offset %d, have %d", what, n, d.pos, d.Remaining())
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// ReadU64 reads a little endian unsigned 64 bit integer.
func (d *Decoder) ReadU64() (uint64, error) {
	b, err := d.take(8, "u64")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadU8 reads a single byte.
func (d *Decoder) ReadU8() (uint8, error) {
	b, err := d.take(1, "u8")
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadULEB128 reads a sequence length prefix. Only the canonical (shortest)
// form is accepted and the value must not exceed MaxSequenceLength.
func (d *Decoder) ReadULEB128() (uint64, error) {
	n, size := binary.Uvarint(d.data[d.pos:])
	switch {
	case size == 0:
		return 0, errors.Wrapf(errors.ErrSchema, "truncated length prefix at offset %d", d.pos)
	case size < 0:
		return 0, errors.Wrapf(errors.ErrSchema, "length prefix overflow at offset %d", d.pos)
	case size > 1 && d.data[d.pos+size-1] == 0:
		return 0, errors.Wrapf(errors.ErrSchema, "non canonical length prefix at offset %d", d.pos)
	case n > MaxSequenceLength:
		return 0, errors.Wrapf(errors.ErrSchema, "length %d exceeds maximum", n)
	}
	d.pos += size
	return n, nil
}

// ReadFixed reads a value of a known width. Returned slice is a copy.
func (d *Decoder) ReadFixed(width int) ([]byte, error) {
	b, err := d.take(width, "fixed width value")
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// ReadBytes reads a length prefixed byte string. Returned slice is a copy.
func (d *Decoder) ReadBytes() ([]byte, error) {
	n, err := d.ReadULEB128()
	if err != nil {
		return nil, err
	}
	b, err := d.take(int(n), "byte string")
	if err != nil {
		return nil, err
	}
	return append([]byte{}, b...), nil
}

// ReadLength reads the element count of a vector. Each element must take at
// least minElemSize bytes, which allows rejecting absurd counts before
// allocating memory.
func (d *Decoder) ReadLength(minElemSize int) (int, error) {
	n, err := d.ReadULEB128()
	if err != nil {
		return 0, err
	}
	if minElemSize > 0 && n > uint64(d.Remaining()/minElemSize) {
		return 0, errors.Wrapf(errors.ErrSchema, "truncated vector: %d elements declared, %d bytes left", n, d.Remaining())
	}
	return int(n), nil
}
