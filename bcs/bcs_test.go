package bcs

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/momentum-safe/msafe/errors"
)

func TestULEB128(t *testing.T) {
	cases := map[uint64][]byte{
		0:       {0x00},
		1:       {0x01},
		127:     {0x7f},
		128:     {0x80, 0x01},
		300:     {0xac, 0x02},
		16384:   {0x80, 0x80, 0x01},
		1 << 31: {0x80, 0x80, 0x80, 0x80, 0x08},
	}
	for n, want := range cases {
		e := NewEncoder()
		e.WriteULEB128(n)
		assert.Equal(t, want, e.Bytes(), "encoding %d", n)

		if n > MaxSequenceLength {
			continue
		}
		d := NewDecoder(want)
		got, err := d.ReadULEB128()
		require.NoError(t, err)
		assert.Equal(t, n, got)
		assert.NoError(t, d.Finish())
	}
}

func TestULEB128Rejects(t *testing.T) {
	cases := map[string][]byte{
		"empty":         {},
		"truncated":     {0x80},
		"non canonical": {0x80, 0x00},
		"padded one":    {0x81, 0x80, 0x00},
		"above maximum": {0x80, 0x80, 0x80, 0x80, 0x08},
		"overflow":      {0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01},
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewDecoder(raw).ReadULEB128()
			if !errors.ErrSchema.Is(err) {
				t.Fatalf("want schema error, got %+v", err)
			}
		})
	}
}

func TestU64IsLittleEndian(t *testing.T) {
	e := NewEncoder()
	e.WriteU64(1000)
	assert.Equal(t, []byte{0xe8, 0x03, 0, 0, 0, 0, 0, 0}, e.Bytes())

	_, err := NewDecoder([]byte{1, 2, 3}).ReadU64()
	assert.True(t, errors.ErrSchema.Is(err))
}

func TestFixed(t *testing.T) {
	e := NewEncoder()
	require.NoError(t, e.WriteFixed([]byte{1, 2, 3}, 3))
	assert.True(t, errors.ErrSchema.Is(e.WriteFixed([]byte{1, 2}, 3)))
	assert.Equal(t, []byte{1, 2, 3}, e.Bytes())

	d := NewDecoder(e.Bytes())
	got, err := d.ReadFixed(3)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	_, err = NewDecoder([]byte{1}).ReadFixed(2)
	assert.True(t, errors.ErrSchema.Is(err))
}

func TestBytes(t *testing.T) {
	e := NewEncoder()
	require.NoError(t, e.WriteBytes([]byte("sui")))
	require.NoError(t, e.WriteBytes(nil))
	assert.Equal(t, []byte{3, 's', 'u', 'i', 0}, e.Bytes())

	d := NewDecoder(e.Bytes())
	got, err := d.ReadBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("sui"), got)
	got, err = d.ReadBytes()
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, d.Finish())

	_, err = NewDecoder([]byte{4, 's', 'u', 'i'}).ReadBytes()
	assert.True(t, errors.ErrSchema.Is(err))
}

func TestReadLength(t *testing.T) {
	n, err := NewDecoder([]byte{2, 0, 0}).ReadLength(1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Two addresses declared, only one byte follows.
	_, err = NewDecoder([]byte{2, 0}).ReadLength(20)
	assert.True(t, errors.ErrSchema.Is(err))
}

func TestFinish(t *testing.T) {
	d := NewDecoder([]byte{7, 1})
	_, err := d.ReadU8()
	require.NoError(t, err)
	assert.True(t, errors.ErrSchema.Is(d.Finish()))
}

func TestBytesRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		values := rapid.SliceOf(rapid.SliceOf(rapid.Byte())).Draw(t, "values")

		e := NewEncoder()
		for _, v := range values {
			if err := e.WriteBytes(v); err != nil {
				t.Fatalf("write: %s", err)
			}
		}

		d := NewDecoder(e.Bytes())
		for i, want := range values {
			got, err := d.ReadBytes()
			if err != nil {
				t.Fatalf("read #%d: %s", i, err)
			}
			if !bytes.Equal(got, want) {
				t.Fatalf("value #%d: got %x, want %x", i, got, want)
			}
		}
		if err := d.Finish(); err != nil {
			t.Fatalf("finish: %s", err)
		}
	})
}
