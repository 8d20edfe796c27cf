package msafe_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/momentum-safe/msafe"
	"github.com/momentum-safe/msafe/errors"
)

const creatorHex = "0x5c2b7aa1e3b9a1b0e3e0f2ff0c9a9c3a9a1e2f10"

func TestMakeTxnID(t *testing.T) {
	cases := map[string]struct {
		creator string
		nonce   uint64
		wantErr *errors.Error
		wantHex string
	}{
		"nonce zero": {
			creator: creatorHex,
			nonce:   0,
			wantHex: creatorHex + "0000000000000000",
		},
		"nonce is little endian": {
			creator: creatorHex,
			nonce:   258,
			wantHex: creatorHex + "0201000000000000",
		},
		"creator without prefix": {
			creator: creatorHex[2:],
			nonce:   1,
			wantHex: creatorHex + "0100000000000000",
		},
		"largest nonce": {
			creator: creatorHex,
			nonce:   math.MaxInt64,
			wantHex: creatorHex + "ffffffffffffff7f",
		},
		"nonce above signed range": {
			creator: creatorHex,
			nonce:   math.MaxInt64 + 1,
			wantErr: errors.ErrNonceOutOfRange,
		},
		"short creator": {
			creator: "0x5c2b",
			wantErr: errors.ErrInvalidAddress,
		},
		"creator is not hex": {
			creator: "momentum",
			wantErr: errors.ErrInvalidAddress,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			id, err := msafe.MakeTxnID(tc.creator, tc.nonce)
			if !tc.wantErr.Is(err) {
				t.Fatalf("got error: %+v", err)
			}
			if tc.wantErr != nil {
				return
			}
			assert.Len(t, id, msafe.TxnIDLength)
			assert.Equal(t, tc.wantHex, id.String())
		})
	}
}

func TestParseTxnIDLength(t *testing.T) {
	for _, size := range []int{0, 20, 27, 29, 56} {
		_, _, err := msafe.ParseTxnID(make([]byte, size))
		if !errors.ErrMalformedID.Is(err) {
			t.Fatalf("size %d: want malformed id error, got %+v", size, err)
		}
	}
	_, _, err := msafe.ParseTxnID(make([]byte, 28))
	require.NoError(t, err)
}

func TestParseTxnIDString(t *testing.T) {
	id, err := msafe.ParseTxnIDString(creatorHex + "0500000000000000")
	require.NoError(t, err)
	assert.Equal(t, int64(5), id.Nonce())
	assert.Equal(t, creatorHex, id.Creator().String())

	_, err = msafe.ParseTxnIDString(creatorHex + "05")
	assert.True(t, errors.ErrMalformedID.Is(err))

	_, err = msafe.ParseTxnIDString("0xnothex")
	assert.True(t, errors.ErrMalformedID.Is(err))

	var broken msafe.TxnID = []byte{1, 2, 3}
	assert.Nil(t, broken.Creator())
	assert.Equal(t, int64(-1), broken.Nonce())
}

func TestTxnIDJSON(t *testing.T) {
	id, err := msafe.MakeTxnID(creatorHex, 7)
	require.NoError(t, err)

	raw, err := json.Marshal(id)
	require.NoError(t, err)

	var got msafe.TxnID
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.True(t, id.Equals(got))
}

func TestTxnIDDeterminism(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		creator := msafe.Address(rapid.SliceOfN(rapid.Byte(), msafe.AddressLength, msafe.AddressLength).Draw(t, "creator"))
		nonce := rapid.Uint64Range(0, math.MaxInt64).Draw(t, "nonce")

		a, err := msafe.NewTxnID(creator, nonce)
		if err != nil {
			t.Fatalf("cannot make id: %s", err)
		}
		b, err := msafe.MakeTxnID(creator.String(), nonce)
		if err != nil {
			t.Fatalf("cannot make id from text: %s", err)
		}
		if !a.Equals(b) {
			t.Fatalf("ids differ: %s != %s", a, b)
		}

		gotCreator, gotNonce, err := msafe.ParseTxnID(a)
		if err != nil {
			t.Fatalf("cannot parse id: %s", err)
		}
		if !gotCreator.Equals(creator) || uint64(gotNonce) != nonce {
			t.Fatalf("parse(make(c, n)) = (%s, %d), want (%s, %d)", gotCreator, gotNonce, creator, nonce)
		}
	})
}
