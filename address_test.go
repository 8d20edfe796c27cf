package msafe_test

import (
	"encoding/json"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentum-safe/msafe"
	"github.com/momentum-safe/msafe/errors"
)

func TestAddressPrinting(t *testing.T) {
	Convey("test hexadecimal address printing", t, func() {
		addr := msafe.MustParseAddress("0x0000000000000000000000000000000000000002")

		So(addr.String(), ShouldEqual, "0x0000000000000000000000000000000000000002")
		So(addr.String(), ShouldNotEqual, fmt.Sprintf("%X", []byte(addr)))
	})

	Convey("test upper case input is normalized", t, func() {
		addr := msafe.MustParseAddress("ABCDEF0123456789ABCDEF0123456789ABCDEF01")

		So(addr.String(), ShouldEqual, "0xabcdef0123456789abcdef0123456789abcdef01")
	})

	Convey("test empty address printing", t, func() {
		So(msafe.Address(nil).String(), ShouldEqual, "(nil)")
	})
}

func TestParseAddress(t *testing.T) {
	cases := map[string]struct {
		input   string
		wantErr *errors.Error
		want    msafe.Address
	}{
		"with prefix": {
			input: "0x00000000000000000000000000000000000000ff",
			want:  append(make(msafe.Address, 19), 0xff),
		},
		"without prefix": {
			input: "00000000000000000000000000000000000000ff",
			want:  append(make(msafe.Address, 19), 0xff),
		},
		"surrounding spaces": {
			input: " 0x00000000000000000000000000000000000000ff\n",
			want:  append(make(msafe.Address, 19), 0xff),
		},
		"too short": {
			input:   "0x000000000000000000000000000000000000ff",
			wantErr: errors.ErrInvalidAddress,
		},
		"too long": {
			input:   "0x0000000000000000000000000000000000000000ff",
			wantErr: errors.ErrInvalidAddress,
		},
		"not hex": {
			input:   "0xzz000000000000000000000000000000000000ff",
			wantErr: errors.ErrInvalidAddress,
		},
		"odd length": {
			input:   "0x0000000000000000000000000000000000000ff",
			wantErr: errors.ErrInvalidAddress,
		},
		"empty": {
			input:   "",
			wantErr: errors.ErrInvalidAddress,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := msafe.ParseAddress(tc.input)
			if !tc.wantErr.Is(err) {
				t.Fatalf("got error: %+v", err)
			}
			if tc.wantErr == nil {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestParseAddresses(t *testing.T) {
	got, err := msafe.ParseAddresses("0x0000000000000000000000000000000000000001, 0000000000000000000000000000000000000002,")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "0x0000000000000000000000000000000000000002", got[1].String())

	_, err = msafe.ParseAddresses("0x01,0x0000000000000000000000000000000000000002")
	assert.True(t, errors.ErrInvalidAddress.Is(err))
}

func TestAddressJSON(t *testing.T) {
	addr := msafe.MustParseAddress("0x1111111111111111111111111111111111111111")

	raw, err := json.Marshal(addr)
	require.NoError(t, err)
	assert.Equal(t, `"0x1111111111111111111111111111111111111111"`, string(raw))

	var got msafe.Address
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.True(t, addr.Equals(got))

	require.NoError(t, json.Unmarshal([]byte(`""`), &got))
	assert.Nil(t, got)

	err = json.Unmarshal([]byte(`"0x11"`), &got)
	assert.True(t, errors.ErrInvalidAddress.Is(err))
}

func TestAddressFlagValue(t *testing.T) {
	var a msafe.Address
	require.NoError(t, a.Set("2222222222222222222222222222222222222222"))
	assert.Equal(t, "0x2222222222222222222222222222222222222222", a.String())
	assert.Error(t, a.Set("0x22"))
}
