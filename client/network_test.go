package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentum-safe/msafe"
	"github.com/momentum-safe/msafe/errors"
)

func TestNetwork(t *testing.T) {
	e, err := Network("local")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000", e.FullNode)

	e, err = Network(" DEVNET ")
	require.NoError(t, err)
	assert.Equal(t, "https://fullnode.devnet.sui.io:443", e.FullNode)

	_, err = Network("mainnet")
	assert.True(t, errors.ErrInput.Is(err))
}

func TestRequestGas(t *testing.T) {
	recipient := addr(0xaa)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			FixedAmountRequest struct {
				Recipient msafe.Address `json:"recipient"`
			}
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if !req.FixedAmountRequest.Recipient.Equals(recipient) {
			_, _ = w.Write([]byte(`{"transferred_gas_objects":[],"error":"unknown recipient"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"transferred_gas_objects": []interface{}{
				map[string]interface{}{"amount": 50000, "id": addr(1), "transfer_tx_digest": "t1"},
				map[string]interface{}{"amount": 50000, "id": addr(2), "transfer_tx_digest": "t1"},
			},
			"error": nil,
		})
	}))
	defer srv.Close()

	coins, err := RequestGas(context.Background(), nil, srv.URL, recipient)
	require.NoError(t, err)
	assert.Equal(t, []GasObject{
		{ID: addr(1), Amount: 50000, Digest: "t1"},
		{ID: addr(2), Amount: 50000, Digest: "t1"},
	}, coins)

	_, err = RequestGas(context.Background(), srv.Client(), srv.URL, addr(0xbb))
	assert.True(t, errors.ErrRemoteInvocation.Is(err))

	_, err = RequestGas(context.Background(), nil, srv.URL+"/missing", addr(0xbb)[:2])
	assert.True(t, errors.ErrInvalidAddress.Is(err))
}
