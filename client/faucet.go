package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"

	"github.com/momentum-safe/msafe"
	"github.com/momentum-safe/msafe/errors"
)

// GasObject is a coin sent by the faucet.
type GasObject struct {
	ID     msafe.Address `json:"id"`
	Amount msafe.U64     `json:"amount"`
	Digest string        `json:"transfer_tx_digest"`
}

// RequestGas asks the faucet at url to send gas coins to the recipient.
func RequestGas(ctx context.Context, cli *http.Client, url string, recipient msafe.Address) ([]GasObject, error) {
	if err := recipient.Validate(); err != nil {
		return nil, errors.Wrap(err, "recipient")
	}
	body, err := json.Marshal(map[string]interface{}{
		"FixedAmountRequest": map[string]interface{}{"recipient": recipient},
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "serialize request: %s", err)
	}
	req, err := http.NewRequest("POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNetwork, "create http request: %s", err)
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")

	if cli == nil {
		cli = http.DefaultClient
	}
	resp, err := cli.Do(req)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNetwork, "do request: %s", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := ioutil.ReadAll(io.LimitReader(resp.Body, 1e5))
		return nil, errors.Wrapf(errors.ErrNetwork, "bad response: %d %s", resp.StatusCode, string(b))
	}

	var payload struct {
		Objects []GasObject `json:"transferred_gas_objects"`
		Error   *string     `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1e6)).Decode(&payload); err != nil {
		return nil, errors.Wrapf(errors.ErrNetwork, "decode response: %s", err)
	}
	if payload.Error != nil {
		return nil, errors.Wrap(errors.ErrRemoteInvocation, *payload.Error)
	}
	return payload.Objects, nil
}
