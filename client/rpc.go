package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"sync/atomic"

	"github.com/momentum-safe/msafe/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// JSONRPC is a JSON-RPC 2.0 client using HTTP transport.
type JSONRPC struct {
	url    string
	cli    *http.Client
	logger log.Logger
	seq    uint64
}

// NewJSONRPC returns a client sending requests to the given endpoint.
func NewJSONRPC(url string) *JSONRPC {
	return &JSONRPC{
		url:    url,
		cli:    http.DefaultClient,
		logger: log.NewNopLogger(),
	}
}

// WithHTTPClient sets the HTTP client used to send requests.
func (c *JSONRPC) WithHTTPClient(cli *http.Client) *JSONRPC {
	c.cli = cli
	return c
}

// WithLogger sets the logger used to report requests.
func (c *JSONRPC) WithLogger(logger log.Logger) *JSONRPC {
	c.logger = logger.With("module", "rpc")
	return c
}

// URL returns the endpoint this client talks to.
func (c *JSONRPC) URL() string {
	return c.url
}

// Call invokes a remote method with positional parameters and decodes the
// result into dest. Transport failures are ErrNetwork, errors returned by
// the node are ErrRemoteInvocation.
func (c *JSONRPC) Call(ctx context.Context, method string, params []interface{}, dest interface{}) error {
	if params == nil {
		params = []interface{}{}
	}
	id := atomic.AddUint64(&c.seq, 1)
	body, err := json.Marshal(jsonrpcRequest{
		Version: "2.0",
		ID:      id,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "%s: serialize params: %s", method, err)
	}

	req, err := http.NewRequest("POST", c.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrapf(errors.ErrNetwork, "create http request: %s", err)
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("rpc request", "method", method, "id", id)
	resp, err := c.cli.Do(req)
	if err != nil {
		return errors.Wrapf(errors.ErrNetwork, "%s: do request: %s", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := ioutil.ReadAll(io.LimitReader(resp.Body, 1e5))
		return errors.Wrapf(errors.ErrNetwork, "%s: bad response: %d %s", method, resp.StatusCode, string(b))
	}

	var payload jsonrpcResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1e7)).Decode(&payload); err != nil {
		return errors.Wrapf(errors.ErrNetwork, "%s: decode response: %s", method, err)
	}
	if payload.Error != nil {
		c.logger.Debug("rpc error", "method", method, "id", id, "code", payload.Error.Code)
		return errors.Wrap(errors.ErrRemoteInvocation, method+": "+payload.Error.Error())
	}
	if payload.ID != id {
		return errors.Wrapf(errors.ErrNetwork, "%s: response id %d, want %d", method, payload.ID, id)
	}
	if dest == nil {
		return nil
	}
	if len(payload.Result) == 0 || string(payload.Result) == "null" {
		return errors.Wrapf(errors.ErrRemoteInvocation, "%s: no result", method)
	}
	if err := json.Unmarshal(payload.Result, dest); err != nil {
		return errors.Wrapf(errors.ErrSchema, "%s: decode result: %s", method, err)
	}
	return nil
}

type jsonrpcRequest struct {
	Version string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type jsonrpcResponse struct {
	ID     uint64             `json:"id"`
	Error  *jsonResponseError `json:"error"`
	Result json.RawMessage    `json:"result"`
}

type jsonResponseError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *jsonResponseError) Error() string {
	if len(e.Data) != 0 && string(e.Data) != "null" {
		return fmt.Sprintf("code %d, %s: %s", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("code %d, %s", e.Code, e.Message)
}
