package client

import (
	"context"
	"encoding/json"

	"github.com/momentum-safe/msafe"
	"github.com/momentum-safe/msafe/errors"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency limits how many requests a bulk read keeps in flight.
const DefaultConcurrency = 8

// Object status values returned by sui_getObject.
const (
	statusExists    = "Exists"
	statusNotExists = "NotExists"
	statusDeleted   = "Deleted"
)

var _ msafe.ObjectReader = (*Client)(nil)

// Client reads ledger objects through the node JSON-RPC API.
type Client struct {
	rpc         *JSONRPC
	concurrency int
}

// NewClient returns a client using the given transport.
func NewClient(rpc *JSONRPC) *Client {
	return &Client{rpc: rpc, concurrency: DefaultConcurrency}
}

// WithConcurrency sets how many requests GetObjects sends at once.
func (c *Client) WithConcurrency(n int) *Client {
	if n < 1 {
		n = 1
	}
	c.concurrency = n
	return c
}

// RPC returns the underlying transport.
func (c *Client) RPC() *JSONRPC {
	return c.rpc
}

// GetObject returns the Move object with the given ID. ErrNotFound is
// returned for objects that do not exist or were deleted. Package objects
// and other non Move objects are returned with an empty type.
func (c *Client) GetObject(ctx context.Context, id msafe.Address) (*msafe.Object, error) {
	if err := id.Validate(); err != nil {
		return nil, errors.Wrap(err, "object id")
	}
	var res getObjectResult
	if err := c.rpc.Call(ctx, "sui_getObject", []interface{}{id}, &res); err != nil {
		return nil, err
	}
	switch res.Status {
	case statusExists:
	case statusNotExists, statusDeleted:
		return nil, errors.Wrapf(errors.ErrNotFound, "object %s: %s", id, res.Status)
	default:
		return nil, errors.Wrapf(errors.ErrSchema, "object %s: unknown status %q", id, res.Status)
	}

	var details objectDetails
	if err := json.Unmarshal(res.Details, &details); err != nil {
		return nil, errors.Wrapf(errors.ErrSchema, "object %s: %s", id, err)
	}
	return &msafe.Object{
		Ref:    details.Reference,
		Type:   details.Data.Type,
		Fields: details.Data.Fields,
	}, nil
}

// GetObjectsOwnedByObject returns references of all objects owned by the
// given object, in the order the node returns them.
func (c *Client) GetObjectsOwnedByObject(ctx context.Context, id msafe.Address) ([]msafe.ObjectRef, error) {
	if err := id.Validate(); err != nil {
		return nil, errors.Wrap(err, "object id")
	}
	var infos []objectInfo
	if err := c.rpc.Call(ctx, "sui_getObjectsOwnedByObject", []interface{}{id}, &infos); err != nil {
		return nil, err
	}
	refs := make([]msafe.ObjectRef, len(infos))
	for i, info := range infos {
		refs[i] = msafe.ObjectRef{
			ObjectID: info.ObjectID,
			Version:  info.Version,
			Digest:   info.Digest,
		}
	}
	return refs, nil
}

// GetObjects fetches all objects concurrently. The result is ordered as
// the ids are, no matter in which order the requests complete. The first
// failure cancels the remaining requests and is returned.
func (c *Client) GetObjects(ctx context.Context, ids []msafe.Address) ([]*msafe.Object, error) {
	objects := make([]*msafe.Object, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			obj, err := c.GetObject(ctx, id)
			if err != nil {
				return err
			}
			objects[i] = obj
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return objects, nil
}

type getObjectResult struct {
	Status  string          `json:"status"`
	Details json.RawMessage `json:"details"`
}

type objectDetails struct {
	Data struct {
		DataType string          `json:"dataType"`
		Type     string          `json:"type"`
		Fields   json.RawMessage `json:"fields"`
	} `json:"data"`
	Owner     json.RawMessage `json:"owner"`
	Reference msafe.ObjectRef `json:"reference"`
}

type objectInfo struct {
	ObjectID msafe.Address `json:"objectId"`
	Version  msafe.U64     `json:"version"`
	Digest   string        `json:"digest"`
	Type     string        `json:"type"`
}
