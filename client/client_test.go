package client

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentum-safe/msafe"
	"github.com/momentum-safe/msafe/errors"
)

func addr(n byte) msafe.Address {
	a := make(msafe.Address, msafe.AddressLength)
	a[msafe.AddressLength-1] = n
	return a
}

// existing returns a sui_getObject result of a coin object.
func existing(id msafe.Address, version int) interface{} {
	return map[string]interface{}{
		"status": "Exists",
		"details": map[string]interface{}{
			"data": map[string]interface{}{
				"dataType":            "moveObject",
				"type":                "0x2::coin::Coin<0x2::sui::SUI>",
				"has_public_transfer": true,
				"fields":              map[string]interface{}{"balance": 100, "id": map[string]interface{}{"id": id}},
			},
			"owner":               map[string]interface{}{"AddressOwner": addr(0xaa)},
			"previousTransaction": "tx",
			"storageRebate":       15,
			"reference":           map[string]interface{}{"objectId": id, "version": version, "digest": "ZGlnZXN0"},
		},
	}
}

// objectStore serves sui_getObject for objects in the map. Objects not in
// the map are reported as deleted.
func objectStore(t *testing.T, node *fakeNode, delay func(msafe.Address) time.Duration) {
	node.handle("sui_getObject", func(params []json.RawMessage) (interface{}, *jsonResponseError) {
		var id msafe.Address
		param(t, params, 0, &id)
		if delay != nil {
			time.Sleep(delay(id))
		}
		switch id[msafe.AddressLength-1] {
		case 0xdd:
			return map[string]interface{}{
				"status":  "Deleted",
				"details": map[string]interface{}{"objectId": id, "version": 3, "digest": "x"},
			}, nil
		case 0xee:
			return map[string]interface{}{"status": "NotExists", "details": id}, nil
		case 0xff:
			return map[string]interface{}{"status": "Wrapped"}, nil
		}
		return existing(id, int(id[msafe.AddressLength-1])), nil
	})
}

func TestGetObject(t *testing.T) {
	node := newFakeNode(t)
	objectStore(t, node, nil)
	c := NewClient(node.rpc())

	obj, err := c.GetObject(context.Background(), addr(1))
	require.NoError(t, err)
	assert.Equal(t, addr(1), obj.Ref.ObjectID)
	assert.Equal(t, msafe.U64(1), obj.Ref.Version)
	assert.Equal(t, "ZGlnZXN0", obj.Ref.Digest)
	assert.Equal(t, "0x2::coin::Coin<0x2::sui::SUI>", obj.Type)

	var fields struct {
		Balance msafe.U64 `json:"balance"`
	}
	require.NoError(t, obj.DecodeFields(&fields))
	assert.Equal(t, msafe.U64(100), fields.Balance)

	cases := map[string]struct {
		id      msafe.Address
		wantErr *errors.Error
	}{
		"deleted":        {id: addr(0xdd), wantErr: errors.ErrNotFound},
		"not exists":     {id: addr(0xee), wantErr: errors.ErrNotFound},
		"unknown status": {id: addr(0xff), wantErr: errors.ErrSchema},
		"invalid id":     {id: addr(1)[:3], wantErr: errors.ErrInvalidAddress},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := c.GetObject(context.Background(), tc.id)
			assert.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)
		})
	}
}

func TestGetObjectsKeepsOrder(t *testing.T) {
	node := newFakeNode(t)
	// Objects listed first take the longest to load.
	objectStore(t, node, func(id msafe.Address) time.Duration {
		return time.Duration(10-id[msafe.AddressLength-1]) * 5 * time.Millisecond
	})
	c := NewClient(node.rpc()).WithConcurrency(4)

	ids := []msafe.Address{addr(1), addr(2), addr(3), addr(4), addr(5), addr(6), addr(7)}
	objs, err := c.GetObjects(context.Background(), ids)
	require.NoError(t, err)
	require.Len(t, objs, len(ids))
	for i, obj := range objs {
		assert.Equal(t, ids[i], obj.Ref.ObjectID)
	}

	objs, err = c.GetObjects(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, objs)
}

func TestGetObjectsFailure(t *testing.T) {
	node := newFakeNode(t)
	objectStore(t, node, nil)
	c := NewClient(node.rpc())

	_, err := c.GetObjects(context.Background(), []msafe.Address{addr(1), addr(0xee), addr(2)})
	assert.True(t, errors.ErrNotFound.Is(err), "unexpected error: %+v", err)
}

func TestGetObjectsOwnedByObject(t *testing.T) {
	node := newFakeNode(t)
	node.handle("sui_getObjectsOwnedByObject", func(params []json.RawMessage) (interface{}, *jsonResponseError) {
		var id msafe.Address
		param(t, params, 0, &id)
		if !id.Equals(addr(9)) {
			return []interface{}{}, nil
		}
		return []interface{}{
			map[string]interface{}{"objectId": addr(3), "version": "2", "digest": "a", "type": "0x2::dynamic_field::Field", "owner": map[string]interface{}{"ObjectOwner": id}},
			map[string]interface{}{"objectId": addr(1), "version": 5, "digest": "b", "type": "0x2::dynamic_field::Field", "owner": map[string]interface{}{"ObjectOwner": id}},
		}, nil
	})
	c := NewClient(node.rpc())

	refs, err := c.GetObjectsOwnedByObject(context.Background(), addr(9))
	require.NoError(t, err)
	assert.Equal(t, []msafe.ObjectRef{
		{ObjectID: addr(3), Version: 2, Digest: "a"},
		{ObjectID: addr(1), Version: 5, Digest: "b"},
	}, refs)

	refs, err = c.GetObjectsOwnedByObject(context.Background(), addr(8))
	require.NoError(t, err)
	assert.Empty(t, refs)
}
