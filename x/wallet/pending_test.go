package wallet

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/momentum-safe/msafe"
	"github.com/momentum-safe/msafe/errors"
	"github.com/momentum-safe/msafe/msafetest/assert"
	"github.com/momentum-safe/msafe/payload"
)

var (
	walletID = msafe.MustParseAddress("0x1000000000000000000000000000000000000001")
	tableID  = msafe.MustParseAddress("0x1000000000000000000000000000000000000002")
	ownerA   = msafe.MustParseAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	ownerB   = msafe.MustParseAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
)

// objectsMock serves objects from memory. GetObjects fails with err when
// set.
type objectsMock struct {
	objects map[string]*msafe.Object
	owned   map[string][]msafe.ObjectRef
	err     error
}

func newObjectsMock() *objectsMock {
	return &objectsMock{
		objects: make(map[string]*msafe.Object),
		owned:   make(map[string][]msafe.ObjectRef),
	}
}

func (m *objectsMock) add(t testing.TB, id msafe.Address, owner msafe.Address, typ string, fields interface{}) {
	t.Helper()
	raw, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("cannot serialize fields: %s", err)
	}
	ref := msafe.ObjectRef{ObjectID: id, Version: 1, Digest: "d"}
	m.objects[string(id)] = &msafe.Object{Ref: ref, Type: typ, Fields: raw}
	if owner != nil {
		m.owned[string(owner)] = append(m.owned[string(owner)], ref)
	}
}

func (m *objectsMock) GetObject(ctx context.Context, id msafe.Address) (*msafe.Object, error) {
	obj, ok := m.objects[string(id)]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "object %s", id)
	}
	return obj, nil
}

func (m *objectsMock) GetObjectsOwnedByObject(ctx context.Context, id msafe.Address) ([]msafe.ObjectRef, error) {
	return m.owned[string(id)], nil
}

func (m *objectsMock) GetObjects(ctx context.Context, ids []msafe.Address) ([]*msafe.Object, error) {
	if m.err != nil {
		return nil, m.err
	}
	res := make([]*msafe.Object, len(ids))
	for i, id := range ids {
		obj, err := m.GetObject(ctx, id)
		if err != nil {
			return nil, err
		}
		res[i] = obj
	}
	return res, nil
}

type js = map[string]interface{}

func walletFields(maxSeq int) js {
	return js{
		"id": js{"id": walletID},
		"info": js{"type": "0x5::msafe::Info", "fields": js{
			"version":   "1",
			"owners":    js{"fields": js{"contents": []msafe.Address{ownerA, ownerB}}},
			"threshold": 2,
			"metadata":  base64.StdEncoding.EncodeToString([]byte("team")),
		}},
		"txn_book": js{"fields": js{
			"min_sequence_number": "0",
			"max_sequence_number": maxSeq,
			"txids": js{"fields": js{"entries": []js{
				{"fields": js{"priority": "0", "value": mustTxnID(ownerA, 0).String()}},
			}}},
			"pendings": js{"fields": js{"id": js{"id": tableID}, "size": "2"}},
		}},
	}
}

func mustTxnID(creator msafe.Address, nonce uint64) msafe.TxnID {
	id, err := msafe.NewTxnID(creator, nonce)
	if err != nil {
		panic(err)
	}
	return id
}

func entryFields(name []byte, txn js) js {
	var value interface{}
	if txn != nil {
		value = js{"type": "0x5::msafe::Transaction", "fields": txn}
	}
	return js{
		"id":    js{"id": walletID},
		"name":  base64.StdEncoding.EncodeToString(name),
		"value": value,
	}
}

func txnFields(creator msafe.Address, confirms ...msafe.Address) js {
	raw, err := payload.Encode(&payload.AssetWithdraw{To: ownerB, AssetID: walletID})
	if err != nil {
		panic(err)
	}
	if confirms == nil {
		confirms = []msafe.Address{}
	}
	return js{
		"version": "0",
		"creator": creator,
		"payload": js{"fields": js{
			"type":    1,
			"payload": base64.StdEncoding.EncodeToString(raw),
		}},
		"expiration": "0",
		"confirms":   js{"fields": js{"contents": confirms}},
	}
}

func entryID(n byte) msafe.Address {
	id := make(msafe.Address, msafe.AddressLength)
	id[0] = 0xee
	id[msafe.AddressLength-1] = n
	return id
}

func TestListPendingFiltersEmptyEntries(t *testing.T) {
	m := newObjectsMock()
	m.add(t, walletID, nil, "0x5::msafe::Momentum", walletFields(3))
	m.add(t, entryID(1), tableID, "field", entryFields(mustTxnID(ownerA, 2), txnFields(ownerA, ownerA)))
	m.add(t, entryID(2), tableID, "field", entryFields(mustTxnID(ownerA, 1), nil))
	m.add(t, entryID(3), tableID, "field", entryFields(mustTxnID(ownerB, 0), txnFields(ownerB)))

	pending, err := NewPendingReader(m).ListPending(context.Background(), walletID)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(pending))

	// Storage order is kept.
	assert.Equal(t, mustTxnID(ownerA, 2), pending[0].ID)
	assert.Equal(t, mustTxnID(ownerB, 0), pending[1].ID)

	txn := pending[0].Txn
	assert.Equal(t, ownerA, txn.Creator)
	assert.Equal(t, payload.TypeAssetWithdraw, txn.PayloadType)
	assert.Equal(t, []msafe.Address{ownerA}, txn.Confirms)
	assert.Equal(t, true, txn.IsConfirmedBy(ownerA))
	assert.Equal(t, false, txn.IsConfirmedBy(ownerB))

	p, err := txn.Payload(payload.Default)
	assert.Nil(t, err)
	assert.Equal(t, ownerB, p.(*payload.AssetWithdraw).To)
}

func TestListPendingEmptyTable(t *testing.T) {
	m := newObjectsMock()
	m.add(t, walletID, nil, "0x5::msafe::Momentum", walletFields(0))

	pending, err := NewPendingReader(m).ListPending(context.Background(), walletID)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(pending))
}

func TestListPendingMalformedKey(t *testing.T) {
	m := newObjectsMock()
	m.add(t, walletID, nil, "0x5::msafe::Momentum", walletFields(3))
	m.add(t, entryID(1), tableID, "field", entryFields(mustTxnID(ownerA, 0)[:27], txnFields(ownerA)))

	_, err := NewPendingReader(m).ListPending(context.Background(), walletID)
	assert.IsErr(t, errors.ErrMalformedID, err)
}

func TestListPendingLedgerError(t *testing.T) {
	m := newObjectsMock()
	m.add(t, walletID, nil, "0x5::msafe::Momentum", walletFields(3))
	m.add(t, entryID(1), tableID, "field", entryFields(mustTxnID(ownerA, 0), txnFields(ownerA)))
	m.err = errors.Wrap(errors.ErrRemoteInvocation, "node unavailable")

	_, err := NewPendingReader(m).ListPending(context.Background(), walletID)
	assert.IsErr(t, errors.ErrRemoteInvocation, err)

	_, err = NewPendingReader(m).ListPending(context.Background(), ownerA)
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestFindPending(t *testing.T) {
	m := newObjectsMock()
	m.add(t, walletID, nil, "0x5::msafe::Momentum", walletFields(3))
	m.add(t, entryID(1), tableID, "field", entryFields(mustTxnID(ownerA, 0), txnFields(ownerA)))
	r := NewPendingReader(m)

	p, err := r.FindPending(context.Background(), walletID, mustTxnID(ownerA, 0))
	assert.Nil(t, err)
	assert.Equal(t, ownerA, p.Txn.Creator)

	_, err = r.FindPending(context.Background(), walletID, mustTxnID(ownerA, 1))
	assert.IsErr(t, errors.ErrNotFound, err)

	_, err = r.FindPending(context.Background(), walletID, msafe.TxnID{1, 2})
	assert.IsErr(t, errors.ErrMalformedID, err)
}

func TestDecodeWallet(t *testing.T) {
	m := newObjectsMock()
	m.add(t, walletID, nil, "0x5::msafe::Momentum", walletFields(3))

	w, err := NewPendingReader(m).Wallet(context.Background(), walletID)
	assert.Nil(t, err)
	assert.Equal(t, walletID, w.ID)
	assert.Equal(t, uint64(1), w.Version)
	assert.Equal(t, []msafe.Address{ownerA, ownerB}, w.Owners)
	assert.Equal(t, uint64(2), w.Threshold)
	assert.Equal(t, "team", string(w.Metadata))
	assert.Equal(t, uint64(3), w.TxnBook.MaxSequenceNumber)
	assert.Equal(t, tableID, w.TxnBook.PendingsID)
	assert.Equal(t, uint64(2), w.TxnBook.PendingsSize)
	assert.Equal(t, 1, len(w.TxnBook.TxnIDs))
	assert.Equal(t, mustTxnID(ownerA, 0), w.TxnBook.TxnIDs[0].TxnID)
	assert.Equal(t, true, w.IsOwner(ownerB))
	assert.Equal(t, false, w.IsOwner(tableID))
}

func TestDecodeWalletRejects(t *testing.T) {
	m := newObjectsMock()
	m.add(t, walletID, nil, "0x2::coin::Coin<0x2::sui::SUI>", js{"id": js{"id": walletID}, "balance": 1})
	_, err := NewPendingReader(m).Wallet(context.Background(), walletID)
	assert.IsErr(t, errors.ErrInvalidState, err)

	m = newObjectsMock()
	fields := walletFields(0)
	delete(fields, "txn_book")
	m.add(t, walletID, nil, "0x5::msafe::Momentum", fields)
	_, err = NewPendingReader(m).Wallet(context.Background(), walletID)
	assert.IsErr(t, errors.ErrInvalidState, err)

	_, err = NewPendingReader(m).Wallet(context.Background(), walletID[:4])
	assert.IsErr(t, errors.ErrInvalidAddress, err)
}

func TestDecodeTableEntryPayloadType(t *testing.T) {
	txn := txnFields(ownerA)
	txn["payload"] = js{"fields": js{"type": "300", "payload": ""}}
	m := newObjectsMock()
	m.add(t, walletID, nil, "0x5::msafe::Momentum", walletFields(1))
	m.add(t, entryID(1), tableID, "field", entryFields(mustTxnID(ownerA, 0), txn))

	_, err := NewPendingReader(m).ListPending(context.Background(), walletID)
	assert.IsErr(t, errors.ErrSchema, err)
}

func TestStateOf(t *testing.T) {
	txn := &Transaction{Confirms: []msafe.Address{ownerA}}
	assert.Equal(t, StateConfirming, StateOf(txn, 2))
	txn.Confirms = append(txn.Confirms, ownerB)
	assert.Equal(t, StateExecutable, StateOf(txn, 2))
	assert.Equal(t, "Executable", StateExecutable.String())
	assert.Equal(t, true, strings.HasPrefix(State(0).String(), "Unknown"))
}
