package msafetest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"sync"

	"github.com/google/btree"

	"github.com/momentum-safe/msafe"
	"github.com/momentum-safe/msafe/errors"
)

// SUI is the generic parameter of the native coin type.
const SUI = "0x2::sui::SUI"

// CoinType returns the type of a coin object with the given generic
// parameter.
func CoinType(param string) string {
	return "0x2::coin::Coin<" + param + ">"
}

// Ledger is an in-memory ledger with the msafe contract deployed. It
// implements msafe.ObjectReader and provides a msafe.ContractInvoker for
// each sender account through the As method.
//
// Object IDs and digests are deterministic, so that two ledgers driven with
// the same calls produce the same state.
type Ledger struct {
	mu      sync.Mutex
	objects *btree.BTree
	seq     uint64
	txs     uint64
	pkg     msafe.Address
}

var _ msafe.ObjectReader = (*Ledger)(nil)

// NewLedger returns a ledger with only the contract package published.
func NewLedger() *Ledger {
	l := &Ledger{objects: btree.New(2)}
	l.pkg = l.nextID()
	return l
}

// Package returns the address of the msafe contract package.
func (l *Ledger) Package() msafe.Address {
	return l.pkg
}

// WalletType returns the fully qualified type of wallet objects.
func (l *Ledger) WalletType() string {
	return l.pkg.String() + "::msafe::Momentum"
}

func (l *Ledger) transactionType() string {
	return l.pkg.String() + "::msafe::Transaction"
}

// object is a single ledger object. Content of an object is held by the
// state field and rendered to the ledger JSON form when read.
type object struct {
	id      msafe.Address
	version uint64
	// owner is nil for shared objects.
	owner msafe.Address
	typ   string
	state interface{}
}

func (o *object) Less(than btree.Item) bool {
	return bytes.Compare(o.id, than.(*object).id) < 0
}

func (o *object) ref() msafe.ObjectRef {
	h := sha256.Sum256(append(append([]byte{}, o.id...), byte(o.version)))
	return msafe.ObjectRef{
		ObjectID: o.id,
		Version:  msafe.U64(o.version),
		Digest:   base64.StdEncoding.EncodeToString(h[:]),
	}
}

func (l *Ledger) nextID() msafe.Address {
	l.seq++
	id := make(msafe.Address, msafe.AddressLength)
	copy(id, "msafetest")
	binary.BigEndian.PutUint64(id[msafe.AddressLength-8:], l.seq)
	return id
}

func (l *Ledger) nextDigest() string {
	l.txs++
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], l.txs)
	h := sha256.Sum256(b[:])
	return base64.StdEncoding.EncodeToString(h[:])
}

func (l *Ledger) get(id msafe.Address) (*object, bool) {
	it := l.objects.Get(&object{id: id})
	if it == nil {
		return nil, false
	}
	return it.(*object), true
}

func (l *Ledger) put(o *object) {
	l.objects.ReplaceOrInsert(o)
}

func (l *Ledger) owned(owner msafe.Address) []*object {
	var res []*object
	l.objects.Ascend(func(it btree.Item) bool {
		if o := it.(*object); o.owner.Equals(owner) && len(owner) != 0 {
			res = append(res, o)
		}
		return true
	})
	return res
}

// MintAsset creates an object of the given type owned by the address.
func (l *Ledger) MintAsset(owner msafe.Address, typ string) msafe.Address {
	l.mu.Lock()
	defer l.mu.Unlock()

	o := &object{id: l.nextID(), owner: owner, typ: typ, state: &assetState{}}
	l.put(o)
	return o.id
}

// MintCoin creates a coin with the given generic parameter and value owned
// by the address.
func (l *Ledger) MintCoin(owner msafe.Address, param string, value uint64) msafe.Address {
	l.mu.Lock()
	defer l.mu.Unlock()

	o := &object{id: l.nextID(), owner: owner, typ: CoinType(param), state: &coinState{value: value}}
	l.put(o)
	return o.id
}

// Owner returns the owner of an object. Shared objects have no owner.
func (l *Ledger) Owner(id msafe.Address) (msafe.Address, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	o, ok := l.get(id)
	if !ok {
		return nil, false
	}
	return o.owner, true
}

// Balance returns the total value of coins with the given generic
// parameter held by the owner.
func (l *Ledger) Balance(owner msafe.Address, param string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	var total uint64
	for _, o := range l.owned(owner) {
		if c, ok := o.state.(*coinState); ok && o.typ == CoinType(param) {
			total += c.value
		}
	}
	return total
}

// ClearPending removes the value of the pending table entry but keeps the
// entry object, which is how the ledger exposes entries that were already
// consumed but not yet garbage collected.
func (l *Ledger) ClearPending(walletID msafe.Address, id msafe.TxnID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.get(walletID)
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "wallet %s", walletID)
	}
	ws, ok := w.state.(*walletState)
	if !ok {
		return errors.Wrapf(errors.ErrInvalidState, "object %s is not a wallet", walletID)
	}
	o, e, ok := l.findEntry(ws.table, id)
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "transaction %s", id)
	}
	e.txn = nil
	o.version++
	ws.removeQueued(id)
	ws.size--
	w.version++
	return nil
}

func (l *Ledger) findEntry(tableID msafe.Address, id msafe.TxnID) (*object, *entryState, bool) {
	for _, o := range l.owned(tableID) {
		if e, ok := o.state.(*entryState); ok && e.txn != nil && bytes.Equal(e.name, id) {
			return o, e, true
		}
	}
	return nil, nil, false
}

// GetObject implements msafe.ObjectReader.
func (l *Ledger) GetObject(ctx context.Context, id msafe.Address) (*msafe.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrNetwork, err.Error())
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.render(id)
}

// GetObjectsOwnedByObject implements msafe.ObjectReader.
func (l *Ledger) GetObjectsOwnedByObject(ctx context.Context, id msafe.Address) ([]msafe.ObjectRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrNetwork, err.Error())
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.get(id); !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "object %s", id)
	}
	owned := l.owned(id)
	refs := make([]msafe.ObjectRef, len(owned))
	for i, o := range owned {
		refs[i] = o.ref()
	}
	return refs, nil
}

// GetObjects implements msafe.ObjectReader.
func (l *Ledger) GetObjects(ctx context.Context, ids []msafe.Address) ([]*msafe.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrNetwork, err.Error())
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	res := make([]*msafe.Object, len(ids))
	for i, id := range ids {
		obj, err := l.render(id)
		if err != nil {
			return nil, err
		}
		res[i] = obj
	}
	return res, nil
}

func (l *Ledger) render(id msafe.Address) (*msafe.Object, error) {
	o, ok := l.get(id)
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "object %s", id)
	}
	fields, err := json.Marshal(l.fields(o))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidState, "object %s: %s", id, err)
	}
	return &msafe.Object{
		Ref:    o.ref(),
		Type:   o.typ,
		Fields: fields,
	}, nil
}
