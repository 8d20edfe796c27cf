package wallet

import (
	"context"

	"github.com/momentum-safe/msafe"
	"github.com/momentum-safe/msafe/errors"
)

// PendingReader reconstructs pending transactions of a wallet from the
// ledger objects.
type PendingReader struct {
	objects msafe.ObjectReader
}

// NewPendingReader returns a reader using given object source.
func NewPendingReader(objects msafe.ObjectReader) *PendingReader {
	return &PendingReader{objects: objects}
}

// Wallet reads the wallet object.
func (r *PendingReader) Wallet(ctx context.Context, walletID msafe.Address) (*Wallet, error) {
	if err := walletID.Validate(); err != nil {
		return nil, errors.Wrap(err, "wallet id")
	}
	obj, err := r.objects.GetObject(ctx, walletID)
	if err != nil {
		return nil, errors.Wrapf(err, "wallet %s", walletID)
	}
	return decodeWallet(obj)
}

// ListPending returns all transactions stored in the wallet pending table,
// in the order the ledger lists the table entries. Entries without a value
// are skipped.
func (r *PendingReader) ListPending(ctx context.Context, walletID msafe.Address) ([]Pending, error) {
	w, err := r.Wallet(ctx, walletID)
	if err != nil {
		return nil, err
	}
	return r.listTable(ctx, w.TxnBook.PendingsID)
}

func (r *PendingReader) listTable(ctx context.Context, tableID msafe.Address) ([]Pending, error) {
	refs, err := r.objects.GetObjectsOwnedByObject(ctx, tableID)
	if err != nil {
		return nil, errors.Wrapf(err, "pendings table %s", tableID)
	}
	if len(refs) == 0 {
		return nil, nil
	}
	ids := make([]msafe.Address, len(refs))
	for i, ref := range refs {
		ids[i] = ref.ObjectID
	}
	objs, err := r.objects.GetObjects(ctx, ids)
	if err != nil {
		return nil, errors.Wrapf(err, "pendings table %s", tableID)
	}

	res := make([]Pending, 0, len(objs))
	for _, obj := range objs {
		p, err := decodeTableEntry(obj)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		res = append(res, *p)
	}
	return res, nil
}

// FindPending returns the pending transaction with the given ID.
// ErrNotFound is returned if the wallet has no such pending transaction.
func (r *PendingReader) FindPending(ctx context.Context, walletID msafe.Address, id msafe.TxnID) (*Pending, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	all, err := r.ListPending(ctx, walletID)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID.Equals(id) {
			return &all[i], nil
		}
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "transaction %s", id)
}
