package wallet

import (
	"strings"

	"github.com/momentum-safe/msafe"
	"github.com/momentum-safe/msafe/errors"
	"github.com/momentum-safe/msafe/payload"
)

const (
	// Module is the name of the contract module exposing the wallet entry
	// points.
	Module = "msafe"

	// walletTypeSuffix terminates the fully qualified type of wallet
	// objects, regardless of the package address.
	walletTypeSuffix = "::" + Module + "::Momentum"
)

// Wallet is the state of a momentum safe wallet object.
type Wallet struct {
	ID        msafe.Address
	Version   uint64
	Owners    []msafe.Address
	Threshold uint64
	// Metadata is opaque to the contract. Wallets created by this client
	// store the wallet name.
	Metadata []byte
	TxnBook  TxnBook
}

// IsOwner returns true if the address is one of the wallet owners.
func (w *Wallet) IsOwner(a msafe.Address) bool {
	for _, o := range w.Owners {
		if o.Equals(a) {
			return true
		}
	}
	return false
}

// TxnBook is the index of pending transactions of a wallet.
type TxnBook struct {
	MinSequenceNumber uint64
	// MaxSequenceNumber is the nonce a new proposal must use.
	MaxSequenceNumber uint64
	// TxnIDs is the contract owned priority queue of pending transaction
	// IDs. Ordering is defined by the contract.
	TxnIDs []QueueEntry
	// PendingsID is the ID of the table that maps transaction IDs to
	// transactions.
	PendingsID   msafe.Address
	PendingsSize uint64
}

// QueueEntry is a single element of the txids priority queue.
type QueueEntry struct {
	Priority uint64
	TxnID    msafe.TxnID
}

// Transaction is a proposal stored in the wallet transaction book.
type Transaction struct {
	Version     uint64
	Creator     msafe.Address
	PayloadType payload.Type
	// RawPayload is the payload serialized with the type schema.
	RawPayload []byte
	// Expiration of zero means the transaction does not expire. It is
	// enforced by the contract only.
	Expiration uint64
	Confirms   []msafe.Address
}

// Payload decodes the raw payload of the transaction.
func (t *Transaction) Payload(c *payload.Codec) (payload.Payload, error) {
	return c.Decode(t.PayloadType, t.RawPayload)
}

// IsConfirmedBy returns true if the owner confirmed the transaction.
func (t *Transaction) IsConfirmedBy(owner msafe.Address) bool {
	for _, c := range t.Confirms {
		if c.Equals(owner) {
			return true
		}
	}
	return false
}

// Pending is a transaction found in the pending table together with the
// ID it is stored under.
type Pending struct {
	ID  msafe.TxnID
	Txn *Transaction
}

// State describes the progress of a proposal.
type State int

const (
	// StateConfirming means the transaction needs more confirmations.
	StateConfirming State = iota + 1
	// StateExecutable means the transaction has at least threshold
	// confirmations.
	StateExecutable
	// StateExecuted means the transaction is no longer pending. This
	// covers contract side pruning as well.
	StateExecuted
)

func (s State) String() string {
	switch s {
	case StateConfirming:
		return "Confirming"
	case StateExecutable:
		return "Executable"
	case StateExecuted:
		return "Executed"
	}
	return "Unknown"
}

// StateOf returns the state of a pending transaction for the given
// threshold.
func StateOf(txn *Transaction, threshold uint64) State {
	if uint64(len(txn.Confirms)) >= threshold {
		return StateExecutable
	}
	return StateConfirming
}

// JSON shapes of the Move structures, as returned by the ledger.

type uid struct {
	ID msafe.Address `json:"id"`
}

type vecSet struct {
	Fields struct {
		Contents []msafe.Address `json:"contents"`
	} `json:"fields"`
}

type momentumFields struct {
	ID   uid `json:"id"`
	Info struct {
		Fields struct {
			Version   msafe.U64   `json:"version"`
			Owners    vecSet      `json:"owners"`
			Threshold msafe.U64   `json:"threshold"`
			Metadata  msafe.Bytes `json:"metadata"`
		} `json:"fields"`
	} `json:"info"`
	TxnBook struct {
		Fields struct {
			MinSequenceNumber msafe.U64 `json:"min_sequence_number"`
			MaxSequenceNumber msafe.U64 `json:"max_sequence_number"`
			TxnIDs            struct {
				Fields struct {
					Entries []struct {
						Fields struct {
							Priority msafe.U64   `json:"priority"`
							Value    msafe.Bytes `json:"value"`
						} `json:"fields"`
					} `json:"entries"`
				} `json:"fields"`
			} `json:"txids"`
			Pendings struct {
				Fields struct {
					ID   uid       `json:"id"`
					Size msafe.U64 `json:"size"`
				} `json:"fields"`
			} `json:"pendings"`
		} `json:"fields"`
	} `json:"txn_book"`
}

type transactionFields struct {
	Version msafe.U64     `json:"version"`
	Creator msafe.Address `json:"creator"`
	Payload struct {
		Fields struct {
			Type    msafe.U64   `json:"type"`
			Payload msafe.Bytes `json:"payload"`
		} `json:"fields"`
	} `json:"payload"`
	Expiration msafe.U64 `json:"expiration"`
	Confirms   vecSet    `json:"confirms"`
}

// tableEntryFields is the content of an object holding a single entry of
// the pending transactions table.
type tableEntryFields struct {
	Name  msafe.Bytes `json:"name"`
	Value *struct {
		Fields *transactionFields `json:"fields"`
	} `json:"value"`
}

func decodeWallet(obj *msafe.Object) (*Wallet, error) {
	if obj.Type != "" && !strings.HasSuffix(obj.Type, walletTypeSuffix) {
		return nil, errors.Wrapf(errors.ErrInvalidState, "object %s of type %s is not a wallet", obj.Ref.ObjectID, obj.Type)
	}
	var f momentumFields
	if err := obj.DecodeFields(&f); err != nil {
		return nil, err
	}
	info := f.Info.Fields
	book := f.TxnBook.Fields

	w := &Wallet{
		ID:        f.ID.ID,
		Version:   uint64(info.Version),
		Owners:    info.Owners.Fields.Contents,
		Threshold: uint64(info.Threshold),
		Metadata:  info.Metadata,
		TxnBook: TxnBook{
			MinSequenceNumber: uint64(book.MinSequenceNumber),
			MaxSequenceNumber: uint64(book.MaxSequenceNumber),
			PendingsID:        book.Pendings.Fields.ID.ID,
			PendingsSize:      uint64(book.Pendings.Fields.Size),
		},
	}
	if len(w.ID) == 0 {
		w.ID = obj.Ref.ObjectID
	}
	for _, e := range book.TxnIDs.Fields.Entries {
		w.TxnBook.TxnIDs = append(w.TxnBook.TxnIDs, QueueEntry{
			Priority: uint64(e.Fields.Priority),
			TxnID:    msafe.TxnID(e.Fields.Value),
		})
	}
	if err := w.TxnBook.PendingsID.Validate(); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidState, "wallet %s: pendings table: %s", obj.Ref.ObjectID, err)
	}
	return w, nil
}

// decodeTableEntry returns the pending transaction stored in the table
// entry object. A nil result without an error is returned for an entry
// without a value.
func decodeTableEntry(obj *msafe.Object) (*Pending, error) {
	var f tableEntryFields
	if err := obj.DecodeFields(&f); err != nil {
		return nil, err
	}
	if _, _, err := msafe.ParseTxnID(f.Name); err != nil {
		return nil, errors.Wrapf(err, "table entry %s", obj.Ref.ObjectID)
	}
	if f.Value == nil || f.Value.Fields == nil {
		return nil, nil
	}
	tf := f.Value.Fields
	if tf.Payload.Fields.Type > 0xff {
		return nil, errors.Wrapf(errors.ErrSchema, "table entry %s: payload type %d", obj.Ref.ObjectID, tf.Payload.Fields.Type)
	}
	return &Pending{
		ID: msafe.TxnID(f.Name),
		Txn: &Transaction{
			Version:     uint64(tf.Version),
			Creator:     tf.Creator,
			PayloadType: payload.Type(tf.Payload.Fields.Type),
			RawPayload:  tf.Payload.Fields.Payload,
			Expiration:  uint64(tf.Expiration),
			Confirms:    tf.Confirms.Fields.Contents,
		},
	}, nil
}
