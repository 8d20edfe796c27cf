package msafetest

import (
	"bytes"
	"encoding/base64"

	"github.com/momentum-safe/msafe"
)

type assetState struct{}

type coinState struct {
	value uint64
}

type tableState struct{}

type walletState struct {
	version   uint64
	owners    []msafe.Address
	threshold uint64
	metadata  []byte
	minSeq    uint64
	maxSeq    uint64
	queue     []queued
	table     msafe.Address
	size      uint64
}

type queued struct {
	priority uint64
	id       msafe.TxnID
}

func (w *walletState) isOwner(a msafe.Address) bool {
	for _, o := range w.owners {
		if o.Equals(a) {
			return true
		}
	}
	return false
}

func (w *walletState) removeQueued(id msafe.TxnID) {
	for i, q := range w.queue {
		if q.id.Equals(id) {
			w.queue = append(w.queue[:i], w.queue[i+1:]...)
			return
		}
	}
}

type entryState struct {
	name []byte
	// txn is nil for entries without a value.
	txn *txnState
}

type txnState struct {
	version     uint64
	creator     msafe.Address
	payloadType uint8
	payload     []byte
	expiration  uint64
	confirms    []msafe.Address
}

func (t *txnState) isConfirmedBy(a msafe.Address) bool {
	for _, c := range t.confirms {
		if bytes.Equal(c, a) {
			return true
		}
	}
	return false
}

// obj is the JSON form of a Move struct nested in an object.
type obj map[string]interface{}

func moveStruct(typ string, fields obj) obj {
	return obj{"type": typ, "fields": fields}
}

func vecSet(elem string, contents []msafe.Address) obj {
	if contents == nil {
		contents = []msafe.Address{}
	}
	return moveStruct("0x2::vec_set::VecSet<"+elem+">", obj{"contents": contents})
}

func uid(id msafe.Address) obj {
	return obj{"id": id}
}

// fields returns the JSON form of the object fields. Integers are rendered
// either as numbers or as decimal strings, the same way the ledger mixes
// both forms.
func (l *Ledger) fields(o *object) obj {
	switch s := o.state.(type) {
	case *coinState:
		return obj{"id": uid(o.id), "balance": s.value}
	case *tableState:
		return obj{"id": uid(o.id)}
	case *walletState:
		entries := make([]obj, 0, len(s.queue))
		for _, q := range s.queue {
			entries = append(entries, moveStruct("0x2::priority_queue::Entry<vector<u8>>", obj{
				"priority": msafe.U64(q.priority),
				"value":    q.id,
			}))
		}
		pkg := l.pkg.String()
		return obj{
			"id": uid(o.id),
			"info": moveStruct(pkg+"::msafe::Info", obj{
				"version":   msafe.U64(s.version),
				"owners":    vecSet("address", s.owners),
				"threshold": s.threshold,
				"metadata":  base64.StdEncoding.EncodeToString(s.metadata),
			}),
			"txn_book": moveStruct(pkg+"::msafe::TxnBook", obj{
				"min_sequence_number": msafe.U64(s.minSeq),
				"max_sequence_number": msafe.U64(s.maxSeq),
				"txids": moveStruct("0x2::priority_queue::PriorityQueue<vector<u8>>", obj{
					"entries": entries,
				}),
				"pendings": moveStruct("0x2::table::Table<vector<u8>, "+l.transactionType()+">", obj{
					"id":   uid(s.table),
					"size": msafe.U64(s.size),
				}),
			}),
		}
	case *entryState:
		f := obj{
			"id":    uid(o.id),
			"name":  base64.StdEncoding.EncodeToString(s.name),
			"value": nil,
		}
		if t := s.txn; t != nil {
			f["value"] = moveStruct(l.transactionType(), obj{
				"version": msafe.U64(t.version),
				"creator": t.creator,
				"payload": moveStruct(l.pkg.String()+"::msafe::Payload", obj{
					"type":    t.payloadType,
					"payload": base64.StdEncoding.EncodeToString(t.payload),
				}),
				"expiration": msafe.U64(t.expiration),
				"confirms":   vecSet("address", t.confirms),
			})
		}
		return f
	default:
		return obj{"id": uid(o.id)}
	}
}
