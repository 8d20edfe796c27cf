package msafe

import (
	"context"
	"encoding/json"

	"github.com/momentum-safe/msafe/errors"
)

// ContractInvoker submits calls to the entry points of a contract deployed
// on the ledger. An implementation is bound to a single contract module and
// a single sender account.
type ContractInvoker interface {
	Invoke(ctx context.Context, call MoveCall) (*InvokeResult, error)
}

// ObjectReader gives read access to the objects stored on the ledger.
type ObjectReader interface {
	// GetObject returns the object with the given ID. ErrNotFound is
	// returned if such object does not exist.
	GetObject(ctx context.Context, id Address) (*Object, error)
	// GetObjectsOwnedByObject returns references of all objects owned by
	// the given object, in the order the ledger returns them.
	GetObjectsOwnedByObject(ctx context.Context, id Address) ([]ObjectRef, error)
	// GetObjects returns objects for all given IDs. Result order matches
	// the order of the IDs.
	GetObjects(ctx context.Context, ids []Address) ([]*Object, error)
}

// MoveCall describes a single entry point invocation.
type MoveCall struct {
	Function      string
	TypeArguments []string
	// Arguments are JSON serializable values as accepted by the ledger:
	// object IDs and vector<u8> as 0x prefixed hex strings, integers as
	// decimal strings or numbers, vectors as arrays.
	Arguments []interface{}
}

// Arg decodes the argument at the given position into dest. It is used by
// implementations that interpret calls locally.
func (c MoveCall) Arg(pos int, dest interface{}) error {
	if pos >= len(c.Arguments) {
		return errors.Wrapf(errors.ErrInput, "%s: missing argument %d", c.Function, pos)
	}
	raw, err := json.Marshal(c.Arguments[pos])
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "%s: argument %d: %s", c.Function, pos, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return errors.Wrapf(errors.ErrInput, "%s: argument %d: %s", c.Function, pos, err)
	}
	return nil
}

// ObjectRef references a specific version of an object.
type ObjectRef struct {
	ObjectID Address `json:"objectId"`
	Version  U64     `json:"version"`
	Digest   string  `json:"digest"`
}

// Object is the content of a Move object. Fields are kept in the JSON form
// returned by the ledger and decoded into explicit structures by the
// package that knows the object type.
type Object struct {
	Ref    ObjectRef       `json:"reference"`
	Type   string          `json:"type"`
	Fields json.RawMessage `json:"fields"`
}

// DecodeFields unmarshals object fields into dest.
func (o *Object) DecodeFields(dest interface{}) error {
	if len(o.Fields) == 0 {
		return errors.Wrapf(errors.ErrInvalidState, "object %s has no fields", o.Ref.ObjectID)
	}
	if err := json.Unmarshal(o.Fields, dest); err != nil {
		return errors.Wrapf(errors.ErrInvalidState, "object %s: %s", o.Ref.ObjectID, err)
	}
	return nil
}

// Execution status values reported by the ledger.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// InvokeResult is the outcome of a contract invocation as reported by the
// ledger effects.
type InvokeResult struct {
	Digest  string
	Status  string
	Error   string
	Created []ObjectRef
	Mutated []ObjectRef
	Deleted []ObjectRef
}

// Err returns ErrRemoteInvocation if the ledger reported a failure.
func (r *InvokeResult) Err() error {
	if r.Status == StatusSuccess {
		return nil
	}
	if r.Error == "" {
		return errors.Wrapf(errors.ErrRemoteInvocation, "status %q", r.Status)
	}
	return errors.Wrap(errors.ErrRemoteInvocation, r.Error)
}
