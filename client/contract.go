package client

import (
	"context"
	"encoding/base64"

	"github.com/momentum-safe/msafe"
	"github.com/momentum-safe/msafe/crypto"
	"github.com/momentum-safe/msafe/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// DefaultGasBudget is the gas budget attached to every call unless
// configured otherwise.
const DefaultGasBudget = 10000

// requestType makes the node wait until the transaction is executed
// locally, so that the response carries the effects.
const requestType = "WaitForLocalExecution"

var _ msafe.ContractInvoker = (*Contract)(nil)

// Contract binds a deployed contract module to a signing account. Every
// Invoke builds, signs and executes one transaction.
type Contract struct {
	rpc       *JSONRPC
	pkg       msafe.Address
	module    string
	signer    crypto.Signer
	gasBudget uint64
	logger    log.Logger
}

// NewContract returns a binding of the module published in package pkg.
func NewContract(rpc *JSONRPC, pkg msafe.Address, module string, signer crypto.Signer) *Contract {
	return &Contract{
		rpc:       rpc,
		pkg:       pkg,
		module:    module,
		signer:    signer,
		gasBudget: DefaultGasBudget,
		logger:    log.NewNopLogger(),
	}
}

// WithGasBudget sets the gas budget of all following calls.
func (c *Contract) WithGasBudget(budget uint64) *Contract {
	c.gasBudget = budget
	return c
}

func (c *Contract) WithLogger(logger log.Logger) *Contract {
	c.logger = logger.With("module", "contract")
	return c
}

// Sender returns the account that signs the calls.
func (c *Contract) Sender() msafe.Address {
	return c.signer.Address()
}

// Invoke executes a call and returns its effects. A call that the ledger
// executed but reported as failed is not an error here: the result
// carries the failure status and InvokeResult.Err reports it.
func (c *Contract) Invoke(ctx context.Context, call msafe.MoveCall) (*msafe.InvokeResult, error) {
	typeArgs := call.TypeArguments
	if typeArgs == nil {
		typeArgs = []string{}
	}
	args := call.Arguments
	if args == nil {
		args = []interface{}{}
	}

	var tx transactionBytes
	err := c.rpc.Call(ctx, "sui_moveCall", []interface{}{
		c.signer.Address(),
		c.pkg,
		c.module,
		call.Function,
		typeArgs,
		args,
		nil,
		c.gasBudget,
	}, &tx)
	if err != nil {
		return nil, errors.Wrap(err, "build transaction")
	}
	raw, err := base64.StdEncoding.DecodeString(tx.TxBytes)
	if err != nil || len(raw) == 0 {
		return nil, errors.Wrap(errors.ErrSchema, "invalid transaction bytes")
	}

	sig, err := c.signer.Sign(raw)
	if err != nil {
		return nil, errors.Wrap(err, "sign transaction")
	}

	var resp executeResponse
	err = c.rpc.Call(ctx, "sui_executeTransaction", []interface{}{
		tx.TxBytes,
		c.signer.Scheme(),
		base64.StdEncoding.EncodeToString(sig),
		base64.StdEncoding.EncodeToString(c.signer.PublicKey()),
		requestType,
	}, &resp)
	if err != nil {
		return nil, errors.Wrap(err, "execute transaction")
	}
	if resp.EffectsCert == nil {
		return nil, errors.Wrap(errors.ErrRemoteInvocation, "no effects in response")
	}
	res := resp.EffectsCert.Effects.Effects.result()
	c.logger.Debug("transaction executed",
		"function", call.Function,
		"digest", res.Digest,
		"status", res.Status)
	return res, nil
}

type transactionBytes struct {
	TxBytes string `json:"txBytes"`
}

type executeResponse struct {
	EffectsCert *struct {
		Effects struct {
			Effects transactionEffects `json:"effects"`
		} `json:"effects"`
	} `json:"EffectsCert"`
}

type transactionEffects struct {
	Status struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	} `json:"status"`
	Created []ownedObjectRef  `json:"created"`
	Mutated []ownedObjectRef  `json:"mutated"`
	Deleted []msafe.ObjectRef `json:"deleted"`
	Digest  string            `json:"transactionDigest"`
}

type ownedObjectRef struct {
	Reference msafe.ObjectRef `json:"reference"`
}

func (e *transactionEffects) result() *msafe.InvokeResult {
	return &msafe.InvokeResult{
		Digest:  e.Digest,
		Status:  e.Status.Status,
		Error:   e.Status.Error,
		Created: refs(e.Created),
		Mutated: refs(e.Mutated),
		Deleted: e.Deleted,
	}
}

func refs(owned []ownedObjectRef) []msafe.ObjectRef {
	if len(owned) == 0 {
		return nil
	}
	res := make([]msafe.ObjectRef, len(owned))
	for i, o := range owned {
		res[i] = o.Reference
	}
	return res
}
