package wallet

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/momentum-safe/msafe"
	"github.com/momentum-safe/msafe/errors"
	"github.com/momentum-safe/msafe/payload"
)

// Contract entry points.
const (
	fnCreateWallet  = "create_msafe"
	fnDeposit       = "deposit"
	fnDepositCoin   = "deposit_coin"
	fnCreateTxn     = "create_txn"
	fnConfirmTxn    = "confirm_txn"
	fnExecuteAsset  = "execute_asset_txn"
	fnExecuteCoin   = "execute_coin_txn"
	fnExecuteManage = "execute_manage_txn"
)

// Client drives the wallet contract. Every method maps to at most one
// contract invocation. Invocations are never retried and a failed
// invocation is not rolled back.
type Client struct {
	invoker msafe.ContractInvoker
	objects msafe.ObjectReader
	pending *PendingReader
	codec   *payload.Codec
	logger  log.Logger
}

// NewClient returns a client that submits invocations using the invoker
// and reads the ledger state using the object reader.
func NewClient(invoker msafe.ContractInvoker, objects msafe.ObjectReader) *Client {
	return &Client{
		invoker: invoker,
		objects: objects,
		pending: NewPendingReader(objects),
		codec:   payload.Default,
		logger:  log.NewNopLogger(),
	}
}

// WithLogger configures the client to use given logger.
func (c *Client) WithLogger(logger log.Logger) *Client {
	c.logger = logger.With("module", "wallet")
	return c
}

// WithCodec configures the client to use given payload codec instead of
// the default one.
func (c *Client) WithCodec(codec *payload.Codec) *Client {
	c.codec = codec
	return c
}

// Codec returns the payload codec used by the client.
func (c *Client) Codec() *payload.Codec {
	return c.codec
}

func (c *Client) invoke(ctx context.Context, call msafe.MoveCall) (*msafe.InvokeResult, error) {
	c.logger.Debug("invoke", "function", call.Function, "typeArgs", strings.Join(call.TypeArguments, ","))
	res, err := c.invoker.Invoke(ctx, call)
	if err != nil {
		return nil, errors.Wrap(err, call.Function)
	}
	if err := res.Err(); err != nil {
		c.logger.Error("invocation failed", "function", call.Function, "digest", res.Digest, "err", res.Error)
		return nil, errors.Wrap(err, call.Function)
	}
	c.logger.Info("invoked", "function", call.Function, "digest", res.Digest)
	return res, nil
}

// CreateWallet creates a new wallet. Owners must be unique and the
// threshold must be between 1 and the number of owners. Use CreatedWallet
// to learn the ID of the new wallet.
func (c *Client) CreateWallet(ctx context.Context, owners []msafe.Address, threshold uint64, metadata string) (*msafe.InvokeResult, error) {
	if err := validateOwners(owners, threshold); err != nil {
		return nil, err
	}
	ownersArg := make([]string, len(owners))
	for i, o := range owners {
		ownersArg[i] = o.String()
	}
	return c.invoke(ctx, msafe.MoveCall{
		Function:  fnCreateWallet,
		Arguments: []interface{}{ownersArg, strconv.FormatUint(threshold, 10), metadata},
	})
}

func validateOwners(owners []msafe.Address, threshold uint64) error {
	var errs error
	if len(owners) == 0 {
		errs = errors.AppendField(errs, "Owners", errors.ErrEmpty)
	}
	seen := make(map[string]struct{}, len(owners))
	for i, o := range owners {
		name := "Owners." + strconv.Itoa(i)
		if err := o.Validate(); err != nil {
			errs = errors.AppendField(errs, name, err)
			continue
		}
		if _, ok := seen[string(o)]; ok {
			errs = errors.Append(errs, errors.Field(name, errors.ErrDuplicate, "owner %s", o))
		}
		seen[string(o)] = struct{}{}
	}
	if threshold == 0 || threshold > uint64(len(owners)) {
		errs = errors.Append(errs, errors.Field("Threshold", errors.ErrInput,
			"must be between 1 and %d, got %d", len(owners), threshold))
	}
	return errs
}

// CreatedWallet returns the ID of the wallet created by the invocation. It
// reads the created objects to find the one of the wallet type.
func (c *Client) CreatedWallet(ctx context.Context, res *msafe.InvokeResult) (msafe.Address, error) {
	if len(res.Created) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "invocation %s created no objects", res.Digest)
	}
	ids := make([]msafe.Address, len(res.Created))
	for i, ref := range res.Created {
		ids[i] = ref.ObjectID
	}
	objs, err := c.objects.GetObjects(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "created objects")
	}
	for _, obj := range objs {
		if strings.HasSuffix(obj.Type, walletTypeSuffix) {
			return obj.Ref.ObjectID, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "invocation %s created no wallet", res.Digest)
}

// Deposit moves an asset object into the custody of the wallet. If
// assetType is empty, it is read from the ledger.
func (c *Client) Deposit(ctx context.Context, walletID, assetID msafe.Address, assetType string) (*msafe.InvokeResult, error) {
	if err := validateIDs(walletID, assetID); err != nil {
		return nil, err
	}
	if assetType == "" {
		t, err := c.ResolveObjectType(ctx, assetID)
		if err != nil {
			return nil, err
		}
		assetType = t
	}
	return c.invoke(ctx, msafe.MoveCall{
		Function:      fnDeposit,
		TypeArguments: []string{assetType},
		Arguments:     []interface{}{walletID.String(), assetID.String()},
	})
}

// DepositCoin moves a coin object into the custody of the wallet. The coin
// type is the generic parameter of the coin object type, for example
// 0x2::sui::SUI. If empty, it is derived from the coin object type.
func (c *Client) DepositCoin(ctx context.Context, walletID, coinID msafe.Address, coinType string) (*msafe.InvokeResult, error) {
	if err := validateIDs(walletID, coinID); err != nil {
		return nil, err
	}
	if coinType == "" {
		t, err := c.ResolveObjectType(ctx, coinID)
		if err != nil {
			return nil, err
		}
		if coinType, err = payload.TypeParam(t); err != nil {
			return nil, errors.Wrapf(err, "coin %s", coinID)
		}
	}
	return c.invoke(ctx, msafe.MoveCall{
		Function:      fnDepositCoin,
		TypeArguments: []string{coinType},
		Arguments:     []interface{}{walletID.String(), coinID.String()},
	})
}

// ResolveObjectType returns the fully qualified type of the object.
func (c *Client) ResolveObjectType(ctx context.Context, id msafe.Address) (string, error) {
	obj, err := c.objects.GetObject(ctx, id)
	if err != nil {
		return "", errors.Wrapf(err, "object %s", id)
	}
	if obj.Type == "" {
		return "", errors.Wrapf(errors.ErrInvalidState, "object %s has no type", id)
	}
	return obj.Type, nil
}

// Propose stores a new transaction in the wallet. The nonce must be the
// max sequence number of the wallet transaction book, the contract rejects
// any other value. The client does not check it.
//
// Owner changes must name unique owners with a threshold between 1 and
// their count, and coin withdrawals must name the coin type.
func (c *Client) Propose(ctx context.Context, walletID msafe.Address, nonce uint64, p payload.Payload, expiration uint64) (*msafe.InvokeResult, error) {
	if err := walletID.Validate(); err != nil {
		return nil, errors.Wrap(err, "wallet id")
	}
	if nonce > math.MaxInt64 {
		return nil, errors.Wrapf(errors.ErrNonceOutOfRange, "nonce %d", nonce)
	}
	if err := validateProposal(p); err != nil {
		return nil, err
	}
	raw, err := c.codec.EncodeHex(p)
	if err != nil {
		return nil, err
	}
	return c.invoke(ctx, msafe.MoveCall{
		Function: fnCreateTxn,
		Arguments: []interface{}{
			walletID.String(),
			strconv.FormatUint(nonce, 10),
			uint8(p.Type()),
			raw,
			expiration,
		},
	})
}

func validateProposal(p payload.Payload) error {
	switch p := p.(type) {
	case *payload.OwnerChange:
		return validateOwners(p.Owners, p.Threshold)
	case *payload.CoinWithdraw:
		if len(p.CoinType) == 0 {
			return errors.Field("CoinType", errors.ErrEmpty, "")
		}
	}
	return nil
}

// ProposeNext reads the next nonce from the wallet and proposes the
// transaction with it. It returns the ID the transaction is stored under.
// The creator must be the account the invoker signs with.
func (c *Client) ProposeNext(ctx context.Context, walletID, creator msafe.Address, p payload.Payload, expiration uint64) (msafe.TxnID, *msafe.InvokeResult, error) {
	w, err := c.pending.Wallet(ctx, walletID)
	if err != nil {
		return nil, nil, err
	}
	nonce := w.TxnBook.MaxSequenceNumber
	id, err := msafe.NewTxnID(creator, nonce)
	if err != nil {
		return nil, nil, err
	}
	res, err := c.Propose(ctx, walletID, nonce, p, expiration)
	if err != nil {
		return nil, nil, err
	}
	return id, res, nil
}

// Confirm adds the signing account to the confirmations of the
// transaction. Each owner confirms with a separate call.
func (c *Client) Confirm(ctx context.Context, walletID msafe.Address, id msafe.TxnID) (*msafe.InvokeResult, error) {
	if err := validateTxn(walletID, id); err != nil {
		return nil, err
	}
	return c.invoke(ctx, msafe.MoveCall{
		Function:  fnConfirmTxn,
		Arguments: []interface{}{walletID.String(), id.String()},
	})
}

// Execute runs a pending transaction. The transaction is read first to
// select the entry point matching its payload type, together with the type
// argument that entry point requires.
func (c *Client) Execute(ctx context.Context, walletID msafe.Address, id msafe.TxnID) (*msafe.InvokeResult, error) {
	if err := validateTxn(walletID, id); err != nil {
		return nil, err
	}
	p, err := c.pending.FindPending(ctx, walletID, id)
	if err != nil {
		return nil, err
	}
	pl, err := p.Txn.Payload(c.codec)
	if err != nil {
		return nil, errors.Wrapf(err, "transaction %s", id)
	}

	switch pl := pl.(type) {
	case *payload.AssetWithdraw:
		assetType, err := c.ResolveObjectType(ctx, pl.AssetID)
		if err != nil {
			return nil, err
		}
		return c.ExecuteAsset(ctx, walletID, id, assetType)
	case *payload.CoinWithdraw:
		coinType, err := pl.CoinTypeParam()
		if err != nil {
			return nil, errors.Wrapf(err, "transaction %s", id)
		}
		return c.ExecuteCoin(ctx, walletID, id, coinType)
	case *payload.OwnerChange:
		return c.ExecuteOwnerChange(ctx, walletID, id)
	default:
		return nil, errors.Wrapf(errors.ErrSchema, "transaction %s: cannot execute %s", id, pl.Type())
	}
}

// ExecuteAsset runs a pending asset withdrawal.
func (c *Client) ExecuteAsset(ctx context.Context, walletID msafe.Address, id msafe.TxnID, assetType string) (*msafe.InvokeResult, error) {
	return c.execute(ctx, fnExecuteAsset, walletID, id, assetType)
}

// ExecuteCoin runs a pending coin withdrawal. The coin type is the generic
// parameter of the coin, for example 0x2::sui::SUI
func (c *Client) ExecuteCoin(ctx context.Context, walletID msafe.Address, id msafe.TxnID, coinType string) (*msafe.InvokeResult, error) {
	return c.execute(ctx, fnExecuteCoin, walletID, id, coinType)
}

// ExecuteOwnerChange runs a pending owner change.
func (c *Client) ExecuteOwnerChange(ctx context.Context, walletID msafe.Address, id msafe.TxnID) (*msafe.InvokeResult, error) {
	return c.execute(ctx, fnExecuteManage, walletID, id, "")
}

func (c *Client) execute(ctx context.Context, fn string, walletID msafe.Address, id msafe.TxnID, typeArg string) (*msafe.InvokeResult, error) {
	if err := validateTxn(walletID, id); err != nil {
		return nil, err
	}
	call := msafe.MoveCall{
		Function:  fn,
		Arguments: []interface{}{walletID.String(), id.String()},
	}
	if typeArg != "" {
		call.TypeArguments = []string{typeArg}
	}
	return c.invoke(ctx, call)
}

// Wallet returns the current state of the wallet.
func (c *Client) Wallet(ctx context.Context, walletID msafe.Address) (*Wallet, error) {
	return c.pending.Wallet(ctx, walletID)
}

// PendingTransactions returns all pending transactions of the wallet.
func (c *Client) PendingTransactions(ctx context.Context, walletID msafe.Address) ([]Pending, error) {
	return c.pending.ListPending(ctx, walletID)
}

// PendingTransaction returns a single pending transaction or ErrNotFound.
func (c *Client) PendingTransaction(ctx context.Context, walletID msafe.Address, id msafe.TxnID) (*Pending, error) {
	return c.pending.FindPending(ctx, walletID, id)
}

// TxnState returns the progress of the transaction. The ledger keeps no
// record of executed transactions, so a transaction that is not pending
// anymore is reported as executed when its creator is a current owner and
// its nonce was already used. Otherwise ErrNotFound is returned, which also
// covers transactions of owners removed since.
func (c *Client) TxnState(ctx context.Context, walletID msafe.Address, id msafe.TxnID) (State, error) {
	w, err := c.pending.Wallet(ctx, walletID)
	if err != nil {
		return 0, err
	}
	p, err := c.pending.FindPending(ctx, walletID, id)
	switch {
	case err == nil:
		return StateOf(p.Txn, w.Threshold), nil
	case errors.ErrNotFound.Is(err):
		if w.IsOwner(id.Creator()) && uint64(id.Nonce()) < w.TxnBook.MaxSequenceNumber {
			return StateExecuted, nil
		}
		return 0, err
	default:
		return 0, err
	}
}

func validateIDs(walletID, objectID msafe.Address) error {
	var errs error
	errs = errors.AppendField(errs, "WalletID", walletID.Validate())
	errs = errors.AppendField(errs, "ObjectID", objectID.Validate())
	return errs
}

func validateTxn(walletID msafe.Address, id msafe.TxnID) error {
	var errs error
	errs = errors.AppendField(errs, "WalletID", walletID.Validate())
	errs = errors.AppendField(errs, "TxnID", id.Validate())
	return errs
}
