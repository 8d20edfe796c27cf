package msafetest

import (
	"context"
	"fmt"

	"github.com/momentum-safe/msafe"
	"github.com/momentum-safe/msafe/errors"
	"github.com/momentum-safe/msafe/payload"
)

// As returns an invoker that submits calls signed by the sender.
func (l *Ledger) As(sender msafe.Address) msafe.ContractInvoker {
	return &invoker{ledger: l, sender: sender}
}

type invoker struct {
	ledger *Ledger
	sender msafe.Address
}

func (i *invoker) Invoke(ctx context.Context, call msafe.MoveCall) (*msafe.InvokeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrNetwork, err.Error())
	}
	return i.ledger.invoke(i.sender, call)
}

// abort is a contract side failure. The invocation is included in the
// ledger with a failure status and has no effects.
type abort string

func (a abort) Error() string {
	return string(a)
}

func aborted(format string, args ...interface{}) error {
	return abort(fmt.Sprintf(format, args...))
}

type entryPoint func(tx *txn, call msafe.MoveCall) error

var entryPoints = map[string]entryPoint{
	"create_msafe":       createWallet,
	"deposit":            deposit,
	"deposit_coin":       depositCoin,
	"create_txn":         createTxn,
	"confirm_txn":        confirmTxn,
	"execute_asset_txn":  executeAsset,
	"execute_coin_txn":   executeCoin,
	"execute_manage_txn": executeManage,
}

// txn collects the effects of a single invocation. Entry points check all
// preconditions before the first change, so an abort never leaves partial
// effects behind.
type txn struct {
	ledger *Ledger
	sender msafe.Address
	res    msafe.InvokeResult
}

func (l *Ledger) invoke(sender msafe.Address, call msafe.MoveCall) (*msafe.InvokeResult, error) {
	if err := sender.Validate(); err != nil {
		return nil, errors.Wrap(err, "sender")
	}
	fn, ok := entryPoints[call.Function]
	if !ok {
		return nil, errors.Wrapf(errors.ErrRemoteInvocation, "function %q not found in module msafe", call.Function)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tx := &txn{ledger: l, sender: sender}
	err := fn(tx, call)
	if a, ok := err.(abort); ok {
		return &msafe.InvokeResult{
			Digest: l.nextDigest(),
			Status: msafe.StatusFailure,
			Error:  fmt.Sprintf("MoveAbort in %s: %s", call.Function, string(a)),
		}, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrRemoteInvocation, err.Error())
	}
	tx.res.Digest = l.nextDigest()
	tx.res.Status = msafe.StatusSuccess
	return &tx.res, nil
}

func (tx *txn) create(owner msafe.Address, typ string, state interface{}) *object {
	o := &object{id: tx.ledger.nextID(), owner: owner, typ: typ, state: state}
	tx.ledger.put(o)
	tx.res.Created = append(tx.res.Created, o.ref())
	return o
}

func (tx *txn) mutate(o *object) {
	o.version++
	tx.res.Mutated = append(tx.res.Mutated, o.ref())
}

func (tx *txn) delete(o *object) {
	tx.ledger.objects.Delete(o)
	tx.res.Deleted = append(tx.res.Deleted, o.ref())
}

func (tx *txn) wallet(id msafe.Address) (*object, *walletState, error) {
	o, ok := tx.ledger.get(id)
	if !ok {
		return nil, nil, errors.Wrapf(errors.ErrNotFound, "object %s", id)
	}
	ws, ok := o.state.(*walletState)
	if !ok {
		return nil, nil, errors.Wrapf(errors.ErrInput, "object %s is not a wallet", id)
	}
	return o, ws, nil
}

func args(call msafe.MoveCall, dest ...interface{}) error {
	if len(call.Arguments) != len(dest) {
		return errors.Wrapf(errors.ErrInput, "%s: want %d arguments, got %d", call.Function, len(dest), len(call.Arguments))
	}
	for i, d := range dest {
		if err := call.Arg(i, d); err != nil {
			return err
		}
	}
	return nil
}

func typeArgs(call msafe.MoveCall, n int) error {
	if len(call.TypeArguments) != n {
		return errors.Wrapf(errors.ErrInput, "%s: want %d type arguments, got %d", call.Function, n, len(call.TypeArguments))
	}
	return nil
}

func createWallet(tx *txn, call msafe.MoveCall) error {
	var (
		owners    []msafe.Address
		threshold msafe.U64
		metadata  string
	)
	if err := typeArgs(call, 0); err != nil {
		return err
	}
	if err := args(call, &owners, &threshold, &metadata); err != nil {
		return err
	}
	if err := checkOwners(owners, uint64(threshold)); err != nil {
		return err
	}

	ws := &walletState{
		owners:    owners,
		threshold: uint64(threshold),
		metadata:  []byte(metadata),
	}
	w := tx.create(nil, tx.ledger.WalletType(), ws)
	table := tx.create(w.id, "0x2::table::Table<vector<u8>, "+tx.ledger.transactionType()+">", &tableState{})
	ws.table = table.id
	return nil
}

func deposit(tx *txn, call msafe.MoveCall) error {
	return depositObject(tx, call, func(typeArg string) string { return typeArg })
}

func depositCoin(tx *txn, call msafe.MoveCall) error {
	return depositObject(tx, call, CoinType)
}

func depositObject(tx *txn, call msafe.MoveCall, objectType func(typeArg string) string) error {
	var walletID, assetID msafe.Address
	if err := typeArgs(call, 1); err != nil {
		return err
	}
	if err := args(call, &walletID, &assetID); err != nil {
		return err
	}
	w, _, err := tx.wallet(walletID)
	if err != nil {
		return err
	}
	asset, ok := tx.ledger.get(assetID)
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "object %s", assetID)
	}
	if !asset.owner.Equals(tx.sender) {
		return errors.Wrapf(errors.ErrInput, "object %s is not owned by %s", assetID, tx.sender)
	}
	if want := objectType(call.TypeArguments[0]); asset.typ != want {
		return errors.Wrapf(errors.ErrInput, "object %s is of type %s, want %s", assetID, asset.typ, want)
	}

	asset.owner = w.id
	tx.mutate(asset)
	return nil
}

func createTxn(tx *txn, call msafe.MoveCall) error {
	var (
		walletID            msafe.Address
		nonce, ptype, expir msafe.U64
		raw                 msafe.Bytes
	)
	if err := typeArgs(call, 0); err != nil {
		return err
	}
	if err := args(call, &walletID, &nonce, &ptype, &raw, &expir); err != nil {
		return err
	}
	w, ws, err := tx.wallet(walletID)
	if err != nil {
		return err
	}
	if !ws.isOwner(tx.sender) {
		return aborted("%s is not an owner", tx.sender)
	}
	if uint64(nonce) != ws.maxSeq {
		return aborted("stale nonce %d, want %d", nonce, ws.maxSeq)
	}
	if ptype > 0xff {
		return aborted("invalid payload type %d", ptype)
	}
	if _, err := payload.Decode(payload.Type(ptype), raw); err != nil {
		return aborted("invalid payload: %s", err)
	}
	id, err := msafe.NewTxnID(tx.sender, uint64(nonce))
	if err != nil {
		return aborted("%s", err)
	}

	tx.create(ws.table, "0x2::dynamic_field::Field<vector<u8>, "+tx.ledger.transactionType()+">", &entryState{
		name: id,
		txn: &txnState{
			version:     ws.version,
			creator:     tx.sender,
			payloadType: uint8(ptype),
			payload:     raw,
			expiration:  uint64(expir),
		},
	})
	ws.queue = append(ws.queue, queued{priority: uint64(nonce), id: id})
	ws.maxSeq = uint64(nonce) + 1
	ws.size++
	tx.mutate(w)
	return nil
}

func confirmTxn(tx *txn, call msafe.MoveCall) error {
	var (
		walletID msafe.Address
		id       msafe.TxnID
	)
	if err := typeArgs(call, 0); err != nil {
		return err
	}
	if err := args(call, &walletID, &id); err != nil {
		return err
	}
	_, ws, err := tx.wallet(walletID)
	if err != nil {
		return err
	}
	if !ws.isOwner(tx.sender) {
		return aborted("%s is not an owner", tx.sender)
	}
	entry, e, ok := tx.ledger.findEntry(ws.table, id)
	if !ok {
		return aborted("transaction %s not found", id)
	}
	if e.txn.isConfirmedBy(tx.sender) {
		return aborted("transaction %s already confirmed by %s", id, tx.sender)
	}

	e.txn.confirms = append(e.txn.confirms, tx.sender)
	tx.mutate(entry)
	return nil
}

// executable holds everything an execute entry point needs once all the
// common preconditions are met.
type executable struct {
	wallet  *object
	state   *walletState
	entry   *object
	id      msafe.TxnID
	payload payload.Payload
}

func loadExecutable(tx *txn, call msafe.MoveCall, want payload.Type, nTypeArgs int) (*executable, error) {
	var (
		walletID msafe.Address
		id       msafe.TxnID
	)
	if err := typeArgs(call, nTypeArgs); err != nil {
		return nil, err
	}
	if err := args(call, &walletID, &id); err != nil {
		return nil, err
	}
	w, ws, err := tx.wallet(walletID)
	if err != nil {
		return nil, err
	}
	entry, e, ok := tx.ledger.findEntry(ws.table, id)
	if !ok {
		return nil, aborted("transaction %s not found", id)
	}
	if uint64(len(e.txn.confirms)) < ws.threshold {
		return nil, aborted("transaction %s has %d of %d confirmations", id, len(e.txn.confirms), ws.threshold)
	}
	if payload.Type(e.txn.payloadType) != want {
		return nil, aborted("transaction %s is %s, not %s", id, payload.Type(e.txn.payloadType), want)
	}
	p, err := payload.Decode(want, e.txn.payload)
	if err != nil {
		return nil, aborted("transaction %s: %s", id, err)
	}
	return &executable{wallet: w, state: ws, entry: entry, id: id, payload: p}, nil
}

// done removes the executed transaction from the wallet transaction book.
func (x *executable) done(tx *txn) {
	tx.delete(x.entry)
	x.state.removeQueued(x.id)
	x.state.size--
	tx.mutate(x.wallet)
}

func executeAsset(tx *txn, call msafe.MoveCall) error {
	x, err := loadExecutable(tx, call, payload.TypeAssetWithdraw, 1)
	if err != nil {
		return err
	}
	p := x.payload.(*payload.AssetWithdraw)
	asset, ok := tx.ledger.get(p.AssetID)
	if !ok || !asset.owner.Equals(x.wallet.id) {
		return aborted("asset %s is not held by the wallet", p.AssetID)
	}
	if asset.typ != call.TypeArguments[0] {
		return aborted("asset %s is of type %s, not %s", p.AssetID, asset.typ, call.TypeArguments[0])
	}

	asset.owner = p.To
	tx.mutate(asset)
	x.done(tx)
	return nil
}

func executeCoin(tx *txn, call msafe.MoveCall) error {
	x, err := loadExecutable(tx, call, payload.TypeCoinWithdraw, 1)
	if err != nil {
		return err
	}
	p := x.payload.(*payload.CoinWithdraw)
	param, err := p.CoinTypeParam()
	if err != nil || param != call.TypeArguments[0] {
		return aborted("coin type %s does not match %s", p.CoinType, call.TypeArguments[0])
	}

	var (
		coins []*object
		total uint64
	)
	for _, o := range tx.ledger.owned(x.wallet.id) {
		if c, ok := o.state.(*coinState); ok && o.typ == CoinType(param) {
			coins = append(coins, o)
			total += c.value
		}
	}
	if total < p.Amount {
		return aborted("insufficient balance %d, want %d", total, p.Amount)
	}

	left := p.Amount
	for _, o := range coins {
		if left == 0 {
			break
		}
		c := o.state.(*coinState)
		take := c.value
		if take > left {
			take = left
		}
		c.value -= take
		left -= take
		if c.value == 0 {
			tx.delete(o)
		} else {
			tx.mutate(o)
		}
	}
	tx.create(p.To, CoinType(param), &coinState{value: p.Amount})
	x.done(tx)
	return nil
}

func checkOwners(owners []msafe.Address, threshold uint64) error {
	if len(owners) == 0 {
		return aborted("no owners")
	}
	seen := make(map[string]struct{}, len(owners))
	for _, o := range owners {
		if _, ok := seen[string(o)]; ok {
			return aborted("duplicated owner %s", o)
		}
		seen[string(o)] = struct{}{}
	}
	if threshold == 0 || threshold > uint64(len(owners)) {
		return aborted("invalid threshold %d", threshold)
	}
	return nil
}

func executeManage(tx *txn, call msafe.MoveCall) error {
	x, err := loadExecutable(tx, call, payload.TypeOwnerChange, 0)
	if err != nil {
		return err
	}
	p := x.payload.(*payload.OwnerChange)
	if err := checkOwners(p.Owners, p.Threshold); err != nil {
		return err
	}

	x.state.owners = append([]msafe.Address(nil), p.Owners...)
	x.state.threshold = p.Threshold
	x.state.version++
	x.done(tx)
	return nil
}
