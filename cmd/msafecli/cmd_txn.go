package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/momentum-safe/msafe"
	"github.com/momentum-safe/msafe/errors"
	"github.com/momentum-safe/msafe/payload"
	"github.com/momentum-safe/msafe/x/wallet"
)

func cmdProposeWithdraw(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Propose a transaction withdrawing an asset from the wallet.

The next free nonce of the wallet is used. The ID of the new transaction is
written to the output.
`)
		fl.PrintDefaults()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.signerFlags(fl)
	cfg.walletFlag(fl)
	var (
		assetFl = flAddress(fl, "asset", "ID of the asset to withdraw. Required.")
		toFl    = flAddress(fl, "to", "Receiver of the asset. Defaults to the account.")
		expFl   = fl.Uint64("expiration", 0, "Expiration of the transaction, zero means never.")
	)
	fl.Parse(args)

	if len(*assetFl) == 0 {
		return errors.Wrap(errors.ErrInput, "asset is required")
	}
	return propose(output, cfg, &payload.AssetWithdraw{
		To:      receiver(*toFl, cfg.Account),
		AssetID: *assetFl,
	}, *expFl)
}

func cmdProposeCoinWithdraw(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Propose a transaction withdrawing an amount of coins from the wallet.

Coin type is the full type of the coin objects held by the wallet, for
example 0x2::coin::Coin<0x2::sui::SUI>. The ID of the new transaction is
written to the output.
`)
		fl.PrintDefaults()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.signerFlags(fl)
	cfg.walletFlag(fl)
	var (
		coinTypeFl = fl.String("coin-type", "", "Type of the coin to withdraw. Required.")
		amountFl   = fl.Uint64("amount", 0, "Amount to withdraw. Required.")
		toFl       = flAddress(fl, "to", "Receiver of the coins. Defaults to the account.")
		expFl      = fl.Uint64("expiration", 0, "Expiration of the transaction, zero means never.")
	)
	fl.Parse(args)

	if *coinTypeFl == "" {
		return errors.Wrap(errors.ErrInput, "coin type is required")
	}
	return propose(output, cfg, &payload.CoinWithdraw{
		To:       receiver(*toFl, cfg.Account),
		CoinType: []byte(*coinTypeFl),
		Amount:   *amountFl,
	}, *expFl)
}

func cmdProposeOwnerChange(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Propose a transaction replacing the owners and the threshold of the wallet.

Usage: propose-owner-change [flags] <owners> <threshold>

Owners are addresses separated with a comma. The ID of the new transaction
is written to the output.
`)
		fl.PrintDefaults()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.signerFlags(fl)
	cfg.walletFlag(fl)
	var (
		expFl = fl.Uint64("expiration", 0, "Expiration of the transaction, zero means never.")
	)
	fl.Parse(args)

	if fl.NArg() != 2 {
		return errors.Wrap(errors.ErrInput, "owners and threshold arguments are required")
	}
	owners, err := msafe.ParseAddresses(fl.Arg(0))
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "owners: %s", err)
	}
	threshold, err := strconv.ParseUint(fl.Arg(1), 10, 64)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "threshold: %s", err)
	}
	return propose(output, cfg, &payload.OwnerChange{
		Owners:    owners,
		Threshold: threshold,
	}, *expFl)
}

func receiver(to, account msafe.Address) msafe.Address {
	if len(to) != 0 {
		return to
	}
	return account
}

func propose(output io.Writer, cfg *Config, p payload.Payload, expiration uint64) error {
	if err := cfg.requireWallet(); err != nil {
		return err
	}
	c, err := cfg.client(true)
	if err != nil {
		return err
	}
	ctx, cancel := cfg.context()
	defer cancel()

	id, _, err := c.ProposeNext(ctx, cfg.Wallet, cfg.Account, p, expiration)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(output, id)
	return err
}

func cmdConfirm(input io.Reader, output io.Writer, args []string) error {
	return txnCall(output, args, "Confirm a pending transaction with the account.", (*wallet.Client).Confirm)
}

func cmdExecute(input io.Reader, output io.Writer, args []string) error {
	return txnCall(output, args, "Execute a pending transaction that collected enough confirmations.", (*wallet.Client).Execute)
}

type txnFn func(*wallet.Client, context.Context, msafe.Address, msafe.TxnID) (*msafe.InvokeResult, error)

func txnCall(output io.Writer, args []string, desc string, fn txnFn) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "\n%s\n\nThe digest of the transaction is written to the output.\n", desc)
		fl.PrintDefaults()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.signerFlags(fl)
	cfg.walletFlag(fl)
	var (
		txnFl = flTxnID(fl, "txn", "ID of the transaction. Required.")
	)
	fl.Parse(args)

	if err := cfg.requireWallet(); err != nil {
		return err
	}
	if len(*txnFl) == 0 {
		return errors.Wrap(errors.ErrInput, "transaction id is required")
	}
	c, err := cfg.client(true)
	if err != nil {
		return err
	}
	ctx, cancel := cfg.context()
	defer cancel()

	res, err := fn(c, ctx, cfg.Wallet, *txnFl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(output, res.Digest)
	return err
}

func cmdListPending(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
List transactions waiting in the wallet for confirmations or execution.
`)
		fl.PrintDefaults()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.networkFlags(fl)
	cfg.walletFlag(fl)
	fl.Parse(args)

	if err := cfg.requireWallet(); err != nil {
		return err
	}
	c, err := cfg.client(false)
	if err != nil {
		return err
	}
	ctx, cancel := cfg.context()
	defer cancel()

	w, err := c.Wallet(ctx, cfg.Wallet)
	if err != nil {
		return err
	}
	pending, err := c.PendingTransactions(ctx, cfg.Wallet)
	if err != nil {
		return err
	}

	fmt.Fprintln(output, "pending transactions:", len(pending))
	for _, p := range pending {
		fmt.Fprintln(output, strings.Repeat("-", 64))
		fmt.Fprintln(output, "txid:", p.ID)
		fmt.Fprintln(output, "creator:", p.ID.Creator())
		fmt.Fprintln(output, "nonce:", p.ID.Nonce())
		fmt.Fprintln(output, "type:", p.Txn.PayloadType)
		fmt.Fprintln(output, "payload:", describePayload(c.Codec(), p.Txn))
		fmt.Fprintf(output, "confirms: %d/%d %v\n", len(p.Txn.Confirms), w.Threshold, p.Txn.Confirms)
		fmt.Fprintln(output, "state:", wallet.StateOf(p.Txn, w.Threshold))
	}
	return nil
}

// describePayload returns the payload as JSON. A payload that cannot be
// decoded is described by the error, so that one broken transaction does
// not hide the others.
func describePayload(codec *payload.Codec, txn *wallet.Transaction) string {
	p, err := txn.Payload(codec)
	if err != nil {
		return fmt.Sprintf("<%s>", err)
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Sprintf("<%s>", err)
	}
	return string(raw)
}

func cmdTxnState(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the state of a transaction: Confirming, Executable or Executed.
`)
		fl.PrintDefaults()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.networkFlags(fl)
	cfg.walletFlag(fl)
	var (
		txnFl = flTxnID(fl, "txn", "ID of the transaction. Required.")
	)
	fl.Parse(args)

	if err := cfg.requireWallet(); err != nil {
		return err
	}
	if len(*txnFl) == 0 {
		return errors.Wrap(errors.ErrInput, "transaction id is required")
	}
	c, err := cfg.client(false)
	if err != nil {
		return err
	}
	ctx, cancel := cfg.context()
	defer cancel()

	state, err := c.TxnState(ctx, cfg.Wallet, *txnFl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(output, state)
	return err
}
