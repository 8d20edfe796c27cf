package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/momentum-safe/msafe"
	"github.com/momentum-safe/msafe/errors"
	"github.com/momentum-safe/msafe/x/wallet"
)

func cmdCreateWallet(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a new msafe wallet.

Usage: create-wallet [flags] <owners> <threshold>

Owners are addresses separated with a comma. Threshold is the number of
owner confirmations required to execute a transaction. The ID of the new
wallet is written to the output.
`)
		fl.PrintDefaults()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.signerFlags(fl)
	var (
		nameFl = fl.String("name", "msafe", "Name of the wallet, stored in the wallet metadata.")
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

	c, err := cfg.client(true)
	if err != nil {
		return err
	}
	ctx, cancel := cfg.context()
	defer cancel()

	res, err := c.CreateWallet(ctx, owners, threshold, *nameFl)
	if err != nil {
		return err
	}
	id, err := c.CreatedWallet(ctx, res)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(output, id)
	return err
}

func cmdDeposit(input io.Reader, output io.Writer, args []string) error {
	return deposit(output, args, "asset", (*wallet.Client).Deposit)
}

func cmdDepositCoin(input io.Reader, output io.Writer, args []string) error {
	return deposit(output, args, "coin", (*wallet.Client).DepositCoin)
}

type depositFn func(*wallet.Client, context.Context, msafe.Address, msafe.Address, string) (*msafe.InvokeResult, error)

func deposit(output io.Writer, args []string, kind string, fn depositFn) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `
Deposit an %s object into the custody of a wallet.

The object type is read from the ledger unless provided. The digest of the
transaction is written to the output.
`, kind)
		fl.PrintDefaults()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.signerFlags(fl)
	cfg.walletFlag(fl)
	var (
		assetFl = flAddress(fl, "asset", "ID of the object to deposit. Required.")
		typeFl  = fl.String("type", "", "Fully qualified type of the object.")
	)
	fl.Parse(args)

	if err := cfg.requireWallet(); err != nil {
		return err
	}
	if len(*assetFl) == 0 {
		return errors.Wrap(errors.ErrInput, "asset is required")
	}
	c, err := cfg.client(true)
	if err != nil {
		return err
	}
	ctx, cancel := cfg.context()
	defer cancel()

	res, err := fn(c, ctx, cfg.Wallet, *assetFl, *typeFl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(output, res.Digest)
	return err
}

func cmdWalletInfo(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the state of a wallet as JSON.
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
	return writeJSON(output, walletView(w))
}

func walletView(w *wallet.Wallet) interface{} {
	queue := make([]msafe.TxnID, len(w.TxnBook.TxnIDs))
	for i, e := range w.TxnBook.TxnIDs {
		queue[i] = e.TxnID
	}
	return struct {
		ID                msafe.Address   `json:"id"`
		Version           uint64          `json:"version"`
		Owners            []msafe.Address `json:"owners"`
		Threshold         uint64          `json:"threshold"`
		Metadata          string          `json:"metadata"`
		MinSequenceNumber uint64          `json:"min_sequence_number"`
		MaxSequenceNumber uint64          `json:"max_sequence_number"`
		Queue             []msafe.TxnID   `json:"txids"`
		Pendings          msafe.Address   `json:"pendings"`
		PendingsSize      uint64          `json:"pendings_size"`
	}{
		ID:                w.ID,
		Version:           w.Version,
		Owners:            w.Owners,
		Threshold:         w.Threshold,
		Metadata:          string(w.Metadata),
		MinSequenceNumber: w.TxnBook.MinSequenceNumber,
		MaxSequenceNumber: w.TxnBook.MaxSequenceNumber,
		Queue:             queue,
		Pendings:          w.TxnBook.PendingsID,
		PendingsSize:      w.TxnBook.PendingsSize,
	}
}

func cmdObject(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print a ledger object as JSON.

Usage: object [flags] <id>
`)
		fl.PrintDefaults()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.networkFlags(fl)
	var (
		ownsFl = fl.Bool("owns", false, "Print references of objects owned by this object instead.")
	)
	fl.Parse(args)

	if fl.NArg() != 1 {
		return errors.Wrap(errors.ErrInput, "object id argument is required")
	}
	id, err := msafe.ParseAddress(fl.Arg(0))
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "object id: %s", err)
	}
	_, objects, err := cfg.reader()
	if err != nil {
		return err
	}
	ctx, cancel := cfg.context()
	defer cancel()

	if *ownsFl {
		refs, err := objects.GetObjectsOwnedByObject(ctx, id)
		if err != nil {
			return err
		}
		if refs == nil {
			refs = []msafe.ObjectRef{}
		}
		return writeJSON(output, refs)
	}
	obj, err := objects.GetObject(ctx, id)
	if err != nil {
		return err
	}
	return writeJSON(output, obj)
}

func writeJSON(output io.Writer, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return errors.Wrapf(errors.ErrSchema, "cannot serialize: %s", err)
	}
	_, err = fmt.Fprintln(output, string(raw))
	return err
}
