package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"

	"github.com/momentum-safe/msafe"
	"github.com/momentum-safe/msafe/client"
	"github.com/momentum-safe/msafe/crypto"
	"github.com/momentum-safe/msafe/errors"
)

func cmdKeyaddr(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out addresses of all private keys found in the key directory.

When an account is given, only that account is printed and the command
fails if its key cannot be found.
`)
		fl.PrintDefaults()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fl.StringVar(&cfg.KeyDir, "keydir", cfg.KeyDir,
		"Directory holding private keys. You can use KEYDIR environment variable to set it.")
	fl.Var(&cfg.Account, "account",
		"Account to look for. You can use ACCOUNT environment variable to set it.")
	fl.Parse(args)

	if len(cfg.Account) != 0 {
		key, err := crypto.LoadKey(cfg.KeyDir, cfg.Account)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(output, key.Address())
		return err
	}
	keys, err := crypto.LoadKeys(cfg.KeyDir)
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Fprintln(output, k.Address())
	}
	return nil
}

func cmdCreateAccounts(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create new accounts and save their private keys to the key directory.

Each new account is funded by the network faucet unless disabled. Addresses
of the new accounts are written to the output.
`)
		fl.PrintDefaults()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.networkFlags(fl)
	cfg.faucetFlag(fl)
	fl.StringVar(&cfg.KeyDir, "keydir", cfg.KeyDir,
		"Directory holding private keys. You can use KEYDIR environment variable to set it.")
	var (
		numFl        = fl.Uint("n", 1, "Number of accounts to create.")
		skipFaucetFl = fl.Bool("skip-faucet", false, "Do not request gas from the faucet.")
	)
	fl.Parse(args)

	var addrs []msafe.Address
	for i := uint(0); i < *numFl; i++ {
		k, err := crypto.GenerateEd25519()
		if err != nil {
			return err
		}
		if _, err := crypto.SaveKey(cfg.KeyDir, k); err != nil {
			return err
		}
		addrs = append(addrs, k.Address())
		fmt.Fprintln(output, k.Address())
	}
	if *skipFaucetFl {
		return nil
	}
	for _, a := range addrs {
		if err := requestGas(cfg, a); err != nil {
			return err
		}
	}
	return nil
}

func cmdFaucet(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Request gas coins from the network faucet.

Usage: faucet [flags] <address>
`)
		fl.PrintDefaults()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.networkFlags(fl)
	cfg.faucetFlag(fl)
	fl.Parse(args)

	if fl.NArg() != 1 {
		return errors.Wrap(errors.ErrInput, "address argument is required")
	}
	to, err := msafe.ParseAddress(fl.Arg(0))
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "address: %s", err)
	}
	return requestGas(cfg, to)
}

// faucetClient is the HTTP client used to talk to the faucet.
var faucetClient = http.DefaultClient

func requestGas(cfg *Config, to msafe.Address) error {
	e, err := cfg.endpoints()
	if err != nil {
		return err
	}
	if e.Faucet == "" {
		return errors.Wrap(errors.ErrInput, "faucet address is required, use -faucet or MSAFE_FAUCET_URL")
	}
	logger, err := cfg.logger()
	if err != nil {
		return err
	}
	ctx, cancel := cfg.context()
	defer cancel()

	coins, err := client.RequestGas(ctx, faucetClient, e.Faucet, to)
	if err != nil {
		return errors.Wrapf(err, "faucet %s", to)
	}
	for _, c := range coins {
		logger.Info("gas received", "account", to, "coin", c.ID, "amount", uint64(c.Amount))
	}
	return nil
}
