package main

import (
	"context"
	"flag"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/momentum-safe/msafe"
	"github.com/momentum-safe/msafe/client"
	"github.com/momentum-safe/msafe/crypto"
	"github.com/momentum-safe/msafe/errors"
	"github.com/momentum-safe/msafe/x/wallet"
)

// Config is the configuration shared by all commands. Values are read from
// the environment first and can be overwritten by command line flags.
type Config struct {
	Account   msafe.Address `env:"ACCOUNT"`
	Msafe     msafe.Address `env:"MSAFE"`
	Wallet    msafe.Address `env:"WALLET"`
	Network   string        `env:"NETWORK" envDefault:"LOCAL"`
	KeyDir    string        `env:"KEYDIR" envDefault:"./.key"`
	RPCURL    string        `env:"MSAFE_RPC_URL"`
	FaucetURL string        `env:"MSAFE_FAUCET_URL"`
	GasBudget uint64        `env:"GAS_BUDGET" envDefault:"10000"`
	LogLevel  string        `env:"LOG_LEVEL" envDefault:"info"`
	Timeout   time.Duration `env:"MSAFE_TIMEOUT" envDefault:"1m"`
}

func loadConfig() (*Config, error) {
	var c Config
	err := env.ParseWithFuncs(&c, map[reflect.Type]env.ParserFunc{
		reflect.TypeOf(msafe.Address{}): func(v string) (interface{}, error) {
			return msafe.ParseAddress(v)
		},
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "environment: %s", err)
	}
	return &c, nil
}

// networkFlags registers flags selecting the ledger to talk to.
func (c *Config) networkFlags(fl *flag.FlagSet) {
	fl.StringVar(&c.Network, "network", c.Network,
		"Network to use, LOCAL or DEVNET. You can use NETWORK environment variable to set it.")
	fl.StringVar(&c.RPCURL, "rpc", c.RPCURL,
		"Full node JSON-RPC address, overrides the network address. You can use MSAFE_RPC_URL environment variable to set it.")
	fl.DurationVar(&c.Timeout, "timeout", c.Timeout,
		"Time limit of all ledger requests made by the command.")
	fl.StringVar(&c.LogLevel, "log-level", c.LogLevel,
		"Log level: debug, info, error or none. You can use LOG_LEVEL environment variable to set it.")
}

// signerFlags registers flags selecting the signing account and the
// contract it calls, in addition to the network flags.
func (c *Config) signerFlags(fl *flag.FlagSet) {
	c.networkFlags(fl)
	fl.Var(&c.Account, "account",
		"Account signing the transaction. You can use ACCOUNT environment variable to set it.")
	fl.Var(&c.Msafe, "msafe",
		"Address of the msafe contract package. You can use MSAFE environment variable to set it.")
	fl.StringVar(&c.KeyDir, "keydir", c.KeyDir,
		"Directory holding private keys. You can use KEYDIR environment variable to set it.")
	fl.Uint64Var(&c.GasBudget, "gas-budget", c.GasBudget,
		"Gas budget of a transaction. You can use GAS_BUDGET environment variable to set it.")
}

func (c *Config) faucetFlag(fl *flag.FlagSet) {
	fl.StringVar(&c.FaucetURL, "faucet", c.FaucetURL,
		"Faucet address, overrides the network faucet. You can use MSAFE_FAUCET_URL environment variable to set it.")
}

// walletFlag registers the wallet flag.
func (c *Config) walletFlag(fl *flag.FlagSet) {
	fl.Var(&c.Wallet, "wallet",
		"ID of the msafe wallet. You can use WALLET environment variable to set it.")
}

func (c *Config) requireWallet() error {
	if len(c.Wallet) == 0 {
		return errors.Wrap(errors.ErrInput, "wallet is required, use -wallet or WALLET")
	}
	return nil
}

// endpoints returns the addresses of the configured network. An unknown
// network name is accepted when the full node address is given.
func (c *Config) endpoints() (client.Endpoints, error) {
	e, err := client.Network(c.Network)
	if err != nil && c.RPCURL == "" {
		return e, err
	}
	if c.RPCURL != "" {
		e.FullNode = c.RPCURL
	}
	if c.FaucetURL != "" {
		e.Faucet = c.FaucetURL
	}
	return e, nil
}

// logOutput is where the logs are written.
var logOutput io.Writer = os.Stderr

func (c *Config) logger() (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(logOutput))
	opt, err := log.AllowLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "log level: %s", err)
	}
	return log.NewFilter(logger, opt), nil
}

func (c *Config) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.Timeout)
}

// dial returns access to the configured ledger. The invoker is nil unless
// signing was requested. Tests replace it to run against an in-memory
// ledger.
var dial = func(c *Config, logger log.Logger, sign bool) (msafe.ContractInvoker, msafe.ObjectReader, error) {
	e, err := c.endpoints()
	if err != nil {
		return nil, nil, err
	}
	rpc := client.NewJSONRPC(e.FullNode).WithLogger(logger)
	objects := client.NewClient(rpc)
	if !sign {
		return nil, objects, nil
	}
	key, err := crypto.LoadKey(c.KeyDir, c.Account)
	if err != nil {
		return nil, nil, errors.Wrap(err, "signer")
	}
	contract := client.NewContract(rpc, c.Msafe, wallet.Module, key).
		WithGasBudget(c.GasBudget).
		WithLogger(logger)
	return contract, objects, nil
}

// reader returns a logger and read only access to the ledger.
func (c *Config) reader() (log.Logger, msafe.ObjectReader, error) {
	logger, err := c.logger()
	if err != nil {
		return nil, nil, err
	}
	_, objects, err := dial(c, logger, false)
	if err != nil {
		return nil, nil, err
	}
	return logger, objects, nil
}

// client returns the wallet client for the configuration. Signing
// requires both the account and the contract package to be set.
func (c *Config) client(sign bool) (*wallet.Client, error) {
	if sign {
		if len(c.Account) == 0 {
			return nil, errors.Wrap(errors.ErrInput, "account is required, use -account or ACCOUNT")
		}
		if len(c.Msafe) == 0 {
			return nil, errors.Wrap(errors.ErrInput, "contract package is required, use -msafe or MSAFE")
		}
	}
	logger, err := c.logger()
	if err != nil {
		return nil, err
	}
	invoker, objects, err := dial(c, logger, sign)
	if err != nil {
		return nil, err
	}
	return wallet.NewClient(invoker, objects).WithLogger(logger), nil
}
