package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/momentum-safe/msafe"
	"github.com/momentum-safe/msafe/errors"
)

// commands is a register of all available commands that can be executed by
// this program. The name is used to match with the first argument given.
//
// A command function is given stdin, stdout and the command line arguments
// without the program name and the command name. It is the responsibility
// of the command function to parse the arguments. Anything written to the
// output is meant to be consumed by another program, logs go to stderr.
//
// Account, contract package, wallet and network can be provided through
// environment variables, so that a session looks like:
//
//   $ export ACCOUNT=0x... MSAFE=0x... WALLET=0x...
//   $ msafecli propose-withdraw -asset 0x...
//   $ msafecli confirm -txn 0x...
//
var commands = map[string]func(input io.Reader, output io.Writer, args []string) error{
	"confirm":               cmdConfirm,
	"create-accounts":       cmdCreateAccounts,
	"create-wallet":         cmdCreateWallet,
	"deposit":               cmdDeposit,
	"deposit-coin":          cmdDepositCoin,
	"execute":               cmdExecute,
	"faucet":                cmdFaucet,
	"keyaddr":               cmdKeyaddr,
	"list-pending":          cmdListPending,
	"object":                cmdObject,
	"propose-coin-withdraw": cmdProposeCoinWithdraw,
	"propose-owner-change":  cmdProposeOwnerChange,
	"propose-withdraw":      cmdProposeWithdraw,
	"txn-state":             cmdTxnState,
	"version":               cmdVersion,
	"wallet-info":           cmdWalletInfo,
}

func main() {
	if len(os.Args) == 1 {
		fmt.Fprintf(os.Stderr, "%s is a command line client for the momentum safe wallet.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [<flags>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		fmt.Fprintf(os.Stderr, "Run '%s <command> -help' to learn more about each command.\n", os.Args[0])
		os.Exit(2)
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		os.Exit(2)
	}

	// Skip two first arguments. Second argument is the command name that
	// we just consumed.
	if err := dispatch(cmd, os.Stdin, os.Stdout, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode returns 2 for invalid usage and 1 for any other failure.
// dispatch runs the command. A panic is returned as ErrPanic so that the
// failure is reported like any other error.
func dispatch(cmd func(io.Reader, io.Writer, []string) error, input io.Reader, output io.Writer, args []string) (err error) {
	defer errors.Recover(&err)
	return cmd(input, output, args)
}

func exitCode(err error) int {
	if errors.ErrInput.Is(err) {
		return 2
	}
	return 1
}

func availableCmds() []string {
	available := make([]string, 0, len(commands))
	for name := range commands {
		available = append(available, name)
	}
	sort.Strings(available)
	return available
}

func cmdVersion(in io.Reader, out io.Writer, args []string) error {
	_, err := fmt.Fprintln(out, msafe.Version())
	return err
}
