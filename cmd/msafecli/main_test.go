package main

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"os"
	"strings"
	"testing"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/momentum-safe/msafe"
	"github.com/momentum-safe/msafe/errors"
	"github.com/momentum-safe/msafe/msafetest"
	"github.com/momentum-safe/msafe/x/wallet"
)

var configEnv = []string{
	"ACCOUNT",
	"MSAFE",
	"WALLET",
	"NETWORK",
	"KEYDIR",
	"MSAFE_RPC_URL",
	"MSAFE_FAUCET_URL",
	"GAS_BUDGET",
	"LOG_LEVEL",
	"MSAFE_TIMEOUT",
}

// clearEnv unsets all configuration variables for the duration of the
// test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range configEnv {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

// withLedger makes all commands run against a new in-memory ledger. Invoke
// calls are signed by the configured account without loading any key.
func withLedger(t *testing.T) *msafetest.Ledger {
	t.Helper()
	clearEnv(t)

	l := msafetest.NewLedger()
	origDial, origOut := dial, logOutput
	dial = func(c *Config, logger log.Logger, sign bool) (msafe.ContractInvoker, msafe.ObjectReader, error) {
		if !sign {
			return nil, l, nil
		}
		return l.As(c.Account), l, nil
	}
	logOutput = ioutil.Discard
	t.Cleanup(func() {
		dial, logOutput = origDial, origOut
	})
	return l
}

// run executes the command and returns its trimmed output.
func run(t *testing.T, cmd func(io.Reader, io.Writer, []string) error, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := dispatch(cmd, strings.NewReader(""), &out, args)
	return strings.TrimSpace(out.String()), err
}

// mustRun executes the command and fails the test on error.
func mustRun(t *testing.T, cmd func(io.Reader, io.Writer, []string) error, args ...string) string {
	t.Helper()
	out, err := run(t, cmd, args...)
	if err != nil {
		t.Fatalf("command %v failed: %+v", args, err)
	}
	return out
}

func TestVersion(t *testing.T) {
	out := mustRun(t, cmdVersion)
	if out != msafe.Version() {
		t.Fatalf("unexpected version: %q", out)
	}
}

func TestDispatchRecoversPanic(t *testing.T) {
	crash := func(io.Reader, io.Writer, []string) error {
		var w *wallet.Client
		_, err := w.Wallet(context.Background(), nil)
		return err
	}
	_, err := run(t, crash)
	if !errors.ErrPanic.Is(err) {
		t.Fatalf("want panic error, got %+v", err)
	}
	if exitCode(err) != 1 {
		t.Fatalf("unexpected exit code %d", exitCode(err))
	}
}

func TestAvailableCommandsAreSorted(t *testing.T) {
	cmds := availableCmds()
	if len(cmds) != len(commands) {
		t.Fatalf("want %d commands, got %d", len(commands), len(cmds))
	}
	for i := 1; i < len(cmds); i++ {
		if cmds[i-1] > cmds[i] {
			t.Fatalf("commands not sorted: %v", cmds)
		}
	}
}
