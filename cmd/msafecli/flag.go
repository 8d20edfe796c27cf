package main

import (
	"flag"

	"github.com/momentum-safe/msafe"
)

// flAddress returns an address value set by a command line argument if
// provided. It is nil otherwise.
func flAddress(fl *flag.FlagSet, name, usage string) *msafe.Address {
	var a msafe.Address
	fl.Var(&a, name, usage)
	return &a
}

// flTxnID returns a transaction ID value set by a command line argument if
// provided. It is nil otherwise.
func flTxnID(fl *flag.FlagSet, name, usage string) *msafe.TxnID {
	var id msafe.TxnID
	fl.Var(&id, name, usage)
	return &id
}
