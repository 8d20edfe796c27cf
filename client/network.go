package client

import (
	"strings"

	"github.com/momentum-safe/msafe/errors"
)

// Networks known by name.
const (
	Local  = "LOCAL"
	Devnet = "DEVNET"
)

// Endpoints of a network.
type Endpoints struct {
	FullNode string
	Faucet   string
}

var networks = map[string]Endpoints{
	Local: {
		FullNode: "http://127.0.0.1:9000",
		Faucet:   "http://127.0.0.1:9123/gas",
	},
	Devnet: {
		FullNode: "https://fullnode.devnet.sui.io:443",
		Faucet:   "https://faucet.devnet.sui.io/gas",
	},
}

// Network returns the endpoints of a named network. Names are case
// insensitive.
func Network(name string) (Endpoints, error) {
	e, ok := networks[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return Endpoints{}, errors.Wrapf(errors.ErrInput, "unknown network %q, want %s or %s", name, Local, Devnet)
	}
	return e, nil
}
