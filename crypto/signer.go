package crypto

import (
	"github.com/momentum-safe/msafe"
)

// Signer is the functionality we use from a private key. Keys are never
// serialized through this interface so that it can be backed by a
// hardware device as well.
type Signer interface {
	// Address returns the ledger account controlled by this key.
	Address() msafe.Address
	// PublicKey returns the raw public key bytes.
	PublicKey() []byte
	// Scheme is the signature scheme name as understood by the ledger.
	Scheme() string
	Sign(message []byte) ([]byte, error)
}
