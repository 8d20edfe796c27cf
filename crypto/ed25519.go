package crypto

import (
	"bytes"

	"github.com/momentum-safe/msafe"
	"github.com/momentum-safe/msafe/errors"
	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/sha3"
)

const (
	// SchemeEd25519 is the ledger name of the ed25519 signature scheme.
	SchemeEd25519 = "ED25519"

	// flagEd25519 prefixes the public key when an address is derived.
	flagEd25519 byte = 0x00
)

var _ Signer = (*Ed25519)(nil)

// Ed25519 is a Signer backed by an ed25519 private key held in memory.
type Ed25519 struct {
	priv ed25519.PrivateKey
}

// NewEd25519 returns a signer for the given 64 byte private key, in the
// form produced by ed25519.GenerateKey (seed followed by public key).
func NewEd25519(priv []byte) (*Ed25519, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(errors.ErrInput, "invalid private key length: %d", len(priv))
	}
	seed := priv[:ed25519.SeedSize]
	key := ed25519.NewKeyFromSeed(seed)
	if !bytes.Equal(priv[ed25519.SeedSize:], key[ed25519.SeedSize:]) {
		return nil, errors.Wrap(errors.ErrInput, "public key does not match the seed")
	}
	return &Ed25519{priv: key}, nil
}

// Ed25519FromSeed deterministically generates a private key from a given
// seed. Use if you have a strong source of external randomness, or for
// deterministic keys in test cases.
func Ed25519FromSeed(seed []byte) (*Ed25519, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Wrapf(errors.ErrInput, "invalid seed length: %d", len(seed))
	}
	return &Ed25519{priv: ed25519.NewKeyFromSeed(seed)}, nil
}

// GenerateEd25519 returns a new random key.
func GenerateEd25519() (*Ed25519, error) {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot generate ed25519 key: %s", err)
	}
	return &Ed25519{priv: priv}, nil
}

func (k *Ed25519) Address() msafe.Address {
	return SuiAddress(flagEd25519, k.PublicKey())
}

func (k *Ed25519) PublicKey() []byte {
	return []byte(k.priv.Public().(ed25519.PublicKey))
}

func (k *Ed25519) Scheme() string {
	return SchemeEd25519
}

// Sign returns an ed25519 signature of the message. The message is signed
// as is, without hashing.
func (k *Ed25519) Sign(message []byte) ([]byte, error) {
	return ed25519.Sign(k.priv, message), nil
}

// PrivateKey returns the raw private key, as stored in a key directory.
func (k *Ed25519) PrivateKey() []byte {
	return append([]byte(nil), k.priv...)
}

// SuiAddress derives the account address from a public key: the first 20
// bytes of the sha3-256 digest of the scheme flag followed by the key.
func SuiAddress(flag byte, pub []byte) msafe.Address {
	h := sha3.New256()
	h.Write([]byte{flag})
	h.Write(pub)
	return msafe.Address(h.Sum(nil)[:msafe.AddressLength])
}

// Verify checks an ed25519 signature of the message.
func Verify(pub, message, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), message, sig)
}
