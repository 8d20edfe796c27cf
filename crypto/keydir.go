package crypto

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/momentum-safe/msafe"
	"github.com/momentum-safe/msafe/errors"
	"golang.org/x/crypto/ed25519"
)

// SaveKey writes the private key into dir, in a file named after the
// account address. The directory is created when missing. An existing key
// file is never overwritten.
func SaveKey(dir string, k *Ed25519) (string, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", errors.Wrapf(errors.ErrInput, "cannot create key directory: %s", err)
	}
	path := filepath.Join(dir, keyFileName(k.Address()))
	fd, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		if os.IsExist(err) {
			return "", errors.Wrapf(errors.ErrDuplicate, "private key file %q already exists", path)
		}
		return "", errors.Wrapf(errors.ErrInput, "cannot create private key file: %s", err)
	}
	defer fd.Close()

	if _, err := fd.Write(k.priv); err != nil {
		return "", errors.Wrapf(errors.ErrInput, "cannot write private key: %s", err)
	}
	if err := fd.Close(); err != nil {
		return "", errors.Wrapf(errors.ErrInput, "cannot close private key file: %s", err)
	}
	return path, nil
}

// LoadKey returns the key controlling the given address from dir.
//
// Every file in the directory holding a raw ed25519 private key is
// considered and the address is derived from the key itself, so file
// names do not matter. Files of any other size are ignored.
func LoadKey(dir string, address msafe.Address) (*Ed25519, error) {
	if err := address.Validate(); err != nil {
		return nil, errors.Wrap(err, "account")
	}
	keys, err := LoadKeys(dir)
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		if k.Address().Equals(address) {
			return k, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "%s not found in %s", address, dir)
}

// LoadKeys returns all keys stored in dir, ordered by file name.
func LoadKeys(dir string) ([]*Ed25519, error) {
	infos, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot read key directory: %s", err)
	}
	var keys []*Ed25519
	for _, info := range infos {
		if !info.Mode().IsRegular() || info.Size() != ed25519.PrivateKeySize {
			continue
		}
		raw, err := ioutil.ReadFile(filepath.Join(dir, info.Name()))
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "cannot read private key file: %s", err)
		}
		k, err := NewEd25519(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "key file %s", info.Name())
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func keyFileName(a msafe.Address) string {
	return strings.TrimPrefix(a.String(), "0x")
}
