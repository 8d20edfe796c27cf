package msafetest

import (
	"crypto/rand"
	"testing"

	"github.com/momentum-safe/msafe"
)

// ParseAddress takes an address in a human readable format and returns its
// binary representation. This function is a test helper that is using
// msafe.ParseAddress function functionality.
func ParseAddress(t testing.TB, encodedAddress string) msafe.Address {
	t.Helper()

	addr, err := msafe.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}

// RandomAddr returns a valid random address generated on the fly.
func RandomAddr(t testing.TB) msafe.Address {
	t.Helper()

	raw := make([]byte, msafe.AddressLength)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("cannot generate a random address: %s", err)
	}
	return msafe.Address(raw)
}

// RandomAddrs returns n distinct random addresses.
func RandomAddrs(t testing.TB, n int) []msafe.Address {
	t.Helper()

	res := make([]msafe.Address, 0, n)
	seen := make(map[string]struct{}, n)
	for len(res) < n {
		a := RandomAddr(t)
		if _, ok := seen[string(a)]; ok {
			continue
		}
		seen[string(a)] = struct{}{}
		res = append(res, a)
	}
	return res
}
