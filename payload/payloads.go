package payload

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/momentum-safe/msafe"
	"github.com/momentum-safe/msafe/bcs"
	"github.com/momentum-safe/msafe/errors"
)

// AssetWithdraw moves an asset object held by the wallet to an address.
type AssetWithdraw struct {
	To      msafe.Address `json:"to"`
	AssetID msafe.Address `json:"asset_id"`
}

var _ Payload = (*AssetWithdraw)(nil)

func (*AssetWithdraw) Type() Type {
	return TypeAssetWithdraw
}

func (p *AssetWithdraw) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "To", p.To.Validate())
	errs = errors.AppendField(errs, "AssetID", p.AssetID.Validate())
	return schemaErr(errs)
}

func (p *AssetWithdraw) MarshalBCS(e *bcs.Encoder) error {
	if err := writeAddress(e, p.To); err != nil {
		return err
	}
	return writeAddress(e, p.AssetID)
}

func (p *AssetWithdraw) UnmarshalBCS(d *bcs.Decoder) (err error) {
	if p.To, err = readAddress(d); err != nil {
		return err
	}
	p.AssetID, err = readAddress(d)
	return err
}

// CoinWithdraw sends an amount of coins held by the wallet to an address.
type CoinWithdraw struct {
	To msafe.Address
	// CoinType is the UTF-8 encoded, fully qualified type of the coin
	// object, for example
	// 0x2::coin::Coin<0x2::sui::SUI>
	CoinType []byte
	Amount   uint64
}

var _ Payload = (*CoinWithdraw)(nil)

func (*CoinWithdraw) Type() Type {
	return TypeCoinWithdraw
}

func (p *CoinWithdraw) Validate() error {
	return schemaErr(errors.AppendField(nil, "To", p.To.Validate()))
}

func (p *CoinWithdraw) MarshalBCS(e *bcs.Encoder) error {
	if err := writeAddress(e, p.To); err != nil {
		return err
	}
	if err := e.WriteBytes(p.CoinType); err != nil {
		return err
	}
	e.WriteU64(p.Amount)
	return nil
}

func (p *CoinWithdraw) UnmarshalBCS(d *bcs.Decoder) (err error) {
	if p.To, err = readAddress(d); err != nil {
		return err
	}
	if p.CoinType, err = d.ReadBytes(); err != nil {
		return err
	}
	p.Amount, err = d.ReadU64()
	return err
}

// CoinTypeParam returns the generic type parameter of the coin type, the
// text between the first '<' and the last '>'. This is the type argument of
// the coin execution entry point.
func (p *CoinWithdraw) CoinTypeParam() (string, error) {
	return TypeParam(string(p.CoinType))
}

// MarshalJSON presents the coin type as text.
func (p CoinWithdraw) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		To       msafe.Address `json:"to"`
		CoinType string        `json:"coin_type"`
		Amount   msafe.U64     `json:"amount"`
	}{
		To:       p.To,
		CoinType: string(p.CoinType),
		Amount:   msafe.U64(p.Amount),
	})
}

// TypeParam returns the generic type parameter of a Move type name, for
// example 0x2::sui::SUI for 0x2::coin::Coin<0x2::sui::SUI>
func TypeParam(typeName string) (string, error) {
	open := strings.Index(typeName, "<")
	end := strings.LastIndex(typeName, ">")
	if open < 0 || end < open+2 {
		return "", errors.Wrapf(errors.ErrInput, "%q is not a generic type", typeName)
	}
	return typeName[open+1 : end], nil
}

// OwnerChange replaces the owners and the threshold of the wallet. Owners
// order is significant for the serialization. Uniqueness of the owners and
// the threshold range are enforced by the contract when the change is
// executed, not by the codec.
type OwnerChange struct {
	Owners    []msafe.Address `json:"owners"`
	Threshold uint64          `json:"threshold"`
}

var _ Payload = (*OwnerChange)(nil)

func (*OwnerChange) Type() Type {
	return TypeOwnerChange
}

func (p *OwnerChange) Validate() error {
	var errs error
	for i, o := range p.Owners {
		errs = errors.AppendField(errs, "Owners."+strconv.Itoa(i), o.Validate())
	}
	return schemaErr(errs)
}

func (p *OwnerChange) MarshalBCS(e *bcs.Encoder) error {
	e.WriteULEB128(uint64(len(p.Owners)))
	for _, o := range p.Owners {
		if err := writeAddress(e, o); err != nil {
			return err
		}
	}
	e.WriteU64(p.Threshold)
	return nil
}

func (p *OwnerChange) UnmarshalBCS(d *bcs.Decoder) error {
	n, err := d.ReadLength(msafe.AddressLength)
	if err != nil {
		return err
	}
	p.Owners = make([]msafe.Address, n)
	for i := range p.Owners {
		if p.Owners[i], err = readAddress(d); err != nil {
			return err
		}
	}
	p.Threshold, err = d.ReadU64()
	return err
}

func writeAddress(e *bcs.Encoder, a msafe.Address) error {
	return e.WriteFixed(a, msafe.AddressLength)
}

func readAddress(d *bcs.Decoder) (msafe.Address, error) {
	raw, err := d.ReadFixed(msafe.AddressLength)
	return msafe.Address(raw), err
}

// schemaErr marks validation failures as schema errors while keeping the
// per field details.
func schemaErr(errs error) error {
	if errs == nil {
		return nil
	}
	return errors.Append(errors.ErrSchema, errs)
}
