/*
Package vehicle implements the vehicle module. Vehicles are children of
manufacturers. A vehicle may be paired with one aftermarket device and carry
one synthetic device; both relations survive vehicle transfers.
*/
package vehicle

import (
	"github.com/motorid/registry/common"
	"github.com/motorid/registry/interop"
	"github.com/motorid/registry/mapper"
	"github.com/motorid/registry/nft"
	"github.com/motorid/registry/nodes"
	"github.com/motorid/registry/sigcheck"
	"github.com/motorid/registry/streams"
	"github.com/motorid/registry/typeddata"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

var (
	// ErrPaired is returned when burning a vehicle paired with a device.
	ErrPaired = common.StateConflict("vehicle is paired")
	// ErrInvalidManufacturer is returned for unknown parent manufacturers.
	ErrInvalidManufacturer = common.Validation("invalid manufacturer node")
)

// Namespace returns vehicle token namespace.
func Namespace(s common.Storage) (util.Uint160, error) {
	return nodes.Proxy(s, nodes.Vehicle)
}

// MintMessage returns typed data message the owner signs to mint a vehicle.
func MintMessage(manufacturerNode uint64, owner util.Uint160, infos []nodes.AttributeInfoPair) typeddata.Message {
	attrs, values := nodes.SplitPairs(infos)
	return typeddata.Message{
		"manufacturerNode": manufacturerNode,
		"owner":            owner,
		"attributes":       attrs,
		"infos":            values,
	}
}

// BurnMessage returns typed data message the owner signs to burn the vehicle.
func BurnMessage(vehicleNode uint64) typeddata.Message {
	return typeddata.Message{"vehicleNode": vehicleNode}
}

// Mint mints vehicle of the manufacturer owned by owner.
func Mint(ic *interop.Context, manufacturerNode uint64, owner util.Uint160, infos []nodes.AttributeInfoPair) (uint64, error) {
	ns, err := Namespace(ic)
	if err != nil {
		return 0, err
	}
	mns, err := nodes.Proxy(ic, nodes.Manufacturer)
	if err != nil {
		return 0, err
	}
	if !nodes.Exists(ic, mns, manufacturerNode) {
		return 0, ErrInvalidManufacturer
	}
	id, err := nft.Mint(ic, ns, owner)
	if err != nil {
		return 0, err
	}
	if err := nodes.Create(ic, ns, id, mns, manufacturerNode); err != nil {
		return 0, err
	}
	ic.Notify("VehicleNodeMinted", manufacturerNode, id, owner)
	return id, SetInfos(ic, id, infos)
}

// MintSign mints vehicle with consent of its owner.
func MintSign(ic *interop.Context, manufacturerNode uint64, owner util.Uint160, infos []nodes.AttributeInfoPair, sig []byte) (uint64, error) {
	if err := sigcheck.Require(ic, sigcheck.MintVehicleSign, MintMessage(manufacturerNode, owner, infos), sig, owner); err != nil {
		return 0, err
	}
	return Mint(ic, manufacturerNode, owner, infos)
}

// SetInfos sets vehicle attributes.
func SetInfos(ic *interop.Context, id uint64, infos []nodes.AttributeInfoPair) error {
	ns, err := Namespace(ic)
	if err != nil {
		return err
	}
	if !nodes.Exists(ic, ns, id) {
		return common.ErrInvalidNode
	}
	if err := nodes.SetInfos(ic, ns, id, infos); err != nil {
		return err
	}
	for _, p := range infos {
		ic.Notify("VehicleAttributeSet", id, p.Attribute, p.Info)
	}
	return nil
}

// IsPaired checks whether the vehicle is paired with an aftermarket device
// or carries a synthetic device.
func IsPaired(s common.Storage, id uint64) (bool, error) {
	ns, err := Namespace(s)
	if err != nil {
		return false, err
	}
	if mapper.GetLink(s, ns, id) != 0 {
		return true, nil
	}
	sns, err := nodes.Proxy(s, nodes.SyntheticDevice)
	if err != nil {
		// No synthetic devices without the namespace.
		return false, nil
	}
	return mapper.GetNodeLink(s, ns, sns, id) != 0, nil
}

// BurnSign burns the vehicle with consent of its owner.
func BurnSign(ic *interop.Context, id uint64, sig []byte) error {
	ns, err := Namespace(ic)
	if err != nil {
		return err
	}
	if !nodes.Exists(ic, ns, id) {
		return common.ErrInvalidNode
	}
	owner := nft.OwnerOf(ic, ns, id)
	if err := sigcheck.Require(ic, sigcheck.BurnVehicleSign, BurnMessage(id), sig, owner); err != nil {
		return err
	}
	return Burn(ic, id)
}

// Burn removes unpaired vehicle with its token, attributes and stream.
func Burn(ic *interop.Context, id uint64) error {
	ns, err := Namespace(ic)
	if err != nil {
		return err
	}
	if !nodes.Exists(ic, ns, id) {
		return common.ErrInvalidNode
	}
	paired, err := IsPaired(ic, id)
	if err != nil {
		return err
	}
	if paired {
		return ErrPaired
	}
	if err := streams.OnBurn(ic, id); err != nil {
		return err
	}
	owner := nft.OwnerOf(ic, ns, id)
	mapper.ResetBeneficiary(ic, ns, id)
	nodes.Delete(ic, ns, id)
	if err := nft.Burn(ic, ns, id); err != nil {
		return err
	}
	ic.Notify("VehicleNodeBurned", id, owner)
	return nil
}

// onTransfer keeps node, attributes and links. The paired device beneficiary
// is reset and the synthetic device token moves to the new owner.
func onTransfer(ic *interop.Context, p nft.TransferParams) error {
	ns, err := nodes.CheckProxyCaller(ic, nodes.Vehicle)
	if err != nil {
		return err
	}
	mapper.ResetBeneficiary(ic, ns, p.ID)
	if ad := mapper.GetLink(ic, ns, p.ID); ad != 0 {
		adns, err := nodes.Proxy(ic, nodes.AftermarketDevice)
		if err != nil {
			return err
		}
		mapper.ResetBeneficiary(ic, adns, ad)
	}
	if sns, err := nodes.Proxy(ic, nodes.SyntheticDevice); err == nil {
		if sd := mapper.GetNodeLink(ic, ns, sns, p.ID); sd != 0 {
			if err := nft.Move(ic, sns, p.To, sd); err != nil {
				return err
			}
		}
	}
	return nil
}
