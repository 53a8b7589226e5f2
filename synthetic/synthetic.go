/*
Package synthetic implements the synthetic device module. A synthetic device
represents vehicle data obtained through an integration rather than a
physical device. Its parent is the integration, it is node-linked to the
vehicle and its token always belongs to the vehicle owner.
*/
package synthetic

import (
	"fmt"

	"github.com/motorid/registry/common"
	"github.com/motorid/registry/interop"
	"github.com/motorid/registry/mapper"
	"github.com/motorid/registry/nft"
	"github.com/motorid/registry/nodes"
	"github.com/motorid/registry/sigcheck"
	"github.com/motorid/registry/typeddata"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Prefixes used under common.PrefixSyntheticDevice.
const (
	prefixAddress byte = 0x00
	prefixID      byte = 0x01
)

var (
	// ErrDeviceRegistered is returned for duplicate device addresses.
	ErrDeviceRegistered = common.StateConflict("device address already registered")
	// ErrVehiclePaired is returned when the vehicle already carries a
	// synthetic device.
	ErrVehiclePaired = common.StateConflict("vehicle already paired")
	// ErrNotPaired is returned when the device does not belong to the
	// vehicle.
	ErrNotPaired = common.StateConflict("device is not paired with the vehicle")
	// ErrNotTransferable is returned by the transfer hook.
	ErrNotTransferable = common.Validation("synthetic device token is not transferable")
	// ErrInvalidIntegration is returned for unknown integrations.
	ErrInvalidIntegration = common.Validation("invalid integration node")
	// ErrInvalidVehicle is returned for unknown vehicles.
	ErrInvalidVehicle = common.Validation("invalid vehicle node")
)

type namespaces struct {
	integration util.Uint160
	vehicle     util.Uint160
	device      util.Uint160
}

func resolve(s common.Storage) (namespaces, error) {
	var (
		res namespaces
		err error
	)
	if res.integration, err = nodes.Proxy(s, nodes.Integration); err != nil {
		return res, err
	}
	if res.vehicle, err = nodes.Proxy(s, nodes.Vehicle); err != nil {
		return res, err
	}
	res.device, err = nodes.Proxy(s, nodes.SyntheticDevice)
	return res, err
}

func key(prefix byte, parts ...[]byte) []byte {
	return common.Key(common.PrefixSyntheticDevice, append([][]byte{{prefix}}, parts...)...)
}

// IDByAddress returns id of the device with the given address or zero.
func IDByAddress(s common.Storage, addr util.Uint160) uint64 {
	return common.GetUint64(s, key(prefixAddress, addr.BytesBE()))
}

// AddressByID returns device address.
func AddressByID(s common.Storage, id uint64) util.Uint160 {
	data := s.Get(key(prefixID, common.IDBytes(id)))
	if data == nil {
		return util.Uint160{}
	}
	addr, _ := util.Uint160DecodeBytesBE(data)
	return addr
}

// MintMessage returns typed data message both the vehicle owner and the
// device sign to mint the device.
func MintMessage(integrationNode, vehicleNode uint64) typeddata.Message {
	return typeddata.Message{"integrationNode": integrationNode, "vehicleNode": vehicleNode}
}

// BurnMessage returns typed data message the vehicle owner signs to burn the
// device.
func BurnMessage(vehicleNode, id uint64) typeddata.Message {
	return typeddata.Message{"vehicleNode": vehicleNode, "syntheticDeviceNode": id}
}

// MintInput describes a synthetic device to mint.
type MintInput struct {
	IntegrationNode uint64
	VehicleNode     uint64
	DeviceSig       []byte
	OwnerSig        []byte
	Address         util.Uint160
	Infos           []nodes.AttributeInfoPair
}

// MintSign mints synthetic device of the vehicle with consent of the vehicle
// owner and the device key.
func MintSign(ic *interop.Context, in MintInput) (uint64, error) {
	ns, err := resolve(ic)
	if err != nil {
		return 0, err
	}
	if !nodes.Exists(ic, ns.integration, in.IntegrationNode) {
		return 0, ErrInvalidIntegration
	}
	if !nodes.Exists(ic, ns.vehicle, in.VehicleNode) {
		return 0, ErrInvalidVehicle
	}
	if in.Address.Equals(util.Uint160{}) {
		return 0, common.ErrZeroAddress
	}
	if IDByAddress(ic, in.Address) != 0 {
		return 0, fmt.Errorf("%w: %s", ErrDeviceRegistered, common.AddressString(in.Address))
	}
	if mapper.GetNodeLink(ic, ns.vehicle, ns.device, in.VehicleNode) != 0 {
		return 0, ErrVehiclePaired
	}

	owner := nft.OwnerOf(ic, ns.vehicle, in.VehicleNode)
	msg := MintMessage(in.IntegrationNode, in.VehicleNode)
	if err := sigcheck.Require(ic, sigcheck.MintSyntheticDeviceSign, msg, in.OwnerSig, owner); err != nil {
		return 0, err
	}
	if err := sigcheck.Require(ic, sigcheck.MintSyntheticDeviceSign, msg, in.DeviceSig, in.Address); err != nil {
		return 0, err
	}

	id, err := nft.Mint(ic, ns.device, owner)
	if err != nil {
		return 0, err
	}
	if err := nodes.Create(ic, ns.device, id, ns.integration, in.IntegrationNode); err != nil {
		return 0, err
	}
	if err := mapper.SetNodeLink(ic, ns.vehicle, in.VehicleNode, ns.device, id); err != nil {
		return 0, err
	}
	common.PutUint64(ic, key(prefixAddress, in.Address.BytesBE()), id)
	ic.Put(key(prefixID, common.IDBytes(id)), in.Address.BytesBE())
	ic.Notify("SyntheticDeviceNodeMinted", in.IntegrationNode, id, in.VehicleNode, in.Address, owner)
	return id, SetInfos(ic, id, in.Infos)
}

// SetInfos sets device attributes.
func SetInfos(ic *interop.Context, id uint64, infos []nodes.AttributeInfoPair) error {
	ns, err := nodes.Proxy(ic, nodes.SyntheticDevice)
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
		ic.Notify("SyntheticDeviceAttributeSet", id, p.Attribute, p.Info)
	}
	return nil
}

// BurnSign burns the device with consent of the vehicle owner.
func BurnSign(ic *interop.Context, vehicleNode, id uint64, ownerSig []byte) error {
	ns, err := resolve(ic)
	if err != nil {
		return err
	}
	if !nodes.Exists(ic, ns.vehicle, vehicleNode) {
		return ErrInvalidVehicle
	}
	if !nodes.Exists(ic, ns.device, id) {
		return common.ErrInvalidNode
	}
	if mapper.GetNodeLink(ic, ns.vehicle, ns.device, vehicleNode) != id {
		return ErrNotPaired
	}
	owner := nft.OwnerOf(ic, ns.vehicle, vehicleNode)
	if err := sigcheck.Require(ic, sigcheck.BurnSyntheticDeviceSign, BurnMessage(vehicleNode, id), ownerSig, owner); err != nil {
		return err
	}
	return Burn(ic, id)
}

// Burn removes the device with its token, attributes and vehicle link.
func Burn(ic *interop.Context, id uint64) error {
	ns, err := resolve(ic)
	if err != nil {
		return err
	}
	if !nodes.Exists(ic, ns.device, id) {
		return common.ErrInvalidNode
	}
	vehicleNode := mapper.ClearNodeLink(ic, ns.device, ns.vehicle, id)
	addr := AddressByID(ic, id)
	ic.Delete(key(prefixAddress, addr.BytesBE()))
	ic.Delete(key(prefixID, common.IDBytes(id)))
	nodes.Delete(ic, ns.device, id)
	if err := nft.Burn(ic, ns.device, id); err != nil {
		return err
	}
	ic.Notify("SyntheticDeviceNodeBurned", id, vehicleNode)
	return nil
}

func onTransfer(ic *interop.Context, _ nft.TransferParams) error {
	if _, err := nodes.CheckProxyCaller(ic, nodes.SyntheticDevice); err != nil {
		return err
	}
	return ErrNotTransferable
}
