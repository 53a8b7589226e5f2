/*
Package aftermarket implements the aftermarket device module.

A device is minted under its manufacturer with the token owned by the
manufacturer, then claimed by a user with consent of both the user and the
device key, then paired to a vehicle of the same owner:

	Minted -> Claimed -> Paired -> Claimed (unpair)

Every transition re-validates the live state, so of two conflicting
operations only the first one succeeds.
*/
package aftermarket

import (
	"fmt"

	"github.com/motorid/registry/common"
	"github.com/motorid/registry/interop"
	"github.com/motorid/registry/license"
	"github.com/motorid/registry/mapper"
	"github.com/motorid/registry/nft"
	"github.com/motorid/registry/nodes"
	"github.com/motorid/registry/sigcheck"
	"github.com/motorid/registry/typeddata"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Prefixes used under common.PrefixAftermarketDevice.
const (
	// prefixAddress contains map from device address to device id.
	prefixAddress byte = 0x00
	// prefixID contains map from device id to device address.
	prefixID byte = 0x01
	// prefixClaimed contains set of claimed device ids.
	prefixClaimed byte = 0x02
)

var (
	// ErrDeviceRegistered is returned for duplicate device addresses.
	ErrDeviceRegistered = common.StateConflict("device address already registered")
	// ErrClaimed is returned when claiming a claimed device.
	ErrClaimed = common.StateConflict("device already claimed")
	// ErrNotClaimed is returned when pairing or transferring a device that
	// is not claimed.
	ErrNotClaimed = common.StateConflict("device not claimed")
	// ErrDevicePaired is returned when pairing a paired device.
	ErrDevicePaired = common.StateConflict("device already paired")
	// ErrVehiclePaired is returned when pairing a paired vehicle.
	ErrVehiclePaired = common.StateConflict("vehicle already paired")
	// ErrNotPaired is returned when unpairing nodes that are not paired
	// with each other.
	ErrNotPaired = common.StateConflict("device is not paired with the vehicle")
	// ErrOwnerMismatch is returned when device and vehicle have different
	// owners.
	ErrOwnerMismatch = common.Authorization("device and vehicle owners differ")
	// ErrNotManufacturerOwner is returned when minting devices under a
	// manufacturer the caller does not own.
	ErrNotManufacturerOwner = common.Authorization("caller is not the manufacturer owner")
	// ErrInvalidVehicle is returned for unknown vehicles.
	ErrInvalidVehicle = common.Validation("invalid vehicle node")
)

// DeviceInfos describe a device to mint.
type DeviceInfos struct {
	Address util.Uint160
	Infos   []nodes.AttributeInfoPair
}

// OwnerPair binds a device to its new owner.
type OwnerPair struct {
	AftermarketDeviceNode uint64
	Owner                 util.Uint160
}

type namespaces struct {
	manufacturer util.Uint160
	vehicle      util.Uint160
	device       util.Uint160
}

func resolve(s common.Storage) (namespaces, error) {
	var (
		res namespaces
		err error
	)
	if res.manufacturer, err = nodes.Proxy(s, nodes.Manufacturer); err != nil {
		return res, err
	}
	if res.vehicle, err = nodes.Proxy(s, nodes.Vehicle); err != nil {
		return res, err
	}
	res.device, err = nodes.Proxy(s, nodes.AftermarketDevice)
	return res, err
}

func key(prefix byte, parts ...[]byte) []byte {
	return common.Key(common.PrefixAftermarketDevice, append([][]byte{{prefix}}, parts...)...)
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

// IsClaimed checks whether the device is claimed.
func IsClaimed(s common.Storage, id uint64) bool {
	return s.Get(key(prefixClaimed, common.IDBytes(id))) != nil
}

// MintBatch mints devices under the manufacturer on behalf of its owner,
// the caller. The caller must hold a valid license. It returns ids of the
// minted devices.
func MintBatch(ic *interop.Context, manufacturerNode uint64, devices []DeviceInfos) ([]uint64, error) {
	ns, err := resolve(ic)
	if err != nil {
		return nil, err
	}
	if !nodes.Exists(ic, ns.manufacturer, manufacturerNode) {
		return nil, common.ErrInvalidParentNode
	}
	owner := nft.OwnerOf(ic, ns.manufacturer, manufacturerNode)
	if !owner.Equals(ic.Caller) {
		return nil, ErrNotManufacturerOwner
	}
	cost, err := license.Require(ic, ic.Caller, len(devices))
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(devices))
	for _, d := range devices {
		if d.Address.Equals(util.Uint160{}) {
			return nil, common.ErrZeroAddress
		}
		if IDByAddress(ic, d.Address) != 0 {
			return nil, fmt.Errorf("%w: %s", ErrDeviceRegistered, common.AddressString(d.Address))
		}
		id, err := nft.Mint(ic, ns.device, owner)
		if err != nil {
			return nil, err
		}
		if err := nodes.Create(ic, ns.device, id, ns.manufacturer, manufacturerNode); err != nil {
			return nil, err
		}
		common.PutUint64(ic, key(prefixAddress, d.Address.BytesBE()), id)
		ic.Put(key(prefixID, common.IDBytes(id)), d.Address.BytesBE())
		ic.Notify("AftermarketDeviceNodeMinted", manufacturerNode, id, d.Address, owner)
		if err := SetInfos(ic, id, d.Infos); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	ic.Notify("AftermarketDevicesMinted", manufacturerNode, uint64(len(ids)), cost)
	return ids, nil
}

// SetInfos sets device attributes.
func SetInfos(ic *interop.Context, id uint64, infos []nodes.AttributeInfoPair) error {
	ns, err := nodes.Proxy(ic, nodes.AftermarketDevice)
	if err != nil {
		return err
	}
	if err := nodes.SetInfos(ic, ns, id, infos); err != nil {
		return err
	}
	for _, p := range infos {
		ic.Notify("AftermarketDeviceAttributeSet", id, p.Attribute, p.Info)
	}
	return nil
}

// ClaimMessage returns typed data message both the owner and the device
// sign to claim the device.
func ClaimMessage(id uint64, owner util.Uint160) typeddata.Message {
	return typeddata.Message{"aftermarketDeviceNode": id, "owner": owner}
}

// PairMessage returns typed data message signed to pair the device with the
// vehicle.
func PairMessage(id, vehicleNode uint64) typeddata.Message {
	return typeddata.Message{"aftermarketDeviceNode": id, "vehicleNode": vehicleNode}
}

// ClaimSign claims the device for owner with consent of both.
func ClaimSign(ic *interop.Context, id uint64, owner util.Uint160, ownerSig, deviceSig []byte) error {
	if _, err := checkClaimable(ic, id); err != nil {
		return err
	}
	msg := ClaimMessage(id, owner)
	if err := sigcheck.Require(ic, sigcheck.ClaimAftermarketDeviceSign, msg, ownerSig, owner); err != nil {
		return err
	}
	if err := sigcheck.Require(ic, sigcheck.ClaimAftermarketDeviceSign, msg, deviceSig, AddressByID(ic, id)); err != nil {
		return err
	}
	return Claim(ic, id, owner)
}

// Claim claims the device for owner without consent checks.
func Claim(ic *interop.Context, id uint64, owner util.Uint160) error {
	ns, err := checkClaimable(ic, id)
	if err != nil {
		return err
	}
	if owner.Equals(util.Uint160{}) {
		return common.ErrZeroAddress
	}
	ic.Put(key(prefixClaimed, common.IDBytes(id)), []byte{1})
	if err := nft.Move(ic, ns, owner, id); err != nil {
		return err
	}
	mapper.ResetBeneficiary(ic, ns, id)
	ic.Notify("AftermarketDeviceClaimed", id, owner)
	return nil
}

func checkClaimable(ic *interop.Context, id uint64) (util.Uint160, error) {
	ns, err := nodes.Proxy(ic, nodes.AftermarketDevice)
	if err != nil {
		return util.Uint160{}, err
	}
	if !nodes.Exists(ic, ns, id) {
		return util.Uint160{}, common.ErrInvalidNode
	}
	if IsClaimed(ic, id) {
		return util.Uint160{}, fmt.Errorf("%w: %d", ErrClaimed, id)
	}
	return ns, nil
}

// Unclaim returns the device into the unclaimed state, unpairing it first.
func Unclaim(ic *interop.Context, id uint64) error {
	ns, err := resolve(ic)
	if err != nil {
		return err
	}
	if !nodes.Exists(ic, ns.device, id) {
		return common.ErrInvalidNode
	}
	if vehicleNode := mapper.GetLink(ic, ns.device, id); vehicleNode != 0 {
		if err := Unpair(ic, id, vehicleNode); err != nil {
			return err
		}
	}
	ic.Delete(key(prefixClaimed, common.IDBytes(id)))
	ic.Notify("AftermarketDeviceUnclaimed", id)
	return nil
}

// PairSign pairs the device with the vehicle with consent of their common
// owner.
func PairSign(ic *interop.Context, id, vehicleNode uint64, ownerSig []byte) error {
	ns, err := checkPairable(ic, id, vehicleNode)
	if err != nil {
		return err
	}
	owner := nft.OwnerOf(ic, ns.vehicle, vehicleNode)
	if !nft.OwnerOf(ic, ns.device, id).Equals(owner) {
		return ErrOwnerMismatch
	}
	if err := sigcheck.Require(ic, sigcheck.PairAftermarketDeviceSign, PairMessage(id, vehicleNode), ownerSig, owner); err != nil {
		return err
	}
	return pair(ic, ns, id, vehicleNode, owner)
}

// PairSignDual pairs the device with the vehicle with consent of the vehicle
// owner and the device key. The device may be owned by another account.
func PairSignDual(ic *interop.Context, id, vehicleNode uint64, deviceSig, ownerSig []byte) error {
	ns, err := checkPairable(ic, id, vehicleNode)
	if err != nil {
		return err
	}
	owner := nft.OwnerOf(ic, ns.vehicle, vehicleNode)
	msg := PairMessage(id, vehicleNode)
	if err := sigcheck.Require(ic, sigcheck.PairAftermarketDeviceSign, msg, ownerSig, owner); err != nil {
		return err
	}
	if err := sigcheck.Require(ic, sigcheck.PairAftermarketDeviceSign, msg, deviceSig, AddressByID(ic, id)); err != nil {
		return err
	}
	return pair(ic, ns, id, vehicleNode, owner)
}

func checkPairable(ic *interop.Context, id, vehicleNode uint64) (namespaces, error) {
	ns, err := resolve(ic)
	if err != nil {
		return ns, err
	}
	if !nodes.Exists(ic, ns.device, id) {
		return ns, common.ErrInvalidNode
	}
	if !nodes.Exists(ic, ns.vehicle, vehicleNode) {
		return ns, ErrInvalidVehicle
	}
	if !IsClaimed(ic, id) {
		return ns, ErrNotClaimed
	}
	if mapper.GetLink(ic, ns.vehicle, vehicleNode) != 0 {
		return ns, ErrVehiclePaired
	}
	if mapper.GetLink(ic, ns.device, id) != 0 {
		return ns, ErrDevicePaired
	}
	return ns, nil
}

func pair(ic *interop.Context, ns namespaces, id, vehicleNode uint64, owner util.Uint160) error {
	if err := mapper.SetLink(ic, ns.vehicle, vehicleNode, ns.device, id); err != nil {
		return err
	}
	ic.Notify("AftermarketDevicePaired", id, vehicleNode, owner)
	return nil
}

// UnpairSign unpairs the device from the vehicle with consent of the vehicle
// owner.
func UnpairSign(ic *interop.Context, id, vehicleNode uint64, ownerSig []byte) error {
	ns, err := resolve(ic)
	if err != nil {
		return err
	}
	owner := nft.OwnerOf(ic, ns.vehicle, vehicleNode)
	msg := PairMessage(id, vehicleNode)
	if err := sigcheck.Require(ic, sigcheck.UnPairAftermarketDeviceSign, msg, ownerSig, owner); err != nil {
		return err
	}
	return Unpair(ic, id, vehicleNode)
}

// Unpair removes the link between the device and the vehicle.
func Unpair(ic *interop.Context, id, vehicleNode uint64) error {
	ns, err := resolve(ic)
	if err != nil {
		return err
	}
	if vehicleNode == 0 || mapper.GetLink(ic, ns.device, id) != vehicleNode {
		return ErrNotPaired
	}
	mapper.ClearLink(ic, ns.device, id, ns.vehicle)
	ic.Notify("AftermarketDeviceUnpaired", id, vehicleNode, nft.OwnerOf(ic, ns.device, id))
	return nil
}

// TransferOwnership moves claimed device token to another account bypassing
// the transfer hook. The pairing is kept.
func TransferOwnership(ic *interop.Context, id uint64, to util.Uint160) error {
	ns, err := nodes.Proxy(ic, nodes.AftermarketDevice)
	if err != nil {
		return err
	}
	if !nodes.Exists(ic, ns, id) {
		return common.ErrInvalidNode
	}
	if to.Equals(util.Uint160{}) {
		return common.ErrZeroAddress
	}
	from := nft.OwnerOf(ic, ns, id)
	if err := nft.Move(ic, ns, to, id); err != nil {
		return err
	}
	mapper.ResetBeneficiary(ic, ns, id)
	ic.Notify("AftermarketDeviceTransferred", id, from, to)
	return nil
}

func onTransfer(ic *interop.Context, p nft.TransferParams) error {
	ns, err := nodes.CheckProxyCaller(ic, nodes.AftermarketDevice)
	if err != nil {
		return err
	}
	if !IsClaimed(ic, p.ID) {
		return ErrNotClaimed
	}
	mapper.ResetBeneficiary(ic, ns, p.ID)
	return nil
}
