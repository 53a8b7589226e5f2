package aftermarket

import (
	"github.com/motorid/registry/access"
	"github.com/motorid/registry/common"
	"github.com/motorid/registry/interop"
	"github.com/motorid/registry/nft"
	"github.com/motorid/registry/nodes"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Operation signatures.
const (
	OpSetIdProxyAddress = "setAftermarketDeviceIdProxyAddress(address)"
	OpAddAttribute      = "addAftermarketDeviceAttribute(string)"
	OpMintBatch         = "mintAftermarketDeviceByManufacturerBatch(uint256,(address,(string,string)[])[])"
	OpClaimSign         = "claimAftermarketDeviceSign(uint256,address,bytes,bytes)"
	OpClaimBatch        = "claimAftermarketDeviceBatch(uint256,(uint256,address)[])"
	OpPairSign          = "pairAftermarketDeviceSign(uint256,uint256,bytes)"
	OpPairSignDual      = "pairAftermarketDeviceSign(uint256,uint256,bytes,bytes)"
	OpUnpair            = "unpairAftermarketDevice(uint256,uint256)"
	OpUnpairSign        = "unpairAftermarketDeviceSign(uint256,uint256,bytes)"
	OpSetInfo           = "setAftermarketDeviceInfo(uint256,(string,string)[])"
	OpGetIDByAddress    = "getAftermarketDeviceIdByAddress(address)"
	OpIsClaimed         = "isAftermarketDeviceClaimed(uint256)"
	OpOnTransfer        = "onAftermarketDeviceTransfer((address,address,address,uint256))"
)

// MintBatchParams are arguments of OpMintBatch.
type MintBatchParams struct {
	ManufacturerNode uint64
	Devices          []DeviceInfos
}

// ClaimParams are arguments of OpClaimSign.
type ClaimParams struct {
	AftermarketDeviceNode uint64
	Owner                 util.Uint160
	OwnerSig              []byte
	DeviceSig             []byte
}

// ClaimBatchParams are arguments of OpClaimBatch.
type ClaimBatchParams struct {
	ManufacturerNode uint64
	Pairs            []OwnerPair
}

// PairParams are arguments of OpPairSign, OpPairSignDual, OpUnpair and
// OpUnpairSign. DeviceSig is used by OpPairSignDual only.
type PairParams struct {
	AftermarketDeviceNode uint64
	VehicleNode           uint64
	OwnerSig              []byte
	DeviceSig             []byte
}

// InfoParams are arguments of OpSetInfo.
type InfoParams struct {
	ID    uint64
	Infos []nodes.AttributeInfoPair
}

// Module is the aftermarket device module.
type Module struct{}

// Name implements interop.Module.
func (Module) Name() string { return "AftermarketDevice" }

// Version implements interop.Module.
func (Module) Version() int { return common.Version }

// Methods implements interop.Module.
func (Module) Methods() []interop.Method {
	return []interop.Method{
		interop.NewMethod(OpSetIdProxyAddress, func(ic *interop.Context, ns util.Uint160) (interop.Null, error) {
			if err := access.Check(ic, access.AdminRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, nodes.SetProxy(ic, nodes.AftermarketDevice, ns)
		}),
		interop.NewMethod(OpAddAttribute, func(ic *interop.Context, attr string) (interop.Null, error) {
			if err := access.Check(ic, access.AdminRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, nodes.AddAttribute(ic, nodes.AftermarketDevice, attr)
		}),
		interop.NewMethod(OpMintBatch, func(ic *interop.Context, p MintBatchParams) ([]uint64, error) {
			return MintBatch(ic, p.ManufacturerNode, p.Devices)
		}),
		interop.NewMethod(OpClaimSign, func(ic *interop.Context, p ClaimParams) (interop.Null, error) {
			if err := access.Check(ic, access.ClaimAftermarketDeviceRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, ClaimSign(ic, p.AftermarketDeviceNode, p.Owner, p.OwnerSig, p.DeviceSig)
		}),
		interop.NewMethod(OpClaimBatch, claimBatch),
		interop.NewMethod(OpPairSign, func(ic *interop.Context, p PairParams) (interop.Null, error) {
			if err := access.Check(ic, access.PairAftermarketDeviceRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, PairSign(ic, p.AftermarketDeviceNode, p.VehicleNode, p.OwnerSig)
		}),
		interop.NewMethod(OpPairSignDual, func(ic *interop.Context, p PairParams) (interop.Null, error) {
			if err := access.Check(ic, access.PairAftermarketDeviceRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, PairSignDual(ic, p.AftermarketDeviceNode, p.VehicleNode, p.DeviceSig, p.OwnerSig)
		}),
		interop.NewMethod(OpUnpair, func(ic *interop.Context, p PairParams) (interop.Null, error) {
			if err := access.Check(ic, access.UnpairAftermarketDeviceRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, Unpair(ic, p.AftermarketDeviceNode, p.VehicleNode)
		}),
		interop.NewMethod(OpUnpairSign, func(ic *interop.Context, p PairParams) (interop.Null, error) {
			if err := access.Check(ic, access.UnpairAftermarketDeviceRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, UnpairSign(ic, p.AftermarketDeviceNode, p.VehicleNode, p.OwnerSig)
		}),
		interop.NewMethod(OpSetInfo, func(ic *interop.Context, p InfoParams) (interop.Null, error) {
			if err := access.Check(ic, access.SetAftermarketDeviceInfoRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, SetInfos(ic, p.ID, p.Infos)
		}),
		interop.NewSafeMethod(OpGetIDByAddress, func(ic *interop.Context, addr util.Uint160) (uint64, error) {
			return IDByAddress(ic, addr), nil
		}),
		interop.NewSafeMethod(OpIsClaimed, func(ic *interop.Context, id uint64) (bool, error) {
			return IsClaimed(ic, id), nil
		}),
		interop.NewMethod(OpOnTransfer, func(ic *interop.Context, p nft.TransferParams) (interop.Null, error) {
			return interop.Null{}, onTransfer(ic, p)
		}),
	}
}

// claimBatch claims devices of one manufacturer without consent checks.
func claimBatch(ic *interop.Context, p ClaimBatchParams) (interop.Null, error) {
	if err := access.Check(ic, access.ClaimAftermarketDeviceRole); err != nil {
		return interop.Null{}, err
	}
	ns, err := nodes.Proxy(ic, nodes.AftermarketDevice)
	if err != nil {
		return interop.Null{}, err
	}
	for _, pair := range p.Pairs {
		if nodes.GetParentNode(ic, ns, pair.AftermarketDeviceNode) != p.ManufacturerNode {
			return interop.Null{}, common.ErrInvalidParentNode
		}
		if err := Claim(ic, pair.AftermarketDeviceNode, pair.Owner); err != nil {
			return interop.Null{}, err
		}
	}
	return interop.Null{}, nil
}
