package synthetic

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
	OpSetIdProxyAddress = "setSyntheticDeviceIdProxyAddress(address)"
	OpAddAttribute      = "addSyntheticDeviceAttribute(string)"
	OpMintSign          = "mintSyntheticDeviceSign((uint256,uint256,bytes,bytes,address,(string,string)[]))"
	OpBurnSign          = "burnSyntheticDeviceSign(uint256,uint256,bytes)"
	OpSetInfo           = "setSyntheticDeviceInfo(uint256,(string,string)[])"
	OpGetIDByAddress    = "getSyntheticDeviceIdByAddress(address)"
	OpOnTransfer        = "onSyntheticDeviceTransfer((address,address,address,uint256))"
)

// BurnParams are arguments of OpBurnSign.
type BurnParams struct {
	VehicleNode         uint64
	SyntheticDeviceNode uint64
	OwnerSig            []byte
}

// InfoParams are arguments of OpSetInfo.
type InfoParams struct {
	ID    uint64
	Infos []nodes.AttributeInfoPair
}

// Module is the synthetic device module.
type Module struct{}

// Name implements interop.Module.
func (Module) Name() string { return "SyntheticDevice" }

// Version implements interop.Module.
func (Module) Version() int { return common.Version }

// Methods implements interop.Module.
func (Module) Methods() []interop.Method {
	return []interop.Method{
		interop.NewMethod(OpSetIdProxyAddress, func(ic *interop.Context, ns util.Uint160) (interop.Null, error) {
			if err := access.Check(ic, access.AdminRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, nodes.SetProxy(ic, nodes.SyntheticDevice, ns)
		}),
		interop.NewMethod(OpAddAttribute, func(ic *interop.Context, attr string) (interop.Null, error) {
			if err := access.Check(ic, access.AdminRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, nodes.AddAttribute(ic, nodes.SyntheticDevice, attr)
		}),
		interop.NewMethod(OpMintSign, func(ic *interop.Context, in MintInput) (uint64, error) {
			if err := access.Check(ic, access.MintSyntheticDeviceRole); err != nil {
				return 0, err
			}
			return MintSign(ic, in)
		}),
		interop.NewMethod(OpBurnSign, func(ic *interop.Context, p BurnParams) (interop.Null, error) {
			if err := access.Check(ic, access.BurnSyntheticDeviceRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, BurnSign(ic, p.VehicleNode, p.SyntheticDeviceNode, p.OwnerSig)
		}),
		interop.NewMethod(OpSetInfo, func(ic *interop.Context, p InfoParams) (interop.Null, error) {
			if err := access.Check(ic, access.SetSyntheticDeviceInfoRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, SetInfos(ic, p.ID, p.Infos)
		}),
		interop.NewSafeMethod(OpGetIDByAddress, func(ic *interop.Context, addr util.Uint160) (uint64, error) {
			return IDByAddress(ic, addr), nil
		}),
		interop.NewMethod(OpOnTransfer, func(ic *interop.Context, p nft.TransferParams) (interop.Null, error) {
			return interop.Null{}, onTransfer(ic, p)
		}),
	}
}
