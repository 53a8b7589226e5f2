package vehicle

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
	OpSetIdProxyAddress = "setVehicleIdProxyAddress(address)"
	OpAddAttribute      = "addVehicleAttribute(string)"
	OpMint              = "mintVehicle(uint256,address,(string,string)[])"
	OpMintSign          = "mintVehicleSign(uint256,address,(string,string)[],bytes)"
	OpSetInfo           = "setVehicleInfo(uint256,(string,string)[])"
	OpBurnSign          = "burnVehicleSign(uint256,bytes)"
	OpOnTransfer        = "onVehicleTransfer((address,address,address,uint256))"
)

// MintParams are arguments of OpMint and OpMintSign.
type MintParams struct {
	ManufacturerNode uint64
	Owner            util.Uint160
	Infos            []nodes.AttributeInfoPair
	Signature        []byte
}

// InfoParams are arguments of OpSetInfo.
type InfoParams struct {
	ID    uint64
	Infos []nodes.AttributeInfoPair
}

// BurnParams are arguments of OpBurnSign.
type BurnParams struct {
	ID        uint64
	Signature []byte
}

// Module is the vehicle module.
type Module struct{}

// Name implements interop.Module.
func (Module) Name() string { return "Vehicle" }

// Version implements interop.Module.
func (Module) Version() int { return common.Version }

// Methods implements interop.Module.
func (Module) Methods() []interop.Method {
	return []interop.Method{
		interop.NewMethod(OpSetIdProxyAddress, func(ic *interop.Context, ns util.Uint160) (interop.Null, error) {
			if err := access.Check(ic, access.AdminRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, nodes.SetProxy(ic, nodes.Vehicle, ns)
		}),
		interop.NewMethod(OpAddAttribute, func(ic *interop.Context, attr string) (interop.Null, error) {
			if err := access.Check(ic, access.AdminRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, nodes.AddAttribute(ic, nodes.Vehicle, attr)
		}),
		interop.NewMethod(OpMint, func(ic *interop.Context, p MintParams) (uint64, error) {
			if err := access.Check(ic, access.MintVehicleRole); err != nil {
				return 0, err
			}
			return Mint(ic, p.ManufacturerNode, p.Owner, p.Infos)
		}),
		interop.NewMethod(OpMintSign, func(ic *interop.Context, p MintParams) (uint64, error) {
			if err := access.Check(ic, access.MintVehicleRole); err != nil {
				return 0, err
			}
			return MintSign(ic, p.ManufacturerNode, p.Owner, p.Infos, p.Signature)
		}),
		interop.NewMethod(OpSetInfo, func(ic *interop.Context, p InfoParams) (interop.Null, error) {
			if err := access.Check(ic, access.SetVehicleInfoRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, SetInfos(ic, p.ID, p.Infos)
		}),
		interop.NewMethod(OpBurnSign, func(ic *interop.Context, p BurnParams) (interop.Null, error) {
			if err := access.Check(ic, access.BurnVehicleRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, BurnSign(ic, p.ID, p.Signature)
		}),
		interop.NewMethod(OpOnTransfer, func(ic *interop.Context, p nft.TransferParams) (interop.Null, error) {
			return interop.Null{}, onTransfer(ic, p)
		}),
	}
}
