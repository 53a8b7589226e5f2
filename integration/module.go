package integration

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
	OpSetIdProxyAddress = "setIntegrationIdProxyAddress(address)"
	OpAddAttribute      = "addIntegrationAttribute(string)"
	OpMint              = "mintIntegration(address,string,(string,string)[])"
	OpSetInfo           = "setIntegrationInfo(uint256,(string,string)[])"
	OpIsController      = "isIntegrationController(address)"
	OpGetIDByName       = "getIntegrationIdByName(string)"
	OpGetNameByID       = "getIntegrationNameById(uint256)"
	OpOnTransfer        = "onIntegrationTransfer((address,address,address,uint256))"
)

// MintParams are arguments of OpMint.
type MintParams struct {
	Owner util.Uint160
	Name  string
	Infos []nodes.AttributeInfoPair
}

// InfoParams are arguments of OpSetInfo.
type InfoParams struct {
	ID    uint64
	Infos []nodes.AttributeInfoPair
}

// Module is the integration module.
type Module struct{}

// Name implements interop.Module.
func (Module) Name() string { return "Integration" }

// Version implements interop.Module.
func (Module) Version() int { return common.Version }

// Methods implements interop.Module.
func (Module) Methods() []interop.Method {
	return []interop.Method{
		interop.NewMethod(OpSetIdProxyAddress, func(ic *interop.Context, ns util.Uint160) (interop.Null, error) {
			if err := access.Check(ic, access.AdminRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, nodes.SetProxy(ic, nodes.Integration, ns)
		}),
		interop.NewMethod(OpAddAttribute, func(ic *interop.Context, attr string) (interop.Null, error) {
			if err := access.Check(ic, access.AdminRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, nodes.AddAttribute(ic, nodes.Integration, attr)
		}),
		interop.NewMethod(OpMint, func(ic *interop.Context, p MintParams) (uint64, error) {
			if err := access.Check(ic, access.MintIntegrationRole); err != nil {
				return 0, err
			}
			return Mint(ic, p.Owner, p.Name, p.Infos)
		}),
		interop.NewMethod(OpSetInfo, func(ic *interop.Context, p InfoParams) (interop.Null, error) {
			if err := access.Check(ic, access.SetIntegrationInfoRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, SetInfos(ic, p.ID, p.Infos)
		}),
		interop.NewSafeMethod(OpIsController, func(ic *interop.Context, acc util.Uint160) (bool, error) {
			return IsController(ic, acc), nil
		}),
		interop.NewSafeMethod(OpGetIDByName, func(ic *interop.Context, name string) (uint64, error) {
			return IDByName(ic, name), nil
		}),
		interop.NewSafeMethod(OpGetNameByID, func(ic *interop.Context, id uint64) (string, error) {
			return NameByID(ic, id), nil
		}),
		interop.NewMethod(OpOnTransfer, func(ic *interop.Context, p nft.TransferParams) (interop.Null, error) {
			return interop.Null{}, onTransfer(ic, p)
		}),
	}
}
