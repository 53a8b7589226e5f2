package manufacturer

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
	OpSetIdProxyAddress    = "setManufacturerIdProxyAddress(address)"
	OpAddAttribute         = "addManufacturerAttribute(string)"
	OpMint                 = "mintManufacturer(address,string,(string,string)[])"
	OpMintBatch            = "mintManufacturerBatch(address,string[])"
	OpSetInfo              = "setManufacturerInfo(uint256,(string,string)[])"
	OpSetController        = "setController(address)"
	OpIsController         = "isController(address)"
	OpIsManufacturerMinted = "isManufacturerMinted(address)"
	OpGetIDByName          = "getManufacturerIdByName(string)"
	OpGetNameByID          = "getManufacturerNameById(uint256)"
	OpGetIDByOwner         = "getManufacturerIdByOwner(address)"
	OpOnTransfer           = "onManufacturerTransfer((address,address,address,uint256))"
)

// MintParams are arguments of OpMint.
type MintParams struct {
	Owner util.Uint160
	Name  string
	Infos []nodes.AttributeInfoPair
}

// MintBatchParams are arguments of OpMintBatch.
type MintBatchParams struct {
	Owner util.Uint160
	Names []string
}

// InfoParams are arguments of OpSetInfo.
type InfoParams struct {
	ID    uint64
	Infos []nodes.AttributeInfoPair
}

// Module is the manufacturer module.
type Module struct{}

// Name implements interop.Module.
func (Module) Name() string { return "Manufacturer" }

// Version implements interop.Module.
func (Module) Version() int { return common.Version }

// Methods implements interop.Module.
func (Module) Methods() []interop.Method {
	return []interop.Method{
		interop.NewMethod(OpSetIdProxyAddress, func(ic *interop.Context, ns util.Uint160) (interop.Null, error) {
			if err := access.Check(ic, access.AdminRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, nodes.SetProxy(ic, nodes.Manufacturer, ns)
		}),
		interop.NewMethod(OpAddAttribute, func(ic *interop.Context, attr string) (interop.Null, error) {
			if err := access.Check(ic, access.AdminRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, nodes.AddAttribute(ic, nodes.Manufacturer, attr)
		}),
		interop.NewMethod(OpMint, func(ic *interop.Context, p MintParams) (uint64, error) {
			if err := access.Check(ic, access.MintManufacturerRole); err != nil {
				return 0, err
			}
			return Mint(ic, p.Owner, p.Name, p.Infos)
		}),
		interop.NewMethod(OpMintBatch, mintBatch),
		interop.NewMethod(OpSetInfo, func(ic *interop.Context, p InfoParams) (interop.Null, error) {
			if err := access.Check(ic, access.SetManufacturerInfoRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, SetInfos(ic, p.ID, p.Infos)
		}),
		interop.NewMethod(OpSetController, func(ic *interop.Context, acc util.Uint160) (interop.Null, error) {
			if err := access.Check(ic, access.AdminRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, SetController(ic, acc)
		}),
		interop.NewSafeMethod(OpIsController, func(ic *interop.Context, acc util.Uint160) (bool, error) {
			return IsController(ic, acc), nil
		}),
		interop.NewSafeMethod(OpIsManufacturerMinted, func(ic *interop.Context, acc util.Uint160) (bool, error) {
			return IsMinted(ic, acc), nil
		}),
		interop.NewSafeMethod(OpGetIDByName, func(ic *interop.Context, name string) (uint64, error) {
			return IDByName(ic, name), nil
		}),
		interop.NewSafeMethod(OpGetNameByID, func(ic *interop.Context, id uint64) (string, error) {
			return NameByID(ic, id), nil
		}),
		interop.NewSafeMethod(OpGetIDByOwner, func(ic *interop.Context, owner util.Uint160) (uint64, error) {
			return IDByOwner(ic, owner), nil
		}),
		interop.NewMethod(OpOnTransfer, func(ic *interop.Context, p nft.TransferParams) (interop.Null, error) {
			return interop.Null{}, onTransfer(ic, p)
		}),
	}
}

// mintBatch mints several manufacturers owned by one account. The owner
// becomes controller of the first one unless it controls one already.
func mintBatch(ic *interop.Context, p MintBatchParams) ([]uint64, error) {
	if err := access.Check(ic, access.AdminRole); err != nil {
		return nil, err
	}
	ns, err := Namespace(ic)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(p.Names))
	for _, name := range p.Names {
		if err := checkName(ic, name); err != nil {
			return nil, err
		}
		id, err := nft.Mint(ic, ns, p.Owner)
		if err != nil {
			return nil, err
		}
		if err := nodes.Create(ic, ns, id, util.Uint160{}, 0); err != nil {
			return nil, err
		}
		setName(ic, id, name)
		if !IsMinted(ic, p.Owner) {
			setFlags(ic, p.Owner, flagController|flagMinted)
			common.PutUint64(ic, key(prefixOwned, p.Owner.BytesBE()), id)
		}
		ic.Notify("ManufacturerNodeMinted", name, id, p.Owner)
		ids = append(ids, id)
	}
	return ids, nil
}
