/*
Package devadmin implements maintenance operations fixing registry data by
hand. All of them require ADMIN_ROLE, bypass owner consent and are audited
with the AdminOperation event.
*/
package devadmin

import (
	"github.com/motorid/registry/access"
	"github.com/motorid/registry/aftermarket"
	"github.com/motorid/registry/common"
	"github.com/motorid/registry/interop"
	"github.com/motorid/registry/manufacturer"
	"github.com/motorid/registry/mapper"
	"github.com/motorid/registry/nodes"
	"github.com/motorid/registry/synthetic"
	"github.com/motorid/registry/vehicle"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
)

// Operation signatures.
const (
	OpChangeParentNode    = "adminChangeParentNode(uint256,address,uint256[])"
	OpRemoveAttribute     = "removeAttribute(string,string)"
	OpUnclaim             = "unclaimAftermarketDeviceNode(uint256[])"
	OpUnpairByDeviceNode  = "unpairAftermarketDeviceByDeviceNode(uint256[])"
	OpUnpairByVehicleNode = "unpairAftermarketDeviceByVehicleNode(uint256[])"
	OpTransferDeviceOwner = "transferAftermarketDeviceOwnership(uint256,address)"
	OpRenameManufacturers = "renameManufacturers((uint256,string)[])"
	OpBurnVehicles        = "adminBurnVehicles(uint256[])"
	OpSetInfos            = "adminSetInfos(address,uint256,string[],string[])"
)

// InfosParams are arguments of OpSetInfos. Attributes and Infos are
// matched by index.
type InfosParams struct {
	Namespace  util.Uint160
	ID         uint64
	Attributes []string
	Infos      []string
}

// ParentParams are arguments of OpChangeParentNode.
type ParentParams struct {
	NewParent uint64
	Namespace util.Uint160
	IDs       []uint64
}

// AttributeParams are arguments of OpRemoveAttribute.
type AttributeParams struct {
	Type      string
	Attribute string
}

// TransferParams are arguments of OpTransferDeviceOwner.
type TransferParams struct {
	AftermarketDeviceNode uint64
	NewOwner              util.Uint160
}

// IDName binds a manufacturer id to its new name.
type IDName struct {
	ID   uint64
	Name string
}

// Module is the maintenance module.
type Module struct{}

// Name implements interop.Module.
func (Module) Name() string { return "DevAdmin" }

// Version implements interop.Module.
func (Module) Version() int { return common.Version }

// Methods implements interop.Module.
func (Module) Methods() []interop.Method {
	return []interop.Method{
		admin(OpChangeParentNode, changeParentNode),
		admin(OpRemoveAttribute, func(ic *interop.Context, p AttributeParams) error {
			return nodes.RemoveAttribute(ic, p.Type, p.Attribute)
		}),
		admin(OpUnclaim, func(ic *interop.Context, ids []uint64) error {
			for _, id := range ids {
				if err := aftermarket.Unclaim(ic, id); err != nil {
					return err
				}
			}
			return nil
		}),
		admin(OpUnpairByDeviceNode, unpairByDeviceNode),
		admin(OpUnpairByVehicleNode, unpairByVehicleNode),
		admin(OpTransferDeviceOwner, func(ic *interop.Context, p TransferParams) error {
			return aftermarket.TransferOwnership(ic, p.AftermarketDeviceNode, p.NewOwner)
		}),
		admin(OpRenameManufacturers, func(ic *interop.Context, pairs []IDName) error {
			for _, p := range pairs {
				if err := manufacturer.Rename(ic, p.ID, p.Name); err != nil {
					return err
				}
			}
			return nil
		}),
		admin(OpBurnVehicles, burnVehicles),
		admin(OpSetInfos, func(ic *interop.Context, p InfosParams) error {
			return nodes.SetInfoBatch(ic, p.Namespace, p.ID, p.Attributes, p.Infos)
		}),
	}
}

// admin wraps maintenance operation with the role check and the audit
// event.
func admin[P any](sig string, f func(*interop.Context, P) error) interop.Method {
	return interop.NewMethod(sig, func(ic *interop.Context, p P) (interop.Null, error) {
		if err := access.Check(ic, access.AdminRole); err != nil {
			return interop.Null{}, err
		}
		if err := f(ic, p); err != nil {
			return interop.Null{}, err
		}
		ic.Notify("AdminOperation", sig, ic.Caller, p)
		ic.Log.Info("admin operation",
			zap.String("operation", sig),
			zap.String("admin", common.AddressString(ic.Caller)))
		return interop.Null{}, nil
	})
}

// changeParentNode re-parents nodes keeping their parent namespace.
func changeParentNode(ic *interop.Context, p ParentParams) error {
	for _, id := range p.IDs {
		r, ok := nodes.Get(ic, p.Namespace, id)
		if !ok {
			return common.ErrInvalidNode
		}
		if err := nodes.SetParentNode(ic, p.Namespace, id, r.ParentNamespace, p.NewParent); err != nil {
			return err
		}
	}
	return nil
}

func unpairByDeviceNode(ic *interop.Context, ids []uint64) error {
	ns, err := nodes.Proxy(ic, nodes.AftermarketDevice)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := aftermarket.Unpair(ic, id, mapper.GetLink(ic, ns, id)); err != nil {
			return err
		}
	}
	return nil
}

func unpairByVehicleNode(ic *interop.Context, ids []uint64) error {
	ns, err := vehicle.Namespace(ic)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := aftermarket.Unpair(ic, mapper.GetLink(ic, ns, id), id); err != nil {
			return err
		}
	}
	return nil
}

// burnVehicles burns vehicles together with their synthetic devices after
// unpairing aftermarket devices.
func burnVehicles(ic *interop.Context, ids []uint64) error {
	ns, err := vehicle.Namespace(ic)
	if err != nil {
		return err
	}
	sns, sdErr := nodes.Proxy(ic, nodes.SyntheticDevice)
	for _, id := range ids {
		if ad := mapper.GetLink(ic, ns, id); ad != 0 {
			if err := aftermarket.Unpair(ic, ad, id); err != nil {
				return err
			}
		}
		if sdErr == nil {
			if sd := mapper.GetNodeLink(ic, ns, sns, id); sd != 0 {
				if err := synthetic.Burn(ic, sd); err != nil {
					return err
				}
			}
		}
		if err := vehicle.Burn(ic, id); err != nil {
			return err
		}
	}
	return nil
}
