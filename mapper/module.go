package mapper

import (
	"github.com/motorid/registry/common"
	"github.com/motorid/registry/interop"
	"github.com/motorid/registry/nodes"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Operation signatures.
const (
	OpSetAftermarketDeviceBeneficiary = "setAftermarketDeviceBeneficiary(uint256,address)"
	OpGetBeneficiary                  = "getBeneficiary(address,uint256)"
	OpGetLink                         = "getLink(address,uint256)"
	OpGetNodeLink                     = "getNodeLink(address,address,uint256)"
)

// BeneficiaryParams are arguments of OpSetAftermarketDeviceBeneficiary.
type BeneficiaryParams struct {
	AftermarketDeviceNode uint64
	Beneficiary           util.Uint160
}

// NodeLinkParams identify node link of node ID of namespace A to
// namespace B.
type NodeLinkParams struct {
	NamespaceA util.Uint160
	NamespaceB util.Uint160
	ID         uint64
}

// Module exposes links and beneficiaries.
type Module struct{}

// Name implements interop.Module.
func (Module) Name() string { return "Mapper" }

// Version implements interop.Module.
func (Module) Version() int { return common.Version }

// Methods implements interop.Module.
func (Module) Methods() []interop.Method {
	return []interop.Method{
		interop.NewMethod(OpSetAftermarketDeviceBeneficiary, func(ic *interop.Context, p BeneficiaryParams) (interop.Null, error) {
			ns, err := nodes.Proxy(ic, nodes.AftermarketDevice)
			if err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, SetBeneficiary(ic, ns, p.AftermarketDeviceNode, p.Beneficiary)
		}),
		interop.NewSafeMethod(OpGetBeneficiary, func(ic *interop.Context, p nodes.NodeParams) (util.Uint160, error) {
			return GetBeneficiary(ic, p.Namespace, p.ID), nil
		}),
		interop.NewSafeMethod(OpGetLink, func(ic *interop.Context, p nodes.NodeParams) (uint64, error) {
			return GetLink(ic, p.Namespace, p.ID), nil
		}),
		interop.NewSafeMethod(OpGetNodeLink, func(ic *interop.Context, p NodeLinkParams) (uint64, error) {
			return GetNodeLink(ic, p.NamespaceA, p.NamespaceB, p.ID), nil
		}),
	}
}
