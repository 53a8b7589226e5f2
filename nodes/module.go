package nodes

import (
	"github.com/motorid/registry/access"
	"github.com/motorid/registry/common"
	"github.com/motorid/registry/interop"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Operation signatures.
const (
	OpAddNodeType        = "addNodeType(string)"
	OpSetNodeType        = "setNodeType(address,string)"
	OpGetNodeType        = "getNodeType(address,uint256)"
	OpGetParentNode      = "getParentNode(address,uint256)"
	OpGetInfo            = "getInfo(address,uint256,string)"
	OpGetInfos           = "getInfos(address,uint256)"
	OpIsAllowedAttribute = "isAllowedAttribute(string,string)"
	OpGetAttributes      = "getAttributes(string)"
)

// NodeParams identify a node.
type NodeParams struct {
	Namespace util.Uint160
	ID        uint64
}

// InfoParams identify an attribute value of a node.
type InfoParams struct {
	Namespace util.Uint160
	ID        uint64
	Attribute string
}

// NodeTypeParams are arguments of OpSetNodeType.
type NodeTypeParams struct {
	Namespace util.Uint160
	Tag       string
}

// AttributeParams identify an attribute of a node type.
type AttributeParams struct {
	Type      string
	Attribute string
}

// Module exposes node type management and node reads.
type Module struct{}

// Name implements interop.Module.
func (Module) Name() string { return "Nodes" }

// Version implements interop.Module.
func (Module) Version() int { return common.Version }

// Methods implements interop.Module.
func (Module) Methods() []interop.Method {
	return []interop.Method{
		interop.NewMethod(OpAddNodeType, func(ic *interop.Context, tag string) (interop.Null, error) {
			if err := access.Check(ic, access.AdminRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, AddNodeType(ic, tag)
		}),
		interop.NewMethod(OpSetNodeType, func(ic *interop.Context, p NodeTypeParams) (interop.Null, error) {
			if err := access.Check(ic, access.AdminRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, SetNodeType(ic, p.Namespace, p.Tag)
		}),
		interop.NewSafeMethod(OpGetNodeType, func(ic *interop.Context, p NodeParams) (string, error) {
			return GetNodeType(ic, p.Namespace, p.ID), nil
		}),
		interop.NewSafeMethod(OpGetParentNode, func(ic *interop.Context, p NodeParams) (uint64, error) {
			return GetParentNode(ic, p.Namespace, p.ID), nil
		}),
		interop.NewSafeMethod(OpGetInfo, func(ic *interop.Context, p InfoParams) (string, error) {
			return GetInfo(ic, p.Namespace, p.ID, p.Attribute), nil
		}),
		interop.NewSafeMethod(OpGetInfos, func(ic *interop.Context, p NodeParams) ([]AttributeInfoPair, error) {
			return Infos(ic, p.Namespace, p.ID), nil
		}),
		interop.NewSafeMethod(OpIsAllowedAttribute, func(ic *interop.Context, p AttributeParams) (bool, error) {
			return IsAllowedAttribute(ic, p.Type, p.Attribute), nil
		}),
		interop.NewSafeMethod(OpGetAttributes, func(ic *interop.Context, typ string) ([]string, error) {
			return Attributes(ic, typ), nil
		}),
	}
}
