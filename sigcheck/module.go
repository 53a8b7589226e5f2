package sigcheck

import (
	"github.com/motorid/registry/access"
	"github.com/motorid/registry/common"
	"github.com/motorid/registry/interop"
	"github.com/motorid/registry/typeddata"
)

// Operation signatures.
const (
	OpInitialize = "initialize(string,string)"
	OpDomain     = "eip712Domain()"
)

// InitParams are arguments of OpInitialize.
type InitParams struct {
	Name    string
	Version string
}

// Module exposes signature domain management.
type Module struct{}

// Name implements interop.Module.
func (Module) Name() string { return "Eip712Checker" }

// Version implements interop.Module.
func (Module) Version() int { return common.Version }

// Methods implements interop.Module.
func (Module) Methods() []interop.Method {
	return []interop.Method{
		interop.NewMethod(OpInitialize, func(ic *interop.Context, p InitParams) (interop.Null, error) {
			if err := access.Check(ic, access.DefaultAdminRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, Initialize(ic, p.Name, p.Version)
		}),
		interop.NewSafeMethod(OpDomain, func(ic *interop.Context, _ interop.Null) (typeddata.Domain, error) {
			return Domain(ic)
		}),
	}
}
