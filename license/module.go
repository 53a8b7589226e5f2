package license

import (
	"github.com/motorid/registry/access"
	"github.com/motorid/registry/common"
	"github.com/motorid/registry/interop"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Operation signatures.
const (
	OpSetLicense = "setLicense(address)"
	OpGetLicense = "getLicense()"
)

// Module configures the license validator.
type Module struct{}

// Name implements interop.Module.
func (Module) Name() string { return "License" }

// Version implements interop.Module.
func (Module) Version() int { return common.Version }

// Methods implements interop.Module.
func (Module) Methods() []interop.Method {
	return []interop.Method{
		interop.NewMethod(OpSetLicense, func(ic *interop.Context, addr util.Uint160) (interop.Null, error) {
			if err := access.Check(ic, access.AdminRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, SetAddress(ic, addr)
		}),
		interop.NewSafeMethod(OpGetLicense, func(ic *interop.Context, _ interop.Null) (util.Uint160, error) {
			addr, _ := Address(ic)
			return addr, nil
		}),
	}
}
