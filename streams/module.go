package streams

import (
	"github.com/motorid/registry/access"
	"github.com/motorid/registry/common"
	"github.com/motorid/registry/interop"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Operation signatures.
const (
	OpSetStreamRegistry   = "setStreamRegistry(address)"
	OpCreateVehicleStream = "createVehicleStream(uint256)"
	OpDeleteVehicleStream = "deleteVehicleStream(uint256)"
	OpGetVehicleStream    = "getVehicleStream(uint256)"
)

// Module manages vehicle streams.
type Module struct{}

// Name implements interop.Module.
func (Module) Name() string { return "Streams" }

// Version implements interop.Module.
func (Module) Version() int { return common.Version }

// Methods implements interop.Module.
func (Module) Methods() []interop.Method {
	return []interop.Method{
		interop.NewMethod(OpSetStreamRegistry, func(ic *interop.Context, addr util.Uint160) (interop.Null, error) {
			if err := access.Check(ic, access.AdminRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, SetAddress(ic, addr)
		}),
		interop.NewMethod(OpCreateVehicleStream, Create),
		interop.NewMethod(OpDeleteVehicleStream, func(ic *interop.Context, id uint64) (interop.Null, error) {
			return interop.Null{}, Delete(ic, id)
		}),
		interop.NewSafeMethod(OpGetVehicleStream, func(ic *interop.Context, id uint64) (string, error) {
			return StreamOf(ic, id), nil
		}),
	}
}
