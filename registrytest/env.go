package registrytest

import (
	"context"
	"testing"

	"github.com/motorid/registry/access"
	"github.com/motorid/registry/aftermarket"
	"github.com/motorid/registry/deploy"
	"github.com/motorid/registry/integration"
	"github.com/motorid/registry/license"
	"github.com/motorid/registry/manufacturer"
	"github.com/motorid/registry/sigcheck"
	"github.com/motorid/registry/streams"
	"github.com/motorid/registry/vehicle"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// Collaborator addresses of bootstrapped registries.
var (
	LicenseAddress        = util.Uint160{0x11, 0xce}
	StreamRegistryAddress = util.Uint160{0x57, 0x7e}
)

// Env is a bootstrapped registry with all modules, identity tokens and
// collaborators. The owner holds every feature role.
type Env struct {
	*Executor
	License *license.Allowlist
	Streams *streams.Memory
}

// NewEnv creates bootstrapped registry with the default configuration.
func NewEnv(t testing.TB) *Env {
	e := NewExecutor(t)
	env := &Env{
		Executor: e,
		License:  license.NewAllowlist(1),
		Streams:  streams.NewMemory(),
	}

	cfg := deploy.DefaultConfig()
	cfg.License = address.Uint160ToString(LicenseAddress)
	cfg.StreamRegistry = address.Uint160ToString(StreamRegistryAddress)
	err := deploy.Deploy(context.Background(), deploy.Prm{
		Logger:   zaptest.NewLogger(t),
		Registry: e.Registry,
		Admin:    e.Owner.Address,
		Config:   cfg,
		License:  env.License,
		Streams:  env.Streams,
	})
	require.NoError(t, err)

	for _, role := range access.FeatureRoles {
		e.Invoke(t, nil, access.OpGrantRole, access.RoleParams{Role: role, Account: e.Owner.Address})
	}
	return env
}

// Namespace returns identity token namespace of the node type.
func (e *Env) Namespace(tag string) util.Uint160 {
	return deploy.Namespace(tag)
}

// Admin returns executor acting on behalf of the registry owner.
func (e *Env) Admin() *Executor {
	return e.WithCaller(e.Owner.Address)
}

// MintManufacturer mints manufacturer controlled by owner.
func (e *Env) MintManufacturer(t testing.TB, owner util.Uint160, name string) uint64 {
	rec := e.Admin().Invoke(t, nil, manufacturer.OpMint, manufacturer.MintParams{Owner: owner, Name: name})
	return rec.Result.(uint64)
}

// MintIntegration mints integration controlled by owner.
func (e *Env) MintIntegration(t testing.TB, owner util.Uint160, name string) uint64 {
	rec := e.Admin().Invoke(t, nil, integration.OpMint, integration.MintParams{Owner: owner, Name: name})
	return rec.Result.(uint64)
}

// MintVehicle mints vehicle of the manufacturer.
func (e *Env) MintVehicle(t testing.TB, manufacturerNode uint64, owner util.Uint160) uint64 {
	rec := e.Admin().Invoke(t, nil, vehicle.OpMint, vehicle.MintParams{ManufacturerNode: manufacturerNode, Owner: owner})
	return rec.Result.(uint64)
}

// MintDevice mints aftermarket device with the given address on behalf of
// the manufacturer owner. The owner gets a license.
func (e *Env) MintDevice(t testing.TB, manufacturerNode uint64, manufacturerOwner, addr util.Uint160) uint64 {
	e.License.Add(manufacturerOwner)
	rec := e.WithCaller(manufacturerOwner).Invoke(t, nil, aftermarket.OpMintBatch, aftermarket.MintBatchParams{
		ManufacturerNode: manufacturerNode,
		Devices:          []aftermarket.DeviceInfos{{Address: addr}},
	})
	return rec.Result.([]uint64)[0]
}

// ClaimDevice claims device for owner with both signatures.
func (e *Env) ClaimDevice(t testing.TB, id uint64, owner, device Account) {
	msg := aftermarket.ClaimMessage(id, owner.Address)
	e.Admin().Invoke(t, nil, aftermarket.OpClaimSign, aftermarket.ClaimParams{
		AftermarketDeviceNode: id,
		Owner:                 owner.Address,
		OwnerSig:              e.Sign(t, owner, sigcheck.ClaimAftermarketDeviceSign, msg),
		DeviceSig:             e.Sign(t, device, sigcheck.ClaimAftermarketDeviceSign, msg),
	})
}

// PairDevice pairs device with vehicle of owner.
func (e *Env) PairDevice(t testing.TB, id, vehicleNode uint64, owner Account) {
	e.Admin().Invoke(t, nil, aftermarket.OpPairSign, aftermarket.PairParams{
		AftermarketDeviceNode: id,
		VehicleNode:           vehicleNode,
		OwnerSig:              e.Sign(t, owner, sigcheck.PairAftermarketDeviceSign, aftermarket.PairMessage(id, vehicleNode)),
	})
}
