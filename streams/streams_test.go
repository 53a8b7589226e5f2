package streams_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/motorid/registry/common"
	"github.com/motorid/registry/registrytest"
	"github.com/motorid/registry/streams"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestVehicleStream(t *testing.T) {
	e := registrytest.NewEnv(t)
	maker := registrytest.NewAccount(t)
	m := e.MintManufacturer(t, maker.Address, "Toyota")
	owner, stranger := registrytest.NewAccount(t), registrytest.NewAccount(t)
	id := e.MintVehicle(t, m, owner.Address)

	e.WithCaller(stranger.Address).InvokeFail(t, streams.ErrNotOwnerNorBeneficiary, streams.OpCreateVehicleStream, id)
	e.WithCaller(owner.Address).InvokeFail(t, common.ErrInvalidNode, streams.OpCreateVehicleStream, id+1)

	streamID := e.WithCaller(owner.Address).Invoke(t, nil, streams.OpCreateVehicleStream, id).Result.(string)
	require.NotEmpty(t, streamID)
	e.Invoke(t, streamID, streams.OpGetVehicleStream, id)
	e.WithCaller(owner.Address).InvokeFail(t, "vehicle stream already exists", streams.OpCreateVehicleStream, id)

	e.WithCaller(owner.Address).Invoke(t, nil, streams.OpDeleteVehicleStream, id)
	e.Invoke(t, "", streams.OpGetVehicleStream, id)
	require.Equal(t, 0, e.Streams.Len())
	e.WithCaller(owner.Address).InvokeFail(t, "vehicle stream does not exist", streams.OpDeleteVehicleStream, id)
}

type flaky struct {
	fail bool
	r    *streams.Memory
}

var errDown = errors.New("stream registry is down")

func (f *flaky) CreateStream(ctx context.Context, vehicleNode uint64, owner util.Uint160) (string, error) {
	if f.fail {
		return "", errDown
	}
	return f.r.CreateStream(ctx, vehicleNode, owner)
}

func (f *flaky) DeleteStream(ctx context.Context, id string) error {
	if f.fail {
		return errDown
	}
	return f.r.DeleteStream(ctx, id)
}

func TestCollaboratorFailure(t *testing.T) {
	e := registrytest.NewEnv(t)
	m := e.MintManufacturer(t, registrytest.NewAccount(t).Address, "Toyota")
	owner := registrytest.NewAccount(t)
	id := e.MintVehicle(t, m, owner.Address)

	f := &flaky{fail: true, r: streams.NewMemory()}
	b := streams.NewBreaker(f, 1, time.Hour, zaptest.NewLogger(t))
	addr := util.Uint160{0xf1}
	e.Registry.Attach(addr, b)
	e.Invoke(t, nil, streams.OpSetStreamRegistry, addr)

	e.WithCaller(owner.Address).InvokeFail(t, errDown, streams.OpCreateVehicleStream, id)
	e.WithCaller(owner.Address).InvokeFail(t, gobreaker.ErrOpenState, streams.OpCreateVehicleStream, id)
	e.Invoke(t, "", streams.OpGetVehicleStream, id)

	e.WithCaller(owner.Address).InvokeFail(t, common.ErrAuthorization, streams.OpSetStreamRegistry, addr)
}

func TestStreamRemovedByService(t *testing.T) {
	e := registrytest.NewEnv(t)
	m := e.MintManufacturer(t, registrytest.NewAccount(t).Address, "Toyota")
	owner := registrytest.NewAccount(t)
	id := e.MintVehicle(t, m, owner.Address)

	mem := streams.NewMemory()
	b := streams.NewBreaker(mem, 1, time.Hour, zaptest.NewLogger(t))
	addr := util.Uint160{0xf2}
	e.Registry.Attach(addr, b)
	e.Invoke(t, nil, streams.OpSetStreamRegistry, addr)

	streamID := e.WithCaller(owner.Address).Invoke(t, nil, streams.OpCreateVehicleStream, id).Result.(string)
	mem.Remove(streamID)
	e.WithCaller(owner.Address).Invoke(t, nil, streams.OpDeleteVehicleStream, id)
	e.Invoke(t, "", streams.OpGetVehicleStream, id)

	// Missing stream does not count as a failure.
	e.WithCaller(owner.Address).Invoke(t, nil, streams.OpCreateVehicleStream, id)
	require.Equal(t, 1, mem.Len())
}

func TestStreamDeletedAfterCommit(t *testing.T) {
	e := registrytest.NewEnv(t)
	m := e.MintManufacturer(t, registrytest.NewAccount(t).Address, "Toyota")
	owner := registrytest.NewAccount(t)
	id := e.MintVehicle(t, m, owner.Address)

	f := &flaky{r: streams.NewMemory()}
	addr := util.Uint160{0xf3}
	e.Registry.Attach(addr, f)
	e.Invoke(t, nil, streams.OpSetStreamRegistry, addr)

	e.WithCaller(owner.Address).Invoke(t, nil, streams.OpCreateVehicleStream, id)
	f.fail = true
	e.WithCaller(owner.Address).Invoke(t, nil, streams.OpDeleteVehicleStream, id)
	e.Invoke(t, "", streams.OpGetVehicleStream, id)
	require.Equal(t, 1, f.r.Len())
}
