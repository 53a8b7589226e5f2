/*
Package streams connects vehicles to the stream registry, an external
service hosting vehicle data streams. The registry keeps the id of the stream
created for each vehicle and forwards creation and removal to the service.

A stream is created while the invocation runs and deleted again if the
invocation fails. Removal is forwarded only after the invocation is
committed, stream registry treats removal of an unknown stream as done.
*/
package streams

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/motorid/registry/common"
	"github.com/motorid/registry/interop"
	"github.com/motorid/registry/mapper"
	"github.com/motorid/registry/nft"
	"github.com/motorid/registry/nodes"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Registry is the stream registry.
type Registry interface {
	// CreateStream creates stream of the vehicle and returns its id.
	CreateStream(ctx context.Context, vehicleNode uint64, owner util.Uint160) (string, error)
	// DeleteStream removes the stream. It returns ErrStreamNotFound if there
	// is no such stream.
	DeleteStream(ctx context.Context, id string) error
}

// ErrStreamNotFound is returned by stream registry for unknown streams.
var ErrStreamNotFound = errors.New("stream not found")

var (
	// ErrNotSet is returned when the stream registry address is not set.
	ErrNotSet = common.Validation("stream registry not set")
	// ErrNotAttached is returned when there is no stream registry at the
	// address.
	ErrNotAttached = common.Validation("stream registry is not attached")
	// ErrStreamExists is returned when the vehicle already has a stream.
	ErrStreamExists = common.StateConflict("vehicle stream already exists")
	// ErrNoStream is returned when the vehicle has no stream.
	ErrNoStream = common.StateConflict("vehicle stream does not exist")
	// ErrNotOwnerNorBeneficiary is returned when the caller is neither owner
	// nor beneficiary of the vehicle.
	ErrNotOwnerNorBeneficiary = common.Authorization("caller is not the vehicle owner nor beneficiary")
)

const collaboratorName = "StreamRegistry"

func addressKey() []byte {
	return common.Key(common.PrefixCollaborator, []byte(collaboratorName))
}

func streamKey(vehicleNode uint64) []byte {
	return common.Key(common.PrefixStream, common.IDBytes(vehicleNode))
}

// SetAddress sets stream registry address.
func SetAddress(ic *interop.Context, addr util.Uint160) error {
	if addr.Equals(util.Uint160{}) {
		return common.ErrZeroAddress
	}
	ic.Put(addressKey(), addr.BytesBE())
	ic.Notify("StreamRegistrySet", addr)
	return nil
}

// Address returns stream registry address.
func Address(s common.Storage) (util.Uint160, bool) {
	data := s.Get(addressKey())
	if data == nil {
		return util.Uint160{}, false
	}
	addr, err := util.Uint160DecodeBytesBE(data)
	return addr, err == nil
}

func get(ic *interop.Context) (Registry, error) {
	addr, ok := Address(ic)
	if !ok {
		return nil, ErrNotSet
	}
	c, ok := ic.Contract(addr)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAttached, common.AddressString(addr))
	}
	r, ok := c.(Registry)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAttached, common.AddressString(addr))
	}
	return r, nil
}

// StreamOf returns stream id of the vehicle or empty string.
func StreamOf(s common.Storage, vehicleNode uint64) string {
	return string(s.Get(streamKey(vehicleNode)))
}

func checkCaller(ic *interop.Context, vehicleNode uint64) (util.Uint160, error) {
	ns, err := nodes.Proxy(ic, nodes.Vehicle)
	if err != nil {
		return util.Uint160{}, err
	}
	if !nodes.Exists(ic, ns, vehicleNode) {
		return util.Uint160{}, common.ErrInvalidNode
	}
	owner := nft.OwnerOf(ic, ns, vehicleNode)
	if !ic.Caller.Equals(owner) && !ic.Caller.Equals(mapper.GetBeneficiary(ic, ns, vehicleNode)) {
		return util.Uint160{}, ErrNotOwnerNorBeneficiary
	}
	return owner, nil
}

// Create creates stream of the vehicle on behalf of its owner or
// beneficiary.
func Create(ic *interop.Context, vehicleNode uint64) (string, error) {
	owner, err := checkCaller(ic, vehicleNode)
	if err != nil {
		return "", err
	}
	if StreamOf(ic, vehicleNode) != "" {
		return "", ErrStreamExists
	}
	r, err := get(ic)
	if err != nil {
		return "", err
	}
	id, err := r.CreateStream(ic.Ctx, vehicleNode, owner)
	if err != nil {
		return "", fmt.Errorf("create stream: %w", err)
	}
	ic.OnRollback(func(ctx context.Context) error {
		return deleteStream(ctx, r, id)
	})
	ic.Put(streamKey(vehicleNode), []byte(id))
	ic.Notify("VehicleStreamCreated", vehicleNode, id)
	return id, nil
}

// Delete removes stream of the vehicle on behalf of its owner or
// beneficiary.
func Delete(ic *interop.Context, vehicleNode uint64) error {
	if _, err := checkCaller(ic, vehicleNode); err != nil {
		return err
	}
	if StreamOf(ic, vehicleNode) == "" {
		return ErrNoStream
	}
	return remove(ic, vehicleNode)
}

// OnBurn removes stream of the burnt vehicle if there is one.
func OnBurn(ic *interop.Context, vehicleNode uint64) error {
	if StreamOf(ic, vehicleNode) == "" {
		return nil
	}
	return remove(ic, vehicleNode)
}

func remove(ic *interop.Context, vehicleNode uint64) error {
	id := StreamOf(ic, vehicleNode)
	r, err := get(ic)
	if err != nil {
		return err
	}
	ic.Delete(streamKey(vehicleNode))
	ic.Notify("VehicleStreamDeleted", vehicleNode, id)
	ic.OnCommit(func(ctx context.Context) error {
		return deleteStream(ctx, r, id)
	})
	return nil
}

func deleteStream(ctx context.Context, r Registry, id string) error {
	err := r.DeleteStream(ctx, id)
	if err != nil && !errors.Is(err, ErrStreamNotFound) {
		return fmt.Errorf("delete stream %s: %w", id, err)
	}
	return nil
}

// Memory is an in-memory stream registry.
type Memory struct {
	mu      sync.Mutex
	streams map[string]uint64
}

// NewMemory creates empty in-memory stream registry.
func NewMemory() *Memory {
	return &Memory{streams: make(map[string]uint64)}
}

// CreateStream implements Registry.
func (m *Memory) CreateStream(_ context.Context, vehicleNode uint64, _ util.Uint160) (string, error) {
	id := uuid.NewString()
	m.mu.Lock()
	m.streams[id] = vehicleNode
	m.mu.Unlock()
	return id, nil
}

// DeleteStream implements Registry.
func (m *Memory) DeleteStream(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.streams[id]; !ok {
		return fmt.Errorf("%w: %s", ErrStreamNotFound, id)
	}
	delete(m.streams, id)
	return nil
}

// Len returns number of streams.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.streams)
}

// Remove drops the stream bypassing the registry, as if it was removed by
// the service itself.
func (m *Memory) Remove(id string) {
	m.mu.Lock()
	delete(m.streams, id)
	m.mu.Unlock()
}
