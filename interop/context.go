package interop

import (
	"bytes"
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
)

// Event is a notification emitted by a module for off-chain consumers.
type Event struct {
	// Name of the event, e.g. "VehicleNodeMinted".
	Name string
	// Args are event values in declaration order.
	Args []any
}

// ContractGetter returns an external contract attached to the registry at
// the given address: a collaborator service or a delegated signature
// verifier.
type ContractGetter func(util.Uint160) (any, bool)

// Context is the execution context of a single registry invocation.
type Context struct {
	// Ctx is the context of the invocation. It is passed to collaborators.
	Ctx context.Context
	// ID identifies the invocation in logs and receipts.
	ID uuid.UUID
	// Caller is the account that submitted the operation or, for nested
	// calls, the namespace of the calling module.
	Caller util.Uint160
	// Registry is the address of the registry itself.
	Registry util.Uint160
	// ChainID identifies the network the registry serves.
	ChainID uint64
	// Log is the invocation logger.
	Log *zap.Logger
	// ReadOnly invocations may run read-only operations only.
	ReadOnly bool

	store     *storage.MemCachedStore
	events    *[]Event
	hooks     *hooks
	dispatch  Dispatcher
	contracts ContractGetter
	depth     int
}

// Hook is an external side effect of the invocation run after the
// invocation outcome is known. Its context is not canceled together with the
// invocation one.
type Hook func(ctx context.Context) error

type hooks struct {
	commit   []Hook
	rollback []Hook
}

// MaxCallDepth limits nested calls.
const MaxCallDepth = 8

// ErrCallDepth is returned when nested calls exceed MaxCallDepth.
var ErrCallDepth = errors.New("call depth limit exceeded")

// NewContext creates invocation context over the given cached store.
func NewContext(ctx context.Context, store *storage.MemCachedStore, d Dispatcher, contracts ContractGetter) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if contracts == nil {
		contracts = func(util.Uint160) (any, bool) { return nil, false }
	}
	return &Context{
		Ctx:       ctx,
		ID:        uuid.New(),
		Log:       zap.NewNop(),
		store:     store,
		events:    new([]Event),
		hooks:     new(hooks),
		dispatch:  d,
		contracts: contracts,
	}
}

// Get implements common.Storage.
func (ic *Context) Get(key []byte) []byte {
	v, err := ic.store.Get(key)
	if err != nil {
		return nil
	}
	return v
}

// Put implements common.Storage.
func (ic *Context) Put(key, value []byte) {
	ic.store.Put(key, value)
}

// Delete implements common.Storage.
func (ic *Context) Delete(key []byte) {
	ic.store.Delete(key)
}

// Find iterates over all items with the given key prefix in key order and
// passes them into f with the prefix removed. Iteration stops when f returns
// false. Slices passed to f are copies and may be retained.
func (ic *Context) Find(prefix []byte, f func(k, v []byte) bool) {
	ic.store.Seek(storage.SeekRange{Prefix: prefix}, func(k, v []byte) bool {
		k = bytes.TrimPrefix(k, prefix)
		return f(bytes.Clone(k), bytes.Clone(v))
	})
}

// Notify emits an event. Events are published only if the invocation
// succeeds.
func (ic *Context) Notify(name string, args ...any) {
	*ic.events = append(*ic.events, Event{Name: name, Args: args})
}

// Events returns events emitted so far.
func (ic *Context) Events() []Event {
	return *ic.events
}

// Call runs another registry operation inside the current invocation on
// behalf of the given caller. Changes made by the nested call are committed
// or discarded together with the current invocation.
func (ic *Context) Call(caller util.Uint160, signature string, args any) (any, error) {
	if ic.depth >= MaxCallDepth {
		return nil, ErrCallDepth
	}
	sub := *ic
	sub.Caller = caller
	sub.depth++
	return ic.dispatch(&sub, SelectorOf(signature), args)
}

// Contract returns external contract attached to the registry.
func (ic *Context) Contract(addr util.Uint160) (any, bool) {
	return ic.contracts(addr)
}

// OnCommit schedules h to run once the invocation changes are persisted. A
// failing invocation never runs it.
func (ic *Context) OnCommit(h Hook) {
	ic.hooks.commit = append(ic.hooks.commit, h)
}

// OnRollback schedules h to run if the invocation changes are dropped. It
// compensates a collaborator call already made by the invocation.
func (ic *Context) OnRollback(h Hook) {
	ic.hooks.rollback = append(ic.hooks.rollback, h)
}

// CommitHooks returns hooks scheduled with OnCommit in scheduling order.
func (ic *Context) CommitHooks() []Hook {
	return ic.hooks.commit
}

// RollbackHooks returns hooks scheduled with OnRollback in reverse
// scheduling order.
func (ic *Context) RollbackHooks() []Hook {
	res := make([]Hook, len(ic.hooks.rollback))
	for i, h := range ic.hooks.rollback {
		res[len(res)-1-i] = h
	}
	return res
}
