/*
Package registry implements the registry core: a dispatch table from
operation selectors to modules executing against one shared storage.

Every invocation runs on a cached view of the store. If the operation
succeeds the view is persisted and emitted events are published to
subscribers, otherwise it is dropped, so a failing operation never leaves
partial changes behind. Invocations are serialized, each one observes all
effects of the previous ones.
*/
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/motorid/registry/access"
	"github.com/motorid/registry/common"
	"github.com/motorid/registry/interop"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	// ErrOperationNotExist is returned for selectors with no module.
	ErrOperationNotExist = common.Validation("operation does not exist")
	// ErrOperationExists is returned when installing a selector twice.
	ErrOperationExists = common.Validation("operation already exists")
	// ErrModuleNotDeployed is returned for unknown module addresses.
	ErrModuleNotDeployed = common.Validation("module not deployed")
	// ErrNotImplemented is returned when installing a selector the module
	// does not implement.
	ErrNotImplemented = common.Validation("operation is not implemented by module")
	// ErrWrongModule is returned when removing a selector served by another
	// module.
	ErrWrongModule = common.Validation("operation is served by another module")
	// ErrNotReadOnly is returned when a view runs a state-changing
	// operation.
	ErrNotReadOnly = common.Validation("operation is not read-only")
	// ErrUninitialized is returned by New for a fresh store with no owner.
	ErrUninitialized = errors.New("registry is not initialized and owner is not set")
)

// Prm groups registry parameters.
type Prm struct {
	// Store is the shared registry storage.
	Store storage.Store
	// Address of the registry, the verifying contract of signatures.
	Address util.Uint160
	// ChainID of the network the registry serves.
	ChainID uint64
	// Owner gets the default admin role when the store is empty.
	Owner util.Uint160
	// Logger writes invocation log. Nop logger is used if nil.
	Logger *zap.Logger
	// Registerer registers registry metrics. Metrics are not exported if
	// nil.
	Registerer prometheus.Registerer
}

// Receipt describes a committed invocation.
type Receipt struct {
	ID        uuid.UUID
	Caller    util.Uint160
	Operation interop.Selector
	Signature string
	Result    any
	Events    []interop.Event
}

type deployed struct {
	module  interop.Module
	methods map[interop.Selector]interop.Method
}

// Registry is the registry core.
type Registry struct {
	mu sync.RWMutex

	store   storage.Store
	address util.Uint160
	chainID uint64
	log     *zap.Logger
	metrics *metrics

	modules     map[util.Uint160]deployed
	contracts   map[util.Uint160]any
	subscribers []func(Receipt)
}

// New creates registry over the given store. A fresh store is initialized:
// registry management operations are installed and Prm.Owner becomes the
// default admin.
func New(prm Prm) (*Registry, error) {
	if prm.Store == nil {
		prm.Store = storage.NewMemoryStore()
	}
	if prm.Logger == nil {
		prm.Logger = zap.NewNop()
	}
	r := &Registry{
		store:     prm.Store,
		address:   prm.Address,
		chainID:   prm.ChainID,
		log:       prm.Logger,
		metrics:   newMetrics(prm.Registerer),
		modules:   make(map[util.Uint160]deployed),
		contracts: make(map[util.Uint160]any),
	}

	core := coreModule{r: r}
	coreAddr := r.Deploy(core)

	installed := r.isInstalled(OpAddModule)
	if installed {
		return r, nil
	}
	if prm.Owner.Equals(util.Uint160{}) {
		return nil, ErrUninitialized
	}

	_, err := r.run(context.Background(), prm.Owner, interop.Selector{}, "genesis", "genesis", func(ic *interop.Context) (any, error) {
		if err := install(ic, r, coreAddr, selectorsOf(core)); err != nil {
			return nil, err
		}
		return nil, access.Init(ic, prm.Owner)
	}, true)
	if err != nil {
		return nil, fmt.Errorf("initialize registry: %w", err)
	}
	r.log.Info("registry initialized",
		zap.Stringer("address", r.address), zap.Stringer("owner", prm.Owner))
	return r, nil
}

// Address returns registry address.
func (r *Registry) Address() util.Uint160 {
	return r.address
}

// ChainID returns chain id of the registry.
func (r *Registry) ChainID() uint64 {
	return r.chainID
}

// Deploy makes module code available for installation and returns its
// address. Deploying the same module twice is a no-op.
func (r *Registry) Deploy(m interop.Module) util.Uint160 {
	addr := ModuleAddress(m)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.modules[addr]; ok {
		return addr
	}
	d := deployed{module: m, methods: make(map[interop.Selector]interop.Method)}
	for _, method := range m.Methods() {
		d.methods[method.Selector()] = method
	}
	r.modules[addr] = d
	r.log.Debug("module deployed", zap.String("name", m.Name()),
		zap.String("version", common.VersionString(m.Version())), zap.Stringer("address", addr))
	return addr
}

// Attach makes external contract (a collaborator service or a delegated
// signature verifier) available to modules at the given address.
func (r *Registry) Attach(addr util.Uint160, c any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contracts[addr] = c
}

// Subscribe registers receiver of committed invocations. Receivers are
// called synchronously in commit order and must not call the registry.
func (r *Registry) Subscribe(f func(Receipt)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers = append(r.subscribers, f)
}

// InvokeMethod is Invoke with selector derived from the operation signature.
func (r *Registry) InvokeMethod(ctx context.Context, caller util.Uint160, signature string, args any) (*Receipt, error) {
	return r.Invoke(ctx, caller, interop.SelectorOf(signature), args)
}

// Invoke runs the operation on behalf of the caller and commits its changes
// if it succeeds. Errors of the operation are returned unchanged.
func (r *Registry) Invoke(ctx context.Context, caller util.Uint160, s interop.Selector, args any) (*Receipt, error) {
	sig, label := s.String(), unknownOperation
	if m, ok := r.method(s); ok {
		sig, label = m.Signature, m.Signature
	}
	return r.run(ctx, caller, s, sig, label, func(ic *interop.Context) (any, error) {
		return r.dispatch(ic, s, args)
	}, true)
}

// View runs read-only operation on behalf of the caller. State-changing
// operations are rejected with ErrNotReadOnly.
func (r *Registry) View(ctx context.Context, caller util.Uint160, signature string, args any) (any, error) {
	s := interop.SelectorOf(signature)
	label := unknownOperation
	if _, ok := r.method(s); ok {
		label = signature
	}
	rec, err := r.run(ctx, caller, s, signature, label, func(ic *interop.Context) (any, error) {
		return r.dispatch(ic, s, args)
	}, false)
	if err != nil {
		return nil, err
	}
	return rec.Result, nil
}

// Call runs read-only operation inside ViewFunc.
type Call func(signature string, args any) (any, error)

// ViewFunc passes f a Call running read-only operations against a single
// state snapshot, so that results of several operations are consistent.
func (r *Registry) ViewFunc(ctx context.Context, caller util.Uint160, f func(Call) error) error {
	_, err := r.run(ctx, caller, interop.Selector{}, "view", "view", func(ic *interop.Context) (any, error) {
		return nil, f(func(signature string, args any) (any, error) {
			return r.dispatch(ic, interop.SelectorOf(signature), args)
		})
	}, false)
	return err
}

func (r *Registry) run(ctx context.Context, caller util.Uint160, s interop.Selector, sig, label string, f func(*interop.Context) (any, error), commit bool) (*Receipt, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if commit {
		r.mu.Lock()
		defer r.mu.Unlock()
	} else {
		r.mu.RLock()
		defer r.mu.RUnlock()
	}

	cache := storage.NewMemCachedStore(r.store)
	ic := interop.NewContext(ctx, cache, r.dispatch, r.contract)
	ic.Caller = caller
	ic.Registry = r.address
	ic.ChainID = r.chainID
	ic.ReadOnly = !commit
	ic.Log = r.log.With(zap.Stringer("invocation", ic.ID), zap.String("operation", sig))

	start := time.Now()
	res, err := f(ic)
	r.metrics.observe(label, err, time.Since(start))
	if err != nil {
		ic.Log.Debug("invocation failed", zap.Stringer("caller", caller), zap.Error(err))
		runHooks(ctx, ic.Log, "rollback", ic.RollbackHooks())
		return nil, err
	}

	rec := &Receipt{
		ID:        ic.ID,
		Caller:    caller,
		Operation: s,
		Signature: sig,
		Result:    res,
		Events:    ic.Events(),
	}
	if !commit {
		runHooks(ctx, ic.Log, "rollback", ic.RollbackHooks())
		return rec, nil
	}
	if _, err := cache.PersistSync(); err != nil {
		ic.Log.Error("can't persist invocation changes", zap.Error(err))
		runHooks(ctx, ic.Log, "rollback", ic.RollbackHooks())
		return nil, fmt.Errorf("persist: %w", err)
	}
	ic.Log.Debug("invocation committed", zap.Stringer("caller", caller), zap.Int("events", len(rec.Events)))
	runHooks(ctx, ic.Log, "commit", ic.CommitHooks())
	for _, sub := range r.subscribers {
		sub(*rec)
	}
	return rec, nil
}

// runHooks runs hooks regardless of their errors. The outcome of the
// invocation is already decided, failures are only logged.
func runHooks(ctx context.Context, log *zap.Logger, stage string, hs []interop.Hook) {
	ctx = context.WithoutCancel(ctx)
	for _, h := range hs {
		if err := h(ctx); err != nil {
			log.Warn("invocation hook failed", zap.String("stage", stage), zap.Error(err))
		}
	}
}

// dispatch resolves the selector in the invocation view and runs the method.
func (r *Registry) dispatch(ic *interop.Context, s interop.Selector, args any) (any, error) {
	addr, ok := getModule(ic, s)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOperationNotExist, s)
	}
	d, ok := r.modules[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotDeployed, common.AddressString(addr))
	}
	m, ok := d.methods[s]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotImplemented, s)
	}
	if ic.ReadOnly && !m.ReadOnly {
		return nil, fmt.Errorf("%w: %s", ErrNotReadOnly, m.Signature)
	}
	return m.Handler(ic, args)
}

func (r *Registry) contract(addr util.Uint160) (any, bool) {
	c, ok := r.contracts[addr]
	return c, ok
}

func (r *Registry) method(s interop.Selector) (interop.Method, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := r.store.Get(operationKey(s))
	if err != nil {
		return interop.Method{}, false
	}
	addr, err := util.Uint160DecodeBytesBE(data)
	if err != nil {
		return interop.Method{}, false
	}
	m, ok := r.modules[addr].methods[s]
	return m, ok
}

func (r *Registry) isInstalled(signature string) bool {
	_, ok := r.method(interop.SelectorOf(signature))
	return ok
}
