// Package registrytest contains helpers for testing registry modules.
package registrytest

import (
	"context"
	"errors"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/motorid/registry/interop"
	"github.com/motorid/registry/registry"
	"github.com/motorid/registry/sigcheck"
	"github.com/motorid/registry/typeddata"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// ChainID is the chain id of test registries.
const ChainID = 31337

// Account is a test account with secp256k1 key.
type Account struct {
	Key     *secp256k1.PrivateKey
	Address util.Uint160
}

// NewAccount generates new account.
func NewAccount(t testing.TB) Account {
	key, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	return Account{Key: key, Address: typeddata.Address(key.PubKey())}
}

// Executor invokes registry operations on behalf of a caller.
type Executor struct {
	Registry *registry.Registry
	// Store is the backing store of the registry.
	Store storage.Store
	// Owner is the default admin of the registry.
	Owner Account
	// Caller is the account invocations are made on behalf of.
	Caller util.Uint160
}

// NewExecutor creates registry over a memory store owned by a new account,
// deploys the modules and installs all their operations. Invocations are
// made on behalf of the owner.
func NewExecutor(t testing.TB, modules ...interop.Module) *Executor {
	owner := NewAccount(t)
	store := storage.NewMemoryStore()
	r, err := registry.New(registry.Prm{
		Store:   store,
		Address: util.Uint160{0xde, 0xad},
		ChainID: ChainID,
		Owner:   owner.Address,
		Logger:  zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	e := &Executor{Registry: r, Store: store, Owner: owner, Caller: owner.Address}
	for _, m := range modules {
		e.AddModule(t, m)
	}
	return e
}

// AddModule deploys the module and installs all its operations.
func (e *Executor) AddModule(t testing.TB, m interop.Module) util.Uint160 {
	addr := e.Registry.Deploy(m)
	e.WithCaller(e.Owner.Address).Invoke(t, nil, registry.OpAddModule,
		registry.ModuleParams{Module: addr, Selectors: registry.Selectors(m)})
	return addr
}

// WithCaller returns executor making invocations on behalf of the caller.
func (e *Executor) WithCaller(caller util.Uint160) *Executor {
	c := *e
	c.Caller = caller
	return &c
}

// Invoke invokes the operation and checks that it succeeds. The result is
// compared with expected unless it is nil.
func (e *Executor) Invoke(t testing.TB, expected any, signature string, args any) *registry.Receipt {
	rec, err := e.Registry.InvokeMethod(context.Background(), e.Caller, signature, args)
	require.NoError(t, err, signature)
	if expected != nil {
		require.Equal(t, expected, rec.Result, signature)
	}
	return rec
}

// InvokeFail invokes the operation and checks that it fails. Expected
// failure is either an error matched with errors.Is or an error message
// substring.
func (e *Executor) InvokeFail(t testing.TB, expected any, signature string, args any) error {
	_, err := e.Registry.InvokeMethod(context.Background(), e.Caller, signature, args)
	require.Error(t, err, signature)
	switch exp := expected.(type) {
	case error:
		require.True(t, errors.Is(err, exp), "expected %q, got %q", exp, err)
	case string:
		require.ErrorContains(t, err, exp)
	}
	return err
}

// View runs read-only operation and returns its result.
func (e *Executor) View(t testing.TB, signature string, args any) any {
	res, err := e.Registry.View(context.Background(), e.Caller, signature, args)
	require.NoError(t, err, signature)
	return res
}

// Sign signs typed data message with the account key under the registry
// domain. sigcheck must be initialized.
func (e *Executor) Sign(t testing.TB, acc Account, primaryType string, msg typeddata.Message) []byte {
	d, ok := e.View(t, sigcheck.OpDomain, nil).(typeddata.Domain)
	require.True(t, ok)
	sig, err := typeddata.SignTyped(acc.Key, d, sigcheck.Types, primaryType, msg)
	require.NoError(t, err)
	return sig
}
