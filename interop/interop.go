/*
Package interop defines the contract between the registry core and its
modules: invocation context over the shared storage, operation selectors and
method declarations.

Modules are stateless. Everything they read or write goes through Context,
which is a cached view of the registry storage valid for a single
invocation. The registry persists the view only if the invoked operation
succeeds, so a module may return an error at any point without leaving
partial changes behind.
*/
package interop

import (
	"fmt"

	"github.com/motorid/registry/common"
)

// Selector is an operation identifier derived from the operation signature.
type Selector [4]byte

// SelectorOf returns selector of the operation with the given signature,
// e.g. "mintVehicle(uint256,address,(string,string)[])".
func SelectorOf(signature string) Selector {
	var s Selector
	copy(s[:], common.Keccak256([]byte(signature)))
	return s
}

// String implements fmt.Stringer.
func (s Selector) String() string {
	return fmt.Sprintf("0x%x", s[:])
}

// Null is the result of operations returning nothing.
type Null struct{}

// Handler executes an operation.
type Handler func(ic *Context, args any) (any, error)

// Method declares a single operation exported by a module.
type Method struct {
	// Signature is the canonical operation signature the selector is
	// derived from.
	Signature string
	// ReadOnly operations are never persisted.
	ReadOnly bool
	Handler  Handler
}

// Selector returns selector of the method.
func (m Method) Selector() Selector {
	return SelectorOf(m.Signature)
}

// NewMethod declares state-changing operation with typed arguments and
// result. Operation invoked with nil arguments receives zero P.
func NewMethod[P, R any](signature string, h func(*Context, P) (R, error)) Method {
	return Method{
		Signature: signature,
		Handler:   typedHandler(signature, h),
	}
}

// NewSafeMethod is NewMethod for read-only operations.
func NewSafeMethod[P, R any](signature string, h func(*Context, P) (R, error)) Method {
	m := NewMethod(signature, h)
	m.ReadOnly = true
	return m
}

func typedHandler[P, R any](signature string, h func(*Context, P) (R, error)) Handler {
	return func(ic *Context, args any) (any, error) {
		var p P
		if args != nil {
			var ok bool
			if p, ok = args.(P); !ok {
				return nil, fmt.Errorf("%w: %s expects %T, got %T", common.ErrInvalidArguments, signature, p, args)
			}
		}
		return h(ic, p)
	}
}

// Module is a stateless unit of registry logic.
type Module interface {
	// Name is a stable module name, the same for all versions.
	Name() string
	// Version of the module code, see common.EncodeVersion.
	Version() int
	// Methods lists all operations the module implements.
	Methods() []Method
}

// Dispatcher resolves and runs operations on behalf of nested calls.
type Dispatcher func(ic *Context, s Selector, args any) (any, error)
