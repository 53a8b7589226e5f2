package interop

import (
	"context"
	"errors"
	"testing"

	"github.com/motorid/registry/common"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

func TestSelectorOf(t *testing.T) {
	// Well-known ERC-20 selector.
	require.Equal(t, "0xa9059cbb", SelectorOf("transfer(address,uint256)").String())
	require.NotEqual(t, SelectorOf("a()"), SelectorOf("b()"))
}

func TestNewMethod(t *testing.T) {
	type params struct{ N int }

	m := NewMethod("double(uint256)", func(_ *Context, p params) (int, error) {
		return p.N * 2, nil
	})
	require.False(t, m.ReadOnly)
	require.Equal(t, SelectorOf("double(uint256)"), m.Selector())

	res, err := m.Handler(nil, params{N: 21})
	require.NoError(t, err)
	require.Equal(t, 42, res)

	res, err = m.Handler(nil, nil)
	require.NoError(t, err)
	require.Equal(t, 0, res)

	_, err = m.Handler(nil, "not params")
	require.ErrorIs(t, err, common.ErrInvalidArguments)
	require.ErrorIs(t, err, common.ErrValidation)

	s := NewSafeMethod("get()", func(*Context, Null) (Null, error) { return Null{}, nil })
	require.True(t, s.ReadOnly)
}

func TestContextStorage(t *testing.T) {
	ic := NewContext(context.Background(), storage.NewMemCachedStore(storage.NewMemoryStore()), nil, nil)

	require.Nil(t, ic.Get([]byte{1, 2}))

	ic.Put([]byte{1, 2}, []byte("a"))
	ic.Put([]byte{1, 3}, []byte("b"))
	ic.Put([]byte{2, 1}, []byte("c"))
	require.Equal(t, []byte("a"), ic.Get([]byte{1, 2}))

	var keys, values []string
	ic.Find([]byte{1}, func(k, v []byte) bool {
		keys = append(keys, string(k))
		values = append(values, string(v))
		return true
	})
	require.Equal(t, []string{"\x02", "\x03"}, keys)
	require.Equal(t, []string{"a", "b"}, values)

	ic.Delete([]byte{1, 2})
	require.Nil(t, ic.Get([]byte{1, 2}))
}

func TestContextCall(t *testing.T) {
	var (
		caller = util.Uint160{1}
		called util.Uint160
	)

	var d Dispatcher
	d = func(ic *Context, s Selector, args any) (any, error) {
		called = ic.Caller
		ic.Notify("Called", s)
		if args == "recurse" {
			return ic.Call(ic.Caller, "op()", args)
		}
		return args, nil
	}

	ic := NewContext(nil, storage.NewMemCachedStore(storage.NewMemoryStore()), d, nil)
	res, err := ic.Call(caller, "op()", 5)
	require.NoError(t, err)
	require.Equal(t, 5, res)
	require.Equal(t, caller, called)
	require.Len(t, ic.Events(), 1)
	require.Equal(t, Event{Name: "Called", Args: []any{SelectorOf("op()")}}, ic.Events()[0])

	_, err = ic.Call(caller, "op()", "recurse")
	require.True(t, errors.Is(err, ErrCallDepth))
}

func TestContextContract(t *testing.T) {
	addr := util.Uint160{7}
	ic := NewContext(nil, storage.NewMemCachedStore(storage.NewMemoryStore()), nil, func(a util.Uint160) (any, bool) {
		if a == addr {
			return "collaborator", true
		}
		return nil, false
	})

	c, ok := ic.Contract(addr)
	require.True(t, ok)
	require.Equal(t, "collaborator", c)

	_, ok = ic.Contract(util.Uint160{8})
	require.False(t, ok)
}
