package license

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/motorid/registry/common"
	"github.com/motorid/registry/interop"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	validatorAddr = util.Uint160{0x11}
	alice         = util.Uint160{0xa1}
	bob           = util.Uint160{0xb0}
)

func TestRequire(t *testing.T) {
	v := NewAllowlist(10, alice)
	ic := interop.NewContext(nil, storage.NewMemCachedStore(storage.NewMemoryStore()), nil,
		func(a util.Uint160) (any, bool) {
			if a.Equals(validatorAddr) {
				return v, true
			}
			return "not a validator", true
		})

	_, err := Require(ic, alice, 1)
	require.ErrorIs(t, err, ErrNotSet)

	require.NoError(t, SetAddress(ic, util.Uint160{0x12}))
	_, err = Require(ic, alice, 1)
	require.ErrorIs(t, err, ErrNotAttached)

	require.NoError(t, SetAddress(ic, validatorAddr))
	cost, err := Require(ic, alice, 3)
	require.NoError(t, err)
	require.Equal(t, uint64(30), cost)

	_, err = Require(ic, bob, 1)
	require.ErrorIs(t, err, ErrInvalidLicense)
	require.ErrorIs(t, err, common.ErrAuthorization)

	v.Add(bob)
	_, err = Require(ic, bob, 1)
	require.NoError(t, err)
}

type failing struct {
	calls int
}

var errUnavailable = errors.New("unavailable")

func (f *failing) HasValidLicense(context.Context, util.Uint160) (bool, error) {
	f.calls++
	return false, errUnavailable
}

func (f *failing) MintCost(context.Context) (uint64, error) {
	f.calls++
	return 0, errUnavailable
}

func TestBreaker(t *testing.T) {
	f := new(failing)
	b := NewBreaker(f, BreakerPrm{MaxFailures: 2, Timeout: time.Hour, Logger: zaptest.NewLogger(t)})

	for i := 0; i < 2; i++ {
		_, err := b.HasValidLicense(context.Background(), alice)
		require.ErrorIs(t, err, errUnavailable)
	}
	_, err := b.MintCost(context.Background())
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	require.Equal(t, 2, f.calls)

	ok, err := NewBreaker(NewAllowlist(1, alice), BreakerPrm{}).HasValidLicense(context.Background(), alice)
	require.NoError(t, err)
	require.True(t, ok)
}
