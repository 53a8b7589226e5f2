package nodes

import (
	"testing"

	"github.com/motorid/registry/common"
	"github.com/motorid/registry/interop"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

var (
	manufacturerNS = util.Uint160{0x01}
	vehicleNS      = util.Uint160{0x02}
)

func newContext(t *testing.T) *interop.Context {
	ic := interop.NewContext(nil, storage.NewMemCachedStore(storage.NewMemoryStore()), nil, nil)
	require.NoError(t, AddNodeType(ic, Manufacturer))
	require.NoError(t, AddNodeType(ic, Vehicle))
	require.NoError(t, SetNodeType(ic, manufacturerNS, Manufacturer))
	require.NoError(t, SetNodeType(ic, vehicleNS, Vehicle))
	return ic
}

func TestNodeTypes(t *testing.T) {
	ic := newContext(t)

	require.ErrorIs(t, AddNodeType(ic, Vehicle), ErrNodeTypeRegistered)
	require.ErrorIs(t, AddNodeType(ic, ""), ErrEmptyName)
	require.ErrorIs(t, SetNodeType(ic, vehicleNS, Manufacturer), ErrNodeTypeSet)
	require.ErrorIs(t, SetNodeType(ic, util.Uint160{0x03}, "Unknown"), common.ErrValidation)

	require.ErrorIs(t, Create(ic, util.Uint160{0x03}, 1, util.Uint160{}, 0), ErrNodeTypeNotSet)

	require.NoError(t, Create(ic, vehicleNS, 1, util.Uint160{}, 0))
	require.ErrorIs(t, Create(ic, vehicleNS, 1, util.Uint160{}, 0), common.ErrStateConflict)
	require.Equal(t, Vehicle, GetNodeType(ic, vehicleNS, 1))
	require.Equal(t, "", GetNodeType(ic, manufacturerNS, 1))
}

func TestInfo(t *testing.T) {
	ic := newContext(t)
	require.NoError(t, Create(ic, vehicleNS, 1, util.Uint160{}, 0))

	t.Run("not whitelisted", func(t *testing.T) {
		err := SetInfo(ic, vehicleNS, 1, "Make", "Toyota")
		require.ErrorIs(t, err, ErrNotWhitelisted)
		require.Equal(t, "", GetInfo(ic, vehicleNS, 1, "Make"))
	})

	require.NoError(t, AddAttribute(ic, Vehicle, "Make"))
	require.NoError(t, AddAttribute(ic, Vehicle, "Model"))
	require.ErrorIs(t, AddAttribute(ic, Vehicle, "Make"), ErrAttributeExists)
	require.True(t, IsAllowedAttribute(ic, Vehicle, "Make"))
	require.False(t, IsAllowedAttribute(ic, Manufacturer, "Make"))
	require.Equal(t, []string{"Make", "Model"}, Attributes(ic, Vehicle))

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, SetInfo(ic, vehicleNS, 1, "Make", "Toyota"))
		require.Equal(t, "Toyota", GetInfo(ic, vehicleNS, 1, "Make"))
		require.Equal(t, "", GetInfo(ic, vehicleNS, 1, "Model"))
	})
	t.Run("unknown node", func(t *testing.T) {
		require.ErrorIs(t, SetInfo(ic, vehicleNS, 2, "Make", "Toyota"), common.ErrInvalidNode)
	})
	t.Run("batch is atomic", func(t *testing.T) {
		err := SetInfoBatch(ic, vehicleNS, 1, []string{"Model", "Year"}, []string{"Corolla", "2020"})
		require.ErrorIs(t, err, ErrNotWhitelisted)
		require.Equal(t, "", GetInfo(ic, vehicleNS, 1, "Model"))

		err = SetInfoBatch(ic, vehicleNS, 1, []string{"Model"}, []string{"Corolla", "2020"})
		require.ErrorIs(t, err, common.ErrSameLength)
		require.Equal(t, "", GetInfo(ic, vehicleNS, 1, "Model"))
	})
	t.Run("list", func(t *testing.T) {
		require.NoError(t, SetInfos(ic, vehicleNS, 1, []AttributeInfoPair{{"Model", "Corolla"}}))
		require.Equal(t, []AttributeInfoPair{{"Make", "Toyota"}, {"Model", "Corolla"}}, Infos(ic, vehicleNS, 1))
	})
	t.Run("removed attribute", func(t *testing.T) {
		require.NoError(t, RemoveAttribute(ic, Vehicle, "Model"))
		require.ErrorIs(t, RemoveAttribute(ic, Vehicle, "Model"), ErrNotWhitelisted)
		require.Equal(t, "Corolla", GetInfo(ic, vehicleNS, 1, "Model"))
		require.ErrorIs(t, SetInfo(ic, vehicleNS, 1, "Model", "Camry"), ErrNotWhitelisted)
	})
	t.Run("delete", func(t *testing.T) {
		Delete(ic, vehicleNS, 1)
		require.False(t, Exists(ic, vehicleNS, 1))
		require.Empty(t, Infos(ic, vehicleNS, 1))
	})
}

func TestParentNode(t *testing.T) {
	ic := newContext(t)
	require.NoError(t, Create(ic, manufacturerNS, 1, util.Uint160{}, 0))
	require.NoError(t, Create(ic, manufacturerNS, 2, util.Uint160{}, 0))
	require.NoError(t, Create(ic, vehicleNS, 1, manufacturerNS, 1))

	require.Equal(t, uint64(1), GetParentNode(ic, vehicleNS, 1))
	require.Equal(t, uint64(0), GetParentNode(ic, manufacturerNS, 1))

	require.ErrorIs(t, SetParentNode(ic, vehicleNS, 1, manufacturerNS, 3), common.ErrInvalidParentNode)
	require.ErrorIs(t, SetParentNode(ic, vehicleNS, 2, manufacturerNS, 2), common.ErrInvalidNode)
	require.NoError(t, SetParentNode(ic, vehicleNS, 1, manufacturerNS, 2))
	require.Equal(t, uint64(2), GetParentNode(ic, vehicleNS, 1))

	t.Run("cycle", func(t *testing.T) {
		require.ErrorIs(t, SetParentNode(ic, manufacturerNS, 2, vehicleNS, 1), ErrCycle)
		require.ErrorIs(t, SetParentNode(ic, manufacturerNS, 2, manufacturerNS, 2), ErrCycle)
		require.Equal(t, uint64(0), GetParentNode(ic, manufacturerNS, 2))
	})
}

func TestProxy(t *testing.T) {
	ic := newContext(t)

	_, err := Proxy(ic, Vehicle)
	require.ErrorIs(t, err, ErrProxyNotSet)
	require.ErrorIs(t, SetProxy(ic, Vehicle, util.Uint160{}), common.ErrZeroAddress)

	require.NoError(t, SetProxy(ic, Vehicle, vehicleNS))
	ns, err := Proxy(ic, Vehicle)
	require.NoError(t, err)
	require.Equal(t, vehicleNS, ns)
}
