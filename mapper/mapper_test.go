package mapper

import (
	"testing"

	"github.com/motorid/registry/common"
	"github.com/motorid/registry/interop"
	"github.com/motorid/registry/nft"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

var (
	vehicleNS = util.Uint160{0x01}
	deviceNS  = util.Uint160{0x02}
	alice     = util.Uint160{0xa1}
	bob       = util.Uint160{0xb0}
)

func newContext(t *testing.T) *interop.Context {
	ic := interop.NewContext(nil, storage.NewMemCachedStore(storage.NewMemoryStore()), nil, nil)
	require.NoError(t, nft.Create(ic, vehicleNS, nft.Token{Name: "Vehicle ID", Symbol: "VID"}))
	require.NoError(t, nft.Create(ic, deviceNS, nft.Token{Name: "Aftermarket Device ID", Symbol: "ADID"}))
	return ic
}

func TestLink(t *testing.T) {
	ic := newContext(t)

	require.NoError(t, SetLink(ic, vehicleNS, 1, deviceNS, 7))
	require.Equal(t, uint64(7), GetLink(ic, vehicleNS, 1))
	require.Equal(t, uint64(1), GetLink(ic, deviceNS, 7))

	require.ErrorIs(t, SetLink(ic, vehicleNS, 1, deviceNS, 8), ErrLinked)
	require.ErrorIs(t, SetLink(ic, vehicleNS, 2, deviceNS, 7), ErrLinked)
	require.Equal(t, uint64(7), GetLink(ic, vehicleNS, 1))
	require.Equal(t, uint64(0), GetLink(ic, vehicleNS, 2))

	require.Equal(t, uint64(1), ClearLink(ic, deviceNS, 7, vehicleNS))
	require.Equal(t, uint64(0), GetLink(ic, vehicleNS, 1))
	require.Equal(t, uint64(0), GetLink(ic, deviceNS, 7))
	require.Equal(t, uint64(0), ClearLink(ic, deviceNS, 7, vehicleNS))
}

func TestNodeLink(t *testing.T) {
	ic := newContext(t)
	integrationNS := util.Uint160{0x03}

	require.NoError(t, SetNodeLink(ic, vehicleNS, 1, deviceNS, 7))
	require.NoError(t, SetNodeLink(ic, vehicleNS, 1, integrationNS, 3))
	require.Equal(t, uint64(7), GetNodeLink(ic, vehicleNS, deviceNS, 1))
	require.Equal(t, uint64(3), GetNodeLink(ic, vehicleNS, integrationNS, 1))
	require.Equal(t, uint64(1), GetNodeLink(ic, deviceNS, vehicleNS, 7))
	require.ErrorIs(t, SetNodeLink(ic, deviceNS, 7, vehicleNS, 2), ErrLinked)

	require.Equal(t, uint64(7), ClearNodeLink(ic, vehicleNS, deviceNS, 1))
	require.Equal(t, uint64(0), GetNodeLink(ic, deviceNS, vehicleNS, 7))
	require.Equal(t, uint64(3), GetNodeLink(ic, vehicleNS, integrationNS, 1))
}

func TestBeneficiary(t *testing.T) {
	ic := newContext(t)
	id, err := nft.Mint(ic, deviceNS, alice)
	require.NoError(t, err)

	require.Equal(t, alice, GetBeneficiary(ic, deviceNS, id))

	ic.Caller = bob
	require.ErrorIs(t, SetBeneficiary(ic, deviceNS, id, bob), common.ErrAuthorization)
	require.ErrorIs(t, SetBeneficiary(ic, deviceNS, id+1, bob), common.ErrInvalidNode)

	ic.Caller = alice
	require.ErrorIs(t, SetBeneficiary(ic, deviceNS, id, alice), ErrBeneficiaryIsOwner)

	require.NoError(t, SetBeneficiary(ic, deviceNS, id, bob))
	require.Equal(t, bob, GetBeneficiary(ic, deviceNS, id))
	require.Equal(t, alice, nft.OwnerOf(ic, deviceNS, id))

	ResetBeneficiary(ic, deviceNS, id)
	require.Equal(t, alice, GetBeneficiary(ic, deviceNS, id))
}
