package access

import (
	"github.com/motorid/registry/common"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// RoleOf returns role identifier for the given role name.
func RoleOf(name string) util.Uint256 {
	return common.Keccak256Hash([]byte(name))
}

// DefaultAdminRole is self-administered and governs ADMIN_ROLE. It is
// seeded at genesis.
var DefaultAdminRole = util.Uint256{}

// Roles used by the registry modules.
var (
	AdminRole = RoleOf("ADMIN_ROLE")

	MintManufacturerRole         = RoleOf("MINT_MANUFACTURER_ROLE")
	SetManufacturerInfoRole      = RoleOf("SET_MANUFACTURER_INFO_ROLE")
	MintVehicleRole              = RoleOf("MINT_VEHICLE_ROLE")
	SetVehicleInfoRole           = RoleOf("SET_VEHICLE_INFO_ROLE")
	BurnVehicleRole              = RoleOf("BURN_VEHICLE_ROLE")
	MintAftermarketDeviceRole    = RoleOf("MINT_AD_ROLE")
	ClaimAftermarketDeviceRole   = RoleOf("CLAIM_AD_ROLE")
	PairAftermarketDeviceRole    = RoleOf("PAIR_AD_ROLE")
	UnpairAftermarketDeviceRole  = RoleOf("UNPAIR_AD_ROLE")
	SetAftermarketDeviceInfoRole = RoleOf("SET_AD_INFO_ROLE")
	MintIntegrationRole          = RoleOf("MINT_INTEGRATION_ROLE")
	SetIntegrationInfoRole       = RoleOf("SET_INTEGRATION_INFO_ROLE")
	MintSyntheticDeviceRole      = RoleOf("MINT_SD_ROLE")
	BurnSyntheticDeviceRole      = RoleOf("BURN_SD_ROLE")
	SetSyntheticDeviceInfoRole   = RoleOf("SET_SD_INFO_ROLE")
	TransfererRole               = RoleOf("TRANSFERER_ROLE")
)

// FeatureRoles lists roles governed by AdminRole.
var FeatureRoles = []util.Uint256{
	MintManufacturerRole,
	SetManufacturerInfoRole,
	MintVehicleRole,
	SetVehicleInfoRole,
	BurnVehicleRole,
	MintAftermarketDeviceRole,
	ClaimAftermarketDeviceRole,
	PairAftermarketDeviceRole,
	UnpairAftermarketDeviceRole,
	SetAftermarketDeviceInfoRole,
	MintIntegrationRole,
	SetIntegrationInfoRole,
	MintSyntheticDeviceRole,
	BurnSyntheticDeviceRole,
	SetSyntheticDeviceInfoRole,
	TransfererRole,
}
