/*
Package access implements role based access control over the registry
storage.

Every role is governed by an admin role: only holders of the admin role may
grant or revoke it. DefaultAdminRole administers itself and AdminRole, and
AdminRole administers all feature roles.
*/
package access

import (
	"fmt"

	"github.com/motorid/registry/common"
	"github.com/motorid/registry/interop"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// MissingRoleError is returned by guards when the caller lacks the role.
type MissingRoleError struct {
	Role    util.Uint256
	Account util.Uint160
}

// Error implements error.
func (e *MissingRoleError) Error() string {
	return fmt.Sprintf("account %s is missing role 0x%s", common.AddressString(e.Account), e.Role.StringBE())
}

// Is makes MissingRoleError an authorization error.
func (e *MissingRoleError) Is(target error) bool {
	t, ok := target.(*common.Error)
	return ok && t.Kind == common.KindAuthorization && t.Msg == ""
}

// ErrRenounceForSelf is returned when an account renounces someone else's role.
var ErrRenounceForSelf = common.Authorization("can only renounce roles for self")

func memberKey(role util.Uint256, acc util.Uint160) []byte {
	return common.Key(common.PrefixRoleMember, role.BytesBE(), acc.BytesBE())
}

// HasRole checks whether account has the role.
func HasRole(s common.Storage, role util.Uint256, acc util.Uint160) bool {
	return s.Get(memberKey(role, acc)) != nil
}

// GetRoleAdmin returns admin role of the role.
func GetRoleAdmin(s common.Storage, role util.Uint256) util.Uint256 {
	data := s.Get(common.Key(common.PrefixRoleAdmin, role.BytesBE()))
	if data == nil {
		return DefaultAdminRole
	}
	admin, err := util.Uint256DecodeBytesBE(data)
	if err != nil {
		return DefaultAdminRole
	}
	return admin
}

// Check returns MissingRoleError if the caller does not have the role.
func Check(ic *interop.Context, role util.Uint256) error {
	if !HasRole(ic, role, ic.Caller) {
		return &MissingRoleError{Role: role, Account: ic.Caller}
	}
	return nil
}

// Grant gives the role to the account without checking the caller.
func Grant(ic *interop.Context, role util.Uint256, acc util.Uint160) {
	if HasRole(ic, role, acc) {
		return
	}
	ic.Put(memberKey(role, acc), []byte{1})
	ic.Notify("RoleGranted", role, acc, ic.Caller)
}

// Revoke takes the role from the account without checking the caller.
func Revoke(ic *interop.Context, role util.Uint256, acc util.Uint160) {
	if !HasRole(ic, role, acc) {
		return
	}
	ic.Delete(memberKey(role, acc))
	ic.Notify("RoleRevoked", role, acc, ic.Caller)
}

// SetRoleAdmin changes admin role of the role without checking the caller.
func SetRoleAdmin(ic *interop.Context, role, admin util.Uint256) {
	prev := GetRoleAdmin(ic, role)
	key := common.Key(common.PrefixRoleAdmin, role.BytesBE())
	if admin == DefaultAdminRole {
		ic.Delete(key)
	} else {
		ic.Put(key, admin.BytesBE())
	}
	ic.Notify("RoleAdminChanged", role, prev, admin)
}

// Init seeds the role hierarchy: admin gets DefaultAdminRole and AdminRole,
// feature roles become governed by AdminRole.
func Init(ic *interop.Context, admin util.Uint160) error {
	if admin.Equals(util.Uint160{}) {
		return common.ErrZeroAddress
	}
	Grant(ic, DefaultAdminRole, admin)
	Grant(ic, AdminRole, admin)
	for _, r := range FeatureRoles {
		if GetRoleAdmin(ic, r) != AdminRole {
			SetRoleAdmin(ic, r, AdminRole)
		}
	}
	return nil
}
