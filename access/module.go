package access

import (
	"github.com/motorid/registry/common"
	"github.com/motorid/registry/interop"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Operation signatures.
const (
	OpHasRole      = "hasRole(bytes32,address)"
	OpGetRoleAdmin = "getRoleAdmin(bytes32)"
	OpGrantRole    = "grantRole(bytes32,address)"
	OpRevokeRole   = "revokeRole(bytes32,address)"
	OpRenounceRole = "renounceRole(bytes32,address)"
	OpSetRoleAdmin = "setRoleAdmin(bytes32,bytes32)"
)

// RoleParams are arguments of role membership operations.
type RoleParams struct {
	Role    util.Uint256
	Account util.Uint160
}

// RoleAdminParams are arguments of OpSetRoleAdmin.
type RoleAdminParams struct {
	Role  util.Uint256
	Admin util.Uint256
}

// Module exposes access control through the registry.
type Module struct{}

// Name implements interop.Module.
func (Module) Name() string { return "AccessControl" }

// Version implements interop.Module.
func (Module) Version() int { return common.Version }

// Methods implements interop.Module.
func (Module) Methods() []interop.Method {
	return []interop.Method{
		interop.NewSafeMethod(OpHasRole, func(ic *interop.Context, p RoleParams) (bool, error) {
			return HasRole(ic, p.Role, p.Account), nil
		}),
		interop.NewSafeMethod(OpGetRoleAdmin, func(ic *interop.Context, role util.Uint256) (util.Uint256, error) {
			return GetRoleAdmin(ic, role), nil
		}),
		interop.NewMethod(OpGrantRole, grantRole),
		interop.NewMethod(OpRevokeRole, revokeRole),
		interop.NewMethod(OpRenounceRole, renounceRole),
		interop.NewMethod(OpSetRoleAdmin, setRoleAdmin),
	}
}

func grantRole(ic *interop.Context, p RoleParams) (interop.Null, error) {
	if err := Check(ic, GetRoleAdmin(ic, p.Role)); err != nil {
		return interop.Null{}, err
	}
	if p.Account.Equals(util.Uint160{}) {
		return interop.Null{}, common.ErrZeroAddress
	}
	Grant(ic, p.Role, p.Account)
	return interop.Null{}, nil
}

func revokeRole(ic *interop.Context, p RoleParams) (interop.Null, error) {
	if err := Check(ic, GetRoleAdmin(ic, p.Role)); err != nil {
		return interop.Null{}, err
	}
	Revoke(ic, p.Role, p.Account)
	return interop.Null{}, nil
}

func renounceRole(ic *interop.Context, p RoleParams) (interop.Null, error) {
	if !p.Account.Equals(ic.Caller) {
		return interop.Null{}, ErrRenounceForSelf
	}
	Revoke(ic, p.Role, p.Account)
	return interop.Null{}, nil
}

func setRoleAdmin(ic *interop.Context, p RoleAdminParams) (interop.Null, error) {
	if err := Check(ic, DefaultAdminRole); err != nil {
		return interop.Null{}, err
	}
	SetRoleAdmin(ic, p.Role, p.Admin)
	return interop.Null{}, nil
}
