package nft

import (
	"github.com/motorid/registry/access"
	"github.com/motorid/registry/common"
	"github.com/motorid/registry/interop"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Operation signatures. Every operation takes token namespace first.
const (
	OpCreateToken  = "createToken(address,string,string,string)"
	OpName         = "name(address)"
	OpSymbol       = "symbol(address)"
	OpTotalSupply  = "totalSupply(address)"
	OpOwnerOf      = "ownerOf(address,uint256)"
	OpExists       = "exists(address,uint256)"
	OpBalanceOf    = "balanceOf(address,address)"
	OpTokensOf     = "tokensOf(address,address)"
	OpGetApproved  = "getApproved(address,uint256)"
	OpApprove      = "approve(address,address,uint256)"
	OpTransferFrom = "transferFrom(address,address,address,uint256)"
)

// CreateParams are arguments of OpCreateToken.
type CreateParams struct {
	Namespace util.Uint160
	Token
}

// TokenParams identify a token.
type TokenParams struct {
	Namespace util.Uint160
	ID        uint64
}

// AccountParams identify an account within a namespace.
type AccountParams struct {
	Namespace util.Uint160
	Account   util.Uint160
}

// ApproveParams are arguments of OpApprove.
type ApproveParams struct {
	Namespace util.Uint160
	To        util.Uint160
	ID        uint64
}

// Module exposes identity tokens of all namespaces.
type Module struct{}

// Name implements interop.Module.
func (Module) Name() string { return "IdentityToken" }

// Version implements interop.Module.
func (Module) Version() int { return common.Version }

// Methods implements interop.Module.
func (Module) Methods() []interop.Method {
	return []interop.Method{
		interop.NewMethod(OpCreateToken, func(ic *interop.Context, p CreateParams) (interop.Null, error) {
			if err := access.Check(ic, access.DefaultAdminRole); err != nil {
				return interop.Null{}, err
			}
			return interop.Null{}, Create(ic, p.Namespace, p.Token)
		}),
		interop.NewSafeMethod(OpName, func(ic *interop.Context, ns util.Uint160) (string, error) {
			t, err := Get(ic, ns)
			return t.Name, err
		}),
		interop.NewSafeMethod(OpSymbol, func(ic *interop.Context, ns util.Uint160) (string, error) {
			t, err := Get(ic, ns)
			return t.Symbol, err
		}),
		interop.NewSafeMethod(OpTotalSupply, func(ic *interop.Context, ns util.Uint160) (uint64, error) {
			return TotalSupply(ic, ns), nil
		}),
		interop.NewSafeMethod(OpOwnerOf, func(ic *interop.Context, p TokenParams) (util.Uint160, error) {
			if !Exists(ic, p.Namespace, p.ID) {
				return util.Uint160{}, ErrInvalidToken
			}
			return OwnerOf(ic, p.Namespace, p.ID), nil
		}),
		interop.NewSafeMethod(OpExists, func(ic *interop.Context, p TokenParams) (bool, error) {
			return Exists(ic, p.Namespace, p.ID), nil
		}),
		interop.NewSafeMethod(OpBalanceOf, func(ic *interop.Context, p AccountParams) (uint64, error) {
			return BalanceOf(ic, p.Namespace, p.Account), nil
		}),
		interop.NewSafeMethod(OpTokensOf, func(ic *interop.Context, p AccountParams) ([]uint64, error) {
			return TokensOf(ic, p.Namespace, p.Account), nil
		}),
		interop.NewSafeMethod(OpGetApproved, func(ic *interop.Context, p TokenParams) (util.Uint160, error) {
			return GetApproved(ic, p.Namespace, p.ID), nil
		}),
		interop.NewMethod(OpApprove, func(ic *interop.Context, p ApproveParams) (interop.Null, error) {
			return interop.Null{}, Approve(ic, p.Namespace, p.To, p.ID)
		}),
		interop.NewMethod(OpTransferFrom, func(ic *interop.Context, p TransferParams) (interop.Null, error) {
			return interop.Null{}, TransferFrom(ic, p.Namespace, p.From, p.To, p.ID)
		}),
	}
}
