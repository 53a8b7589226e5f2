/*
Package nft contains minimal non-divisible identity tokens. Every node type
has its own token namespace: the namespace address is the node namespace and
the token id is the node id, so node ownership is token ownership.

Tokens are minted and burnt only by entity modules. A transfer calls the
namespace transfer hook, a registry operation that enforces type specific
policy and adjusts dependent state before the token moves.
*/
package nft

import (
	"fmt"

	"github.com/motorid/registry/access"
	"github.com/motorid/registry/common"
	"github.com/motorid/registry/interop"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Prefixes used under common.PrefixToken.
const (
	// prefixTotalSupply contains map from namespace to the number of tokens.
	prefixTotalSupply byte = 0x00
	// prefixBalance contains map from (namespace + owner) to their balance.
	prefixBalance byte = 0x01
	// prefixAccountToken contains set of (namespace + owner + token id).
	prefixAccountToken byte = 0x02
	// prefixCounter contains map from namespace to the last minted id.
	prefixCounter byte = 0x03
	// prefixOwner contains map from (namespace + token id) to owner.
	prefixOwner byte = 0x04
	// prefixApproval contains map from (namespace + token id) to the
	// account approved to transfer the token.
	prefixApproval byte = 0x05
	// prefixState contains map from namespace to Token.
	prefixState byte = 0x06
)

var (
	// ErrTokenExists is returned when namespace is already taken.
	ErrTokenExists = common.StateConflict("token already exists")
	// ErrUnknownToken is returned for namespaces with no token.
	ErrUnknownToken = common.Validation("unknown token")
	// ErrInvalidToken is returned for unknown token ids.
	ErrInvalidToken = common.Validation("invalid token")
	// ErrNotOwner is returned when from is not the token owner.
	ErrNotOwner = common.Authorization("not token owner")
	// ErrNotApproved is returned when caller can't transfer the token.
	ErrNotApproved = common.Authorization("caller is not token owner nor approved")
)

// Token describes a token namespace.
type Token struct {
	Name   string
	Symbol string
	// Hook is the signature of the registry operation called on every
	// transfer with TransferParams, empty for no hook.
	Hook string
}

// EncodeBinary implements io.Serializable.
func (t *Token) EncodeBinary(w *io.BinWriter) {
	w.WriteString(t.Name)
	w.WriteString(t.Symbol)
	w.WriteString(t.Hook)
}

// DecodeBinary implements io.Serializable.
func (t *Token) DecodeBinary(r *io.BinReader) {
	t.Name = r.ReadString()
	t.Symbol = r.ReadString()
	t.Hook = r.ReadString()
}

// TransferParams are passed to transfer hooks.
type TransferParams struct {
	Namespace util.Uint160
	From      util.Uint160
	To        util.Uint160
	ID        uint64
}

func key(prefix byte, ns util.Uint160, parts ...[]byte) []byte {
	return common.Key(common.PrefixToken, append([][]byte{{prefix}, ns.BytesBE()}, parts...)...)
}

// Create registers token namespace.
func Create(ic *interop.Context, ns util.Uint160, t Token) error {
	if ns.Equals(util.Uint160{}) {
		return common.ErrZeroAddress
	}
	k := key(prefixState, ns)
	if ic.Get(k) != nil {
		return fmt.Errorf("%w: %s", ErrTokenExists, common.AddressString(ns))
	}
	if err := common.SetSerialized(ic, k, &t); err != nil {
		return err
	}
	ic.Notify("TokenCreated", ns, t.Name, t.Symbol)
	return nil
}

// Get returns token description.
func Get(s common.Storage, ns util.Uint160) (Token, error) {
	var t Token
	ok, err := common.GetSerialized(s, key(prefixState, ns), &t)
	if err != nil {
		return Token{}, err
	}
	if !ok {
		return Token{}, fmt.Errorf("%w: %s", ErrUnknownToken, common.AddressString(ns))
	}
	return t, nil
}

// TotalSupply returns the number of existing tokens in the namespace.
func TotalSupply(s common.Storage, ns util.Uint160) uint64 {
	return common.GetUint64(s, key(prefixTotalSupply, ns))
}

// OwnerOf returns token owner or zero address.
func OwnerOf(s common.Storage, ns util.Uint160, id uint64) util.Uint160 {
	data := s.Get(key(prefixOwner, ns, common.IDBytes(id)))
	if data == nil {
		return util.Uint160{}
	}
	owner, _ := util.Uint160DecodeBytesBE(data)
	return owner
}

// Exists checks whether token exists.
func Exists(s common.Storage, ns util.Uint160, id uint64) bool {
	return s.Get(key(prefixOwner, ns, common.IDBytes(id))) != nil
}

// BalanceOf returns the number of tokens owned by the account.
func BalanceOf(s common.Storage, ns, owner util.Uint160) uint64 {
	return common.GetUint64(s, key(prefixBalance, ns, owner.BytesBE()))
}

// TokensOf lists tokens owned by the account in id order.
func TokensOf(ic *interop.Context, ns, owner util.Uint160) []uint64 {
	var ids []uint64
	ic.Find(key(prefixAccountToken, ns, owner.BytesBE()), func(k, _ []byte) bool {
		ids = append(ids, common.IDFromBytes(k))
		return true
	})
	return ids
}

// GetApproved returns account approved to transfer the token.
func GetApproved(s common.Storage, ns util.Uint160, id uint64) util.Uint160 {
	data := s.Get(key(prefixApproval, ns, common.IDBytes(id)))
	if data == nil {
		return util.Uint160{}
	}
	a, _ := util.Uint160DecodeBytesBE(data)
	return a
}

// Mint creates new token owned by to and returns its id.
func Mint(ic *interop.Context, ns, to util.Uint160) (uint64, error) {
	if _, err := Get(ic, ns); err != nil {
		return 0, err
	}
	if to.Equals(util.Uint160{}) {
		return 0, common.ErrZeroAddress
	}
	counterKey := key(prefixCounter, ns)
	id := common.GetUint64(ic, counterKey) + 1
	common.PutUint64(ic, counterKey, id)

	setOwner(ic, ns, id, to)
	updateBalance(ic, ns, id, to, +1)
	updateTotalSupply(ic, ns, +1)
	ic.Notify("Transfer", ns, util.Uint160{}, to, id)
	return id, nil
}

// Burn destroys the token.
func Burn(ic *interop.Context, ns util.Uint160, id uint64) error {
	owner := OwnerOf(ic, ns, id)
	if !Exists(ic, ns, id) {
		return ErrInvalidToken
	}
	ic.Delete(key(prefixOwner, ns, common.IDBytes(id)))
	ic.Delete(key(prefixApproval, ns, common.IDBytes(id)))
	updateBalance(ic, ns, id, owner, -1)
	updateTotalSupply(ic, ns, -1)
	ic.Notify("Transfer", ns, owner, util.Uint160{}, id)
	return nil
}

// Approve allows account to transfer the token. Zero account clears
// approval.
func Approve(ic *interop.Context, ns, to util.Uint160, id uint64) error {
	owner := OwnerOf(ic, ns, id)
	if !Exists(ic, ns, id) {
		return ErrInvalidToken
	}
	if !owner.Equals(ic.Caller) {
		return ErrNotOwner
	}
	k := key(prefixApproval, ns, common.IDBytes(id))
	if to.Equals(util.Uint160{}) {
		ic.Delete(k)
	} else {
		ic.Put(k, to.BytesBE())
	}
	ic.Notify("Approval", ns, owner, to, id)
	return nil
}

// TransferFrom moves token from its owner to another account on behalf of
// the caller: the owner, the approved account or a TRANSFERER_ROLE holder.
// The namespace transfer hook runs first and may reject the transfer.
func TransferFrom(ic *interop.Context, ns, from, to util.Uint160, id uint64) error {
	t, err := Get(ic, ns)
	if err != nil {
		return err
	}
	if !Exists(ic, ns, id) {
		return ErrInvalidToken
	}
	if !OwnerOf(ic, ns, id).Equals(from) {
		return ErrNotOwner
	}
	if to.Equals(util.Uint160{}) {
		return common.ErrZeroAddress
	}
	if !ic.Caller.Equals(from) && !GetApproved(ic, ns, id).Equals(ic.Caller) &&
		!access.HasRole(ic, access.TransfererRole, ic.Caller) {
		return ErrNotApproved
	}

	if t.Hook != "" {
		_, err := ic.Call(ns, t.Hook, TransferParams{Namespace: ns, From: from, To: to, ID: id})
		if err != nil {
			return err
		}
	}
	return Move(ic, ns, to, id)
}

// Move changes token owner without any checks or hooks. It is used by
// modules moving dependent tokens together with their parent token.
func Move(ic *interop.Context, ns, to util.Uint160, id uint64) error {
	if !Exists(ic, ns, id) {
		return ErrInvalidToken
	}
	from := OwnerOf(ic, ns, id)
	ic.Delete(key(prefixApproval, ns, common.IDBytes(id)))
	if !from.Equals(to) {
		setOwner(ic, ns, id, to)
		updateBalance(ic, ns, id, from, -1)
		updateBalance(ic, ns, id, to, +1)
	}
	ic.Notify("Transfer", ns, from, to, id)
	return nil
}

func setOwner(ic *interop.Context, ns util.Uint160, id uint64, owner util.Uint160) {
	ic.Put(key(prefixOwner, ns, common.IDBytes(id)), owner.BytesBE())
}

// updateBalance updates account's balance and account's tokens.
func updateBalance(ic *interop.Context, ns util.Uint160, id uint64, acc util.Uint160, diff int) {
	balanceKey := key(prefixBalance, ns, acc.BytesBE())
	balance := common.GetUint64(ic, balanceKey)
	common.PutUint64(ic, balanceKey, uint64(int64(balance)+int64(diff)))

	accountTokenKey := key(prefixAccountToken, ns, acc.BytesBE(), common.IDBytes(id))
	if diff < 0 {
		ic.Delete(accountTokenKey)
	} else {
		ic.Put(accountTokenKey, []byte{1})
	}
}

func updateTotalSupply(ic *interop.Context, ns util.Uint160, diff int) {
	tsKey := key(prefixTotalSupply, ns)
	ts := common.GetUint64(ic, tsKey)
	common.PutUint64(ic, tsKey, uint64(int64(ts)+int64(diff)))
}
