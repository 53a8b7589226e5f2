/*
Package mapper stores links between nodes of different namespaces and
per-node beneficiaries.

A link is always written on both sides at once, so it can be looked up from
either node and there are no half-links.
*/
package mapper

import (
	"github.com/motorid/registry/common"
	"github.com/motorid/registry/interop"
	"github.com/motorid/registry/nft"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

var (
	// ErrLinked is returned when linking a node that is already linked.
	ErrLinked = common.StateConflict("already linked")
	// ErrBeneficiaryIsOwner is returned when the owner names themselves.
	ErrBeneficiaryIsOwner = common.Validation("beneficiary is already the owner")
)

func linkKey(ns util.Uint160, id uint64) []byte {
	return common.Key(common.PrefixLink, ns.BytesBE(), common.IDBytes(id))
}

func nodeLinkKey(nsA, nsB util.Uint160, id uint64) []byte {
	return common.Key(common.PrefixNodeLink, nsA.BytesBE(), nsB.BytesBE(), common.IDBytes(id))
}

// SetLink links node a of namespace A with node b of namespace B.
func SetLink(ic *interop.Context, nsA util.Uint160, a uint64, nsB util.Uint160, b uint64) error {
	if GetLink(ic, nsA, a) != 0 || GetLink(ic, nsB, b) != 0 {
		return ErrLinked
	}
	common.PutUint64(ic, linkKey(nsA, a), b)
	common.PutUint64(ic, linkKey(nsB, b), a)
	return nil
}

// GetLink returns the node linked with the given one or zero.
func GetLink(s common.Storage, ns util.Uint160, id uint64) uint64 {
	return common.GetUint64(s, linkKey(ns, id))
}

// ClearLink removes link of node a of namespace A to namespace B from both
// sides and returns the unlinked node of B.
func ClearLink(ic *interop.Context, nsA util.Uint160, a uint64, nsB util.Uint160) uint64 {
	b := GetLink(ic, nsA, a)
	if b == 0 {
		return 0
	}
	ic.Delete(linkKey(nsA, a))
	ic.Delete(linkKey(nsB, b))
	return b
}

// SetNodeLink links node a of namespace A with node b of namespace B. Unlike
// SetLink, the key includes both namespaces, so a node may be linked with
// nodes of several namespaces.
func SetNodeLink(ic *interop.Context, nsA util.Uint160, a uint64, nsB util.Uint160, b uint64) error {
	if GetNodeLink(ic, nsA, nsB, a) != 0 || GetNodeLink(ic, nsB, nsA, b) != 0 {
		return ErrLinked
	}
	common.PutUint64(ic, nodeLinkKey(nsA, nsB, a), b)
	common.PutUint64(ic, nodeLinkKey(nsB, nsA, b), a)
	return nil
}

// GetNodeLink returns node of namespace B linked with node a of namespace A.
func GetNodeLink(s common.Storage, nsA, nsB util.Uint160, a uint64) uint64 {
	return common.GetUint64(s, nodeLinkKey(nsA, nsB, a))
}

// ClearNodeLink removes node link from both sides and returns the unlinked
// node of B.
func ClearNodeLink(ic *interop.Context, nsA, nsB util.Uint160, a uint64) uint64 {
	b := GetNodeLink(ic, nsA, nsB, a)
	if b == 0 {
		return 0
	}
	ic.Delete(nodeLinkKey(nsA, nsB, a))
	ic.Delete(nodeLinkKey(nsB, nsA, b))
	return b
}

func beneficiaryKey(ns util.Uint160, id uint64) []byte {
	return common.Key(common.PrefixBeneficiary, ns.BytesBE(), common.IDBytes(id))
}

// SetBeneficiary sets node beneficiary on behalf of the token owner. Zero
// address resets it to the owner.
func SetBeneficiary(ic *interop.Context, ns util.Uint160, id uint64, beneficiary util.Uint160) error {
	if !nft.Exists(ic, ns, id) {
		return common.ErrInvalidNode
	}
	owner := nft.OwnerOf(ic, ns, id)
	if !owner.Equals(ic.Caller) {
		return nft.ErrNotOwner
	}
	if owner.Equals(beneficiary) {
		return ErrBeneficiaryIsOwner
	}
	if beneficiary.Equals(util.Uint160{}) {
		ic.Delete(beneficiaryKey(ns, id))
	} else {
		ic.Put(beneficiaryKey(ns, id), beneficiary.BytesBE())
	}
	ic.Notify("BeneficiarySet", ns, id, beneficiary)
	return nil
}

// GetBeneficiary returns node beneficiary falling back to the token owner.
func GetBeneficiary(s common.Storage, ns util.Uint160, id uint64) util.Uint160 {
	if data := s.Get(beneficiaryKey(ns, id)); data != nil {
		if b, err := util.Uint160DecodeBytesBE(data); err == nil {
			return b
		}
	}
	return nft.OwnerOf(s, ns, id)
}

// ResetBeneficiary removes beneficiary override, e.g. on token transfer.
func ResetBeneficiary(ic *interop.Context, ns util.Uint160, id uint64) {
	if ic.Get(beneficiaryKey(ns, id)) == nil {
		return
	}
	ic.Delete(beneficiaryKey(ns, id))
	ic.Notify("BeneficiarySet", ns, id, util.Uint160{})
}
