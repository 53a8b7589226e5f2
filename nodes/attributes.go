package nodes

import (
	"fmt"

	"github.com/motorid/registry/common"
	"github.com/motorid/registry/interop"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

var (
	// ErrNotWhitelisted is returned when an attribute is not whitelisted for
	// the node type.
	ErrNotWhitelisted = common.Validation("not whitelisted")
	// ErrAttributeExists is returned when whitelisting an attribute twice.
	ErrAttributeExists = common.StateConflict("attribute already exists")
)

// AttributeInfoPair is an attribute with its value.
type AttributeInfoPair struct {
	Attribute string
	Info      string
}

func whitelistKey(typ, attr string) []byte {
	return common.Key(common.PrefixWhitelist, []byte(typ), []byte{0}, []byte(attr))
}

func infoPrefix(ns util.Uint160, id uint64) []byte {
	return common.Key(common.PrefixInfo, ns.BytesBE(), common.IDBytes(id))
}

func infoKey(ns util.Uint160, id uint64, attr string) []byte {
	return append(infoPrefix(ns, id), attr...)
}

// AddAttribute whitelists attribute for the node type.
func AddAttribute(ic *interop.Context, typ, attr string) error {
	if attr == "" {
		return ErrEmptyName
	}
	if !IsNodeType(ic, typ) {
		return fmt.Errorf("%w: %s", ErrNodeTypeNotRegistered, typ)
	}
	key := whitelistKey(typ, attr)
	if ic.Get(key) != nil {
		return fmt.Errorf("%w: %s", ErrAttributeExists, attr)
	}
	ic.Put(key, []byte{1})
	ic.Notify("AttributeAdded", typ, attr)
	return nil
}

// RemoveAttribute removes attribute from the node type whitelist. Values
// already stored for existing nodes are kept but can no longer be updated.
func RemoveAttribute(ic *interop.Context, typ, attr string) error {
	key := whitelistKey(typ, attr)
	if ic.Get(key) == nil {
		return fmt.Errorf("%w: %s", ErrNotWhitelisted, attr)
	}
	ic.Delete(key)
	ic.Notify("AttributeRemoved", typ, attr)
	return nil
}

// IsAllowedAttribute checks whether attribute is whitelisted for the type.
func IsAllowedAttribute(s common.Storage, typ, attr string) bool {
	return s.Get(whitelistKey(typ, attr)) != nil
}

// Attributes lists whitelisted attributes of the node type.
func Attributes(ic *interop.Context, typ string) []string {
	var res []string
	ic.Find(common.Key(common.PrefixWhitelist, []byte(typ), []byte{0}), func(k, _ []byte) bool {
		res = append(res, string(k))
		return true
	})
	return res
}

// SetInfo sets attribute value of the node. Empty value clears it.
func SetInfo(ic *interop.Context, ns util.Uint160, id uint64, attr, value string) error {
	return SetInfos(ic, ns, id, []AttributeInfoPair{{Attribute: attr, Info: value}})
}

// SetInfos sets several attribute values of the node. Nothing is written if
// any attribute is not whitelisted.
func SetInfos(ic *interop.Context, ns util.Uint160, id uint64, pairs []AttributeInfoPair) error {
	r, ok := Get(ic, ns, id)
	if !ok {
		return common.ErrInvalidNode
	}
	for i := range pairs {
		if !IsAllowedAttribute(ic, r.Type, pairs[i].Attribute) {
			return fmt.Errorf("%w: %s", ErrNotWhitelisted, pairs[i].Attribute)
		}
	}
	for i := range pairs {
		key := infoKey(ns, id, pairs[i].Attribute)
		if pairs[i].Info == "" {
			ic.Delete(key)
		} else {
			ic.Put(key, []byte(pairs[i].Info))
		}
	}
	return nil
}

// SetInfoBatch is SetInfos with attributes and values passed separately.
func SetInfoBatch(ic *interop.Context, ns util.Uint160, id uint64, attrs, infos []string) error {
	if len(attrs) != len(infos) {
		return common.ErrSameLength
	}
	pairs := make([]AttributeInfoPair, len(attrs))
	for i := range attrs {
		pairs[i] = AttributeInfoPair{Attribute: attrs[i], Info: infos[i]}
	}
	return SetInfos(ic, ns, id, pairs)
}

// GetInfo returns attribute value or empty string.
func GetInfo(s common.Storage, ns util.Uint160, id uint64, attr string) string {
	return string(s.Get(infoKey(ns, id, attr)))
}

// Infos lists all attribute values of the node.
func Infos(ic *interop.Context, ns util.Uint160, id uint64) []AttributeInfoPair {
	var res []AttributeInfoPair
	ic.Find(infoPrefix(ns, id), func(k, v []byte) bool {
		res = append(res, AttributeInfoPair{Attribute: string(k), Info: string(v)})
		return true
	})
	return res
}

// SplitPairs splits pairs into attribute names and values.
func SplitPairs(pairs []AttributeInfoPair) (attrs, infos []string) {
	attrs = make([]string, len(pairs))
	infos = make([]string, len(pairs))
	for i := range pairs {
		attrs[i], infos[i] = pairs[i].Attribute, pairs[i].Info
	}
	return attrs, infos
}
