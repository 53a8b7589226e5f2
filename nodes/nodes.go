/*
Package nodes implements the node store shared by all entity modules: node
type tags, per-type attribute whitelists, parent pointers and attribute
values.

Nodes form a forest. A node is identified by its namespace (the address of
the identity token it belongs to) and an id unique within the namespace.
Parent pointers may cross namespaces, e.g. a vehicle points to its
manufacturer, so each node stores the namespace of its parent as well.
*/
package nodes

import (
	"fmt"

	"github.com/motorid/registry/common"
	"github.com/motorid/registry/interop"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// MaxDepth is the maximum length of a parent chain.
const MaxDepth = 16

var (
	// ErrNodeTypeNotRegistered is returned for unknown node type tags.
	ErrNodeTypeNotRegistered = common.Validation("node type not registered")
	// ErrNodeTypeRegistered is returned on repeated node type registration.
	ErrNodeTypeRegistered = common.StateConflict("node type already registered")
	// ErrNodeTypeSet is returned when namespace node type is set twice.
	ErrNodeTypeSet = common.StateConflict("node type already set")
	// ErrNodeTypeNotSet is returned when nodes are created in a namespace
	// with no node type.
	ErrNodeTypeNotSet = common.Validation("node type not set")
	// ErrNodeExists is returned when a node is created twice.
	ErrNodeExists = common.StateConflict("node already exists")
	// ErrCycle is returned when re-parenting would create a cycle or a too
	// deep chain.
	ErrCycle = common.Validation("invalid parent chain")
	// ErrEmptyName is returned for empty tags and attribute names.
	ErrEmptyName = common.Validation("empty name")
)

// Record is a node stored in the registry.
type Record struct {
	// ParentNamespace is the namespace of the parent node.
	ParentNamespace util.Uint160
	// Parent is the id of the parent node, zero for roots.
	Parent uint64
	// Type is the node type tag assigned at creation.
	Type string
}

// EncodeBinary implements io.Serializable.
func (r *Record) EncodeBinary(w *io.BinWriter) {
	r.ParentNamespace.EncodeBinary(w)
	w.WriteU64LE(r.Parent)
	w.WriteString(r.Type)
}

// DecodeBinary implements io.Serializable.
func (r *Record) DecodeBinary(br *io.BinReader) {
	r.ParentNamespace.DecodeBinary(br)
	r.Parent = br.ReadU64LE()
	r.Type = br.ReadString()
}

func nodeKey(ns util.Uint160, id uint64) []byte {
	return common.Key(common.PrefixNode, ns.BytesBE(), common.IDBytes(id))
}

// AddNodeType registers node type tag.
func AddNodeType(ic *interop.Context, tag string) error {
	if tag == "" {
		return ErrEmptyName
	}
	key := common.Key(common.PrefixNodeTypeTag, []byte(tag))
	if ic.Get(key) != nil {
		return fmt.Errorf("%w: %s", ErrNodeTypeRegistered, tag)
	}
	ic.Put(key, []byte{1})
	ic.Notify("NodeTypeAdded", tag)
	return nil
}

// IsNodeType checks whether the tag is registered.
func IsNodeType(s common.Storage, tag string) bool {
	return s.Get(common.Key(common.PrefixNodeTypeTag, []byte(tag))) != nil
}

// SetNodeType binds namespace to a registered node type. It can be done only
// once per namespace.
func SetNodeType(ic *interop.Context, ns util.Uint160, tag string) error {
	if !IsNodeType(ic, tag) {
		return fmt.Errorf("%w: %s", ErrNodeTypeNotRegistered, tag)
	}
	key := common.Key(common.PrefixNamespaceType, ns.BytesBE())
	if ic.Get(key) != nil {
		return ErrNodeTypeSet
	}
	ic.Put(key, []byte(tag))
	ic.Notify("NodeTypeSet", ns, tag)
	return nil
}

// NamespaceType returns node type of the namespace or empty string.
func NamespaceType(s common.Storage, ns util.Uint160) string {
	return string(s.Get(common.Key(common.PrefixNamespaceType, ns.BytesBE())))
}

// Create stores new node. Parent existence is validated by the caller which
// knows what parent type the node requires.
func Create(ic *interop.Context, ns util.Uint160, id uint64, parentNS util.Uint160, parent uint64) error {
	typ := NamespaceType(ic, ns)
	if typ == "" {
		return ErrNodeTypeNotSet
	}
	key := nodeKey(ns, id)
	if ic.Get(key) != nil {
		return fmt.Errorf("%w: %d", ErrNodeExists, id)
	}
	return common.SetSerialized(ic, key, &Record{ParentNamespace: parentNS, Parent: parent, Type: typ})
}

// Get returns node record.
func Get(s common.Storage, ns util.Uint160, id uint64) (Record, bool) {
	var r Record
	ok, err := common.GetSerialized(s, nodeKey(ns, id), &r)
	if err != nil {
		return Record{}, false
	}
	return r, ok
}

// Exists checks whether node exists.
func Exists(s common.Storage, ns util.Uint160, id uint64) bool {
	return id != 0 && s.Get(nodeKey(ns, id)) != nil
}

// GetNodeType returns node type tag or empty string for missing nodes.
func GetNodeType(s common.Storage, ns util.Uint160, id uint64) string {
	r, _ := Get(s, ns, id)
	return r.Type
}

// GetParentNode returns parent node id or zero.
func GetParentNode(s common.Storage, ns util.Uint160, id uint64) uint64 {
	r, _ := Get(s, ns, id)
	return r.Parent
}

// SetParentNode re-parents the node. The new parent must exist and must not
// be the node itself or any of its descendants.
func SetParentNode(ic *interop.Context, ns util.Uint160, id uint64, parentNS util.Uint160, parent uint64) error {
	r, ok := Get(ic, ns, id)
	if !ok {
		return common.ErrInvalidNode
	}
	if !Exists(ic, parentNS, parent) {
		return common.ErrInvalidParentNode
	}

	curNS, cur := parentNS, parent
	for i := 0; cur != 0; i++ {
		if i == MaxDepth || (curNS == ns && cur == id) {
			return ErrCycle
		}
		pr, ok := Get(ic, curNS, cur)
		if !ok {
			break
		}
		curNS, cur = pr.ParentNamespace, pr.Parent
	}

	r.ParentNamespace, r.Parent = parentNS, parent
	return common.SetSerialized(ic, nodeKey(ns, id), &r)
}

// Delete removes the node with all its attribute values.
func Delete(ic *interop.Context, ns util.Uint160, id uint64) {
	ic.Delete(nodeKey(ns, id))

	var keys [][]byte
	prefix := infoPrefix(ns, id)
	ic.Find(prefix, func(k, _ []byte) bool {
		keys = append(keys, append(append([]byte{}, prefix...), k...))
		return true
	})
	for i := range keys {
		ic.Delete(keys[i])
	}
}
