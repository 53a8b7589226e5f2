package common

import (
	"encoding/binary"

	"github.com/nspcc-dev/neo-go/pkg/io"
)

// Prefixes used for registry data storage. All modules share one storage
// space, so every prefix is allocated here to keep them disjoint.
const (
	// PrefixOperation contains map from operation selector to the address
	// of the module serving it.
	PrefixOperation byte = 0x01
	// PrefixModuleOperation contains set of (module address + selector).
	PrefixModuleOperation byte = 0x02

	// PrefixRoleMember contains set of (role + account).
	PrefixRoleMember byte = 0x10
	// PrefixRoleAdmin contains map from role to its admin role if it is not
	// the default admin role.
	PrefixRoleAdmin byte = 0x11

	// PrefixNodeTypeTag contains set of registered node type tags.
	PrefixNodeTypeTag byte = 0x20
	// PrefixNamespaceType contains map from namespace to its node type.
	PrefixNamespaceType byte = 0x21
	// PrefixNode contains map from (namespace + id) to node record.
	PrefixNode byte = 0x22
	// PrefixWhitelist contains set of (node type + 0x00 + attribute).
	PrefixWhitelist byte = 0x23
	// PrefixInfo contains map from (namespace + id + attribute) to value.
	PrefixInfo byte = 0x24

	// PrefixLink contains map from (namespace + id) to the linked node id.
	PrefixLink byte = 0x30
	// PrefixNodeLink contains map from (namespace + namespace + id) to the
	// linked node id.
	PrefixNodeLink byte = 0x31
	// PrefixBeneficiary contains map from (namespace + id) to beneficiary.
	PrefixBeneficiary byte = 0x32

	// PrefixToken is the root of identity token data, see nft package.
	PrefixToken byte = 0x40

	// PrefixDomain contains typed-data signature domain.
	PrefixDomain byte = 0x50

	// PrefixManufacturer is the root of manufacturer module data.
	PrefixManufacturer byte = 0x60
	// PrefixAftermarketDevice is the root of aftermarket device module data.
	PrefixAftermarketDevice byte = 0x61
	// PrefixIntegration is the root of integration module data.
	PrefixIntegration byte = 0x62
	// PrefixSyntheticDevice is the root of synthetic device module data.
	PrefixSyntheticDevice byte = 0x63

	// PrefixProxy contains map from well-known proxy name to namespace.
	PrefixProxy byte = 0x70
	// PrefixCollaborator contains map from collaborator name to address.
	PrefixCollaborator byte = 0x71
	// PrefixStream contains map from vehicle id to its stream id.
	PrefixStream byte = 0x72
)

// Storage is a key-value view of the registry storage.
type Storage interface {
	// Get returns stored value or nil if key is missing.
	Get(key []byte) []byte
	// Put stores value under the given key.
	Put(key, value []byte)
	// Delete removes the key.
	Delete(key []byte)
}

// Key concatenates key parts after the prefix.
func Key(prefix byte, parts ...[]byte) []byte {
	n := 1
	for i := range parts {
		n += len(parts[i])
	}
	k := make([]byte, 0, n)
	k = append(k, prefix)
	for i := range parts {
		k = append(k, parts[i]...)
	}
	return k
}

// IDBytes encodes node identifier so that storage iteration order matches
// numeric order.
func IDBytes(id uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, id)
	return b
}

// IDFromBytes decodes node identifier encoded by IDBytes.
func IDFromBytes(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

// GetUint64 returns integer stored under the key or zero.
func GetUint64(s Storage, key []byte) uint64 {
	return IDFromBytes(s.Get(key))
}

// PutUint64 stores integer under the key, zero deletes the key.
func PutUint64(s Storage, key []byte, v uint64) {
	if v == 0 {
		s.Delete(key)
		return
	}
	s.Put(key, IDBytes(v))
}

// GetSerialized decodes the value stored under the key into v. It returns
// false if there is no such key.
func GetSerialized(s Storage, key []byte, v io.Serializable) (bool, error) {
	data := s.Get(key)
	if data == nil {
		return false, nil
	}

	r := io.NewBinReaderFromBuf(data)
	v.DecodeBinary(r)
	if r.Err != nil {
		return true, r.Err
	}

	return true, nil
}

// SetSerialized serializes data and puts it into registry storage.
func SetSerialized(s Storage, key []byte, v io.Serializable) error {
	w := io.NewBufBinWriter()
	v.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return w.Err
	}

	s.Put(key, w.Bytes())
	return nil
}
