/*
Package manufacturer implements the manufacturer module. Manufacturers are
root nodes with unique names, each one controlled by the owner of its
identity token. An account may control at most one manufacturer.
*/
package manufacturer

import (
	"fmt"

	"github.com/motorid/registry/common"
	"github.com/motorid/registry/interop"
	"github.com/motorid/registry/nft"
	"github.com/motorid/registry/nodes"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Prefixes used under common.PrefixManufacturer.
const (
	// prefixName contains map from name to manufacturer id.
	prefixName byte = 0x00
	// prefixID contains map from manufacturer id to name.
	prefixID byte = 0x01
	// prefixController contains map from account to controller flags.
	prefixController byte = 0x02
	// prefixOwned contains map from controller to manufacturer id.
	prefixOwned byte = 0x03
)

const (
	flagController byte = 1 << iota
	flagMinted
)

var (
	// ErrNameTaken is returned for duplicate manufacturer names.
	ErrNameTaken = common.StateConflict("manufacturer name already registered")
	// ErrAlreadyController is returned when an account that already
	// controls a manufacturer gets another one.
	ErrAlreadyController = common.StateConflict("address already controls a manufacturer")
	// ErrInvalidName is returned for empty names.
	ErrInvalidName = common.Validation("invalid manufacturer name")
)

func key(prefix byte, parts ...[]byte) []byte {
	return common.Key(common.PrefixManufacturer, append([][]byte{{prefix}}, parts...)...)
}

// Namespace returns manufacturer token namespace.
func Namespace(s common.Storage) (util.Uint160, error) {
	return nodes.Proxy(s, nodes.Manufacturer)
}

// IDByName returns id of the named manufacturer or zero.
func IDByName(s common.Storage, name string) uint64 {
	return common.GetUint64(s, key(prefixName, []byte(name)))
}

// NameByID returns manufacturer name or empty string.
func NameByID(s common.Storage, id uint64) string {
	return string(s.Get(key(prefixID, common.IDBytes(id))))
}

// IDByOwner returns id of the manufacturer controlled by the account.
func IDByOwner(s common.Storage, owner util.Uint160) uint64 {
	return common.GetUint64(s, key(prefixOwned, owner.BytesBE()))
}

func flags(s common.Storage, acc util.Uint160) byte {
	data := s.Get(key(prefixController, acc.BytesBE()))
	if len(data) != 1 {
		return 0
	}
	return data[0]
}

func setFlags(s common.Storage, acc util.Uint160, f byte) {
	if f == 0 {
		s.Delete(key(prefixController, acc.BytesBE()))
		return
	}
	s.Put(key(prefixController, acc.BytesBE()), []byte{f})
}

// IsController checks whether the account is a manufacturer controller.
func IsController(s common.Storage, acc util.Uint160) bool {
	return flags(s, acc)&flagController != 0
}

// IsMinted checks whether the account controls a minted manufacturer.
func IsMinted(s common.Storage, acc util.Uint160) bool {
	return flags(s, acc)&flagMinted != 0
}

// SetController marks the account as a manufacturer controller.
func SetController(ic *interop.Context, acc util.Uint160) error {
	if acc.Equals(util.Uint160{}) {
		return common.ErrZeroAddress
	}
	if IsController(ic, acc) {
		return fmt.Errorf("%w: %s", ErrAlreadyController, common.AddressString(acc))
	}
	setFlags(ic, acc, flags(ic, acc)|flagController)
	ic.Notify("ControllerSet", acc)
	return nil
}

// Mint creates manufacturer node owned and controlled by owner.
func Mint(ic *interop.Context, owner util.Uint160, name string, infos []nodes.AttributeInfoPair) (uint64, error) {
	ns, err := Namespace(ic)
	if err != nil {
		return 0, err
	}
	if IsMinted(ic, owner) {
		return 0, fmt.Errorf("%w: %s", ErrAlreadyController, common.AddressString(owner))
	}
	if err := checkName(ic, name); err != nil {
		return 0, err
	}

	id, err := nft.Mint(ic, ns, owner)
	if err != nil {
		return 0, err
	}
	if err := nodes.Create(ic, ns, id, util.Uint160{}, 0); err != nil {
		return 0, err
	}
	setName(ic, id, name)
	setFlags(ic, owner, flagController|flagMinted)
	common.PutUint64(ic, key(prefixOwned, owner.BytesBE()), id)
	ic.Notify("ManufacturerNodeMinted", name, id, owner)

	return id, SetInfos(ic, id, infos)
}

// SetInfos sets manufacturer attributes.
func SetInfos(ic *interop.Context, id uint64, infos []nodes.AttributeInfoPair) error {
	ns, err := Namespace(ic)
	if err != nil {
		return err
	}
	if err := nodes.SetInfos(ic, ns, id, infos); err != nil {
		return err
	}
	for _, p := range infos {
		ic.Notify("ManufacturerAttributeSet", id, p.Attribute, p.Info)
	}
	return nil
}

// Rename changes manufacturer name.
func Rename(ic *interop.Context, id uint64, name string) error {
	ns, err := Namespace(ic)
	if err != nil {
		return err
	}
	if !nodes.Exists(ic, ns, id) {
		return common.ErrInvalidNode
	}
	if err := checkName(ic, name); err != nil {
		return err
	}
	ic.Delete(key(prefixName, []byte(NameByID(ic, id))))
	setName(ic, id, name)
	ic.Notify("ManufacturerNameSet", id, name)
	return nil
}

func checkName(s common.Storage, name string) error {
	if name == "" {
		return ErrInvalidName
	}
	if IDByName(s, name) != 0 {
		return fmt.Errorf("%w: %s", ErrNameTaken, name)
	}
	return nil
}

func setName(s common.Storage, id uint64, name string) {
	common.PutUint64(s, key(prefixName, []byte(name)), id)
	s.Put(key(prefixID, common.IDBytes(id)), []byte(name))
}

// onTransfer moves manufacturer control to the new token owner. The new
// owner must not control another manufacturer.
func onTransfer(ic *interop.Context, p nft.TransferParams) error {
	if _, err := nodes.CheckProxyCaller(ic, nodes.Manufacturer); err != nil {
		return err
	}
	if p.From.Equals(p.To) {
		return nil
	}
	if IsMinted(ic, p.To) {
		return fmt.Errorf("%w: %s", ErrAlreadyController, common.AddressString(p.To))
	}
	if IDByOwner(ic, p.From) == p.ID {
		setFlags(ic, p.From, 0)
		ic.Delete(key(prefixOwned, p.From.BytesBE()))
	}
	setFlags(ic, p.To, flagController|flagMinted)
	common.PutUint64(ic, key(prefixOwned, p.To.BytesBE()), p.ID)
	return nil
}
