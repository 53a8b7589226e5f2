/*
Package integration implements the integration module. Integrations are data
sources (connected car clouds, telematics providers) synthetic devices are
minted under. Like manufacturers, they have unique names and an account
controls at most one integration.
*/
package integration

import (
	"fmt"

	"github.com/motorid/registry/common"
	"github.com/motorid/registry/interop"
	"github.com/motorid/registry/nft"
	"github.com/motorid/registry/nodes"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Prefixes used under common.PrefixIntegration.
const (
	prefixName       byte = 0x00
	prefixID         byte = 0x01
	prefixController byte = 0x02
)

var (
	// ErrNameTaken is returned for duplicate integration names.
	ErrNameTaken = common.StateConflict("integration name already registered")
	// ErrAlreadyController is returned when an account that already
	// controls an integration gets another one.
	ErrAlreadyController = common.StateConflict("address already controls an integration")
	// ErrInvalidName is returned for empty names.
	ErrInvalidName = common.Validation("invalid integration name")
)

func key(prefix byte, parts ...[]byte) []byte {
	return common.Key(common.PrefixIntegration, append([][]byte{{prefix}}, parts...)...)
}

// Namespace returns integration token namespace.
func Namespace(s common.Storage) (util.Uint160, error) {
	return nodes.Proxy(s, nodes.Integration)
}

// IDByName returns id of the named integration or zero.
func IDByName(s common.Storage, name string) uint64 {
	return common.GetUint64(s, key(prefixName, []byte(name)))
}

// NameByID returns integration name or empty string.
func NameByID(s common.Storage, id uint64) string {
	return string(s.Get(key(prefixID, common.IDBytes(id))))
}

// IDByController returns id of the integration controlled by the account.
func IDByController(s common.Storage, acc util.Uint160) uint64 {
	return common.GetUint64(s, key(prefixController, acc.BytesBE()))
}

// IsController checks whether the account controls an integration.
func IsController(s common.Storage, acc util.Uint160) bool {
	return IDByController(s, acc) != 0
}

// Mint creates integration node owned and controlled by owner.
func Mint(ic *interop.Context, owner util.Uint160, name string, infos []nodes.AttributeInfoPair) (uint64, error) {
	ns, err := Namespace(ic)
	if err != nil {
		return 0, err
	}
	if IsController(ic, owner) {
		return 0, fmt.Errorf("%w: %s", ErrAlreadyController, common.AddressString(owner))
	}
	if name == "" {
		return 0, ErrInvalidName
	}
	if IDByName(ic, name) != 0 {
		return 0, fmt.Errorf("%w: %s", ErrNameTaken, name)
	}

	id, err := nft.Mint(ic, ns, owner)
	if err != nil {
		return 0, err
	}
	if err := nodes.Create(ic, ns, id, util.Uint160{}, 0); err != nil {
		return 0, err
	}
	common.PutUint64(ic, key(prefixName, []byte(name)), id)
	ic.Put(key(prefixID, common.IDBytes(id)), []byte(name))
	common.PutUint64(ic, key(prefixController, owner.BytesBE()), id)
	ic.Notify("IntegrationNodeMinted", id, owner)

	return id, SetInfos(ic, id, infos)
}

// SetInfos sets integration attributes.
func SetInfos(ic *interop.Context, id uint64, infos []nodes.AttributeInfoPair) error {
	ns, err := Namespace(ic)
	if err != nil {
		return err
	}
	if err := nodes.SetInfos(ic, ns, id, infos); err != nil {
		return err
	}
	for _, p := range infos {
		ic.Notify("IntegrationAttributeSet", id, p.Attribute, p.Info)
	}
	return nil
}

func onTransfer(ic *interop.Context, p nft.TransferParams) error {
	if _, err := nodes.CheckProxyCaller(ic, nodes.Integration); err != nil {
		return err
	}
	if p.From.Equals(p.To) {
		return nil
	}
	if IsController(ic, p.To) {
		return fmt.Errorf("%w: %s", ErrAlreadyController, common.AddressString(p.To))
	}
	ic.Delete(key(prefixController, p.From.BytesBE()))
	common.PutUint64(ic, key(prefixController, p.To.BytesBE()), p.ID)
	return nil
}
