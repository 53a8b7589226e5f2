package nodes

import (
	"fmt"

	"github.com/motorid/registry/common"
	"github.com/motorid/registry/interop"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Well-known identity token proxies and node types.
const (
	Manufacturer      = "Manufacturer"
	Vehicle           = "Vehicle"
	AftermarketDevice = "AftermarketDevice"
	Integration       = "Integration"
	SyntheticDevice   = "SyntheticDevice"
)

// ErrProxyNotSet is returned when an entity module is used before its
// identity token namespace is configured.
var ErrProxyNotSet = common.Validation("proxy not set")

// SetProxy sets namespace of the named identity token.
func SetProxy(ic *interop.Context, name string, ns util.Uint160) error {
	if ns.Equals(util.Uint160{}) {
		return common.ErrZeroAddress
	}
	ic.Put(common.Key(common.PrefixProxy, []byte(name)), ns.BytesBE())
	ic.Notify(name+"IdProxySet", ns)
	return nil
}

// Proxy returns namespace of the named identity token.
func Proxy(s common.Storage, name string) (util.Uint160, error) {
	data := s.Get(common.Key(common.PrefixProxy, []byte(name)))
	if data == nil {
		return util.Uint160{}, fmt.Errorf("%w: %s", ErrProxyNotSet, name)
	}
	return util.Uint160DecodeBytesBE(data)
}

// ErrNotProxy is returned when a transfer hook is called by anyone but the
// identity token it serves.
var ErrNotProxy = common.Authorization("caller is not the identity token")

// CheckProxyCaller returns namespace of the named identity token if it is
// the caller.
func CheckProxyCaller(ic *interop.Context, name string) (util.Uint160, error) {
	ns, err := Proxy(ic, name)
	if err != nil {
		return util.Uint160{}, err
	}
	if !ic.Caller.Equals(ns) {
		return util.Uint160{}, ErrNotProxy
	}
	return ns, nil
}
