package registry

import (
	"fmt"
	"sort"

	"github.com/motorid/registry/access"
	"github.com/motorid/registry/common"
	"github.com/motorid/registry/interop"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
)

// Operation signatures of the module management.
const (
	OpAddModule    = "addModule(address,bytes4[])"
	OpUpdateModule = "updateModule(address,address,bytes4[],bytes4[])"
	OpRemoveModule = "removeModule(address,bytes4[])"
	OpGetModule    = "getModule(bytes4)"
	OpGetSelectors = "getSelectors(address)"
	OpModules      = "modules()"
)

// ModuleParams are arguments of OpAddModule and OpRemoveModule.
type ModuleParams struct {
	Module    util.Uint160
	Selectors []interop.Selector
}

// UpdateParams are arguments of OpUpdateModule.
type UpdateParams struct {
	OldModule    util.Uint160
	NewModule    util.Uint160
	OldSelectors []interop.Selector
	NewSelectors []interop.Selector
}

// ModuleInfo describes deployed module.
type ModuleInfo struct {
	Address   util.Uint160
	Name      string
	Version   int
	Selectors []interop.Selector
}

// ModuleAddress returns address of the module code: hash160 of its name and
// version.
func ModuleAddress(m interop.Module) util.Uint160 {
	return hash.Hash160(append([]byte(m.Name()), common.IDBytes(uint64(m.Version()))...))
}

// Selectors returns selectors of all module methods.
func Selectors(m interop.Module) []interop.Selector {
	return selectorsOf(m)
}

func selectorsOf(m interop.Module) []interop.Selector {
	methods := m.Methods()
	res := make([]interop.Selector, len(methods))
	for i := range methods {
		res[i] = methods[i].Selector()
	}
	return res
}

func operationKey(s interop.Selector) []byte {
	return common.Key(common.PrefixOperation, s[:])
}

func moduleOperationKey(addr util.Uint160, s interop.Selector) []byte {
	return common.Key(common.PrefixModuleOperation, addr.BytesBE(), s[:])
}

func getModule(s common.Storage, sel interop.Selector) (util.Uint160, bool) {
	data := s.Get(operationKey(sel))
	if data == nil {
		return util.Uint160{}, false
	}
	addr, err := util.Uint160DecodeBytesBE(data)
	return addr, err == nil
}

func getSelectors(ic *interop.Context, addr util.Uint160) []interop.Selector {
	var res []interop.Selector
	ic.Find(common.Key(common.PrefixModuleOperation, addr.BytesBE()), func(k, _ []byte) bool {
		var s interop.Selector
		copy(s[:], k)
		res = append(res, s)
		return true
	})
	return res
}

func install(ic *interop.Context, r *Registry, addr util.Uint160, sels []interop.Selector) error {
	d, ok := r.modules[addr]
	if !ok {
		return fmt.Errorf("%w: %s", ErrModuleNotDeployed, common.AddressString(addr))
	}
	for _, s := range sels {
		if _, ok := d.methods[s]; !ok {
			return fmt.Errorf("%w: %s", ErrNotImplemented, s)
		}
		if _, ok := getModule(ic, s); ok {
			return fmt.Errorf("%w: %s", ErrOperationExists, s)
		}
		ic.Put(operationKey(s), addr.BytesBE())
		ic.Put(moduleOperationKey(addr, s), []byte{1})
	}
	return nil
}

func uninstall(ic *interop.Context, addr util.Uint160, sels []interop.Selector) error {
	for _, s := range sels {
		cur, ok := getModule(ic, s)
		if !ok {
			return fmt.Errorf("%w: %s", ErrOperationNotExist, s)
		}
		if !cur.Equals(addr) {
			return fmt.Errorf("%w: %s", ErrWrongModule, s)
		}
		ic.Delete(operationKey(s))
		ic.Delete(moduleOperationKey(addr, s))
	}
	return nil
}

// coreModule is the module management installed in every registry.
type coreModule struct {
	r *Registry
}

func (coreModule) Name() string { return "Registry" }

func (coreModule) Version() int { return common.Version }

func (c coreModule) Methods() []interop.Method {
	return []interop.Method{
		interop.NewMethod(OpAddModule, c.addModule),
		interop.NewMethod(OpUpdateModule, c.updateModule),
		interop.NewMethod(OpRemoveModule, c.removeModule),
		interop.NewSafeMethod(OpGetModule, func(ic *interop.Context, s interop.Selector) (util.Uint160, error) {
			addr, _ := getModule(ic, s)
			return addr, nil
		}),
		interop.NewSafeMethod(OpGetSelectors, func(ic *interop.Context, addr util.Uint160) ([]interop.Selector, error) {
			return getSelectors(ic, addr), nil
		}),
		interop.NewSafeMethod(OpModules, c.modules),
	}
}

func (c coreModule) addModule(ic *interop.Context, p ModuleParams) (interop.Null, error) {
	if err := access.Check(ic, access.DefaultAdminRole); err != nil {
		return interop.Null{}, err
	}
	if err := install(ic, c.r, p.Module, p.Selectors); err != nil {
		return interop.Null{}, err
	}
	ic.Notify("ModuleAdded", p.Module, p.Selectors)
	ic.Log.Info("module added", zap.Stringer("address", p.Module), zap.Int("operations", len(p.Selectors)))
	return interop.Null{}, nil
}

func (c coreModule) updateModule(ic *interop.Context, p UpdateParams) (interop.Null, error) {
	if err := access.Check(ic, access.DefaultAdminRole); err != nil {
		return interop.Null{}, err
	}
	oldMod, ok := c.r.modules[p.OldModule]
	newMod, ok2 := c.r.modules[p.NewModule]
	if ok && ok2 && oldMod.module.Name() == newMod.module.Name() {
		if err := common.CheckVersion(oldMod.module.Version(), newMod.module.Version()); err != nil {
			return interop.Null{}, err
		}
	}
	if err := uninstall(ic, p.OldModule, p.OldSelectors); err != nil {
		return interop.Null{}, err
	}
	if err := install(ic, c.r, p.NewModule, p.NewSelectors); err != nil {
		return interop.Null{}, err
	}
	ic.Notify("ModuleUpdated", p.OldModule, p.NewModule, p.OldSelectors, p.NewSelectors)
	ic.Log.Info("module updated", zap.Stringer("old", p.OldModule), zap.Stringer("new", p.NewModule))
	return interop.Null{}, nil
}

func (c coreModule) removeModule(ic *interop.Context, p ModuleParams) (interop.Null, error) {
	if err := access.Check(ic, access.DefaultAdminRole); err != nil {
		return interop.Null{}, err
	}
	if err := uninstall(ic, p.Module, p.Selectors); err != nil {
		return interop.Null{}, err
	}
	ic.Notify("ModuleRemoved", p.Module, p.Selectors)
	ic.Log.Info("module removed", zap.Stringer("address", p.Module), zap.Int("operations", len(p.Selectors)))
	return interop.Null{}, nil
}

func (c coreModule) modules(ic *interop.Context, _ interop.Null) ([]ModuleInfo, error) {
	res := make([]ModuleInfo, 0, len(c.r.modules))
	for addr, d := range c.r.modules {
		res = append(res, ModuleInfo{
			Address:   addr,
			Name:      d.module.Name(),
			Version:   d.module.Version(),
			Selectors: getSelectors(ic, addr),
		})
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Name != res[j].Name {
			return res[i].Name < res[j].Name
		}
		return res[i].Version < res[j].Version
	})
	return res, nil
}
