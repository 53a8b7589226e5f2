/*
Package deploy bootstraps a registry: deploys and installs all modules, creates
identity tokens of every node type, whitelists attributes, grants roles,
initializes the signature domain and attaches collaborators.
*/
package deploy

import (
	"context"
	"errors"
	"fmt"

	"github.com/motorid/registry/access"
	"github.com/motorid/registry/aftermarket"
	"github.com/motorid/registry/devadmin"
	"github.com/motorid/registry/integration"
	"github.com/motorid/registry/interop"
	"github.com/motorid/registry/license"
	"github.com/motorid/registry/manufacturer"
	"github.com/motorid/registry/mapper"
	"github.com/motorid/registry/nft"
	"github.com/motorid/registry/nodes"
	"github.com/motorid/registry/registry"
	"github.com/motorid/registry/sigcheck"
	"github.com/motorid/registry/streams"
	"github.com/motorid/registry/synthetic"
	"github.com/motorid/registry/vehicle"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
)

// Prm groups all parameters of the registry bootstrap.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	Registry *registry.Registry

	// Admin holds DEFAULT_ADMIN_ROLE and ADMIN_ROLE of the registry. All
	// bootstrap operations are made on its behalf.
	Admin util.Uint160

	Config Config

	// License validator attached at Config.License if set.
	License license.Validator
	// Stream registry attached at Config.StreamRegistry if set.
	Streams streams.Registry
}

// Modules returns all registry modules in installation order.
func Modules() []interop.Module {
	return []interop.Module{
		access.Module{},
		nodes.Module{},
		nft.Module{},
		mapper.Module{},
		sigcheck.Module{},
		license.Module{},
		streams.Module{},
		manufacturer.Module{},
		integration.Module{},
		vehicle.Module{},
		aftermarket.Module{},
		synthetic.Module{},
		devadmin.Module{},
	}
}

type entity struct {
	tag        string
	setProxy   string
	addAttr    string
	onTransfer string
}

var entities = []entity{
	{nodes.Manufacturer, manufacturer.OpSetIdProxyAddress, manufacturer.OpAddAttribute, manufacturer.OpOnTransfer},
	{nodes.Vehicle, vehicle.OpSetIdProxyAddress, vehicle.OpAddAttribute, vehicle.OpOnTransfer},
	{nodes.AftermarketDevice, aftermarket.OpSetIdProxyAddress, aftermarket.OpAddAttribute, aftermarket.OpOnTransfer},
	{nodes.Integration, integration.OpSetIdProxyAddress, integration.OpAddAttribute, integration.OpOnTransfer},
	{nodes.SyntheticDevice, synthetic.OpSetIdProxyAddress, synthetic.OpAddAttribute, synthetic.OpOnTransfer},
}

// Tags returns node types getting identity tokens at bootstrap.
func Tags() []string {
	res := make([]string, len(entities))
	for i := range entities {
		res[i] = entities[i].tag
	}
	return res
}

// Namespace returns identity token namespace of the node type.
func Namespace(tag string) util.Uint160 {
	return hash.Hash160([]byte("identity token " + tag))
}

// Deploy bootstraps the registry given by Prm.Registry. Module installation
// is idempotent, the remaining stages are skipped if the signature domain is
// already initialized. Configured collaborators are attached in any case.
//
// Summary of stages:
//  1. deployment and installation of all modules
//  2. identity tokens and node types
//  3. attribute whitelists
//  4. roles
//  5. collaborators
//  6. signature domain
func Deploy(ctx context.Context, prm Prm) error {
	if prm.Logger == nil {
		prm.Logger = zap.NewNop()
	}
	b := bootstrap{ctx: ctx, prm: prm}

	prm.Logger.Info("installing registry modules...")
	n, err := b.installModules()
	if err != nil {
		return fmt.Errorf("install modules: %w", err)
	}
	prm.Logger.Info("registry modules successfully installed", zap.Int("new", n))

	_, err = prm.Registry.View(ctx, prm.Admin, sigcheck.OpDomain, nil)
	if err == nil {
		prm.Logger.Info("registry is already bootstrapped")
		return b.attachCollaborators(false)
	} else if !errors.Is(err, sigcheck.ErrNotInitialized) {
		return fmt.Errorf("get signature domain: %w", err)
	}

	prm.Logger.Info("creating identity tokens...")
	for _, e := range entities {
		if err := b.createToken(e); err != nil {
			return fmt.Errorf("create %s token: %w", e.tag, err)
		}
		prm.Logger.Debug("identity token created",
			zap.String("type", e.tag), zap.Stringer("namespace", Namespace(e.tag)))
	}
	prm.Logger.Info("identity tokens successfully created")

	prm.Logger.Info("whitelisting attributes...")
	for _, e := range entities {
		for _, attr := range prm.Config.Attributes[e.tag] {
			if err := b.invoke(e.addAttr, attr); err != nil {
				return fmt.Errorf("whitelist %s attribute %q: %w", e.tag, attr, err)
			}
		}
	}
	prm.Logger.Info("attributes successfully whitelisted")

	prm.Logger.Info("granting roles...")
	if err := b.grantRoles(); err != nil {
		return err
	}
	prm.Logger.Info("roles successfully granted")

	if err := b.attachCollaborators(true); err != nil {
		return err
	}

	prm.Logger.Info("initializing signature domain...")
	err = b.invoke(sigcheck.OpInitialize, sigcheck.InitParams{
		Name:    prm.Config.Domain.Name,
		Version: prm.Config.Domain.Version,
	})
	if err != nil {
		return fmt.Errorf("initialize signature domain: %w", err)
	}
	prm.Logger.Info("signature domain successfully initialized",
		zap.String("name", prm.Config.Domain.Name), zap.String("version", prm.Config.Domain.Version))
	return nil
}

type bootstrap struct {
	ctx context.Context
	prm Prm
}

func (b bootstrap) invoke(sig string, args any) error {
	_, err := b.prm.Registry.InvokeMethod(b.ctx, b.prm.Admin, sig, args)
	return err
}

// installModules installs modules which are not installed yet and returns
// their number.
func (b bootstrap) installModules() (int, error) {
	var n int
	for _, m := range Modules() {
		addr := b.prm.Registry.Deploy(m)
		sels := registry.Selectors(m)

		res, err := b.prm.Registry.View(b.ctx, b.prm.Admin, registry.OpGetModule, sels[0])
		if err != nil {
			return n, err
		}
		if cur, _ := res.(util.Uint160); cur.Equals(addr) {
			b.prm.Logger.Debug("module is already installed", zap.String("name", m.Name()))
			continue
		}
		err = b.invoke(registry.OpAddModule, registry.ModuleParams{Module: addr, Selectors: sels})
		if err != nil {
			return n, fmt.Errorf("module %s: %w", m.Name(), err)
		}
		n++
	}
	return n, nil
}

func (b bootstrap) createToken(e entity) error {
	ns := Namespace(e.tag)
	tc, ok := b.prm.Config.Tokens[e.tag]
	if !ok {
		return errors.New("missing token configuration")
	}
	if err := b.invoke(nodes.OpAddNodeType, e.tag); err != nil {
		return err
	}
	err := b.invoke(nft.OpCreateToken, nft.CreateParams{
		Namespace: ns,
		Token:     nft.Token{Name: tc.Name, Symbol: tc.Symbol, Hook: e.onTransfer},
	})
	if err != nil {
		return err
	}
	if err := b.invoke(nodes.OpSetNodeType, nodes.NodeTypeParams{Namespace: ns, Tag: e.tag}); err != nil {
		return err
	}
	return b.invoke(e.setProxy, ns)
}

func (b bootstrap) grantRoles() error {
	for name, accs := range b.prm.Config.Roles {
		role := access.RoleOf(name)
		for _, s := range accs {
			acc, err := parseAddress(s)
			if err != nil {
				return fmt.Errorf("role %s: %w", name, err)
			}
			if err := b.invoke(access.OpGrantRole, access.RoleParams{Role: role, Account: acc}); err != nil {
				return fmt.Errorf("grant %s to %s: %w", name, s, err)
			}
		}
	}
	return nil
}

// attachCollaborators attaches configured collaborators to the registry and,
// if set, records their addresses in the registry storage.
func (b bootstrap) attachCollaborators(set bool) error {
	if s := b.prm.Config.License; s != "" {
		addr, err := parseAddress(s)
		if err != nil {
			return fmt.Errorf("license: %w", err)
		}
		if b.prm.License != nil {
			b.prm.Registry.Attach(addr, b.prm.License)
		}
		if set {
			if err := b.invoke(license.OpSetLicense, addr); err != nil {
				return fmt.Errorf("set license: %w", err)
			}
			b.prm.Logger.Info("license validator set", zap.Stringer("address", addr))
		}
	}
	if s := b.prm.Config.StreamRegistry; s != "" {
		addr, err := parseAddress(s)
		if err != nil {
			return fmt.Errorf("stream registry: %w", err)
		}
		if b.prm.Streams != nil {
			b.prm.Registry.Attach(addr, b.prm.Streams)
		}
		if set {
			if err := b.invoke(streams.OpSetStreamRegistry, addr); err != nil {
				return fmt.Errorf("set stream registry: %w", err)
			}
			b.prm.Logger.Info("stream registry set", zap.Stringer("address", addr))
		}
	}
	return nil
}
