/*
Package license connects the registry to the license validator, an external
service deciding whether an account may mint aftermarket devices and how
much minting costs.
*/
package license

import (
	"context"
	"fmt"
	"sync"

	"github.com/motorid/registry/common"
	"github.com/motorid/registry/interop"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Validator is the license validator.
type Validator interface {
	// HasValidLicense checks whether the account holds a valid license.
	HasValidLicense(ctx context.Context, acc util.Uint160) (bool, error)
	// MintCost returns the cost of minting a single device.
	MintCost(ctx context.Context) (uint64, error)
}

var (
	// ErrNotSet is returned when the validator address is not set.
	ErrNotSet = common.Validation("license not set")
	// ErrNotAttached is returned when there is no validator at the address.
	ErrNotAttached = common.Validation("license validator is not attached")
	// ErrInvalidLicense is returned for accounts without a valid license.
	ErrInvalidLicense = common.Authorization("invalid license")
)

const collaboratorName = "License"

func addressKey() []byte {
	return common.Key(common.PrefixCollaborator, []byte(collaboratorName))
}

// SetAddress sets validator address.
func SetAddress(ic *interop.Context, addr util.Uint160) error {
	if addr.Equals(util.Uint160{}) {
		return common.ErrZeroAddress
	}
	ic.Put(addressKey(), addr.BytesBE())
	ic.Notify("LicenseSet", addr)
	return nil
}

// Address returns validator address.
func Address(s common.Storage) (util.Uint160, bool) {
	data := s.Get(addressKey())
	if data == nil {
		return util.Uint160{}, false
	}
	addr, err := util.Uint160DecodeBytesBE(data)
	return addr, err == nil
}

// Get returns validator attached at the configured address.
func Get(ic *interop.Context) (Validator, error) {
	addr, ok := Address(ic)
	if !ok {
		return nil, ErrNotSet
	}
	c, ok := ic.Contract(addr)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAttached, common.AddressString(addr))
	}
	v, ok := c.(Validator)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAttached, common.AddressString(addr))
	}
	return v, nil
}

// Require checks that the account holds a valid license and returns the
// cost of minting n devices.
func Require(ic *interop.Context, acc util.Uint160, n int) (uint64, error) {
	v, err := Get(ic)
	if err != nil {
		return 0, err
	}
	ok, err := v.HasValidLicense(ic.Ctx, acc)
	if err != nil {
		return 0, fmt.Errorf("check license: %w", err)
	}
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrInvalidLicense, common.AddressString(acc))
	}
	cost, err := v.MintCost(ic.Ctx)
	if err != nil {
		return 0, fmt.Errorf("get mint cost: %w", err)
	}
	return cost * uint64(n), nil
}

// Allowlist is a Validator licensing a fixed set of accounts.
type Allowlist struct {
	mu       sync.RWMutex
	accounts map[util.Uint160]struct{}
	cost     uint64
}

// NewAllowlist creates validator licensing the accounts at the given cost.
func NewAllowlist(cost uint64, accounts ...util.Uint160) *Allowlist {
	a := &Allowlist{accounts: make(map[util.Uint160]struct{}), cost: cost}
	for i := range accounts {
		a.accounts[accounts[i]] = struct{}{}
	}
	return a
}

// Add licenses the account.
func (a *Allowlist) Add(acc util.Uint160) {
	a.mu.Lock()
	a.accounts[acc] = struct{}{}
	a.mu.Unlock()
}

// HasValidLicense implements Validator.
func (a *Allowlist) HasValidLicense(_ context.Context, acc util.Uint160) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.accounts[acc]
	return ok, nil
}

// MintCost implements Validator.
func (a *Allowlist) MintCost(context.Context) (uint64, error) {
	return a.cost, nil
}
