/*
Package sigcheck verifies off-line consent given as typed data signatures.

The signature domain name and version are stored once by the initialize
operation. Chain id and verifying contract are properties of the registry
deployment and are taken from the invocation context, so a signature made
for one deployment never verifies on another.
*/
package sigcheck

import (
	"github.com/motorid/registry/common"
	"github.com/motorid/registry/interop"
	"github.com/motorid/registry/typeddata"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Primary types of consent messages.
const (
	ClaimAftermarketDeviceSign  = "ClaimAftermarketDeviceSign"
	PairAftermarketDeviceSign   = "PairAftermarketDeviceSign"
	UnPairAftermarketDeviceSign = "UnPairAftermarketDeviceSign"
	MintVehicleSign             = "MintVehicleSign"
	BurnVehicleSign             = "BurnVehicleSign"
	MintSyntheticDeviceSign     = "MintSyntheticDeviceSign"
	BurnSyntheticDeviceSign     = "BurnSyntheticDeviceSign"
)

// Types is the schema of all consent messages.
var Types = typeddata.Types{
	ClaimAftermarketDeviceSign: {
		{Name: "aftermarketDeviceNode", Type: "uint256"},
		{Name: "owner", Type: "address"},
	},
	PairAftermarketDeviceSign: {
		{Name: "aftermarketDeviceNode", Type: "uint256"},
		{Name: "vehicleNode", Type: "uint256"},
	},
	UnPairAftermarketDeviceSign: {
		{Name: "aftermarketDeviceNode", Type: "uint256"},
		{Name: "vehicleNode", Type: "uint256"},
	},
	MintVehicleSign: {
		{Name: "manufacturerNode", Type: "uint256"},
		{Name: "owner", Type: "address"},
		{Name: "attributes", Type: "string[]"},
		{Name: "infos", Type: "string[]"},
	},
	BurnVehicleSign: {
		{Name: "vehicleNode", Type: "uint256"},
	},
	MintSyntheticDeviceSign: {
		{Name: "integrationNode", Type: "uint256"},
		{Name: "vehicleNode", Type: "uint256"},
	},
	BurnSyntheticDeviceSign: {
		{Name: "vehicleNode", Type: "uint256"},
		{Name: "syntheticDeviceNode", Type: "uint256"},
	},
}

var (
	// ErrAlreadyInitialized is returned on repeated initialization.
	ErrAlreadyInitialized = common.Validation("already initialized")
	// ErrNotInitialized is returned when the domain is not set.
	ErrNotInitialized = common.Validation("not initialized")
)

type domainRecord struct {
	name    string
	version string
}

func (r *domainRecord) EncodeBinary(w *io.BinWriter) {
	w.WriteString(r.name)
	w.WriteString(r.version)
}

func (r *domainRecord) DecodeBinary(br *io.BinReader) {
	r.name = br.ReadString()
	r.version = br.ReadString()
}

var domainKey = []byte{common.PrefixDomain}

// Initialize stores domain name and version.
func Initialize(ic *interop.Context, name, version string) error {
	if ic.Get(domainKey) != nil {
		return ErrAlreadyInitialized
	}
	if err := common.SetSerialized(ic, domainKey, &domainRecord{name: name, version: version}); err != nil {
		return err
	}
	ic.Notify("Initialized", name, version)
	return nil
}

// Domain returns signature domain of the registry.
func Domain(ic *interop.Context) (typeddata.Domain, error) {
	var r domainRecord
	ok, err := common.GetSerialized(ic, domainKey, &r)
	if err != nil {
		return typeddata.Domain{}, err
	}
	if !ok {
		return typeddata.Domain{}, ErrNotInitialized
	}
	return typeddata.Domain{
		Name:              r.name,
		Version:           r.version,
		ChainID:           ic.ChainID,
		VerifyingContract: ic.Registry,
	}, nil
}

// Verify checks that signer signed the message. Signers attached to the
// registry as a typeddata.Verifier validate the signature themselves,
// for others the signer is recovered from a secp256k1 signature. Any
// failure yields false.
func Verify(ic *interop.Context, primaryType string, msg typeddata.Message, sig []byte, signer util.Uint160) bool {
	d, err := Domain(ic)
	if err != nil {
		return false
	}
	digest, err := typeddata.Hash(d, Types, primaryType, msg)
	if err != nil {
		return false
	}
	if c, ok := ic.Contract(signer); ok {
		if v, ok := c.(typeddata.Verifier); ok {
			return v.IsValidSignature(digest, sig)
		}
	}
	recovered, err := typeddata.Recover(digest, sig)
	return err == nil && recovered.Equals(signer)
}

// Require is Verify returning common.ErrInvalidSignature on failure.
func Require(ic *interop.Context, primaryType string, msg typeddata.Message, sig []byte, signer util.Uint160) error {
	if !Verify(ic, primaryType, msg, sig, signer) {
		return common.ErrInvalidSignature
	}
	return nil
}
