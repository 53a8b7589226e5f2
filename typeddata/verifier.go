package typeddata

import (
	"errors"
	"sort"

	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Verifier validates signatures on behalf of an account that holds no
// secp256k1 key, such as a smart wallet.
type Verifier interface {
	// IsValidSignature checks signature over the typed data digest.
	IsValidSignature(digest, signature []byte) bool
}

// NeoSignatureLen is the length of a single secp256r1 signature.
const NeoSignatureLen = 64

// ErrInvalidAccount is returned when NeoAccount parameters are inconsistent.
var ErrInvalidAccount = errors.New("invalid account")

// NeoAccount is a Neo single or m-out-of-n multisignature account. Its
// registry address is the script hash of its verification script.
type NeoAccount struct {
	keys keys.PublicKeys
	m    int
}

// NewNeoAccount creates m-out-of-n account from the given keys.
func NewNeoAccount(m int, pubs ...*keys.PublicKey) (*NeoAccount, error) {
	if m < 1 || m > len(pubs) {
		return nil, ErrInvalidAccount
	}
	sorted := make(keys.PublicKeys, len(pubs))
	copy(sorted, pubs)
	sort.Sort(sorted)
	return &NeoAccount{keys: sorted, m: m}, nil
}

// Keys returns account keys in signing order.
func (a *NeoAccount) Keys() keys.PublicKeys {
	return a.keys
}

// Script returns account verification script.
func (a *NeoAccount) Script() ([]byte, error) {
	if len(a.keys) == 1 {
		return a.keys[0].GetVerificationScript(), nil
	}
	return smartcontract.CreateMultiSigRedeemScript(a.m, a.keys)
}

// Address returns script hash of the account.
func (a *NeoAccount) Address() (util.Uint160, error) {
	script, err := a.Script()
	if err != nil {
		return util.Uint160{}, err
	}
	return hash.Hash160(script), nil
}

// IsValidSignature implements Verifier. Signature is a concatenation of m
// signatures made by distinct account keys in the order of Keys.
func (a *NeoAccount) IsValidSignature(digest, signature []byte) bool {
	if len(signature) != a.m*NeoSignatureLen {
		return false
	}
	k := 0
	for i := 0; i < a.m; i++ {
		sig := signature[i*NeoSignatureLen : (i+1)*NeoSignatureLen]
		for k < len(a.keys) && !a.keys[k].Verify(sig, digest) {
			k++
		}
		if k == len(a.keys) {
			return false
		}
		k++
	}
	return true
}

// SignNeo produces NeoAccount signature with the given private keys which
// must be ordered as account Keys.
func SignNeo(digest []byte, privs ...*keys.PrivateKey) []byte {
	h, _ := util.Uint256DecodeBytesBE(digest)
	sig := make([]byte, 0, len(privs)*NeoSignatureLen)
	for _, p := range privs {
		sig = append(sig, p.SignHash(h)...)
	}
	return sig
}
