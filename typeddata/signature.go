package typeddata

import (
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	lru "github.com/hashicorp/golang-lru"
	"github.com/motorid/registry/common"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// SignatureLen is the length of a recoverable signature: R || S || V.
const SignatureLen = 65

// ErrMalformedSignature is returned for signatures of the wrong length or
// with an unsupported recovery id.
var ErrMalformedSignature = errors.New("malformed signature")

const typeHashCacheSize = 128

var typeHashes *lru.Cache

func init() {
	var err error
	if typeHashes, err = lru.New(typeHashCacheSize); err != nil {
		panic(err)
	}
}

// Address returns account address of the secp256k1 public key: the last 20
// bytes of keccak256 of the uncompressed key without its 0x04 prefix.
func Address(pub *secp256k1.PublicKey) util.Uint160 {
	h := common.Keccak256(pub.SerializeUncompressed()[1:])
	a, _ := util.Uint160DecodeBytesBE(h[12:])
	return a
}

// Recover returns address of the key that produced signature over digest.
// V may be either 0/1 or 27/28.
func Recover(digest, sig []byte) (util.Uint160, error) {
	if len(sig) != SignatureLen || len(digest) != 32 {
		return util.Uint160{}, ErrMalformedSignature
	}
	v := sig[64]
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return util.Uint160{}, ErrMalformedSignature
	}

	compact := make([]byte, SignatureLen)
	compact[0] = 27 + v
	copy(compact[1:], sig[:64])

	pub, _, err := ecdsa.RecoverCompact(compact, digest)
	if err != nil {
		return util.Uint160{}, err
	}
	return Address(pub), nil
}

// Sign produces recoverable signature over digest with V in {27, 28}.
func Sign(key *secp256k1.PrivateKey, digest []byte) []byte {
	compact := ecdsa.SignCompact(key, digest, false)
	sig := make([]byte, SignatureLen)
	copy(sig, compact[1:])
	sig[64] = compact[0]
	return sig
}

// SignTyped hashes the message and signs the digest.
func SignTyped(key *secp256k1.PrivateKey, d Domain, types Types, primaryType string, msg Message) ([]byte, error) {
	digest, err := Hash(d, types, primaryType, msg)
	if err != nil {
		return nil, err
	}
	return Sign(key, digest), nil
}
