package common

import (
	"github.com/nspcc-dev/neo-go/pkg/util"
	"golang.org/x/crypto/sha3"
)

// Keccak256 returns legacy Keccak-256 digest of concatenated data.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for i := range data {
		h.Write(data[i])
	}
	return h.Sum(nil)
}

// Keccak256Hash is Keccak256 returning util.Uint256.
func Keccak256Hash(data ...[]byte) util.Uint256 {
	var u util.Uint256
	copy(u[:], Keccak256(data...))
	return u
}
