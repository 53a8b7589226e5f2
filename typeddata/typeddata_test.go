package typeddata

import (
	"encoding/hex"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/motorid/registry/common"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

func mustAddress(t *testing.T, s string) util.Uint160 {
	a, err := util.Uint160DecodeStringBE(s)
	require.NoError(t, err)
	return a
}

func mustHex(t *testing.T, s string) []byte {
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

// Example from the EIP-712 specification.
func mailExample(t *testing.T) (Domain, Types, Message) {
	d := Domain{
		Name:              "Ether Mail",
		Version:           "1",
		ChainID:           1,
		VerifyingContract: mustAddress(t, "cccccccccccccccccccccccccccccccccccccccc"),
	}
	types := Types{
		"Person": {{Name: "name", Type: "string"}, {Name: "wallet", Type: "address"}},
		"Mail": {
			{Name: "from", Type: "Person"},
			{Name: "to", Type: "Person"},
			{Name: "contents", Type: "string"},
		},
	}
	msg := Message{
		"from":     Message{"name": "Cow", "wallet": mustAddress(t, "cd2a3d9f938e13cd947ec05abc7fe734df8dd826")},
		"to":       Message{"name": "Bob", "wallet": mustAddress(t, "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")},
		"contents": "Hello, Bob!",
	}
	return d, types, msg
}

func TestHash(t *testing.T) {
	d, types, msg := mailExample(t)

	enc, err := EncodeType(types, "Mail")
	require.NoError(t, err)
	require.Equal(t, "Mail(Person from,Person to,string contents)Person(string name,address wallet)", enc)

	th, err := TypeHash(types, "Mail")
	require.NoError(t, err)
	require.Equal(t, "a0cedeb2dc280ba39b857546d74f5549c3a1d7bdc2dd96bf881f76108e23dac2", hex.EncodeToString(th))

	sep, err := DomainSeparator(d)
	require.NoError(t, err)
	require.Equal(t, "f2cee375fa42b42143804025fc449deafd50cc031ca257e0b194a650a912090f", hex.EncodeToString(sep))

	sh, err := HashStruct(types, "Mail", msg)
	require.NoError(t, err)
	require.Equal(t, "c52c0ee5d84264471806290a3f2c4cecfc5490626bf912d01f240d7a274b371e", hex.EncodeToString(sh))

	digest, err := Hash(d, types, "Mail", msg)
	require.NoError(t, err)
	require.Equal(t, "be609aee343fb3c4b28e1df9e632fca64fcfaede20f02e86244efddf30957bd2", hex.EncodeToString(digest))

	t.Run("invalid input", func(t *testing.T) {
		_, err := Hash(d, types, "Letter", msg)
		require.ErrorIs(t, err, ErrUnknownType)

		_, err = Hash(d, types, "Mail", Message{"from": msg["from"], "to": msg["to"]})
		require.ErrorIs(t, err, ErrInvalidValue)

		_, err = Hash(d, types, "Mail", Message{"from": msg["from"], "to": msg["to"], "contents": 42})
		require.ErrorIs(t, err, ErrInvalidValue)
	})
}

func TestEncodeValues(t *testing.T) {
	types := Types{
		"Mint": {
			{Name: "node", Type: "uint256"},
			{Name: "owner", Type: "address"},
			{Name: "attributes", Type: "string[]"},
			{Name: "flag", Type: "bool"},
			{Name: "id", Type: "bytes32"},
			{Name: "pair", Type: "uint8[2]"},
		},
	}
	msg := Message{
		"node":       uint64(1),
		"owner":      util.Uint160{1},
		"attributes": []string{"Make", "Model"},
		"flag":       true,
		"id":         util.Uint256{2},
		"pair":       []uint64{1, 2},
	}
	h1, err := HashStruct(types, "Mint", msg)
	require.NoError(t, err)

	msg["pair"] = []uint64{1}
	_, err = HashStruct(types, "Mint", msg)
	require.ErrorIs(t, err, ErrInvalidValue)

	msg["pair"] = []int{1, 2}
	h2, err := HashStruct(types, "Mint", msg)
	require.NoError(t, err)
	require.Equal(t, h1, h2)

	msg["attributes"] = []string{"Model", "Make"}
	h3, err := HashStruct(types, "Mint", msg)
	require.NoError(t, err)
	require.NotEqual(t, h1, h3)
}

func TestRecover(t *testing.T) {
	d, types, msg := mailExample(t)
	digest, err := Hash(d, types, "Mail", msg)
	require.NoError(t, err)

	cow := secp256k1.PrivKeyFromBytes(common.Keccak256([]byte("cow")))
	cowAddr := mustAddress(t, "cd2a3d9f938e13cd947ec05abc7fe734df8dd826")
	require.Equal(t, cowAddr, Address(cow.PubKey()))

	sig := mustHex(t, "4355c47d63924e8a72e509b65029052eb6c299d53a04e167c5775fd466751c9d"+
		"07299936d304c153f6443dfa05f40ff007d72911b6f72307f996231605b91562"+"1c")
	signer, err := Recover(digest, sig)
	require.NoError(t, err)
	require.Equal(t, cowAddr, signer)

	t.Run("zero based v", func(t *testing.T) {
		s := append([]byte{}, sig...)
		s[64] = 1
		signer, err := Recover(digest, s)
		require.NoError(t, err)
		require.Equal(t, cowAddr, signer)
	})
	t.Run("sign", func(t *testing.T) {
		s, err := SignTyped(cow, d, types, "Mail", msg)
		require.NoError(t, err)
		require.Len(t, s, SignatureLen)
		signer, err := Recover(digest, s)
		require.NoError(t, err)
		require.Equal(t, cowAddr, signer)
	})
	t.Run("malformed", func(t *testing.T) {
		_, err := Recover(digest, sig[:64])
		require.ErrorIs(t, err, ErrMalformedSignature)

		s := append([]byte{}, sig...)
		s[64] = 29
		_, err = Recover(digest, s)
		require.ErrorIs(t, err, ErrMalformedSignature)
	})
	t.Run("domain replay", func(t *testing.T) {
		for _, other := range []Domain{
			{Name: d.Name, Version: d.Version, ChainID: 31337, VerifyingContract: d.VerifyingContract},
			{Name: d.Name, Version: d.Version, ChainID: d.ChainID, VerifyingContract: util.Uint160{1}},
		} {
			od, err := Hash(other, types, "Mail", msg)
			require.NoError(t, err)
			signer, err := Recover(od, sig)
			if err == nil {
				require.NotEqual(t, cowAddr, signer)
			}
		}
	})
}

func TestNeoAccount(t *testing.T) {
	privs := make([]*keys.PrivateKey, 3)
	pubs := make(keys.PublicKeys, 3)
	for i := range privs {
		var err error
		privs[i], err = keys.NewPrivateKey()
		require.NoError(t, err)
		pubs[i] = privs[i].PublicKey()
	}
	digest := common.Keccak256([]byte("message"))

	t.Run("single", func(t *testing.T) {
		acc, err := NewNeoAccount(1, pubs[0])
		require.NoError(t, err)
		addr, err := acc.Address()
		require.NoError(t, err)
		require.Equal(t, pubs[0].GetScriptHash(), addr)

		require.True(t, acc.IsValidSignature(digest, SignNeo(digest, privs[0])))
		require.False(t, acc.IsValidSignature(digest, SignNeo(digest, privs[1])))
		require.False(t, acc.IsValidSignature(common.Keccak256([]byte("other")), SignNeo(digest, privs[0])))
	})
	t.Run("multisig", func(t *testing.T) {
		_, err := NewNeoAccount(4, pubs...)
		require.ErrorIs(t, err, ErrInvalidAccount)

		acc, err := NewNeoAccount(2, pubs...)
		require.NoError(t, err)

		byKey := make(map[string]*keys.PrivateKey)
		for _, p := range privs {
			byKey[p.PublicKey().StringCompressed()] = p
		}
		ordered := make([]*keys.PrivateKey, 0, 3)
		for _, pub := range acc.Keys() {
			ordered = append(ordered, byKey[pub.StringCompressed()])
		}

		require.True(t, acc.IsValidSignature(digest, SignNeo(digest, ordered[0], ordered[2])))
		require.False(t, acc.IsValidSignature(digest, SignNeo(digest, ordered[2], ordered[0])))
		require.False(t, acc.IsValidSignature(digest, SignNeo(digest, ordered[0])))
		require.False(t, acc.IsValidSignature(digest, SignNeo(digest, ordered[1], ordered[1])))
	})
}
