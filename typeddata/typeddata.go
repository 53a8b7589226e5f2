/*
Package typeddata implements domain-scoped structured data hashing and
signer recovery compatible with EIP-712.

Everything here is a pure function of its inputs: a digest is computed from
the domain, the type schema and the message, then the signer is recovered
from a secp256k1 recoverable signature or checked by a delegated Verifier.
Storage of the domain and the choice of verifier live in sigcheck.
*/
package typeddata

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/motorid/registry/common"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Domain separates signatures of different deployments.
type Domain struct {
	Name              string
	Version           string
	ChainID           uint64
	VerifyingContract util.Uint160
}

// Field is a named member of a struct type.
type Field struct {
	Name string
	Type string
}

// Types maps struct type names to their fields.
type Types map[string][]Field

// Message holds struct field values by field name.
type Message map[string]any

// DomainType is the name of the domain struct type.
const DomainType = "EIP712Domain"

var domainFields = []Field{
	{Name: "name", Type: "string"},
	{Name: "version", Type: "string"},
	{Name: "chainId", Type: "uint256"},
	{Name: "verifyingContract", Type: "address"},
}

// ErrUnknownType is returned when a struct type is not defined in Types.
var ErrUnknownType = errors.New("unknown type")

// Hash returns the digest to be signed for the message of primaryType.
func Hash(d Domain, types Types, primaryType string, msg Message) ([]byte, error) {
	sep, err := DomainSeparator(d)
	if err != nil {
		return nil, err
	}
	h, err := HashStruct(types, primaryType, msg)
	if err != nil {
		return nil, err
	}
	return common.Keccak256([]byte{0x19, 0x01}, sep, h), nil
}

// DomainSeparator returns struct hash of the domain.
func DomainSeparator(d Domain) ([]byte, error) {
	return HashStruct(Types{DomainType: domainFields}, DomainType, Message{
		"name":              d.Name,
		"version":           d.Version,
		"chainId":           d.ChainID,
		"verifyingContract": d.VerifyingContract,
	})
}

// HashStruct returns keccak256(typeHash || encodeData(msg)).
func HashStruct(types Types, typ string, msg Message) ([]byte, error) {
	data, err := encodeData(types, typ, msg)
	if err != nil {
		return nil, err
	}
	th, err := TypeHash(types, typ)
	if err != nil {
		return nil, err
	}
	return common.Keccak256(th, data), nil
}

// TypeHash returns keccak256 of the encoded type.
func TypeHash(types Types, typ string) ([]byte, error) {
	enc, err := EncodeType(types, typ)
	if err != nil {
		return nil, err
	}
	if h, ok := typeHashes.Get(enc); ok {
		return h.([]byte), nil
	}
	h := common.Keccak256([]byte(enc))
	typeHashes.Add(enc, h)
	return h, nil
}

// EncodeType returns canonical type string: the primary type followed by all
// referenced struct types sorted by name, e.g.
// "Mail(Person from,Person to)Person(string name,address wallet)".
func EncodeType(types Types, typ string) (string, error) {
	deps := make(map[string]struct{})
	if err := collectDeps(types, typ, deps); err != nil {
		return "", err
	}
	delete(deps, typ)

	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range append([]string{typ}, names...) {
		sb.WriteString(name)
		sb.WriteByte('(')
		for i, f := range types[name] {
			if i != 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(f.Type)
			sb.WriteByte(' ')
			sb.WriteString(f.Name)
		}
		sb.WriteByte(')')
	}
	return sb.String(), nil
}

func collectDeps(types Types, typ string, deps map[string]struct{}) error {
	if _, ok := deps[typ]; ok {
		return nil
	}
	fields, ok := types[typ]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownType, typ)
	}
	deps[typ] = struct{}{}
	for _, f := range fields {
		base := baseType(f.Type)
		if _, ok := types[base]; ok {
			if err := collectDeps(types, base, deps); err != nil {
				return err
			}
		}
	}
	return nil
}

// baseType strips array suffixes: "string[][2]" -> "string".
func baseType(typ string) string {
	if i := strings.IndexByte(typ, '['); i >= 0 {
		return typ[:i]
	}
	return typ
}
