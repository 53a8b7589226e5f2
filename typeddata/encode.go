package typeddata

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
	"github.com/motorid/registry/common"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// ErrInvalidValue is returned when a message value does not match its type.
var ErrInvalidValue = errors.New("invalid value")

func encodeData(types Types, typ string, msg Message) ([]byte, error) {
	fields := types[typ]
	buf := make([]byte, 0, 32*len(fields))
	for _, f := range fields {
		v, ok := msg[f.Name]
		if !ok {
			return nil, fmt.Errorf("%w: missing %s.%s", ErrInvalidValue, typ, f.Name)
		}
		enc, err := encodeValue(types, f.Type, v)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", typ, f.Name, err)
		}
		buf = append(buf, enc...)
	}
	return buf, nil
}

func encodeValue(types Types, typ string, v any) ([]byte, error) {
	if strings.HasSuffix(typ, "]") {
		return encodeArray(types, typ, v)
	}
	if _, ok := types[typ]; ok {
		msg, ok := v.(Message)
		if !ok {
			m, isMap := v.(map[string]any)
			if !isMap {
				return nil, mismatch(typ, v)
			}
			msg = m
		}
		return HashStruct(types, typ, msg)
	}

	switch {
	case typ == "string":
		s, ok := v.(string)
		if !ok {
			return nil, mismatch(typ, v)
		}
		return common.Keccak256([]byte(s)), nil
	case typ == "bytes":
		b, ok := v.([]byte)
		if !ok {
			return nil, mismatch(typ, v)
		}
		return common.Keccak256(b), nil
	case typ == "bool":
		b, ok := v.(bool)
		if !ok {
			return nil, mismatch(typ, v)
		}
		var x uint256.Int
		if b {
			x.SetOne()
		}
		return word(&x), nil
	case typ == "address":
		a, ok := v.(util.Uint160)
		if !ok {
			return nil, mismatch(typ, v)
		}
		res := make([]byte, 32)
		copy(res[12:], a.BytesBE())
		return res, nil
	case strings.HasPrefix(typ, "bytes"):
		return encodeFixedBytes(typ, v)
	case strings.HasPrefix(typ, "uint"), strings.HasPrefix(typ, "int"):
		x, err := toInt(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", err, typ)
		}
		return word(x), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownType, typ)
}

func encodeArray(types Types, typ string, v any) ([]byte, error) {
	elem := typ[:strings.LastIndexByte(typ, '[')]
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, mismatch(typ, v)
	}
	if n := typ[len(elem)+1 : len(typ)-1]; n != "" {
		if size, err := strconv.Atoi(n); err != nil || size != rv.Len() {
			return nil, fmt.Errorf("%w: %s has %d elements", ErrInvalidValue, typ, rv.Len())
		}
	}
	buf := make([]byte, 0, 32*rv.Len())
	for i := 0; i < rv.Len(); i++ {
		enc, err := encodeValue(types, elem, rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		buf = append(buf, enc...)
	}
	return common.Keccak256(buf), nil
}

func encodeFixedBytes(typ string, v any) ([]byte, error) {
	size, err := strconv.Atoi(typ[len("bytes"):])
	if err != nil || size < 1 || size > 32 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, typ)
	}
	var b []byte
	switch x := v.(type) {
	case util.Uint256:
		b = x.BytesBE()
	case [32]byte:
		b = x[:]
	case []byte:
		b = x
	default:
		return nil, mismatch(typ, v)
	}
	if len(b) > size {
		return nil, fmt.Errorf("%w: %s has %d bytes", ErrInvalidValue, typ, len(b))
	}
	res := make([]byte, 32)
	copy(res, b)
	return res, nil
}

func toInt(v any) (*uint256.Int, error) {
	switch x := v.(type) {
	case uint64:
		return uint256.NewInt(x), nil
	case uint32:
		return uint256.NewInt(uint64(x)), nil
	case uint:
		return uint256.NewInt(uint64(x)), nil
	case int:
		return fromInt64(int64(x)), nil
	case int64:
		return fromInt64(x), nil
	case *uint256.Int:
		return x, nil
	case *big.Int:
		res, overflow := uint256.FromBig(x)
		if overflow {
			return nil, fmt.Errorf("%w: %s overflows", ErrInvalidValue, x)
		}
		return res, nil
	}
	return nil, fmt.Errorf("%w: unexpected %T", ErrInvalidValue, v)
}

func fromInt64(x int64) *uint256.Int {
	if x >= 0 {
		return uint256.NewInt(uint64(x))
	}
	return new(uint256.Int).Neg(uint256.NewInt(uint64(-x)))
}

func word(x *uint256.Int) []byte {
	b := x.Bytes32()
	return b[:]
}

func mismatch(typ string, v any) error {
	return fmt.Errorf("%w: %s expected, got %T", ErrInvalidValue, typ, v)
}
