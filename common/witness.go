package common

import (
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/util"
)

var (
	// ErrOwnerWitnessFailed appears when the operation must be submitted
	// by the owner of some node but was not.
	ErrOwnerWitnessFailed = Authorization("owner witness check failed")
	// ErrWitnessFailed appears when the operation must be submitted by a
	// particular account but was not.
	ErrWitnessFailed = Authorization("witness check failed")
)

// CheckOwnerWitness checks that caller is the owner.
// It returns ErrOwnerWitnessFailed otherwise.
func CheckOwnerWitness(caller, owner util.Uint160) error {
	return checkWitness(caller, owner, ErrOwnerWitnessFailed)
}

// CheckWitness checks that caller is the expected account.
// It returns ErrWitnessFailed otherwise.
func CheckWitness(caller, expected util.Uint160) error {
	return checkWitness(caller, expected, ErrWitnessFailed)
}

func checkWitness(caller, expected util.Uint160, failure *Error) error {
	if !caller.Equals(expected) {
		return fmt.Errorf("%w: %s", failure, AddressString(caller))
	}
	return nil
}

// AddressString formats an account the way EVM-style tooling prints it.
func AddressString(a util.Uint160) string {
	return "0x" + a.StringBE()
}
