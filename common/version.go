package common

import (
	"fmt"
	"strconv"
)

const (
	major = 1
	minor = 0
	patch = 0

	// Version is the version of the modules shipped with the registry.
	Version = major*1_000_000 + minor*1_000 + patch
)

var (
	// ErrVersionMismatch is returned by CheckVersion when a module is
	// replaced by an older version of itself.
	ErrVersionMismatch = Validation("previous version mismatch")

	// ErrAlreadyUpdated is returned by CheckVersion if the module is
	// replaced by the same version.
	ErrAlreadyUpdated = Validation("module is already of the latest version")
)

// EncodeVersion packs semantic version into a single comparable number.
func EncodeVersion(maj, min, p int) int {
	return maj*1_000_000 + min*1_000 + p
}

// VersionString formats version packed by EncodeVersion.
func VersionString(v int) string {
	return strconv.Itoa(v/1_000_000) + "." + strconv.Itoa(v/1_000%1_000) + "." + strconv.Itoa(v%1_000)
}

// CheckVersion checks that a module of version from may be replaced by the
// same module of version to.
func CheckVersion(from, to int) error {
	if to < from {
		return fmt.Errorf("%w: expected >%s", ErrVersionMismatch, VersionString(from))
	}
	if to == from {
		return fmt.Errorf("%w: %s", ErrAlreadyUpdated, VersionString(from))
	}
	return nil
}
