package dump

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/motorid/registry/common"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// ID is a unique identifier of the dump prepared according to the model
// described in the current package.
type ID struct {
	// Label of the dump source (e.g. staging, production).
	Label string
	// Unix time in seconds at which the state was taken.
	Taken uint64
}

// String returns hyphen-separated ID fields.
func (x ID) String() string {
	return x.Label + sep + strconv.FormatUint(x.Taken, 10)
}

// decodes ID fields from the hyphen-separated string.
func (x *ID) decodeString(s string) error {
	ss := strings.Split(s, sep)
	if len(ss) < 2 {
		return fmt.Errorf("expected '%s'-separated string with at least 2 items", sep)
	}

	n, err := strconv.ParseUint(ss[1], 10, 64)
	if err != nil {
		return fmt.Errorf("decode time from '%s': %w", ss[1], err)
	}

	x.Label = ss[0]
	x.Taken = n

	return nil
}

// global encoding of binary values.
var _encoding = base64.StdEncoding

// Module is a JSON-encoded description of the module installed in the dumped
// registry.
type Module struct {
	Name       string       `json:"name"`
	Version    int          `json:"version"`
	Address    util.Uint160 `json:"address"`
	Operations []string     `json:"operations"`
}

// sections names storage prefixes in the storage CSV.
var sections = map[byte]string{
	common.PrefixOperation:         "operation",
	common.PrefixModuleOperation:   "module",
	common.PrefixRoleMember:        "role",
	common.PrefixRoleAdmin:         "roleadmin",
	common.PrefixNodeTypeTag:       "nodetype",
	common.PrefixNamespaceType:     "namespace",
	common.PrefixNode:              "node",
	common.PrefixWhitelist:         "whitelist",
	common.PrefixInfo:              "info",
	common.PrefixLink:              "link",
	common.PrefixNodeLink:          "nodelink",
	common.PrefixBeneficiary:       "beneficiary",
	common.PrefixToken:             "token",
	common.PrefixDomain:            "domain",
	common.PrefixManufacturer:      "manufacturer",
	common.PrefixAftermarketDevice: "aftermarket",
	common.PrefixIntegration:       "integration",
	common.PrefixSyntheticDevice:   "synthetic",
	common.PrefixProxy:             "proxy",
	common.PrefixCollaborator:      "collaborator",
	common.PrefixStream:            "stream",
}

// sectionOf returns section name of the storage prefix.
func sectionOf(prefix byte) (string, error) {
	if name, ok := sections[prefix]; ok {
		return name, nil
	}
	return "", fmt.Errorf("unknown storage prefix 0x%02x", prefix)
}

// prefixOf is the inverse of sectionOf.
func prefixOf(section string) (byte, error) {
	for p, name := range sections {
		if name == section {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown storage section '%s'", section)
}

// dumpStreams groups data streams for module descriptions and storage.
type dumpStreams struct {
	modules, storageItems io.ReadWriteCloser
}

// close closes all streams.
func (x *dumpStreams) close() {
	_ = x.storageItems.Close()
	_ = x.modules.Close()
}

const (
	// word separator used in dump file naming
	sep = "-"
	// suffix of file with module descriptions
	modulesFileSuffix = "modules.json"
	// suffix of file with storage items
	storageFileSuffix = "storage.csv"
)

// initDumpStreams opens data streams for the dump files located in the
// specified directory. If read flag is set, streams are read-only. Otherwise,
// files must not exist, and streams are write only.
func initDumpStreams(d *dumpStreams, dir string, id ID, read bool) error {
	var err error

	pathStorage := filepath.Join(dir, strings.Join([]string{id.String(), storageFileSuffix}, sep))
	pathModules := filepath.Join(dir, strings.Join([]string{id.String(), modulesFileSuffix}, sep))
	if !read {
		if err = checkFileNotExists(pathStorage); err != nil {
			return err
		}
		if err = checkFileNotExists(pathModules); err != nil {
			return err
		}
	}

	var flag int
	var perm os.FileMode

	if read {
		flag = os.O_RDONLY
	} else {
		flag = os.O_CREATE | os.O_WRONLY
		perm = 0600
	}

	d.storageItems, err = os.OpenFile(pathStorage, flag, perm)
	if err != nil {
		return fmt.Errorf("open file with storage items: %w", err)
	}

	d.modules, err = os.OpenFile(pathModules, flag, perm)
	if err != nil {
		_ = d.storageItems.Close()
		return fmt.Errorf("open file with modules: %w", err)
	}

	return nil
}

// checkFileNotExists checks that there is no file at the specified path.
func checkFileNotExists(p string) error {
	_, err := os.Stat(p)
	if !os.IsNotExist(err) {
		if err == nil {
			err = os.ErrExist
		}
		return fmt.Errorf("file '%s' absence check failed: %w", p, err)
	}
	return nil
}
