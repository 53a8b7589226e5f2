package dump

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/motorid/registry/registry"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
)

// Creator dumps registry state. Output file format:
//
//	'<label>-<time>-modules.json': JSON array of installed modules
//	'<label>-<time>-storage.csv': CSV of the registry storage
//
// Storage CSV are 'section,key,value' where section names the storage prefix
// of the item and binary key-value are base64-encoded. Keys are written
// without the prefix.
//
// Use IterateDumps or Open to access existing dumps.
type Creator struct {
	dumpStreams

	modules []Module

	storageItemsCSV *csv.Writer
}

// NewCreator returns Creator which dumps registry state into given directory.
// The dump is identified by specified ID. Resulting Creator should be closed
// when finished working with it.
//
// NewCreator fails if dump with provided ID already exists.
func NewCreator(dir string, id ID) (*Creator, error) {
	var res Creator

	err := initDumpStreams(&res.dumpStreams, dir, id, false)
	if err != nil {
		return nil, err
	}

	res.storageItemsCSV = csv.NewWriter(res.dumpStreams.storageItems)

	return &res, nil
}

// AddModules adds descriptions of the installed modules to the resulting
// dump.
func (x *Creator) AddModules(infos []registry.ModuleInfo) {
	for i := range infos {
		ops := make([]string, len(infos[i].Selectors))
		for j := range infos[i].Selectors {
			ops[j] = infos[i].Selectors[j].String()
		}
		x.modules = append(x.modules, Module{
			Name:       infos[i].Name,
			Version:    infos[i].Version,
			Address:    infos[i].Address,
			Operations: ops,
		})
	}
}

// Write saves given binary key-value into the dump as storage item.
func (x *Creator) Write(key, value []byte) error {
	if len(key) == 0 {
		return errors.New("empty storage key")
	}

	section, err := sectionOf(key[0])
	if err != nil {
		return err
	}

	err = x.storageItemsCSV.Write([]string{
		section,
		_encoding.EncodeToString(key[1:]),
		_encoding.EncodeToString(value),
	})
	if err != nil {
		return fmt.Errorf("write storage item as CSV data: %w", err)
	}

	return nil
}

// WriteStore saves all items of the store into the dump.
func (x *Creator) WriteStore(s storage.Store) error {
	var err error

	s.Seek(storage.SeekRange{}, func(k, v []byte) bool {
		err = x.Write(k, v)
		return err == nil
	})

	return err
}

// Flush flushes accumulated dump to the file system.
func (x *Creator) Flush() error {
	jEnc := json.NewEncoder(x.dumpStreams.modules)
	jEnc.SetIndent("", " ")

	modules := x.modules
	if modules == nil {
		modules = []Module{}
	}

	err := jEnc.Encode(modules)
	if err != nil {
		return fmt.Errorf("encode modules to JSON: %w", err)
	}

	x.storageItemsCSV.Flush()

	err = x.storageItemsCSV.Error()
	if err != nil {
		return fmt.Errorf("flush CSV data: %w", err)
	}

	return nil
}

// Close releases underlying resources of the Creator and makes it unusable.
func (x *Creator) Close() {
	x.close()
}
