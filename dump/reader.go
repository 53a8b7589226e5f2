package dump

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
)

// IterateDumps iterates over all dumps collected by the Creator model in the
// specified directory, and passes ID and Reader of each dump into f.
func IterateDumps(dir string, f func(ID, *Reader)) error {
	var id ID

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, e error) error {
		if errors.Is(e, fs.ErrNotExist) {
			return nil
		}
		if e != nil {
			return e
		}

		if d.IsDir() {
			return nil
		}

		name := d.Name()

		if !strings.HasSuffix(name, modulesFileSuffix) {
			return nil
		}

		err := id.decodeString(name)
		if err != nil {
			return fmt.Errorf("decode dump ID from file name '%s': %w", name, err)
		}

		r, err := Open(dir, id)
		if err != nil {
			return fmt.Errorf("open dump '%s': %w", name, err)
		}

		f(id, r)

		return nil
	})
}

// Open reads dump with the given ID from the specified directory.
func Open(dir string, id ID) (*Reader, error) {
	var streams dumpStreams

	err := initDumpStreams(&streams, dir, id, true)
	if err != nil {
		return nil, err
	}
	defer streams.close()

	var r Reader

	err = r.fromDumpStreams(streams.modules, streams.storageItems)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

type kv struct{ k, v []byte }

// Reader reads registry state collected in the superior dump.
type Reader struct {
	modules []Module
	items   []kv
}

func (x *Reader) fromDumpStreams(rModules, rStorageItems io.Reader) error {
	err := json.NewDecoder(rModules).Decode(&x.modules)
	if err != nil {
		return fmt.Errorf("decode modules from JSON: %w", err)
	}

	var rec []string

	_csv := csv.NewReader(rStorageItems)
	_csv.FieldsPerRecord = 3
	_csv.ReuseRecord = true

	x.items = x.items[:0]

	for {
		rec, err = _csv.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read next CSV record: %w", err)
		}

		// out-of-range safety guaranteed by csv settings
		prefix, err := prefixOf(rec[0])
		if err != nil {
			return err
		}

		key, err := _encoding.DecodeString(rec[1])
		if err != nil {
			return fmt.Errorf("decode storage item key: %w", err)
		}

		value, err := _encoding.DecodeString(rec[2])
		if err != nil {
			return fmt.Errorf("decode storage item value: %w", err)
		}

		x.items = append(x.items, kv{k: append([]byte{prefix}, key...), v: value})
	}
}

// Modules returns modules installed in the dumped registry.
func (x *Reader) Modules() []Module {
	return x.modules
}

// IterateStorage passes all storage items of the dump into f.
func (x *Reader) IterateStorage(f func(key, value []byte)) {
	for i := range x.items {
		f(x.items[i].k, x.items[i].v)
	}
}

// Restore writes all storage items of the dump into the store. Existing items
// with the same keys are overwritten, others are left untouched.
func (x *Reader) Restore(s storage.Store) error {
	cache := storage.NewMemCachedStore(s)

	x.IterateStorage(cache.Put)

	_, err := cache.PersistSync()
	if err != nil {
		return fmt.Errorf("persist storage items: %w", err)
	}

	return nil
}
