package bitrie

import (
	"errors"
	"fmt"
	"os"

	"github.com/c2h5oh/datasize"
)

const rebuildSuffix = ".rebuild"

// Compact writes the live entries of src, in key order, as a fresh store
// into dst. dst must be empty. Tombstones and node versions replaced by
// copy-on-write are left behind.
func Compact(src *Index, dst Storage) error {
	if err := src.checkOpen(); err != nil {
		return err
	}
	_, err := compactInto(src, dst)
	return err
}

func compactInto(src *Index, dst Storage) (*diskStore, error) {
	size, err := dst.Size()
	if err != nil {
		return nil, err
	}
	if size != 0 {
		return nil, fmt.Errorf("compact into a non empty storage of %d bytes", size)
	}
	store, err := newDiskStore(dst, new(iStat), src.logger)
	if err != nil {
		return nil, err
	}
	if err = copyEntries(src, &trie{store: store}); err != nil {
		return nil, err
	}
	return store, nil
}

func copyEntries(src *Index, dst *trie) error {
	c := newCursor(src.store)
	for c.Next() {
		if err := dst.insert(BitsFromBytes([]byte(c.Key())), []byte(c.Value())); err != nil {
			return fmt.Errorf("copy %q: %w", excerpt(c.Key()), err)
		}
	}
	if err := c.Err(); err != nil {
		return err
	}
	return dst.store.flush()
}

// Rebuild compacts the index in place. A file store is rebuilt next to the
// original and renamed over it; if anything fails before the rename the
// original file is left as it was.
func (idx *Index) Rebuild() error {
	if err := idx.checkOpen(); err != nil {
		return err
	}
	before := idx.stat.storeBytes.Load()
	idx.logger.Info("bitrie rebuild started", "entries", idx.stat.entries.Load(),
		"size", datasize.ByteSize(before).HR())
	var err error
	switch s := idx.storage.(type) {
	case nil:
		err = idx.rebuildArena()
	case *FileStorage:
		err = idx.rebuildFile(s)
	case *MemStorage:
		err = idx.rebuildMem(s)
	default:
		err = fmt.Errorf("rebuild of %T is not supported, use Compact", s)
	}
	if err != nil {
		idx.logger.Error("bitrie rebuild failed", "error", err)
		return err
	}
	idx.mutations = 0
	idx.stat.rebuilds.Add(1)
	idx.logger.Info("bitrie rebuild finished",
		"before", datasize.ByteSize(before).HR(),
		"after", datasize.ByteSize(idx.stat.storeBytes.Load()).HR())
	return nil
}

func (idx *Index) rebuildArena() error {
	store := newMemStore(idx.stat)
	if err := copyEntries(idx, &trie{store: store}); err != nil {
		return err
	}
	idx.store = store
	idx.trie = &trie{store: store}
	return nil
}

func (idx *Index) rebuildMem(s *MemStorage) error {
	tmp := NewMemStorage()
	store, err := compactInto(idx, tmp)
	if err != nil {
		return err
	}
	s.swap(tmp)
	store.s = s
	idx.adopt(s, store)
	return nil
}

func (idx *Index) rebuildFile(s *FileStorage) (err error) {
	path := s.Path()
	tmpPath := path + rebuildSuffix
	// a leftover from an interrupted rebuild is never live data
	if err = os.Remove(tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	tmp, err := OpenFileStorage(tmpPath)
	if err != nil {
		return err
	}
	defer func() {
		if err == nil {
			return
		}
		if cerr := tmp.Close(); cerr != nil {
			idx.logger.Error("bitrie close rebuild file", "path", tmpPath, "error", cerr)
		}
		if rerr := os.Remove(tmpPath); rerr != nil {
			idx.logger.Error("bitrie remove rebuild file", "path", tmpPath, "error", rerr)
		}
	}()
	store, err := compactInto(idx, tmp)
	if err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	// the locked handle now refers to path
	tmp.path = path
	if cerr := s.Close(); cerr != nil {
		idx.logger.Error("bitrie close replaced store", "path", path, "error", cerr)
	}
	idx.adopt(tmp, store)
	return nil
}

// adopt switches the index over to a freshly compacted store.
func (idx *Index) adopt(s Storage, store *diskStore) {
	store.stat = idx.stat
	idx.stat.storeBytes.Store(uint64(store.end))
	idx.storage = s
	idx.store = store
	idx.trie = &trie{store: store}
}
