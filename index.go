package bitrie

import (
	"errors"
	"fmt"
	"log/slog"
)

// Index is an ordered string map kept in a bit-level PATRICIA trie. It is
// not safe for concurrent use.
type Index struct {
	cfg     Config
	logger  *slog.Logger
	storage Storage // nil for NewInMemory
	store   nodeStore
	trie    *trie
	stat    *iStat
	// successful mutations since the last rebuild
	mutations int
	closed    bool
}

// Entry is one key/value pair in enumeration order.
type Entry struct {
	Key   string
	Value string
}

// Open opens, or creates, the store file at cfg.Path. The file stays
// locked until Close.
func Open(cfg Config) (*Index, error) {
	if cfg.Path == "" {
		return nil, errors.New("bitrie: config has no path")
	}
	s, err := OpenFileStorage(cfg.Path)
	if err != nil {
		return nil, err
	}
	idx, err := New(s, cfg)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return idx, nil
}

// New opens the index kept in s. An empty s starts an empty index. The
// index owns s afterwards and closes it on Close.
func New(s Storage, cfg Config) (*Index, error) {
	idx := &Index{
		cfg:     cfg,
		logger:  cfg.logger(),
		storage: s,
		stat:    new(iStat),
	}
	store, err := newDiskStore(s, idx.stat, idx.logger)
	if err != nil {
		return nil, err
	}
	idx.store = store
	idx.trie = &trie{store: store}
	if err = idx.syncEntries(); err != nil {
		return nil, err
	}
	idx.logger.Debug("bitrie index opened", "path", cfg.Path, "entries", idx.stat.entries.Load())
	return idx, nil
}

// NewInMemory returns an index whose nodes live in an arena and are never
// encoded.
func NewInMemory(cfg Config) *Index {
	idx := &Index{
		cfg:    cfg,
		logger: cfg.logger(),
		stat:   new(iStat),
	}
	idx.store = newMemStore(idx.stat)
	idx.trie = &trie{store: idx.store}
	return idx
}

func (idx *Index) checkOpen() error {
	if idx.closed {
		return ErrClosed
	}
	return nil
}

func encodeKey(key string) (Bits, error) {
	if key == "" {
		return Bits{}, ErrEmptyKey
	}
	if len(key) > maxPrefixBits/8 {
		return Bits{}, fmt.Errorf("%w: %d bytes", ErrKeyTooLong, len(key))
	}
	return BitsFromBytes([]byte(key)), nil
}

// Add inserts key. A key that is already live fails with ErrDuplicateKey
// and leaves the index unchanged. ErrRebuildFailed means key was added.
func (idx *Index) Add(key, value string) error {
	if err := idx.checkOpen(); err != nil {
		return err
	}
	k, err := encodeKey(key)
	if err != nil {
		return err
	}
	if len(value) > maxValueLen {
		return fmt.Errorf("%w: %d bytes", ErrValueTooLong, len(value))
	}
	if err = idx.trie.insert(k, []byte(value)); err != nil {
		return err
	}
	return idx.mutated()
}

// Set is Add under its map-style name; it does not overwrite.
func (idx *Index) Set(key, value string) error {
	return idx.Add(key, value)
}

// Find returns the value stored under key or ErrNotFound.
func (idx *Index) Find(key string) (string, error) {
	if err := idx.checkOpen(); err != nil {
		return "", err
	}
	k, err := encodeKey(key)
	if err != nil {
		if errors.Is(err, ErrEmptyKey) || errors.Is(err, ErrKeyTooLong) {
			return "", ErrNotFound
		}
		return "", err
	}
	n, err := idx.trie.find(k)
	if err != nil {
		return "", err
	}
	return string(n.value), nil
}

// Get is Find with a *KeyNotFoundError naming the missing key.
func (idx *Index) Get(key string) (string, error) {
	v, err := idx.Find(key)
	if errors.Is(err, ErrNotFound) {
		return "", &KeyNotFoundError{Key: key}
	}
	return v, err
}

func (idx *Index) Contains(key string) (bool, error) {
	_, err := idx.Find(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// ContainsEntry reports whether key is live and holds value.
func (idx *Index) ContainsEntry(key, value string) (bool, error) {
	v, err := idx.Find(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == value, nil
}

// Remove tombstones key and reports whether it was live, also alongside
// ErrRebuildFailed.
func (idx *Index) Remove(key string) (bool, error) {
	if err := idx.checkOpen(); err != nil {
		return false, err
	}
	k, err := encodeKey(key)
	if err != nil {
		if errors.Is(err, ErrEmptyKey) || errors.Is(err, ErrKeyTooLong) {
			return false, nil
		}
		return false, err
	}
	ok, err := idx.trie.remove(k)
	if err != nil || !ok {
		return false, err
	}
	return true, idx.mutated()
}

// RemoveEntry removes key only while it holds value.
func (idx *Index) RemoveEntry(key, value string) (bool, error) {
	ok, err := idx.ContainsEntry(key, value)
	if err != nil || !ok {
		return false, err
	}
	return idx.Remove(key)
}

// Clear drops every entry. A disk-format store is truncated and starts
// over with a fresh root.
func (idx *Index) Clear() error {
	if err := idx.checkOpen(); err != nil {
		return err
	}
	if idx.storage == nil {
		idx.store = newMemStore(idx.stat)
	} else {
		if err := idx.storage.Truncate(0); err != nil {
			return err
		}
		store, err := newDiskStore(idx.storage, idx.stat, idx.logger)
		if err != nil {
			return err
		}
		idx.store = store
	}
	idx.trie = &trie{store: idx.store}
	idx.mutations = 0
	idx.stat.entries.Store(0)
	return nil
}

// Count returns the number of live entries.
func (idx *Index) Count() int {
	return int(idx.stat.entries.Load())
}

// Flush writes every pending header change to the storage.
func (idx *Index) Flush() error {
	if err := idx.checkOpen(); err != nil {
		return err
	}
	return idx.flush()
}

func (idx *Index) flush() error {
	if err := idx.store.flush(); err != nil {
		return err
	}
	idx.stat.flushes.Add(1)
	if idx.cfg.SyncOnFlush && idx.storage != nil {
		return idx.storage.Sync()
	}
	return nil
}

// Close flushes and releases the storage. Closing twice is a no-op.
func (idx *Index) Close() error {
	if idx.closed {
		return nil
	}
	idx.closed = true
	err := idx.flush()
	if idx.storage != nil {
		if cerr := idx.storage.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (idx *Index) Stats() ExportStat {
	return idx.stat.export()
}

func (idx *Index) syncEntries() error {
	c, err := idx.trie.count()
	if err != nil {
		return err
	}
	idx.stat.entries.Store(uint64(c))
	return nil
}

func (idx *Index) mutated() error {
	if err := idx.syncEntries(); err != nil {
		return err
	}
	idx.mutations++
	if idx.cfg.RebuildAfter > 0 && idx.mutations >= idx.cfg.RebuildAfter {
		if err := idx.Rebuild(); err != nil {
			return fmt.Errorf("%w: %w", ErrRebuildFailed, err)
		}
	}
	return nil
}

// Cursor returns a cursor positioned before the first entry.
func (idx *Index) Cursor() *Cursor {
	return newCursor(idx.store)
}

// Range calls fn for every entry in key order until fn returns false.
func (idx *Index) Range(fn func(key, value string) bool) error {
	if err := idx.checkOpen(); err != nil {
		return err
	}
	return drain(idx.Cursor(), fn)
}

// Skip is Range starting at the entry of rank n.
func (idx *Index) Skip(n int, fn func(key, value string) bool) error {
	if err := idx.checkOpen(); err != nil {
		return err
	}
	c := idx.Cursor()
	if err := c.SeekOffset(n); err != nil {
		return err
	}
	return drain(c, fn)
}

// From is Range over the entries with keys >= key.
func (idx *Index) From(key string, fn func(key, value string) bool) error {
	if err := idx.checkOpen(); err != nil {
		return err
	}
	c := idx.Cursor()
	if err := c.Seek(key); err != nil {
		return err
	}
	return drain(c, fn)
}

func drain(c *Cursor, fn func(key, value string) bool) error {
	for c.Next() {
		if !fn(c.Key(), c.Value()) {
			break
		}
	}
	return c.Err()
}

func (idx *Index) Entries() ([]Entry, error) {
	list := make([]Entry, 0, idx.Count())
	err := idx.Range(func(key, value string) bool {
		list = append(list, Entry{Key: key, Value: value})
		return true
	})
	return list, err
}

func (idx *Index) Keys() ([]string, error) {
	list := make([]string, 0, idx.Count())
	err := idx.Range(func(key, _ string) bool {
		list = append(list, key)
		return true
	})
	return list, err
}

func (idx *Index) Values() ([]string, error) {
	list := make([]string, 0, idx.Count())
	err := idx.Range(func(_, value string) bool {
		list = append(list, value)
		return true
	})
	return list, err
}
