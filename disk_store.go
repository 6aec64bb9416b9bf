package bitrie

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	cmap "github.com/zbh255/gocode/container/map"
)

// diskStore lays nodes out in a Storage. Records are only ever appended;
// afterwards only their 17 byte header is rewritten, in place, on flush.
type diskStore struct {
	s      Storage
	end    int64
	cache  map[nodeRef]*node
	dirty  *cmap.BTreeMap[uint64, *node]
	stat   *iStat
	logger *slog.Logger
}

var _ nodeStore = (*diskStore)(nil)

// newDiskStore opens the store kept in s. An empty stream gets its root
// record written at offset 0.
func newDiskStore(s Storage, stat *iStat, logger *slog.Logger) (*diskStore, error) {
	size, err := s.Size()
	if err != nil {
		return nil, err
	}
	d := &diskStore{
		s:      s,
		end:    size,
		cache:  make(map[nodeRef]*node, 64),
		dirty:  newDirtySet(),
		stat:   stat,
		logger: logger,
	}
	if size == 0 {
		_, err = d.create(Bits{}, nil, false, [2]nodeRef{}, [2]uint32{})
		if err != nil {
			return nil, fmt.Errorf("materialize root: %w", err)
		}
		logger.Debug("bitrie materialized root record")
	} else if size < fixedSize {
		return nil, fmt.Errorf("%w: stream of %d bytes is shorter than a root record", ErrCorruptStore, size)
	}
	stat.storeBytes.Store(uint64(d.end))
	return d, nil
}

func newDirtySet() *cmap.BTreeMap[uint64, *node] {
	return cmap.NewBtreeMap[uint64, *node](32)
}

func (d *diskStore) load(ref nodeRef) (*node, error) {
	if n, ok := d.cache[ref]; ok {
		d.stat.cacheHit.Add(1)
		return n, nil
	}
	n, err := d.read(ref)
	if err != nil {
		return nil, err
	}
	d.stat.nodeLoads.Add(1)
	d.cache[ref] = n
	return n, nil
}

func (d *diskStore) read(ref nodeRef) (*node, error) {
	var (
		off   = int64(ref)
		fixed [fixedSize]byte
		n     = &node{ref: ref}
	)
	if err := d.readFull(fixed[:], off); err != nil {
		return nil, err
	}
	if err := unmarshalHeader(fixed[:], n); err != nil {
		return nil, err
	}
	off += fixedSize
	prefixLen := int(readU16(fixed[headerSize:fixedSize]))
	rest := make([]byte, (prefixLen+7)/8)
	if n.hasValue {
		rest = append(rest, 0, 0)
	}
	if err := d.readFull(rest, off); err != nil {
		return nil, err
	}
	off += int64(len(rest))
	n.prefix = BitsFromBytes(rest[:(prefixLen+7)/8]).Take(prefixLen)
	if n.hasValue {
		n.value = make([]byte, readU16(rest[len(rest)-valueLenSize:]))
		if err := d.readFull(n.value, off); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// readFull maps a short read to ErrCorruptStore.
func (d *diskStore) readFull(p []byte, off int64) error {
	n, err := d.s.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: record at offset %d needs %d bytes, stream has %d", ErrCorruptStore, off, len(p), n)
	}
	return err
}

func (d *diskStore) create(prefix Bits, value []byte, hasValue bool, child [2]nodeRef, count [2]uint32) (*node, error) {
	if err := checkLimits(prefix, value); err != nil {
		return nil, err
	}
	if d.end > math.MaxUint32 {
		return nil, ErrStoreFull
	}
	n := &node{
		ref:      nodeRef(d.end),
		prefix:   prefix,
		value:    value,
		hasValue: hasValue,
		child:    child,
		count:    count,
	}
	buf := marshalRecord(n)
	if _, err := d.s.WriteAt(buf, d.end); err != nil {
		return nil, fmt.Errorf("write record at offset %d: %w", d.end, err)
	}
	d.end += int64(len(buf))
	d.cache[n.ref] = n
	d.stat.nodesCreated.Add(1)
	d.stat.storeBytes.Store(uint64(d.end))
	return n, nil
}

func (d *diskStore) markDirty(n *node) {
	d.dirty.StoreOk(uint64(n.ref), n)
}

// flush rewrites the header of every dirty node, lowest offset first.
func (d *diskStore) flush() (err error) {
	var (
		count int
		buf   [headerSize]byte
	)
	d.dirty.Range(0, func(off uint64, n *node) bool {
		marshalHeader(buf[:], n)
		_, err = d.s.WriteAt(buf[:], int64(off))
		if err != nil {
			err = fmt.Errorf("write header at offset %d: %w", off, err)
			return false
		}
		count++
		return true
	})
	d.stat.headersFlushed.Add(uint64(count))
	if err != nil {
		return
	}
	d.dirty = newDirtySet()
	d.logger.Debug("bitrie flushed headers", "count", count, "end", d.end)
	return nil
}
