package bitrie

import "fmt"

// memStore keeps every node in an arena slice; a node's ref is its slot.
// Replaced nodes stay in the arena until the index is rebuilt.
type memStore struct {
	nodes []*node
	stat  *iStat
}

var _ nodeStore = (*memStore)(nil)

func newMemStore(stat *iStat) *memStore {
	return &memStore{
		nodes: []*node{{ref: rootRef}},
		stat:  stat,
	}
}

func (m *memStore) load(ref nodeRef) (*node, error) {
	if int(ref) >= len(m.nodes) {
		return nil, fmt.Errorf("%w: no node in slot %d", ErrCorruptStore, ref)
	}
	m.stat.cacheHit.Add(1)
	return m.nodes[ref], nil
}

func (m *memStore) create(prefix Bits, value []byte, hasValue bool, child [2]nodeRef, count [2]uint32) (*node, error) {
	if err := checkLimits(prefix, value); err != nil {
		return nil, err
	}
	n := &node{
		ref:      nodeRef(len(m.nodes)),
		prefix:   prefix,
		value:    value,
		hasValue: hasValue,
		child:    child,
		count:    count,
	}
	m.nodes = append(m.nodes, n)
	m.stat.nodesCreated.Add(1)
	return n, nil
}

func (m *memStore) markDirty(*node) {}

func (m *memStore) flush() error {
	return nil
}
