package bitrie

// nodeRef addresses a node inside its store: a file offset for the disk
// store, an arena slot for the memory store. The root always sits at 0, so
// 0 doubles as "no child".
type nodeRef uint32

const (
	rootRef nodeRef = 0
	noRef   nodeRef = 0
)

// node is one edge-compressed vertex. prefix and value never change once
// the node exists; hasValue, child and count form the mutable header.
type node struct {
	ref      nodeRef
	prefix   Bits
	value    []byte
	hasValue bool
	child    [2]nodeRef
	count    [2]uint32
}

// total is the number of live entries in the subtree rooted at n.
func (n *node) total() uint32 {
	c := n.count[0] + n.count[1]
	if n.hasValue {
		c++
	}
	return c
}

// nodeStore creates, loads and persists nodes. Nodes returned by load are
// owned by the store; callers that change a header must call markDirty.
type nodeStore interface {
	load(ref nodeRef) (*node, error)
	create(prefix Bits, value []byte, hasValue bool, child [2]nodeRef, count [2]uint32) (*node, error)
	markDirty(n *node)
	flush() error
}
