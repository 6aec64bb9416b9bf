package bitrie

import (
	"fmt"

	"github.com/disiqueira/gotree"
)

// String renders every reachable node, tombstones included, as a tree.
func (idx *Index) String() string {
	if idx.closed {
		return "closed"
	}
	root, err := idx.store.load(rootRef)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	tree := gotree.New(fmt.Sprintf("root @%d count=%d", root.ref, root.total()))
	idx.dump(tree, root)
	return fmt.Sprintf("\n%s", tree.Print())
}

func (idx *Index) dump(tree gotree.Tree, n *node) {
	for bit, ref := range n.child {
		if ref == noRef {
			continue
		}
		child, err := idx.store.load(ref)
		if err != nil {
			tree.Add(fmt.Sprintf("%d: error: %v", bit, err))
			continue
		}
		idx.dump(tree.Add(describeNode(uint8(bit), child)), child)
	}
}

func describeNode(bit uint8, n *node) string {
	s := fmt.Sprintf("%d|%s @%d count=%v", bit, n.prefix, n.ref, n.count)
	if n.hasValue {
		s += fmt.Sprintf(" value=%q", excerpt(string(n.value)))
	}
	return s
}
