package bitrie

import "errors"

// trie runs the PATRICIA algorithms over a nodeStore. Every key handed to a
// node still includes that node's own prefix; the bit right after the
// prefix picks child[0] or child[1].
type trie struct {
	store nodeStore
}

func (t *trie) root() (*node, error) {
	return t.store.load(rootRef)
}

func (t *trie) count() (uint32, error) {
	root, err := t.root()
	if err != nil {
		return 0, err
	}
	return root.total(), nil
}

func (t *trie) insert(key Bits, value []byte) error {
	if key.Len() == 0 {
		return ErrEmptyKey
	}
	root, err := t.root()
	if err != nil {
		return err
	}
	return t.insertAt(root, key, value)
}

// insertAt requires key.Len() > n.prefix.Len() and key to start with
// n.prefix. Counts are only touched once the insert below has succeeded.
func (t *trie) insertAt(n *node, key Bits, value []byte) error {
	bit := key.At(n.prefix.Len())
	rest := key.Skip(n.prefix.Len() + 1)
	if n.child[bit] == noRef {
		leaf, err := t.store.create(rest, value, true, [2]nodeRef{}, [2]uint32{})
		if err != nil {
			return err
		}
		t.attach(n, bit, leaf)
		return nil
	}
	child, err := t.store.load(n.child[bit])
	if err != nil {
		return err
	}
	var replacement *node
	common := child.prefix.CommonPrefixLen(rest)
	switch {
	case common == child.prefix.Len() && common == rest.Len():
		if child.hasValue {
			return ErrDuplicateKey
		}
		// prefix and value are immutable: a valued copy replaces child
		replacement, err = t.store.create(child.prefix, value, true, child.child, child.count)
	case common == child.prefix.Len():
		if err = t.insertAt(child, rest, value); err != nil {
			return err
		}
		n.count[bit]++
		t.store.markDirty(n)
		return nil
	default:
		replacement, err = t.split(child, rest, common, value)
	}
	if err != nil {
		return err
	}
	t.attach(n, bit, replacement)
	return nil
}

func (t *trie) attach(n *node, bit uint8, child *node) {
	n.child[bit] = child.ref
	n.count[bit]++
	t.store.markDirty(n)
}

// split replaces old, whose prefix diverges from key after common bits, by
// a node holding the common bits. key is inserted below it and old hangs
// under it again with the bits up to and including its discriminator cut.
func (t *trie) split(old *node, key Bits, common int, value []byte) (*node, error) {
	var (
		mid *node
		err error
	)
	if common == key.Len() {
		mid, err = t.store.create(key, value, true, [2]nodeRef{}, [2]uint32{})
	} else {
		mid, err = t.store.create(key.Take(common), nil, false, [2]nodeRef{}, [2]uint32{})
		if err == nil {
			err = t.insertAt(mid, key, value)
		}
	}
	if err != nil {
		return nil, err
	}
	disc := old.prefix.At(common)
	grandchild, err := t.store.create(old.prefix.Skip(common+1), old.value, old.hasValue, old.child, old.count)
	if err != nil {
		return nil, err
	}
	mid.child[disc] = grandchild.ref
	mid.count[disc] = old.total()
	t.store.markDirty(mid)
	return mid, nil
}

type pathStep struct {
	n   *node
	bit uint8
}

// lookup walks to the node whose full key equals key. path receives every
// ancestor together with the branch taken out of it.
func (t *trie) lookup(key Bits, path *[]pathStep) (*node, error) {
	n, err := t.root()
	if err != nil {
		return nil, err
	}
	for {
		plen := n.prefix.Len()
		if key.Len() <= plen {
			if key.Equal(n.prefix) {
				return n, nil
			}
			return nil, ErrNotFound
		}
		if key.CommonPrefixLen(n.prefix) < plen {
			return nil, ErrNotFound
		}
		bit := key.At(plen)
		if n.child[bit] == noRef {
			return nil, ErrNotFound
		}
		if path != nil {
			*path = append(*path, pathStep{n: n, bit: bit})
		}
		key = key.Skip(plen + 1)
		n, err = t.store.load(n.child[bit])
		if err != nil {
			return nil, err
		}
	}
}

// find returns the live node for key, ErrNotFound for absent and
// tombstoned keys.
func (t *trie) find(key Bits) (*node, error) {
	n, err := t.lookup(key, nil)
	if err != nil {
		return nil, err
	}
	if !n.hasValue {
		return nil, ErrNotFound
	}
	return n, nil
}

// remove tombstones key. Prefixes and child pointers stay as they are.
func (t *trie) remove(key Bits) (bool, error) {
	path := make([]pathStep, 0, 16)
	n, err := t.lookup(key, &path)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !n.hasValue {
		return false, nil
	}
	n.hasValue = false
	t.store.markDirty(n)
	for _, step := range path {
		step.n.count[step.bit]--
		t.store.markDirty(step.n)
	}
	return true, nil
}
