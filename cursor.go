package bitrie

import "fmt"

// Cursor walks live entries in ascending key order. A fresh cursor is
// positioned before the first entry; Seek and SeekOffset move that start.
//
//	c := idx.Cursor()
//	for c.Next() {
//		fmt.Println(c.Key(), c.Value())
//	}
//	if err := c.Err(); err != nil { ... }
type Cursor struct {
	store nodeStore
	st    stack
	key   string
	value string
	err   error
}

func newCursor(store nodeStore) *Cursor {
	c := &Cursor{store: store}
	c.st.push(stackElement{ref: rootRef})
	return c
}

// Next advances to the next entry and reports whether there is one. Once it
// returns false, Err tells a finished walk from a failed one.
func (c *Cursor) Next() bool {
	if c.err != nil {
		return false
	}
	for {
		e, ok := c.st.pop()
		if !ok {
			return false
		}
		n, err := c.store.load(e.ref)
		if err != nil {
			c.fail(err)
			return false
		}
		full := e.path.Concat(n.prefix)
		// child[1] goes first so child[0] pops first
		for _, bit := range [2]uint8{1, 0} {
			if n.child[bit] != noRef && n.count[bit] > 0 {
				c.st.push(stackElement{ref: n.child[bit], path: full.Append(bit)})
			}
		}
		if !n.hasValue {
			continue
		}
		key, err := full.Bytes()
		if err != nil {
			c.fail(fmt.Errorf("%w: key of %d bits at %d", ErrCorruptStore, full.Len(), n.ref))
			return false
		}
		c.key, c.value = string(key), string(n.value)
		return true
	}
}

func (c *Cursor) fail(err error) {
	c.err = err
	c.key, c.value = "", ""
	c.st.reset()
}

func (c *Cursor) Key() string {
	return c.key
}

func (c *Cursor) Value() string {
	return c.value
}

func (c *Cursor) Err() error {
	return c.err
}

// SeekOffset positions the cursor so that Next yields the entry with rank
// n, descending by subtree counts instead of walking the first n entries.
func (c *Cursor) SeekOffset(n int) error {
	c.st.reset()
	c.err = nil
	if n < 0 {
		n = 0
	}
	ref, path := rootRef, Bits{}
	for {
		nd, err := c.store.load(ref)
		if err != nil {
			c.fail(err)
			return err
		}
		if n == 0 {
			c.st.push(stackElement{ref: ref, path: path})
			return nil
		}
		if nd.hasValue {
			n--
		}
		full := path.Concat(nd.prefix)
		switch {
		case n < int(nd.count[0]):
			if nd.child[1] != noRef {
				c.st.push(stackElement{ref: nd.child[1], path: full.Append(1)})
			}
			ref, path = nd.child[0], full.Append(0)
		case n-int(nd.count[0]) < int(nd.count[1]):
			n -= int(nd.count[0])
			ref, path = nd.child[1], full.Append(1)
		default:
			return nil
		}
	}
}

// Seek positions the cursor so that Next yields entries with keys >= key.
func (c *Cursor) Seek(key string) error {
	c.st.reset()
	c.err = nil
	k := BitsFromBytes([]byte(key))
	ref, path := rootRef, Bits{}
	for {
		nd, err := c.store.load(ref)
		if err != nil {
			c.fail(err)
			return err
		}
		plen := nd.prefix.Len()
		if k.Compare(nd.prefix) <= 0 {
			c.st.push(stackElement{ref: ref, path: path})
			return nil
		}
		if k.CommonPrefixLen(nd.prefix) < plen {
			// k passed this whole edge
			return nil
		}
		full := path.Concat(nd.prefix)
		bit := k.At(plen)
		if bit == 0 && nd.child[1] != noRef {
			c.st.push(stackElement{ref: nd.child[1], path: full.Append(1)})
		}
		if nd.child[bit] == noRef {
			return nil
		}
		ref, path = nd.child[bit], full.Append(bit)
		k = k.Skip(plen + 1)
	}
}
