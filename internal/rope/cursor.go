package rope

import "fmt"

// Cursor reads units from a Text and remembers the leaf it last touched, so
// runs of nearby reads skip the descent from the root.
//
// A Cursor is owned by one goroutine. Any number of cursors may read the
// same Text concurrently.
type Cursor struct {
	root  *node
	leaf  *node
	start int
	end   int
}

// Cursor returns a new cursor over t.
func (t *Text) Cursor() *Cursor {
	return &Cursor{root: t.root}
}

// Reset points c at t and forgets the remembered leaf.
func (c *Cursor) Reset(t *Text) {
	*c = Cursor{root: t.root}
}

// Len returns the length of the text under the cursor.
func (c *Cursor) Len() int {
	return c.root.length
}

// CharAt returns the unit at index i. It panics if i is out of range.
func (c *Cursor) CharAt(i int) uint16 {
	if c.leaf == nil || i < c.start || i >= c.end {
		c.seek(i)
	}
	return c.leaf.leafAt(i - c.start)
}

func (c *Cursor) seek(i int) {
	if i < 0 || i >= c.root.length {
		panic(fmt.Sprintf("rope: cursor index %d out of range [0:%d)", i, c.root.length))
	}
	n := c.root
	offset := 0
	for !n.isLeaf() {
		if i-offset < n.head.length {
			n = n.head
		} else {
			offset += n.head.length
			n = n.tail
		}
	}
	c.leaf = n
	c.start = offset
	c.end = offset + n.length
}
