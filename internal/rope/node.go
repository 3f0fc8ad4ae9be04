package rope

// BlockSize is the number of characters a leaf is chunked to. Concatenations
// whose result fits in one block are merged into a single leaf.
const BlockSize = 1 << 6

type nodeKind uint8

const (
	kindCompact   nodeKind = iota // one byte per character
	kindWide                      // one uint16 per character
	kindComposite                 // head + tail
)

// node is an immutable run of UTF-16 code units. It is a tagged union over
// the three kinds; only the fields of its kind are set.
type node struct {
	kind   nodeKind
	length int

	narrow []byte   // kindCompact
	wide   []uint16 // kindWide

	head *node // kindComposite
	tail *node
}

var emptyNode = &node{kind: kindCompact}

// leafOf builds a leaf over units, taking ownership of the slice. Text whose
// units all fit in 8 bits is stored compactly.
func leafOf(units []uint16) *node {
	if len(units) == 0 {
		return emptyNode
	}
	for _, u := range units {
		if u > 0xFF {
			return &node{kind: kindWide, length: len(units), wide: units}
		}
	}
	b := make([]byte, len(units))
	for i, u := range units {
		b[i] = byte(u)
	}
	return &node{kind: kindCompact, length: len(b), narrow: b}
}

func newComposite(head, tail *node) *node {
	return &node{
		kind:   kindComposite,
		length: head.length + tail.length,
		head:   head,
		tail:   tail,
	}
}

func (n *node) isLeaf() bool {
	return n.kind != kindComposite
}

// leafAt reads a character from a leaf without descending.
func (n *node) leafAt(i int) uint16 {
	if n.kind == kindCompact {
		return uint16(n.narrow[i])
	}
	return n.wide[i]
}

func (n *node) charAt(i int) uint16 {
	for n.kind == kindComposite {
		if i < n.head.length {
			n = n.head
		} else {
			i -= n.head.length
			n = n.tail
		}
	}
	return n.leafAt(i)
}

// getChars copies [start, end) into dst, which must hold end-start units.
func (n *node) getChars(start, end int, dst []uint16) {
	switch n.kind {
	case kindCompact:
		for i, b := range n.narrow[start:end] {
			dst[i] = uint16(b)
		}
	case kindWide:
		copy(dst, n.wide[start:end])
	default:
		cesure := n.head.length
		switch {
		case end <= cesure:
			n.head.getChars(start, end, dst)
		case start >= cesure:
			n.tail.getChars(start-cesure, end-cesure, dst)
		default:
			n.head.getChars(start, cesure, dst)
			n.tail.getChars(0, end-cesure, dst[cesure-start:])
		}
	}
}

func (n *node) subNode(start, end int) *node {
	if start == 0 && end == n.length {
		return n
	}
	if start == end {
		return emptyNode
	}
	switch n.kind {
	case kindCompact:
		b := make([]byte, end-start)
		copy(b, n.narrow[start:end])
		return &node{kind: kindCompact, length: len(b), narrow: b}
	case kindWide:
		units := make([]uint16, end-start)
		copy(units, n.wide[start:end])
		return leafOf(units)
	}
	cesure := n.head.length
	if end <= cesure {
		return n.head.subNode(start, end)
	}
	if start >= cesure {
		return n.tail.subNode(start-cesure, end-cesure)
	}
	return concatNodes(n.head.subNode(start, cesure), n.tail.subNode(0, end-cesure))
}

// rightRotation turns ((A, B), C) into (A, (B, C)).
func (n *node) rightRotation() *node {
	p := n.head
	if p.isLeaf() {
		return n
	}
	return newComposite(p.head, newComposite(p.tail, n.tail))
}

// leftRotation turns (A, (B, C)) into ((A, B), C).
func (n *node) leftRotation() *node {
	q := n.tail
	if q.isLeaf() {
		return n
	}
	return newComposite(newComposite(n.head, q.head), q.tail)
}

// concatNodes joins two non-empty nodes, keeping head and tail within a
// factor of two of each other where a rotation allows it.
func concatNodes(a, b *node) *node {
	length := a.length + b.length
	if length <= BlockSize {
		units := make([]uint16, length)
		a.getChars(0, a.length, units)
		b.getChars(0, b.length, units[a.length:])
		return leafOf(units)
	}
	head, tail := a, b
	switch {
	case head.length<<1 < tail.length && !tail.isLeaf():
		if tail.head.length > tail.tail.length {
			tail = tail.rightRotation()
		}
		head = concatNodes(head, tail.head)
		tail = tail.tail
	case tail.length<<1 < head.length && !head.isLeaf():
		if head.tail.length > head.head.length {
			head = head.leftRotation()
		}
		tail = concatNodes(head.tail, tail)
		head = head.head
	}
	return newComposite(head, tail)
}

// chunk splits a leaf into a balanced tree of block sized leaves, cutting on
// block boundaries.
func chunk(leaf *node, offset, length int) *node {
	if length <= BlockSize {
		return leaf.subNode(offset, offset+length)
	}
	half := ((length + BlockSize) >> 1) &^ (BlockSize - 1)
	return newComposite(chunk(leaf, offset, half), chunk(leaf, offset+half, length-half))
}

// walkLeaves visits the leaves in order until fn returns false.
func (n *node) walkLeaves(fn func(leaf *node) bool) bool {
	if n.isLeaf() {
		return fn(n)
	}
	return n.head.walkLeaves(fn) && n.tail.walkLeaves(fn)
}

func (n *node) depth() int {
	if n.isLeaf() {
		return 0
	}
	return 1 + max(n.head.depth(), n.tail.depth())
}
