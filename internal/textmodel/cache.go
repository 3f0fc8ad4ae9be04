package textmodel

const cacheSize = 12

// anchor is a known line start.
type anchor struct {
	line   int
	offset int
}

type cacheSlot struct {
	anchor
	set  bool
	prev int8
	next int8
}

// anchorCache holds up to cacheSize line anchors. Slot 0 is pinned to (0, 0);
// the other slots form a recency list (head is most recent) linked through
// indices, so promotion and eviction are O(1).
type anchorCache struct {
	slots [cacheSize]cacheSlot
	head  int8
	tail  int8
}

func newAnchorCache() *anchorCache {
	c := &anchorCache{head: 1, tail: cacheSize - 1}
	c.slots[0].set = true
	for i := 1; i < cacheSize; i++ {
		c.slots[i].prev = int8(i - 1)
		c.slots[i].next = int8(i + 1)
	}
	c.slots[1].prev = -1
	c.slots[cacheSize-1].next = -1
	return c
}

func (c *anchorCache) nearestByLine(line int) anchor {
	return c.nearest(line, func(a anchor) int { return a.line })
}

func (c *anchorCache) nearestByOffset(offset int) anchor {
	return c.nearest(offset, func(a anchor) int { return a.offset })
}

// nearest returns the anchor whose key is closest to target, scanning the
// pinned slot first and then from most to least recent. The first of equally
// distant anchors wins. The match becomes the most recent.
func (c *anchorCache) nearest(target int, key func(anchor) int) anchor {
	best := int8(0)
	bestDist := abs(target - key(c.slots[0].anchor))
	for i := c.head; i != -1; i = c.slots[i].next {
		s := &c.slots[i]
		if !s.set {
			continue
		}
		if d := abs(target - key(s.anchor)); d < bestDist {
			best, bestDist = i, d
		}
	}
	c.promote(best)
	return c.slots[best].anchor
}

func (c *anchorCache) promote(i int8) {
	if i == 0 || i == c.head {
		return
	}
	s := &c.slots[i]
	c.slots[s.prev].next = s.next
	if s.next == -1 {
		c.tail = s.prev
	} else {
		c.slots[s.next].prev = s.prev
	}
	s.prev = -1
	s.next = c.head
	c.slots[c.head].prev = i
	c.head = i
}

// update records that line starts at offset. Line 0 is fixed and ignored.
func (c *anchorCache) update(line, offset int) {
	if line <= 0 {
		return
	}
	for i := c.head; i != -1; i = c.slots[i].next {
		if s := &c.slots[i]; s.set && s.line == line {
			s.offset = offset
			return
		}
	}
	i := c.tail
	c.slots[i].anchor = anchor{line: line, offset: offset}
	c.slots[i].set = true
	c.promote(i)
}

// invalidate drops every anchor at or after offset.
func (c *anchorCache) invalidate(offset int) {
	for i := 1; i < cacheSize; i++ {
		if s := &c.slots[i]; s.set && s.offset >= offset {
			s.set = false
		}
	}
}

func (c *anchorCache) reset() {
	c.invalidate(0)
}

// anchors lists the set anchors from most to least recent, pinned first.
func (c *anchorCache) anchors() []anchor {
	out := []anchor{c.slots[0].anchor}
	for i := c.head; i != -1; i = c.slots[i].next {
		if c.slots[i].set {
			out = append(out, c.slots[i].anchor)
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
