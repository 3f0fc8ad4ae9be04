package rope

import "sync"

// Paint measures and draws linear runs of UTF-16 code units. It carries its
// own style context; the rope only decides which run to hand over.
type Paint interface {
	DrawText(run []uint16, x, y int)
	MeasureText(run []uint16) int
	// TextWidths stores the width of each unit of run into widths and
	// returns the number of widths written.
	TextWidths(run []uint16, widths []int) int
}

const maxPooledRun = 1000

var runPool = sync.Pool{
	New: func() any {
		buf := make([]uint16, 0, BlockSize*2)
		return &buf
	},
}

// obtainRun returns a scratch buffer of length n.
func obtainRun(n int) *[]uint16 {
	p := runPool.Get().(*[]uint16)
	if cap(*p) < n {
		buf := make([]uint16, n)
		p = &buf
	}
	*p = (*p)[:n]
	return p
}

func recycleRun(p *[]uint16) {
	if cap(*p) > maxPooledRun {
		return
	}
	runPool.Put(p)
}

// withRun hands p a contiguous view of [start, end). Wide leaves are passed
// through; compact leaves and ranges crossing a cesure are materialized into
// a scratch buffer first.
func (n *node) withRun(start, end int, fn func(run []uint16)) {
	switch n.kind {
	case kindWide:
		fn(n.wide[start:end])
		return
	case kindComposite:
		cesure := n.head.length
		if end <= cesure {
			n.head.withRun(start, end, fn)
			return
		}
		if start >= cesure {
			n.tail.withRun(start-cesure, end-cesure, fn)
			return
		}
	}
	tmp := obtainRun(end - start)
	n.getChars(start, end, *tmp)
	fn(*tmp)
	recycleRun(tmp)
}

func (n *node) drawText(start, end, x, y int, p Paint) {
	n.withRun(start, end, func(run []uint16) { p.DrawText(run, x, y) })
}

func (n *node) measureText(start, end int, p Paint) int {
	var w int
	n.withRun(start, end, func(run []uint16) { w = p.MeasureText(run) })
	return w
}

func (n *node) textWidths(start, end int, widths []int, p Paint) int {
	var count int
	n.withRun(start, end, func(run []uint16) { count = p.TextWidths(run, widths) })
	return count
}
