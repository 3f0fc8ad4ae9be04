package treesitter

import (
	"cmp"
	"slices"

	sitter "github.com/smacker/go-tree-sitter"
)

// Token is a highlighted range in UTF-16 unit offsets of the model.
type Token struct {
	Kind  string
	Start int
	Stop  int
}

// span is a token in byte offsets of the encoded source.
type span struct {
	kind  string
	start int
	end   int
}

// querySpans runs q over node and appends a span per capture, shifted by
// base bytes.
func querySpans(q *sitter.Query, node *sitter.Node, src []byte, base int, out []span) []span {
	if q == nil || node == nil {
		return out
	}
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q, node)
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		match = cursor.FilterPredicates(match, src)
		if match == nil {
			continue
		}
		for _, capture := range match.Captures {
			out = append(out, span{
				kind:  q.CaptureNameForId(capture.Index),
				start: base + int(capture.Node.StartByte()),
				end:   base + int(capture.Node.EndByte()),
			})
		}
	}
	return out
}

// finish converts spans to unit offsets and orders them by start, then
// stop. Of several spans over the same range only the highest Priority is
// kept; the earliest wins a tie.
func finish(spans []span, src source) []Token {
	toks := make([]Token, 0, len(spans))
	for _, s := range spans {
		t := Token{Kind: s.kind, Start: src.unitAt(s.start), Stop: src.unitAt(s.end)}
		if t.Stop > t.Start {
			toks = append(toks, t)
		}
	}
	slices.SortStableFunc(toks, func(a, b Token) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.Stop, b.Stop)
	})
	out := toks[:0]
	for _, t := range toks {
		if n := len(out); n > 0 && out[n-1].Start == t.Start && out[n-1].Stop == t.Stop {
			if Priority(t.Kind) > Priority(out[n-1].Kind) {
				out[n-1] = t
			}
			continue
		}
		out = append(out, t)
	}
	return slices.Clip(out)
}
