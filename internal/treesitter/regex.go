package treesitter

import (
	"bytes"
	"regexp"
)

var (
	jsonString = regexp.MustCompile(`"(?:[^"\\]|\\.)*"`)
	jsonNumber = regexp.MustCompile(`-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?`)
	jsonWord   = regexp.MustCompile(`\b(?:true|false|null)\b`)

	gitComment = regexp.MustCompile(`^\s*#.*`)
	gitNegate  = regexp.MustCompile(`^!`)
	gitGlob    = regexp.MustCompile(`[*?]|\[.+?\]`)
)

type lineTokenizer func(line []byte, base int, out []span) []span

var regexTokenizers = map[string]lineTokenizer{
	"json":      jsonLine,
	"gitignore": gitignoreLine,
}

// tokenizeLines runs fn over each LF-separated line of src[from:to].
func tokenizeLines(fn lineTokenizer, src []byte, from, to int, out []span) []span {
	for from < to {
		end := bytes.IndexByte(src[from:to], '\n')
		if end < 0 {
			end = to
		} else {
			end += from
		}
		out = fn(bytes.TrimSuffix(src[from:end], []byte{'\r'}), from, out)
		from = end + 1
	}
	return out
}

func jsonLine(line []byte, base int, out []span) []span {
	strs := jsonString.FindAllIndex(line, -1)
	inString := func(at int) bool {
		for _, loc := range strs {
			if at >= loc[0] && at < loc[1] {
				return true
			}
		}
		return false
	}
	for _, loc := range strs {
		kind := "string"
		if rest := bytes.TrimLeft(line[loc[1]:], " \t"); len(rest) > 0 && rest[0] == ':' {
			kind = "field"
		}
		out = append(out, span{kind: kind, start: base + loc[0], end: base + loc[1]})
	}
	for _, loc := range jsonNumber.FindAllIndex(line, -1) {
		if !inString(loc[0]) {
			out = append(out, span{kind: "number", start: base + loc[0], end: base + loc[1]})
		}
	}
	for _, loc := range jsonWord.FindAllIndex(line, -1) {
		if !inString(loc[0]) {
			out = append(out, span{kind: "constant", start: base + loc[0], end: base + loc[1]})
		}
	}
	return out
}

func gitignoreLine(line []byte, base int, out []span) []span {
	if len(line) == 0 {
		return out
	}
	if gitComment.Match(line) {
		return append(out, span{kind: "comment", start: base, end: base + len(line)})
	}
	if gitNegate.Match(line) {
		out = append(out, span{kind: "keyword", start: base, end: base + 1})
	}
	for _, loc := range gitGlob.FindAllIndex(line, -1) {
		out = append(out, span{kind: "operator", start: base + loc[0], end: base + loc[1]})
	}
	return out
}
