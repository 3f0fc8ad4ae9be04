package treesitter

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// markdownSpans adds inline markup and fenced code tokens, which the block
// grammar leaves opaque.
func (e *Engine) markdownSpans(ctx context.Context, root *sitter.Node, src []byte, out []span) []span {
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil {
			continue
		}
		switch n.Type() {
		case "inline":
			out = e.embeddedSpans(ctx, markdownInline, src, int(n.StartByte()), int(n.EndByte()), out)
			continue
		case "fenced_code_block":
			out = e.fenceSpans(ctx, n, src, out)
			continue
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			stack = append(stack, n.NamedChild(i))
		}
	}
	return out
}

func (e *Engine) fenceSpans(ctx context.Context, block *sitter.Node, src []byte, out []span) []span {
	var lang string
	var content *sitter.Node
	for i := 0; i < int(block.NamedChildCount()); i++ {
		child := block.NamedChild(i)
		switch child.Type() {
		case "info_string":
			lang = fenceLang(child, src)
		case "code_fence_content":
			content = child
		}
	}
	if content == nil {
		return out
	}
	from, to := int(content.StartByte()), int(content.EndByte())
	if fn, ok := regexTokenizers[lang]; ok {
		return tokenizeLines(fn, src, from, to, out)
	}
	if _, ok := grammars[lang]; !ok || lang == "markdown" {
		return append(out, span{kind: "string", start: from, end: to})
	}
	return e.embeddedSpans(ctx, lang, src, from, to, out)
}

// embeddedSpans parses src[from:to] on its own with the named grammar.
func (e *Engine) embeddedSpans(ctx context.Context, lang string, src []byte, from, to int, out []span) []span {
	parser, query := e.parserFor(lang), e.queryFor(lang)
	if parser == nil || query == nil || to <= from {
		return out
	}
	part := src[from:to]
	tree, err := parser.ParseCtx(ctx, nil, part)
	if err != nil || tree == nil {
		return out
	}
	return querySpans(query, tree.RootNode(), part, from, out)
}

func fenceLang(info *sitter.Node, src []byte) string {
	text := info.Content(src)
	for i := 0; i < int(info.NamedChildCount()); i++ {
		if child := info.NamedChild(i); child.Type() == "language" {
			text = child.Content(src)
		}
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	s := strings.TrimPrefix(strings.TrimSuffix(strings.TrimPrefix(fields[0], "{"), "}"), ".")
	switch s = strings.ToLower(s); s {
	case "golang":
		return "go"
	case "yml":
		return "yaml"
	case "shell", "sh", "zsh":
		return "bash"
	case "jsonc":
		return "json"
	}
	return s
}
