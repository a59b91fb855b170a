package ember

import "testing"

func TestMarkdownHeaders(t *testing.T) {
	b := LoadBytes([]byte("# Title\n### Sub\n####### not a header\n#nospace\n"), "a.md")

	expectTokens(t, b, 0, 0, 7, TokenHeader1)
	expectTokens(t, b, 1, 0, 7, TokenHeader3)
	expectTokens(t, b, 2, 0, 7, TokenNormal) // seven hashes
	expectTokens(t, b, 3, 0, 8, TokenNormal) // missing space
}

func TestMarkdownHeaderDelimiterHideable(t *testing.T) {
	b := LoadBytes([]byte("## Title\n"), "a.md")
	l := b.Line(0)
	if !l.Cell(0).HasFlag(FlagHideable) || !l.Cell(1).HasFlag(FlagHideable) {
		t.Error("expected header hashes to be hideable")
	}
	if l.Cell(4).HasFlag(FlagHideable) {
		t.Error("header text must not be hideable")
	}
}

func TestMarkdownBlockquote(t *testing.T) {
	b := LoadBytes([]byte("> quoted\n> > nested\n"), "a.md")
	expectTokens(t, b, 0, 0, 2, TokenBlockquote)
	expectTokens(t, b, 1, 0, 4, TokenBlockquote)
}

func TestMarkdownHorizontalRule(t *testing.T) {
	b := LoadBytes([]byte("---\n* * *\n- - x\n"), "a.md")
	expectTokens(t, b, 0, 0, 3, TokenHRule)
	expectTokens(t, b, 1, 0, 5, TokenHRule)
	if tokensOf(b, 2)[0] == TokenHRule {
		t.Error("mixed content is not a horizontal rule")
	}
}

func TestMarkdownLists(t *testing.T) {
	b := LoadBytes([]byte("- item\n1. first\n2) second\n- [x] done\n"), "a.md")

	expectTokens(t, b, 0, 0, 1, TokenListMarker)
	expectTokens(t, b, 1, 0, 2, TokenListMarker)
	expectTokens(t, b, 2, 0, 2, TokenListMarker)
	expectTokens(t, b, 3, 2, 5, TokenTaskMarker)
}

func TestMarkdownCodeSpan(t *testing.T) {
	b := LoadBytes([]byte("use `go vet` here\n"), "a.md")
	expectTokens(t, b, 0, 4, 12, TokenCodeSpan)
	l := b.Line(0)
	if !l.Cell(4).HasFlag(FlagHideable) || !l.Cell(11).HasFlag(FlagHideable) {
		t.Error("expected backtick delimiters hideable")
	}
	if l.Cell(6).HasFlag(FlagHideable) {
		t.Error("span content must not be hideable")
	}
}

func TestMarkdownUnterminatedCodeSpan(t *testing.T) {
	b := LoadBytes([]byte("a `broken\n"), "a.md")
	expectTokens(t, b, 0, 2, 3, TokenNormal)
}

func TestMarkdownEmphasis(t *testing.T) {
	b := LoadBytes([]byte("a *i* and **b** and ***bi*** end\n"), "a.md")
	expectTokens(t, b, 0, 2, 5, TokenItalic)
	expectTokens(t, b, 0, 10, 15, TokenBold)
	expectTokens(t, b, 0, 20, 28, TokenBoldItalic)
}

func TestMarkdownEmphasisFlanking(t *testing.T) {
	// "* " is not left-flanking, so no emphasis opens.
	b := LoadBytes([]byte("2 * 3 * 4\n"), "a.md")
	for i, tok := range tokensOf(b, 0) {
		if tok == TokenItalic || tok == TokenBold {
			t.Errorf("cell %d: spaced asterisks must not emphasize", i)
		}
	}
}

func TestMarkdownStrikethrough(t *testing.T) {
	b := LoadBytes([]byte("a ~~gone~~ b\n"), "a.md")
	expectTokens(t, b, 0, 2, 10, TokenStrike)
}

func TestMarkdownLink(t *testing.T) {
	b := LoadBytes([]byte("see [docs](https://x.dev) now\n"), "a.md")
	expectTokens(t, b, 0, 4, 10, TokenLinkText)
	expectTokens(t, b, 0, 10, 25, TokenLinkURL)

	l := b.Line(0)
	// The whole url region collapses in hybrid rendering.
	for col := 10; col < 25; col++ {
		if !l.Cell(col).HasFlag(FlagHideable) {
			t.Errorf("col %d: expected url region hideable", col)
		}
	}
	if l.Cell(5).HasFlag(FlagHideable) {
		t.Error("link text must stay visible")
	}
}

func TestMarkdownImage(t *testing.T) {
	b := LoadBytes([]byte("![alt](img.png)\n"), "a.md")
	expectTokens(t, b, 0, 0, 6, TokenImage)
	expectTokens(t, b, 0, 6, 15, TokenLinkURL)
}

func TestMarkdownEscape(t *testing.T) {
	b := LoadBytes([]byte("not \\*bold\\*\n"), "a.md")
	expectTokens(t, b, 0, 4, 6, TokenEscape)
	for i, tok := range tokensOf(b, 0) {
		if tok == TokenItalic {
			t.Errorf("cell %d: escaped asterisk must not emphasize", i)
		}
	}
}

func TestMarkdownFencedCodeBlock(t *testing.T) {
	src := "text\n```go\ncode here\n*not emphasis*\n```\nafter\n"
	b := LoadBytes([]byte(src), "a.md")

	expectTokens(t, b, 1, 0, 5, TokenFenceOpen)
	expectTokens(t, b, 2, 0, 9, TokenCodeBlock)
	expectTokens(t, b, 3, 0, 14, TokenCodeBlock)
	expectTokens(t, b, 4, 0, 3, TokenFenceClose)
	if tokensOf(b, 5)[0] != TokenNormal {
		t.Error("text after the closing fence is normal")
	}

	// Closing fence lines collapse entirely in hybrid rendering.
	l := b.Line(4)
	for col := 0; col < l.Len(); col++ {
		if !l.Cell(col).HasFlag(FlagHideable) {
			t.Errorf("col %d: closing fence must be hideable", col)
		}
	}
}

func TestMarkdownTildeFence(t *testing.T) {
	b := LoadBytes([]byte("~~~~\ncode\n~~~\nstill code\n~~~~\n"), "a.md")
	// A closing fence must be at least as long as the opener, so the
	// three-tilde line stays inside the block.
	expectTokens(t, b, 1, 0, 4, TokenCodeBlock)
	expectTokens(t, b, 2, 0, 3, TokenCodeBlock)
	expectTokens(t, b, 3, 0, 10, TokenCodeBlock)
	expectTokens(t, b, 4, 0, 4, TokenFenceClose)
}

func TestMarkdownTable(t *testing.T) {
	src := "| a | b |\n|---|---|\n| 1 | 2 |\n"
	b := LoadBytes([]byte(src), "a.md")
	expectTokens(t, b, 0, 0, 9, TokenTableHeader)
	expectTokens(t, b, 1, 0, 9, TokenTableSep)
	expectTokens(t, b, 2, 0, 9, TokenTable)
}

func TestMarkdownElementCache(t *testing.T) {
	b := LoadBytes([]byte("a **bold** z\n"), "a.md")
	md, ok := b.hl.(*MarkdownHighlighter)
	if !ok {
		t.Fatal("expected markdown highlighter")
	}

	el, found := md.ElementAt(0, 5)
	if !found {
		t.Fatal("expected an element covering the bold span")
	}
	if el.Token != TokenBold {
		t.Errorf("expected bold element, got %d", el.Token)
	}
	if el.StartCol != 2 || el.EndCol != 10 {
		t.Errorf("expected element [2,10), got [%d,%d)", el.StartCol, el.EndCol)
	}

	l := b.Line(0)
	if !l.Cell(2).HasFlag(FlagElementStart) {
		t.Error("expected element start flag")
	}
	if !l.Cell(9).HasFlag(FlagElementEnd) {
		t.Error("expected element end flag")
	}

	if _, found := md.ElementAt(0, 0); found {
		t.Error("plain cells belong to no element")
	}
}
