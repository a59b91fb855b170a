package ember

import "testing"

func tokensOf(b *Buffer, row int) []Token {
	l := b.Line(row)
	out := make([]Token, l.Len())
	for i := range l.cells {
		out[i] = l.cells[i].Syntax
	}
	return out
}

func expectTokens(t *testing.T, b *Buffer, row, start, end int, want Token) {
	t.Helper()
	toks := tokensOf(b, row)
	for i := start; i < end; i++ {
		if toks[i] != want {
			t.Errorf("row %d cell %d: expected token %d, got %d", row, i, want, toks[i])
		}
	}
}

func TestCHighlightTypesAndFunctions(t *testing.T) {
	b := LoadBytes([]byte("int main(void) {\n\treturn 0;\n}\n"), "a.c")

	expectTokens(t, b, 0, 0, 3, TokenType)     // int
	expectTokens(t, b, 0, 4, 8, TokenFunction) // main
	expectTokens(t, b, 0, 9, 13, TokenType)    // void
	expectTokens(t, b, 1, 1, 7, TokenKeyword)  // return
	expectTokens(t, b, 1, 8, 9, TokenNumber)   // 0
}

func TestCHighlightStrings(t *testing.T) {
	b := LoadBytes([]byte(`printf("hi %d\n", x);`+"\n"), "a.c")
	// Opening quote through the escape and closing quote.
	expectTokens(t, b, 0, 7, 13, TokenString)
	expectTokens(t, b, 0, 13, 15, TokenEscape) // \n
	expectTokens(t, b, 0, 15, 16, TokenString) // closing quote
}

func TestCHighlightCharLiteral(t *testing.T) {
	b := LoadBytes([]byte("char c = 'x';\n"), "a.c")
	expectTokens(t, b, 0, 9, 12, TokenString)
}

func TestCHighlightLineComment(t *testing.T) {
	b := LoadBytes([]byte("x = 1; // trailing note\n"), "a.c")
	expectTokens(t, b, 0, 7, 23, TokenComment)
}

func TestCHighlightBlockComment(t *testing.T) {
	b := LoadBytes([]byte("/* a\nb */ x\n"), "a.c")

	expectTokens(t, b, 0, 0, 4, TokenComment)
	expectTokens(t, b, 1, 0, 4, TokenComment)
	// After the closer the pass leaves the comment.
	expectTokens(t, b, 1, 5, 6, TokenNormal)
}

func TestCHighlightPreprocessor(t *testing.T) {
	b := LoadBytes([]byte("#include <stdio.h>\n"), "a.c")
	expectTokens(t, b, 0, 0, 18, TokenPreproc)

	// '#' not at line start is not a directive.
	b = LoadBytes([]byte("x # y\n"), "a.c")
	expectTokens(t, b, 0, 2, 3, TokenOperator)
}

func TestCHighlightNumbers(t *testing.T) {
	b := LoadBytes([]byte("a = 0xFF + 3.14 + 42UL;\n"), "a.c")
	expectTokens(t, b, 0, 4, 8, TokenNumber)   // 0xFF
	expectTokens(t, b, 0, 11, 15, TokenNumber) // 3.14
	expectTokens(t, b, 0, 18, 22, TokenNumber) // 42UL
}

func TestCHighlightBracketsAndOperators(t *testing.T) {
	b := LoadBytes([]byte("a[i] = b + c;\n"), "a.c")
	expectTokens(t, b, 0, 1, 2, TokenBracket)
	expectTokens(t, b, 0, 3, 4, TokenBracket)
	expectTokens(t, b, 0, 5, 6, TokenOperator) // =
	expectTokens(t, b, 0, 9, 10, TokenOperator) // +
}

func TestCHighlightFunctionWithSpaces(t *testing.T) {
	b := LoadBytes([]byte("foo  (x)\n"), "a.c")
	expectTokens(t, b, 0, 0, 3, TokenFunction)
}

func TestHighlighterDispatch(t *testing.T) {
	tests := []struct {
		name string
		isC  bool
		isMD bool
	}{
		{"a.c", true, false},
		{"a.h", true, false},
		{"a.cpp", true, false},
		{"a.cxx", true, false},
		{"README.md", false, true},
		{"a.markdown", false, true},
		{"a.mdx", false, true},
		{"a.txt", false, false},
		{"Makefile", false, false},
	}
	for _, tt := range tests {
		h := HighlighterFor(tt.name)
		_, c := h.(*CHighlighter)
		_, md := h.(*MarkdownHighlighter)
		if c != tt.isC || md != tt.isMD {
			t.Errorf("%s: wrong highlighter %T", tt.name, h)
		}
	}
}

func TestPlainKeepsNormal(t *testing.T) {
	b := LoadBytes([]byte("int main /* c */\n"), "a.txt")
	expectTokens(t, b, 0, 0, b.Line(0).Len(), TokenNormal)
}
