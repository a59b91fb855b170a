package ember

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/ini.v1"
)

// Theme holds the resolved style of every renderable element. Syntax styles
// are indexed by token; UI elements are named fields. Color-only elements
// (selection, search, cursor line) carry just a background tint.
type Theme struct {
	Name string

	Background RGB
	Foreground RGB

	Syntax [tokenCount]Style

	StatusBar  Style
	MessageBar Style
	Gutter     Style
	GutterActv Style

	CursorLine    RGB
	Selection     RGB
	SearchMatch   RGB
	SearchCurrent RGB

	WrapIndicator rune
}

// tokenElements maps theme-file element names to syntax tokens.
var tokenElements = map[string]Token{
	"normal":          TokenNormal,
	"keyword":         TokenKeyword,
	"type":            TokenType,
	"string":          TokenString,
	"number":          TokenNumber,
	"comment":         TokenComment,
	"preprocessor":    TokenPreproc,
	"function":        TokenFunction,
	"operator":        TokenOperator,
	"bracket":         TokenBracket,
	"escape":          TokenEscape,
	"header1":         TokenHeader1,
	"header2":         TokenHeader2,
	"header3":         TokenHeader3,
	"header4":         TokenHeader4,
	"header5":         TokenHeader5,
	"header6":         TokenHeader6,
	"bold":            TokenBold,
	"italic":          TokenItalic,
	"bold_italic":     TokenBoldItalic,
	"strikethrough":   TokenStrike,
	"code_span":       TokenCodeSpan,
	"code_block":      TokenCodeBlock,
	"fence_open":      TokenFenceOpen,
	"fence_close":     TokenFenceClose,
	"link_text":       TokenLinkText,
	"link_url":        TokenLinkURL,
	"image":           TokenImage,
	"blockquote":      TokenBlockquote,
	"list_marker":     TokenListMarker,
	"horizontal_rule": TokenHRule,
	"table":           TokenTable,
	"table_sep":       TokenTableSep,
	"table_header":    TokenTableHeader,
	"task_marker":     TokenTaskMarker,
}

// DefaultTheme is the built-in dark theme used when no theme file loads.
func DefaultTheme() *Theme {
	t := &Theme{
		Name:          "default",
		Background:    RGB{0x1e, 0x1e, 0x2e},
		Foreground:    RGB{0xcd, 0xd6, 0xf4},
		CursorLine:    RGB{0x2a, 0x2b, 0x3c},
		Selection:     RGB{0x45, 0x47, 0x5a},
		SearchMatch:   RGB{0x3e, 0x54, 0x2e},
		SearchCurrent: RGB{0x6c, 0x7f, 0x34},
		WrapIndicator: '↪',
	}
	set := func(tok Token, fg RGB, attr AttrMask) {
		t.Syntax[tok] = Style{Fg: fg, Bg: t.Background, Attr: attr}
	}
	for tok := Token(0); tok < tokenCount; tok++ {
		set(tok, t.Foreground, AttrNone)
	}
	set(TokenKeyword, RGB{0xcb, 0xa6, 0xf7}, AttrNone)
	set(TokenType, RGB{0xf9, 0xe2, 0xaf}, AttrNone)
	set(TokenString, RGB{0xa6, 0xe3, 0xa1}, AttrNone)
	set(TokenNumber, RGB{0xfa, 0xb3, 0x87}, AttrNone)
	set(TokenComment, RGB{0x6c, 0x70, 0x86}, AttrItalic)
	set(TokenPreproc, RGB{0xf5, 0xc2, 0xe7}, AttrNone)
	set(TokenFunction, RGB{0x89, 0xb4, 0xfa}, AttrNone)
	set(TokenOperator, RGB{0x94, 0xe2, 0xd5}, AttrNone)
	set(TokenBracket, RGB{0xb4, 0xbe, 0xfe}, AttrNone)
	set(TokenEscape, RGB{0xf3, 0x8b, 0xa8}, AttrNone)
	for lvl := 0; lvl < 6; lvl++ {
		set(TokenHeader1+Token(lvl), RGB{0x89, 0xdc, 0xeb}, AttrBold)
	}
	set(TokenBold, t.Foreground, AttrBold)
	set(TokenItalic, t.Foreground, AttrItalic)
	set(TokenBoldItalic, t.Foreground, AttrBold|AttrItalic)
	set(TokenStrike, RGB{0x6c, 0x70, 0x86}, AttrStrike)
	set(TokenCodeSpan, RGB{0xa6, 0xe3, 0xa1}, AttrNone)
	set(TokenCodeBlock, RGB{0xa6, 0xe3, 0xa1}, AttrNone)
	set(TokenFenceOpen, RGB{0x6c, 0x70, 0x86}, AttrNone)
	set(TokenFenceClose, RGB{0x6c, 0x70, 0x86}, AttrNone)
	set(TokenLinkText, RGB{0x89, 0xb4, 0xfa}, AttrUnderline)
	set(TokenLinkURL, RGB{0x6c, 0x70, 0x86}, AttrNone)
	set(TokenImage, RGB{0xf5, 0xc2, 0xe7}, AttrNone)
	set(TokenBlockquote, RGB{0x6c, 0x70, 0x86}, AttrItalic)
	set(TokenListMarker, RGB{0xcb, 0xa6, 0xf7}, AttrNone)
	set(TokenHRule, RGB{0x6c, 0x70, 0x86}, AttrNone)
	set(TokenTable, t.Foreground, AttrNone)
	set(TokenTableSep, RGB{0x6c, 0x70, 0x86}, AttrNone)
	set(TokenTableHeader, t.Foreground, AttrBold)
	set(TokenTaskMarker, RGB{0xa6, 0xe3, 0xa1}, AttrNone)

	t.StatusBar = Style{Fg: t.Background, Bg: RGB{0x89, 0xb4, 0xfa}, Attr: AttrBold}
	t.MessageBar = Style{Fg: t.Foreground, Bg: t.Background}
	t.Gutter = Style{Fg: RGB{0x58, 0x5b, 0x70}, Bg: t.Background}
	t.GutterActv = Style{Fg: RGB{0xcd, 0xd6, 0xf4}, Bg: t.CursorLine, Attr: AttrBold}
	return t
}

// LoadTheme reads an INI theme file over the default theme: `key=value`
// lines, '#' comments, 6-hex-digit colors with optional '#', '+'-separated
// attribute lists. Unknown keys are silently ignored; malformed values fail
// the load.
func LoadTheme(path string) (*Theme, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, path)
	if err != nil {
		return nil, err
	}
	t := DefaultTheme()
	for _, key := range cfg.Section("").Keys() {
		if err := t.applyKey(key.Name(), key.Value()); err != nil {
			return nil, fmt.Errorf("theme %s: %w", path, err)
		}
	}
	t.resolve()
	return t, nil
}

// applyKey applies one theme entry. Element styles use `<element>_fg`,
// `<element>_bg`, `<element>_attr`; color-only elements use the bare name.
func (t *Theme) applyKey(name, value string) error {
	name = strings.ToLower(name)

	// Color-only elements.
	switch name {
	case "background":
		c, err := ParseRGB(value)
		if err != nil {
			return err
		}
		t.Background = c
		return nil
	case "foreground":
		c, err := ParseRGB(value)
		if err != nil {
			return err
		}
		t.Foreground = c
		return nil
	case "cursor_line":
		c, err := ParseRGB(value)
		if err != nil {
			return err
		}
		t.CursorLine = c
		return nil
	case "selection":
		c, err := ParseRGB(value)
		if err != nil {
			return err
		}
		t.Selection = c
		return nil
	case "search_match":
		c, err := ParseRGB(value)
		if err != nil {
			return err
		}
		t.SearchMatch = c
		return nil
	case "search_current":
		c, err := ParseRGB(value)
		if err != nil {
			return err
		}
		t.SearchCurrent = c
		return nil
	}

	element, field, ok := splitStyleKey(name)
	if !ok {
		return nil // unknown keys are ignored
	}
	var style *Style
	if tok, found := tokenElements[element]; found {
		style = &t.Syntax[tok]
	} else {
		switch element {
		case "status_bar":
			style = &t.StatusBar
		case "message_bar":
			style = &t.MessageBar
		case "gutter":
			style = &t.Gutter
		case "gutter_active":
			style = &t.GutterActv
		default:
			return nil
		}
	}
	switch field {
	case "fg":
		c, err := ParseRGB(value)
		if err != nil {
			return err
		}
		style.Fg = c
	case "bg":
		c, err := ParseRGB(value)
		if err != nil {
			return err
		}
		style.Bg = c
	case "attr":
		mask, err := ParseAttrs(value)
		if err != nil {
			return err
		}
		style.Attr = mask
	}
	return nil
}

// splitStyleKey splits "keyword_fg" into ("keyword", "fg").
func splitStyleKey(name string) (element, field string, ok bool) {
	i := strings.LastIndex(name, "_")
	if i < 0 {
		return "", "", false
	}
	field = name[i+1:]
	if field != "fg" && field != "bg" && field != "attr" {
		return "", "", false
	}
	return name[:i], field, true
}

// resolve rebases syntax backgrounds that still sit on the default
// background onto the loaded one, then enforces contrast.
func (t *Theme) resolve() {
	def := DefaultTheme()
	for i := range t.Syntax {
		if t.Syntax[i].Bg == def.Background {
			t.Syntax[i].Bg = t.Background
		}
	}
	t.ApplyContrast()
}

// minContrast is the WCAG 2.1 ratio every themed foreground must reach
// against its background.
const minContrast = 4.5

// contrastSteps bounds the push-toward-pole iteration.
const contrastSteps = 8

// luminance returns the WCAG relative luminance of c.
func luminance(c RGB) float64 {
	col := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	r, g, b := col.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// ContrastRatio returns the WCAG 2.1 contrast ratio between two colors.
func ContrastRatio(a, b RGB) float64 {
	la, lb := luminance(a), luminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

// ensureContrast nudges fg until it reads against bg: each step halves the
// channel distance to the pole (white on dark backgrounds, black on light).
// If the bounded iteration never reaches the ratio, the pole itself wins.
func ensureContrast(fg, bg RGB) RGB {
	if ContrastRatio(fg, bg) >= minContrast {
		return fg
	}
	toWhite := luminance(bg) < 0.5
	c := fg
	for i := 0; i < contrastSteps; i++ {
		if toWhite {
			c = RGB{
				R: c.R + (255-c.R)/2,
				G: c.G + (255-c.G)/2,
				B: c.B + (255-c.B)/2,
			}
		} else {
			c = RGB{R: c.R / 2, G: c.G / 2, B: c.B / 2}
		}
		if ContrastRatio(c, bg) >= minContrast {
			return c
		}
	}
	if toWhite {
		return RGB{255, 255, 255}
	}
	return RGB{0, 0, 0}
}

// ApplyContrast runs the WCAG pass over every themed foreground.
func (t *Theme) ApplyContrast() {
	for i := range t.Syntax {
		t.Syntax[i].Fg = ensureContrast(t.Syntax[i].Fg, t.Syntax[i].Bg)
	}
	t.StatusBar.Fg = ensureContrast(t.StatusBar.Fg, t.StatusBar.Bg)
	t.MessageBar.Fg = ensureContrast(t.MessageBar.Fg, t.MessageBar.Bg)
	t.Gutter.Fg = ensureContrast(t.Gutter.Fg, t.Gutter.Bg)
	t.GutterActv.Fg = ensureContrast(t.GutterActv.Fg, t.GutterActv.Bg)
}
