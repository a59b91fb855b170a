package ember

import "unicode/utf8"

// Key identifies a decoded key press.
type Key int

const (
	KeyNone Key = iota
	KeyRune
	KeyEnter
	KeyTab
	KeyBackspace
	KeyEscape
	KeyArrowUp
	KeyArrowDown
	KeyArrowRight
	KeyArrowLeft
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyDelete
	KeyF2
)

// Modifiers is a bitmask of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
)

// EventKind discriminates decoded terminal events.
type EventKind int

const (
	EventNone EventKind = iota
	EventKey
	EventMouse
)

// MouseButton identifies the button of a mouse event.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
	MouseRelease
)

// KeyEvent is one decoded key press. Rune is set when Key is KeyRune.
type KeyEvent struct {
	Key  Key
	Rune rune
	Mod  Modifiers
}

// MouseEvent is one decoded SGR mouse report. Row and Col are zero-based
// screen coordinates.
type MouseEvent struct {
	Button MouseButton
	Row    int
	Col    int
	Press  bool
	Mod    Modifiers
	Motion bool
}

// Event is one decoded terminal input event.
type Event struct {
	Kind  EventKind
	Key   KeyEvent
	Mouse MouseEvent
}

// DecodeInput decodes the first event from buf, returning it and the number
// of bytes consumed. A zero consumed count means the bytes so far are an
// incomplete sequence and the caller should read more; an EventNone with a
// positive count skips undecodable input.
func DecodeInput(buf []byte) (Event, int) {
	if len(buf) == 0 {
		return Event{}, 0
	}
	b := buf[0]
	switch {
	case b == 0x1b:
		return decodeEscape(buf)
	case b == '\r':
		return keyEvent(KeyEnter, 0, 0), 1
	case b == '\t':
		return keyEvent(KeyTab, 0, 0), 1
	case b == 0x7f:
		return keyEvent(KeyBackspace, 0, 0), 1
	case b == 0x08:
		return keyEvent(KeyBackspace, 0, ModCtrl), 1
	case b < 0x20:
		// Ctrl-A through Ctrl-Z arrive as bytes 1..26.
		if b >= 1 && b <= 26 {
			return keyEvent(KeyRune, rune('a'+b-1), ModCtrl), 1
		}
		return Event{}, 1
	case b < utf8.RuneSelf:
		return keyEvent(KeyRune, rune(b), 0), 1
	default:
		if !utf8.FullRune(buf) {
			return Event{}, 0
		}
		r, size := utf8.DecodeRune(buf)
		return keyEvent(KeyRune, r, 0), size
	}
}

func keyEvent(k Key, r rune, m Modifiers) Event {
	return Event{Kind: EventKey, Key: KeyEvent{Key: k, Rune: r, Mod: m}}
}

// decodeEscape handles sequences starting with ESC: bare escape, alt-key,
// CSI keys, and SGR mouse.
func decodeEscape(buf []byte) (Event, int) {
	if len(buf) == 1 {
		return keyEvent(KeyEscape, 0, 0), 1
	}
	if buf[1] != '[' {
		// ESC prefix on an ordinary key is alt.
		ev, n := DecodeInput(buf[1:])
		if n == 0 {
			return Event{}, 0
		}
		if ev.Kind == EventKey {
			ev.Key.Mod |= ModAlt
		}
		return ev, n + 1
	}
	if len(buf) < 3 {
		return Event{}, 0
	}
	if buf[2] == '<' {
		return decodeSGRMouse(buf)
	}

	// Collect parameter bytes up to the final letter or '~'.
	i := 2
	params := []int{0}
	haveDigits := false
	for ; i < len(buf); i++ {
		c := buf[i]
		switch {
		case c >= '0' && c <= '9':
			params[len(params)-1] = params[len(params)-1]*10 + int(c-'0')
			haveDigits = true
		case c == ';':
			params = append(params, 0)
			haveDigits = true
		default:
			return decodeCSIFinal(c, params, haveDigits, i+1)
		}
	}
	return Event{}, 0
}

// csiModifiers decodes the xterm modifier parameter: value-1 is a bitmask
// of shift(1), alt(2), ctrl(4).
func csiModifiers(p int) Modifiers {
	if p < 2 {
		return 0
	}
	bits := p - 1
	var m Modifiers
	if bits&1 != 0 {
		m |= ModShift
	}
	if bits&2 != 0 {
		m |= ModAlt
	}
	if bits&4 != 0 {
		m |= ModCtrl
	}
	return m
}

func decodeCSIFinal(final byte, params []int, haveDigits bool, n int) (Event, int) {
	var mod Modifiers
	if len(params) >= 2 {
		mod = csiModifiers(params[1])
	}
	switch final {
	case 'A':
		return keyEvent(KeyArrowUp, 0, mod), n
	case 'B':
		return keyEvent(KeyArrowDown, 0, mod), n
	case 'C':
		return keyEvent(KeyArrowRight, 0, mod), n
	case 'D':
		return keyEvent(KeyArrowLeft, 0, mod), n
	case 'H':
		return keyEvent(KeyHome, 0, mod), n
	case 'F':
		return keyEvent(KeyEnd, 0, mod), n
	case '~':
		if !haveDigits {
			return Event{}, n
		}
		switch params[0] {
		case 1, 7:
			return keyEvent(KeyHome, 0, mod), n
		case 3:
			return keyEvent(KeyDelete, 0, mod), n
		case 4, 8:
			return keyEvent(KeyEnd, 0, mod), n
		case 5:
			return keyEvent(KeyPageUp, 0, mod), n
		case 6:
			return keyEvent(KeyPageDown, 0, mod), n
		case 12:
			return keyEvent(KeyF2, 0, mod), n
		}
		return Event{}, n
	}
	return Event{}, n
}

// decodeSGRMouse parses "CSI < button ; col ; row (M|m)".
func decodeSGRMouse(buf []byte) (Event, int) {
	i := 3
	params := []int{0}
	for ; i < len(buf); i++ {
		c := buf[i]
		switch {
		case c >= '0' && c <= '9':
			params[len(params)-1] = params[len(params)-1]*10 + int(c-'0')
		case c == ';':
			params = append(params, 0)
		case c == 'M' || c == 'm':
			if len(params) != 3 {
				return Event{}, i + 1
			}
			return mouseEvent(params, c == 'M'), i + 1
		default:
			return Event{}, i + 1
		}
	}
	return Event{}, 0
}

func mouseEvent(params []int, press bool) Event {
	raw := params[0]
	var mod Modifiers
	if raw&4 != 0 {
		mod |= ModShift
	}
	if raw&8 != 0 {
		mod |= ModAlt
	}
	if raw&16 != 0 {
		mod |= ModCtrl
	}
	motion := raw&32 != 0
	var btn MouseButton
	switch {
	case raw&64 != 0:
		if raw&3 == 0 {
			btn = MouseWheelUp
		} else {
			btn = MouseWheelDown
		}
	default:
		switch raw & 3 {
		case 0:
			btn = MouseLeft
		case 1:
			btn = MouseMiddle
		case 2:
			btn = MouseRight
		default:
			btn = MouseRelease
		}
	}
	return Event{
		Kind: EventMouse,
		Mouse: MouseEvent{
			Button: btn,
			Col:    params[1] - 1,
			Row:    params[2] - 1,
			Press:  press,
			Mod:    mod,
			Motion: motion,
		},
	}
}
