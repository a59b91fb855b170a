package ember

import "testing"

func decodeOne(t *testing.T, input string) Event {
	t.Helper()
	ev, n := DecodeInput([]byte(input))
	if n != len(input) {
		t.Fatalf("%q: expected %d bytes consumed, got %d", input, len(input), n)
	}
	return ev
}

func TestDecodeArrowKeys(t *testing.T) {
	tests := []struct {
		input string
		want  Key
	}{
		{"\x1b[A", KeyArrowUp},
		{"\x1b[B", KeyArrowDown},
		{"\x1b[C", KeyArrowRight},
		{"\x1b[D", KeyArrowLeft},
	}
	for _, tt := range tests {
		ev := decodeOne(t, tt.input)
		if ev.Kind != EventKey || ev.Key.Key != tt.want {
			t.Errorf("%q: got %+v", tt.input, ev)
		}
	}
}

func TestDecodeHomeEndVariants(t *testing.T) {
	for _, s := range []string{"\x1b[H", "\x1b[1~", "\x1b[7~"} {
		if ev := decodeOne(t, s); ev.Key.Key != KeyHome {
			t.Errorf("%q: expected home, got %+v", s, ev)
		}
	}
	for _, s := range []string{"\x1b[F", "\x1b[4~", "\x1b[8~"} {
		if ev := decodeOne(t, s); ev.Key.Key != KeyEnd {
			t.Errorf("%q: expected end, got %+v", s, ev)
		}
	}
}

func TestDecodeTildeKeys(t *testing.T) {
	tests := []struct {
		input string
		want  Key
	}{
		{"\x1b[3~", KeyDelete},
		{"\x1b[5~", KeyPageUp},
		{"\x1b[6~", KeyPageDown},
		{"\x1b[12~", KeyF2},
	}
	for _, tt := range tests {
		if ev := decodeOne(t, tt.input); ev.Key.Key != tt.want {
			t.Errorf("%q: got %+v", tt.input, ev)
		}
	}
}

func TestDecodeModifiedKeys(t *testing.T) {
	ev := decodeOne(t, "\x1b[1;2A")
	if ev.Key.Key != KeyArrowUp || ev.Key.Mod != ModShift {
		t.Errorf("expected shift-up, got %+v", ev)
	}
	ev = decodeOne(t, "\x1b[1;5C")
	if ev.Key.Key != KeyArrowRight || ev.Key.Mod != ModCtrl {
		t.Errorf("expected ctrl-right, got %+v", ev)
	}
	ev = decodeOne(t, "\x1b[1;6H")
	if ev.Key.Key != KeyHome || ev.Key.Mod != ModShift|ModCtrl {
		t.Errorf("expected ctrl-shift-home, got %+v", ev)
	}
}

func TestDecodeControlKeys(t *testing.T) {
	ev := decodeOne(t, "\x13") // Ctrl-S
	if ev.Key.Key != KeyRune || ev.Key.Rune != 's' || ev.Key.Mod != ModCtrl {
		t.Errorf("expected ctrl-s, got %+v", ev)
	}
	if ev := decodeOne(t, "\r"); ev.Key.Key != KeyEnter {
		t.Errorf("expected enter, got %+v", ev)
	}
	if ev := decodeOne(t, "\x7f"); ev.Key.Key != KeyBackspace {
		t.Errorf("expected backspace, got %+v", ev)
	}
	if ev := decodeOne(t, "\t"); ev.Key.Key != KeyTab {
		t.Errorf("expected tab, got %+v", ev)
	}
}

func TestDecodeUTF8Rune(t *testing.T) {
	ev := decodeOne(t, "é")
	if ev.Key.Key != KeyRune || ev.Key.Rune != 'é' {
		t.Errorf("expected é, got %+v", ev)
	}
	ev = decodeOne(t, "中")
	if ev.Key.Rune != '中' {
		t.Errorf("expected 中, got %+v", ev)
	}
}

func TestDecodeIncompleteSequences(t *testing.T) {
	// A truncated CSI or a partial rune asks for more bytes.
	for _, s := range []string{"\x1b[", "\x1b[1;", "\xe4\xb8"} {
		if _, n := DecodeInput([]byte(s)); n != 0 {
			t.Errorf("%q: expected 0 consumed, got %d", s, n)
		}
	}
}

func TestDecodeBareEscape(t *testing.T) {
	ev, n := DecodeInput([]byte{0x1b})
	if n != 1 || ev.Key.Key != KeyEscape {
		t.Errorf("expected escape, got %+v (%d)", ev, n)
	}
}

func TestDecodeAltKey(t *testing.T) {
	ev := decodeOne(t, "\x1bx")
	if ev.Key.Key != KeyRune || ev.Key.Rune != 'x' || ev.Key.Mod != ModAlt {
		t.Errorf("expected alt-x, got %+v", ev)
	}
}

func TestDecodeSGRMouse(t *testing.T) {
	ev := decodeOne(t, "\x1b[<0;10;5M")
	if ev.Kind != EventMouse {
		t.Fatalf("expected mouse event, got %+v", ev)
	}
	m := ev.Mouse
	if m.Button != MouseLeft || m.Col != 9 || m.Row != 4 || !m.Press {
		t.Errorf("bad mouse event: %+v", m)
	}

	ev = decodeOne(t, "\x1b[<0;10;5m")
	if ev.Mouse.Press {
		t.Error("lowercase final means release")
	}
}

func TestDecodeMouseWheel(t *testing.T) {
	ev := decodeOne(t, "\x1b[<64;1;1M")
	if ev.Mouse.Button != MouseWheelUp {
		t.Errorf("expected wheel up, got %+v", ev.Mouse)
	}
	ev = decodeOne(t, "\x1b[<65;1;1M")
	if ev.Mouse.Button != MouseWheelDown {
		t.Errorf("expected wheel down, got %+v", ev.Mouse)
	}
}

func TestDecodeMouseDrag(t *testing.T) {
	ev := decodeOne(t, "\x1b[<32;3;4M")
	if ev.Mouse.Button != MouseLeft || !ev.Mouse.Motion {
		t.Errorf("expected left drag, got %+v", ev.Mouse)
	}
}
