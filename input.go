// input.go - key handler registry with press/release edge detection

package main

// KeyCode identifies a logical key, independent of the front-end's native
// scancode representation.
type KeyCode int

// keyHandler tracks one registered key's callbacks and pressed state.
type keyHandler struct {
	onPress, onRelease func()
	isPressed          bool
}

// Input is a mapping from key code to handler record, plus optional
// bus-wide press/release observers.
type Input struct {
	baseComponent

	keys           map[KeyCode]*keyHandler
	onKeyPress     func(KeyCode)
	onKeyRelease   func(KeyCode)
}

// NewInput constructs an empty input component.
func NewInput(name string) *Input {
	return &Input{
		baseComponent: baseComponent{name: name, kind: ComponentInput},
		keys:          make(map[KeyCode]*keyHandler),
	}
}

// RegisterKey idempotently installs a handler record for code.
func (in *Input) RegisterKey(code KeyCode) *keyHandler {
	if h, ok := in.keys[code]; ok {
		return h
	}
	h := &keyHandler{}
	in.keys[code] = h
	return h
}

// SetKeyHandlers installs the per-key press/release callbacks for code,
// registering the key first if necessary.
func (in *Input) SetKeyHandlers(code KeyCode, onPress, onRelease func()) {
	h := in.RegisterKey(code)
	h.onPress, h.onRelease = onPress, onRelease
}

// SetGlobalHandlers installs the bus-wide press/release observers.
func (in *Input) SetGlobalHandlers(onPress, onRelease func(KeyCode)) {
	in.onKeyPress, in.onKeyRelease = onPress, onRelease
}

// PressKey no-ops if code is unknown or already pressed; otherwise flips
// state, fires the per-key handler, then the global observer.
func (in *Input) PressKey(code KeyCode) {
	h, ok := in.keys[code]
	if !ok || h.isPressed {
		return
	}
	h.isPressed = true
	if h.onPress != nil {
		h.onPress()
	}
	if in.onKeyPress != nil {
		in.onKeyPress(code)
	}
}

// ReleaseKey is the symmetric counterpart of PressKey.
func (in *Input) ReleaseKey(code KeyCode) {
	h, ok := in.keys[code]
	if !ok || !h.isPressed {
		return
	}
	h.isPressed = false
	if h.onRelease != nil {
		h.onRelease()
	}
	if in.onKeyRelease != nil {
		in.onKeyRelease(code)
	}
}

// ToggleKey flips state and fires whichever per-key edge applies. Unlike
// PressKey/ReleaseKey it does not fire the global observers, matching the
// reference implementation's asymmetric behavior.
func (in *Input) ToggleKey(code KeyCode) {
	h, ok := in.keys[code]
	if !ok {
		return
	}
	h.isPressed = !h.isPressed
	if h.isPressed && h.onPress != nil {
		h.onPress()
	} else if !h.isPressed && h.onRelease != nil {
		h.onRelease()
	}
}

// IsPressed returns false for unknown codes.
func (in *Input) IsPressed(code KeyCode) bool {
	h, ok := in.keys[code]
	return ok && h.isPressed
}

func (in *Input) AttachToBus(b *Bus) error { in.bus = b; return nil }
func (in *Input) OnTick()                  {}
func (in *Input) PowerOn()                 {}
func (in *Input) PowerOff()                {}

func (in *Input) ReadTyped(addr uint64, w Width) (uint32, error)  { return notImplementedRead(addr, w) }
func (in *Input) WriteTyped(addr uint64, w Width, v uint32) error { return notImplementedWrite(addr, w) }
