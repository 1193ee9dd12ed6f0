package osr

import (
	"fmt"
	"image"

	"golang.org/x/text/unicode/norm"
)

// KeyEventType distinguishes raw key transitions from character input.
type KeyEventType uint8

const (
	KeyDown KeyEventType = iota + 1
	KeyUp
	KeyChar
)

// MouseEventType identifies the kind of mouse event being forwarded.
type MouseEventType uint8

const (
	MouseMove MouseEventType = iota + 1
	MouseDown
	MouseUp
	MouseLeave
)

// MouseButton identifies which mouse button was pressed.
type MouseButton uint8

const (
	MouseButtonNone MouseButton = iota
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle
)

// Modifier keys active during an input event.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModSuper // Cmd on Mac, Win on Windows
)

func (m Modifiers) Shift() bool { return m&ModShift != 0 }
func (m Modifiers) Ctrl() bool  { return m&ModCtrl != 0 }
func (m Modifiers) Alt() bool   { return m&ModAlt != 0 }
func (m Modifiers) Super() bool { return m&ModSuper != 0 }

// KeyEvent is a keyboard event constructed by the host from a native OS
// event and forwarded to the renderer untouched.
type KeyEvent struct {
	Type      KeyEventType
	Code      uint32 // platform-neutral key code
	Rune      rune   // character for KeyChar events
	Modifiers Modifiers
}

// MouseEvent is a pointer event in surface-local pixel coordinates.
type MouseEvent struct {
	Type       MouseEventType
	Pos        image.Point
	Button     MouseButton
	ClickCount int
	Modifiers  Modifiers
}

// WheelEvent is a scroll event in surface-local pixel coordinates.
type WheelEvent struct {
	Pos       image.Point
	Delta     image.Point
	Modifiers Modifiers
}

// CursorType is the pointer shape the renderer wants the host to show.
type CursorType uint8

const (
	CursorPointer CursorType = iota
	CursorCross
	CursorHand
	CursorIBeam
	CursorWait
	CursorResizeEW
	CursorResizeNS
	CursorGrab
	CursorGrabbing
	CursorNone
)

func (c CursorType) String() string {
	switch c {
	case CursorPointer:
		return "pointer"
	case CursorCross:
		return "cross"
	case CursorHand:
		return "hand"
	case CursorIBeam:
		return "ibeam"
	case CursorWait:
		return "wait"
	case CursorResizeEW:
		return "resize-ew"
	case CursorResizeNS:
		return "resize-ns"
	case CursorGrab:
		return "grab"
	case CursorGrabbing:
		return "grabbing"
	case CursorNone:
		return "none"
	default:
		return fmt.Sprintf("CursorType(%d)", uint8(c))
	}
}

// Range is a character range within composition text, in runes.
type Range struct {
	Start int
	End   int
}

// Underline styles one segment of in-progress composition text.
type Underline struct {
	Range Range
	Thick bool
}

// ImeState is the composition state of a surface's input method.
// Commit and cancel are transient: the machine is only ever observable in
// ImeNone or ImeComposing.
type ImeState uint8

const (
	ImeNone ImeState = iota
	ImeComposing
)

func (s ImeState) String() string {
	if s == ImeComposing {
		return "composing"
	}
	return "none"
}

// composition is the transient IME state, alive only between
// composition-start and commit/cancel.
type composition struct {
	text       string
	underlines []Underline
	selection  Range
}

// inputRouter forwards keyboard, mouse, and wheel events to the renderer
// and drives the IME composition state machine. It is independent of the
// frame path except for focus: key events require focus, and losing focus
// mid-composition cancels it.
type inputRouter struct {
	s      *surface
	ime    ImeState
	comp   composition
	cursor CursorType
}

func newInputRouter(s *surface) *inputRouter {
	return &inputRouter{s: s}
}

func (ir *inputRouter) forwardKey(ev KeyEvent) {
	if ir.s.destroyed || !ir.s.focused {
		return
	}
	ir.s.client.ForwardKey(ir.s.id, ev)
}

func (ir *inputRouter) forwardMouse(ev MouseEvent) {
	if ir.s.destroyed {
		return
	}
	ir.s.client.ForwardMouse(ir.s.id, ev)
}

func (ir *inputRouter) forwardWheel(ev WheelEvent) {
	if ir.s.destroyed {
		return
	}
	ir.s.client.ForwardWheel(ir.s.id, ev)
}

// updateCursor forwards the renderer's cursor shape to the host. Repeats
// of the current shape are dropped; renderers re-send the cursor on every
// mouse move.
func (ir *inputRouter) updateCursor(cursor CursorType) {
	if ir.s.destroyed || cursor == ir.cursor {
		return
	}
	ir.cursor = cursor
	ir.s.c.host.CursorChanged(ir.s.id, cursor)
}

// setFocus updates focus and forwards it. Losing focus while composing
// forces an implicit cancel, since the input method will never finish a
// composition the platform has already abandoned.
func (ir *inputRouter) setFocus(focused bool) {
	s := ir.s
	if s.destroyed || focused == s.focused {
		return
	}
	s.focused = focused
	if !focused && ir.ime == ImeComposing {
		ir.cancelComposition()
	}
	s.client.Focus(s.id, focused)
}

// setComposition starts or replaces in-progress composition text. Valid
// from ImeNone and ImeComposing; re-entering composing replaces the prior
// transient state wholesale.
func (ir *inputRouter) setComposition(text string, underlines []Underline, selection Range) {
	if ir.s.destroyed {
		return
	}
	ir.ime = ImeComposing
	ir.comp = composition{text: text, underlines: underlines, selection: selection}
	ir.s.client.ImeSetComposition(ir.s.id, text, underlines, selection)
}

// commitText resolves the composition with final text. A commit outside
// ImeComposing is a no-op: input-method races with focus changes are
// expected, not errors. Committed text is NFC-normalized so hosts always
// receive composed forms regardless of how the IME built the sequence.
func (ir *inputRouter) commitText(text string) {
	if ir.s.destroyed || ir.ime != ImeComposing {
		return
	}
	ir.ime = ImeNone
	ir.comp = composition{}
	ir.s.client.ImeCommitText(ir.s.id, norm.NFC.String(text))
}

// finishComposingText commits whatever text is currently composed.
func (ir *inputRouter) finishComposingText(keepSelection bool) {
	if ir.s.destroyed || ir.ime != ImeComposing {
		return
	}
	text := ir.comp.text
	ir.ime = ImeNone
	ir.comp = composition{}
	ir.s.client.ImeFinishComposingText(ir.s.id, norm.NFC.String(text), keepSelection)
}

// cancelComposition discards the composition. No-op outside ImeComposing.
func (ir *inputRouter) cancelComposition() {
	if ir.s.destroyed || ir.ime != ImeComposing {
		return
	}
	ir.ime = ImeNone
	ir.comp = composition{}
	ir.s.client.ImeCancelComposition(ir.s.id)
}

// surfaceDestroyed drops transient state on the destroy path without
// forwarding anything to the (gone) renderer.
func (ir *inputRouter) surfaceDestroyed() {
	ir.ime = ImeNone
	ir.comp = composition{}
}
