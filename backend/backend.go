// SPDX-License-Identifier: Unlicense OR MIT

/*
Package backend defines the interface between input backends and the
compositor core.

A backend owns the physical or nested input devices and reports what
happens on them as a stream of Events: seat and output lifecycle,
pointer motion in absolute output coordinates or relative deltas,
button and scroll activity, and keyboard keys. Key and button codes
are Linux input event codes regardless of backend, so the core and
the delivery layer never translate.
*/
package backend

import (
	"github.com/transomwm/transom/data"
	"github.com/transomwm/transom/fixed"
)

// A SeatID identifies one seat reported by a backend.
type SeatID uint32

// An OutputID identifies one output reported by a backend.
type OutputID uint32

// Pointer button codes from the Linux input event space.
const (
	BtnLeft   = 0x110
	BtnRight  = 0x111
	BtnMiddle = 0x112
	BtnSide   = 0x113
	BtnExtra  = 0x114
)

// KeyState is the direction of a key or button transition.
type KeyState uint32

const (
	Released KeyState = iota
	Pressed
)

func (s KeyState) String() string {
	switch s {
	case Released:
		return "Released"
	case Pressed:
		return "Pressed"
	default:
		panic("unknown key state")
	}
}

// ScrollAxis is the axis of a scroll event.
type ScrollAxis uint32

const (
	Vertical ScrollAxis = iota
	Horizontal
)

func (a ScrollAxis) String() string {
	switch a {
	case Vertical:
		return "Vertical"
	case Horizontal:
		return "Horizontal"
	default:
		panic("unknown scroll axis")
	}
}

// Cursor is the name of a pointer cursor shape. Nodes report their
// shape when they become the pointer target; backends that own a host
// cursor apply it.
type Cursor byte

const (
	CursorDefault Cursor = iota
	CursorNone
	CursorText
	CursorPointer
	CursorCrosshair
	CursorMove
)

func (c Cursor) String() string {
	switch c {
	case CursorDefault:
		return "Default"
	case CursorNone:
		return "None"
	case CursorText:
		return "Text"
	case CursorPointer:
		return "Pointer"
	case CursorCrosshair:
		return "Crosshair"
	case CursorMove:
		return "Move"
	default:
		panic("unknown cursor")
	}
}

// Event is the marker interface implemented by all backend events.
type Event interface {
	ImplementsEvent()
}

// SeatAdded reports a new seat. The compositor creates the seat state
// machine in response.
type SeatAdded struct {
	Seat SeatID
	Name string
}

// SeatRemoved reports that a seat's devices are gone.
type SeatRemoved struct {
	Seat SeatID
}

// OutputAdded reports a new output and its rectangle in compositor
// space.
type OutputAdded struct {
	Output OutputID
	X, Y   int32
	Width  int32
	Height int32
}

// OutputRemoved reports that an output is gone.
type OutputRemoved struct {
	Output OutputID
}

// PointerMotionAbsolute reports a pointer position relative to the
// top left corner of an output.
type PointerMotionAbsolute struct {
	Seat   SeatID
	Output OutputID
	X, Y   fixed.Fixed
}

// PointerMotionRelative reports a pointer movement.
type PointerMotionRelative struct {
	Seat   SeatID
	DX, DY fixed.Fixed
}

// PointerButton reports a button transition.
type PointerButton struct {
	Seat   SeatID
	Button uint32
	State  KeyState
}

// PointerScroll reports scroll motion along one axis.
type PointerScroll struct {
	Seat  SeatID
	Delta fixed.Fixed
	Axis  ScrollAxis
}

// KeyboardKey reports a key transition.
type KeyboardKey struct {
	Seat  SeatID
	Key   uint32
	State KeyState
}

// ClipboardChanged reports that the host environment's clipboard
// gained new content. Only backends nested inside another display
// server emit it.
type ClipboardChanged struct {
	Seat SeatID
}

// Quit reports that the backend is shutting down, for example because
// a nested host window was closed.
type Quit struct{}

func (SeatAdded) ImplementsEvent()             {}
func (SeatRemoved) ImplementsEvent()           {}
func (OutputAdded) ImplementsEvent()           {}
func (OutputRemoved) ImplementsEvent()         {}
func (PointerMotionAbsolute) ImplementsEvent() {}
func (PointerMotionRelative) ImplementsEvent() {}
func (PointerButton) ImplementsEvent()         {}
func (PointerScroll) ImplementsEvent()         {}
func (KeyboardKey) ImplementsEvent()           {}
func (ClipboardChanged) ImplementsEvent()      {}
func (Quit) ImplementsEvent()                  {}

// A Backend produces input events. Events terminates when the backend
// dies or Close is called; Close is idempotent.
type Backend interface {
	Events() <-chan Event
	Close() error
}

// A CursorHost is implemented by backends that can display a cursor
// shape on behalf of the compositor.
type CursorHost interface {
	SetCursor(c Cursor)
}

// A ClipboardBridge is implemented by nested backends that can carry
// selections between the compositor and its host. The compositor
// reads the host clipboard when the backend reports ClipboardChanged
// and mirrors its own selections outward.
type ClipboardBridge interface {
	// ReadClipboard returns a source for the current host clipboard
	// content, or nil when the host clipboard is empty.
	ReadClipboard() data.Source
	// WriteClipboard copies src to the host clipboard.
	WriteClipboard(src data.Source) error
}
