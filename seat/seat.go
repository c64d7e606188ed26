// SPDX-License-Identifier: Unlicense OR MIT

/*
Package seat implements the input-routing and focus core: per-seat
pointer and keyboard state, hit-path reconciliation, implicit grabs,
keyboard focus with activation edges, toplevel focus history, and the
fan-out of routed events to per-client protocol bindings.

All seat and node state belongs to a single goroutine. One backend
event is reconciled completely, including every enter/leave/motion
notification it implies, before the next one is handled. The only
asynchronous boundary is the per-client connection flush, which is
fire and forget.
*/
package seat

import (
	"container/list"

	"github.com/sirupsen/logrus"
	"github.com/transomwm/transom/backend"
	"github.com/transomwm/transom/client"
	"github.com/transomwm/transom/data"
	"github.com/transomwm/transom/fixed"
	"github.com/transomwm/transom/xkb"
)

// An OutputResolver resolves backend output identities to origins in
// compositor space. The scene root implements it.
type OutputResolver interface {
	OutputOrigin(id backend.OutputID) (x, y int32, ok bool)
}

// A ModifierService turns accepted key transitions into modifier
// snapshots. Update reports whether the snapshot changed; Modifiers
// returns the current snapshot. *xkb.State implements it.
type ModifierService interface {
	Update(key uint32, state backend.KeyState) (xkb.Modifiers, bool)
	Modifiers() xkb.Modifiers
}

type grab struct {
	node    Node
	buttons map[uint32]struct{}
}

// A Seat is the state machine of one input-focus domain: a pointer
// and a keyboard sharing focus state. Seats are independent of each
// other; all methods must be called from the compositor goroutine.
type Seat struct {
	id   backend.SeatID
	name string
	log  *logrus.Entry

	root    Node
	outputs OutputResolver
	mods    ModifierService
	keymap  *xkb.Keymap

	pos   fixed.Point
	stack []Node
	found []FoundNode

	grab         *grab
	pressedKeys  map[uint32]struct{}
	keyboardNode Node

	history *list.List

	serial uint32

	selection        data.Source
	primarySelection data.Source

	bindings map[client.ID]*clientBindings

	cursor     backend.Cursor
	cursorFunc func(backend.Cursor)
}

// Options carries the optional collaborators of a seat.
type Options struct {
	// Outputs resolves absolute motion events. Seats without one
	// drop absolute motion.
	Outputs OutputResolver
	// Modifiers is the modifier service; a fresh xkb.State is used
	// when nil.
	Modifiers ModifierService
	// Keymap is sent to keyboard bindings on registration.
	Keymap *xkb.Keymap
	// Log receives seat-scoped log entries.
	Log *logrus.Logger
	// CursorFunc observes pointer-target cursor shape changes.
	CursorFunc func(backend.Cursor)
}

// New returns a seat rooted at root. The root is the default keyboard
// focus and the origin of all hit tests; it must not be nil.
func New(id backend.SeatID, name string, root Node, opts Options) *Seat {
	if root == nil {
		panic("seat: nil root")
	}
	if opts.Modifiers == nil {
		opts.Modifiers = xkb.NewState()
	}
	if opts.Log == nil {
		opts.Log = logrus.New()
	}
	return &Seat{
		id:           id,
		name:         name,
		log:          opts.Log.WithField("seat", name),
		root:         root,
		outputs:      opts.Outputs,
		mods:         opts.Modifiers,
		keymap:       opts.Keymap,
		pressedKeys:  make(map[uint32]struct{}),
		keyboardNode: root,
		history:      list.New(),
		bindings:     make(map[client.ID]*clientBindings),
		cursorFunc:   opts.CursorFunc,
	}
}

// ID returns the backend identity of the seat.
func (s *Seat) ID() backend.SeatID {
	return s.id
}

// Name returns the seat name.
func (s *Seat) Name() string {
	return s.name
}

// Pos returns the current pointer position in compositor space.
func (s *Seat) Pos() fixed.Point {
	return s.pos
}

// KeyboardNode returns the current keyboard focus.
func (s *Seat) KeyboardNode() Node {
	return s.keyboardNode
}

// NextSerial returns a fresh event serial.
func (s *Seat) NextSerial() uint32 {
	s.serial++
	return s.serial
}

// HandleEvent routes one backend input event. Non-input events are
// ignored.
func (s *Seat) HandleEvent(ev backend.Event) {
	switch ev := ev.(type) {
	case backend.PointerMotionAbsolute:
		s.PointerMotionAbsolute(ev.Output, ev.X, ev.Y)
	case backend.PointerMotionRelative:
		s.PointerMotionRelative(ev.DX, ev.DY)
	case backend.PointerButton:
		s.PointerButton(ev.Button, ev.State)
	case backend.PointerScroll:
		s.PointerScroll(ev.Delta, ev.Axis)
	case backend.KeyboardKey:
		s.KeyboardKey(ev.Key, ev.State)
	}
}

// SetCursor records the pointer cursor shape and notifies the cursor
// hook on changes. Nodes call it when they become or cease to be the
// pointer target.
func (s *Seat) SetCursor(c backend.Cursor) {
	if c == s.cursor {
		return
	}
	s.cursor = c
	if s.cursorFunc != nil {
		s.cursorFunc(c)
	}
}

// Cursor returns the current cursor shape.
func (s *Seat) Cursor() backend.Cursor {
	return s.cursor
}

// Destroy tears the seat down: the grab is released, every entered
// node is left, the keyboard focus is dropped with its activation
// edge, and history and bindings are cleared. Nodes referenced by the
// seat stay valid; only the seat's membership on them is removed.
func (s *Seat) Destroy() {
	if s.grab != nil {
		s.grab.node.SeatState().removeGrab(s)
		s.grab = nil
	}
	if len(s.stack) > 0 {
		s.stack[len(s.stack)-1].PointerUntarget(s)
	}
	for i := len(s.stack) - 1; i >= 0; i-- {
		old := s.stack[i]
		old.PointerLeave(s)
		old.SeatState().pointerLeave(s)
	}
	s.stack = s.stack[:0]
	old := s.keyboardNode
	if old.ID() != s.root.ID() {
		old.KeyboardUnfocus(s)
		if old.SeatState().unfocus(s) {
			old.ActiveChanged(false)
		}
	}
	s.keyboardNode = s.root
	for e := s.history.Front(); e != nil; e = e.Next() {
		e.Value.(ToplevelNode).SeatState().removeHistoryElem(s)
	}
	s.history.Init()
	s.bindings = make(map[client.ID]*clientBindings)
	s.log.Info("seat destroyed")
}
