// SPDX-License-Identifier: Unlicense OR MIT

package seat

import (
	"sort"

	"github.com/transomwm/transom/backend"
	"github.com/transomwm/transom/client"
	"github.com/transomwm/transom/data"
	"github.com/transomwm/transom/fixed"
	"github.com/transomwm/transom/xkb"
)

// Key repeat settings announced to every keyboard binding.
const (
	repeatRate  = 25
	repeatDelay = 250
)

// A PointerBinding is one pointer protocol object of a client. The
// seat core calls the send methods once per logical notification and
// is agnostic to the wire encoding behind them. Coordinates are local
// to the node. Implementations must not call back into the seat.
type PointerBinding interface {
	SendEnter(serial uint32, n Node, x, y fixed.Fixed)
	SendLeave(serial uint32, n Node)
	SendMotion(x, y fixed.Fixed)
	SendButton(serial uint32, button uint32, state backend.KeyState)
	SendScroll(delta fixed.Fixed, axis backend.ScrollAxis)
}

// A KeyboardBinding is one keyboard protocol object of a client.
// SendEnter carries the currently pressed keys so a freshly focused
// client starts from a consistent key-state view.
type KeyboardBinding interface {
	SendKeymap(fd int, size uint32)
	SendRepeatInfo(rate, delay int32)
	SendEnter(serial uint32, n Node, pressed []uint32)
	SendLeave(serial uint32, n Node)
	SendKey(serial uint32, key uint32, state backend.KeyState)
	SendModifiers(serial uint32, mods xkb.Modifiers)
}

// A DataDeviceBinding is one data-device protocol object of a client,
// used for both the clipboard and the primary selection. SendOffer
// introduces a fresh offer for src and makes it the binding's current
// selection; SendSelection(nil) reports that there is none.
type DataDeviceBinding interface {
	SendOffer(src data.Source)
	SendSelection(src data.Source)
}

type clientBindings struct {
	pointers       []PointerBinding
	keyboards      []KeyboardBinding
	dataDevices    []DataDeviceBinding
	primaryDevices []DataDeviceBinding
}

func (s *Seat) clientBindings(c *client.Client) *clientBindings {
	cb := s.bindings[c.ID()]
	if cb == nil {
		cb = &clientBindings{}
		s.bindings[c.ID()] = cb
	}
	return cb
}

// AddPointer registers a pointer binding for c. If the pointer is
// currently over one of c's nodes the binding immediately observes an
// enter for it.
func (s *Seat) AddPointer(c *client.Client, b PointerBinding) {
	cb := s.clientBindings(c)
	cb.pointers = append(cb.pointers, b)
	if n := s.pointerNode(); n != nil && n.Client() != nil && n.Client().ID() == c.ID() {
		ax, ay := n.AbsolutePosition()
		b.SendEnter(s.NextSerial(), n,
			s.pos.X.ApplyFract(s.pos.X.RoundDown()-ax),
			s.pos.Y.ApplyFract(s.pos.Y.RoundDown()-ay),
		)
	}
	c.ScheduleFlush()
}

// AddKeyboard registers a keyboard binding for c and brings it up to
// date: keymap, repeat info, and a synthetic enter when one of c's
// nodes holds keyboard focus.
func (s *Seat) AddKeyboard(c *client.Client, b KeyboardBinding) {
	cb := s.clientBindings(c)
	cb.keyboards = append(cb.keyboards, b)
	if s.keymap != nil {
		fd, size, err := s.keymap.Fd()
		if err != nil {
			s.log.WithError(err).Warn("cannot share keymap")
		} else {
			b.SendKeymap(fd, size)
		}
	}
	b.SendRepeatInfo(repeatRate, repeatDelay)
	if n := s.keyboardNode; n.Client() != nil && n.Client().ID() == c.ID() {
		b.SendEnter(s.NextSerial(), n, s.pressedKeySlice())
		b.SendModifiers(s.NextSerial(), s.mods.Modifiers())
	}
	c.ScheduleFlush()
}

// AddDataDevice registers a clipboard data-device binding for c. If
// one of c's nodes holds keyboard focus the current selection state
// is announced right away.
func (s *Seat) AddDataDevice(c *client.Client, b DataDeviceBinding) {
	cb := s.clientBindings(c)
	cb.dataDevices = append(cb.dataDevices, b)
	if n := s.keyboardNode; n.Client() != nil && n.Client().ID() == c.ID() {
		if s.selection != nil {
			b.SendOffer(s.selection)
		} else {
			b.SendSelection(nil)
		}
		c.ScheduleFlush()
	}
}

// AddPrimarySelectionDevice registers a primary-selection binding for
// c, announcing the current primary selection when c holds focus.
func (s *Seat) AddPrimarySelectionDevice(c *client.Client, b DataDeviceBinding) {
	cb := s.clientBindings(c)
	cb.primaryDevices = append(cb.primaryDevices, b)
	if n := s.keyboardNode; n.Client() != nil && n.Client().ID() == c.ID() {
		if s.primarySelection != nil {
			b.SendOffer(s.primarySelection)
		} else {
			b.SendSelection(nil)
		}
		c.ScheduleFlush()
	}
}

// RemoveClient drops all protocol bindings of c, usually because the
// client disconnected. Focus and grab state is unaffected; tree code
// destroys the client's nodes separately.
func (s *Seat) RemoveClient(c *client.Client) {
	delete(s.bindings, c.ID())
}

// offerSelection renegotiates one selection with a client that just
// gained keyboard focus or a new source: with a source every binding
// observes a fresh offer, without one it observes an empty selection.
func (s *Seat) offerSelection(src data.Source, c *client.Client, primary bool) {
	cb := s.bindings[c.ID()]
	if cb == nil {
		return
	}
	devices := cb.dataDevices
	if primary {
		devices = cb.primaryDevices
	}
	if len(devices) == 0 {
		return
	}
	for _, b := range devices {
		if src != nil {
			b.SendOffer(src)
		} else {
			b.SendSelection(nil)
		}
	}
	c.ScheduleFlush()
}

func (s *Seat) pressedKeySlice() []uint32 {
	if len(s.pressedKeys) == 0 {
		return nil
	}
	keys := make([]uint32, 0, len(s.pressedKeys))
	for k := range s.pressedKeys {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// SendPointerEnter delivers a pointer enter for n to all pointer
// bindings of n's client. Nodes call the Send methods from their
// notification handlers; nodes without a client skip delivery.
func (s *Seat) SendPointerEnter(n Node, x, y fixed.Fixed) {
	c, cb := s.bindingsFor(n)
	if cb == nil || len(cb.pointers) == 0 {
		return
	}
	serial := s.NextSerial()
	for _, b := range cb.pointers {
		b.SendEnter(serial, n, x, y)
	}
	c.ScheduleFlush()
}

// SendPointerLeave delivers a pointer leave for n.
func (s *Seat) SendPointerLeave(n Node) {
	c, cb := s.bindingsFor(n)
	if cb == nil || len(cb.pointers) == 0 {
		return
	}
	serial := s.NextSerial()
	for _, b := range cb.pointers {
		b.SendLeave(serial, n)
	}
	c.ScheduleFlush()
}

// SendPointerMotion delivers a pointer position in n's local space.
func (s *Seat) SendPointerMotion(n Node, x, y fixed.Fixed) {
	c, cb := s.bindingsFor(n)
	if cb == nil || len(cb.pointers) == 0 {
		return
	}
	for _, b := range cb.pointers {
		b.SendMotion(x, y)
	}
	c.ScheduleFlush()
}

// SendPointerButton delivers a button transition to n's client.
func (s *Seat) SendPointerButton(n Node, button uint32, state backend.KeyState) {
	c, cb := s.bindingsFor(n)
	if cb == nil || len(cb.pointers) == 0 {
		return
	}
	serial := s.NextSerial()
	for _, b := range cb.pointers {
		b.SendButton(serial, button, state)
	}
	c.ScheduleFlush()
}

// SendPointerScroll delivers scroll motion to n's client.
func (s *Seat) SendPointerScroll(n Node, delta fixed.Fixed, axis backend.ScrollAxis) {
	c, cb := s.bindingsFor(n)
	if cb == nil || len(cb.pointers) == 0 {
		return
	}
	for _, b := range cb.pointers {
		b.SendScroll(delta, axis)
	}
	c.ScheduleFlush()
}

// SendKeyboardEnter delivers a keyboard enter for n, replaying the
// pressed keys, followed by the current modifier snapshot.
func (s *Seat) SendKeyboardEnter(n Node) {
	c, cb := s.bindingsFor(n)
	if cb == nil || len(cb.keyboards) == 0 {
		return
	}
	serial := s.NextSerial()
	pressed := s.pressedKeySlice()
	for _, b := range cb.keyboards {
		b.SendEnter(serial, n, pressed)
	}
	mods := s.mods.Modifiers()
	serial = s.NextSerial()
	for _, b := range cb.keyboards {
		b.SendModifiers(serial, mods)
	}
	c.ScheduleFlush()
}

// SendKeyboardLeave delivers a keyboard leave for n.
func (s *Seat) SendKeyboardLeave(n Node) {
	c, cb := s.bindingsFor(n)
	if cb == nil || len(cb.keyboards) == 0 {
		return
	}
	serial := s.NextSerial()
	for _, b := range cb.keyboards {
		b.SendLeave(serial, n)
	}
	c.ScheduleFlush()
}

// SendKeyboardKey delivers a key transition to n's client.
func (s *Seat) SendKeyboardKey(n Node, key uint32, state backend.KeyState) {
	c, cb := s.bindingsFor(n)
	if cb == nil || len(cb.keyboards) == 0 {
		return
	}
	serial := s.NextSerial()
	for _, b := range cb.keyboards {
		b.SendKey(serial, key, state)
	}
	c.ScheduleFlush()
}

// SendKeyboardModifiers delivers a modifier snapshot to n's client.
func (s *Seat) SendKeyboardModifiers(n Node, mods xkb.Modifiers) {
	c, cb := s.bindingsFor(n)
	if cb == nil || len(cb.keyboards) == 0 {
		return
	}
	serial := s.NextSerial()
	for _, b := range cb.keyboards {
		b.SendModifiers(serial, mods)
	}
	c.ScheduleFlush()
}

func (s *Seat) bindingsFor(n Node) (*client.Client, *clientBindings) {
	c := n.Client()
	if c == nil {
		return nil, nil
	}
	return c, s.bindings[c.ID()]
}
