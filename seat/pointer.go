// SPDX-License-Identifier: Unlicense OR MIT

package seat

import (
	"github.com/transomwm/transom/backend"
	"github.com/transomwm/transom/fixed"
)

// PointerMotionAbsolute handles a position report relative to an
// output's top left corner. Motion for an unknown output is dropped.
func (s *Seat) PointerMotionAbsolute(out backend.OutputID, x, y fixed.Fixed) {
	if s.outputs == nil {
		s.log.Warn("dropping absolute motion, no output resolver")
		return
	}
	ox, oy, ok := s.outputs.OutputOrigin(out)
	if !ok {
		s.log.WithField("output", out).Warn("dropping absolute motion, unknown output")
		return
	}
	s.setNewPosition(x+fixed.FromInt(ox), y+fixed.FromInt(oy))
}

// PointerMotionRelative handles a pointer movement by (dx, dy).
func (s *Seat) PointerMotionRelative(dx, dy fixed.Fixed) {
	s.setNewPosition(s.pos.X+dx, s.pos.Y+dy)
}

func (s *Seat) setNewPosition(x, y fixed.Fixed) {
	changed := x != s.pos.X || y != s.pos.Y
	s.pos = fixed.Pt(x, y)
	s.handleNewPosition(changed)
}

// TreeChanged recomputes the seat's pointer focus against the current
// scene graph. Tree mutation code calls it once per seat after the
// mutation completes, in particular after DestroyNode, so that a
// stationary pointer does not keep focus on a stale path.
func (s *Seat) TreeChanged() {
	s.handleNewPosition(false)
}

// handleNewPosition reconciles the pointer-focus stack with the node
// path under the current position. posChanged distinguishes real
// motion from a recheck after a tree change.
func (s *Seat) handleNewPosition(posChanged bool) {
	pos := s.pos
	if g := s.grab; g != nil {
		// The stack is frozen while buttons are held. The grab
		// target observes motion in its own space even when the
		// pointer has moved outside of it.
		if posChanged {
			ax, ay := g.node.AbsolutePosition()
			g.node.PointerMotion(s,
				pos.X.ApplyFract(pos.X.RoundDown()-ax),
				pos.Y.ApplyFract(pos.Y.RoundDown()-ay),
			)
		}
		return
	}
	s.found = s.found[:0]
	s.root.FindTreeAt(pos.X.RoundDown(), pos.Y.RoundDown(), &s.found)
	divergence := len(s.found)
	if len(s.stack) < divergence {
		divergence = len(s.stack)
	}
	for i := 0; i < divergence; i++ {
		if s.found[i].Node.ID() != s.stack[i].ID() {
			divergence = i
			break
		}
	}
	if len(s.stack) == divergence && len(s.found) == divergence {
		// Identical paths. At most the fractional position of the
		// leaf changed.
		if posChanged && divergence > 0 {
			leaf := s.found[divergence-1]
			leaf.Node.PointerMotion(s, pos.X.ApplyFract(leaf.X), pos.Y.ApplyFract(leaf.Y))
		}
		return
	}
	if len(s.stack) > 0 {
		s.stack[len(s.stack)-1].PointerUntarget(s)
	}
	for i := len(s.stack) - 1; i >= divergence; i-- {
		old := s.stack[i]
		old.PointerLeave(s)
		old.SeatState().pointerLeave(s)
	}
	s.stack = s.stack[:divergence]
	if len(s.found) == divergence {
		// The new path is a prefix of the old one. The pointer
		// moved to a node that is already entered.
		if divergence > 0 {
			leaf := s.found[divergence-1]
			leaf.Node.PointerMotion(s, pos.X.ApplyFract(leaf.X), pos.Y.ApplyFract(leaf.Y))
		}
	} else {
		for _, f := range s.found[divergence:] {
			f.Node.SeatState().pointerEnter(s)
			f.Node.PointerEnter(s, pos.X.ApplyFract(f.X), pos.Y.ApplyFract(f.Y))
			s.stack = append(s.stack, f.Node)
		}
	}
	if len(s.stack) > 0 {
		s.stack[len(s.stack)-1].PointerTarget(s)
	}
}

// PointerButton handles a button transition. The first press over a
// node establishes an implicit grab that routes all button, scroll
// and motion events to that node until every pressed button has been
// released again.
func (s *Seat) PointerButton(button uint32, state backend.KeyState) {
	switch state {
	case backend.Pressed:
		if g := s.grab; g != nil {
			g.buttons[button] = struct{}{}
			g.node.PointerButton(s, button, state)
			return
		}
		n := s.pointerNode()
		if n == nil {
			return
		}
		s.grab = &grab{
			node:    n,
			buttons: map[uint32]struct{}{button: {}},
		}
		n.SeatState().addGrab(s)
		n.PointerButton(s, button, state)
	case backend.Released:
		g := s.grab
		if g == nil {
			return
		}
		if _, held := g.buttons[button]; !held {
			return
		}
		delete(g.buttons, button)
		g.node.PointerButton(s, button, state)
		if len(g.buttons) == 0 {
			g.node.SeatState().removeGrab(s)
			s.grab = nil
			// The pointer may have moved while the stack was
			// frozen.
			s.handleNewPosition(false)
		}
	}
}

// PointerScroll routes scroll motion to the grab target or, without a
// grab, to the deepest entered node. Scroll with neither is dropped.
func (s *Seat) PointerScroll(delta fixed.Fixed, axis backend.ScrollAxis) {
	n := s.pointerNode()
	if g := s.grab; g != nil {
		n = g.node
	}
	if n == nil {
		return
	}
	n.PointerScroll(s, delta, axis)
}

// pointerNode returns the deepest entered node, or nil before the
// first motion event.
func (s *Seat) pointerNode() Node {
	if len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1]
}
