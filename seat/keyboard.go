// SPDX-License-Identifier: Unlicense OR MIT

package seat

import (
	"github.com/transomwm/transom/backend"
	"github.com/transomwm/transom/client"
	"github.com/transomwm/transom/data"
)

// KeyboardKey handles a key transition. Duplicate reports, a press
// for a key already down or a release for a key already up, are
// dropped before they reach the modifier service or any node.
func (s *Seat) KeyboardKey(key uint32, state backend.KeyState) {
	switch state {
	case backend.Pressed:
		if _, held := s.pressedKeys[key]; held {
			return
		}
		s.pressedKeys[key] = struct{}{}
	case backend.Released:
		if _, held := s.pressedKeys[key]; !held {
			return
		}
		delete(s.pressedKeys, key)
	}
	mods, changed := s.mods.Update(key, state)
	n := s.keyboardNode
	n.KeyboardKey(s, key, state, mods)
	if changed {
		n.KeyboardModifiers(s, mods)
	}
}

// FocusNode moves keyboard focus to n. Focusing the node that already
// holds focus is a no-op. The old node is always unfocused; the
// activation edges fire only when a node gains its first or loses its
// last focusing seat. When focus crosses a client boundary the
// clipboard state is renegotiated with the new client.
func (s *Seat) FocusNode(n Node) {
	old := s.keyboardNode
	if old.ID() == n.ID() {
		return
	}
	old.KeyboardUnfocus(s)
	if old.SeatState().unfocus(s) {
		old.ActiveChanged(false)
	}
	if n.SeatState().focus(s) {
		n.ActiveChanged(true)
	}
	n.KeyboardFocus(s)
	s.keyboardNode = n
	newClient := n.Client()
	if newClient != nil && !sameClient(old.Client(), newClient) {
		s.offerSelection(s.selection, newClient, false)
		s.offerSelection(s.primarySelection, newClient, true)
	}
}

func sameClient(a, b *client.Client) bool {
	return a != nil && b != nil && a.ID() == b.ID()
}

// FocusToplevel records tl as the most recently focused toplevel and
// moves keyboard focus to its focus surface. A toplevel without a
// focus surface still enters the history.
func (s *Seat) FocusToplevel(tl ToplevelNode) {
	s.historyAppend(tl)
	if fs := tl.FocusSurface(s); fs != nil {
		s.FocusNode(fs)
	}
}

// MostRecentToplevel returns the newest entry of the seat's focus
// history, skipping floating toplevels when tiledOnly is set, or nil
// if no toplevel qualifies.
func (s *Seat) MostRecentToplevel(tiledOnly bool) ToplevelNode {
	for e := s.history.Back(); e != nil; e = e.Prev() {
		tl := e.Value.(ToplevelNode)
		if tiledOnly && tl.Floating() {
			continue
		}
		return tl
	}
	return nil
}

// historyAppend moves tl to the most-recent end of the focus history,
// inserting it if absent. The toplevel's reverse handle keeps both
// operations constant time.
func (s *Seat) historyAppend(tl ToplevelNode) {
	st := tl.SeatState()
	if e := st.historyElem(s); e != nil {
		s.history.MoveToBack(e)
		return
	}
	st.setHistoryElem(s, s.history.PushBack(tl))
}

// SetSelection installs src as the seat's clipboard selection and
// announces it to the client holding keyboard focus. A nil src clears
// the selection.
func (s *Seat) SetSelection(src data.Source) {
	s.selection = src
	if c := s.keyboardNode.Client(); c != nil {
		s.offerSelection(src, c, false)
	}
}

// SetPrimarySelection installs src as the seat's primary selection
// and announces it to the client holding keyboard focus.
func (s *Seat) SetPrimarySelection(src data.Source) {
	s.primarySelection = src
	if c := s.keyboardNode.Client(); c != nil {
		s.offerSelection(src, c, true)
	}
}

// Selection returns the seat's clipboard selection source, if any.
func (s *Seat) Selection() data.Source {
	return s.selection
}

// PrimarySelection returns the seat's primary selection source, if
// any.
func (s *Seat) PrimarySelection() data.Source {
	return s.primarySelection
}
