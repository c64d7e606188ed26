// SPDX-License-Identifier: Unlicense OR MIT

package seat

import (
	"container/list"

	"github.com/transomwm/transom/backend"
)

type historyHandle struct {
	seat *Seat
	elem *list.Element
}

// NodeSeatState is the per-node ledger of seat involvement: which
// seats have the node in their pointer-focus stack, which have
// keyboard focus on it, which grab it, and where the node sits in
// each seat's focus history. It is owned by the node and mutated only
// from this package.
type NodeSeatState struct {
	pointerFoci map[backend.SeatID]*Seat
	kbFoci      map[backend.SeatID]*Seat
	grabs       map[backend.SeatID]*Seat
	history     map[backend.SeatID]historyHandle
}

func (st *NodeSeatState) pointerEnter(s *Seat) {
	if st.pointerFoci == nil {
		st.pointerFoci = make(map[backend.SeatID]*Seat, 1)
	}
	st.pointerFoci[s.id] = s
}

func (st *NodeSeatState) pointerLeave(s *Seat) {
	delete(st.pointerFoci, s.id)
}

// focus records keyboard focus by s and reports whether s is the
// first seat to focus the node.
func (st *NodeSeatState) focus(s *Seat) bool {
	if st.kbFoci == nil {
		st.kbFoci = make(map[backend.SeatID]*Seat, 1)
	}
	st.kbFoci[s.id] = s
	return len(st.kbFoci) == 1
}

// unfocus removes keyboard focus by s and reports whether the node
// thereby stopped being focused by any seat. A seat that never held
// focus on the node reports no edge.
func (st *NodeSeatState) unfocus(s *Seat) bool {
	if _, held := st.kbFoci[s.id]; !held {
		return false
	}
	delete(st.kbFoci, s.id)
	return len(st.kbFoci) == 0
}

func (st *NodeSeatState) addGrab(s *Seat) {
	if st.grabs == nil {
		st.grabs = make(map[backend.SeatID]*Seat, 1)
	}
	st.grabs[s.id] = s
}

func (st *NodeSeatState) removeGrab(s *Seat) {
	delete(st.grabs, s.id)
}

func (st *NodeSeatState) historyElem(s *Seat) *list.Element {
	return st.history[s.id].elem
}

func (st *NodeSeatState) setHistoryElem(s *Seat, e *list.Element) {
	if st.history == nil {
		st.history = make(map[backend.SeatID]historyHandle, 1)
	}
	st.history[s.id] = historyHandle{seat: s, elem: e}
}

func (st *NodeSeatState) removeHistoryElem(s *Seat) *list.Element {
	h, ok := st.history[s.id]
	if !ok {
		return nil
	}
	delete(st.history, s.id)
	return h.elem
}

// IsActive reports whether any seat has keyboard focus on the node.
// Shells use it to latch window activation state.
func (st *NodeSeatState) IsActive() bool {
	return len(st.kbFoci) > 0
}

// DestroyNode evicts a node from all transient seat state. Tree code
// must call it exactly once per node when the node is removed,
// container before children, while the node identity is still valid.
// A node holding keyboard focus observes a final deactivation edge
// before the seats fall back to their focus histories. After the
// surrounding tree mutation completes, callers signal TreeChanged on
// the seats so pointer focus is recomputed.
func DestroyNode(node Node) {
	st := node.SeatState()
	for _, s := range drainSeats(&st.grabs) {
		s.grab = nil
	}
	for _, h := range st.history {
		h.seat.history.Remove(h.elem)
	}
	st.history = nil
	nodeID := node.ID()
	for _, s := range drainSeats(&st.pointerFoci) {
		for len(s.stack) > 0 {
			last := s.stack[len(s.stack)-1]
			s.stack = s.stack[:len(s.stack)-1]
			last.SeatState().pointerLeave(s)
			if last.ID() == nodeID {
				break
			}
		}
	}
	if foci := drainSeats(&st.kbFoci); len(foci) > 0 {
		node.ActiveChanged(false)
		for _, s := range foci {
			s.keyboardNode = s.root
			if tl := s.MostRecentToplevel(false); tl != nil {
				if fs := tl.FocusSurface(s); fs != nil {
					s.FocusNode(fs)
				}
			}
		}
	}
}

func drainSeats(m *map[backend.SeatID]*Seat) []*Seat {
	if len(*m) == 0 {
		return nil
	}
	seats := make([]*Seat, 0, len(*m))
	for _, s := range *m {
		seats = append(seats, s)
	}
	*m = nil
	return seats
}
