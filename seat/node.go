// SPDX-License-Identifier: Unlicense OR MIT

package seat

import (
	"sync/atomic"

	"github.com/transomwm/transom/backend"
	"github.com/transomwm/transom/client"
	"github.com/transomwm/transom/fixed"
	"github.com/transomwm/transom/xkb"
)

// A NodeID is the stable identity of a scene node. Identities are
// never reused within a process.
type NodeID uint64

var nodeIDs atomic.Uint64

// NextNodeID allocates a fresh node identity.
func NextNodeID() NodeID {
	return NodeID(nodeIDs.Add(1))
}

// A FoundNode is one entry of a hit path: a node and the hit point in
// the node's local integer coordinates.
type FoundNode struct {
	Node Node
	X, Y int32
}

// Node is the capability interface of every scene-graph entity that
// can be hit-tested or receive routed input.
//
// The notification methods are exactly that: notifications. They
// cannot fail, and they are only ever invoked on nodes still attached
// to the tree; DestroyNode evicts a node from all seat state before
// its identity becomes invalid.
type Node interface {
	// ID returns the node's stable identity.
	ID() NodeID
	// SeatState returns the node's per-seat bookkeeping ledger.
	SeatState() *NodeSeatState
	// Client returns the client owning the node, or nil for nodes
	// belonging to the compositor itself.
	Client() *client.Client
	// AbsolutePosition returns the node's origin in compositor space.
	AbsolutePosition() (x, y int32)
	// FindTreeAt appends the node to path and recurses into the
	// child containing (x, y), both in the node's local coordinates.
	FindTreeAt(x, y int32, path *[]FoundNode)

	// Pointer focus lifecycle, invoked on the divergent suffix of
	// the hit path.
	PointerEnter(s *Seat, x, y fixed.Fixed)
	PointerLeave(s *Seat)
	PointerMotion(s *Seat, x, y fixed.Fixed)

	// PointerTarget and PointerUntarget frame the period during
	// which the node is the deepest entered node of a seat.
	PointerTarget(s *Seat)
	PointerUntarget(s *Seat)

	// Raw input, routed by grab or targeting state.
	PointerButton(s *Seat, button uint32, state backend.KeyState)
	PointerScroll(s *Seat, delta fixed.Fixed, axis backend.ScrollAxis)
	KeyboardKey(s *Seat, key uint32, state backend.KeyState, mods xkb.Modifiers)
	KeyboardModifiers(s *Seat, mods xkb.Modifiers)

	// Keyboard focus lifecycle. ActiveChanged fires only on the
	// first-focus and last-unfocus edges across all seats.
	KeyboardFocus(s *Seat)
	KeyboardUnfocus(s *Seat)
	ActiveChanged(active bool)
}

// A ToplevelNode is a focusable window node that participates in seat
// focus histories.
type ToplevelNode interface {
	Node
	// Floating reports whether the toplevel is in a floating
	// container rather than tiled on an output.
	Floating() bool
	// FocusSurface returns the node that receives keyboard focus
	// when the toplevel is focused, or nil if it has none yet.
	FocusSurface(s *Seat) Node
}

// BaseNode implements the identity and bookkeeping half of Node plus
// no-op notifications. Concrete nodes embed it and override what they
// route.
type BaseNode struct {
	id NodeID
	st NodeSeatState
}

// NewBase returns a BaseNode with a fresh identity.
func NewBase() BaseNode {
	return BaseNode{id: NextNodeID()}
}

func (b *BaseNode) ID() NodeID                     { return b.id }
func (b *BaseNode) SeatState() *NodeSeatState      { return &b.st }
func (b *BaseNode) Client() *client.Client         { return nil }
func (b *BaseNode) AbsolutePosition() (x, y int32) { return 0, 0 }

func (b *BaseNode) FindTreeAt(x, y int32, path *[]FoundNode) {}

func (b *BaseNode) PointerEnter(s *Seat, x, y fixed.Fixed)  {}
func (b *BaseNode) PointerLeave(s *Seat)                    {}
func (b *BaseNode) PointerMotion(s *Seat, x, y fixed.Fixed) {}
func (b *BaseNode) PointerTarget(s *Seat)                   {}
func (b *BaseNode) PointerUntarget(s *Seat)                 {}

func (b *BaseNode) PointerButton(s *Seat, button uint32, state backend.KeyState)      {}
func (b *BaseNode) PointerScroll(s *Seat, delta fixed.Fixed, axis backend.ScrollAxis) {}
func (b *BaseNode) KeyboardKey(s *Seat, key uint32, state backend.KeyState, mods xkb.Modifiers) {
}
func (b *BaseNode) KeyboardModifiers(s *Seat, mods xkb.Modifiers) {}

func (b *BaseNode) KeyboardFocus(s *Seat)     {}
func (b *BaseNode) KeyboardUnfocus(s *Seat)   {}
func (b *BaseNode) ActiveChanged(active bool) {}
