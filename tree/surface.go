// SPDX-License-Identifier: Unlicense OR MIT

package tree

import (
	"github.com/transomwm/transom/backend"
	"github.com/transomwm/transom/client"
	"github.com/transomwm/transom/fixed"
	"github.com/transomwm/transom/seat"
	"github.com/transomwm/transom/xkb"
)

// Surface is a client content rectangle, the node corresponding to a
// protocol object on the client side. Input routed to it is forwarded
// to the owning client's protocol bindings.
type Surface struct {
	seat.BaseNode
	client     *client.Client
	toplevel   *Toplevel
	popupOwner *Popup
	x, y, w, h int32
	cursor     backend.Cursor
	popups     []*Popup
}

// NewSurface returns a surface owned by c with the given size. The
// surface joins the scene once it gets a role: toplevel content via
// NewToplevel or popup content via AttachPopup.
func NewSurface(c *client.Client, w, h int32) *Surface {
	return &Surface{
		BaseNode: seat.NewBase(),
		client:   c,
		w:        w,
		h:        h,
		cursor:   backend.CursorDefault,
	}
}

// Client returns the owning client.
func (sf *Surface) Client() *client.Client {
	return sf.client
}

// SetCursor sets the cursor shape shown while the surface is a
// pointer target. It takes effect when a pointer next targets the
// surface.
func (sf *Surface) SetCursor(c backend.Cursor) {
	sf.cursor = c
}

// Size returns the surface extent.
func (sf *Surface) Size() (w, h int32) {
	return sf.w, sf.h
}

// Toplevel returns the toplevel the surface ultimately belongs to,
// walking popup parents, or nil for a surface without a role.
func (sf *Surface) Toplevel() *Toplevel {
	switch {
	case sf.toplevel != nil:
		return sf.toplevel
	case sf.popupOwner != nil:
		return sf.popupOwner.parent.Toplevel()
	}
	return nil
}

func (sf *Surface) root() *Root {
	tl := sf.Toplevel()
	if tl == nil {
		return nil
	}
	return tl.root()
}

func (sf *Surface) setRect(x, y, w, h int32) {
	sf.x, sf.y, sf.w, sf.h = x, y, w, h
}

func (sf *Surface) contains(x, y int32) bool {
	return x >= sf.x && x < sf.x+sf.w && y >= sf.y && y < sf.y+sf.h
}

func (sf *Surface) AbsolutePosition() (int32, int32) {
	var px, py int32
	switch {
	case sf.toplevel != nil:
		px, py = sf.toplevel.AbsolutePosition()
	case sf.popupOwner != nil:
		px, py = sf.popupOwner.AbsolutePosition()
	}
	return px + sf.x, py + sf.y
}

func (sf *Surface) FindTreeAt(x, y int32, path *[]seat.FoundNode) {
	*path = append(*path, seat.FoundNode{Node: sf, X: x, Y: y})
	for i := len(sf.popups) - 1; i >= 0; i-- {
		p := sf.popups[i]
		if p.contains(x, y) {
			p.FindTreeAt(x-p.x, y-p.y, path)
			return
		}
	}
}

func (sf *Surface) PointerEnter(s *seat.Seat, x, y fixed.Fixed) {
	s.SendPointerEnter(sf, x, y)
}

func (sf *Surface) PointerLeave(s *seat.Seat) {
	s.SendPointerLeave(sf)
}

func (sf *Surface) PointerMotion(s *seat.Seat, x, y fixed.Fixed) {
	s.SendPointerMotion(sf, x, y)
}

// PointerButton forwards the button to the client. A press first
// moves keyboard focus to the surface's toplevel, raising it when it
// floats.
func (sf *Surface) PointerButton(s *seat.Seat, button uint32, state backend.KeyState) {
	if state == backend.Pressed {
		if tl := sf.Toplevel(); tl != nil {
			if tl.float != nil {
				tl.float.Raise()
			}
			s.FocusToplevel(tl)
		}
	}
	s.SendPointerButton(sf, button, state)
}

func (sf *Surface) PointerScroll(s *seat.Seat, delta fixed.Fixed, axis backend.ScrollAxis) {
	s.SendPointerScroll(sf, delta, axis)
}

func (sf *Surface) PointerTarget(s *seat.Seat) {
	s.SetCursor(sf.cursor)
}

func (sf *Surface) PointerUntarget(s *seat.Seat) {
	s.SetCursor(backend.CursorDefault)
}

func (sf *Surface) KeyboardKey(s *seat.Seat, key uint32, state backend.KeyState, mods xkb.Modifiers) {
	s.SendKeyboardKey(sf, key, state)
}

func (sf *Surface) KeyboardModifiers(s *seat.Seat, mods xkb.Modifiers) {
	s.SendKeyboardModifiers(sf, mods)
}

func (sf *Surface) KeyboardFocus(s *seat.Seat) {
	s.SendKeyboardEnter(sf)
}

func (sf *Surface) KeyboardUnfocus(s *seat.Seat) {
	s.SendKeyboardLeave(sf)
}

// ActiveChanged forwards the per-surface activation edge to the
// toplevel the surface belongs to.
func (sf *Surface) ActiveChanged(active bool) {
	if tl := sf.Toplevel(); tl != nil {
		tl.ActiveChanged(active)
	}
}

// destroySurfaceTree evicts sf and its popup subtree from all seat
// state, parents before children.
func destroySurfaceTree(sf *Surface) {
	seat.DestroyNode(sf)
	for _, p := range sf.popups {
		seat.DestroyNode(p)
		destroySurfaceTree(p.surface)
	}
	sf.popups = nil
}

// Popup is a transient node anchored to a parent surface, stacked
// above the parent's content.
type Popup struct {
	seat.BaseNode
	parent  *Surface
	surface *Surface
	x, y    int32
}

// AttachPopup gives sf the popup role, anchored at (x, y) in the
// parent surface's coordinates. It panics if sf already has a role.
func (parent *Surface) AttachPopup(sf *Surface, x, y int32) *Popup {
	if sf.toplevel != nil || sf.popupOwner != nil {
		panic("tree: surface already has a role")
	}
	p := &Popup{
		BaseNode: seat.NewBase(),
		parent:   parent,
		surface:  sf,
		x:        x,
		y:        y,
	}
	sf.popupOwner = p
	parent.popups = append(parent.popups, p)
	if r := parent.root(); r != nil {
		r.NotifyTreeChanged()
	}
	return p
}

// Surface returns the popup's content surface.
func (p *Popup) Surface() *Surface {
	return p.surface
}

// Close detaches the popup and its surface tree from the scene.
func (p *Popup) Close() {
	parent := p.parent
	for i, cur := range parent.popups {
		if cur == p {
			parent.popups = append(parent.popups[:i], parent.popups[i+1:]...)
			break
		}
	}
	seat.DestroyNode(p)
	destroySurfaceTree(p.surface)
	p.surface.popupOwner = nil
	if r := parent.root(); r != nil {
		r.NotifyTreeChanged()
	}
}

func (p *Popup) Client() *client.Client {
	return p.surface.Client()
}

func (p *Popup) contains(x, y int32) bool {
	return x >= p.x && x < p.x+p.surface.w && y >= p.y && y < p.y+p.surface.h
}

func (p *Popup) AbsolutePosition() (int32, int32) {
	px, py := p.parent.AbsolutePosition()
	return px + p.x, py + p.y
}

func (p *Popup) FindTreeAt(x, y int32, path *[]seat.FoundNode) {
	*path = append(*path, seat.FoundNode{Node: p, X: x, Y: y})
	if sf := p.surface; sf.contains(x, y) {
		sf.FindTreeAt(x-sf.x, y-sf.y, path)
	}
}
