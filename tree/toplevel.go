// SPDX-License-Identifier: Unlicense OR MIT

package tree

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/transomwm/transom/client"
	"github.com/transomwm/transom/fixed"
	"github.com/transomwm/transom/seat"
)

// Toplevel is a focusable window: the container of one content
// surface, either tiled on an output or wrapped in a Float.
type Toplevel struct {
	seat.BaseNode
	identifier uuid.UUID
	title      string
	log        *logrus.Entry
	out        *Output
	float      *Float
	surface    *Surface
	x, y, w, h int32

	activeSurfaces int
	activated      bool
}

// NewToplevel gives sf the toplevel role under the given title. It
// panics if sf already has a role. The toplevel joins the scene
// through Output.AttachToplevel or NewFloat.
func NewToplevel(title string, sf *Surface) *Toplevel {
	if sf.toplevel != nil || sf.popupOwner != nil {
		panic("tree: surface already has a role")
	}
	tl := &Toplevel{
		BaseNode:   seat.NewBase(),
		identifier: uuid.New(),
		title:      title,
		surface:    sf,
	}
	sf.toplevel = tl
	return tl
}

// Identifier returns the stable external identity of the toplevel.
func (tl *Toplevel) Identifier() uuid.UUID {
	return tl.identifier
}

// Title returns the toplevel title.
func (tl *Toplevel) Title() string {
	return tl.title
}

// SetTitle renames the toplevel.
func (tl *Toplevel) SetTitle(title string) {
	tl.title = title
	if tl.log != nil {
		tl.log = tl.log.WithField("title", title)
	}
}

// Activated reports whether any seat has keyboard focus inside the
// toplevel.
func (tl *Toplevel) Activated() bool {
	return tl.activated
}

// Floating reports whether the toplevel sits in a floating container.
func (tl *Toplevel) Floating() bool {
	return tl.float != nil
}

// FocusSurface returns the node that receives keyboard focus when the
// toplevel is focused.
func (tl *Toplevel) FocusSurface(s *seat.Seat) seat.Node {
	if tl.surface == nil {
		return nil
	}
	return tl.surface
}

// Surface returns the content surface.
func (tl *Toplevel) Surface() *Surface {
	return tl.surface
}

// Client returns the owner of the toplevel's surface.
func (tl *Toplevel) Client() *client.Client {
	if tl.surface == nil {
		return nil
	}
	return tl.surface.Client()
}

// Close detaches tl from the scene and evicts it and its surface
// tree from all seat state, container before children, so keyboard
// focus falls back through the seats' histories.
func (tl *Toplevel) Close() {
	r := tl.root()
	if f := tl.float; f != nil {
		f.root.removeFloat(f)
		seat.DestroyNode(f)
		tl.float = nil
	}
	if o := tl.out; o != nil {
		o.removeToplevel(tl)
		tl.out = nil
	}
	seat.DestroyNode(tl)
	if sf := tl.surface; sf != nil {
		destroySurfaceTree(sf)
	}
	if tl.log != nil {
		tl.log.Info("toplevel closed")
	}
	if r != nil {
		r.NotifyTreeChanged()
	}
}

func (tl *Toplevel) attach(r *Root) {
	tl.log = r.log.Logger.WithFields(logrus.Fields{
		"toplevel": tl.identifier,
		"title":    tl.title,
	})
	tl.log.Info("toplevel attached")
}

func (tl *Toplevel) root() *Root {
	switch {
	case tl.out != nil:
		return tl.out.root
	case tl.float != nil:
		return tl.float.root
	}
	return nil
}

func (tl *Toplevel) setRect(x, y, w, h int32) {
	tl.x, tl.y, tl.w, tl.h = x, y, w, h
	if tl.surface != nil {
		tl.surface.setRect(0, 0, w, h)
	}
}

func (tl *Toplevel) contains(x, y int32) bool {
	return x >= tl.x && x < tl.x+tl.w && y >= tl.y && y < tl.y+tl.h
}

func (tl *Toplevel) AbsolutePosition() (int32, int32) {
	var px, py int32
	switch {
	case tl.out != nil:
		px, py = tl.out.AbsolutePosition()
	case tl.float != nil:
		px, py = tl.float.AbsolutePosition()
	}
	return px + tl.x, py + tl.y
}

func (tl *Toplevel) FindTreeAt(x, y int32, path *[]seat.FoundNode) {
	*path = append(*path, seat.FoundNode{Node: tl, X: x, Y: y})
	if sf := tl.surface; sf != nil && sf.contains(x, y) {
		sf.FindTreeAt(x-sf.x, y-sf.y, path)
	}
}

// PointerEnter implements focus follows mouse: the toplevel under the
// pointer takes keyboard focus.
func (tl *Toplevel) PointerEnter(s *seat.Seat, x, y fixed.Fixed) {
	s.FocusToplevel(tl)
}

// ActiveChanged aggregates activation edges from the toplevel's
// surfaces. The toplevel counts as activated while any of its
// surfaces, popups included, holds keyboard focus on some seat.
func (tl *Toplevel) ActiveChanged(active bool) {
	if active {
		tl.activeSurfaces++
	} else {
		tl.activeSurfaces--
	}
	act := tl.activeSurfaces > 0
	if act == tl.activated {
		return
	}
	tl.activated = act
	if tl.log != nil {
		tl.log.WithField("active", act).Debug("activation changed")
	}
}
