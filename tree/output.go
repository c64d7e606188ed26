// SPDX-License-Identifier: Unlicense OR MIT

package tree

import (
	"github.com/sirupsen/logrus"
	"github.com/transomwm/transom/backend"
	"github.com/transomwm/transom/seat"
)

// Output is one display area of the scene. Toplevels attached to it
// tile side by side across its width.
type Output struct {
	seat.BaseNode
	root       *Root
	log        *logrus.Entry
	id         backend.OutputID
	x, y, w, h int32
	toplevels  []*Toplevel
}

// OutputID returns the backend identity of the output.
func (o *Output) OutputID() backend.OutputID {
	return o.id
}

// Rect returns the output rectangle in compositor space.
func (o *Output) Rect() (x, y, w, h int32) {
	return o.x, o.y, o.w, o.h
}

// Toplevels returns the tiled toplevels, left to right.
func (o *Output) Toplevels() []*Toplevel {
	return o.toplevels
}

// AttachToplevel tiles tl onto o. It panics if tl is already attached
// somewhere.
func (o *Output) AttachToplevel(tl *Toplevel) {
	if tl.out != nil || tl.float != nil {
		panic("tree: toplevel already attached")
	}
	tl.out = o
	o.toplevels = append(o.toplevels, tl)
	tl.attach(o.root)
	o.retile()
	o.root.NotifyTreeChanged()
}

func (o *Output) removeToplevel(tl *Toplevel) {
	for i, cur := range o.toplevels {
		if cur == tl {
			o.toplevels = append(o.toplevels[:i], o.toplevels[i+1:]...)
			o.retile()
			return
		}
	}
}

// retile recomputes the column layout after an attach or detach.
func (o *Output) retile() {
	n := int32(len(o.toplevels))
	if n == 0 {
		return
	}
	for i, tl := range o.toplevels {
		left := int32(i) * o.w / n
		right := (int32(i) + 1) * o.w / n
		tl.setRect(left, 0, right-left, o.h)
	}
}

func (o *Output) contains(x, y int32) bool {
	return x >= o.x && x < o.x+o.w && y >= o.y && y < o.y+o.h
}

func (o *Output) AbsolutePosition() (int32, int32) {
	return o.x, o.y
}

func (o *Output) FindTreeAt(x, y int32, path *[]seat.FoundNode) {
	*path = append(*path, seat.FoundNode{Node: o, X: x, Y: y})
	for _, tl := range o.toplevels {
		if tl.contains(x, y) {
			tl.FindTreeAt(x-tl.x, y-tl.y, path)
			return
		}
	}
}
