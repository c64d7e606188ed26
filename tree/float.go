// SPDX-License-Identifier: Unlicense OR MIT

package tree

import (
	"github.com/transomwm/transom/seat"
)

// Float is a container holding one toplevel above the tiled outputs.
type Float struct {
	seat.BaseNode
	root       *Root
	x, y, w, h int32
	toplevel   *Toplevel
}

// NewFloat wraps tl in a floating container covering the given
// rectangle in compositor space. It panics if tl is already attached
// somewhere.
func NewFloat(r *Root, tl *Toplevel, x, y, w, h int32) *Float {
	if tl.out != nil || tl.float != nil {
		panic("tree: toplevel already attached")
	}
	f := &Float{
		BaseNode: seat.NewBase(),
		root:     r,
		x:        x,
		y:        y,
		w:        w,
		h:        h,
		toplevel: tl,
	}
	tl.float = f
	tl.attach(r)
	tl.setRect(0, 0, w, h)
	r.floats = append(r.floats, f)
	r.NotifyTreeChanged()
	return f
}

// Toplevel returns the contained toplevel.
func (f *Float) Toplevel() *Toplevel {
	return f.toplevel
}

// Rect returns the float rectangle in compositor space.
func (f *Float) Rect() (x, y, w, h int32) {
	return f.x, f.y, f.w, f.h
}

// Raise puts the float above all other floats.
func (f *Float) Raise() {
	fl := f.root.floats
	for i, cur := range fl {
		if cur != f {
			continue
		}
		if i == len(fl)-1 {
			return
		}
		copy(fl[i:], fl[i+1:])
		fl[len(fl)-1] = f
		f.root.NotifyTreeChanged()
		return
	}
}

// Move repositions the float.
func (f *Float) Move(x, y int32) {
	f.x = x
	f.y = y
	f.root.NotifyTreeChanged()
}

func (f *Float) contains(x, y int32) bool {
	return x >= f.x && x < f.x+f.w && y >= f.y && y < f.y+f.h
}

func (f *Float) AbsolutePosition() (int32, int32) {
	return f.x, f.y
}

func (f *Float) FindTreeAt(x, y int32, path *[]seat.FoundNode) {
	*path = append(*path, seat.FoundNode{Node: f, X: x, Y: y})
	if tl := f.toplevel; tl != nil && tl.contains(x, y) {
		tl.FindTreeAt(x-tl.x, y-tl.y, path)
	}
}
