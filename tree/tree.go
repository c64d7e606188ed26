// SPDX-License-Identifier: Unlicense OR MIT

/*
Package tree implements the scene graph routed by package seat: a
root holding tiled outputs below a stack of floating containers,
toplevel windows, their content surfaces and popups.

The tree is manipulated from the compositor goroutine only. Every
mutation that can change what sits under a pointer ends with
NotifyTreeChanged so the registered seats reconcile their focus
against the new shape.
*/
package tree

import (
	"github.com/sirupsen/logrus"
	"github.com/transomwm/transom/backend"
	"github.com/transomwm/transom/seat"
)

// Root is the top of the scene graph. Hit tests descend into floating
// containers before outputs, the most recently raised float first.
type Root struct {
	seat.BaseNode
	log     *logrus.Entry
	outputs []*Output
	floats  []*Float
	seats   []*seat.Seat
}

// NewRoot returns an empty scene graph root.
func NewRoot(log *logrus.Logger) *Root {
	if log == nil {
		log = logrus.New()
	}
	return &Root{
		BaseNode: seat.NewBase(),
		log:      log.WithField("node", "root"),
	}
}

// AddSeat registers s for tree-change notifications.
func (r *Root) AddSeat(s *seat.Seat) {
	r.seats = append(r.seats, s)
}

// RemoveSeat deregisters s. Callers remove a seat before destroying
// it so a later tree change cannot repopulate its focus state.
func (r *Root) RemoveSeat(s *seat.Seat) {
	for i, reg := range r.seats {
		if reg == s {
			r.seats = append(r.seats[:i], r.seats[i+1:]...)
			return
		}
	}
}

// Seats returns the registered seats.
func (r *Root) Seats() []*seat.Seat {
	return r.seats
}

// NotifyTreeChanged lets every registered seat reconcile its pointer
// focus with the current tree.
func (r *Root) NotifyTreeChanged() {
	for _, s := range r.seats {
		s.TreeChanged()
	}
}

// AddOutput grows the scene by an output covering the given rectangle
// in compositor space.
func (r *Root) AddOutput(id backend.OutputID, x, y, w, h int32) *Output {
	o := &Output{
		BaseNode: seat.NewBase(),
		root:     r,
		log:      r.log.Logger.WithField("output", id),
		id:       id,
		x:        x,
		y:        y,
		w:        w,
		h:        h,
	}
	r.outputs = append(r.outputs, o)
	o.log.WithFields(logrus.Fields{"width": w, "height": h}).Info("output added")
	r.NotifyTreeChanged()
	return o
}

// Output returns the output with the given backend identity, or nil.
func (r *Root) Output(id backend.OutputID) *Output {
	for _, o := range r.outputs {
		if o.id == id {
			return o
		}
	}
	return nil
}

// RemoveOutput tears down an output and every toplevel tiled on it.
func (r *Root) RemoveOutput(id backend.OutputID) {
	for i, o := range r.outputs {
		if o.id != id {
			continue
		}
		r.outputs = append(r.outputs[:i], r.outputs[i+1:]...)
		for len(o.toplevels) > 0 {
			o.toplevels[len(o.toplevels)-1].Close()
		}
		seat.DestroyNode(o)
		o.log.Info("output removed")
		r.NotifyTreeChanged()
		return
	}
}

// OutputOrigin resolves an output's origin in compositor space. It
// implements seat.OutputResolver.
func (r *Root) OutputOrigin(id backend.OutputID) (int32, int32, bool) {
	for _, o := range r.outputs {
		if o.id == id {
			return o.x, o.y, true
		}
	}
	return 0, 0, false
}

// FindTreeAt appends the hit path at (x, y).
func (r *Root) FindTreeAt(x, y int32, path *[]seat.FoundNode) {
	*path = append(*path, seat.FoundNode{Node: r, X: x, Y: y})
	for i := len(r.floats) - 1; i >= 0; i-- {
		f := r.floats[i]
		if f.contains(x, y) {
			f.FindTreeAt(x-f.x, y-f.y, path)
			return
		}
	}
	for _, o := range r.outputs {
		if o.contains(x, y) {
			o.FindTreeAt(x-o.x, y-o.y, path)
			return
		}
	}
}

// Shutdown tears down the whole scene: floats, outputs with their
// toplevels, the root itself last. Seats must be deregistered first.
func (r *Root) Shutdown() {
	for len(r.floats) > 0 {
		r.floats[len(r.floats)-1].toplevel.Close()
	}
	for len(r.outputs) > 0 {
		r.RemoveOutput(r.outputs[len(r.outputs)-1].id)
	}
	seat.DestroyNode(r)
	r.log.Info("scene torn down")
}

func (r *Root) removeFloat(f *Float) {
	for i, cur := range r.floats {
		if cur == f {
			r.floats = append(r.floats[:i], r.floats[i+1:]...)
			return
		}
	}
}
