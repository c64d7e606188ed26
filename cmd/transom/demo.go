// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/transomwm/transom/backend"
	"github.com/transomwm/transom/client"
	"github.com/transomwm/transom/compositor"
	"github.com/transomwm/transom/data"
	"github.com/transomwm/transom/fixed"
	"github.com/transomwm/transom/seat"
	"github.com/transomwm/transom/tree"
	"github.com/transomwm/transom/xkb"
)

// demo owns two in-process clients and populates the first announced
// output with their windows.
type demo struct {
	log       *logrus.Logger
	left      *client.Client
	right     *client.Client
	populated bool
}

func newDemo(log *logrus.Logger) *demo {
	return &demo{log: log}
}

func (d *demo) createClients(st *compositor.State) {
	d.left = st.AddClient("left", nil)
	d.right = st.AddClient("right", nil)
}

func (d *demo) seatAdded(st *compositor.State, s *seat.Seat) {
	for _, c := range []*client.Client{d.left, d.right} {
		log := d.log.WithFields(logrus.Fields{"demo": c.Name(), "seat": s.Name()})
		s.AddPointer(c, &logPointer{log: log})
		s.AddKeyboard(c, &logKeyboard{log: log})
		s.AddDataDevice(c, &logData{log: log})
		s.AddPrimarySelectionDevice(c, &logData{log: log.WithField("selection", "primary")})
	}
	// A deferred source on the primary selection, so switching focus
	// between the demo clients shows the renegotiation live.
	s.SetPrimarySelection(data.NewFunc(func(string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("transom demo primary selection")), nil
	}))
}

func (d *demo) outputAdded(st *compositor.State, o *tree.Output) {
	if d.populated {
		return
	}
	d.populated = true

	o.AttachToplevel(tree.NewToplevel("left", tree.NewSurface(d.left, 0, 0)))
	rightSurface := tree.NewSurface(d.right, 0, 0)
	rightSurface.SetCursor(backend.CursorText)
	o.AttachToplevel(tree.NewToplevel("right", rightSurface))

	// A floating panel over the seam between the two tiles.
	_, _, w, _ := o.Rect()
	panel := tree.NewToplevel("panel", tree.NewSurface(d.right, 0, 0))
	tree.NewFloat(st.Root(), panel, w/2-160, 40, 320, 200)
	d.log.Info("demo scene populated")
}

// logPointer logs the pointer traffic one demo client receives.
type logPointer struct {
	log *logrus.Entry
}

func (p *logPointer) SendEnter(serial uint32, n seat.Node, x, y fixed.Fixed) {
	p.log.WithFields(logrus.Fields{"x": x, "y": y}).Info("pointer enter")
}

func (p *logPointer) SendLeave(serial uint32, n seat.Node) {
	p.log.Info("pointer leave")
}

func (p *logPointer) SendMotion(x, y fixed.Fixed) {
	p.log.WithFields(logrus.Fields{"x": x, "y": y}).Debug("pointer motion")
}

func (p *logPointer) SendButton(serial uint32, button uint32, state backend.KeyState) {
	p.log.WithFields(logrus.Fields{
		"button": fmt.Sprintf("%#x", button),
		"state":  state.String(),
	}).Info("pointer button")
}

func (p *logPointer) SendScroll(delta fixed.Fixed, axis backend.ScrollAxis) {
	p.log.WithFields(logrus.Fields{"delta": delta, "axis": axis.String()}).Debug("pointer scroll")
}

// logKeyboard logs keyboard traffic.
type logKeyboard struct {
	log *logrus.Entry
}

func (k *logKeyboard) SendKeymap(fd int, size uint32) {
	k.log.WithField("size", size).Debug("keymap received")
}

func (k *logKeyboard) SendRepeatInfo(rate, delay int32) {
	k.log.WithFields(logrus.Fields{"rate": rate, "delay": delay}).Debug("repeat info")
}

func (k *logKeyboard) SendEnter(serial uint32, n seat.Node, pressed []uint32) {
	k.log.WithField("pressed", pressed).Info("keyboard enter")
}

func (k *logKeyboard) SendLeave(serial uint32, n seat.Node) {
	k.log.Info("keyboard leave")
}

func (k *logKeyboard) SendKey(serial uint32, key uint32, state backend.KeyState) {
	k.log.WithFields(logrus.Fields{"key": key, "state": state.String()}).Info("key")
}

func (k *logKeyboard) SendModifiers(serial uint32, mods xkb.Modifiers) {
	k.log.WithField("depressed", fmt.Sprintf("%#x", mods.Depressed)).Debug("modifiers")
}

// logData logs selection announcements.
type logData struct {
	log *logrus.Entry
}

func (d *logData) SendOffer(src data.Source) {
	d.log.WithField("mimes", src.Mimes()).Info("selection offered")
}

func (d *logData) SendSelection(src data.Source) {
	if src == nil {
		d.log.Info("selection cleared")
		return
	}
	d.log.Info("selection set")
}
