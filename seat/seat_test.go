// SPDX-License-Identifier: Unlicense OR MIT

package seat

import (
	"fmt"
	"io"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/transomwm/transom/backend"
	"github.com/transomwm/transom/client"
	"github.com/transomwm/transom/fixed"
	"github.com/transomwm/transom/xkb"
)

// recorder collects the notifications observed by test nodes as
// readable strings so tests can assert exact sequences.
type recorder struct {
	events []string
}

func (r *recorder) add(format string, args ...interface{}) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

// assert checks that the recorded events match want exactly and
// clears the recorder.
func (r *recorder) assert(t *testing.T, want ...string) {
	t.Helper()
	if len(want) == 0 {
		want = []string{}
	}
	got := r.events
	if got == nil {
		got = []string{}
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("event mismatch:\ngot  %v\nwant %v", got, want)
	}
	r.events = nil
}

// testNode is a rectangular scene node. Children are hit-tested in
// order, so earlier children stack above later ones. Types embedding
// testNode set self so hit paths carry the outer value and their
// overrides stay reachable.
type testNode struct {
	BaseNode
	name     string
	rec      *recorder
	owner    *client.Client
	self     Node
	x, y     int32
	w, h     int32
	ax, ay   int32
	children []*testNode
}

func newTestNode(rec *recorder, name string, x, y, w, h int32) *testNode {
	return &testNode{BaseNode: NewBase(), rec: rec, name: name, x: x, y: y, w: w, h: h}
}

// addChild attaches c below n and fixes up the absolute origins of c
// and its descendants.
func (n *testNode) addChild(c *testNode) {
	n.children = append(n.children, c)
	c.reposition(n.ax, n.ay)
}

func (n *testNode) reposition(px, py int32) {
	n.ax = px + n.x
	n.ay = py + n.y
	for _, c := range n.children {
		c.reposition(n.ax, n.ay)
	}
}

func (n *testNode) removeChild(c *testNode) {
	for i, ch := range n.children {
		if ch == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

func (n *testNode) Client() *client.Client {
	return n.owner
}

func (n *testNode) AbsolutePosition() (int32, int32) {
	return n.ax, n.ay
}

func (n *testNode) FindTreeAt(x, y int32, path *[]FoundNode) {
	nd := Node(n)
	if n.self != nil {
		nd = n.self
	}
	*path = append(*path, FoundNode{Node: nd, X: x, Y: y})
	for _, c := range n.children {
		if x >= c.x && x < c.x+c.w && y >= c.y && y < c.y+c.h {
			c.FindTreeAt(x-c.x, y-c.y, path)
			return
		}
	}
}

func (n *testNode) PointerEnter(s *Seat, x, y fixed.Fixed) {
	n.rec.add("enter %s %s,%s", n.name, x, y)
}

func (n *testNode) PointerLeave(s *Seat) {
	n.rec.add("leave %s", n.name)
}

func (n *testNode) PointerMotion(s *Seat, x, y fixed.Fixed) {
	n.rec.add("motion %s %s,%s", n.name, x, y)
}

func (n *testNode) PointerTarget(s *Seat) {
	n.rec.add("target %s", n.name)
}

func (n *testNode) PointerUntarget(s *Seat) {
	n.rec.add("untarget %s", n.name)
}

func (n *testNode) PointerButton(s *Seat, button uint32, state backend.KeyState) {
	n.rec.add("button %s %#x %s", n.name, button, state)
}

func (n *testNode) PointerScroll(s *Seat, delta fixed.Fixed, axis backend.ScrollAxis) {
	n.rec.add("scroll %s %s %s", n.name, delta, axis)
}

func (n *testNode) KeyboardKey(s *Seat, key uint32, state backend.KeyState, mods xkb.Modifiers) {
	n.rec.add("key %s %d %s", n.name, key, state)
}

func (n *testNode) KeyboardModifiers(s *Seat, mods xkb.Modifiers) {
	n.rec.add("mods %s %#x", n.name, mods.Depressed)
}

func (n *testNode) KeyboardFocus(s *Seat) {
	n.rec.add("focus %s", n.name)
}

func (n *testNode) KeyboardUnfocus(s *Seat) {
	n.rec.add("unfocus %s", n.name)
}

func (n *testNode) ActiveChanged(active bool) {
	n.rec.add("active %s %t", n.name, active)
}

// testToplevel is a toplevel window node wrapping a content surface.
type testToplevel struct {
	testNode
	floating bool
	surface  *testNode
}

func newTestToplevel(rec *recorder, name string, x, y, w, h int32) *testToplevel {
	tl := &testToplevel{testNode: *newTestNode(rec, name, x, y, w, h)}
	tl.self = tl
	tl.surface = newTestNode(rec, name+".surface", 0, 0, w, h)
	tl.addChild(tl.surface)
	return tl
}

func (tl *testToplevel) Floating() bool {
	return tl.floating
}

func (tl *testToplevel) FocusSurface(s *Seat) Node {
	if tl.surface == nil {
		return nil
	}
	return tl.surface
}

// fakeMods is a scripted modifier service. It records which keys it
// was fed and reports changed snapshots on demand.
type fakeMods struct {
	calls    []uint32
	snapshot xkb.Modifiers
	changed  bool
}

func (m *fakeMods) Update(key uint32, state backend.KeyState) (xkb.Modifiers, bool) {
	m.calls = append(m.calls, key)
	return m.snapshot, m.changed
}

func (m *fakeMods) Modifiers() xkb.Modifiers {
	return m.snapshot
}

// fakeOutputs resolves every output to a fixed origin.
type fakeOutputs struct {
	x, y int32
}

func (o fakeOutputs) OutputOrigin(id backend.OutputID) (int32, int32, bool) {
	if id == 1 {
		return o.x, o.y, true
	}
	return 0, 0, false
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testClient(id client.ID, name string) *client.Client {
	return client.New(id, name, nil, quietLogger())
}

var testSeatIDs uint32

// newTestSeat builds a seat with a fresh identity over a root with a
// scripted modifier service.
func newTestSeat(root Node, mods ModifierService) *Seat {
	id := backend.SeatID(atomic.AddUint32(&testSeatIDs, 1))
	return New(id, fmt.Sprintf("seat%d", id), root, Options{
		Outputs:   fakeOutputs{},
		Modifiers: mods,
		Log:       quietLogger(),
	})
}

func TestHandleEventRouting(t *testing.T) {
	rec := &recorder{}
	root := newTestNode(rec, "root", 0, 0, 100, 100)
	surf := newTestNode(rec, "surf", 10, 10, 50, 50)
	root.addChild(surf)
	s := newTestSeat(root, &fakeMods{})

	s.HandleEvent(backend.PointerMotionRelative{Seat: 1, DX: fixed.FromInt(20), DY: fixed.FromInt(20)})
	rec.assert(t,
		"enter root 20,20",
		"enter surf 10,10",
		"target surf",
	)

	s.HandleEvent(backend.PointerButton{Seat: 1, Button: backend.BtnLeft, State: backend.Pressed})
	rec.assert(t, "button surf 0x110 Pressed")

	s.HandleEvent(backend.PointerScroll{Seat: 1, Delta: fixed.FromInt(15), Axis: backend.Vertical})
	rec.assert(t, "scroll surf 15 Vertical")

	s.HandleEvent(backend.PointerButton{Seat: 1, Button: backend.BtnLeft, State: backend.Released})
	rec.assert(t, "button surf 0x110 Released")

	s.HandleEvent(backend.KeyboardKey{Seat: 1, Key: 30, State: backend.Pressed})
	rec.assert(t, "key root 30 Pressed")

	// Lifecycle events are not the seat's business.
	s.HandleEvent(backend.OutputAdded{Output: 7})
	rec.assert(t)
}

func TestAbsoluteMotionTranslation(t *testing.T) {
	rec := &recorder{}
	root := newTestNode(rec, "root", 0, 0, 3000, 1000)
	s := New(1, "seat0", root, Options{
		Outputs:   fakeOutputs{x: 1920, y: 0},
		Modifiers: &fakeMods{},
		Log:       quietLogger(),
	})

	s.PointerMotionAbsolute(1, fixed.FromFloat(10.5), fixed.FromInt(20))
	if want := fixed.Pt(fixed.FromFloat(1930.5), fixed.FromInt(20)); s.Pos() != want {
		t.Errorf("position = %s,%s, want %s,%s", s.Pos().X, s.Pos().Y, want.X, want.Y)
	}
	rec.assert(t,
		"enter root 1930.5,20",
		"target root",
	)
}

func TestAbsoluteMotionUnknownOutputDropped(t *testing.T) {
	rec := &recorder{}
	root := newTestNode(rec, "root", 0, 0, 100, 100)
	s := newTestSeat(root, &fakeMods{})

	s.PointerMotionAbsolute(9, fixed.FromInt(10), fixed.FromInt(10))
	if got := s.Pos(); got != fixed.Pt(0, 0) {
		t.Errorf("position moved to %s,%s on unknown output", got.X, got.Y)
	}
	rec.assert(t)
}

func TestSeatDestroyReleasesState(t *testing.T) {
	rec := &recorder{}
	root := newTestNode(rec, "root", 0, 0, 100, 100)
	tl := newTestToplevel(rec, "win", 10, 10, 50, 50)
	root.addChild(&tl.testNode)
	s := newTestSeat(root, &fakeMods{})

	s.PointerMotionRelative(fixed.FromInt(20), fixed.FromInt(20))
	s.FocusToplevel(tl)
	rec.events = nil

	s.Destroy()
	rec.assert(t,
		"untarget win.surface",
		"leave win.surface",
		"leave win",
		"leave root",
		"unfocus win.surface",
		"active win.surface false",
	)
	if tl.SeatState().historyElem(s) != nil {
		t.Error("history handle survived seat destruction")
	}
	if tl.surface.SeatState().IsActive() {
		t.Error("surface still active after seat destruction")
	}
}
