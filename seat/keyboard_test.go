// SPDX-License-Identifier: Unlicense OR MIT

package seat

import (
	"testing"

	"github.com/transomwm/transom/backend"
	"github.com/transomwm/transom/client"
	"github.com/transomwm/transom/data"
	"github.com/transomwm/transom/fixed"
	"github.com/transomwm/transom/xkb"
)

// clientNode forwards its notifications to the protocol bindings of
// its client, the way real surface nodes do.
type clientNode struct {
	testNode
}

func newClientNode(rec *recorder, owner *client.Client, name string, x, y, w, h int32) *clientNode {
	n := &clientNode{testNode: *newTestNode(rec, name, x, y, w, h)}
	n.owner = owner
	n.self = n
	return n
}

func (n *clientNode) PointerEnter(s *Seat, x, y fixed.Fixed) {
	s.SendPointerEnter(n, x, y)
}

func (n *clientNode) PointerLeave(s *Seat) {
	s.SendPointerLeave(n)
}

func (n *clientNode) PointerMotion(s *Seat, x, y fixed.Fixed) {
	s.SendPointerMotion(n, x, y)
}

func (n *clientNode) PointerButton(s *Seat, button uint32, state backend.KeyState) {
	s.SendPointerButton(n, button, state)
}

func (n *clientNode) PointerScroll(s *Seat, delta fixed.Fixed, axis backend.ScrollAxis) {
	s.SendPointerScroll(n, delta, axis)
}

func (n *clientNode) KeyboardKey(s *Seat, key uint32, state backend.KeyState, mods xkb.Modifiers) {
	s.SendKeyboardKey(n, key, state)
}

func (n *clientNode) KeyboardModifiers(s *Seat, mods xkb.Modifiers) {
	s.SendKeyboardModifiers(n, mods)
}

func (n *clientNode) KeyboardFocus(s *Seat) {
	s.SendKeyboardEnter(n)
}

func (n *clientNode) KeyboardUnfocus(s *Seat) {
	s.SendKeyboardLeave(n)
}

// fakePointer records pointer protocol sends.
type fakePointer struct {
	rec  *recorder
	name string
}

func (p *fakePointer) SendEnter(serial uint32, n Node, x, y fixed.Fixed) {
	p.rec.add("%s enter %s,%s", p.name, x, y)
}

func (p *fakePointer) SendLeave(serial uint32, n Node) {
	p.rec.add("%s leave", p.name)
}

func (p *fakePointer) SendMotion(x, y fixed.Fixed) {
	p.rec.add("%s motion %s,%s", p.name, x, y)
}

func (p *fakePointer) SendButton(serial uint32, button uint32, state backend.KeyState) {
	p.rec.add("%s button %#x %s", p.name, button, state)
}

func (p *fakePointer) SendScroll(delta fixed.Fixed, axis backend.ScrollAxis) {
	p.rec.add("%s scroll %s %s", p.name, delta, axis)
}

// fakeKeyboard records keyboard protocol sends.
type fakeKeyboard struct {
	rec  *recorder
	name string
}

func (k *fakeKeyboard) SendKeymap(fd int, size uint32) {
	k.rec.add("%s keymap", k.name)
}

func (k *fakeKeyboard) SendRepeatInfo(rate, delay int32) {
	k.rec.add("%s repeat %d,%d", k.name, rate, delay)
}

func (k *fakeKeyboard) SendEnter(serial uint32, n Node, pressed []uint32) {
	k.rec.add("%s enter %v", k.name, pressed)
}

func (k *fakeKeyboard) SendLeave(serial uint32, n Node) {
	k.rec.add("%s leave", k.name)
}

func (k *fakeKeyboard) SendKey(serial uint32, key uint32, state backend.KeyState) {
	k.rec.add("%s key %d %s", k.name, key, state)
}

func (k *fakeKeyboard) SendModifiers(serial uint32, mods xkb.Modifiers) {
	k.rec.add("%s mods %#x", k.name, mods.Depressed)
}

// fakeDataDevice records selection announcements.
type fakeDataDevice struct {
	rec  *recorder
	name string
}

func (d *fakeDataDevice) SendOffer(src data.Source) {
	d.rec.add("%s offer", d.name)
}

func (d *fakeDataDevice) SendSelection(src data.Source) {
	if src == nil {
		d.rec.add("%s selection none", d.name)
		return
	}
	d.rec.add("%s selection", d.name)
}

func TestKeyDeduplication(t *testing.T) {
	rec := &recorder{}
	root := newTestNode(rec, "root", 0, 0, 100, 100)
	mods := &fakeMods{}
	s := newTestSeat(root, mods)

	s.KeyboardKey(30, backend.Pressed)
	rec.assert(t, "key root 30 Pressed")

	// A repeated press and a release for a key that is not down
	// reach neither the modifier service nor any node.
	s.KeyboardKey(30, backend.Pressed)
	s.KeyboardKey(31, backend.Released)
	rec.assert(t)

	s.KeyboardKey(30, backend.Released)
	rec.assert(t, "key root 30 Released")
	if len(mods.calls) != 2 {
		t.Errorf("modifier service saw %d updates, want 2", len(mods.calls))
	}
}

func TestModifierChangeDelivery(t *testing.T) {
	rec := &recorder{}
	root := newTestNode(rec, "root", 0, 0, 100, 100)
	s := newTestSeat(root, &fakeMods{
		snapshot: xkb.Modifiers{Depressed: xkb.ModShift},
		changed:  true,
	})

	s.KeyboardKey(42, backend.Pressed)
	rec.assert(t,
		"key root 42 Pressed",
		"mods root 0x1",
	)
}

func TestFocusNodeSequence(t *testing.T) {
	rec := &recorder{}
	root := newTestNode(rec, "root", 0, 0, 100, 100)
	s1 := newTestNode(rec, "S1", 0, 0, 50, 100)
	s2 := newTestNode(rec, "S2", 50, 0, 50, 100)
	root.addChild(s1)
	root.addChild(s2)
	s := newTestSeat(root, &fakeMods{})

	s.FocusNode(s1)
	rec.assert(t,
		"unfocus root",
		"active S1 true",
		"focus S1",
	)

	// Refocusing the focused node is a no-op.
	s.FocusNode(s1)
	rec.assert(t)

	s.FocusNode(s2)
	rec.assert(t,
		"unfocus S1",
		"active S1 false",
		"active S2 true",
		"focus S2",
	)

	s.KeyboardKey(30, backend.Pressed)
	rec.assert(t, "key S2 30 Pressed")
}

func TestActiveEdgesAcrossSeats(t *testing.T) {
	rec := &recorder{}
	root := newTestNode(rec, "root", 0, 0, 100, 100)
	s1 := newTestNode(rec, "S1", 0, 0, 50, 100)
	s2 := newTestNode(rec, "S2", 50, 0, 50, 100)
	root.addChild(s1)
	root.addChild(s2)
	seatA := newTestSeat(root, &fakeMods{})
	seatB := newTestSeat(root, &fakeMods{})

	// Only the first seat to focus a node raises the activation
	// edge.
	seatA.FocusNode(s1)
	rec.assert(t, "unfocus root", "active S1 true", "focus S1")
	seatB.FocusNode(s1)
	rec.assert(t, "unfocus root", "focus S1")

	// The edge drops only when the last seat moves away.
	seatA.FocusNode(s2)
	rec.assert(t, "unfocus S1", "active S2 true", "focus S2")
	seatB.FocusNode(s2)
	rec.assert(t, "unfocus S1", "active S1 false", "focus S2")

	if !s2.SeatState().IsActive() {
		t.Error("S2 not active while two seats focus it")
	}
	if s1.SeatState().IsActive() {
		t.Error("S1 still active after both seats left")
	}
}

func TestDestructionFallbackToHistory(t *testing.T) {
	rec := &recorder{}
	root := newTestNode(rec, "root", 0, 0, 300, 100)
	t1 := newTestToplevel(rec, "T1", 0, 0, 100, 100)
	t2 := newTestToplevel(rec, "T2", 100, 0, 100, 100)
	x := newTestNode(rec, "X", 200, 0, 100, 100)
	root.addChild(&t1.testNode)
	root.addChild(&t2.testNode)
	root.addChild(x)
	s := newTestSeat(root, &fakeMods{})

	s.FocusToplevel(t1)
	s.FocusToplevel(t2)
	s.FocusNode(x)
	rec.events = nil

	// X dies while focused; the history, not the root, decides
	// where focus goes.
	DestroyNode(x)
	root.removeChild(x)
	rec.assert(t,
		"active X false",
		"unfocus root",
		"active T2.surface true",
		"focus T2.surface",
	)
	if got := s.KeyboardNode().ID(); got != t2.surface.ID() {
		t.Errorf("keyboard focus on node %d, want T2.surface", got)
	}
}

func TestDestroyToplevelBeforeSurface(t *testing.T) {
	rec := &recorder{}
	root := newTestNode(rec, "root", 0, 0, 300, 100)
	t1 := newTestToplevel(rec, "T1", 0, 0, 100, 100)
	t2 := newTestToplevel(rec, "T2", 100, 0, 100, 100)
	root.addChild(&t1.testNode)
	root.addChild(&t2.testNode)
	s := newTestSeat(root, &fakeMods{})

	s.FocusToplevel(t1)
	s.FocusToplevel(t2)
	rec.events = nil

	// Container first: T2 leaves the history before its surface's
	// destruction picks the fallback, so focus lands on T1.
	DestroyNode(t2)
	DestroyNode(t2.surface)
	root.removeChild(&t2.testNode)
	rec.assert(t,
		"active T2.surface false",
		"unfocus root",
		"active T1.surface true",
		"focus T1.surface",
	)
	if t2.SeatState().historyElem(s) != nil {
		t.Error("destroyed toplevel still in focus history")
	}
}

func TestFocusHistoryOrder(t *testing.T) {
	rec := &recorder{}
	root := newTestNode(rec, "root", 0, 0, 300, 100)
	t1 := newTestToplevel(rec, "T1", 0, 0, 100, 100)
	t2 := newTestToplevel(rec, "T2", 100, 0, 100, 100)
	t3 := newTestToplevel(rec, "T3", 200, 0, 100, 100)
	t3.floating = true
	root.addChild(&t1.testNode)
	root.addChild(&t2.testNode)
	root.addChild(&t3.testNode)
	s := newTestSeat(root, &fakeMods{})

	if got := s.MostRecentToplevel(false); got != nil {
		t.Fatalf("most recent toplevel = %v on empty history", got)
	}

	s.FocusToplevel(t1)
	s.FocusToplevel(t2)
	s.FocusToplevel(t3)
	if got := s.MostRecentToplevel(false); got != ToplevelNode(t3) {
		t.Error("most recent toplevel is not T3")
	}
	if got := s.MostRecentToplevel(true); got != ToplevelNode(t2) {
		t.Error("most recent tiled toplevel is not T2")
	}

	// Refocusing moves an entry to the front instead of
	// duplicating it.
	s.FocusToplevel(t1)
	if got := s.MostRecentToplevel(false); got != ToplevelNode(t1) {
		t.Error("most recent toplevel is not T1 after refocus")
	}
	if n := s.history.Len(); n != 3 {
		t.Errorf("history length = %d, want 3", n)
	}
}

func TestCrossClientSelectionOffer(t *testing.T) {
	nrec := &recorder{}
	brec := &recorder{}
	k1 := testClient(1, "k1")
	k2 := testClient(2, "k2")
	defer k1.Close()
	defer k2.Close()
	root := newTestNode(nrec, "root", 0, 0, 300, 100)
	s1 := newClientNode(nrec, k1, "s1", 0, 0, 100, 100)
	s1b := newClientNode(nrec, k1, "s1b", 100, 0, 100, 100)
	s2 := newClientNode(nrec, k2, "s2", 200, 0, 100, 100)
	root.addChild(&s1.testNode)
	root.addChild(&s1b.testNode)
	root.addChild(&s2.testNode)
	s := newTestSeat(root, &fakeMods{})

	dd1 := &fakeDataDevice{rec: brec, name: "dd1"}
	dd2 := &fakeDataDevice{rec: brec, name: "dd2"}
	s.AddDataDevice(k1, dd1)
	s.AddDataDevice(k2, dd2)
	brec.assert(t)

	s.SetSelection(data.NewBytes([]byte("copied")))
	brec.assert(t)

	// Crossing into k1 offers the selection to k1 once.
	s.FocusNode(s1)
	brec.assert(t, "dd1 offer")

	// Moving focus within the same client renegotiates nothing.
	s.FocusNode(s1b)
	brec.assert(t)

	// Crossing into k2 offers exactly once, with no empty
	// selection notification.
	s.FocusNode(s2)
	brec.assert(t, "dd2 offer")

	// Without a source, crossing announces the empty selection.
	s.SetSelection(nil)
	brec.assert(t, "dd2 selection none")
	s.FocusNode(s1)
	brec.assert(t, "dd1 selection none")
}

func TestPrimarySelectionIndependent(t *testing.T) {
	nrec := &recorder{}
	brec := &recorder{}
	k1 := testClient(1, "k1")
	defer k1.Close()
	root := newTestNode(nrec, "root", 0, 0, 100, 100)
	s1 := newClientNode(nrec, k1, "s1", 0, 0, 100, 100)
	root.addChild(&s1.testNode)
	s := newTestSeat(root, &fakeMods{})

	dd := &fakeDataDevice{rec: brec, name: "dd"}
	pd := &fakeDataDevice{rec: brec, name: "pd"}
	s.AddDataDevice(k1, dd)
	s.AddPrimarySelectionDevice(k1, pd)

	s.FocusNode(s1)
	brec.assert(t, "dd selection none", "pd selection none")

	s.SetPrimarySelection(data.NewBytes([]byte("selected")))
	brec.assert(t, "pd offer")

	s.SetSelection(data.NewBytes([]byte("copied")))
	brec.assert(t, "dd offer")
}

func TestKeyboardEnterReplaysPressedKeys(t *testing.T) {
	nrec := &recorder{}
	brec := &recorder{}
	k1 := testClient(1, "k1")
	defer k1.Close()
	root := newTestNode(nrec, "root", 0, 0, 100, 100)
	surf := newClientNode(nrec, k1, "surf", 0, 0, 100, 100)
	root.addChild(&surf.testNode)
	s := newTestSeat(root, &fakeMods{})

	kb := &fakeKeyboard{rec: brec, name: "kb"}
	s.AddKeyboard(k1, kb)
	brec.assert(t, "kb repeat 25,250")

	s.KeyboardKey(48, backend.Pressed)
	s.KeyboardKey(30, backend.Pressed)
	brec.assert(t)

	// The new focus starts from the full pressed-key view, lowest
	// key first, with the modifier snapshot on its heels.
	s.FocusNode(surf)
	brec.assert(t,
		"kb enter [30 48]",
		"kb mods 0x0",
	)

	s.KeyboardKey(30, backend.Released)
	brec.assert(t, "kb key 30 Released")

	s.FocusNode(root)
	brec.assert(t, "kb leave")
}

func TestAddKeyboardWhileFocused(t *testing.T) {
	nrec := &recorder{}
	brec := &recorder{}
	k1 := testClient(1, "k1")
	defer k1.Close()
	root := newTestNode(nrec, "root", 0, 0, 100, 100)
	surf := newClientNode(nrec, k1, "surf", 0, 0, 100, 100)
	root.addChild(&surf.testNode)
	s := newTestSeat(root, &fakeMods{})

	s.FocusNode(surf)
	s.KeyboardKey(30, backend.Pressed)

	// A keyboard bound after the fact catches up on focus state.
	kb := &fakeKeyboard{rec: brec, name: "kb"}
	s.AddKeyboard(k1, kb)
	brec.assert(t,
		"kb repeat 25,250",
		"kb enter [30]",
		"kb mods 0x0",
	)
}

func TestAddPointerWhileEntered(t *testing.T) {
	nrec := &recorder{}
	brec := &recorder{}
	k1 := testClient(1, "k1")
	defer k1.Close()
	root := newTestNode(nrec, "root", 0, 0, 200, 200)
	surf := newClientNode(nrec, k1, "surf", 10, 10, 100, 100)
	root.addChild(&surf.testNode)
	s := newTestSeat(root, &fakeMods{})

	s.PointerMotionRelative(fixed.FromFloat(30.5), fixed.FromInt(40))

	fp := &fakePointer{rec: brec, name: "fp"}
	s.AddPointer(k1, fp)
	brec.assert(t, "fp enter 20.5,30")
}

func TestPointerBindingDelivery(t *testing.T) {
	nrec := &recorder{}
	brec := &recorder{}
	k1 := testClient(1, "k1")
	defer k1.Close()
	root := newTestNode(nrec, "root", 0, 0, 200, 200)
	surf := newClientNode(nrec, k1, "surf", 10, 10, 100, 100)
	root.addChild(&surf.testNode)
	s := newTestSeat(root, &fakeMods{})

	fp := &fakePointer{rec: brec, name: "fp"}
	s.AddPointer(k1, fp)

	s.PointerMotionRelative(fixed.FromInt(30), fixed.FromInt(40))
	brec.assert(t, "fp enter 20,30")

	s.PointerMotionRelative(fixed.FromInt(5), fixed.FromInt(0))
	brec.assert(t, "fp motion 25,30")

	s.PointerButton(backend.BtnLeft, backend.Pressed)
	brec.assert(t, "fp button 0x110 Pressed")

	s.PointerScroll(fixed.FromInt(15), backend.Vertical)
	brec.assert(t, "fp scroll 15 Vertical")

	s.PointerButton(backend.BtnLeft, backend.Released)
	brec.assert(t, "fp button 0x110 Released")

	s.PointerMotionRelative(fixed.FromInt(500), fixed.FromInt(0))
	brec.assert(t, "fp leave")

	// A disconnected client's bindings go away wholesale.
	s.RemoveClient(k1)
	s.PointerMotionRelative(fixed.FromInt(-500), fixed.FromInt(0))
	brec.assert(t)
}

func TestSerialsIncrease(t *testing.T) {
	rec := &recorder{}
	root := newTestNode(rec, "root", 0, 0, 100, 100)
	s := newTestSeat(root, &fakeMods{})

	a, b, c := s.NextSerial(), s.NextSerial(), s.NextSerial()
	if !(a < b && b < c) {
		t.Errorf("serials not increasing: %d, %d, %d", a, b, c)
	}
}
