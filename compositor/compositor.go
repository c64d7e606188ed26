// SPDX-License-Identifier: Unlicense OR MIT

/*
Package compositor ties the pieces together: one backend event stream
driving the scene graph, the seats, and the clients, all on a single
goroutine.
*/
package compositor

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/transomwm/transom/backend"
	"github.com/transomwm/transom/client"
	"github.com/transomwm/transom/data"
	"github.com/transomwm/transom/seat"
	"github.com/transomwm/transom/tree"
	"github.com/transomwm/transom/xkb"
)

// Options carries the optional collaborators of a compositor.
type Options struct {
	// Keymap is announced to every keyboard binding. The built-in
	// keymap is used when nil.
	Keymap *xkb.Keymap
	// Log receives log entries from the whole compositor.
	Log *logrus.Logger
	// SeatFunc observes seats as the backend announces them, on the
	// Run goroutine. Binding registration hooks in here.
	SeatFunc func(st *State, s *seat.Seat)
	// OutputFunc observes outputs the same way. Scene construction
	// hooks in here.
	OutputFunc func(st *State, o *tree.Output)
}

// State is the compositor. Everything it owns is confined to the
// goroutine calling Run; the backend hands events over a channel and
// never touches seat or tree state itself.
type State struct {
	log     *logrus.Logger
	backend backend.Backend
	root    *tree.Root
	keymap  *xkb.Keymap

	seatFunc   func(st *State, s *seat.Seat)
	outputFunc func(st *State, o *tree.Output)

	seats      map[backend.SeatID]*seat.Seat
	clients    map[client.ID]*client.Client
	nextClient client.ID
}

// New returns a compositor driven by b. The backend must not be nil.
func New(b backend.Backend, opts Options) *State {
	if b == nil {
		panic("compositor: nil backend")
	}
	if opts.Keymap == nil {
		opts.Keymap = xkb.Default()
	}
	if opts.Log == nil {
		opts.Log = logrus.New()
	}
	return &State{
		log:        opts.Log,
		backend:    b,
		root:       tree.NewRoot(opts.Log),
		keymap:     opts.Keymap,
		seatFunc:   opts.SeatFunc,
		outputFunc: opts.OutputFunc,
		seats:      make(map[backend.SeatID]*seat.Seat),
		clients:    make(map[client.ID]*client.Client),
	}
}

// Root returns the scene graph root for scene construction.
func (st *State) Root() *tree.Root {
	return st.root
}

// Seat returns the seat with the given backend identity, or nil.
func (st *State) Seat(id backend.SeatID) *seat.Seat {
	return st.seats[id]
}

// Run dispatches backend events until the backend reports Quit, its
// event stream ends, or ctx is canceled. It does not tear anything
// down; callers follow up with Shutdown.
func (st *State) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-st.backend.Events():
			if !ok {
				return nil
			}
			if !st.dispatch(ev) {
				return nil
			}
		}
	}
}

// dispatch routes one backend event. It reports whether the loop
// should keep running.
func (st *State) dispatch(ev backend.Event) bool {
	switch ev := ev.(type) {
	case backend.SeatAdded:
		st.addSeat(ev.Seat, ev.Name)
	case backend.SeatRemoved:
		st.removeSeat(ev.Seat)
	case backend.OutputAdded:
		o := st.root.AddOutput(ev.Output, ev.X, ev.Y, ev.Width, ev.Height)
		if st.outputFunc != nil {
			st.outputFunc(st, o)
		}
	case backend.OutputRemoved:
		st.root.RemoveOutput(ev.Output)
	case backend.ClipboardChanged:
		st.importClipboard(ev.Seat)
	case backend.Quit:
		st.log.Info("backend requested quit")
		return false
	case backend.PointerMotionAbsolute:
		st.seatEvent(ev.Seat, ev)
	case backend.PointerMotionRelative:
		st.seatEvent(ev.Seat, ev)
	case backend.PointerButton:
		st.seatEvent(ev.Seat, ev)
	case backend.PointerScroll:
		st.seatEvent(ev.Seat, ev)
	case backend.KeyboardKey:
		st.seatEvent(ev.Seat, ev)
	}
	return true
}

func (st *State) seatEvent(id backend.SeatID, ev backend.Event) {
	if s := st.seats[id]; s != nil {
		s.HandleEvent(ev)
	}
}

func (st *State) addSeat(id backend.SeatID, name string) {
	if _, ok := st.seats[id]; ok {
		return
	}
	opts := seat.Options{
		Outputs: st.root,
		Keymap:  st.keymap,
		Log:     st.log,
	}
	if host, ok := st.backend.(backend.CursorHost); ok {
		opts.CursorFunc = host.SetCursor
	}
	s := seat.New(id, name, st.root, opts)
	st.seats[id] = s
	st.root.AddSeat(s)
	if st.seatFunc != nil {
		st.seatFunc(st, s)
	}
}

// removeSeat deregisters the seat before destroying it, so the tree
// changes triggered by later teardown cannot repopulate its focus.
func (st *State) removeSeat(id backend.SeatID) {
	s, ok := st.seats[id]
	if !ok {
		return
	}
	delete(st.seats, id)
	st.root.RemoveSeat(s)
	s.Destroy()
}

// importClipboard installs the host clipboard as the seat selection.
// Backends without a clipboard bridge never report the event, but a
// missing bridge is tolerated anyway.
func (st *State) importClipboard(id backend.SeatID) {
	s, ok := st.seats[id]
	if !ok {
		return
	}
	bridge, ok := st.backend.(backend.ClipboardBridge)
	if !ok {
		return
	}
	if src := bridge.ReadClipboard(); src != nil {
		s.SetSelection(src)
	}
}

// SetSelection installs src as the seat's clipboard selection and
// mirrors it to the host clipboard when the backend bridges one.
func (st *State) SetSelection(id backend.SeatID, src data.Source) {
	s, ok := st.seats[id]
	if !ok {
		return
	}
	s.SetSelection(src)
	if src == nil {
		return
	}
	if bridge, ok := st.backend.(backend.ClipboardBridge); ok {
		if err := bridge.WriteClipboard(src); err != nil {
			st.log.WithError(err).Warn("cannot mirror selection to host")
		}
	}
}

// AddClient registers a connection under a fresh identity.
func (st *State) AddClient(name string, conn client.Conn) *client.Client {
	st.nextClient++
	c := client.New(st.nextClient, name, conn, st.log)
	st.clients[c.ID()] = c
	return c
}

// RemoveClient withdraws the client's bindings from every seat and
// closes it. Surfaces the client still owns stay in the scene until
// their toplevels are closed; routing to them goes nowhere.
func (st *State) RemoveClient(c *client.Client) {
	if _, ok := st.clients[c.ID()]; !ok {
		return
	}
	delete(st.clients, c.ID())
	for _, s := range st.seats {
		s.RemoveClient(c)
	}
	c.Close()
}

// Shutdown tears everything down: seats first so the scene teardown
// cannot touch their focus, then the scene, the clients, and the
// backend.
func (st *State) Shutdown() {
	for id := range st.seats {
		st.removeSeat(id)
	}
	st.root.Shutdown()
	for id, c := range st.clients {
		delete(st.clients, id)
		c.Close()
	}
	if err := st.backend.Close(); err != nil {
		st.log.WithError(err).Warn("backend close failed")
	}
	st.log.Info("compositor shut down")
}
