// SPDX-License-Identifier: Unlicense OR MIT

/*
Package sdl implements a nested development backend: the compositor
runs as a window inside another display server, with SDL2 providing
input, one output per window, and a bridge to the host clipboard.

SDL requires its event loop to run on the thread that initialized it,
so the backend owns a locked OS thread and everything else talks to
it through channels.
*/
package sdl

import (
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/transomwm/transom/backend"
	"github.com/transomwm/transom/data"
	"github.com/transomwm/transom/fixed"
)

const (
	seatID   backend.SeatID   = 1
	outputID backend.OutputID = 1

	// One wheel detent scrolls this many units, matching what
	// libinput reports for a standard mouse wheel.
	wheelDetent = 15

	// Wait at most this long for a host event before checking for
	// shutdown and cursor requests.
	eventTimeout = 50 // milliseconds
)

// Options configures the nested window.
type Options struct {
	// Title is the host window title.
	Title string
	// Width and Height are the output size in pixels.
	Width, Height int32
	// Log receives backend-scoped log entries.
	Log *logrus.Logger
}

// Backend is a nested input backend on an SDL2 window.
type Backend struct {
	log    *logrus.Entry
	title  string
	w, h   int32
	events chan backend.Event
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once

	cursorReq chan backend.Cursor

	window  *sdl.Window
	cursors map[backend.Cursor]*sdl.Cursor
	hidden  bool

	// clipboardEcho suppresses the host notification caused by our
	// own WriteClipboard.
	mu            sync.Mutex
	clipboardEcho bool
}

// New opens the nested window and starts the event loop. It returns
// once SDL is initialized; the first events on the channel announce
// the seat and the output.
func New(opts Options) (*Backend, error) {
	if opts.Title == "" {
		opts.Title = "transom"
	}
	if opts.Width <= 0 {
		opts.Width = 1280
	}
	if opts.Height <= 0 {
		opts.Height = 720
	}
	if opts.Log == nil {
		opts.Log = logrus.New()
	}
	b := &Backend{
		log:       opts.Log.WithField("backend", "sdl"),
		title:     opts.Title,
		w:         opts.Width,
		h:         opts.Height,
		events:    make(chan backend.Event, 64),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		cursorReq: make(chan backend.Cursor, 1),
		cursors:   make(map[backend.Cursor]*sdl.Cursor),
	}
	initErr := make(chan error)
	go b.run(initErr)
	if err := <-initErr; err != nil {
		return nil, err
	}
	return b, nil
}

// Events implements backend.Backend.
func (b *Backend) Events() <-chan backend.Event {
	return b.events
}

// Close tears the window down and closes the event channel.
func (b *Backend) Close() error {
	b.once.Do(func() {
		close(b.stop)
		<-b.done
	})
	return nil
}

// SetCursor asks the event loop to switch the host cursor shape. It
// never blocks; a request made while one is pending replaces it.
func (b *Backend) SetCursor(c backend.Cursor) {
	select {
	case <-b.cursorReq:
	default:
	}
	b.cursorReq <- c
}

func (b *Backend) run(initErr chan<- error) {
	runtime.LockOSThread()
	defer close(b.done)
	defer close(b.events)

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		initErr <- fmt.Errorf("sdl: init: %w", err)
		return
	}
	window, err := sdl.CreateWindow(b.title,
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		b.w, b.h, sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		initErr <- fmt.Errorf("sdl: create window: %w", err)
		return
	}
	b.window = window
	defer b.teardown()
	initErr <- nil
	b.log.WithFields(logrus.Fields{"width": b.w, "height": b.h}).Info("nested window open")

	b.emit(backend.SeatAdded{Seat: seatID, Name: "seat0"})
	b.emit(backend.OutputAdded{Output: outputID, X: 0, Y: 0, Width: b.w, Height: b.h})

	for {
		select {
		case <-b.stop:
			return
		case c := <-b.cursorReq:
			b.applyCursor(c)
		default:
		}
		ev := sdl.WaitEventTimeout(eventTimeout)
		for ; ev != nil; ev = sdl.PollEvent() {
			if !b.translate(ev) {
				return
			}
		}
	}
}

func (b *Backend) teardown() {
	for _, c := range b.cursors {
		sdl.FreeCursor(c)
	}
	if b.window != nil {
		_ = b.window.Destroy()
	}
	sdl.Quit()
	b.log.Info("nested window closed")
}

// emit delivers ev to the compositor, giving up when the backend is
// being closed. It reports whether the loop should keep running.
func (b *Backend) emit(ev backend.Event) bool {
	select {
	case b.events <- ev:
		return true
	case <-b.stop:
		return false
	}
}

func (b *Backend) translate(ev sdl.Event) bool {
	switch ev := ev.(type) {
	case *sdl.QuitEvent:
		return b.emit(backend.Quit{})
	case *sdl.WindowEvent:
		if ev.Event == sdl.WINDOWEVENT_CLOSE {
			return b.emit(backend.Quit{})
		}
	case *sdl.MouseMotionEvent:
		return b.emit(backend.PointerMotionAbsolute{
			Seat:   seatID,
			Output: outputID,
			X:      fixed.FromInt(ev.X),
			Y:      fixed.FromInt(ev.Y),
		})
	case *sdl.MouseButtonEvent:
		code, ok := buttonCode(ev.Button)
		if !ok {
			return true
		}
		state := backend.Released
		if ev.Type == sdl.MOUSEBUTTONDOWN {
			state = backend.Pressed
		}
		return b.emit(backend.PointerButton{Seat: seatID, Button: code, State: state})
	case *sdl.MouseWheelEvent:
		// SDL reports up and right as positive; the event stream
		// carries scroll down and right as positive.
		if ev.Y != 0 {
			if !b.emit(backend.PointerScroll{
				Seat:  seatID,
				Delta: fixed.FromInt(-ev.Y * wheelDetent),
				Axis:  backend.Vertical,
			}) {
				return false
			}
		}
		if ev.X != 0 {
			return b.emit(backend.PointerScroll{
				Seat:  seatID,
				Delta: fixed.FromInt(ev.X * wheelDetent),
				Axis:  backend.Horizontal,
			})
		}
	case *sdl.KeyboardEvent:
		if ev.Repeat != 0 {
			// Clients repeat keys themselves, per the repeat info
			// announced on keyboard binding.
			return true
		}
		code, ok := keyCode(ev.Keysym.Scancode)
		if !ok {
			b.log.WithField("scancode", int(ev.Keysym.Scancode)).Debug("unmapped scancode")
			return true
		}
		state := backend.Released
		if ev.Type == sdl.KEYDOWN {
			state = backend.Pressed
		}
		return b.emit(backend.KeyboardKey{Seat: seatID, Key: code, State: state})
	case *sdl.ClipboardEvent:
		b.mu.Lock()
		echo := b.clipboardEcho
		b.clipboardEcho = false
		b.mu.Unlock()
		if echo {
			return true
		}
		return b.emit(backend.ClipboardChanged{Seat: seatID})
	}
	return true
}

func buttonCode(button uint8) (uint32, bool) {
	switch button {
	case sdl.BUTTON_LEFT:
		return backend.BtnLeft, true
	case sdl.BUTTON_RIGHT:
		return backend.BtnRight, true
	case sdl.BUTTON_MIDDLE:
		return backend.BtnMiddle, true
	case sdl.BUTTON_X1:
		return backend.BtnSide, true
	case sdl.BUTTON_X2:
		return backend.BtnExtra, true
	}
	return 0, false
}

func (b *Backend) applyCursor(c backend.Cursor) {
	if c == backend.CursorNone {
		if !b.hidden {
			sdl.ShowCursor(sdl.DISABLE)
			b.hidden = true
		}
		return
	}
	if b.hidden {
		sdl.ShowCursor(sdl.ENABLE)
		b.hidden = false
	}
	cur, ok := b.cursors[c]
	if !ok {
		cur = sdl.CreateSystemCursor(systemCursor(c))
		b.cursors[c] = cur
	}
	sdl.SetCursor(cur)
}

func systemCursor(c backend.Cursor) sdl.SystemCursor {
	switch c {
	case backend.CursorText:
		return sdl.SYSTEM_CURSOR_IBEAM
	case backend.CursorPointer:
		return sdl.SYSTEM_CURSOR_HAND
	case backend.CursorCrosshair:
		return sdl.SYSTEM_CURSOR_CROSSHAIR
	case backend.CursorMove:
		return sdl.SYSTEM_CURSOR_SIZEALL
	default:
		return sdl.SYSTEM_CURSOR_ARROW
	}
}

// ReadClipboard implements backend.ClipboardBridge using the host
// clipboard.
func (b *Backend) ReadClipboard() data.Source {
	text, err := clipboard.ReadAll()
	if err != nil {
		b.log.WithError(err).Warn("cannot read host clipboard")
		return nil
	}
	if text == "" {
		return nil
	}
	return data.NewBytes([]byte(text), data.MimeTextUTF, data.MimeText)
}

// WriteClipboard implements backend.ClipboardBridge. Only text
// payloads can cross into the host.
func (b *Backend) WriteClipboard(src data.Source) error {
	mime := textMime(src)
	if mime == "" {
		return fmt.Errorf("sdl: no text payload offered")
	}
	r, err := src.Open(mime)
	if err != nil {
		return err
	}
	defer r.Close()
	payload, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.clipboardEcho = true
	b.mu.Unlock()
	return clipboard.WriteAll(string(payload))
}

func textMime(src data.Source) string {
	for _, m := range src.Mimes() {
		switch m {
		case data.MimeText, data.MimeTextUTF:
			return m
		}
	}
	return ""
}
