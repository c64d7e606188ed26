// SPDX-License-Identifier: Unlicense OR MIT

package evdev

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gvalkov/golang-evdev"
	"github.com/jochenvg/go-udev"
	"github.com/sirupsen/logrus"

	"github.com/transomwm/transom/backend"
	"github.com/transomwm/transom/fixed"
)

const (
	seatID backend.SeatID = 1

	// One wheel detent scrolls this many units, matching what
	// libinput reports for a standard mouse wheel.
	wheelDetent = 15

	// The kernel reserves 0x100..0x2ff of the key space for buttons;
	// BTN_LEFT..BTN_TASK are the mouse ones.
	btnBlockFirst = 0x100
	btnBlockLast  = 0x2ff
	btnMouseFirst = 0x110
	btnMouseLast  = 0x117
)

// Options configures device handling.
type Options struct {
	// Grab takes exclusive ownership of every opened device, keeping
	// its events from reaching the session hosting the compositor.
	Grab bool
	// Log receives backend-scoped log entries.
	Log *logrus.Logger
}

// Backend reads input devices through evdev and follows hotplug
// through udev. It only produces input events; outputs come from
// whatever display backend runs alongside it.
type Backend struct {
	log  *logrus.Entry
	grab bool

	events chan backend.Event
	stop   chan struct{}
	once   sync.Once
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	devices map[string]*reader // by syspath
	closing bool
}

type reader struct {
	dev     *evdev.InputDevice
	devnode string
}

// New scans the input devices present at startup and starts watching
// for hotplug. The first event on the channel announces seat0.
func New(opts Options) (*Backend, error) {
	if opts.Log == nil {
		opts.Log = logrus.New()
	}
	b := &Backend{
		log:     opts.Log.WithField("backend", "evdev"),
		grab:    opts.Grab,
		events:  make(chan backend.Event, 64),
		stop:    make(chan struct{}),
		devices: make(map[string]*reader),
	}

	// The monitor starts before the scan so a device plugged in
	// between the two is not lost.
	u := udev.Udev{}
	ctx, cancel := context.WithCancel(context.Background())
	m := u.NewMonitorFromNetlink("udev")
	_ = m.FilterAddMatchSubsystem("input")
	ch, err := m.DeviceChan(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("evdev: udev monitor: %w", err)
	}
	b.cancel = cancel

	e := u.NewEnumerate()
	_ = e.AddMatchSubsystem("input")
	_ = e.AddMatchIsInitialized()
	devices, err := e.Devices()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("evdev: enumerate input devices: %w", err)
	}

	b.events <- backend.SeatAdded{Seat: seatID, Name: "seat0"}
	for _, d := range devices {
		b.addDevice(d)
	}

	b.wg.Add(1)
	go b.monitor(ch)
	return b, nil
}

// Events implements backend.Backend.
func (b *Backend) Events() <-chan backend.Event {
	return b.events
}

// Close stops the monitor, closes every device to unblock its reader,
// and waits for all of them before closing the event channel.
func (b *Backend) Close() error {
	b.once.Do(func() {
		close(b.stop)
		b.cancel()
		b.mu.Lock()
		b.closing = true
		readers := make([]*reader, 0, len(b.devices))
		for _, r := range b.devices {
			readers = append(readers, r)
		}
		b.mu.Unlock()
		for _, r := range readers {
			_ = r.dev.File.Close()
		}
		b.wg.Wait()
		close(b.events)
	})
	return nil
}

func (b *Backend) monitor(ch <-chan *udev.Device) {
	defer b.wg.Done()
	for d := range ch {
		switch d.Action() {
		case "add":
			b.addDevice(d)
		case "remove":
			b.removeDevice(d.Syspath())
		}
	}
}

// addDevice opens an evdev node with pointer or key capabilities and
// starts its reader. Anything else in the input subsystem (parent
// devices, legacy mouse nodes, joysticks) is skipped.
func (b *Backend) addDevice(d *udev.Device) {
	node := d.Devnode()
	if !strings.HasPrefix(node, "/dev/input/event") {
		return
	}
	if d.PropertyValue("ID_INPUT_MOUSE") != "1" && d.PropertyValue("ID_INPUT_KEYBOARD") != "1" {
		return
	}
	dev, err := evdev.Open(node)
	if err != nil {
		b.log.WithError(err).WithField("device", node).Warn("cannot open input device")
		return
	}
	if b.grab {
		if err := dev.Grab(); err != nil {
			b.log.WithError(err).WithField("device", node).Warn("cannot grab input device")
		}
	}
	syspath := d.Syspath()
	b.mu.Lock()
	if b.closing || b.devices[syspath] != nil {
		b.mu.Unlock()
		_ = dev.File.Close()
		return
	}
	b.devices[syspath] = &reader{dev: dev, devnode: node}
	b.mu.Unlock()
	b.log.WithFields(logrus.Fields{"device": node, "name": dev.Name}).Info("input device added")
	b.wg.Add(1)
	go b.read(syspath, dev)
}

func (b *Backend) removeDevice(syspath string) {
	b.mu.Lock()
	r, ok := b.devices[syspath]
	if ok {
		delete(b.devices, syspath)
	}
	b.mu.Unlock()
	if !ok {
		return
	}
	_ = r.dev.File.Close()
	b.log.WithField("device", r.devnode).Info("input device removed")
}

// emit delivers ev to the compositor, giving up when the backend is
// being closed. It reports whether the reader should keep running.
func (b *Backend) emit(ev backend.Event) bool {
	select {
	case b.events <- ev:
		return true
	case <-b.stop:
		return false
	}
}

// read translates one device's event stream. Relative motion and
// wheel clicks accumulate until the device marks the end of a packet
// with SYN_REPORT, then flush as single events.
func (b *Backend) read(syspath string, dev *evdev.InputDevice) {
	defer b.wg.Done()
	var dx, dy, wheel, hwheel int32
	absWarned := false
	for {
		ev, err := dev.ReadOne()
		if err != nil {
			b.mu.Lock()
			delete(b.devices, syspath)
			closing := b.closing
			b.mu.Unlock()
			if !closing {
				b.log.WithError(err).WithField("device", dev.Fn).Debug("reader stopped")
			}
			_ = dev.File.Close()
			return
		}
		switch ev.Type {
		case evdev.EV_KEY:
			if ev.Value == 2 {
				// Kernel autorepeat; clients repeat keys themselves.
				continue
			}
			state := backend.Released
			if ev.Value != 0 {
				state = backend.Pressed
			}
			code := uint32(ev.Code)
			switch {
			case code >= btnMouseFirst && code <= btnMouseLast:
				if !b.emit(backend.PointerButton{Seat: seatID, Button: code, State: state}) {
					return
				}
			case code >= btnBlockFirst && code <= btnBlockLast:
				// Joystick and digitizer buttons.
			default:
				if !b.emit(backend.KeyboardKey{Seat: seatID, Key: code, State: state}) {
					return
				}
			}
		case evdev.EV_REL:
			switch ev.Code {
			case evdev.REL_X:
				dx += ev.Value
			case evdev.REL_Y:
				dy += ev.Value
			case evdev.REL_WHEEL:
				wheel += ev.Value
			case evdev.REL_HWHEEL:
				hwheel += ev.Value
			}
		case evdev.EV_ABS:
			if !absWarned {
				absWarned = true
				b.log.WithField("device", dev.Fn).Debug("ignoring absolute axes")
			}
		case evdev.EV_SYN:
			if ev.Code != evdev.SYN_REPORT {
				continue
			}
			if dx != 0 || dy != 0 {
				if !b.emit(backend.PointerMotionRelative{
					Seat: seatID,
					DX:   fixed.FromInt(dx),
					DY:   fixed.FromInt(dy),
				}) {
					return
				}
				dx, dy = 0, 0
			}
			if wheel != 0 {
				// Wheel up is positive in the kernel; the event
				// stream carries scroll down as positive.
				if !b.emit(backend.PointerScroll{
					Seat:  seatID,
					Delta: fixed.FromInt(-wheel * wheelDetent),
					Axis:  backend.Vertical,
				}) {
					return
				}
				wheel = 0
			}
			if hwheel != 0 {
				if !b.emit(backend.PointerScroll{
					Seat:  seatID,
					Delta: fixed.FromInt(hwheel * wheelDetent),
					Axis:  backend.Horizontal,
				}) {
					return
				}
				hwheel = 0
			}
		}
	}
}
