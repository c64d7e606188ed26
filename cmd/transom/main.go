// SPDX-License-Identifier: Unlicense OR MIT

// Command transom runs the compositor with a demo scene: two tiled
// windows and a floating panel, owned by in-process demo clients that
// log the protocol traffic they receive.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/transomwm/transom/backend"
	"github.com/transomwm/transom/backend/evdev"
	"github.com/transomwm/transom/backend/sdl"
	"github.com/transomwm/transom/compositor"
	"github.com/transomwm/transom/xkb"
)

var (
	backendFlag = flag.String("backend", "auto", "input backend (auto, sdl, evdev)")
	logLevel    = flag.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	keymapFlag  = flag.String("keymap", "", "path to an xkb keymap file; empty for the built-in one")
	grabFlag    = flag.Bool("grab", false, "take exclusive ownership of evdev devices")
	statsAddr   = flag.String("stats-addr", "", "serve runtime statistics on this address; empty to disable")
	titleFlag   = flag.String("title", "transom", "window title of the sdl backend")
)

func main() {
	flag.Parse()
	log := logrus.New()
	lvl, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		log.WithError(err).Fatal("bad -log-level")
	}
	log.SetLevel(lvl)
	if err := mainErr(log); err != nil {
		log.WithError(err).Fatal("transom failed")
	}
}

func mainErr(log *logrus.Logger) error {
	km := xkb.Default()
	if *keymapFlag != "" {
		var err error
		km, err = xkb.Load(*keymapFlag)
		if err != nil {
			return err
		}
	}

	kind := *backendFlag
	if kind == "auto" {
		// Nested under a display server when one is around, raw
		// devices otherwise.
		if os.Getenv("WAYLAND_DISPLAY") != "" || os.Getenv("DISPLAY") != "" {
			kind = "sdl"
		} else {
			kind = "evdev"
		}
	}
	var (
		b   backend.Backend
		err error
	)
	switch kind {
	case "sdl":
		b, err = sdl.New(sdl.Options{Title: *titleFlag, Log: log})
	case "evdev":
		b, err = evdev.New(evdev.Options{Grab: *grabFlag, Log: log})
	default:
		return fmt.Errorf("unknown backend %q", kind)
	}
	if err != nil {
		return err
	}
	log.WithField("backend", kind).Info("backend ready")

	stopStats := startStats(*statsAddr, log)
	defer stopStats()

	d := newDemo(log)
	comp := compositor.New(b, compositor.Options{
		Keymap:     km,
		Log:        log,
		SeatFunc:   d.seatAdded,
		OutputFunc: d.outputAdded,
	})
	d.createClients(comp)
	if kind == "evdev" {
		// The device backend announces no outputs; give the scene a
		// virtual one.
		d.outputAdded(comp, comp.Root().AddOutput(1, 0, 0, 1920, 1080))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = comp.Run(ctx)
	comp.Shutdown()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
