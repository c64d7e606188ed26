// SPDX-License-Identifier: Unlicense OR MIT

//go:build !linux

package evdev

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/transomwm/transom/backend"
)

// Options configures device handling.
type Options struct {
	Grab bool
	Log  *logrus.Logger
}

// Backend is only implemented on Linux, where evdev exists.
type Backend struct{}

func New(Options) (*Backend, error) {
	return nil, errors.New("evdev: input devices require linux")
}

func (*Backend) Events() <-chan backend.Event { return nil }

func (*Backend) Close() error { return nil }
