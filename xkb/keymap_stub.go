// SPDX-License-Identifier: Unlicense OR MIT

//go:build !linux

package xkb

import "errors"

// Fd is only implemented on Linux, where memfds exist.
func (k *Keymap) Fd() (fd int, size uint32, err error) {
	return -1, 0, errors.New("xkb: keymap export requires linux")
}
