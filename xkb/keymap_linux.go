// SPDX-License-Identifier: Unlicense OR MIT

package xkb

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Fd returns a sealed memfd holding the NUL-terminated keymap text,
// suitable for passing to clients. The descriptor is created once and
// shared; callers must not close it.
func (k *Keymap) Fd() (fd int, size uint32, err error) {
	k.once.Do(func() {
		k.fd, k.size, k.err = exportKeymap(k.Text)
	})
	return k.fd, k.size, k.err
}

func exportKeymap(text string) (int, uint32, error) {
	fd, err := unix.MemfdCreate("transom-keymap", unix.MFD_CLOEXEC|unix.MFD_ALLOW_SEALING)
	if err != nil {
		return -1, 0, fmt.Errorf("xkb: memfd_create: %w", err)
	}
	buf := append([]byte(text), 0)
	for len(buf) > 0 {
		n, err := unix.Write(fd, buf)
		if err != nil {
			unix.Close(fd)
			return -1, 0, fmt.Errorf("xkb: write keymap: %w", err)
		}
		buf = buf[n:]
	}
	if _, err := unix.Seek(fd, 0, 0); err != nil {
		unix.Close(fd)
		return -1, 0, fmt.Errorf("xkb: seek keymap: %w", err)
	}
	seals := unix.F_SEAL_SEAL | unix.F_SEAL_SHRINK | unix.F_SEAL_GROW | unix.F_SEAL_WRITE
	if _, err := unix.FcntlInt(uintptr(fd), unix.F_ADD_SEALS, seals); err != nil {
		unix.Close(fd)
		return -1, 0, fmt.Errorf("xkb: seal keymap: %w", err)
	}
	return fd, uint32(len(text) + 1), nil
}
