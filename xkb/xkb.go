// SPDX-License-Identifier: Unlicense OR MIT

/*
Package xkb tracks keyboard modifier state and carries the keymap
that clients interpret key codes with.

The compositor core treats modifier computation as an opaque service:
it feeds accepted key transitions in and forwards the returned
snapshot to clients verbatim. State implements that service for
single-group keymaps by tracking the modifier keys directly; a full
keymap compiler can be substituted behind the same method set.
*/
package xkb

import "github.com/transomwm/transom/backend"

// Modifier masks, in the order X11 and its keymaps assign them.
const (
	ModShift   uint32 = 1 << 0
	ModLock    uint32 = 1 << 1
	ModControl uint32 = 1 << 2
	Mod1       uint32 = 1 << 3 // alt
	Mod2       uint32 = 1 << 4 // num lock
	Mod3       uint32 = 1 << 5
	Mod4       uint32 = 1 << 6 // logo
	Mod5       uint32 = 1 << 7
)

// Modifiers is a modifier state snapshot as delivered to clients:
// held, latched and locked masks plus the active layout group.
type Modifiers struct {
	Depressed uint32
	Latched   uint32
	Locked    uint32
	Group     uint32
}

// Modifier key codes from the Linux input event space.
const (
	keyLeftCtrl   = 29
	keyLeftShift  = 42
	keyRightShift = 54
	keyLeftAlt    = 56
	keyCapsLock   = 58
	keyNumLock    = 69
	keyRightCtrl  = 97
	keyRightAlt   = 100
	keyLeftMeta   = 125
	keyRightMeta  = 126
)

func modifierMask(key uint32) (uint32, bool) {
	switch key {
	case keyLeftShift, keyRightShift:
		return ModShift, true
	case keyLeftCtrl, keyRightCtrl:
		return ModControl, true
	case keyLeftAlt, keyRightAlt:
		return Mod1, true
	case keyLeftMeta, keyRightMeta:
		return Mod4, true
	default:
		return 0, false
	}
}

func lockMask(key uint32) (uint32, bool) {
	switch key {
	case keyCapsLock:
		return ModLock, true
	case keyNumLock:
		return Mod2, true
	default:
		return 0, false
	}
}

// State tracks the modifier snapshot of one keyboard. The zero value
// is not usable; call NewState.
type State struct {
	held      map[uint32]uint32
	heldCount map[uint32]int
	depressed uint32
	locked    uint32
}

// NewState returns a State with no modifiers active.
func NewState() *State {
	return &State{
		held:      make(map[uint32]uint32),
		heldCount: make(map[uint32]int),
	}
}

// Modifiers returns the current snapshot.
func (s *State) Modifiers() Modifiers {
	return Modifiers{
		Depressed: s.depressed,
		Locked:    s.locked,
	}
}

// Update feeds one accepted key transition into the tracker and
// reports whether the snapshot changed. Callers must de-duplicate
// transitions first; a second press of a held key corrupts the held
// count.
func (s *State) Update(key uint32, state backend.KeyState) (Modifiers, bool) {
	changed := false
	if mask, ok := modifierMask(key); ok {
		switch state {
		case backend.Pressed:
			s.held[key] = mask
			s.heldCount[mask]++
			if s.heldCount[mask] == 1 {
				s.depressed |= mask
				changed = true
			}
		case backend.Released:
			if mask, ok := s.held[key]; ok {
				delete(s.held, key)
				s.heldCount[mask]--
				if s.heldCount[mask] == 0 {
					s.depressed &^= mask
					changed = true
				}
			}
		}
	} else if mask, ok := lockMask(key); ok && state == backend.Pressed {
		s.locked ^= mask
		changed = true
	}
	return s.Modifiers(), changed
}
